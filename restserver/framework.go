// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"errors"

	"github.com/diffeo/go-fwrest/framework"
	"github.com/diffeo/go-fwrest/restdata"
)

// errNoResource is the error for paths that match no route.
var errNoResource = errors.New("No such resource")

func (api *restAPI) frameworkStartLevelHandler() *resourceHandler {
	return &resourceHandler{
		Kind:   restdata.FrameworkStartLevelKind,
		Output: restdata.FrameworkStartLevelTarget,
		Input:  &restdata.FrameworkStartLevelTarget,
		Get:    api.FrameworkStartLevelGet,
		Put:    api.FrameworkStartLevelPut,
	}
}

// FrameworkStartLevelGet returns the framework start level.
func (api *restAPI) FrameworkStartLevelGet(ctx *context) (interface{}, error) {
	level, err := api.Framework.StartLevel()
	if err != nil {
		return nil, err
	}
	return &level, nil
}

// FrameworkStartLevelPut changes the framework start level.
func (api *restAPI) FrameworkStartLevelPut(ctx *context, in interface{}) (interface{}, error) {
	level, valid := in.(*framework.FrameworkStartLevel)
	if !valid {
		return nil, errUnmarshal
	}
	return nil, api.Framework.SetStartLevel(*level)
}

func (api *restAPI) extensionsHandler() *resourceHandler {
	return &resourceHandler{
		Kind:   restdata.ExtensionsKind,
		Output: restdata.ExtensionListTarget,
		Get:    api.ExtensionsGet,
	}
}

// ExtensionsGet lists the attached extensions.
func (api *restAPI) ExtensionsGet(ctx *context) (interface{}, error) {
	return restdata.ExtensionList(api.Extensions.Extensions()), nil
}
