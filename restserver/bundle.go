// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/diffeo/go-fwrest/framework"
	"github.com/diffeo/go-fwrest/restdata"
)

// errNoLocation is returned when installing from an empty location.
var errNoLocation = restdata.ErrBadRequest{Err: errors.New("No bundle location given")}

func (api *restAPI) bundlesHandler() *resourceHandler {
	return &resourceHandler{
		Kind:   restdata.BundlesKind,
		Output: restdata.BundlePathsTarget,
		Get:    api.BundlesGet,
		Post:   api.BundlesPost,
	}
}

// BundlesGet lists the paths of all installed bundles.
func (api *restAPI) BundlesGet(ctx *context) (interface{}, error) {
	bundles, err := api.Framework.Bundles()
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(bundles))
	for i, bundle := range bundles {
		paths[i] = restdata.BundlePath(bundle.ID)
	}
	return paths, nil
}

// BundlesPost installs a new bundle.
func (api *restAPI) BundlesPost(ctx *context, in interface{}) (interface{}, error) {
	body, err := readBundleBody(ctx.Request, true)
	if err != nil {
		return nil, err
	}
	if body.Location == "" {
		return nil, errNoLocation
	}
	bundle, err := api.Framework.Install(body.Location, body.Content)
	if err != nil {
		return nil, err
	}
	api.Logger.WithFields(logrus.Fields{
		"id":       bundle.ID,
		"location": bundle.Location,
	}).Debug("Installed bundle")
	return responseCreated{Path: restdata.BundlePath(bundle.ID)}, nil
}

func (api *restAPI) bundleRepresentationsHandler() *resourceHandler {
	return &resourceHandler{
		Kind:   restdata.BundleRepresentationsKind,
		Output: restdata.BundleListTarget,
		Get:    api.BundleRepresentationsGet,
	}
}

// BundleRepresentationsGet returns every installed bundle.
func (api *restAPI) BundleRepresentationsGet(ctx *context) (interface{}, error) {
	bundles, err := api.Framework.Bundles()
	if err != nil {
		return nil, err
	}
	return restdata.BundleList(bundles), nil
}

func (api *restAPI) bundleHandler() *resourceHandler {
	return &resourceHandler{
		Kind:   restdata.BundleKind,
		Output: restdata.BundleTarget,
		Get:    api.BundleGet,
		Put:    api.BundlePut,
		Delete: api.BundleDelete,
	}
}

func (api *restAPI) BundleGet(ctx *context) (interface{}, error) {
	return &ctx.Bundle, nil
}

// BundlePut updates a bundle, from a new location or new content.
func (api *restAPI) BundlePut(ctx *context, in interface{}) (interface{}, error) {
	body, err := readBundleBody(ctx.Request, false)
	if err != nil {
		return nil, err
	}
	_, err = api.Framework.Update(ctx.Bundle.ID, body.Location, body.Content)
	return nil, err
}

func (api *restAPI) BundleDelete(ctx *context) (interface{}, error) {
	_, err := api.Framework.Uninstall(ctx.Bundle.ID)
	return nil, err
}

func (api *restAPI) bundleStateHandler() *resourceHandler {
	return &resourceHandler{
		Kind:   restdata.BundleStateKind,
		Output: restdata.BundleStatusTarget,
		Input:  &restdata.BundleStatusTarget,
		Get:    api.BundleStateGet,
		Put:    api.BundleStatePut,
	}
}

func (api *restAPI) BundleStateGet(ctx *context) (interface{}, error) {
	return &framework.BundleStatus{State: ctx.Bundle.State}, nil
}

// BundleStatePut starts or stops a bundle.
func (api *restAPI) BundleStatePut(ctx *context, in interface{}) (interface{}, error) {
	status, valid := in.(*framework.BundleStatus)
	if !valid {
		return nil, errUnmarshal
	}
	return nil, api.Framework.SetBundleState(ctx.Bundle.ID, status.State, status.Options)
}

func (api *restAPI) bundleStartLevelHandler() *resourceHandler {
	return &resourceHandler{
		Kind:   restdata.BundleStartLevelKind,
		Output: restdata.BundleStartLevelTarget,
		Input:  &restdata.BundleStartLevelTarget,
		Get:    api.BundleStartLevelGet,
		Put:    api.BundleStartLevelPut,
	}
}

func (api *restAPI) BundleStartLevelGet(ctx *context) (interface{}, error) {
	level, err := api.Framework.BundleStartLevel(ctx.Bundle.ID)
	if err != nil {
		return nil, err
	}
	return &level, nil
}

// BundleStartLevelPut changes a bundle's start level.  Only the
// startLevel field of the body is used.
func (api *restAPI) BundleStartLevelPut(ctx *context, in interface{}) (interface{}, error) {
	level, valid := in.(*framework.BundleStartLevel)
	if !valid {
		return nil, errUnmarshal
	}
	return nil, api.Framework.SetBundleStartLevel(ctx.Bundle.ID, level.StartLevel)
}

func (api *restAPI) bundleHeaderHandler() *resourceHandler {
	return &resourceHandler{
		Kind:   restdata.BundleHeaderKind,
		Output: restdata.BundleHeaderTarget,
		Get:    api.BundleHeaderGet,
	}
}

func (api *restAPI) BundleHeaderGet(ctx *context) (interface{}, error) {
	return api.Framework.BundleHeaders(ctx.Bundle.ID)
}
