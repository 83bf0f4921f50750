// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/diffeo/go-fwrest/restdata"
)

func (api *restAPI) servicesHandler() *resourceHandler {
	return &resourceHandler{
		Kind:   restdata.ServicesKind,
		Output: restdata.ServicePathsTarget,
		Get:    api.ServicesGet,
	}
}

// ServicesGet lists the paths of the services matching the filter
// parameter, or all services if there is none.
func (api *restAPI) ServicesGet(ctx *context) (interface{}, error) {
	services, err := api.Framework.Services(ctx.Filter)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(services))
	for i, service := range services {
		paths[i] = restdata.ServicePath(service.ID)
	}
	return paths, nil
}

func (api *restAPI) serviceRepresentationsHandler() *resourceHandler {
	return &resourceHandler{
		Kind:   restdata.ServiceRepresentationsKind,
		Output: restdata.ServiceListTarget,
		Get:    api.ServiceRepresentationsGet,
	}
}

func (api *restAPI) ServiceRepresentationsGet(ctx *context) (interface{}, error) {
	services, err := api.Framework.Services(ctx.Filter)
	if err != nil {
		return nil, err
	}
	return restdata.ServiceList(services), nil
}

func (api *restAPI) serviceHandler() *resourceHandler {
	return &resourceHandler{
		Kind:   restdata.ServiceKind,
		Output: restdata.ServiceTarget,
		Get:    api.ServiceGet,
	}
}

func (api *restAPI) ServiceGet(ctx *context) (interface{}, error) {
	return &ctx.Service, nil
}
