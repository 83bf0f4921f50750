// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/diffeo/go-fwrest/extension"
	"github.com/diffeo/go-fwrest/framework"
	"github.com/diffeo/go-fwrest/restdata"
	"github.com/diffeo/go-fwrest/router"
)

// Server is an HTTP handler that processes all framework management
// requests, plus whatever extensions are attached to it.  All
// resources are under the URL path root, e.g. /framework/bundles;
// mount it under a prefix with http.StripPrefix if needed.
type Server struct {
	// Router holds the built-in resources and the attached
	// extensions.
	Router *router.Router

	// Extensions attaches extension units to Router.  Add it as
	// a listener to an extension.Registry to publish the
	// registry's units.
	Extensions *extension.Bridge

	api *restAPI
}

// New creates a server for a framework.  If logger is nil the logrus
// standard logger is used.
func New(fw framework.Framework, logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	r := router.New()
	r.NotFound = errorHandler{Err: restdata.ErrNotFound{Err: errNoResource}}
	bridge := extension.NewBridge(r, extension.DefaultMount, logger)
	api := &restAPI{Framework: fw, Extensions: bridge, Logger: logger}
	if err := api.PopulateRouter(r); err != nil {
		// The built-in routes are constants and cannot collide
		// in an empty router
		panic(err)
	}
	return &Server{Router: r, Extensions: bridge, api: api}
}

func (s *Server) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	s.Router.ServeHTTP(resp, req)
}

// restAPI holds the persistent state for the REST API.
type restAPI struct {
	Framework  framework.Framework
	Extensions *extension.Bridge
	Logger     logrus.FieldLogger
}

// routeTemplate converts a restdata URL template into a router
// template, dropping any query expression.
func routeTemplate(urlTemplate string) string {
	if i := strings.Index(urlTemplate, "{?"); i >= 0 {
		urlTemplate = urlTemplate[:i]
	}
	return "/" + urlTemplate
}

// PopulateRouter adds all of the built-in URL paths to a router.
func (api *restAPI) PopulateRouter(r *router.Router) error {
	routes := []struct {
		url     string
		handler *resourceHandler
	}{
		{restdata.FrameworkStartLevelURL, api.frameworkStartLevelHandler()},
		{restdata.BundlesURL, api.bundlesHandler()},
		{restdata.BundleRepresentationsURL, api.bundleRepresentationsHandler()},
		{restdata.BundleURL, api.bundleHandler()},
		{restdata.BundleStateURL, api.bundleStateHandler()},
		{restdata.BundleStartLevelURL, api.bundleStartLevelHandler()},
		{restdata.BundleHeaderURL, api.bundleHeaderHandler()},
		{restdata.ServicesURL, api.servicesHandler()},
		{restdata.ServiceRepresentationsURL, api.serviceRepresentationsHandler()},
		{restdata.ServiceURL, api.serviceHandler()},
		{restdata.ExtensionsURL, api.extensionsHandler()},
	}
	for _, route := range routes {
		route.handler.Context = api.Context
		route.handler.Logger = api.Logger
		if err := r.Handle(routeTemplate(route.url), route.handler); err != nil {
			return err
		}
	}
	return nil
}
