// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"strconv"

	"github.com/jtacoma/uritemplates"
)

// URL templates of the resources, relative to the root of the API.
// These are RFC 6570 URI templates; path variables are the same
// names the server's routes use.
const (
	FrameworkStartLevelURL    = "framework/startlevel"
	BundlesURL                = "framework/bundles"
	BundleRepresentationsURL  = "framework/bundles/representations"
	BundleURL                 = "framework/bundle/{bundleId}"
	BundleStateURL            = "framework/bundle/{bundleId}/state"
	BundleStartLevelURL       = "framework/bundle/{bundleId}/startlevel"
	BundleHeaderURL           = "framework/bundle/{bundleId}/header"
	ServicesURL               = "framework/services{?filter}"
	ServiceRepresentationsURL = "framework/services/representations{?filter}"
	ServiceURL                = "framework/service/{serviceId}"
	ExtensionsURL             = "extensions"
)

// Path variable and query parameter names.
const (
	BundleIDVar  = "bundleId"
	ServiceIDVar = "serviceId"
	FilterParam  = "filter"
)

// Expand fills in a URL template.
func Expand(template string, vars map[string]interface{}) (string, error) {
	tmpl, err := uritemplates.Parse(template)
	if err != nil {
		return "", err
	}
	return tmpl.Expand(vars)
}

// BundlePath returns the relative path of a bundle resource, such as
// "framework/bundle/7".
func BundlePath(id int64) string {
	path, err := Expand(BundleURL, map[string]interface{}{BundleIDVar: strconv.FormatInt(id, 10)})
	if err != nil {
		// The template is a constant, so this cannot happen
		panic(err)
	}
	return path
}

// ServicePath returns the relative path of a service resource, such
// as "framework/service/3".
func ServicePath(id int64) string {
	path, err := Expand(ServiceURL, map[string]interface{}{ServiceIDVar: strconv.FormatInt(id, 10)})
	if err != nil {
		panic(err)
	}
	return path
}
