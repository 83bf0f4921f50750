// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restserver publishes a framework.Framework as a REST
// service.  The restclient package is a matching client.
//
// The representations are defined in the restdata package, along
// with the URL templates clients should use to reach them.
//
// HTTP Considerations
//
// Clients should use the standard HTTP Accept: header to request a
// representation.  Each kind of resource has a JSON and an XML media
// type (see restdata); the generic application/json, text/json,
// application/xml, and text/xml types are also accepted, and the
// response is labelled with whatever type was asked for.  Without an
// Accept: header the resource-specific JSON type is returned.
//
// HEAD is accepted wherever GET is.  Successful requests that have
// nothing to return answer 204 No Content.
//
// This interface does not (currently) support HTTP caching or
// authentication headers.
//
// Bundle Content
//
// POST to the bundle list installs a bundle, and PUT to a bundle
// updates it.  If the request body is text/plain, it is the location
// of the bundle, which the runtime reads itself; an empty location on
// PUT means the bundle's current location.  Any other body is the
// bundle content, and the Content-Location: header, if present, gives
// its location.  A successful POST answers 201 Created with the new
// bundle's path as a text/plain body and a Location: header.
//
// URL Scheme
//
// The following URLs are defined:
//
//     /framework/startlevel
//     /framework/bundles
//     /framework/bundles/representations
//     /framework/bundle/{bundleId}
//     /framework/bundle/{bundleId}/state
//     /framework/bundle/{bundleId}/startlevel
//     /framework/bundle/{bundleId}/header
//     /framework/services?filter=...
//     /framework/services/representations?filter=...
//     /framework/service/{serviceId}
//     /extensions
//     /extensions/...
//
// Paths under /extensions belong to extensions, which come and go
// while the server is running; see the extension package.
package restserver
