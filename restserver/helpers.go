// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

// This file contains various HTTP-related helpers.

import (
	"io"
	"io/ioutil"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/satori/go.uuid"

	"github.com/diffeo/go-fwrest/restdata"
)

// apiRoot returns the path of the API root as the client sees it,
// ending in a slash.  If the server is mounted under a prefix that
// was stripped from req.URL, the prefix is recovered from the
// original request URI.
func apiRoot(req *http.Request) string {
	original := req.URL.Path
	if req.RequestURI != "" {
		if parsed, err := url.ParseRequestURI(req.RequestURI); err == nil {
			original = parsed.Path
		}
	}
	prefix := strings.TrimSuffix(original, req.URL.Path)
	if prefix == original {
		// The request was rewritten in some other way
		prefix = ""
	}
	return strings.TrimSuffix(prefix, "/") + "/"
}

// bundleBody is a bundle location or bundle content from a request
// body.
type bundleBody struct {
	Location string

	// Content is nil if the body was a location.
	Content io.Reader
}

// isText returns true if a request body is a plain text location.
func isText(req *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	return err == nil && mediaType == restdata.TextMediaType
}

// readBundleBody interprets the body of an install or update request.
// If the body is content and there is no Content-Location: header,
// generated asks for a made-up unique location; otherwise the
// location is left empty.
func readBundleBody(req *http.Request, generated bool) (bundleBody, error) {
	if isText(req) {
		data, err := ioutil.ReadAll(req.Body)
		if err != nil {
			return bundleBody{}, restdata.ErrBadRequest{Err: err}
		}
		return bundleBody{Location: strings.TrimSpace(string(data))}, nil
	}
	location := req.Header.Get("Content-Location")
	if location == "" && generated {
		location = "stream:" + uuid.NewV4().String()
	}
	return bundleBody{Location: location, Content: req.Body}, nil
}
