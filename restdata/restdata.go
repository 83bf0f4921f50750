// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restdata defines the wire representation shared between
// the restserver and restclient packages: media types, the field
// tables that describe each record shape, the JSON and XML codec
// built on those tables, and the URL templates of the resources.
//
// Media Types
//
// Every kind of resource has exactly two media types, differing only
// in their suffix:
//
//     application/org.osgi.bundle+json
//     application/org.osgi.bundle+xml
//
// The plain types application/json, text/json, application/xml, and
// text/xml are accepted as well, and select only the syntax.
//
// Encoding Considerations
//
// Records are JSON objects, or XML elements with one child element
// per field.  Lists are JSON arrays, or a wrapper element containing
// one element per item.  String maps are JSON objects, or a wrapper
// containing <entry key="name">value</entry> elements.  Service
// properties keep their Go types through XML with a type attribute:
//
//     <property key="service.ranking" type="Long">10</property>
//
// Bundle states are transmitted as their integer values (32 for
// active).  Decoders ignore fields they do not know, and leave
// missing fields at their zero value.  A list that is present but
// empty decodes to an empty slice, a missing one to nil.
//
// Errors
//
// Errors are returned as an encoding of ErrorResponse with a failing
// HTTP status.  The well-known errors of the framework package round
// trip through it.
package restdata

import (
	"mime"
	"strings"
)

// Syntax selects the wire syntax of a representation.
type Syntax int

const (
	// JSON is the default syntax.
	JSON Syntax = iota

	// XML is the alternative syntax.
	XML
)

// Suffix returns the media type suffix for the syntax.
func (s Syntax) Suffix() string {
	if s == XML {
		return "+xml"
	}
	return "+json"
}

// Generic returns the plain media type for the syntax, which does
// not name any particular kind of resource.
func (s Syntax) Generic() string {
	if s == XML {
		return "application/xml"
	}
	return "application/json"
}

func (s Syntax) String() string {
	if s == XML {
		return "xml"
	}
	return "json"
}

// MediaTypePrefix begins every resource-specific media type.
const MediaTypePrefix = "application/org.osgi."

// Resource kinds.  Each has a JSON and an XML media type.
const (
	FrameworkStartLevelKind    = "framework.startlevel"
	BundleKind                 = "bundle"
	BundlesKind                = "bundles"
	BundleRepresentationsKind  = "bundles.representations"
	BundleStateKind            = "bundle.state"
	BundleHeaderKind           = "bundle.header"
	BundleStartLevelKind       = "bundle.startlevel"
	ServiceKind                = "service"
	ServicesKind               = "services"
	ServiceRepresentationsKind = "services.representations"
	ExtensionsKind             = "extensions"
)

var knownKinds = map[string]bool{
	FrameworkStartLevelKind:    true,
	BundleKind:                 true,
	BundlesKind:                true,
	BundleRepresentationsKind:  true,
	BundleStateKind:            true,
	BundleHeaderKind:           true,
	BundleStartLevelKind:       true,
	ServiceKind:                true,
	ServicesKind:               true,
	ServiceRepresentationsKind: true,
	ExtensionsKind:             true,
}

// TextMediaType is used for bundle locations in request and response
// bodies.
const TextMediaType = "text/plain"

// MediaType is a parsed media type understood by this package.
type MediaType struct {
	// Kind is the resource kind, or empty for the generic
	// application/json and application/xml types.
	Kind string

	// Syntax is the wire syntax.
	Syntax Syntax
}

// NewMediaType returns the media type for a kind of resource in some
// syntax.
func NewMediaType(kind string, syntax Syntax) MediaType {
	return MediaType{Kind: kind, Syntax: syntax}
}

func (m MediaType) String() string {
	if m.Kind == "" {
		return m.Syntax.Generic()
	}
	return MediaTypePrefix + m.Kind + m.Syntax.Suffix()
}

// ParseMediaType parses a Content-Type: or Accept: media type,
// ignoring parameters.  Unknown types return ErrUnsupportedMediaType.
func ParseMediaType(contentType string) (MediaType, error) {
	if contentType == "" {
		// RFC 7231 section 3.1.1.5
		contentType = "application/octet-stream"
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return MediaType{}, ErrBadRequest{Err: err}
	}

	switch mediaType {
	case "application/json", "text/json":
		return MediaType{Syntax: JSON}, nil
	case "application/xml", "text/xml":
		return MediaType{Syntax: XML}, nil
	}

	if strings.HasPrefix(mediaType, MediaTypePrefix) {
		rest := mediaType[len(MediaTypePrefix):]
		for _, syntax := range []Syntax{JSON, XML} {
			if !strings.HasSuffix(rest, syntax.Suffix()) {
				continue
			}
			kind := rest[:len(rest)-len(syntax.Suffix())]
			if knownKinds[kind] {
				return MediaType{Kind: kind, Syntax: syntax}, nil
			}
		}
	}
	return MediaType{}, ErrUnsupportedMediaType{Type: mediaType}
}
