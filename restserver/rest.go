// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

// This file contains a REST skeleton framework.
//
// The bulk of this is dealing with HTTP content type negotiation, and
// providing a standard way to deal with input and output values.
// Each resource names its kind, which determines the media types it
// can be represented in, and the restdata targets its input and
// output are encoded with.

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/diffeo/go-fwrest/restdata"
)

// errBadAccept is returned from negotiateResponse() if the Accept:
// header is malformed (and no more specific error applies).
var errBadAccept = restdata.ErrBadRequest{Err: errors.New("Invalid Accept: header")}

// errNotAcceptable is returned from negotiateResponse() if the Accept:
// header does not mention any media types we can actually return.
type errNotAcceptable struct{}

func (e errNotAcceptable) Error() string {
	return "No acceptable representation for response"
}

func (e errNotAcceptable) HTTPStatus() int {
	return http.StatusNotAcceptable
}

// errMethodNotAllowed is used within the resourceHandler implementation
// to flag an error if a particular HTTP method is not allowed.  This
// corresponds exactly to the 405 Method Not Allowed HTTP status code.
type errMethodNotAllowed struct {
	Method string
}

func (e errMethodNotAllowed) Error() string {
	return fmt.Sprintf("Method %v not allowed", e.Method)
}

func (e errMethodNotAllowed) HTTPStatus() int {
	return http.StatusMethodNotAllowed
}

// responseCreated is returned as a value response from handler
// functions that want to indicate that a new resource was created.
// The body is the path of the new resource relative to the API root,
// sent as text/plain.
type responseCreated struct {
	Path string
}

// responseType is the outcome of content negotiation.
type responseType struct {
	// ContentType is the Content-Type: of a successful response.
	ContentType string

	// Syntax is the syntax of the response, including error
	// responses.
	Syntax restdata.Syntax
}

// errorContentType is the Content-Type: of an error response.
func (rt responseType) errorContentType() string {
	return rt.Syntax.Generic()
}

type resourceHandler struct {
	// Kind is the restdata kind of the resource's representation.
	Kind string

	// Output is the target successful responses are encoded with.
	Output restdata.Target

	// Input, if non-nil, is the target PUT and POST bodies are
	// decoded with.  Otherwise the handler reads the body itself
	// from the context.
	Input *restdata.Target

	// InputKind is the restdata kind of the request body, if it
	// differs from Kind.
	InputKind string

	// Context reads an HTTP request and produces a context object.
	Context func(req *http.Request) (*context, error)

	// Get, if non-nil, returns a representation of the object,
	// as a value of the Output target.
	Get func(*context) (interface{}, error)

	// Put, if non-nil, updates the object.  The interface
	// parameter is the decoded Input, or nil.  The return is
	// normally nil.
	Put func(*context, interface{}) (interface{}, error)

	// Post, if non-nil, takes some arbitrary action.  The return
	// can be any useful return value, including responseCreated.
	Post func(*context, interface{}) (interface{}, error)

	// Delete, if non-nil, deletes the object.
	Delete func(*context) (interface{}, error)

	// Logger receives reports of panics.
	Logger logrus.FieldLogger
}

// allow lists the methods this resource supports.
func (h *resourceHandler) allow() string {
	var methods []string
	if h.Get != nil {
		methods = append(methods, http.MethodGet, http.MethodHead)
	}
	if h.Put != nil {
		methods = append(methods, http.MethodPut)
	}
	if h.Post != nil {
		methods = append(methods, http.MethodPost)
	}
	if h.Delete != nil {
		methods = append(methods, http.MethodDelete)
	}
	return strings.Join(methods, ", ")
}

// decodeInput decodes the request body according to h.Input.
func (h *resourceHandler) decodeInput(req *http.Request) (interface{}, error) {
	mediaType, err := restdata.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	kind := h.InputKind
	if kind == "" {
		kind = h.Kind
	}
	if mediaType.Kind != "" && mediaType.Kind != kind {
		return nil, restdata.ErrUnsupportedMediaType{Type: mediaType.String()}
	}
	return restdata.Decode(req.Body, mediaType, *h.Input)
}

func (h *resourceHandler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	var (
		ctx     *context
		in, out interface{}
		err     error
		rtype   responseType
	)

	// Recover from panics by sending an HTTP error.
	defer func() {
		if recovered := recover(); recovered != nil {
			response := restdata.ErrorResponse{}
			response.FromPanic(recovered)
			if h.Logger != nil {
				h.Logger.WithFields(logrus.Fields{
					"method": req.Method,
					"path":   req.URL.Path,
					"panic":  response.Message,
				}).Error("Panic in REST handler")
			}
			writeError(resp, rtype, http.StatusInternalServerError, &response)
		}
	}()

	// Start by trying to come up with a response type, even before
	// trying to parse the input.  This determines what format an
	// error message could be sent back as.
	rtype, err = negotiateResponse(req, h.Kind)
	if err != nil {
		// Gotta pick something
		rtype = responseType{ContentType: restdata.JSON.Generic(), Syntax: restdata.JSON}
	}

	// Get bits from URL parameters
	if err == nil {
		ctx, err = h.Context(req)
	}

	// Read the body, if it's there and we know what it is
	if err == nil && h.Input != nil && (req.Method == http.MethodPut || req.Method == http.MethodPost) {
		in, err = h.decodeInput(req)
	}

	// Actually call the handler method
	if err == nil {
		// We will return this if the method is unexpected or
		// we don't have a handler for it
		err = errMethodNotAllowed{Method: req.Method}
		switch req.Method {
		case http.MethodGet, http.MethodHead:
			if h.Get != nil {
				out, err = h.Get(ctx)
			}
		case http.MethodPut:
			if h.Put != nil {
				out, err = h.Put(ctx, in)
			}
		case http.MethodPost:
			if h.Post != nil {
				out, err = h.Post(ctx, in)
			}
		case http.MethodDelete:
			if h.Delete != nil {
				out, err = h.Delete(ctx)
			}
		}
		if _, notAllowed := err.(errMethodNotAllowed); notAllowed {
			resp.Header().Set("Allow", h.allow())
		}
	}

	if err != nil {
		response := restdata.ErrorResponse{}
		response.FromError(err)
		writeError(resp, rtype, restdata.StatusOf(err), &response)
		return
	}

	switch result := out.(type) {
	case nil:
		resp.WriteHeader(http.StatusNoContent)
	case responseCreated:
		resp.Header().Set("Location", apiRoot(req)+result.Path)
		writeBody(resp, req, restdata.TextMediaType+"; charset=utf-8", http.StatusCreated, []byte(result.Path))
	default:
		// Encode into a buffer first, so that an encoding
		// failure can still be reported as an error.
		var buf bytes.Buffer
		mediaType := restdata.MediaType{Syntax: rtype.Syntax}
		if err = restdata.Encode(&buf, mediaType, h.Output, out); err != nil {
			response := restdata.ErrorResponse{}
			response.FromError(err)
			writeError(resp, rtype, http.StatusInternalServerError, &response)
			return
		}
		writeBody(resp, req, rtype.ContentType, http.StatusOK, buf.Bytes())
	}
}

// writeBody sends a complete response.  HEAD requests get the headers
// only.  If writing fails the status line has already gone out, so
// there is nothing better to do than drop the error.
func writeBody(resp http.ResponseWriter, req *http.Request, contentType string, status int, body []byte) {
	resp.Header().Set("Content-Type", contentType)
	resp.Header().Set("Content-Length", strconv.Itoa(len(body)))
	resp.WriteHeader(status)
	if req.Method != http.MethodHead {
		_, _ = resp.Write(body)
	}
}

// writeError sends an error response in the negotiated syntax.
func writeError(resp http.ResponseWriter, rtype responseType, status int, response *restdata.ErrorResponse) {
	var buf bytes.Buffer
	mediaType := restdata.MediaType{Syntax: rtype.Syntax}
	if err := restdata.Encode(&buf, mediaType, restdata.ErrorTarget, response); err != nil {
		// The error shape only has strings and an integer
		panic(err)
	}
	resp.Header().Set("Content-Type", rtype.errorContentType())
	resp.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	resp.WriteHeader(status)
	_, _ = resp.Write(buf.Bytes())
}

// errorHandler answers every request with a fixed error.  It is used
// for paths that match no route.
type errorHandler struct {
	Err error
}

func (h errorHandler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	rtype, err := negotiateResponse(req, "")
	if err != nil {
		rtype = responseType{ContentType: restdata.JSON.Generic(), Syntax: restdata.JSON}
	}
	response := restdata.ErrorResponse{}
	response.FromError(h.Err)
	writeError(resp, rtype, restdata.StatusOf(h.Err), &response)
}

// accepted is one media range from an Accept: header.
type accepted struct {
	mediaType string
	q         float64
	order     int
}

// wildcardRank orders media ranges by specificity: a specific type
// beats a type wildcard, which beats */*.
func wildcardRank(mediaType string) int {
	switch {
	case mediaType == "*/*":
		return 0
	case strings.HasSuffix(mediaType, "/*"):
		return 1
	default:
		return 2
	}
}

// negotiateResponse returns a supported media type for the response
// body, following the path laid out in RFC 7231 section 5.3.  kind is
// the restdata kind of the resource, or empty if it only produces
// errors.
func negotiateResponse(req *http.Request, kind string) (responseType, error) {
	accept := req.Header.Get("Accept")
	if accept == "" {
		accept = "*/*"
	}
	var ranges []accepted
	for i, mediaRange := range strings.Split(accept, ",") {
		mediaRange = strings.TrimSpace(mediaRange)
		if mediaRange == "" {
			continue
		}
		mediaType, params, err := mime.ParseMediaType(mediaRange)
		if err != nil {
			return responseType{}, errBadAccept
		}

		// What is the "q" ("quality") parameter for this type?
		q := 1.0
		if qStr, haveQ := params["q"]; haveQ {
			q, err = strconv.ParseFloat(qStr, 64)
			if err != nil || q < 0.0 || q > 1.0 {
				return responseType{}, errBadAccept
			}
		}
		if q == 0.0 {
			continue
		}
		ranges = append(ranges, accepted{mediaType: mediaType, q: q, order: i})
	}

	// Highest quality first; at a given quality the most specific
	// range wins, and then the first listed.
	sort.SliceStable(ranges, func(i, j int) bool {
		if ranges[i].q != ranges[j].q {
			return ranges[i].q > ranges[j].q
		}
		return wildcardRank(ranges[i].mediaType) > wildcardRank(ranges[j].mediaType)
	})

	for _, r := range ranges {
		if rtype, ok := produces(r.mediaType, kind); ok {
			return rtype, nil
		}
		// Otherwise we don't recognize this type at all, so
		// just drop it.
		//
		// The RFC endorses honoring type parameters as being
		// "more specific" but we don't really deal with that.
	}
	return responseType{}, errNotAcceptable{}
}

// produces decides whether a resource of some kind can answer with a
// media type from an Accept: header.
func produces(mediaType, kind string) (responseType, bool) {
	specific := func(syntax restdata.Syntax) responseType {
		if kind == "" {
			return responseType{ContentType: syntax.Generic(), Syntax: syntax}
		}
		return responseType{ContentType: restdata.NewMediaType(kind, syntax).String(), Syntax: syntax}
	}
	switch mediaType {
	case "*/*", "application/*":
		return specific(restdata.JSON), true
	case "text/*":
		return responseType{ContentType: "text/json", Syntax: restdata.JSON}, true
	case restdata.TextMediaType:
		// Only created responses are plain text; anything
		// else falls back to the default representation.
		return specific(restdata.JSON), true
	}
	parsed, err := restdata.ParseMediaType(mediaType)
	if err != nil {
		return responseType{}, false
	}
	if parsed.Kind == "" {
		return responseType{ContentType: mediaType, Syntax: parsed.Syntax}, true
	}
	if parsed.Kind == kind {
		return responseType{ContentType: parsed.String(), Syntax: parsed.Syntax}, true
	}
	return responseType{}, false
}
