// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

// This file provides generic REST client code.

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"

	"github.com/diffeo/go-fwrest/restdata"
)

// payload is the body of a request.
type payload struct {
	Body        io.Reader
	ContentType string

	// Location, if not empty, is sent as Content-Location:.
	Location string
}

// Template expands a URI template and returns the resulting URL,
// relative to the client's base URL.
func (c *Client) Template(template string, vars map[string]interface{}) (*url.URL, error) {
	expanded, err := restdata.Expand(template, vars)
	if err != nil {
		return nil, err
	}
	return c.URL.Parse(expanded)
}

// encode builds a payload holding a representation of value.
func (c *Client) encode(kind string, target restdata.Target, value interface{}) (*payload, error) {
	var buf bytes.Buffer
	mediaType := restdata.NewMediaType(kind, c.Syntax)
	if err := restdata.Encode(&buf, mediaType, target, value); err != nil {
		return nil, err
	}
	return &payload{Body: &buf, ContentType: mediaType.String()}, nil
}

// text builds a plain text payload.
func text(s string) *payload {
	return &payload{
		Body:        strings.NewReader(s),
		ContentType: restdata.TextMediaType + "; charset=utf-8",
	}
}

// Do performs some HTTP action.  If in is non-nil, it is sent as the
// body of, for instance, a POST request.  accept, if not empty, is
// sent as the Accept: header.  On success the caller must close the
// response body; a failing status is turned into an error and the
// body is consumed.
func (c *Client) Do(method string, url *url.URL, in *payload, accept string) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		body = in.Body
	}
	req, err := http.NewRequest(method, url.String(), body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", in.ContentType)
		if in.Location != "" {
			req.Header.Set("Content-Location", in.Location)
		}
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if err = checkHTTPStatus(resp); err != nil {
		_ = resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// exec performs an HTTP action whose response has no interesting
// body.
func (c *Client) exec(method string, url *url.URL, in *payload) (err error) {
	resp, err := c.Do(method, url, in, "")
	if err != nil {
		return err
	}
	defer func() {
		err = firstError(err, resp.Body.Close())
	}()
	_, err = io.Copy(ioutil.Discard, resp.Body)
	return err
}

// fetch performs an HTTP action and decodes the response as a
// representation of target.
func (c *Client) fetch(method string, url *url.URL, in *payload, kind string, target restdata.Target) (out interface{}, err error) {
	resp, err := c.Do(method, url, in, restdata.NewMediaType(kind, c.Syntax).String())
	if err != nil {
		return nil, err
	}
	defer func() {
		err = firstError(err, resp.Body.Close())
	}()
	return restdata.DecodeMediaType(resp.Body, resp.Header.Get("Content-Type"), target)
}

// get retrieves a resource from a URL template.
func (c *Client) get(template string, vars map[string]interface{}, kind string, target restdata.Target) (interface{}, error) {
	url, err := c.Template(template, vars)
	if err != nil {
		return nil, err
	}
	return c.fetch(http.MethodGet, url, nil, kind, target)
}

// put sends a representation to a URL template.
func (c *Client) put(template string, vars map[string]interface{}, kind string, target restdata.Target, value interface{}) error {
	url, err := c.Template(template, vars)
	if err != nil {
		return err
	}
	in, err := c.encode(kind, target, value)
	if err != nil {
		return err
	}
	return c.exec(http.MethodPut, url, in)
}

// postText submits a payload and returns the plain text response.
func (c *Client) postText(url *url.URL, in *payload) (result string, err error) {
	resp, err := c.Do(http.MethodPost, url, in, restdata.TextMediaType)
	if err != nil {
		return "", err
	}
	defer func() {
		err = firstError(err, resp.Body.Close())
	}()
	body, err := ioutil.ReadAll(resp.Body)
	return strings.TrimSpace(string(body)), err
}

// ErrorHTTP is a catch-all error for non-successes returned from the
// REST endpoint.
type ErrorHTTP struct {
	// Response holds a pointer to the failing HTTP response.
	Response *http.Response

	// Body holds the contents of the message body, presumed to
	// be text.
	Body string

	// Detail holds the decoded body, if the server sent an error
	// record that names no framework error.
	Detail *restdata.ErrorResponse
}

func (e ErrorHTTP) Error() string {
	if e.Detail != nil && e.Detail.Message != "" {
		return fmt.Sprintf("%v: %v", e.Response.Status, e.Detail.Message)
	}
	if e.Body == "" {
		return e.Response.Status
	}
	return fmt.Sprintf("%v: %v", e.Response.Status, e.Body)
}

// HTTPStatus returns the status code of the failing response.
func (e ErrorHTTP) HTTPStatus() int {
	return e.Response.StatusCode
}

// checkHTTPStatus examines an HTTP response and returns an error if
// it is not successful.
func checkHTTPStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Always collect the entire body; we will need it as a fallback
	// and can only parse it once.
	var body []byte
	var err error
	if resp.Body != nil {
		body, err = ioutil.ReadAll(resp.Body)
		if err != nil {
			return err
		}
	}

	// Take a shot at decoding it as a better error
	contentType := resp.Header.Get("Content-Type")
	decoded, err2 := restdata.DecodeMediaType(bytes.NewReader(body), contentType, restdata.ErrorTarget)
	if err2 != nil {
		return ErrorHTTP{Response: resp, Body: string(body)}
	}

	// Given that we decoded that successfully, return the
	// server-provided framework error, remembering if it was a 404;
	// anything else keeps the status
	detail := decoded.(*restdata.ErrorResponse)
	if !detail.IsFrameworkError() {
		return ErrorHTTP{Response: resp, Body: string(body), Detail: detail}
	}
	err = detail.ToError()
	if resp.StatusCode == http.StatusNotFound && restdata.StatusOf(err) != http.StatusNotFound {
		err = restdata.ErrNotFound{Err: err}
	}
	return err
}

// isNotFound returns true if err came from a 404 response.
func isNotFound(err error) bool {
	return err != nil && restdata.StatusOf(err) == http.StatusNotFound
}

func firstError(e1, e2 error) error {
	if e1 != nil {
		return e1
	}
	return e2
}
