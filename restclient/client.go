// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restclient provides an HTTP REST client that talks to the
// matching server in the "restserver" package.
//
// The server in github.com/diffeo/go-fwrest/cmd/fwrestd runs a
// compatible REST server.  Call New() with the base URL of that
// service; for instance,
//
//     c, err := restclient.New("http://localhost:5980/", restdata.JSON)
//
// Lookups of single bundles and services return nil, and no error,
// if the server does not have them.  Framework() adapts a client to
// the framework.Framework interface.
package restclient

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/diffeo/go-fwrest/framework"
	"github.com/diffeo/go-fwrest/restdata"
)

// Client talks to a framework management REST service.
type Client struct {
	// URL is the root of the REST API.  Its path ends in "/".
	URL *url.URL

	// Syntax is the representation syntax used for requests and
	// asked for in responses.
	Syntax restdata.Syntax

	// HTTPClient performs requests.  If nil, http.DefaultClient
	// is used.  Timeouts are the transport's business.
	HTTPClient *http.Client
}

// New creates a client for the REST service at baseURL.
func New(baseURL string, syntax restdata.Syntax) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("REST URL %q is not absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return &Client{URL: u, Syntax: syntax}, nil
}

func bundleVars(id int64) map[string]interface{} {
	return map[string]interface{}{restdata.BundleIDVar: strconv.FormatInt(id, 10)}
}

func serviceVars(id int64) map[string]interface{} {
	return map[string]interface{}{restdata.ServiceIDVar: strconv.FormatInt(id, 10)}
}

// filterVars leaves the filter out entirely if it is empty, so the
// query string disappears from the URL.
func filterVars(filter string) map[string]interface{} {
	vars := map[string]interface{}{}
	if filter != "" {
		vars[restdata.FilterParam] = filter
	}
	return vars
}

// FrameworkStartLevel gets the framework start level.
func (c *Client) FrameworkStartLevel() (framework.FrameworkStartLevel, error) {
	out, err := c.get(restdata.FrameworkStartLevelURL, nil, restdata.FrameworkStartLevelKind, restdata.FrameworkStartLevelTarget)
	if err != nil {
		return framework.FrameworkStartLevel{}, err
	}
	return *out.(*framework.FrameworkStartLevel), nil
}

// SetFrameworkStartLevel changes the framework start level.
func (c *Client) SetFrameworkStartLevel(level framework.FrameworkStartLevel) error {
	return c.put(restdata.FrameworkStartLevelURL, nil, restdata.FrameworkStartLevelKind, restdata.FrameworkStartLevelTarget, &level)
}

// BundlePaths lists the paths of all installed bundles.
func (c *Client) BundlePaths() ([]string, error) {
	out, err := c.get(restdata.BundlesURL, nil, restdata.BundlesKind, restdata.BundlePathsTarget)
	if err != nil {
		return nil, err
	}
	return out.([]string), nil
}

// Bundles returns all installed bundles.
func (c *Client) Bundles() ([]framework.Bundle, error) {
	out, err := c.get(restdata.BundleRepresentationsURL, nil, restdata.BundleRepresentationsKind, restdata.BundleListTarget)
	if err != nil {
		return nil, err
	}
	return restdata.Bundles(out.([]interface{})), nil
}

// bundleURL is the URL of a bundle by id.
func (c *Client) bundleURL(id int64) (*url.URL, error) {
	return c.Template(restdata.BundleURL, bundleVars(id))
}

// subresource is the URL of a child of the bundle at u, such as its
// "state".
func subresource(u *url.URL, name string) *url.URL {
	out := *u
	out.Path = strings.TrimSuffix(u.Path, "/") + "/" + name
	out.RawPath = ""
	return &out
}

// Bundle returns a single bundle, or nil if there is no such bundle.
func (c *Client) Bundle(id int64) (*framework.Bundle, error) {
	url, err := c.bundleURL(id)
	if err != nil {
		return nil, err
	}
	return c.bundleAt(url)
}

// BundleAt returns the bundle at a path returned from BundlePaths
// or InstallBundle, or nil if there is no bundle there.
func (c *Client) BundleAt(path string) (*framework.Bundle, error) {
	url, err := c.URL.Parse(path)
	if err != nil {
		return nil, err
	}
	return c.bundleAt(url)
}

func (c *Client) bundleAt(url *url.URL) (*framework.Bundle, error) {
	out, err := c.fetch(http.MethodGet, url, nil, restdata.BundleKind, restdata.BundleTarget)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out.(*framework.Bundle), nil
}

// BundleState gets the state of a bundle.
func (c *Client) BundleState(id int64) (framework.BundleState, error) {
	url, err := c.bundleURL(id)
	if err != nil {
		return 0, err
	}
	return c.bundleStateAt(url)
}

// BundleStateAt gets the state of the bundle at a path.
func (c *Client) BundleStateAt(path string) (framework.BundleState, error) {
	url, err := c.URL.Parse(path)
	if err != nil {
		return 0, err
	}
	return c.bundleStateAt(url)
}

func (c *Client) bundleStateAt(url *url.URL) (framework.BundleState, error) {
	out, err := c.fetch(http.MethodGet, subresource(url, "state"), nil, restdata.BundleStateKind, restdata.BundleStatusTarget)
	if err != nil {
		return 0, err
	}
	return out.(*framework.BundleStatus).State, nil
}

// StartBundle starts a bundle.  options is a bit set of the
// framework.Start* constants.
func (c *Client) StartBundle(id int64, options int) error {
	return c.SetBundleState(id, framework.Active, options)
}

// StartBundleAt starts the bundle at a path.
func (c *Client) StartBundleAt(path string, options int) error {
	return c.SetBundleStateAt(path, framework.Active, options)
}

// StopBundle stops a bundle.  options is a bit set of the
// framework.Stop* constants.
func (c *Client) StopBundle(id int64, options int) error {
	return c.SetBundleState(id, framework.Resolved, options)
}

// StopBundleAt stops the bundle at a path.
func (c *Client) StopBundleAt(path string, options int) error {
	return c.SetBundleStateAt(path, framework.Resolved, options)
}

// SetBundleState moves a bundle to a new state.
func (c *Client) SetBundleState(id int64, state framework.BundleState, options int) error {
	url, err := c.bundleURL(id)
	if err != nil {
		return err
	}
	return c.setBundleStateAt(url, state, options)
}

// SetBundleStateAt moves the bundle at a path to a new state.
func (c *Client) SetBundleStateAt(path string, state framework.BundleState, options int) error {
	url, err := c.URL.Parse(path)
	if err != nil {
		return err
	}
	return c.setBundleStateAt(url, state, options)
}

func (c *Client) setBundleStateAt(url *url.URL, state framework.BundleState, options int) error {
	status := framework.BundleStatus{State: state, Options: options}
	in, err := c.encode(restdata.BundleStateKind, restdata.BundleStatusTarget, &status)
	if err != nil {
		return err
	}
	return c.exec(http.MethodPut, subresource(url, "state"), in)
}

// BundleHeaders gets the manifest headers of a bundle.
func (c *Client) BundleHeaders(id int64) (map[string]string, error) {
	url, err := c.bundleURL(id)
	if err != nil {
		return nil, err
	}
	return c.bundleHeadersAt(url)
}

// BundleHeadersAt gets the manifest headers of the bundle at a path.
func (c *Client) BundleHeadersAt(path string) (map[string]string, error) {
	url, err := c.URL.Parse(path)
	if err != nil {
		return nil, err
	}
	return c.bundleHeadersAt(url)
}

func (c *Client) bundleHeadersAt(url *url.URL) (map[string]string, error) {
	out, err := c.fetch(http.MethodGet, subresource(url, "header"), nil, restdata.BundleHeaderKind, restdata.BundleHeaderTarget)
	if err != nil {
		return nil, err
	}
	return out.(map[string]string), nil
}

// BundleStartLevel gets the start level settings of a bundle.
func (c *Client) BundleStartLevel(id int64) (framework.BundleStartLevel, error) {
	url, err := c.bundleURL(id)
	if err != nil {
		return framework.BundleStartLevel{}, err
	}
	return c.bundleStartLevelAt(url)
}

// BundleStartLevelAt gets the start level settings of the bundle at
// a path.
func (c *Client) BundleStartLevelAt(path string) (framework.BundleStartLevel, error) {
	url, err := c.URL.Parse(path)
	if err != nil {
		return framework.BundleStartLevel{}, err
	}
	return c.bundleStartLevelAt(url)
}

func (c *Client) bundleStartLevelAt(url *url.URL) (framework.BundleStartLevel, error) {
	out, err := c.fetch(http.MethodGet, subresource(url, "startlevel"), nil, restdata.BundleStartLevelKind, restdata.BundleStartLevelTarget)
	if err != nil {
		return framework.BundleStartLevel{}, err
	}
	return *out.(*framework.BundleStartLevel), nil
}

// SetBundleStartLevel changes the start level of a bundle.
func (c *Client) SetBundleStartLevel(id int64, level int) error {
	url, err := c.bundleURL(id)
	if err != nil {
		return err
	}
	return c.setBundleStartLevelAt(url, framework.BundleStartLevel{Bundle: id, StartLevel: level})
}

// SetBundleStartLevelAt changes the start level of the bundle at a
// path.
func (c *Client) SetBundleStartLevelAt(path string, level int) error {
	url, err := c.URL.Parse(path)
	if err != nil {
		return err
	}
	return c.setBundleStartLevelAt(url, framework.BundleStartLevel{StartLevel: level})
}

func (c *Client) setBundleStartLevelAt(url *url.URL, body framework.BundleStartLevel) error {
	in, err := c.encode(restdata.BundleStartLevelKind, restdata.BundleStartLevelTarget, &body)
	if err != nil {
		return err
	}
	return c.exec(http.MethodPut, subresource(url, "startlevel"), in)
}

// install posts a bundle and fetches the result.
func (c *Client) install(in *payload) (framework.Bundle, error) {
	url, err := c.Template(restdata.BundlesURL, nil)
	if err != nil {
		return framework.Bundle{}, err
	}
	path, err := c.postText(url, in)
	if err != nil {
		return framework.Bundle{}, err
	}
	bundle, err := c.BundleAt(path)
	if err == nil && bundle == nil {
		err = fmt.Errorf("Installed bundle at %q disappeared", path)
	}
	if err != nil {
		return framework.Bundle{}, err
	}
	return *bundle, nil
}

// InstallBundle installs a bundle, which the server reads from
// location.
func (c *Client) InstallBundle(location string) (framework.Bundle, error) {
	if location == "" {
		return framework.Bundle{}, errors.New("No bundle location given")
	}
	return c.install(text(location))
}

// InstallBundleStream installs a bundle from its content.  location,
// if not empty, is recorded as the bundle's location.
func (c *Client) InstallBundleStream(location string, r io.Reader) (framework.Bundle, error) {
	return c.install(&payload{
		Body:        r,
		ContentType: "application/octet-stream",
		Location:    location,
	})
}

// update puts new bundle content and fetches the result.
func (c *Client) update(id int64, in *payload) (framework.Bundle, error) {
	url, err := c.bundleURL(id)
	if err != nil {
		return framework.Bundle{}, err
	}
	if err = c.exec(http.MethodPut, url, in); err != nil {
		return framework.Bundle{}, err
	}
	bundle, err := c.bundleAt(url)
	if err == nil && bundle == nil {
		err = framework.ErrNoSuchBundle{ID: id}
	}
	if err != nil {
		return framework.Bundle{}, err
	}
	return *bundle, nil
}

// UpdateBundle updates a bundle from its current location.
func (c *Client) UpdateBundle(id int64) (framework.Bundle, error) {
	return c.update(id, text(""))
}

// UpdateBundleFrom updates a bundle from a new location.
func (c *Client) UpdateBundleFrom(id int64, location string) (framework.Bundle, error) {
	return c.update(id, text(location))
}

// UpdateBundleStream updates a bundle with new content.
func (c *Client) UpdateBundleStream(id int64, r io.Reader) (framework.Bundle, error) {
	return c.update(id, &payload{Body: r, ContentType: "application/octet-stream"})
}

// UninstallBundle removes a bundle.  The result is the bundle as it
// was just before, in state Uninstalled.
func (c *Client) UninstallBundle(id int64) (framework.Bundle, error) {
	url, err := c.bundleURL(id)
	if err != nil {
		return framework.Bundle{}, err
	}
	bundle, err := c.uninstallBundleAt(url)
	if err == nil && bundle == nil {
		err = framework.ErrNoSuchBundle{ID: id}
	}
	if err != nil {
		return framework.Bundle{}, err
	}
	return *bundle, nil
}

// UninstallBundleAt removes the bundle at a path.  The result is the
// bundle as it was just before, in state Uninstalled, or nil if there
// is no bundle there.
func (c *Client) UninstallBundleAt(path string) (*framework.Bundle, error) {
	url, err := c.URL.Parse(path)
	if err != nil {
		return nil, err
	}
	return c.uninstallBundleAt(url)
}

func (c *Client) uninstallBundleAt(url *url.URL) (*framework.Bundle, error) {
	bundle, err := c.bundleAt(url)
	if bundle == nil || err != nil {
		return nil, err
	}
	if err = c.exec(http.MethodDelete, url, nil); err != nil {
		return nil, err
	}
	bundle.State = framework.Uninstalled
	return bundle, nil
}

// ServicePaths lists the paths of the services matching an LDAP
// filter, or of all services if filter is empty.
func (c *Client) ServicePaths(filter string) ([]string, error) {
	out, err := c.get(restdata.ServicesURL, filterVars(filter), restdata.ServicesKind, restdata.ServicePathsTarget)
	if err != nil {
		return nil, err
	}
	return out.([]string), nil
}

// ServiceReferences returns the services matching an LDAP filter, or
// all services if filter is empty.
func (c *Client) ServiceReferences(filter string) ([]framework.ServiceReference, error) {
	out, err := c.get(restdata.ServiceRepresentationsURL, filterVars(filter), restdata.ServiceRepresentationsKind, restdata.ServiceListTarget)
	if err != nil {
		return nil, err
	}
	return restdata.Services(out.([]interface{})), nil
}

// ServiceReference returns a single service, or nil if there is no
// such service.
func (c *Client) ServiceReference(id int64) (*framework.ServiceReference, error) {
	url, err := c.Template(restdata.ServiceURL, serviceVars(id))
	if err != nil {
		return nil, err
	}
	return c.serviceAt(url)
}

// ServiceAt returns the service at a path returned from ServicePaths,
// or nil if there is no service there.
func (c *Client) ServiceAt(path string) (*framework.ServiceReference, error) {
	url, err := c.URL.Parse(path)
	if err != nil {
		return nil, err
	}
	return c.serviceAt(url)
}

func (c *Client) serviceAt(url *url.URL) (*framework.ServiceReference, error) {
	out, err := c.fetch(http.MethodGet, url, nil, restdata.ServiceKind, restdata.ServiceTarget)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out.(*framework.ServiceReference), nil
}

// Extensions lists the extensions attached to the server.
func (c *Client) Extensions() ([]framework.Extension, error) {
	out, err := c.get(restdata.ExtensionsURL, nil, restdata.ExtensionsKind, restdata.ExtensionListTarget)
	if err != nil {
		return nil, err
	}
	return restdata.Extensions(out.([]interface{})), nil
}
