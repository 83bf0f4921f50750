// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"io"

	"github.com/diffeo/go-fwrest/framework"
)

// Framework adapts a client to the framework.Framework interface, so
// that a remote runtime can be managed like a local one.  Absent
// bundles and services are reported as framework.ErrNoSuchBundle and
// framework.ErrNoSuchService.
func Framework(c *Client) framework.Framework {
	return &restFramework{client: c}
}

type restFramework struct {
	client *Client
}

func (f *restFramework) StartLevel() (framework.FrameworkStartLevel, error) {
	return f.client.FrameworkStartLevel()
}

func (f *restFramework) SetStartLevel(level framework.FrameworkStartLevel) error {
	return f.client.SetFrameworkStartLevel(level)
}

func (f *restFramework) Bundles() ([]framework.Bundle, error) {
	return f.client.Bundles()
}

func (f *restFramework) Bundle(id int64) (framework.Bundle, error) {
	bundle, err := f.client.Bundle(id)
	if err == nil && bundle == nil {
		err = framework.ErrNoSuchBundle{ID: id}
	}
	if err != nil {
		return framework.Bundle{}, err
	}
	return *bundle, nil
}

func (f *restFramework) Install(location string, content io.Reader) (framework.Bundle, error) {
	if content == nil {
		return f.client.InstallBundle(location)
	}
	return f.client.InstallBundleStream(location, content)
}

func (f *restFramework) Update(id int64, location string, content io.Reader) (framework.Bundle, error) {
	switch {
	case content != nil:
		return f.client.UpdateBundleStream(id, content)
	case location != "":
		return f.client.UpdateBundleFrom(id, location)
	default:
		return f.client.UpdateBundle(id)
	}
}

func (f *restFramework) Uninstall(id int64) (framework.Bundle, error) {
	return f.client.UninstallBundle(id)
}

func (f *restFramework) SetBundleState(id int64, state framework.BundleState, options int) error {
	return f.client.SetBundleState(id, state, options)
}

func (f *restFramework) BundleHeaders(id int64) (map[string]string, error) {
	return f.client.BundleHeaders(id)
}

func (f *restFramework) BundleStartLevel(id int64) (framework.BundleStartLevel, error) {
	return f.client.BundleStartLevel(id)
}

func (f *restFramework) SetBundleStartLevel(id int64, level int) error {
	return f.client.SetBundleStartLevel(id, level)
}

func (f *restFramework) Services(filter string) ([]framework.ServiceReference, error) {
	return f.client.ServiceReferences(filter)
}

func (f *restFramework) Service(id int64) (framework.ServiceReference, error) {
	service, err := f.client.ServiceReference(id)
	if err == nil && service == nil {
		err = framework.ErrNoSuchService{ID: id}
	}
	if err != nil {
		return framework.ServiceReference{}, err
	}
	return *service, nil
}
