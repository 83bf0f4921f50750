// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package frameworktest

import (
	"bytes"
	"time"

	"github.com/diffeo/go-fwrest/framework"
)

// TestSystemBundle checks the fixed properties of bundle 0.
func (s *Suite) TestSystemBundle() {
	bundle, err := s.Framework.Bundle(framework.SystemBundleID)
	if s.NoError(err) {
		s.Equal(framework.SystemBundleID, bundle.ID)
		s.Equal("system.bundle", bundle.SymbolicName)
		s.Equal(framework.Active, bundle.State)
	}

	_, err = s.Framework.Uninstall(framework.SystemBundleID)
	s.Equal(framework.ErrSystemBundle, err)

	_, err = s.Framework.Update(framework.SystemBundleID, "", nil)
	s.Equal(framework.ErrSystemBundle, err)

	err = s.Framework.SetBundleState(framework.SystemBundleID, framework.Resolved, 0)
	s.Equal(framework.ErrSystemBundle, err)

	err = s.Framework.SetBundleStartLevel(framework.SystemBundleID, 3)
	s.Equal(framework.ErrSystemBundle, err)

	s.State(framework.Active, framework.SystemBundleID)
}

// TestInstallUninstall runs a bundle through its basic lifetime.
func (s *Suite) TestInstallUninstall() {
	bundle := s.Install("org.example.hello")
	s.NotEqual(framework.SystemBundleID, bundle.ID)
	s.Equal("org.example.hello", bundle.SymbolicName)
	s.Equal("0.0.0", bundle.Version)
	s.Equal(s.Location("org.example.hello"), bundle.Location)
	s.Equal(framework.Installed, bundle.State)
	s.Empty(bundle.RegisteredServices)
	s.Empty(bundle.ServicesInUse)

	fetched, err := s.Framework.Bundle(bundle.ID)
	if s.NoError(err) {
		s.Equal(bundle, fetched)
	}

	bundles, err := s.Framework.Bundles()
	if s.NoError(err) {
		ids := make([]int64, len(bundles))
		for i, b := range bundles {
			ids[i] = b.ID
		}
		s.Contains(ids, framework.SystemBundleID)
		s.Contains(ids, bundle.ID)
		s.IsIncreasing(ids)
	}

	// Installing the same location again is a no-op
	again, err := s.Framework.Install(bundle.Location, nil)
	if s.NoError(err) {
		s.Equal(bundle.ID, again.ID)
	}

	removed, err := s.Framework.Uninstall(bundle.ID)
	if s.NoError(err) {
		s.Equal(bundle.ID, removed.ID)
		s.Equal(framework.Uninstalled, removed.State)
	}

	_, err = s.Framework.Bundle(bundle.ID)
	s.Equal(framework.ErrNoSuchBundle{ID: bundle.ID}, err)

	_, err = s.Framework.Uninstall(bundle.ID)
	s.Equal(framework.ErrNoSuchBundle{ID: bundle.ID}, err)
}

// TestInstallContent installs a bundle from jar content and reads
// its headers.
func (s *Suite) TestInstallContent() {
	jar := Jar(map[string]string{
		"Bundle-SymbolicName": "org.example.content;singleton:=true",
		"Bundle-Version":      "2.1.0",
		"Bundle-Name":         "Content Bundle",
		"Bundle-Description":  "A bundle whose description is long enough that its manifest line has to wrap",
	})
	bundle, err := s.Framework.Install(s.Location("content"), bytes.NewReader(jar))
	if !s.NoError(err) {
		return
	}
	s.installed = append(s.installed, bundle.ID)
	s.Equal("org.example.content", bundle.SymbolicName)
	s.Equal("2.1.0", bundle.Version)

	headers, err := s.Framework.BundleHeaders(bundle.ID)
	if s.NoError(err) {
		s.Equal("Content Bundle", headers["Bundle-Name"])
		s.Equal("1.0", headers["Manifest-Version"])
		s.Equal("A bundle whose description is long enough that its manifest line has to wrap",
			headers["Bundle-Description"])
	}

	_, err = s.Framework.Install(s.Location("garbage"), bytes.NewReader([]byte("not a jar")))
	s.IsType(framework.ErrInvalidBundle{}, err)
}

// TestUpdate replaces a bundle's content.
func (s *Suite) TestUpdate() {
	bundle := s.Install("update")
	s.Clock.Add(5 * time.Second)

	jar := Jar(map[string]string{
		"Bundle-SymbolicName": "org.example.updated",
		"Bundle-Version":      "1.1.0",
	})
	updated, err := s.Framework.Update(bundle.ID, "", bytes.NewReader(jar))
	if s.NoError(err) {
		s.Equal(bundle.ID, updated.ID)
		s.Equal(bundle.Location, updated.Location)
		s.Equal("org.example.updated", updated.SymbolicName)
		s.Equal("1.1.0", updated.Version)
		s.Equal(bundle.LastModified+5000, updated.LastModified)
	}

	// An active bundle stays active across an update
	err = s.Framework.SetBundleState(bundle.ID, framework.Active, 0)
	s.NoError(err)
	updated, err = s.Framework.Update(bundle.ID, "", nil)
	if s.NoError(err) {
		s.Equal("update", updated.SymbolicName)
		s.Equal(framework.Active, updated.State)
	}

	_, err = s.Framework.Update(999999, "", nil)
	s.Equal(framework.ErrNoSuchBundle{ID: 999999}, err)
}

// TestBundleState starts and stops a bundle.
func (s *Suite) TestBundleState() {
	bundle := s.Install("state")

	err := s.Framework.SetBundleState(bundle.ID, framework.Active, 0)
	s.NoError(err)
	s.State(framework.Active, bundle.ID)

	// Starting again is harmless
	err = s.Framework.SetBundleState(bundle.ID, framework.Active, 0)
	s.NoError(err)
	s.State(framework.Active, bundle.ID)

	err = s.Framework.SetBundleState(bundle.ID, framework.Resolved, 0)
	s.NoError(err)
	s.State(framework.Resolved, bundle.ID)

	err = s.Framework.SetBundleState(bundle.ID, framework.Installed, 0)
	s.Error(err)
	s.State(framework.Resolved, bundle.ID)

	err = s.Framework.SetBundleState(999999, framework.Active, 0)
	s.Equal(framework.ErrNoSuchBundle{ID: 999999}, err)
}

// TestLazyActivation starts a bundle with a lazy activation policy.
func (s *Suite) TestLazyActivation() {
	jar := Jar(map[string]string{
		"Bundle-SymbolicName":     "org.example.lazy",
		"Bundle-ActivationPolicy": "lazy",
	})
	bundle, err := s.Framework.Install(s.Location("lazy"), bytes.NewReader(jar))
	if !s.NoError(err) {
		return
	}
	s.installed = append(s.installed, bundle.ID)

	err = s.Framework.SetBundleState(bundle.ID, framework.Active, framework.StartActivationPolicy)
	s.NoError(err)
	s.State(framework.Starting, bundle.ID)

	level, err := s.Framework.BundleStartLevel(bundle.ID)
	if s.NoError(err) {
		s.True(level.ActivationPolicyUsed)
		s.True(level.PersistentlyStarted)
	}

	err = s.Framework.SetBundleState(bundle.ID, framework.Resolved, 0)
	s.NoError(err)
	s.State(framework.Resolved, bundle.ID)
}

// TestAbsentBundle checks every bundle operation against an id that
// does not exist.
func (s *Suite) TestAbsentBundle() {
	absent := framework.ErrNoSuchBundle{ID: 999999}

	_, err := s.Framework.Bundle(999999)
	s.Equal(absent, err)

	_, err = s.Framework.BundleHeaders(999999)
	s.Equal(absent, err)

	_, err = s.Framework.BundleStartLevel(999999)
	s.Equal(absent, err)

	err = s.Framework.SetBundleStartLevel(999999, 2)
	s.Equal(absent, err)

	_, err = s.Framework.Uninstall(999999)
	s.Equal(absent, err)
}
