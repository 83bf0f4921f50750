// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package frameworktest

import (
	"github.com/diffeo/go-fwrest/framework"
)

// TestFrameworkStartLevel sets and reads the framework start level.
func (s *Suite) TestFrameworkStartLevel() {
	level, err := s.Framework.StartLevel()
	if s.NoError(err) {
		s.Equal(framework.FrameworkStartLevel{StartLevel: 1, InitialBundleStartLevel: 1}, level)
	}

	err = s.Framework.SetStartLevel(framework.FrameworkStartLevel{StartLevel: 3, InitialBundleStartLevel: 2})
	s.NoError(err)
	level, err = s.Framework.StartLevel()
	if s.NoError(err) {
		s.Equal(framework.FrameworkStartLevel{StartLevel: 3, InitialBundleStartLevel: 2}, level)
	}

	// Zero initial level leaves it alone
	err = s.Framework.SetStartLevel(framework.FrameworkStartLevel{StartLevel: 4})
	s.NoError(err)
	level, err = s.Framework.StartLevel()
	if s.NoError(err) {
		s.Equal(framework.FrameworkStartLevel{StartLevel: 4, InitialBundleStartLevel: 2}, level)
	}

	// New bundles get the initial level
	bundle := s.Install("initial")
	bundleLevel, err := s.Framework.BundleStartLevel(bundle.ID)
	if s.NoError(err) {
		s.Equal(framework.BundleStartLevel{Bundle: bundle.ID, StartLevel: 2}, bundleLevel)
	}

	err = s.Framework.SetStartLevel(framework.FrameworkStartLevel{StartLevel: 0})
	s.Error(err)
}

// TestBundleStartLevel checks that start levels gate activation.
func (s *Suite) TestBundleStartLevel() {
	bundle := s.Install("gated")

	err := s.Framework.SetBundleStartLevel(bundle.ID, 2)
	s.NoError(err)

	// Persistent start at level 1 leaves it resolved
	err = s.Framework.SetBundleState(bundle.ID, framework.Active, 0)
	s.NoError(err)
	s.State(framework.Resolved, bundle.ID)
	level, err := s.Framework.BundleStartLevel(bundle.ID)
	if s.NoError(err) {
		s.Equal(framework.BundleStartLevel{
			Bundle:              bundle.ID,
			StartLevel:          2,
			PersistentlyStarted: true,
		}, level)
	}

	// Raising the framework level starts it
	err = s.Framework.SetStartLevel(framework.FrameworkStartLevel{StartLevel: 2})
	s.NoError(err)
	s.State(framework.Active, bundle.ID)

	// Raising the bundle level stops it again
	err = s.Framework.SetBundleStartLevel(bundle.ID, 3)
	s.NoError(err)
	s.State(framework.Resolved, bundle.ID)

	err = s.Framework.SetBundleStartLevel(bundle.ID, 2)
	s.NoError(err)
	s.State(framework.Active, bundle.ID)

	// Lowering the framework level stops it
	err = s.Framework.SetStartLevel(framework.FrameworkStartLevel{StartLevel: 1})
	s.NoError(err)
	s.State(framework.Resolved, bundle.ID)

	err = s.Framework.SetBundleStartLevel(bundle.ID, 0)
	s.Error(err)
}

// TestTransientStart checks that a transient start fails when the
// start level does not allow it, and does not persist.
func (s *Suite) TestTransientStart() {
	bundle := s.Install("transient")

	err := s.Framework.SetBundleStartLevel(bundle.ID, 5)
	s.NoError(err)
	err = s.Framework.SetBundleState(bundle.ID, framework.Active, framework.StartTransient)
	s.Error(err)

	err = s.Framework.SetBundleStartLevel(bundle.ID, 1)
	s.NoError(err)
	err = s.Framework.SetBundleState(bundle.ID, framework.Active, framework.StartTransient)
	s.NoError(err)
	s.State(framework.Active, bundle.ID)

	level, err := s.Framework.BundleStartLevel(bundle.ID)
	if s.NoError(err) {
		s.False(level.PersistentlyStarted)
	}
}
