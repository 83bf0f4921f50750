// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package frameworktest provides generic functional tests for the
// Framework interface.  A typical implementation test module needs to
// wrap Suite to create its runtime:
//
//     package mybackend
//
//     import (
//             "testing"
//             "github.com/diffeo/go-fwrest/framework/frameworktest"
//             "github.com/stretchr/testify/suite"
//     )
//
//     // Suite is the per-backend generic test suite.
//     type Suite struct{
//             frameworktest.Suite
//     }
//
//     // SetupSuite does global setup for the test suite.
//     func (s *Suite) SetupSuite() {
//             s.Suite.SetupSuite()
//             rt := NewWithClock(s.Clock)
//             s.Framework = rt
//             s.Registrar = rt
//     }
//
//     // TestFramework runs the Framework generic tests.
//     func TestFramework(t *testing.T) {
//             suite.Run(t, &Suite{})
//     }
//
// Tests share one runtime.  Each installs bundles from locations
// derived from its own name and uninstalls them when it finishes.
package frameworktest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/suite"

	"github.com/diffeo/go-fwrest/framework"
)

// Suite is the generic Framework implementation test suite.
type Suite struct {
	suite.Suite

	// Clock contains the alternate time source to be used in tests.  It
	// is pre-initialized to a mock clock.
	Clock *clock.Mock

	// Framework contains the top-level interface to the runtime under
	// test.  It is set by importing packages.
	Framework framework.Framework

	// Registrar publishes services into the runtime under test.
	// If it is nil, tests that need services are skipped.
	Registrar framework.ServiceRegistrar

	installed []int64
}

// SetupSuite does one-time initialization for the test suite.
func (s *Suite) SetupSuite() {
	s.Clock = clock.NewMock()
}

// SetupTest resets per-test state.
func (s *Suite) SetupTest() {
	s.installed = nil
}

// TearDownTest uninstalls every bundle the test installed and
// restores the framework start level.
func (s *Suite) TearDownTest() {
	for _, id := range s.installed {
		// The test may have uninstalled it already
		_, _ = s.Framework.Uninstall(id)
	}
	err := s.Framework.SetStartLevel(framework.FrameworkStartLevel{
		StartLevel:              1,
		InitialBundleStartLevel: 1,
	})
	s.NoError(err)
}

// Location returns a bundle location unique to the running test.
func (s *Suite) Location(name string) string {
	return fmt.Sprintf("test:%v/%v.jar", s.T().Name(), name)
}

// Install installs a bundle from a location made by Location, fails
// the test if that fails, and arranges for the bundle to be
// uninstalled afterwards.
func (s *Suite) Install(name string) framework.Bundle {
	bundle, err := s.Framework.Install(s.Location(name), nil)
	s.Require().NoError(err)
	s.installed = append(s.installed, bundle.ID)
	return bundle
}

// Start installs and starts a bundle.
func (s *Suite) Start(name string) framework.Bundle {
	bundle := s.Install(name)
	err := s.Framework.SetBundleState(bundle.ID, framework.Active, 0)
	s.Require().NoError(err)
	return bundle
}

// State checks the state of a bundle.
func (s *Suite) State(expected framework.BundleState, id int64) bool {
	bundle, err := s.Framework.Bundle(id)
	return s.NoError(err) && s.Equal(expected, bundle.State,
		"expected %v, got %v", expected, bundle.State)
}

// Jar builds the content of a jar file whose manifest has the given
// headers.
func Jar(headers map[string]string) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("META-INF/MANIFEST.MF")
	if err != nil {
		panic(err)
	}
	var manifest strings.Builder
	manifest.WriteString("Manifest-Version: 1.0\r\n")
	for k, v := range headers {
		line := k + ": " + v
		// Manifest lines wrap at 72 bytes
		for len(line) > 72 {
			manifest.WriteString(line[:72] + "\r\n")
			line = " " + line[72:]
		}
		manifest.WriteString(line + "\r\n")
	}
	manifest.WriteString("\r\n")
	if _, err := w.Write([]byte(manifest.String())); err != nil {
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// JarReader returns a reader over a jar made by Jar.
func JarReader(headers map[string]string) io.Reader {
	return bytes.NewReader(Jar(headers))
}
