// Copyright 2016-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package cache_test

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/diffeo/go-fwrest/cache"
	"github.com/diffeo/go-fwrest/framework"
	"github.com/diffeo/go-fwrest/framework/frameworktest"
	"github.com/diffeo/go-fwrest/memory"
)

// Suite runs the generic framework tests through the cache.
type Suite struct {
	frameworktest.Suite
}

func (s *Suite) SetupSuite() {
	s.Suite.SetupSuite()
	rt := memory.NewWithClock(s.Clock)
	s.Framework = cache.New(rt, 4)
	s.Registrar = rt
}

func TestFramework(t *testing.T) {
	suite.Run(t, &Suite{})
}

// counting counts manifest fetches from the framework it wraps.
type counting struct {
	framework.Framework
	fetches int
}

func (c *counting) BundleHeaders(id int64) (map[string]string, error) {
	c.fetches++
	return c.Framework.BundleHeaders(id)
}

func setup(t *testing.T) (*clock.Mock, *memory.Runtime, *counting, framework.Framework) {
	clk := clock.NewMock()
	rt := memory.NewWithClock(clk)
	c := &counting{Framework: rt}
	return clk, rt, c, cache.New(c, cache.DefaultSize)
}

func TestHeadersCached(t *testing.T) {
	_, rt, counter, fw := setup(t)
	bundle, err := rt.Install("test:cached.jar", nil)
	require.NoError(t, err)

	headers, err := fw.BundleHeaders(bundle.ID)
	require.NoError(t, err)
	assert.Equal(t, "cached", headers["Bundle-SymbolicName"])
	assert.Equal(t, 1, counter.fetches)

	// Callers get their own copy
	headers["Bundle-SymbolicName"] = "changed"
	headers, err = fw.BundleHeaders(bundle.ID)
	require.NoError(t, err)
	assert.Equal(t, "cached", headers["Bundle-SymbolicName"])
	assert.Equal(t, 1, counter.fetches)
}

func TestHeadersMissing(t *testing.T) {
	_, _, counter, fw := setup(t)
	_, err := fw.BundleHeaders(99)
	assert.Equal(t, framework.ErrNoSuchBundle{ID: 99}, err)
	_, err = fw.BundleHeaders(99)
	assert.Equal(t, framework.ErrNoSuchBundle{ID: 99}, err)
	assert.Equal(t, 0, counter.fetches)
}

func TestUpdateEvicts(t *testing.T) {
	clk, _, counter, fw := setup(t)
	bundle, err := fw.Install("test:evict.jar", nil)
	require.NoError(t, err)
	_, err = fw.BundleHeaders(bundle.ID)
	require.NoError(t, err)

	clk.Add(time.Second)
	_, err = fw.Update(bundle.ID, "", frameworktest.JarReader(map[string]string{
		"Bundle-SymbolicName": "com.example.evict",
		"Bundle-Version":      "2.0.0",
	}))
	require.NoError(t, err)

	headers, err := fw.BundleHeaders(bundle.ID)
	require.NoError(t, err)
	assert.Equal(t, "com.example.evict", headers["Bundle-SymbolicName"])
	assert.Equal(t, 2, counter.fetches)

	_, err = fw.Uninstall(bundle.ID)
	require.NoError(t, err)
	_, err = fw.BundleHeaders(bundle.ID)
	assert.Equal(t, framework.ErrNoSuchBundle{ID: bundle.ID}, err)
}

func TestOutsideUpdate(t *testing.T) {
	clk, rt, counter, fw := setup(t)
	bundle, err := rt.Install("test:outside.jar", nil)
	require.NoError(t, err)
	_, err = fw.BundleHeaders(bundle.ID)
	require.NoError(t, err)

	clk.Add(time.Second)
	_, err = rt.Update(bundle.ID, "", frameworktest.JarReader(map[string]string{
		"Bundle-SymbolicName": "com.example.outside",
	}))
	require.NoError(t, err)

	// Not noticed yet
	headers, err := fw.BundleHeaders(bundle.ID)
	require.NoError(t, err)
	assert.Equal(t, "outside", headers["Bundle-SymbolicName"])
	assert.Equal(t, 1, counter.fetches)

	_, err = fw.Bundles()
	require.NoError(t, err)
	headers, err = fw.BundleHeaders(bundle.ID)
	require.NoError(t, err)
	assert.Equal(t, "com.example.outside", headers["Bundle-SymbolicName"])
	assert.Equal(t, 2, counter.fetches)
}
