// Copyright 2016-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package cache provides caching of bundle manifest headers in front
// of another Framework.  Headers only change when a bundle is
// updated, and fetching them from a remote runtime costs a round
// trip, so a daemon proxying a remote runtime keeps recently used
// manifests locally.  Every other method passes straight through.
//
// Coherence
//
// Updates and uninstalls made through the cache evict the affected
// bundle immediately.  Changes made to the underlying runtime by
// someone else are noticed the next time the bundle passes through
// Bundle or Bundles with a different LastModified time:
//
//     headers, _ := cached.BundleHeaders(3)   // fetched and cached
//     other.Update(3, "", nil)                // somebody else updates
//     headers, _ = cached.BundleHeaders(3)    // still the old headers
//     cached.Bundles()                        // sees the new time
//     headers, _ = cached.BundleHeaders(3)    // fetched again
package cache

import (
	"io"

	"github.com/diffeo/go-fwrest/framework"
)

// DefaultSize is a reasonable number of bundles to cache.
const DefaultSize = 128

type cache struct {
	framework.Framework
	headers *lru
}

// New creates a new caching framework holding up to size manifests,
// wrapping some other framework.
func New(fw framework.Framework, size int) framework.Framework {
	return &cache{
		Framework: fw,
		headers:   newLRU(size),
	}
}

func (c *cache) observe(bundle framework.Bundle) {
	c.headers.Invalidate(bundle.ID, bundle.LastModified)
}

func (c *cache) Bundles() ([]framework.Bundle, error) {
	bundles, err := c.Framework.Bundles()
	for _, bundle := range bundles {
		c.observe(bundle)
	}
	return bundles, err
}

func (c *cache) Bundle(id int64) (framework.Bundle, error) {
	bundle, err := c.Framework.Bundle(id)
	if err == nil {
		c.observe(bundle)
	} else if _, missing := err.(framework.ErrNoSuchBundle); missing {
		c.headers.Remove(id)
	}
	return bundle, err
}

func (c *cache) Install(location string, content io.Reader) (framework.Bundle, error) {
	bundle, err := c.Framework.Install(location, content)
	if err == nil {
		c.observe(bundle)
	}
	return bundle, err
}

func (c *cache) Update(id int64, location string, content io.Reader) (framework.Bundle, error) {
	c.headers.Remove(id)
	bundle, err := c.Framework.Update(id, location, content)
	c.headers.Remove(id)
	return bundle, err
}

func (c *cache) Uninstall(id int64) (framework.Bundle, error) {
	bundle, err := c.Framework.Uninstall(id)
	c.headers.Remove(id)
	return bundle, err
}

func (c *cache) BundleHeaders(id int64) (map[string]string, error) {
	e, err := c.headers.Get(id, c.fetch)
	if err != nil {
		return nil, err
	}
	return copyHeaders(e.Headers), nil
}

// fetch gets the bundle before its headers, so that an update racing
// with the fetch leaves an entry stamped with the older time, which
// the next observation evicts.
func (c *cache) fetch(id int64) (entry, error) {
	bundle, err := c.Framework.Bundle(id)
	if err != nil {
		return entry{}, err
	}
	headers, err := c.Framework.BundleHeaders(id)
	if err != nil {
		return entry{}, err
	}
	return entry{
		ID:           id,
		LastModified: bundle.LastModified,
		Headers:      copyHeaders(headers),
	}, nil
}

func copyHeaders(headers map[string]string) map[string]string {
	result := make(map[string]string, len(headers))
	for k, v := range headers {
		result[k] = v
	}
	return result
}
