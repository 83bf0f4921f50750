// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package memory provides an in-process, in-memory implementation of
// framework.Framework.  There is no persistence and no class loading:
// a bundle is its manifest headers plus lifecycle state, and a
// service is a property map.  The entire system is behind a single
// global semaphore to protect against concurrent updates; in some
// cases this can limit performance in the name of correctness.
//
// This is mostly intended as a simple reference implementation of
// framework.Framework that can be used for testing, including
// in-process testing of the REST layer.  It also implements
// framework.ServiceRegistrar so that tests and embedding programs can
// publish services on behalf of bundles.
package memory

import (
	"io"
	"sort"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/diffeo/go-fwrest/framework"
)

// Runtime is an in-memory bundle runtime.
type Runtime struct {
	sem   sync.Mutex
	clock clock.Clock

	startLevel              int
	initialBundleStartLevel int

	bundles      map[int64]*bundle
	byLocation   map[string]*bundle
	nextBundleID int64

	services      map[int64]*service
	nextServiceID int64
}

// New creates a new in-memory runtime using the system clock.
func New() *Runtime {
	return NewWithClock(clock.New())
}

// NewWithClock creates a new in-memory runtime with an alternate time
// source, generally a mock clock for tests.
func NewWithClock(clk clock.Clock) *Runtime {
	rt := &Runtime{
		clock:                   clk,
		startLevel:              1,
		initialBundleStartLevel: 1,
		bundles:                 make(map[int64]*bundle),
		byLocation:              make(map[string]*bundle),
		nextBundleID:            1,
		services:                make(map[int64]*service),
		nextServiceID:           1,
	}
	system := newSystemBundle(rt.clock.Now())
	rt.bundles[system.id] = system
	rt.byLocation[system.location] = system
	return rt
}

// do runs f holding the global lock.
func (rt *Runtime) do(f func() error) error {
	rt.sem.Lock()
	defer rt.sem.Unlock()
	return f()
}

// lookup finds a bundle by id.  Call holding the global lock.
func (rt *Runtime) lookup(id int64) (*bundle, error) {
	b, present := rt.bundles[id]
	if !present {
		return nil, framework.ErrNoSuchBundle{ID: id}
	}
	return b, nil
}

// sortedBundles returns every bundle in id order.  Call holding the
// global lock.
func (rt *Runtime) sortedBundles() []*bundle {
	result := make([]*bundle, 0, len(rt.bundles))
	for _, b := range rt.bundles {
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].id < result[j].id })
	return result
}

// framework.Framework interface:

// StartLevel returns the framework start level.
func (rt *Runtime) StartLevel() (level framework.FrameworkStartLevel, err error) {
	err = rt.do(func() error {
		level.StartLevel = rt.startLevel
		level.InitialBundleStartLevel = rt.initialBundleStartLevel
		return nil
	})
	return
}

// SetStartLevel changes the framework start level.  Persistently
// started bundles at or below the new level become active, and active
// bundles above it stop, lowest level first when rising and highest
// first when falling.
func (rt *Runtime) SetStartLevel(level framework.FrameworkStartLevel) error {
	if level.StartLevel < 1 || level.InitialBundleStartLevel < 0 {
		return framework.ErrBadStartLevel
	}
	return rt.do(func() error {
		rt.startLevel = level.StartLevel
		if level.InitialBundleStartLevel > 0 {
			rt.initialBundleStartLevel = level.InitialBundleStartLevel
		}
		rt.applyStartLevel()
		return nil
	})
}

// applyStartLevel brings every bundle in line with the framework
// start level.  Call holding the global lock.
func (rt *Runtime) applyStartLevel() {
	bundles := rt.sortedBundles()
	sort.SliceStable(bundles, func(i, j int) bool {
		return bundles[i].startLevel > bundles[j].startLevel
	})
	for _, b := range bundles {
		if b.isActive() && b.startLevel > rt.startLevel {
			rt.deactivate(b)
		}
	}
	for i := len(bundles) - 1; i >= 0; i-- {
		b := bundles[i]
		if !b.isActive() && b.persistentlyStarted && b.startLevel <= rt.startLevel {
			rt.activate(b)
		}
	}
}

// Bundles returns every installed bundle in id order.
func (rt *Runtime) Bundles() (bundles []framework.Bundle, err error) {
	err = rt.do(func() error {
		for _, b := range rt.sortedBundles() {
			bundles = append(bundles, rt.bundleDTO(b))
		}
		return nil
	})
	return
}

// Bundle returns a single bundle.
func (rt *Runtime) Bundle(id int64) (result framework.Bundle, err error) {
	err = rt.do(func() error {
		b, err := rt.lookup(id)
		if err != nil {
			return err
		}
		result = rt.bundleDTO(b)
		return nil
	})
	return
}

// Install installs a bundle.  content, if not nil, is a jar file;
// otherwise the bundle is read from a file: location if one exists,
// or its headers are made up from the location name.
func (rt *Runtime) Install(location string, content io.Reader) (result framework.Bundle, err error) {
	var headers map[string]string
	headers, err = loadHeaders(location, content)
	if err != nil {
		return
	}
	err = rt.do(func() error {
		if b, exists := rt.byLocation[location]; exists {
			result = rt.bundleDTO(b)
			return nil
		}
		b := &bundle{
			id:         rt.nextBundleID,
			location:   location,
			headers:    headers,
			state:      framework.Installed,
			startLevel: rt.initialBundleStartLevel,
			modified:   rt.clock.Now(),
			using:      make(map[int64]int),
		}
		rt.nextBundleID++
		rt.bundles[b.id] = b
		rt.byLocation[location] = b
		result = rt.bundleDTO(b)
		return nil
	})
	return
}

// Update replaces a bundle's headers, restarting it if it was active.
func (rt *Runtime) Update(id int64, location string, content io.Reader) (result framework.Bundle, err error) {
	if id == framework.SystemBundleID {
		err = framework.ErrSystemBundle
		return
	}
	if location == "" && content == nil {
		// Re-read from the bundle's own location
		err = rt.do(func() error {
			b, err := rt.lookup(id)
			if err == nil {
				location = b.location
			}
			return err
		})
		if err != nil {
			return
		}
	}
	var headers map[string]string
	headers, err = loadHeaders(location, content)
	if err != nil {
		return
	}
	err = rt.do(func() error {
		b, err := rt.lookup(id)
		if err != nil {
			return err
		}
		wasActive := b.isActive()
		if wasActive {
			rt.deactivate(b)
		}
		b.headers = headers
		b.modified = rt.clock.Now()
		if wasActive {
			rt.activate(b)
		} else {
			b.state = framework.Installed
		}
		result = rt.bundleDTO(b)
		return nil
	})
	return
}

// Uninstall removes a bundle, stopping it first.
func (rt *Runtime) Uninstall(id int64) (result framework.Bundle, err error) {
	if id == framework.SystemBundleID {
		err = framework.ErrSystemBundle
		return
	}
	err = rt.do(func() error {
		b, err := rt.lookup(id)
		if err != nil {
			return err
		}
		if b.isActive() {
			rt.deactivate(b)
		}
		rt.releaseAll(b)
		delete(rt.bundles, b.id)
		delete(rt.byLocation, b.location)
		b.state = framework.Uninstalled
		b.modified = rt.clock.Now()
		result = rt.bundleDTO(b)
		return nil
	})
	return
}

// SetBundleState starts (Active) or stops (Resolved) a bundle.
func (rt *Runtime) SetBundleState(id int64, state framework.BundleState, options int) error {
	return rt.do(func() error {
		b, err := rt.lookup(id)
		if err != nil {
			return err
		}
		switch state {
		case framework.Active:
			return rt.start(b, options)
		case framework.Resolved:
			return rt.stop(b, options)
		}
		return framework.ErrInvalidState{ID: id, State: state}
	})
}

// BundleHeaders returns a copy of a bundle's manifest headers.
func (rt *Runtime) BundleHeaders(id int64) (headers map[string]string, err error) {
	err = rt.do(func() error {
		b, err := rt.lookup(id)
		if err != nil {
			return err
		}
		headers = make(map[string]string, len(b.headers))
		for k, v := range b.headers {
			headers[k] = v
		}
		return nil
	})
	return
}

// BundleStartLevel returns a bundle's start level settings.
func (rt *Runtime) BundleStartLevel(id int64) (result framework.BundleStartLevel, err error) {
	err = rt.do(func() error {
		b, err := rt.lookup(id)
		if err != nil {
			return err
		}
		result = framework.BundleStartLevel{
			Bundle:               b.id,
			StartLevel:           b.startLevel,
			ActivationPolicyUsed: b.activationPolicyUsed,
			PersistentlyStarted:  b.persistentlyStarted,
		}
		return nil
	})
	return
}

// SetBundleStartLevel changes a bundle's start level, starting or
// stopping it as the framework start level requires.
func (rt *Runtime) SetBundleStartLevel(id int64, level int) error {
	if id == framework.SystemBundleID {
		return framework.ErrSystemBundle
	}
	if level < 1 {
		return framework.ErrBadStartLevel
	}
	return rt.do(func() error {
		b, err := rt.lookup(id)
		if err != nil {
			return err
		}
		b.startLevel = level
		if b.isActive() && b.startLevel > rt.startLevel {
			rt.deactivate(b)
		} else if !b.isActive() && b.persistentlyStarted && b.startLevel <= rt.startLevel {
			rt.activate(b)
		}
		return nil
	})
}
