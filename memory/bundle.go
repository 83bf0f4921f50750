// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"sort"
	"strings"
	"time"

	"github.com/diffeo/go-fwrest/framework"
)

// systemLocation is the location of the system bundle.
const systemLocation = "System Bundle"

type bundle struct {
	id       int64
	location string
	headers  map[string]string
	state    framework.BundleState
	modified time.Time

	startLevel           int
	persistentlyStarted  bool
	activationPolicyUsed bool

	// services holds the ids of services this bundle registered.
	services []int64

	// using counts this bundle's uses of each service.
	using map[int64]int
}

func newSystemBundle(now time.Time) *bundle {
	return &bundle{
		id:       framework.SystemBundleID,
		location: systemLocation,
		headers: map[string]string{
			"Bundle-SymbolicName":    "system.bundle",
			"Bundle-Name":            "System Bundle",
			"Bundle-Version":         "1.0.0",
			"Bundle-ManifestVersion": "2",
		},
		state:               framework.Active,
		modified:            now,
		persistentlyStarted: true,
		using:               make(map[int64]int),
	}
}

// isActive returns true if the bundle is active or waiting for lazy
// activation.
func (b *bundle) isActive() bool {
	return b.state == framework.Active || b.state == framework.Starting
}

// symbolicName returns the bundle's symbolic name without directives.
func (b *bundle) symbolicName() string {
	name := b.headers["Bundle-SymbolicName"]
	if semi := strings.IndexByte(name, ';'); semi >= 0 {
		name = name[:semi]
	}
	return strings.TrimSpace(name)
}

func (b *bundle) version() string {
	version := strings.TrimSpace(b.headers["Bundle-Version"])
	if version == "" {
		return "0.0.0"
	}
	return version
}

// lazy returns true if the bundle declares a lazy activation policy.
func (b *bundle) lazy() bool {
	policy := b.headers["Bundle-ActivationPolicy"]
	if semi := strings.IndexByte(policy, ';'); semi >= 0 {
		policy = policy[:semi]
	}
	return strings.TrimSpace(policy) == "lazy"
}

// bundleDTO builds the transfer record for a bundle.  Call holding the
// global lock.
func (rt *Runtime) bundleDTO(b *bundle) framework.Bundle {
	registered := make([]int64, len(b.services))
	copy(registered, b.services)
	sort.Slice(registered, func(i, j int) bool { return registered[i] < registered[j] })

	inUse := make([]int64, 0, len(b.using))
	for id := range b.using {
		inUse = append(inUse, id)
	}
	sort.Slice(inUse, func(i, j int) bool { return inUse[i] < inUse[j] })

	return framework.Bundle{
		ID:                 b.id,
		SymbolicName:       b.symbolicName(),
		Version:            b.version(),
		State:              b.state,
		Location:           b.location,
		LastModified:       b.modified.UnixNano() / int64(time.Millisecond),
		RegisteredServices: registered,
		ServicesInUse:      inUse,
	}
}

// start handles a request to move a bundle to Active.  Call holding
// the global lock.
func (rt *Runtime) start(b *bundle, options int) error {
	if b.id == framework.SystemBundleID {
		return nil
	}
	transient := options&framework.StartTransient != 0
	if !transient {
		b.persistentlyStarted = true
		b.activationPolicyUsed = options&framework.StartActivationPolicy != 0
	}
	if b.startLevel > rt.startLevel {
		if transient {
			return framework.ErrInvalidState{ID: b.id, State: framework.Active}
		}
		// Started when the framework start level rises
		if b.state == framework.Installed {
			b.state = framework.Resolved
		}
		return nil
	}
	if !b.isActive() {
		rt.activate(b)
	}
	return nil
}

// stop handles a request to move a bundle to Resolved.  Call holding
// the global lock.
func (rt *Runtime) stop(b *bundle, options int) error {
	if b.id == framework.SystemBundleID {
		return framework.ErrSystemBundle
	}
	if options&framework.StopTransient == 0 {
		b.persistentlyStarted = false
	}
	if b.isActive() {
		rt.deactivate(b)
	} else {
		b.state = framework.Resolved
	}
	return nil
}

// activate moves a bundle to Active, or to Starting if it is waiting
// for lazy activation.  Call holding the global lock.
func (rt *Runtime) activate(b *bundle) {
	if b.activationPolicyUsed && b.lazy() {
		b.state = framework.Starting
	} else {
		b.state = framework.Active
	}
}

// deactivate moves a bundle to Resolved, withdrawing its services and
// releasing the services it uses.  Call holding the global lock.
func (rt *Runtime) deactivate(b *bundle) {
	for _, id := range append([]int64(nil), b.services...) {
		rt.unregister(id)
	}
	rt.releaseAll(b)
	b.state = framework.Resolved
}

// releaseAll drops every service use of a bundle.  Call holding the
// global lock.
func (rt *Runtime) releaseAll(b *bundle) {
	for id := range b.using {
		if s, present := rt.services[id]; present {
			delete(s.using, b.id)
		}
	}
	b.using = make(map[int64]int)
}
