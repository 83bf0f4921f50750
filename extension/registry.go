// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package extension lets third parties add REST resources to a
// running server.  An extension is a Unit: an http.Handler plus the
// path it wants under the server's extension mount point.  Units come
// and go through a Registry; a Bridge listens to the registry and
// attaches and detaches the units' handlers on a router.  A Watcher
// feeds a registry from YAML declarations in a directory.
package extension

import (
	"errors"
	"net/http"
	"sort"
	"sync"

	"github.com/satori/go.uuid"
)

// ErrNoID is returned by Registry.Register for a unit without an id.
var ErrNoID = errors.New("Extension unit has no id")

// Unit is one REST extension.
type Unit struct {
	// ID identifies the unit for the lifetime of the registry.
	// Registering a unit with an existing id updates it.
	ID string

	// Name is a human-readable name for the extension.
	Name string

	// Path is where the extension wants to be mounted, relative
	// to the extension mount point, as a path template such as
	// "greeter/{name}".
	Path string

	// Handler serves requests to the extension.
	Handler http.Handler
}

// NewUnit creates a unit with a fresh random id.
func NewUnit(name, path string, handler http.Handler) Unit {
	return Unit{
		ID:      uuid.NewV4().String(),
		Name:    name,
		Path:    path,
		Handler: handler,
	}
}

// Listener hears about units coming and going in a Registry.
type Listener interface {
	// OnAvailable is called when a new unit is registered.
	OnAvailable(unit Unit)

	// OnUnavailable is called when a unit is unregistered.
	OnUnavailable(unit Unit)

	// OnUpdated is called when a unit is registered again with
	// the same id.
	OnUpdated(old, unit Unit)
}

// Registry is the live set of extension units.  Listeners are called
// synchronously, in the order they were added, while the registry is
// locked; they must not call back into the registry.
type Registry struct {
	lock      sync.Mutex
	units     map[string]Unit
	listeners []Listener
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{units: make(map[string]Unit)}
}

// Register adds a unit, or replaces the unit with the same id.
func (r *Registry) Register(unit Unit) error {
	if unit.ID == "" {
		return ErrNoID
	}
	r.lock.Lock()
	defer r.lock.Unlock()

	old, exists := r.units[unit.ID]
	r.units[unit.ID] = unit
	for _, l := range r.listeners {
		if exists {
			l.OnUpdated(old, unit)
		} else {
			l.OnAvailable(unit)
		}
	}
	return nil
}

// Unregister removes a unit.  Returns false if there was no unit with
// this id.
func (r *Registry) Unregister(id string) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	unit, exists := r.units[id]
	if !exists {
		return false
	}
	delete(r.units, id)
	for _, l := range r.listeners {
		l.OnUnavailable(unit)
	}
	return true
}

// Unit returns the unit with some id.
func (r *Registry) Unit(id string) (Unit, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	unit, exists := r.units[id]
	return unit, exists
}

// Units returns every registered unit, sorted by name and then id.
func (r *Registry) Units() []Unit {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.sorted()
}

func (r *Registry) sorted() []Unit {
	units := make([]Unit, 0, len(r.units))
	for _, unit := range r.units {
		units = append(units, unit)
	}
	sort.Slice(units, func(i, j int) bool {
		if units[i].Name != units[j].Name {
			return units[i].Name < units[j].Name
		}
		return units[i].ID < units[j].ID
	})
	return units
}

// AddListener adds a listener, and immediately tells it about every
// unit already registered.
func (r *Registry) AddListener(l Listener) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.listeners = append(r.listeners, l)
	for _, unit := range r.sorted() {
		l.OnAvailable(unit)
	}
}
