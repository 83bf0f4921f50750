// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package framework defines an abstract management API to a running
// bundle runtime.
//
// A runtime hosts bundles, units that can be installed, started,
// stopped, updated, and uninstalled while the runtime keeps running.
// Active bundles publish services, which other bundles can find and
// use.  Start levels order activation: a bundle is only active while
// its start level is at most the framework's start level.
//
// Everything that crosses this interface is a plain data-transfer
// record (DTO).  DTOs refer to each other by identifier, never by
// pointer; a caller that wants the bundle that registered a service
// looks it up again by ServiceReference.Bundle.
//
// Implementations must be safe to call from multiple goroutines.
package framework

import "io"

// Framework is the principal management interface to a bundle
// runtime.  The memory package provides an in-process reference
// implementation; the restclient package provides one that talks to
// a remote runtime over HTTP.
type Framework interface {
	// StartLevel returns the framework's current start level and
	// the start level assigned to newly installed bundles.
	StartLevel() (FrameworkStartLevel, error)

	// SetStartLevel changes the framework start level, starting
	// or stopping bundles as required.  If
	// InitialBundleStartLevel is positive it replaces the
	// initial start level for bundles installed later.
	SetStartLevel(level FrameworkStartLevel) error

	// Bundles returns every installed bundle, ordered by id.
	Bundles() ([]Bundle, error)

	// Bundle returns a single bundle.  If no bundle has this id,
	// returns ErrNoSuchBundle.
	Bundle(id int64) (Bundle, error)

	// Install installs a new bundle.  If content is nil the
	// runtime obtains the bundle from location itself.  If a
	// bundle is already installed from location, returns that
	// bundle unchanged.
	Install(location string, content io.Reader) (Bundle, error)

	// Update replaces a bundle's content.  If content is nil the
	// bundle is re-read from location, or from its existing
	// location if that is empty too.
	Update(id int64, location string, content io.Reader) (Bundle, error)

	// Uninstall removes a bundle, stopping it first if needed.
	// Returns the final record of the bundle, in state
	// Uninstalled.
	Uninstall(id int64) (Bundle, error)

	// SetBundleState moves a bundle to Active (starting it) or
	// Resolved (stopping it).  options is a bit set of the
	// Start* or Stop* constants.
	SetBundleState(id int64, state BundleState, options int) error

	// BundleHeaders returns the manifest headers of a bundle.
	BundleHeaders(id int64) (map[string]string, error)

	// BundleStartLevel returns the start level information for a
	// single bundle.
	BundleStartLevel(id int64) (BundleStartLevel, error)

	// SetBundleStartLevel changes a bundle's start level,
	// starting or stopping it if required.
	SetBundleStartLevel(id int64, level int) error

	// Services returns the registered services whose properties
	// match an LDAP-style filter, ordered by id.  An empty
	// filter matches everything.  A malformed filter returns
	// ErrInvalidFilter.
	Services(filter string) ([]ServiceReference, error)

	// Service returns a single registered service.  If no
	// service has this id, returns ErrNoSuchService.
	Service(id int64) (ServiceReference, error)
}

// ServiceRegistrar is implemented by runtimes that let in-process
// code publish services on behalf of a bundle.  It is not part of
// the remote management surface.
type ServiceRegistrar interface {
	// RegisterService publishes a service for an active bundle
	// and returns its id.  properties must include "objectClass".
	RegisterService(bundle int64, properties map[string]interface{}) (int64, error)

	// UnregisterService withdraws a service.
	UnregisterService(id int64) error

	// UseService records that bundle is using a service.
	UseService(bundle, service int64) error

	// UngetService releases a service use.
	UngetService(bundle, service int64) error
}

// SystemBundleID is the id of the bundle representing the framework
// itself.
const SystemBundleID int64 = 0

// Options to SetBundleState.
const (
	// StartTransient starts a bundle without recording that it
	// should be started again when the start level allows.
	StartTransient = 0x01

	// StartActivationPolicy starts a bundle according to its
	// declared activation policy.
	StartActivationPolicy = 0x02

	// StopTransient stops a bundle without clearing its
	// persistent started flag.
	StopTransient = 0x01
)

// Well-known service property names.
const (
	ObjectClass     = "objectClass"
	ServiceID       = "service.id"
	ServiceBundleID = "service.bundleid"
)

// BundleState is the lifecycle state of a bundle.  The numeric values
// are part of the wire format.
type BundleState int

const (
	// Uninstalled bundles have been removed and are only seen
	// in the record returned by Uninstall.
	Uninstalled BundleState = 0x01

	// Installed bundles are present but not yet resolved.
	Installed BundleState = 0x02

	// Resolved bundles are ready to start, or have stopped.
	Resolved BundleState = 0x04

	// Starting bundles are being activated.
	Starting BundleState = 0x08

	// Stopping bundles are being deactivated.
	Stopping BundleState = 0x10

	// Active bundles are running and may publish services.
	Active BundleState = 0x20
)

// FrameworkStartLevel describes the framework's start level.
type FrameworkStartLevel struct {
	// StartLevel is the active start level of the framework.
	StartLevel int

	// InitialBundleStartLevel is assigned to bundles as they
	// are installed.
	InitialBundleStartLevel int
}

// Bundle describes an installed bundle.
type Bundle struct {
	ID           int64
	SymbolicName string
	Version      string
	State        BundleState
	Location     string

	// LastModified is the time of the last install or update,
	// in milliseconds since the Unix epoch.
	LastModified int64

	// RegisteredServices holds the ids of services this bundle
	// has registered.
	RegisteredServices []int64

	// ServicesInUse holds the ids of services this bundle is
	// using.
	ServicesInUse []int64
}

// BundleStatus is the body of a bundle state change: the target
// state and the options to the start or stop operation.
type BundleStatus struct {
	State   BundleState
	Options int
}

// BundleStartLevel describes a single bundle's start level settings.
type BundleStartLevel struct {
	// Bundle is the id of the bundle.
	Bundle int64

	StartLevel           int
	ActivationPolicyUsed bool
	PersistentlyStarted  bool
}

// ServiceReference describes a registered service.
type ServiceReference struct {
	ID int64

	// Bundle is the id of the registering bundle.
	Bundle int64

	// Properties holds the service properties.  Values are
	// string, int64, float64, bool, []string, or nested
	// map[string]interface{} values of the same.
	Properties map[string]interface{}

	// UsingBundles holds the ids of bundles using this service.
	UsingBundles []int64
}

// Extension describes a REST extension attached under the
// extensions mount point.
type Extension struct {
	Name string
	Path string
}
