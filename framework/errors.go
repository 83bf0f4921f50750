// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package framework

import (
	"errors"
	"fmt"
)

// ErrSystemBundle is returned when a caller tries to stop, update,
// uninstall, or change the start level of the system bundle.
var ErrSystemBundle = errors.New("Cannot modify the system bundle")

// ErrBadStartLevel is returned for start levels less than 1.
var ErrBadStartLevel = errors.New("Start level must be at least 1")

// ErrNoObjectClass is returned by RegisterService if the properties
// do not name any object class.
var ErrNoObjectClass = errors.New("Service properties have no 'objectClass'")

// ErrNoSuchBundle is returned by Framework.Bundle() and similar
// functions that look up a bundle by id but cannot find it.
type ErrNoSuchBundle struct {
	ID int64
}

func (err ErrNoSuchBundle) Error() string {
	return fmt.Sprintf("No such bundle %v", err.ID)
}

// ErrNoSuchService is returned by Framework.Service() and similar
// functions that look up a service by id but cannot find it.
type ErrNoSuchService struct {
	ID int64
}

func (err ErrNoSuchService) Error() string {
	return fmt.Sprintf("No such service %v", err.ID)
}

// ErrInvalidState is returned by SetBundleState if the bundle cannot
// move to the requested state, and by RegisterService if the bundle
// is not active.
type ErrInvalidState struct {
	ID    int64
	State BundleState
}

func (err ErrInvalidState) Error() string {
	return fmt.Sprintf("Invalid state %v for bundle %v", err.State, err.ID)
}

// ErrInvalidBundle is returned by Install and Update if the bundle
// content cannot be read.
type ErrInvalidBundle struct {
	Location string
	Reason   string
}

func (err ErrInvalidBundle) Error() string {
	return fmt.Sprintf("Invalid bundle %q: %v", err.Location, err.Reason)
}

// ErrInvalidFilter is returned by Services if the filter string does
// not parse.
type ErrInvalidFilter struct {
	Filter string
	Reason string
}

func (err ErrInvalidFilter) Error() string {
	return fmt.Sprintf("Invalid filter %q: %v", err.Filter, err.Reason)
}
