// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package framework

import (
	"fmt"
)

// String returns the lower-case name of a bundle state, or its
// number if it is not a known state.
func (state BundleState) String() string {
	text, err := state.MarshalText()
	if err != nil {
		return fmt.Sprintf("%d", int(state))
	}
	return string(text)
}

// MarshalText returns a string representing a bundle state.
func (state BundleState) MarshalText() ([]byte, error) {
	switch state {
	case Uninstalled:
		return []byte("uninstalled"), nil
	case Installed:
		return []byte("installed"), nil
	case Resolved:
		return []byte("resolved"), nil
	case Starting:
		return []byte("starting"), nil
	case Stopping:
		return []byte("stopping"), nil
	case Active:
		return []byte("active"), nil
	default:
		return nil, fmt.Errorf("invalid bundle state (marshal, %d)", int(state))
	}
}

// UnmarshalText populates a bundle state from a string.
func (state *BundleState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "uninstalled":
		*state = Uninstalled
	case "installed":
		*state = Installed
	case "resolved":
		*state = Resolved
	case "starting":
		*state = Starting
	case "stopping":
		*state = Stopping
	case "active":
		*state = Active
	default:
		return fmt.Errorf("invalid bundle state (unmarshal, %+v)", string(text))
	}
	return nil
}
