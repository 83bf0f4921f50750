// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package backend provides a standard way to construct a framework
// interface based on command-line flags.
package backend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/diffeo/go-fwrest/framework"
	"github.com/diffeo/go-fwrest/memory"
	"github.com/diffeo/go-fwrest/restclient"
	"github.com/diffeo/go-fwrest/restdata"
)

// Backend describes the runtime a program manages.  This implements
// the flag.Value interface, and so a typical use is
//
//     func main() {
//         backend := backend.Backend{Implementation: "memory"}
//         flag.Var(&backend, "backend", "impl[:address] of the runtime")
//         flag.Parse()
//         fw, err := backend.Framework()
//     }
//
// The known implementations are "memory", an in-process runtime, and
// "rest" or "rest+xml", a remote REST service at the address URL.
type Backend struct {
	// Implementation holds the name of the implementation; for
	// instance, "memory".
	Implementation string

	// Address holds some backend-specific address, such as the
	// base URL of a REST service.
	Address string
}

// Framework creates a new framework interface.  This generally
// should be only called once.  If b.Implementation is "memory",
// multiple calls to this will create multiple independent runtimes.
func (b *Backend) Framework() (framework.Framework, error) {
	switch b.Implementation {
	case "memory":
		return memory.New(), nil
	case "rest", "rest+json":
		return b.rest(restdata.JSON)
	case "rest+xml":
		return b.rest(restdata.XML)
	default:
		return nil, fmt.Errorf("unknown framework backend %q", b.Implementation)
	}
}

func (b *Backend) rest(syntax restdata.Syntax) (framework.Framework, error) {
	client, err := restclient.New(b.Address, syntax)
	if err != nil {
		return nil, err
	}
	return restclient.Framework(client), nil
}

// String renders a backend description as a string.
func (b *Backend) String() string {
	if b.Address == "" {
		return b.Implementation
	}
	return b.Implementation + ":" + b.Address
}

// Set parses a string into an existing backend description.  The
// string should be of the form "implementation:address", where
// address can be any string.  Set checks to see if the provided
// implementation is any of the known implementations, and returns an
// appropriate error if not.
//
// This is part of the flag.Value interface.  Set does not attempt to
// validate the address or to make a connection.
func (b *Backend) Set(param string) error {
	parts := strings.SplitN(param, ":", 2)
	if parts[0] == "" {
		return errors.New("must specify a backend type")
	}
	switch parts[0] {
	case "memory":
		if len(parts) > 1 && parts[1] != "" {
			return errors.New("the memory backend takes no address")
		}
	case "rest", "rest+json", "rest+xml":
		if len(parts) < 2 || parts[1] == "" {
			return fmt.Errorf("the %v backend needs a URL", parts[0])
		}
	default:
		return fmt.Errorf("unknown framework backend %q", parts[0])
	}
	b.Implementation = parts[0]
	b.Address = ""
	if len(parts) > 1 {
		b.Address = parts[1]
	}
	return nil
}
