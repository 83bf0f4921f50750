// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/diffeo/go-fwrest/framework"
)

func TestSet(t *testing.T) {
	tests := []struct {
		param   string
		backend Backend
	}{
		{"memory", Backend{Implementation: "memory"}},
		{"rest:http://localhost:5980/", Backend{Implementation: "rest", Address: "http://localhost:5980/"}},
		{"rest+xml:http://localhost:5980/api", Backend{Implementation: "rest+xml", Address: "http://localhost:5980/api"}},
	}
	for _, test := range tests {
		var b Backend
		if assert.NoError(t, b.Set(test.param), test.param) {
			assert.Equal(t, test.backend, b)
			assert.Equal(t, test.param, b.String())
		}
	}

	for _, param := range []string{"", ":x", "postgres:foo", "rest", "rest:", "memory:x"} {
		b := Backend{Implementation: "memory"}
		assert.Error(t, b.Set(param), param)
		assert.Equal(t, "memory", b.Implementation, param)
	}
}

func TestFramework(t *testing.T) {
	b := Backend{Implementation: "memory"}
	fw, err := b.Framework()
	if assert.NoError(t, err) {
		bundle, err := fw.Bundle(framework.SystemBundleID)
		assert.NoError(t, err)
		assert.Equal(t, framework.Active, bundle.State)
	}

	b = Backend{Implementation: "rest", Address: "http://localhost:5980/"}
	_, err = b.Framework()
	assert.NoError(t, err)

	b = Backend{Implementation: "rest", Address: "not a url"}
	_, err = b.Framework()
	assert.Error(t, err)

	b = Backend{Implementation: "bogus"}
	_, err = b.Framework()
	assert.Error(t, err)
}
