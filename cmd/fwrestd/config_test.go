// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/diffeo/go-fwrest/backend"
	"github.com/diffeo/go-fwrest/framework"
	"github.com/diffeo/go-fwrest/memory"
)

func parseConfig(t *testing.T, text string) (Config, error) {
	var raw map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(text), &raw))
	return decodeConfig(raw)
}

func TestDecodeConfigDefaults(t *testing.T) {
	config, err := parseConfig(t, "")
	if assert.NoError(t, err) {
		assert.Equal(t, defaultConfig, config)
	}
}

func TestDecodeConfig(t *testing.T) {
	config, err := parseConfig(t, `
http: 127.0.0.1:8000
prefix: api/
backend: rest+xml:http://runtime.example.com/
extensions: /etc/fwrestd/extensions
header_cache: 64
log_requests: true
log_level: debug
`)
	if assert.NoError(t, err) {
		assert.Equal(t, Config{
			HTTP:   "127.0.0.1:8000",
			Prefix: "/api",
			Backend: backend.Backend{
				Implementation: "rest+xml",
				Address:        "http://runtime.example.com/",
			},
			Extensions:  "/etc/fwrestd/extensions",
			HeaderCache: 64,
			LogRequests: true,
			LogLevel:    "debug",
		}, config)
	}
}

func TestDecodeConfigErrors(t *testing.T) {
	_, err := parseConfig(t, "listen: :80\n")
	assert.Error(t, err, "unknown key")

	_, err = parseConfig(t, "backend: postgres:db\n")
	assert.Error(t, err, "bad backend")
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "fwrestd.yaml")
	require.NoError(t, ioutil.WriteFile(filename, []byte("prefix: /\nlog_level: warn\n"), 0644))

	config, err := loadConfig(filename)
	if assert.NoError(t, err) {
		assert.Equal(t, "", config.Prefix)
		assert.Equal(t, "warn", config.LogLevel)
		assert.Equal(t, defaultConfig.HTTP, config.HTTP)
	}

	_, err = loadConfig(filepath.Join(dir, "missing.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestOpenFramework(t *testing.T) {
	config := defaultConfig
	fw, err := config.openFramework()
	if assert.NoError(t, err) {
		assert.IsType(t, &memory.Runtime{}, fw)
	}

	config.HeaderCache = 8
	fw, err = config.openFramework()
	if assert.NoError(t, err) {
		assert.NotEqual(t, reflect.TypeOf(&memory.Runtime{}), reflect.TypeOf(fw))
		headers, err := fw.BundleHeaders(framework.SystemBundleID)
		assert.NoError(t, err)
		assert.NotEmpty(t, headers)
	}

	config.Backend = backend.Backend{Implementation: "rest", Address: "not a url"}
	_, err = config.openFramework()
	assert.Error(t, err)
}

func TestCleanPrefix(t *testing.T) {
	for in, out := range map[string]string{
		"":      "",
		"/":     "",
		"api":   "/api",
		"/api/": "/api",
		"/a/b":  "/a/b",
	} {
		assert.Equal(t, out, cleanPrefix(in), in)
	}
}
