// Copyright 2017-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"io/ioutil"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v2"

	"github.com/diffeo/go-fwrest/backend"
	"github.com/diffeo/go-fwrest/cache"
	"github.com/diffeo/go-fwrest/framework"
)

// Config holds the daemon settings.  A YAML configuration file sets
// any of them, with the same names as the command-line flags but
// with underscores:
//
//     http: :5980
//     prefix: /api
//     backend: rest:http://runtime.example.com:8080/
//     extensions: /etc/fwrestd/extensions
//     header_cache: 128
//     log_requests: true
//     log_level: debug
//
// Flags given on the command line override the file.
type Config struct {
	HTTP        string          `mapstructure:"http"`
	Prefix      string          `mapstructure:"prefix"`
	Backend     backend.Backend `mapstructure:"backend"`
	Extensions  string          `mapstructure:"extensions"`
	HeaderCache int             `mapstructure:"header_cache"`
	LogRequests bool            `mapstructure:"log_requests"`
	LogLevel    string          `mapstructure:"log_level"`
}

var defaultConfig = Config{
	HTTP:     ":5980",
	Backend:  backend.Backend{Implementation: "memory"},
	LogLevel: "info",
}

// backendHook lets the configuration name a backend as a string.
func backendHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf(backend.Backend{}) || from.Kind() != reflect.String {
		return data, nil
	}
	var b backend.Backend
	err := b.Set(data.(string))
	return b, err
}

// decodeConfig overlays a parsed YAML document on the defaults.
func decodeConfig(raw map[string]interface{}) (Config, error) {
	config := defaultConfig
	decoderConfig := mapstructure.DecoderConfig{
		DecodeHook:       backendHook,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &config,
	}
	decoder, err := mapstructure.NewDecoder(&decoderConfig)
	if err == nil {
		err = decoder.Decode(raw)
	}
	if err != nil {
		return Config{}, err
	}
	config.Prefix = cleanPrefix(config.Prefix)
	return config, nil
}

// openFramework creates the configured backend, wrapped in a manifest
// cache if one is configured.
func (config Config) openFramework() (framework.Framework, error) {
	fw, err := config.Backend.Framework()
	if err != nil {
		return nil, err
	}
	if config.HeaderCache > 0 {
		fw = cache.New(fw, config.HeaderCache)
	}
	return fw, nil
}

func loadConfig(filename string) (Config, error) {
	var raw map[string]interface{}
	bytes, err := ioutil.ReadFile(filename)
	if err == nil {
		err = yaml.Unmarshal(bytes, &raw)
	}
	if err != nil {
		return Config{}, err
	}
	return decodeConfig(raw)
}

// applyFlags copies explicitly given command-line flags into the
// configuration.
func (config *Config) applyFlags(c *cli.Context) {
	if c.IsSet("http") {
		config.HTTP = c.String("http")
	}
	if c.IsSet("prefix") {
		config.Prefix = cleanPrefix(c.String("prefix"))
	}
	if c.IsSet("backend") {
		config.Backend = *c.Generic("backend").(*backend.Backend)
	}
	if c.IsSet("extensions") {
		config.Extensions = c.String("extensions")
	}
	if c.IsSet("header-cache") {
		config.HeaderCache = c.Int("header-cache")
	}
	if c.IsSet("log-requests") {
		config.LogRequests = c.Bool("log-requests")
	}
	if c.IsSet("log-level") {
		config.LogLevel = c.String("log-level")
	}
}

// cleanPrefix normalizes a URL path prefix to either "" or a path
// starting but not ending with a slash.
func cleanPrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return "/" + prefix
}
