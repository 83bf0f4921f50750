// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"github.com/diffeo/go-fwrest/framework"
)

// The view types mirror the framework types field for field, adding
// YAML names that match the JSON representation.

type frameworkStartLevelView struct {
	StartLevel              int `yaml:"startLevel"`
	InitialBundleStartLevel int `yaml:"initialBundleStartLevel"`
}

type bundleView struct {
	ID                 int64                 `yaml:"id"`
	SymbolicName       string                `yaml:"symbolicName"`
	Version            string                `yaml:"version"`
	State              framework.BundleState `yaml:"state"`
	Location           string                `yaml:"location"`
	LastModified       int64                 `yaml:"lastModified"`
	RegisteredServices []int64               `yaml:"registeredServices,omitempty"`
	ServicesInUse      []int64               `yaml:"servicesInUse,omitempty"`
}

func newBundleView(bundle framework.Bundle) bundleView {
	return bundleView(bundle)
}

type bundleStartLevelView struct {
	Bundle               int64 `yaml:"bundle"`
	StartLevel           int   `yaml:"startLevel"`
	ActivationPolicyUsed bool  `yaml:"activationPolicyUsed"`
	PersistentlyStarted  bool  `yaml:"persistentlyStarted"`
}

type serviceView struct {
	ID           int64                  `yaml:"id"`
	Bundle       int64                  `yaml:"bundle"`
	Properties   map[string]interface{} `yaml:"properties"`
	UsingBundles []int64                `yaml:"usingBundles,omitempty"`
}

type extensionView struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}
