// Copyright 2017-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli"
	"gopkg.in/yaml.v2"

	"github.com/diffeo/go-fwrest/framework"
	"github.com/diffeo/go-fwrest/restclient"
	"github.com/diffeo/go-fwrest/restdata"
)

var errMissingID = errors.New("missing id argument")

func client(c *cli.Context) (*restclient.Client, error) {
	syntax := restdata.JSON
	if c.GlobalBool("xml") {
		syntax = restdata.XML
	}
	return restclient.New(c.GlobalString("url"), syntax)
}

// argID parses the first positional argument as an id.
func argID(c *cli.Context) (int64, error) {
	if c.NArg() < 1 {
		return 0, errMissingID
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", c.Args().First())
	}
	return id, nil
}

// argLevel parses the positional argument at i as a start level, and
// reports whether one was given.
func argLevel(c *cli.Context, i int) (int, bool, error) {
	if c.NArg() <= i {
		return 0, false, nil
	}
	level, err := strconv.Atoi(c.Args().Get(i))
	if err != nil {
		return 0, false, fmt.Errorf("invalid start level %q", c.Args().Get(i))
	}
	return level, true, nil
}

func output(c *cli.Context, v interface{}) error {
	bytes, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(bytes)
	return err
}

func frameworkStartLevel(c *cli.Context) error {
	cl, err := client(c)
	if err != nil {
		return err
	}
	level, set, err := argLevel(c, 0)
	if err != nil {
		return err
	}
	if set || c.IsSet("initial") {
		change := framework.FrameworkStartLevel{
			StartLevel:              level,
			InitialBundleStartLevel: c.Int("initial"),
		}
		if !set {
			current, err := cl.FrameworkStartLevel()
			if err != nil {
				return err
			}
			change.StartLevel = current.StartLevel
		}
		if err := cl.SetFrameworkStartLevel(change); err != nil {
			return err
		}
	}
	current, err := cl.FrameworkStartLevel()
	if err != nil {
		return err
	}
	return output(c, frameworkStartLevelView(current))
}

func listBundles(c *cli.Context) error {
	cl, err := client(c)
	if err != nil {
		return err
	}
	bundles, err := cl.Bundles()
	if err != nil {
		return err
	}
	views := make([]bundleView, len(bundles))
	for i, bundle := range bundles {
		views[i] = newBundleView(bundle)
	}
	return output(c, views)
}

func showBundle(c *cli.Context) error {
	cl, err := client(c)
	if err != nil {
		return err
	}
	id, err := argID(c)
	if err != nil {
		return err
	}
	bundle, err := cl.Bundle(id)
	if err != nil {
		return err
	}
	if bundle == nil {
		return framework.ErrNoSuchBundle{ID: id}
	}
	return output(c, newBundleView(*bundle))
}

func showHeaders(c *cli.Context) error {
	cl, err := client(c)
	if err != nil {
		return err
	}
	id, err := argID(c)
	if err != nil {
		return err
	}
	headers, err := cl.BundleHeaders(id)
	if err != nil {
		return err
	}
	return output(c, headers)
}

func installBundle(c *cli.Context) error {
	cl, err := client(c)
	if err != nil {
		return err
	}
	location := c.Args().First()
	var bundle framework.Bundle
	if file := c.String("file"); file != "" {
		var f *os.File
		if f, err = os.Open(file); err != nil {
			return err
		}
		defer f.Close()
		bundle, err = cl.InstallBundleStream(location, f)
	} else if location == "" {
		return errors.New("missing location argument")
	} else {
		bundle, err = cl.InstallBundle(location)
	}
	if err != nil {
		return err
	}
	return output(c, newBundleView(bundle))
}

func updateBundle(c *cli.Context) error {
	cl, err := client(c)
	if err != nil {
		return err
	}
	id, err := argID(c)
	if err != nil {
		return err
	}
	var bundle framework.Bundle
	switch {
	case c.String("file") != "":
		var f *os.File
		if f, err = os.Open(c.String("file")); err != nil {
			return err
		}
		defer f.Close()
		bundle, err = cl.UpdateBundleStream(id, f)
	case c.String("location") != "":
		bundle, err = cl.UpdateBundleFrom(id, c.String("location"))
	default:
		bundle, err = cl.UpdateBundle(id)
	}
	if err != nil {
		return err
	}
	return output(c, newBundleView(bundle))
}

func uninstallBundle(c *cli.Context) error {
	cl, err := client(c)
	if err != nil {
		return err
	}
	id, err := argID(c)
	if err != nil {
		return err
	}
	bundle, err := cl.UninstallBundle(id)
	if err != nil {
		return err
	}
	return output(c, newBundleView(bundle))
}

func startBundle(c *cli.Context) error {
	cl, err := client(c)
	if err != nil {
		return err
	}
	id, err := argID(c)
	if err != nil {
		return err
	}
	options := 0
	if c.Bool("transient") {
		options |= framework.StartTransient
	}
	if c.Bool("policy") {
		options |= framework.StartActivationPolicy
	}
	if err := cl.StartBundle(id, options); err != nil {
		return err
	}
	return showState(c, cl, id)
}

func stopBundle(c *cli.Context) error {
	cl, err := client(c)
	if err != nil {
		return err
	}
	id, err := argID(c)
	if err != nil {
		return err
	}
	options := 0
	if c.Bool("transient") {
		options |= framework.StopTransient
	}
	if err := cl.StopBundle(id, options); err != nil {
		return err
	}
	return showState(c, cl, id)
}

func showState(c *cli.Context, cl *restclient.Client, id int64) error {
	state, err := cl.BundleState(id)
	if err != nil {
		return err
	}
	return output(c, map[string]string{"state": state.String()})
}

func bundleStartLevel(c *cli.Context) error {
	cl, err := client(c)
	if err != nil {
		return err
	}
	id, err := argID(c)
	if err != nil {
		return err
	}
	level, set, err := argLevel(c, 1)
	if err != nil {
		return err
	}
	if set {
		if err := cl.SetBundleStartLevel(id, level); err != nil {
			return err
		}
	}
	current, err := cl.BundleStartLevel(id)
	if err != nil {
		return err
	}
	return output(c, bundleStartLevelView(current))
}

func listServices(c *cli.Context) error {
	cl, err := client(c)
	if err != nil {
		return err
	}
	services, err := cl.ServiceReferences(c.String("filter"))
	if err != nil {
		return err
	}
	views := make([]serviceView, len(services))
	for i, service := range services {
		views[i] = serviceView(service)
	}
	return output(c, views)
}

func showService(c *cli.Context) error {
	cl, err := client(c)
	if err != nil {
		return err
	}
	id, err := argID(c)
	if err != nil {
		return err
	}
	service, err := cl.ServiceReference(id)
	if err != nil {
		return err
	}
	if service == nil {
		return framework.ErrNoSuchService{ID: id}
	}
	return output(c, serviceView(*service))
}

func listExtensions(c *cli.Context) error {
	cl, err := client(c)
	if err != nil {
		return err
	}
	extensions, err := cl.Extensions()
	if err != nil {
		return err
	}
	views := make([]extensionView, len(extensions))
	for i, extension := range extensions {
		views[i] = extensionView(extension)
	}
	return output(c, views)
}
