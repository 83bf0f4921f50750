// Copyright 2017-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Command fwrestctl manages a bundle runtime through its REST
// interface.  Results are printed as YAML.
//
//     fwrestctl --url http://localhost:5980/ bundles
//     fwrestctl install http://repo.example.com/hello.jar
//     fwrestctl start 3
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("fwrestctl failed")
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "fwrestctl"
	app.Usage = "manage a bundle runtime over REST"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "url",
			Value:  "http://localhost:5980/",
			EnvVar: "FWREST_URL",
			Usage:  "base URL of the REST interface",
		},
		cli.BoolFlag{
			Name:  "xml",
			Usage: "exchange XML rather than JSON with the server",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "startlevel",
			Usage:     "show or set the framework start level",
			ArgsUsage: "[level]",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "initial",
					Usage: "also set the initial bundle start level",
				},
			},
			Action: frameworkStartLevel,
		},
		{
			Name:   "bundles",
			Usage:  "list installed bundles",
			Action: listBundles,
		},
		{
			Name:      "bundle",
			Usage:     "show a single bundle",
			ArgsUsage: "id",
			Action:    showBundle,
		},
		{
			Name:      "headers",
			Usage:     "show a bundle's manifest headers",
			ArgsUsage: "id",
			Action:    showHeaders,
		},
		{
			Name:      "install",
			Usage:     "install a bundle",
			ArgsUsage: "location",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "file",
					Usage: "upload bundle content from this file",
				},
			},
			Action: installBundle,
		},
		{
			Name:      "update",
			Usage:     "update a bundle",
			ArgsUsage: "id",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "location",
					Usage: "re-read the bundle from this location",
				},
				cli.StringFlag{
					Name:  "file",
					Usage: "upload bundle content from this file",
				},
			},
			Action: updateBundle,
		},
		{
			Name:      "uninstall",
			Usage:     "uninstall a bundle",
			ArgsUsage: "id",
			Action:    uninstallBundle,
		},
		{
			Name:      "start",
			Usage:     "start a bundle",
			ArgsUsage: "id",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "transient",
					Usage: "do not persistently mark the bundle started",
				},
				cli.BoolFlag{
					Name:  "policy",
					Usage: "honor the bundle's activation policy",
				},
			},
			Action: startBundle,
		},
		{
			Name:      "stop",
			Usage:     "stop a bundle",
			ArgsUsage: "id",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "transient",
					Usage: "keep the bundle persistently started",
				},
			},
			Action: stopBundle,
		},
		{
			Name:      "bundle-startlevel",
			Usage:     "show or set a bundle's start level",
			ArgsUsage: "id [level]",
			Action:    bundleStartLevel,
		},
		{
			Name:  "services",
			Usage: "list registered services",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "filter",
					Usage: "LDAP-style filter on service properties",
				},
			},
			Action: listServices,
		},
		{
			Name:      "service",
			Usage:     "show a single service",
			ArgsUsage: "id",
			Action:    showService,
		},
		{
			Name:   "extensions",
			Usage:  "list REST extensions",
			Action: listExtensions,
		},
	}
	return app
}
