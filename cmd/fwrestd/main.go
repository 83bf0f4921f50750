// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Command fwrestd serves the REST management interface of a bundle
// runtime over HTTP, along with Prometheus metrics and any extensions
// declared in a directory.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/diffeo/go-fwrest/backend"
	"github.com/diffeo/go-fwrest/extension"
)

func main() {
	app := cli.NewApp()
	app.Name = "fwrestd"
	app.Usage = "serve a bundle runtime's management REST API"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "http",
			Value: defaultConfig.HTTP,
			Usage: "[ip]:port for HTTP REST interface",
		},
		cli.StringFlag{
			Name:  "prefix",
			Usage: "URL path prefix of the REST interface",
		},
		cli.GenericFlag{
			Name:  "backend",
			Value: &backend.Backend{Implementation: "memory"},
			Usage: "impl[:address] of the managed runtime",
		},
		cli.StringFlag{
			Name:  "extensions",
			Usage: "directory of extension declarations to watch",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "global configuration YAML file",
		},
		cli.IntFlag{
			Name:  "header-cache",
			Usage: "cache this many bundle manifests (0 disables)",
		},
		cli.BoolFlag{
			Name:  "log-requests",
			Usage: "log all requests",
		},
		cli.StringFlag{
			Name:  "log-level",
			Value: defaultConfig.LogLevel,
			Usage: "minimum level of log messages",
		},
	}
	app.Action = run
	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("fwrestd failed")
	}
}

func run(c *cli.Context) error {
	config := defaultConfig
	if file := c.String("config"); file != "" {
		var err error
		config, err = loadConfig(file)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"file": file,
				"err":  err,
			}).Error("Could not load YAML configuration")
			return err
		}
	}
	config.applyFlags(c)

	logger := logrus.StandardLogger()
	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	fw, err := config.openFramework()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"backend": config.Backend.String(),
			"err":     err,
		}).Error("Could not create framework backend")
		return err
	}

	handler, server, err := newHandler(config, fw, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.Extensions != "" {
		registry := extension.NewRegistry()
		registry.AddListener(server.Extensions)
		watcher := extension.NewWatcher(config.Extensions, registry, logger)
		go func() {
			if err := watcher.Run(ctx, nil); err != nil {
				logger.WithFields(logrus.Fields{
					"dir": config.Extensions,
					"err": err,
				}).Error("Extension watcher stopped")
			}
		}()
	}

	httpServer := &http.Server{Addr: config.HTTP, Handler: handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.WithFields(logrus.Fields{
		"http":    config.HTTP,
		"prefix":  config.Prefix,
		"backend": config.Backend.String(),
	}).Info("Serving REST API")
	if err = httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
