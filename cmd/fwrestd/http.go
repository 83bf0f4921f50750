// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"

	"github.com/diffeo/go-fwrest/framework"
	"github.com/diffeo/go-fwrest/restserver"
)

// newHandler builds the complete HTTP handler of the daemon: the REST
// server under the configured prefix and /metrics, wrapped in panic
// recovery, request counting, and optionally request logging.
func newHandler(config Config, fw framework.Framework, logger *logrus.Logger) (http.Handler, *restserver.Server, error) {
	registry := prometheus.NewRegistry()
	metrics := newRequestMetrics()
	for _, c := range []prometheus.Collector{metrics, newFrameworkCollector(fw, logger)} {
		if err := registry.Register(c); err != nil {
			return nil, nil, err
		}
	}

	server := restserver.New(fw, logger)
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if config.Prefix == "" {
		r.PathPrefix("/").Handler(server)
	} else {
		r.PathPrefix(config.Prefix + "/").Handler(http.StripPrefix(config.Prefix, server))
	}

	recovery := negroni.NewRecovery()
	recovery.Logger = logger
	recovery.PrintStack = false
	n := negroni.New(recovery, metrics)
	if config.LogRequests {
		n.Use(requestLogger(logger))
	}
	n.UseHandler(r)
	return n, server, nil
}

// requestLogger logs every request at info level.
func requestLogger(logger logrus.FieldLogger) negroni.Handler {
	return negroni.HandlerFunc(func(rw http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
		start := time.Now()
		next(rw, req)
		res := rw.(negroni.ResponseWriter)
		logger.WithFields(logrus.Fields{
			"method":   req.Method,
			"path":     req.URL.Path,
			"status":   res.Status(),
			"size":     res.Size(),
			"duration": time.Since(start),
			"remote":   req.RemoteAddr,
		}).Info("Request")
	})
}
