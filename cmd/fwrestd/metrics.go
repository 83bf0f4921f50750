// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"

	"github.com/diffeo/go-fwrest/framework"
)

// requestMetrics is negroni middleware counting requests.
type requestMetrics struct {
	requests *prometheus.CounterVec
}

func newRequestMetrics() *requestMetrics {
	return &requestMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "diffeo",
				Subsystem: "fwrest",
				Name:      "http_requests_total",
				Help:      "HTTP requests by method and status code",
			},
			[]string{"method", "code"},
		),
	}
}

func (m *requestMetrics) ServeHTTP(rw http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
	next(rw, req)
	status := rw.(negroni.ResponseWriter).Status()
	m.requests.WithLabelValues(req.Method, strconv.Itoa(status)).Inc()
}

func (m *requestMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.requests.Describe(ch)
}

func (m *requestMetrics) Collect(ch chan<- prometheus.Metric) {
	m.requests.Collect(ch)
}

var (
	bundlesDesc = prometheus.NewDesc(
		"diffeo_fwrest_bundles",
		"Installed bundles by state",
		[]string{"state"}, nil,
	)
	startLevelDesc = prometheus.NewDesc(
		"diffeo_fwrest_start_level",
		"Framework start level",
		nil, nil,
	)
	servicesDesc = prometheus.NewDesc(
		"diffeo_fwrest_services",
		"Registered services",
		nil, nil,
	)
)

// frameworkCollector reports the state of the runtime each time it
// is scraped.
type frameworkCollector struct {
	fw     framework.Framework
	logger logrus.FieldLogger
}

func newFrameworkCollector(fw framework.Framework, logger logrus.FieldLogger) *frameworkCollector {
	return &frameworkCollector{fw: fw, logger: logger}
}

func (c *frameworkCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- bundlesDesc
	ch <- startLevelDesc
	ch <- servicesDesc
}

func (c *frameworkCollector) Collect(ch chan<- prometheus.Metric) {
	bundles, err := c.fw.Bundles()
	if err != nil {
		c.logger.WithError(err).Warn("Could not list bundles for metrics")
	} else {
		counts := make(map[framework.BundleState]int)
		for _, state := range []framework.BundleState{
			framework.Installed,
			framework.Resolved,
			framework.Starting,
			framework.Stopping,
			framework.Active,
		} {
			counts[state] = 0
		}
		for _, bundle := range bundles {
			counts[bundle.State]++
		}
		for state, count := range counts {
			ch <- prometheus.MustNewConstMetric(bundlesDesc, prometheus.GaugeValue, float64(count), state.String())
		}
	}

	level, err := c.fw.StartLevel()
	if err != nil {
		c.logger.WithError(err).Warn("Could not get start level for metrics")
	} else {
		ch <- prometheus.MustNewConstMetric(startLevelDesc, prometheus.GaugeValue, float64(level.StartLevel))
	}

	services, err := c.fw.Services("")
	if err != nil {
		c.logger.WithError(err).Warn("Could not list services for metrics")
	} else {
		ch <- prometheus.MustNewConstMetric(servicesDesc, prometheus.GaugeValue, float64(len(services)))
	}
}
