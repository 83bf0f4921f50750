// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffeo/go-fwrest/framework"
	"github.com/diffeo/go-fwrest/memory"
)

func newTestHandler(t *testing.T, config Config) (*httpexpect.Expect, *memory.Runtime, *test.Hook) {
	runtime := memory.New()
	logger, hook := test.NewNullLogger()
	handler, server, err := newHandler(config, runtime, logger)
	require.NoError(t, err)
	require.NotNil(t, server)
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return httpexpect.Default(t, ts.URL), runtime, hook
}

func TestHandlerRoot(t *testing.T) {
	e, _, hook := newTestHandler(t, defaultConfig)
	e.GET("/framework/startlevel").
		WithHeader("Accept", "application/json").
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("startLevel").Number().IsEqual(1)
	assert.Nil(t, hook.LastEntry())
}

func TestHandlerPrefix(t *testing.T) {
	config := defaultConfig
	config.Prefix = "/api"
	e, runtime, _ := newTestHandler(t, config)
	bundle, err := runtime.Install("test:prefix.jar", nil)
	require.NoError(t, err)

	e.GET("/api/framework/bundles").
		WithHeader("Accept", "application/json").
		Expect().
		Status(http.StatusOK).
		JSON().Array().Length().IsEqual(2)

	e.POST("/api/framework/bundles").
		WithText("test:prefix.jar").
		Expect().
		Status(http.StatusCreated).
		Header("Location").HasSuffix("/api/framework/bundle/" + itoa(bundle.ID))

	e.GET("/framework/bundles").
		Expect().
		Status(http.StatusNotFound)
}

func TestHandlerMetrics(t *testing.T) {
	e, runtime, _ := newTestHandler(t, defaultConfig)
	_, err := runtime.Install("test:metrics.jar", nil)
	require.NoError(t, err)

	e.GET("/framework/bundles").Expect().Status(http.StatusOK)
	e.GET("/framework/bundle/99").Expect().Status(http.StatusNotFound)

	body := e.GET("/metrics").
		Expect().
		Status(http.StatusOK).
		Body()
	body.Contains(`diffeo_fwrest_bundles{state="active"} 1`)
	body.Contains(`diffeo_fwrest_bundles{state="installed"} 1`)
	body.Contains(`diffeo_fwrest_bundles{state="resolved"} 0`)
	body.Contains(`diffeo_fwrest_services 0`)
	body.Contains(`diffeo_fwrest_start_level 1`)
	body.Contains(`diffeo_fwrest_http_requests_total{code="200",method="GET"} 1`)
	body.Contains(`diffeo_fwrest_http_requests_total{code="404",method="GET"} 1`)
}

func TestHandlerLogRequests(t *testing.T) {
	config := defaultConfig
	config.LogRequests = true
	e, _, hook := newTestHandler(t, config)

	e.GET("/framework/bundles").Expect().Status(http.StatusOK)

	entry := hook.LastEntry()
	if assert.NotNil(t, entry) {
		assert.Equal(t, logrus.InfoLevel, entry.Level)
		assert.Equal(t, "Request", entry.Message)
		assert.Equal(t, "GET", entry.Data["method"])
		assert.Equal(t, "/framework/bundles", entry.Data["path"])
		assert.Equal(t, http.StatusOK, entry.Data["status"])
	}
}

func TestFrameworkCollectorStates(t *testing.T) {
	runtime := memory.New()
	_, err := runtime.Install("test:a.jar", nil)
	require.NoError(t, err)
	b, err := runtime.Install("test:b.jar", nil)
	require.NoError(t, err)
	require.NoError(t, runtime.SetBundleState(b.ID, framework.Active, 0))

	logger, _ := test.NewNullLogger()
	c := newFrameworkCollector(runtime, logger)
	ch := make(chan prometheus.Metric, 16)
	c.Collect(ch)
	close(ch)
	// five bundle states, start level, services
	assert.Len(t, ch, 7)

	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(c))
	families, err := registry.Gather()
	require.NoError(t, err)
	counts := make(map[string]float64)
	for _, family := range families {
		if family.GetName() != "diffeo_fwrest_bundles" {
			continue
		}
		for _, m := range family.GetMetric() {
			counts[m.GetLabel()[0].GetValue()] = m.GetGauge().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{
		"installed": 1,
		"resolved":  0,
		"starting":  0,
		"stopping":  0,
		"active":    2,
	}, counts)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
