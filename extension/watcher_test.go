// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package extension

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeclaration(t *testing.T) {
	decl, err := ParseDeclaration([]byte("name: banner\npath: banner\ncontent: hi\ncontent_type: text/html\n"))
	if assert.NoError(t, err) {
		assert.Equal(t, Declaration{
			Name:        "banner",
			Path:        "banner",
			Content:     "hi",
			ContentType: "text/html",
		}, decl)
	}

	decl, err = ParseDeclaration([]byte("path: greeter/{name}\nproxy: http://localhost:8081/\n"))
	if assert.NoError(t, err) {
		assert.Equal(t, "greeter/{name}", decl.Name)
		assert.Equal(t, "http://localhost:8081/", decl.Proxy)
	}

	for _, doc := range []string{
		"name: [",
		"name: x\n",
		"path: x\n",
		"path: x\nproxy: http://a/\ncontent: y\n",
		"path: x\ncontent: y\ncolour: blue\n",
	} {
		_, err := ParseDeclaration([]byte(doc))
		assert.Error(t, err, doc)
	}
}

func TestDeclarationHandler(t *testing.T) {
	h, err := Declaration{Path: "x", Content: "hello"}.Handler()
	require.NoError(t, err)

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest("GET", "/extensions/x", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header().Get("Content-Type"))
	assert.Equal(t, "hello", resp.Body.String())

	resp = httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest("POST", "/extensions/x", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)

	backend := httptest.NewServer(http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		_, _ = resp.Write([]byte("proxied " + req.URL.Path))
	}))
	defer backend.Close()
	h, err = Declaration{Path: "p", Proxy: backend.URL + "/base"}.Handler()
	require.NoError(t, err)
	resp = httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest("GET", "/extensions/p", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "proxied /base/extensions/p", resp.Body.String())

	_, err = Declaration{Path: "p", Proxy: "not/absolute"}.Handler()
	assert.Error(t, err)
}

func TestWatcher(t *testing.T) {
	dir, err := ioutil.TempDir("", "extensions")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	existing := filepath.Join(dir, "existing.yaml")
	require.NoError(t, ioutil.WriteFile(existing, []byte("name: existing\npath: existing\ncontent: x\n"), 0644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	logger, _ := test.NewNullLogger()
	registry := NewRegistry()
	watcher := NewWatcher(dir, registry, logger)

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	done := make(chan error)
	go func() { done <- watcher.Run(ctx, ready) }()
	<-ready

	names := func() []string {
		var result []string
		for _, unit := range registry.Units() {
			result = append(result, unit.Name)
		}
		return result
	}
	assert.Equal(t, []string{"existing"}, names())
	_, exists := registry.Unit(watcher.UnitID(existing))
	assert.True(t, exists)

	added := filepath.Join(dir, "added.yml")
	require.NoError(t, ioutil.WriteFile(added, []byte("name: added\npath: added\ncontent: y\n"), 0644))
	assert.Eventually(t, func() bool {
		return len(names()) == 2
	}, 5*time.Second, 10*time.Millisecond)

	// A bad rewrite withdraws the unit
	require.NoError(t, ioutil.WriteFile(existing, []byte("name: [broken"), 0644))
	assert.Eventually(t, func() bool {
		_, exists := registry.Unit(watcher.UnitID(existing))
		return !exists
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(added))
	assert.Eventually(t, func() bool {
		return len(names()) == 0
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
