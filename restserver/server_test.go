// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffeo/go-fwrest/extension"
	"github.com/diffeo/go-fwrest/framework"
	"github.com/diffeo/go-fwrest/framework/frameworktest"
	"github.com/diffeo/go-fwrest/memory"
	"github.com/diffeo/go-fwrest/restdata"
)

// newTestServer starts a server over a fresh runtime.  Requests from
// the returned Expect ask for plain JSON.
func newTestServer(t *testing.T, wrap func(http.Handler) http.Handler) (*httpexpect.Expect, *memory.Runtime, *Server) {
	runtime := memory.New()
	logger, _ := test.NewNullLogger()
	server := New(runtime, logger)
	var handler http.Handler = server
	if wrap != nil {
		handler = wrap(server)
	}
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	e := httpexpect.Default(t, ts.URL).Builder(func(req *httpexpect.Request) {
		req.WithHeader("Accept", "application/json")
	})
	return e, runtime, server
}

func TestBundleStatePut(t *testing.T) {
	e, runtime, _ := newTestServer(t, nil)
	bundle, err := runtime.Install("test:state.jar", nil)
	require.NoError(t, err)
	path := "/" + restdata.BundlePath(bundle.ID)

	e.PUT(path + "/state").
		WithJSON(map[string]interface{}{"state": 32, "options": 0}).
		Expect().
		Status(http.StatusNoContent)
	e.GET(path + "/state").
		Expect().
		Status(http.StatusOK).
		JSON().Object().IsEqual(map[string]interface{}{"state": 32})

	e.PUT(path + "/state").
		WithJSON(map[string]interface{}{"state": int(framework.Resolved)}).
		Expect().
		Status(http.StatusNoContent)
	e.GET(path).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("state").Number().IsEqual(int(framework.Resolved))

	// Only active and resolved are targets
	obj := e.PUT(path + "/state").
		WithJSON(map[string]interface{}{"state": int(framework.Starting)}).
		Expect().
		Status(http.StatusInternalServerError).
		JSON().Object()
	obj.Value("error").String().IsEqual("ErrInvalidState")
	obj.Value("state").Number().IsEqual(int(framework.Starting))
}

func TestInstallLocation(t *testing.T) {
	e, _, _ := newTestServer(t, nil)
	resp := e.POST("/framework/bundles").
		WithText("http://example.com/bundles/hello.jar").
		Expect().
		Status(http.StatusCreated)
	resp.Header("Content-Type").HasPrefix(restdata.TextMediaType)
	path := resp.Body().Raw()
	assert.Equal(t, "framework/bundle/1", path)
	resp.Header("Location").IsEqual("/framework/bundle/1")

	bundle := e.GET("/" + path).
		Expect().
		Status(http.StatusOK).
		JSON().Object()
	bundle.Value("symbolicName").String().IsEqual("hello")
	bundle.Value("location").String().IsEqual("http://example.com/bundles/hello.jar")
	bundle.Value("state").Number().IsEqual(int(framework.Installed))

	// Installing the same location again finds the same bundle
	e.POST("/framework/bundles").
		WithText("http://example.com/bundles/hello.jar").
		Expect().
		Status(http.StatusCreated).
		Body().IsEqual(path)

	e.GET("/framework/bundles").
		Expect().
		Status(http.StatusOK).
		JSON().Array().IsEqual([]string{"framework/bundle/0", "framework/bundle/1"})

	e.POST("/framework/bundles").
		WithText("  ").
		Expect().
		Status(http.StatusBadRequest)
}

func TestInstallStream(t *testing.T) {
	e, _, _ := newTestServer(t, nil)
	jar := frameworktest.Jar(map[string]string{
		"Bundle-SymbolicName": "com.example.upload",
		"Bundle-Version":      "1.2.3",
	})

	path := e.POST("/framework/bundles").
		WithBytes(jar).
		WithHeader("Content-Type", "application/java-archive").
		WithHeader("Content-Location", "upload:thing.jar").
		Expect().
		Status(http.StatusCreated).
		Body().Raw()
	bundle := e.GET("/" + path).Expect().Status(http.StatusOK).JSON().Object()
	bundle.Value("symbolicName").String().IsEqual("com.example.upload")
	bundle.Value("version").String().IsEqual("1.2.3")
	bundle.Value("location").String().IsEqual("upload:thing.jar")

	e.GET("/" + path + "/header").
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("Bundle-Version").String().IsEqual("1.2.3")

	// Without a Content-Location: a location is made up
	jar = frameworktest.Jar(map[string]string{"Bundle-SymbolicName": "com.example.anonymous"})
	path = e.POST("/framework/bundles").
		WithBytes(jar).
		WithHeader("Content-Type", "application/octet-stream").
		Expect().
		Status(http.StatusCreated).
		Body().Raw()
	e.GET("/" + path).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("location").String().HasPrefix("stream:")

	// Content that isn't a bundle
	e.POST("/framework/bundles").
		WithBytes([]byte("not a jar")).
		WithHeader("Content-Type", "application/octet-stream").
		Expect().
		Status(http.StatusBadRequest).
		JSON().Object().Value("error").String().IsEqual("ErrInvalidBundle")
}

func TestUpdateUninstall(t *testing.T) {
	e, runtime, _ := newTestServer(t, nil)
	bundle, err := runtime.Install("test:update.jar", nil)
	require.NoError(t, err)
	path := "/" + restdata.BundlePath(bundle.ID)

	e.PUT(path).
		WithText("").
		Expect().
		Status(http.StatusNoContent)

	jar := frameworktest.Jar(map[string]string{
		"Bundle-SymbolicName": "update",
		"Bundle-Version":      "2.0.0",
	})
	e.PUT(path).
		WithBytes(jar).
		WithHeader("Content-Type", "application/java-archive").
		Expect().
		Status(http.StatusNoContent)
	e.GET(path).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("version").String().IsEqual("2.0.0")

	e.DELETE(path).
		Expect().
		Status(http.StatusNoContent)
	e.GET(path).
		Expect().
		Status(http.StatusNotFound).
		JSON().Object().Value("error").String().IsEqual("ErrNoSuchBundle")

	// The system bundle stays put
	e.DELETE("/framework/bundle/0").
		Expect().
		Status(http.StatusInternalServerError).
		JSON().Object().Value("error").String().IsEqual("ErrSystemBundle")
}

func TestNotFound(t *testing.T) {
	e, _, _ := newTestServer(t, nil)
	for _, path := range []string{
		"/framework/bundle/999999",
		"/framework/bundle/999999/state",
		"/framework/bundle/abc",
		"/framework/bundle/-1",
		"/framework/service/12345",
		"/framework/service/x",
		"/nowhere",
		"/extensions/nothing",
	} {
		e.GET(path).
			Expect().
			Status(http.StatusNotFound).
			JSON().Object().ContainsKey("message")
	}
}

func TestRequestErrors(t *testing.T) {
	e, _, _ := newTestServer(t, nil)

	e.PUT("/framework/startlevel").
		WithBytes([]byte("<p>hi</p>")).
		WithHeader("Content-Type", "text/html").
		Expect().
		Status(http.StatusUnsupportedMediaType)

	// A media type for some other kind of resource
	e.PUT("/framework/startlevel").
		WithBytes([]byte(`{"state":32}`)).
		WithHeader("Content-Type", restdata.NewMediaType(restdata.BundleStateKind, restdata.JSON).String()).
		Expect().
		Status(http.StatusUnsupportedMediaType)

	e.PUT("/framework/startlevel").
		WithBytes([]byte(`{"startLevel":"three"}`)).
		WithHeader("Content-Type", "application/json").
		Expect().
		Status(http.StatusBadRequest).
		JSON().Object().Value("error").String().IsEqual("DecodeError")

	e.PUT("/framework/startlevel").
		WithJSON(map[string]interface{}{"startLevel": 0}).
		Expect().
		Status(http.StatusInternalServerError).
		JSON().Object().Value("error").String().IsEqual("ErrBadStartLevel")

	e.GET("/framework/startlevel").
		WithHeader("Accept", "text/html").
		Expect().
		Status(http.StatusNotAcceptable)

	resp := e.DELETE("/framework/bundles").
		Expect().
		Status(http.StatusMethodNotAllowed)
	resp.Header("Allow").IsEqual("GET, HEAD, POST")
}

func TestHead(t *testing.T) {
	e, _, _ := newTestServer(t, nil)
	resp := e.HEAD("/framework/bundles").
		Expect().
		Status(http.StatusOK)
	resp.Header("Content-Type").IsEqual("application/json")
	resp.Body().IsEmpty()
}

func TestStartLevels(t *testing.T) {
	e, runtime, _ := newTestServer(t, nil)
	e.PUT("/framework/startlevel").
		WithJSON(map[string]interface{}{"startLevel": 3, "initialBundleStartLevel": 2}).
		Expect().
		Status(http.StatusNoContent)
	e.GET("/framework/startlevel").
		Expect().
		Status(http.StatusOK).
		JSON().Object().IsEqual(map[string]interface{}{
		"startLevel":              3,
		"initialBundleStartLevel": 2,
	})

	bundle, err := runtime.Install("test:levels.jar", nil)
	require.NoError(t, err)
	path := "/" + restdata.BundlePath(bundle.ID) + "/startlevel"
	e.GET(path).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("startLevel").Number().IsEqual(2)
	e.PUT(path).
		WithJSON(map[string]interface{}{"startLevel": 5}).
		Expect().
		Status(http.StatusNoContent)
	obj := e.GET(path).Expect().Status(http.StatusOK).JSON().Object()
	obj.Value("startLevel").Number().IsEqual(5)
	obj.Value("bundle").Number().IsEqual(bundle.ID)
}

func TestServices(t *testing.T) {
	e, runtime, _ := newTestServer(t, nil)
	bundle, err := runtime.Install("test:services.jar", nil)
	require.NoError(t, err)
	require.NoError(t, runtime.SetBundleState(bundle.ID, framework.Active, 0))
	english, err := runtime.RegisterService(bundle.ID, map[string]interface{}{
		framework.ObjectClass: "com.example.Greeter",
		"lang":                "en",
	})
	require.NoError(t, err)
	_, err = runtime.RegisterService(bundle.ID, map[string]interface{}{
		framework.ObjectClass: "com.example.Greeter",
		"lang":                "fr",
	})
	require.NoError(t, err)

	e.GET("/framework/services").
		Expect().
		Status(http.StatusOK).
		JSON().Array().Length().IsEqual(2)
	e.GET("/framework/services").
		WithQuery("filter", "(lang=en)").
		Expect().
		Status(http.StatusOK).
		JSON().Array().IsEqual([]string{restdata.ServicePath(english)})
	reps := e.GET("/framework/services/representations").
		WithQuery("filter", "(&(objectClass=com.example.*)(lang=en))").
		Expect().
		Status(http.StatusOK).
		JSON().Array()
	reps.Length().IsEqual(1)
	reps.Value(0).Object().Value("bundle").Number().IsEqual(bundle.ID)

	e.GET("/framework/services").
		WithQuery("filter", "(lang=en").
		Expect().
		Status(http.StatusBadRequest).
		JSON().Object().Value("error").String().IsEqual("ErrInvalidFilter")

	service := e.GET("/" + restdata.ServicePath(english)).
		Expect().
		Status(http.StatusOK).
		JSON().Object()
	service.Value("id").Number().IsEqual(english)
	service.Value("properties").Object().Value("lang").String().IsEqual("en")
}

func TestXMLRepresentation(t *testing.T) {
	e, runtime, _ := newTestServer(t, nil)
	bundle, err := runtime.Install("test:xml.jar", nil)
	require.NoError(t, err)

	resp := e.GET("/"+restdata.BundlePath(bundle.ID)).
		WithHeader("Accept", "application/org.osgi.bundle+xml").
		Expect().
		Status(http.StatusOK)
	resp.Header("Content-Type").IsEqual("application/org.osgi.bundle+xml")
	body := resp.Body().Raw()
	decoded, err := restdata.Decode(strings.NewReader(body), restdata.NewMediaType(restdata.BundleKind, restdata.XML), restdata.BundleTarget)
	if assert.NoError(t, err) {
		assert.Equal(t, "xml", decoded.(*framework.Bundle).SymbolicName)
	}

	// Errors come back in the requested syntax too
	resp = e.GET("/framework/bundle/999999").
		WithHeader("Accept", "application/xml").
		Expect().
		Status(http.StatusNotFound)
	resp.Header("Content-Type").IsEqual("application/xml")
	decoded, err = restdata.Decode(strings.NewReader(resp.Body().Raw()), restdata.MediaType{Syntax: restdata.XML}, restdata.ErrorTarget)
	if assert.NoError(t, err) {
		assert.Equal(t, framework.ErrNoSuchBundle{ID: 999999}, decoded.(*restdata.ErrorResponse).ToError())
	}

	// XML in
	e.PUT("/framework/startlevel").
		WithBytes([]byte("<frameworkStartLevel><startLevel>4</startLevel></frameworkStartLevel>")).
		WithHeader("Content-Type", "application/org.osgi.framework.startlevel+xml").
		Expect().
		Status(http.StatusNoContent)
	level, err := runtime.StartLevel()
	require.NoError(t, err)
	assert.Equal(t, 4, level.StartLevel)
}

// greeting is an extension handler.
type greeting string

func (g greeting) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	_, _ = resp.Write([]byte(string(g)))
}

func TestExtensions(t *testing.T) {
	e, _, server := newTestServer(t, nil)
	registry := extension.NewRegistry()
	registry.AddListener(server.Extensions)

	hello := extension.NewUnit("hello", "greeter/{name}", greeting("hello"))
	banner := extension.NewUnit("banner", "banner", greeting("banner"))
	require.NoError(t, registry.Register(hello))
	require.NoError(t, registry.Register(banner))

	e.GET("/extensions").
		Expect().
		Status(http.StatusOK).
		JSON().Array().IsEqual([]map[string]interface{}{
		{"name": "banner", "path": "banner"},
		{"name": "hello", "path": "greeter/{name}"},
	})
	e.GET("/extensions/greeter/world").
		Expect().
		Status(http.StatusOK).
		Body().IsEqual("hello")

	registry.Unregister(hello.ID)
	e.GET("/extensions/greeter/world").
		Expect().
		Status(http.StatusNotFound)
	e.GET("/extensions/banner").
		Expect().
		Status(http.StatusOK).
		Body().IsEqual("banner")
	e.GET("/framework/bundles").
		Expect().
		Status(http.StatusOK)

	// Extensions cannot take over built-in paths
	assert.Error(t, server.Router.Attach("rogue", "/framework/bundles", greeting("rogue")))
}

func TestPrefix(t *testing.T) {
	e, _, _ := newTestServer(t, func(h http.Handler) http.Handler {
		return http.StripPrefix("/api", h)
	})
	path := e.POST("/api/framework/bundles").
		WithText("test:prefixed.jar").
		Expect().
		Status(http.StatusCreated).
		Header("Location").IsEqual("/api/framework/bundle/1").
		Raw()
	e.GET(path).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("symbolicName").String().IsEqual("prefixed")
}
