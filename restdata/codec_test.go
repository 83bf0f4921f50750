// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"bytes"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/diffeo/go-fwrest/framework"
)

var syntaxes = []Syntax{JSON, XML}

func roundTrip(t *testing.T, syntax Syntax, target Target, value interface{}) interface{} {
	var buf bytes.Buffer
	mt := MediaType{Syntax: syntax}
	if !assert.NoError(t, Encode(&buf, mt, target, value)) {
		return nil
	}
	text := buf.String()
	out, err := Decode(&buf, mt, target)
	if !assert.NoError(t, err, text) {
		return nil
	}
	return out
}

func TestRecordRoundTrip(t *testing.T) {
	records := []struct {
		Name   string
		Target Target
		Value  interface{}
	}{
		{"startlevel", FrameworkStartLevelTarget, &framework.FrameworkStartLevel{
			StartLevel:              3,
			InitialBundleStartLevel: 2,
		}},
		{"bundle", BundleTarget, &framework.Bundle{
			ID:                 7,
			SymbolicName:       "org.example.hello",
			Version:            "1.2.3",
			State:              framework.Active,
			Location:           "file:/tmp/hello <1>.jar",
			LastModified:       1476892800000,
			RegisteredServices: []int64{3, 1, 2},
			ServicesInUse:      []int64{},
		}},
		{"bundle-empty", BundleTarget, &framework.Bundle{}},
		{"state", BundleStatusTarget, &framework.BundleStatus{
			State:   framework.Active,
			Options: framework.StartTransient,
		}},
		{"bundle-startlevel", BundleStartLevelTarget, &framework.BundleStartLevel{
			Bundle:               7,
			StartLevel:           4,
			ActivationPolicyUsed: true,
			PersistentlyStarted:  true,
		}},
		{"service", ServiceTarget, &framework.ServiceReference{
			ID:     12,
			Bundle: 7,
			Properties: map[string]interface{}{
				framework.ObjectClass: []string{"org.example.Hello", "org.example.Greeter"},
				framework.ServiceID:   int64(12),
				"service.ranking":     int64(-5),
				"weight":              2.5,
				"enabled":             true,
				"description":         "  padded & <escaped>  ",
				"empty":               []string{},
				"nested": map[string]interface{}{
					"depth": int64(2),
					"inner": map[string]interface{}{"leaf": "x"},
				},
			},
			UsingBundles: []int64{0, 4},
		}},
		{"error", ErrorTarget, &ErrorResponse{
			Error:   "ErrNoSuchBundle",
			Message: "No such bundle 9",
			Value:   9,
		}},
	}
	for _, syntax := range syntaxes {
		for _, r := range records {
			t.Run(syntax.String()+"/"+r.Name, func(tt *testing.T) {
				out := roundTrip(tt, syntax, r.Target, r.Value)
				assert.Equal(tt, r.Value, out)
			})
		}
	}
}

func TestListRoundTrip(t *testing.T) {
	bundles := []framework.Bundle{
		{ID: 0, SymbolicName: "system.bundle", State: framework.Active},
		{ID: 1, SymbolicName: "a", State: framework.Resolved, RegisteredServices: []int64{}},
	}
	extensions := []framework.Extension{{Name: "hello", Path: "hello/{who}"}}
	for _, syntax := range syntaxes {
		t.Run(syntax.String(), func(tt *testing.T) {
			out := roundTrip(tt, syntax, BundleListTarget, BundleList(bundles))
			if assert.IsType(tt, []interface{}{}, out) {
				assert.Equal(tt, bundles, Bundles(out.([]interface{})))
			}

			out = roundTrip(tt, syntax, ExtensionListTarget, ExtensionList(extensions))
			if assert.IsType(tt, []interface{}{}, out) {
				assert.Equal(tt, extensions, Extensions(out.([]interface{})))
			}

			out = roundTrip(tt, syntax, BundlePathsTarget, []string{"framework/bundle/0", "framework/bundle/1"})
			assert.Equal(tt, []string{"framework/bundle/0", "framework/bundle/1"}, out)

			out = roundTrip(tt, syntax, BundleHeaderTarget, map[string]string{
				"Bundle-SymbolicName": "a",
				"Bundle-Version":      "1.0.0",
				"Bundle-Description":  "",
			})
			assert.Equal(tt, map[string]string{
				"Bundle-SymbolicName": "a",
				"Bundle-Version":      "1.0.0",
				"Bundle-Description":  "",
			}, out)
		})
	}
}

func TestEmptyCollections(t *testing.T) {
	for _, syntax := range syntaxes {
		t.Run(syntax.String(), func(tt *testing.T) {
			out := roundTrip(tt, syntax, ServiceListTarget, []interface{}{})
			assert.Equal(tt, []interface{}{}, out)
			assert.NotNil(tt, out)

			out = roundTrip(tt, syntax, ServicePathsTarget, []string{})
			assert.Equal(tt, []string{}, out)

			out = roundTrip(tt, syntax, BundleHeaderTarget, map[string]string{})
			assert.Equal(tt, map[string]string{}, out)
		})
	}
}

func TestDecodeJSONDocuments(t *testing.T) {
	mt := NewMediaType(BundleKind, JSON)

	// Unknown fields are ignored, absent fields stay zero, an
	// empty list is distinct from a missing one
	out, err := Decode(strings.NewReader(`{"id":4,"extra":{"x":[1,2]},"registeredServices":[]}`), mt, BundleTarget)
	if assert.NoError(t, err) {
		assert.Equal(t, &framework.Bundle{ID: 4, RegisteredServices: []int64{}}, out)
	}

	// null is the same as absent
	out, err = Decode(strings.NewReader(`{"id":4,"symbolicName":null}`), mt, BundleTarget)
	if assert.NoError(t, err) {
		assert.Equal(t, &framework.Bundle{ID: 4}, out)
	}

	// An integral float is an integer
	out, err = Decode(strings.NewReader(`{"state":32.0,"options":0}`), mt, BundleStatusTarget)
	if assert.NoError(t, err) {
		assert.Equal(t, &framework.BundleStatus{State: framework.Active}, out)
	}
}

func TestDecodeXMLDocuments(t *testing.T) {
	mt := NewMediaType(BundleKind, XML)
	doc := `<?xml version="1.0"?>
<bundle>
  <id> 4 </id>
  <symbolicName>a.b</symbolicName>
  <unknown><x>1</x></unknown>
  <registeredServices></registeredServices>
  <servicesInUse><value>1</value><value>2</value></servicesInUse>
</bundle>`
	out, err := Decode(strings.NewReader(doc), mt, BundleTarget)
	if assert.NoError(t, err) {
		assert.Equal(t, &framework.Bundle{
			ID:                 4,
			SymbolicName:       "a.b",
			RegisteredServices: []int64{},
			ServicesInUse:      []int64{1, 2},
		}, out)
	}

	out, err = Decode(strings.NewReader(`<bundleStartLevel><persistentlyStarted>true</persistentlyStarted></bundleStartLevel>`),
		NewMediaType(BundleStartLevelKind, XML), BundleStartLevelTarget)
	if assert.NoError(t, err) {
		assert.Equal(t, &framework.BundleStartLevel{PersistentlyStarted: true}, out)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		Name   string
		Syntax Syntax
		Target Target
		Doc    string
		Path   string
	}{
		{"json-malformed", JSON, BundleTarget, `{"id":`, ""},
		{"json-empty", JSON, BundleTarget, ``, ""},
		{"json-not-object", JSON, BundleTarget, `[1]`, "bundle"},
		{"json-string-int", JSON, BundleTarget, `{"id":"7"}`, "bundle.id"},
		{"json-fraction", JSON, BundleStatusTarget, `{"state":32.5}`, "bundleState.state"},
		{"json-int-string", JSON, BundleTarget, `{"symbolicName":7}`, "bundle.symbolicName"},
		{"json-list-item", JSON, BundleTarget, `{"servicesInUse":[1,"x"]}`, "bundle.servicesInUse[1]"},
		{"json-list-type", JSON, BundleTarget, `{"servicesInUse":3}`, "bundle.servicesInUse"},
		{"json-bool", JSON, BundleStartLevelTarget, `{"persistentlyStarted":"yes"}`, "bundleStartLevel.persistentlyStarted"},
		{"json-list-record", JSON, BundleListTarget, `[{"id":1},{"id":true}]`, "bundles[1].id"},
		{"json-not-list", JSON, BundlePathsTarget, `{"a":"b"}`, "bundles"},
		{"json-map-value", JSON, BundleHeaderTarget, `{"a":1}`, "headers.a"},
		{"json-property", JSON, ServiceTarget, `{"properties":{"x":[1]}}`, "service.properties"},
		{"json-trailing", JSON, BundleStatusTarget, `{"state":32,"options":0} garbage`, ""},
		{"json-two-values", JSON, BundleStatusTarget, `{"state":32} {"state":4}`, ""},
		{"xml-malformed", XML, BundleTarget, `<bundle><id>1</bundle>`, ""},
		{"xml-empty", XML, BundleTarget, ``, ""},
		{"xml-int", XML, BundleTarget, `<bundle><id>seven</id></bundle>`, "bundle.id"},
		{"xml-nested-scalar", XML, BundleTarget, `<bundle><id><x/></id></bundle>`, "bundle.id"},
		{"xml-entry-key", XML, BundleHeaderTarget, `<headers><entry>x</entry></headers>`, "headers"},
		{"xml-root-name", XML, BundleTarget, `<service><id>4</id></service>`, "bundle"},
		{"xml-list-name", XML, BundleListTarget, `<services><service><id>1</id></service></services>`, "bundles"},
		{"xml-list-item-name", XML, BundleListTarget, `<bundles><bundle><id>1</id></bundle><service><id>2</id></service></bundles>`, "bundles[1]"},
		{"xml-strings-item-name", XML, BundlePathsTarget, `<bundles><service>framework/service/1</service></bundles>`, "bundles[0]"},
		{"xml-map-name", XML, BundleHeaderTarget, `<properties><entry key="a">1</entry></properties>`, "headers"},
		{"xml-property-type", XML, ServiceTarget, `<service><properties><property key="a" type="Long">x</property></properties></service>`, "service.properties"},
	}
	for _, test := range tests {
		t.Run(test.Name, func(tt *testing.T) {
			out, err := Decode(strings.NewReader(test.Doc), MediaType{Syntax: test.Syntax}, test.Target)
			assert.Nil(tt, out)
			if assert.IsType(tt, &DecodeError{}, err) {
				assert.Equal(tt, test.Path, err.(*DecodeError).Path)
				assert.Equal(tt, 400, err.(*DecodeError).HTTPStatus())
			}
		})
	}
}

func TestEncodeOmitsEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, NewMediaType(BundleStateKind, JSON), BundleStatusTarget, &framework.BundleStatus{State: framework.Resolved})
	if assert.NoError(t, err) {
		assert.Equal(t, `{"state":4}`, strings.TrimSpace(buf.String()))
	}

	buf.Reset()
	err = Encode(&buf, NewMediaType(BundleStateKind, XML), BundleStatusTarget, &framework.BundleStatus{State: framework.Resolved})
	if assert.NoError(t, err) {
		assert.Equal(t, `<bundleState><state>4</state></bundleState>`, buf.String())
	}
}

func TestEncodeXMLLayout(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, NewMediaType(BundleHeaderKind, XML), BundleHeaderTarget, map[string]string{"b": "2", "a": "<1>"})
	if assert.NoError(t, err) {
		assert.Equal(t, `<headers><entry key="a">&lt;1&gt;</entry><entry key="b">2</entry></headers>`, buf.String())
	}

	buf.Reset()
	err = Encode(&buf, NewMediaType(BundlesKind, XML), BundlePathsTarget, []string{"framework/bundle/0"})
	if assert.NoError(t, err) {
		assert.Equal(t, `<bundles><bundle>framework/bundle/0</bundle></bundles>`, buf.String())
	}
}

func TestEncodeWrongType(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, MediaType{Syntax: JSON}, BundleTarget, &framework.ServiceReference{})
	assert.Error(t, err)
}

func TestEncodeBadProperty(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, MediaType{Syntax: XML}, ServiceTarget, &framework.ServiceReference{
		Properties: map[string]interface{}{"x": struct{}{}},
	})
	assert.Error(t, err)
}

func TestParseMediaType(t *testing.T) {
	good := map[string]MediaType{
		"application/org.osgi.bundle+json":                      {Kind: BundleKind, Syntax: JSON},
		"application/org.osgi.bundle+xml":                       {Kind: BundleKind, Syntax: XML},
		"application/org.osgi.bundles.representations+xml":      {Kind: BundleRepresentationsKind, Syntax: XML},
		"application/org.osgi.framework.startlevel+json; q=0.5": {Kind: FrameworkStartLevelKind, Syntax: JSON},
		"application/json":                                      {Syntax: JSON},
		"text/json":                                             {Syntax: JSON},
		"application/xml; charset=utf-8":                        {Syntax: XML},
		"text/xml":                                              {Syntax: XML},
	}
	for s, mt := range good {
		parsed, err := ParseMediaType(s)
		if assert.NoError(t, err, s) {
			assert.Equal(t, mt, parsed, s)
		}
	}

	for _, s := range []string{"", "text/plain", "application/org.osgi.bogus+json", "application/org.osgi.bundle+yaml"} {
		_, err := ParseMediaType(s)
		assert.IsType(t, ErrUnsupportedMediaType{}, err, s)
	}
	_, err := ParseMediaType("/;;")
	assert.IsType(t, ErrBadRequest{}, err)

	assert.Equal(t, "application/org.osgi.bundle.state+xml", NewMediaType(BundleStateKind, XML).String())
	assert.Equal(t, "application/json", MediaType{}.String())
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		Err  error
		Code string
		Back error
	}{
		{framework.ErrNoSuchBundle{ID: 4}, "ErrNoSuchBundle", framework.ErrNoSuchBundle{ID: 4}},
		{ErrNotFound{Err: framework.ErrNoSuchService{ID: 5}}, "ErrNoSuchService", framework.ErrNoSuchService{ID: 5}},
		{framework.ErrSystemBundle, "ErrSystemBundle", framework.ErrSystemBundle},
		{framework.ErrBadStartLevel, "ErrBadStartLevel", framework.ErrBadStartLevel},
		{framework.ErrInvalidBundle{Location: "test:x.jar", Reason: "no manifest"}, "ErrInvalidBundle",
			framework.ErrInvalidBundle{Location: "test:x.jar", Reason: "no manifest"}},
		{ErrBadRequest{Err: framework.ErrInvalidFilter{Filter: "(a=", Reason: "unexpected end"}}, "ErrInvalidFilter",
			framework.ErrInvalidFilter{Filter: "(a=", Reason: "unexpected end"}},
		{framework.ErrInvalidState{ID: 3, State: framework.Active}, "ErrInvalidState",
			framework.ErrInvalidState{ID: 3, State: framework.Active}},
		{errors.New("boom"), "error", errors.New("boom")},
	}
	for _, test := range tests {
		resp := ErrorResponse{}
		resp.FromError(test.Err)
		assert.Equal(t, test.Code, resp.Error)
		assert.Equal(t, test.Back, resp.ToError())
		assert.Equal(t, test.Code != "error", resp.IsFrameworkError(), test.Code)
		for _, syntax := range syntaxes {
			out := roundTrip(t, syntax, ErrorTarget, &resp)
			if assert.IsType(t, &ErrorResponse{}, out) {
				back := out.(*ErrorResponse).ToError()
				assert.Equal(t, test.Back, back, "%v %v", syntax, test.Code)
				assert.Equal(t, test.Err.Error(), back.Error())
			}
		}
	}

	resp := ErrorResponse{}
	resp.FromPanic("oops")
	assert.Equal(t, "panic", resp.Error)
	assert.Equal(t, "oops", resp.Message)
	assert.NotEmpty(t, resp.Stack)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, 404, StatusOf(framework.ErrNoSuchBundle{ID: 1}))
	assert.Equal(t, 404, StatusOf(ErrNotFound{Err: errors.New("x")}))
	assert.Equal(t, 400, StatusOf(framework.ErrInvalidFilter{Filter: "(", Reason: "eof"}))
	assert.Equal(t, 400, StatusOf(&DecodeError{Err: errors.New("x")}))
	assert.Equal(t, 415, StatusOf(ErrUnsupportedMediaType{Type: "x/y"}))
	assert.Equal(t, 500, StatusOf(framework.ErrSystemBundle))
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "framework/bundle/7", BundlePath(7))
	assert.Equal(t, "framework/service/12", ServicePath(12))

	path, err := Expand(ServicesURL, map[string]interface{}{FilterParam: "(objectClass=a b)"})
	if assert.NoError(t, err) {
		u, err := url.Parse(path)
		if assert.NoError(t, err) {
			assert.Equal(t, "framework/services", u.Path)
			assert.Equal(t, "(objectClass=a b)", u.Query().Get(FilterParam))
		}
	}
	path, err = Expand(ServicesURL, map[string]interface{}{})
	if assert.NoError(t, err) {
		assert.Equal(t, "framework/services", path)
	}
}
