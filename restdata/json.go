// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"reflect"

	"github.com/ugorji/go/codec"
)

// jsonHandle returns the codec settings for both directions: objects
// decode as map[string]interface{}, whole numbers as int64, and maps
// encode with sorted keys.
func jsonHandle() *codec.JsonHandle {
	h := &codec.JsonHandle{}
	h.MapType = reflect.TypeOf(map[string]interface{}(nil))
	h.SignedInteger = true
	h.Canonical = true
	return h
}

// parseJSON reads exactly one JSON value; anything but whitespace
// after it is an error.
func parseJSON(r io.Reader) (node, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var v interface{}
	decoder := codec.NewDecoderBytes(data, jsonHandle())
	if err = decoder.Decode(&v); err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return jsonNode{v}, nil
}

func (n jsonNode) named(name string) error {
	return nil
}

type jsonNode struct {
	v interface{}
}

func (n jsonNode) object() (map[string]interface{}, error) {
	if m, isMap := n.v.(map[string]interface{}); isMap {
		return m, nil
	}
	return nil, fmt.Errorf("expected object, got %v", jsonTypeName(n.v))
}

func (n jsonNode) member(name string) (node, bool, error) {
	m, err := n.object()
	if err != nil {
		return nil, false, err
	}
	v, present := m[name]
	if !present || v == nil {
		return nil, false, nil
	}
	return jsonNode{v}, true, nil
}

func (n jsonNode) items() ([]node, error) {
	list, isList := n.v.([]interface{})
	if !isList {
		return nil, fmt.Errorf("expected array, got %v", jsonTypeName(n.v))
	}
	result := make([]node, len(list))
	for i, item := range list {
		result[i] = jsonNode{item}
	}
	return result, nil
}

func (n jsonNode) entries() ([]entry, error) {
	m, err := n.object()
	if err != nil {
		return nil, err
	}
	result := make([]entry, 0, len(m))
	for k, v := range m {
		result = append(result, entry{key: k, value: jsonNode{v}})
	}
	return result, nil
}

func (n jsonNode) scalar() (interface{}, bool, error) {
	switch n.v.(type) {
	case map[string]interface{}, []interface{}, nil:
		return nil, false, fmt.Errorf("expected scalar, got %v", jsonTypeName(n.v))
	}
	return n.v, false, nil
}

func (n jsonNode) properties() (map[string]interface{}, error) {
	m, err := n.object()
	if err != nil {
		return nil, err
	}
	return jsonProperties(m)
}

// jsonProperties normalizes a decoded JSON object to the property
// value types: arrays must hold only strings, numbers become int64 or
// float64, and objects recurse.
func jsonProperties(m map[string]interface{}) (map[string]interface{}, error) {
	result := make(map[string]interface{}, len(m))
	for k, v := range m {
		switch vv := v.(type) {
		case string, bool, int64, float64:
			result[k] = vv
		case uint64:
			i, err := toInt(vv, false)
			if err != nil {
				return nil, fmt.Errorf("property %v: %v", k, err)
			}
			result[k] = i
		case []interface{}:
			strs := make([]string, len(vv))
			for i, item := range vv {
				s, isString := item.(string)
				if !isString {
					return nil, fmt.Errorf("property %v: expected string array, got %v", k, jsonTypeName(item))
				}
				strs[i] = s
			}
			result[k] = strs
		case map[string]interface{}:
			nested, err := jsonProperties(vv)
			if err != nil {
				return nil, fmt.Errorf("property %v: %v", k, err)
			}
			result[k] = nested
		default:
			return nil, fmt.Errorf("property %v: unsupported value %v", k, jsonTypeName(v))
		}
	}
	return result, nil
}

func jsonTypeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	default:
		return "number"
	}
}

func encodeJSON(w io.Writer, target Target, value interface{}) error {
	var v interface{}
	switch target.kind {
	case targetRecord:
		v = jsonRecord(target.shape, value)
	case targetList:
		list := value.([]interface{})
		out := make([]interface{}, len(list))
		for i, item := range list {
			out[i] = jsonRecord(target.shape, item)
		}
		v = out
	case targetStrings:
		list := value.([]string)
		if list == nil {
			list = []string{}
		}
		v = list
	case targetStringMap:
		m := value.(map[string]string)
		if m == nil {
			m = map[string]string{}
		}
		v = m
	}
	encoder := codec.NewEncoder(w, jsonHandle())
	return encoder.Encode(v)
}

// jsonRecord flattens a record into a map following its field table.
func jsonRecord(shape *Shape, record interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(shape.Fields))
	for _, field := range shape.Fields {
		v := field.get(record)
		if isAbsent(field.Kind, v) || (field.OmitEmpty && isEmpty(field.Kind, v)) {
			continue
		}
		if field.Kind == KindRecord {
			v = jsonRecord(field.Shape, v)
		}
		out[field.Name] = v
	}
	return out
}
