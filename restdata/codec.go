// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// node is one value of a parsed document, in either syntax.  The
// decoder walks a shape against a tree of these.
type node interface {
	// named checks the element name of a node, where the syntax
	// has one.
	named(name string) error

	// member returns the field called name of a record node, and
	// whether it was present.
	member(name string) (node, bool, error)

	// items returns the elements of a list node.
	items() ([]node, error)

	// entries returns the key/value pairs of a map node.
	entries() ([]entry, error)

	// scalar returns a scalar value.  textual is true if the
	// syntax only carries text (XML), in which case the value is
	// a string to be parsed into the declared kind.
	scalar() (value interface{}, textual bool, err error)

	// properties returns a service property map.
	properties() (map[string]interface{}, error)
}

type entry struct {
	key   string
	value node
}

// Encode writes value as a representation of target in the syntax
// of mediaType.
func Encode(w io.Writer, mediaType MediaType, target Target, value interface{}) (err error) {
	// The field accessors assert their record type; turn a
	// mismatched value into an error.
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("cannot encode %T as %v: %v", value, target.name, recovered)
		}
	}()
	if mediaType.Syntax == XML {
		return encodeXML(w, target, value)
	}
	return encodeJSON(w, target, value)
}

// Decode reads a representation of target in the syntax of
// mediaType.  The result is a record pointer, []interface{} of record
// pointers, []string, or map[string]string, depending on target.
// Any failure is a *DecodeError and no partial value is returned.
func Decode(r io.Reader, mediaType MediaType, target Target) (interface{}, error) {
	var root node
	var err error
	if mediaType.Syntax == XML {
		root, err = parseXML(r)
	} else {
		root, err = parseJSON(r)
	}
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return decodeTarget(root, target)
}

// DecodeMediaType is Decode with the media type given as a
// Content-Type: header value.
func DecodeMediaType(r io.Reader, contentType string, target Target) (interface{}, error) {
	mediaType, err := ParseMediaType(contentType)
	if err != nil {
		return nil, err
	}
	return Decode(r, mediaType, target)
}

func decodeTarget(root node, target Target) (interface{}, error) {
	path := target.name
	if err := root.named(target.name); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	switch target.kind {
	case targetRecord:
		return decodeRecord(root, target.shape, path)
	case targetList:
		items, err := root.items()
		if err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
		result := make([]interface{}, len(items))
		for i, item := range items {
			itemPath := fmt.Sprintf("%v[%d]", path, i)
			if err = item.named(target.shape.Name); err != nil {
				return nil, &DecodeError{Path: itemPath, Err: err}
			}
			result[i], err = decodeRecord(item, target.shape, itemPath)
			if err != nil {
				return nil, err
			}
		}
		return result, nil
	case targetStrings:
		items, err := root.items()
		if err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
		result := make([]string, len(items))
		for i, item := range items {
			err = item.named(target.item)
			if err == nil {
				result[i], err = decodeString(item)
			}
			if err != nil {
				return nil, &DecodeError{Path: fmt.Sprintf("%v[%d]", path, i), Err: err}
			}
		}
		return result, nil
	case targetStringMap:
		return decodeStringMap(root, path)
	}
	return nil, &DecodeError{Path: path, Err: errors.New("unknown target")}
}

func decodeRecord(n node, shape *Shape, path string) (interface{}, error) {
	record := shape.New()
	for _, field := range shape.Fields {
		fieldPath := path + "." + field.Name
		child, present, err := n.member(field.Name)
		if err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
		if !present {
			continue
		}
		value, err := decodeField(child, field, fieldPath)
		if err != nil {
			return nil, err
		}
		field.set(record, value)
	}
	return record, nil
}

func decodeField(n node, field Field, path string) (interface{}, error) {
	var value interface{}
	var err error
	switch field.Kind {
	case KindInt:
		value, err = decodeInt(n)
	case KindString:
		value, err = decodeString(n)
	case KindBool:
		value, err = decodeBool(n)
	case KindIntList:
		var items []node
		items, err = n.items()
		if err != nil {
			break
		}
		list := make([]int64, len(items))
		for i, item := range items {
			list[i], err = decodeInt(item)
			if err != nil {
				return nil, &DecodeError{Path: fmt.Sprintf("%v[%d]", path, i), Err: err}
			}
		}
		value = list
	case KindStringMap:
		return decodeStringMap(n, path)
	case KindProperties:
		value, err = n.properties()
	case KindRecord:
		return decodeRecord(n, field.Shape, path)
	default:
		err = fmt.Errorf("unknown field kind %v", field.Kind)
	}
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return value, nil
}

func decodeStringMap(n node, path string) (map[string]string, error) {
	entries, err := n.entries()
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	result := make(map[string]string, len(entries))
	for _, e := range entries {
		result[e.key], err = decodeString(e.value)
		if err != nil {
			return nil, &DecodeError{Path: path + "." + e.key, Err: err}
		}
	}
	return result, nil
}

func decodeInt(n node) (int64, error) {
	v, textual, err := n.scalar()
	if err != nil {
		return 0, err
	}
	return toInt(v, textual)
}

// toInt coerces a scalar to int64.  Text is parsed only when the
// syntax is textual; a JSON string is never an integer.
func toInt(v interface{}, textual bool) (int64, error) {
	switch vv := v.(type) {
	case int64:
		return vv, nil
	case int:
		return int64(vv), nil
	case uint64:
		if vv > math.MaxInt64 {
			return 0, fmt.Errorf("integer %v out of range", vv)
		}
		return int64(vv), nil
	case float64:
		if vv != math.Trunc(vv) || vv > math.MaxInt64 || vv < math.MinInt64 {
			return 0, fmt.Errorf("expected integer, got %v", vv)
		}
		return int64(vv), nil
	case string:
		if textual {
			return strconv.ParseInt(strings.TrimSpace(vv), 10, 64)
		}
	}
	return 0, fmt.Errorf("expected integer, got %T", v)
}

func decodeString(n node) (string, error) {
	v, _, err := n.scalar()
	if err != nil {
		return "", err
	}
	if s, isString := v.(string); isString {
		return s, nil
	}
	return "", fmt.Errorf("expected string, got %T", v)
}

func decodeBool(n node) (bool, error) {
	v, textual, err := n.scalar()
	if err != nil {
		return false, err
	}
	switch vv := v.(type) {
	case bool:
		return vv, nil
	case string:
		if textual {
			return strconv.ParseBool(strings.TrimSpace(vv))
		}
	}
	return false, fmt.Errorf("expected boolean, got %T", v)
}

// sortedKeys returns the keys of a map in order, for deterministic
// output.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedPropertyKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
