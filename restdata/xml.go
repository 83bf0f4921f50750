// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

// There is no XML library in our dependency set that would do better
// than encoding/xml's token stream for this; the document structure
// is dictated by the field tables, not by struct tags.

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// XML type attribute values for service properties.
const (
	xmlString      = "String"
	xmlLong        = "Long"
	xmlDouble      = "Double"
	xmlBoolean     = "Boolean"
	xmlStringArray = "String[]"
	xmlMap         = "Map"
)

type xmlElement struct {
	name     string
	attrs    map[string]string
	children []*xmlElement
	text     strings.Builder
}

func parseXML(r io.Reader) (node, error) {
	decoder := xml.NewDecoder(r)
	var stack []*xmlElement
	var root *xmlElement
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			el := &xmlElement{name: t.Name.Local, attrs: make(map[string]string)}
			for _, attr := range t.Attr {
				el.attrs[attr.Name.Local] = attr.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			} else if root != nil {
				return nil, errors.New("multiple root elements")
			} else {
				root = el
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}
	if root == nil {
		return nil, errors.New("empty document")
	}
	return xmlNode{root}, nil
}

type xmlNode struct {
	el *xmlElement
}

func (n xmlNode) named(name string) error {
	if n.el.name != name {
		return fmt.Errorf("expected <%v>, got <%v>", name, n.el.name)
	}
	return nil
}

func (n xmlNode) member(name string) (node, bool, error) {
	for _, child := range n.el.children {
		if child.name == name {
			return xmlNode{child}, true, nil
		}
	}
	return nil, false, nil
}

func (n xmlNode) items() ([]node, error) {
	result := make([]node, len(n.el.children))
	for i, child := range n.el.children {
		result[i] = xmlNode{child}
	}
	return result, nil
}

func (n xmlNode) entries() ([]entry, error) {
	result := make([]entry, len(n.el.children))
	for i, child := range n.el.children {
		key, hasKey := child.attrs["key"]
		if !hasKey {
			return nil, fmt.Errorf("<%v> has no key", child.name)
		}
		result[i] = entry{key: key, value: xmlNode{child}}
	}
	return result, nil
}

func (n xmlNode) scalar() (interface{}, bool, error) {
	if len(n.el.children) > 0 {
		return nil, true, fmt.Errorf("expected text in <%v>", n.el.name)
	}
	return n.el.text.String(), true, nil
}

func (n xmlNode) properties() (map[string]interface{}, error) {
	result := make(map[string]interface{}, len(n.el.children))
	for _, child := range n.el.children {
		key, hasKey := child.attrs["key"]
		if !hasKey {
			return nil, fmt.Errorf("<%v> has no key", child.name)
		}
		v, err := xmlPropertyValue(child)
		if err != nil {
			return nil, fmt.Errorf("property %v: %v", key, err)
		}
		result[key] = v
	}
	return result, nil
}

func xmlPropertyValue(el *xmlElement) (interface{}, error) {
	text := el.text.String()
	switch el.attrs["type"] {
	case xmlString, "":
		return text, nil
	case xmlLong:
		return strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	case xmlDouble:
		return strconv.ParseFloat(strings.TrimSpace(text), 64)
	case xmlBoolean:
		return strconv.ParseBool(strings.TrimSpace(text))
	case xmlStringArray:
		strs := make([]string, len(el.children))
		for i, child := range el.children {
			strs[i] = child.text.String()
		}
		return strs, nil
	case xmlMap:
		return xmlNode{el}.properties()
	default:
		return nil, fmt.Errorf("unknown type %q", el.attrs["type"])
	}
}

// xmlWriter wraps an xml.Encoder, remembering the first error so
// callers can write a whole document and check once.
type xmlWriter struct {
	enc *xml.Encoder
	err error
}

func (x *xmlWriter) token(t xml.Token) {
	if x.err == nil {
		x.err = x.enc.EncodeToken(t)
	}
}

func (x *xmlWriter) start(name string, attrs ...xml.Attr) {
	x.token(xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs})
}

func (x *xmlWriter) end(name string) {
	x.token(xml.EndElement{Name: xml.Name{Local: name}})
}

func (x *xmlWriter) text(name, value string, attrs ...xml.Attr) {
	x.start(name, attrs...)
	if value != "" {
		x.token(xml.CharData(value))
	}
	x.end(name)
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func encodeXML(w io.Writer, target Target, value interface{}) error {
	x := &xmlWriter{enc: xml.NewEncoder(w)}
	switch target.kind {
	case targetRecord:
		x.record(target.shape.Name, target.shape, value)
	case targetList:
		x.start(target.name)
		for _, item := range value.([]interface{}) {
			x.record(target.shape.Name, target.shape, item)
		}
		x.end(target.name)
	case targetStrings:
		x.start(target.name)
		for _, s := range value.([]string) {
			x.text(target.item, s)
		}
		x.end(target.name)
	case targetStringMap:
		x.stringMap(target.name, value.(map[string]string))
	}
	if x.err == nil {
		x.err = x.enc.Flush()
	}
	return x.err
}

func (x *xmlWriter) record(name string, shape *Shape, record interface{}) {
	x.start(name)
	for _, field := range shape.Fields {
		v := field.get(record)
		if isAbsent(field.Kind, v) || (field.OmitEmpty && isEmpty(field.Kind, v)) {
			continue
		}
		switch field.Kind {
		case KindInt:
			x.text(field.Name, strconv.FormatInt(v.(int64), 10))
		case KindString:
			x.text(field.Name, v.(string))
		case KindBool:
			x.text(field.Name, strconv.FormatBool(v.(bool)))
		case KindIntList:
			x.start(field.Name)
			for _, i := range v.([]int64) {
				x.text("value", strconv.FormatInt(i, 10))
			}
			x.end(field.Name)
		case KindStringMap:
			x.stringMap(field.Name, v.(map[string]string))
		case KindProperties:
			x.start(field.Name)
			x.properties(v.(map[string]interface{}))
			x.end(field.Name)
		case KindRecord:
			x.record(field.Name, field.Shape, v)
		}
	}
	x.end(name)
}

func (x *xmlWriter) stringMap(name string, m map[string]string) {
	x.start(name)
	for _, k := range sortedKeys(m) {
		x.text("entry", m[k], attr("key", k))
	}
	x.end(name)
}

func (x *xmlWriter) properties(m map[string]interface{}) {
	for _, k := range sortedPropertyKeys(m) {
		key := attr("key", k)
		switch v := m[k].(type) {
		case string:
			x.text("property", v, key, attr("type", xmlString))
		case int64:
			x.text("property", strconv.FormatInt(v, 10), key, attr("type", xmlLong))
		case int:
			x.text("property", strconv.Itoa(v), key, attr("type", xmlLong))
		case float64:
			x.text("property", strconv.FormatFloat(v, 'g', -1, 64), key, attr("type", xmlDouble))
		case bool:
			x.text("property", strconv.FormatBool(v), key, attr("type", xmlBoolean))
		case []string:
			x.start("property", key, attr("type", xmlStringArray))
			for _, s := range v {
				x.text("value", s)
			}
			x.end("property")
		case map[string]interface{}:
			x.start("property", key, attr("type", xmlMap))
			x.properties(v)
			x.end("property")
		default:
			if x.err == nil {
				x.err = fmt.Errorf("property %v: unsupported value %T", k, v)
			}
		}
	}
}
