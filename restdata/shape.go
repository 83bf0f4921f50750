// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

// This file contains the field tables the codec walks.  Each record
// type gets one Shape, built once, listing its wire fields with typed
// accessors; nothing here inspects types at run time.

// FieldKind is the wire kind of a record field.
type FieldKind int

const (
	// KindInt fields are int64 values.
	KindInt FieldKind = iota

	// KindString fields are strings.
	KindString

	// KindBool fields are booleans.
	KindBool

	// KindIntList fields are []int64 values.
	KindIntList

	// KindStringMap fields are map[string]string values.
	KindStringMap

	// KindProperties fields are service property maps,
	// map[string]interface{}.
	KindProperties

	// KindRecord fields are nested records of Field.Shape.
	KindRecord
)

// Field describes one field of a record shape.
type Field struct {
	// Name is the wire name of the field.
	Name string

	// Kind is the wire kind of the field.
	Kind FieldKind

	// Shape is the shape of a KindRecord field.
	Shape *Shape

	// OmitEmpty suppresses the field on output when it has its
	// zero value.
	OmitEmpty bool

	get func(record interface{}) interface{}
	set func(record interface{}, value interface{})
}

// Omit returns a copy of the field that is left out of encoded
// output when empty.
func (f Field) Omit() Field {
	f.OmitEmpty = true
	return f
}

// Shape describes a record type.
type Shape struct {
	// Name is the XML element name of the record.
	Name string

	// New returns a pointer to a new zero record.
	New func() interface{}

	// Fields lists the record's fields in wire order.
	Fields []Field
}

// IntField declares an integer field.
func IntField(name string, get func(interface{}) int64, set func(interface{}, int64)) Field {
	return Field{
		Name: name,
		Kind: KindInt,
		get:  func(r interface{}) interface{} { return get(r) },
		set:  func(r interface{}, v interface{}) { set(r, v.(int64)) },
	}
}

// StringField declares a string field.
func StringField(name string, get func(interface{}) string, set func(interface{}, string)) Field {
	return Field{
		Name: name,
		Kind: KindString,
		get:  func(r interface{}) interface{} { return get(r) },
		set:  func(r interface{}, v interface{}) { set(r, v.(string)) },
	}
}

// BoolField declares a boolean field.
func BoolField(name string, get func(interface{}) bool, set func(interface{}, bool)) Field {
	return Field{
		Name: name,
		Kind: KindBool,
		get:  func(r interface{}) interface{} { return get(r) },
		set:  func(r interface{}, v interface{}) { set(r, v.(bool)) },
	}
}

// IntListField declares a list-of-integers field.
func IntListField(name string, get func(interface{}) []int64, set func(interface{}, []int64)) Field {
	return Field{
		Name: name,
		Kind: KindIntList,
		get:  func(r interface{}) interface{} { return get(r) },
		set:  func(r interface{}, v interface{}) { set(r, v.([]int64)) },
	}
}

// StringMapField declares a string-to-string map field.
func StringMapField(name string, get func(interface{}) map[string]string, set func(interface{}, map[string]string)) Field {
	return Field{
		Name: name,
		Kind: KindStringMap,
		get:  func(r interface{}) interface{} { return get(r) },
		set:  func(r interface{}, v interface{}) { set(r, v.(map[string]string)) },
	}
}

// PropertiesField declares a service property map field.
func PropertiesField(name string, get func(interface{}) map[string]interface{}, set func(interface{}, map[string]interface{})) Field {
	return Field{
		Name: name,
		Kind: KindProperties,
		get:  func(r interface{}) interface{} { return get(r) },
		set:  func(r interface{}, v interface{}) { set(r, v.(map[string]interface{})) },
	}
}

// RecordField declares a nested record field.  get returns a record
// pointer, or nil if the field is absent; set receives a pointer
// created by shape.New.
func RecordField(name string, shape *Shape, get func(interface{}) interface{}, set func(interface{}, interface{})) Field {
	return Field{
		Name:  name,
		Kind:  KindRecord,
		Shape: shape,
		get:   get,
		set:   set,
	}
}

// isEmpty reports whether a field value is its kind's zero value.
func isEmpty(kind FieldKind, v interface{}) bool {
	switch kind {
	case KindInt:
		return v.(int64) == 0
	case KindString:
		return v.(string) == ""
	case KindBool:
		return !v.(bool)
	case KindIntList:
		return len(v.([]int64)) == 0
	case KindStringMap:
		return len(v.(map[string]string)) == 0
	case KindProperties:
		return len(v.(map[string]interface{})) == 0
	case KindRecord:
		return v == nil
	}
	return false
}

// isAbsent reports whether a field value should not be written at
// all: nil lists, maps, and records.  An empty but non-nil list is
// present.
func isAbsent(kind FieldKind, v interface{}) bool {
	switch kind {
	case KindIntList:
		return v.([]int64) == nil
	case KindStringMap:
		return v.(map[string]string) == nil
	case KindProperties:
		return v.(map[string]interface{}) == nil
	case KindRecord:
		return v == nil
	}
	return false
}

type targetKind int

const (
	targetRecord targetKind = iota
	targetList
	targetStrings
	targetStringMap
)

// Target describes the overall shape of a representation: a record,
// a list of records, a list of strings, or a string map.
type Target struct {
	kind  targetKind
	shape *Shape

	// name is the XML wrapper element for lists and maps.
	name string

	// item is the XML item element for string lists.
	item string
}

// RecordOf is the target for a single record.  Values are record
// pointers.
func RecordOf(shape *Shape) Target {
	return Target{kind: targetRecord, shape: shape, name: shape.Name}
}

// ListOf is the target for a list of records.  Values are
// []interface{} holding record pointers.
func ListOf(shape *Shape) Target {
	return Target{kind: targetList, shape: shape, name: shape.Name + "s"}
}

// StringsOf is the target for a list of strings, []string.  In XML
// the list is a name element holding item elements.
func StringsOf(name, item string) Target {
	return Target{kind: targetStrings, name: name, item: item}
}

// StringMapOf is the target for a string map, map[string]string.
func StringMapOf(name string) Target {
	return Target{kind: targetStringMap, name: name}
}
