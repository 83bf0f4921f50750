// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package router

import (
	"fmt"
	"strings"
)

// ErrBadTemplate is returned when a path template does not parse.
type ErrBadTemplate struct {
	Template string
	Reason   string
}

func (e ErrBadTemplate) Error() string {
	return fmt.Sprintf("Invalid path template %q: %v", e.Template, e.Reason)
}

// segment is one element of a template: either a literal string or,
// if variable is non-empty, a named variable.
type segment struct {
	literal  string
	variable string
}

// Template is a parsed path template such as
// /framework/bundle/{bundleId}/state.  Literal segments match only
// themselves; variable segments match any single non-empty segment.
type Template struct {
	raw      string
	segments []segment
}

// ParseTemplate parses a path template.  The template must begin with
// /, may not contain empty segments, and may not name the same
// variable twice.  "/" itself is the template with no segments.
func ParseTemplate(template string) (Template, error) {
	t := Template{raw: template}
	if !strings.HasPrefix(template, "/") {
		return t, ErrBadTemplate{Template: template, Reason: "must begin with /"}
	}
	if template == "/" {
		return t, nil
	}
	seen := make(map[string]bool)
	for _, part := range strings.Split(template[1:], "/") {
		if part == "" {
			return t, ErrBadTemplate{Template: template, Reason: "empty segment"}
		}
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			name := part[1 : len(part)-1]
			if name == "" || strings.ContainsAny(name, "{}") {
				return t, ErrBadTemplate{Template: template, Reason: "bad variable " + part}
			}
			if seen[name] {
				return t, ErrBadTemplate{Template: template, Reason: "duplicate variable " + name}
			}
			seen[name] = true
			t.segments = append(t.segments, segment{variable: name})
			continue
		}
		if strings.ContainsAny(part, "{}?#") {
			return t, ErrBadTemplate{Template: template, Reason: "bad literal " + part}
		}
		t.segments = append(t.segments, segment{literal: part})
	}
	return t, nil
}

// String returns the template as originally written.
func (t Template) String() string {
	return t.raw
}

// Variables returns the names of the template's variables in order.
func (t Template) Variables() []string {
	var names []string
	for _, seg := range t.segments {
		if seg.variable != "" {
			names = append(names, seg.variable)
		}
	}
	return names
}

// shape returns the template with variable names erased.  Two
// templates with the same shape would match exactly the same paths.
func (t Template) shape() string {
	parts := make([]string, len(t.segments))
	for i, seg := range t.segments {
		if seg.variable != "" {
			parts[i] = "{}"
		} else {
			parts[i] = seg.literal
		}
	}
	return "/" + strings.Join(parts, "/")
}

// bind pairs positional variable values with the template's names.
func (t Template) bind(values []string) map[string]string {
	vars := make(map[string]string, len(values))
	i := 0
	for _, seg := range t.segments {
		if seg.variable != "" {
			vars[seg.variable] = values[i]
			i++
		}
	}
	return vars
}

// splitPath breaks a request path into segments.  "" and "/" have no
// segments; a trailing slash produces an empty final segment, which
// never matches anything.
func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
