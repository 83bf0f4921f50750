// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/gobwas/glob"

	"github.com/diffeo/go-fwrest/framework"
)

// Filter is a parsed RFC 1960 LDAP search filter over service
// properties, such as
//
//     (&(objectClass=org.example.Greeter)(service.ranking>=10))
//
// Attribute names match case-insensitively.  A list-valued property
// matches if any of its elements does.
type Filter interface {
	// Match returns true if a property map satisfies the filter.
	Match(properties map[string]interface{}) bool
}

// ParseFilter parses an LDAP filter string.  Parse failures are
// framework.ErrInvalidFilter.
func ParseFilter(text string) (Filter, error) {
	p := &filterParser{text: text}
	p.skipSpace()
	f, err := p.filter()
	if err == nil {
		p.skipSpace()
		if !p.eof() {
			err = fmt.Errorf("unexpected %q after filter", p.text[p.pos:])
		}
	}
	if err != nil {
		return nil, framework.ErrInvalidFilter{Filter: text, Reason: err.Error()}
	}
	return f, nil
}

type filterParser struct {
	text string
	pos  int
}

var errFilterEnd = errors.New("unexpected end of filter")

func (p *filterParser) eof() bool {
	return p.pos >= len(p.text)
}

func (p *filterParser) skipSpace() {
	for !p.eof() && unicode.IsSpace(rune(p.text[p.pos])) {
		p.pos++
	}
}

func (p *filterParser) expect(c byte) error {
	if p.eof() {
		return errFilterEnd
	}
	if p.text[p.pos] != c {
		return fmt.Errorf("expected %q at offset %d", c, p.pos)
	}
	p.pos++
	return nil
}

func (p *filterParser) filter() (Filter, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.eof() {
		return nil, errFilterEnd
	}
	var f Filter
	var err error
	switch p.text[p.pos] {
	case '&':
		p.pos++
		var list []Filter
		list, err = p.filterList()
		f = andFilter(list)
	case '|':
		p.pos++
		var list []Filter
		list, err = p.filterList()
		f = orFilter(list)
	case '!':
		p.pos++
		p.skipSpace()
		var inner Filter
		inner, err = p.filter()
		f = notFilter{inner}
	default:
		f, err = p.item()
	}
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return f, nil
}

func (p *filterParser) filterList() ([]Filter, error) {
	var list []Filter
	for {
		p.skipSpace()
		if p.eof() || p.text[p.pos] != '(' {
			break
		}
		f, err := p.filter()
		if err != nil {
			return nil, err
		}
		list = append(list, f)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("empty filter list at offset %d", p.pos)
	}
	return list, nil
}

func (p *filterParser) item() (Filter, error) {
	start := p.pos
	for !p.eof() && strings.IndexByte("=<>~()", p.text[p.pos]) < 0 {
		p.pos++
	}
	attr := strings.TrimSpace(p.text[start:p.pos])
	if attr == "" {
		return nil, fmt.Errorf("missing attribute name at offset %d", start)
	}
	if p.eof() {
		return nil, errFilterEnd
	}
	var op string
	switch p.text[p.pos] {
	case '=':
		op = "="
		p.pos++
	case '~', '<', '>':
		if p.pos+1 < len(p.text) && p.text[p.pos+1] == '=' {
			op = p.text[p.pos : p.pos+2]
			p.pos += 2
			break
		}
		fallthrough
	default:
		return nil, fmt.Errorf("expected operator at offset %d", p.pos)
	}
	parts, err := p.value()
	if err != nil {
		return nil, err
	}
	if len(parts) > 1 && op == "=" {
		if len(parts) == 2 && parts[0] == "" && parts[1] == "" {
			return presentFilter{attr: attr}, nil
		}
		return newSubstringFilter(attr, parts)
	}
	return compareFilter{attr: attr, op: op, value: strings.Join(parts, "*")}, nil
}

// value reads a filter value up to the closing parenthesis, splitting
// it at unescaped '*'.
func (p *filterParser) value() ([]string, error) {
	var parts []string
	var current strings.Builder
	for {
		if p.eof() {
			return nil, errFilterEnd
		}
		c := p.text[p.pos]
		switch c {
		case ')':
			return append(parts, current.String()), nil
		case '(':
			return nil, fmt.Errorf("unescaped '(' at offset %d", p.pos)
		case '*':
			parts = append(parts, current.String())
			current.Reset()
		case '\\':
			p.pos++
			if p.eof() {
				return nil, errFilterEnd
			}
			current.WriteByte(p.text[p.pos])
		default:
			current.WriteByte(c)
		}
		p.pos++
	}
}

// lookup finds a property by case-insensitive name.
func lookup(properties map[string]interface{}, attr string) (interface{}, bool) {
	if v, present := properties[attr]; present {
		return v, true
	}
	for k, v := range properties {
		if strings.EqualFold(k, attr) {
			return v, true
		}
	}
	return nil, false
}

type andFilter []Filter

func (f andFilter) Match(properties map[string]interface{}) bool {
	for _, sub := range f {
		if !sub.Match(properties) {
			return false
		}
	}
	return true
}

type orFilter []Filter

func (f orFilter) Match(properties map[string]interface{}) bool {
	for _, sub := range f {
		if sub.Match(properties) {
			return true
		}
	}
	return false
}

type notFilter struct {
	inner Filter
}

func (f notFilter) Match(properties map[string]interface{}) bool {
	return !f.inner.Match(properties)
}

type presentFilter struct {
	attr string
}

func (f presentFilter) Match(properties map[string]interface{}) bool {
	_, present := lookup(properties, f.attr)
	return present
}

type substringFilter struct {
	attr    string
	pattern glob.Glob
}

func newSubstringFilter(attr string, parts []string) (Filter, error) {
	quoted := make([]string, len(parts))
	for i, part := range parts {
		quoted[i] = glob.QuoteMeta(part)
	}
	pattern, err := glob.Compile(strings.Join(quoted, "*"))
	if err != nil {
		return nil, err
	}
	return substringFilter{attr: attr, pattern: pattern}, nil
}

func (f substringFilter) Match(properties map[string]interface{}) bool {
	v, present := lookup(properties, f.attr)
	if !present {
		return false
	}
	switch vv := v.(type) {
	case string:
		return f.pattern.Match(vv)
	case []string:
		for _, s := range vv {
			if f.pattern.Match(s) {
				return true
			}
		}
	}
	return false
}

type compareFilter struct {
	attr  string
	op    string
	value string
}

func (f compareFilter) Match(properties map[string]interface{}) bool {
	v, present := lookup(properties, f.attr)
	if !present {
		return false
	}
	return f.compare(v)
}

func (f compareFilter) compare(v interface{}) bool {
	switch vv := v.(type) {
	case string:
		if f.op == "~=" {
			return approximate(vv) == approximate(f.value)
		}
		return ordered(strings.Compare(vv, f.value), f.op)
	case []string:
		for _, s := range vv {
			if f.compare(s) {
				return true
			}
		}
	case int64:
		n, err := strconv.ParseInt(strings.TrimSpace(f.value), 10, 64)
		if err != nil {
			return false
		}
		switch {
		case vv < n:
			return ordered(-1, f.op)
		case vv > n:
			return ordered(1, f.op)
		}
		return ordered(0, f.op)
	case float64:
		x, err := strconv.ParseFloat(strings.TrimSpace(f.value), 64)
		if err != nil {
			return false
		}
		switch {
		case vv < x:
			return ordered(-1, f.op)
		case vv > x:
			return ordered(1, f.op)
		}
		return ordered(0, f.op)
	case bool:
		if f.op != "=" && f.op != "~=" {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(f.value), strconv.FormatBool(vv))
	}
	return false
}

// ordered interprets a three-way comparison of a property against a
// filter value.
func ordered(c int, op string) bool {
	switch op {
	case "=", "~=":
		return c == 0
	case ">=":
		return c >= 0
	case "<=":
		return c <= 0
	}
	return false
}

// approximate normalizes a string for "~=": case and whitespace are
// ignored.
func approximate(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}
