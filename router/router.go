// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package router maps URL paths to HTTP handlers through path
// templates, and lets handlers be attached and detached while the
// router is serving requests.
//
// Entries come in two classes.  Static entries are added with Handle,
// normally once at startup, and stay for the life of the router.
// Dynamic entries are added with Attach under an owner identifier,
// and are removed together by Detach(owner).  Both classes share one
// matching structure, and a template may not be added if another
// entry already matches exactly the same set of paths; in
// particular an extension can never take over a built-in path.
//
// The matching structure is immutable.  Every change builds a new
// one under a writer lock and publishes it atomically, so Route never
// blocks and never sees a partially applied change.
package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"sync/atomic"
)

// ErrConflict is returned when attaching a template that would match
// exactly the same paths as an existing entry.
type ErrConflict struct {
	Template string
	Existing string
}

func (e ErrConflict) Error() string {
	return fmt.Sprintf("Template %q conflicts with existing route %q", e.Template, e.Existing)
}

// ErrNoRoute is returned from Route if no template matches a path.
type ErrNoRoute struct {
	Path string
}

func (e ErrNoRoute) Error() string {
	return fmt.Sprintf("No route for %q", e.Path)
}

// HTTPStatus returns a fixed 404 Not Found error code.
func (e ErrNoRoute) HTTPStatus() int {
	return http.StatusNotFound
}

// ErrStatic is returned by DetachTemplate for entries added with
// Handle.
var ErrStatic = errors.New("Cannot detach a static route")

// ErrNoOwner is returned by Attach and Reattach if the owner is empty.
var ErrNoOwner = errors.New("Dynamic routes need an owner")

// RouteInfo describes one entry in the router.
type RouteInfo struct {
	Template string

	// Owner is empty for static entries.
	Owner string
}

type entry struct {
	template Template
	handler  http.Handler
	owner    string
}

type node struct {
	literals map[string]*node
	variable *node
	entry    *entry
}

// table is one immutable snapshot of the router contents.
type table struct {
	root    *node
	entries []*entry
	shapes  map[string]*entry
}

func buildTable(entries []*entry) *table {
	t := &table{
		root:    &node{},
		entries: entries,
		shapes:  make(map[string]*entry, len(entries)),
	}
	for _, e := range entries {
		t.shapes[e.template.shape()] = e
		n := t.root
		for _, seg := range e.template.segments {
			if seg.variable != "" {
				if n.variable == nil {
					n.variable = &node{}
				}
				n = n.variable
				continue
			}
			if n.literals == nil {
				n.literals = make(map[string]*node)
			}
			next := n.literals[seg.literal]
			if next == nil {
				next = &node{}
				n.literals[seg.literal] = next
			}
			n = next
		}
		n.entry = e
	}
	return t
}

// match walks the trie, preferring literal children and backtracking
// to the variable child.  values accumulates variable segments.
func (n *node) match(segs []string, values []string) (*entry, []string) {
	if len(segs) == 0 {
		return n.entry, values
	}
	seg := segs[0]
	if child := n.literals[seg]; child != nil {
		if e, v := child.match(segs[1:], values); e != nil {
			return e, v
		}
	}
	if n.variable != nil && seg != "" {
		if e, v := n.variable.match(segs[1:], append(values, seg)); e != nil {
			return e, v
		}
	}
	return nil, nil
}

// Router is an http.Handler dispatching on path templates.  The zero
// value is not usable; call New.
type Router struct {
	// NotFound, if non-nil, handles requests that match no
	// route.  Otherwise http.NotFound is used.
	NotFound http.Handler

	lock    sync.Mutex
	current atomic.Value
}

// New creates an empty router.
func New() *Router {
	r := &Router{}
	r.current.Store(buildTable(nil))
	return r
}

func (r *Router) load() *table {
	return r.current.Load().(*table)
}

// Handle adds a static entry.  It fails if the template does not
// parse or collides with an existing entry.
func (r *Router) Handle(template string, handler http.Handler) error {
	return r.add("", template, handler)
}

// HandleFunc adds a static entry for a handler function.
func (r *Router) HandleFunc(template string, f func(http.ResponseWriter, *http.Request)) error {
	return r.Handle(template, http.HandlerFunc(f))
}

// Attach adds a dynamic entry on behalf of owner.  An owner may
// attach any number of templates.
func (r *Router) Attach(owner, template string, handler http.Handler) error {
	if owner == "" {
		return ErrNoOwner
	}
	return r.add(owner, template, handler)
}

func (r *Router) add(owner, template string, handler http.Handler) error {
	tmpl, err := ParseTemplate(template)
	if err != nil {
		return err
	}
	r.lock.Lock()
	defer r.lock.Unlock()

	old := r.load()
	if existing, taken := old.shapes[tmpl.shape()]; taken {
		return ErrConflict{Template: template, Existing: existing.template.String()}
	}
	entries := make([]*entry, len(old.entries), len(old.entries)+1)
	copy(entries, old.entries)
	entries = append(entries, &entry{template: tmpl, handler: handler, owner: owner})
	r.current.Store(buildTable(entries))
	return nil
}

// Detach removes every dynamic entry attached by owner, and returns
// the templates that were removed.
func (r *Router) Detach(owner string) []string {
	if owner == "" {
		return nil
	}
	r.lock.Lock()
	defer r.lock.Unlock()

	kept, removed := r.without(func(e *entry) bool { return e.owner == owner })
	if len(removed) > 0 {
		r.current.Store(buildTable(kept))
	}
	return removed
}

// DetachTemplate removes the dynamic entry with exactly this
// template.  It returns ErrNoRoute if there is no such entry and
// ErrStatic if the entry is static.
func (r *Router) DetachTemplate(template string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	var found *entry
	for _, e := range r.load().entries {
		if e.template.String() == template {
			found = e
			break
		}
	}
	if found == nil {
		return ErrNoRoute{Path: template}
	}
	if found.owner == "" {
		return ErrStatic
	}
	kept, _ := r.without(func(e *entry) bool { return e == found })
	r.current.Store(buildTable(kept))
	return nil
}

// Reattach replaces all of owner's entries with a single entry for
// template, in one step: a concurrent Route sees either the old
// entries or the new one.  If the new template is invalid or
// collides with someone else's entry, nothing changes.
func (r *Router) Reattach(owner, template string, handler http.Handler) error {
	if owner == "" {
		return ErrNoOwner
	}
	tmpl, err := ParseTemplate(template)
	if err != nil {
		return err
	}
	r.lock.Lock()
	defer r.lock.Unlock()

	kept, _ := r.without(func(e *entry) bool { return e.owner == owner })
	for _, e := range kept {
		if e.template.shape() == tmpl.shape() {
			return ErrConflict{Template: template, Existing: e.template.String()}
		}
	}
	kept = append(kept, &entry{template: tmpl, handler: handler, owner: owner})
	r.current.Store(buildTable(kept))
	return nil
}

// without returns the current entries split by drop.  Call with the
// lock held.
func (r *Router) without(drop func(*entry) bool) (kept []*entry, removed []string) {
	for _, e := range r.load().entries {
		if drop(e) {
			removed = append(removed, e.template.String())
		} else {
			kept = append(kept, e)
		}
	}
	return
}

// Route finds the handler for a path and the values of its template
// variables.  Variable values are URL-unescaped.  If nothing matches,
// returns ErrNoRoute.
func (r *Router) Route(path string) (http.Handler, map[string]string, error) {
	e, values := r.load().root.match(splitPath(path), nil)
	if e == nil {
		return nil, nil, ErrNoRoute{Path: path}
	}
	for i, v := range values {
		if unescaped, err := url.PathUnescape(v); err == nil {
			values[i] = unescaped
		}
	}
	return e.handler, e.template.bind(values), nil
}

// Routes lists every entry, sorted by template.
func (r *Router) Routes() []RouteInfo {
	entries := r.load().entries
	result := make([]RouteInfo, len(entries))
	for i, e := range entries {
		result[i] = RouteInfo{Template: e.template.String(), Owner: e.owner}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Template < result[j].Template
	})
	return result
}

// ServeHTTP dispatches a request to the matching handler.  The
// handler can retrieve the template variables with Vars.
func (r *Router) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	handler, vars, err := r.Route(req.URL.EscapedPath())
	if err != nil {
		if r.NotFound != nil {
			r.NotFound.ServeHTTP(resp, req)
		} else {
			http.NotFound(resp, req)
		}
		return
	}
	ctx := context.WithValue(req.Context(), varsKey{}, vars)
	handler.ServeHTTP(resp, req.WithContext(ctx))
}

type varsKey struct{}

// Vars returns the template variables bound for a request routed
// through a Router, or nil.
func Vars(req *http.Request) map[string]string {
	if vars, ok := req.Context().Value(varsKey{}).(map[string]string); ok {
		return vars
	}
	return nil
}

// WithVars returns a copy of req carrying vars, as if it had been
// routed.  This is mostly useful for testing handlers directly.
func WithVars(req *http.Request, vars map[string]string) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), varsKey{}, vars))
}
