// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package extension

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/diffeo/go-fwrest/framework"
	"github.com/diffeo/go-fwrest/router"
)

// DefaultMount is the usual extension mount point.
const DefaultMount = "/extensions"

// ErrInvalidPath is reported when a unit's declared path cannot be
// mounted.
type ErrInvalidPath struct {
	Path   string
	Reason string
}

func (e ErrInvalidPath) Error() string {
	return fmt.Sprintf("Invalid extension path %q: %v", e.Path, e.Reason)
}

// Bridge attaches registry units to a router under a mount point.  It
// is a Listener; add it to a Registry with AddListener.  Units whose
// paths are invalid or collide with existing routes are logged and
// skipped, and never affect other routes.
type Bridge struct {
	// Router receives the units' handlers.
	Router *router.Router

	// Mount is the path template prefix for every unit, such as
	// "/extensions".
	Mount string

	// Logger receives reports of units that could not be
	// attached.
	Logger logrus.FieldLogger

	lock     sync.Mutex
	attached map[string]framework.Extension
}

// NewBridge creates a bridge.  If logger is nil the logrus standard
// logger is used.
func NewBridge(r *router.Router, mount string, logger logrus.FieldLogger) *Bridge {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Bridge{
		Router:   r,
		Mount:    strings.TrimSuffix(mount, "/"),
		Logger:   logger,
		attached: make(map[string]framework.Extension),
	}
}

// Template returns the full router template for a unit path, or
// ErrInvalidPath.  The path must be relative and already clean, and
// must not carry a query or fragment.
func (b *Bridge) Template(unitPath string) (string, error) {
	if unitPath == "" {
		return "", ErrInvalidPath{Path: unitPath, Reason: "empty"}
	}
	if strings.HasPrefix(unitPath, "/") {
		return "", ErrInvalidPath{Path: unitPath, Reason: "must be relative"}
	}
	if strings.ContainsAny(unitPath, "?#") {
		return "", ErrInvalidPath{Path: unitPath, Reason: "query or fragment"}
	}
	if path.Clean(unitPath) != unitPath || unitPath == "." || unitPath == ".." || strings.HasPrefix(unitPath, "../") {
		return "", ErrInvalidPath{Path: unitPath, Reason: "not a clean path"}
	}
	template := b.Mount + "/" + unitPath
	if _, err := router.ParseTemplate(template); err != nil {
		return "", ErrInvalidPath{Path: unitPath, Reason: err.Error()}
	}
	return template, nil
}

func (b *Bridge) log(unit Unit, err error) {
	b.Logger.WithFields(logrus.Fields{
		"id":   unit.ID,
		"name": unit.Name,
		"path": unit.Path,
		"err":  err,
	}).Warn("Could not attach extension")
}

// OnAvailable attaches a new unit.
func (b *Bridge) OnAvailable(unit Unit) {
	template, err := b.Template(unit.Path)
	if err == nil {
		err = b.Router.Attach(unit.ID, template, unit.Handler)
	}
	if err != nil {
		b.log(unit, err)
		return
	}
	b.lock.Lock()
	b.attached[unit.ID] = framework.Extension{Name: unit.Name, Path: unit.Path}
	b.lock.Unlock()
	b.Logger.WithFields(logrus.Fields{
		"id":       unit.ID,
		"name":     unit.Name,
		"template": template,
	}).Info("Attached extension")
}

// OnUnavailable detaches a unit.
func (b *Bridge) OnUnavailable(unit Unit) {
	b.Router.Detach(unit.ID)
	b.lock.Lock()
	_, was := b.attached[unit.ID]
	delete(b.attached, unit.ID)
	b.lock.Unlock()
	if was {
		b.Logger.WithFields(logrus.Fields{
			"id":   unit.ID,
			"name": unit.Name,
		}).Info("Detached extension")
	}
}

// OnUpdated moves a unit to its new path in one step.  If the new
// path is invalid or collides with another route, the unit is
// detached.
func (b *Bridge) OnUpdated(old, unit Unit) {
	template, err := b.Template(unit.Path)
	if err != nil {
		b.log(unit, err)
		b.OnUnavailable(old)
		return
	}
	if err = b.Router.Reattach(unit.ID, template, unit.Handler); err != nil {
		b.log(unit, err)
		b.OnUnavailable(old)
		return
	}
	b.lock.Lock()
	b.attached[unit.ID] = framework.Extension{Name: unit.Name, Path: unit.Path}
	b.lock.Unlock()
}

// Extensions lists the attached extensions, sorted by name and then
// path.
func (b *Bridge) Extensions() []framework.Extension {
	b.lock.Lock()
	defer b.lock.Unlock()
	result := make([]framework.Extension, 0, len(b.attached))
	for _, ext := range b.attached {
		result = append(result, ext)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].Path < result[j].Path
	})
	return result
}
