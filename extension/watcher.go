// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package extension

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httputil"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// Declaration is the content of an extension declaration file:
//
//     name: greeter
//     path: greeter/{name}
//     proxy: http://localhost:8081/
//
// An extension either proxies to another HTTP server, which sees the
// full request path appended to the proxy URL's path, or serves fixed
// content:
//
//     name: banner
//     path: banner
//     content: Hello, world
//     content_type: text/plain
type Declaration struct {
	Name        string `mapstructure:"name"`
	Path        string `mapstructure:"path"`
	Proxy       string `mapstructure:"proxy"`
	Content     string `mapstructure:"content"`
	ContentType string `mapstructure:"content_type"`
}

// ParseDeclaration reads a YAML extension declaration.  Unknown keys
// are errors.
func ParseDeclaration(data []byte) (Declaration, error) {
	var decl Declaration
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return decl, err
	}
	config := mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &decl,
	}
	decoder, err := mapstructure.NewDecoder(&config)
	if err == nil {
		err = decoder.Decode(raw)
	}
	if err != nil {
		return decl, err
	}
	if decl.Path == "" {
		return decl, errors.New("extension declaration has no path")
	}
	if (decl.Proxy == "") == (decl.Content == "") {
		return decl, errors.New("extension declaration needs exactly one of proxy or content")
	}
	if decl.Name == "" {
		decl.Name = decl.Path
	}
	return decl, nil
}

// Handler builds the HTTP handler a declaration describes.
func (d Declaration) Handler() (http.Handler, error) {
	if d.Proxy != "" {
		target, err := url.Parse(d.Proxy)
		if err != nil {
			return nil, err
		}
		if target.Scheme == "" || target.Host == "" {
			return nil, fmt.Errorf("proxy URL %q is not absolute", d.Proxy)
		}
		return httputil.NewSingleHostReverseProxy(target), nil
	}
	contentType := d.ContentType
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}
	return staticContent{content: d.Content, contentType: contentType}, nil
}

type staticContent struct {
	content     string
	contentType string
}

func (s staticContent) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		resp.Header().Set("Allow", "GET, HEAD")
		http.Error(resp, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	resp.Header().Set("Content-Type", s.contentType)
	resp.Header().Set("Content-Length", fmt.Sprintf("%d", len(s.content)))
	resp.WriteHeader(http.StatusOK)
	if req.Method == http.MethodGet {
		_, _ = resp.Write([]byte(s.content))
	}
}

// Watcher keeps a registry in sync with the extension declarations in
// a directory.  Each *.yaml or *.yml file declares one unit, whose id
// is derived from the file name.
type Watcher struct {
	// Dir is the directory to watch.
	Dir string

	// Registry receives the declared units.
	Registry *Registry

	// Logger receives reports of bad declarations.
	Logger logrus.FieldLogger
}

// NewWatcher creates a watcher.  If logger is nil the logrus standard
// logger is used.
func NewWatcher(dir string, registry *Registry, logger logrus.FieldLogger) *Watcher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Watcher{Dir: dir, Registry: registry, Logger: logger}
}

// isDeclaration returns true if a file name looks like an extension
// declaration.
func isDeclaration(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return (ext == ".yaml" || ext == ".yml") && !strings.HasPrefix(filepath.Base(name), ".")
}

// UnitID returns the unit id for a declaration file.
func (w *Watcher) UnitID(file string) string {
	if abs, err := filepath.Abs(file); err == nil {
		file = abs
	}
	return uuid.NewV5(uuid.NamespaceURL, "file://"+filepath.ToSlash(file)).String()
}

// Load reads one declaration file and registers its unit.  If the
// file cannot be read, any unit it declared before is withdrawn.
func (w *Watcher) Load(file string) error {
	id := w.UnitID(file)
	unit, err := w.load(file, id)
	if err != nil {
		w.Logger.WithFields(logrus.Fields{
			"file": file,
			"err":  err,
		}).Warn("Bad extension declaration")
		w.Registry.Unregister(id)
		return err
	}
	return w.Registry.Register(unit)
}

func (w *Watcher) load(file, id string) (Unit, error) {
	data, err := ioutil.ReadFile(file)
	if err != nil {
		return Unit{}, err
	}
	decl, err := ParseDeclaration(data)
	if err != nil {
		return Unit{}, err
	}
	handler, err := decl.Handler()
	if err != nil {
		return Unit{}, err
	}
	return Unit{ID: id, Name: decl.Name, Path: decl.Path, Handler: handler}, nil
}

// Remove withdraws the unit a declaration file declared.
func (w *Watcher) Remove(file string) {
	if w.Registry.Unregister(w.UnitID(file)) {
		w.Logger.WithField("file", file).Info("Removed extension declaration")
	}
}

// Scan loads every declaration file currently in the directory.
// Individual bad files are logged, not returned.
func (w *Watcher) Scan() error {
	infos, err := ioutil.ReadDir(w.Dir)
	if err != nil {
		return err
	}
	for _, info := range infos {
		if !info.IsDir() && isDeclaration(info.Name()) {
			_ = w.Load(filepath.Join(w.Dir, info.Name()))
		}
	}
	return nil
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !isDeclaration(event.Name) {
		return
	}
	switch {
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.Remove(event.Name)
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		_ = w.Load(event.Name)
	}
}

// Run scans the directory and then follows changes to it until ctx
// is cancelled.  ready, if not nil, is closed once the initial scan
// is done and changes are being watched.
func (w *Watcher) Run(ctx context.Context, ready chan<- struct{}) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err = fw.Add(w.Dir); err != nil {
		return err
	}
	if err = w.Scan(); err != nil {
		return err
	}
	if ready != nil {
		close(ready)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.Logger.WithError(err).Warn("Extension directory watch failed")
		}
	}
}
