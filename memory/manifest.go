// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

// Bundles are jar files; only the main section of the manifest is
// needed, and archive/zip plus a line scanner read it directly.

import (
	"archive/zip"
	"bufio"
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"net/url"
	"os"
	"strings"

	"github.com/diffeo/go-fwrest/framework"
)

// manifestName is the path of the manifest inside a jar.
const manifestName = "META-INF/MANIFEST.MF"

// loadHeaders reads the manifest headers of a bundle.  content, if
// not nil, is the jar.  Otherwise a file: location is read if it
// exists, and failing that headers are made up from the location.
func loadHeaders(location string, content io.Reader) (map[string]string, error) {
	if content == nil {
		path, isFile := filePath(location)
		if !isFile {
			return syntheticHeaders(location), nil
		}
		f, err := os.Open(path)
		if os.IsNotExist(err) {
			return syntheticHeaders(location), nil
		}
		if err != nil {
			return nil, framework.ErrInvalidBundle{Location: location, Reason: err.Error()}
		}
		defer f.Close()
		content = f
	}
	data, err := ioutil.ReadAll(content)
	if err != nil {
		return nil, framework.ErrInvalidBundle{Location: location, Reason: err.Error()}
	}
	headers, err := jarManifest(data)
	if err != nil {
		return nil, framework.ErrInvalidBundle{Location: location, Reason: err.Error()}
	}
	if headers["Bundle-SymbolicName"] == "" {
		return nil, framework.ErrInvalidBundle{Location: location, Reason: "no Bundle-SymbolicName header"}
	}
	return headers, nil
}

// filePath returns the local path of a file: URL location.
func filePath(location string) (string, bool) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme != "file" {
		return "", false
	}
	if u.Path != "" {
		return u.Path, true
	}
	// file:relative/path
	return u.Opaque, u.Opaque != ""
}

// syntheticHeaders makes up headers for a bundle with no readable
// content: the symbolic name is the last component of the location
// without ".jar".
func syntheticHeaders(location string) map[string]string {
	name := location
	if i := strings.LastIndexAny(name, "/\\:"); i >= 0 {
		name = name[i+1:]
	}
	if q := strings.IndexAny(name, "?#"); q >= 0 {
		name = name[:q]
	}
	name = strings.TrimSuffix(name, ".jar")
	if name == "" {
		name = "bundle"
	}
	return map[string]string{
		"Bundle-ManifestVersion": "2",
		"Bundle-SymbolicName":    name,
		"Bundle-Version":         "0.0.0",
	}
}

// jarManifest extracts the main manifest section from jar file
// content.
func jarManifest(data []byte) (map[string]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	for _, file := range zr.File {
		if !strings.EqualFold(file.Name, manifestName) {
			continue
		}
		r, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return parseManifest(r)
	}
	return nil, fmt.Errorf("no %v", manifestName)
}

// parseManifest reads the main section of a jar manifest.  Lines are
// "Name: value"; a line starting with a single space continues the
// previous value; a blank line ends the section.
func parseManifest(r io.Reader) (map[string]string, error) {
	headers := make(map[string]string)
	scanner := bufio.NewScanner(r)
	var name string
	var value strings.Builder
	flush := func() {
		if name != "" {
			headers[name] = value.String()
		}
		name = ""
		value.Reset()
	}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			break
		}
		if line[0] == ' ' {
			if name == "" {
				return nil, fmt.Errorf("manifest line %d: continuation without header", lineNo)
			}
			value.WriteString(line[1:])
			continue
		}
		flush()
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			return nil, fmt.Errorf("manifest line %d: expected \"Name: value\"", lineNo)
		}
		name = line[:colon]
		value.WriteString(strings.TrimPrefix(line[colon+1:], " "))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return headers, nil
}
