// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/kiosk/lib/ident"
)

// Directory serves the files under a root directory. A request
// addresses one file at a time via a subpath appended to the resource
// id; the directory itself has no representation. Range semantics are
// those of File, applied to the resolved sub-file.
type Directory struct {
	id        string
	root      string
	blockSize int
	headers   map[string]string
}

// NewDirectory builds a Directory resource for an existing directory.
func NewDirectory(path string, options Options) (*Directory, error) {
	canonical, err := ident.CanonicalPath(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(canonical)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", canonical, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%q is not a directory", canonical)
	}
	return &Directory{
		id:        ident.ResourceID([]byte(canonical), filepath.Base(canonical)),
		root:      canonical,
		blockSize: options.BlockSize,
		headers:   options.Headers,
	}, nil
}

// ID returns the content-addressed resource id.
func (d *Directory) ID() string {
	return d.id
}

// Root returns the canonical directory root.
func (d *Directory) Root() string {
	return d.root
}

// Resolve maps a request subpath to an absolute path under the root.
// Subpaths that are absolute, empty, or climb out of the root with
// ".." segments fail with [ErrPathEscapes] before any filesystem
// access.
func (d *Directory) Resolve(subpath string) (string, error) {
	relative := filepath.FromSlash(subpath)
	if !filepath.IsLocal(relative) {
		return "", fmt.Errorf("%q: %w", subpath, ErrPathEscapes)
	}
	return filepath.Join(d.root, relative), nil
}

// ServeHTTP serves the sub-file named by the request's "subpath" path
// value.
func (d *Directory) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resolved, err := d.Resolve(r.PathValue("subpath"))
	if err != nil {
		applyHeaders(w, d.headers)
		WriteError(w, http.StatusForbidden, err.Error())
		return
	}

	info, err := os.Stat(resolved)
	if err != nil {
		applyHeaders(w, d.headers)
		WriteError(w, statusForFileError(err), fmt.Sprintf("resolving subpath: %v", err))
		return
	}
	if info.IsDir() {
		applyHeaders(w, d.headers)
		WriteError(w, http.StatusNotFound, "subpath is a directory")
		return
	}

	serveFileRange(w, r, resolved, d.blockSize, d.headers)
}
