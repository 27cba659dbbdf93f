// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

package provider

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/bureau-foundation/kiosk/lib/resource"
)

// Path marks a Create input as a filesystem path. Plain strings are
// always dispatched as text content; wrapping in Path is how callers
// say "serve the file at this location" instead of "serve these
// bytes".
type Path string

// Mount is one handler variant the provider dispatches over. A mount
// owns a fixed URL prefix, decides which objects it can represent,
// constructs and registers resources for them, and serves the HTTP
// routes under its prefix.
//
// Mounts are consulted in registration order and the first match
// wins, so a mount that structurally accepts broad inputs shadows
// later mounts for those inputs.
type Mount interface {
	// Prefix is the mount's fixed URL path prefix, e.g. "/files".
	Prefix() string

	// Handles reports whether this mount can represent obj.
	Handles(obj any) bool

	// Create builds a resource for obj and registers it in the
	// mount's table. The returned closer is the caller's ownership
	// claim: the registration lives until it is closed.
	Create(obj any, options resource.Options) (id string, owner io.Closer, err error)

	// URLPath returns the request path (and query, if any) addressing
	// the registered resource with the given id.
	URLPath(id string) string

	// Routes installs the mount's handlers on mux.
	Routes(mux *http.ServeMux)
}

// lookupHandler resolves the "id" path value against a table and
// forwards to the resource. Ids whose owners have all released stay
// indistinguishable from ids never registered: both answer 404.
func lookupHandler(table *resource.Table[resource.Resource]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		res, ok := table.Lookup(id)
		if !ok {
			resource.WriteError(w, http.StatusNotFound, fmt.Sprintf("no resource with id %q", id))
			return
		}
		res.ServeHTTP(w, r)
	}
}

// --- File mount ---

type fileMount struct {
	table *resource.Table[resource.Resource]
}

// NewFileMount serves regular files under /files/{id}.
func NewFileMount() Mount {
	return &fileMount{table: resource.NewTable[resource.Resource]()}
}

func (m *fileMount) Prefix() string { return "/files" }

func (m *fileMount) Handles(obj any) bool {
	path, ok := obj.(Path)
	if !ok {
		return false
	}
	info, err := os.Stat(string(path))
	return err == nil && info.Mode().IsRegular()
}

func (m *fileMount) Create(obj any, options resource.Options) (string, io.Closer, error) {
	file, err := resource.NewFile(string(obj.(Path)), options)
	if err != nil {
		return "", nil, err
	}
	return file.ID(), m.table.Register(file.ID(), file), nil
}

func (m *fileMount) URLPath(id string) string { return m.Prefix() + "/" + id }

func (m *fileMount) Routes(mux *http.ServeMux) {
	mux.Handle("GET /files/{id}", lookupHandler(m.table))
}

// --- Directory mount ---

type directoryMount struct {
	table *resource.Table[resource.Resource]
}

// NewDirectoryMount serves directory trees under
// /resources/{id}/{subpath...}. The bare id has no representation;
// clients always address a file inside the tree.
func NewDirectoryMount() Mount {
	return &directoryMount{table: resource.NewTable[resource.Resource]()}
}

func (m *directoryMount) Prefix() string { return "/resources" }

func (m *directoryMount) Handles(obj any) bool {
	path, ok := obj.(Path)
	if !ok {
		return false
	}
	info, err := os.Stat(string(path))
	return err == nil && info.IsDir()
}

func (m *directoryMount) Create(obj any, options resource.Options) (string, io.Closer, error) {
	directory, err := resource.NewDirectory(string(obj.(Path)), options)
	if err != nil {
		return "", nil, err
	}
	return directory.ID(), m.table.Register(directory.ID(), directory), nil
}

func (m *directoryMount) URLPath(id string) string { return m.Prefix() + "/" + id }

func (m *directoryMount) Routes(mux *http.ServeMux) {
	mux.Handle("GET /resources/{id}/{subpath...}", lookupHandler(m.table))
}

// --- Content mount ---

type contentMount struct {
	table *resource.Table[resource.Resource]
}

// NewContentMount serves in-memory payloads under /contents/{id}.
// Strings register as text, byte slices as binary.
func NewContentMount() Mount {
	return &contentMount{table: resource.NewTable[resource.Resource]()}
}

func (m *contentMount) Prefix() string { return "/contents" }

func (m *contentMount) Handles(obj any) bool {
	switch obj.(type) {
	case string, []byte:
		return true
	}
	return false
}

func (m *contentMount) Create(obj any, options resource.Options) (string, io.Closer, error) {
	var content *resource.Content
	switch payload := obj.(type) {
	case string:
		content = resource.NewText(payload, options)
	case []byte:
		content = resource.NewBytes(payload, options)
	default:
		return "", nil, fmt.Errorf("content mount cannot represent %T", obj)
	}
	return content.ID(), m.table.Register(content.ID(), content), nil
}

func (m *contentMount) URLPath(id string) string { return m.Prefix() + "/" + id }

func (m *contentMount) Routes(mux *http.ServeMux) {
	mux.Handle("GET /contents/{id}", lookupHandler(m.table))
}
