// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

// Package resource defines the objects a provider serves over HTTP:
// files, directories, and in-memory content, plus the reference-counted
// table that ties their availability to live ownership.
//
// Each variant answers GET and HEAD for itself. File and Directory
// support single byte-range requests; Content always returns its full
// body. A malformed or unsatisfiable Range header is answered with 416
// rather than a silent 200 (see package httprange).
package resource

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrNotFound reports a lookup for an id that is absent from the
// table, either never registered or released by its last owner. The
// two cases are indistinguishable on purpose.
var ErrNotFound = errors.New("resource not found")

// ErrPathEscapes reports a directory subpath that would resolve
// outside the directory's root. Rejected before any filesystem access.
var ErrPathEscapes = errors.New("subpath escapes directory root")

// Resource is an object retrievable over HTTP under a stable,
// content-derived id. The id is the final path segment of the
// resource's URL and never changes for the resource's lifetime.
type Resource interface {
	ID() string
	http.Handler
}

// Options adjust how a constructed resource responds.
type Options struct {
	// Headers are merged into every response the resource writes,
	// including error responses.
	Headers map[string]string

	// BlockSize caps the chunk size of streamed file reads. Zero
	// selects httprange.DefaultBlockSize. Ignored by Content.
	BlockSize int

	// Extension overrides the synthesized filename extension that
	// selects a Content resource's media type (".txt" for text,
	// ".bin" for bytes when unset). Ignored by File and Directory,
	// whose extensions come from the served path.
	Extension string

	// UID names a tileset registration; when empty, a name is
	// synthesized. Ignored by the built-in variants, whose ids come
	// from their content.
	UID string
}

type errorBody struct {
	Error string `json:"error"`
}

// WriteError writes a JSON error body with the given status.
func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Error: message})
}

// applyHeaders copies a resource's extra headers onto a pending
// response. Called before any status is written so the headers reach
// every response for the resource.
func applyHeaders(w http.ResponseWriter, headers map[string]string) {
	for name, value := range headers {
		w.Header().Set(name, value)
	}
}
