// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bureau-foundation/kiosk/lib/httprange"
	"github.com/bureau-foundation/kiosk/lib/ident"
)

// File serves a single regular file. Identity derives from the
// canonical path, not the file's bytes: the content may change between
// requests without changing the URL, and every request re-stats the
// file so size and range math track the bytes on disk at serve time.
type File struct {
	id        string
	path      string
	blockSize int
	headers   map[string]string
}

// NewFile builds a File resource for an existing regular file.
func NewFile(path string, options Options) (*File, error) {
	canonical, err := ident.CanonicalPath(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(canonical)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", canonical, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%q is not a regular file", canonical)
	}
	return &File{
		id:        ident.ResourceID([]byte(canonical), filepath.Base(canonical)),
		path:      canonical,
		blockSize: options.BlockSize,
		headers:   options.Headers,
	}, nil
}

// ID returns the content-addressed resource id.
func (f *File) ID() string {
	return f.id
}

// Path returns the canonical path the resource serves.
func (f *File) Path() string {
	return f.path
}

func (f *File) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serveFileRange(w, r, f.path, f.blockSize, f.headers)
}

// serveFileRange answers a GET or HEAD for one file with byte-range
// support. Shared by File and Directory (per resolved sub-file).
//
// No Range header: 200 with the full body. Range header: 206 with the
// requested slice, or 416 when the header is malformed or the range
// unsatisfiable. Filesystem failures (the file may have been removed
// after registration) answer 500 for this request only; the resource
// stays registered and later requests succeed if the file reappears.
func serveFileRange(w http.ResponseWriter, r *http.Request, path string, blockSize int, headers map[string]string) {
	applyHeaders(w, headers)

	info, err := os.Stat(path)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("reading resource: %v", err))
		return
	}
	size := info.Size()

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" {
		w.Header().Set("Content-Type", MediaType(path))
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		streamRange(w, path, 0, size, blockSize)
		return
	}

	requested, err := httprange.Parse(rangeHeader)
	var start, end int64
	if err == nil {
		start, end, err = requested.Resolve(size)
	}
	if err != nil {
		// Reject rather than degrade to a 200: a client that sent a
		// Range header wants partial content, and serving the whole
		// file would mask its bug.
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		WriteError(w, http.StatusRequestedRangeNotSatisfiable, err.Error())
		return
	}

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", MediaType(path))
	w.Header().Set("Content-Length", strconv.FormatInt(end-start+1, 10))
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	w.WriteHeader(http.StatusPartialContent)
	if r.Method == http.MethodHead {
		return
	}
	streamRange(w, path, start, end+1, blockSize)
}

// streamRange copies [start, end) of path to the response. The reader
// is closed unconditionally, including when the client aborts
// mid-stream. Copy failures after the status line are unreportable;
// the client sees the truncated body.
func streamRange(w http.ResponseWriter, path string, start, end int64, blockSize int) {
	reader, err := httprange.OpenRange(path, start, end, blockSize)
	if err != nil {
		// Status is already written; nothing more can be said in-band.
		return
	}
	defer reader.Close()
	io.Copy(w, reader)
}

// statusForFileError maps a filesystem failure to a response status.
// Present for callers that stat before committing to a status line.
func statusForFileError(err error) int {
	if errors.Is(err, os.ErrNotExist) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
