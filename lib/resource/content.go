// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"net/http"
	"strconv"

	"github.com/bureau-foundation/kiosk/lib/ident"
)

// Content serves an in-memory payload. The body is immutable and held
// whole, so Range headers are ignored and every request receives the
// complete payload with a 200. Identity derives from the payload
// bytes and the extension: registering equal bytes again yields the
// same id.
type Content struct {
	id        string
	data      []byte
	mediaType string
	headers   map[string]string
}

// NewText builds a Content resource from a text payload. The media
// type defaults to text/plain via the synthesized ".txt" extension;
// options.Extension overrides it.
func NewText(text string, options Options) *Content {
	return newContent([]byte(text), ".txt", options)
}

// NewBytes builds a Content resource from a binary payload. The media
// type defaults to application/octet-stream via the synthesized
// ".bin" extension; options.Extension overrides it.
func NewBytes(data []byte, options Options) *Content {
	return newContent(data, ".bin", options)
}

func newContent(data []byte, defaultExt string, options Options) *Content {
	ext := options.Extension
	if ext == "" {
		ext = defaultExt
	}
	return &Content{
		id:        ident.ContentID(data, ext),
		data:      data,
		mediaType: MediaType("content" + ext),
		headers:   options.Headers,
	}
}

// ID returns the content-addressed resource id.
func (c *Content) ID() string {
	return c.id
}

// ServeHTTP writes the full payload regardless of any Range header.
func (c *Content) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	applyHeaders(w, c.headers)
	w.Header().Set("Content-Type", c.mediaType)
	w.Header().Set("Content-Length", strconv.Itoa(len(c.data)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	w.Write(c.data)
}
