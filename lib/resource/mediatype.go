// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"mime"
	"path/filepath"
	"strings"
)

// knownTypes covers extensions the stdlib's builtin table omits and
// that must not depend on the host's /etc/mime.types (absent in
// minimal containers). Consulted before the stdlib so results are
// deterministic across machines.
var knownTypes = map[string]string{
	".txt":  "text/plain; charset=utf-8",
	".text": "text/plain; charset=utf-8",
	".csv":  "text/csv; charset=utf-8",
	".tsv":  "text/tab-separated-values; charset=utf-8",
	".md":   "text/markdown; charset=utf-8",
	".yaml": "application/yaml",
	".yml":  "application/yaml",
}

// MediaType guesses the media type for a filename from its extension,
// falling back to application/octet-stream when nothing matches.
func MediaType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if mediaType, ok := knownTypes[ext]; ok {
		return mediaType
	}
	if mediaType := mime.TypeByExtension(ext); mediaType != "" {
		return mediaType
	}
	return "application/octet-stream"
}
