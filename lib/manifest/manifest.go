// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest parses kiosk serving manifests: JSONC documents
// declaring the files, directories, inline contents, and tilesets a
// kiosk registers at startup.
//
// Manifests are authored as JSONC (JSON extended with // line
// comments, /* block comments */, and trailing commas) so they can
// carry inline documentation next to the data they describe.
//
// The typical flow:
//
//  1. ReadFile or Parse: JSONC bytes → Manifest
//  2. Validate: structural checks (paths present, exactly one
//     backend per tileset entry)
//  3. The command registers each entry with a provider.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// Manifest declares the resources a kiosk serves at startup.
type Manifest struct {
	Files       []FileEntry      `json:"files,omitempty"`
	Directories []DirectoryEntry `json:"directories,omitempty"`
	Contents    []ContentEntry   `json:"contents,omitempty"`
	Tilesets    []TilesetEntry   `json:"tilesets,omitempty"`
}

// FileEntry registers one file resource.
type FileEntry struct {
	// Path to the file. Relative paths resolve against the manifest
	// file's directory.
	Path string `json:"path"`

	// Headers are merged into every response for the resource.
	Headers map[string]string `json:"headers,omitempty"`
}

// DirectoryEntry registers one directory resource.
type DirectoryEntry struct {
	// Path to the directory root. Relative paths resolve against the
	// manifest file's directory.
	Path string `json:"path"`

	// Headers are merged into every response for the resource.
	Headers map[string]string `json:"headers,omitempty"`
}

// ContentEntry registers one inline text resource.
type ContentEntry struct {
	// Text is the payload to serve.
	Text string `json:"text"`

	// Extension selects the media type (".txt" when empty).
	Extension string `json:"extension,omitempty"`

	// Headers are merged into every response for the resource.
	Headers map[string]string `json:"headers,omitempty"`
}

// TilesetEntry registers one tileset. Exactly one of Archive or
// SQLite must be set.
type TilesetEntry struct {
	// Archive is the path to a tile archive file.
	Archive string `json:"archive,omitempty"`

	// SQLite is the path to a tileset database.
	SQLite string `json:"sqlite,omitempty"`

	// UID names the tileset; a name is synthesized when empty. Must
	// not contain ".", the tile id separator.
	UID string `json:"uid,omitempty"`
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a Manifest.
func Parse(data []byte) (*Manifest, error) {
	stripped := jsonc.ToJSON(data)

	var m Manifest
	if err := json.Unmarshal(stripped, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	return &m, nil
}

// ReadFile reads a JSONC manifest from disk, parses it, and resolves
// relative entry paths against the manifest's directory.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	m.resolvePaths(filepath.Dir(path))
	return m, nil
}

// resolvePaths rewrites relative entry paths against base. Absolute
// paths are kept as-is.
func (m *Manifest) resolvePaths(base string) {
	resolve := func(path string) string {
		if path == "" || filepath.IsAbs(path) {
			return path
		}
		return filepath.Join(base, path)
	}
	for i := range m.Files {
		m.Files[i].Path = resolve(m.Files[i].Path)
	}
	for i := range m.Directories {
		m.Directories[i].Path = resolve(m.Directories[i].Path)
	}
	for i := range m.Tilesets {
		m.Tilesets[i].Archive = resolve(m.Tilesets[i].Archive)
		m.Tilesets[i].SQLite = resolve(m.Tilesets[i].SQLite)
	}
}

// Validate checks a Manifest for structural issues. Returns a list
// of human-readable issue descriptions; an empty list means the
// manifest is valid. Path existence is not checked here — that is
// the registering command's concern, with its own error reporting.
func (m *Manifest) Validate() []string {
	var issues []string

	for index, entry := range m.Files {
		if entry.Path == "" {
			issues = append(issues, fmt.Sprintf("files[%d]: path is required", index))
		}
	}

	for index, entry := range m.Directories {
		if entry.Path == "" {
			issues = append(issues, fmt.Sprintf("directories[%d]: path is required", index))
		}
	}

	for index, entry := range m.Contents {
		if entry.Text == "" {
			issues = append(issues, fmt.Sprintf("contents[%d]: text is required", index))
		}
	}

	for index, entry := range m.Tilesets {
		prefix := fmt.Sprintf("tilesets[%d]", index)
		hasArchive := entry.Archive != ""
		hasSQLite := entry.SQLite != ""
		switch {
		case !hasArchive && !hasSQLite:
			issues = append(issues, fmt.Sprintf("%s: one of archive or sqlite is required", prefix))
		case hasArchive && hasSQLite:
			issues = append(issues, fmt.Sprintf("%s: archive and sqlite are mutually exclusive", prefix))
		}
	}

	return issues
}

// Total reports the number of declared resources.
func (m *Manifest) Total() int {
	return len(m.Files) + len(m.Directories) + len(m.Contents) + len(m.Tilesets)
}
