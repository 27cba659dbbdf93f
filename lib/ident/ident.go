// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

// Package ident derives content-addressed resource identifiers.
//
// A resource id is the first 12 hex characters of a BLAKE3 digest of
// the resource's defining payload, a dash, and a human-readable label.
// Identity lives entirely in the digest prefix: the label is cosmetic
// and two ids with equal prefixes name the same content. Registering
// semantically identical content therefore always yields the same id.
//
// Filesystem resources hash the canonicalized absolute path string,
// not the file's bytes. A file's content can change without changing
// its identity, and the id is stable across process runs; two distinct
// paths holding identical bytes get distinct ids.
package ident

import (
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest of a resource's defining payload.
type Hash [32]byte

// HashBytes computes the BLAKE3 digest of the given payload. A string
// and its UTF-8 byte encoding produce the same digest, so text and
// binary registrations of the same bytes share identity.
func HashBytes(data []byte) Hash {
	return blake3.Sum256(data)
}

// ResourceID returns the identifier for a payload: the first 12 hex
// characters (48 bits) of the payload digest, a dash, and the label.
func ResourceID(payload []byte, label string) string {
	digest := HashBytes(payload)
	return hex.EncodeToString(digest[:6]) + "-" + label
}

// PathID returns the identifier for a filesystem path. The digest
// covers the canonical path string from [CanonicalPath], and the label
// is the path's base name. Different spellings of one path (relative,
// via symlink) resolve to the same id.
func PathID(path string) (string, error) {
	canonical, err := CanonicalPath(path)
	if err != nil {
		return "", err
	}
	return ResourceID([]byte(canonical), filepath.Base(canonical)), nil
}

// ContentID returns the identifier for an in-memory payload. The label
// is the synthesized token "content" plus the filename extension that
// governs the payload's media type (".txt", ".bin", or an explicit
// caller-supplied extension).
func ContentID(data []byte, ext string) string {
	return ResourceID(data, "content"+ext)
}

// CanonicalPath resolves a path to its absolute form with symlinks
// evaluated. The path must exist.
func CanonicalPath(path string) (string, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("canonicalizing %q: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(absolute)
	if err != nil {
		return "", fmt.Errorf("canonicalizing %q: %w", path, err)
	}
	return resolved, nil
}
