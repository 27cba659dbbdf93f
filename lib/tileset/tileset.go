// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

// Package tileset serves tile datasets through the viewer protocol:
// an info document describing the dataset, tiles addressed by
// "uid.z.x..." ids, and an optional chromosome-sizes listing.
//
// The package ships three dataset backends (in-memory Static, the
// single-file Archive format, and SQLite databases) plus Mount, the
// provider mount exposing them under /tilesets/api/v1. Anything
// implementing Tileset can be registered the same way.
package tileset

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bureau-foundation/kiosk/lib/codec"
)

// Tile is one tile payload, keyed by the id it was requested under.
type Tile struct {
	ID   string
	Data any
}

// Tileset is a tile dataset. Info returns the dataset's metadata
// document. Tiles resolves tile ids, each prefixed with the uid the
// dataset was registered under, to payloads; ids it cannot resolve
// are omitted from the result.
type Tileset interface {
	Info() map[string]any
	Tiles(ctx context.Context, ids []string) []Tile
}

// ChromSize is one chromosome entry of a "chromsizes" info list. It
// serializes as a two-element [name, size] array in both JSON and
// CBOR, the shape viewers expect.
type ChromSize struct {
	Name string
	Size int64
}

// MarshalJSON encodes the entry as [name, size].
func (c ChromSize) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{c.Name, c.Size})
}

// MarshalCBOR encodes the entry as [name, size].
func (c ChromSize) MarshalCBOR() ([]byte, error) {
	return codec.Marshal([2]any{c.Name, c.Size})
}

// Static is an in-memory tileset: a fixed info document plus tile
// payloads keyed by coordinate suffix (the tile id after the uid,
// "z.x" for a 2D dataset).
type Static struct {
	Document map[string]any
	Data     map[string]any
}

// Info returns the info document.
func (s *Static) Info() map[string]any {
	return s.Document
}

// Tiles resolves ids against the payload map.
func (s *Static) Tiles(_ context.Context, ids []string) []Tile {
	var tiles []Tile
	for _, tid := range ids {
		coordinates, ok := tileCoordinates(tid)
		if !ok {
			continue
		}
		if data, ok := s.Data[coordinates]; ok {
			tiles = append(tiles, Tile{ID: tid, Data: data})
		}
	}
	return tiles
}

// tileCoordinates strips the uid prefix from a tile id. Ids without
// a separator carry no coordinates and resolve to nothing.
func tileCoordinates(tid string) (string, bool) {
	_, coordinates, ok := strings.Cut(tid, ".")
	return coordinates, ok
}
