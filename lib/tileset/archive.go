// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

package tileset

import (
	"context"
	"fmt"
	"os"

	"github.com/bureau-foundation/kiosk/lib/codec"
)

// Archive file format: a single CBOR document (Core Deterministic
// Encoding, so identical inputs produce byte-identical files) holding
// the info document plus one record per tile. Tile payloads are
// CBOR-encoded and individually compressed.

const (
	archiveMagic   = "kiosk-tiles"
	archiveVersion = 1
)

// archiveDocument is the top-level CBOR document of an archive file.
type archiveDocument struct {
	Magic   string                `cbor:"magic"`
	Version int                   `cbor:"version"`
	Info    map[string]any        `cbor:"info"`
	Tiles   map[string]tileRecord `cbor:"tiles"`
}

// tileRecord is one stored tile, keyed in the document by coordinate
// suffix. UncompressedSize is the encoded payload length before
// compression; decompression verifies it.
type tileRecord struct {
	Compression      CompressionTag `cbor:"compression"`
	UncompressedSize uint32         `cbor:"uncompressed_size"`
	Data             []byte         `cbor:"data"`
}

// Archive is a read-only tileset backed by a single archive file.
// The document is loaded fully at open; tile payloads stay compressed
// in memory and are decoded per request.
type Archive struct {
	info  map[string]any
	tiles map[string]tileRecord
}

// WriteArchive writes an archive holding info and tiles (keyed by
// coordinate suffix, values any JSON-encodable document). Each
// payload is compressed with tag; payloads that do not shrink are
// stored uncompressed.
func WriteArchive(path string, info map[string]any, tiles map[string]any, tag CompressionTag) error {
	document := archiveDocument{
		Magic:   archiveMagic,
		Version: archiveVersion,
		Info:    info,
		Tiles:   make(map[string]tileRecord, len(tiles)),
	}

	for coordinates, data := range tiles {
		payload, err := codec.Marshal(data)
		if err != nil {
			return fmt.Errorf("encoding tile %q: %w", coordinates, err)
		}

		recordTag := tag
		compressed, err := compressTile(payload, tag)
		if err == errIncompressible {
			recordTag, compressed = CompressionNone, payload
		} else if err != nil {
			return fmt.Errorf("compressing tile %q: %w", coordinates, err)
		}

		document.Tiles[coordinates] = tileRecord{
			Compression:      recordTag,
			UncompressedSize: uint32(len(payload)),
			Data:             compressed,
		}
	}

	encoded, err := codec.Marshal(document)
	if err != nil {
		return fmt.Errorf("encoding archive: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("writing archive: %w", err)
	}
	return nil
}

// OpenArchive loads the archive at path.
func OpenArchive(path string) (*Archive, error) {
	encoded, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}

	var document archiveDocument
	if err := codec.Unmarshal(encoded, &document); err != nil {
		return nil, fmt.Errorf("decoding archive %s: %w", path, err)
	}
	if document.Magic != archiveMagic {
		return nil, fmt.Errorf("%s is not a tile archive", path)
	}
	if document.Version != archiveVersion {
		return nil, fmt.Errorf("%s: unsupported archive version %d", path, document.Version)
	}

	return &Archive{info: document.Info, tiles: document.Tiles}, nil
}

// Info returns the archive's info document.
func (a *Archive) Info() map[string]any {
	return a.info
}

// Tiles decodes the requested tiles. Ids without a stored record,
// and records that fail to decode, are omitted.
func (a *Archive) Tiles(_ context.Context, ids []string) []Tile {
	var tiles []Tile
	for _, tid := range ids {
		coordinates, ok := tileCoordinates(tid)
		if !ok {
			continue
		}
		record, ok := a.tiles[coordinates]
		if !ok {
			continue
		}
		payload, err := decompressTile(record.Data, record.Compression, int(record.UncompressedSize))
		if err != nil {
			continue
		}
		var data any
		if err := codec.Unmarshal(payload, &data); err != nil {
			continue
		}
		tiles = append(tiles, Tile{ID: tid, Data: data})
	}
	return tiles
}
