// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

package tileset

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionTag selects the per-tile payload compression in an
// archive file. The values are format constants; changing them breaks
// existing archives.
type CompressionTag uint8

const (
	// CompressionNone stores the payload as-is. WriteArchive also
	// falls back to it for payloads that do not shrink.
	CompressionNone CompressionTag = 0

	// CompressionLZ4 is LZ4 block compression, the fast choice for
	// dense numeric tiles.
	CompressionLZ4 CompressionTag = 1

	// CompressionZstd is zstd at its default level, the better ratio
	// for document-shaped tiles.
	CompressionZstd CompressionTag = 2
)

func (tag CompressionTag) String() string {
	switch tag {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	}
	return fmt.Sprintf("unknown(%d)", uint8(tag))
}

// errIncompressible reports that compression would not shrink the
// payload; the caller stores it uncompressed instead.
var errIncompressible = errors.New("payload is incompressible")

// Archives are written once and read many times, so one shared coder
// pair serves the whole process. Both types are safe for concurrent
// use; construction is deferred until a zstd archive is actually
// touched.
var (
	zstdEncoder = sync.OnceValue(func() *zstd.Encoder {
		encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			panic("tileset: zstd encoder: " + err.Error())
		}
		return encoder
	})
	zstdDecoder = sync.OnceValue(func() *zstd.Decoder {
		decoder, err := zstd.NewReader(nil)
		if err != nil {
			panic("tileset: zstd decoder: " + err.Error())
		}
		return decoder
	})
)

// compressTile compresses an encoded tile payload with tag.
// CompressionNone returns the payload unchanged, without copying.
// Payloads the algorithm cannot shrink come back as
// errIncompressible.
func compressTile(payload []byte, tag CompressionTag) ([]byte, error) {
	switch tag {
	case CompressionNone:
		return payload, nil

	case CompressionLZ4:
		destination := make([]byte, lz4.CompressBlockBound(len(payload)))
		written, err := lz4.CompressBlock(payload, destination, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		// CompressBlock reports incompressible input as zero bytes
		// written.
		if written == 0 || written >= len(payload) {
			return nil, errIncompressible
		}
		return destination[:written], nil

	case CompressionZstd:
		compressed := zstdEncoder().EncodeAll(payload, nil)
		if len(compressed) >= len(payload) {
			return nil, errIncompressible
		}
		return compressed, nil
	}
	return nil, fmt.Errorf("unsupported compression tag: %d", tag)
}

// decompressTile reverses compressTile. size is the uncompressed
// length stored in the tile record; output of any other length is an
// error, catching truncated and corrupted records.
func decompressTile(compressed []byte, tag CompressionTag, size int) ([]byte, error) {
	switch tag {
	case CompressionNone:
		if len(compressed) != size {
			return nil, fmt.Errorf("stored tile is %d bytes, record says %d", len(compressed), size)
		}
		return compressed, nil

	case CompressionLZ4:
		payload := make([]byte, size)
		read, err := lz4.UncompressBlock(compressed, payload)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if read != size {
			return nil, fmt.Errorf("lz4 yielded %d bytes, record says %d", read, size)
		}
		return payload, nil

	case CompressionZstd:
		payload, err := zstdDecoder().DecodeAll(compressed, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if len(payload) != size {
			return nil, fmt.Errorf("zstd yielded %d bytes, record says %d", len(payload), size)
		}
		return payload, nil
	}
	return nil, fmt.Errorf("unsupported compression tag: %d", tag)
}
