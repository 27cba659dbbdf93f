// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

package httprange

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// DefaultBlockSize is the per-read ceiling used when the caller does
// not configure one.
const DefaultBlockSize = 64 * 1024

// Reader streams one contiguous byte range of a file. It is a lazy,
// single-pass source: each Read returns at most the configured block
// size, and the stream ends at the range's exclusive end or at EOF,
// whichever comes first (a file shorter than the requested range ends
// early rather than failing). Close releases the file handle and is
// safe to call more than once; callers must close even after an
// aborted read.
type Reader struct {
	file      *os.File
	remaining int64
	blockSize int

	closeOnce sync.Once
	closeErr  error
}

// OpenRange opens path and positions a Reader over [start, end) in
// bytes. A blockSize of zero or less selects [DefaultBlockSize].
// Callers resolve and clamp the range first (see
// [ContentRange.Resolve]); OpenRange does not validate bounds against
// the file size.
func OpenRange(path string, start, end int64, blockSize int) (*Reader, error) {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %q for range read: %w", path, err)
	}
	if _, err := file.Seek(start, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seeking %q to byte %d: %w", path, start, err)
	}

	return &Reader{
		file:      file,
		remaining: end - start,
		blockSize: blockSize,
	}, nil
}

// Read fills p with at most blockSize bytes from the remaining range.
func (r *Reader) Read(p []byte) (int, error) {
	if r.remaining <= 0 {
		return 0, io.EOF
	}

	limit := int64(len(p))
	if int64(r.blockSize) < limit {
		limit = int64(r.blockSize)
	}
	if r.remaining < limit {
		limit = r.remaining
	}

	n, err := r.file.Read(p[:limit])
	r.remaining -= int64(n)
	return n, err
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.file.Close()
	})
	return r.closeErr
}
