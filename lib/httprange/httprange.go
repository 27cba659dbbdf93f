// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

// Package httprange parses HTTP Range headers and streams byte ranges
// from files.
//
// Only a single contiguous range is supported. A malformed or
// multi-range header is rejected with [ErrInvalidRange] rather than
// ignored: silently answering 200 to a broken 206 request hides the
// client's bug, so the serving layer turns these into 416 responses.
package httprange

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidRange reports a Range header that does not match the
// single-range grammar: a second range, malformed numbers, a suffix
// form, or reversed bounds.
var ErrInvalidRange = errors.New("invalid range header")

// ErrUnsatisfiable reports a syntactically valid range whose start
// lies beyond the end of the resource.
var ErrUnsatisfiable = errors.New("range not satisfiable")

// rangePattern is the accepted grammar: "bytes=<start>-<end>?" with at
// most one trailing comma. The header is lowercased and trimmed before
// matching, so the "bytes" token is case-insensitive.
var rangePattern = regexp.MustCompile(`^bytes=(\d+)-(\d+)?,?$`)

// ContentRange is a requested byte interval. Start is inclusive. A nil
// End means "to the end of the resource"; when present, End is
// inclusive and Start <= *End holds (enforced at parse time).
type ContentRange struct {
	Start int64
	End   *int64
}

// Parse extracts a single byte range from a raw Range header value.
func Parse(header string) (ContentRange, error) {
	match := rangePattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(header)))
	if match == nil {
		return ContentRange{}, fmt.Errorf("parsing %q: %w", header, ErrInvalidRange)
	}

	start, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return ContentRange{}, fmt.Errorf("parsing %q: start: %w", header, ErrInvalidRange)
	}

	result := ContentRange{Start: start}
	if match[2] != "" {
		end, err := strconv.ParseInt(match[2], 10, 64)
		if err != nil {
			return ContentRange{}, fmt.Errorf("parsing %q: end: %w", header, ErrInvalidRange)
		}
		if start > end {
			return ContentRange{}, fmt.Errorf("parsing %q: start %d after end %d: %w", header, start, end, ErrInvalidRange)
		}
		result.End = &end
	}
	return result, nil
}

// Resolve turns the requested range into concrete inclusive bounds for
// a resource of the given size. A nil End resolves to the last byte;
// an End past the last byte is clamped to it. A Start past the last
// byte cannot be served and returns [ErrUnsatisfiable].
func (r ContentRange) Resolve(size int64) (start, end int64, err error) {
	if r.Start > size-1 {
		return 0, 0, fmt.Errorf("start %d beyond final byte of %d-byte resource: %w", r.Start, size, ErrUnsatisfiable)
	}
	end = size - 1
	if r.End != nil && *r.End < end {
		end = *r.End
	}
	return r.Start, end, nil
}
