// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the standard CBOR encoding configuration.
//
// Kiosk uses two serialization formats with a clear boundary:
//
//   - JSON for external interfaces: HTTP response bodies (tileset
//     endpoints, error payloads) and CLI output.
//   - CBOR for on-disk artifacts: the tile archive container format.
//
// This package holds the shared CBOR encoding and decoding modes so
// that everything touching archives encodes identically. The encoder
// uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map keys,
// smallest integer encoding, no indefinite-length items. Same logical
// data always produces identical bytes, which keeps archive files
// reproducible.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
package codec
