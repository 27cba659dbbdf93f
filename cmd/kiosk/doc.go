// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

// Kiosk serves local files, directories, inline text, and tile
// datasets over HTTP with deterministic content-addressed URLs. It is
// the command-line face of the provider library: visualization
// front-ends fetch byte ranges and tiles from a kiosk running next to
// the data.
//
// Resources come from positional paths and an optional JSONC
// manifest. Each registration prints "id<TAB>url" to stdout; logs go
// to stderr so the output stays scriptable. The process serves until
// SIGINT or SIGTERM, then drains in-flight requests and exits.
// Resources exist only while the kiosk runs — nothing is published or
// persisted.
//
// Configuration precedence, highest first:
//
//	explicit flags
//	--config file (or $KIOSK_CONFIG)
//	built-in defaults (loopback, kernel-assigned port, any origin)
package main
