// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for kiosk packages.
//
// [RequireReceive] and [RequireClosed] encapsulate the timeout safety
// valve pattern (select with time.After fallback) so that individual
// tests do not need direct time.After calls. Lifecycle tests wait on
// real listeners and background goroutines; the helpers turn a hung
// channel into a test failure instead of a suite timeout.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no kiosk-internal dependencies.
package testutil
