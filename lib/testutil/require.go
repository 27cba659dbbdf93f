// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import "time"

// failer is the slice of testing.TB the helpers need. Taking the
// interface keeps the package free of direct *testing.T plumbing.
type failer interface {
	Helper()
	Fatalf(format string, args ...any)
}

// RequireReceive reads one value from ch within timeout, or fails the
// test with msg. A channel nothing ever sends on becomes a test
// failure instead of a suite timeout.
//
//	port := testutil.RequireReceive(t, ports, 5*time.Second, "port after Start")
func RequireReceive[T any](t failer, ch <-chan T, timeout time.Duration, msg string) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed without a value: %s", msg)
		}
		return v
	case <-time.After(timeout):
		t.Fatalf("timed out after %v: %s", timeout, msg)
	}
	panic("unreachable")
}

// RequireClosed waits for ch to close (or yield a value) within
// timeout, or fails the test with msg. Readiness channels signal by
// closing; this is the blocking wait tests use on them.
//
//	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "ready after Start")
func RequireClosed(t failer, ch <-chan struct{}, timeout time.Duration, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		t.Fatalf("timed out after %v: %s", timeout, msg)
	}
}
