// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// newLogger creates the process logger on stderr, keeping stdout
// clean for the id/url listing. A terminal gets slog.TextHandler;
// piped or redirected stderr (CI, scripts, notebook kernels) gets
// slog.JSONHandler. With quiet set, per-resource info lines are
// suppressed and only warnings and errors come through.
func newLogger(quiet bool) *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	if quiet {
		options.Level = slog.LevelWarn
	}
	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}
