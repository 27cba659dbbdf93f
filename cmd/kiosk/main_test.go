// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/kiosk/lib/manifest"
	"github.com/bureau-foundation/kiosk/lib/provider"
	"github.com/bureau-foundation/kiosk/lib/tileset"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testProvider(t *testing.T) *provider.Provider {
	t.Helper()
	p := provider.New(provider.Config{
		Logger: testLogger(),
		Mounts: []provider.Mount{tileset.NewMount()},
	})
	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { p.Shutdown(context.Background()) })
	return p
}

func fetch(t *testing.T, url string) (int, string) {
	t.Helper()
	response, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("reading %s: %v", url, err)
	}
	return response.StatusCode, string(body)
}

func TestRegisterAllServesManifestAndPaths(t *testing.T) {
	dir := t.TempDir()

	filePath := filepath.Join(dir, "data.bin")
	if err := os.WriteFile(filePath, []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}

	archivePath := filepath.Join(dir, "demo.tiles")
	info := map[string]any{"name": "demo", "max_zoom": 2}
	tiles := map[string]any{"0.0": []int{1, 2, 3}}
	if err := tileset.WriteArchive(archivePath, info, tiles, tileset.CompressionZstd); err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}

	manifestPath := filepath.Join(dir, "resources.jsonc")
	manifestContent := `{
	// Inline notes survive parsing.
	"contents": [{"text": "hello from the manifest", "extension": ".txt"}],
	"tilesets": [{"archive": "demo.tiles", "uid": "demo"}],
}`
	if err := os.WriteFile(manifestPath, []byte(manifestContent), 0o644); err != nil {
		t.Fatal(err)
	}

	declared, err := manifest.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if issues := declared.Validate(); len(issues) > 0 {
		t.Fatalf("unexpected manifest issues: %v", issues)
	}

	p := testProvider(t)

	var out bytes.Buffer
	closers, count, err := registerAll(t.Context(), p, declared, []string{filePath}, &out, testLogger())
	defer closeAll(closers, testLogger())
	if err != nil {
		t.Fatalf("registerAll: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("printed %d lines, want 3:\n%s", len(lines), out.String())
	}

	var urls []string
	for _, line := range lines {
		_, url, found := strings.Cut(line, "\t")
		if !found {
			t.Fatalf("line %q is not id<TAB>url", line)
		}
		urls = append(urls, url)
	}

	// The positional file streams its bytes.
	fileURL := ""
	for _, url := range urls {
		if strings.Contains(url, "/files/") {
			fileURL = url
		}
	}
	if fileURL == "" {
		t.Fatalf("no /files/ URL printed for the positional path, got %v", urls)
	}
	status, body := fetch(t, fileURL)
	if status != http.StatusOK || body != "0123456789" {
		t.Errorf("file fetch = %d %q, want 200 with the file bytes", status, body)
	}

	// The tileset URL answers with its info document.
	tilesetURL := ""
	for _, url := range urls {
		if strings.Contains(url, "tileset_info") {
			tilesetURL = url
		}
	}
	if tilesetURL == "" {
		t.Fatalf("no tileset_info URL printed for the archive entry, got %v", urls)
	}
	status, body = fetch(t, tilesetURL)
	if status != http.StatusOK {
		t.Fatalf("tileset fetch status = %d, want 200", status)
	}
	if !strings.Contains(body, `"name":"demo"`) {
		t.Errorf("tileset info body = %q, want the archive's name inside", body)
	}
}

func TestRegisterAllReportsMissingPath(t *testing.T) {
	p := testProvider(t)

	missing := filepath.Join(t.TempDir(), "absent.bin")
	var out bytes.Buffer
	closers, _, err := registerAll(t.Context(), p, nil, []string{missing}, &out, testLogger())
	defer closeAll(closers, testLogger())
	if err == nil {
		t.Fatal("expected error for a missing positional path")
	}
	if !strings.Contains(err.Error(), "absent.bin") {
		t.Errorf("error %q does not name the missing path", err)
	}
}

func TestRegisterAllStopsAtBadArchive(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "not-an-archive.tiles")
	if err := os.WriteFile(bogus, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}

	declared := &manifest.Manifest{
		Contents: []manifest.ContentEntry{{Text: "first"}},
		Tilesets: []manifest.TilesetEntry{{Archive: bogus}},
	}

	p := testProvider(t)
	var out bytes.Buffer
	closers, count, err := registerAll(t.Context(), p, declared, nil, &out, testLogger())
	defer closeAll(closers, testLogger())
	if err == nil {
		t.Fatal("expected error for a file that is not a tile archive")
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (the entry registered before the failure)", count)
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	flagConfig := filepath.Join(dir, "flag.yaml")
	envConfig := filepath.Join(dir, "env.yaml")
	if err := os.WriteFile(flagConfig, []byte("server:\n  address: 127.0.0.1:7001\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(envConfig, []byte("server:\n  address: 127.0.0.1:7002\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("KIOSK_CONFIG", envConfig)

	cfg, err := loadConfig(flagConfig)
	if err != nil {
		t.Fatalf("loadConfig with explicit path: %v", err)
	}
	if cfg.Server.Address != "127.0.0.1:7001" {
		t.Errorf("explicit path lost to the environment: address = %s", cfg.Server.Address)
	}

	cfg, err = loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig via KIOSK_CONFIG: %v", err)
	}
	if cfg.Server.Address != "127.0.0.1:7002" {
		t.Errorf("KIOSK_CONFIG not honored: address = %s", cfg.Server.Address)
	}

	t.Setenv("KIOSK_CONFIG", "")
	cfg, err = loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig with defaults: %v", err)
	}
	if cfg.Server.Address != "127.0.0.1:0" {
		t.Errorf("defaults not used: address = %s", cfg.Server.Address)
	}
}
