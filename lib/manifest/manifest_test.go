// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseJSONC(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		// Files served at startup.
		"files": [
			{"path": "data/trace.bin", "headers": {"Cache-Control": "no-cache"}},
		],
		/* Directory trees. */
		"directories": [
			{"path": "public"},
		],
		"contents": [
			{"text": "hello, world", "extension": ".md"},
		],
		"tilesets": [
			{"archive": "tiles/trace.tiles", "uid": "trace"},
			{"sqlite": "tiles/genes.db"},
		],
	}`)

	m, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(m.Files) != 1 || m.Files[0].Path != "data/trace.bin" {
		t.Errorf("files = %+v", m.Files)
	}
	if m.Files[0].Headers["Cache-Control"] != "no-cache" {
		t.Errorf("file headers = %v", m.Files[0].Headers)
	}
	if len(m.Directories) != 1 || m.Directories[0].Path != "public" {
		t.Errorf("directories = %+v", m.Directories)
	}
	if len(m.Contents) != 1 || m.Contents[0].Text != "hello, world" || m.Contents[0].Extension != ".md" {
		t.Errorf("contents = %+v", m.Contents)
	}
	if len(m.Tilesets) != 2 || m.Tilesets[0].UID != "trace" || m.Tilesets[1].SQLite != "tiles/genes.db" {
		t.Errorf("tilesets = %+v", m.Tilesets)
	}
	if m.Total() != 5 {
		t.Errorf("Total = %d, want 5", m.Total())
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte(`{"files": [}`)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestReadFileResolvesPaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "kiosk.jsonc")
	data := `{
		"files": [{"path": "data/trace.bin"}],
		"directories": [{"path": "/absolute/public"}],
		"tilesets": [{"archive": "tiles/trace.tiles"}],
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if want := filepath.Join(dir, "data/trace.bin"); m.Files[0].Path != want {
		t.Errorf("file path = %q, want %q", m.Files[0].Path, want)
	}
	// Absolute paths stay untouched.
	if m.Directories[0].Path != "/absolute/public" {
		t.Errorf("directory path = %q, want /absolute/public", m.Directories[0].Path)
	}
	if want := filepath.Join(dir, "tiles/trace.tiles"); m.Tilesets[0].Archive != want {
		t.Errorf("archive path = %q, want %q", m.Tilesets[0].Archive, want)
	}
}

func TestReadFileMissing(t *testing.T) {
	t.Parallel()

	if _, err := ReadFile(filepath.Join(t.TempDir(), "absent.jsonc")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		manifest       *Manifest
		expectedIssues int
		wantSubstrings []string
	}{
		{
			name:           "empty manifest",
			manifest:       &Manifest{},
			expectedIssues: 0,
		},
		{
			name: "valid entries",
			manifest: &Manifest{
				Files:       []FileEntry{{Path: "/data/trace.bin"}},
				Directories: []DirectoryEntry{{Path: "/public"}},
				Contents:    []ContentEntry{{Text: "hello"}},
				Tilesets:    []TilesetEntry{{Archive: "/tiles/trace.tiles", UID: "trace"}},
			},
			expectedIssues: 0,
		},
		{
			name:           "file missing path",
			manifest:       &Manifest{Files: []FileEntry{{}}},
			expectedIssues: 1,
			wantSubstrings: []string{"files[0]", "path is required"},
		},
		{
			name:           "directory missing path",
			manifest:       &Manifest{Directories: []DirectoryEntry{{}}},
			expectedIssues: 1,
			wantSubstrings: []string{"directories[0]", "path is required"},
		},
		{
			name:           "content missing text",
			manifest:       &Manifest{Contents: []ContentEntry{{Extension: ".csv"}}},
			expectedIssues: 1,
			wantSubstrings: []string{"contents[0]", "text is required"},
		},
		{
			name:           "tileset without backend",
			manifest:       &Manifest{Tilesets: []TilesetEntry{{UID: "trace"}}},
			expectedIssues: 1,
			wantSubstrings: []string{"tilesets[0]", "one of archive or sqlite is required"},
		},
		{
			name: "tileset with both backends",
			manifest: &Manifest{
				Tilesets: []TilesetEntry{{Archive: "/a.tiles", SQLite: "/a.db"}},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"mutually exclusive"},
		},
		{
			name: "multiple issues",
			manifest: &Manifest{
				Files:    []FileEntry{{}, {Path: "/ok"}},
				Tilesets: []TilesetEntry{{}},
			},
			expectedIssues: 2,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			issues := testCase.manifest.Validate()
			if len(issues) != testCase.expectedIssues {
				t.Fatalf("got %d issues, want %d:\n%s", len(issues), testCase.expectedIssues, strings.Join(issues, "\n"))
			}

			for _, substring := range testCase.wantSubstrings {
				found := false
				for _, issue := range issues {
					if strings.Contains(issue, substring) {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("expected issue containing %q, got:\n%s", substring, strings.Join(issues, "\n"))
				}
			}
		})
	}
}
