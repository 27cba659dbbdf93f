// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// testTree builds a root with a nested file and a sibling secret that
// must stay unreachable:
//
//	parent/
//	  secret.txt
//	  root/
//	    top.txt
//	    sub/nested.csv
func testTree(t *testing.T) (root string) {
	t.Helper()
	parent := t.TempDir()
	root = filepath.Join(parent, "root")
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	files := []struct {
		path    string
		content string
	}{
		{filepath.Join(parent, "secret.txt"), "secret"},
		{filepath.Join(root, "top.txt"), "top level"},
		{filepath.Join(root, "sub", "nested.csv"), "a,b\n1,2\n"},
	}
	for _, file := range files {
		if err := os.WriteFile(file.path, []byte(file.content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func directoryRequest(subpath string) *http.Request {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.SetPathValue("subpath", subpath)
	return request
}

func TestDirectoryServesNestedFiles(t *testing.T) {
	directory, err := NewDirectory(testTree(t), Options{})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		subpath  string
		wantBody string
	}{
		{"top_level", "top.txt", "top level"},
		{"nested", "sub/nested.csv", "a,b\n1,2\n"},
		{"dot_segment_inside_root", "sub/../top.txt", "top level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := serveOnce(t, directory, directoryRequest(tt.subpath))
			if response.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", response.Code)
			}
			if got := response.Body.String(); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestDirectoryRangeOnSubFile(t *testing.T) {
	directory, err := NewDirectory(testTree(t), Options{})
	if err != nil {
		t.Fatal(err)
	}

	request := directoryRequest("top.txt")
	request.Header.Set("Range", "bytes=0-2")

	response := serveOnce(t, directory, request)
	if response.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", response.Code)
	}
	if got := response.Body.String(); got != "top" {
		t.Errorf("body = %q, want %q", got, "top")
	}
	if got := response.Header().Get("Content-Range"); got != "bytes 0-2/9" {
		t.Errorf("Content-Range = %q, want %q", got, "bytes 0-2/9")
	}
}

func TestDirectoryRejectsEscapes(t *testing.T) {
	directory, err := NewDirectory(testTree(t), Options{})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		subpath string
	}{
		{"parent_escape", "../secret.txt"},
		{"deep_escape", "sub/../../secret.txt"},
		{"absolute", "/etc/passwd"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := serveOnce(t, directory, directoryRequest(tt.subpath))
			if response.Code != http.StatusForbidden {
				t.Errorf("status = %d, want 403", response.Code)
			}
		})
	}
}

func TestDirectoryResolveErrors(t *testing.T) {
	directory, err := NewDirectory(testTree(t), Options{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := directory.Resolve("../secret.txt"); !errors.Is(err, ErrPathEscapes) {
		t.Errorf("Resolve escape = %v, want ErrPathEscapes", err)
	}
	resolved, err := directory.Resolve("sub/nested.csv")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved != filepath.Join(directory.Root(), "sub", "nested.csv") {
		t.Errorf("Resolve = %q, want path under root", resolved)
	}
}

func TestDirectoryMissingSubpath(t *testing.T) {
	directory, err := NewDirectory(testTree(t), Options{})
	if err != nil {
		t.Fatal(err)
	}

	response := serveOnce(t, directory, directoryRequest("absent.txt"))
	if response.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", response.Code)
	}
}

func TestDirectorySubpathToDirectory(t *testing.T) {
	directory, err := NewDirectory(testTree(t), Options{})
	if err != nil {
		t.Fatal(err)
	}

	response := serveOnce(t, directory, directoryRequest("sub"))
	if response.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", response.Code)
	}
}

func TestNewDirectoryValidatesPath(t *testing.T) {
	path := writeFile(t, "plain.txt", "x")
	if _, err := NewDirectory(path, Options{}); err == nil {
		t.Error("NewDirectory accepted a regular file")
	}
}

func TestDirectoryIdentity(t *testing.T) {
	root := testTree(t)

	first, err := NewDirectory(root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewDirectory(root+string(filepath.Separator), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if first.ID() != second.ID() {
		t.Errorf("same directory produced ids %q and %q", first.ID(), second.ID())
	}
}
