// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "test.txt")
	data := []byte("hello, world!")

	err := AtomicWriteFile(path, data, 0644)
	if err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != string(data) {
		t.Errorf("Content mismatch: got %q, want %q", string(content), string(data))
	}
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "subdir", "deep", "test.txt")

	if err := AtomicWriteFile(path, []byte("test data"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("File should exist: %v", err)
	}
}

func TestAtomicWriteFile_Overwrites(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "test.txt")

	if err := AtomicWriteFile(path, []byte("first"), 0644); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("second"), 0644); err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	content, _ := os.ReadFile(path)
	if string(content) != "second" {
		t.Errorf("Expected 'second', got %q", string(content))
	}
}

func TestAtomicWrite_FailureLeavesTargetAlone(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "export.json")

	if err := AtomicWriteFile(path, []byte("original"), 0644); err != nil {
		t.Fatalf("setup write failed: %v", err)
	}

	boom := errors.New("encoder failed")
	err := AtomicWrite(path, 0644, func(w io.Writer) error {
		io.WriteString(w, "partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected wrapped encoder error, got %v", err)
	}

	content, _ := os.ReadFile(path)
	if string(content) != "original" {
		t.Errorf("Target changed after failed write: %q", string(content))
	}

	entries, _ := os.ReadDir(tempDir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("Temp file left behind: %s", e.Name())
		}
	}
}

// =============================================================================
// WIDTH TESTS
// =============================================================================

func TestTruncateWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     string
	}{
		{"fits", "index.html", 20, "index.html"},
		{"exact", "index.html", 10, "index.html"},
		{"ellipsis", "documentation.html", 10, "documen..."},
		{"tiny", "documentation.html", 3, "doc"},
		{"zero", "abc", 0, ""},
		{"wide runes", "日本語のページ", 7, "日本..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateWidth(tt.input, tt.maxWidth)
			if got != tt.want {
				t.Errorf("TruncateWidth(%q, %d) = %q, want %q", tt.input, tt.maxWidth, got, tt.want)
			}
			if StringWidth(got) > tt.maxWidth {
				t.Errorf("result %q is %d columns, limit %d", got, StringWidth(got), tt.maxWidth)
			}
		})
	}
}

func TestTruncatePath(t *testing.T) {
	got := TruncatePath("/very/long/dir/a.html", 14)
	if got != ".../dir/a.html" {
		t.Errorf("TruncatePath = %q", got)
	}
	if TruncatePath("/a.html", 20) != "/a.html" {
		t.Error("short path should be unchanged")
	}
	if StringWidth(TruncatePath("/路径/很长/文件.html", 10)) > 10 {
		t.Error("wide path exceeded width")
	}
}

func TestPadWidth(t *testing.T) {
	if got := PadWidth("ab", 5); got != "ab   " {
		t.Errorf("PadWidth = %q", got)
	}
	if got := PadWidth("日本", 5); StringWidth(got) != 5 {
		t.Errorf("PadWidth wide = %q (%d cols)", got, StringWidth(got))
	}
	if got := PadWidth("abcdefgh", 5); got != "ab..." {
		t.Errorf("PadWidth truncate = %q", got)
	}
}
