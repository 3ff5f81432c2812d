// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// =============================================================================
// WALKER INTERFACE
// =============================================================================

// WalkFunc receives every file under a root. A non-nil err reports an entry
// that could not be read; path is then the entry that failed. Returning an
// error stops the walk.
type WalkFunc func(path string, err error) error

// Walker enumerates files beneath a root directory.
type Walker interface {
	// Walk calls fn for every regular file under root, descending into
	// directories without reporting them. Unreadable subtrees are reported
	// through fn and skipped; they never stop the walk on their own.
	Walk(ctx context.Context, root string, fn WalkFunc) error
}

// =============================================================================
// FILESYSTEM WALKER
// =============================================================================

// FSWalker walks the local filesystem.
type FSWalker struct {
	// SkipDirs are glob patterns matched against directory names. Matching
	// directories are not descended. Empty by default.
	SkipDirs []string
}

// NewFSWalker creates a filesystem walker that skips the given directories.
func NewFSWalker(skipDirs ...string) *FSWalker {
	return &FSWalker{SkipDirs: skipDirs}
}

// Walk implements Walker.
func (w *FSWalker) Walk(ctx context.Context, root string, fn WalkFunc) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, root)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if ferr := fn(path, err); ferr != nil {
				return ferr
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && w.skip(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !regularFile(path, d) {
			return nil
		}
		return fn(path, nil)
	})
}

// skip reports whether a directory name matches SkipDirs.
func (w *FSWalker) skip(name string) bool {
	for _, pattern := range w.SkipDirs {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

// regularFile reports whether d is a regular file or a symlink to one.
func regularFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// =============================================================================
// STATIC WALKER
// =============================================================================

// StaticWalker yields a fixed list of file paths. Paths outside the walked
// root are ignored. It is useful for hosts that already know their file list
// and in tests.
type StaticWalker struct {
	Files []string

	// Errors are reported to the walk callback before any file.
	Errors map[string]error
}

// Walk implements Walker.
func (w *StaticWalker) Walk(ctx context.Context, root string, fn WalkFunc) error {
	for path, err := range w.Errors {
		if ferr := fn(path, err); ferr != nil {
			return ferr
		}
	}
	for _, path := range w.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := relativeTo(root, path); !ok {
			continue
		}
		if err := fn(path, nil); err != nil {
			return err
		}
	}
	return nil
}
