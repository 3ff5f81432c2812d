// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/jeranaias/hrefhelper/internal/index"
)

// Host is what the editor tells us about its workspace.
type Host interface {
	// OpenRoots lists the folders currently open, in the editor's order.
	OpenRoots() []string

	// ActiveFile returns the file in the focused view, if any.
	ActiveFile() (string, bool)
}

// Listener is the narrow set of events and queries an editor integration
// needs. Manager implements it.
type Listener interface {
	FolderOpened(ctx context.Context, root string) error
	FileActivated(ctx context.Context, path string) (bool, error)
	QueryCompletions(prefix string, limit int) []index.CompletionRecord
}

// =============================================================================
// ROOT SET
// =============================================================================

// RootSet is a Host whose roots and active file are set by the caller.
// It is safe for concurrent use.
type RootSet struct {
	mu     sync.RWMutex
	roots  []string
	active string
}

// NewRootSet returns a RootSet holding roots, cleaned and without duplicates.
func NewRootSet(roots ...string) *RootSet {
	rs := &RootSet{}
	for _, r := range roots {
		rs.Add(r)
	}
	return rs
}

// Add opens root. Returns false if it was already open or is empty.
func (rs *RootSet) Add(root string) bool {
	root = cleanPath(root)
	if root == "" {
		return false
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	for _, r := range rs.roots {
		if r == root {
			return false
		}
	}
	rs.roots = append(rs.roots, root)
	return true
}

// Remove closes root. Returns false if it was not open.
func (rs *RootSet) Remove(root string) bool {
	root = cleanPath(root)

	rs.mu.Lock()
	defer rs.mu.Unlock()
	for i, r := range rs.roots {
		if r == root {
			rs.roots = append(rs.roots[:i], rs.roots[i+1:]...)
			return true
		}
	}
	return false
}

// OpenRoots implements Host.
func (rs *RootSet) OpenRoots() []string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	out := make([]string, len(rs.roots))
	copy(out, rs.roots)
	return out
}

// SetActive records the focused file. An empty path clears it.
func (rs *RootSet) SetActive(path string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.active = cleanPath(path)
}

// ActiveFile implements Host.
func (rs *RootSet) ActiveFile() (string, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.active, rs.active != ""
}

// cleanPath makes p absolute. Empty input stays empty.
func cleanPath(p string) string {
	if p == "" {
		return ""
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}
