// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pathtrie provides a prefix tree keyed by filesystem path segments.
package pathtrie

import (
	"path/filepath"
	"strings"
)

// =============================================================================
// NODES
// =============================================================================

// node is one path segment. A node is owned by exactly one parent.
type node struct {
	children map[string]*node
	terminal bool
}

func newNode() *node {
	return &node{}
}

// child returns the child for segment, creating it when create is set.
func (n *node) child(segment string, create bool) *node {
	if c, ok := n.children[segment]; ok {
		return c
	}
	if !create {
		return nil
	}
	if n.children == nil {
		n.children = make(map[string]*node)
	}
	c := newNode()
	n.children[segment] = c
	return c
}

// garbage reports whether the node carries no information.
func (n *node) garbage() bool {
	return !n.terminal && len(n.children) == 0
}

// =============================================================================
// TRIE
// =============================================================================

// Trie records full filesystem paths split into segments.
type Trie struct {
	root      *node
	separator string
	size      int
}

// New creates an empty trie that splits paths on the platform separator.
func New() *Trie {
	return NewWithSeparator(filepath.Separator)
}

// NewWithSeparator creates an empty trie that splits paths on sep.
// Every path given to one trie must use the same separator.
func NewWithSeparator(sep rune) *Trie {
	return &Trie{
		root:      newNode(),
		separator: string(sep),
	}
}

// segments splits path on the separator. Segments are compared byte for
// byte, so two spellings of the same name are two different paths.
// Returns nil for an empty path.
func (t *Trie) segments(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, t.separator)
}

// Insert records path. Inserting a path that is already contained is a no-op.
// An empty path is ignored.
func (t *Trie) Insert(path string) {
	parts := t.segments(path)
	if parts == nil {
		return
	}

	n := t.root
	for _, part := range parts {
		n = n.child(part, true)
	}
	if !n.terminal {
		n.terminal = true
		t.size++
	}
}

// Contains reports whether path was inserted and not removed since.
// A path that is only a prefix of stored paths is not contained.
func (t *Trie) Contains(path string) bool {
	n := t.find(t.segments(path))
	return n != nil && n.terminal
}

// find follows parts from the root. Returns nil if any segment is missing.
func (t *Trie) find(parts []string) *node {
	if parts == nil {
		return nil
	}
	n := t.root
	for _, part := range parts {
		n = n.child(part, false)
		if n == nil {
			return nil
		}
	}
	return n
}

// step is one edge visited on the way down: the parent and the segment
// leading out of it.
type step struct {
	parent  *node
	segment string
}

// Remove forgets path and prunes every node the removal leaves empty.
// Removing a path that is not contained is a no-op.
func (t *Trie) Remove(path string) {
	parts := t.segments(path)
	if parts == nil {
		return
	}

	chain := make([]step, 0, len(parts))
	n := t.root
	for _, part := range parts {
		next := n.child(part, false)
		if next == nil {
			return
		}
		chain = append(chain, step{parent: n, segment: part})
		n = next
	}

	if !n.terminal {
		return
	}
	n.terminal = false
	t.size--

	// Sweep back up, dropping children that no longer hold anything.
	for i := len(chain) - 1; i >= 0; i-- {
		s := chain[i]
		if !s.parent.children[s.segment].garbage() {
			break
		}
		delete(s.parent.children, s.segment)
	}
}

// =============================================================================
// INSPECTION
// =============================================================================

// Len returns the number of contained paths.
func (t *Trie) Len() int {
	return t.size
}

// NodeCount returns the number of nodes below the root.
func (t *Trie) NodeCount() int {
	return countNodes(t.root) - 1
}

func countNodes(n *node) int {
	total := 1
	for _, c := range n.children {
		total += countNodes(c)
	}
	return total
}

// Walk calls fn for every contained path, in no particular order.
func (t *Trie) Walk(fn func(path string)) {
	t.walk(t.root, nil, fn)
}

func (t *Trie) walk(n *node, parts []string, fn func(string)) {
	if n.terminal {
		fn(strings.Join(parts, t.separator))
	}
	for segment, c := range n.children {
		t.walk(c, append(parts, segment), fn)
	}
}
