// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index maintains indexed root folders and their link completions.
package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jeranaias/hrefhelper/internal/pathtrie"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrInvalidRoot = errors.New("invalid root")
	ErrInvalidPath = errors.New("invalid path")
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures a PathIndex.
type Options struct {
	// Walker enumerates files under a root. Defaults to an FSWalker.
	Walker Walker

	// HrefPrefix is prepended to every root-relative path to form the
	// completion annotation. Defaults to "/".
	HrefPrefix string

	// Logger receives indexing summaries and walk errors. Defaults to discard.
	Logger *log.Logger
}

// DefaultOptions returns options for indexing the local filesystem.
func DefaultOptions() Options {
	return Options{
		Walker:     NewFSWalker(),
		HrefPrefix: "/",
		Logger:     log.New(io.Discard, "", 0),
	}
}

// =============================================================================
// PATH INDEX
// =============================================================================

// PathIndex owns the indexed roots, the trie of known file paths and the
// append-only sequence of completion records.
type PathIndex struct {
	walker     Walker
	hrefPrefix string
	logger     *log.Logger

	// mutateMu serializes ReindexRoot and IndexSingleFile. The trie and the
	// record slice are only written while holding both mutateMu and mu.
	mutateMu sync.Mutex
	indexing atomic.Bool

	mu          sync.RWMutex
	roots       map[string]struct{}
	known       *pathtrie.Trie
	records     []CompletionRecord
	lastIndexed time.Time
}

// New creates an empty index. Zero-valued options fall back to defaults.
func New(opts Options) *PathIndex {
	defaults := DefaultOptions()
	if opts.Walker == nil {
		opts.Walker = defaults.Walker
	}
	if opts.HrefPrefix == "" {
		opts.HrefPrefix = defaults.HrefPrefix
	}
	if opts.Logger == nil {
		opts.Logger = defaults.Logger
	}

	return &PathIndex{
		walker:     opts.Walker,
		hrefPrefix: opts.HrefPrefix,
		logger:     opts.Logger,
		roots:      make(map[string]struct{}),
		known:      pathtrie.New(),
	}
}

// Result summarizes one ReindexRoot call. Its cost is proportional to
// Scanned; only Added files changed the index.
type Result struct {
	Root       string
	Scanned    int
	Added      int
	Skipped    int
	Hidden     int
	WalkErrors int
	Duration   time.Duration
}

// String returns a one-line summary.
func (r Result) String() string {
	return fmt.Sprintf("%s: %d scanned, %d new, %d known, %d hidden, %d unreadable (%s)",
		r.Root, r.Scanned, r.Added, r.Skipped, r.Hidden, r.WalkErrors, r.Duration.Round(time.Millisecond))
}

// =============================================================================
// INDEXING
// =============================================================================

// ReindexRoot walks root and records every file not already known.
//
// Calling it again on the same root, or on a root overlapping one already
// indexed, costs one lookup per file and adds nothing for files seen before.
// The root is marked indexed only when the walk completes. If ctx is canceled
// or the walker fails, the files collected so far are still published and the
// error is returned; the next reindex picks up the rest.
func (idx *PathIndex) ReindexRoot(ctx context.Context, root string) (Result, error) {
	root, err := cleanRoot(root)
	if err != nil {
		return Result{}, err
	}

	idx.mutateMu.Lock()
	defer idx.mutateMu.Unlock()

	idx.indexing.Store(true)
	defer idx.indexing.Store(false)

	start := time.Now()
	res := Result{Root: root}
	b := newBatch()

	walkErr := idx.walker.Walk(ctx, root, func(path string, err error) error {
		if err != nil {
			res.WalkErrors++
			idx.logger.Printf("walk %s: %v", path, err)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		res.Scanned++
		switch idx.stage(b, path, root) {
		case stageAdded:
			res.Added++
		case stageHidden:
			res.Hidden++
		default:
			res.Skipped++
		}
		return nil
	})

	idx.publish(b, root, walkErr == nil)
	res.Duration = time.Since(start)

	if walkErr != nil {
		idx.logger.Printf("reindex %s stopped: %v", root, walkErr)
		return res, fmt.Errorf("reindex %s: %w", root, walkErr)
	}

	idx.logger.Printf("indexed %s", res)
	return res, nil
}

// IndexSingleFile records one file found outside a full walk, applying the
// same known-path and hidden-file rules as ReindexRoot. Returns true if the
// file was not known before. A path outside root is ignored.
func (idx *PathIndex) IndexSingleFile(absPath, root string) bool {
	root, err := cleanRoot(root)
	if err != nil || absPath == "" {
		return false
	}

	idx.mutateMu.Lock()
	defer idx.mutateMu.Unlock()

	b := newBatch()
	switch idx.stage(b, absPath, root) {
	case stageAdded, stageHidden:
		idx.publish(b, root, false)
		return true
	default:
		return false
	}
}

type stageResult int

const (
	stageKnown stageResult = iota
	stageAdded
	stageHidden
	stageOutside
)

// batch collects files discovered by one mutation before they are published.
type batch struct {
	paths   []string
	seen    map[string]struct{}
	records []CompletionRecord
}

func newBatch() *batch {
	return &batch{seen: make(map[string]struct{})}
}

// stage decides what path contributes and adds it to b.
// Must be called with mutateMu held; the trie is read without mu because no
// other goroutine can write it.
func (idx *PathIndex) stage(b *batch, path, root string) stageResult {
	path = filepath.Clean(path)
	if idx.known.Contains(path) {
		return stageKnown
	}
	if _, ok := b.seen[path]; ok {
		return stageKnown
	}

	rel, ok := relativeTo(root, path)
	if !ok {
		return stageOutside
	}

	b.seen[path] = struct{}{}
	b.paths = append(b.paths, path)

	href := filepath.ToSlash(rel)
	if isHidden(href) {
		return stageHidden
	}
	b.records = append(b.records, recordsFor(filepath.Base(path), href, idx.hrefPrefix)...)
	return stageAdded
}

// publish makes a batch visible to readers in one step.
func (idx *PathIndex) publish(b *batch, root string, complete bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, p := range b.paths {
		idx.known.Insert(p)
	}
	idx.records = append(idx.records, b.records...)
	if complete {
		idx.roots[root] = struct{}{}
		idx.lastIndexed = time.Now()
	}
}

// =============================================================================
// QUERIES
// =============================================================================

// IsKnown reports whether absPath has been indexed. Empty paths are unknown.
func (idx *PathIndex) IsKnown(absPath string) bool {
	if absPath == "" {
		return false
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.known.Contains(filepath.Clean(absPath))
}

// Completions returns the records accumulated so far. The returned slice
// shares storage with the index and must be treated as read-only; later
// indexing never changes the elements it covers.
func (idx *PathIndex) Completions() []CompletionRecord {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	n := len(idx.records)
	return idx.records[:n:n]
}

// Query filters the accumulated records. See Filter.
func (idx *PathIndex) Query(prefix string, limit int) []CompletionRecord {
	return Filter(idx.Completions(), prefix, limit)
}

// KnownPaths returns every known absolute path in sorted order, hidden
// files included.
func (idx *PathIndex) KnownPaths() []string {
	idx.mu.RLock()
	paths := make([]string, 0, idx.known.Len())
	idx.known.Walk(func(p string) { paths = append(paths, p) })
	idx.mu.RUnlock()

	sort.Strings(paths)
	return paths
}

// Roots returns the indexed roots in sorted order.
func (idx *PathIndex) Roots() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	roots := make([]string, 0, len(idx.roots))
	for r := range idx.roots {
		roots = append(roots, r)
	}
	sort.Strings(roots)
	return roots
}

// IsIndexed reports whether root has completed a reindex.
func (idx *PathIndex) IsIndexed(root string) bool {
	root, err := cleanRoot(root)
	if err != nil {
		return false
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.roots[root]
	return ok
}

// Stats holds index statistics.
type Stats struct {
	Roots       int       `json:"roots"`
	KnownPaths  int       `json:"known_paths"`
	Records     int       `json:"records"`
	TrieNodes   int       `json:"trie_nodes"`
	LastIndexed time.Time `json:"last_indexed"`
	IsIndexing  bool      `json:"is_indexing"`
}

// Stats returns current index statistics.
func (idx *PathIndex) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return Stats{
		Roots:       len(idx.roots),
		KnownPaths:  idx.known.Len(),
		Records:     len(idx.records),
		TrieNodes:   idx.known.NodeCount(),
		LastIndexed: idx.lastIndexed,
		IsIndexing:  idx.indexing.Load(),
	}
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// cleanRoot returns root as a clean absolute path.
func cleanRoot(root string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidRoot)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	return abs, nil
}

// relativeTo returns path relative to root. ok is false when path lies
// outside root.
func relativeTo(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

// isHidden reports whether a root-relative slash path is excluded from
// completion. The path of the root itself (".") counts as hidden.
func isHidden(href string) bool {
	return href == "" || strings.HasPrefix(href, ".")
}

// Contains reports whether path lies inside root (or is root).
func Contains(root, path string) bool {
	_, ok := relativeTo(filepath.Clean(root), filepath.Clean(path))
	return ok
}
