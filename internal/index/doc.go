// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index maintains the set of indexed root folders and the link
// completions derived from the files beneath them.
//
// Every file discovered under a root is recorded once in a path trie. A file
// seen before costs one trie lookup and produces nothing new, so re-indexing
// a folder, or indexing a folder that overlaps one already indexed, only pays
// for the files that were added since.
//
// # Key Types
//
//   - PathIndex: owns the roots, the trie and the completion records
//   - CompletionRecord: one (trigger, annotation) pair offered to an editor
//   - Walker: recursive file enumeration (FSWalker walks the real filesystem)
//   - Result: what one ReindexRoot call scanned and added
//
// # Hidden Files
//
// Files whose root-relative path starts with "." are marked known so that
// later scans skip them, but they never produce completion records.
//
// # Usage
//
//	idx := index.New(index.DefaultOptions())
//	res, err := idx.ReindexRoot(ctx, "/path/to/site")
//	fmt.Printf("%d new files\n", res.Added)
//
//	for _, rec := range index.Filter(idx.Completions(), "site", 10) {
//	    fmt.Println(rec.Trigger, "->", rec.Annotation)
//	}
//
// # Concurrency
//
// Mutations (ReindexRoot, IndexSingleFile) are serialized per PathIndex.
// Readers (IsKnown, Completions, Stats) may run concurrently with each other
// and with a reindex in flight; they observe the state from before or after
// that reindex, never a partially published one.
package index
