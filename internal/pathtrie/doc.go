// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pathtrie provides a prefix tree keyed by filesystem path segments.
//
// The trie answers "has this exact path been recorded" in time proportional
// to the number of segments in the path, independent of how many paths are
// stored. Memory grows with the number of distinct path prefixes rather than
// the number of files, because siblings share their parent chain.
//
// # Key Types
//
//   - Trie: the membership structure (Insert, Contains, Remove)
//
// # Invariants
//
// After every operation no node other than the root is both childless and
// non-terminal. Remove prunes the branch it empties, walking back up only as
// far as the first ancestor that still has other children or ends a path.
//
// # Usage
//
//	t := pathtrie.New()
//	t.Insert("/proj/css/site.css")
//	t.Contains("/proj/css/site.css") // true
//	t.Contains("/proj/css")          // false, only a prefix
//	t.Remove("/proj/css/site.css")
//
// A Trie is not safe for concurrent use; callers guard it.
package pathtrie
