// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package picker implements an interactive terminal picker over completion
// records. Typing filters the list the same way editor completions are
// filtered; the highlighted file is previewed with syntax highlighting when
// the terminal is wide enough.
//
// Usage:
//
//	rec, ok, err := picker.Run(idx.Completions(), picker.Options{
//		Theme:  styles.NewTheme("auto"),
//		Locate: picker.RootLocator(roots, "/"),
//	})
package picker
