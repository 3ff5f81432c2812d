// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes snapshots of link completions to files.
//
// Exports are one-shot: nothing here is ever read back into an index.
//
// # Key Types
//
//   - Document: the records plus the roots they came from
//   - Exporter: format interface (JSON, editor completions, Markdown, HTML)
//   - Options: output directory, metadata, theme
//
// # Supported Formats
//
//   - json: the records array, as served over HTTP
//   - completions: an editor completions file with a scope selector
//   - markdown: a trigger/href table, renderable in the terminal
//   - html: a standalone page with a trigger filter
//
// # Usage
//
//	exporter, err := export.New("completions", nil)
//	doc := export.NewDocument(idx.Roots(), idx.Completions())
//	err = export.WriteFile("site.sublime-completions", doc, exporter)
package export
