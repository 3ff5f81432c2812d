// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the CLI, export and picker.
//
// # Key Functions
//
// Display width:
//   - TruncateWidth: column-aware truncation with ellipsis
//   - TruncatePath: keeps the tail of a path when it does not fit
//   - PadWidth, StringWidth: column-aware padding and measuring
//
// File Operations:
//   - AtomicWriteFile, AtomicWrite: crash-safe file writing with fsync
//
// # Usage
//
//	// Fit a completion trigger into a 40-column list
//	label := util.TruncateWidth(rec.Trigger, 40)
//
//	// Write an export so readers never see a partial file
//	err := util.AtomicWrite(path, 0644, func(w io.Writer) error {
//	    return export.Write(w, records, export.FormatJSON)
//	})
package util
