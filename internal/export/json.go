// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"

	"github.com/jeranaias/hrefhelper/internal/index"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter writes the records as a JSON array, the same shape the HTTP
// completions endpoint returns.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export converts a document to JSON format.
func (e *JSONExporter) Export(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}
	records := doc.Records
	if records == nil {
		records = []index.CompletionRecord{}
	}
	return json.MarshalIndent(records, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}

// =============================================================================
// EDITOR COMPLETIONS EXPORTER
// =============================================================================

// CompletionsExporter writes an editor completions document:
//
//	{"scope": "...", "completions": [{"trigger": ..., "annotation": ...,
//	  "contents": ..., "kind": ..., "details": ...}]}
//
// contents is the href that replaces the trigger.
type CompletionsExporter struct {
	options *Options
}

// NewCompletionsExporter creates a new editor completions exporter.
func NewCompletionsExporter(opts *Options) *CompletionsExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &CompletionsExporter{options: opts}
}

type completionEntry struct {
	Trigger    string `json:"trigger"`
	Annotation string `json:"annotation"`
	Contents   string `json:"contents"`
	Kind       string `json:"kind"`
	Details    string `json:"details"`
}

type completionsFile struct {
	Scope       string            `json:"scope"`
	Completions []completionEntry `json:"completions"`
}

// Export converts a document to an editor completions file.
func (e *CompletionsExporter) Export(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	scope := doc.Scope
	if scope == "" {
		scope = DefaultScope
	}

	out := completionsFile{Scope: scope, Completions: make([]completionEntry, 0, len(doc.Records))}
	for _, r := range doc.Records {
		out.Completions = append(out.Completions, completionEntry{
			Trigger:    r.Trigger,
			Annotation: r.Annotation,
			Contents:   r.Annotation,
			Kind:       "snippet",
			Details:    r.Details,
		})
	}
	return json.MarshalIndent(out, "", "\t")
}

// FileExtension returns the file extension for completions files.
func (e *CompletionsExporter) FileExtension() string {
	return ".sublime-completions"
}

// MimeType returns the MIME type for completions files.
func (e *CompletionsExporter) MimeType() string {
	return "application/json"
}
