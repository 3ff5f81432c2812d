// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports records as a Markdown table.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a document to Markdown format.
func (e *MarkdownExporter) Export(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("records: %d\n", len(doc.Records)))
		for _, root := range doc.Roots {
			sb.WriteString(fmt.Sprintf("root: %s\n", escapeYAML(root)))
		}
		if !doc.GeneratedAt.IsZero() {
			sb.WriteString(fmt.Sprintf("exported: %s\n", doc.GeneratedAt.Format(time.RFC3339)))
		}
		sb.WriteString("generator: hrefhelper\n")
		sb.WriteString("---\n\n")
	}

	sb.WriteString("# Link Completions\n\n")

	if e.options.IncludeMetadata && len(doc.Roots) > 0 {
		for _, root := range doc.Roots {
			sb.WriteString(fmt.Sprintf("- **Root**: `%s`\n", root))
		}
		sb.WriteString(fmt.Sprintf("- **Records**: %d\n\n", len(doc.Records)))
	}

	if len(doc.Records) == 0 {
		sb.WriteString("*No completions indexed.*\n")
		return []byte(sb.String()), nil
	}

	sb.WriteString("| Trigger | Expands to |\n")
	sb.WriteString("|---|---|\n")
	for _, r := range doc.Records {
		sb.WriteString(fmt.Sprintf("| %s | `%s` |\n", escapeTableCell(r.Trigger), strings.ReplaceAll(r.Annotation, "`", "'")))
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// TERMINAL RENDERING
// =============================================================================

// RenderMarkdown renders Markdown for display in a terminal of the given
// width. style is a glamour style name ("dark", "light", "notty") or "auto".
func RenderMarkdown(md []byte, width int, style string) (string, error) {
	if width <= 0 {
		width = 80
	}

	styleOpt := glamour.WithAutoStyle()
	if style != "" && style != "auto" {
		styleOpt = glamour.WithStandardStyle(style)
	}

	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.RenderBytes(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return string(out), nil
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

// escapeTableCell escapes characters that would break a table row or its
// formatting.
func escapeTableCell(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML escapes special YAML characters in values.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
