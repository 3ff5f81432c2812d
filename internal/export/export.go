// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jeranaias/hrefhelper/internal/index"
	"github.com/jeranaias/hrefhelper/internal/util"
)

// ErrUnknownFormat is returned by New for an unrecognized format name.
var ErrUnknownFormat = errors.New("unknown export format")

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is a snapshot of completion records ready to export.
type Document struct {
	// Scope is the editor selector the completions apply to.
	Scope string

	// Roots are the folders the records were indexed from.
	Roots []string

	// Records in index order.
	Records []index.CompletionRecord

	// GeneratedAt is stamped into formats that carry metadata.
	GeneratedAt time.Time
}

// DefaultScope targets the attribute value of an HTML href.
const DefaultScope = "text.html meta.attribute-with-value.href string.quoted"

// NewDocument builds a Document stamped with the current time.
func NewDocument(roots []string, records []index.CompletionRecord) *Document {
	return &Document{
		Scope:       DefaultScope,
		Roots:       roots,
		Records:     records,
		GeneratedAt: time.Now(),
	}
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for completion exporters.
type Exporter interface {
	// Export converts a document to the target format and returns the content.
	Export(doc *Document) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".md").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// Format names accepted by New.
const (
	FormatJSON        = "json"
	FormatCompletions = "completions"
	FormatMarkdown    = "markdown"
	FormatHTML        = "html"
)

// Formats lists the supported format names.
func Formats() []string {
	return []string{FormatJSON, FormatCompletions, FormatMarkdown, FormatHTML}
}

// New returns the exporter for a format name.
func New(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return NewJSONExporter(opts), nil
	case FormatCompletions, "sublime-completions":
		return NewCompletionsExporter(opts), nil
	case FormatMarkdown, "md":
		return NewMarkdownExporter(opts), nil
	case FormatHTML:
		return NewHTMLExporter(opts), nil
	default:
		return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnknownFormat, format, strings.Join(Formats(), ", "))
	}
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory ExportToFile writes into.
	// Default: current working directory
	OutputDir string

	// OpenAfterExport opens the file in the default application.
	OpenAfterExport bool

	// IncludeMetadata adds a header (roots, counts, timestamp) where the
	// format allows one.
	IncludeMetadata bool

	// Theme for HTML export ("light" or "dark").
	// Default: "dark"
	Theme string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:       ".",
		OpenAfterExport: false,
		IncludeMetadata: true,
		Theme:           "dark",
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// Write exports doc to w.
func Write(w io.Writer, doc *Document, exporter Exporter) error {
	content, err := exporter.Export(doc)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	_, err = w.Write(content)
	return err
}

// WriteFile exports doc to path atomically. A failed export leaves any
// existing file untouched.
func WriteFile(path string, doc *Document, exporter Exporter) error {
	return util.AtomicWrite(path, 0644, func(w io.Writer) error {
		return Write(w, doc, exporter)
	})
}

// ExportToFile exports doc into opts.OutputDir under a generated,
// timestamped name and returns the path written.
func ExportToFile(doc *Document, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	label := "completions"
	if len(doc.Roots) == 1 {
		label = filepath.Base(doc.Roots[0])
	}
	filename := fmt.Sprintf("hrefs_%s_%s%s",
		sanitizeFilename(label),
		time.Now().Format("20060102_150405"),
		exporter.FileExtension(),
	)

	outputPath := filepath.Join(opts.OutputDir, filename)
	if err := WriteFile(outputPath, doc, exporter); err != nil {
		return "", err
	}

	if opts.OpenAfterExport {
		if err := openFile(outputPath); err != nil {
			// Non-fatal - file was still created successfully
			return outputPath, fmt.Errorf("exported but could not open: %w", err)
		}
	}

	return outputPath, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	s = util.TruncateWidth(s, 50)

	replacer := map[rune]rune{
		'/':  '-',
		'\\': '-',
		':':  '-',
		'*':  '-',
		'?':  '-',
		'"':  '-',
		'<':  '-',
		'>':  '-',
		'|':  '-',
		' ':  '_',
		'\t': '_',
	}

	result := []rune{}
	for _, r := range s {
		if replacement, found := replacer[r]; found {
			result = append(result, replacement)
		} else if r < 32 || r == 127 {
			result = append(result, '-')
		} else {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "completions"
	}
	return string(result)
}

// openFile opens a file in the default application for the OS.
func openFile(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
