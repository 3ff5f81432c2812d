// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/hrefhelper/internal/index"
)

func sampleDoc() *Document {
	return &Document{
		Scope: DefaultScope,
		Roots: []string{"/srv/site"},
		Records: []index.CompletionRecord{
			{Trigger: "site.css", Annotation: "/css/site.css", Details: "Will expand to <strong>/css/site.css</strong>", Kind: index.KindLinkExpansion},
			{Trigger: "css/site.css", Annotation: "/css/site.css", Details: "Will expand to <strong>/css/site.css</strong>", Kind: index.KindLinkExpansion},
		},
		GeneratedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNew(t *testing.T) {
	for _, f := range Formats() {
		exp, err := New(f, nil)
		require.NoError(t, err, f)
		assert.NotEmpty(t, exp.FileExtension())
		assert.NotEmpty(t, exp.MimeType())
	}

	_, err := New("yaml", nil)
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestJSONExporter(t *testing.T) {
	data, err := NewJSONExporter(nil).Export(sampleDoc())
	require.NoError(t, err)

	var records []index.CompletionRecord
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Equal(t, sampleDoc().Records, records)

	empty, err := NewJSONExporter(nil).Export(&Document{})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestCompletionsExporter(t *testing.T) {
	data, err := NewCompletionsExporter(nil).Export(sampleDoc())
	require.NoError(t, err)

	var out struct {
		Scope       string `json:"scope"`
		Completions []struct {
			Trigger    string `json:"trigger"`
			Annotation string `json:"annotation"`
			Contents   string `json:"contents"`
			Kind       string `json:"kind"`
			Details    string `json:"details"`
		} `json:"completions"`
	}
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, DefaultScope, out.Scope)
	require.Len(t, out.Completions, 2)
	assert.Equal(t, "site.css", out.Completions[0].Trigger)
	assert.Equal(t, "/css/site.css", out.Completions[0].Contents)
	assert.Equal(t, "snippet", out.Completions[0].Kind)
	assert.Contains(t, out.Completions[1].Details, "<strong>/css/site.css</strong>")
}

func TestMarkdownExporter(t *testing.T) {
	data, err := NewMarkdownExporter(nil).Export(sampleDoc())
	require.NoError(t, err)
	md := string(data)

	assert.True(t, strings.HasPrefix(md, "---\nrecords: 2\n"))
	assert.Contains(t, md, "exported: 2025-03-01T12:00:00Z")
	assert.Contains(t, md, "| site.css | `/css/site.css` |")
	assert.Contains(t, md, "| css/site.css | `/css/site.css` |")
}

func TestMarkdownExporter_EscapesCells(t *testing.T) {
	doc := &Document{Records: []index.CompletionRecord{{Trigger: "a|b_c.html", Annotation: "/a|b_c.html"}}}
	data, err := NewMarkdownExporter(&Options{}).Export(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `| a\|b\_c.html |`)
	assert.False(t, strings.HasPrefix(string(data), "---"), "no front matter without metadata")
}

func TestMarkdownExporter_Empty(t *testing.T) {
	data, err := NewMarkdownExporter(nil).Export(&Document{})
	require.NoError(t, err)
	assert.Contains(t, string(data), "No completions indexed")
}

func TestHTMLExporter_Escapes(t *testing.T) {
	doc := &Document{Records: []index.CompletionRecord{{Trigger: "<script>.html", Annotation: "/<script>.html"}}}
	data, err := NewHTMLExporter(nil).Export(doc)
	require.NoError(t, err)

	page := string(data)
	assert.NotContains(t, page, "<td><script>")
	assert.Contains(t, page, "&lt;script&gt;.html")
	assert.Contains(t, page, `class="dark-theme"`)
}

func TestNilDocument(t *testing.T) {
	for _, f := range Formats() {
		exp, _ := New(f, nil)
		_, err := exp.Export(nil)
		assert.Error(t, err, f)
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleDoc(), NewJSONExporter(nil)))
	assert.True(t, json.Valid(buf.Bytes()))
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.OutputDir = dir

	path, err := ExportToFile(sampleDoc(), NewCompletionsExporter(opts), opts)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "hrefs_site_"))
	assert.True(t, strings.HasSuffix(path, ".sublime-completions"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "my_site-v2", sanitizeFilename("my site:v2"))
	assert.Equal(t, "completions", sanitizeFilename(""))
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown([]byte("# Link Completions\n\n| a | b |\n|---|---|\n| x | y |\n"), 60, "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "Link Completions")
}
