// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports records as a standalone, filterable HTML page.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a document to HTML format.
func (e *HTMLExporter) Export(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	theme := e.options.Theme
	if theme != "light" {
		theme = "dark"
	}

	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString("    <title>Link Completions</title>\n")
	sb.WriteString("    <meta name=\"generator\" content=\"hrefhelper\">\n")
	sb.WriteString(e.getCSS())
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", theme))
	sb.WriteString("    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		sb.WriteString(e.renderHeader(doc))
	}

	sb.WriteString("        <input id=\"filter\" type=\"search\" placeholder=\"Filter triggers\" oninput=\"filterRows(this.value)\">\n")
	sb.WriteString("        <table>\n")
	sb.WriteString("            <thead><tr><th>Trigger</th><th>Expands to</th></tr></thead>\n")
	sb.WriteString("            <tbody>\n")
	for _, r := range doc.Records {
		sb.WriteString(fmt.Sprintf("                <tr><td>%s</td><td><a href=\"%s\"><code>%s</code></a></td></tr>\n",
			html.EscapeString(r.Trigger), html.EscapeString(r.Annotation), html.EscapeString(r.Annotation)))
	}
	sb.WriteString("            </tbody>\n")
	sb.WriteString("        </table>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString(e.getScript())
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// renderHeader renders the header section with metadata.
func (e *HTMLExporter) renderHeader(doc *Document) string {
	var sb strings.Builder

	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString("            <h1>Link Completions</h1>\n")
	sb.WriteString("            <div class=\"metadata\">\n")
	for _, root := range doc.Roots {
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Root:</strong> %s</span>\n", html.EscapeString(root)))
	}
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Records:</strong> %d</span>\n", len(doc.Records)))
	if !doc.GeneratedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Exported:</strong> %s</span>\n", formatTimestamp(doc.GeneratedAt)))
	}
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")

	return sb.String()
}

// =============================================================================
// EMBEDDED CSS AND JAVASCRIPT
// =============================================================================

func (e *HTMLExporter) getCSS() string {
	return `    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        .dark-theme { --bg: #1a1b26; --fg: #c0caf5; --muted: #565f89; --border: #414868; --accent: #7aa2f7; }
        .light-theme { --bg: #ffffff; --fg: #343b58; --muted: #9699a3; --border: #d5d6db; --accent: #34548a; }
        body { background: var(--bg); color: var(--fg); font-family: -apple-system, "Segoe UI", Roboto, sans-serif; }
        .container { max-width: 960px; margin: 0 auto; padding: 2rem 1rem; }
        .header h1 { margin-bottom: 0.5rem; }
        .metadata { color: var(--muted); display: flex; flex-wrap: wrap; gap: 1rem; margin-bottom: 1rem; }
        #filter { width: 100%; padding: 0.5rem; margin-bottom: 1rem; background: var(--bg); color: var(--fg); border: 1px solid var(--border); }
        table { width: 100%; border-collapse: collapse; }
        th, td { text-align: left; padding: 0.4rem 0.6rem; border-bottom: 1px solid var(--border); }
        a { color: var(--accent); text-decoration: none; }
        code { font-family: "SF Mono", Monaco, "Fira Code", monospace; }
    </style>
`
}

func (e *HTMLExporter) getScript() string {
	return `    <script>
        function filterRows(q) {
            q = q.toLowerCase();
            document.querySelectorAll('tbody tr').forEach(function(row) {
                var trigger = row.cells[0].textContent.toLowerCase();
                row.style.display = trigger.indexOf(q) === -1 ? 'none' : '';
            });
        }
    </script>
`
}
