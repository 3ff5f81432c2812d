// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/hrefhelper/internal/util"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	header := m.theme.Header.Render("hrefhelper") +
		m.theme.Count.Render(fmt.Sprintf("%d/%d", len(m.filtered), len(m.records)))
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	list := m.renderList()
	if m.theme.ShowPreview() && m.locate != nil && m.previewLines >= 0 {
		list = lipgloss.JoinHorizontal(lipgloss.Top, list, m.renderPreview())
	}
	b.WriteString(list)
	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

// renderList draws the visible window of results.
func (m Model) renderList() string {
	width := m.theme.ListWidth()
	if len(m.filtered) == 0 {
		return lipgloss.NewStyle().Width(width).Render(m.theme.Empty.Render("No matching files"))
	}

	triggerWidth := width / 2
	annotationWidth := width - triggerWidth - 3

	end := m.offset + m.listHeight()
	if end > len(m.filtered) {
		end = len(m.filtered)
	}

	rows := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		rec := m.filtered[i]
		cursor := "  "
		style := m.theme.Item
		if i == m.cursor {
			cursor = m.theme.Cursor.Render("> ")
			style = m.theme.ItemSelected
		}
		row := cursor +
			style.Render(util.PadWidth(rec.Trigger, triggerWidth)) + " " +
			m.theme.Annotation.Render(util.TruncatePath(rec.Annotation, annotationWidth))
		rows = append(rows, row)
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(rows, "\n"))
}

// renderPreview draws the highlighted head of the selected file.
func (m Model) renderPreview() string {
	width := m.theme.Width - m.theme.ListWidth() - 4
	if width < 10 {
		return ""
	}

	rec, ok := m.Selected()
	if !ok {
		return ""
	}
	p := m.previewFor(rec)

	title := m.theme.PreviewTitle.Render(util.TruncatePath(rec.Annotation, width))
	var body string
	switch {
	case p.err != "":
		body = m.theme.ErrorText.Render(p.err)
	case p.text == "":
		body = m.theme.Empty.Render("(empty file)")
	default:
		lines := strings.Split(p.text, "\n")
		for i, line := range lines {
			lines[i] = m.theme.LineNumber.Render(fmt.Sprintf("%3d ", i+1)) + line
		}
		body = strings.Join(lines, "\n")
	}

	return m.theme.Preview.
		Width(width).
		MaxHeight(m.listHeight()).
		Render(title + "\n" + body)
}

// renderHelp draws the key binding footer.
func (m Model) renderHelp() string {
	parts := make([]string, 0, 4)
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, m.theme.HelpKey.Render(h.Key)+" "+m.theme.Help.Render(h.Desc))
	}
	return strings.Join(parts, m.theme.Help.Render("  |  "))
}
