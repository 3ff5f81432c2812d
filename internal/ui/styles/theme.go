// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted by NewTheme.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// Theme holds all the styled components for the picker.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER AND PROMPT
	// ==========================================================================

	Header      lipgloss.Style
	Prompt      lipgloss.Style
	Placeholder lipgloss.Style
	Count       lipgloss.Style

	// ==========================================================================
	// RESULT LIST
	// ==========================================================================

	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	Annotation   lipgloss.Style
	Cursor       lipgloss.Style
	Empty        lipgloss.Style

	// ==========================================================================
	// PREVIEW PANE
	// ==========================================================================

	Preview      lipgloss.Style
	PreviewTitle lipgloss.Style
	LineNumber   lipgloss.Style

	// ==========================================================================
	// FOOTER
	// ==========================================================================

	Help      lipgloss.Style
	HelpKey   lipgloss.Style
	ErrorText lipgloss.Style
}

// NewTheme creates a theme for mode ("auto", "dark" or "light"). Unknown
// modes behave like "auto".
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	switch mode {
	case ModeDark:
		t.IsDark = true
	case ModeLight:
		t.IsDark = false
	default:
		t.IsDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(t.IsDark)

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Padding(0, 1)

	t.Prompt = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.Placeholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.Count = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Item = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.ItemSelected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SelectionBg).
		Bold(true)

	t.Annotation = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.Cursor = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.Empty = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Padding(0, 2)

	t.Preview = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.PreviewTitle = lipgloss.NewStyle().
		Foreground(Cyan).
		Underline(true)

	t.LineNumber = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Help = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.HelpKey = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.ErrorText = lipgloss.NewStyle().
		Foreground(Rose)
}

// SetSize records the terminal dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// ListWidth returns the width given to the result list; the rest goes to the
// preview pane. Narrow terminals get the full width and no preview.
func (t *Theme) ListWidth() int {
	if t.Width < 80 {
		return t.Width
	}
	return t.Width / 2
}

// ShowPreview reports whether the terminal is wide enough for a preview pane.
func (t *Theme) ShowPreview() bool {
	return t.Width >= 80
}
