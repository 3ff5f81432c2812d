// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package picker

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/hrefhelper/internal/index"
	"github.com/jeranaias/hrefhelper/internal/ui/styles"
)

// DefaultPreviewLines is used when Options.PreviewLines is zero.
const DefaultPreviewLines = 20

// Options configures a picker.
type Options struct {
	// Theme supplies styles and terminal capabilities. Nil means NewTheme("auto").
	Theme *styles.Theme

	// Query is the initial filter text.
	Query string

	// PreviewLines is how many lines of the highlighted file to show.
	// Negative disables the preview.
	PreviewLines int

	// Locate maps a record to a readable file for previewing. Nil disables
	// the preview.
	Locate func(index.CompletionRecord) string

	// Output is where the program draws. Nil means stderr, so stdout stays
	// free for the chosen href.
	Output io.Writer
}

// preview is a cached, already highlighted file head.
type preview struct {
	text string
	err  string
}

// Model is the Bubble Tea model for the picker.
type Model struct {
	theme  *styles.Theme
	keys   KeyMap
	input  textinput.Model
	locate func(index.CompletionRecord) string

	records  []index.CompletionRecord
	filtered []index.CompletionRecord
	cursor   int
	offset   int

	previewLines int
	previews     map[string]preview

	chosen   *index.CompletionRecord
	canceled bool
}

// New creates a picker over records. The slice is never modified.
func New(records []index.CompletionRecord, opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(styles.ModeAuto)
	}
	if theme.Width == 0 {
		theme.SetSize(80, 24)
	}

	input := textinput.New()
	input.Prompt = "href> "
	input.Placeholder = "type to filter"
	input.PromptStyle = theme.Prompt
	input.PlaceholderStyle = theme.Placeholder
	input.SetValue(opts.Query)
	input.Focus()

	lines := opts.PreviewLines
	if lines == 0 {
		lines = DefaultPreviewLines
	}

	m := Model{
		theme:        theme,
		keys:         DefaultKeyMap(),
		input:        input,
		locate:       opts.Locate,
		records:      records,
		previewLines: lines,
		previews:     make(map[string]preview),
	}
	m.refilter()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.theme.SetSize(msg.Width, msg.Height)
		m.clampOffset()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.canceled = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Select):
			if rec, ok := m.Selected(); ok {
				m.chosen = &rec
				return m, tea.Quit
			}
			return m, nil
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.move(1)
			return m, nil
		case key.Matches(msg, m.keys.PageUp):
			m.move(-m.listHeight())
			return m, nil
		case key.Matches(msg, m.keys.PageDown):
			m.move(m.listHeight())
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			m.input.SetValue("")
			m.refilter()
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.refilter()
	}
	return m, cmd
}

// refilter recomputes the visible records and resets the selection.
func (m *Model) refilter() {
	m.filtered = index.Filter(m.records, m.input.Value(), 0)
	m.cursor = 0
	m.offset = 0
}

// move shifts the cursor by delta, clamped to the list.
func (m *Model) move(delta int) {
	if len(m.filtered) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = len(m.filtered) - 1
	}
	m.clampOffset()
}

// clampOffset scrolls the window so the cursor stays visible.
func (m *Model) clampOffset() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// listHeight is the number of result rows that fit: the terminal height
// minus header, input, blank line and footer.
func (m Model) listHeight() int {
	h := m.theme.Height - 4
	if h < 1 {
		return 1
	}
	return h
}

// Query returns the current filter text.
func (m Model) Query() string {
	return m.input.Value()
}

// Matches returns the records that pass the current filter.
func (m Model) Matches() []index.CompletionRecord {
	return m.filtered
}

// Selected returns the highlighted record.
func (m Model) Selected() (index.CompletionRecord, bool) {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return index.CompletionRecord{}, false
	}
	return m.filtered[m.cursor], true
}

// Chosen returns the record confirmed with Enter.
func (m Model) Chosen() (index.CompletionRecord, bool) {
	if m.chosen == nil {
		return index.CompletionRecord{}, false
	}
	return *m.chosen, true
}

// Canceled reports whether the user left without choosing.
func (m Model) Canceled() bool {
	return m.canceled
}

// previewFor returns the highlighted head of the file behind rec, reading it
// at most once per path.
func (m Model) previewFor(rec index.CompletionRecord) preview {
	if m.locate == nil || m.previewLines < 0 {
		return preview{}
	}
	path := m.locate(rec)
	if path == "" {
		return preview{err: "file not found"}
	}
	if p, ok := m.previews[path]; ok {
		return p
	}

	var p preview
	text, binary, err := readHead(path, m.previewLines)
	switch {
	case err != nil:
		p.err = err.Error()
	case binary:
		p.err = "binary file"
	default:
		p.text = highlight(text, filepath.Base(path), m.theme.ColorProfile, m.theme.IsDark)
	}
	// Map writes are visible to later copies of the model.
	m.previews[path] = p
	return p
}

// Run shows the picker until the user chooses a record or cancels.
func Run(records []index.CompletionRecord, opts Options) (index.CompletionRecord, bool, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	p := tea.NewProgram(New(records, opts), tea.WithAltScreen(), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return index.CompletionRecord{}, false, err
	}
	rec, ok := final.(Model).Chosen()
	return rec, ok, nil
}
