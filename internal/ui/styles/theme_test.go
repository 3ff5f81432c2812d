// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"
)

func TestNewTheme_Modes(t *testing.T) {
	if th := NewTheme(ModeDark); !th.IsDark {
		t.Error("dark mode should set IsDark")
	}
	if th := NewTheme(ModeLight); th.IsDark {
		t.Error("light mode should clear IsDark")
	}
	// Auto must not panic without a terminal.
	_ = NewTheme(ModeAuto)
	_ = NewTheme("bogus")
}

func TestTheme_Layout(t *testing.T) {
	th := NewTheme(ModeDark)

	th.SetSize(60, 20)
	if th.ShowPreview() {
		t.Error("60 columns is too narrow for a preview")
	}
	if got := th.ListWidth(); got != 60 {
		t.Errorf("ListWidth() = %d, want 60", got)
	}

	th.SetSize(120, 40)
	if !th.ShowPreview() {
		t.Error("120 columns should show a preview")
	}
	if got := th.ListWidth(); got != 60 {
		t.Errorf("ListWidth() = %d, want 60", got)
	}
}
