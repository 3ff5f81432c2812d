// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the colors and lip gloss styles used by the
interactive completion picker.

All colors are lipgloss.AdaptiveColor values. NewTheme picks the light or dark
variant from the configured mode, falling back to termenv's background
detection for "auto":

	theme := styles.NewTheme("auto")
	theme.SetSize(120, 40)
	if theme.ShowPreview() {
		// list and preview side by side
	}
*/
package styles
