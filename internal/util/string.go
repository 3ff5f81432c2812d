// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const ellipsis = "..."

// TruncateWidth truncates s to at most maxWidth terminal columns, appending
// "..." when something was cut and there is room for it. Wide (CJK) runes
// count as two columns.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= len(ellipsis) {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, ellipsis)
}

// TruncatePath shortens a path to maxWidth columns by dropping leading
// characters, so the file name stays visible: "/very/long/dir/a.html"
// becomes ".../dir/a.html".
func TruncatePath(p string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(p) <= maxWidth {
		return p
	}
	if maxWidth <= len(ellipsis) {
		return TruncateWidth(p, maxWidth)
	}

	budget := maxWidth - len(ellipsis)
	runes := []rune(p)
	width := 0
	start := len(runes)
	for start > 0 {
		w := runewidth.RuneWidth(runes[start-1])
		if width+w > budget {
			break
		}
		width += w
		start--
	}
	return ellipsis + string(runes[start:])
}

// PadWidth right-pads s with spaces to exactly width columns, truncating
// first if it is wider.
func PadWidth(s string, width int) string {
	s = TruncateWidth(s, width)
	if pad := width - runewidth.StringWidth(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

// StringWidth returns the number of terminal columns s occupies.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}
