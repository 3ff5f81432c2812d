// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package picker

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/muesli/termenv"

	"github.com/jeranaias/hrefhelper/internal/index"
)

// maxPreviewLineBytes caps a single scanned line; minified assets can have
// megabyte-long lines.
const maxPreviewLineBytes = 64 * 1024

// RootLocator returns a Locate function that maps a record's annotation back
// to a file under one of roots. hrefPrefix is the prefix the index was built
// with. Records whose file no longer exists map to "".
func RootLocator(roots []string, hrefPrefix string) func(index.CompletionRecord) string {
	return func(rec index.CompletionRecord) string {
		rel := strings.TrimPrefix(rec.Annotation, hrefPrefix)
		for _, root := range roots {
			path := filepath.Join(root, filepath.FromSlash(rel))
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				return path
			}
		}
		return ""
	}
}

// readHead returns up to n lines from the start of path. Binary files (any
// NUL byte in the sampled lines) report binary=true and no text.
func readHead(path string, n int) (text string, binary bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 4096), maxPreviewLineBytes)

	var lines []string
	for len(lines) < n && scanner.Scan() {
		line := scanner.Bytes()
		if bytes.IndexByte(line, 0) >= 0 {
			return "", true, nil
		}
		lines = append(lines, string(line))
	}
	if err := scanner.Err(); err != nil && err != bufio.ErrTooLong {
		return "", false, err
	}
	return strings.Join(lines, "\n"), false, nil
}

// formatterFor picks the chroma formatter matching the terminal profile, or
// "" when the terminal has no color.
func formatterFor(profile termenv.Profile) string {
	switch profile {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	case termenv.ANSI:
		return "terminal"
	default:
		return ""
	}
}

// highlight applies syntax highlighting chosen by file name. Any failure
// returns the input unchanged.
func highlight(code, filename string, profile termenv.Profile, dark bool) string {
	name := formatterFor(profile)
	if name == "" || code == "" {
		return code
	}

	lexer := lexers.Match(filename)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		return code
	}
	lexer = chroma.Coalesce(lexer)

	styleName := "github"
	if dark {
		styleName = "monokai"
	}
	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get(name)
	if formatter == nil {
		return code
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}
