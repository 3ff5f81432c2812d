// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleRecords() []CompletionRecord {
	var out []CompletionRecord
	for _, href := range []string{"index.html", "css/site.css", "js/site.js", "about/index.html"} {
		name := href
		if i := lastSlash(href); i >= 0 {
			name = href[i+1:]
		}
		out = append(out, recordsFor(name, href, "/")...)
	}
	return out
}

func lastSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}

func TestRecordsFor(t *testing.T) {
	recs := recordsFor("site.css", "css/site.css", "/")

	assert.Len(t, recs, 2)
	assert.Equal(t, "site.css", recs[0].Trigger)
	assert.Equal(t, "css/site.css", recs[1].Trigger)
	for _, r := range recs {
		assert.Equal(t, "/css/site.css", r.Annotation)
		assert.Equal(t, KindLinkExpansion, r.Kind)
		assert.Contains(t, r.Details, "<strong>/css/site.css</strong>")
	}
}

func TestFilter(t *testing.T) {
	records := sampleRecords()

	tests := []struct {
		name   string
		prefix string
		limit  int
		want   []string
	}{
		{"empty prefix matches all", "", 0, []string{
			"index.html", "index.html", "site.css", "css/site.css",
			"site.js", "js/site.js", "index.html", "about/index.html",
		}},
		{"prefix before substring", "site", 0, []string{"site.css", "site.js", "css/site.css", "js/site.js"}},
		{"case insensitive", "CSS", 0, []string{"css/site.css", "site.css"}},
		{"limit", "index", 2, []string{"index.html", "index.html"}},
		{"no match", "zzz", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(records, tt.prefix, tt.limit)
			var triggers []string
			for _, r := range got {
				triggers = append(triggers, r.Trigger)
			}
			assert.Equal(t, tt.want, triggers)
		})
	}
}

func TestFilterDoesNotModifyInput(t *testing.T) {
	records := sampleRecords()
	before := append([]CompletionRecord(nil), records...)

	_ = Filter(records[:2], "", 0)
	_ = Filter(records, "site", 1)

	assert.Equal(t, before, records)
}

func TestTriggers(t *testing.T) {
	got := Triggers(sampleRecords())
	assert.Equal(t, []string{"index.html", "site.css", "css/site.css", "site.js", "js/site.js", "about/index.html"}, got)
}
