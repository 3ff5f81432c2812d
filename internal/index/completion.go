// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"fmt"
	"strings"
)

// KindLinkExpansion is the kind reported for every file completion.
const KindLinkExpansion = "Link Expansion"

// CompletionRecord is one way a typed prefix can resolve to an href path.
// Records are created once per newly discovered file and never mutated.
type CompletionRecord struct {
	// Trigger is the text matched against user input: the bare file name or
	// the root-relative slash path.
	Trigger string `json:"trigger"`

	// Annotation is the href inserted on completion, e.g. "/css/site.css".
	Annotation string `json:"annotation"`

	// Details is a short human-readable hint.
	Details string `json:"details"`

	// Kind groups records in the editor's completion list.
	Kind string `json:"kind"`
}

// newRecord builds the record for trigger pointing at annotation.
func newRecord(trigger, annotation string) CompletionRecord {
	return CompletionRecord{
		Trigger:    trigger,
		Annotation: annotation,
		Details:    fmt.Sprintf("Will expand to <strong>%s</strong>", annotation),
		Kind:       KindLinkExpansion,
	}
}

// recordsFor returns the two records for a file: one keyed by its bare name,
// one keyed by its root-relative path.
func recordsFor(name, href, prefix string) []CompletionRecord {
	annotation := prefix + href
	return []CompletionRecord{
		newRecord(name, annotation),
		newRecord(href, annotation),
	}
}

// =============================================================================
// QUERY-TIME FILTERING
// =============================================================================

// Filter selects records whose trigger matches prefix, case-insensitively.
// Prefix matches come first, then records that merely contain prefix, each
// group in the order the records were indexed. An empty prefix matches
// everything. limit <= 0 means no limit. The input is never modified.
func Filter(records []CompletionRecord, prefix string, limit int) []CompletionRecord {
	needle := strings.ToLower(prefix)

	var head, tail []CompletionRecord
	for _, rec := range records {
		trigger := strings.ToLower(rec.Trigger)
		switch {
		case strings.HasPrefix(trigger, needle):
			head = append(head, rec)
		case strings.Contains(trigger, needle):
			tail = append(tail, rec)
		}
		if limit > 0 && len(head) >= limit {
			break
		}
	}

	out := append(head, tail...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Triggers returns the distinct triggers of records in first-seen order.
func Triggers(records []CompletionRecord) []string {
	seen := make(map[string]struct{}, len(records))
	out := make([]string, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.Trigger]; ok {
			continue
		}
		seen[rec.Trigger] = struct{}{}
		out = append(out, rec.Trigger)
	}
	return out
}
