// Package view projects raw Pylon API records down to small, fixed-shape
// views suitable for a context-limited LLM caller.
//
// The Pylon API returns wide, deeply nested objects; depending on the request
// shape a relation may arrive as a flat foreign key ("account_id": "A1") or
// as an expanded object ("account": {"id": "A1", ...}). Views normalise both
// forms to a single flat identifier, bound the size of free-text content, and
// come in three detail levels forming a strict superset chain:
//
//	Minimal ⊆ Standard ⊆ Full
//
// Views are created fresh from each response, never persisted, and never
// mutated after construction. All functions in this package are pure.
package view

import "strings"

// Detail selects how much of a record a view exposes.
type Detail int

const (
	// Minimal carries identifiers, a short display field, and classification
	// fields only. Used for multi-record search results.
	Minimal Detail = iota

	// Standard adds timestamps, type/source, and visibility fields, but never
	// the large body content. The default for single-record reads.
	Standard

	// Full adds the body content, always HTML-stripped and truncated. Never
	// returned unless a tool is explicitly asked to include body content.
	Full
)

// Body size bounds, in characters of stripped text.
const (
	// InlineBodyLimit caps the body preview embedded in a Full view.
	InlineBodyLimit = 500

	// DefaultBodyLimit is the default cap of the dedicated body-retrieval
	// tool when the caller does not choose one.
	DefaultBodyLimit = 2000

	// MinBodyLimit and MaxBodyLimit bound the caller-chosen cap of the
	// dedicated body-retrieval tool.
	MinBodyLimit = 100
	MaxBodyLimit = 10000
)

// ellipsis marks truncated text.
const ellipsis = "..."

// Record is a raw, untyped API record as decoded from a Pylon response.
type Record map[string]any

// str returns the named field when it is a string, otherwise "".
func (r Record) str(field string) string {
	s, _ := r[field].(string)
	return s
}

// id resolves an identifier that may appear flat or nested: the flat field
// wins when it is a string; otherwise the "id" of the expanded relation
// object is used; otherwise the identifier is absent.
func (r Record) id(flat, relation string) string {
	if s, ok := r[flat].(string); ok && s != "" {
		return s
	}
	if obj, ok := r[relation].(map[string]any); ok {
		if s, ok := obj["id"].(string); ok {
			return s
		}
	}
	return ""
}

// strs returns the named field as a list of strings. Elements that are
// objects contribute their "value" (falling back to "id"); other element
// kinds are skipped.
func (r Record) strs(field string) []string {
	items, ok := r[field].([]any)
	if !ok || len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case map[string]any:
			if s, ok := v["value"].(string); ok && s != "" {
				out = append(out, s)
			} else if s, ok := v["id"].(string); ok {
				out = append(out, s)
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// listLen returns the length of the named field when it is an array.
func (r Record) listLen(field string) int {
	items, _ := r[field].([]any)
	return len(items)
}

// StripAndTruncate removes HTML tag markup from text, collapses consecutive
// whitespace to single spaces, trims, and bounds the result to maxLen
// characters. When truncation occurs the result ends in "...". The returned
// string never exceeds maxLen characters and carries no '<'; plain text
// without any '<' is passed through as-is, so a bare '>' survives there.
//
// Support-ticket bodies are frequently multi-kilobyte HTML email threads;
// this bound is what keeps a single record from consuming the caller's
// context window.
func StripAndTruncate(text string, maxLen int) string {
	stripped := stripTags(text)
	return truncate(stripped, maxLen)
}

// StripBody strips text like [StripAndTruncate] and additionally reports the
// character count of the full stripped text before truncation, so a caller
// can judge whether to request a larger cap.
func StripBody(text string, maxLen int) (body string, originalLen int) {
	stripped := stripTags(text)
	return truncate(stripped, maxLen), len([]rune(stripped))
}

// stripTags removes tag markup (anything between '<' and '>') using a simple
// state machine, then collapses whitespace runs to single spaces and trims.
// Intentionally not a full HTML parser; sufficient for the rich-text bodies
// the API returns.
func stripTags(s string) string {
	if strings.ContainsRune(s, '<') {
		var b strings.Builder
		b.Grow(len(s))
		inTag := false
		for _, r := range s {
			switch {
			case r == '<':
				inTag = true
			case r == '>':
				inTag = false
			case !inTag:
				b.WriteRune(r)
			}
		}
		s = b.String()
	}
	return strings.Join(strings.Fields(s), " ")
}

// truncate bounds s to maxLen characters, replacing the tail with "..." when
// it does not fit.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= len(ellipsis) {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-len(ellipsis)]) + ellipsis
}
