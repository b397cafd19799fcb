// Package filter validates and repairs structured search filters before they
// are sent to the Pylon search endpoints.
//
// Filters arrive from an LLM caller and may contain operator names the API
// does not accept for a given field, or time windows the API would reject or
// mishandle. The two concerns are treated asymmetrically on purpose:
//
//   - Time-range violations are hard failures ([ValidateTimeRange],
//     [ValidateFilterTimeRanges]) raised before any network call, because the
//     remote API is guaranteed to reject or mishandle such a request.
//   - Unrecognised operators are silently dropped by [Clean], because
//     omission merely narrows the query instead of corrupting it, and a
//     partial best-effort filter is preferable to a hard failure.
//
// All functions are pure and safe for concurrent use; the operator table is
// immutable after package initialisation.
package filter

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// MaxRangeSpan is the widest time window a single time_range operator may
// cover. Wider windows are rejected so a single search cannot ask the API
// for an unbounded result volume.
const MaxRangeSpan = 30 * 24 * time.Hour

// Sentinel errors for time-range validation. Wrapped errors carry the
// offending values; match with [errors.Is].
var (
	// ErrInvalidTimestamp indicates a start or end value that does not parse
	// as an RFC 3339 date-time.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrInvalidRange indicates start >= end.
	ErrInvalidRange = errors.New("start must be before end")

	// ErrRangeTooLarge indicates a window wider than [MaxRangeSpan].
	ErrRangeTooLarge = errors.New("time range too large")
)

// Filter is a caller-supplied search predicate: a mapping from field name to
// either a literal value or an operator map (operator name → operand). It is
// the JSON-decoded shape of the "filter" argument of the search tools.
type Filter map[string]any

// fieldOperators is the per-field operator whitelist. It is the single source
// of truth for structural filter validity and never changes at runtime.
// Fields absent from this table are treated as unknown and passed through
// after recursive cleaning (see [Clean]).
var fieldOperators = map[string][]string{
	// Identifier and classification fields.
	"id":           {"equals", "in", "not_in"},
	"number":       {"equals", "in"},
	"state":        {"equals", "in", "not_in"},
	"source":       {"equals", "in", "not_in"},
	"type":         {"equals", "in", "not_in"},
	"account_id":   {"equals", "in", "not_in", "is_set", "is_unset"},
	"assignee_id":  {"equals", "in", "not_in", "is_set", "is_unset"},
	"requester_id": {"equals", "in", "not_in", "is_set", "is_unset"},
	"team_id":      {"equals", "in", "not_in", "is_set", "is_unset"},
	"owner_id":     {"equals", "in", "not_in", "is_set", "is_unset"},
	"tags":         {"in", "not_in", "is_set", "is_unset"},

	// Free-text fields.
	"title":  {"string_contains", "string_does_not_contain"},
	"body":   {"string_contains", "string_does_not_contain"},
	"name":   {"equals", "string_contains", "string_does_not_contain"},
	"email":  {"equals", "in", "string_contains"},
	"domain": {"equals", "in", "string_contains"},

	// Time fields.
	"created_at":          {"time_is_after", "time_is_before", "time_range"},
	"updated_at":          {"time_is_after", "time_is_before", "time_range"},
	"resolved_at":         {"time_is_after", "time_is_before", "time_range"},
	"latest_message_time": {"time_is_after", "time_is_before", "time_range"},
}

// AllowedOperators returns the operator whitelist for field and whether the
// field is known to the sanitizer. The returned slice must not be modified.
func AllowedOperators(field string) ([]string, bool) {
	ops, ok := fieldOperators[field]
	return ops, ok
}

// ValidateTimeRange checks that start and end form an acceptable search
// window. Both must parse as RFC 3339, start must precede end, and the window
// must not exceed [MaxRangeSpan]. It is purely a guard: no value is returned
// on success, and no correction is ever applied.
func ValidateTimeRange(start, end string) error {
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return fmt.Errorf("filter: start %q: %w", start, ErrInvalidTimestamp)
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return fmt.Errorf("filter: end %q: %w", end, ErrInvalidTimestamp)
	}
	if !s.Before(e) {
		return fmt.Errorf("filter: start %q is not before end %q: %w", start, end, ErrInvalidRange)
	}
	if span := e.Sub(s); span > MaxRangeSpan {
		return fmt.Errorf("filter: requested range spans %.1f days, maximum is %.0f: %w",
			span.Hours()/24, MaxRangeSpan.Hours()/24, ErrRangeTooLarge)
	}
	return nil
}

// ValidateFilterTimeRanges applies [ValidateTimeRange] to every time_range
// operator in f that carries both a start and an end. Failures are wrapped
// with the offending field name and propagated immediately.
//
// This check is always applied to search filters before transmission,
// independent of [Clean].
func ValidateFilterTimeRanges(f Filter) error {
	for field, value := range f {
		m, ok := value.(map[string]any)
		if !ok {
			continue
		}
		tr, ok := m["time_range"].(map[string]any)
		if !ok {
			continue
		}
		start, okStart := tr["start"].(string)
		end, okEnd := tr["end"].(string)
		if !okStart || !okEnd {
			continue
		}
		if err := ValidateTimeRange(start, end); err != nil {
			return fmt.Errorf("filter: field %q: %w", field, err)
		}
	}
	return nil
}

// Clean returns a copy of f containing only structurally valid content:
//
//   - Fields with a nil value are dropped.
//   - Scalar and array values are kept unchanged.
//   - For fields known to the whitelist, only whitelisted operators survive;
//     unrecognised operators are dropped without error. A field left with no
//     operators is removed entirely.
//   - Unknown fields are cleaned recursively as nested filters and kept only
//     when the recursion yields at least one field. Their operators are not
//     validated; this keeps the sanitizer forward-compatible with API fields
//     it has not been told about.
//
// Clean never fails. It returns nil (not an empty map) when the whole filter
// reduces to nothing, so callers can substitute a canonical "no filter"
// payload instead of sending an ambiguous empty object.
func Clean(f Filter) Filter {
	if len(f) == 0 {
		return nil
	}
	out := make(Filter, len(f))
	for field, value := range f {
		if value == nil {
			continue
		}
		m, ok := value.(map[string]any)
		if !ok {
			out[field] = value
			continue
		}
		allowed, known := fieldOperators[field]
		if !known {
			if nested := Clean(m); nested != nil {
				out[field] = map[string]any(nested)
			}
			continue
		}
		kept := make(map[string]any, len(m))
		for op, operand := range m {
			if slices.Contains(allowed, op) {
				kept[op] = operand
			}
		}
		if len(kept) > 0 {
			out[field] = kept
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Sanitize is the combined guard applied to every search filter: it
// validates all time ranges (fail fast) and then returns the cleaned filter
// (degrade by omission). The returned filter is nil when nothing survives.
func Sanitize(f Filter) (Filter, error) {
	if err := ValidateFilterTimeRanges(f); err != nil {
		return nil, err
	}
	return Clean(f), nil
}
