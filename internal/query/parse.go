// Package query parses search strings into filters plus free text and
// evaluates those filters against catalog entries.
package query

import (
	"regexp"
	"strings"
)

// tokenPattern matches one key:value filter. Go's regexp scans leftmost-first
// and non-overlapping, and both runs are greedy, so "tier:1lv:3" yields the
// single token "tier:1lv" and leaves ":3" as free text.
var tokenPattern = regexp.MustCompile(`([A-Za-z0-9_]+):([A-Za-z0-9_]+)`)

// Query is the parse result of a raw search string.
type Query struct {
	// Filters maps lowercased keys to lowercased values. A later occurrence
	// of a key overwrites an earlier one.
	Filters map[string]string `json:"filters"`
	// FreeText is the residual text with filter tokens removed, trimmed and lowercased.
	FreeText string `json:"free_text"`
}

// Empty reports whether the query has neither filters nor free text.
func (q Query) Empty() bool {
	return len(q.Filters) == 0 && q.FreeText == ""
}

// Parse splits raw into filters and free text. It never fails.
func Parse(raw string) Query {
	q := Query{Filters: map[string]string{}}
	if raw == "" {
		return q
	}

	for _, m := range tokenPattern.FindAllStringSubmatch(raw, -1) {
		q.Filters[strings.ToLower(m[1])] = strings.ToLower(m[2])
	}
	rest := tokenPattern.ReplaceAllLiteralString(raw, "")
	q.FreeText = strings.ToLower(strings.TrimSpace(rest))
	return q
}
