package ops

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/tome/internal/bookmark"
	"github.com/hpungsan/tome/internal/entry"
	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/query"
	"github.com/hpungsan/tome/internal/search"
)

// MaxQueryLength bounds the raw query in runes.
const MaxQueryLength = 1000

// SortNameAsc is the only result order.
const SortNameAsc = "name_asc"

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Category string // default: all
	Query    string // optional
}

// SearchOutput contains the result of the Search operation.
type SearchOutput struct {
	Items    []EntryItem       `json:"items"`
	Total    int               `json:"total"`
	Category string            `json:"category"`
	Filters  map[string]string `json:"filters"`
	// Ignored lists parsed filter keys that have no rule.
	Ignored  []string `json:"ignored_filters,omitempty"`
	FreeText string   `json:"free_text"`
	Sort     string   `json:"sort"`
}

// Search runs the search pipeline over cat for one category and raw query.
func Search(cat *entry.Catalog, bm *bookmark.Manager, input SearchInput) (*SearchOutput, error) {
	category := strings.ToLower(strings.TrimSpace(input.Category))
	if category == "" {
		category = search.CategoryAll
	}
	if !search.IsCategory(category) {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("category must be one of: %s", strings.Join(search.Categories, ", ")))
	}
	if utf8.RuneCountInString(input.Query) > MaxQueryLength {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("query exceeds maximum length of %d characters", MaxQueryLength))
	}

	snap := bm.Snapshot()
	results := search.Run(cat, snap, category, input.Query)

	q := query.Parse(input.Query)
	var ignored []string
	for _, k := range sortedKeys(q.Filters) {
		if !query.IsRecognized(k) {
			ignored = append(ignored, k)
		}
	}

	return &SearchOutput{
		Items:    newEntryItems(results, snap),
		Total:    len(results),
		Category: category,
		Filters:  q.Filters,
		Ignored:  ignored,
		FreeText: q.FreeText,
		Sort:     SortNameAsc,
	}, nil
}
