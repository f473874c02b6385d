// Package search composes category selection, filtering, free-text matching
// and name ordering over an entry catalog.
package search

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hpungsan/tome/internal/entry"
	"github.com/hpungsan/tome/internal/query"
)

// Categories accepted by Run besides the variant names.
const (
	CategoryAll       = "all"
	CategoryBookmarks = "bookmarks"
)

// Categories lists every category a caller can select, in tab order.
var Categories = []string{
	CategoryAll,
	string(entry.VariantBestiary),
	string(entry.VariantSpell),
	string(entry.VariantItem),
	CategoryBookmarks,
}

// IsCategory reports whether c is one of Categories.
func IsCategory(c string) bool {
	return slices.Contains(Categories, c)
}

// Bookmarks is the read side of a bookmark set.
type Bookmarks interface {
	Has(key string) bool
}

// Run returns the entries of cat in category that satisfy raw, sorted by name.
// The result is a fresh slice; entries are never mutated. A nil bookmarks
// value is an empty set.
func Run(cat *entry.Catalog, bookmarks Bookmarks, category, raw string) []entry.Entry {
	results := Select(cat, bookmarks, category)

	if raw != "" {
		results = Filter(results, query.Parse(raw))
	}

	Sort(results)
	return results
}

// Select returns the entries belonging to category, in catalog order.
// Any category other than "all" and "bookmarks" is compared against the
// variant tag, so an unknown category selects nothing. A bookmarked key
// selects only its first entry, the one Catalog.ByKey resolves to.
func Select(cat *entry.Catalog, bookmarks Bookmarks, category string) []entry.Entry {
	var (
		out  []entry.Entry
		seen map[string]bool
	)
	if category == CategoryBookmarks {
		seen = make(map[string]bool)
	}
	cat.Each(func(e entry.Entry) {
		switch category {
		case CategoryAll:
			out = append(out, e)
		case CategoryBookmarks:
			key := e.Key()
			if bookmarks != nil && !seen[key] && bookmarks.Has(key) {
				seen[key] = true
				out = append(out, e)
			}
		default:
			if string(e.Variant) == category {
				out = append(out, e)
			}
		}
	})
	if out == nil {
		out = []entry.Entry{}
	}
	return out
}

// Filter keeps entries that pass q's recognized filters and whose name or
// description contains q's free text. It filters in place.
func Filter(entries []entry.Entry, q query.Query) []entry.Entry {
	useFilters := query.HasRecognized(q.Filters)
	out := entries[:0]
	for _, e := range entries {
		if useFilters && !query.Matches(e, q.Filters) {
			continue
		}
		if q.FreeText != "" && !entry.ContainsCI(e.Name, q.FreeText) && !entry.ContainsCI(e.Description, q.FreeText) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Sort orders entries by name with an English collator. The sort is stable,
// so equal names keep their existing (catalog) order.
func Sort(entries []entry.Entry) {
	// A Collator is not safe for concurrent use; build one per call.
	c := collate.New(language.English)
	slices.SortStableFunc(entries, func(a, b entry.Entry) int {
		return c.CompareString(a.Name, b.Name)
	})
}
