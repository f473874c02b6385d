package ops

import (
	"context"
	"slices"

	"github.com/hpungsan/tome/internal/bookmark"
	"github.com/hpungsan/tome/internal/entry"
	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/search"
)

// ToggleInput contains parameters for the ToggleBookmark operation.
type ToggleInput struct {
	Key string
	ID  string
}

// ToggleOutput contains the result of the ToggleBookmark operation.
type ToggleOutput struct {
	Key        string `json:"key"`
	ID         string `json:"id"`
	Bookmarked bool   `json:"bookmarked"`
	Total      int    `json:"total"`
}

// ToggleBookmark flips the bookmark for one entry and persists it before
// returning. A key that is bookmarked but no longer in the catalog can still
// be toggled off.
func ToggleBookmark(ctx context.Context, cat *entry.Catalog, bm *bookmark.Manager, input ToggleInput) (*ToggleOutput, error) {
	addr, err := ValidateAddress(input.Key, input.ID)
	if err != nil {
		return nil, err
	}

	var key string
	e, err := resolve(cat, addr)
	switch {
	case err == nil:
		key = e.Key()
	case !addr.ByID && bm.Has(addr.Key):
		key = addr.Key
	default:
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("bookmark toggle")
	}
	on, err := bm.Toggle(ctx, key)
	if err != nil {
		return nil, err
	}

	return &ToggleOutput{
		Key:        key,
		ID:         entry.KeyID(key),
		Bookmarked: on,
		Total:      bm.Len(),
	}, nil
}

// ListBookmarksOutput contains the result of the ListBookmarks operation.
type ListBookmarksOutput struct {
	Items []EntryItem `json:"items"`
	// Dangling holds bookmarked keys with no entry in the catalog.
	Dangling []string `json:"dangling"`
	Total    int      `json:"total"`
}

// ListBookmarks returns bookmarked entries sorted by name, plus dangling keys.
func ListBookmarks(cat *entry.Catalog, bm *bookmark.Manager) *ListBookmarksOutput {
	snap := bm.Snapshot()
	results := search.Run(cat, snap, search.CategoryBookmarks, "")

	dangling := []string{}
	for _, k := range snap.Keys() {
		if _, ok := cat.ByKey(k); !ok {
			dangling = append(dangling, k)
		}
	}

	return &ListBookmarksOutput{
		Items:    newEntryItems(results, snap),
		Dangling: dangling,
		Total:    snap.Len(),
	}
}

// StatsOutput contains per-category counts.
type StatsOutput struct {
	All        int      `json:"all"`
	Bestiary   int      `json:"bestiary"`
	Spell      int      `json:"spell"`
	Item       int      `json:"item"`
	Bookmarks  int      `json:"bookmarks"`
	Dangling   int      `json:"dangling"`
	Duplicates []string `json:"duplicate_keys,omitempty"`
	Nameless   int      `json:"nameless"`
}

// Stats counts entries per category.
func Stats(cat *entry.Catalog, bm *bookmark.Manager) *StatsOutput {
	list := ListBookmarks(cat, bm)
	return &StatsOutput{
		All:        cat.Len(),
		Bestiary:   cat.Count(entry.VariantBestiary),
		Spell:      cat.Count(entry.VariantSpell),
		Item:       cat.Count(entry.VariantItem),
		Bookmarks:  len(list.Items),
		Dangling:   len(list.Dangling),
		Duplicates: cat.Duplicates(),
		Nameless:   cat.Nameless(),
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
