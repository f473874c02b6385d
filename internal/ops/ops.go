// Package ops implements the operations shared by the CLI, web UI and MCP
// server. Each operation takes an Input struct and returns an Output struct
// or a *errors.TomeError.
package ops

import (
	"strings"

	"github.com/hpungsan/tome/internal/bookmark"
	"github.com/hpungsan/tome/internal/entry"
	"github.com/hpungsan/tome/internal/errors"
)

// EntryItem is an entry as returned by operations, with its addresses and
// bookmark state.
type EntryItem struct {
	entry.Entry
	Key        string `json:"key"`
	ID         string `json:"id"`
	Bookmarked bool   `json:"bookmarked"`
}

func newEntryItem(e entry.Entry, bm bookmark.Set) EntryItem {
	key := e.Key()
	return EntryItem{
		Entry:      e,
		Key:        key,
		ID:         entry.KeyID(key),
		Bookmarked: bm.Has(key),
	}
}

func newEntryItems(entries []entry.Entry, bm bookmark.Set) []EntryItem {
	items := make([]EntryItem, len(entries))
	for i, e := range entries {
		items[i] = newEntryItem(e, bm)
	}
	return items
}

// Address identifies an entry by identity key or by ID.
type Address struct {
	ByID bool
	Key  string
	ID   string
}

// ValidateAddress requires exactly one of key and id.
func ValidateAddress(key, id string) (*Address, error) {
	key = strings.TrimSpace(key)
	id = strings.TrimSpace(id)

	if key != "" && id != "" {
		return nil, errors.NewAmbiguousAddressing()
	}
	if key == "" && id == "" {
		return nil, errors.NewInvalidRequest("must specify either key or id")
	}
	if id != "" {
		return &Address{ByID: true, ID: strings.ToLower(id)}, nil
	}
	return &Address{Key: key}, nil
}

// resolve looks the address up in cat.
func resolve(cat *entry.Catalog, addr *Address) (entry.Entry, error) {
	if addr.ByID {
		if e, ok := cat.ByID(addr.ID); ok {
			return e, nil
		}
		return entry.Entry{}, errors.NewNotFound(addr.ID)
	}
	if e, ok := cat.ByKey(addr.Key); ok {
		return e, nil
	}
	return entry.Entry{}, errors.NewNotFound(addr.Key)
}
