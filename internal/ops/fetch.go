package ops

import (
	"github.com/hpungsan/tome/internal/bookmark"
	"github.com/hpungsan/tome/internal/entry"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	Key string
	ID  string
}

// FetchOutput contains the result of the Fetch operation. The EntryItem
// fields are listed flat; goccy/go-json loses key, id and bookmarked when
// EntryItem is nested one level deeper.
type FetchOutput struct {
	entry.Entry
	Key        string `json:"key"`
	ID         string `json:"id"`
	Bookmarked bool   `json:"bookmarked"`
	Markdown   string `json:"markdown"`
}

// Fetch retrieves one entry by identity key or ID.
func Fetch(cat *entry.Catalog, bm *bookmark.Manager, input FetchInput) (*FetchOutput, error) {
	addr, err := ValidateAddress(input.Key, input.ID)
	if err != nil {
		return nil, err
	}
	e, err := resolve(cat, addr)
	if err != nil {
		return nil, err
	}

	item := newEntryItem(e, bm.Snapshot())
	return &FetchOutput{
		Entry:      item.Entry,
		Key:        item.Key,
		ID:         item.ID,
		Bookmarked: item.Bookmarked,
		Markdown:   entry.Markdown(e),
	}, nil
}
