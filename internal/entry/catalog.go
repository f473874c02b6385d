package entry

// Catalog is the immutable concatenation of the bestiary, spell and item
// collections, in that order. Nothing is added, removed or mutated after
// NewCatalog returns.
type Catalog struct {
	entries    []Entry
	byKey      map[string]int
	byID       map[string]int
	duplicates []string
	nameless   int
}

// NewCatalog tags every record with its variant and concatenates the three
// collections. Records are not validated; a record without a name is kept
// and simply sorts as the empty string.
func NewCatalog(bestiary []CreatureRecord, spells []SpellRecord, items []ItemRecord) *Catalog {
	c := &Catalog{
		entries: make([]Entry, 0, len(bestiary)+len(spells)+len(items)),
	}
	for _, r := range bestiary {
		c.entries = append(c.entries, FromCreature(r))
	}
	for _, r := range spells {
		c.entries = append(c.entries, FromSpell(r))
	}
	for _, r := range items {
		c.entries = append(c.entries, FromItem(r))
	}
	c.index()
	return c
}

// FromEntries builds a catalog from already-tagged entries, keeping their order.
func FromEntries(entries []Entry) *Catalog {
	c := &Catalog{entries: append([]Entry(nil), entries...)}
	c.index()
	return c
}

func (c *Catalog) index() {
	c.byKey = make(map[string]int, len(c.entries))
	c.byID = make(map[string]int, len(c.entries))
	for i, e := range c.entries {
		if e.Name == "" {
			c.nameless++
		}
		key := IdentityKey(e)
		if _, dup := c.byKey[key]; dup {
			// First occurrence stays addressable.
			c.duplicates = append(c.duplicates, key)
			continue
		}
		c.byKey[key] = i
		c.byID[KeyID(key)] = i
	}
}

// Entries returns a copy of the catalog in concatenation order.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Each calls fn for every entry in concatenation order without copying the slice.
func (c *Catalog) Each(fn func(Entry)) {
	for _, e := range c.entries {
		fn(e)
	}
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Count returns the number of entries of the given variant.
func (c *Catalog) Count(v Variant) int {
	n := 0
	for _, e := range c.entries {
		if e.Variant == v {
			n++
		}
	}
	return n
}

// ByKey looks up an entry by identity key.
func (c *Catalog) ByKey(key string) (Entry, bool) {
	i, ok := c.byKey[key]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// ByID looks up an entry by its hashed ID.
func (c *Catalog) ByID(id string) (Entry, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Duplicates returns identity keys that occur more than once.
func (c *Catalog) Duplicates() []string {
	return append([]string(nil), c.duplicates...)
}

// Nameless returns the number of entries with an empty name.
func (c *Catalog) Nameless() int { return c.nameless }
