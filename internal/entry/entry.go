package entry

import (
	"fmt"

	"github.com/zeebo/xxh3"
)

// Common holds the fields every variant carries.
type Common struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description"`
	Source      string `json:"source,omitempty" yaml:"source"`
}

// Stats is a creature's ability score block.
type Stats struct {
	Str Scalar `json:"str" yaml:"str"`
	Dex Scalar `json:"dex" yaml:"dex"`
	Con Scalar `json:"con" yaml:"con"`
	Int Scalar `json:"int" yaml:"int"`
	Wis Scalar `json:"wis" yaml:"wis"`
	Cha Scalar `json:"cha" yaml:"cha"`
}

// Action is one named creature action, kept in source order.
type Action struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description"`
}

// Creature holds the bestiary-only fields.
type Creature struct {
	Level     Scalar   `json:"level" yaml:"level"`
	Alignment string   `json:"alignment,omitempty" yaml:"alignment"`
	AC        Scalar   `json:"ac" yaml:"ac"`
	ArmorType string   `json:"armorType,omitempty" yaml:"armorType"`
	HP        Scalar   `json:"hp" yaml:"hp"`
	Attack    string   `json:"attack,omitempty" yaml:"attack"`
	Movement  string   `json:"movement,omitempty" yaml:"movement"`
	Stats     *Stats   `json:"stats,omitempty" yaml:"stats"`
	Actions   []Action `json:"actions,omitempty" yaml:"actions"`
}

// Spell holds the spell-only fields.
type Spell struct {
	Tier     Scalar   `json:"tier" yaml:"tier"`
	DC       Scalar   `json:"dc" yaml:"dc"`
	Duration string   `json:"duration,omitempty" yaml:"duration"`
	Range    string   `json:"range,omitempty" yaml:"range"`
	Classes  []string `json:"classes,omitempty" yaml:"classes"`
}

// Item holds the item-only fields.
type Item struct {
	ItemType    string `json:"itemType,omitempty" yaml:"itemType"`
	Bonus       string `json:"bonus,omitempty" yaml:"bonus"`
	Benefit     string `json:"benefit,omitempty" yaml:"benefit"`
	Personality string `json:"personality,omitempty" yaml:"personality"`
	Curse       string `json:"curse,omitempty" yaml:"curse"`
}

// CreatureRecord is one untagged record of the bestiary collection.
type CreatureRecord struct {
	Common   `yaml:",inline"`
	Creature `yaml:",inline"`
}

// SpellRecord is one untagged record of the spells collection.
type SpellRecord struct {
	Common `yaml:",inline"`
	Spell  `yaml:",inline"`
}

// ItemRecord is one untagged record of the items collection.
type ItemRecord struct {
	Common `yaml:",inline"`
	Item   `yaml:",inline"`
}

// Entry is one catalog record tagged with its variant. Exactly one of
// Creature, Spell or Item is set, matching Variant. Entries are never
// mutated after the catalog is built.
type Entry struct {
	Variant Variant `json:"variant"`
	Common
	Creature *Creature `json:"creature,omitempty"`
	Spell    *Spell    `json:"spell,omitempty"`
	Item     *Item     `json:"item,omitempty"`
}

// FromCreature tags a bestiary record.
func FromCreature(r CreatureRecord) Entry {
	c := r.Creature
	return Entry{Variant: VariantBestiary, Common: r.Common, Creature: &c}
}

// FromSpell tags a spell record.
func FromSpell(r SpellRecord) Entry {
	s := r.Spell
	return Entry{Variant: VariantSpell, Common: r.Common, Spell: &s}
}

// FromItem tags an item record.
func FromItem(r ItemRecord) Entry {
	it := r.Item
	return Entry{Variant: VariantItem, Common: r.Common, Item: &it}
}

// IdentityKey returns variant + ":" + name, the stable address used for bookmarks.
func IdentityKey(e Entry) string {
	return string(e.Variant) + ":" + e.Name
}

// Key is shorthand for IdentityKey(e).
func (e Entry) Key() string { return IdentityKey(e) }

// ID returns a 16 hex character xxh3 hash of the identity key, safe for URLs.
func (e Entry) ID() string { return KeyID(IdentityKey(e)) }

// KeyID hashes an identity key the same way Entry.ID does.
func KeyID(key string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(key))
}
