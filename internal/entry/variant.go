package entry

import "strings"

// Variant is the kind tag of an Entry.
type Variant string

const (
	VariantBestiary Variant = "bestiary"
	VariantSpell    Variant = "spell"
	VariantItem     Variant = "item"
)

// Variants lists every variant in catalog concatenation order.
var Variants = []Variant{VariantBestiary, VariantSpell, VariantItem}

// ParseVariant returns the Variant named by s (case-insensitive).
func ParseVariant(s string) (Variant, bool) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case VariantBestiary, VariantSpell, VariantItem:
		return v, true
	}
	return "", false
}

// Label returns the display label for the variant.
func (v Variant) Label() string {
	switch v {
	case VariantBestiary:
		return "Bestiary"
	case VariantSpell:
		return "Spell"
	case VariantItem:
		return "Item"
	}
	return string(v)
}
