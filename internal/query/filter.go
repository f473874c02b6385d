package query

import (
	"slices"
	"strings"

	"github.com/hpungsan/tome/internal/entry"
)

// Recognized filter keys.
const (
	KeyTier      = "tier"
	KeyLevel     = "level"
	KeyLv        = "lv"
	KeyClass     = "class"
	KeyType      = "type"
	KeyAlignment = "alignment"
	KeySource    = "source"
)

type predicate func(e entry.Entry, value string) bool

var predicates = map[string]predicate{
	KeyTier:      matchTier,
	KeyLevel:     matchLevel,
	KeyLv:        matchLevel,
	KeyClass:     matchClass,
	KeyType:      matchType,
	KeyAlignment: matchAlignment,
	KeySource:    matchSource,
}

// KnownKeys returns the recognized filter keys, sorted.
func KnownKeys() []string {
	keys := make([]string, 0, len(predicates))
	for k := range predicates {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// IsRecognized reports whether key has a filter rule.
func IsRecognized(key string) bool {
	_, ok := predicates[key]
	return ok
}

// HasRecognized reports whether any key in filters has a filter rule.
func HasRecognized(filters map[string]string) bool {
	for k := range filters {
		if IsRecognized(k) {
			return true
		}
	}
	return false
}

// Matches reports whether e satisfies every recognized filter. Unrecognized
// keys are ignored, so a filter set with no recognized keys matches everything.
func Matches(e entry.Entry, filters map[string]string) bool {
	for k, v := range filters {
		p, ok := predicates[k]
		if !ok {
			continue
		}
		if !p(e, v) {
			return false
		}
	}
	return true
}

// tier and level compare the stringified value exactly; an absent value
// never matches.
func matchTier(e entry.Entry, value string) bool {
	return e.Spell != nil && e.Spell.Tier.Present() && e.Spell.Tier.String() == value
}

func matchLevel(e entry.Entry, value string) bool {
	return e.Creature != nil && e.Creature.Level.Present() && e.Creature.Level.String() == value
}

func matchClass(e entry.Entry, value string) bool {
	if e.Spell == nil {
		return false
	}
	return slices.ContainsFunc(e.Spell.Classes, func(c string) bool {
		return strings.EqualFold(c, value)
	})
}

func matchType(e entry.Entry, value string) bool {
	return e.Item != nil && entry.ContainsCI(e.Item.ItemType, value)
}

func matchAlignment(e entry.Entry, value string) bool {
	return e.Creature != nil && entry.ContainsCI(e.Creature.Alignment, value)
}

func matchSource(e entry.Entry, value string) bool {
	return e.Source != "" && entry.ContainsCI(e.Source, value)
}
