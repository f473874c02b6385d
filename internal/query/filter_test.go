package query

import (
	"maps"
	"testing"

	"github.com/hpungsan/tome/internal/entry"
)

var (
	burningHands = entry.FromSpell(entry.SpellRecord{
		Common: entry.Common{Name: "Burning Hands", Description: "a cone of fire", Source: "Core Rules"},
		Spell:  entry.Spell{Tier: entry.Num(1), Classes: []string{"Wizard"}},
	})
	direWolf = entry.FromCreature(entry.CreatureRecord{
		Common:   entry.Common{Name: "Dire Wolf", Source: "Core Rules"},
		Creature: entry.Creature{Level: entry.Num(4), Alignment: "N"},
	})
	ochreJelly = entry.FromCreature(entry.CreatureRecord{
		Common:   entry.Common{Name: "Ochre Jelly"},
		Creature: entry.Creature{Level: entry.Str("3"), Alignment: "N"},
	})
	shield = entry.FromItem(entry.ItemRecord{
		Common: entry.Common{Name: "Shield of the Warden", Source: "Cursed Scroll 2"},
		Item:   entry.Item{ItemType: "Armor, Shield"},
	})
	untiered = entry.FromSpell(entry.SpellRecord{Common: entry.Common{Name: "Mystery"}})
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name    string
		e       entry.Entry
		filters map[string]string
		want    bool
	}{
		{"no filters", burningHands, map[string]string{}, true},
		{"tier match", burningHands, map[string]string{"tier": "1"}, true},
		{"tier mismatch", burningHands, map[string]string{"tier": "2"}, false},
		{"tier on creature", direWolf, map[string]string{"tier": "1"}, false},
		{"tier missing", untiered, map[string]string{"tier": "1"}, false},
		{"level match", direWolf, map[string]string{"level": "4"}, true},
		{"lv alias", direWolf, map[string]string{"lv": "4"}, true},
		{"level from string", ochreJelly, map[string]string{"lv": "3"}, true},
		{"level is exact", direWolf, map[string]string{"lv": "40"}, false},
		{"level on spell", burningHands, map[string]string{"level": "1"}, false},
		{"class ignores case", burningHands, map[string]string{"class": "wizard"}, true},
		{"class must be equal", burningHands, map[string]string{"class": "wiz"}, false},
		{"class on item", shield, map[string]string{"class": "wizard"}, false},
		{"type contains", shield, map[string]string{"type": "shield"}, true},
		{"type on spell", burningHands, map[string]string{"type": "shield"}, false},
		{"alignment contains", direWolf, map[string]string{"alignment": "n"}, true},
		{"alignment on item", shield, map[string]string{"alignment": "n"}, false},
		{"source any variant", shield, map[string]string{"source": "cursed"}, true},
		{"source missing", ochreJelly, map[string]string{"source": "core"}, false},
		{"unknown key ignored", burningHands, map[string]string{"foo": "bar"}, true},
		{"all keys must hold", burningHands, map[string]string{"tier": "1", "class": "priest"}, false},
		{"unknown does not rescue", burningHands, map[string]string{"tier": "9", "foo": "bar"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.e, tt.filters); got != tt.want {
				t.Errorf("Matches(%s, %v) = %v, want %v", tt.e.Key(), tt.filters, got, tt.want)
			}
		})
	}
}

func TestMatches_ConjunctionOfDisjointSets(t *testing.T) {
	entries := []entry.Entry{burningHands, direWolf, ochreJelly, shield, untiered}
	sets := []map[string]string{
		{},
		{"tier": "1"},
		{"class": "wizard"},
		{"source": "core"},
		{"lv": "4"},
		{"type": "armor"},
		{"foo": "bar"},
	}

	for _, e := range entries {
		for i, f1 := range sets {
			for j, f2 := range sets {
				if i == j {
					continue
				}
				union := maps.Clone(f1)
				maps.Copy(union, f2)
				if len(union) != len(f1)+len(f2) {
					continue
				}
				if Matches(e, union) != (Matches(e, f1) && Matches(e, f2)) {
					t.Errorf("%s: Matches(%v) != Matches(%v) && Matches(%v)", e.Key(), union, f1, f2)
				}
			}
		}
	}
}

func TestHasRecognized(t *testing.T) {
	if HasRecognized(map[string]string{}) {
		t.Error("empty filters should not be recognized")
	}
	if HasRecognized(map[string]string{"foo": "bar"}) {
		t.Error("unknown key should not be recognized")
	}
	if !HasRecognized(map[string]string{"foo": "bar", "lv": "1"}) {
		t.Error("lv should be recognized")
	}
}

func TestKnownKeys(t *testing.T) {
	keys := KnownKeys()
	want := []string{"alignment", "class", "level", "lv", "source", "tier", "type"}
	if len(keys) != len(want) {
		t.Fatalf("KnownKeys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("KnownKeys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}
