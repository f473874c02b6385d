package entry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

func TestIdentityKey(t *testing.T) {
	e := FromSpell(SpellRecord{Common: Common{Name: "Burning Hands"}})
	if got := IdentityKey(e); got != "spell:Burning Hands" {
		t.Errorf("IdentityKey() = %q, want %q", got, "spell:Burning Hands")
	}
	if e.Key() != IdentityKey(e) {
		t.Error("Key() should equal IdentityKey()")
	}
}

func TestID_StableAndDistinct(t *testing.T) {
	a := FromCreature(CreatureRecord{Common: Common{Name: "Wolf"}})
	b := FromSpell(SpellRecord{Common: Common{Name: "Wolf"}})

	if a.ID() != a.ID() {
		t.Error("ID() should be deterministic")
	}
	if len(a.ID()) != 16 {
		t.Errorf("len(ID()) = %d, want 16", len(a.ID()))
	}
	if a.ID() == b.ID() {
		t.Error("entries of different variants with the same name should have different IDs")
	}
	if KeyID(a.Key()) != a.ID() {
		t.Error("KeyID(Key()) should equal ID()")
	}
}

func TestFromRecords_TagVariant(t *testing.T) {
	c := FromCreature(CreatureRecord{Common: Common{Name: "Goblin"}, Creature: Creature{Level: Num(1)}})
	if c.Variant != VariantBestiary || c.Creature == nil || c.Spell != nil || c.Item != nil {
		t.Errorf("FromCreature tagged %+v", c)
	}
	s := FromSpell(SpellRecord{Common: Common{Name: "Light"}})
	if s.Variant != VariantSpell || s.Spell == nil {
		t.Errorf("FromSpell tagged %+v", s)
	}
	i := FromItem(ItemRecord{Common: Common{Name: "Rope"}})
	if i.Variant != VariantItem || i.Item == nil {
		t.Errorf("FromItem tagged %+v", i)
	}
}

func TestParseVariant(t *testing.T) {
	if v, ok := ParseVariant(" Spell "); !ok || v != VariantSpell {
		t.Errorf("ParseVariant(Spell) = %q, %v", v, ok)
	}
	if _, ok := ParseVariant("all"); ok {
		t.Error("ParseVariant(all) should fail")
	}
}

func TestNewCatalog_ConcatenationOrder(t *testing.T) {
	cat := NewCatalog(
		[]CreatureRecord{{Common: Common{Name: "Zombie"}}},
		[]SpellRecord{{Common: Common{Name: "Alarm"}}, {Common: Common{Name: "Bless"}}},
		[]ItemRecord{{Common: Common{Name: "Amulet"}}},
	)

	entries := cat.Entries()
	want := []string{"bestiary:Zombie", "spell:Alarm", "spell:Bless", "item:Amulet"}
	if len(entries) != len(want) {
		t.Fatalf("len(Entries) = %d, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if e.Key() != want[i] {
			t.Errorf("Entries[%d] = %q, want %q", i, e.Key(), want[i])
		}
	}
	if cat.Count(VariantSpell) != 2 || cat.Len() != 4 {
		t.Errorf("Count(spell) = %d, Len = %d", cat.Count(VariantSpell), cat.Len())
	}
}

func TestCatalog_EntriesIsACopy(t *testing.T) {
	cat := NewCatalog(nil, []SpellRecord{{Common: Common{Name: "Light"}}}, nil)
	entries := cat.Entries()
	entries[0].Name = "Darkness"

	if e, _ := cat.ByKey("spell:Light"); e.Name != "Light" {
		t.Error("mutating Entries() result must not affect the catalog")
	}
}

func TestCatalog_Lookups(t *testing.T) {
	cat := NewCatalog(nil, []SpellRecord{{Common: Common{Name: "Light"}}}, nil)

	e, ok := cat.ByKey("spell:Light")
	if !ok || e.Name != "Light" {
		t.Fatalf("ByKey = %+v, %v", e, ok)
	}
	byID, ok := cat.ByID(e.ID())
	if !ok || byID.Key() != e.Key() {
		t.Fatalf("ByID = %+v, %v", byID, ok)
	}
	if _, ok := cat.ByKey("spell:Darkness"); ok {
		t.Error("ByKey should miss unknown keys")
	}
}

func TestCatalog_DuplicatesAndNameless(t *testing.T) {
	cat := NewCatalog(nil,
		[]SpellRecord{
			{Common: Common{Name: "Light", Source: "first"}},
			{Common: Common{Name: "Light", Source: "second"}},
			{Common: Common{Name: ""}},
		}, nil)

	if cat.Len() != 3 {
		t.Fatalf("Len = %d, want 3 (nothing dropped)", cat.Len())
	}
	if d := cat.Duplicates(); len(d) != 1 || d[0] != "spell:Light" {
		t.Errorf("Duplicates = %v", d)
	}
	if e, _ := cat.ByKey("spell:Light"); e.Source != "first" {
		t.Errorf("ByKey should resolve to the first occurrence, got source %q", e.Source)
	}
	if cat.Nameless() != 1 {
		t.Errorf("Nameless = %d, want 1", cat.Nameless())
	}
}

func TestLoadBundled(t *testing.T) {
	cat, report, err := LoadBundled()
	if err != nil {
		t.Fatalf("LoadBundled() error = %v", err)
	}
	if cat.Len() == 0 {
		t.Fatal("bundled catalog is empty")
	}
	if report.Bestiary+report.Spells+report.Items != cat.Len() {
		t.Errorf("report counts %d+%d+%d != Len %d", report.Bestiary, report.Spells, report.Items, cat.Len())
	}
	if len(report.Dropped) != 0 {
		t.Errorf("bundled data dropped fields: %v", report.Dropped)
	}
	if len(report.Duplicates) != 0 {
		t.Errorf("bundled data has duplicate keys: %v", report.Duplicates)
	}
	if _, ok := cat.ByKey("spell:Burning Hands"); !ok {
		t.Error("bundled spells should include Burning Hands")
	}
}

func TestLoadFS_MixedFormats(t *testing.T) {
	fsys := fstest.MapFS{
		"bestiary.yaml": {Data: []byte("- name: Owlbear\n  level: 5\n  alignment: N\n  actions:\n    - name: Hug\n      description: Grab and squeeze.\n")},
		"spells.json":   {Data: []byte(`[{"name":"Light","tier":1,"classes":["Priest"]}, {"name":"Bad","tier":{"x":1}}]`)},
		"items.yml":     {Data: []byte("- name: Rope\n  itemType: Gear\n")},
	}

	cat, report, err := LoadFS(fsys, ".", "test")
	if err != nil {
		t.Fatalf("LoadFS() error = %v", err)
	}

	owlbear, ok := cat.ByKey("bestiary:Owlbear")
	if !ok {
		t.Fatal("Owlbear not loaded from YAML")
	}
	if owlbear.Creature.Level.String() != "5" {
		t.Errorf("Owlbear level = %q, want 5", owlbear.Creature.Level.String())
	}
	if len(owlbear.Creature.Actions) != 1 || owlbear.Creature.Actions[0].Name != "Hug" {
		t.Errorf("Owlbear actions = %+v", owlbear.Creature.Actions)
	}

	if report.Spells != 2 || len(report.Dropped) != 1 {
		t.Fatalf("Spells = %d, Dropped = %v; want 2 spells and 1 dropped field", report.Spells, report.Dropped)
	}
	if d := report.Dropped[0]; d.Collection != CollectionSpells || d.Index != 1 || d.Field != "tier" {
		t.Errorf("Dropped = %+v", d)
	}
	bad, ok := cat.ByKey("spell:Bad")
	if !ok {
		t.Fatal("Bad should be kept with its tier absent")
	}
	if bad.Spell.Tier.Present() {
		t.Errorf("Bad tier = %q, want absent", bad.Spell.Tier.String())
	}

	if rope, ok := cat.ByKey("item:Rope"); !ok || rope.Item.ItemType != "Gear" {
		t.Errorf("Rope = %+v, %v", rope, ok)
	}
}

func TestLoadFS_MalformedFieldsKeepRecord(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{
			name: "json",
			fsys: fstest.MapFS{
				"bestiary.json": {Data: []byte(`[{"name":"Goblin","level":{"min":1},"hp":5}, {"name":"Orc","level":2}]`)},
				"spells.json":   {Data: []byte(`[{"name":"Light","tier":1,"classes":"Priest"}]`)},
				"items.json":    {Data: []byte(`[{"name":"Rope","itemType":["Gear"],"benefit":"Climb"}, 7]`)},
			},
		},
		{
			name: "yaml",
			fsys: fstest.MapFS{
				"bestiary.yaml": {Data: []byte("- name: Goblin\n  level: {min: 1}\n  hp: 5\n- name: Orc\n  level: 2\n")},
				"spells.yaml":   {Data: []byte("- name: Light\n  tier: 1\n  classes: Priest\n")},
				"items.yaml":    {Data: []byte("- name: Rope\n  itemType: [Gear]\n  benefit: Climb\n- 7\n")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, report, err := LoadFS(tt.fsys, ".", "test")
			if err != nil {
				t.Fatalf("LoadFS() error = %v", err)
			}
			if cat.Len() != 5 {
				t.Fatalf("Len() = %d, want 5 (every record kept)", cat.Len())
			}

			goblin, ok := cat.ByKey("bestiary:Goblin")
			if !ok {
				t.Fatal("Goblin not loaded")
			}
			if goblin.Creature.Level.Present() {
				t.Errorf("Goblin level = %q, want absent", goblin.Creature.Level.String())
			}
			if goblin.Creature.HP.String() != "5" {
				t.Errorf("Goblin hp = %q, want 5", goblin.Creature.HP.String())
			}

			if orc, ok := cat.ByKey("bestiary:Orc"); !ok || orc.Creature.Level.String() != "2" {
				t.Errorf("Orc = %+v, %v", orc, ok)
			}

			light, ok := cat.ByKey("spell:Light")
			if !ok {
				t.Fatal("Light not loaded")
			}
			if light.Spell.Tier.String() != "1" {
				t.Errorf("Light tier = %q, want 1", light.Spell.Tier.String())
			}
			if len(light.Spell.Classes) != 1 || light.Spell.Classes[0] != "Priest" {
				t.Errorf("Light classes = %v, want [Priest]", light.Spell.Classes)
			}

			rope, ok := cat.ByKey("item:Rope")
			if !ok {
				t.Fatal("Rope not loaded")
			}
			if rope.Item.ItemType != "" {
				t.Errorf("Rope itemType = %q, want empty", rope.Item.ItemType)
			}
			if rope.Item.Benefit != "Climb" {
				t.Errorf("Rope benefit = %q, want Climb", rope.Item.Benefit)
			}
			if cat.Nameless() != 1 {
				t.Errorf("Nameless() = %d, want 1 for the non-object item", cat.Nameless())
			}

			dropped := map[string]bool{}
			for _, d := range report.Dropped {
				dropped[d.Collection+"/"+d.Field] = true
			}
			for _, want := range []string{"bestiary/level", "items/itemType", "items/"} {
				if !dropped[want] {
					t.Errorf("Dropped = %+v, missing %s", report.Dropped, want)
				}
			}
			if len(report.Dropped) != 3 {
				t.Errorf("len(Dropped) = %d, want 3", len(report.Dropped))
			}
		})
	}
}

func TestLoadFS_MissingCollection(t *testing.T) {
	fsys := fstest.MapFS{
		"bestiary.json": {Data: []byte(`[]`)},
		"spells.json":   {Data: []byte(`[]`)},
	}
	_, _, err := LoadFS(fsys, ".", "test")
	if err == nil || !strings.Contains(err.Error(), "items") {
		t.Fatalf("LoadFS() error = %v, want missing items collection", err)
	}
}

func TestLoadFS_CollectionNotAList(t *testing.T) {
	fsys := fstest.MapFS{
		"bestiary.json": {Data: []byte(`{"name":"Wolf"}`)},
		"spells.json":   {Data: []byte(`[]`)},
		"items.json":    {Data: []byte(`[]`)},
	}
	if _, _, err := LoadFS(fsys, ".", "test"); err == nil {
		t.Fatal("LoadFS() should reject a collection that is not an array")
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"bestiary.json": `[{"name":"Wolf","level":2}]`,
		"spells.json":   `[]`,
		"items.json":    `[{"name":"Torch"}]`,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}

	cat, report, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if cat.Len() != 2 || report.Origin != dir {
		t.Errorf("Len = %d, Origin = %q", cat.Len(), report.Origin)
	}

	if _, _, err := LoadDir(filepath.Join(dir, "missing")); err == nil {
		t.Error("LoadDir() should fail for a missing directory")
	}
}
