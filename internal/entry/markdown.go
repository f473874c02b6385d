package entry

import (
	"fmt"
	"strings"
)

// Markdown renders the detail view of an entry. Fields the record does not
// carry render as Placeholder; empty narrative sections are omitted.
func Markdown(e Entry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", Display(e.Name))
	b.WriteString("*" + subtitle(e) + "*\n\n")

	if strings.TrimSpace(e.Description) != "" {
		b.WriteString(strings.TrimSpace(e.Description) + "\n\n")
	}

	switch {
	case e.Creature != nil:
		writeCreature(&b, e.Creature)
	case e.Spell != nil:
		writeSpell(&b, e.Spell)
	case e.Item != nil:
		writeItem(&b, e.Item)
	}

	fmt.Fprintf(&b, "Source: %s\n", Display(e.Source))
	return b.String()
}

func subtitle(e Entry) string {
	parts := []string{e.Variant.Label()}
	switch {
	case e.Creature != nil:
		parts = append(parts, "Level "+e.Creature.Level.Or(Placeholder), Display(e.Creature.Alignment))
	case e.Spell != nil:
		parts = append(parts, "Tier "+e.Spell.Tier.Or(Placeholder))
		if len(e.Spell.Classes) > 0 {
			parts = append(parts, strings.Join(e.Spell.Classes, ", "))
		}
	case e.Item != nil:
		parts = append(parts, Display(e.Item.ItemType))
	}
	return strings.Join(parts, " · ")
}

func writeCreature(b *strings.Builder, c *Creature) {
	ac := c.AC.Or(Placeholder)
	if c.ArmorType != "" {
		ac += " (" + c.ArmorType + ")"
	}
	b.WriteString("| AC | HP | ATK | MV |\n|---|---|---|---|\n")
	fmt.Fprintf(b, "| %s | %s | %s | %s |\n\n", ac, c.HP.Or(Placeholder), Display(c.Attack), Display(c.Movement))

	if c.Stats != nil {
		s := c.Stats
		b.WriteString("| STR | DEX | CON | INT | WIS | CHA |\n|---|---|---|---|---|---|\n")
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s |\n\n",
			s.Str.Or(Placeholder), s.Dex.Or(Placeholder), s.Con.Or(Placeholder),
			s.Int.Or(Placeholder), s.Wis.Or(Placeholder), s.Cha.Or(Placeholder))
	}

	if len(c.Actions) > 0 {
		b.WriteString("## Actions\n\n")
		for _, a := range c.Actions {
			fmt.Fprintf(b, "- **%s.** %s\n", Display(a.Name), strings.TrimSpace(a.Description))
		}
		b.WriteString("\n")
	}
}

func writeSpell(b *strings.Builder, s *Spell) {
	b.WriteString("| DC | Duration | Range |\n|---|---|---|\n")
	fmt.Fprintf(b, "| %s | %s | %s |\n\n", s.DC.Or(Placeholder), Display(s.Duration), Display(s.Range))
}

func writeItem(b *strings.Builder, it *Item) {
	sections := []struct{ title, body string }{
		{"Bonus", it.Bonus},
		{"Benefit", it.Benefit},
		{"Personality", it.Personality},
		{"Curse", it.Curse},
	}
	for _, s := range sections {
		if strings.TrimSpace(s.body) == "" {
			continue
		}
		fmt.Fprintf(b, "## %s\n\n%s\n\n", s.title, strings.TrimSpace(s.body))
	}
}
