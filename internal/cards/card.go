package cards

import (
	"context"
	"strings"
)

// Card represents the immutable facts about a Magic card that the
// recommendation engine consumes. Instances are read-only snapshots owned by
// the card store; the engine never mutates them.
type Card struct {
	// Name uniquely identifies the card. Comparison is case-insensitive
	// but the original casing is preserved for display.
	Name string `json:"name"`

	// Mana information
	ManaCost  string  `json:"mana_cost"`
	ManaValue float64 `json:"mana_value"` // Converted mana cost

	// Type information
	TypeLine   string   `json:"type_line"`
	Types      []string `json:"types"`
	Subtypes   []string `json:"subtypes"`
	Supertypes []string `json:"supertypes"`

	// Rules text (nil for vanilla creatures, basic lands, etc.)
	RulesText *string `json:"rules_text,omitempty"`

	// Declared keyword abilities (Flying, Trample, ...)
	Keywords []string `json:"keywords"`

	// Colors is a subset of {W, U, B, R, G}
	Colors []string `json:"colors"`

	// Power/Toughness (for creatures)
	Power     *string `json:"power,omitempty"`
	Toughness *string `json:"toughness,omitempty"`
}

// Store provides read-only access to the card corpus.
// Name lookup is case-insensitive.
type Store interface {
	// AllCards returns every card in the corpus.
	AllCards(ctx context.Context) ([]*Card, error)

	// GetCard returns the card with the given name, or nil if unknown.
	GetCard(ctx context.Context, name string) (*Card, error)
}

// mainTypes are the card types recognized when parsing a type line.
var mainTypes = []string{"Creature", "Artifact", "Enchantment", "Instant", "Sorcery", "Land", "Planeswalker", "Battle", "Kindred"}

// supertypes are the supertypes recognized when parsing a type line.
var supertypes = []string{"Legendary", "Basic", "Snow", "World"}

// ParseTypeLine splits a type line into supertypes, types, and subtypes.
// For example "Legendary Creature — Elf Warrior" yields
// (["Legendary"], ["Creature"], ["Elf", "Warrior"]).
func ParseTypeLine(typeLine string) (supers, types, subs []string) {
	if typeLine == "" {
		return nil, nil, nil
	}

	// Split on the em dash separating types from subtypes
	parts := strings.Split(typeLine, "—")
	if len(parts) < 2 {
		parts = strings.Split(typeLine, " - ") // Tolerate plain dashes
	}

	left := strings.Fields(strings.TrimSpace(parts[0]))
	for _, word := range left {
		switch {
		case containsFold(supertypes, word):
			supers = append(supers, word)
		case containsFold(mainTypes, word):
			types = append(types, word)
		}
	}

	if len(parts) >= 2 {
		subs = strings.Fields(strings.TrimSpace(parts[1]))
	}

	return supers, types, subs
}

// Normalize fills the Types/Subtypes/Supertypes fields from the TypeLine
// when they were not provided by the corpus loader.
func (c *Card) Normalize() {
	if len(c.Types) == 0 && len(c.Subtypes) == 0 && len(c.Supertypes) == 0 {
		c.Supertypes, c.Types, c.Subtypes = ParseTypeLine(c.TypeLine)
	}
}

// Text returns the rules text or the empty string when absent.
func (c *Card) Text() string {
	if c.RulesText == nil {
		return ""
	}
	return *c.RulesText
}

// HasType reports whether the card has the given card type (case-insensitive).
func (c *Card) HasType(cardType string) bool {
	if containsFold(c.Types, cardType) {
		return true
	}
	// Fall back to the raw type line for corpora without parsed types.
	return strings.Contains(strings.ToLower(c.TypeLine), strings.ToLower(cardType))
}

// IsCreature reports whether the card is a creature.
func (c *Card) IsCreature() bool {
	return c.HasType("Creature")
}

// IsLand reports whether the card is a land.
func (c *Card) IsLand() bool {
	return c.HasType("Land")
}

// IsBasicLand reports whether the card is a basic land.
func (c *Card) IsBasicLand() bool {
	return c.IsLand() && containsFold(c.Supertypes, "Basic")
}

// ColorNames expands single-letter color codes to full color names.
func ColorNames(colors []string) []string {
	names := map[string]string{
		"W": "white",
		"U": "blue",
		"B": "black",
		"R": "red",
		"G": "green",
	}
	expanded := make([]string, 0, len(colors))
	for _, color := range colors {
		if name, ok := names[strings.ToUpper(color)]; ok {
			expanded = append(expanded, name)
		}
	}
	return expanded
}

// containsFold reports whether list contains s, case-insensitively.
func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
