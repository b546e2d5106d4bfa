package deckstats

import (
	"testing"

	"github.com/ramonehamilton/deck-advisor/internal/cards"
)

func strPtr(s string) *string { return &s }

func creature(name string, manaValue float64, subtypes []string, keywords []string, text string) *cards.Card {
	c := &cards.Card{
		Name:      name,
		ManaValue: manaValue,
		TypeLine:  "Creature — " + joinSpace(subtypes),
		Types:     []string{"Creature"},
		Subtypes:  subtypes,
		Keywords:  keywords,
		Power:     strPtr("2"),
		Toughness: strPtr("2"),
	}
	if text != "" {
		c.RulesText = strPtr(text)
	}
	return c
}

func joinSpace(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}

func TestDiffQuantityZeroIsNoOp(t *testing.T) {
	d := NewDiffer(DifferConfig{})
	added := creature("Serra Angel", 5, []string{"Angel"}, []string{"Flying"}, "")

	impact := d.Diff([]Entry{{Card: added, Quantity: 1}}, added, 0)

	if impact.HasImpact() {
		t.Errorf("Diff(quantity=0).HasImpact() = true, want false")
	}
	if len(impact.StatChanges) != 0 {
		t.Errorf("Diff(quantity=0) StatChanges = %v, want empty", impact.StatChanges)
	}
}

func TestDiffEmptyDeckReportsEverythingAdded(t *testing.T) {
	d := NewDiffer(DifferConfig{})
	added := creature("Serra Angel", 5, []string{"Angel"}, []string{"Flying", "Vigilance"}, "")

	impact := d.Diff(nil, added, 1)

	if !impact.HasImpact() {
		t.Fatal("Diff() HasImpact() = false, want true")
	}
	wantKeywords := map[string]bool{"flying": true, "vigilance": true}
	if len(impact.NewKeywords) != 2 {
		t.Fatalf("NewKeywords = %v, want flying and vigilance", impact.NewKeywords)
	}
	for _, kw := range impact.NewKeywords {
		if !wantKeywords[kw] {
			t.Errorf("unexpected new keyword %q", kw)
		}
	}
	if impact.TribalBoost != nil {
		t.Errorf("TribalBoost = %v, want nil on an empty deck", *impact.TribalBoost)
	}
}

func TestDiffCombatContribution(t *testing.T) {
	d := NewDiffer(DifferConfig{})
	added := creature("Grizzly Bears", 2, []string{"Bear"}, nil, "")

	impact := d.Diff(nil, added, 3)

	if impact.PowerAdded != 6 || impact.ToughnessAdded != 6 {
		t.Errorf("combat contribution = %d/%d, want 6/6", impact.PowerAdded, impact.ToughnessAdded)
	}
}

func TestDiffNonNumericPowerContributesZero(t *testing.T) {
	d := NewDiffer(DifferConfig{})
	added := creature("Tarmogoyf", 2, []string{"Lhurgoyf"}, nil, "")
	added.Power = strPtr("*")
	added.Toughness = strPtr("1+*")

	impact := d.Diff(nil, added, 1)

	if impact.PowerAdded != 0 || impact.ToughnessAdded != 0 {
		t.Errorf("combat contribution = %d/%d, want 0/0", impact.PowerAdded, impact.ToughnessAdded)
	}
}

func TestDiffTribalBoost(t *testing.T) {
	d := NewDiffer(DifferConfig{})
	deck := []Entry{
		{Card: creature("Gravecrawler", 1, []string{"Zombie"}, nil, ""), Quantity: 1},
		{Card: creature("Diregraf Ghoul", 1, []string{"Zombie"}, nil, ""), Quantity: 1},
	}
	added := creature("Lord of the Accursed", 3, []string{"Zombie"}, nil, "")

	impact := d.Diff(deck, added, 1)

	if impact.TribalBoost == nil || *impact.TribalBoost != "Zombie" {
		t.Errorf("TribalBoost = %v, want Zombie", impact.TribalBoost)
	}
}

func TestDiffNoTribalBoostBelowTwo(t *testing.T) {
	d := NewDiffer(DifferConfig{})
	deck := []Entry{
		{Card: creature("Gravecrawler", 1, []string{"Zombie"}, nil, ""), Quantity: 1},
	}
	added := creature("Lord of the Accursed", 3, []string{"Zombie"}, nil, "")

	impact := d.Diff(deck, added, 1)

	if impact.TribalBoost != nil {
		t.Errorf("TribalBoost = %v, want nil when only one copy pre-exists", *impact.TribalBoost)
	}
}

func TestDiffCurveDirection(t *testing.T) {
	d := NewDiffer(DifferConfig{})

	highCurve := []Entry{
		{Card: creature("Big Thing", 6, []string{"Giant"}, nil, ""), Quantity: 4},
	}
	cheap := creature("Cheap Thing", 1, []string{"Goblin"}, nil, "")

	impact := d.Diff(highCurve, cheap, 4)

	var curveChange *StatChange
	for i := range impact.StatChanges {
		if impact.StatChanges[i].Name == "Average mana value" {
			curveChange = &impact.StatChanges[i]
		}
	}
	if curveChange == nil {
		t.Fatal("no Average mana value change emitted")
	}
	if curveChange.IsPositive == nil || !*curveChange.IsPositive {
		t.Error("lowering a high curve should be positive")
	}

	// A low-curve deck going lower is neutral, not positive.
	lowCurve := []Entry{
		{Card: creature("Small Thing", 2, []string{"Goblin"}, nil, ""), Quantity: 4},
	}
	impact = d.Diff(lowCurve, cheap, 4)
	for _, change := range impact.StatChanges {
		if change.Name == "Average mana value" && change.IsPositive != nil {
			t.Error("lowering a low curve should be neutral")
		}
	}
}

func TestDiffNewThemes(t *testing.T) {
	d := NewDiffer(DifferConfig{})
	deck := []Entry{
		{Card: creature("Grizzly Bears", 2, []string{"Bear"}, nil, ""), Quantity: 4},
	}
	added := creature("Soul Warden", 1, []string{"Human", "Cleric"}, nil,
		"Whenever another creature enters the battlefield, you gain 1 life.")

	impact := d.Diff(deck, added, 1)

	found := false
	for _, theme := range impact.NewThemes {
		if theme == "lifegain" {
			found = true
		}
	}
	if !found {
		t.Errorf("NewThemes = %v, want lifegain present", impact.NewThemes)
	}
}

func TestDiffMatchupsCapped(t *testing.T) {
	d := NewDiffer(DifferConfig{})
	// Text hitting several matchup-mapped themes at once.
	added := creature("Kitchen Sink", 3, []string{"Horror"}, nil,
		"When this creature enters the battlefield, you gain 3 life. Destroy target creature. Each opponent discards a card.")

	impact := d.Diff(nil, added, 1)

	if len(impact.MatchupsImproved) > 3 {
		t.Errorf("MatchupsImproved = %v, want at most 3", impact.MatchupsImproved)
	}
	if len(impact.MatchupsImproved) == 0 {
		t.Error("MatchupsImproved empty, want entries from the matchup table")
	}
}

func TestComputeFeaturesKeywordDensity(t *testing.T) {
	d := NewDiffer(DifferConfig{})
	deck := []Entry{
		{Card: creature("Serra Angel", 5, []string{"Angel"}, []string{"Flying", "Vigilance"}, ""), Quantity: 2},
		{Card: creature("Shivan Dragon", 6, []string{"Dragon"}, []string{"Flying"}, ""), Quantity: 1},
	}

	features := ComputeFeatures(deck, d.classifier)

	if features.KeywordCounts["flying"] != 3 {
		t.Errorf("KeywordCounts[flying] = %d, want 3", features.KeywordCounts["flying"])
	}
	if features.KeywordCounts["vigilance"] != 2 {
		t.Errorf("KeywordCounts[vigilance] = %d, want 2", features.KeywordCounts["vigilance"])
	}
	if features.TotalCards != 3 {
		t.Errorf("TotalCards = %d, want 3", features.TotalCards)
	}
}
