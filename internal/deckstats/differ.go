package deckstats

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ramonehamilton/deck-advisor/internal/cards"
	"github.com/ramonehamilton/deck-advisor/internal/classify"
)

// Policy constants for the differ. Exposed so tests can pin exact behavior.
const (
	// DefaultHighCurveThreshold is the average mana value above which
	// lowering the curve counts as an improvement.
	DefaultHighCurveThreshold = 3.2

	// TribalMateriality is the copy count at which a creature subtype
	// becomes a deck theme.
	TribalMateriality = 3

	// Matchup caps keep the improvement list readable.
	maxMatchupsPerTheme = 2
	maxMatchupsTotal    = 3
)

// StatChange records one feature moving between deck states. IsPositive is
// nil when the direction has no known goodness policy.
type StatChange struct {
	Name       string
	Old        float64
	New        float64
	IsPositive *bool
}

// Impact describes the marginal effect of adding a card to a deck.
type Impact struct {
	CardName string
	Quantity int

	StatChanges []StatChange
	NewKeywords []string // Keywords whose deck count was exactly 0 before
	NewThemes   []string // Themes the added card introduces

	// TribalBoost names a subtype the addition pushes from below
	// TribalMateriality to at or above it. Nil when no pre-existing tribe
	// (count >= 2) is reinforced.
	TribalBoost *string

	// Combat contribution when the added card is a creature.
	PowerAdded     int
	ToughnessAdded int

	// Archetype matchups this addition helps against.
	MatchupsImproved []string
}

// HasImpact reports whether the addition changed anything.
func (i *Impact) HasImpact() bool {
	return len(i.StatChanges) > 0 ||
		len(i.NewKeywords) > 0 ||
		len(i.NewThemes) > 0 ||
		i.TribalBoost != nil ||
		i.PowerAdded != 0 || i.ToughnessAdded != 0 ||
		len(i.MatchupsImproved) > 0
}

// DefaultMatchups is the hand-authored theme -> countered-archetype table.
// It is product knowledge, shipped as data and overridable via DifferConfig;
// entries are not inferred beyond this list.
func DefaultMatchups() map[string][]string {
	return map[string][]string{
		"lifegain":   {"Aggro", "Burn"},
		"removal":    {"Aggro", "Midrange"},
		"discard":    {"Control", "Combo"},
		"counters":   {"Midrange"},
		"graveyard":  {"Control"},
		"evasion":    {"Board stalls"},
		"tokens":     {"Targeted removal"},
		"ramp":       {"Control"},
		"protection": {"Targeted removal", "Burn"},
	}
}

// DifferConfig configures a Differ. Zero values fall back to defaults.
type DifferConfig struct {
	Classifier         *classify.Classifier
	Matchups           map[string][]string
	HighCurveThreshold float64
}

// Differ computes before/after feature deltas for deck additions.
type Differ struct {
	classifier         *classify.Classifier
	matchups           map[string][]string
	highCurveThreshold float64
}

// NewDiffer creates a differ from config.
func NewDiffer(config DifferConfig) *Differ {
	if config.Classifier == nil {
		config.Classifier = classify.NewClassifier(nil)
	}
	if config.Matchups == nil {
		config.Matchups = DefaultMatchups()
	}
	if config.HighCurveThreshold == 0 {
		config.HighCurveThreshold = DefaultHighCurveThreshold
	}
	return &Differ{
		classifier:         config.Classifier,
		matchups:           config.Matchups,
		highCurveThreshold: config.HighCurveThreshold,
	}
}

// Diff reports the marginal effect of adding quantity copies of a card to
// the deck. Both deck states are aggregated fresh; nothing is mutated in
// place. A quantity of zero (or less) is a no-op whose Impact reports no
// changes.
func (d *Differ) Diff(before []Entry, added *cards.Card, quantity int) *Impact {
	impact := &Impact{
		CardName: added.Name,
		Quantity: quantity,
	}
	if quantity <= 0 {
		return impact
	}

	after := make([]Entry, 0, len(before)+1)
	after = append(after, before...)
	after = append(after, Entry{Card: added, Quantity: quantity})

	beforeFeatures := ComputeFeatures(before, d.classifier)
	afterFeatures := ComputeFeatures(after, d.classifier)

	impact.StatChanges = d.statChanges(beforeFeatures, afterFeatures)
	impact.NewKeywords = newKeys(beforeFeatures.KeywordCounts, afterFeatures.KeywordCounts)
	impact.NewThemes = d.newThemes(beforeFeatures, added)
	impact.TribalBoost = d.tribalBoost(beforeFeatures, added)
	impact.PowerAdded, impact.ToughnessAdded = combatContribution(added, quantity)
	impact.MatchupsImproved = d.matchupImprovements(added)

	return impact
}

// statChanges emits a StatChange for every tracked field that moved.
func (d *Differ) statChanges(before, after *Features) []StatChange {
	var changes []StatChange

	changes = append(changes, StatChange{
		Name:       "Total cards",
		Old:        float64(before.TotalCards),
		New:        float64(after.TotalCards),
		IsPositive: nil,
	})

	if before.AvgManaValue != after.AvgManaValue {
		changes = append(changes, StatChange{
			Name:       "Average mana value",
			Old:        before.AvgManaValue,
			New:        after.AvgManaValue,
			IsPositive: d.curveDirection(before.AvgManaValue, after.AvgManaValue),
		})
	}

	for _, cardType := range sortedKeys(unionKeys(before.TypeCounts, after.TypeCounts)) {
		oldCount := before.TypeCounts[cardType]
		newCount := after.TypeCounts[cardType]
		if oldCount == newCount {
			continue
		}
		changes = append(changes, StatChange{
			Name: fmt.Sprintf("%s count", cardType),
			Old:  float64(oldCount),
			New:  float64(newCount),
		})
	}

	return changes
}

// curveDirection applies the only known directionality policy: lowering the
// average mana value is good only when the deck's curve was already high.
// Going lower on an already-low curve is not flagged as an improvement.
func (d *Differ) curveDirection(oldAvg, newAvg float64) *bool {
	if newAvg < oldAvg && oldAvg > d.highCurveThreshold {
		return boolPtr(true)
	}
	return nil
}

// newThemes lists the added card's themes that were absent from the deck.
func (d *Differ) newThemes(before *Features, added *cards.Card) []string {
	var themes []string
	for theme := range d.classifier.Themes(added.Text()) {
		if !before.Themes.Contains(theme) {
			themes = append(themes, theme)
		}
	}
	sort.Strings(themes)
	return themes
}

// tribalBoost finds a subtype the addition pushes over the materiality
// threshold. The pre-existing count must be at least 2: the new card has to
// reinforce a tribe, not originate one.
func (d *Differ) tribalBoost(before *Features, added *cards.Card) *string {
	var boosted []string
	for _, subtype := range added.Subtypes {
		count := before.SubtypeCounts[subtype]
		if count >= 2 && count < TribalMateriality {
			boosted = append(boosted, subtype)
		}
	}
	if len(boosted) == 0 {
		return nil
	}
	sort.Strings(boosted)
	return &boosted[0]
}

// matchupImprovements maps the added card's themes through the matchup
// table, capped per theme and in total.
func (d *Differ) matchupImprovements(added *cards.Card) []string {
	themes := d.classifier.Themes(added.Text()).Sorted()

	seen := make(map[string]bool)
	var matchups []string
	for _, theme := range themes {
		entries := d.matchups[theme]
		if len(entries) > maxMatchupsPerTheme {
			entries = entries[:maxMatchupsPerTheme]
		}
		for _, matchup := range entries {
			if seen[matchup] {
				continue
			}
			seen[matchup] = true
			matchups = append(matchups, matchup)
			if len(matchups) >= maxMatchupsTotal {
				return matchups
			}
		}
	}
	return matchups
}

// combatContribution returns power/toughness times quantity for creatures.
// Non-numeric values ("*", "X") contribute zero.
func combatContribution(added *cards.Card, quantity int) (power, toughness int) {
	if !added.IsCreature() {
		return 0, 0
	}
	if added.Power != nil {
		if p, err := strconv.Atoi(strings.TrimSpace(*added.Power)); err == nil {
			power = p * quantity
		}
	}
	if added.Toughness != nil {
		if t, err := strconv.Atoi(strings.TrimSpace(*added.Toughness)); err == nil {
			toughness = t * quantity
		}
	}
	return power, toughness
}

func newKeys(before, after map[string]int) []string {
	var added []string
	for key, count := range after {
		if count > 0 && before[key] == 0 {
			added = append(added, key)
		}
	}
	sort.Strings(added)
	return added
}

func unionKeys(a, b map[string]int) map[string]int {
	union := make(map[string]int, len(a)+len(b))
	for key := range a {
		union[key] = 1
	}
	for key := range b {
		union[key] = 1
	}
	return union
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func boolPtr(b bool) *bool { return &b }
