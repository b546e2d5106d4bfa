package deckstats

import (
	"strings"

	"github.com/ramonehamilton/deck-advisor/internal/cards"
	"github.com/ramonehamilton/deck-advisor/internal/classify"
)

// Entry is one line of a deck list: a card and how many copies it has.
type Entry struct {
	Card     *cards.Card
	Quantity int
}

// Features aggregates a deck multiset into comparable statistics. A Features
// value is built fresh for every deck state and never mutated, keeping diffs
// pure.
type Features struct {
	TotalCards    int
	NonlandCards  int
	AvgManaValue  float64        // Over nonland cards
	TypeCounts    map[string]int // Card type -> copies
	KeywordCounts map[string]int // Lower-cased keyword -> copies carrying it
	SubtypeCounts map[string]int // Subtype -> copies
	Themes        classify.TagSet
}

// ComputeFeatures builds the aggregate feature set for a deck state.
func ComputeFeatures(deck []Entry, classifier *classify.Classifier) *Features {
	f := &Features{
		TypeCounts:    make(map[string]int),
		KeywordCounts: make(map[string]int),
		SubtypeCounts: make(map[string]int),
		Themes:        classify.TagSet{},
	}

	totalManaValue := 0.0
	for _, entry := range deck {
		card := entry.Card
		if card == nil || entry.Quantity <= 0 {
			continue
		}
		f.TotalCards += entry.Quantity

		for _, cardType := range card.Types {
			f.TypeCounts[cardType] += entry.Quantity
		}
		for _, subtype := range card.Subtypes {
			f.SubtypeCounts[subtype] += entry.Quantity
		}
		for _, keyword := range cardKeywords(card, classifier) {
			f.KeywordCounts[keyword] += entry.Quantity
		}
		for theme := range classifier.Themes(card.Text()) {
			f.Themes[theme] = true
		}

		if !card.IsLand() {
			f.NonlandCards += entry.Quantity
			totalManaValue += card.ManaValue * float64(entry.Quantity)
		}
	}

	if f.NonlandCards > 0 {
		f.AvgManaValue = totalManaValue / float64(f.NonlandCards)
	}

	return f
}

// cardKeywords merges declared keywords with keywords detected in rules
// text, lower-cased and deduplicated.
func cardKeywords(card *cards.Card, classifier *classify.Classifier) []string {
	seen := make(map[string]bool)
	var keywords []string
	add := func(keyword string) {
		key := strings.ToLower(keyword)
		if !seen[key] {
			seen[key] = true
			keywords = append(keywords, key)
		}
	}
	for _, keyword := range card.Keywords {
		add(keyword)
	}
	for _, keyword := range classifier.KeywordsIn(card.Text()) {
		add(keyword)
	}
	return keywords
}
