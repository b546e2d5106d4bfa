package combos

import (
	"context"
	"errors"
	"sort"
	"strings"
)

// ErrNotInitialized is returned when a query runs before the matcher has
// indexed a combo corpus.
var ErrNotInitialized = errors.New("combo matcher not initialized")

// Combo is a known multi-card combo from the external combo corpus.
type Combo struct {
	ID            string   `json:"id"`
	Cards         []string `json:"cards"` // Required card names, in corpus order
	Description   string   `json:"description"`
	ColorIdentity string   `json:"color_identity"`
	Popularity    int      `json:"popularity"` // Deck-count weight from the corpus
	Bracket       string   `json:"bracket"`    // Power/bracket tag
}

// Store provides read-only access to the combo corpus.
type Store interface {
	// AllCombos returns every combo in the corpus.
	AllCombos(ctx context.Context) ([]*Combo, error)
}

// Match describes how close a deck is to one combo.
type Match struct {
	Combo           *Combo
	Present         []string // Required cards the deck already has
	Missing         []string // Required cards the deck lacks, in combo order
	CompletionRatio float64  // present / total required
}

// IsComplete reports whether every required card is present.
func (m *Match) IsComplete() bool {
	return len(m.Missing) == 0
}

// Matcher indexes a combo corpus by participating card name. A Matcher is
// immutable after construction; rebuild and swap when the corpus reloads.
type Matcher struct {
	byID   map[string]*Combo
	byCard map[string][]string // lower-cased card name -> combo ids
	small  []string            // ids of combos small enough to surface with zero overlap
	ids    []string            // all ids, sorted
}

// NewMatcher builds the card-name index over a combo corpus snapshot.
func NewMatcher(corpus []*Combo) *Matcher {
	m := &Matcher{
		byID:   make(map[string]*Combo, len(corpus)),
		byCard: make(map[string][]string),
	}
	for _, combo := range corpus {
		if combo == nil || combo.ID == "" {
			continue
		}
		if _, dup := m.byID[combo.ID]; dup {
			continue
		}
		m.byID[combo.ID] = combo
		m.ids = append(m.ids, combo.ID)
		seen := make(map[string]bool, len(combo.Cards))
		for _, name := range combo.Cards {
			key := strings.ToLower(name)
			if seen[key] {
				continue
			}
			seen[key] = true
			m.byCard[key] = append(m.byCard[key], combo.ID)
		}
	}
	sort.Strings(m.ids)
	return m
}

// ForCard returns every combo that includes the named card, sorted by
// popularity descending then id ascending.
func (m *Matcher) ForCard(name string) ([]*Combo, error) {
	if m == nil || m.byID == nil {
		return nil, ErrNotInitialized
	}

	ids := m.byCard[strings.ToLower(name)]
	result := make([]*Combo, 0, len(ids))
	for _, id := range ids {
		result = append(result, m.byID[id])
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Popularity != result[j].Popularity {
			return result[i].Popularity > result[j].Popularity
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// ForDeck partitions combos into complete (all pieces present) and potential
// (at most maxMissing pieces absent). Candidates are the union of combos
// touched by any deck card, plus combos small enough that maxMissing covers
// them outright — intentionally surfacing strong combos the deck has not
// started yet. Unknown or stale card names are ignored; the deck list is the
// point of truth. Both lists sort by completion ratio descending, then
// popularity descending, then id ascending.
func (m *Matcher) ForDeck(cardNames []string, maxMissing int) (complete, potential []*Match, err error) {
	if m == nil || m.byID == nil {
		return nil, nil, ErrNotInitialized
	}

	deck := make(map[string]bool, len(cardNames))
	for _, name := range cardNames {
		deck[strings.ToLower(name)] = true
	}

	// Union of combos touched by the deck, not a scan of the whole corpus.
	candidates := make(map[string]bool)
	for name := range deck {
		for _, id := range m.byCard[name] {
			candidates[id] = true
		}
	}
	// Combos with no more pieces than maxMissing qualify even untouched.
	if maxMissing > 0 {
		for _, id := range m.ids {
			if len(m.byID[id].Cards) <= maxMissing {
				candidates[id] = true
			}
		}
	}

	complete = make([]*Match, 0)
	potential = make([]*Match, 0)
	for id := range candidates {
		combo := m.byID[id]
		match := buildMatch(combo, deck)
		switch {
		case match.IsComplete():
			complete = append(complete, match)
		case len(match.Missing) <= maxMissing:
			potential = append(potential, match)
		}
	}

	sortMatches(complete)
	sortMatches(potential)
	return complete, potential, nil
}

// buildMatch computes the present/missing partition for one combo against a
// deck name set.
func buildMatch(combo *Combo, deck map[string]bool) *Match {
	match := &Match{Combo: combo}
	seen := make(map[string]bool, len(combo.Cards))
	total := 0
	for _, name := range combo.Cards {
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		total++
		if deck[key] {
			match.Present = append(match.Present, name)
		} else {
			match.Missing = append(match.Missing, name)
		}
	}
	if total > 0 {
		match.CompletionRatio = float64(len(match.Present)) / float64(total)
	}
	return match
}

// sortMatches orders by completion ratio descending, popularity descending,
// id ascending.
func sortMatches(matches []*Match) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CompletionRatio != matches[j].CompletionRatio {
			return matches[i].CompletionRatio > matches[j].CompletionRatio
		}
		if matches[i].Combo.Popularity != matches[j].Combo.Popularity {
			return matches[i].Combo.Popularity > matches[j].Combo.Popularity
		}
		return matches[i].Combo.ID < matches[j].Combo.ID
	})
}
