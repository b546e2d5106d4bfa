package synergy

import (
	"reflect"
	"testing"

	"github.com/ramonehamilton/deck-advisor/internal/cards"
	"github.com/ramonehamilton/deck-advisor/internal/classify"
	"github.com/ramonehamilton/deck-advisor/internal/similarity"
)

func strPtr(s string) *string { return &s }

func card(name, typeLine, text string, subtypes, keywords []string) *cards.Card {
	c := &cards.Card{
		Name:     name,
		TypeLine: typeLine,
		Subtypes: subtypes,
		Keywords: keywords,
	}
	if text != "" {
		c.RulesText = strPtr(text)
	}
	c.Normalize()
	return c
}

func testPool() []*cards.Card {
	return []*cards.Card{
		card("Gravecrawler", "Creature — Zombie",
			"Gravecrawler can't block.\nYou may cast Gravecrawler from your graveyard as long as you control a Zombie.",
			[]string{"Zombie"}, nil),
		card("Diregraf Colossus", "Creature — Zombie Giant",
			"Diregraf Colossus enters the battlefield with a +1/+1 counter on it for each Zombie card in your graveyard.\nWhenever you cast a Zombie spell, create a 2/2 black Zombie creature token.",
			[]string{"Zombie", "Giant"}, nil),
		card("Serra Angel", "Creature — Angel",
			"Flying, vigilance",
			[]string{"Angel"}, []string{"Flying", "Vigilance"}),
		card("Shivan Dragon", "Creature — Dragon",
			"Flying\n{R}: Shivan Dragon gets +1/+0 until end of turn.",
			[]string{"Dragon"}, []string{"Flying"}),
		card("Swamp", "Basic Land — Swamp", "", []string{"Swamp"}, nil),
	}
}

func newTestScorer(pool []*cards.Card) *Scorer {
	idx := similarity.Build(pool)
	return NewScorer(idx, classify.NewClassifier(nil), DefaultWeights())
}

func TestScoreTribalSynergy(t *testing.T) {
	pool := testPool()
	s := newTestScorer(pool)

	result := s.Score(pool[0], pool[1]) // Gravecrawler vs Diregraf Colossus

	if result.Score <= 0 {
		t.Fatalf("Score() = %v, want positive", result.Score)
	}
	if result.Reason == "" {
		t.Error("Score() returned empty reason")
	}
}

func TestScoreKeywordSynergy(t *testing.T) {
	pool := testPool()
	s := newTestScorer(pool)

	result := s.Score(pool[2], pool[3]) // Serra Angel vs Shivan Dragon

	if result.Score <= 0 {
		t.Fatalf("Score() = %v, want positive", result.Score)
	}
	// Shared Flying keyword should register as keyword or tribal-type
	// overlap, with a reason naming the trait.
	if result.Reason == "" {
		t.Error("Score() returned empty reason")
	}
}

func TestScoreBasicLandIsZero(t *testing.T) {
	pool := testPool()
	s := newTestScorer(pool)

	result := s.Score(pool[0], pool[4]) // Gravecrawler vs Swamp

	if result.Score != 0 {
		t.Errorf("Score(basic land) = %v, want 0", result.Score)
	}
}

func TestScoreBasicLandWithLandMattersSource(t *testing.T) {
	pool := testPool()
	landMatters := card("Scute Swarm", "Creature — Insect",
		"Landfall — Whenever a land enters the battlefield under your control, create a 1/1 green Insect creature token.",
		[]string{"Insect"}, nil)
	s := newTestScorer(append(pool, landMatters))

	result := s.Score(landMatters, pool[4])

	// A land-matters source may score lands above zero (here via shared
	// corpus terms); the hard zeroing must not apply.
	if result.Reason == "No synergy with basic lands" {
		t.Errorf("Score() zeroed a land against a land-matters source")
	}
}

func TestScoreEmptyRulesTextNeverErrors(t *testing.T) {
	pool := testPool()
	s := newTestScorer(pool)
	vanilla := card("Grizzly Bears", "Creature — Bear", "", []string{"Bear"}, nil)

	result := s.Score(pool[0], vanilla)

	if result.Score < 0 || result.Score > 1 {
		t.Errorf("Score() = %v, want within [0,1]", result.Score)
	}
}

func TestRankExcludesSource(t *testing.T) {
	pool := testPool()
	s := newTestScorer(pool)

	results := s.Rank(pool[0], pool, 10)

	for _, r := range results {
		if r.Name == "Gravecrawler" {
			t.Error("Rank() included the source card")
		}
	}
}

func TestRankSortedAndTruncated(t *testing.T) {
	pool := testPool()
	s := newTestScorer(pool)

	results := s.Rank(pool[0], pool, 2)

	if len(results) > 2 {
		t.Errorf("Rank(maxResults=2) returned %d results", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("Rank() not sorted descending at %d", i)
		}
	}
}

func TestRankIsIdempotent(t *testing.T) {
	pool := testPool()
	s := newTestScorer(pool)

	first := s.Rank(pool[0], pool, 10)
	second := s.Rank(pool[0], pool, 10)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Rank() not idempotent:\n%v\n%v", first, second)
	}
}

func TestRankZombieNeighborWins(t *testing.T) {
	pool := testPool()
	s := newTestScorer(pool)

	results := s.Rank(pool[0], pool, 1)

	if len(results) == 0 {
		t.Fatal("Rank() returned no results")
	}
	if results[0].Name != "Diregraf Colossus" {
		t.Errorf("Rank()[0] = %q, want Diregraf Colossus", results[0].Name)
	}
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	w := DefaultWeights()
	sum := w.Similarity + w.Theme + w.Keyword + w.Tribal
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("DefaultWeights() sum = %v, want 1.0", sum)
	}
}
