package similarity

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/ramonehamilton/deck-advisor/internal/cards"
)

func strPtr(s string) *string { return &s }

func testCorpus() []*cards.Card {
	corpus := []*cards.Card{
		{
			Name:      "Gravecrawler",
			ManaCost:  "{B}",
			ManaValue: 1,
			TypeLine:  "Creature — Zombie",
			Subtypes:  []string{"Zombie"},
			RulesText: strPtr("Gravecrawler can't block.\nYou may cast Gravecrawler from your graveyard as long as you control a Zombie."),
			Colors:    []string{"B"},
			Power:     strPtr("2"),
			Toughness: strPtr("1"),
		},
		{
			Name:      "Diregraf Ghoul",
			ManaCost:  "{B}",
			ManaValue: 1,
			TypeLine:  "Creature — Zombie",
			Subtypes:  []string{"Zombie"},
			RulesText: strPtr("Diregraf Ghoul enters the battlefield tapped."),
			Colors:    []string{"B"},
			Power:     strPtr("2"),
			Toughness: strPtr("2"),
		},
		{
			Name:      "Llanowar Elves",
			ManaCost:  "{G}",
			ManaValue: 1,
			TypeLine:  "Creature — Elf Druid",
			Subtypes:  []string{"Elf", "Druid"},
			RulesText: strPtr("{T}: Add {G}."),
			Colors:    []string{"G"},
			Power:     strPtr("1"),
			Toughness: strPtr("1"),
		},
		{
			Name:      "Elvish Mystic",
			ManaCost:  "{G}",
			ManaValue: 1,
			TypeLine:  "Creature — Elf Druid",
			Subtypes:  []string{"Elf", "Druid"},
			RulesText: strPtr("{T}: Add {G}."),
			Colors:    []string{"G"},
			Power:     strPtr("1"),
			Toughness: strPtr("1"),
		},
		{
			Name:      "Island",
			TypeLine:  "Basic Land — Island",
			Subtypes:  []string{"Island"},
			Supertypes: []string{"Basic"},
			Types:      []string{"Land"},
		},
	}
	for _, c := range corpus {
		c.Normalize()
	}
	return corpus
}

func TestNearestExcludesSelf(t *testing.T) {
	idx := Build(testCorpus())

	matches, err := idx.Nearest("Gravecrawler", 10)
	if err != nil {
		t.Fatalf("Nearest() error = %v", err)
	}

	for _, m := range matches {
		if m.Name == "Gravecrawler" {
			t.Errorf("Nearest() included the query card itself")
		}
	}
}

func TestNearestRanksTribalNeighborFirst(t *testing.T) {
	idx := Build(testCorpus())

	matches, err := idx.Nearest("Llanowar Elves", 3)
	if err != nil {
		t.Fatalf("Nearest() error = %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("Nearest() returned no matches")
	}
	if matches[0].Name != "Elvish Mystic" {
		t.Errorf("Nearest()[0] = %q (%.3f), want Elvish Mystic", matches[0].Name, matches[0].Score)
	}
}

func TestNearestSortedAndLimited(t *testing.T) {
	idx := Build(testCorpus())

	matches, err := idx.Nearest("Gravecrawler", 2)
	if err != nil {
		t.Fatalf("Nearest() error = %v", err)
	}
	if len(matches) > 2 {
		t.Errorf("Nearest(k=2) returned %d matches", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("Nearest() not sorted descending at %d", i)
		}
	}
}

func TestNearestCaseInsensitive(t *testing.T) {
	idx := Build(testCorpus())

	if _, err := idx.Nearest("gravecrawler", 1); err != nil {
		t.Errorf("Nearest(lower-case) error = %v", err)
	}
}

func TestNearestUnknownCard(t *testing.T) {
	idx := Build(testCorpus())

	_, err := idx.Nearest("Black Lotus", 5)
	if !errors.Is(err, ErrUnknownCard) {
		t.Errorf("Nearest(unknown) error = %v, want ErrUnknownCard", err)
	}
}

func TestNearestNotInitialized(t *testing.T) {
	var idx *Index

	if _, err := idx.Nearest("Gravecrawler", 5); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Nearest() on nil index error = %v, want ErrNotInitialized", err)
	}
	if _, err := idx.NearestToText("zombie", 5); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("NearestToText() on nil index error = %v, want ErrNotInitialized", err)
	}
	if _, err := idx.NearestToSet([]string{"Gravecrawler"}, 5); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("NearestToSet() on nil index error = %v, want ErrNotInitialized", err)
	}
}

func TestSingleCardCorpusReturnsEmpty(t *testing.T) {
	idx := Build(testCorpus()[:1])

	matches, err := idx.Nearest("Gravecrawler", 5)
	if err != nil {
		t.Fatalf("Nearest() error = %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("Nearest() = %v, want empty result", matches)
	}
}

func TestSimilarityIsSymmetric(t *testing.T) {
	idx := Build(testCorpus())

	ab, err := idx.Similarity("Gravecrawler", "Diregraf Ghoul")
	if err != nil {
		t.Fatalf("Similarity() error = %v", err)
	}
	ba, err := idx.Similarity("Diregraf Ghoul", "Gravecrawler")
	if err != nil {
		t.Fatalf("Similarity() error = %v", err)
	}

	if math.Abs(ab-ba) > 1e-12 {
		t.Errorf("Similarity not symmetric: %v vs %v", ab, ba)
	}
}

func TestNearestToTextFindsCardByName(t *testing.T) {
	idx := Build(testCorpus())

	matches, err := idx.NearestToText("gravecrawler", 1)
	if err != nil {
		t.Fatalf("NearestToText() error = %v", err)
	}
	if len(matches) == 0 || matches[0].Name != "Gravecrawler" {
		t.Errorf("NearestToText() = %v, want Gravecrawler first", matches)
	}
}

func TestNearestToSetExcludesMembers(t *testing.T) {
	idx := Build(testCorpus())

	matches, err := idx.NearestToSet([]string{"Llanowar Elves", "Elvish Mystic"}, 10)
	if err != nil {
		t.Fatalf("NearestToSet() error = %v", err)
	}
	for _, m := range matches {
		if m.Name == "Llanowar Elves" || m.Name == "Elvish Mystic" {
			t.Errorf("NearestToSet() included set member %q", m.Name)
		}
	}
}

func TestNearestToSetAllUnknown(t *testing.T) {
	idx := Build(testCorpus())

	if _, err := idx.NearestToSet([]string{"Nonexistent"}, 5); !errors.Is(err, ErrUnknownCard) {
		t.Errorf("NearestToSet(all unknown) error = %v, want ErrUnknownCard", err)
	}
}

func TestRebuildIsDeterministic(t *testing.T) {
	first := Build(testCorpus())
	second := Build(testCorpus())

	a, err := first.Nearest("Gravecrawler", 4)
	if err != nil {
		t.Fatalf("Nearest() error = %v", err)
	}
	b, err := second.Nearest("Gravecrawler", 4)
	if err != nil {
		t.Fatalf("Nearest() error = %v", err)
	}

	if !reflect.DeepEqual(a, b) {
		t.Errorf("rebuild changed results: %v vs %v", a, b)
	}
}
