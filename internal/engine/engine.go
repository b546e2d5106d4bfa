package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ramonehamilton/deck-advisor/internal/cards"
	"github.com/ramonehamilton/deck-advisor/internal/classify"
	"github.com/ramonehamilton/deck-advisor/internal/combos"
	"github.com/ramonehamilton/deck-advisor/internal/deckstats"
	"github.com/ramonehamilton/deck-advisor/internal/similarity"
	"github.com/ramonehamilton/deck-advisor/internal/synergy"
)

var (
	// ErrNotInitialized is returned for queries issued before the first
	// successful Rebuild.
	ErrNotInitialized = errors.New("engine has no corpus snapshot")

	// ErrUnknownCard is returned when a query names a card absent from
	// the corpus snapshot.
	ErrUnknownCard = errors.New("unknown card")
)

// DeckEntry is one line of a caller-supplied deck list.
type DeckEntry struct {
	Name     string
	Quantity int
}

// Config wires an Engine to its corpus stores and policy.
type Config struct {
	CardStore  cards.Store
	ComboStore combos.Store

	// Optional policy overrides; zero values use the defaults.
	Vocabulary         *classify.Vocabulary
	Weights            synergy.Weights
	Matchups           map[string][]string
	HighCurveThreshold float64
	Logger             *slog.Logger
}

// Engine is the synergy and recommendation facade. It owns an immutable
// snapshot of the corpus and its derived indexes, published through an
// atomic pointer: queries read one snapshot for their whole call, and
// Rebuild replaces the snapshot wholesale rather than mutating in place.
type Engine struct {
	cardStore  cards.Store
	comboStore combos.Store
	classifier *classify.Classifier
	weights    synergy.Weights
	differ     *deckstats.Differ
	logger     *slog.Logger

	rebuildMu sync.Mutex // single-writer guarantee for Rebuild
	snap      atomic.Pointer[snapshot]
}

// snapshot is one immutable generation of the corpus and derived indexes.
type snapshot struct {
	corpus  []*cards.Card
	byName  map[string]*cards.Card
	index   *similarity.Index
	matcher *combos.Matcher
	scorer  *synergy.Scorer
}

// New creates an engine. Call Rebuild before querying.
func New(config Config) (*Engine, error) {
	if config.CardStore == nil {
		return nil, fmt.Errorf("card store is required")
	}
	if config.ComboStore == nil {
		return nil, fmt.Errorf("combo store is required")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Weights == (synergy.Weights{}) {
		config.Weights = synergy.DefaultWeights()
	}

	classifier := classify.NewClassifier(config.Vocabulary)
	return &Engine{
		cardStore:  config.CardStore,
		comboStore: config.ComboStore,
		classifier: classifier,
		weights:    config.Weights,
		differ: deckstats.NewDiffer(deckstats.DifferConfig{
			Classifier:         classifier,
			Matchups:           config.Matchups,
			HighCurveThreshold: config.HighCurveThreshold,
		}),
		logger: config.Logger,
	}, nil
}

// Rebuild loads both corpora and swaps in a freshly built snapshot. It is
// the engine's only write operation; concurrent queries keep reading the old
// snapshot until the swap completes.
func (e *Engine) Rebuild(ctx context.Context) error {
	e.rebuildMu.Lock()
	defer e.rebuildMu.Unlock()

	start := time.Now()

	corpus, err := e.cardStore.AllCards(ctx)
	if err != nil {
		return fmt.Errorf("failed to load card corpus: %w", err)
	}
	comboCorpus, err := e.comboStore.AllCombos(ctx)
	if err != nil {
		return fmt.Errorf("failed to load combo corpus: %w", err)
	}

	byName := make(map[string]*cards.Card, len(corpus))
	for _, card := range corpus {
		card.Normalize()
		byName[strings.ToLower(card.Name)] = card
	}

	index := similarity.Build(corpus)
	next := &snapshot{
		corpus:  corpus,
		byName:  byName,
		index:   index,
		matcher: combos.NewMatcher(comboCorpus),
		scorer:  synergy.NewScorer(index, e.classifier, e.weights),
	}
	e.snap.Store(next)

	e.logger.Info("corpus snapshot rebuilt",
		"cards", len(corpus),
		"combos", len(comboCorpus),
		"elapsed", time.Since(start))
	return nil
}

// HasSnapshot reports whether a corpus snapshot has been built.
func (e *Engine) HasSnapshot() bool {
	return e.snap.Load() != nil
}

// Nearest returns the k cards most textually similar to the named card.
func (e *Engine) Nearest(name string, k int) ([]similarity.Match, error) {
	snap := e.snap.Load()
	if snap == nil {
		return nil, ErrNotInitialized
	}
	matches, err := snap.index.Nearest(name, k)
	if errors.Is(err, similarity.ErrUnknownCard) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCard, name)
	}
	return matches, err
}

// NearestToSet returns the k cards most similar to the centroid of a deck
// list, excluding the deck's own cards.
func (e *Engine) NearestToSet(names []string, k int) ([]similarity.Match, error) {
	snap := e.snap.Load()
	if snap == nil {
		return nil, ErrNotInitialized
	}
	matches, err := snap.index.NearestToSet(names, k)
	if errors.Is(err, similarity.ErrUnknownCard) {
		return nil, fmt.Errorf("%w: no deck card found in corpus", ErrUnknownCard)
	}
	return matches, err
}

// Recommend ranks the whole corpus by synergy with the named source card.
func (e *Engine) Recommend(name string, maxResults int) ([]synergy.Result, error) {
	snap := e.snap.Load()
	if snap == nil {
		return nil, ErrNotInitialized
	}
	source, ok := snap.byName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCard, name)
	}
	return snap.scorer.Rank(source, snap.corpus, maxResults), nil
}

// CombosForCard returns known combos that include the named card.
func (e *Engine) CombosForCard(name string) ([]*combos.Combo, error) {
	snap := e.snap.Load()
	if snap == nil {
		return nil, ErrNotInitialized
	}
	return snap.matcher.ForCard(name)
}

// CombosForDeck partitions known combos into complete and potential for a
// deck list.
func (e *Engine) CombosForDeck(names []string, maxMissing int) (complete, potential []*combos.Match, err error) {
	snap := e.snap.Load()
	if snap == nil {
		return nil, nil, ErrNotInitialized
	}
	return snap.matcher.ForDeck(names, maxMissing)
}

// Impact reports the marginal effect of adding quantity copies of a card to
// a deck. Deck entries naming unknown cards are skipped; the added card must
// exist in the corpus.
func (e *Engine) Impact(deck []DeckEntry, addedName string, quantity int) (*deckstats.Impact, error) {
	snap := e.snap.Load()
	if snap == nil {
		return nil, ErrNotInitialized
	}
	added, ok := snap.byName[strings.ToLower(addedName)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCard, addedName)
	}

	entries := make([]deckstats.Entry, 0, len(deck))
	for _, line := range deck {
		card, ok := snap.byName[strings.ToLower(line.Name)]
		if !ok {
			continue
		}
		entries = append(entries, deckstats.Entry{Card: card, Quantity: line.Quantity})
	}

	return e.differ.Diff(entries, added, quantity), nil
}

// Suggest returns likely intended card names for a query that failed with
// ErrUnknownCard, ranked by textual similarity to the attempted name.
func (e *Engine) Suggest(attempted string, k int) ([]similarity.Match, error) {
	snap := e.snap.Load()
	if snap == nil {
		return nil, ErrNotInitialized
	}
	return snap.index.NearestToText(attempted, k)
}

// GetCard returns a card from the current snapshot, or nil if unknown.
func (e *Engine) GetCard(name string) *cards.Card {
	snap := e.snap.Load()
	if snap == nil {
		return nil
	}
	return snap.byName[strings.ToLower(name)]
}

// Classifier exposes the engine's ability classifier for callers that want
// to tag cards directly.
func (e *Engine) Classifier() *classify.Classifier {
	return e.classifier
}
