package synergy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ramonehamilton/deck-advisor/internal/cards"
	"github.com/ramonehamilton/deck-advisor/internal/classify"
	"github.com/ramonehamilton/deck-advisor/internal/similarity"
)

// Type labels which signal dominated a synergy score.
type Type string

const (
	TypeKeyword Type = "keyword" // Shared keyword abilities
	TypeTribal  Type = "tribal"  // Shared creature subtypes or card types
	TypeAbility Type = "ability" // Textual similarity of rules and identity
	TypeTheme   Type = "theme"   // Shared synergy themes
)

// Result is one scored candidate.
type Result struct {
	Name   string  // Candidate card name
	Type   Type    // Dominant synergy signal
	Reason string  // Human-readable explanation of the dominant shared trait
	Score  float64 // Combined score in [0, 1]
}

// Weights blends the four synergy signals into one score. The values are
// policy, not mechanism: tests pin exact output against DefaultWeights, and
// callers may override per scorer instance.
type Weights struct {
	Similarity float64
	Theme      float64
	Keyword    float64
	Tribal     float64
}

// DefaultWeights returns the standard signal blend.
func DefaultWeights() Weights {
	return Weights{
		Similarity: 0.4,
		Theme:      0.3,
		Keyword:    0.2,
		Tribal:     0.1,
	}
}

// Scorer ranks candidate cards by multi-signal synergy with a source card.
// A Scorer reads one immutable index snapshot; it is safe for concurrent
// queries.
type Scorer struct {
	index      *similarity.Index
	classifier *classify.Classifier
	weights    Weights
}

// NewScorer creates a scorer over a built similarity index and classifier.
func NewScorer(index *similarity.Index, classifier *classify.Classifier, weights Weights) *Scorer {
	if classifier == nil {
		classifier = classify.NewClassifier(nil)
	}
	return &Scorer{
		index:      index,
		classifier: classifier,
		weights:    weights,
	}
}

// Score computes the synergy between a source card and one candidate.
// Missing rules text degrades to zero-signal contributions, never an error.
func (s *Scorer) Score(source, candidate *cards.Card) Result {
	// A basic land with no nonland identity contributes nothing unless the
	// source card cares about lands.
	if candidate.IsBasicLand() && !s.landMatters(source) {
		return Result{
			Name:   candidate.Name,
			Type:   TypeTheme,
			Reason: "No synergy with basic lands",
			Score:  0,
		}
	}

	simScore := s.similarityScore(source, candidate)
	themeScore, sharedTheme := s.themeOverlap(source, candidate)
	keywordScore, sharedKeyword := s.keywordOverlap(source, candidate)
	tribalScore, sharedTribe := s.tribalOverlap(source, candidate)

	score := simScore*s.weights.Similarity +
		themeScore*s.weights.Theme +
		keywordScore*s.weights.Keyword +
		tribalScore*s.weights.Tribal

	synergyType, reason := s.dominantSignal(
		simScore*s.weights.Similarity,
		themeScore*s.weights.Theme,
		keywordScore*s.weights.Keyword,
		tribalScore*s.weights.Tribal,
		sharedTheme, sharedKeyword, sharedTribe,
	)

	return Result{
		Name:   candidate.Name,
		Type:   synergyType,
		Reason: reason,
		Score:  clamp01(score),
	}
}

// Rank scores every candidate in the pool against the source and returns the
// top maxResults, score descending with ties broken by name ascending. The
// source card is excluded from the pool even if present. A maxResults of
// zero or less returns the whole ranking.
func (s *Scorer) Rank(source *cards.Card, pool []*cards.Card, maxResults int) []Result {
	results := make([]Result, 0, len(pool))
	for _, candidate := range pool {
		if strings.EqualFold(candidate.Name, source.Name) {
			continue
		}
		results = append(results, s.Score(source, candidate))
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Name < results[j].Name
	})

	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

// similarityScore looks up cosine similarity from the index, tolerating
// cards outside the indexed corpus.
func (s *Scorer) similarityScore(source, candidate *cards.Card) float64 {
	if s.index == nil {
		return 0
	}
	score, err := s.index.Similarity(source.Name, candidate.Name)
	if err != nil {
		return 0
	}
	return score
}

// themeOverlap measures shared synergy themes, normalized by the smaller
// theme set so narrow cards are not penalized.
func (s *Scorer) themeOverlap(source, candidate *cards.Card) (float64, string) {
	sourceThemes := s.classifier.Themes(source.Text())
	candidateThemes := s.classifier.Themes(candidate.Text())
	if len(sourceThemes) == 0 || len(candidateThemes) == 0 {
		return 0, ""
	}

	shared := make([]string, 0)
	for theme := range sourceThemes {
		if candidateThemes.Contains(theme) {
			shared = append(shared, theme)
		}
	}
	if len(shared) == 0 {
		return 0, ""
	}
	sort.Strings(shared)

	smaller := len(sourceThemes)
	if len(candidateThemes) < smaller {
		smaller = len(candidateThemes)
	}
	return float64(len(shared)) / float64(smaller), shared[0]
}

// keywordOverlap measures shared keyword abilities, combining declared
// keywords with those found in rules text.
func (s *Scorer) keywordOverlap(source, candidate *cards.Card) (float64, string) {
	sourceKeywords := s.cardKeywords(source)
	candidateKeywords := s.cardKeywords(candidate)
	if len(sourceKeywords) == 0 || len(candidateKeywords) == 0 {
		return 0, ""
	}

	shared := make([]string, 0)
	for keyword := range sourceKeywords {
		if candidateKeywords[keyword] {
			shared = append(shared, keyword)
		}
	}
	if len(shared) == 0 {
		return 0, ""
	}
	sort.Strings(shared)

	smaller := len(sourceKeywords)
	if len(candidateKeywords) < smaller {
		smaller = len(candidateKeywords)
	}
	return float64(len(shared)) / float64(smaller), shared[0]
}

// tribalOverlap scores shared creature subtypes at full value and shared
// card types at half value.
func (s *Scorer) tribalOverlap(source, candidate *cards.Card) (float64, string) {
	for _, subtype := range source.Subtypes {
		for _, other := range candidate.Subtypes {
			if strings.EqualFold(subtype, other) {
				return 1.0, subtype
			}
		}
	}
	for _, cardType := range source.Types {
		if strings.EqualFold(cardType, "Land") {
			continue // Shared land-ness is not a synergy
		}
		for _, other := range candidate.Types {
			if strings.EqualFold(cardType, other) {
				return 0.5, cardType
			}
		}
	}
	return 0, ""
}

// cardKeywords merges a card's declared keywords with keywords detected in
// its rules text, normalized to lower case.
func (s *Scorer) cardKeywords(card *cards.Card) map[string]bool {
	keywords := make(map[string]bool)
	for _, keyword := range card.Keywords {
		keywords[strings.ToLower(keyword)] = true
	}
	for _, keyword := range s.classifier.KeywordsIn(card.Text()) {
		keywords[strings.ToLower(keyword)] = true
	}
	return keywords
}

// landMatters reports whether the source card cares about lands.
func (s *Scorer) landMatters(source *cards.Card) bool {
	themes := s.classifier.Themes(source.Text())
	return themes.Contains("land_matters") || themes.Contains("landfall")
}

// dominantSignal picks the synergy type and reason from the largest weighted
// contribution. Ties resolve keyword > tribal > ability > theme.
func (s *Scorer) dominantSignal(sim, theme, keyword, tribal float64, sharedTheme, sharedKeyword, sharedTribe string) (Type, string) {
	best := TypeKeyword
	bestScore := keyword
	if tribal > bestScore {
		best, bestScore = TypeTribal, tribal
	}
	if sim > bestScore {
		best, bestScore = TypeAbility, sim
	}
	if theme > bestScore {
		best, bestScore = TypeTheme, theme
	}

	switch best {
	case TypeKeyword:
		if sharedKeyword == "" {
			return TypeAbility, "Similar rules text and identity"
		}
		return TypeKeyword, fmt.Sprintf("Shares the %s keyword", sharedKeyword)
	case TypeTribal:
		return TypeTribal, fmt.Sprintf("Shares the %s type", sharedTribe)
	case TypeTheme:
		return TypeTheme, fmt.Sprintf("Shares %s theme", strings.ReplaceAll(sharedTheme, "_", " "))
	default:
		return TypeAbility, "Similar rules text and identity"
	}
}

// clamp01 bounds a score to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
