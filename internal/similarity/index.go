package similarity

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/ramonehamilton/deck-advisor/internal/cards"
)

var (
	// ErrNotInitialized is returned when a query runs before an index has
	// been built from a corpus.
	ErrNotInitialized = errors.New("similarity index not initialized")

	// ErrUnknownCard is returned when a query names a card absent from the
	// corpus. A known card with no neighbors returns an empty result
	// instead.
	ErrUnknownCard = errors.New("card not found in corpus")
)

// Match is one nearest-neighbor result.
type Match struct {
	Name  string  // Display name of the matched card
	Score float64 // Cosine similarity in [0, 1]
}

// Index answers nearest-neighbor queries over TF-IDF document vectors built
// from a card corpus. An Index is immutable after Build; rebuild a new one
// and swap the reference when the corpus changes.
type Index struct {
	docs  map[string]*document // keyed by lower-cased name
	order []string             // lower-cased names in deterministic order
	idf   map[string]float64
	size  int
}

type document struct {
	name   string             // display name
	vector map[string]float64 // L2-normalized tf-idf weights
}

// Field replication weights. Identity-bearing fields (name, subtypes) count
// double so tribal and functional reprints surface above incidental text
// overlap.
const (
	nameWeight    = 2
	typeWeight    = 1
	textWeight    = 1
	keywordWeight = 1
	subtypeWeight = 2
	colorWeight   = 1
)

// Build constructs an index from a corpus snapshot. Build is pure: the same
// corpus always yields an identical index.
func Build(corpus []*cards.Card) *Index {
	idx := &Index{
		docs: make(map[string]*document, len(corpus)),
		idf:  make(map[string]float64),
		size: len(corpus),
	}

	// First pass: raw term frequencies per card and document frequencies.
	freqs := make(map[string]map[string]int, len(corpus))
	df := make(map[string]int)
	for _, card := range corpus {
		key := strings.ToLower(card.Name)
		if _, dup := freqs[key]; dup {
			continue // First printing wins on duplicate names
		}
		tf := termFrequencies(card)
		freqs[key] = tf
		idx.docs[key] = &document{name: card.Name}
		idx.order = append(idx.order, key)
		for term := range tf {
			df[term]++
		}
	}
	sort.Strings(idx.order)

	// Smooth inverse document frequency; always positive so vectors stay
	// normalizable.
	n := float64(len(idx.order))
	for term, count := range df {
		idx.idf[term] = 1 + math.Log(n/float64(count))
	}

	// Second pass: weight and normalize.
	for key, tf := range freqs {
		idx.docs[key].vector = normalize(weigh(tf, idx.idf))
	}

	return idx
}

// Nearest returns the k most similar cards to the named card, score
// descending with ties broken by name ascending. The card itself is never
// included.
func (idx *Index) Nearest(name string, k int) ([]Match, error) {
	if idx == nil || idx.docs == nil {
		return nil, ErrNotInitialized
	}
	doc, ok := idx.docs[strings.ToLower(name)]
	if !ok {
		return nil, ErrUnknownCard
	}
	return idx.scan(doc.vector, map[string]bool{strings.ToLower(name): true}, k), nil
}

// NearestToText returns the k cards most similar to free text. Useful for
// "did you mean" lookups against a misspelled card name.
func (idx *Index) NearestToText(text string, k int) ([]Match, error) {
	if idx == nil || idx.docs == nil {
		return nil, ErrNotInitialized
	}
	tf := make(map[string]int)
	addTokens(tf, text, 1)
	return idx.scan(normalize(idx.weighQuery(tf)), nil, k), nil
}

// NearestToSet returns the k cards most similar to the centroid of the named
// cards. Members of the set are excluded from the result. Unknown names are
// silently skipped; if none resolve, ErrUnknownCard is returned.
func (idx *Index) NearestToSet(names []string, k int) ([]Match, error) {
	if idx == nil || idx.docs == nil {
		return nil, ErrNotInitialized
	}

	centroid := make(map[string]float64)
	exclude := make(map[string]bool, len(names))
	resolved := 0
	for _, name := range names {
		key := strings.ToLower(name)
		doc, ok := idx.docs[key]
		if !ok {
			continue
		}
		exclude[key] = true
		resolved++
		for term, weight := range doc.vector {
			centroid[term] += weight
		}
	}
	if resolved == 0 {
		return nil, ErrUnknownCard
	}

	return idx.scan(normalize(centroid), exclude, k), nil
}

// Size returns the number of cards in the index.
func (idx *Index) Size() int {
	if idx == nil {
		return 0
	}
	return idx.size
}

// Similarity returns the cosine similarity between two cards in the corpus.
func (idx *Index) Similarity(a, b string) (float64, error) {
	if idx == nil || idx.docs == nil {
		return 0, ErrNotInitialized
	}
	docA, okA := idx.docs[strings.ToLower(a)]
	docB, okB := idx.docs[strings.ToLower(b)]
	if !okA || !okB {
		return 0, ErrUnknownCard
	}
	return dot(docA.vector, docB.vector), nil
}

// scan brute-forces cosine similarity between the query vector and every
// document, returning the top k. Deterministic: score descending, then name
// ascending.
func (idx *Index) scan(query map[string]float64, exclude map[string]bool, k int) []Match {
	if k <= 0 {
		return []Match{}
	}

	matches := make([]Match, 0, len(idx.order))
	for _, key := range idx.order {
		if exclude[key] {
			continue
		}
		doc := idx.docs[key]
		score := dot(query, doc.vector)
		if score <= 0 {
			continue
		}
		matches = append(matches, Match{Name: doc.name, Score: score})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Name < matches[j].Name
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

// weigh applies idf weighting to a document term-frequency map.
func weigh(tf map[string]int, idf map[string]float64) map[string]float64 {
	weights := make(map[string]float64, len(tf))
	for term, count := range tf {
		weights[term] = float64(count) * idf[term]
	}
	return weights
}

// weighQuery applies idf to a query term-frequency map. Terms absent from
// the corpus keep a neutral weight so they only dilute the query norm.
func (idx *Index) weighQuery(tf map[string]int) map[string]float64 {
	weights := make(map[string]float64, len(tf))
	for term, count := range tf {
		idf, ok := idx.idf[term]
		if !ok {
			idf = 1
		}
		weights[term] = float64(count) * idf
	}
	return weights
}

// termFrequencies builds the per-card document with field replication
// weights applied.
func termFrequencies(card *cards.Card) map[string]int {
	tf := make(map[string]int)
	addTokens(tf, card.Name, nameWeight)
	addTokens(tf, card.TypeLine, typeWeight)
	addTokens(tf, expandManaSymbols(card.Text()), textWeight)
	for _, keyword := range card.Keywords {
		addTokens(tf, keyword, keywordWeight)
	}
	for _, subtype := range card.Subtypes {
		addTokens(tf, subtype, subtypeWeight)
	}
	for _, color := range cards.ColorNames(card.Colors) {
		addTokens(tf, color, colorWeight)
	}
	return tf
}

// addTokens tokenizes text on whitespace/punctuation, lower-cases, and adds
// each token weight times.
func addTokens(tf map[string]int, text string, weight int) {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	for _, token := range tokens {
		tf[token] += weight
	}
}

// manaSymbolWords translates mana symbols into word tokens so costs
// contribute to textual similarity.
var manaSymbolWords = map[string]string{
	"{w}": "white mana",
	"{u}": "blue mana",
	"{b}": "black mana",
	"{r}": "red mana",
	"{g}": "green mana",
	"{c}": "colorless mana",
	"{t}": "tap",
	"{q}": "untap",
	"{e}": "energy",
	"{s}": "snow mana",
	"{x}": "x mana",
}

// expandManaSymbols replaces {W}-style symbols with word tokens. Symbols
// without a word form (generic costs, hybrids) are stripped of braces so the
// tokenizer still sees them.
func expandManaSymbols(text string) string {
	if !strings.Contains(text, "{") {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			b.WriteByte(text[i])
			continue
		}
		end := strings.IndexByte(text[i:], '}')
		if end < 0 {
			b.WriteByte(text[i])
			continue
		}
		symbol := strings.ToLower(text[i : i+end+1])
		if word, ok := manaSymbolWords[symbol]; ok {
			b.WriteString(" " + word + " ")
		} else {
			b.WriteString(" " + strings.Trim(symbol, "{}") + " ")
		}
		i += end
	}
	return b.String()
}

// dot computes the dot product of two sparse vectors. Both are
// L2-normalized, so this is cosine similarity.
func dot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	sum := 0.0
	for term, weight := range a {
		sum += weight * b[term]
	}
	return sum
}

// normalize scales a sparse vector to unit length.
func normalize(vector map[string]float64) map[string]float64 {
	sum := 0.0
	for _, weight := range vector {
		sum += weight * weight
	}
	if sum == 0 {
		return vector
	}
	norm := math.Sqrt(sum)
	for term, weight := range vector {
		vector[term] = weight / norm
	}
	return vector
}
