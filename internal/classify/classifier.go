package classify

import (
	"sort"
	"strings"
	"sync"
)

// TagSet is a set of normalized ability/theme tags attached to a card.
type TagSet map[string]bool

// Contains reports whether the set includes the given tag.
func (s TagSet) Contains(tag string) bool {
	return s[tag]
}

// Sorted returns the tags in ascending order for deterministic output.
func (s TagSet) Sorted() []string {
	tags := make([]string, 0, len(s))
	for tag := range s {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Classifier maps raw rules text to ability and theme tags using an injected
// vocabulary. Classification is pure; the optional read-through cache only
// memoizes results keyed by the normalized text.
type Classifier struct {
	vocab *Vocabulary

	mu    sync.RWMutex
	cache map[string]TagSet
}

// NewClassifier creates a classifier over the given vocabulary.
func NewClassifier(vocab *Vocabulary) *Classifier {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Classifier{
		vocab: vocab,
		cache: make(map[string]TagSet),
	}
}

// Classify returns the full set of ability and theme tags for rules text.
// Empty text yields an empty set, never an error.
func (c *Classifier) Classify(rulesText string) TagSet {
	key := normalizeText(rulesText)
	if key == "" {
		return TagSet{}
	}

	c.mu.RLock()
	cached, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	tags := TagSet{}
	for _, keyword := range c.KeywordsIn(rulesText) {
		tags[strings.ToLower(keyword)] = true
	}
	for theme := range c.Themes(rulesText) {
		tags[theme] = true
	}

	c.mu.Lock()
	c.cache[key] = tags
	c.mu.Unlock()

	return tags
}

// Themes returns the set of theme tags whose patterns match the rules text.
// Empty text yields an empty set.
func (c *Classifier) Themes(rulesText string) TagSet {
	themes := TagSet{}
	if normalizeText(rulesText) == "" {
		return themes
	}

	for theme, patterns := range c.vocab.themes {
		for _, re := range patterns {
			if re.MatchString(rulesText) {
				themes[theme] = true
				break
			}
		}
	}

	return themes
}

// KeywordsIn returns the ability keywords present in the rules text, in
// order of appearance. Matching is greedy longest-keyword-first: once a
// keyword matches, its span is masked so shorter keywords cannot match
// inside it ("First strike" is never also reported as "Strike").
func (c *Classifier) KeywordsIn(rulesText string) []string {
	if normalizeText(rulesText) == "" {
		return nil
	}

	type match struct {
		pos     int
		keyword string
	}

	masked := []byte(rulesText)
	var matches []match

	for _, kw := range c.vocab.keywords {
		locs := kw.re.FindAllIndex(masked, -1)
		if locs == nil {
			continue
		}
		found := false
		for _, loc := range locs {
			// Skip spans already claimed by a longer keyword.
			if isMasked(masked, loc[0], loc[1]) {
				continue
			}
			for i := loc[0]; i < loc[1]; i++ {
				masked[i] = 0
			}
			if !found {
				matches = append(matches, match{pos: loc[0], keyword: kw.name})
				found = true
			}
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].pos < matches[j].pos
	})

	keywords := make([]string, len(matches))
	for i, m := range matches {
		keywords[i] = m.keyword
	}
	return keywords
}

// isMasked reports whether any byte in [start, end) was already claimed.
func isMasked(text []byte, start, end int) bool {
	for i := start; i < end; i++ {
		if text[i] == 0 {
			return true
		}
	}
	return false
}

// normalizeText lower-cases and trims text for cache keys and emptiness
// checks.
func normalizeText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
