package classify

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Vocabulary holds the compiled keyword and theme pattern tables used by the
// Classifier. A Vocabulary is immutable once constructed; build one at
// startup and share it freely across goroutines.
type Vocabulary struct {
	keywords []keywordPattern          // sorted by descending keyword length
	themes   map[string][]*regexp.Regexp
}

type keywordPattern struct {
	name string
	re   *regexp.Regexp
}

// defaultKeywords are the literal ability names matched as whole words in
// rules text. Multi-word keywords must stay in this list so they win over
// their single-word substrings ("First strike" over "strike").
var defaultKeywords = []string{
	"Flying", "First strike", "Double strike", "Deathtouch", "Haste",
	"Hexproof", "Indestructible", "Lifelink", "Menace", "Reach",
	"Trample", "Vigilance", "Ward", "Flash", "Defender",
	"Prowess", "Changeling", "Flashback", "Convoke", "Cascade",
	"Landfall", "Proliferate", "Strike",
}

// defaultThemePatterns maps theme names to the text patterns that indicate
// them. A theme is present if any of its patterns matches.
var defaultThemePatterns = map[string][]string{
	"etb": {
		`when(ever)? .* enters the battlefield`,
		`when(ever)? .* enters(,| the battlefield)`,
	},
	"death_trigger": {
		`when(ever)? .* dies`,
		`when this creature dies`,
	},
	"graveyard": {
		`from (your|a|the) graveyard`,
		`in (your|a|each) graveyard`,
		`mill`,
		`surveil`,
	},
	"counters": {
		`\+1/\+1 counter`,
		`proliferate`,
		`enters .* with .* counters?`,
	},
	"sacrifice": {
		`sacrifices? (a|an|another|this|target)`,
		`when(ever)? you sacrifice`,
	},
	"lifegain": {
		`gains? .* life`,
		`lifelink`,
		`when(ever)? you gain life`,
	},
	"tokens": {
		`creates? .* tokens?`,
	},
	"ramp": {
		`search your library for (a|up to two) .*land`,
		`add \{[wubrgc]\}`,
		`add (one|two|three) mana`,
	},
	"removal": {
		`destroy target`,
		`exile target (creature|permanent|artifact|enchantment)`,
		`deals? \d+ damage to (any target|target creature)`,
	},
	"tutor": {
		`search your library for a card`,
		`search your library for (a|an) (creature|instant|sorcery|artifact|enchantment)`,
	},
	"protection": {
		`hexproof`,
		`indestructible`,
		`protection from`,
		`gains? shroud`,
	},
	"combat": {
		`when(ever)? .* attacks`,
		`when(ever)? .* blocks`,
		`deals combat damage`,
	},
	"evasion": {
		`can't be blocked`,
		`flying`,
		`menace`,
		`shadow`,
		`fear\b`,
	},
	"copy": {
		`copy target`,
		`create a copy`,
		`becomes a copy`,
	},
	"exile": {
		`exile (it|that card|target|the top)`,
		`exiles? .* until`,
	},
	"discard": {
		`discards? (a|two|three|that) cards?`,
		`discards? (their|your) hand`,
	},
	"draw": {
		`draws? (a|two|three|x) cards?`,
		`draws? cards? equal`,
	},
	"landfall": {
		`landfall`,
		`when(ever)? a land enters`,
	},
	"artifacts": {
		`when(ever)? an artifact enters`,
		`artifacts? you control`,
		`create a (treasure|clue|food|blood)`,
	},
	"spellslinger": {
		`when(ever)? you cast (a|an) (instant|sorcery|noncreature)`,
		`prowess`,
		`magecraft`,
	},
	"land_matters": {
		`lands? you control`,
		`play an additional land`,
		`landfall`,
	},
}

// inflectionSuffixes catch inflected forms of a mechanic name when scanning
// generic rules text ("sacrifices", "sacrificing").
const inflectionSuffixes = `(?:s|es|ed|ing|er)?`

// DefaultVocabulary compiles the built-in keyword and theme tables.
func DefaultVocabulary() *Vocabulary {
	vocab, err := NewVocabulary(defaultKeywords, defaultThemePatterns)
	if err != nil {
		// The built-in tables are compile-time constants; a failure here
		// is a programming error.
		panic(err)
	}
	return vocab
}

// NewVocabulary compiles keyword and theme tables into a Vocabulary.
// Keywords are matched case-insensitively as whole words, longest first.
func NewVocabulary(keywords []string, themePatterns map[string][]string) (*Vocabulary, error) {
	vocab := &Vocabulary{
		themes: make(map[string][]*regexp.Regexp, len(themePatterns)),
	}

	// Sort descending by length so multi-word keywords are tried before
	// their single-word substrings.
	sorted := make([]string, len(keywords))
	copy(sorted, keywords)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})

	for _, keyword := range sorted {
		re, err := compileKeywordPattern(keyword)
		if err != nil {
			return nil, fmt.Errorf("failed to compile keyword %q: %w", keyword, err)
		}
		vocab.keywords = append(vocab.keywords, keywordPattern{name: keyword, re: re})
	}

	for theme, patterns := range themePatterns {
		for _, pattern := range patterns {
			re, err := regexp.Compile(`(?i)` + pattern)
			if err != nil {
				return nil, fmt.Errorf("failed to compile theme %q pattern %q: %w", theme, pattern, err)
			}
			vocab.themes[theme] = append(vocab.themes[theme], re)
		}
	}

	return vocab, nil
}

// compileKeywordPattern builds a whole-word matcher for an ability name.
// Both sides require a non-word boundary so "battle" never matches inside
// "battlefield"; the suffix group catches inflected forms.
func compileKeywordPattern(keyword string) (*regexp.Regexp, error) {
	words := strings.Fields(keyword)
	quoted := make([]string, len(words))
	for i, word := range words {
		quoted[i] = regexp.QuoteMeta(word)
	}
	pattern := `(?i)\b` + strings.Join(quoted, `\s+`) + inflectionSuffixes + `\b`
	return regexp.Compile(pattern)
}

// ThemeNames returns the names of all themes in the vocabulary, sorted.
func (v *Vocabulary) ThemeNames() []string {
	names := make([]string, 0, len(v.themes))
	for name := range v.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
