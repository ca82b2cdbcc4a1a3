// Package analysis normalizes Portuguese business text identically at index and query time.
package analysis

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Language is the stemming language declared on the index.
const Language = "portuguese"

// Token is a single analyzed term.
type Token struct {
	Text string
	// Keyword marks a protected domain term: never stemmed, never fuzzed.
	Keyword bool
}

// Analyzer lowercases, folds diacritics, drops stopwords and marks protected keywords.
// Stemming is left to the index, which applies the Snowball stemmer for Language.
type Analyzer struct {
	stopwords map[string]struct{}
	keywords  map[string]struct{}
}

// New creates the Brazilian Portuguese analyzer.
func New() *Analyzer {
	return &Analyzer{
		stopwords: toSet(brazilianStopwords),
		keywords:  toSet(protectedKeywords),
	}
}

// Fold lowercases s and removes combining marks ("Extração" -> "extracao").
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Tokens splits s into analyzed tokens, preserving order and duplicates.
func (a *Analyzer) Tokens(s string) []Token {
	words := strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]Token, 0, len(words))
	for _, w := range words {
		if _, ok := a.keywords[w]; ok {
			out = append(out, Token{Text: w, Keyword: true})
			continue
		}
		if _, ok := a.stopwords[w]; ok {
			continue
		}
		out = append(out, Token{Text: w})
	}
	return out
}

// Normalize returns the analyzed form of s as a space-joined string.
// This is the value written into the index's full-text fields.
func (a *Analyzer) Normalize(s string) string {
	tokens := a.Tokens(s)
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

// Keywords returns the distinct protected keywords found in s, sorted.
func (a *Analyzer) Keywords(s string) []string {
	seen := make(map[string]struct{})
	for _, t := range a.Tokens(s) {
		if t.Keyword {
			seen[t.Text] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Stopwords returns the stopword list in folded form.
func (a *Analyzer) Stopwords() []string {
	out := make([]string, 0, len(a.stopwords))
	for w := range a.stopwords {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// FuzzyDistance returns the edit distance tolerated for a term of the given text,
// scaled to its length: 0 up to 2 runes, 1 up to 5 runes, 2 beyond.
func FuzzyDistance(term string) int {
	n := len([]rune(term))
	switch {
	case n <= 2:
		return 0
	case n <= 5:
		return 1
	default:
		return 2
	}
}

func toSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[Fold(w)] = struct{}{}
	}
	return m
}
