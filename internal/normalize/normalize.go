// Package normalize folds free-text query and road-name tokens down to
// a lower-case, diacritic-stripped, whitespace-collapsed form ahead of
// dictionary lookup, and provides a Porter2 Stemmer for category and
// place-name tokens. The query parser's dictionary lookups do not call
// the Stemmer.
package normalize

import (
	"strings"
	"unicode"

	"github.com/surgebase/porter2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Sanitize lowercases field and strips diacritics, collapsing any run of
// whitespace to a single space. It is the Go analogue of the original
// deunicode-plus-lowercase-plus-whitespace-collapse pass applied before
// substitution-dictionary lookup.
func Sanitize(field string) string {
	stripped, _, err := transform.String(diacriticStripper, field)
	if err != nil {
		stripped = field
	}
	lower := strings.ToLower(stripped)
	return collapseWhitespace(lower)
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// Stemmer applies Porter2 stemming to tokens above a minimum length,
// leaving short tokens and explicitly excluded words untouched. It
// mirrors the teacher codebase's stemming wrapper, scoped down to the
// operations the geocoder's category/place-name normalization needs.
type Stemmer struct {
	minLength  int
	exclusions map[string]bool
}

// NewStemmer builds a Stemmer. A minLength of 0 or less defaults to 3.
func NewStemmer(minLength int, exclusions []string) *Stemmer {
	if minLength <= 0 {
		minLength = 3
	}
	excl := make(map[string]bool, len(exclusions))
	for _, w := range exclusions {
		excl[strings.ToLower(w)] = true
	}
	return &Stemmer{minLength: minLength, exclusions: excl}
}

// Stem returns the Porter2 stem of word, or word unchanged if it is
// shorter than the configured minimum length or explicitly excluded.
func (s *Stemmer) Stem(word string) string {
	lower := strings.ToLower(word)
	if len(lower) < s.minLength || s.exclusions[lower] {
		return lower
	}
	return porter2.Stem(lower)
}

// StemTokens stems every token in tokens, preserving order.
func (s *Stemmer) StemTokens(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = s.Stem(t)
	}
	return out
}
