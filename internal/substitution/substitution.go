// Package substitution expands a road name into every spelling
// permitted by a per-language dictionary of token equivalence classes
// (e.g. "street" <-> "st" <-> "str"), producing the Cartesian product of
// substitutions across the road's tokens.
package substitution

import (
	"bufio"
	"strings"

	"github.com/standardbeagle/geocoder/internal/normalize"
)

// Dict is a table of token equivalence classes: every token appearing
// together on one input line (separated by '|') becomes a substitution
// candidate for every other token on that line.
type Dict struct {
	subs map[string][]string
}

// ParseDict builds a Dict from a word-list document: one equivalence
// class per line, tokens within a line separated by '|'. Token order
// within the output equivalence class follows first-seen order, and a
// token's own name is always included among its substitutions.
func ParseDict(contents string) *Dict {
	classes := make(map[string][]string)
	scanner := bufio.NewScanner(strings.NewReader(contents))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		components := strings.Split(line, "|")
		for _, component := range components {
			existing := classes[component]
			for _, candidate := range components {
				if !contains(existing, candidate) {
					existing = append(existing, candidate)
				}
			}
			classes[component] = existing
		}
	}
	return &Dict{subs: classes}
}

func contains(haystack []string, needle string) bool {
	for _, h := range haystack {
		if h == needle {
			return true
		}
	}
	return false
}

// Substitute returns token along with every token in its equivalence
// class, token itself always first.
func (d *Dict) Substitute(token string) []string {
	out := []string{token}
	if classmates, ok := d.subs[token]; ok {
		for _, c := range classmates {
			if !contains(out, c) {
				out = append(out, c)
			}
		}
	}
	return out
}

// ApplySubs recursively expands remaining into every permutation formed
// by substituting each of its tokens per dict, prefixing each
// permutation with prefix (already-decided tokens, space-joined on
// completion).
func ApplySubs(prefix []string, remaining []string, dict *Dict) []string {
	if len(remaining) == 0 {
		return []string{strings.Join(prefix, " ")}
	}

	var permutations []string
	for _, sub := range dict.Substitute(remaining[0]) {
		nextPrefix := append(append([]string{}, prefix...), sub)
		permutations = append(permutations, ApplySubs(nextPrefix, remaining[1:], dict)...)
	}
	return permutations
}

// Registry maps a language code to its street-type substitution
// dictionary, one per registered language. A language with no entry
// has no dictionary; PermuteRoad then returns the sanitized road.
type Registry struct {
	dicts map[string]*Dict
}

func NewRegistry() *Registry {
	return &Registry{dicts: make(map[string]*Dict)}
}

// Register adds a language's dictionary, keyed by a short language
// code ("en", "es", "de", ...).
func (r *Registry) Register(lang string, dict *Dict) {
	r.dicts[lang] = dict
}

// PermuteRoad sanitizes road, detects its language, and returns every
// spelling permitted by that language's substitution dictionary. If no
// dictionary is registered for the detected (or guessed) language, the
// sanitized road is returned unchanged, as a single-element slice.
func (r *Registry) PermuteRoad(road string) []string {
	sanitized := normalize.Sanitize(road)
	lang := detectLanguage(sanitized)

	dict, ok := r.dicts[lang]
	if !ok {
		return []string{sanitized}
	}

	tokens := strings.Fields(sanitized)
	return ApplySubs(nil, tokens, dict)
}
