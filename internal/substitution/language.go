package substitution

import (
	"strings"
	"unicode"
)

// detectLanguage picks a language code for sanitized (already lower-
// cased, diacritic-stripped) text. The original implementation uses a
// statistical n-gram classifier (lingua) covering dozens of languages;
// no equivalent library appears anywhere in this module's dependency
// set, and pulling one in only to support the ten languages this
// package's dictionaries actually cover would add a large, mostly-idle
// dependency. Script detection handles the three non-Latin alphabets
// outright; for the Latin-script languages, a small set of highly
// distinctive function words (paralleling the "de"/"der"/"the" style
// markers real detectors key on) picks between them, defaulting to
// English when nothing matches strongly.
func detectLanguage(sanitized string) string {
	for _, r := range sanitized {
		switch {
		case unicode.Is(unicode.Cyrillic, r):
			return "ru"
		case unicode.Is(unicode.Han, r):
			return "zh"
		case unicode.Is(unicode.Arabic, r):
			return "ar"
		}
	}

	tokens := strings.Fields(sanitized)
	if len(tokens) == 0 {
		return "en"
	}

	scores := make(map[string]int, len(languageMarkers))
	for _, tok := range tokens {
		for lang, markers := range languageMarkers {
			if markers[tok] {
				scores[lang]++
			}
		}
	}

	// Ties go to the language listed first, so the result does not
	// depend on map iteration order.
	best, bestScore := "en", 0
	for _, lang := range []string{"ca", "es", "pt", "it", "fr", "de", "en"} {
		if score := scores[lang]; score > bestScore {
			best, bestScore = lang, score
		}
	}
	return best
}

var languageMarkers = map[string]map[string]bool{
	"en": set("the", "street", "avenue", "road", "north", "south", "east", "west"),
	"es": set("el", "la", "de", "calle", "avenida", "norte", "sur"),
	"ca": set("carrer", "del", "dels", "avinguda", "placa"),
	"fr": set("rue", "le", "la", "des", "avenue", "boulevard"),
	"de": set("strasse", "der", "die", "das", "platz", "weg"),
	"it": set("via", "del", "della", "viale", "piazza"),
	"pt": set("rua", "da", "do", "avenida", "travessa"),
}

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
