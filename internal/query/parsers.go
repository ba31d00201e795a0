package query

import (
	"github.com/standardbeagle/geocoder/internal/dictionary"
)

// Candidate is one parse scenario for a component: the component itself
// plus the remaining, unconsumed text that follows it.
type Candidate struct {
	Component Component
	Remainder string
}

// Dictionaries bundles every FST the component parsers consult. A
// geocoder instance builds one of these from its configured word lists
// at startup and shares it across all parses.
type Dictionaries struct {
	Categories            *dictionary.KeyedFST
	NearbyWords           *dictionary.KeyedFST
	IntersectionJoinWords *dictionary.KeyedFST
	Sublocalities         *dictionary.KeyedFST
	Localities            *dictionary.KeyedFST
	Regions               *dictionary.KeyedFST
	Countries             *dictionary.KeyedFST
	StreetSuffixes        *dictionary.KeyedFST
	BrickAndMortarWords   map[string]bool
}

// Parser holds the dictionaries needed to turn text into component
// candidates. It has no other state and is safe for concurrent use.
type Parser struct {
	dicts *Dictionaries
}

func NewParser(dicts *Dictionaries) *Parser {
	return &Parser{dicts: dicts}
}

// matchFullFn returns a function that runs the GreedyLevenshtein(0)
// matcher against dict and reports the length of the matched prefix, exactly the information the
// growing-scenario loop (parseGrowing) needs to stand in for the
// original's parser: &str -> IResult<&str, &str> callback.
func matchFullFn(dict *dictionary.KeyedFST) func(string) (int, bool) {
	return func(s string) (int, bool) {
		matched, _, ok := dictionary.Match(dict, dictionary.GreedyLevenshtein(0), s)
		if !ok {
			return 0, false
		}
		return len(matched), true
	}
}

// parseGrowing is the direct port of the original parser's generic
// parse_component<C>: it finds the matcher's single greedy match over
// the full text, then re-tries the matcher against every growing
// token-bounded prefix up to that length, emitting a candidate for each
// prefix that matches completely (not just as an FST prefix).
func parseGrowing(text string, matchFull func(string) (int, bool), newComponent func(string) Component) []Candidate {
	var out []Candidate

	maxSublistLen, ok := matchFull(text)
	if !ok {
		return out
	}

	sublistLen, sepLen := 0, 0
	for {
		if sublistLen+sepLen > maxSublistLen {
			break
		}
		nextTok, _ := splitTerm(text[sublistLen+sepLen:])
		if nextTok == "" {
			break
		}
		sublistLen += len(nextTok)

		candidateLen := sublistLen + sepLen
		if tokenLen, ok2 := matchFull(text[:candidateLen]); ok2 && tokenLen == candidateLen {
			out = append(out, Candidate{Component: newComponent(text[:candidateLen]), Remainder: text[candidateLen:]})
		}

		sublistLen += sepLen
		sep, _ := splitSep(text[sublistLen:])
		sepLen = len(sep)
	}

	return out
}

func (p *Parser) ParseCategory(text string) []Candidate {
	return parseGrowing(text, matchFullFn(p.dicts.Categories), newCategory)
}

func (p *Parser) ParseNear(text string) []Candidate {
	return parseGrowing(text, matchFullFn(p.dicts.NearbyWords), newNear)
}

func (p *Parser) ParseIntersectionJoinWord(text string) []Candidate {
	return parseGrowing(text, matchFullFn(p.dicts.IntersectionJoinWords), newJoinWord)
}

func (p *Parser) ParseSublocality(text string) []Candidate {
	return parseGrowing(text, matchFullFn(p.dicts.Sublocalities), newSublocality)
}

func (p *Parser) ParseRegion(text string) []Candidate {
	return parseGrowing(text, matchFullFn(p.dicts.Regions), newRegion)
}

func (p *Parser) ParseCountry(text string) []Candidate {
	return parseGrowing(text, matchFullFn(p.dicts.Countries), newCountry)
}

// ParseHouseNumber grows over a leading run of ASCII digits using the
// same generic scenario-growing loop, treating "is the whole candidate
// slice an unbroken digit run" as its matcher.
func (p *Parser) ParseHouseNumber(text string) []Candidate {
	matchFull := func(s string) (int, bool) {
		n := digitRun(s)
		if n == 0 {
			return 0, false
		}
		return n, true
	}
	return parseGrowing(text, matchFull, newHouseNumber)
}

// ParseLocality enumerates every growing token-bounded prefix of text
// as a candidate locality, without any FST constraint — locality names
// are open-vocabulary. Its penalty is resolved lazily against the
// locality dictionary.
func (p *Parser) ParseLocality(text string) []Candidate {
	known := func(s string) bool {
		ok, _ := p.dicts.Localities.Contains(s)
		return ok
	}
	return parseOpenVocabulary(text, func(s string) Component {
		return localityComponent{text: s, knownFn: known}
	})
}

// ParsePlaceName enumerates every growing token-bounded prefix of text
// as a candidate place name, the same open-vocabulary growth as
// ParseLocality but scored against the brick-and-mortar word list.
func (p *Parser) ParsePlaceName(text string) []Candidate {
	brickMortar := func(s string) bool { return p.dicts.BrickAndMortarWords[s] }
	return parseOpenVocabulary(text, func(s string) Component {
		return placeNameComponent{text: s, brickMortarFn: brickMortar}
	})
}

// parseOpenVocabulary grows a candidate one token at a time with no
// dictionary bound, matching LocalityComponent::parse and
// PlaceNameComponent::parse in the original: every token-bounded prefix
// of the input is a valid scenario.
func parseOpenVocabulary(text string, newComponent func(string) Component) []Candidate {
	var out []Candidate

	substringLen, _ := splitTerm(text)
	if substringLen == "" {
		return out
	}
	length := len(substringLen)
	out = append(out, Candidate{Component: newComponent(text[:length]), Remainder: text[length:]})

	sep, _ := splitSep(text[length:])
	sepLen := len(sep)

	for {
		tok, _ := splitTerm(text[length+sepLen:])
		if tok == "" {
			break
		}
		length += len(tok) + sepLen
		out = append(out, Candidate{Component: newComponent(text[:length]), Remainder: text[length:]})

		nextSep, _ := splitSep(text[length:])
		sepLen = len(nextSep)
		if sepLen == 0 {
			if rest := text[length:]; rest == "" {
				break
			}
		}
	}

	return out
}

// ParseRoad implements the street-suffix-seeking scenario generator: it
// always emits the bare first token as a low-confidence scenario, then
// looks ahead up to two more tokens for a recognized street suffix,
// returning a single high-confidence scenario immediately if one is
// found, or an additional decayed-penalty scenario per token if not.
func (p *Parser) ParseRoad(text string) []Candidate {
	var out []Candidate

	firstTok, _ := splitTerm(text)
	if firstTok == "" {
		return out
	}
	substringLen := len(firstTok)

	out = append(out, Candidate{
		Component: roadComponent{text: text[:substringLen], penalty: penaltyMissingStreetSuffix},
		Remainder: text[substringLen:],
	})

	sep, _ := splitSep(text[substringLen:])
	sepLen := len(sep)
	if sepLen == 0 && text[substringLen:] == "" {
		return out
	}

	for i := 1; i < 3; i++ {
		rest := text[substringLen+sepLen:]
		if matched, _, ok := dictionary.Match(p.dicts.StreetSuffixes, dictionary.GreedyLevenshtein(0), rest); ok {
			full := substringLen + sepLen + len(matched)
			return []Candidate{{
				Component: roadComponent{text: text[:full], penalty: penaltyFoundStreetSuffix},
				Remainder: text[full:],
			}}
		}

		nextTok, _ := splitTerm(rest)
		if nextTok == "" {
			break
		}
		substringLen += len(nextTok)
		substringLen += sepLen

		penalty := penaltyMissingStreetSuffix
		for d := 0; d < i; d++ {
			penalty *= penaltyMissingStreetSuffixDecay
		}
		out = append(out, Candidate{
			Component: roadComponent{text: text[:substringLen], penalty: penalty},
			Remainder: text[substringLen:],
		})

		nextSep, _ := splitSep(text[substringLen:])
		sepLen = len(nextSep)
		if sepLen == 0 {
			break
		}
	}

	return out
}

// ParseIntersection composes Road, a join word, and a second Road,
// taking the Cartesian product of each stage's scenarios.
func (p *Parser) ParseIntersection(text string) []Candidate {
	var out []Candidate

	for _, road1 := range p.ParseRoad(text) {
		remainder, firstSep := road1.Remainder, ""
		if s, r := splitSep(remainder); s != "" {
			firstSep, remainder = s, r
		}

		for _, join := range p.ParseIntersectionJoinWord(remainder) {
			remainder2, secondSep := join.Remainder, ""
			if s, r := splitSep(remainder2); s != "" {
				secondSep, remainder2 = s, r
			}

			for _, road2 := range p.ParseRoad(remainder2) {
				totalLen := len(road1.Component.Text()) + len(firstSep) + len(join.Component.Text()) + len(secondSep) + len(road2.Component.Text())
				component := IntersectionComponent{
					RoadA:    road1.Component,
					JoinWord: join.Component,
					RoadB:    road2.Component,
					text:     text[:totalLen],
				}
				out = append(out, Candidate{Component: component, Remainder: trimLeadingSep(road2.Remainder)})
			}
		}
	}

	return out
}

func trimLeadingSep(s string) string {
	_, rest := splitSep(s)
	return rest
}
