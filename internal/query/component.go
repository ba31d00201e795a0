// Package query parses a free-text search string into a ranked set of
// typed component sequences (house number, road, locality, region,
// country, category, place name, intersection, ...) the way the
// original recursive-descent/scenario-enumerating parser does, then
// scores each candidate parse so the search façade can try the
// most-plausible interpretations first.
package query

import (
	"math"
	"strings"
)

// Kind identifies a component's grammatical role in a parsed query.
type Kind int

const (
	KindHouseNumber Kind = iota
	KindRoad
	KindIntersection
	KindIntersectionJoinWord
	KindLocality
	KindSublocality
	KindRegion
	KindCountry
	KindPlaceName
	KindCategory
	KindNear
)

func (k Kind) String() string {
	switch k {
	case KindHouseNumber:
		return "house_number"
	case KindRoad:
		return "road"
	case KindIntersection:
		return "intersection"
	case KindIntersectionJoinWord:
		return "intersection_join_word"
	case KindLocality:
		return "locality"
	case KindSublocality:
		return "sublocality"
	case KindRegion:
		return "region"
	case KindCountry:
		return "country"
	case KindPlaceName:
		return "place_name"
	case KindCategory:
		return "category"
	case KindNear:
		return "near"
	default:
		return "unknown"
	}
}

// Component is a single typed piece of a parsed query. Penalty is a
// multiplicative score contribution; lower means less confident.
// Intersection components expose their two road subcomponents via
// Subcomponents so the scorer can apply intersection-specific rules.
type Component interface {
	Kind() Kind
	Text() string
	Penalty() float64
	Subcomponents() []Component
}

type simpleComponent struct {
	kind    Kind
	text    string
	penalty float64
}

func (c simpleComponent) Kind() Kind                { return c.kind }
func (c simpleComponent) Text() string              { return c.text }
func (c simpleComponent) Penalty() float64          { return c.penalty }
func (c simpleComponent) Subcomponents() []Component { return nil }

func newSimple(kind Kind, text string, penalty float64) Component {
	return simpleComponent{kind: kind, text: text, penalty: penalty}
}

// Fixed-penalty component constructors, mirroring define_component!'s
// constant-penalty instantiations in the original parser.
func newHouseNumber(text string) Component { return newSimple(KindHouseNumber, text, 1.0) }
func newCategory(text string) Component    { return newSimple(KindCategory, text, 1.0) }
func newRegion(text string) Component      { return newSimple(KindRegion, text, 1.0) }
func newCountry(text string) Component     { return newSimple(KindCountry, text, 1.0) }
func newJoinWord(text string) Component    { return newSimple(KindIntersectionJoinWord, text, 1.0) }

func newSublocality(text string) Component { return newSimple(KindSublocality, text, 0.9) }

// newNear's penalty grows with the token count: 1.5^tokenCount.
func newNear(text string) Component {
	tokens := strings.Fields(text)
	return newSimple(KindNear, text, math.Pow(1.5, float64(len(tokens))))
}

// RoadComponent carries a variable penalty set at parse time, since the
// penalty depends on whether (and how far into the text) a recognized
// street suffix was found.
type roadComponent struct {
	text    string
	penalty float64
}

func (c roadComponent) Kind() Kind                { return KindRoad }
func (c roadComponent) Text() string              { return c.text }
func (c roadComponent) Penalty() float64          { return c.penalty }
func (c roadComponent) Subcomponents() []Component { return nil }

const (
	penaltyMissingStreetSuffix      = 0.5
	penaltyMissingStreetSuffixDecay = 0.8
	penaltyFoundStreetSuffix        = 1.2
)

// localityComponent's penalty depends on whether its text is itself a
// recognized locality name, looked up at penalty-evaluation time rather
// than baked in at parse time (the locality dictionary may not be ready
// until after all scenarios are enumerated).
type localityComponent struct {
	text    string
	knownFn func(string) bool
}

func (c localityComponent) Kind() Kind                { return KindLocality }
func (c localityComponent) Text() string              { return c.text }
func (c localityComponent) Subcomponents() []Component { return nil }

func (c localityComponent) Penalty() float64 {
	if c.knownFn != nil && c.knownFn(c.text) {
		return 1.1
	}
	return 0.5
}

// placeNameComponent's penalty rewards exact matches against a
// brick-and-mortar business name list and otherwise decays gently with
// token count (0.99^tokenCount), discouraging (but not forbidding)
// very long free-text place names from outscoring shorter, more
// specific interpretations.
type placeNameComponent struct {
	text         string
	brickMortarFn func(string) bool
}

func (c placeNameComponent) Kind() Kind                { return KindPlaceName }
func (c placeNameComponent) Text() string              { return c.text }
func (c placeNameComponent) Subcomponents() []Component { return nil }

func (c placeNameComponent) Penalty() float64 {
	if c.brickMortarFn != nil && c.brickMortarFn(strings.ToLower(c.text)) {
		return 1.1
	}
	return math.Pow(0.99, float64(len(strings.Fields(c.text))))
}

// IntersectionComponent joins two roads with a join word ("and", "&",
// "at", ...). Its penalty is the weaker of its two roads' penalties,
// scaled by 5 — an unambiguous intersection is a strong positional
// signal even when neither road alone parsed confidently.
type IntersectionComponent struct {
	RoadA, RoadB Component
	JoinWord     Component
	text         string
}

func (c IntersectionComponent) Kind() Kind  { return KindIntersection }
func (c IntersectionComponent) Text() string { return c.text }

func (c IntersectionComponent) Penalty() float64 {
	weaker := c.RoadA.Penalty()
	if c.RoadB.Penalty() < weaker {
		weaker = c.RoadB.Penalty()
	}
	return weaker * intersectionPenaltyScale
}

func (c IntersectionComponent) Subcomponents() []Component {
	return []Component{c.RoadA, c.JoinWord, c.RoadB}
}

const intersectionPenaltyScale = 5.0
