package query

import "sort"

// Query is the result of enumerating every plausible parse of an input
// string, sorted most-confident first.
type Query struct {
	Input     string
	Scenarios []Scenario
}

// componentParsers lists every component parser in the fixed order the
// enumerator tries them at each recursion step, exactly matching the
// original parser's COMPONENT_PARSERS ordering. Category and Near are
// attempted before the more expensive/ambiguous open-vocabulary
// parsers, and IntersectionJoinWord is last because it only ever
// produces useful scenarios as part of ParseIntersection.
func (p *Parser) componentParsers() []func(string) []Candidate {
	return []func(string) []Candidate{
		p.ParseCategory,
		p.ParseNear,
		p.ParseHouseNumber,
		p.ParseRoad,
		p.ParseIntersection,
		p.ParseSublocality,
		p.ParseLocality,
		p.ParseRegion,
		p.ParseCountry,
		p.ParsePlaceName,
		p.ParseIntersectionJoinWord,
	}
}

// Parse enumerates every scenario for input and returns them sorted by
// descending score. Callers that need to bound the cost of a
// pathological input enforce their own cap on the scenario count or on
// how many of the returned, already-ranked scenarios they evaluate
// (e.g. search.Options.MaxScenarios) rather than Parse truncating
// enumeration itself.
func (p *Parser) Parse(input string) Query {
	scenarios := p.parseRecurse(nil, input)

	sort.SliceStable(scenarios, func(i, j int) bool {
		return Score(scenarios[i]) > Score(scenarios[j])
	})

	return Query{Input: input, Scenarios: scenarios}
}

func (p *Parser) parseRecurse(prefix []Component, remaining string) []Scenario {
	if Score(Scenario{Components: prefix}) == 0 {
		return nil
	}

	if remaining == "" {
		return []Scenario{{Components: append([]Component{}, prefix...)}}
	}

	var out []Scenario
	for _, parse := range p.componentParsers() {
		for _, candidate := range parse(remaining) {
			newPrefix := append(append([]Component{}, prefix...), candidate.Component)
			newRemaining := trimLeadingSep(candidate.Remainder)
			out = append(out, p.parseRecurse(newPrefix, newRemaining)...)
		}
	}
	return out
}

// Best returns the highest-scoring scenario, or the zero Scenario and
// false if no scenario was found.
func (q Query) Best() (Scenario, bool) {
	if len(q.Scenarios) == 0 {
		return Scenario{}, false
	}
	return q.Scenarios[0], true
}
