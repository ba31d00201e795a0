package query

// Scenario is a fully parsed sequence of components covering an entire
// query string. The scoring rules see its top-level components, so an
// intersection counts as one component, not as its two roads.
type Scenario struct {
	Components []Component
}

// flatten walks a scenario's components in order, expanding any
// IntersectionComponent into its road/join-word subcomponents, exactly
// as the original's QueryScenario::as_vec does.
func (s Scenario) flatten() []Component {
	out := make([]Component, 0, len(s.Components))
	for _, c := range s.Components {
		if subs := c.Subcomponents(); len(subs) > 0 {
			out = append(out, subs...)
			continue
		}
		out = append(out, c)
	}
	return out
}

// scenarioScorer is one independently-applied multiplicative rule.
type scenarioScorer func(flat []Component) float64

var scenarioScorers = []scenarioScorer{
	maxOneRoad,
	maxOneHouseNum,
	houseNumRoadTogether,
	maxOneLocality,
	maxOneRegion,
	maxOneCountry,
	countryNotBeforeLocality,
	regionNotBeforeLocality,
	countryNotBeforeRegion,
	housenumNotBeforePlacename,
	nakedRoadUnlikely,
	noNakedHouseNum,
	sublocalityMustPrecedeLocality,
	nearNotLastIfNotCategory,
}

// Score computes the scenario's combined multiplicative score: the
// product of its components' own Penalty() values times every
// positional scoring rule's multiplier. A score of 0 means the scenario
// is structurally implausible and should be discarded outright.
func Score(s Scenario) float64 {
	flat := s.Components

	score := 1.0
	for _, c := range s.Components {
		score *= c.Penalty()
	}
	for _, scorer := range scenarioScorers {
		score *= scorer(flat)
		if score == 0 {
			return 0
		}
	}
	return score
}

// Penalizing multiple roads in one query is fine because intersections
// have their own, dedicated component.
func maxOneRoad(flat []Component) float64 {
	seen := false
	for _, c := range flat {
		if c.Kind() == KindRoad {
			if seen {
				return 0
			}
			seen = true
		}
	}
	return 1.0
}

func maxOneHouseNum(flat []Component) float64 {
	seen := false
	for _, c := range flat {
		if c.Kind() == KindHouseNumber {
			if seen {
				return 0
			}
			seen = true
		}
	}
	return 1.0
}

func houseNumRoadTogether(flat []Component) float64 {
	count := 0
	for _, c := range flat {
		if c.Kind() == KindHouseNumber || c.Kind() == KindRoad {
			count++
		} else if count != 0 && count != 2 {
			return 0
		}
	}
	return 1.0
}

func maxOneLocality(flat []Component) float64 {
	seen := false
	for _, c := range flat {
		if c.Kind() == KindLocality {
			if seen {
				return 0
			}
			seen = true
		}
	}
	return 1.0
}

func maxOneRegion(flat []Component) float64 {
	seen := false
	for _, c := range flat {
		if c.Kind() == KindRegion {
			if seen {
				return 0
			}
			seen = true
		}
	}
	return 1.0
}

func maxOneCountry(flat []Component) float64 {
	seen := false
	for _, c := range flat {
		if c.Kind() == KindCountry {
			if seen {
				return 0
			}
			seen = true
		}
	}
	return 1.0
}

func countryNotBeforeLocality(flat []Component) float64 {
	hasLocality, countryFirst := false, false
	for _, c := range flat {
		if c.Kind() == KindCountry && !hasLocality {
			countryFirst = true
		}
		if c.Kind() == KindLocality {
			hasLocality = true
		}
	}
	if countryFirst && hasLocality {
		return 0
	}
	return 1.0
}

func regionNotBeforeLocality(flat []Component) float64 {
	hasLocality, regionFirst := false, false
	for _, c := range flat {
		if c.Kind() == KindRegion && !hasLocality {
			regionFirst = true
		}
		if c.Kind() == KindLocality {
			hasLocality = true
		}
	}
	if regionFirst && hasLocality {
		return 0
	}
	return 1.0
}

func countryNotBeforeRegion(flat []Component) float64 {
	hasRegion, countryFirst := false, false
	for _, c := range flat {
		if c.Kind() == KindCountry && !hasRegion {
			countryFirst = true
		}
		if c.Kind() == KindRegion {
			hasRegion = true
		}
	}
	if countryFirst && hasRegion {
		return 0
	}
	return 1.0
}

func housenumNotBeforePlacename(flat []Component) float64 {
	hasPlaceName, houseNumFirst := false, false
	for _, c := range flat {
		if c.Kind() == KindHouseNumber && !hasPlaceName {
			houseNumFirst = true
		}
		if c.Kind() == KindPlaceName {
			hasPlaceName = true
		}
	}
	if houseNumFirst && hasPlaceName {
		return 0.01
	}
	return 1.0
}

func nakedRoadUnlikely(flat []Component) float64 {
	hasRoad, hasHouseNum := false, false
	for _, c := range flat {
		if c.Kind() == KindRoad {
			hasRoad = true
		}
		if c.Kind() == KindHouseNumber {
			hasHouseNum = true
		}
	}
	if hasRoad && !hasHouseNum {
		return 0.05
	}
	return 1.0
}

// noNakedHouseNum must not return 0: a zero multiplier would cause the
// enumerator's early-exit-on-zero optimization to discard the scenario
// outright, whereas a lone house number is merely unlikely, not
// impossible (e.g. someone searching just "123").
func noNakedHouseNum(flat []Component) float64 {
	hasRoad, hasHouseNum := false, false
	for _, c := range flat {
		if c.Kind() == KindRoad {
			hasRoad = true
		}
		if c.Kind() == KindHouseNumber {
			hasHouseNum = true
		}
	}
	if !hasRoad && hasHouseNum {
		return 0.01
	}
	return 1.0
}

func sublocalityMustPrecedeLocality(flat []Component) float64 {
	lastIsSublocality := false
	for _, c := range flat {
		if lastIsSublocality && c.Kind() != KindLocality {
			return 0.01
		}
		lastIsSublocality = c.Kind() == KindSublocality
	}
	return 1.0
}

// "On" and "in" are also country/region codes, so a trailing "near"
// component is only expected right after a category.
func nearNotLastIfNotCategory(flat []Component) float64 {
	if len(flat) == 0 {
		return 1.0
	}
	last := flat[len(flat)-1]
	if last.Kind() != KindNear {
		return 1.0
	}
	if len(flat) < 2 {
		return 0.01
	}
	secondToLast := flat[len(flat)-2]
	if secondToLast.Kind() != KindCategory {
		return 0.01
	}
	return 1.0
}
