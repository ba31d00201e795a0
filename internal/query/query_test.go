package query

import (
	"testing"

	"github.com/standardbeagle/geocoder/internal/dictionary"
)

func buildDict(t *testing.T, name string, words []string) *dictionary.KeyedFST {
	t.Helper()
	d, err := dictionary.New(name, words)
	if err != nil {
		t.Fatalf("building dictionary %s: %v", name, err)
	}
	return d
}

func testParser(t *testing.T) *Parser {
	t.Helper()
	dicts := &Dictionaries{
		Categories:            buildDict(t, "categories", []string{"grocery store", "coffee shop"}),
		NearbyWords:           buildDict(t, "near", []string{"near", "by"}),
		IntersectionJoinWords: buildDict(t, "join", []string{"and", "at", "&"}),
		Sublocalities:         buildDict(t, "sublocality", []string{"capitol hill"}),
		Localities:            buildDict(t, "locality", []string{"st louis", "seattle"}),
		Regions:               buildDict(t, "region", []string{"missouri", "wa"}),
		Countries:             buildDict(t, "country", []string{"united states"}),
		StreetSuffixes:        buildDict(t, "suffix", []string{"st", "street", "ave", "avenue"}),
		BrickAndMortarWords:   map[string]bool{"fred meyer": true},
	}
	return NewParser(dicts)
}

func TestParseIntersection(t *testing.T) {
	p := testParser(t)
	q := p.Parse("broadway and pine")
	best, ok := q.Best()
	if !ok {
		t.Fatalf("expected at least one scenario")
	}
	if len(best.Components) != 1 || best.Components[0].Kind() != KindIntersection {
		t.Fatalf("expected a single intersection component, got %#v", best.Components)
	}
}

func TestParseAddress(t *testing.T) {
	p := testParser(t)
	q := p.Parse("123 main st, st louis, missouri, united states")
	best, ok := q.Best()
	if !ok {
		t.Fatalf("expected at least one scenario")
	}
	kinds := make([]Kind, len(best.Components))
	for i, c := range best.Components {
		kinds[i] = c.Kind()
	}
	want := []Kind{KindHouseNumber, KindRoad, KindLocality, KindRegion, KindCountry}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d components, got %d: %v", len(want), len(kinds), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("component %d: expected %v, got %v (%v)", i, want[i], kinds[i], kinds)
		}
	}
}

func TestParseLocalityRegion(t *testing.T) {
	p := testParser(t)
	q := p.Parse("seattle, wa")
	best, ok := q.Best()
	if !ok {
		t.Fatalf("expected at least one scenario")
	}
	if len(best.Components) != 2 || best.Components[0].Kind() != KindLocality || best.Components[1].Kind() != KindRegion {
		t.Fatalf("unexpected components: %#v", best.Components)
	}
}

func TestParsePlaceName(t *testing.T) {
	p := testParser(t)
	q := p.Parse("fred meyer")
	best, ok := q.Best()
	if !ok {
		t.Fatalf("expected at least one scenario")
	}
	if len(best.Components) != 1 || best.Components[0].Kind() != KindPlaceName {
		t.Fatalf("unexpected components: %#v", best.Components)
	}
}

func TestScoreZeroForTwoHouseNumbers(t *testing.T) {
	scenario := Scenario{Components: []Component{
		newHouseNumber("123"),
		newHouseNumber("456"),
	}}
	if Score(scenario) != 0 {
		t.Fatalf("expected zero score for two house numbers in one scenario")
	}
}
