package search

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/standardbeagle/geocoder/internal/dictionary"
	"github.com/standardbeagle/geocoder/internal/ftsindex"
	"github.com/standardbeagle/geocoder/internal/poi"
	"github.com/standardbeagle/geocoder/internal/query"
	"github.com/standardbeagle/geocoder/internal/substitution"
)

func buildDict(t *testing.T, name string, words ...string) *dictionary.KeyedFST {
	t.Helper()
	d, err := dictionary.New(name, words)
	if err != nil {
		t.Fatalf("dictionary.New(%s): %v", name, err)
	}
	return d
}

func testParser(t *testing.T) *query.Parser {
	t.Helper()
	dicts := &query.Dictionaries{
		Categories:            buildDict(t, "categories", "coffee", "cafe", "bakery"),
		NearbyWords:           buildDict(t, "near", "near", "by"),
		IntersectionJoinWords: buildDict(t, "join", "and", "at"),
		Sublocalities:         buildDict(t, "sublocalities", "downtown"),
		Localities:            buildDict(t, "localities", "springfield", "shelbyville"),
		Regions:               buildDict(t, "regions", "il", "illinois"),
		Countries:             buildDict(t, "countries", "usa", "us"),
		StreetSuffixes:        buildDict(t, "suffixes", "street", "avenue"),
		BrickAndMortarWords:   map[string]bool{"moes tavern": true},
	}
	return query.NewParser(dicts)
}

func testIndex(t *testing.T) *ftsindex.Index {
	t.Helper()
	dir := t.TempDir()
	idx, err := ftsindex.New(filepath.Join(dir, "idx.bleve"))
	if err != nil {
		t.Fatalf("ftsindex.New: %v", err)
	}
	t.Cleanup(func() { idx.Close() })

	pois := []poi.POI{
		{
			Names:      []string{"Moes Tavern"},
			Categories: []string{"bar"},
			Lat:        39.78,
			Lng:        -89.65,
			S2Cell:     12345,
			AdminAreas: []poi.AdminArea{{ID: 1, Kind: "locality", Names: []string{"Springfield"}}},
			Source:     "test",
		},
		{
			Names:      []string{"Springfield"},
			Categories: []string{"locality"},
			Lat:        39.78,
			Lng:        -89.65,
			S2Cell:     12345,
			Source:     "test",
		},
	}
	for _, p := range pois {
		if err := idx.Add(p); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	return idx
}

func TestSearchFindsLexicalMatch(t *testing.T) {
	parser := testParser(t)
	idx := testIndex(t)
	facade := New(parser, idx, nil)

	results, err := facade.Search(context.Background(), "moes tavern springfield", DefaultOptions())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatalf("expected at least one result")
	}
}

func TestSearchEmptyInputReturnsNoResults(t *testing.T) {
	parser := testParser(t)
	idx := testIndex(t)
	facade := New(parser, idx, nil)

	results, err := facade.Search(context.Background(), "", DefaultOptions())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results for empty input, got %d", len(results))
	}
}

func TestSearchWidensRoadTermWithSubstitutions(t *testing.T) {
	parser := testParser(t)
	idx := testIndex(t)

	reg := substitution.NewRegistry()
	reg.Register("en", substitution.ParseDict("street|st\n"))

	facade := New(parser, idx, reg)

	term := facade.roadTerm("main st")
	if !strings.Contains(term, "OR") {
		t.Fatalf("expected roadTerm to widen %q into an OR group, got %q", "main st", term)
	}
}
