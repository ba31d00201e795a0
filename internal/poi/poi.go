// Package poi defines the point-of-interest record the import pipeline
// produces (the ingest form), the flat admin-area list that resolution
// (Open Question #2) settled on as canonical, and the derived indexed
// form the full-text index actually stores.
package poi

import (
	"github.com/standardbeagle/geocoder/internal/geocell"
	"github.com/standardbeagle/geocoder/internal/substitution"
)

// AdminArea is one resolved administrative area covering a POI's
// location: a WhosOnFirst-style place (country, region, locality,
// neighbourhood, ...; the resolver drops planet, county, timezone and
// market area) identified by ID, kind, and its resolved display names.
type AdminArea struct {
	ID    uint64
	Kind  string
	Names []string
}

// POI is the ingest-form point of interest the import pipeline reads
// from its source, before admin enrichment or schematizing.
type POI struct {
	// Names holds every known name for the POI (the primary name plus
	// any aliases); Name returns the first.
	Names      []string
	Categories []string

	HouseNumber string
	Road        string
	Unit        string

	Tags map[string]string

	Lat, Lng float64
	S2Cell   uint64

	// AdminAreas is the flat, deduplicated list of administrative
	// areas covering this POI's location. This is the canonical
	// representation (see Open Question #2): callers that want a
	// specific level (locality, region, country, ...) filter this list
	// by Kind rather than reading dedicated fields.
	AdminAreas []AdminArea

	Source string
}

// Name returns the POI's primary name: its first listed name, or the
// empty string if it has none.
func (p POI) Name() string {
	if len(p.Names) == 0 {
		return ""
	}
	return p.Names[0]
}

// AdminNamesByKind collects every name from every admin area of the
// given kind, in resolution order. Callers commonly use this to build
// the locality/region/country strings a schemafied index document
// needs from the flat admin list.
func (p POI) AdminNamesByKind(kind string) []string {
	var names []string
	for _, area := range p.AdminAreas {
		if area.Kind == kind {
			names = append(names, area.Names...)
		}
	}
	return names
}

// Indexed is a POI's derived, index-ready form: the original field
// groups (names, house number, road permutations, unit, admin names,
// and category labels) concatenated into a single searchable content
// list, plus the full chain of S2 cell ancestors from the root down to
// (but not including) the POI's own leaf cell.
type Indexed struct {
	Content       []string
	S2Cell        uint64
	S2CellParents []uint64
	Categories    []string
	Tags          map[string]string
}

// Schematize derives a POI's indexed form. Road names are expanded into
// every spelling substitutions permits; a nil registry leaves the road
// name unexpanded. Ancestor cells are collected for every level from 0
// up to (but not including) the POI's own S2 cell level, so the list is
// strictly increasing in level.
func Schematize(p POI, substitutions *substitution.Registry) Indexed {
	var content []string
	content = append(content, p.Names...)
	if p.HouseNumber != "" {
		content = append(content, p.HouseNumber)
	}
	if p.Road != "" {
		content = append(content, roadPermutations(p.Road, substitutions)...)
	}
	if p.Unit != "" {
		content = append(content, p.Unit)
	}
	for _, area := range p.AdminAreas {
		content = append(content, area.Names...)
	}
	content = append(content, p.Categories...)

	ancestors := geocell.Ancestors(p.S2Cell)
	var parents []uint64
	if len(ancestors) > 0 {
		parents = ancestors[:len(ancestors)-1]
	}

	return Indexed{
		Content:       content,
		S2Cell:        p.S2Cell,
		S2CellParents: parents,
		Categories:    p.Categories,
		Tags:          p.Tags,
	}
}

func roadPermutations(road string, substitutions *substitution.Registry) []string {
	if substitutions == nil {
		return []string{road}
	}
	variants := substitutions.PermuteRoad(road)
	if len(variants) == 0 {
		return []string{road}
	}
	return variants
}
