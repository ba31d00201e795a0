// Package search is the geocoder's query façade: it parses free text
// into ranked component scenarios, resolves any "near" component to a
// coordinate via a nested lexical lookup, turns that into an S2 cell
// covering, and combines lexical candidate retrieval from the
// full-text index with the spatial containment predicate from
// internal/geocell to produce ranked results — mirroring the original
// search pipeline's two-stage "find lexical candidates, then filter
// and re-rank spatially" structure.
package search

import (
	"context"
	"strings"

	"github.com/standardbeagle/geocoder/internal/ftsindex"
	"github.com/standardbeagle/geocoder/internal/geocell"
	"github.com/standardbeagle/geocoder/internal/query"
	"github.com/standardbeagle/geocoder/internal/substitution"
)

// DefaultNearRadiusMeters bounds a "near X" clause when X resolves to a
// single point rather than a region: a nameless buffer around the
// resolved point, matching the radius the original search pipeline
// uses for point-based proximity queries.
const DefaultNearRadiusMeters = 5000.0

// DefaultMaxScenarios bounds how many of the parser's ranked scenarios
// the façade evaluates against the index, since a long or ambiguous
// input can otherwise enumerate far more scenarios than are worth the
// cost of a full lexical+spatial pass.
const DefaultMaxScenarios = 8

// DefaultCandidateLimit bounds how many lexical candidates are pulled
// from the full-text index per scenario before spatial filtering.
const DefaultCandidateLimit = 50

// Result is a single ranked match: the matched document plus the
// parse score of the scenario that produced it.
type Result struct {
	Document ftsindex.Document
	Score    float64
}

// Facade combines query parsing with full-text and spatial retrieval.
type Facade struct {
	parser  *query.Parser
	index   *ftsindex.Index
	substitutions *substitution.Registry
}

// New builds a search façade over an already-populated full-text index.
// substitutions may be nil, in which case road components contribute
// only their literal text to the lexical query.
func New(parser *query.Parser, index *ftsindex.Index, substitutions *substitution.Registry) *Facade {
	return &Facade{parser: parser, index: index, substitutions: substitutions}
}

// Options tunes a single Search call.
type Options struct {
	MaxScenarios    int
	CandidateLimit  int
	ResultLimit     int
	NearRadiusMeters float64
}

// DefaultOptions returns the façade's default tuning.
func DefaultOptions() Options {
	return Options{
		MaxScenarios:     DefaultMaxScenarios,
		CandidateLimit:   DefaultCandidateLimit,
		ResultLimit:      10,
		NearRadiusMeters: DefaultNearRadiusMeters,
	}
}

// Search parses input, evaluates its highest-scoring scenarios against
// the full-text index, applies spatial filtering for any "near"
// component, and returns results ranked by parse score then index
// relevance order within each scenario.
func (f *Facade) Search(ctx context.Context, input string, opts Options) ([]Result, error) {
	if opts.CandidateLimit <= 0 {
		opts.CandidateLimit = DefaultCandidateLimit
	}
	if opts.ResultLimit <= 0 {
		opts.ResultLimit = 10
	}
	if opts.NearRadiusMeters <= 0 {
		opts.NearRadiusMeters = DefaultNearRadiusMeters
	}

	parsed := f.parser.Parse(input)
	scenarios := parsed.Scenarios
	if opts.MaxScenarios > 0 && len(scenarios) > opts.MaxScenarios {
		scenarios = scenarios[:opts.MaxScenarios]
	}

	var results []Result
	seen := make(map[string]bool)

	for _, scenario := range scenarios {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		score := query.Score(scenario)
		if score == 0 {
			continue
		}

		lexical := f.lexicalQuery(scenario)
		if lexical == "" {
			continue
		}

		docs, err := f.index.SearchText(lexical, opts.CandidateLimit)
		if err != nil {
			return nil, err
		}

		covering, ok := f.nearCovering(scenario, opts.NearRadiusMeters)
		for _, doc := range docs {
			if ok && !withinCovering(doc.S2CellID(), covering) {
				continue
			}
			key := doc.Name + "|" + doc.Locality + "|" + doc.Source
			if seen[key] {
				continue
			}
			seen[key] = true
			results = append(results, Result{Document: doc, Score: score})
		}
	}

	if len(results) > opts.ResultLimit {
		results = results[:opts.ResultLimit]
	}
	return results, nil
}

// lexicalQuery joins every non-near, non-join-word component's text
// into the free-text query the full-text index evaluates: house
// number, road, locality, region, country, place name, and category
// terms all contribute, since each is a signal about what the POI's
// name or admin hierarchy should contain. Road components are widened
// via the substitution registry so that, e.g., a query for "main st"
// also matches a POI indexed as "main street".
func (f *Facade) lexicalQuery(s query.Scenario) string {
	var terms []string
	for _, c := range flattenComponents(s.Components) {
		switch c.Kind() {
		case query.KindNear, query.KindIntersectionJoinWord:
			continue
		case query.KindRoad:
			if term := f.roadTerm(c.Text()); term != "" {
				terms = append(terms, term)
			}
		default:
			text := strings.TrimSpace(c.Text())
			if text != "" {
				terms = append(terms, text)
			}
		}
	}
	return strings.Join(terms, " ")
}

// roadTerm expands road text into its permitted spellings and folds
// them into a single bleve query-string OR group, so any one spelling
// is enough to match.
func (f *Facade) roadTerm(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if f.substitutions == nil {
		return text
	}

	variants := f.substitutions.PermuteRoad(text)
	if len(variants) <= 1 {
		return text
	}

	quoted := make([]string, 0, len(variants))
	for _, v := range variants {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		quoted = append(quoted, "\""+v+"\"")
	}
	if len(quoted) == 0 {
		return text
	}
	return "(" + strings.Join(quoted, " OR ") + ")"
}

func flattenComponents(components []query.Component) []query.Component {
	var out []query.Component
	for _, c := range components {
		if sub := c.Subcomponents(); sub != nil {
			out = append(out, flattenComponents(sub)...)
			continue
		}
		out = append(out, c)
	}
	return out
}

// nearCovering resolves a scenario's "near" component, if any, to an S2
// cell covering by running its text as a nested lexical lookup against
// the same index and building a radius covering around the best hit.
func (f *Facade) nearCovering(s query.Scenario, radiusMeters float64) ([]uint64, bool) {
	var near query.Component
	for _, c := range flattenComponents(s.Components) {
		if c.Kind() == query.KindNear {
			near = c
			break
		}
	}
	if near == nil {
		return nil, false
	}

	docs, err := f.index.SearchText(near.Text(), 1)
	if err != nil || len(docs) == 0 {
		return nil, false
	}

	anchor := docs[0]
	covering := geocell.CoveringCells(anchor.Lat, anchor.Lng, radiusMeters, geocell.MaxLevel, 16)
	return covering, true
}

func withinCovering(leafCell uint64, covering []uint64) bool {
	for _, cell := range covering {
		if geocell.Contains(leafCell, cell) {
			return true
		}
	}
	return false
}
