// Package ftsindex wraps bleve's full-text index with the schemafied
// POI document the import pipeline produces, used by the search
// façade's lexical candidate-retrieval stage ahead of spatial
// filtering. It is used only through bleve's stable top-level API
// (bleve.New/Index.Index/Index.Search), not its internal scorch or
// directory plumbing — the remote-paged directory in internal/remotedir
// is a separate, purpose-built component rather than a custom
// bleve/tantivy-style Directory implementation (see DESIGN.md).
package ftsindex

import (
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve/v2"

	"github.com/standardbeagle/geocoder/internal/poi"
	"github.com/standardbeagle/geocoder/internal/substitution"
)

// Document is the flattened, indexable form of a POI. Admin-area names
// are folded into single space-joined fields per kind for precise
// locality/region/country matching, while Content carries the full
// schematized content list (names, house number, road permutations,
// unit, admin names, category labels) for general-purpose lexical
// search. S2Cell and ContextCells are stored as decimal strings rather
// than numeric fields: S2 cell IDs exceed 2^53 and bleve's generic
// result map surfaces numeric fields as float64, which would silently
// drop low bits on the way back out of a search.
type Document struct {
	Name         string   `json:"name"`
	Names        []string `json:"names"`
	Categories   []string `json:"categories"`
	Content      []string `json:"content"`
	Locality     string   `json:"locality"`
	Region       string   `json:"region"`
	Country      string   `json:"country"`
	Lat          float64  `json:"lat"`
	Lng          float64  `json:"lng"`
	S2Cell       string   `json:"s2cell"`
	ContextCells []string `json:"context_cells"`
	Source       string   `json:"source"`
}

// S2CellID parses the document's losslessly-stored s2cell term back
// into a uint64 for spatial containment comparisons.
func (d Document) S2CellID() uint64 {
	id, _ := strconv.ParseUint(d.S2Cell, 10, 64)
	return id
}

func toDocument(p poi.POI, indexed poi.Indexed) Document {
	contextCells := make([]string, len(indexed.S2CellParents))
	for i, c := range indexed.S2CellParents {
		contextCells[i] = strconv.FormatUint(c, 10)
	}

	return Document{
		Name:         p.Name(),
		Names:        p.Names,
		Categories:   p.Categories,
		Content:      indexed.Content,
		Locality:     joinNames(p.AdminNamesByKind("locality")),
		Region:       joinNames(p.AdminNamesByKind("region")),
		Country:      joinNames(p.AdminNamesByKind("country")),
		Lat:          p.Lat,
		Lng:          p.Lng,
		S2Cell:       strconv.FormatUint(p.S2Cell, 10),
		ContextCells: contextCells,
		Source:       p.Source,
	}
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += " "
		}
		out += n
	}
	return out
}

// Index wraps a bleve.Index of POI documents.
type Index struct {
	bleve         bleve.Index
	next          uint64
	substitutions *substitution.Registry
}

// New builds a fresh index at path with a mapping tuned for the POI
// document shape above.
func New(path string) (*Index, error) {
	mapping := bleve.NewIndexMapping()
	idx, err := bleve.New(path, mapping)
	if err != nil {
		return nil, fmt.Errorf("ftsindex: creating index at %s: %w", path, err)
	}
	return &Index{bleve: idx}, nil
}

// Open opens a previously-built index at path.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ftsindex: opening index at %s: %w", path, err)
	}
	return &Index{bleve: idx}, nil
}

// SetSubstitutions installs the road-permutation registry used to
// schematize POIs at index time. A nil registry (the default) leaves
// road names unexpanded.
func (idx *Index) SetSubstitutions(reg *substitution.Registry) {
	idx.substitutions = reg
}

// Add schematizes and indexes a single POI. It satisfies
// pipeline.Indexer.
func (idx *Index) Add(p poi.POI) error {
	indexed := poi.Schematize(p, idx.substitutions)
	id := strconv.FormatUint(idx.next, 36)
	idx.next++
	return idx.bleve.Index(id, toDocument(p, indexed))
}

// Commit is a no-op for bleve's default scorch/upsidedown backends,
// which persist each Index call immediately; it exists so Index
// satisfies pipeline.Indexer.
func (idx *Index) Commit() error { return nil }

// Close releases the underlying bleve index.
func (idx *Index) Close() error { return idx.bleve.Close() }

// SearchText runs a lexical query against name/category/content/admin-
// name fields and returns up to limit candidate documents, without any
// spatial filtering — that is the search façade's job.
func (idx *Index) SearchText(query string, limit int) ([]Document, error) {
	q := bleve.NewQueryStringQuery(query)
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.Fields = []string{
		"name", "names", "categories", "content",
		"locality", "region", "country",
		"lat", "lng", "s2cell", "context_cells", "source",
	}

	result, err := idx.bleve.Search(req)
	if err != nil {
		return nil, fmt.Errorf("ftsindex: search failed: %w", err)
	}

	docs := make([]Document, 0, len(result.Hits))
	for _, hit := range result.Hits {
		docs = append(docs, documentFromFields(hit.Fields))
	}
	return docs, nil
}

func documentFromFields(fields map[string]interface{}) Document {
	var doc Document
	if v, ok := fields["name"].(string); ok {
		doc.Name = v
	}
	if v, ok := fields["locality"].(string); ok {
		doc.Locality = v
	}
	if v, ok := fields["region"].(string); ok {
		doc.Region = v
	}
	if v, ok := fields["country"].(string); ok {
		doc.Country = v
	}
	if v, ok := fields["lat"].(float64); ok {
		doc.Lat = v
	}
	if v, ok := fields["lng"].(float64); ok {
		doc.Lng = v
	}
	if v, ok := fields["source"].(string); ok {
		doc.Source = v
	}
	// s2cell is indexed as a decimal string, not a numeric field, so it
	// round-trips exactly instead of losing low bits through bleve's
	// float64 result representation.
	if v, ok := fields["s2cell"].(string); ok {
		doc.S2Cell = v
	}
	return doc
}
