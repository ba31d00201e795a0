package ftsindex

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/geocoder/internal/poi"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(filepath.Join(t.TempDir(), "idx.bleve"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestToDocumentFlattensAdminAreasByKind(t *testing.T) {
	p := poi.POI{
		Names:      []string{"Moes Tavern"},
		Categories: []string{"bar"},
		Lat:        39.78,
		Lng:        -89.65,
		S2Cell:     12345,
		Source:     "test",
		AdminAreas: []poi.AdminArea{
			{ID: 1, Kind: "locality", Names: []string{"Springfield"}},
			{ID: 2, Kind: "region", Names: []string{"Illinois", "IL"}},
		},
	}
	doc := toDocument(p, poi.Schematize(p, nil))
	assert.Equal(t, "Moes Tavern", doc.Name)
	assert.Equal(t, "Springfield", doc.Locality)
	assert.Equal(t, "Illinois IL", doc.Region)
	assert.Equal(t, "", doc.Country)
	assert.Equal(t, "12345", doc.S2Cell)
	assert.Equal(t, uint64(12345), doc.S2CellID())
	assert.Contains(t, doc.Content, "Moes Tavern")
	assert.Contains(t, doc.Content, "Springfield")
	assert.Contains(t, doc.Content, "bar")
}

func TestAddAndSearchTextFindsIndexedPOI(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Add(poi.POI{
		Names:      []string{"Moes Tavern"},
		Categories: []string{"bar"},
		Lat:        39.78,
		Lng:        -89.65,
		S2Cell:     987654321,
		Source:     "test",
		AdminAreas: []poi.AdminArea{{ID: 1, Kind: "locality", Names: []string{"Springfield"}}},
	}))

	docs, err := idx.SearchText("moes tavern", 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Moes Tavern", docs[0].Name)
	assert.Equal(t, "Springfield", docs[0].Locality)
	assert.Equal(t, uint64(987654321), docs[0].S2CellID())
	assert.InDelta(t, 39.78, docs[0].Lat, 1e-9)
	assert.InDelta(t, -89.65, docs[0].Lng, 1e-9)
}

func TestAddPreservesFullPrecisionS2Cell(t *testing.T) {
	idx := newTestIndex(t)
	// A realistic level-30 S2 cell ID exceeds 2^53, the point at which
	// float64 starts losing integer precision.
	const preciseCell = uint64(1<<53) + 123456789
	require.NoError(t, idx.Add(poi.POI{Names: []string{"Precise Point"}, S2Cell: preciseCell, Source: "test"}))

	docs, err := idx.SearchText("precise point", 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, preciseCell, docs[0].S2CellID())
}

func TestSearchTextRespectsLimit(t *testing.T) {
	idx := newTestIndex(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, idx.Add(poi.POI{Names: []string{"Coffee Shop"}, Source: "test"}))
	}

	docs, err := idx.SearchText("coffee", 2)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestSearchTextNoMatchesReturnsEmpty(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Add(poi.POI{Names: []string{"Moes Tavern"}, Source: "test"}))

	docs, err := idx.SearchText("nonexistent place name", 10)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestOpenReopensAnExistingIndex(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx.bleve")
	idx, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, idx.Add(poi.POI{Names: []string{"Moes Tavern"}, Source: "test"}))
	require.NoError(t, idx.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	docs, err := reopened.SearchText("moes", 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
}
