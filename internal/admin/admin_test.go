package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/geocoder/internal/admincache"
	"github.com/standardbeagle/geocoder/internal/geocell"
	"github.com/standardbeagle/geocoder/internal/poi"
)

func TestParsePIPAdminsDropsPlanetMarketareaCountyTimezone(t *testing.T) {
	body := []byte(`[
		{"source":"wof","id":"1","class":"admin","type":"planet"},
		{"source":"wof","id":"2","class":"admin","type":"marketarea"},
		{"source":"wof","id":"3","class":"admin","type":"county"},
		{"source":"wof","id":"4","class":"admin","type":"timezone"},
		{"source":"wof","id":"5","class":"admin","type":"locality"},
		{"source":"wof","id":"6","class":"admin","type":"borough"},
		{"source":"wof","id":"bad","class":"admin","type":"locality"}
	]`)
	admins, err := parsePIPAdmins(body)
	require.NoError(t, err)
	require.Len(t, admins, 2)
	assert.Equal(t, resolvedAdmin{ID: 5, Kind: "locality"}, admins[0])
	assert.Equal(t, resolvedAdmin{ID: 6, Kind: "borough"}, admins[1])
}

func TestParsePlaceNamesFiltersTagAndLanguageAndDedupes(t *testing.T) {
	body := []byte(`[
		{"lang":"eng","tag":"preferred","abbr":false,"name":"Springfield"},
		{"lang":"eng","tag":"preferred","abbr":false,"name":"Springfield"},
		{"lang":"eng","tag":"colloquial","abbr":false,"name":"Springfield-Town"},
		{"lang":"jpn","tag":"preferred","abbr":false,"name":"スプリングフィールド"},
		{"lang":"spa","tag":"default","abbr":false,"name":"Resorte"}
	]`)
	names, langs, err := parsePlaceNames(body)
	require.NoError(t, err)
	assert.Equal(t, []string{"springfield", "resorte"}, names)
	assert.Equal(t, []string{"eng", "spa"}, langs)
}

func openTestCache(t *testing.T) *admincache.Cache {
	t.Helper()
	cache, err := admincache.Open(filepath.Join(t.TempDir(), "admin.db"), admincache.DefaultBufferSize)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestResolveFetchesAndCachesAdminAreas(t *testing.T) {
	var pipRequests, nameRequests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/query/pip":
			pipRequests++
			assert.NotEmpty(t, r.URL.Query().Get("lon"))
			assert.NotEmpty(t, r.URL.Query().Get("lat"))
			w.Write([]byte(`[
				{"source":"wof","id":"42","class":"admin","type":"locality"},
				{"source":"wof","id":"43","class":"admin","type":"region"}
			]`))
		case "/place/wof/42/name":
			nameRequests++
			w.Write([]byte(`[{"lang":"eng","tag":"preferred","abbr":false,"name":"Springfield"}]`))
		case "/place/wof/43/name":
			nameRequests++
			w.Write([]byte(`[{"lang":"eng","tag":"preferred","abbr":false,"name":"Illinois"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	cache := openTestCache(t)
	resolver := NewResolver(cache, server.URL)

	p := &poi.POI{Lat: 39.78, Lng: -89.65, S2Cell: geocell.FromLatLng(39.78, -89.65, geocell.MaxLevel)}
	require.NoError(t, resolver.Resolve(context.Background(), p))

	require.Len(t, p.AdminAreas, 2)
	assert.Equal(t, "locality", p.AdminAreas[0].Kind)
	assert.Equal(t, []string{"springfield"}, p.AdminAreas[0].Names)
	assert.Equal(t, "region", p.AdminAreas[1].Kind)
	assert.Equal(t, 1, pipRequests)
	assert.Equal(t, 2, nameRequests)

	// A second resolution for a point in the same truncated cell must
	// hit the cache rather than the PIP service again, and the kind
	// must survive the round trip through the cache.
	p2 := &poi.POI{Lat: 39.7801, Lng: -89.6501, S2Cell: geocell.FromLatLng(39.7801, -89.6501, geocell.MaxLevel)}
	require.NoError(t, resolver.Resolve(context.Background(), p2))
	assert.Equal(t, 1, pipRequests)
	assert.Equal(t, 2, nameRequests)
	require.Len(t, p2.AdminAreas, 2)
	assert.Equal(t, "locality", p2.AdminAreas[0].Kind)
	assert.Equal(t, "region", p2.AdminAreas[1].Kind)
}

func TestResolveKeepsNonDroppedKinds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/query/pip":
			w.Write([]byte(`[
				{"source":"wof","id":"1","class":"admin","type":"planet"},
				{"source":"wof","id":"2","class":"admin","type":"neighbourhood"}
			]`))
		case "/place/wof/2/name":
			w.Write([]byte(`[{"lang":"eng","tag":"preferred","abbr":false,"name":"Downtown"}]`))
		}
	}))
	defer server.Close()

	cache := openTestCache(t)
	resolver := NewResolver(cache, server.URL)

	p := &poi.POI{Lat: 1, Lng: 1, S2Cell: geocell.FromLatLng(1, 1, geocell.MaxLevel)}
	require.NoError(t, resolver.Resolve(context.Background(), p))

	require.Len(t, p.AdminAreas, 1)
	assert.Equal(t, "neighbourhood", p.AdminAreas[0].Kind)
	assert.Equal(t, []string{"downtown"}, p.AdminAreas[0].Names)
}
