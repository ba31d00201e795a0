// Package admin resolves the administrative areas (locality, region,
// country, neighbourhood, ...) covering a point,
// caching results keyed by a coarsened S2 cell so repeated lookups in
// the same neighborhood skip the point-in-polygon service entirely.
package admin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/standardbeagle/geocoder/internal/admincache"
	geoerrors "github.com/standardbeagle/geocoder/internal/errors"
	"github.com/standardbeagle/geocoder/internal/geocell"
	"github.com/standardbeagle/geocoder/internal/poi"
)

// CellLevel is the S2 level admin-cell cache keys are truncated to,
// matching the original query_pip.rs resolver.
const CellLevel = 15

// Resolver answers "which admin areas cover this point" queries against
// a point-in-polygon HTTP service, caching both the cell-to-admin-IDs
// mapping and each admin ID's resolved kind/names/languages.
type Resolver struct {
	cache       *admincache.Cache
	pipEndpoint string
	httpClient  *retryablehttp.Client
}

func NewResolver(cache *admincache.Cache, pipEndpoint string) *Resolver {
	client := retryablehttp.NewClient()
	client.HTTPClient = cleanhttp.DefaultPooledClient()
	client.RetryMax = 3
	client.Logger = nil

	return &Resolver{cache: cache, pipEndpoint: pipEndpoint, httpClient: client}
}

// Resolve fills in p.AdminAreas for the POI's location, using the cache
// when available and falling back to the PIP service otherwise. Newly
// resolved results are written back into the cache and flushed, so the
// kind lookups within this call and later calls for the same cell or
// admin ID read them without another HTTP request. The {planet,
// marketarea, county, timezone} placetypes are discarded before an
// admin ID is ever persisted; every other surviving placetype is kept.
func (r *Resolver) Resolve(ctx context.Context, p *poi.POI) error {
	cell := geocell.Truncate(p.S2Cell, CellLevel)

	ids, cached, err := r.cache.AdminsForCell(cell)
	if err != nil {
		return geoerrors.NewAdminError(cell, "cache lookup for cell failed").WithCause(err)
	}
	if !cached {
		admins, err := r.fetchAdminIDs(ctx, p.Lat, p.Lng)
		if err != nil {
			return geoerrors.NewAdminError(cell, "pip fetch failed").WithCause(err)
		}

		ids = make([]uint64, 0, len(admins))
		for _, a := range admins {
			ids = append(ids, a.ID)
		}
		if err := r.cache.PutAdminsForCell(cell, ids); err != nil {
			return geoerrors.NewAdminError(cell, "cache write for cell failed").WithCause(err)
		}
		for _, a := range admins {
			if err := r.cache.PutKindForAdmin(a.ID, a.Kind); err != nil {
				return geoerrors.NewAdminError(a.ID, "cache kind write failed").WithCause(err)
			}
		}
		if err := r.cache.Flush(); err != nil {
			return geoerrors.NewAdminError(cell, "cache flush failed").WithCause(err)
		}
	}

	areas := make([]poi.AdminArea, 0, len(ids))
	seen := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		area, err := r.resolveArea(ctx, id)
		if err != nil {
			return err
		}
		areas = append(areas, area)
	}
	if err := r.cache.Flush(); err != nil {
		return geoerrors.NewAdminError(cell, "cache flush failed").WithCause(err)
	}

	p.AdminAreas = areas
	return nil
}

func (r *Resolver) resolveArea(ctx context.Context, id uint64) (poi.AdminArea, error) {
	names, cached, err := r.cache.NamesForAdmin(id)
	if err != nil {
		return poi.AdminArea{}, geoerrors.NewAdminError(id, "cache name lookup failed").WithCause(err)
	}

	if !cached {
		fetchedNames, fetchedLangs, err := r.fetchAdminNames(ctx, id)
		if err != nil {
			return poi.AdminArea{}, geoerrors.NewAdminError(id, "pip name fetch failed").WithCause(err)
		}
		names = fetchedNames

		if err := r.cache.PutNamesForAdmin(id, names); err != nil {
			return poi.AdminArea{}, err
		}
		if err := r.cache.PutLangsForAdmin(id, fetchedLangs); err != nil {
			return poi.AdminArea{}, err
		}
	}

	kind, _, err := r.cache.KindForAdmin(id)
	if err != nil {
		return poi.AdminArea{}, geoerrors.NewAdminError(id, "cache kind lookup failed").WithCause(err)
	}

	return poi.AdminArea{ID: id, Kind: kind, Names: names}, nil
}

func (r *Resolver) fetchAdminIDs(ctx context.Context, lat, lng float64) ([]resolvedAdmin, error) {
	endpoint := fmt.Sprintf("%s/query/pip?lon=%s&lat=%s",
		r.pipEndpoint,
		strconv.FormatFloat(lng, 'f', -1, 64),
		strconv.FormatFloat(lat, 'f', -1, 64))

	body, err := r.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return parsePIPAdmins(body)
}

func (r *Resolver) fetchAdminNames(ctx context.Context, id uint64) (names, langs []string, err error) {
	endpoint := fmt.Sprintf("%s/place/wof/%d/name", r.pipEndpoint, id)
	body, err := r.get(ctx, endpoint)
	if err != nil {
		return nil, nil, err
	}
	return parsePlaceNames(body)
}

func (r *Resolver) get(ctx context.Context, endpoint string) ([]byte, error) {
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid admin endpoint %q: %w", endpoint, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("admin service returned status %d for %s", resp.StatusCode, endpoint)
	}

	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			break
		}
	}
	return buf, nil
}
