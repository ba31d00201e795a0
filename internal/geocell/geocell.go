// Package geocell wraps github.com/golang/geo's S2 cell machinery with
// the handful of operations the geocoder needs: converting a point to a
// cell ID at a given level, walking a cell's ancestors, and testing
// whether a stored cell ID falls within another cell's coverage using
// the bitmask containment test the original spatial query used.
package geocell

import (
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// MaxLevel is the finest S2 cell level used anywhere in the index, 30,
// matching the original's spatial query implementation.
const MaxLevel = 30

// FromLatLng returns the S2 cell ID for a point at the given level.
func FromLatLng(lat, lng float64, level int) uint64 {
	cell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lng))
	return uint64(cell.Parent(level))
}

// Truncate returns the ancestor of cellID at the given level. It is used
// to collapse a POI's precise S2 cell to a coarser cell (for example
// level 15) before using it as an admin-area cache key.
func Truncate(cellID uint64, level int) uint64 {
	return uint64(s2.CellID(cellID).Parent(level))
}

// Level returns the S2 level encoded in a cell ID.
func Level(cellID uint64) int {
	return s2.CellID(cellID).Level()
}

// Ancestors returns every ancestor of cellID from level 0 up to and
// including cellID's own level, in increasing-level order. An invalid
// cell ID (such as 0, for a POI with no cell) has no ancestors.
func Ancestors(cellID uint64) []uint64 {
	cell := s2.CellID(cellID)
	if !cell.IsValid() {
		return nil
	}
	level := cell.Level()
	out := make([]uint64, 0, level+1)
	for l := 0; l <= level; l++ {
		out = append(out, uint64(cell.Parent(l)))
	}
	return out
}

// lsbMask and msbMask implement the bit-interleaved S2 containment test
// used by the spatial predicate: a stored leaf cell s2cell is contained
// in a query cell of the given level iff
//
//	s2cell & msbMask(level) == value
//
// where value is the query cell's own ID with its trailing bits masked
// off the same way. This mirrors the original implementation's
// SpatialWeight/SpatialScorer bit math exactly.
func lsbMask(level int) uint64 {
	return uint64(1) << uint(2+2*(MaxLevel-level))
}

func msbMask(level int) uint64 {
	return ^(lsbMask(level) - 1)
}

// Contains reports whether leafCell (a precise, typically level-30, S2
// cell ID) falls within the coverage of queryCell (a cell ID at any
// level <= MaxLevel).
func Contains(leafCell, queryCell uint64) bool {
	level := s2.CellID(queryCell).Level()
	mask := msbMask(level)
	return leafCell&mask == queryCell&mask
}

// CoveringCells returns an S2 cap covering for the disc centered at
// (lat, lng) with the given radius in meters, at the given max level and
// cell budget. Used by the search façade to turn a "near" query
// component into a bounded set of cells for the spatial predicate.
func CoveringCells(lat, lng, radiusMeters float64, maxLevel, maxCells int) []uint64 {
	center := s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lng))
	radius := s1AngleFromMeters(radiusMeters)
	capRegion := s2.CapFromCenterAngle(center, radius)

	coverer := &s2.RegionCoverer{MaxLevel: maxLevel, MaxCells: maxCells}
	covering := coverer.Covering(capRegion)

	out := make([]uint64, 0, len(covering))
	for _, c := range covering {
		out = append(out, uint64(c))
	}
	return out
}

// s1AngleFromMeters approximates an angular radius using the mean
// Earth radius, matching the precision the original's PIP/S2 queries
// operate at.
func s1AngleFromMeters(meters float64) s1.Angle {
	const earthRadiusMeters = 6371010.0
	return s1.Angle(meters / earthRadiusMeters)
}
