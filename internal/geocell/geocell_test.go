package geocell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromLatLngAndLevel(t *testing.T) {
	cell := FromLatLng(39.78, -89.65, 15)
	assert.Equal(t, 15, Level(cell))
}

func TestTruncateCollapsesToCoarserAncestor(t *testing.T) {
	leaf := FromLatLng(39.78, -89.65, MaxLevel)
	coarse := Truncate(leaf, 15)
	assert.Equal(t, 15, Level(coarse))
	assert.Equal(t, FromLatLng(39.78, -89.65, 15), coarse)
}

func TestAncestorsCoversEveryLevelUpToCellsOwn(t *testing.T) {
	cell := FromLatLng(39.78, -89.65, 10)
	ancestors := Ancestors(cell)
	require.Len(t, ancestors, 11)
	for level, id := range ancestors {
		assert.Equal(t, level, Level(id))
	}
	assert.Equal(t, cell, ancestors[len(ancestors)-1])
}

func TestContainsHoldsForEveryAncestorOfALeafCell(t *testing.T) {
	leaf := FromLatLng(39.78, -89.65, MaxLevel)
	for _, ancestor := range Ancestors(leaf) {
		assert.True(t, Contains(leaf, ancestor))
	}
}

func TestContainsRejectsAnUnrelatedCell(t *testing.T) {
	leaf := FromLatLng(39.78, -89.65, MaxLevel)
	other := FromLatLng(51.5, -0.12, 10) // London, far from Springfield
	assert.False(t, Contains(leaf, other))
}

func TestCoveringCellsContainsTheCenterPoint(t *testing.T) {
	lat, lng := 39.78, -89.65
	covering := CoveringCells(lat, lng, 5000.0, MaxLevel, 16)
	require.NotEmpty(t, covering)

	leaf := FromLatLng(lat, lng, MaxLevel)
	contained := false
	for _, c := range covering {
		if Contains(leaf, c) {
			contained = true
			break
		}
	}
	assert.True(t, contained, "covering should contain the cell it was built around")
}
