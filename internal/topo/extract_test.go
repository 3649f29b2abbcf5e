package topo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pictomat/pictomat/internal/canvas"
	"github.com/pictomat/pictomat/internal/grid"
)

func extract(t *testing.T, art string) *Topology {
	t.Helper()
	top := Extract(canvas.MustParse(nil, art))
	require.NoError(t, top.Validate())
	return top
}

func TestExtractSingleCell(t *testing.T) {
	top := extract(t, `R`)
	require.Len(t, top.Regions, 1)

	r := top.Regions[0]
	assert.Equal(t, RegionID(0), r.ID)
	assert.Equal(t, []grid.Point{{X: 0, Y: 0}}, r.Cells)
	assert.Equal(t, grid.Pt(0, 0), r.Anchor())
	require.Len(t, r.Borders, 1)
	assert.Equal(t, 4, r.Outer().Len())
	assert.Equal(t, 0, r.HoleCount())
	assert.True(t, r.Outer().Closed())
}

func TestExtractMergesConnectedSameColor(t *testing.T) {
	top := extract(t, `
		RRG
		RGG
	`)
	require.Len(t, top.Regions, 2)

	r, ok := top.RegionAt(grid.Pt(0, 1))
	require.True(t, ok)
	assert.Equal(t, 3, r.Size())
	assert.Equal(t, grid.Pt(0, 0), r.Anchor())

	g, ok := top.RegionAt(grid.Pt(2, 0))
	require.True(t, ok)
	assert.Equal(t, 3, g.Size())
	assert.NotEqual(t, r.ID, g.ID)
}

func TestExtractDiagonalIsNotConnected(t *testing.T) {
	top := extract(t, `
		R.
		.R
	`)
	require.Len(t, top.Regions, 2, "cells touching only at a corner are separate regions")

	a, _ := top.RegionAt(grid.Pt(0, 0))
	b, _ := top.RegionAt(grid.Pt(1, 1))
	assert.NotEqual(t, a.ID, b.ID)
	_, adjacent := top.Adjacent(a.ID, b.ID)
	assert.False(t, adjacent)
}

func TestExtractPinchCorner(t *testing.T) {
	// The two R arms meet only diagonally at the center, so they stay one
	// region (connected around the left) but the border must not cross the
	// pinch corner diagonally.
	top := extract(t, `
		RR.
		R..
		RRR
	`)
	require.Len(t, top.Regions, 1)
	r := top.Regions[0]
	assert.Equal(t, 6, r.Size())
	assert.Equal(t, 0, r.HoleCount())
	assert.True(t, r.Outer().Closed())
}

func TestExtractHole(t *testing.T) {
	top := extract(t, `
		RRR
		R.R
		RRR
	`)
	require.Len(t, top.Regions, 1)
	r := top.Regions[0]
	assert.Equal(t, 8, r.Size())
	assert.Equal(t, 1, r.HoleCount())
	assert.Equal(t, 12, r.Outer().Len())
	assert.Equal(t, 4, r.Holes()[0].Len())
}

func TestExtractFilledHoleAdjacency(t *testing.T) {
	top := extract(t, `
		RRR
		RGR
		RRR
	`)
	require.Len(t, top.Regions, 2)

	ring, _ := top.RegionAt(grid.Pt(0, 0))
	core, _ := top.RegionAt(grid.Pt(1, 1))
	assert.Equal(t, 1, ring.HoleCount())
	assert.Equal(t, 0, core.HoleCount())

	c, ok := top.Adjacent(ring.ID, core.ID)
	require.True(t, ok)
	assert.True(t, c.ViaHole, "the core sits in the ring's hole")
	assert.False(t, c.ViaOuter)

	back, ok := top.Adjacent(core.ID, ring.ID)
	require.True(t, ok)
	assert.True(t, back.ViaOuter, "seen from the core the contact is its outer border")
	assert.False(t, back.ViaHole)
}

func TestExtractSideBySideAdjacency(t *testing.T) {
	top := extract(t, `RG`)
	r, _ := top.RegionAt(grid.Pt(0, 0))
	g, _ := top.RegionAt(grid.Pt(1, 0))

	c, ok := top.Adjacent(r.ID, g.ID)
	require.True(t, ok)
	assert.True(t, c.ViaOuter)
	assert.False(t, c.ViaHole)
	assert.Equal(t, 1, top.Degree(r.ID))
}

func TestExtractIgnoresMarkerAlphaForConnectivity(t *testing.T) {
	// A solid-marked cell and a plain cell of the same RGB form one region.
	top := extract(t, `*RR`)
	require.Len(t, top.Regions, 1)
	assert.Equal(t, 2, top.Regions[0].Size())
}

func TestExtractRegionIDsFollowAnchorOrder(t *testing.T) {
	top := extract(t, `
		GR
		BR
	`)
	require.Len(t, top.Regions, 3)
	assert.Equal(t, grid.Pt(0, 0), top.Regions[0].Anchor())
	assert.Equal(t, grid.Pt(1, 0), top.Regions[1].Anchor())
	assert.Equal(t, grid.Pt(0, 1), top.Regions[2].Anchor())
}

func TestExtractDeterministic(t *testing.T) {
	art := `
		RRGGB
		RYG.B
		RRGBB
	`
	a := extract(t, art)
	b := extract(t, art)
	require.Equal(t, len(a.Regions), len(b.Regions))
	for i := range a.Regions {
		assert.Equal(t, a.Regions[i].Cells, b.Regions[i].Cells)
		assert.Equal(t, a.Regions[i].Borders, b.Regions[i].Borders)
		assert.Equal(t, a.Contacts(a.Regions[i].ID), b.Contacts(b.Regions[i].ID))
	}
}

func TestCongruence(t *testing.T) {
	top := extract(t, `
		RR..GG
		.R..G.
	`)
	r, _ := top.RegionAt(grid.Pt(0, 0))
	g, _ := top.RegionAt(grid.Pt(4, 0))
	assert.False(t, r.CongruentTo(g), "mirrored L shapes are not translates")

	top2 := extract(t, `
		RR.GG
		.R..G
	`)
	r2, _ := top2.RegionAt(grid.Pt(0, 0))
	g2, _ := top2.RegionAt(grid.Pt(3, 0))
	assert.True(t, r2.CongruentTo(g2))
	assert.Equal(t, grid.Pt(3, 0), r2.OffsetTo(g2))
}

func TestRecolorFastPath(t *testing.T) {
	top := extract(t, `RGB`)
	g, _ := top.RegionAt(grid.Pt(1, 0))

	yellow := canvas.DefaultPalette['Y']
	next, ok := Recolor(top, g.ID, yellow)
	require.True(t, ok)
	require.NoError(t, next.Validate())

	got, _ := next.RegionAt(grid.Pt(1, 0))
	assert.Equal(t, yellow, got.Color)
	assert.Equal(t, g.Cells, got.Cells)

	// Original topology untouched.
	old, _ := top.RegionAt(grid.Pt(1, 0))
	assert.Equal(t, canvas.DefaultPalette['G'], old.Color)
}

func TestRecolorRefusesMerge(t *testing.T) {
	top := extract(t, `RGB`)
	g, _ := top.RegionAt(grid.Pt(1, 0))
	_, ok := Recolor(top, g.ID, canvas.DefaultPalette['R'])
	assert.False(t, ok, "recoloring next to a same-colored neighbor must force re-extraction")
}

func TestValidateCatchesOverlap(t *testing.T) {
	top := extract(t, `RG`)
	// Corrupt the owner index to simulate a broken rewrite.
	top.owner[grid.Pt(0, 0)] = top.owner[grid.Pt(1, 0)]
	err := top.Validate()
	require.Error(t, err)
	var inv *InvariantError
	assert.ErrorAs(t, err, &inv)
}
