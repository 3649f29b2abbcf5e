package topo

import (
	"github.com/pictomat/pictomat/internal/canvas"
	"github.com/pictomat/pictomat/internal/grid"
)

// RegionID names a region within one topology. IDs are assigned in raster
// order of region anchors and are not stable across re-extraction.
type RegionID int

// Region is a maximal 4-connected component of same-colored cells together
// with its traced borders. Borders[0] is always the outer border; the rest
// are holes in raster order of their minimal sides.
type Region struct {
	ID      RegionID
	Color   canvas.Color
	Cells   []grid.Point // raster order
	Borders []Border

	cellSet map[grid.Point]struct{}
}

// Anchor returns the topmost-then-leftmost cell, the region's canonical
// reference point. Sleep state and solid offsets are keyed on it because it
// survives re-extraction as long as the region's shape does.
func (r *Region) Anchor() grid.Point {
	return r.Cells[0]
}

// Size returns the cell count.
func (r *Region) Size() int {
	return len(r.Cells)
}

// HoleCount returns the number of hole borders.
func (r *Region) HoleCount() int {
	return len(r.Borders) - 1
}

// Outer returns the outer border.
func (r *Region) Outer() Border {
	return r.Borders[0]
}

// Holes returns the hole borders, possibly empty.
func (r *Region) Holes() []Border {
	return r.Borders[1:]
}

// Contains reports whether p is a cell of the region.
func (r *Region) Contains(p grid.Point) bool {
	_, ok := r.cellSet[p]
	return ok
}

// Bounds returns the tight bounding rectangle of the cells.
func (r *Region) Bounds() grid.Rect {
	var b grid.Rect
	for _, p := range r.Cells {
		b = b.Include(p)
	}
	return b
}

// CongruentTo reports whether the other region is an exact translate of r:
// same shape cell for cell once both are anchored at the origin. Solid
// pattern regions use this to demand shapes survive undeformed.
func (r *Region) CongruentTo(o *Region) bool {
	if len(r.Cells) != len(o.Cells) {
		return false
	}
	d := o.Anchor().Sub(r.Anchor())
	for i, p := range r.Cells {
		if p.Add(d) != o.Cells[i] {
			return false
		}
	}
	return true
}

// OffsetTo returns the translation carrying r's anchor onto o's.
func (r *Region) OffsetTo(o *Region) grid.Point {
	return o.Anchor().Sub(r.Anchor())
}

func (r *Region) buildCellSet() {
	r.cellSet = make(map[grid.Point]struct{}, len(r.Cells))
	for _, p := range r.Cells {
		r.cellSet[p] = struct{}{}
	}
}
