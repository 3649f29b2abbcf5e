package canvas

import (
	"sort"

	"github.com/pictomat/pictomat/internal/grid"
)

// Pixmap is a sparse pixel map. Absent cells are void: they belong to no
// region and match nothing. The zero value is an empty, usable map.
type Pixmap struct {
	cells map[grid.Point]Color
}

// New returns an empty pixmap.
func New() *Pixmap {
	return &Pixmap{cells: make(map[grid.Point]Color)}
}

// Set paints p with c.
func (m *Pixmap) Set(p grid.Point, c Color) {
	if m.cells == nil {
		m.cells = make(map[grid.Point]Color)
	}
	m.cells[p] = c
}

// Clear makes p void.
func (m *Pixmap) Clear(p grid.Point) {
	delete(m.cells, p)
}

// At returns the color at p and whether p is painted.
func (m *Pixmap) At(p grid.Point) (Color, bool) {
	c, ok := m.cells[p]
	return c, ok
}

// Len returns the number of painted cells.
func (m *Pixmap) Len() int {
	return len(m.cells)
}

// Bounds returns the tight bounding rectangle of the painted cells.
func (m *Pixmap) Bounds() grid.Rect {
	var r grid.Rect
	for p := range m.cells {
		r = r.Include(p)
	}
	return r
}

// Points returns the painted cells in raster order.
func (m *Pixmap) Points() []grid.Point {
	out := make([]grid.Point, 0, len(m.cells))
	for p := range m.cells {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Each calls fn for every painted cell in raster order.
func (m *Pixmap) Each(fn func(p grid.Point, c Color)) {
	for _, p := range m.Points() {
		fn(p, m.cells[p])
	}
}

// Clone returns an independent copy.
func (m *Pixmap) Clone() *Pixmap {
	out := &Pixmap{cells: make(map[grid.Point]Color, len(m.cells))}
	for p, c := range m.cells {
		out.cells[p] = c
	}
	return out
}

// Translated returns a copy shifted by d.
func (m *Pixmap) Translated(d grid.Point) *Pixmap {
	out := &Pixmap{cells: make(map[grid.Point]Color, len(m.cells))}
	for p, c := range m.cells {
		out.cells[p.Add(d)] = c
	}
	return out
}

// Equal reports whether both maps paint the same cells the same colors.
func (m *Pixmap) Equal(o *Pixmap) bool {
	if len(m.cells) != len(o.cells) {
		return false
	}
	for p, c := range m.cells {
		if oc, ok := o.cells[p]; !ok || oc != c {
			return false
		}
	}
	return true
}
