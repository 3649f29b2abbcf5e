package topo

import (
	"sort"

	"github.com/pictomat/pictomat/internal/canvas"
	"github.com/pictomat/pictomat/internal/grid"
)

// Extract builds the full topology of a pixmap: flood-fills maximal
// 4-connected same-color components, traces each component's border cycles,
// and indexes adjacency. Output is deterministic for a given pixmap; region
// IDs follow raster order of the anchors.
func Extract(pix *canvas.Pixmap) *Topology {
	points := pix.Points()
	owner := make(map[grid.Point]RegionID, len(points))
	var regions []*Region

	// Flood fill in raster order. Scanning sorted points guarantees the
	// first cell reached of every component is its anchor, so IDs come out
	// in anchor order without a second sort.
	for _, start := range points {
		if _, claimed := owner[start]; claimed {
			continue
		}
		id := RegionID(len(regions))
		color, _ := pix.At(start)
		key := color.Opaque()

		cells := []grid.Point{start}
		owner[start] = id
		for i := 0; i < len(cells); i++ {
			for _, n := range cells[i].Neighbors4() {
				if _, claimed := owner[n]; claimed {
					continue
				}
				nc, painted := pix.At(n)
				if !painted || nc.Opaque() != key {
					continue
				}
				owner[n] = id
				cells = append(cells, n)
			}
		}
		sort.Slice(cells, func(i, j int) bool { return cells[i].Less(cells[j]) })

		r := &Region{ID: id, Color: color, Cells: cells}
		r.buildCellSet()
		r.Borders = traceBorders(r)
		regions = append(regions, r)
	}

	t := &Topology{Regions: regions, owner: owner}
	t.contacts = buildContacts(t)
	return t
}

// traceBorders splits the region's boundary sides into closed cycles. The
// cycle holding the minimal side is the outer border and goes first; holes
// follow in raster order of their own minimal sides.
func traceBorders(r *Region) []Border {
	loose := make(map[grid.Side]struct{})
	for _, p := range r.Cells {
		for d := grid.North; d <= grid.West; d++ {
			if !r.Contains(p.Add(d.Offset())) {
				loose[grid.Side{Cell: p, Facing: d}] = struct{}{}
			}
		}
	}

	var cycles []Border
	for len(loose) > 0 {
		start := minSide(loose)
		cycle := []grid.Side{start}
		delete(loose, start)
		cur := start
		for {
			next, ok := follow(cur, r)
			if !ok || next == start {
				break
			}
			cycle = append(cycle, next)
			delete(loose, next)
			cur = next
		}
		cycles = append(cycles, canonicalBorder(cycle))
	}

	sort.Slice(cycles, func(i, j int) bool { return cycles[i].Min().Less(cycles[j].Min()) })
	return cycles
}

// follow picks the unique boundary successor of s: the sharpest left turn
// whose side still borders the region. Exactly one of the three candidates
// qualifies for any boundary side of a nonempty region.
func follow(s grid.Side, r *Region) (grid.Side, bool) {
	for _, n := range s.Successors() {
		if r.Contains(n.Cell) && !r.Contains(n.Across()) {
			return n, true
		}
	}
	return grid.Side{}, false
}

func minSide(set map[grid.Side]struct{}) grid.Side {
	var min grid.Side
	first := true
	for s := range set {
		if first || s.Less(min) {
			min = s
			first = false
		}
	}
	return min
}

// buildContacts scans every border side of every region and records which
// region lies across it, tagging the contact with the border kind the edge
// sits on.
func buildContacts(t *Topology) map[RegionID][]Contact {
	type accum struct {
		viaOuter bool
		viaHole  bool
	}
	pair := make(map[RegionID]map[RegionID]*accum)

	for _, r := range t.Regions {
		for bi, b := range r.Borders {
			hole := bi > 0
			for _, s := range b.Sides {
				nid, ok := t.owner[s.Across()]
				if !ok {
					continue
				}
				m := pair[r.ID]
				if m == nil {
					m = make(map[RegionID]*accum)
					pair[r.ID] = m
				}
				a := m[nid]
				if a == nil {
					a = &accum{}
					m[nid] = a
				}
				if hole {
					a.viaHole = true
				} else {
					a.viaOuter = true
				}
			}
		}
	}

	out := make(map[RegionID][]Contact, len(pair))
	for id, m := range pair {
		cs := make([]Contact, 0, len(m))
		for other, a := range m {
			cs = append(cs, Contact{Other: other, ViaOuter: a.viaOuter, ViaHole: a.viaHole})
		}
		sortContacts(cs)
		out[id] = cs
	}
	return out
}
