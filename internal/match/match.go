// Package match finds occurrences of compiled rule patterns in world
// topologies. The search is a backtracking subgraph embedding: injective
// over regions, color- and hole-respecting per region, adjacency-preserving
// across the pattern graph, and exact up to translation for solid regions.
// Enumeration order is deterministic for a given topology and rule.
package match

import (
	"github.com/pictomat/pictomat/internal/canvas"
	"github.com/pictomat/pictomat/internal/grid"
	"github.com/pictomat/pictomat/internal/rule"
	"github.com/pictomat/pictomat/internal/topo"
)

// Match is one embedding of a rule pattern into a topology. Regions is
// indexed by pattern region index.
type Match struct {
	Rule    *rule.Rule
	Regions []topo.RegionID

	// SolidOffset is the single translation shared by all solid regions,
	// valid only when HasSolid is set.
	SolidOffset grid.Point
	HasSolid    bool
}

// Binding returns the world region bound to pattern region i.
func (m *Match) Binding(i int) topo.RegionID {
	return m.Regions[i]
}

// BoundColor returns the world color bound to pattern region i, used to
// resolve wildcard references in actions.
func (m *Match) BoundColor(t *topo.Topology, i int) canvas.Color {
	return t.Region(m.Regions[i]).Color.Opaque()
}

// Offset returns the translation from pattern coordinates into the world,
// used to place created cells. Solid matches pin it exactly; deformable
// matches anchor it on the first pattern region's anchor.
func (m *Match) Offset(t *topo.Topology) grid.Point {
	if m.HasSolid {
		return m.SolidOffset
	}
	first := m.Rule.Pattern.Regions[0]
	return t.Region(m.Regions[0]).Anchor().Sub(first.Anchor())
}
