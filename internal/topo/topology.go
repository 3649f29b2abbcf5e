package topo

import (
	"fmt"
	"sort"

	"github.com/pictomat/pictomat/internal/grid"
)

// Contact records one adjacency, seen from the owning region's side.
// ViaOuter means shared edges lie on this region's outer border, ViaHole
// that they lie on one of its hole borders, meaning Other sits inside that
// hole. Both can hold at once when a neighbor touches the region outside
// and inside a hole.
type Contact struct {
	Other    RegionID
	ViaOuter bool
	ViaHole  bool
}

// Topology is the region graph of one pixmap. It is immutable once built;
// the engine swaps whole topologies rather than mutating one in place.
type Topology struct {
	Regions []*Region

	owner    map[grid.Point]RegionID
	contacts map[RegionID][]Contact
}

// Region returns the region with the given ID.
func (t *Topology) Region(id RegionID) *Region {
	return t.Regions[id]
}

// RegionAt returns the region owning cell p, if any.
func (t *Topology) RegionAt(p grid.Point) (*Region, bool) {
	id, ok := t.owner[p]
	if !ok {
		return nil, false
	}
	return t.Regions[id], true
}

// Contacts returns the adjacency list of id, sorted by neighbor ID.
func (t *Topology) Contacts(id RegionID) []Contact {
	return t.contacts[id]
}

// Adjacent reports whether a and b share at least one unit edge.
func (t *Topology) Adjacent(a, b RegionID) (Contact, bool) {
	for _, c := range t.contacts[a] {
		if c.Other == b {
			return c, true
		}
	}
	return Contact{}, false
}

// Degree returns the number of distinct neighbors of id.
func (t *Topology) Degree(id RegionID) int {
	return len(t.contacts[id])
}

// InvariantError reports a broken structural invariant found by Validate.
// It always indicates a bug in extraction or rewriting, never bad input.
type InvariantError struct {
	Region RegionID
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("topology invariant broken at region %d: %s", e.Region, e.Detail)
}

// Validate checks the structural invariants of the topology: every cell
// owned by exactly one region, every border a closed corner-to-corner cycle,
// outer border first, and adjacency symmetric. Extraction output always
// passes; the engine re-checks after rewrites when paranoia is enabled.
func (t *Topology) Validate() error {
	seen := make(map[grid.Point]RegionID, len(t.owner))
	for _, r := range t.Regions {
		if len(r.Cells) == 0 {
			return &InvariantError{Region: r.ID, Detail: "region has no cells"}
		}
		for _, p := range r.Cells {
			if prev, dup := seen[p]; dup {
				return &InvariantError{Region: r.ID,
					Detail: fmt.Sprintf("cell %v also owned by region %d", p, prev)}
			}
			seen[p] = r.ID
			if got, ok := t.owner[p]; !ok || got != r.ID {
				return &InvariantError{Region: r.ID,
					Detail: fmt.Sprintf("owner index disagrees at %v", p)}
			}
		}
		if len(r.Borders) == 0 {
			return &InvariantError{Region: r.ID, Detail: "region has no borders"}
		}
		for bi, b := range r.Borders {
			if !b.Closed() {
				return &InvariantError{Region: r.ID,
					Detail: fmt.Sprintf("border %d is not a closed cycle", bi)}
			}
			for _, s := range b.Sides {
				if !r.Contains(s.Cell) {
					return &InvariantError{Region: r.ID,
						Detail: fmt.Sprintf("border side %v owned by foreign cell", s)}
				}
				if r.Contains(s.Across()) {
					return &InvariantError{Region: r.ID,
						Detail: fmt.Sprintf("border side %v crosses the region interior", s)}
				}
			}
		}
		outerMin := r.Borders[0].Min()
		for _, b := range r.Borders[1:] {
			if b.Min().Less(outerMin) {
				return &InvariantError{Region: r.ID, Detail: "outer border is not first"}
			}
		}
	}
	if len(seen) != len(t.owner) {
		return &InvariantError{Detail: "owner index covers cells outside all regions"}
	}
	for id, cs := range t.contacts {
		for _, c := range cs {
			if !c.ViaOuter && !c.ViaHole {
				return &InvariantError{Region: id,
					Detail: fmt.Sprintf("contact with region %d carries no border kind", c.Other)}
			}
			back, ok := t.Adjacent(c.Other, id)
			if !ok {
				return &InvariantError{Region: id,
					Detail: fmt.Sprintf("adjacency with region %d is not symmetric", c.Other)}
			}
			// An edge on this region's hole border is, seen from the
			// enclosed neighbor, an edge on its outer border.
			if c.ViaHole && !back.ViaOuter {
				return &InvariantError{Region: id,
					Detail: fmt.Sprintf("region %d sits in a hole but reports no outer contact back", c.Other)}
			}
		}
	}
	return nil
}

func sortContacts(cs []Contact) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].Other < cs[j].Other })
}
