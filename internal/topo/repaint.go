package topo

import (
	"github.com/pictomat/pictomat/internal/canvas"
	"github.com/pictomat/pictomat/internal/grid"
)

// Recolor attempts the fast path for painting one whole region a new color:
// when no neighbor already wears the target color the region graph is
// unchanged, so the topology can be rebuilt by swapping a single Region
// value instead of re-extracting the pixmap. Returns false when a neighbor
// shares the color, in which case regions would merge and the caller must
// fall back to Extract.
func Recolor(t *Topology, id RegionID, c canvas.Color) (*Topology, bool) {
	target := c.Opaque()
	for _, contact := range t.Contacts(id) {
		if t.Region(contact.Other).Color.Opaque() == target {
			return nil, false
		}
	}

	old := t.Region(id)
	repainted := &Region{
		ID:      old.ID,
		Color:   c,
		Cells:   old.Cells,
		Borders: old.Borders,
		cellSet: old.cellSet,
	}

	regions := make([]*Region, len(t.Regions))
	copy(regions, t.Regions)
	regions[id] = repainted

	// Owner and contacts describe geometry, not color; share them.
	return &Topology{Regions: regions, owner: t.owner, contacts: t.contacts}, true
}

// Anchors returns the anchor cell of every region in a set, for carrying
// per-region state such as sleep across re-extraction. Anchor cells survive
// a rebuild whenever the region's cells do, even though IDs may not.
func Anchors(t *Topology, ids []RegionID) []grid.Point {
	out := make([]grid.Point, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.Region(id).Anchor())
	}
	return out
}
