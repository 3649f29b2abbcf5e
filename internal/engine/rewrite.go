package engine

import (
	"github.com/pictomat/pictomat/internal/canvas"
	"github.com/pictomat/pictomat/internal/grid"
	"github.com/pictomat/pictomat/internal/match"
	"github.com/pictomat/pictomat/internal/rule"
	"github.com/pictomat/pictomat/internal/topo"
)

// ApplyResult reports what one rewrite did. Touched holds the anchor cells
// of every repainted, erased, or created region, feeding the highlight
// layer; anchors are from before the topology rebuild.
type ApplyResult struct {
	// Changed is false when the rewrite turned out to be a no-op: every
	// fill already matched the region's color and no sleep was requested.
	// The scheduler treats such an application as "no effect".
	Changed bool
	// Repainted reports whether any pixel changed, as opposed to a
	// sleep-only change.
	Repainted bool
	Touched   []grid.Point
}

// Apply executes a match against the world: fills, erases, and creations in
// that order, then rebuilds the topology and installs requested sleep
// state. Fill colors are resolved against the pre-rewrite topology, so
// placeholder bindings are unaffected by earlier actions of the same rule.
//
// A fill whose target color equals the region's current color is elided;
// rules whose every effect elides report Changed false, which is what keeps
// fixpoint detection honest.
func Apply(w *World, m *match.Match) ApplyResult {
	top := w.Topology()
	var res ApplyResult

	var sleepAnchors []grid.Point
	fills := 0
	var fastID topo.RegionID
	var fastColor canvas.Color
	reshaped := false // erases or creations change region geometry

	for _, act := range m.Rule.Actions {
		wr := top.Region(m.Binding(act.Region))
		switch act.Op {
		case rule.OpSleep:
			sleepAnchors = append(sleepAnchors, wr.Anchor())
			res.Touched = append(res.Touched, wr.Anchor())

		case rule.OpFill, rule.OpFillBound:
			color := act.Color
			if act.Op == rule.OpFillBound {
				color = m.BoundColor(top, act.Source)
			}
			if act.Sleep {
				// Filling keeps the cell set, so the anchor survives.
				sleepAnchors = append(sleepAnchors, wr.Anchor())
			}
			if color == wr.Color.Opaque() {
				if act.Sleep {
					res.Touched = append(res.Touched, wr.Anchor())
				}
				continue
			}
			for _, p := range wr.Cells {
				w.pix.Set(p, color)
			}
			fills++
			fastID, fastColor = wr.ID, color
			res.Repainted = true
			res.Touched = append(res.Touched, wr.Anchor())

		case rule.OpErase:
			for _, p := range wr.Cells {
				w.pix.Clear(p)
			}
			reshaped = true
			res.Repainted = true
			res.Touched = append(res.Touched, wr.Anchor())
		}
	}

	if len(m.Rule.Creates) > 0 {
		offset := m.Offset(top)
		for _, cr := range m.Rule.Creates {
			color := cr.Color
			if cr.Bound {
				color = m.BoundColor(top, cr.Source)
			}
			anchor := cr.Cells[0].Add(offset)
			for _, p := range cr.Cells {
				w.pix.Set(p.Add(offset), color)
			}
			if cr.Sleep {
				// If the new blob merges into an existing region this
				// anchor is pruned on adoption and the merged region
				// stays awake.
				sleepAnchors = append(sleepAnchors, anchor)
			}
			reshaped = true
			res.Repainted = true
			res.Touched = append(res.Touched, anchor)
		}
	}

	if !res.Repainted && len(sleepAnchors) == 0 {
		return res
	}
	res.Changed = true

	if res.Repainted {
		if fills == 1 && !reshaped {
			if next, ok := topo.Recolor(top, fastID, fastColor); ok {
				w.adoptTopology(next)
			} else {
				w.adoptTopology(topo.Extract(w.pix))
			}
		} else {
			w.adoptTopology(topo.Extract(w.pix))
		}
	} else {
		w.clock.Next()
	}

	for _, p := range sleepAnchors {
		if r, ok := w.top.RegionAt(p); ok && r.Anchor() == p {
			w.sleepAnchor(p)
		}
	}
	return res
}
