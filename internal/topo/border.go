// Package topo turns pixmaps into topologies: maximal 4-connected same-color
// regions, their closed border cycles, and the adjacency between them. The
// matcher and rewrite layers operate on topologies, never on raw pixels.
package topo

import "github.com/pictomat/pictomat/internal/grid"

// Border is a closed cycle of directed sides, canonicalized to start at its
// minimal side. Region cells lie on the left of every side, so outer borders
// wind counter-clockwise and hole borders clockwise.
type Border struct {
	Sides []grid.Side
}

// canonicalBorder rotates the cycle so it begins at its minimal side.
func canonicalBorder(sides []grid.Side) Border {
	min := 0
	for i, s := range sides {
		if s.Less(sides[min]) {
			min = i
		}
	}
	out := make([]grid.Side, 0, len(sides))
	out = append(out, sides[min:]...)
	out = append(out, sides[:min]...)
	return Border{Sides: out}
}

// Min returns the canonical representative side of the cycle.
func (b Border) Min() grid.Side {
	return b.Sides[0]
}

// Len returns the number of unit edges in the cycle.
func (b Border) Len() int {
	return len(b.Sides)
}

// Translated returns the cycle shifted by d.
func (b Border) Translated(d grid.Point) Border {
	out := make([]grid.Side, len(b.Sides))
	for i, s := range b.Sides {
		out[i] = s.Translated(d)
	}
	return Border{Sides: out}
}

// Closed reports whether consecutive sides chain corner to corner and the
// last side returns to the first. Used by Validate.
func (b Border) Closed() bool {
	n := len(b.Sides)
	if n < 4 {
		return false
	}
	for i, s := range b.Sides {
		if s.Stop() != b.Sides[(i+1)%n].Start() {
			return false
		}
	}
	return true
}
