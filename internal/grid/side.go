package grid

import "fmt"

// Side is one directed unit edge of a cell boundary. Cell is the cell whose
// boundary the edge belongs to, Facing the direction of the neighbor across
// the edge. The edge is traversed so that Cell lies on the left, which makes
// outer borders wind counter-clockwise and hole borders clockwise:
//
//	Facing west  -> traversed downward
//	Facing south -> traversed rightward
//	Facing east  -> traversed upward
//	Facing north -> traversed leftward
type Side struct {
	Cell   Point
	Facing Dir
}

func (s Side) String() string {
	return fmt.Sprintf("%v/%v", s.Cell, s.Facing)
}

// Across returns the cell on the other side of the edge.
func (s Side) Across() Point {
	return s.Cell.Add(s.Facing.Offset())
}

// Reversed returns the same edge traversed the other way, owned by the
// neighboring cell.
func (s Side) Reversed() Side {
	return Side{Cell: s.Across(), Facing: s.Facing.Opposite()}
}

// Translated returns s shifted by d.
func (s Side) Translated(d Point) Side {
	return Side{Cell: s.Cell.Add(d), Facing: s.Facing}
}

// Corner is a lattice point between cells, identified by the cell whose
// top-left corner it is.
type Corner Point

// Start returns the corner the directed edge leaves from.
func (s Side) Start() Corner {
	switch s.Facing {
	case West:
		return Corner(s.Cell)
	case South:
		return Corner(Pt(s.Cell.X, s.Cell.Y+1))
	case East:
		return Corner(Pt(s.Cell.X+1, s.Cell.Y+1))
	default: // North
		return Corner(Pt(s.Cell.X+1, s.Cell.Y))
	}
}

// Stop returns the corner the directed edge arrives at.
func (s Side) Stop() Corner {
	switch s.Facing {
	case West:
		return Corner(Pt(s.Cell.X, s.Cell.Y+1))
	case South:
		return Corner(Pt(s.Cell.X+1, s.Cell.Y+1))
	case East:
		return Corner(Pt(s.Cell.X+1, s.Cell.Y))
	default: // North
		return Corner(s.Cell)
	}
}

// Less orders sides by owning cell in raster order, then by facing. The
// minimal side of a border cycle under this order is the canonical
// representative used to identify the cycle.
func (s Side) Less(t Side) bool {
	if s.Cell != t.Cell {
		return s.Cell.Less(t.Cell)
	}
	return s.Facing < t.Facing
}

// Travel returns the direction the edge is traversed in, a quarter turn
// counter-clockwise from Facing.
func (s Side) Travel() Dir {
	return s.Facing.CCW()
}

// Successors returns the three sides that can continue a boundary walk after
// s, ordered sharpest-left-turn first. Exactly one of them borders the walked
// region: the left turn when the cell ahead is outside, straight when it is
// inside, the right turn when both it and the diagonal are inside. Preferring
// the left turn at a pinch corner keeps cells that touch only diagonally on
// separate sides of the border, which is what 4-connectivity requires.
func (s Side) Successors() [3]Side {
	ahead := s.Cell.Add(s.Travel().Offset())
	left := Side{Cell: s.Cell, Facing: s.Facing.CCW()}
	straight := Side{Cell: ahead, Facing: s.Facing}
	right := Side{Cell: ahead.Add(s.Facing.Offset()), Facing: s.Facing.CW()}
	return [3]Side{left, straight, right}
}
