// Package grid provides the square-lattice geometry shared by the canvas,
// topology, and matching layers: integer cell coordinates, the four cardinal
// directions, and the directed side algebra used to trace region borders.
package grid

import "fmt"

// Point is a cell coordinate on the square lattice. X grows to the right,
// Y grows downward, matching raster order.
type Point struct {
	X int
	Y int
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns the translation carrying q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Less orders points in raster order: top to bottom, then left to right.
// It is the tie-break used everywhere determinism depends on cell order.
func (p Point) Less(q Point) bool {
	if p.Y != q.Y {
		return p.Y < q.Y
	}
	return p.X < q.X
}

// Neighbors4 returns the four edge-adjacent cells in deterministic order:
// north, west, east, south (raster order of the neighbors themselves).
func (p Point) Neighbors4() [4]Point {
	return [4]Point{
		{X: p.X, Y: p.Y - 1},
		{X: p.X - 1, Y: p.Y},
		{X: p.X + 1, Y: p.Y},
		{X: p.X, Y: p.Y + 1},
	}
}

// Dir is one of the four cardinal directions.
type Dir uint8

const (
	North Dir = iota
	East
	South
	West
)

var dirNames = [4]string{"north", "east", "south", "west"}

func (d Dir) String() string {
	if int(d) < len(dirNames) {
		return dirNames[d]
	}
	return fmt.Sprintf("Dir(%d)", uint8(d))
}

// Offset returns the unit translation toward d.
func (d Dir) Offset() Point {
	switch d {
	case North:
		return Point{Y: -1}
	case East:
		return Point{X: 1}
	case South:
		return Point{Y: 1}
	default:
		return Point{X: -1}
	}
}

// Opposite returns the reversed direction.
func (d Dir) Opposite() Dir {
	return d ^ 2
}

// CW returns d rotated a quarter turn clockwise.
func (d Dir) CW() Dir {
	return (d + 1) & 3
}

// CCW returns d rotated a quarter turn counter-clockwise.
func (d Dir) CCW() Dir {
	return (d + 3) & 3
}

// Rect is an inclusive axis-aligned cell rectangle. The zero Rect is empty.
type Rect struct {
	Min Point
	Max Point
	set bool
}

// Empty reports whether no point has been included.
func (r Rect) Empty() bool {
	return !r.set
}

// Include grows r to cover p.
func (r Rect) Include(p Point) Rect {
	if !r.set {
		return Rect{Min: p, Max: p, set: true}
	}
	if p.X < r.Min.X {
		r.Min.X = p.X
	}
	if p.Y < r.Min.Y {
		r.Min.Y = p.Y
	}
	if p.X > r.Max.X {
		r.Max.X = p.X
	}
	if p.Y > r.Max.Y {
		r.Max.Y = p.Y
	}
	return r
}

// Union grows r to cover all of s.
func (r Rect) Union(s Rect) Rect {
	if s.Empty() {
		return r
	}
	return r.Include(s.Min).Include(s.Max)
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return r.set &&
		p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Size returns the width and height of r in cells.
func (r Rect) Size() (w, h int) {
	if !r.set {
		return 0, 0
	}
	return r.Max.X - r.Min.X + 1, r.Max.Y - r.Min.Y + 1
}

// Translated returns r shifted by d.
func (r Rect) Translated(d Point) Rect {
	if !r.set {
		return r
	}
	return Rect{Min: r.Min.Add(d), Max: r.Max.Add(d), set: true}
}

// Eq reports whether two rectangles cover the same cells.
func (r Rect) Eq(s Rect) bool {
	if r.Empty() || s.Empty() {
		return r.Empty() == s.Empty()
	}
	return r.Min == s.Min && r.Max == s.Max
}
