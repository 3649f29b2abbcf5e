// Package canvas holds pixel colors and sparse pixel maps. A pixmap is the
// raw form of both worlds and rule images; the topo package turns pixmaps
// into regions and the rule package reads marker alphas out of them.
package canvas

import "fmt"

// Marker alphas. Rule images encode the match kind of a region in the alpha
// channel of its color; world pixels are always fully opaque.
const (
	AlphaOpaque   = 0xFF // plain deformable region
	AlphaSolid    = 0xAA // shape must match exactly up to translation
	AlphaSleeping = 0x55 // matches only regions currently asleep
)

// Placeholder is the reserved RGB triple that marks a wildcard region in a
// rule image. Any world color may bind to it.
var Placeholder = RGB(0x0C, 0x36, 0x19)

// Color is a 32-bit RGBA pixel value.
type Color struct {
	R, G, B, A uint8
}

// RGB returns a fully opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: AlphaOpaque}
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x@%02x", c.R, c.G, c.B, c.A)
}

// Opaque returns c with the marker alpha stripped. Two rule pixels denote
// the same world color when their opaque forms are equal.
func (c Color) Opaque() Color {
	c.A = AlphaOpaque
	return c
}

// IsSolid reports whether the alpha carries the solid marker.
func (c Color) IsSolid() bool {
	return c.A == AlphaSolid
}

// IsSleeping reports whether the alpha carries the sleeping marker.
func (c Color) IsSleeping() bool {
	return c.A == AlphaSleeping
}

// IsPlaceholder reports whether the RGB triple is the reserved wildcard.
func (c Color) IsPlaceholder() bool {
	p := c.Opaque()
	return p.R == Placeholder.R && p.G == Placeholder.G && p.B == Placeholder.B
}

// ValidMarker reports whether the alpha is one of the recognized marker
// values. Rule compilation rejects anything else.
func (c Color) ValidMarker() bool {
	switch c.A {
	case AlphaOpaque, AlphaSolid, AlphaSleeping:
		return true
	}
	return false
}

// Less orders colors by their packed RGBA value. Used only for deterministic
// iteration, the order itself carries no meaning.
func (c Color) Less(d Color) bool {
	return c.pack() < d.pack()
}

func (c Color) pack() uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}
