package canvas

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/pictomat/pictomat/internal/grid"
)

// DecodePNG reads a PNG image into a pixmap. Fully transparent pixels become
// void; every other pixel keeps its exact RGBA value, alpha included, so rule
// markers survive the round trip. Pixel (0,0) of the image lands on cell
// (0,0).
func DecodePNG(r io.Reader) (*Pixmap, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	m := New()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			m.Set(grid.Pt(x-b.Min.X, y-b.Min.Y), Color{R: c.R, G: c.G, B: c.B, A: c.A})
		}
	}
	return m, nil
}

// EncodePNG writes the pixmap as a PNG covering its bounds, void cells fully
// transparent.
func EncodePNG(w io.Writer, m *Pixmap) error {
	b := m.Bounds()
	if b.Empty() {
		return png.Encode(w, image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	}
	width, height := b.Size()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	m.Each(func(p grid.Point, c Color) {
		img.SetNRGBA(p.X-b.Min.X, p.Y-b.Min.Y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A})
	})
	return png.Encode(w, img)
}
