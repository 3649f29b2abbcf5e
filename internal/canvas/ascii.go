package canvas

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pictomat/pictomat/internal/grid"
)

// Palette maps fixture runes to colors. '.' is always void and may not be
// remapped.
type Palette map[rune]Color

// DefaultPalette covers the colors used throughout the test fixtures.
// Capital letters are plain opaque colors; the lowercase twins carry the
// solid marker, the tilde-prefixed forms in Parse handle sleeping.
var DefaultPalette = Palette{
	'R': RGB(0xE0, 0x20, 0x20),
	'G': RGB(0x20, 0xC0, 0x40),
	'B': RGB(0x20, 0x40, 0xE0),
	'Y': RGB(0xE0, 0xD0, 0x20),
	'W': RGB(0xF0, 0xF0, 0xF0),
	'K': RGB(0x10, 0x10, 0x10),
	'P': Placeholder,
}

// Parse builds a pixmap from an ASCII drawing. Each non-space rune is one
// cell; '.' is void. A rune prefixed with '*' takes the solid marker alpha,
// with '~' the sleeping marker. Rows are trimmed of trailing whitespace and
// blank leading/trailing lines are dropped, so fixtures can be indented
// raw strings.
func Parse(pal Palette, art string) (*Pixmap, error) {
	if pal == nil {
		pal = DefaultPalette
	}
	lines := trimArt(art)
	m := New()
	for y, line := range lines {
		x := 0
		var alpha uint8 = AlphaOpaque
		for _, r := range line {
			switch r {
			case ' ':
				x++
			case '.':
				x++
			case '*':
				alpha = AlphaSolid
				continue
			case '~':
				alpha = AlphaSleeping
				continue
			default:
				c, ok := pal[r]
				if !ok {
					return nil, fmt.Errorf("row %d: rune %q not in palette", y, r)
				}
				c.A = alpha
				m.Set(grid.Pt(x, y), c)
				x++
			}
			alpha = AlphaOpaque
		}
	}
	return m, nil
}

// MustParse is Parse for fixtures known to be well formed.
func MustParse(pal Palette, art string) *Pixmap {
	m, err := Parse(pal, art)
	if err != nil {
		panic(err)
	}
	return m
}

// Render draws the pixmap as ASCII using the reverse of pal, anchored at the
// top-left of its bounds. Colors not in the palette render as '?'; solid and
// sleeping markers regain their '*' and '~' prefixes.
func Render(pal Palette, m *Pixmap) string {
	if pal == nil {
		pal = DefaultPalette
	}
	rev := make(map[Color]rune, len(pal))
	runes := make([]rune, 0, len(pal))
	for r := range pal {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	for _, r := range runes {
		rev[pal[r].Opaque()] = r
	}

	b := m.Bounds()
	if b.Empty() {
		return ""
	}
	var sb strings.Builder
	for y := b.Min.Y; y <= b.Max.Y; y++ {
		for x := b.Min.X; x <= b.Max.X; x++ {
			c, ok := m.At(grid.Pt(x, y))
			if !ok {
				sb.WriteByte('.')
				continue
			}
			switch c.A {
			case AlphaSolid:
				sb.WriteByte('*')
			case AlphaSleeping:
				sb.WriteByte('~')
			}
			r, ok := rev[c.Opaque()]
			if !ok {
				r = '?'
			}
			sb.WriteRune(r)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func trimArt(art string) []string {
	lines := strings.Split(art, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	// Strip the common leading indent so fixtures can sit inside functions.
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, "\t "))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent > 0 {
		for i, line := range lines {
			if len(line) >= indent {
				lines[i] = line[indent:]
			}
		}
	}
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\t ")
	}
	return lines
}
