package rule

import (
	"github.com/pictomat/pictomat/internal/canvas"
	"github.com/pictomat/pictomat/internal/grid"
	"github.com/pictomat/pictomat/internal/topo"
)

// PatternRegion is one region of a compiled before image.
type PatternRegion struct {
	Index     int
	Kind      Kind
	Sleeping  bool
	Color     canvas.Color // opaque form; meaningless for placeholders
	Cells     []grid.Point // raster order, before-image coordinates
	HoleCount int
}

// Anchor returns the topmost-then-leftmost cell of the pattern region.
func (r *PatternRegion) Anchor() grid.Point {
	return r.Cells[0]
}

// Contact mirrors a topology contact between two pattern regions, seen from
// the owning region's side.
type Contact struct {
	Other    int
	ViaOuter bool
	ViaHole  bool
}

// Pattern is the region graph a rule looks for.
type Pattern struct {
	Regions  []*PatternRegion
	contacts [][]Contact
}

// Contacts returns the adjacency list of pattern region i.
func (p *Pattern) Contacts(i int) []Contact {
	return p.contacts[i]
}

// Op says what an action does to the cells of its matched region.
type Op uint8

const (
	OpFill      Op = iota // repaint with Action.Color
	OpFillBound           // repaint with the color bound to a placeholder
	OpErase               // make the cells void
	OpSleep               // leave the color, only put the region to sleep
)

// Action rewrites the world region matched by one pattern region. Sleep
// marks the region asleep until the end of the tick, keeping it out of
// further matching; the after image requests it with the sleeping marker
// alpha. Regions the after image leaves fully unchanged get no action.
type Action struct {
	Region int
	Op     Op
	Color  canvas.Color // OpFill only
	Source int          // OpFillBound: placeholder region index
	Sleep  bool
}

// Create paints a fresh blob of cells that correspond to no pattern region.
// Cells are in before-image coordinates; the rewrite translates them by the
// match offset. Sleep makes the new region start asleep.
type Create struct {
	Cells  []grid.Point
	Color  canvas.Color
	Source int // placeholder index when Bound, else -1
	Bound  bool
	Sleep  bool
}

// Rule is a compiled before/after pair. Rules are immutable after Compile.
type Rule struct {
	Name    string
	Pattern *Pattern
	Actions []Action
	Creates []Create

	solids       []int
	placeholders []int
}

// Solids returns the indices of solid pattern regions.
func (r *Rule) Solids() []int {
	return r.solids
}

// Placeholders returns the indices of placeholder pattern regions.
func (r *Rule) Placeholders() []int {
	return r.placeholders
}

// Sleeper reports whether any pattern region wears the sleeping marker.
// Such rules never match mid-tick; the scheduler gives them one attempt
// against freshly woken regions at each tick boundary.
func (r *Rule) Sleeper() bool {
	for _, pr := range r.Pattern.Regions {
		if pr.Sleeping {
			return true
		}
	}
	return false
}

// Changes reports whether the rule can alter a world at all. A rule whose
// after image equals its before image compiles fine but never fires.
func (r *Rule) Changes() bool {
	return len(r.Actions) > 0 || len(r.Creates) > 0
}

// Compile builds a rule from its before and after images. The before image
// defines the pattern: every region's marker alpha picks its kind, the
// reserved wildcard triple makes it a placeholder. The after image is read
// by positional correspondence against the before footprints: a footprint
// uniformly repainted becomes a fill, erased becomes a delete, and painted
// cells outside every footprint become creations. Anything in between is
// rejected with MalformedRuleError.
func Compile(name string, before, after *canvas.Pixmap) (*Rule, error) {
	if before.Len() == 0 {
		return nil, malformed(name, "before image is empty")
	}

	btop := topo.Extract(before)
	r := &Rule{Name: name}
	pattern := &Pattern{}

	for _, reg := range btop.Regions {
		pr, err := compileRegion(name, before, reg)
		if err != nil {
			return nil, err
		}
		pattern.Regions = append(pattern.Regions, pr)
		switch pr.Kind {
		case Solid:
			r.solids = append(r.solids, pr.Index)
		case Placeholder:
			r.placeholders = append(r.placeholders, pr.Index)
		}
	}

	pattern.contacts = make([][]Contact, len(pattern.Regions))
	for _, reg := range btop.Regions {
		for _, c := range btop.Contacts(reg.ID) {
			pattern.contacts[reg.ID] = append(pattern.contacts[reg.ID], Contact{
				Other:    int(c.Other),
				ViaOuter: c.ViaOuter,
				ViaHole:  c.ViaHole,
			})
		}
	}
	r.Pattern = pattern

	if err := compileActions(r, btop, before, after); err != nil {
		return nil, err
	}
	return r, nil
}

func compileRegion(name string, before *canvas.Pixmap, reg *topo.Region) (*PatternRegion, error) {
	alpha := reg.Color.A
	for _, p := range reg.Cells {
		c, _ := before.At(p)
		if !c.ValidMarker() {
			return nil, malformedAt(name, p, "alpha %#02x is not a marker", c.A)
		}
		if c.A != alpha {
			return nil, malformedAt(name, p, "mixed marker alphas within one region")
		}
	}

	pr := &PatternRegion{
		Index:     int(reg.ID),
		Color:     reg.Color.Opaque(),
		Cells:     reg.Cells,
		HoleCount: reg.HoleCount(),
	}
	switch {
	case reg.Color.IsPlaceholder():
		if alpha != canvas.AlphaOpaque {
			return nil, malformedAt(name, reg.Anchor(), "placeholder region cannot carry a marker alpha")
		}
		pr.Kind = Placeholder
	case reg.Color.IsSolid():
		pr.Kind = Solid
	case reg.Color.IsSleeping():
		pr.Kind = Deformable
		pr.Sleeping = true
	default:
		pr.Kind = Deformable
	}
	return pr, nil
}

func compileActions(r *Rule, btop *topo.Topology, before, after *canvas.Pixmap) error {
	// The after image may request sleep, but solid is a matching concern
	// and has no meaning there.
	var badAlpha error
	after.Each(func(p grid.Point, c canvas.Color) {
		if badAlpha == nil && c.A != canvas.AlphaOpaque && c.A != canvas.AlphaSleeping {
			badAlpha = malformedAt(r.Name, p, "alpha %#02x has no meaning in an after image", c.A)
		}
	})
	if badAlpha != nil {
		return badAlpha
	}

	for _, reg := range btop.Regions {
		act, keep, err := regionAction(r, after, reg)
		if err != nil {
			return err
		}
		if !keep {
			r.Actions = append(r.Actions, act)
		}
	}

	// Cells the after image paints outside every before footprint become
	// creations, one per connected blob.
	extra := canvas.New()
	after.Each(func(p grid.Point, c canvas.Color) {
		if _, owned := btop.RegionAt(p); !owned {
			extra.Set(p, c)
		}
	})
	if extra.Len() > 0 {
		for _, blob := range topo.Extract(extra).Regions {
			for _, p := range blob.Cells {
				c, _ := extra.At(p)
				if c.A != blob.Color.A {
					return malformedAt(r.Name, p, "mixed marker alphas within one created blob")
				}
			}
			cr := Create{Cells: blob.Cells, Source: -1, Sleep: blob.Color.IsSleeping()}
			if blob.Color.IsPlaceholder() {
				src, err := soleBinding(r, blob.Anchor())
				if err != nil {
					return err
				}
				cr.Bound = true
				cr.Source = src
			} else {
				cr.Color = blob.Color.Opaque()
			}
			r.Creates = append(r.Creates, cr)
		}
	}
	return nil
}

// regionAction derives the action for one pattern region from the after
// pixels over its footprint.
func regionAction(r *Rule, after *canvas.Pixmap, reg *topo.Region) (Action, bool, error) {
	painted := 0
	var uniform canvas.Color
	for _, p := range reg.Cells {
		c, ok := after.At(p)
		if !ok {
			continue
		}
		if painted == 0 {
			uniform = c
		} else if c != uniform {
			return Action{}, false, malformedAt(r.Name, p, "footprint repainted with more than one color")
		}
		painted++
	}

	switch {
	case painted == 0:
		return Action{Region: int(reg.ID), Op: OpErase}, false, nil
	case painted != len(reg.Cells):
		return Action{}, false, malformedAt(r.Name, reg.Anchor(),
			"footprint must be wholly repainted or wholly erased")
	}

	sleep := uniform.IsSleeping()
	base := uniform.Opaque()

	if base.IsPlaceholder() {
		if reg.Color.IsPlaceholder() {
			if sleep {
				return Action{Region: int(reg.ID), Op: OpSleep, Sleep: true}, false, nil
			}
			// A placeholder repainted with itself is untouched.
			return Action{}, true, nil
		}
		src, err := soleBinding(r, reg.Anchor())
		if err != nil {
			return Action{}, false, err
		}
		return Action{Region: int(reg.ID), Op: OpFillBound, Source: src, Sleep: sleep}, false, nil
	}
	if base == reg.Color.Opaque() {
		if sleep {
			return Action{Region: int(reg.ID), Op: OpSleep, Sleep: true}, false, nil
		}
		return Action{}, true, nil
	}
	return Action{Region: int(reg.ID), Op: OpFill, Color: base, Sleep: sleep}, false, nil
}

// soleBinding resolves a wildcard color reference in the after image. It is
// only unambiguous when the rule has exactly one placeholder region.
func soleBinding(r *Rule, at grid.Point) (int, error) {
	switch len(r.placeholders) {
	case 0:
		return 0, malformedAt(r.Name, at, "wildcard color used but no placeholder region exists")
	case 1:
		return r.placeholders[0], nil
	default:
		return 0, malformedAt(r.Name, at,
			"wildcard color is ambiguous with %d placeholder regions", len(r.placeholders))
	}
}
