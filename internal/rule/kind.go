// Package rule compiles before/after image pairs into executable rules: a
// pattern describing the regions to find and a list of actions describing how
// to repaint them. Compilation is where all rule validation happens; a
// compiled rule is structurally sound by construction.
package rule

import "fmt"

// Kind classifies how a pattern region is allowed to match.
type Kind uint8

const (
	// Deformable regions match any region of the same color and hole count,
	// whatever its shape or size.
	Deformable Kind = iota
	// Solid regions additionally demand the matched region be an exact
	// translate of the pattern region, and all solid regions of one rule
	// share a single translation.
	Solid
	// Placeholder regions match a region of any color; the color binds and
	// can be referenced by actions.
	Placeholder
)

var kindNames = [3]string{"deformable", "solid", "placeholder"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}
