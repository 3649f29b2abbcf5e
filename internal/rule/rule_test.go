package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pictomat/pictomat/internal/canvas"
	"github.com/pictomat/pictomat/internal/grid"
)

func compile(t *testing.T, name, before, after string) *Rule {
	t.Helper()
	r, err := Compile(name,
		canvas.MustParse(nil, before),
		canvas.MustParse(nil, after))
	require.NoError(t, err)
	return r
}

func TestCompileFill(t *testing.T) {
	r := compile(t, "swap", `RB`, `BB`)

	require.Len(t, r.Pattern.Regions, 2)
	assert.Equal(t, Deformable, r.Pattern.Regions[0].Kind)
	assert.Equal(t, canvas.DefaultPalette['R'], r.Pattern.Regions[0].Color)

	require.Len(t, r.Actions, 1)
	assert.Equal(t, 0, r.Actions[0].Region)
	assert.Equal(t, OpFill, r.Actions[0].Op)
	assert.Equal(t, canvas.DefaultPalette['B'], r.Actions[0].Color)
	assert.Empty(t, r.Creates)
	assert.True(t, r.Changes())
}

func TestCompileNoOpRule(t *testing.T) {
	r := compile(t, "id", `RG`, `RG`)
	assert.Empty(t, r.Actions)
	assert.Empty(t, r.Creates)
	assert.False(t, r.Changes())
}

func TestCompileErase(t *testing.T) {
	r := compile(t, "erase", `RG`, `R.`)
	require.Len(t, r.Actions, 1)
	assert.Equal(t, OpErase, r.Actions[0].Op)
	assert.Equal(t, 1, r.Actions[0].Region)
}

func TestCompileCreate(t *testing.T) {
	r := compile(t, "grow", `R.`, `RG`)
	assert.Empty(t, r.Actions)
	require.Len(t, r.Creates, 1)
	assert.Equal(t, []grid.Point{{X: 1, Y: 0}}, r.Creates[0].Cells)
	assert.Equal(t, canvas.DefaultPalette['G'], r.Creates[0].Color)
	assert.False(t, r.Creates[0].Bound)
}

func TestCompileSolidMarker(t *testing.T) {
	r := compile(t, "solid", `*R*RG`, `RRB`)
	require.Len(t, r.Pattern.Regions, 2)
	assert.Equal(t, Solid, r.Pattern.Regions[0].Kind)
	assert.Equal(t, []int{0}, r.Solids())
	// The opaque form is stored so matching compares world colors directly.
	assert.Equal(t, uint8(canvas.AlphaOpaque), r.Pattern.Regions[0].Color.A)
}

func TestCompileSleepingMarker(t *testing.T) {
	r := compile(t, "wake", `~RG`, `RB`)
	assert.Equal(t, Deformable, r.Pattern.Regions[0].Kind)
	assert.True(t, r.Pattern.Regions[0].Sleeping)
	assert.False(t, r.Pattern.Regions[1].Sleeping)
}

func TestCompileSleepOnlyAction(t *testing.T) {
	r := compile(t, "lull", `RG`, `~RG`)
	require.Len(t, r.Actions, 1)
	assert.Equal(t, OpSleep, r.Actions[0].Op)
	assert.Equal(t, 0, r.Actions[0].Region)
	assert.True(t, r.Actions[0].Sleep)
	assert.True(t, r.Changes(), "putting a region to sleep is a change")
}

func TestCompileFillAndSleep(t *testing.T) {
	r := compile(t, "lullfill", `RG`, `~BG`)
	require.Len(t, r.Actions, 1)
	assert.Equal(t, OpFill, r.Actions[0].Op)
	assert.Equal(t, canvas.DefaultPalette['B'], r.Actions[0].Color)
	assert.True(t, r.Actions[0].Sleep)
}

func TestCompileSleepingCreate(t *testing.T) {
	r := compile(t, "spawn", `R.`, `R~G`)
	require.Len(t, r.Creates, 1)
	assert.True(t, r.Creates[0].Sleep)
	assert.Equal(t, canvas.DefaultPalette['G'], r.Creates[0].Color)
}

func TestCompilePlaceholderBinding(t *testing.T) {
	// A wildcard sits in the green region's hole; the after image repaints
	// the green region with the wildcard's bound color.
	r := compile(t, "steal", `
		GGG
		GPG
		GGG
	`, `
		PPP
		PPP
		PPP
	`)
	require.Len(t, r.Pattern.Regions, 2)
	assert.Equal(t, Deformable, r.Pattern.Regions[0].Kind)
	assert.Equal(t, 1, r.Pattern.Regions[0].HoleCount)
	assert.Equal(t, Placeholder, r.Pattern.Regions[1].Kind)
	assert.Equal(t, []int{1}, r.Placeholders())

	require.Len(t, r.Actions, 1)
	assert.Equal(t, OpFillBound, r.Actions[0].Op)
	assert.Equal(t, 0, r.Actions[0].Region)
	assert.Equal(t, 1, r.Actions[0].Source)
}

func TestCompilePatternAdjacency(t *testing.T) {
	r := compile(t, "ring", `
		RRR
		RGR
		RRR
	`, `
		RRR
		RBR
		RRR
	`)
	cs := r.Pattern.Contacts(0)
	require.Len(t, cs, 1)
	assert.Equal(t, 1, cs[0].Other)
	assert.True(t, cs[0].ViaHole)
	assert.False(t, cs[0].ViaOuter)
}

func TestCompileRejectsEmptyBefore(t *testing.T) {
	_, err := Compile("empty", canvas.New(), canvas.MustParse(nil, `R`))
	require.Error(t, err)
	assert.True(t, IsMalformedRule(err))
}

func TestCompileRejectsPartialRepaint(t *testing.T) {
	_, err := Compile("partial",
		canvas.MustParse(nil, `RR`),
		canvas.MustParse(nil, `B.`))
	require.Error(t, err)
	assert.True(t, IsMalformedRule(err))
	assert.Contains(t, err.Error(), "wholly")
}

func TestCompileRejectsMixedRepaint(t *testing.T) {
	_, err := Compile("mixed",
		canvas.MustParse(nil, `RR`),
		canvas.MustParse(nil, `BG`))
	require.Error(t, err)
	assert.True(t, IsMalformedRule(err))
}

func TestCompileRejectsMarkerInAfter(t *testing.T) {
	_, err := Compile("marker",
		canvas.MustParse(nil, `R`),
		canvas.MustParse(nil, `*B`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after image")
}

func TestCompileRejectsMarkedPlaceholder(t *testing.T) {
	_, err := Compile("solidwild",
		canvas.MustParse(nil, `*PG`),
		canvas.MustParse(nil, `.G`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "placeholder")
}

func TestCompileRejectsDanglingWildcardReference(t *testing.T) {
	_, err := Compile("dangling",
		canvas.MustParse(nil, `R`),
		canvas.MustParse(nil, `P`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no placeholder region")
}

func TestCompileRejectsAmbiguousWildcardReference(t *testing.T) {
	_, err := Compile("ambiguous",
		canvas.MustParse(nil, `P.P.R`),
		canvas.MustParse(nil, `P.P.P`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestCacheHitAndInvalidate(t *testing.T) {
	c := NewCache()
	before := canvas.MustParse(nil, `RB`)
	after := canvas.MustParse(nil, `BB`)

	r1, err := c.Compile("swap", before, after)
	require.NoError(t, err)
	r2, err := c.Compile("swap", before, after)
	require.NoError(t, err)
	assert.Same(t, r1, r2)
	assert.Equal(t, 1, c.Len())

	c.Invalidate()
	assert.Equal(t, 0, c.Len())
	r3, err := c.Compile("swap", before, after)
	require.NoError(t, err)
	assert.NotSame(t, r1, r3)
}

func TestDigestIgnoresNothing(t *testing.T) {
	a := canvas.MustParse(nil, `RB`)
	b := canvas.MustParse(nil, `RG`)
	assert.NotEqual(t, DigestImages(a, a), DigestImages(a, b))
	assert.NotEqual(t, DigestImages(a, b), DigestImages(b, a))
	assert.Equal(t, DigestImages(a, b), DigestImages(a.Clone(), b.Clone()))
}
