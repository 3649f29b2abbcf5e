package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pictomat/pictomat/internal/canvas"
	"github.com/pictomat/pictomat/internal/grid"
	"github.com/pictomat/pictomat/internal/rule"
	"github.com/pictomat/pictomat/internal/topo"
)

func world(t *testing.T, art string) *topo.Topology {
	t.Helper()
	return topo.Extract(canvas.MustParse(nil, art))
}

func mustRule(t *testing.T, name, before, after string) *rule.Rule {
	t.Helper()
	r, err := rule.Compile(name,
		canvas.MustParse(nil, before),
		canvas.MustParse(nil, after))
	require.NoError(t, err)
	return r
}

func TestFindSimpleAdjacentPair(t *testing.T) {
	w := world(t, `RGB`)
	r := mustRule(t, "pair", `RG`, `BG`)

	m, err := Find(w, r, Options{})
	require.NoError(t, err)
	require.NotNil(t, m)

	red, _ := w.RegionAt(grid.Pt(0, 0))
	green, _ := w.RegionAt(grid.Pt(1, 0))
	assert.Equal(t, red.ID, m.Binding(0))
	assert.Equal(t, green.ID, m.Binding(1))
}

func TestFindRequiresAdjacency(t *testing.T) {
	w := world(t, `R.G`)
	r := mustRule(t, "pair", `RG`, `BG`)

	m, err := Find(w, r, Options{})
	require.NoError(t, err)
	assert.Nil(t, m, "separated regions must not match an adjacent pattern")
}

func TestFindIsInjective(t *testing.T) {
	// Two red pattern regions need two distinct red world regions.
	w := world(t, `RGR`)
	r := mustRule(t, "twins", `R.R`, `B.B`)
	m, err := Find(w, r, Options{})
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.NotEqual(t, m.Binding(0), m.Binding(1))

	w2 := world(t, `RG`)
	m2, err := Find(w2, r, Options{})
	require.NoError(t, err)
	assert.Nil(t, m2, "one red region cannot serve two pattern regions")
}

func TestFindDeformable(t *testing.T) {
	w := world(t, `
		RRR
		RR.
		GG.
	`)
	r := mustRule(t, "pair", `
		R
		G
	`, `
		B
		G
	`)
	m, err := Find(w, r, Options{})
	require.NoError(t, err)
	require.NotNil(t, m, "deformable regions match any shape of the right color")
}

func TestFindHoleCountFilters(t *testing.T) {
	w := world(t, `
		RRR
		RR.
	`)
	ringRule := mustRule(t, "ring", `
		RRR
		R.R
		RRR
	`, `
		BBB
		B.B
		BBB
	`)
	m, err := Find(w, ringRule, Options{})
	require.NoError(t, err)
	assert.Nil(t, m, "a region without holes must not match a one-hole pattern")

	w2 := world(t, `
		RRRR
		R..R
		RRRR
	`)
	m2, err := Find(w2, ringRule, Options{})
	require.NoError(t, err)
	require.NotNil(t, m2, "deformable hole-count match is shape independent")
}

func TestFindViaHoleContact(t *testing.T) {
	r := mustRule(t, "core", `
		RRR
		RGR
		RRR
	`, `
		RRR
		RBR
		RRR
	`)

	// Side-by-side contact is the wrong kind.
	flat, err := Find(world(t, `RRGG`), r, Options{})
	require.NoError(t, err)
	assert.Nil(t, flat)

	nested, err := Find(world(t, `
		RRRR
		RGGR
		RRRR
	`), r, Options{})
	require.NoError(t, err)
	require.NotNil(t, nested)
}

func TestFindSolidExactShape(t *testing.T) {
	r := mustRule(t, "bar", `*R*R`, `BB`)

	m, err := Find(world(t, `
		RRR
	`), r, Options{})
	require.NoError(t, err)
	assert.Nil(t, m, "a three-cell bar is not a translate of a two-cell bar")

	m, err = Find(world(t, `
		.RR
	`), r, Options{})
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.True(t, m.HasSolid)
	assert.Equal(t, grid.Pt(1, 0), m.SolidOffset)
}

func TestFindSolidSharedTranslation(t *testing.T) {
	r := mustRule(t, "gap", `*R.*R`, `B.B`)

	// Right spacing: two single red cells with one void cell between.
	m, err := Find(world(t, `R.R`), r, Options{})
	require.NoError(t, err)
	require.NotNil(t, m)

	// Both cells exist but the spacing differs, so no shared translation
	// carries both pattern regions onto them.
	m, err = Find(world(t, `R..R`), r, Options{})
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestFindPlaceholderBindsAnyColor(t *testing.T) {
	r := mustRule(t, "wild", `PG`, `PG`)

	for _, art := range []string{`RG`, `BG`, `YG`} {
		w := world(t, art)
		m, err := Find(w, r, Options{})
		require.NoError(t, err, art)
		require.NotNil(t, m, art)

		bound, _ := w.RegionAt(grid.Pt(0, 0))
		assert.Equal(t, bound.Color.Opaque(), m.BoundColor(w, 0), art)
	}

	// A placeholder is still a distinct region, not the green itself.
	m, err := Find(world(t, `G`), r, Options{})
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestFindAsleepRegionsAreInvisible(t *testing.T) {
	w := world(t, `RG`)
	red, _ := w.RegionAt(grid.Pt(0, 0))
	asleep := func(id topo.RegionID) bool { return id == red.ID }

	r := mustRule(t, "pair", `RG`, `BG`)
	m, err := Find(w, r, Options{Asleep: asleep})
	require.NoError(t, err)
	assert.Nil(t, m, "asleep regions must not match plain pattern regions")

	m, err = Find(w, r, Options{})
	require.NoError(t, err)
	assert.NotNil(t, m)

	// Asleep wins over everything: even a sleeping pattern region cannot
	// see an asleep region, woken or not.
	sr := mustRule(t, "waker", `~RG`, `BG`)
	m, err = Find(w, sr, Options{Asleep: asleep, Woken: asleep})
	require.NoError(t, err)
	assert.Nil(t, m, "asleep regions are invisible to sleeping pattern regions too")
}

func TestFindSleepingPatternMatchesOnlyWoken(t *testing.T) {
	w := world(t, `RG`)
	red, _ := w.RegionAt(grid.Pt(0, 0))
	r := mustRule(t, "waker", `~RG`, `BG`)

	m, err := Find(w, r, Options{})
	require.NoError(t, err)
	assert.Nil(t, m, "sleeping pattern regions match nothing outside the wake window")

	m, err = Find(w, r, Options{Woken: func(id topo.RegionID) bool { return id == red.ID }})
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, red.ID, m.Binding(0))
}

func TestFindBudget(t *testing.T) {
	w := world(t, `RGRGRGRG`)
	r := mustRule(t, "pair", `RG`, `BG`)

	_, err := Find(w, r, Options{Budget: 1})
	require.Error(t, err)
	assert.True(t, IsBudgetExceeded(err))

	m, err := Find(w, r, Options{Budget: 1000})
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestFindAllDeterministic(t *testing.T) {
	w := world(t, `RGRG`)
	r := mustRule(t, "pair", `RG`, `BG`)

	first, err := FindAll(w, r, Options{})
	require.NoError(t, err)
	second, err := FindAll(w, r, Options{})
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Regions, second[i].Regions)
	}
	assert.NotEmpty(t, first)
}

func TestFindTraceSeesBindings(t *testing.T) {
	w := world(t, `RG`)
	r := mustRule(t, "pair", `RG`, `BG`)

	var binds int
	_, err := Find(w, r, Options{Trace: func(ev TraceEvent) {
		if ev.Kind == TraceBind {
			binds++
		}
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, binds)
}

func TestMatchOffsetWithoutSolid(t *testing.T) {
	w := world(t, `..RG`)
	r := mustRule(t, "pair", `RG`, `BG`)
	m, err := Find(w, r, Options{})
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.False(t, m.HasSolid)
	assert.Equal(t, grid.Pt(2, 0), m.Offset(w))

	// The anchor is the pattern's first region by index, not the first
	// region the search happens to bind. Placeholders are searched last,
	// yet a leading placeholder still carries the offset.
	wild := mustRule(t, "wild", `PG`, `PG`)
	m, err = Find(w, wild, Options{})
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, grid.Pt(2, 0), m.Offset(w))
}
