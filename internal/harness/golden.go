package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/pictomat/pictomat/internal/canvas"
)

// Snapshot renders an outcome as a deterministic text transcript, one block
// per tick followed by the world after that tick.
func Snapshot(s *Scenario, out *Outcome) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "scenario: %s\n", s.Name)
	for _, tr := range out.Ticks {
		fmt.Fprintf(&sb, "tick %d: applications=%d woken=%d\n", tr.Tick, tr.Applications, tr.Woken)
		sb.WriteString(tr.World)
	}
	fmt.Fprintf(&sb, "stable: %t\n", out.Stable)
	return []byte(sb.String())
}

// RunWithGolden executes a scenario, checks its expect clause, and compares
// the transcript against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, s *Scenario) {
	t.Helper()

	out, err := Execute(s)
	require.NoError(t, err)

	Assert(t, s, out)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, s.Name, Snapshot(s, out))
}

// Assert checks an outcome against the scenario's expect clause, if any.
func Assert(t *testing.T, s *Scenario, out *Outcome) {
	t.Helper()
	require.NoError(t, Check(s, out))
}

// Check compares an outcome against the scenario's expect clause and returns
// the first mismatch. Final worlds are compared as pixmaps so art indentation
// does not matter.
func Check(s *Scenario, out *Outcome) error {
	if s.Expect == nil {
		return nil
	}
	if s.Expect.Final != "" {
		want, err := canvas.Parse(nil, s.Expect.Final)
		if err != nil {
			return fmt.Errorf("scenario %q expect.final: %w", s.Name, err)
		}
		got := canvas.MustParse(nil, out.Final)
		if !want.Equal(got) {
			return fmt.Errorf("scenario %q final world\nwant:\n%sgot:\n%s",
				s.Name, canvas.Render(nil, want), out.Final)
		}
	}
	if s.Expect.Applications != nil && *s.Expect.Applications != out.Applications {
		return fmt.Errorf("scenario %q: %d applications, want %d",
			s.Name, out.Applications, *s.Expect.Applications)
	}
	if s.Expect.Stable != nil && *s.Expect.Stable != out.Stable {
		return fmt.Errorf("scenario %q: stable=%t, want %t",
			s.Name, out.Stable, *s.Expect.Stable)
	}
	return nil
}
