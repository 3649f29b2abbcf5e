package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pictomat/pictomat/internal/canvas"
	"github.com/pictomat/pictomat/internal/engine"
	"github.com/pictomat/pictomat/internal/rule"
)

// TickRecord is one tick's outcome plus the world rendered after it.
type TickRecord struct {
	Tick         int
	Applications int
	Woken        int
	World        string
}

// Outcome is the result of executing a scenario.
type Outcome struct {
	Ticks        []TickRecord
	Applications int
	Final        string
	// Stable means the last tick applied nothing and woke nobody: the
	// world is at a fixpoint that no wake can disturb.
	Stable bool
}

// Execute compiles the scenario's rules, runs its ticks, and records the
// world after each one. Rule compilation failures abort; scenarios are
// expected to be well formed.
func Execute(s *Scenario) (*Outcome, error) {
	world, err := canvas.Parse(nil, s.World)
	if err != nil {
		return nil, fmt.Errorf("scenario %q world: %w", s.Name, err)
	}

	var rules []*rule.Rule
	for _, ra := range s.Rules {
		before, err := canvas.Parse(nil, ra.Before)
		if err != nil {
			return nil, fmt.Errorf("scenario %q rule %q before: %w", s.Name, ra.Name, err)
		}
		after, err := canvas.Parse(nil, ra.After)
		if err != nil {
			return nil, fmt.Errorf("scenario %q rule %q after: %w", s.Name, ra.Name, err)
		}
		r, err := rule.Compile(ra.Name, before, after)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}

	e := engine.New(engine.NewWorld(world), rules,
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		engine.WithTokenGenerator(engine.NewFixedGenerator()),
		engine.WithValidation(),
		engine.WithMatchBudget(s.Budget),
	)

	out := &Outcome{}
	for i := 0; i < s.Ticks; i++ {
		tr, err := e.Tick(context.Background())
		if err != nil {
			return nil, fmt.Errorf("scenario %q tick %d: %w", s.Name, tr.Tick, err)
		}
		out.Ticks = append(out.Ticks, TickRecord{
			Tick:         tr.Tick,
			Applications: tr.Applications,
			Woken:        tr.Woken,
			World:        canvas.Render(nil, e.World().Pixels()),
		})
		out.Applications += tr.Applications
		out.Stable = tr.Stable && tr.Woken == 0
	}
	out.Final = canvas.Render(nil, e.World().Pixels())
	return out, nil
}
