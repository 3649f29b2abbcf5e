package engine

import (
	"context"
	"log/slog"

	"github.com/pictomat/pictomat/internal/canvas"
	"github.com/pictomat/pictomat/internal/grid"
	"github.com/pictomat/pictomat/internal/match"
	"github.com/pictomat/pictomat/internal/rule"
	"github.com/pictomat/pictomat/internal/topo"
)

// Engine is the single-writer tick scheduler.
//
// One tick runs matching and rewriting to a fixpoint: rules are tried in
// declaration order, the first effective match is applied, and the scan
// restarts from the top, since any rewrite can invalidate prior non-matches
// or create new ones. When a full pass over all rules yields no effect the
// tick is done: every sleeping region wakes and the stable world is the
// tick's output.
//
// All mutation happens on the caller's goroutine; the world is exclusively
// owned by the engine for the duration of Tick and Run.
//
// INVARIANTS:
//   - rules slice order NEVER changes after construction
//   - evaluation is single-threaded for determinism
//   - a failed tick leaves the world at its last stable state

// DefaultMaxApplications caps rewrites per tick. A rule set that exceeds it
// almost certainly oscillates instead of stabilizing.
const DefaultMaxApplications = 10000

// Phase is the scheduler's state within a tick, exposed for logging.
type Phase string

const (
	PhaseRunning     Phase = "running"
	PhaseApplying    Phase = "applying"
	PhaseStableCheck Phase = "stable-check"
	PhaseTickDone    Phase = "tick-done"
)

type Engine struct {
	world *World
	rules []*rule.Rule // declaration order

	log     *slog.Logger
	journal Journal
	tokens  TokenGenerator

	budget   int // match budget per search, 0 = unlimited
	maxApps  int
	validate bool
	trace    func(match.TraceEvent)

	tick int
}

// EngineOption configures engine parameters.
type EngineOption func(*Engine)

// WithLogger routes engine logs somewhere other than the default logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// WithJournal records ticks and rewrites to the given journal.
func WithJournal(j Journal) EngineOption {
	return func(e *Engine) { e.journal = j }
}

// WithTokenGenerator overrides run token generation, for deterministic tests.
func WithTokenGenerator(g TokenGenerator) EngineOption {
	return func(e *Engine) { e.tokens = g }
}

// WithMatchBudget caps backtracking steps per rule search. An exhausted
// budget counts as "no match this attempt", never as a failed tick.
func WithMatchBudget(n int) EngineOption {
	return func(e *Engine) { e.budget = n }
}

// WithMaxApplications overrides the per-tick rewrite cap.
//
// Default: 10000 (DefaultMaxApplications)
// Use a small value to exercise runaway detection in tests.
func WithMaxApplications(n int) EngineOption {
	return func(e *Engine) { e.maxApps = n }
}

// WithValidation re-checks topology invariants after every rewrite. Costs a
// full pass over the world per application; meant for tests and debugging.
func WithValidation() EngineOption {
	return func(e *Engine) { e.validate = true }
}

// WithTrace forwards matcher search events to fn.
func WithTrace(fn func(match.TraceEvent)) EngineOption {
	return func(e *Engine) { e.trace = fn }
}

// New creates an engine over a world with a rule set in declaration order.
// The rules slice is copied so callers cannot disturb rule priority later.
// Rules whose after image equals their before image are dropped up front;
// they can never have an effect.
func New(w *World, rules []*rule.Rule, opts ...EngineOption) *Engine {
	e := &Engine{
		world:   w,
		log:     slog.Default(),
		journal: NopJournal{},
		tokens:  &UUIDv7Generator{},
		maxApps: DefaultMaxApplications,
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, r := range rules {
		if !r.Changes() {
			e.log.Warn("dropping no-op rule", "rule", r.Name)
			continue
		}
		e.rules = append(e.rules, r)
	}
	return e
}

// World returns the engine's world for read-only inspection between ticks.
func (e *Engine) World() *World {
	return e.world
}

// Rules returns the number of active rules.
func (e *Engine) Rules() int {
	return len(e.rules)
}

// TickResult summarizes one tick.
type TickResult struct {
	Tick         int
	Applications int
	Woken        int
	// Stable means the tick applied nothing: the world was already at
	// fixpoint when it started.
	Stable bool
	// Touched holds anchor cells of regions changed this tick, for the
	// highlight layer.
	Touched []grid.Point
}

// Tick runs one full tick to fixpoint. On error the world is rolled back to
// the state it had when the tick started.
func (e *Engine) Tick(ctx context.Context) (TickResult, error) {
	return e.tickAs(ctx, "")
}

func (e *Engine) tickAs(ctx context.Context, run string) (TickResult, error) {
	e.tick++
	res := TickResult{Tick: e.tick}

	// Rollback point: pixels, sleep state, and wake window at tick start.
	checkpoint := e.world.pix.Clone()
	asleep := snapshotAnchors(e.world.asleep)
	woken := snapshotAnchors(e.world.woken)

	e.log.Debug("tick starting", "tick", e.tick, "phase", PhaseRunning)

	// Wake pass: rules with sleeping-marked regions get one attempt each
	// against the regions the last tick boundary woke, in declaration
	// order, before the window closes. Mid-tick they can never match.
	if e.world.WokenCount() > 0 {
		for _, r := range e.rules {
			if !r.Sleeper() {
				continue
			}
			applied, err := e.tryRule(run, r)
			if err != nil {
				e.rollback(checkpoint, asleep, woken)
				return res, err
			}
			if applied == nil {
				continue
			}
			res.Applications++
			res.Touched = append(res.Touched, applied.Touched...)
			if res.Applications >= e.maxApps {
				e.rollback(checkpoint, asleep, woken)
				return res, NewRunawayError(e.tick, res.Applications, e.maxApps)
			}
		}
	}
	e.world.closeWakeWindow()

pass:
	for {
		if err := ctx.Err(); err != nil {
			e.rollback(checkpoint, asleep, woken)
			return res, err
		}
		for _, r := range e.rules {
			if r.Sleeper() {
				continue
			}
			applied, err := e.tryRule(run, r)
			if err != nil {
				e.rollback(checkpoint, asleep, woken)
				return res, err
			}
			if applied == nil {
				continue
			}
			res.Applications++
			res.Touched = append(res.Touched, applied.Touched...)
			if res.Applications >= e.maxApps {
				e.rollback(checkpoint, asleep, woken)
				return res, NewRunawayError(e.tick, res.Applications, e.maxApps)
			}
			continue pass
		}
		break
	}

	e.log.Debug("tick stable", "tick", e.tick, "phase", PhaseStableCheck,
		"applications", res.Applications)

	res.Stable = res.Applications == 0
	res.Woken = e.world.WakeAll()
	e.log.Debug("tick done", "tick", e.tick, "phase", PhaseTickDone,
		"woken", res.Woken)

	if err := e.journal.TickFinished(run, e.tick, res.Applications, res.Woken); err != nil {
		e.log.Warn("journal write failed", "tick", e.tick, "error", err)
	}
	return res, nil
}

// tryRule searches for the first effective match of r and applies it.
// Matches whose application would change nothing are enumerated past; an
// exhausted match budget is logged and treated as no match.
func (e *Engine) tryRule(run string, r *rule.Rule) (*ApplyResult, error) {
	opts := match.Options{
		Budget: e.budget,
		Asleep: e.world.Asleep,
		Woken:  e.world.Woken,
		Trace:  e.trace,
	}

	var applied *ApplyResult
	err := match.Each(e.world.Topology(), r, opts, func(m *match.Match) bool {
		res := Apply(e.world, m)
		if !res.Changed {
			// Nothing was mutated, continuing the enumeration is safe.
			return true
		}
		applied = &res
		return false
	})
	if err != nil {
		if match.IsBudgetExceeded(err) {
			e.log.Warn("match budget exhausted, skipping rule this attempt",
				"tick", e.tick, "rule", r.Name, "budget", e.budget)
			return nil, nil
		}
		return nil, err
	}
	if applied == nil {
		return nil, nil
	}

	e.log.Debug("rewrite applied", "tick", e.tick, "phase", PhaseApplying,
		"rule", r.Name, "touched", len(applied.Touched))
	if e.validate {
		if verr := e.world.Topology().Validate(); verr != nil {
			return nil, NewInvariantError(e.tick, r.Name, verr)
		}
	}
	if jerr := e.journal.RewriteApplied(run, e.tick, r.Name, len(applied.Touched)); jerr != nil {
		e.log.Warn("journal write failed", "tick", e.tick, "error", jerr)
	}
	return applied, nil
}

func (e *Engine) rollback(pix *canvas.Pixmap, asleep, woken map[grid.Point]struct{}) {
	e.world.pix = pix
	e.world.adoptTopology(topo.Extract(pix))
	e.world.asleep = asleep
	e.world.woken = woken
	e.log.Warn("tick failed, world rolled back", "tick", e.tick)
}

func snapshotAnchors(set map[grid.Point]struct{}) map[grid.Point]struct{} {
	out := make(map[grid.Point]struct{}, len(set))
	for p := range set {
		out[p] = struct{}{}
	}
	return out
}

// RunResult summarizes a multi-tick run.
type RunResult struct {
	Token        string
	Ticks        int
	Applications int
	// FixedPoint means the run stopped because a tick applied nothing and
	// no sleeping region was left to wake: the world can never change again.
	FixedPoint bool
}

// Run executes up to maxTicks ticks, stopping early once the world reaches
// a fixpoint that waking cannot disturb.
func (e *Engine) Run(ctx context.Context, maxTicks int) (RunResult, error) {
	res := RunResult{Token: e.tokens.Generate()}
	if err := e.journal.RunStarted(res.Token, len(e.rules)); err != nil {
		e.log.Warn("journal write failed", "error", err)
	}
	e.log.Info("run starting", "run", res.Token, "rules", len(e.rules), "max_ticks", maxTicks)

	for res.Ticks < maxTicks {
		tr, err := e.tickAs(ctx, res.Token)
		if err != nil {
			return res, err
		}
		res.Ticks++
		res.Applications += tr.Applications
		if tr.Stable && tr.Woken == 0 {
			res.FixedPoint = true
			break
		}
	}

	e.log.Info("run finished", "run", res.Token, "ticks", res.Ticks,
		"applications", res.Applications, "fixed_point", res.FixedPoint)
	if err := e.journal.RunFinished(res.Token, res.Ticks); err != nil {
		e.log.Warn("journal write failed", "error", err)
	}
	return res, nil
}
