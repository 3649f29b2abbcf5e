package match

import (
	"sort"

	"github.com/pictomat/pictomat/internal/grid"
	"github.com/pictomat/pictomat/internal/rule"
	"github.com/pictomat/pictomat/internal/topo"
)

// TraceEvent describes one step of the backtracking search, for debugging
// pathological rules. Bind events fire on every accepted pairing, Reject on
// every refused candidate, Backtrack when an assignment is undone.
type TraceEvent struct {
	Kind    TraceKind
	Pattern int
	Region  topo.RegionID
	Reason  string
}

type TraceKind uint8

const (
	TraceBind TraceKind = iota
	TraceReject
	TraceBacktrack
)

// Options tunes a search. The zero value searches without budget, trace, or
// sleep awareness.
type Options struct {
	// Budget caps the number of candidate pairings examined across the
	// whole search. Zero means unlimited.
	Budget int
	// Asleep tells the search which world regions are asleep. Asleep
	// regions are invisible to matching entirely, whatever the pattern
	// region's marker. Nil means everything is awake.
	Asleep func(topo.RegionID) bool
	// Woken tells the search which regions woke at the last tick boundary.
	// Sleeping pattern regions match only woken regions; the scheduler
	// opens this window for a single pass per tick. Nil means nothing
	// just woke, so sleeping pattern regions match nothing.
	Woken func(topo.RegionID) bool
	// Trace, when set, receives every search step.
	Trace func(TraceEvent)
}

// Find returns the first match of r in t under deterministic enumeration
// order, or nil when the pattern does not occur. A BudgetError means the
// search gave up, not that no match exists.
func Find(t *topo.Topology, r *rule.Rule, opts Options) (*Match, error) {
	var found *Match
	err := search(t, r, opts, func(m *Match) bool {
		found = m
		return false
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// Each enumerates matches lazily in deterministic order, calling fn for
// every match until it returns false. The enumeration holds no resources;
// abandoning it early is free. The engine uses this to skip over matches
// whose application would have no effect.
func Each(t *topo.Topology, r *rule.Rule, opts Options, fn func(*Match) bool) error {
	return search(t, r, opts, fn)
}

// FindAll returns every match in deterministic order. Mostly a test and
// debugging aid; the engine only ever takes the first.
func FindAll(t *topo.Topology, r *rule.Rule, opts Options) ([]*Match, error) {
	var all []*Match
	err := search(t, r, opts, func(m *Match) bool {
		all = append(all, m)
		return true
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

type searcher struct {
	topo *topo.Topology
	rule *rule.Rule
	opts Options

	order      []int           // pattern indices, most constrained first
	candidates [][]topo.RegionID
	assigned   []topo.RegionID // by pattern index, -1 unset
	used       map[topo.RegionID]struct{}

	solidOffset grid.Point
	solidFixed  bool

	spent int
	emit  func(*Match) bool
	done  bool
}

func search(t *topo.Topology, r *rule.Rule, opts Options, emit func(*Match) bool) error {
	s := &searcher{
		topo:     t,
		rule:     r,
		opts:     opts,
		assigned: make([]topo.RegionID, len(r.Pattern.Regions)),
		used:     make(map[topo.RegionID]struct{}),
		emit:     emit,
	}
	for i := range s.assigned {
		s.assigned[i] = -1
	}
	s.buildCandidates()
	s.buildOrder()

	// A pattern region with no candidate at all can never match.
	for _, i := range s.order {
		if len(s.candidates[i]) == 0 {
			return nil
		}
	}
	return s.extend(0)
}

// buildCandidates filters world regions per pattern region on the cheap
// local constraints: color, hole count, degree, sleep state, and solid
// congruence. Candidate lists are in region ID order, which fixes the
// enumeration order of the whole search.
func (s *searcher) buildCandidates() {
	s.candidates = make([][]topo.RegionID, len(s.rule.Pattern.Regions))
	for i, pr := range s.rule.Pattern.Regions {
		var list []topo.RegionID
		for _, wr := range s.topo.Regions {
			if s.admissible(pr, wr) {
				list = append(list, wr.ID)
			}
		}
		s.candidates[i] = list
	}
}

func (s *searcher) admissible(pr *rule.PatternRegion, wr *topo.Region) bool {
	if s.opts.Asleep != nil && s.opts.Asleep(wr.ID) {
		return false
	}
	if pr.Sleeping && (s.opts.Woken == nil || !s.opts.Woken(wr.ID)) {
		return false
	}
	if pr.Kind != rule.Placeholder && wr.Color.Opaque() != pr.Color {
		return false
	}
	if wr.HoleCount() != pr.HoleCount {
		return false
	}
	if s.topo.Degree(wr.ID) < len(s.rule.Pattern.Contacts(pr.Index)) {
		return false
	}
	if pr.Kind == rule.Solid && !congruent(pr, wr) {
		return false
	}
	return true
}

// congruent reports whether the world region is an exact translate of the
// pattern region's footprint.
func congruent(pr *rule.PatternRegion, wr *topo.Region) bool {
	if len(pr.Cells) != len(wr.Cells) {
		return false
	}
	d := wr.Anchor().Sub(pr.Anchor())
	for i, p := range pr.Cells {
		if p.Add(d) != wr.Cells[i] {
			return false
		}
	}
	return true
}

// buildOrder sorts pattern indices most-constrained-first: fewest candidates
// wins, solids before deformables on ties, placeholders always last. Index
// order breaks remaining ties so the order is stable.
func (s *searcher) buildOrder() {
	n := len(s.rule.Pattern.Regions)
	s.order = make([]int, n)
	for i := range s.order {
		s.order[i] = i
	}
	rank := func(k rule.Kind) int {
		switch k {
		case rule.Solid:
			return 0
		case rule.Deformable:
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(s.order, func(a, b int) bool {
		ia, ib := s.order[a], s.order[b]
		pa, pb := s.rule.Pattern.Regions[ia], s.rule.Pattern.Regions[ib]
		if (pa.Kind == rule.Placeholder) != (pb.Kind == rule.Placeholder) {
			return pb.Kind == rule.Placeholder
		}
		if len(s.candidates[ia]) != len(s.candidates[ib]) {
			return len(s.candidates[ia]) < len(s.candidates[ib])
		}
		if rank(pa.Kind) != rank(pb.Kind) {
			return rank(pa.Kind) < rank(pb.Kind)
		}
		return ia < ib
	})
}

func (s *searcher) extend(depth int) error {
	if s.done {
		return nil
	}
	if depth == len(s.order) {
		regions := make([]topo.RegionID, len(s.assigned))
		copy(regions, s.assigned)
		m := &Match{
			Rule:        s.rule,
			Regions:     regions,
			SolidOffset: s.solidOffset,
			HasSolid:    s.solidFixed,
		}
		if !s.emit(m) {
			s.done = true
		}
		return nil
	}

	pi := s.order[depth]
	pr := s.rule.Pattern.Regions[pi]
	for _, cand := range s.candidates[pi] {
		if err := s.charge(); err != nil {
			return err
		}
		if reason, ok := s.accepts(pi, pr, cand); !ok {
			s.trace(TraceEvent{Kind: TraceReject, Pattern: pi, Region: cand, Reason: reason})
			continue
		}

		s.assigned[pi] = cand
		s.used[cand] = struct{}{}
		fixedHere := false
		if pr.Kind == rule.Solid && !s.solidFixed {
			s.solidOffset = s.topo.Region(cand).Anchor().Sub(pr.Anchor())
			s.solidFixed = true
			fixedHere = true
		}
		s.trace(TraceEvent{Kind: TraceBind, Pattern: pi, Region: cand})

		if err := s.extend(depth + 1); err != nil {
			return err
		}

		s.assigned[pi] = -1
		delete(s.used, cand)
		if fixedHere {
			s.solidFixed = false
		}
		s.trace(TraceEvent{Kind: TraceBacktrack, Pattern: pi, Region: cand})
		if s.done {
			return nil
		}
	}
	return nil
}

// accepts checks the constraints that depend on earlier assignments:
// injectivity, the shared solid translation, and adjacency against every
// already-bound neighbor of the pattern region.
func (s *searcher) accepts(pi int, pr *rule.PatternRegion, cand topo.RegionID) (string, bool) {
	if _, taken := s.used[cand]; taken {
		return "already bound", false
	}
	if pr.Kind == rule.Solid && s.solidFixed {
		if s.topo.Region(cand).Anchor().Sub(pr.Anchor()) != s.solidOffset {
			return "solid translation differs", false
		}
	}
	for _, pc := range s.rule.Pattern.Contacts(pi) {
		other := s.assigned[pc.Other]
		if other < 0 {
			continue
		}
		wc, adjacent := s.topo.Adjacent(cand, other)
		if !adjacent {
			return "pattern neighbors not adjacent in world", false
		}
		if pc.ViaOuter && !wc.ViaOuter {
			return "outer contact missing", false
		}
		if pc.ViaHole && !wc.ViaHole {
			return "hole contact missing", false
		}
	}
	return "", true
}

func (s *searcher) charge() error {
	s.spent++
	if s.opts.Budget > 0 && s.spent > s.opts.Budget {
		return &BudgetError{Rule: s.rule.Name, Limit: s.opts.Budget}
	}
	return nil
}

func (s *searcher) trace(ev TraceEvent) {
	if s.opts.Trace != nil {
		s.opts.Trace(ev)
	}
}
