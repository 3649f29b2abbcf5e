package engine

import "sync/atomic"

// Clock is the monotonic generation counter for world state.
//
// Every applied rewrite bumps the generation. This ensures:
// - Renderers can skip redraws of unchanged worlds
// - Journal rows order by generation, not wall clock
// - Staleness of external topology references is detectable
//
// Thread-safety: Clock is safe for concurrent reads (atomic operations).
// However, the engine's single-writer design means only one goroutine
// calls Next().
type Clock struct {
	seq atomic.Uint64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next generation and increments the clock.
func (c *Clock) Next() uint64 {
	return c.seq.Add(1)
}

// Current returns the current generation without incrementing.
func (c *Clock) Current() uint64 {
	return c.seq.Load()
}
