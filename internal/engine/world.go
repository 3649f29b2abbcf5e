package engine

import (
	"github.com/pictomat/pictomat/internal/canvas"
	"github.com/pictomat/pictomat/internal/grid"
	"github.com/pictomat/pictomat/internal/topo"
)

// World is the mutable execution state: the pixel map, its extracted
// topology, and the sleep set. The topology is rebuilt (or cheaply patched)
// after every rewrite; callers outside the engine only ever see it between
// rewrites, when it is consistent with the pixels.
//
// Sleep is keyed by region anchor cells rather than region IDs because IDs
// are not stable across re-extraction. A region keeps its sleep state as
// long as its anchor cell survives as an anchor. The woken set holds the
// anchors the last tick boundary cleared, for the one matching pass where
// sleeping-marked rules may bind them.
type World struct {
	pix    *canvas.Pixmap
	top    *topo.Topology
	asleep map[grid.Point]struct{}
	woken  map[grid.Point]struct{}

	clock *Clock
}

// NewWorld extracts the topology of pix and wraps it as a world. The pixmap
// is owned by the world afterwards; callers must not mutate it.
func NewWorld(pix *canvas.Pixmap) *World {
	return &World{
		pix:    pix,
		top:    topo.Extract(pix),
		asleep: make(map[grid.Point]struct{}),
		woken:  make(map[grid.Point]struct{}),
		clock:  NewClock(),
	}
}

// Topology returns the current region graph, read-only.
func (w *World) Topology() *topo.Topology {
	return w.top
}

// Pixels returns the current pixel map, read-only.
func (w *World) Pixels() *canvas.Pixmap {
	return w.pix
}

// Generation returns a counter bumped on every applied rewrite. Renderers
// use it to skip redraws of unchanged worlds.
func (w *World) Generation() uint64 {
	return w.clock.Current()
}

// Asleep reports whether the region is currently asleep.
func (w *World) Asleep(id topo.RegionID) bool {
	_, ok := w.asleep[w.top.Region(id).Anchor()]
	return ok
}

// SleepCount returns the number of currently asleep regions.
func (w *World) SleepCount() int {
	return len(w.asleep)
}

// WakeAll moves every sleeping region into the woken set. The scheduler
// calls it at tick end; the woken regions stay visible to sleeping-marked
// rules for exactly one pass at the start of the next tick.
func (w *World) WakeAll() int {
	n := len(w.asleep)
	w.woken = w.asleep
	w.asleep = make(map[grid.Point]struct{})
	return n
}

// Woken reports whether the region woke at the last tick boundary and the
// wake window is still open.
func (w *World) Woken(id topo.RegionID) bool {
	_, ok := w.woken[w.top.Region(id).Anchor()]
	return ok
}

// WokenCount returns the number of regions in the open wake window.
func (w *World) WokenCount() int {
	return len(w.woken)
}

func (w *World) closeWakeWindow() {
	if len(w.woken) > 0 {
		w.woken = make(map[grid.Point]struct{})
	}
}

func (w *World) sleepAnchor(p grid.Point) {
	w.asleep[p] = struct{}{}
}

// adoptTopology installs a freshly built topology and prunes sleep and wake
// anchors that no longer anchor any region.
func (w *World) adoptTopology(t *topo.Topology) {
	w.top = t
	for p := range w.asleep {
		r, ok := t.RegionAt(p)
		if !ok || r.Anchor() != p {
			delete(w.asleep, p)
		}
	}
	for p := range w.woken {
		r, ok := t.RegionAt(p)
		if !ok || r.Anchor() != p {
			delete(w.woken, p)
		}
	}
	w.clock.Next()
}
