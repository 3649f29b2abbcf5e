package engine

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// TokenGenerator produces run tokens. Every call to Run gets a fresh token
// that tags log lines and journal rows so overlapping runs stay separable.
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-ordered UUIDs, so tokens sort by creation
// time in the journal.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (g *UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns tokens from a fixed list, for deterministic tests.
// After the list is exhausted it falls back to sequential synthetic tokens.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	next   int
}

// NewFixedGenerator creates a generator that yields the given tokens in order.
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next fixed token.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.next < len(g.tokens) {
		t := g.tokens[g.next]
		g.next++
		return t
	}
	g.next++
	return fmt.Sprintf("run-%04d", g.next)
}
