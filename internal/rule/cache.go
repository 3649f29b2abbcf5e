package rule

import (
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/pictomat/pictomat/internal/canvas"
	"github.com/pictomat/pictomat/internal/grid"
)

// Digest identifies a before/after pair by content. Two image pairs with the
// same painted cells hash equal regardless of load order or source file.
type Digest [sha256.Size]byte

// DigestImages hashes a before/after pair.
func DigestImages(before, after *canvas.Pixmap) Digest {
	h := sha256.New()
	for _, m := range []*canvas.Pixmap{before, after} {
		m.Each(func(p grid.Point, c canvas.Color) {
			var buf [12]byte
			binary.BigEndian.PutUint32(buf[0:], uint32(p.X))
			binary.BigEndian.PutUint32(buf[4:], uint32(p.Y))
			buf[8], buf[9], buf[10], buf[11] = c.R, c.G, c.B, c.A
			h.Write(buf[:])
		})
		h.Write([]byte{0xFF})
	}
	var d Digest
	h.Sum(d[:0])
	return d
}

// Cache memoizes compiled rules by image digest. Compilation is pure, so a
// hit is always valid until Invalidate is called to force recompilation,
// e.g. after rule files change on disk.
type Cache struct {
	mu    sync.Mutex
	rules map[Digest]*Rule
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{rules: make(map[Digest]*Rule)}
}

// Compile returns the cached rule for the pair, compiling on miss.
// Compilation errors are not cached.
func (c *Cache) Compile(name string, before, after *canvas.Pixmap) (*Rule, error) {
	d := DigestImages(before, after)

	c.mu.Lock()
	r, ok := c.rules[d]
	c.mu.Unlock()
	if ok {
		return r, nil
	}

	r, err := Compile(name, before, after)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.rules[d] = r
	c.mu.Unlock()
	return r, nil
}

// Invalidate drops every cached rule.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.rules = make(map[Digest]*Rule)
	c.mu.Unlock()
}

// Len returns the number of cached rules.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rules)
}
