package testutil

import (
	"fmt"
	"sync"
)

// FixedOpIDGenerator generates the same operation id every time.
//
// Logs captured with it are byte-identical across runs, so they can be
// compared against golden files.
//
// Thread-safety: FixedOpIDGenerator is stateless and safe for concurrent use.
type FixedOpIDGenerator struct {
	id string
}

// NewFixedOpIDGenerator creates a generator returning id.
// If id is empty, Generate returns "test-op".
func NewFixedOpIDGenerator(id string) *FixedOpIDGenerator {
	if id == "" {
		id = "test-op"
	}
	return &FixedOpIDGenerator{id: id}
}

// Generate returns the fixed id.
func (g *FixedOpIDGenerator) Generate() string {
	return g.id
}

// SequenceOpIDGenerator returns predetermined ids in order, for tests that
// tell operations apart in captured logs.
type SequenceOpIDGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewSequenceOpIDGenerator creates a generator that returns ids in order.
func NewSequenceOpIDGenerator(ids ...string) *SequenceOpIDGenerator {
	return &SequenceOpIDGenerator{ids: ids}
}

// Generate returns the next id.
// Panics if all ids have been consumed.
func (g *SequenceOpIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic(fmt.Sprintf("SequenceOpIDGenerator: all %d ids exhausted", len(g.ids)))
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
