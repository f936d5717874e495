package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates predictable search IDs: "<prefix>-1", "<prefix>-2", ...
//
// It satisfies store.IDGenerator so log output can be compared exactly.
// Safe for concurrent use.
type SequentialIDs struct {
	prefix string

	mu  sync.Mutex
	seq int
}

// NewSequentialIDs creates a generator. An empty prefix means "search".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "search"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next ID.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%d", g.prefix, g.seq)
}
