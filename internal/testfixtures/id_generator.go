package testfixtures

import (
	"fmt"
	"sync/atomic"
)

// IDGenerator yields sequential prefixed identifiers so tests can assert on
// exact ids.
type IDGenerator struct {
	prefix  string
	counter atomic.Uint64
}

// NewIDGenerator constructs a generator producing "<prefix>-1", "<prefix>-2"
// and so on. An empty prefix defaults to "id".
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.counter.Add(1))
}

// NextFunc exposes Next as a function suitable for dependency injection. A nil
// generator degrades to empty ids.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// Reset rewinds the sequence so the next identifier is "<prefix>-1" again.
func (g *IDGenerator) Reset() {
	g.counter.Store(0)
}
