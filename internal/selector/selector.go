// Package selector picks catalog indices for serving, either uniformly at
// random or in sequential round-robin order.
package selector

import (
	"math/rand"
	"sync/atomic"
)

// Mode names a selection strategy.
type Mode string

const (
	ModeRandom     Mode = "random"
	ModeSequential Mode = "sequential"
)

// Selector holds the one piece of mutable shared state on the hot path: the
// sequential cursor. The cursor is advanced with a single atomic
// fetch-and-add, so concurrent sequential requests never observe the same
// index and never skip one. Random mode keeps no state.
type Selector struct {
	cursor atomic.Uint64
}

// New creates a Selector with the sequential cursor at zero.
func New() *Selector {
	return &Selector{}
}

// Pick returns an index in [0, n). n must be positive; the caller guarantees
// a non-empty catalog.
func (s *Selector) Pick(n int, mode Mode) int {
	if n <= 0 {
		panic("selector: pick from empty catalog")
	}
	if mode == ModeRandom {
		return rand.Intn(n)
	}
	return int((s.cursor.Add(1) - 1) % uint64(n))
}
