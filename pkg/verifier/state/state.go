// Package state holds the mutable verification state threaded through
// branch exploration and the value-like per-path context that travels with
// it.
package state

import (
	"github.com/verax-verifier/verax/pkg/verifier/heap"
)

// State is the verification state shared across branches. The heap is the
// only part of it the engine ever rewrites temporarily, and it is always
// restored before control leaves the branch that rewrote it.
type State struct {
	Heap *heap.Heap
}

// New returns a state over the given heap. A nil heap is replaced with an
// empty one.
func New(h *heap.Heap) *State {
	if h == nil {
		h = heap.New()
	}
	return &State{Heap: h}
}
