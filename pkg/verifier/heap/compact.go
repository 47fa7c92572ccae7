package heap

import (
	"fmt"

	"github.com/verax-verifier/verax/pkg/verifier/term"
)

// Compact merges chunks guarding the same location in place: permission
// amounts are summed, and when the merged chunks disagree on the value a
// fresh variable stands in for it. The substitution loses chunk-level
// precision, which is why the engine only compacts speculatively, under a
// snapshot it restores afterward.
func Compact(h *Heap) {
	merged := make(map[uint64]*Chunk, len(h.chunks))
	var order []uint64
	var leftover []*Chunk
	fresh := 0

	for _, c := range h.chunks {
		key, err := c.locationKey()
		if err != nil {
			// Unhashable chunks are kept as-is rather than merged.
			leftover = append(leftover, c)
			continue
		}
		prev, ok := merged[key]
		if !ok {
			merged[key] = &Chunk{
				Resource: c.Resource,
				Args:     c.Args,
				Snap:     c.Snap,
				Perm:     c.Perm,
			}
			order = append(order, key)
			continue
		}
		prev.Perm = term.Plus(prev.Perm, c.Perm)
		if !term.Equal(prev.Snap, c.Snap) {
			prev.Snap = term.Var(fmt.Sprintf("$join%d@%s", fresh, c.Resource), term.Snap)
			fresh++
		}
	}

	out := make([]*Chunk, 0, len(order)+len(leftover))
	for _, key := range order {
		out = append(out, merged[key])
	}
	out = append(out, leftover...)
	h.chunks = out
}
