// Package heap provides the symbolic heap's permission-chunk collection,
// snapshot/restore of that collection, and an opportunistic lossy compaction
// used to keep chunk counts bounded across repeated verification attempts.
package heap

import (
	"strings"

	"github.com/mitchellh/hashstructure"

	"github.com/verax-verifier/verax/pkg/verifier/term"
)

// Chunk is one unit of symbolic permission information over a heap
// resource. Chunks are immutable once added to a heap.
type Chunk struct {
	// Resource names the predicate or field the chunk guards.
	Resource string
	// Args are the resource's symbolic arguments.
	Args []term.Term
	// Snap is the symbolic value held under the permission.
	Snap term.Term
	// Perm is the symbolic permission amount.
	Perm term.Term
}

func (c *Chunk) String() string {
	var sb strings.Builder
	sb.WriteString(c.Resource)
	sb.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteString(") # ")
	sb.WriteString(c.Perm.String())
	sb.WriteString(" -> ")
	sb.WriteString(c.Snap.String())
	return sb.String()
}

// locationKey identifies the heap location a chunk guards, ignoring its
// permission amount and value.
func (c *Chunk) locationKey() (uint64, error) {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return hashstructure.Hash(struct {
		Resource string
		Args     []string
	}{c.Resource, args}, nil)
}

// Heap is an ordered collection of permission chunks. It is the one shared
// mutable resource threaded through branch exploration; the engine restores
// it from a Snapshot before control leaves a branch.
type Heap struct {
	chunks []*Chunk
}

// New returns a heap holding the given chunks.
func New(chunks ...*Chunk) *Heap {
	h := &Heap{}
	h.Add(chunks...)
	return h
}

// Add appends chunks to the collection.
func (h *Heap) Add(chunks ...*Chunk) {
	h.chunks = append(h.chunks, chunks...)
}

// Chunks returns the current chunk collection. The slice is a copy; the
// chunks themselves are shared and immutable.
func (h *Heap) Chunks() []*Chunk {
	out := make([]*Chunk, len(h.chunks))
	copy(out, h.chunks)
	return out
}

// Len returns the number of chunks.
func (h *Heap) Len() int { return len(h.chunks) }

// Snapshot is an immutable capture of a heap's chunk collection.
type Snapshot struct {
	chunks []*Chunk
}

// Snapshot captures the current chunk collection.
func (h *Heap) Snapshot() Snapshot {
	chunks := make([]*Chunk, len(h.chunks))
	copy(chunks, h.chunks)
	return Snapshot{chunks: chunks}
}

// Restore replaces the chunk collection with the captured one.
func (h *Heap) Restore(s Snapshot) {
	h.chunks = make([]*Chunk, len(s.chunks))
	copy(h.chunks, s.chunks)
}

// Fingerprint returns a content hash of the chunk collection. Two heaps
// with the same fingerprint hold structurally identical chunks in the same
// order.
func (h *Heap) Fingerprint() (uint64, error) {
	keys := make([]string, len(h.chunks))
	for i, c := range h.chunks {
		keys[i] = c.String()
	}
	return hashstructure.Hash(keys, nil)
}
