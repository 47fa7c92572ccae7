package term

// Set is an insertion-ordered set of terms keyed by structural identity.
// The zero value is not usable; construct with NewSet.
type Set struct {
	order []Term
	index map[string]struct{}
}

// NewSet returns a set containing the given terms.
func NewSet(ts ...Term) *Set {
	s := &Set{index: make(map[string]struct{})}
	s.Add(ts...)
	return s
}

// Add inserts terms not already present, preserving insertion order.
func (s *Set) Add(ts ...Term) {
	for _, t := range ts {
		k := t.String()
		if _, ok := s.index[k]; ok {
			continue
		}
		s.index[k] = struct{}{}
		s.order = append(s.order, t)
	}
}

// Has reports whether t is present.
func (s *Set) Has(t Term) bool {
	_, ok := s.index[t.String()]
	return ok
}

// Len returns the number of distinct terms.
func (s *Set) Len() int { return len(s.order) }

// Slice returns the members in insertion order. The result is a copy.
func (s *Set) Slice() []Term {
	out := make([]Term, len(s.order))
	copy(out, s.order)
	return out
}

// Union returns a new set holding the members of both sets.
func (s *Set) Union(o *Set) *Set {
	out := NewSet(s.order...)
	if o != nil {
		out.Add(o.order...)
	}
	return out
}

// Diff returns a new set holding the members of s not present in o.
func (s *Set) Diff(o *Set) *Set {
	out := NewSet()
	for _, t := range s.order {
		if o != nil && o.Has(t) {
			continue
		}
		out.Add(t)
	}
	return out
}
