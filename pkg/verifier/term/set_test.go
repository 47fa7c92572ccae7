package term

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func render(ts []Term) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	return out
}

func TestSetAddIsIdempotent(t *testing.T) {
	x := Var("x", Bool)
	y := Var("y", Bool)

	s := NewSet(x, y, x, And(x, y), And(x, y))
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Has(x))
	assert.True(t, s.Has(And(x, y)))
	assert.False(t, s.Has(Or(x, y)))
}

func TestSetPreservesInsertionOrder(t *testing.T) {
	a := Var("a", Bool)
	b := Var("b", Bool)
	c := Var("c", Bool)

	s := NewSet(c, a, b, a)
	if diff := cmp.Diff([]string{"c", "a", "b"}, render(s.Slice())); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestSetUnion(t *testing.T) {
	a := Var("a", Bool)
	b := Var("b", Bool)
	c := Var("c", Bool)

	u := NewSet(a, b).Union(NewSet(b, c))
	if diff := cmp.Diff([]string{"a", "b", "c"}, render(u.Slice())); diff != "" {
		t.Fatalf("unexpected union (-want +got):\n%s", diff)
	}
}

func TestSetDiff(t *testing.T) {
	a := Var("a", Bool)
	b := Var("b", Bool)
	c := Var("c", Bool)

	d := NewSet(a, b, c).Diff(NewSet(b))
	if diff := cmp.Diff([]string{"a", "c"}, render(d.Slice())); diff != "" {
		t.Fatalf("unexpected diff (-want +got):\n%s", diff)
	}

	// Diff against nil leaves the set unchanged.
	d = NewSet(a).Diff(nil)
	assert.Equal(t, 1, d.Len())
}

func TestSetSliceIsACopy(t *testing.T) {
	a := Var("a", Bool)
	b := Var("b", Bool)

	s := NewSet(a, b)
	out := s.Slice()
	out[0] = Var("mutated", Bool)
	assert.Equal(t, "a", s.Slice()[0].String())
}
