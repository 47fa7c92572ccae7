package state

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verax-verifier/verax/pkg/verifier/term"
)

func conditions(pc *PathContext) []string {
	gs := pc.BranchConditions()
	out := make([]string, len(gs))
	for i, g := range gs {
		out[i] = g.String()
	}
	return out
}

func TestWithBranchConditionPrepends(t *testing.T) {
	g := term.Var("g", term.Bool)
	h := term.Var("h", term.Bool)

	pc := NewPathContext()
	first := pc.WithBranchCondition(g)
	second := first.WithBranchCondition(h)

	if diff := cmp.Diff([]string{"h", "g"}, conditions(second)); diff != "" {
		t.Fatalf("unexpected conditions (-want +got):\n%s", diff)
	}

	// Parents are untouched.
	assert.Empty(t, conditions(pc))
	if diff := cmp.Diff([]string{"g"}, conditions(first)); diff != "" {
		t.Fatalf("parent mutated (-want +got):\n%s", diff)
	}
}

func TestWithBranchConditionsReplaces(t *testing.T) {
	g := term.Var("g", term.Bool)
	h := term.Var("h", term.Bool)

	pc := NewPathContext().WithBranchCondition(g).WithBranchCondition(h)
	reset := pc.WithBranchConditions([]term.Term{g})
	if diff := cmp.Diff([]string{"g"}, conditions(reset)); diff != "" {
		t.Fatalf("unexpected conditions (-want +got):\n%s", diff)
	}
}

func TestClonePreservesRetrying(t *testing.T) {
	g := term.Var("g", term.Bool)

	pc := NewPathContext()
	pc.Retrying = true
	assert.True(t, pc.WithBranchCondition(g).Retrying)
	assert.True(t, pc.WithBinding("x", g).Retrying)
}

func TestWithBindingIsPure(t *testing.T) {
	x := term.Var("x", term.Int)

	pc := NewPathContext()
	bound := pc.WithBinding("x", x)
	assert.Empty(t, pc.Bindings)
	assert.Equal(t, x, bound.Bindings["x"])
}

func TestMergeUnionsBindings(t *testing.T) {
	g := term.Var("g", term.Bool)
	x := term.Var("x", term.Int)
	y := term.Var("y", term.Int)

	base := NewPathContext().WithBranchCondition(g)
	a := base.WithBinding("x", x)
	b := base.WithBinding("y", y)

	merged, err := a.Merge(b)
	require.NoError(t, err)
	assert.Equal(t, x, merged.Bindings["x"])
	assert.Equal(t, y, merged.Bindings["y"])
	if diff := cmp.Diff([]string{"g"}, conditions(merged)); diff != "" {
		t.Fatalf("unexpected conditions (-want +got):\n%s", diff)
	}
}

func TestMergeAgreeingBindings(t *testing.T) {
	x := term.Var("x", term.Int)

	a := NewPathContext().WithBinding("x", x)
	b := NewPathContext().WithBinding("x", term.Var("x", term.Int))
	_, err := a.Merge(b)
	assert.NoError(t, err)
}

func TestMergeRejectsDivergentConditions(t *testing.T) {
	g := term.Var("g", term.Bool)
	h := term.Var("h", term.Bool)

	type tc struct {
		Name string
		A, B *PathContext
	}

	for _, tt := range []tc{
		{
			Name: "different lengths",
			A:    NewPathContext().WithBranchCondition(g),
			B:    NewPathContext(),
		},
		{
			Name: "different guards",
			A:    NewPathContext().WithBranchCondition(g),
			B:    NewPathContext().WithBranchCondition(h),
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			_, err := tt.A.Merge(tt.B)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "cannot merge path contexts")
		})
	}
}

func TestMergeRejectsConflictingBindings(t *testing.T) {
	a := NewPathContext().WithBinding("x", term.Integer(1))
	b := NewPathContext().WithBinding("x", term.Integer(2))

	_, err := a.Merge(b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"x"`)
}
