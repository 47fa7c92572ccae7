package prover

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verax-verifier/verax/pkg/verifier/term"
)

func testLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestInScopeRestoresFacts(t *testing.T) {
	s := New(testLogger())
	a := term.Var("a", term.Bool)
	b := term.Var("b", term.Bool)

	s.Assume(a)
	err := s.InScope(func() error {
		s.Assume(b)
		assert.True(t, s.Facts().Has(a))
		assert.True(t, s.Facts().Has(b))
		return nil
	})
	require.NoError(t, err)

	assert.True(t, s.Facts().Has(a))
	assert.False(t, s.Facts().Has(b))
}

func TestInScopePopsOnError(t *testing.T) {
	s := New(testLogger())
	b := term.Var("b", term.Bool)

	err := s.InScope(func() error {
		s.Assume(b)
		return io.ErrUnexpectedEOF
	})
	assert.Equal(t, io.ErrUnexpectedEOF, err)
	assert.Equal(t, 0, s.Facts().Len())
}

func TestNestedScopes(t *testing.T) {
	s := New(testLogger())
	a := term.Var("a", term.Bool)
	b := term.Var("b", term.Bool)
	c := term.Var("c", term.Bool)

	s.Assume(a)
	err := s.InScope(func() error {
		s.Assume(b)
		return s.InScope(func() error {
			s.Assume(c)
			assert.Equal(t, 3, s.Facts().Len())
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Facts().Len())
}

func TestProvenInfeasible(t *testing.T) {
	s := New(testLogger())
	g := term.Var("g", term.Bool)

	s.Assume(g)
	assert.True(t, s.ProvenInfeasible(context.Background(), term.Not(g)))
	assert.False(t, s.ProvenInfeasible(context.Background(), g))
}

func TestProvenInfeasibleBooleanStructure(t *testing.T) {
	s := New(testLogger())
	p := term.Var("p", term.Bool)
	q := term.Var("q", term.Bool)

	assert.True(t, s.ProvenInfeasible(context.Background(), term.And(p, term.Not(p))))
	assert.False(t, s.ProvenInfeasible(context.Background(), term.Or(p, term.Not(p))))
	assert.True(t, s.ProvenInfeasible(context.Background(),
		term.And(term.Implies(p, q), p, term.Not(q))))
}

func TestAtomsShareLiterals(t *testing.T) {
	s := New(testLogger())
	x := term.Var("x", term.Int)

	s.Assume(term.Eq(x, term.Integer(1)))

	// The same equality atom maps to the same literal, so its negation
	// closes the formula.
	assert.True(t, s.ProvenInfeasible(context.Background(), term.Not(term.Eq(x, term.Integer(1)))))

	// A different equality is an unrelated atom; the propositional
	// abstraction cannot refute it.
	assert.False(t, s.ProvenInfeasible(context.Background(), term.Eq(x, term.Integer(2))))
}

func TestConditionalFactPropagates(t *testing.T) {
	s := New(testLogger())
	g := term.Var("g", term.Bool)
	p := term.Var("p", term.Bool)

	// p holds on both arms, so it holds outright.
	s.Assume(term.Ite(g, p, p))
	assert.True(t, s.ProvenInfeasible(context.Background(), term.Not(p)))
}

func TestUnknownIsNeverInfeasible(t *testing.T) {
	s := New(testLogger())
	g := term.Var("g", term.Bool)
	s.Assume(g)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A cancelled budget degrades to "unknown", which must never prune.
	assert.False(t, s.ProvenInfeasible(ctx, term.Not(g)))
	assert.Equal(t, uint64(1), s.Statistics().Timeouts)
}

func TestStatisticsCountQueries(t *testing.T) {
	s := New(testLogger())
	g := term.Var("g", term.Bool)

	s.ProvenInfeasible(context.Background(), g)
	s.ProvenInfeasible(context.Background(), term.Not(g))
	assert.Equal(t, uint64(2), s.Statistics().Queries)
	assert.Equal(t, uint64(0), s.Statistics().Timeouts)
}
