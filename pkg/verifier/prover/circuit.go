package prover

import (
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/verax-verifier/verax/pkg/verifier/term"
)

// compiler translates terms into literals of an and-inverter circuit shared
// by one query. Boolean structure becomes gates; every other leaf becomes a
// propositional atom keyed by its canonical rendering, so repeated
// occurrences of the same subterm share one literal and contradictory
// occurrences still close the formula.
type compiler struct {
	c     *logic.C
	atoms map[string]z.Lit
}

func newCompiler() *compiler {
	return &compiler{
		c:     logic.NewC(),
		atoms: make(map[string]z.Lit),
	}
}

func (cp *compiler) lit(t term.Term) z.Lit {
	if t == term.True {
		return cp.c.T
	}
	if t == term.False {
		return cp.c.F
	}

	switch t := t.(type) {
	case *term.NotTerm:
		return cp.lit(t.X).Not()
	case *term.AndTerm:
		return cp.c.Ands(cp.lits(t.Conj)...)
	case *term.OrTerm:
		return cp.c.Ors(cp.lits(t.Disj)...)
	case *term.ImpliesTerm:
		return cp.c.Or(cp.lit(t.A).Not(), cp.lit(t.B))
	case *term.IffTerm:
		return cp.c.Xor(cp.lit(t.A), cp.lit(t.B)).Not()
	case *term.IteTerm:
		if t.Sort() == term.Bool {
			return cp.c.Choice(cp.lit(t.Cond), cp.lit(t.Then), cp.lit(t.Else))
		}
	}

	return cp.atom(t)
}

func (cp *compiler) lits(ts []term.Term) []z.Lit {
	out := make([]z.Lit, len(ts))
	for i, t := range ts {
		out[i] = cp.lit(t)
	}
	return out
}

func (cp *compiler) atom(t term.Term) z.Lit {
	k := t.String()
	if m, ok := cp.atoms[k]; ok {
		return m
	}
	m := cp.c.Lit()
	cp.atoms[k] = m
	return m
}
