// Package term provides the immutable symbolic expression trees shared by
// the verification engine and its prover session. Terms are structurally
// shared and never mutated, so they are safe to reference from any number of
// execution branches at once. Structural equality is equality of the
// canonical String rendering.
package term

import (
	"fmt"
	"strconv"
	"strings"
)

// Sort classifies a term's value domain.
type Sort int

const (
	Bool Sort = iota
	Int
	Snap
)

func (s Sort) String() string {
	switch s {
	case Bool:
		return "Bool"
	case Int:
		return "Int"
	case Snap:
		return "Snap"
	}
	return fmt.Sprintf("Sort<%d>", int(s))
}

// Term is an immutable symbolic expression.
type Term interface {
	Sort() Sort
	String() string
}

type truth bool

// The boolean literals. Compare against these directly; the smart
// constructors below fold to them whenever possible.
var (
	True  Term = truth(true)
	False Term = truth(false)
)

func (t truth) Sort() Sort { return Bool }

func (t truth) String() string {
	if t {
		return "true"
	}
	return "false"
}

// Variable is an uninterpreted symbolic variable.
type Variable struct {
	Name string
	Kind Sort
}

// Var returns a variable term of the given sort.
func Var(name string, sort Sort) *Variable {
	return &Variable{Name: name, Kind: sort}
}

func (v *Variable) Sort() Sort     { return v.Kind }
func (v *Variable) String() string { return v.Name }

// IntLit is an integer literal.
type IntLit struct {
	Value int64
}

// Integer returns an integer literal term.
func Integer(v int64) *IntLit {
	return &IntLit{Value: v}
}

func (l *IntLit) Sort() Sort     { return Int }
func (l *IntLit) String() string { return strconv.FormatInt(l.Value, 10) }

// NotTerm is boolean negation.
type NotTerm struct {
	X Term
}

// Not returns the negation of t. Double negations cancel and the boolean
// literals fold.
func Not(t Term) Term {
	switch t := t.(type) {
	case truth:
		return truth(!t)
	case *NotTerm:
		return t.X
	}
	return &NotTerm{X: t}
}

func (t *NotTerm) Sort() Sort     { return Bool }
func (t *NotTerm) String() string { return "(not " + t.X.String() + ")" }

// AndTerm is n-ary conjunction.
type AndTerm struct {
	Conj []Term
}

// And returns the conjunction of ts. Nested conjunctions are flattened,
// true operands are dropped, a false operand collapses the whole term, the
// empty conjunction is True and a singleton is returned unchanged.
func And(ts ...Term) Term {
	flat := make([]Term, 0, len(ts))
	for _, t := range ts {
		switch t := t.(type) {
		case truth:
			if !bool(t) {
				return False
			}
		case *AndTerm:
			flat = append(flat, t.Conj...)
		default:
			flat = append(flat, t)
		}
	}
	switch len(flat) {
	case 0:
		return True
	case 1:
		return flat[0]
	}
	return &AndTerm{Conj: flat}
}

func (t *AndTerm) Sort() Sort     { return Bool }
func (t *AndTerm) String() string { return renderNary("and", t.Conj) }

// OrTerm is n-ary disjunction.
type OrTerm struct {
	Disj []Term
}

// Or returns the disjunction of ts, with simplifications dual to And.
func Or(ts ...Term) Term {
	flat := make([]Term, 0, len(ts))
	for _, t := range ts {
		switch t := t.(type) {
		case truth:
			if bool(t) {
				return True
			}
		case *OrTerm:
			flat = append(flat, t.Disj...)
		default:
			flat = append(flat, t)
		}
	}
	switch len(flat) {
	case 0:
		return False
	case 1:
		return flat[0]
	}
	return &OrTerm{Disj: flat}
}

func (t *OrTerm) Sort() Sort     { return Bool }
func (t *OrTerm) String() string { return renderNary("or", t.Disj) }

// ImpliesTerm is boolean implication.
type ImpliesTerm struct {
	A, B Term
}

// Implies returns A => B, folding constant antecedents.
func Implies(a, b Term) Term {
	switch a {
	case True:
		return b
	case False:
		return True
	}
	return &ImpliesTerm{A: a, B: b}
}

func (t *ImpliesTerm) Sort() Sort     { return Bool }
func (t *ImpliesTerm) String() string { return renderNary("=>", []Term{t.A, t.B}) }

// IffTerm is boolean equivalence.
type IffTerm struct {
	A, B Term
}

// Iff returns A <=> B.
func Iff(a, b Term) Term {
	if Equal(a, b) {
		return True
	}
	return &IffTerm{A: a, B: b}
}

func (t *IffTerm) Sort() Sort     { return Bool }
func (t *IffTerm) String() string { return renderNary("iff", []Term{t.A, t.B}) }

// EqTerm is equality over non-boolean sorts.
type EqTerm struct {
	A, B Term
}

// Eq returns A == B. Structurally identical operands fold to True, and
// boolean operands yield an equivalence instead.
func Eq(a, b Term) Term {
	if Equal(a, b) {
		return True
	}
	if a.Sort() == Bool && b.Sort() == Bool {
		return Iff(a, b)
	}
	return &EqTerm{A: a, B: b}
}

func (t *EqTerm) Sort() Sort     { return Bool }
func (t *EqTerm) String() string { return renderNary("=", []Term{t.A, t.B}) }

// IteTerm is if-then-else over any sort.
type IteTerm struct {
	Cond, Then, Else Term
}

// Ite returns the conditional term. Only constant conditions fold; equal
// arms are deliberately kept so that synthesized join facts retain their
// conditional shape.
func Ite(cond, then, els Term) Term {
	switch cond {
	case True:
		return then
	case False:
		return els
	}
	return &IteTerm{Cond: cond, Then: then, Else: els}
}

func (t *IteTerm) Sort() Sort     { return t.Then.Sort() }
func (t *IteTerm) String() string { return renderNary("ite", []Term{t.Cond, t.Then, t.Else}) }

// PlusTerm is integer addition.
type PlusTerm struct {
	A, B Term
}

// Plus returns A + B, folding literal operands.
func Plus(a, b Term) Term {
	if la, ok := a.(*IntLit); ok {
		if lb, ok := b.(*IntLit); ok {
			return Integer(la.Value + lb.Value)
		}
	}
	return &PlusTerm{A: a, B: b}
}

func (t *PlusTerm) Sort() Sort     { return Int }
func (t *PlusTerm) String() string { return renderNary("+", []Term{t.A, t.B}) }

// LessTerm is an integer strict comparison, uninterpreted by the prover.
type LessTerm struct {
	A, B Term
}

// Less returns A < B.
func Less(a, b Term) Term { return &LessTerm{A: a, B: b} }

func (t *LessTerm) Sort() Sort     { return Bool }
func (t *LessTerm) String() string { return renderNary("<", []Term{t.A, t.B}) }

// AtMostTerm is an integer non-strict comparison, uninterpreted by the
// prover.
type AtMostTerm struct {
	A, B Term
}

// AtMost returns A <= B.
func AtMost(a, b Term) Term { return &AtMostTerm{A: a, B: b} }

func (t *AtMostTerm) Sort() Sort     { return Bool }
func (t *AtMostTerm) String() string { return renderNary("<=", []Term{t.A, t.B}) }

// Equal reports structural equality of two terms.
func Equal(a, b Term) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}

// Negate returns the pointwise negation of ts.
func Negate(ts []Term) []Term {
	out := make([]Term, len(ts))
	for i, t := range ts {
		out[i] = Not(t)
	}
	return out
}

func renderNary(op string, ts []Term) string {
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(op)
	for _, t := range ts {
		sb.WriteByte(' ')
		sb.WriteString(t.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
