package engine

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/verax-verifier/verax/pkg/verifier/state"
	"github.com/verax-verifier/verax/pkg/verifier/term"
)

// Completion reports the term and context a branch of a joined
// sub-expression produced. It must be invoked at most once per branch;
// invoking it twice is a structural violation.
type Completion func(produced term.Term, pc *state.PathContext) (Result, error)

// JoinContinuation is the body of one side of a branch-and-join. It runs
// under the side's scope and context and hands its produced term and final
// context to complete.
type JoinContinuation func(pc *state.PathContext, complete Completion) (Result, error)

// JoinFunc receives the terms the two sides produced (nil for a side that
// was unreachable) and the merged post-join context, and continues
// verification from the join point.
type JoinFunc func(trueTerm, falseTerm term.Term, merged *state.PathContext) (Result, error)

// FactClassifier partitions a branch's residual facts by provenance:
// top-level facts hold regardless of which branch was taken and may be
// assumed unconditionally after the join; nested facts hold only on their
// branch.
type FactClassifier interface {
	Partition(facts *term.Set) (topLevel, nested *term.Set)
}

// ClassifierFunc adapts a function to the FactClassifier interface.
type ClassifierFunc func(facts *term.Set) (topLevel, nested *term.Set)

func (f ClassifierFunc) Partition(facts *term.Set) (*term.Set, *term.Set) { return f(facts) }

// ClassifyAllNested treats every residual fact as branch-conditional. It is
// the sound default when no provenance tracker is wired in.
var ClassifyAllNested FactClassifier = ClassifierFunc(func(facts *term.Set) (*term.Set, *term.Set) {
	return term.NewSet(), facts
})

// Joiner collapses two divergent continuations of a branching
// sub-expression back into a single symbolic term and a single path
// context, so the caller does not itself have to fork.
type Joiner struct {
	brancher   *Brancher
	prover     Prover
	classifier FactClassifier
	log        logrus.FieldLogger
}

// NewJoiner returns a joiner over the given brancher. A nil classifier
// defaults to ClassifyAllNested.
func NewJoiner(b *Brancher, classifier FactClassifier, log logrus.FieldLogger) *Joiner {
	if classifier == nil {
		classifier = ClassifyAllNested
	}
	return &Joiner{
		brancher:   b,
		prover:     b.Prover(),
		classifier: classifier,
		log:        log,
	}
}

type joinRecord struct {
	fired    bool
	produced term.Term
	pc       *state.PathContext
	facts    *term.Set
}

// BranchAndJoin branches on guard via the two-way branch primitive, letting
// each side elaborate its sub-expression and report through its completion
// callback, then recombines: residual facts from each side are partitioned
// by the classifier, top-level facts are assumed unconditionally, nested
// facts are assumed under a single synthesized conditional, and the two
// contexts are merged with their branch-local guards stripped. Finally join
// runs with the produced terms and the merged context, and its outcome is
// folded with the branch outcome.
func (j *Joiner) BranchAndJoin(ctx context.Context, s *state.State, guard term.Term, pc *state.PathContext, onTrue, onFalse JoinContinuation, join JoinFunc) (Result, error) {
	pre := j.prover.Facts()

	records := [2]*joinRecord{{}, {}}
	sideGuards := [2]term.Term{guard, term.Not(guard)}
	sideNames := [2]string{"true", "false"}

	wrap := func(side int, cont JoinContinuation) Continuation {
		return func(epc *state.PathContext) (Result, error) {
			return cont(epc, func(produced term.Term, rpc *state.PathContext) (Result, error) {
				rec := records[side]
				if rec.fired {
					return Result{}, errors.Errorf("join completion for the %s branch invoked more than once", sideNames[side])
				}
				rec.fired = true
				rec.produced = produced
				rec.pc = rpc
				rec.facts = j.prover.Facts().Diff(pre.Union(term.NewSet(sideGuards[side])))
				return Success(), nil
			})
		}
	}

	branchResult, err := j.brancher.Branch(ctx, s, []term.Term{guard}, pc, wrap(0, onTrue), wrap(1, onFalse))
	if err != nil {
		return Unreachable(), err
	}

	var nested [2]term.Term
	for side, rec := range records {
		if rec.facts == nil {
			rec.facts = term.NewSet()
		}
		topLevel, branchLocal := j.classifier.Partition(rec.facts)
		j.prover.Assume(topLevel.Slice()...)
		nested[side] = term.And(branchLocal.Slice()...)
	}
	conditional := term.Ite(guard, nested[0], nested[1])
	j.prover.Comment(fmt.Sprintf("join: assuming %s", conditional))
	j.prover.Assume(conditional)

	base := pc.BranchConditions()
	var merged *state.PathContext
	switch {
	case records[0].fired && records[1].fired:
		// Branch-local guards must not leak into the merged context;
		// reset both sides to the pre-join conditions first.
		merged, err = records[0].pc.WithBranchConditions(base).Merge(records[1].pc.WithBranchConditions(base))
		if err != nil {
			return Unreachable(), errors.Wrap(err, "joining branch contexts")
		}
	case records[0].fired:
		merged = records[0].pc.WithBranchConditions(base)
	case records[1].fired:
		merged = records[1].pc.WithBranchConditions(base)
	default:
		merged = pc
	}

	j.log.WithFields(logrus.Fields{
		"guard":        guard.String(),
		"trueReached":  records[0].fired,
		"falseReached": records[1].fired,
	}).Debug("joining branches")

	joinResult, err := join(records[0].produced, records[1].produced, merged)
	if err != nil {
		return Unreachable(), err
	}
	return Combine(branchResult, joinResult), nil
}
