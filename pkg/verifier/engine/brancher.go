package engine

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/verax-verifier/verax/pkg/metrics"
	"github.com/verax-verifier/verax/pkg/verifier/state"
	"github.com/verax-verifier/verax/pkg/verifier/term"
)

// Prover is the subset of the prover session the engine depends on.
type Prover interface {
	// Assume records facts in the innermost scope.
	Assume(ts ...term.Term)
	// Facts returns all currently assumed facts.
	Facts() *term.Set
	// InScope pushes a scope, runs fn, and pops the scope on every exit
	// path.
	InScope(fn func() error) error
	// ProvenInfeasible reports whether the assumed facts together with t
	// are provably unsatisfiable. Unknown outcomes report false.
	ProvenInfeasible(ctx context.Context, t term.Term) bool
	// Comment emits a diagnostic trace line.
	Comment(msg string)
}

// HeapCompressor simplifies the state's heap in place. Compression may be
// lossy; the brancher only invokes it under a snapshot it restores
// afterward.
type HeapCompressor interface {
	Compress(s *state.State, pc *state.PathContext)
}

// CompressorFunc adapts a function to the HeapCompressor interface.
type CompressorFunc func(*state.State, *state.PathContext)

func (f CompressorFunc) Compress(s *state.State, pc *state.PathContext) { f(s, pc) }

// Continuation is the body of one side of a branch. It receives the
// extended path context and returns the branch's verification outcome. A
// non-nil error is a structural violation, not a verification failure.
type Continuation func(pc *state.PathContext) (Result, error)

// Statistics counts branching events since the last Reset.
type Statistics struct {
	// Branches is the number of branch points encountered.
	Branches uint64
	// Bifurcations is the number of branch points where both outcomes
	// were feasible and explored.
	Bifurcations uint64
}

// BrancherOption configures a Brancher.
type BrancherOption func(*Brancher)

// WithCompressor installs the heap compressor invoked on retrying paths.
func WithCompressor(c HeapCompressor) BrancherOption {
	return func(b *Brancher) {
		b.compressor = c
	}
}

// Brancher orchestrates single two-way branches. It owns its branch-id
// counter and bifurcation statistic, both tied to the verification run's
// lifecycle via Reset.
type Brancher struct {
	prover     Prover
	compressor HeapCompressor
	log        logrus.FieldLogger

	ids          counter
	bifurcations counter
}

// NewBrancher returns a brancher over the given prover session.
func NewBrancher(p Prover, log logrus.FieldLogger, opts ...BrancherOption) *Brancher {
	b := &Brancher{prover: p, log: log}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Prover returns the prover session the brancher consults.
func (b *Brancher) Prover() Prover { return b.prover }

// Reset clears the branch-id counter and statistics. Call it between
// verification runs.
func (b *Brancher) Reset() {
	b.ids.reset()
	b.bifurcations.reset()
}

// Statistics returns the counters accumulated since the last Reset.
func (b *Brancher) Statistics() Statistics {
	return Statistics{
		Branches:     b.ids.value(),
		Bifurcations: b.bifurcations.value(),
	}
}

// Branch explores the two outcomes of the branch condition given by the
// conjunction of guards. A side is pruned only when the prover proves its
// guard infeasible under the currently assumed facts; if the true side is
// infeasible the false side is explored unconditionally, so at least one
// side always runs. Each explored side runs under its own prover scope with
// its guard assumed and the extended context passed to its continuation;
// the scope is closed, and any speculative heap compression undone, on
// every exit path. The two outcomes are folded with Combine.
//
// A non-nil error from a continuation aborts exploration immediately and
// propagates; it is never folded into a Failure result.
func (b *Brancher) Branch(ctx context.Context, s *state.State, guards []term.Term, pc *state.PathContext, onTrue, onFalse Continuation) (Result, error) {
	guardsTrue := term.And(guards...)
	guardsFalse := term.And(term.Negate(guards)...)

	exploreTrue := !b.prover.ProvenInfeasible(ctx, guardsTrue)
	exploreFalse := !exploreTrue || !b.prover.ProvenInfeasible(ctx, guardsFalse)

	if exploreTrue && exploreFalse {
		b.bifurcations.next()
		metrics.BifurcationCount.Inc()
	}

	log := b.log.WithField("branch", b.ids.next())

	trueResult, falseResult := Unreachable(), Unreachable()

	if exploreTrue {
		log.WithField("guard", guardsTrue.String()).Debug("exploring true branch")
		r, err := b.explore(s, guardsTrue, pc, onTrue)
		if err != nil {
			return Unreachable(), err
		}
		trueResult = r
	} else {
		log.WithField("guard", guardsTrue.String()).Debug("true branch infeasible, pruned")
	}

	if exploreFalse {
		log.WithField("guard", guardsFalse.String()).Debug("exploring false branch")
		r, err := b.explore(s, guardsFalse, pc, onFalse)
		if err != nil {
			return Unreachable(), err
		}
		falseResult = r
	} else {
		log.WithField("guard", guardsFalse.String()).Debug("false branch infeasible, pruned")
	}

	return Combine(trueResult, falseResult), nil
}

func (b *Brancher) explore(s *state.State, guard term.Term, pc *state.PathContext, cont Continuation) (Result, error) {
	epc := pc.WithBranchCondition(guard)

	var res Result
	var err error
	scopeErr := b.prover.InScope(func() error {
		b.prover.Assume(guard)

		if epc.Retrying && b.compressor != nil && s != nil && s.Heap != nil {
			snap := s.Heap.Snapshot()
			// Compression is speculative and lossy; the snapshot is
			// restored whether the continuation succeeds or fails.
			defer s.Heap.Restore(snap)
			b.compressor.Compress(s, epc)
			metrics.RegisterHeapCompression()
		}

		res, err = cont(epc)
		return nil
	})
	if err == nil {
		err = scopeErr
	}
	return res, err
}
