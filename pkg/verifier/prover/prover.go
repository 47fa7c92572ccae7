// Package prover provides the scoped theorem-proving session consulted by
// the verification engine. Facts are assumed into nested scopes following
// strict stack discipline; feasibility queries are answered by compiling the
// accumulated facts together with the queried formula into a boolean circuit
// and handing it to a SAT solver under a per-query time budget.
package prover

import (
	"context"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/inter"
	"github.com/sirupsen/logrus"

	"github.com/verax-verifier/verax/pkg/metrics"
	"github.com/verax-verifier/verax/pkg/verifier/term"
)

const (
	satisfiable   = 1
	unsatisfiable = -1
)

const defaultQueryTimeout = time.Second

// Option configures a Session.
type Option func(*Session)

// WithQueryTimeout sets the time budget for a single feasibility query.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// Statistics counts the queries a Session has issued.
type Statistics struct {
	Queries  uint64
	Timeouts uint64
}

// Session is a scoped fact store with a SAT-backed feasibility oracle. It is
// not safe for concurrent use; the engine drives it from a single goroutine.
type Session struct {
	scopes  [][]term.Term
	log     logrus.FieldLogger
	timeout time.Duration
	stats   Statistics
}

// New returns a session with one open root scope.
func New(log logrus.FieldLogger, opts ...Option) *Session {
	s := &Session{
		scopes:  make([][]term.Term, 1),
		log:     log,
		timeout: defaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assume records the given facts in the innermost scope. They remain
// assumed until that scope is popped.
func (s *Session) Assume(ts ...term.Term) {
	top := len(s.scopes) - 1
	s.scopes[top] = append(s.scopes[top], ts...)
}

// Facts returns the set of all currently assumed facts, across all open
// scopes.
func (s *Session) Facts() *term.Set {
	out := term.NewSet()
	for _, scope := range s.scopes {
		out.Add(scope...)
	}
	return out
}

// InScope pushes a fresh scope, runs fn, and pops the scope on every exit
// path. Facts assumed inside fn are discarded when InScope returns.
func (s *Session) InScope(fn func() error) error {
	s.scopes = append(s.scopes, nil)
	defer func() {
		s.scopes = s.scopes[:len(s.scopes)-1]
	}()
	return fn()
}

// ProvenInfeasible reports whether the conjunction of the currently assumed
// facts with t is provably unsatisfiable within the session's query budget.
// An unknown outcome (timeout, cancellation, solver gave up) reports false:
// a formula is only ever pruned on proof.
func (s *Session) ProvenInfeasible(ctx context.Context, t term.Term) bool {
	s.stats.Queries++
	start := time.Now()

	if ctx.Err() != nil {
		s.stats.Timeouts++
		metrics.RegisterProverQuery(time.Since(start), true)
		return false
	}

	cp := newCompiler()
	m := cp.lit(term.And(append(s.factSlice(), t)...))

	g := gini.New()
	cp.c.ToCnf(g)
	g.Assume(m)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	switch waitForSolution(ctx, g.GoSolve()) {
	case unsatisfiable:
		metrics.RegisterProverQuery(time.Since(start), false)
		return true
	case satisfiable:
		metrics.RegisterProverQuery(time.Since(start), false)
		return false
	}

	s.stats.Timeouts++
	metrics.RegisterProverQuery(time.Since(start), true)
	s.log.WithField("formula", t).Debug("feasibility query returned no result within budget; treating as feasible")
	return false
}

// Comment emits a diagnostic trace line. It has no semantic effect.
func (s *Session) Comment(msg string) {
	s.log.Debug(msg)
}

// Statistics returns the session's query counters.
func (s *Session) Statistics() Statistics {
	return s.stats
}

func (s *Session) factSlice() []term.Term {
	var out []term.Term
	for _, scope := range s.scopes {
		out = append(out, scope...)
	}
	return out
}

func waitForSolution(ctx context.Context, gs inter.Solve) int {
	t := time.NewTicker(time.Millisecond)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return gs.Stop()
		case <-t.C:
			if result, ok := gs.Test(); ok {
				return result
			}
		}
	}
}
