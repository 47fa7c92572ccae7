// Package engine implements the branch-exploration and branch-joining core
// of the verifier: a two-way branch primitive that prunes infeasible sides
// through the prover, explores the rest under scoped assumptions, and a
// join primitive that collapses two divergent continuations back into one
// symbolic term and one path context.
package engine

import "fmt"

type resultKind int

const (
	unreachable resultKind = iota
	success
	failure
)

// Result is the outcome of exploring a branch. The zero value is
// Unreachable, the identity of Combine.
type Result struct {
	kind   resultKind
	reason error
}

// Success returns the outcome of a branch whose obligations all held.
func Success() Result { return Result{kind: success} }

// Failure returns the outcome of a branch where an obligation did not
// hold. It is a legitimate verification outcome, not an engine error.
func Failure(reason error) Result { return Result{kind: failure, reason: reason} }

// Unreachable returns the outcome of a branch that cannot happen; no
// obligation was checked on it.
func Unreachable() Result { return Result{} }

func (r Result) IsSuccess() bool     { return r.kind == success }
func (r Result) IsFailure() bool     { return r.kind == failure }
func (r Result) IsUnreachable() bool { return r.kind == unreachable }

// Reason returns the failure reason, or nil for other outcomes.
func (r Result) Reason() error { return r.reason }

func (r Result) String() string {
	switch r.kind {
	case success:
		return "success"
	case failure:
		return fmt.Sprintf("failure: %v", r.reason)
	}
	return "unreachable"
}

// Combine folds two branch outcomes into one: failure is absorbing
// (left-biased when both fail), Unreachable is the identity, and two
// successes are a success. Both operands are always fully evaluated before
// combination; the engine never short-circuits exploration of a feasible
// branch.
func Combine(a, b Result) Result {
	switch {
	case a.kind == failure:
		return a
	case b.kind == failure:
		return b
	case a.kind == unreachable:
		return b
	case b.kind == unreachable:
		return a
	}
	return Success()
}
