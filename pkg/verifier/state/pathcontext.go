package state

import (
	"github.com/pkg/errors"

	"github.com/verax-verifier/verax/pkg/verifier/term"
)

// PathContext carries per-path metadata: the branch guards accumulated
// along the current path (most recent first), the outer retry flag, and
// local symbolic bindings. Contexts are value-like: extending one returns a
// new context and never mutates the parent.
type PathContext struct {
	branchConditions []term.Term

	// Retrying is set by an outer retry loop when the enclosing construct
	// is being re-verified; the engine compacts the heap speculatively on
	// such paths.
	Retrying bool

	// Bindings maps local names to symbolic terms.
	Bindings map[string]term.Term
}

// NewPathContext returns an empty context.
func NewPathContext() *PathContext {
	return &PathContext{Bindings: make(map[string]term.Term)}
}

// BranchConditions returns the accumulated branch guards, most recent
// first. The slice is a copy.
func (pc *PathContext) BranchConditions() []term.Term {
	out := make([]term.Term, len(pc.branchConditions))
	copy(out, pc.branchConditions)
	return out
}

// WithBranchCondition returns a copy of pc with the guard prepended to its
// branch conditions.
func (pc *PathContext) WithBranchCondition(guard term.Term) *PathContext {
	out := pc.clone()
	out.branchConditions = append([]term.Term{guard}, pc.branchConditions...)
	return out
}

// WithBranchConditions returns a copy of pc with its branch conditions
// replaced. The joiner uses this to strip branch-local guards before
// merging sibling contexts.
func (pc *PathContext) WithBranchConditions(guards []term.Term) *PathContext {
	out := pc.clone()
	out.branchConditions = make([]term.Term, len(guards))
	copy(out.branchConditions, guards)
	return out
}

// WithBinding returns a copy of pc with name bound to t.
func (pc *PathContext) WithBinding(name string, t term.Term) *PathContext {
	out := pc.clone()
	out.Bindings[name] = t
	return out
}

// Merge combines two contexts that followed divergent branches of the same
// path. It fails when the branch condition lists are not pointwise equal,
// or when the contexts bind the same name to structurally different terms.
// Callers are expected to have reset both contexts' branch conditions to a
// common prefix first, so the mismatch path should be unreachable in
// practice; it is still checked.
func (pc *PathContext) Merge(other *PathContext) (*PathContext, error) {
	if len(pc.branchConditions) != len(other.branchConditions) {
		return nil, errors.Errorf("cannot merge path contexts: %d vs %d branch conditions",
			len(pc.branchConditions), len(other.branchConditions))
	}
	for i, g := range pc.branchConditions {
		if !term.Equal(g, other.branchConditions[i]) {
			return nil, errors.Errorf("cannot merge path contexts: branch conditions diverge at %d: %s vs %s",
				i, g, other.branchConditions[i])
		}
	}

	out := pc.clone()
	for name, t := range other.Bindings {
		if prev, ok := out.Bindings[name]; ok && !term.Equal(prev, t) {
			return nil, errors.Errorf("cannot merge path contexts: %q bound to %s and %s", name, prev, t)
		}
		out.Bindings[name] = t
	}
	return out, nil
}

func (pc *PathContext) clone() *PathContext {
	out := &PathContext{
		branchConditions: make([]term.Term, len(pc.branchConditions)),
		Retrying:         pc.Retrying,
		Bindings:         make(map[string]term.Term, len(pc.Bindings)),
	}
	copy(out.branchConditions, pc.branchConditions)
	for name, t := range pc.Bindings {
		out.Bindings[name] = t
	}
	return out
}
