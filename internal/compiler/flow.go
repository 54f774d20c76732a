package compiler

import (
	"coral/internal/program"
)

// FlowFlags records what the analyzer has proved about a scope.
type FlowFlags uint8

const (
	// FlowReturns is set when every path through the scope returns.
	FlowReturns FlowFlags = 1 << iota
	FlowPossiblyBreaks
	FlowPossiblyContinues
	FlowPossiblyThrows
)

// Flow is one frame of the per-function control-state stack. Blocks, if
// arms, loop bodies and switch case bodies each push a frame; `do` shares
// its enclosing frame because the body always executes.
type Flow struct {
	parent *Flow
	flags  FlowFlags

	breakLabel    string
	continueLabel string

	// scopedLocals maps in-scope names to their locals; virtual locals
	// (const-folded, no slot) live here too.
	scopedLocals map[string]*program.Local
}

// newFlow creates the root frame of a function.
func newFlow() *Flow {
	return &Flow{}
}

// EnterBranchOrScope pushes a child frame inheriting the enclosing
// break/continue labels.
func (f *Flow) EnterBranchOrScope() *Flow {
	return &Flow{
		parent:        f,
		breakLabel:    f.breakLabel,
		continueLabel: f.continueLabel,
	}
}

// LeaveBranchOrScope pops back to the parent frame. Flag propagation is
// the caller's decision; an error path that leaves early must still call
// this to restore the parent.
func (f *Flow) LeaveBranchOrScope() *Flow {
	if f.parent == nil {
		return f
	}
	return f.parent
}

// Set marks flags on this frame.
func (f *Flow) Set(flags FlowFlags) { f.flags |= flags }

// Has reports whether all given flags are set.
func (f *Flow) Has(flags FlowFlags) bool { return f.flags&flags == flags }

// Returns reports whether the frame proves all paths return.
func (f *Flow) Returns() bool { return f.Has(FlowReturns) }

// InheritNonReturning copies the possibly-* flags of a child into f.
func (f *Flow) InheritNonReturning(child *Flow) {
	f.flags |= child.flags &^ FlowReturns
}

// Inherit copies all flags of a child into f.
func (f *Flow) Inherit(child *Flow) {
	f.flags |= child.flags
}

// SetLoopLabels binds the labels breaks and continues target inside this
// frame.
func (f *Flow) SetLoopLabels(breakLabel, continueLabel string) {
	f.breakLabel = breakLabel
	f.continueLabel = continueLabel
}

// BreakLabel returns the innermost break target, "" when none encloses.
func (f *Flow) BreakLabel() string { return f.breakLabel }

// ContinueLabel returns the innermost continue target.
func (f *Flow) ContinueLabel() string { return f.continueLabel }

// AddScopedLocal binds a name in this frame. Returns false when the name
// is already bound here.
func (f *Flow) AddScopedLocal(name string, local *program.Local) bool {
	if f.scopedLocals == nil {
		f.scopedLocals = make(map[string]*program.Local)
	}
	if _, exists := f.scopedLocals[name]; exists {
		return false
	}
	f.scopedLocals[name] = local
	return true
}

// ScopedLocal resolves a name through this frame and its ancestors.
func (f *Flow) ScopedLocal(name string) (*program.Local, bool) {
	for cur := f; cur != nil; cur = cur.parent {
		if l, ok := cur.scopedLocals[name]; ok {
			return l, true
		}
	}
	return nil, false
}
