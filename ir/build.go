package ir

import (
	"github.com/jsrt/jsrt/ast"
	"github.com/jsrt/jsrt/token"
)

// loopTarget tracks one enclosing breakable/continuable construct while the
// builder is still inside it. breakAt/continueAt aren't known until the
// construct's last step is emitted, so break/continue statements encountered
// first only record which Step index needs patching (pendingBreaks/
// pendingContinues); the enclosing loop/switch patches them all in once its
// own end position is known.
type loopTarget struct {
	label            string
	pendingBreaks    []int
	pendingContinues []int
}

// builder flattens a lowered function body into a Program. startSlot
// continues the slot numbering lower.Function already handed out, since a
// handful of suspend shapes (a bare `let x = yield y;` initializer) are
// split here rather than in package lower.
type builder struct {
	steps    []Step
	loops    []loopTarget
	nextSlot int
}

// Build turns fn's already-lowered body into a flat Program. startSlot is
// the slot count lower.Function returned for fn.
func Build(fn *ast.FunctionLiteral, startSlot int) *Program {
	b := &builder{nextSlot: startSlot}
	b.block(fn.Body)
	b.emit(Step{Op: OpReturn, Cond: nil})
	return &Program{
		Params:      fn.Params,
		Steps:       b.steps,
		NumSlots:    b.nextSlot,
		IsAsync:     fn.IsAsync,
		IsGenerator: fn.IsGenerator,
	}
}

func (b *builder) emit(s Step) int {
	b.steps = append(b.steps, s)
	return len(b.steps) - 1
}

func (b *builder) here() int { return len(b.steps) }

func (b *builder) patchTarget(idx int, target int) {
	b.steps[idx].Target = target
}

func (b *builder) allocSlot() int {
	s := b.nextSlot
	b.nextSlot++
	return s
}

func (b *builder) block(stmts []ast.Stmt) {
	for _, s := range stmts {
		b.stmt(s)
	}
}

// pushLoop/popLoop bracket a breakable construct. popLoop patches every
// pending break/continue jump recorded against it to the now-known targets
// and pops it off the enclosing stack.
func (b *builder) pushLoop(label string) int {
	b.loops = append(b.loops, loopTarget{label: label})
	return len(b.loops) - 1
}

func (b *builder) popLoop(idx int, breakAt, continueAt int) {
	lt := b.loops[idx]
	for _, i := range lt.pendingBreaks {
		b.patchTarget(i, breakAt)
	}
	for _, i := range lt.pendingContinues {
		b.patchTarget(i, continueAt)
	}
	b.loops = b.loops[:idx]
}

func (b *builder) stmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.ExpressionStmt:
		if y, ok := n.Expr.(*ast.YieldExpr); ok {
			b.emit(Step{Op: OpSuspend, SuspendArg: y.Arg, Delegate: y.Delegate, Slot: b.allocSlot()})
			return
		}
		if a, ok := n.Expr.(*ast.AwaitExpr); ok {
			b.emit(Step{Op: OpSuspend, SuspendArg: a.Arg, IsAwait: true, Slot: b.allocSlot()})
			return
		}
		b.emit(Step{Op: OpExec, Stmt: n})

	case *ast.VarDeclStmt:
		if len(n.Decls) == 1 && n.Decls[0].Init != nil {
			if arg, isAwait, delegate, ok := asSuspend(n.Decls[0].Init); ok {
				slot := b.allocSlot()
				b.emit(Step{Op: OpSuspend, SuspendArg: arg, IsAwait: isAwait, Delegate: delegate, Slot: slot})
				b.emit(Step{Op: OpDeclare, Pattern: n.Decls[0].Target, Cond: &ast.ResumeRef{Slot: slot}})
				return
			}
		}
		b.emit(Step{Op: OpExec, Stmt: n})

	case *ast.BlockStmt:
		b.block(n.Body)

	case *ast.IfStmt:
		jf := b.emit(Step{Op: OpJumpIfFalse, Cond: n.Test})
		b.stmt(n.Cons)
		if n.Alt != nil {
			jend := b.emit(Step{Op: OpJump})
			b.patchTarget(jf, b.here())
			b.stmt(n.Alt)
			b.patchTarget(jend, b.here())
		} else {
			b.patchTarget(jf, b.here())
		}

	case *ast.ForStmt:
		if n.Init != nil {
			if decl, ok := n.Init.(*ast.VarDeclStmt); ok {
				b.stmt(decl)
			} else if e, ok := n.Init.(ast.Expr); ok {
				b.emit(Step{Op: OpExec, Stmt: &ast.ExpressionStmt{Expr: e}})
			}
		}
		loopStart := b.here()
		var jf int
		hasTest := n.Test != nil
		if hasTest {
			jf = b.emit(Step{Op: OpJumpIfFalse, Cond: n.Test})
		}
		idx := b.pushLoop(n.Label)
		b.stmt(n.Body)
		contAt := b.here()
		if n.Update != nil {
			b.emit(Step{Op: OpExec, Stmt: &ast.ExpressionStmt{Expr: n.Update}})
		}
		b.emit(Step{Op: OpJump, Target: loopStart})
		end := b.here()
		if hasTest {
			b.patchTarget(jf, end)
		}
		b.popLoop(idx, end, contAt)

	case *ast.WhileStmt:
		loopStart := b.here()
		jf := b.emit(Step{Op: OpJumpIfFalse, Cond: n.Test})
		idx := b.pushLoop(n.Label)
		b.stmt(n.Body)
		b.emit(Step{Op: OpJump, Target: loopStart})
		end := b.here()
		b.patchTarget(jf, end)
		b.popLoop(idx, end, loopStart)

	case *ast.DoWhileStmt:
		loopStart := b.here()
		idx := b.pushLoop(n.Label)
		b.stmt(n.Body)
		contAt := b.here()
		b.emit(Step{Op: OpJumpIfTrue, Cond: n.Test, Target: loopStart})
		end := b.here()
		b.popLoop(idx, end, contAt)

	case *ast.ForInStmt:
		b.forInOf(n)

	case *ast.TryStmt:
		b.tryStmt(n)

	case *ast.SwitchStmt:
		b.switchStmt(n, "")

	case *ast.LabeledStmt:
		b.labeled(n)

	case *ast.BreakStmt:
		idx := b.findLoop(n.Label)
		j := b.emit(Step{Op: OpJump})
		if idx >= 0 {
			b.loops[idx].pendingBreaks = append(b.loops[idx].pendingBreaks, j)
		}

	case *ast.ContinueStmt:
		idx := b.findLoop(n.Label)
		j := b.emit(Step{Op: OpJump})
		if idx >= 0 {
			b.loops[idx].pendingContinues = append(b.loops[idx].pendingContinues, j)
		}

	case *ast.ReturnStmt:
		b.emit(Step{Op: OpReturn, Cond: n.Arg})

	case *ast.ThrowStmt:
		b.emit(Step{Op: OpThrow, Cond: n.Arg})

	default:
		b.emit(Step{Op: OpExec, Stmt: s})
	}
}

// findLoop returns the index (into b.loops) of the nearest enclosing
// construct matching label (innermost if label is empty), or -1 if there is
// none — which can only happen for malformed input the parser should
// already have rejected.
func (b *builder) findLoop(label string) int {
	for i := len(b.loops) - 1; i >= 0; i-- {
		if label == "" || b.loops[i].label == label {
			return i
		}
	}
	return -1
}

// labeled handles `label: for (...) ...` etc: loop/switch constructs read
// their own Label field directly (set by the parser) so break/continue with
// that label resolve without any extra bookkeeping here; a labeled
// non-loop, non-switch statement only supports break, via its own loopTarget
// with no continue target.
func (b *builder) labeled(n *ast.LabeledStmt) {
	switch body := n.Body.(type) {
	case *ast.ForStmt, *ast.WhileStmt, *ast.DoWhileStmt, *ast.ForInStmt:
		b.stmt(n.Body)
	case *ast.SwitchStmt:
		b.switchStmt(body, n.Label)
	default:
		idx := b.pushLoop(n.Label)
		b.stmt(n.Body)
		b.popLoop(idx, b.here(), b.here())
	}
}

func (b *builder) forInOf(n *ast.ForInStmt) {
	b.emit(Step{Op: OpIterInit, Cond: n.Object})
	loopStart := b.here()
	nextOp := OpIterNext
	if n.IsAwait {
		nextOp = OpIterNextAwait
	}
	jexit := b.emit(Step{Op: nextOp, Pattern: n.Target})
	idx := b.pushLoop(n.Label)
	b.stmt(n.Body)
	contAt := b.here()
	b.emit(Step{Op: OpJump, Target: loopStart})
	end := b.here()
	b.patchTarget(jexit, end)
	b.emit(Step{Op: OpIterPop})
	b.popLoop(idx, b.here(), contAt)
}

func (b *builder) tryStmt(n *ast.TryStmt) {
	push := b.emit(Step{Op: OpPushTry, HasCatch: n.HasCatch, HasFinally: n.FinallyBlock != nil, CatchPattern: n.CatchParam})
	b.block(n.Block.Body)
	b.emit(Step{Op: OpPopTry})
	jend := b.emit(Step{Op: OpJump})
	catchStart := b.here()
	if n.HasCatch && n.CatchBlock != nil {
		b.block(n.CatchBlock.Body)
	}
	jendCatch := b.emit(Step{Op: OpJump})
	finallyStart := b.here()
	if n.FinallyBlock != nil {
		b.block(n.FinallyBlock.Body)
	}
	b.emit(Step{Op: OpLeaveFinally})
	b.steps[push].CatchTarget = catchStart
	b.steps[push].FinallyTarget = finallyStart
	b.patchTarget(jend, finallyStart)
	b.patchTarget(jendCatch, finallyStart)
}

// switchStmt compiles a switch by first emitting a chain of equality tests
// (one OpJumpIfTrue per non-default case, discriminant compared with
// strict-equals) each targeting that case's body, falling through to the
// default case's body (wherever it's textually positioned) or the end if
// there is none. Case bodies are then emitted once, in their original
// textual order, so fallthrough between adjacent cases (no break) works
// exactly like a plain sequence of statements.
func (b *builder) switchStmt(n *ast.SwitchStmt, label string) {
	idx := b.pushLoop(label)
	var caseJumps []int
	var caseIdxs []int
	defaultIdx := -1
	for i, c := range n.Cases {
		if c.Test == nil {
			defaultIdx = i
			continue
		}
		eq := &ast.BinaryExpr{Op: token.EQSTRICT, Left: n.Disc, Right: c.Test}
		j := b.emit(Step{Op: OpJumpIfTrue, Cond: eq})
		caseJumps = append(caseJumps, j)
		caseIdxs = append(caseIdxs, i)
	}
	jToDefaultOrEnd := b.emit(Step{Op: OpJump})
	bodies := make([]int, len(n.Cases))
	for i, c := range n.Cases {
		bodies[i] = b.here()
		b.block(c.Body)
	}
	for k, ci := range caseIdxs {
		b.patchTarget(caseJumps[k], bodies[ci])
	}
	if defaultIdx >= 0 {
		b.patchTarget(jToDefaultOrEnd, bodies[defaultIdx])
	} else {
		b.patchTarget(jToDefaultOrEnd, b.here())
	}
	b.popLoop(idx, b.here(), b.here())
}

func asSuspend(e ast.Expr) (arg ast.Expr, isAwait, delegate bool, ok bool) {
	switch n := e.(type) {
	case *ast.YieldExpr:
		return n.Arg, false, n.Delegate, true
	case *ast.AwaitExpr:
		return n.Arg, true, false, true
	default:
		return nil, false, false, false
	}
}
