// Package fold implements the constant folder (spec.md C3): a
// bottom-up AST rewrite that collapses arithmetic, string, and logical
// expressions over literal operands into a single literal node, so the
// evaluator and generator IR builder never re-derive a constant at runtime.
package fold

import (
	"math"

	"github.com/jsrt/jsrt/ast"
	"github.com/jsrt/jsrt/token"
)

// Program folds every constant-foldable expression in prog, returning a new
// Program (the original tree is left untouched; folded nodes record their
// Origin via ast.Node.origin()).
func Program(prog *ast.Program) *ast.Program {
	out := &ast.Program{IsModule: prog.IsModule, Body: foldStmts(prog.Body)}
	out.SetSpan(prog.Pos(), prog.End())
	return out
}

func foldStmts(stmts []ast.Stmt) []ast.Stmt {
	out := make([]ast.Stmt, len(stmts))
	for i, s := range stmts {
		out[i] = foldStmt(s)
	}
	return out
}

// foldStmt folds the expressions nested in a statement; statement shape
// itself is never rewritten here (that's lower's job).
func foldStmt(s ast.Stmt) ast.Stmt {
	switch n := s.(type) {
	case *ast.ExpressionStmt:
		r := &ast.ExpressionStmt{Expr: Expr(n.Expr)}
		r.SetSpan(n.Pos(), n.End())
		return r
	case *ast.BlockStmt:
		r := &ast.BlockStmt{Body: foldStmts(n.Body)}
		r.SetSpan(n.Pos(), n.End())
		return r
	case *ast.VarDeclStmt:
		decls := make([]*ast.VarDeclarator, len(n.Decls))
		for i, d := range n.Decls {
			var init ast.Expr
			if d.Init != nil {
				init = Expr(d.Init)
			}
			nd := &ast.VarDeclarator{Target: d.Target, Init: init}
			nd.SetSpan(d.Pos(), d.End())
			decls[i] = nd
		}
		r := &ast.VarDeclStmt{Kind: n.Kind, Decls: decls}
		r.SetSpan(n.Pos(), n.End())
		return r
	case *ast.IfStmt:
		r := &ast.IfStmt{Test: Expr(n.Test), Cons: foldStmt(n.Cons)}
		if n.Alt != nil {
			r.Alt = foldStmt(n.Alt)
		}
		r.SetSpan(n.Pos(), n.End())
		return r
	case *ast.WhileStmt:
		r := &ast.WhileStmt{Test: Expr(n.Test), Body: foldStmt(n.Body), Label: n.Label}
		r.SetSpan(n.Pos(), n.End())
		return r
	case *ast.DoWhileStmt:
		r := &ast.DoWhileStmt{Body: foldStmt(n.Body), Test: Expr(n.Test), Label: n.Label}
		r.SetSpan(n.Pos(), n.End())
		return r
	case *ast.ForStmt:
		r := &ast.ForStmt{Body: foldStmt(n.Body), Label: n.Label}
		if n.Init != nil {
			if st, ok := n.Init.(ast.Stmt); ok {
				r.Init = foldStmt(st)
			} else if e, ok := n.Init.(ast.Expr); ok {
				r.Init = Expr(e)
			}
		}
		if n.Test != nil {
			r.Test = Expr(n.Test)
		}
		if n.Update != nil {
			r.Update = Expr(n.Update)
		}
		r.SetSpan(n.Pos(), n.End())
		return r
	case *ast.ForInStmt:
		r := &ast.ForInStmt{Kind: n.Kind, HasDecl: n.HasDecl, Target: n.Target, Object: Expr(n.Object), Body: foldStmt(n.Body), IsOf: n.IsOf, IsAwait: n.IsAwait, Label: n.Label}
		r.SetSpan(n.Pos(), n.End())
		return r
	case *ast.ReturnStmt:
		r := &ast.ReturnStmt{}
		if n.Arg != nil {
			r.Arg = Expr(n.Arg)
		}
		r.SetSpan(n.Pos(), n.End())
		return r
	case *ast.ThrowStmt:
		r := &ast.ThrowStmt{Arg: Expr(n.Arg)}
		r.SetSpan(n.Pos(), n.End())
		return r
	case *ast.TryStmt:
		r := &ast.TryStmt{Block: foldStmt(n.Block).(*ast.BlockStmt), HasCatch: n.HasCatch, CatchParam: n.CatchParam}
		if n.CatchBlock != nil {
			r.CatchBlock = foldStmt(n.CatchBlock).(*ast.BlockStmt)
		}
		if n.FinallyBlock != nil {
			r.FinallyBlock = foldStmt(n.FinallyBlock).(*ast.BlockStmt)
		}
		r.SetSpan(n.Pos(), n.End())
		return r
	case *ast.SwitchStmt:
		cases := make([]*ast.SwitchCase, len(n.Cases))
		for i, c := range n.Cases {
			nc := &ast.SwitchCase{Body: foldStmts(c.Body)}
			if c.Test != nil {
				nc.Test = Expr(c.Test)
			}
			nc.SetSpan(c.Pos(), c.End())
			cases[i] = nc
		}
		r := &ast.SwitchStmt{Disc: Expr(n.Disc), Cases: cases}
		r.SetSpan(n.Pos(), n.End())
		return r
	case *ast.LabeledStmt:
		r := &ast.LabeledStmt{Label: n.Label, Body: foldStmt(n.Body)}
		r.SetSpan(n.Pos(), n.End())
		return r
	case *ast.FunctionDeclStmt:
		r := &ast.FunctionDeclStmt{Function: foldFunction(n.Function)}
		r.SetSpan(n.Pos(), n.End())
		return r
	default:
		return s
	}
}

func foldFunction(fn *ast.FunctionLiteral) *ast.FunctionLiteral {
	r := &ast.FunctionLiteral{Name: fn.Name, Params: fn.Params, IsArrow: fn.IsArrow, IsAsync: fn.IsAsync, IsGenerator: fn.IsGenerator}
	if fn.ExprBody != nil {
		r.ExprBody = Expr(fn.ExprBody)
	} else {
		r.Body = foldStmts(fn.Body)
	}
	r.SetSpan(fn.Pos(), fn.End())
	return r
}

// positioned is the span/origin setter every concrete AST node gets from
// its embedded base, which the ast.Expr interface itself does not expose.
type positioned interface {
	SetSpan(from, to token.Position)
	SetOrigin(n ast.Node)
}

// Expr folds a single expression bottom-up.
func Expr(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.BinaryExpr:
		left := Expr(n.Left)
		right := Expr(n.Right)
		if folded := tryFoldBinary(n.Op, left, right); folded != nil {
			if p, ok := folded.(positioned); ok {
				p.SetSpan(n.Pos(), n.End())
				p.SetOrigin(n)
			}
			return folded
		}
		r := &ast.BinaryExpr{Op: n.Op, Left: left, Right: right}
		r.SetSpan(n.Pos(), n.End())
		return r
	case *ast.LogicalExpr:
		left := Expr(n.Left)
		right := Expr(n.Right)
		r := &ast.LogicalExpr{Op: n.Op, Left: left, Right: right}
		r.SetSpan(n.Pos(), n.End())
		return r
	case *ast.UnaryExpr:
		arg := Expr(n.Arg)
		if folded := tryFoldUnary(n.Op, n.Prefix, arg); folded != nil {
			if p, ok := folded.(positioned); ok {
				p.SetSpan(n.Pos(), n.End())
				p.SetOrigin(n)
			}
			return folded
		}
		r := &ast.UnaryExpr{Op: n.Op, Arg: arg, Prefix: n.Prefix}
		r.SetSpan(n.Pos(), n.End())
		return r
	case *ast.ConditionalExpr:
		test := Expr(n.Test)
		if lit, ok := constBool(test); ok {
			if lit {
				return Expr(n.Cons)
			}
			return Expr(n.Alt)
		}
		r := &ast.ConditionalExpr{Test: test, Cons: Expr(n.Cons), Alt: Expr(n.Alt)}
		r.SetSpan(n.Pos(), n.End())
		return r
	case *ast.AssignExpr:
		r := &ast.AssignExpr{Op: n.Op, Target: n.Target, Value: Expr(n.Value)}
		r.SetSpan(n.Pos(), n.End())
		return r
	case *ast.SequenceExpr:
		exprs := make([]ast.Expr, len(n.Exprs))
		for i, e := range n.Exprs {
			exprs[i] = Expr(e)
		}
		r := &ast.SequenceExpr{Exprs: exprs}
		r.SetSpan(n.Pos(), n.End())
		return r
	case *ast.CallExpr:
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = Expr(a)
		}
		r := &ast.CallExpr{Callee: Expr(n.Callee), Args: args, Optional: n.Optional}
		r.SetSpan(n.Pos(), n.End())
		return r
	case *ast.NewExpr:
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = Expr(a)
		}
		r := &ast.NewExpr{Callee: Expr(n.Callee), Args: args}
		r.SetSpan(n.Pos(), n.End())
		return r
	case *ast.MemberExpr:
		obj := Expr(n.Object)
		var prop ast.Expr = n.Property
		if n.Computed {
			prop = Expr(n.Property)
		}
		r := &ast.MemberExpr{Object: obj, Property: prop, Computed: n.Computed, Optional: n.Optional}
		r.SetSpan(n.Pos(), n.End())
		return r
	case *ast.ArrayLiteral:
		elems := make([]ast.Expr, len(n.Elements))
		for i, el := range n.Elements {
			if el != nil {
				elems[i] = Expr(el)
			}
		}
		r := &ast.ArrayLiteral{Elements: elems}
		r.SetSpan(n.Pos(), n.End())
		return r
	case *ast.ObjectLiteral:
		props := make([]*ast.Property, len(n.Properties))
		for i, pr := range n.Properties {
			np := &ast.Property{Kind: pr.Kind, Key: pr.Key, Computed: pr.Computed, Shorthand: pr.Shorthand}
			if pr.Value != nil {
				np.Value = Expr(pr.Value)
			}
			np.SetSpan(pr.Pos(), pr.End())
			props[i] = np
		}
		r := &ast.ObjectLiteral{Properties: props}
		r.SetSpan(n.Pos(), n.End())
		return r
	case *ast.FunctionLiteral:
		return foldFunction(n)
	default:
		return e
	}
}

func constBool(e ast.Expr) (bool, bool) {
	switch n := e.(type) {
	case *ast.BoolLiteral:
		return n.Value, true
	case *ast.NumberLiteral:
		return n.Value != 0 && !math.IsNaN(n.Value), true
	case *ast.NullLiteral:
		return false, true
	case *ast.StringLiteral:
		return len(n.Value) > 0, true
	}
	return false, false
}

func tryFoldUnary(op token.Type, prefix bool, arg ast.Expr) ast.Expr {
	if !prefix {
		return nil
	}
	num, isNum := arg.(*ast.NumberLiteral)
	switch op {
	case token.MINUS:
		if isNum {
			return &ast.NumberLiteral{Value: -num.Value}
		}
	case token.PLUS:
		if isNum {
			return &ast.NumberLiteral{Value: num.Value}
		}
	case token.NOT:
		if b, ok := constBool(arg); ok {
			return &ast.BoolLiteral{Value: !b}
		}
	case token.TYPEOF:
		// typeof of an unresolved identifier must not throw even when
		// unbound, so typeof is never constant-folded here: its operand
		// may be an unresolved reference whose evaluation semantics the
		// folder must not short-circuit.
		return nil
	}
	return nil
}

func tryFoldBinary(op token.Type, left, right ast.Expr) ast.Expr {
	ln, lok := left.(*ast.NumberLiteral)
	rn, rok := right.(*ast.NumberLiteral)
	if lok && rok {
		if v, ok := foldNumericBinary(op, ln.Value, rn.Value); ok {
			return &ast.NumberLiteral{Value: v}
		}
		if v, ok := foldComparisonBinary(op, ln.Value, rn.Value); ok {
			return &ast.BoolLiteral{Value: v}
		}
	}
	ls, lsok := left.(*ast.StringLiteral)
	rs, rsok := right.(*ast.StringLiteral)
	if op == token.PLUS && lsok && rsok {
		return &ast.StringLiteral{Value: ls.Value + rs.Value}
	}
	if op == token.EQSTRICT && lsok && rsok {
		return &ast.BoolLiteral{Value: ls.Value == rs.Value}
	}
	if op == token.NEQSTRICT && lsok && rsok {
		return &ast.BoolLiteral{Value: ls.Value != rs.Value}
	}
	return nil
}

func foldNumericBinary(op token.Type, l, r float64) (float64, bool) {
	switch op {
	case token.PLUS:
		return l + r, true
	case token.MINUS:
		return l - r, true
	case token.STAR:
		return l * r, true
	case token.SLASH:
		return l / r, true
	case token.PERCENT:
		return math.Mod(l, r), true
	case token.POW:
		return math.Pow(l, r), true
	}
	return 0, false
}

func foldComparisonBinary(op token.Type, l, r float64) (bool, bool) {
	if math.IsNaN(l) || math.IsNaN(r) {
		if op == token.LT || op == token.GT || op == token.LE || op == token.GE {
			return false, true
		}
	}
	switch op {
	case token.LT:
		return l < r, true
	case token.GT:
		return l > r, true
	case token.LE:
		return l <= r, true
	case token.GE:
		return l >= r, true
	case token.EQSTRICT:
		return l == r, true
	case token.NEQSTRICT:
		return l != r, true
	}
	return false, false
}
