package lower

import "github.com/jsrt/jsrt/ast"

// Shape is the result of scanning a function body for suspend points: eval
// consults it once, at function-definition time, to decide whether calling
// this function should go through genvm at all.
type Shape struct {
	IsGenerator bool
	IsAsync     bool
	// HasSuspendPoints is true when the body contains at least one yield or
	// await not buried in a nested non-arrow function; a generator or async
	// function whose body has none gets false.
	HasSuspendPoints bool
}

// Analyze reports fn's suspend shape without mutating it. A plain function
// (IsGenerator and IsAsync both false) always gets HasSuspendPoints == false
// even if it happens to contain a nested generator/async function literal,
// since yield/await inside a nested function belongs to THAT function, not
// this one.
func Analyze(fn *ast.FunctionLiteral) Shape {
	sh := Shape{IsGenerator: fn.IsGenerator, IsAsync: fn.IsAsync}
	if !sh.IsGenerator && !sh.IsAsync {
		return sh
	}
	sh.HasSuspendPoints = scanStmts(fn.Body)
	return sh
}

func scanStmts(stmts []ast.Stmt) bool {
	for _, s := range stmts {
		if scanStmt(s) {
			return true
		}
	}
	return false
}

func scanStmt(s ast.Stmt) bool {
	switch n := s.(type) {
	case *ast.ExpressionStmt:
		return scanExpr(n.Expr)
	case *ast.VarDeclStmt:
		for _, d := range n.Decls {
			if d.Init != nil && scanExpr(d.Init) {
				return true
			}
		}
	case *ast.ReturnStmt:
		return n.Arg != nil && scanExpr(n.Arg)
	case *ast.ThrowStmt:
		return scanExpr(n.Arg)
	case *ast.BlockStmt:
		return scanStmts(n.Body)
	case *ast.IfStmt:
		if scanExpr(n.Test) || scanStmt(n.Cons) {
			return true
		}
		return n.Alt != nil && scanStmt(n.Alt)
	case *ast.WhileStmt:
		return scanExpr(n.Test) || scanStmt(n.Body)
	case *ast.DoWhileStmt:
		return scanStmt(n.Body) || scanExpr(n.Test)
	case *ast.ForStmt:
		if n.Init != nil {
			if e, ok := n.Init.(ast.Expr); ok && scanExpr(e) {
				return true
			}
			if decl, ok := n.Init.(*ast.VarDeclStmt); ok {
				for _, d := range decl.Decls {
					if d.Init != nil && scanExpr(d.Init) {
						return true
					}
				}
			}
		}
		if n.Test != nil && scanExpr(n.Test) {
			return true
		}
		if n.Update != nil && scanExpr(n.Update) {
			return true
		}
		return scanStmt(n.Body)
	case *ast.ForInStmt:
		return scanExpr(n.Object) || scanStmt(n.Body)
	case *ast.TryStmt:
		if scanStmts(n.Block.Body) {
			return true
		}
		if n.HasCatch && n.CatchBlock != nil && scanStmts(n.CatchBlock.Body) {
			return true
		}
		return n.FinallyBlock != nil && scanStmts(n.FinallyBlock.Body)
	case *ast.SwitchStmt:
		if scanExpr(n.Disc) {
			return true
		}
		for _, c := range n.Cases {
			if c.Test != nil && scanExpr(c.Test) {
				return true
			}
			if scanStmts(c.Body) {
				return true
			}
		}
	case *ast.LabeledStmt:
		return scanStmt(n.Body)
	}
	return false
}

func scanExpr(e ast.Expr) bool {
	switch n := e.(type) {
	case nil:
		return false
	case *ast.YieldExpr, *ast.AwaitExpr:
		return true
	case *ast.BinaryExpr:
		return scanExpr(n.Left) || scanExpr(n.Right)
	case *ast.LogicalExpr:
		return scanExpr(n.Left) || scanExpr(n.Right)
	case *ast.UnaryExpr:
		return scanExpr(n.Arg)
	case *ast.ConditionalExpr:
		return scanExpr(n.Test) || scanExpr(n.Cons) || scanExpr(n.Alt)
	case *ast.AssignExpr:
		return scanExpr(n.Value)
	case *ast.SequenceExpr:
		for _, sub := range n.Exprs {
			if scanExpr(sub) {
				return true
			}
		}
	case *ast.CallExpr:
		if scanExpr(n.Callee) {
			return true
		}
		for _, a := range n.Args {
			if scanExpr(a) {
				return true
			}
		}
	case *ast.NewExpr:
		if scanExpr(n.Callee) {
			return true
		}
		for _, a := range n.Args {
			if scanExpr(a) {
				return true
			}
		}
	case *ast.MemberExpr:
		if scanExpr(n.Object) {
			return true
		}
		return n.Computed && scanExpr(n.Property)
	case *ast.ArrayLiteral:
		for _, el := range n.Elements {
			if scanExpr(el) {
				return true
			}
		}
	case *ast.ObjectLiteral:
		for _, p := range n.Properties {
			if scanExpr(p.Key) || scanExpr(p.Value) {
				return true
			}
		}
	case *ast.SpreadElement:
		return scanExpr(n.Arg)
	}
	// Nested *ast.FunctionLiteral / *ast.ClassLiteral bodies are their own
	// scope for suspend purposes — not scanned here.
	return false
}
