package eval

import (
	"github.com/jsrt/jsrt/ast"
	"github.com/jsrt/jsrt/value"
)

// evalCall evaluates a CallExpr: resolving the callee (a bare identifier,
// or a MemberExpr whose base becomes `this`), expanding any spread
// arguments, and short-circuiting on `?.()` against a nullish callee.
func (ev *Evaluator) evalCall(env *Environment, n *ast.CallExpr) (value.Value, error) {
	var thisVal value.Value = value.Undef
	var callee value.Value
	var err error

	if m, ok := n.Callee.(*ast.MemberExpr); ok {
		callee, thisVal, err = ev.evalMember(env, m)
		if err != nil {
			return nil, err
		}
		if m.Optional && value.IsNullish(thisVal) {
			return value.Undef, nil
		}
	} else if _, ok := n.Callee.(*ast.SuperExpr); ok {
		superInit := env.SuperInit()
		if superInit == nil {
			return nil, &unsupportedSuper{}
		}
		args, err := ev.evalArgs(env, n.Args)
		if err != nil {
			return nil, err
		}
		if err := superInit(args); err != nil {
			return nil, err
		}
		return value.Undef, nil
	} else {
		callee, err = ev.evalExpr(env, n.Callee)
		if err != nil {
			return nil, err
		}
	}

	if n.Optional && value.IsNullish(callee) {
		return value.Undef, nil
	}

	args, err := ev.evalArgs(env, n.Args)
	if err != nil {
		return nil, err
	}

	fn, ok := callee.(*value.Object)
	if !ok || fn.Call == nil {
		return nil, ev.typeError("%s is not a function", calleeName(n.Callee))
	}
	return fn.Call(thisVal, args)
}

// evalNew evaluates a NewExpr: resolving the constructor, expanding any
// spread arguments, and invoking its [[Construct]].
func (ev *Evaluator) evalNew(env *Environment, n *ast.NewExpr) (value.Value, error) {
	calleeVal, err := ev.evalExpr(env, n.Callee)
	if err != nil {
		return nil, err
	}
	args, err := ev.evalArgs(env, n.Args)
	if err != nil {
		return nil, err
	}
	fn, ok := calleeVal.(*value.Object)
	if !ok || fn.Construct == nil {
		return nil, ev.typeError("%s is not a constructor", calleeName(n.Callee))
	}
	return fn.Construct(args, fn)
}

func (ev *Evaluator) evalArgs(env *Environment, exprs []ast.Expr) ([]value.Value, error) {
	args := make([]value.Value, 0, len(exprs))
	for _, a := range exprs {
		if sp, ok := a.(*ast.SpreadElement); ok {
			v, err := ev.evalExpr(env, sp.Arg)
			if err != nil {
				return nil, err
			}
			items, err := ev.iterateToSlice(v)
			if err != nil {
				return nil, err
			}
			args = append(args, items...)
			continue
		}
		v, err := ev.evalExpr(env, a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func calleeName(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.Identifier:
		return n.Name
	case *ast.MemberExpr:
		if !n.Computed {
			if id, ok := n.Property.(*ast.Identifier); ok {
				return id.Name
			}
		}
	}
	return "expression"
}
