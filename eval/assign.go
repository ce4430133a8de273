package eval

import (
	"github.com/jsrt/jsrt/ast"
	"github.com/jsrt/jsrt/token"
	"github.com/jsrt/jsrt/value"
)

// evalAssign handles `=` and every compound assignment operator, plus
// destructuring assignment (`[a, b] = f()`), which the parser represents as
// a plain AssignExpr whose Target is an ArrayPattern/ObjectPattern rather
// than an Identifier/MemberExpr.
func (ev *Evaluator) evalAssign(env *Environment, n *ast.AssignExpr) (value.Value, error) {
	if n.Op == token.ASSIGN {
		if isPatternTarget(n.Target) {
			v, err := ev.evalExpr(env, n.Value)
			if err != nil {
				return nil, err
			}
			if err := ev.assignPattern(env, n.Target.(ast.Pattern), v); err != nil {
				return nil, err
			}
			return v, nil
		}
		v, err := ev.evalExpr(env, n.Value)
		if err != nil {
			return nil, err
		}
		if err := ev.assignTo(env, n.Target, v); err != nil {
			return nil, err
		}
		return v, nil
	}

	// Compound assignment: `&&=`/`||=`/`??=` short-circuit on the current
	// value without evaluating the RHS at all; arithmetic compounds always
	// evaluate both sides.
	old, err := ev.evalExpr(env, n.Target)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case token.LOGAND_ASSIGN:
		if !value.ToBoolean(old) {
			return old, nil
		}
	case token.LOGOR_ASSIGN:
		if value.ToBoolean(old) {
			return old, nil
		}
	case token.NULLISH_ASSIGN:
		if !value.IsNullish(old) {
			return old, nil
		}
	}
	rhs, err := ev.evalExpr(env, n.Value)
	if err != nil {
		return nil, err
	}
	var result value.Value
	switch n.Op {
	case token.LOGAND_ASSIGN, token.LOGOR_ASSIGN, token.NULLISH_ASSIGN:
		result = rhs
	default:
		result, err = ev.binaryOp(compoundBase(n.Op), old, rhs)
		if err != nil {
			return nil, err
		}
	}
	if err := ev.assignTo(env, n.Target, result); err != nil {
		return nil, err
	}
	return result, nil
}

func isPatternTarget(e ast.Expr) bool {
	switch e.(type) {
	case *ast.ArrayPattern, *ast.ObjectPattern:
		return true
	default:
		return false
	}
}

// compoundBase maps a compound-assignment operator to the plain binary
// operator it applies before storing back.
func compoundBase(op token.Type) token.Type {
	switch op {
	case token.PLUS_ASSIGN:
		return token.PLUS
	case token.MINUS_ASSIGN:
		return token.MINUS
	case token.STAR_ASSIGN:
		return token.STAR
	case token.SLASH_ASSIGN:
		return token.SLASH
	case token.PERCENT_ASSIGN:
		return token.PERCENT
	case token.POW_ASSIGN:
		return token.POW
	case token.SHL_ASSIGN:
		return token.SHL
	case token.SHR_ASSIGN:
		return token.SHR
	case token.USHR_ASSIGN:
		return token.USHR
	case token.AND_ASSIGN:
		return token.AND
	case token.OR_ASSIGN:
		return token.OR
	case token.XOR_ASSIGN:
		return token.XOR
	}
	return token.ILLEGAL
}

// assignTo stores v into a simple (non-destructuring) assignment target: an
// identifier or a member expression.
func (ev *Evaluator) assignTo(env *Environment, target ast.Expr, v value.Value) error {
	switch t := target.(type) {
	case *ast.Identifier:
		return env.Set(t.Name, v)
	case *ast.MemberExpr:
		obj, err := ev.evalExpr(env, t.Object)
		if err != nil {
			return err
		}
		key, err := ev.memberKey(env, t)
		if err != nil {
			return err
		}
		o, ok := obj.(*value.Object)
		if !ok {
			return ev.typeError("Cannot set properties of %s", value.ToStringValue(obj))
		}
		if pk, ok := key.(privateKey); ok {
			if o.PrivateFields == nil {
				o.PrivateFields = map[string]value.Value{}
			}
			o.PrivateFields[string(pk)] = v
			return nil
		}
		return value.Set(o, key, v, o)
	default:
		return ev.typeError("invalid assignment target")
	}
}
