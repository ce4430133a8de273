package eval

import (
	"strings"

	"github.com/jsrt/jsrt/ast"
	"github.com/jsrt/jsrt/internal/scheduler"
	"github.com/jsrt/jsrt/token"
	"github.com/jsrt/jsrt/value"
)

// regexpCompiler builds a /pattern/flags literal into a RegExp object.
// stdlib installs the real dlclark/regexp2-backed constructor once it
// exists; until then a literal evaluates to a plain object recording its
// source/flags, which is enough for code that only inspects those two
// properties.
var regexpCompiler = func(r *Realm, pattern, flags string) (*value.Object, error) {
	o := value.NewObject(r.RegExpProto)
	o.Class = "RegExp"
	o.SetData("source", value.String(pattern))
	o.SetData("flags", value.String(flags))
	o.SetData("lastIndex", value.Number(0))
	return o, nil
}

// SetRegexpCompiler lets stdlib install the full regexp2-backed
// implementation once it's built, without eval importing stdlib.
func SetRegexpCompiler(f func(r *Realm, pattern, flags string) (*value.Object, error)) {
	regexpCompiler = f
}

func (ev *Evaluator) evalExpr(env *Environment, e ast.Expr) (value.Value, error) {
	switch n := e.(type) {
	case nil:
		return value.Undef, nil

	case *ast.Identifier:
		return env.Get(n.Name)

	case *ast.ThisExpr:
		return env.This(), nil

	case *ast.SuperExpr:
		return nil, &unsupportedSuper{}

	case *ast.NumberLiteral:
		return value.Number(n.Value), nil

	case *ast.BigIntLiteral:
		bi, ok := value.ParseBigInt(n.Raw)
		if !ok {
			return nil, ev.rangeError("invalid BigInt literal %q", n.Raw)
		}
		return value.NewBigInt(bi), nil

	case *ast.StringLiteral:
		return value.String(n.Value), nil

	case *ast.BoolLiteral:
		return value.Bool(n.Value), nil

	case *ast.NullLiteral:
		return value.NullVal, nil

	case *ast.RegexpLiteral:
		return regexpCompiler(ev.realm, n.Pattern, n.Flags)

	case *ast.TemplateLiteral:
		return ev.evalTemplate(env, n)

	case *ast.TaggedTemplate:
		return ev.evalTaggedTemplate(env, n)

	case *ast.ArrayLiteral:
		return ev.evalArrayLiteral(env, n)

	case *ast.ObjectLiteral:
		return ev.evalObjectLiteral(env, n)

	case *ast.FunctionLiteral:
		return ev.makeClosure(n, env), nil

	case *ast.ClassLiteral:
		return ev.evalClass(env, n)

	case *ast.UnaryExpr:
		return ev.evalUnary(env, n)

	case *ast.BinaryExpr:
		l, err := ev.evalExpr(env, n.Left)
		if err != nil {
			return nil, err
		}
		r, err := ev.evalExpr(env, n.Right)
		if err != nil {
			return nil, err
		}
		return ev.binaryOp(n.Op, l, r)

	case *ast.LogicalExpr:
		l, err := ev.evalExpr(env, n.Left)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case token.LOGAND:
			if !value.ToBoolean(l) {
				return l, nil
			}
		case token.LOGOR:
			if value.ToBoolean(l) {
				return l, nil
			}
		case token.NULLISH:
			if !value.IsNullish(l) {
				return l, nil
			}
		}
		return ev.evalExpr(env, n.Right)

	case *ast.ConditionalExpr:
		t, err := ev.evalExpr(env, n.Test)
		if err != nil {
			return nil, err
		}
		if value.ToBoolean(t) {
			return ev.evalExpr(env, n.Cons)
		}
		return ev.evalExpr(env, n.Alt)

	case *ast.AssignExpr:
		return ev.evalAssign(env, n)

	case *ast.SequenceExpr:
		var last value.Value = value.Undef
		for _, sub := range n.Exprs {
			v, err := ev.evalExpr(env, sub)
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil

	case *ast.CallExpr:
		return ev.evalCall(env, n)

	case *ast.NewExpr:
		return ev.evalNew(env, n)

	case *ast.MemberExpr:
		v, _, err := ev.evalMember(env, n)
		return v, err

	case *ast.ImportCallExpr:
		return ev.evalDynamicImport(env, n)

	case *ast.ResumeRef:
		slots := env.ResumeSlots()
		if n.Slot < 0 || n.Slot >= len(slots) {
			return value.Undef, nil
		}
		return slots[n.Slot], nil

	default:
		return nil, ev.typeError("unsupported expression")
	}
}

func (ev *Evaluator) evalTemplate(env *Environment, n *ast.TemplateLiteral) (value.Value, error) {
	var b strings.Builder
	for i, q := range n.Quasis {
		b.WriteString(q)
		if i < len(n.Exprs) {
			v, err := ev.evalExpr(env, n.Exprs[i])
			if err != nil {
				return nil, err
			}
			b.WriteString(value.ToStringValue(value.ToPrimitiveDefault(v)))
		}
	}
	return value.String(b.String()), nil
}

func (ev *Evaluator) evalTaggedTemplate(env *Environment, n *ast.TaggedTemplate) (value.Value, error) {
	fn, err := ev.evalExpr(env, n.Tag)
	if err != nil {
		return nil, err
	}
	fo, ok := fn.(*value.Object)
	if !ok || fo.Call == nil {
		return nil, ev.typeError("tag is not a function")
	}
	strs := make([]value.Value, len(n.Template.Quasis))
	raws := make([]value.Value, len(n.Template.Raws))
	for i, q := range n.Template.Quasis {
		strs[i] = value.String(q)
	}
	for i, r := range n.Template.Raws {
		raws[i] = value.String(r)
	}
	strsArr := ev.realm.NewArray(strs)
	strsArr.SetData("raw", ev.realm.NewArray(raws))
	args := make([]value.Value, 0, 1+len(n.Template.Exprs))
	args = append(args, strsArr)
	for _, e := range n.Template.Exprs {
		v, err := ev.evalExpr(env, e)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return fo.Call(value.Undef, args)
}

func (ev *Evaluator) evalArrayLiteral(env *Environment, n *ast.ArrayLiteral) (value.Value, error) {
	var out []value.Value
	for _, el := range n.Elements {
		if el == nil {
			out = append(out, value.Undef) // hole, simplified to undefined (see DESIGN.md)
			continue
		}
		if sp, ok := el.(*ast.SpreadElement); ok {
			v, err := ev.evalExpr(env, sp.Arg)
			if err != nil {
				return nil, err
			}
			items, err := ev.iterateToSlice(v)
			if err != nil {
				return nil, err
			}
			out = append(out, items...)
			continue
		}
		v, err := ev.evalExpr(env, el)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return ev.realm.NewArray(out), nil
}

func (ev *Evaluator) evalObjectLiteral(env *Environment, n *ast.ObjectLiteral) (value.Value, error) {
	obj := ev.realm.NewObject()
	for _, p := range n.Properties {
		if p.Kind == ast.PropSpread {
			v, err := ev.evalExpr(env, p.Value)
			if err != nil {
				return nil, err
			}
			if src, ok := v.(*value.Object); ok {
				for _, k := range src.OwnKeys() {
					if d := src.GetOwn(k); d != nil && d.Enumerable {
						gv, err := value.Get(src, k, src)
						if err != nil {
							return nil, err
						}
						obj.SetData(k, gv)
					}
				}
			}
			continue
		}
		key, err := ev.propertyKeyOf(env, p.Key, p.Computed)
		if err != nil {
			return nil, err
		}
		switch p.Kind {
		case ast.PropGet, ast.PropSet:
			fnLit := p.Value.(*ast.FunctionLiteral)
			fn := ev.makeClosure(fnLit, env)
			desc := obj.GetOwn(key)
			if desc == nil || !desc.IsAccessor {
				desc = &value.PropertyDescriptor{IsAccessor: true, Enumerable: true, Configurable: true}
			}
			if p.Kind == ast.PropGet {
				desc.Get = fn
			} else {
				desc.Set = fn
			}
			obj.DefineOwn(key, desc)
		default:
			v, err := ev.evalExpr(env, p.Value)
			if err != nil {
				return nil, err
			}
			obj.SetData(key, v)
		}
	}
	return obj, nil
}

func (ev *Evaluator) propertyKeyOf(env *Environment, key ast.Expr, computed bool) (any, error) {
	if computed {
		v, err := ev.evalExpr(env, key)
		if err != nil {
			return nil, err
		}
		return ev.toPropertyKey(v), nil
	}
	switch k := key.(type) {
	case *ast.Identifier:
		return k.Name, nil
	case *ast.StringLiteral:
		return k.Value, nil
	case *ast.NumberLiteral:
		return value.NumberToString(k.Value), nil
	}
	return nil, ev.typeError("invalid property key")
}

func (ev *Evaluator) evalUnary(env *Environment, n *ast.UnaryExpr) (value.Value, error) {
	switch n.Op {
	case token.TYPEOF:
		if id, ok := n.Arg.(*ast.Identifier); ok {
			if _, b := env.Lookup(id.Name); b == nil {
				return value.String("undefined"), nil
			}
		}
		v, err := ev.evalExpr(env, n.Arg)
		if err != nil {
			return nil, err
		}
		return value.String(value.TypeOf(v)), nil

	case token.DELETE:
		if m, ok := n.Arg.(*ast.MemberExpr); ok {
			obj, err := ev.evalExpr(env, m.Object)
			if err != nil {
				return nil, err
			}
			o, ok := obj.(*value.Object)
			if !ok {
				return value.Bool(true), nil
			}
			key, err := ev.memberKey(env, m)
			if err != nil {
				return nil, err
			}
			return value.Bool(o.DeleteOwn(key)), nil
		}
		return value.Bool(true), nil

	case token.INC, token.DEC:
		return ev.evalIncDec(env, n)

	default:
		v, err := ev.evalExpr(env, n.Arg)
		if err != nil {
			return nil, err
		}
		return ev.unaryOp(n.Op, v)
	}
}

func (ev *Evaluator) evalIncDec(env *Environment, n *ast.UnaryExpr) (value.Value, error) {
	old, err := ev.evalExpr(env, n.Arg)
	if err != nil {
		return nil, err
	}
	oldNum := value.ToNumber(old)
	delta := 1.0
	if n.Op == token.DEC {
		delta = -1.0
	}
	updated := value.Number(oldNum + delta)
	if err := ev.assignTo(env, n.Arg, updated); err != nil {
		return nil, err
	}
	if n.Prefix {
		return updated, nil
	}
	return value.Number(oldNum), nil
}

// memberKey resolves a (possibly computed) MemberExpr's property to a
// property-map key, without re-evaluating the object.
func (ev *Evaluator) memberKey(env *Environment, n *ast.MemberExpr) (any, error) {
	if !n.Computed {
		if pid, ok := n.Property.(*ast.PrivateIdentifier); ok {
			return privateKey(pid.Name), nil
		}
		return n.Property.(*ast.Identifier).Name, nil
	}
	v, err := ev.evalExpr(env, n.Property)
	if err != nil {
		return nil, err
	}
	return ev.toPropertyKey(v), nil
}

// evalMember evaluates a MemberExpr, also returning the resolved base
// object so CallExpr can pick the right `this` for method calls without a
// second evaluation of the object subexpression.
func (ev *Evaluator) evalMember(env *Environment, n *ast.MemberExpr) (value.Value, value.Value, error) {
	obj, err := ev.evalExpr(env, n.Object)
	if err != nil {
		return nil, nil, err
	}
	if n.Optional && value.IsNullish(obj) {
		return value.Undef, value.Undef, nil
	}
	key, err := ev.memberKey(env, n)
	if err != nil {
		return nil, nil, err
	}
	v, err := ev.getProperty(obj, key)
	return v, obj, err
}

// getProperty implements [[Get]] generalized over every value kind: objects
// use the full prototype-chain protocol, strings support indexing and
// length, and number/bool/bigint/symbol primitives (which have no own
// properties) are looked up on their realm prototype. Reading a property of
// undefined or null is a TypeError.
func (ev *Evaluator) getProperty(base value.Value, key any) (value.Value, error) {
	switch b := base.(type) {
	case *value.Object:
		if pk, ok := key.(privateKey); ok {
			if b.PrivateFields != nil {
				if v, ok := b.PrivateFields[string(pk)]; ok {
					return v, nil
				}
			}
			return nil, ev.typeError("Cannot read private member #%s from an object whose class did not declare it", string(pk))
		}
		return value.Get(b, key, b)
	case value.String:
		if key == "length" {
			return value.Number(len(b)), nil
		}
		if ks, ok := key.(string); ok {
			if idx, ok := parseIndex(ks); ok && idx >= 0 && idx < len(b) {
				return value.String(b[idx : idx+1]), nil
			}
		}
		return value.Get(ev.realm.StringProto, key, base)
	case value.Number:
		return value.Get(ev.realm.NumberProto, key, base)
	case value.Bool:
		return value.Get(ev.realm.BooleanProto, key, base)
	case value.Symbol:
		return value.Get(ev.realm.SymbolProto, key, base)
	case value.BigInt:
		return value.Get(ev.realm.BigIntProto, key, base)
	case value.Undefined, value.Null:
		return nil, ev.typeError("Cannot read properties of %s (reading '%v')", value.ToStringValue(base), key)
	default:
		return value.Undef, nil
	}
}

func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// evalDynamicImport implements `import(specifier)`: the specifier expression
// is evaluated eagerly (per spec it may be any expression, not just a string
// literal), but module resolution/linking/evaluation itself never blocks
// the caller — it runs synchronously against the installed ModuleLoader and
// the result is wrapped as an already-settled Promise, matching every real
// embedding's actual behavior for a loader with no true async I/O underneath
// it (spec.md's loader is a synchronous `modulePath -> sourceText` function).
func (ev *Evaluator) evalDynamicImport(env *Environment, n *ast.ImportCallExpr) (value.Value, error) {
	specVal, err := ev.evalExpr(env, n.Source)
	if err != nil {
		return nil, err
	}
	spec := value.ToStringValue(specVal)
	mod, loadErr := ev.loadModule(spec)
	if loadErr != nil {
		if thrown, ok := AsThrown(loadErr); ok {
			return ev.NewPromiseObject(scheduler.RejectedPromise(ev.loop, thrown)), nil
		}
		return ev.NewPromiseObject(scheduler.RejectedPromise(ev.loop, value.String(loadErr.Error()))), nil
	}
	return ev.NewPromiseObject(scheduler.Resolved(ev.loop, mod.Namespace)), nil
}

type unsupportedSuper struct{}

func (*unsupportedSuper) Error() string { return "super outside a derived class method" }

type errUnsupported struct{ what string }

func (e *errUnsupported) Error() string { return "unsupported: " + e.what }
