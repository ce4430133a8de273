package eval

import (
	"github.com/jsrt/jsrt/ast"
	"github.com/jsrt/jsrt/value"
)

// bindPattern destructures v into fresh bindings in env: the shape used for
// `let`/`const`/`var` declarators, function parameters, and catch clauses.
func (ev *Evaluator) bindPattern(env *Environment, p ast.Pattern, v value.Value, mutable bool) error {
	switch t := p.(type) {
	case *ast.Identifier:
		env.Declare(t.Name, v, mutable)
		return nil

	case *ast.AssignPattern:
		if v == nil || v.Kind() == value.KindUndefined {
			dv, err := ev.evalExpr(env, t.Default)
			if err != nil {
				return err
			}
			v = dv
		}
		return ev.bindPattern(env, t.Target, v, mutable)

	case *ast.ArrayPattern:
		items, err := ev.iterateToSlice(v)
		if err != nil {
			return err
		}
		for i, el := range t.Elements {
			if el == nil {
				continue // elision
			}
			if rest, ok := el.(*ast.RestElement); ok {
				var tail []value.Value
				if i < len(items) {
					tail = items[i:]
				}
				return ev.bindPattern(env, rest.Target, ev.realm.NewArray(tail), mutable)
			}
			var item value.Value = value.Undef
			if i < len(items) {
				item = items[i]
			}
			if err := ev.bindPattern(env, el, item, mutable); err != nil {
				return err
			}
		}
		return nil

	case *ast.ObjectPattern:
		o, ok := v.(*value.Object)
		if !ok && !value.IsNullish(v) {
			o = nil // primitives destructure against Undef props below
		}
		if value.IsNullish(v) {
			return ev.typeError("Cannot destructure '%s' as it is %s.", value.ToStringValue(v), value.ToStringValue(v))
		}
		used := map[any]bool{}
		for _, pp := range t.Properties {
			key, err := ev.propertyKeyOf(env, pp.Key, pp.Computed)
			if err != nil {
				return err
			}
			used[key] = true
			var pv value.Value = value.Undef
			if o != nil {
				pv, err = value.Get(o, key, o)
				if err != nil {
					return err
				}
			}
			if err := ev.bindPattern(env, pp.Value, pv, mutable); err != nil {
				return err
			}
		}
		if t.Rest != nil {
			rest := ev.realm.NewObject()
			if o != nil {
				for _, k := range o.OwnKeys() {
					if used[k] {
						continue
					}
					if d := o.GetOwn(k); d != nil && d.Enumerable {
						gv, _ := value.Get(o, k, o)
						rest.SetData(k, gv)
					}
				}
			}
			return ev.bindPattern(env, t.Rest, rest, mutable)
		}
		return nil

	case *ast.RestElement:
		return ev.bindPattern(env, t.Target, v, mutable)

	default:
		return ev.typeError("unsupported binding pattern")
	}
}

// assignPattern destructures v into already-existing bindings/members: the
// shape used for `[a, b] = x;` destructuring assignment, where every target
// leaf is itself an assignable expression (Identifier or MemberExpr), not a
// fresh declaration.
func (ev *Evaluator) assignPattern(env *Environment, p ast.Pattern, v value.Value) error {
	switch t := p.(type) {
	case *ast.Identifier:
		return env.Set(t.Name, v)

	case *ast.AssignPattern:
		if v == nil || v.Kind() == value.KindUndefined {
			dv, err := ev.evalExpr(env, t.Default)
			if err != nil {
				return err
			}
			v = dv
		}
		return ev.assignPattern(env, t.Target, v)

	case *ast.ArrayPattern:
		items, err := ev.iterateToSlice(v)
		if err != nil {
			return err
		}
		for i, el := range t.Elements {
			if el == nil {
				continue
			}
			if rest, ok := el.(*ast.RestElement); ok {
				var tail []value.Value
				if i < len(items) {
					tail = items[i:]
				}
				return ev.assignPattern(env, rest.Target, ev.realm.NewArray(tail))
			}
			var item value.Value = value.Undef
			if i < len(items) {
				item = items[i]
			}
			if err := ev.assignPattern(env, el, item); err != nil {
				return err
			}
		}
		return nil

	case *ast.ObjectPattern:
		o, _ := v.(*value.Object)
		used := map[any]bool{}
		for _, pp := range t.Properties {
			key, err := ev.propertyKeyOf(env, pp.Key, pp.Computed)
			if err != nil {
				return err
			}
			used[key] = true
			var pv value.Value = value.Undef
			if o != nil {
				pv, err = value.Get(o, key, o)
				if err != nil {
					return err
				}
			}
			if err := ev.assignPattern(env, pp.Value, pv); err != nil {
				return err
			}
		}
		if t.Rest != nil {
			rest := ev.realm.NewObject()
			if o != nil {
				for _, k := range o.OwnKeys() {
					if used[k] {
						continue
					}
					if d := o.GetOwn(k); d != nil && d.Enumerable {
						gv, _ := value.Get(o, k, o)
						rest.SetData(k, gv)
					}
				}
			}
			return ev.assignPattern(env, t.Rest, rest)
		}
		return nil

	default:
		return ev.typeError("unsupported assignment pattern")
	}
}
