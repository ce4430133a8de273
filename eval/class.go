package eval

import (
	"github.com/jsrt/jsrt/ast"
	"github.com/jsrt/jsrt/value"
)

// privateKey distinguishes a `#name` property lookup from an ordinary
// string-keyed one; getProperty/assignTo route it to an object's
// PrivateFields map instead of the regular prototype-chain property system.
type privateKey string

// classInit runs a class's instance field initializers and constructor body
// against an already-existing `this`, used both for `new Class(...)` (where
// Construct creates the instance first) and for a subclass's `super(...)`
// call (where the instance already exists and belongs to the derived
// class's prototype, not this class's).
type classInit func(this value.Value, newTarget *value.Object, args []value.Value) error

// evalClass builds a class's constructor function object: instance methods
// and accessors land on a shared prototype object the way function
// expressions built by makeClosure always have, fields are initialized
// per-instance in Construct, and a super(...) call site is wired through to
// the base class's own classInit via ctor.Internal rather than by
// re-running the base class's full [[Construct]] (which would allocate a
// second, discarded instance).
func (ev *Evaluator) evalClass(env *Environment, cls *ast.ClassLiteral) (*value.Object, error) {
	var superCtor *value.Object
	superProto := ev.realm.ObjectProto
	if cls.Super != nil {
		sv, err := ev.evalExpr(env, cls.Super)
		if err != nil {
			return nil, err
		}
		so, ok := sv.(*value.Object)
		if !ok || so.Construct == nil {
			return nil, ev.typeError("Class extends value %s is not a constructor", value.ToStringValue(sv))
		}
		superCtor = so
		if pv, err := value.Get(so, "prototype", so); err == nil {
			if p, ok := pv.(*value.Object); ok {
				superProto = p
			}
		}
	}

	proto := value.NewObject(superProto)
	proto.Class = "Object"

	var ctorLit *ast.FunctionLiteral
	var instanceFields []*ast.ClassMember
	var staticMembers []*ast.ClassMember

	for _, m := range cls.Members {
		if m.IsStatic {
			staticMembers = append(staticMembers, m)
			continue
		}
		if m.Kind == ast.MemberField {
			instanceFields = append(instanceFields, m)
			continue
		}
		if id, ok := m.Key.(*ast.Identifier); ok && !m.Computed && !m.IsPrivate && id.Name == "constructor" && m.Kind == ast.MemberMethod {
			ctorLit = m.Value.(*ast.FunctionLiteral)
			continue
		}
		if err := ev.installMethod(env, proto, m); err != nil {
			return nil, err
		}
	}

	ctor := value.NewObject(ev.realm.FunctionProto)
	ctor.Class = "Function"
	ctor.FnName = cls.Name
	ctor.SetHidden("name", value.String(cls.Name))
	ctor.SetHidden("prototype", proto)
	proto.SetHidden("constructor", ctor)

	init := ev.buildClassInit(env, proto, ctorLit, instanceFields, superCtor)
	ctor.Internal = init

	className := cls.Name
	ctor.Call = func(_ value.Value, _ []value.Value) (value.Value, error) {
		return nil, ev.typeError("Class constructor %s cannot be invoked without 'new'", className)
	}
	ctor.Construct = func(args []value.Value, newTarget *value.Object) (value.Value, error) {
		if err := ev.enterCall(); err != nil {
			return nil, err
		}
		defer ev.exitCall()
		instProto := proto
		if newTarget != nil {
			if pv, err := value.Get(newTarget, "prototype", newTarget); err == nil {
				if p, ok := pv.(*value.Object); ok {
					instProto = p
				}
			}
		}
		instance := value.NewObject(instProto)
		if newTarget == nil {
			newTarget = ctor
		}
		if err := init(instance, newTarget, args); err != nil {
			return nil, err
		}
		return instance, nil
	}

	for _, m := range staticMembers {
		if m.Kind == ast.MemberField {
			var v value.Value = value.Undef
			if m.Value != nil {
				staticEnv := env.ChildFunction(ctor, nil)
				fv, err := ev.evalExpr(staticEnv, m.Value)
				if err != nil {
					return nil, err
				}
				v = fv
			}
			key, err := ev.propertyKeyOf(env, m.Key, m.Computed)
			if err != nil {
				return nil, err
			}
			if pk, ok := key.(privateKey); ok {
				if ctor.PrivateFields == nil {
					ctor.PrivateFields = map[string]value.Value{}
				}
				ctor.PrivateFields[string(pk)] = v
			} else {
				ctor.SetData(key, v)
			}
			continue
		}
		if err := ev.installMethod(env, ctor, m); err != nil {
			return nil, err
		}
	}

	return ctor, nil
}

// installMethod installs one method/getter/setter class member onto target
// (the prototype for instance members, the constructor object for static
// ones). Private methods land in target's PrivateFields instead of its
// regular property map, matching how #name member access is resolved.
func (ev *Evaluator) installMethod(env *Environment, target *value.Object, m *ast.ClassMember) error {
	fnLit := m.Value.(*ast.FunctionLiteral)
	fn := ev.makeClosure(fnLit, env)
	if m.IsPrivate {
		pid := m.Key.(*ast.PrivateIdentifier)
		if target.PrivateFields == nil {
			target.PrivateFields = map[string]value.Value{}
		}
		target.PrivateFields[pid.Name] = fn
		return nil
	}
	key, err := ev.propertyKeyOf(env, m.Key, m.Computed)
	if err != nil {
		return err
	}
	switch m.Kind {
	case ast.MemberGet, ast.MemberSet:
		desc := target.GetOwn(key)
		if desc == nil || !desc.IsAccessor {
			desc = &value.PropertyDescriptor{IsAccessor: true, Configurable: true}
		}
		if m.Kind == ast.MemberGet {
			desc.Get = fn
		} else {
			desc.Set = fn
		}
		target.DefineOwn(key, desc)
	default:
		target.SetHidden(key, fn)
	}
	return nil
}

func (ev *Evaluator) buildClassInit(env *Environment, proto *value.Object, ctorLit *ast.FunctionLiteral, fields []*ast.ClassMember, superCtor *value.Object) classInit {
	return func(this value.Value, newTarget *value.Object, args []value.Value) error {
		runFields := func() error {
			for _, f := range fields {
				var v value.Value = value.Undef
				if f.Value != nil {
					fieldEnv := env.ChildFunction(this, nil)
					fv, err := ev.evalExpr(fieldEnv, f.Value)
					if err != nil {
						return err
					}
					v = fv
				}
				key, err := ev.propertyKeyOf(env, f.Key, f.Computed)
				if err != nil {
					return err
				}
				o, ok := this.(*value.Object)
				if !ok {
					continue
				}
				if pk, ok := key.(privateKey); ok {
					if o.PrivateFields == nil {
						o.PrivateFields = map[string]value.Value{}
					}
					o.PrivateFields[string(pk)] = v
				} else {
					o.SetData(key, v)
				}
			}
			return nil
		}

		runSuper := func(sargs []value.Value) error {
			if superCtor == nil {
				return nil
			}
			if superInit, ok := superCtor.Internal.(classInit); ok {
				return superInit(this, newTarget, sargs)
			}
			if superCtor.Call != nil {
				_, err := superCtor.Call(this, sargs)
				return err
			}
			return nil
		}

		if ctorLit == nil {
			if superCtor != nil {
				if err := runSuper(args); err != nil {
					return err
				}
			}
			return runFields()
		}

		fnEnv := env.ChildFunction(this, newTarget)
		if superCtor != nil {
			fnEnv.SetSuperInit(func(sargs []value.Value) error {
				if err := runSuper(sargs); err != nil {
					return err
				}
				return runFields()
			})
		} else if err := runFields(); err != nil {
			return err
		}
		if err := ev.bindParams(fnEnv, ctorLit.Params, args); err != nil {
			return err
		}
		_, err := ev.execBlock(fnEnv, ctorLit.Body)
		if err != nil {
			if _, ok := err.(returnSignal); ok {
				return nil
			}
			return err
		}
		return nil
	}
}
