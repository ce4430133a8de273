package stdlib

import (
	"github.com/jsrt/jsrt/eval"
	"github.com/jsrt/jsrt/value"
)

func installObject(ev *eval.Evaluator) {
	r := ev.Realm()
	proto := r.ObjectProto

	method(ev, proto, "hasOwnProperty", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := this.(*value.Object)
		if !ok {
			return value.Bool(false), nil
		}
		return value.Bool(o.GetOwn(propertyKey(arg(args, 0))) != nil), nil
	})
	method(ev, proto, "isPrototypeOf", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		target, ok := arg(args, 0).(*value.Object)
		if !ok {
			return value.Bool(false), nil
		}
		self, ok := this.(*value.Object)
		if !ok {
			return value.Bool(false), nil
		}
		for cur := target.Proto; cur != nil; cur = cur.Proto {
			if cur == self {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	})
	method(ev, proto, "propertyIsEnumerable", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		o, ok := this.(*value.Object)
		if !ok {
			return value.Bool(false), nil
		}
		d := o.GetOwn(propertyKey(arg(args, 0)))
		return value.Bool(d != nil && d.Enumerable), nil
	})
	method(ev, proto, "toString", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		tag := "Object"
		if o, ok := this.(*value.Object); ok && o.Class != "" {
			tag = o.Class
		}
		return value.String("[object " + tag + "]"), nil
	})
	method(ev, proto, "valueOf", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		return this, nil
	})

	ctor := value.NewConstructor(r.FunctionProto, "Object", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		a := arg(args, 0)
		if value.IsNullish(a) {
			return r.NewObject(), nil
		}
		if o, ok := a.(*value.Object); ok {
			return o, nil
		}
		return r.NewObject(), nil
	}, func(args []value.Value, _ *value.Object) (value.Value, error) {
		a := arg(args, 0)
		if o, ok := a.(*value.Object); ok {
			return o, nil
		}
		return r.NewObject(), nil
	})
	ctor.SetHidden("prototype", proto)
	proto.SetHidden("constructor", ctor)

	method(ev, ctor, "keys", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		o, err := toObject(ev, arg(args, 0))
		if err != nil {
			return nil, err
		}
		var out []value.Value
		for _, k := range o.OwnKeys() {
			if ks, ok := k.(string); ok {
				if d := o.GetOwn(k); d != nil && d.Enumerable {
					out = append(out, value.String(ks))
				}
			}
		}
		return r.NewArray(out), nil
	})
	method(ev, ctor, "values", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		o, err := toObject(ev, arg(args, 0))
		if err != nil {
			return nil, err
		}
		var out []value.Value
		for _, k := range o.OwnKeys() {
			if ks, ok := k.(string); ok {
				if d := o.GetOwn(k); d != nil && d.Enumerable {
					v, err := value.Get(o, ks, o)
					if err != nil {
						return nil, err
					}
					out = append(out, v)
				}
			}
		}
		return r.NewArray(out), nil
	})
	method(ev, ctor, "entries", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		o, err := toObject(ev, arg(args, 0))
		if err != nil {
			return nil, err
		}
		var out []value.Value
		for _, k := range o.OwnKeys() {
			if ks, ok := k.(string); ok {
				if d := o.GetOwn(k); d != nil && d.Enumerable {
					v, err := value.Get(o, ks, o)
					if err != nil {
						return nil, err
					}
					out = append(out, r.NewArray([]value.Value{value.String(ks), v}))
				}
			}
		}
		return r.NewArray(out), nil
	})
	method(ev, ctor, "assign", 2, func(_ value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return nil, ev.TypeError("Cannot convert undefined or null to object")
		}
		target, err := toObject(ev, args[0])
		if err != nil {
			return nil, err
		}
		for _, src := range args[1:] {
			so, ok := src.(*value.Object)
			if !ok {
				continue
			}
			for _, k := range so.OwnKeys() {
				d := so.GetOwn(k)
				if d == nil || !d.Enumerable {
					continue
				}
				v, err := value.Get(so, k, so)
				if err != nil {
					return nil, err
				}
				if err := value.Set(target, k, v, target); err != nil {
					return nil, err
				}
			}
		}
		return target, nil
	})
	method(ev, ctor, "freeze", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		o, ok := arg(args, 0).(*value.Object)
		if !ok {
			return arg(args, 0), nil
		}
		o.Extensible = false
		for _, k := range o.OwnKeys() {
			if d := o.GetOwn(k); d != nil && !d.IsAccessor {
				d.Writable = false
				d.Configurable = false
			}
		}
		return o, nil
	})
	method(ev, ctor, "isFrozen", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		o, ok := arg(args, 0).(*value.Object)
		if !ok {
			return value.Bool(true), nil
		}
		if o.Extensible {
			return value.Bool(false), nil
		}
		for _, k := range o.OwnKeys() {
			if d := o.GetOwn(k); d != nil && !d.IsAccessor && (d.Writable || d.Configurable) {
				return value.Bool(false), nil
			}
		}
		return value.Bool(true), nil
	})
	method(ev, ctor, "seal", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		o, ok := arg(args, 0).(*value.Object)
		if !ok {
			return arg(args, 0), nil
		}
		o.Extensible = false
		for _, k := range o.OwnKeys() {
			if d := o.GetOwn(k); d != nil {
				d.Configurable = false
			}
		}
		return o, nil
	})
	method(ev, ctor, "isSealed", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		o, ok := arg(args, 0).(*value.Object)
		if !ok {
			return value.Bool(true), nil
		}
		if o.Extensible {
			return value.Bool(false), nil
		}
		for _, k := range o.OwnKeys() {
			if d := o.GetOwn(k); d != nil && d.Configurable {
				return value.Bool(false), nil
			}
		}
		return value.Bool(true), nil
	})
	method(ev, ctor, "preventExtensions", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		if o, ok := arg(args, 0).(*value.Object); ok {
			o.Extensible = false
		}
		return arg(args, 0), nil
	})
	method(ev, ctor, "isExtensible", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		o, ok := arg(args, 0).(*value.Object)
		return value.Bool(ok && o.Extensible), nil
	})
	method(ev, ctor, "create", 2, func(_ value.Value, args []value.Value) (value.Value, error) {
		var proto *value.Object
		switch p := arg(args, 0).(type) {
		case *value.Object:
			proto = p
		case value.Null:
			proto = nil
		default:
			return nil, ev.TypeError("Object prototype may only be an Object or null")
		}
		o := value.NewObject(proto)
		if descs, ok := arg(args, 1).(*value.Object); ok {
			if err := defineProperties(ev, o, descs); err != nil {
				return nil, err
			}
		}
		return o, nil
	})
	method(ev, ctor, "getPrototypeOf", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		o, err := toObject(ev, arg(args, 0))
		if err != nil {
			return nil, err
		}
		if o.Proto == nil {
			return value.NullVal, nil
		}
		return o.Proto, nil
	})
	method(ev, ctor, "setPrototypeOf", 2, func(_ value.Value, args []value.Value) (value.Value, error) {
		o, ok := arg(args, 0).(*value.Object)
		if !ok {
			return arg(args, 0), nil
		}
		switch p := arg(args, 1).(type) {
		case *value.Object:
			o.Proto = p
		case value.Null:
			o.Proto = nil
		}
		return o, nil
	})
	method(ev, ctor, "getOwnPropertyNames", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		o, err := toObject(ev, arg(args, 0))
		if err != nil {
			return nil, err
		}
		var out []value.Value
		for _, k := range o.OwnKeys() {
			if ks, ok := k.(string); ok {
				out = append(out, value.String(ks))
			}
		}
		return r.NewArray(out), nil
	})
	method(ev, ctor, "getOwnPropertyDescriptor", 2, func(_ value.Value, args []value.Value) (value.Value, error) {
		o, err := toObject(ev, arg(args, 0))
		if err != nil {
			return nil, err
		}
		d := o.GetOwn(propertyKey(arg(args, 1)))
		if d == nil {
			return value.Undef, nil
		}
		return descriptorToObject(r, d), nil
	})
	method(ev, ctor, "defineProperty", 3, func(_ value.Value, args []value.Value) (value.Value, error) {
		o, ok := arg(args, 0).(*value.Object)
		if !ok {
			return nil, ev.TypeError("Object.defineProperty called on non-object")
		}
		desc, ok := arg(args, 2).(*value.Object)
		if !ok {
			return nil, ev.TypeError("Property description must be an object")
		}
		if err := defineProperty(ev, o, propertyKey(arg(args, 1)), desc); err != nil {
			return nil, err
		}
		return o, nil
	})
	method(ev, ctor, "defineProperties", 2, func(_ value.Value, args []value.Value) (value.Value, error) {
		o, ok := arg(args, 0).(*value.Object)
		if !ok {
			return nil, ev.TypeError("Object.defineProperties called on non-object")
		}
		descs, ok := arg(args, 1).(*value.Object)
		if !ok {
			return nil, ev.TypeError("Properties description must be an object")
		}
		if err := defineProperties(ev, o, descs); err != nil {
			return nil, err
		}
		return o, nil
	})
	method(ev, ctor, "fromEntries", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		entries, err := ev.IterateToSlice(arg(args, 0))
		if err != nil {
			return nil, err
		}
		o := r.NewObject()
		for _, e := range entries {
			pair, err := ev.IterateToSlice(e)
			if err != nil {
				return nil, err
			}
			var k value.Value = value.Undef
			var v value.Value = value.Undef
			if len(pair) > 0 {
				k = pair[0]
			}
			if len(pair) > 1 {
				v = pair[1]
			}
			o.SetData(propertyKey(k), v)
		}
		return o, nil
	})
	method(ev, ctor, "is", 2, func(_ value.Value, args []value.Value) (value.Value, error) {
		return value.Bool(sameValue(arg(args, 0), arg(args, 1))), nil
	})

	global(ev, "Object", ctor)
}

// propertyKey converts an arbitrary JS value to the key shape Object/GetOwn
// expects: Symbol keys stay Symbol, everything else becomes its string form.
func propertyKey(v value.Value) any {
	if s, ok := v.(value.Symbol); ok {
		return s
	}
	return value.ToStringValue(v)
}

func descriptorToObject(r *eval.Realm, d *value.PropertyDescriptor) *value.Object {
	o := r.NewObject()
	if d.IsAccessor {
		if d.Get != nil {
			o.SetData("get", d.Get)
		} else {
			o.SetData("get", value.Undef)
		}
		if d.Set != nil {
			o.SetData("set", d.Set)
		} else {
			o.SetData("set", value.Undef)
		}
	} else {
		o.SetData("value", d.Value)
		o.SetData("writable", value.Bool(d.Writable))
	}
	o.SetData("enumerable", value.Bool(d.Enumerable))
	o.SetData("configurable", value.Bool(d.Configurable))
	return o
}

func defineProperty(ev *eval.Evaluator, o *value.Object, key any, desc *value.Object) error {
	existing := o.GetOwn(key)
	nd := &value.PropertyDescriptor{}
	if existing != nil {
		*nd = *existing
	}
	if desc.GetOwn("value") != nil || desc.GetOwn("writable") != nil {
		nd.IsAccessor = false
	}
	if v := desc.GetOwn("value"); v != nil {
		nd.Value = v.Value
	}
	if v := desc.GetOwn("writable"); v != nil {
		nd.Writable = value.ToBoolean(v.Value)
	}
	if v := desc.GetOwn("get"); v != nil {
		nd.IsAccessor = true
		if fn, ok := v.Value.(*value.Object); ok {
			nd.Get = fn
		} else {
			nd.Get = nil
		}
	}
	if v := desc.GetOwn("set"); v != nil {
		nd.IsAccessor = true
		if fn, ok := v.Value.(*value.Object); ok {
			nd.Set = fn
		} else {
			nd.Set = nil
		}
	}
	if v := desc.GetOwn("enumerable"); v != nil {
		nd.Enumerable = value.ToBoolean(v.Value)
	}
	if v := desc.GetOwn("configurable"); v != nil {
		nd.Configurable = value.ToBoolean(v.Value)
	}
	o.DefineOwn(key, nd)
	return nil
}

func defineProperties(ev *eval.Evaluator, o *value.Object, descs *value.Object) error {
	for _, k := range descs.OwnKeys() {
		d := descs.GetOwn(k)
		if d == nil || !d.Enumerable {
			continue
		}
		desc, ok := d.Value.(*value.Object)
		if !ok {
			return ev.TypeError("Property description must be an object")
		}
		if err := defineProperty(ev, o, k, desc); err != nil {
			return err
		}
	}
	return nil
}

// sameValue implements Object.is's SameValue algorithm: like ===, except
// NaN equals itself. The sign of zero is not checked, so +0 vs -0
// collapses to the StrictEquals answer (true) here.
func sameValue(a, b value.Value) bool {
	an, aIsNum := a.(value.Number)
	bn, bIsNum := b.(value.Number)
	if aIsNum && bIsNum && an.IsNaN() && bn.IsNaN() {
		return true
	}
	return value.StrictEquals(a, b)
}
