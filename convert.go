package jsrt

import (
	"fmt"
	"reflect"

	"github.com/jsrt/jsrt/eval"
	"github.com/jsrt/jsrt/value"
)

// ToValue coerces an arbitrary Go value into the engine's Value type,
// following the mapping spec.md §6 publishes for host function returns and
// SetGlobal: numbers to number, strings to string, bools to boolean,
// nil to undefined, []byte to Uint8Array, and anything else to an opaque
// wrapped object whose property reads/writes are forwarded onto the
// original Go value via reflection.
func (e *Engine) ToValue(host any) (value.Value, error) {
	return toValue(e.ev, host)
}

func toValue(ev *eval.Evaluator, host any) (value.Value, error) {
	switch v := host.(type) {
	case nil:
		return value.Undef, nil
	case value.Value:
		return v, nil
	case bool:
		return value.Bool(v), nil
	case string:
		return value.String(v), nil
	case []byte:
		return bytesToUint8Array(ev, v)
	case error:
		return ev.NewError("Error", v.Error()), nil
	case int:
		return value.Number(v), nil
	case int8:
		return value.Number(v), nil
	case int16:
		return value.Number(v), nil
	case int32:
		return value.Number(v), nil
	case int64:
		return value.Number(v), nil
	case uint:
		return value.Number(v), nil
	case uint8:
		return value.Number(v), nil
	case uint16:
		return value.Number(v), nil
	case uint32:
		return value.Number(v), nil
	case uint64:
		return value.Number(v), nil
	case float32:
		return value.Number(v), nil
	case float64:
		return value.Number(v), nil
	case map[string]any:
		return mapToObject(ev, v)
	case []any:
		return sliceToArray(ev, v)
	default:
		return wrapOpaque(ev, host)
	}
}

func mapToObject(ev *eval.Evaluator, m map[string]any) (value.Value, error) {
	o := ev.Realm().NewObject()
	for k, v := range m {
		jv, err := toValue(ev, v)
		if err != nil {
			return nil, err
		}
		o.SetData(k, jv)
	}
	return o, nil
}

func sliceToArray(ev *eval.Evaluator, s []any) (value.Value, error) {
	elems := make([]value.Value, len(s))
	for i, v := range s {
		jv, err := toValue(ev, v)
		if err != nil {
			return nil, err
		}
		elems[i] = jv
	}
	return ev.Realm().NewArray(elems), nil
}

func bytesToUint8Array(ev *eval.Evaluator, b []byte) (value.Value, error) {
	ctorVal, err := ev.GlobalEnv().Get("Uint8Array")
	if err != nil {
		return nil, fmt.Errorf("convert []byte: %w", err)
	}
	elems := make([]value.Value, len(b))
	for i, by := range b {
		elems[i] = value.Number(by)
	}
	arr := ev.Realm().NewArray(elems)
	return ev.Construct(ctorVal, []value.Value{arr})
}

// wrapOpaque builds the "arbitrary host objects -> opaque wrapped object
// whose property reads/writes are forwarded" mapping spec.md §6 requires:
// one accessor property per exported struct field or map key, each Get/Set
// closing over a reflect.Value so a read/write from script reaches the
// real Go field or map entry directly, the same accessor-property
// technique the module namespace objects use for live bindings.
func wrapOpaque(ev *eval.Evaluator, host any) (value.Value, error) {
	o := value.NewObject(ev.Realm().ObjectProto)
	o.Class = "Object"
	o.Internal = host

	rv := reflect.ValueOf(host)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return o, nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			defineHostAccessor(ev, o, field.Name, func() reflect.Value { return rv.FieldByName(field.Name) })
		}
	case reflect.Map:
		for _, k := range rv.MapKeys() {
			key, ok := k.Interface().(string)
			if !ok {
				continue
			}
			defineHostAccessor(ev, o, key, func() reflect.Value { return rv.MapIndex(reflect.ValueOf(key)) })
		}
	}
	return o, nil
}

func defineHostAccessor(ev *eval.Evaluator, o *value.Object, name string, field func() reflect.Value) {
	getter := ev.Realm().NewFunction("", 0, func(_ value.Value, _ []value.Value) (value.Value, error) {
		fv := field()
		if !fv.IsValid() || !fv.CanInterface() {
			return value.Undef, nil
		}
		return toValue(ev, fv.Interface())
	})
	setter := ev.Realm().NewFunction("", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		fv := field()
		if !fv.IsValid() || !fv.CanSet() {
			return value.Undef, nil
		}
		nv := reflect.ValueOf(fromValue(arg1(args)))
		if !nv.Type().ConvertibleTo(fv.Type()) {
			return nil, ev.TypeError("cannot assign %s to field of type %s", nv.Type(), fv.Type())
		}
		fv.Set(nv.Convert(fv.Type()))
		return value.Undef, nil
	})
	o.DefineOwn(name, &value.PropertyDescriptor{IsAccessor: true, Get: getter, Set: setter, Enumerable: true})
}

func arg1(args []value.Value) value.Value {
	if len(args) > 0 {
		return args[0]
	}
	return value.Undef
}

// fromValue is ToValue's inverse for the primitive subset a host field
// assignment can plausibly accept — enough to round-trip numbers, strings,
// and bools back through an opaque object's setter.
func fromValue(v value.Value) any {
	switch t := v.(type) {
	case value.Bool:
		return bool(t)
	case value.Number:
		return float64(t)
	case value.String:
		return string(t)
	default:
		return value.ToStringValue(v)
	}
}

// HostValue unwraps an opaque object built by ToValue back to the original
// Go value it was constructed from, or (nil, false) for any other object
// (including the engine's own Promise/typed-array/buffer objects, which
// stash their own internal state in the same field for unrelated reasons).
func HostValue(o *value.Object) (any, bool) {
	if o.Class != "Object" || o.Internal == nil {
		return nil, false
	}
	return o.Internal, true
}
