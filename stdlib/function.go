package stdlib

import (
	"strconv"

	"github.com/jsrt/jsrt/eval"
	"github.com/jsrt/jsrt/value"
)

func installFunction(ev *eval.Evaluator) {
	r := ev.Realm()
	proto := r.FunctionProto

	method(ev, proto, "call", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		var thisArg value.Value = value.Undef
		if len(args) > 0 {
			thisArg = args[0]
		}
		rest := []value.Value{}
		if len(args) > 1 {
			rest = args[1:]
		}
		return ev.Call(this, thisArg, rest)
	})

	method(ev, proto, "apply", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		thisArg := arg(args, 0)
		var rest []value.Value
		if a := arg(args, 1); !value.IsNullish(a) {
			list, err := ev.IterateToSlice(a)
			if err != nil {
				if o, ok := a.(*value.Object); ok {
					list = arrayLikeToSlice(o)
				} else {
					return nil, err
				}
			}
			rest = list
		}
		return ev.Call(this, thisArg, rest)
	})

	method(ev, proto, "bind", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		target, ok := this.(*value.Object)
		if !ok || target.Call == nil {
			return nil, ev.TypeError("Bind must be called on a function")
		}
		boundThis := arg(args, 0)
		var boundArgs []value.Value
		if len(args) > 1 {
			boundArgs = append(boundArgs, args[1:]...)
		}
		name := "bound " + target.FnName
		length := target.FnLength - len(boundArgs)
		if length < 0 {
			length = 0
		}
		bound := r.NewFunction(name, length, func(_ value.Value, callArgs []value.Value) (value.Value, error) {
			full := append(append([]value.Value{}, boundArgs...), callArgs...)
			return ev.Call(target, boundThis, full)
		})
		if target.Construct != nil {
			bound.Construct = func(callArgs []value.Value, newTarget *value.Object) (value.Value, error) {
				full := append(append([]value.Value{}, boundArgs...), callArgs...)
				return target.Construct(full, newTarget)
			}
		}
		return bound, nil
	})

	method(ev, proto, "toString", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		if fo, ok := this.(*value.Object); ok {
			return value.String("function " + fo.FnName + "() { [native code] }"), nil
		}
		return value.String("function () { [native code] }"), nil
	})
}

// arrayLikeToSlice reads a plain array-like object's integer-indexed
// elements up to its length property — Function.prototype.apply's
// documented fallback for a second argument that isn't iterable but does
// have length/indices (arguments objects predating Symbol.iterator use).
func arrayLikeToSlice(o *value.Object) []value.Value {
	lenVal, _ := value.Get(o, "length", o)
	n := int(value.ToNumber(lenVal))
	out := make([]value.Value, 0, n)
	for i := 0; i < n; i++ {
		v, _ := value.Get(o, strconv.Itoa(i), o)
		out = append(out, v)
	}
	return out
}
