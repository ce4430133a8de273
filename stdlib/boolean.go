package stdlib

import (
	"github.com/jsrt/jsrt/eval"
	"github.com/jsrt/jsrt/value"
)

func installBoolean(ev *eval.Evaluator) {
	r := ev.Realm()
	proto := r.BooleanProto

	ctor := value.NewConstructor(r.FunctionProto, "Boolean", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		return value.Bool(value.ToBoolean(arg(args, 0))), nil
	}, func(args []value.Value, _ *value.Object) (value.Value, error) {
		o := value.NewObject(proto)
		o.Class = "Boolean"
		o.Internal = value.Bool(value.ToBoolean(arg(args, 0)))
		return o, nil
	})
	ctor.SetHidden("prototype", proto)
	proto.SetHidden("constructor", ctor)

	method(ev, proto, "toString", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		if thisBool(this) {
			return value.String("true"), nil
		}
		return value.String("false"), nil
	})
	method(ev, proto, "valueOf", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		return value.Bool(thisBool(this)), nil
	})

	global(ev, "Boolean", ctor)
}

func thisBool(this value.Value) bool {
	if b, ok := this.(value.Bool); ok {
		return bool(b)
	}
	if o, ok := this.(*value.Object); ok {
		if b, ok := o.Internal.(value.Bool); ok {
			return bool(b)
		}
	}
	return value.ToBoolean(this)
}
