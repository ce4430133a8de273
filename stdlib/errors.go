package stdlib

import (
	"github.com/jsrt/jsrt/eval"
	"github.com/jsrt/jsrt/value"
)

func installErrors(ev *eval.Evaluator) {
	r := ev.Realm()

	errorProto := r.ErrorProto
	method(ev, errorProto, "toString", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		o, ok := this.(*value.Object)
		if !ok {
			return value.String("Error"), nil
		}
		name := "Error"
		if v, err := value.Get(o, "name", o); err == nil && v != value.Undef {
			name = value.ToStringValue(v)
		}
		msg := ""
		if v, err := value.Get(o, "message", o); err == nil && v != value.Undef {
			msg = value.ToStringValue(v)
		}
		if msg == "" {
			return value.String(name), nil
		}
		return value.String(name + ": " + msg), nil
	})

	errCtor := buildErrorConstructor(ev, "Error", errorProto)
	errCtor.Construct = func(args []value.Value, newTarget *value.Object) (value.Value, error) {
		return newErrorInstance(ev, errorProto, "Error", args)
	}
	global(ev, "Error", errCtor)

	for name, proto := range r.ErrorProtos {
		name, proto := name, proto
		ctor := buildErrorConstructor(ev, name, proto)
		ctor.Construct = func(args []value.Value, newTarget *value.Object) (value.Value, error) {
			return newErrorInstance(ev, proto, name, args)
		}
		if name == "AggregateError" {
			ctor.FnLength = 2
			ctor.Call = func(_ value.Value, args []value.Value) (value.Value, error) {
				return aggregateErrorConstruct(ev, proto, args)
			}
			ctor.Construct = func(args []value.Value, _ *value.Object) (value.Value, error) {
				return aggregateErrorConstruct(ev, proto, args)
			}
		}
		global(ev, name, ctor)
	}
}

func buildErrorConstructor(ev *eval.Evaluator, name string, proto *value.Object) *value.Object {
	r := ev.Realm()
	ctor := value.NewConstructor(r.FunctionProto, name, 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		return newErrorInstance(ev, proto, name, args)
	}, nil)
	ctor.SetHidden("prototype", proto)
	proto.SetHidden("constructor", ctor)
	proto.SetHidden("name", value.String(name))
	proto.SetHidden("message", value.String(""))
	return ctor
}

func newErrorInstance(ev *eval.Evaluator, proto *value.Object, name string, args []value.Value) (*value.Object, error) {
	o := value.NewObject(proto)
	o.Class = "Error"
	if msg := arg(args, 0); msg != value.Undef {
		o.SetData("message", value.String(value.ToStringValue(msg)))
	}
	if opts, ok := arg(args, 1).(*value.Object); ok {
		if cause, err := value.Get(opts, "cause", opts); err == nil && cause != value.Undef {
			o.SetData("cause", cause)
		}
	}
	o.SetHidden("stack", value.String(name+": "+value.ToStringValue(arg(args, 0))))
	return o, nil
}

func aggregateErrorConstruct(ev *eval.Evaluator, proto *value.Object, args []value.Value) (*value.Object, error) {
	errs, err := ev.IterateToSlice(arg(args, 0))
	if err != nil {
		return nil, err
	}
	o := value.NewObject(proto)
	o.Class = "Error"
	o.SetData("errors", ev.Realm().NewArray(errs))
	if msg := arg(args, 1); msg != value.Undef {
		o.SetData("message", value.String(value.ToStringValue(msg)))
	}
	return o, nil
}
