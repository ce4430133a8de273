package stdlib

import (
	"github.com/jsrt/jsrt/eval"
	"github.com/jsrt/jsrt/internal/scheduler"
	"github.com/jsrt/jsrt/value"
)

func installPromise(ev *eval.Evaluator) {
	r := ev.Realm()
	proto := r.PromiseProto
	loop := ev.Loop()

	ctor := value.NewConstructor(r.FunctionProto, "Promise", 1, func(_ value.Value, _ []value.Value) (value.Value, error) {
		return nil, ev.TypeError("Promise constructor cannot be invoked without 'new'")
	}, func(args []value.Value, _ *value.Object) (value.Value, error) {
		executor, ok := arg(args, 0).(*value.Object)
		if !ok || executor.Call == nil {
			return nil, ev.TypeError("Promise resolver %s is not a function", value.ToStringValue(arg(args, 0)))
		}
		p, resolve, reject := scheduler.NewChainedPromise(loop)
		resolveFn := value.NewNativeFunction(r.FunctionProto, "", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
			resolve(arg(args, 0))
			return value.Undef, nil
		})
		rejectFn := value.NewNativeFunction(r.FunctionProto, "", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
			reject(arg(args, 0))
			return value.Undef, nil
		})
		if _, err := ev.Call(executor, value.Undef, []value.Value{resolveFn, rejectFn}); err != nil {
			if thrown, ok := eval.AsThrown(err); ok {
				reject(thrown)
			} else {
				reject(value.String(err.Error()))
			}
		}
		return ev.NewPromiseObject(p), nil
	})
	ctor.SetHidden("prototype", proto)
	proto.SetHidden("constructor", ctor)

	method(ev, ctor, "resolve", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if o, ok := v.(*value.Object); ok {
			if _, ok := eval.PromiseFromObject(o); ok {
				return v, nil
			}
		}
		return ev.NewPromiseObject(scheduler.Resolved(loop, v)), nil
	})
	method(ev, ctor, "reject", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		return ev.NewPromiseObject(scheduler.RejectedPromise(loop, arg(args, 0))), nil
	})
	method(ev, ctor, "all", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		promises, err := collectPromises(ev, loop, arg(args, 0))
		if err != nil {
			return nil, err
		}
		p := scheduler.All(loop, promises, func(vs []value.Value) value.Value { return r.NewArray(vs) })
		return ev.NewPromiseObject(p), nil
	})
	method(ev, ctor, "race", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		promises, err := collectPromises(ev, loop, arg(args, 0))
		if err != nil {
			return nil, err
		}
		return ev.NewPromiseObject(scheduler.Race(loop, promises)), nil
	})
	method(ev, ctor, "allSettled", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		promises, err := collectPromises(ev, loop, arg(args, 0))
		if err != nil {
			return nil, err
		}
		toObject := func(res scheduler.SettledResult) value.Value {
			o := r.NewObject()
			if res.Fulfilled {
				o.SetData("status", value.String("fulfilled"))
				o.SetData("value", res.Value)
			} else {
				o.SetData("status", value.String("rejected"))
				o.SetData("reason", res.Value)
			}
			return o
		}
		p := scheduler.AllSettled(loop, promises, toObject, func(vs []value.Value) value.Value { return r.NewArray(vs) })
		return ev.NewPromiseObject(p), nil
	})
	method(ev, ctor, "any", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		promises, err := collectPromises(ev, loop, arg(args, 0))
		if err != nil {
			return nil, err
		}
		newAggregate := func(e *scheduler.AggregateError) value.Value {
			o := ev.NewError("AggregateError", e.Message)
			o.SetData("errors", r.NewArray(e.Errors))
			return o
		}
		p := scheduler.Any(loop, promises, newAggregate)
		return ev.NewPromiseObject(p), nil
	})
	method(ev, ctor, "withResolvers", 0, func(_ value.Value, _ []value.Value) (value.Value, error) {
		p, resolve, reject := scheduler.NewChainedPromise(loop)
		out := r.NewObject()
		out.SetData("promise", ev.NewPromiseObject(p))
		out.SetData("resolve", value.NewNativeFunction(r.FunctionProto, "", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
			resolve(arg(args, 0))
			return value.Undef, nil
		}))
		out.SetData("reject", value.NewNativeFunction(r.FunctionProto, "", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
			reject(arg(args, 0))
			return value.Undef, nil
		}))
		return out, nil
	})

	method(ev, proto, "then", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		p, err := thisPromise(ev, this)
		if err != nil {
			return nil, err
		}
		onFulfilled := wrapReaction(ev, arg(args, 0))
		onRejected := wrapReaction(ev, arg(args, 1))
		return ev.NewPromiseObject(p.Then(onFulfilled, onRejected)), nil
	})
	method(ev, proto, "catch", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		p, err := thisPromise(ev, this)
		if err != nil {
			return nil, err
		}
		return ev.NewPromiseObject(p.Catch(wrapReaction(ev, arg(args, 0)))), nil
	})
	method(ev, proto, "finally", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		p, err := thisPromise(ev, this)
		if err != nil {
			return nil, err
		}
		fn, _ := arg(args, 0).(*value.Object)
		return ev.NewPromiseObject(p.Finally(func() error {
			if fn == nil || fn.Call == nil {
				return nil
			}
			_, err := ev.Call(fn, value.Undef, nil)
			return err
		})), nil
	})

	global(ev, "Promise", ctor)
}

func thisPromise(ev *eval.Evaluator, this value.Value) (*scheduler.ChainedPromise, error) {
	o, ok := this.(*value.Object)
	if !ok {
		return nil, ev.TypeError("Method Promise.prototype called on incompatible receiver")
	}
	p, ok := eval.PromiseFromObject(o)
	if !ok {
		return nil, ev.TypeError("Method Promise.prototype called on incompatible receiver")
	}
	return p, nil
}

// wrapReaction adapts a then/catch argument (expected to be callable, but
// JS silently treats a non-function reaction as "no handler") into the
// plain Go closure scheduler.ChainedPromise.Then consumes.
func wrapReaction(ev *eval.Evaluator, fn value.Value) func(value.Value) (value.Value, error) {
	fo, ok := fn.(*value.Object)
	if !ok || fo.Call == nil {
		return nil
	}
	return func(v value.Value) (value.Value, error) {
		return ev.Call(fo, value.Undef, []value.Value{v})
	}
}

// collectPromises drains an iterable of arbitrary values into
// *scheduler.ChainedPromise, coercing each non-promise element the same way
// Promise.resolve would (so `Promise.all([1, 2, somePromise])` works).
func collectPromises(ev *eval.Evaluator, loop *scheduler.Loop, iterable value.Value) ([]*scheduler.ChainedPromise, error) {
	items, err := ev.IterateToSlice(iterable)
	if err != nil {
		return nil, err
	}
	out := make([]*scheduler.ChainedPromise, len(items))
	for i, it := range items {
		if o, ok := it.(*value.Object); ok {
			if p, ok := eval.PromiseFromObject(o); ok {
				out[i] = p
				continue
			}
		}
		out[i] = scheduler.Resolved(loop, it)
	}
	return out, nil
}
