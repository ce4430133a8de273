package stdlib

import (
	"time"

	"github.com/jsrt/jsrt/eval"
	"github.com/jsrt/jsrt/value"
)

func installTimers(ev *eval.Evaluator) {
	loop := ev.Loop()

	schedule := func(args []value.Value, interval bool) (value.Value, error) {
		fn, ok := arg(args, 0).(*value.Object)
		if !ok || fn.Call == nil {
			return nil, ev.TypeError("%s is not a function", value.ToStringValue(arg(args, 0)))
		}
		delayMs := float64(0)
		if len(args) > 1 {
			delayMs = value.ToNumber(args[1])
		}
		if delayMs < 0 || delayMs != delayMs {
			delayMs = 0
		}
		extra := append([]value.Value(nil), args[min(2, len(args)):]...)
		run := func() {
			_, _ = ev.Call(fn, value.Undef, extra)
		}
		delay := time.Duration(delayMs) * time.Millisecond
		var id int64
		if interval {
			id = loop.SetInterval(run, delay)
		} else {
			id = loop.SetTimeout(run, delay)
		}
		return value.Number(float64(id)), nil
	}

	global(ev, "setTimeout", ev.Realm().NewFunction("setTimeout", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		return schedule(args, false)
	}))
	global(ev, "setInterval", ev.Realm().NewFunction("setInterval", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		return schedule(args, true)
	}))
	clearFn := ev.Realm().NewFunction("clearTimer", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		id := int64(value.ToNumber(arg(args, 0)))
		loop.ClearTimer(id)
		return value.Undef, nil
	})
	global(ev, "clearTimeout", clearFn)
	global(ev, "clearInterval", clearFn)

	global(ev, "queueMicrotask", ev.Realm().NewFunction("queueMicrotask", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		fn, ok := arg(args, 0).(*value.Object)
		if !ok || fn.Call == nil {
			return nil, ev.TypeError("The callback provided as parameter 1 is not a function")
		}
		loop.QueueMicrotask(func() {
			_, _ = ev.Call(fn, value.Undef, nil)
		})
		return value.Undef, nil
	}))
}
