package eval

import (
	"github.com/jsrt/jsrt/internal/scheduler"
	"github.com/jsrt/jsrt/value"
)

// This file is the exported surface package stdlib builds against: error
// construction/throwing, calling an arbitrary value, and wrapping a
// scheduler promise as the Promise object shape this evaluator recognizes.
// Everything else stdlib needs (ToNumber/ToStringValue/property access/...)
// already lives directly on package value.

// TypeError constructs-and-wraps a TypeError the same way a native
// type-mismatch error raised by the evaluator itself would be, for stdlib
// functions that detect a bad argument (`"abc".repeat(-1)`, `Object.keys(null)`).
func (ev *Evaluator) TypeError(format string, args ...any) error {
	return ev.typeError(format, args...)
}

// RangeError is TypeError's sibling for out-of-range arguments
// (`new Array(-1)`, `(123).toFixed(200)`).
func (ev *Evaluator) RangeError(format string, args ...any) error {
	return ev.rangeError(format, args...)
}

// NewError builds a plain Error-class object of the given constructor name
// without wrapping/throwing it — the shape stdlib's `new Error("...")`/
// `new TypeError("...")` constructors themselves need to return.
func (ev *Evaluator) NewError(name, message string) *value.Object {
	return ev.newError(name, message)
}

// ThrowValue wraps an arbitrary JS value as the Go error a caller further
// up (genvm, the host API's Evaluate/Run) knows how to unwrap back into a
// catchable/reportable value — the shape stdlib needs when a builtin itself
// wants to `throw` a value it was just handed rather than a message string.
func ThrowValue(v value.Value) error { return throwValue(v) }

// AsThrown unwraps a Go error produced anywhere in the evaluator (including
// one stdlib raised through ThrowValue/TypeError/RangeError) back to the JS
// value it carries.
func AsThrown(err error) (value.Value, bool) { return asThrown(err) }

// Call invokes fn as a function, this-bound to this, the same algorithm a
// `f(...)` call expression uses — TypeError if fn isn't callable. stdlib
// uses this for any builtin that calls back into user code (Array.prototype
// .forEach's callback, a Promise executor, ...).
func (ev *Evaluator) Call(fn value.Value, this value.Value, args []value.Value) (value.Value, error) {
	fo, ok := fn.(*value.Object)
	if !ok || fo.Call == nil {
		return nil, ev.typeError("%s is not a function", value.ToStringValue(fn))
	}
	return fo.Call(this, args)
}

// Construct invokes ctor's [[Construct]], the same algorithm a `new ctor(...)`
// expression uses — TypeError if ctor isn't constructible.
func (ev *Evaluator) Construct(ctor value.Value, args []value.Value) (value.Value, error) {
	co, ok := ctor.(*value.Object)
	if !ok || co.Construct == nil {
		return nil, ev.typeError("%s is not a constructor", value.ToStringValue(ctor))
	}
	return co.Construct(args, co)
}

// NewPromiseObject exposes newPromiseObject to stdlib, so `new Promise(...)`/
// `Promise.resolve`/`Promise.all`/... can wrap a *scheduler.ChainedPromise
// they built themselves the same way an async function's own return value
// is wrapped.
func (ev *Evaluator) NewPromiseObject(p *scheduler.ChainedPromise) *value.Object {
	return ev.newPromiseObject(p)
}

// PromiseFromObject extracts the *scheduler.ChainedPromise backing a
// Promise-shaped object, the inverse of NewPromiseObject — what stdlib's
// Promise.prototype.then/catch/finally methods type-assert against.
func PromiseFromObject(o *value.Object) (*scheduler.ChainedPromise, bool) {
	p, ok := o.Internal.(*scheduler.ChainedPromise)
	return p, ok
}

// Interrupt requests that the evaluator abort at its next function-call
// boundary, surfacing as a plain Error with message "interrupted". Once
// set it stays set — an interrupted Evaluator is meant to be discarded,
// matching the engine's ephemeral, no-persisted-state design.
func (ev *Evaluator) Interrupt() { ev.RequestInterrupt() }

// IterateToSlice drains an iterable (anything with a Symbol.iterator, plus
// the Array/string fast paths) into a plain slice — the algorithm `for-of`
// itself runs on, exposed for stdlib builtins that consume an iterable
// argument (Object.fromEntries, Array.from, Promise.all, ...).
func (ev *Evaluator) IterateToSlice(v value.Value) ([]value.Value, error) {
	return ev.iterateToSlice(v)
}
