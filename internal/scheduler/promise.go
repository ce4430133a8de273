package scheduler

import "github.com/jsrt/jsrt/value"

// PromiseStatus is a ChainedPromise's settlement state.
type PromiseStatus int

const (
	Pending PromiseStatus = iota
	Fulfilled
	Rejected
)

func (s PromiseStatus) String() string {
	switch s {
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	default:
		return "pending"
	}
}

// handler is one Then/Catch/Finally registration: at most one of onFulfilled/
// onRejected runs, producing child's settlement.
type handler struct {
	onFulfilled func(value.Value) (value.Value, error)
	onRejected  func(value.Value) (value.Value, error)
	child       *ChainedPromise
}

// ChainedPromise is a Promise/A+ promise: pending, then fulfilled or
// rejected exactly once, with every reaction scheduled as a microtask on a
// Loop rather than run inline. This is the implementation stdlib's `Promise`
// constructor and combinators (`all`/`race`/`allSettled`/`any`) sit on top
// of; it doesn't know about the evaluator at all; resolving with a thenable
// is handled purely in terms of value.Get/Object.Call.
type ChainedPromise struct {
	loop     *Loop
	status   PromiseStatus
	result   value.Value // fulfillment value, or rejection reason
	handlers []*handler

	// handled is set the moment a rejection reaction (Then's onRejected,
	// or Catch) is ever attached, so a later rejection settle doesn't
	// re-register this promise as unhandled with loop.
	handled bool
}

// NewChainedPromise creates a pending promise bound to loop, along with the
// resolve/reject functions that settle it. Mirrors the shape of the
// executor a `new Promise((resolve, reject) => ...)` constructor calls.
func NewChainedPromise(loop *Loop) (p *ChainedPromise, resolve func(value.Value), reject func(value.Value)) {
	p = &ChainedPromise{loop: loop, status: Pending}
	once := false
	resolve = func(v value.Value) {
		if once {
			return
		}
		once = true
		p.resolveWith(v)
	}
	reject = func(reason value.Value) {
		if once {
			return
		}
		once = true
		p.settle(Rejected, reason)
	}
	return p, resolve, reject
}

// Resolved creates an already-fulfilled promise.
func Resolved(loop *Loop, v value.Value) *ChainedPromise {
	p, resolve, _ := NewChainedPromise(loop)
	resolve(v)
	return p
}

// RejectedPromise creates an already-rejected promise.
func RejectedPromise(loop *Loop, reason value.Value) *ChainedPromise {
	p, _, reject := NewChainedPromise(loop)
	reject(reason)
	return p
}

// Status reports the current settlement state.
func (p *ChainedPromise) Status() PromiseStatus { return p.status }

// Value returns the fulfillment value (Status() == Fulfilled) or rejection
// reason (Status() == Rejected); undefined while Pending.
func (p *ChainedPromise) Value() value.Value {
	if p.result == nil {
		return value.Undef
	}
	return p.result
}

// resolveWith implements the Promise Resolve Thenable Job: a *value.Object
// with a callable "then" is assimilated by subscribing to it instead of
// being fulfilled with the thenable itself, so a promise resolved with
// another promise adopts that promise's eventual state.
func (p *ChainedPromise) resolveWith(v value.Value) {
	if inner, ok := v.(*value.Object); ok {
		if then, ok := thenMethod(inner); ok {
			called := false
			res := newCallable(func(_ value.Value, args []value.Value) (value.Value, error) {
				if called {
					return value.Undef, nil
				}
				called = true
				var v value.Value = value.Undef
				if len(args) > 0 {
					v = args[0]
				}
				p.resolveWith(v)
				return value.Undef, nil
			})
			rej := newCallable(func(_ value.Value, args []value.Value) (value.Value, error) {
				if called {
					return value.Undef, nil
				}
				called = true
				var v value.Value = value.Undef
				if len(args) > 0 {
					v = args[0]
				}
				p.settle(Rejected, v)
				return value.Undef, nil
			})
			p.loop.QueueMicrotask(func() {
				if _, err := then.Call(inner, []value.Value{res, rej}); err != nil {
					if !called {
						called = true
						p.settle(Rejected, errToValue(err))
					}
				}
			})
			return
		}
	}
	p.settle(Fulfilled, v)
}

// thenMethod reports whether o carries a callable "then" own-or-inherited
// property, the thenable-detection step of the resolution procedure.
func thenMethod(o *value.Object) (*value.Object, bool) {
	thenVal, err := value.Get(o, "then", o)
	if err != nil {
		return nil, false
	}
	fn, ok := thenVal.(*value.Object)
	if !ok || fn.Call == nil {
		return nil, false
	}
	return fn, true
}

func (p *ChainedPromise) settle(status PromiseStatus, v value.Value) {
	if p.status != Pending {
		return
	}
	p.status = status
	p.result = v
	if status == Rejected && !p.handled {
		p.loop.trackRejection(p)
	}
	handlers := p.handlers
	p.handlers = nil
	for _, h := range handlers {
		p.schedule(h)
	}
}

func (p *ChainedPromise) schedule(h *handler) {
	p.loop.QueueMicrotask(func() {
		p.run(h)
	})
}

func (p *ChainedPromise) run(h *handler) {
	switch p.status {
	case Fulfilled:
		if h.onFulfilled == nil {
			h.child.resolveWith(p.result)
			return
		}
		v, err := h.onFulfilled(p.result)
		if err != nil {
			h.child.settle(Rejected, errToValue(err))
			return
		}
		h.child.resolveWith(v)
	case Rejected:
		if h.onRejected == nil {
			h.child.settle(Rejected, p.result)
			return
		}
		v, err := h.onRejected(p.result)
		if err != nil {
			h.child.settle(Rejected, errToValue(err))
			return
		}
		h.child.resolveWith(v)
	}
}

// Then registers fulfillment/rejection reactions, returning the derived
// promise they settle. Either callback may be nil, in which case the
// corresponding settlement passes through unchanged (the identity/rethrow
// behavior plain `.then(onFulfilled)` relies on).
func (p *ChainedPromise) Then(onFulfilled, onRejected func(value.Value) (value.Value, error)) *ChainedPromise {
	if onRejected != nil {
		p.handled = true
		p.loop.markHandled(p)
	}
	child, _, _ := NewChainedPromise(p.loop)
	h := &handler{onFulfilled: onFulfilled, onRejected: onRejected, child: child}
	if p.status == Pending {
		p.handlers = append(p.handlers, h)
	} else {
		p.schedule(h)
	}
	return child
}

// Catch is Then(nil, onRejected).
func (p *ChainedPromise) Catch(onRejected func(value.Value) (value.Value, error)) *ChainedPromise {
	return p.Then(nil, onRejected)
}

// Finally registers a callback that runs on settlement regardless of
// outcome and cannot observe or alter the settled value, except by
// throwing (which overrides it with a rejection).
func (p *ChainedPromise) Finally(onFinally func() error) *ChainedPromise {
	return p.Then(
		func(v value.Value) (value.Value, error) {
			if err := onFinally(); err != nil {
				return nil, err
			}
			return v, nil
		},
		func(reason value.Value) (value.Value, error) {
			if err := onFinally(); err != nil {
				return nil, err
			}
			return nil, valueError{reason}
		},
	)
}

// valueError wraps a rejection reason that is already a value.Value so it
// can travel through the `error` return channel Then's callbacks use.
type valueError struct{ v value.Value }

func (e valueError) Error() string { return value.ToStringValue(e.v) }

// errToValue unwraps a valueError back to its carried reason, or falls back
// to a plain string for any other Go error reaching this layer.
func errToValue(err error) value.Value {
	if ve, ok := err.(valueError); ok {
		return ve.v
	}
	return value.String(err.Error())
}

// newCallable adapts a plain Go closure into a value.Object callable usable
// as a resolve/reject function passed to a thenable's `then`.
func newCallable(fn value.CallableFunc) *value.Object {
	o := &value.Object{Extensible: true, Class: "Function", FnLength: 1}
	o.Call = fn
	return o
}

// All settles when every input promise fulfills (resolving to an array of
// their values, in order, built by arrayOf) or as soon as any one rejects.
func All(loop *Loop, promises []*ChainedPromise, arrayOf func([]value.Value) value.Value) *ChainedPromise {
	out, resolve, reject := NewChainedPromise(loop)
	n := len(promises)
	if n == 0 {
		resolve(arrayOf(nil))
		return out
	}
	results := make([]value.Value, n)
	remaining := n
	settled := false
	for i, p := range promises {
		i := i
		p.Then(
			func(v value.Value) (value.Value, error) {
				results[i] = v
				remaining--
				if remaining == 0 && !settled {
					settled = true
					resolve(arrayOf(results))
				}
				return value.Undef, nil
			},
			func(reason value.Value) (value.Value, error) {
				if !settled {
					settled = true
					reject(reason)
				}
				return value.Undef, nil
			},
		)
	}
	return out
}

// Race settles with the first input promise to settle, whichever way.
func Race(loop *Loop, promises []*ChainedPromise) *ChainedPromise {
	out, resolve, reject := NewChainedPromise(loop)
	settled := false
	for _, p := range promises {
		p.Then(
			func(v value.Value) (value.Value, error) {
				if !settled {
					settled = true
					resolve(v)
				}
				return value.Undef, nil
			},
			func(reason value.Value) (value.Value, error) {
				if !settled {
					settled = true
					reject(reason)
				}
				return value.Undef, nil
			},
		)
	}
	return out
}

// SettledResult is one element of AllSettled's result array: either
// {status: "fulfilled", value} or {status: "rejected", reason}.
type SettledResult struct {
	Fulfilled bool
	Value     value.Value
}

// AllSettled settles (always as a fulfillment) once every input promise has
// settled, carrying each one's outcome rather than short-circuiting on the
// first rejection the way All does.
func AllSettled(loop *Loop, promises []*ChainedPromise, toObject func(SettledResult) value.Value, arrayOf func([]value.Value) value.Value) *ChainedPromise {
	out, resolve, _ := NewChainedPromise(loop)
	n := len(promises)
	if n == 0 {
		resolve(arrayOf(nil))
		return out
	}
	results := make([]value.Value, n)
	remaining := n
	for i, p := range promises {
		i := i
		p.Then(
			func(v value.Value) (value.Value, error) {
				results[i] = toObject(SettledResult{Fulfilled: true, Value: v})
				remaining--
				if remaining == 0 {
					resolve(arrayOf(results))
				}
				return value.Undef, nil
			},
			func(reason value.Value) (value.Value, error) {
				results[i] = toObject(SettledResult{Fulfilled: false, Value: reason})
				remaining--
				if remaining == 0 {
					resolve(arrayOf(results))
				}
				return value.Undef, nil
			},
		)
	}
	return out
}

// AggregateError is the rejection reason Any produces when every input
// promise rejects: it carries all of their rejection reasons in order.
type AggregateError struct {
	Message string
	Errors  []value.Value
}

func (e *AggregateError) Error() string { return e.Message }

// Any settles with the first input promise to fulfill, or rejects with an
// *AggregateError once every input has rejected.
func Any(loop *Loop, promises []*ChainedPromise, newAggregateError func(*AggregateError) value.Value) *ChainedPromise {
	out, resolve, reject := NewChainedPromise(loop)
	n := len(promises)
	if n == 0 {
		reject(newAggregateError(&AggregateError{Message: "All promises were rejected"}))
		return out
	}
	reasons := make([]value.Value, n)
	remaining := n
	settled := false
	for i, p := range promises {
		i := i
		p.Then(
			func(v value.Value) (value.Value, error) {
				if !settled {
					settled = true
					resolve(v)
				}
				return value.Undef, nil
			},
			func(reason value.Value) (value.Value, error) {
				reasons[i] = reason
				remaining--
				if remaining == 0 && !settled {
					settled = true
					reject(newAggregateError(&AggregateError{Message: "All promises were rejected", Errors: reasons}))
				}
				return value.Undef, nil
			},
		)
	}
	return out
}
