package eval

import (
	"github.com/jsrt/jsrt/ast"
	"github.com/jsrt/jsrt/genvm"
	"github.com/jsrt/jsrt/internal/scheduler"
	"github.com/jsrt/jsrt/value"
)

// callAsync runs an async function body up to its first suspend point and
// returns immediately with the eventual-result promise — it never pumps the
// event loop inline. Each `await` schedules the machine's continuation as a
// promise reaction (always a microtask, even for an already-settled
// awaitable: see toAwaitedPromise/scheduleAwait), so any synchronous code
// the caller runs after `f()` returns genuinely runs before the body resumes
// past its first await, matching the engine's synchronous-plus-event-loop
// model (spec's S2 ordering: a call that awaits pushes its pre-await work,
// returns control to the caller, and only resumes once the microtask queue
// reaches its continuation).
func (ev *Evaluator) callAsync(fn *ast.FunctionLiteral, defEnv *Environment, this value.Value, args []value.Value) (value.Value, error) {
	env := ev.callEnv(fn, defEnv, this, nil)
	if err := ev.bindParams(env, fn.Params, args); err != nil {
		return ev.rejectedPromise(err), nil
	}
	prog := ev.programs.get(fn)
	host := &hostAdapter{ev: ev, env: env}
	machine := genvm.New(prog, host)

	result, resolve, reject := scheduler.NewChainedPromise(ev.loop)

	var step func(res genvm.Result, err error)
	step = func(res genvm.Result, err error) {
		if err != nil {
			v, ok := asThrown(err)
			if !ok {
				v = value.String(err.Error())
			}
			reject(v)
			return
		}
		if res.Done {
			resolve(res.ReturnValue)
			return
		}
		switch res.Kind {
		case genvm.SuspendAwait:
			ev.scheduleAwait(res.Value, func(v value.Value) {
				step(machine.Resume(v))
			}, func(reason value.Value) {
				step(machine.Throw(reason))
			})
		default:
			// A bare `yield` can't appear in a plain async function; if it
			// somehow does (malformed lowering), treat it as resuming with
			// Undef rather than looping forever.
			step(machine.Resume(value.Undef))
		}
	}
	step(machine.Start())

	return ev.newPromiseObject(result), nil
}

// scheduleAwait settles whatever `await` was given asynchronously: the
// continuation (onFulfilled/onRejected) always runs through a promise
// reaction — i.e. on a later microtask drain — never inline in the current
// call frame, even when the awaited value is already a settled promise or a
// plain non-promise value. That guaranteed tick is what `await` contributes
// to the ordering the engine promises: it's also why callAsync must never
// call this synchronously in a loop.
func (ev *Evaluator) scheduleAwait(v value.Value, onFulfilled, onRejected func(value.Value)) {
	ev.toAwaitedPromise(v).Then(func(fv value.Value) (value.Value, error) {
		onFulfilled(fv)
		return value.Undef, nil
	}, func(reason value.Value) (value.Value, error) {
		onRejected(reason)
		return value.Undef, nil
	})
}

// toAwaitedPromise normalizes an awaited value into a scheduler promise:
// one of the engine's own promise objects is used directly; anything else —
// an arbitrary thenable or a plain value — goes through scheduler.Resolved,
// whose resolveWith already implements the Promise Resolve Thenable Job
// (subscribing to a thenable's own `then` instead of treating it as an
// opaque value), so this needs no separate thenable-handling path of its
// own.
func (ev *Evaluator) toAwaitedPromise(v value.Value) *scheduler.ChainedPromise {
	if o, ok := v.(*value.Object); ok {
		if p, ok := o.Internal.(*scheduler.ChainedPromise); ok {
			return p
		}
	}
	return scheduler.Resolved(ev.loop, v)
}

// resolveAwaitable settles whatever `await` was given. Awaiting one of this
// engine's own Promise objects (*scheduler.ChainedPromise) pumps the event
// loop one timer at a time until it settles — correct ordering and real
// setTimeout-measured delay, just without letting any other in-flight async
// call interleave its own progress in between. Awaiting an arbitrary
// thenable calls its `.then` directly, expecting it to settle synchronously
// (the common case for a thenable that isn't itself loop-backed); a
// thenable that resolves with another of this engine's promises recurses
// into the loop-pumping path for that inner promise. The bool return is
// true when the awaited value rejected.
func (ev *Evaluator) resolveAwaitable(v value.Value) (value.Value, bool, error) {
	o, ok := v.(*value.Object)
	if !ok {
		return v, false, nil
	}
	if p, ok := o.Internal.(*scheduler.ChainedPromise); ok {
		for p.Status() == scheduler.Pending {
			if !ev.loop.RunOne() {
				return nil, false, ev.typeError("await on a promise that never settles")
			}
		}
		return p.Value(), p.Status() == scheduler.Rejected, nil
	}

	thenVal, err := value.Get(o, "then", o)
	if err != nil {
		return v, false, nil
	}
	then, ok := thenVal.(*value.Object)
	if !ok || then.Call == nil {
		return v, false, nil
	}
	var settled value.Value
	var rejected bool
	resolve := ev.realm.NewFunction("", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		if len(args) > 0 {
			settled = args[0]
		} else {
			settled = value.Undef
		}
		return value.Undef, nil
	})
	reject := ev.realm.NewFunction("", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		rejected = true
		if len(args) > 0 {
			settled = args[0]
		} else {
			settled = value.Undef
		}
		return value.Undef, nil
	})
	if _, err := then.Call(o, []value.Value{resolve, reject}); err != nil {
		return nil, false, err
	}
	if settled == nil {
		settled = value.Undef
	}
	if inner, ok := settled.(*value.Object); ok {
		if _, isPromise := inner.Internal.(*scheduler.ChainedPromise); isPromise {
			return ev.resolveAwaitable(inner)
		}
	}
	return settled, rejected, nil
}

// newPromiseObject wraps a *scheduler.ChainedPromise as the Promise object
// shape the rest of the evaluator and stdlib's Promise builtin both expect:
// Class "Promise", Internal holding the ChainedPromise itself.
func (ev *Evaluator) newPromiseObject(p *scheduler.ChainedPromise) *value.Object {
	o := value.NewObject(ev.realm.PromiseProto)
	o.Class = "Promise"
	o.Internal = p
	return o
}

func (ev *Evaluator) resolvedPromise(v value.Value) *value.Object {
	return ev.newPromiseObject(scheduler.Resolved(ev.loop, v))
}

func (ev *Evaluator) rejectedPromise(err error) *value.Object {
	v, ok := asThrown(err)
	if !ok {
		v = value.String(err.Error())
	}
	return ev.newPromiseObject(scheduler.RejectedPromise(ev.loop, v))
}
