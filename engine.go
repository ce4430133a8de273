// Package jsrt is the embeddable host API (spec.md §6): Engine wires
// together one package eval.Evaluator, its internal/scheduler.Loop, the
// full package stdlib global surface, and (once SetModuleLoader is called)
// a package modloader.Loader, exposing exactly the surface an embedding
// Go application needs — construct, register globals/functions, evaluate
// or run a script — and nothing else. An Engine holds no state a script
// can outlive: per spec.md's "Persisted state: None", a host that wants a
// fresh environment constructs a fresh Engine rather than resetting one.
package jsrt

import (
	"fmt"

	"github.com/jsrt/jsrt/eval"
	"github.com/jsrt/jsrt/internal/errs"
	"github.com/jsrt/jsrt/internal/scheduler"
	"github.com/jsrt/jsrt/modloader"
	"github.com/jsrt/jsrt/parser"
	"github.com/jsrt/jsrt/stdlib"
	"github.com/jsrt/jsrt/value"
)

// Engine is one script-execution environment: its own realm (prototypes,
// global object), global scope, event loop, and optional module loader.
type Engine struct {
	ev   *eval.Evaluator
	loop *scheduler.Loop
	opts engineOptions
}

// New constructs an engine with empty globals (spec.md's Engine::new()),
// then installs the full standard library so scripts see Math/JSON/Array/
// Promise/... immediately — an embedding application only ever needs to
// add its own host bindings on top via SetGlobal/SetGlobalFunction.
func New(opts ...Option) *Engine {
	var o engineOptions
	for _, opt := range opts {
		opt.applyEngine(&o)
	}

	loop := scheduler.NewLoop()
	if o.maxMicrotasksPerTick > 0 {
		loop.SetMaxMicrotasks(o.maxMicrotasksPerTick)
	}

	ev := eval.NewWithLoop(loop)
	if o.maxCallDepth > 0 {
		ev.SetMaxCallDepth(o.maxCallDepth)
	}
	if o.logger != nil {
		scheduler.SetLogger(o.logger)
	}

	stdlib.Install(ev)

	return &Engine{ev: ev, loop: loop, opts: o}
}

// Evaluator exposes the underlying evaluator for code that needs lower-
// level access than this package's host API provides (e.g. constructing
// engine Values directly via package value/eval helpers).
func (e *Engine) Evaluator() *eval.Evaluator { return e.ev }

// SetGlobal adds or replaces a binding on the global object. v may already
// be an engine value.Value, or any Go value ToValue knows how to coerce
// (numbers, strings, bools, []byte, maps, slices, or an arbitrary struct/
// map wrapped as an opaque forwarding object).
func (e *Engine) SetGlobal(name string, v any) error {
	jv, err := e.ToValue(v)
	if err != nil {
		return fmt.Errorf("jsrt: SetGlobal %q: %w", name, err)
	}
	e.declareGlobal(name, jv)
	return nil
}

// HostFunc is a host-callable function ignoring `this` — the one-arity
// handler form spec.md's setGlobalFunction describes.
type HostFunc func(args []value.Value) (value.Value, error)

// HostMethodFunc is a host-callable function that also receives the
// call's `this` — the two-arity handler form spec.md's setGlobalFunction
// describes.
type HostMethodFunc func(this value.Value, args []value.Value) (value.Value, error)

// SetGlobalFunction registers a host-callable function as a global,
// accepting either a HostFunc or a HostMethodFunc — the two-arity form
// additionally receives the call's `this`. A panic or Go error raised by
// handler surfaces to the script as a thrown Error instance.
func (e *Engine) SetGlobalFunction(name string, handler any) error {
	var fn value.CallableFunc
	switch h := handler.(type) {
	case HostFunc:
		fn = func(_ value.Value, args []value.Value) (value.Value, error) { return h(args) }
	case func([]value.Value) (value.Value, error):
		fn = func(_ value.Value, args []value.Value) (value.Value, error) { return h(args) }
	case HostMethodFunc:
		fn = func(this value.Value, args []value.Value) (value.Value, error) { return h(this, args) }
	case func(value.Value, []value.Value) (value.Value, error):
		fn = h
	default:
		return fmt.Errorf("jsrt: SetGlobalFunction %q: unsupported handler type %T", name, handler)
	}
	inner := fn
	fn = func(this value.Value, args []value.Value) (result value.Value, err error) {
		defer func() {
			if r := recover(); r != nil {
				result, err = nil, eval.ThrowValue(e.ev.NewError("Error", fmt.Sprint(r)))
			}
		}()
		result, err = inner(this, args)
		if _, ok := err.(*errs.RuntimeError); err != nil && !ok {
			return nil, eval.ThrowValue(e.ev.NewError("Error", err.Error()))
		}
		return result, err
	}
	fo := value.NewNativeFunction(e.ev.Realm().FunctionProto, name, 0, fn)
	e.declareGlobal(name, fo)
	return nil
}

func (e *Engine) declareGlobal(name string, v value.Value) {
	e.ev.GlobalEnv().Declare(name, v, true)
	e.ev.Realm().Global.SetHidden(name, v)
}

// SetModuleLoader supplies module source resolution (spec.md §4.11):
// resolve maps a specifier to source text, returning an error (wrapped as
// ModuleNotFound) when the specifier can't be located. Leaving this unset
// makes every import/export/dynamic import() fail with a ReferenceError.
func (e *Engine) SetModuleLoader(resolve modloader.Resolver) {
	e.ev.SetModuleLoader(modloader.New(e.ev, resolve))
}

// Interrupt requests that a currently-running (or next) Evaluate/Run abort
// at its next function-call boundary, surfacing as a RuntimeError with
// message "interrupted". Safe to call from another goroutine. Once
// interrupted, the Engine should be discarded — it carries no persisted
// state to resume from anyway.
func (e *Engine) Interrupt() { e.ev.Interrupt() }

// Evaluate parses and executes source synchronously, draining microtasks
// but not macrotasks — any setTimeout/setInterval scheduled but not yet
// due is abandoned once this call returns. Returns the completion value
// of source's last expression statement, or undefined.
func (e *Engine) Evaluate(source string) (value.Value, error) {
	prog, err := parser.Parse(source, false)
	if err != nil {
		return nil, wrapParseError(err)
	}
	v, err := e.ev.Run(prog)
	if err != nil {
		return nil, err
	}
	if err := e.loop.DrainMicrotasksChecked(); err != nil {
		return nil, &errs.RuntimeError{Kind: errs.KindRangeError, Message: err.Error()}
	}
	e.reportUnhandledRejections()
	return v, nil
}

// Run is Evaluate, but continues draining both the microtask and macrotask
// (timer) queues until both are idle before returning — the shape a
// script using setTimeout/setInterval/Promise needs to run to completion.
func (e *Engine) Run(source string) (value.Value, error) {
	v, err := e.Evaluate(source)
	if err != nil {
		return nil, err
	}
	e.loop.Run()
	e.reportUnhandledRejections()
	return v, nil
}

// reportUnhandledRejections implements spec.md §5's "logged and ignored by
// default; the host may register an unhandledrejection hook": every
// promise left rejected with no handler attached, once the queues are
// idle, is reported through WithUnhandledRejection's hook if installed,
// otherwise through the ambient logger at warn level.
func (e *Engine) reportUnhandledRejections() {
	for _, p := range e.loop.UnhandledRejections() {
		reason := p.Value()
		if e.opts.unhandledRejection != nil {
			e.opts.unhandledRejection(reason)
			continue
		}
		scheduler.Log(scheduler.Entry{
			Level:    scheduler.LevelWarn,
			Category: "promise",
			Message:  "unhandled promise rejection: " + value.ToStringValue(reason),
		})
	}
}

func wrapParseError(err error) error {
	if se, ok := err.(*parser.SyntaxError); ok {
		return &errs.ParseError{Pos: se.Pos, Message: se.Error(), Cause: se}
	}
	return &errs.ParseError{Message: err.Error(), Cause: err}
}
