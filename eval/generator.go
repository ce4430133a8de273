package eval

import (
	"github.com/jsrt/jsrt/ast"
	"github.com/jsrt/jsrt/genvm"
	"github.com/jsrt/jsrt/value"
)

// newGeneratorCall implements calling a generator (or async generator)
// function: unlike a plain call, invoking it never runs a line of the body
// — it only builds the genvm.Machine and returns a generator object whose
// next()/throw()/return() methods step that machine, matching a JS
// generator's "call creates a suspended iterator" semantics.
func (ev *Evaluator) newGeneratorCall(fn *ast.FunctionLiteral, defEnv *Environment, this value.Value, args []value.Value) (value.Value, error) {
	env := ev.callEnv(fn, defEnv, this, nil)
	if err := ev.bindParams(env, fn.Params, args); err != nil {
		return nil, err
	}
	prog := ev.programs.get(fn)
	host := &hostAdapter{ev: ev, env: env}
	g := &generatorState{ev: ev, machine: genvm.New(prog, host)}

	obj := ev.realm.NewObject()
	obj.Proto = ev.realm.GeneratorProto
	obj.Class = "Generator"
	obj.SetHidden("next", ev.realm.NewFunction("next", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		var sent value.Value = value.Undef
		if len(args) > 0 {
			sent = args[0]
		}
		return g.next(sent)
	}))
	obj.SetHidden("throw", ev.realm.NewFunction("throw", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		var v value.Value = value.Undef
		if len(args) > 0 {
			v = args[0]
		}
		return g.doThrow(v)
	}))
	obj.SetHidden("return", ev.realm.NewFunction("return", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		var v value.Value = value.Undef
		if len(args) > 0 {
			v = args[0]
		}
		return g.doReturn(v)
	}))
	obj.SetData(value.SymbolIterator, ev.realm.NewFunction("[Symbol.iterator]", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		return this, nil
	}))
	return obj, nil
}

// generatorState owns one generator object's machine plus the extra
// bookkeeping genvm itself doesn't do: whether the call has started, ended,
// or is currently delegating to a `yield*` sub-iterable.
type generatorState struct {
	ev       *Evaluator
	machine  *genvm.Machine
	started  bool
	done     bool
	delegate *value.Object
}

func (g *generatorState) next(sent value.Value) (value.Value, error) {
	if g.done {
		return iterResult(g.ev, value.Undef, true), nil
	}
	if g.delegate != nil {
		return g.stepDelegate(sent)
	}
	if !g.started {
		g.started = true
		res, err := g.machine.Start()
		return g.handle(res, err)
	}
	res, err := g.machine.Resume(sent)
	return g.handle(res, err)
}

func (g *generatorState) stepDelegate(sent value.Value) (value.Value, error) {
	val, isDone, err := g.ev.iteratorNext(g.delegate)
	if err != nil {
		g.delegate = nil
		g.done = true
		return nil, err
	}
	if !isDone {
		return iterResult(g.ev, val, false), nil
	}
	g.delegate = nil
	res, err := g.machine.Resume(val)
	return g.handle(res, err)
}

func (g *generatorState) doThrow(v value.Value) (value.Value, error) {
	if g.done {
		return nil, throwValue(v)
	}
	if g.delegate != nil {
		// Unlike doReturn, forwarding throw() into the delegate's own
		// .throw isn't wired yet; ending delegation and routing the throw
		// into the outer generator body instead is the next best
		// approximation.
		g.delegate = nil
	}
	if !g.started {
		g.started = true
		g.done = true
		return nil, throwValue(v)
	}
	res, err := g.machine.Throw(v)
	return g.handle(res, err)
}

func (g *generatorState) doReturn(v value.Value) (value.Value, error) {
	if g.done {
		return iterResult(g.ev, v, true), nil
	}
	if g.delegate != nil {
		delegate := g.delegate
		g.delegate = nil
		val, isDone, err := g.ev.iteratorReturn(delegate, v)
		if err != nil {
			g.done = true
			return nil, err
		}
		if !isDone {
			g.delegate = delegate
			return iterResult(g.ev, val, false), nil
		}
		// The delegate closed (running its own finally blocks via its
		// return()); drive the outer generator's own return with whatever
		// value the delegate's return settled on, so an enclosing finally
		// around the `yield*` still runs too.
		res, err := g.machine.Return(val)
		return g.handle(res, err)
	}
	if !g.started {
		g.started = true
		g.done = true
		return iterResult(g.ev, v, true), nil
	}
	res, err := g.machine.Return(v)
	return g.handle(res, err)
}

func (g *generatorState) handle(res genvm.Result, err error) (value.Value, error) {
	if err != nil {
		g.done = true
		return nil, err
	}
	if res.Done {
		g.done = true
		return iterResult(g.ev, res.ReturnValue, true), nil
	}
	switch res.Kind {
	case genvm.SuspendYieldDelegate:
		iter, err := g.ev.getIteratorObject(res.Value)
		if err != nil {
			g.done = true
			return nil, err
		}
		g.delegate = iter
		return g.stepDelegate(value.Undef)
	case genvm.SuspendAwait:
		resolved, rejected, err := g.ev.resolveAwaitable(res.Value)
		if err != nil {
			g.done = true
			return nil, err
		}
		var res2 genvm.Result
		var err2 error
		if rejected {
			res2, err2 = g.machine.Throw(resolved)
		} else {
			res2, err2 = g.machine.Resume(resolved)
		}
		return g.handle(res2, err2)
	default:
		return iterResult(g.ev, res.Value, false), nil
	}
}

func iterResult(ev *Evaluator, v value.Value, done bool) *value.Object {
	o := ev.realm.NewObject()
	o.SetData("value", v)
	o.SetData("done", value.Bool(done))
	return o
}
