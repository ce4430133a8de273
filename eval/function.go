package eval

import (
	"github.com/jsrt/jsrt/ast"
	"github.com/jsrt/jsrt/ir"
	"github.com/jsrt/jsrt/lower"
	"github.com/jsrt/jsrt/value"
)

// makeClosure builds the callable object for a function literal, closing
// over defEnv. Plain functions get a Call that runs the body directly
// through execBlock on the synchronous path; generator and async functions
// get a Call that instead drives a genvm.Machine (see generator.go/async.go),
// lowered and compiled once per literal and cached for every subsequent call.
func (ev *Evaluator) makeClosure(fn *ast.FunctionLiteral, defEnv *Environment) *value.Object {
	fo := value.NewObject(ev.realm.FunctionProto)
	fo.Class = "Function"
	fo.FnName = fn.Name
	fo.FnLength = countParams(fn.Params)
	fo.SetHidden("name", value.String(fn.Name))
	fo.SetHidden("length", value.Number(fo.FnLength))

	switch {
	case fn.IsGenerator:
		fo.Call = func(this value.Value, args []value.Value) (value.Value, error) {
			if err := ev.enterCall(); err != nil {
				return nil, err
			}
			defer ev.exitCall()
			return ev.newGeneratorCall(fn, defEnv, this, args)
		}
	case fn.IsAsync:
		fo.Call = func(this value.Value, args []value.Value) (value.Value, error) {
			if err := ev.enterCall(); err != nil {
				return nil, err
			}
			defer ev.exitCall()
			return ev.callAsync(fn, defEnv, this, args)
		}
	default:
		fo.Call = func(this value.Value, args []value.Value) (value.Value, error) {
			if err := ev.enterCall(); err != nil {
				return nil, err
			}
			defer ev.exitCall()
			return ev.callPlain(fn, defEnv, this, args)
		}
	}

	if !fn.IsArrow && !fn.IsGenerator && !fn.IsAsync {
		proto := ev.realm.NewObject()
		proto.SetHidden("constructor", fo)
		fo.SetHidden("prototype", proto)
		fo.Construct = func(args []value.Value, newTarget *value.Object) (value.Value, error) {
			if err := ev.enterCall(); err != nil {
				return nil, err
			}
			defer ev.exitCall()
			return ev.construct(fn, defEnv, fo, args, newTarget)
		}
	}
	return fo
}

func countParams(params []ast.Pattern) int {
	n := 0
	for _, p := range params {
		switch p.(type) {
		case *ast.AssignPattern, *ast.RestElement:
			return n
		}
		n++
	}
	return n
}

// callEnv builds the function-call scope: arrow functions get a plain child
// scope (lexical this, inherited from defEnv), everything else gets a fresh
// this/new.target binding.
func (ev *Evaluator) callEnv(fn *ast.FunctionLiteral, defEnv *Environment, this value.Value, newTarget *value.Object) *Environment {
	if fn.IsArrow {
		return defEnv.Child()
	}
	return defEnv.ChildFunction(this, newTarget)
}

func (ev *Evaluator) bindParams(env *Environment, params []ast.Pattern, args []value.Value) error {
	for i, p := range params {
		if rest, ok := p.(*ast.RestElement); ok {
			var tail []value.Value
			if i < len(args) {
				tail = args[i:]
			}
			return ev.bindPattern(env, rest.Target, ev.realm.NewArray(tail), true)
		}
		var v value.Value = value.Undef
		if i < len(args) {
			v = args[i]
		}
		if err := ev.bindPattern(env, p, v, true); err != nil {
			return err
		}
	}
	return nil
}

func (ev *Evaluator) callPlain(fn *ast.FunctionLiteral, defEnv *Environment, this value.Value, args []value.Value) (value.Value, error) {
	env := ev.callEnv(fn, defEnv, this, nil)
	if err := ev.bindParams(env, fn.Params, args); err != nil {
		return nil, err
	}
	_, err := ev.execBlock(env, fn.Body)
	if err != nil {
		if rs, ok := err.(returnSignal); ok {
			return rs.value, nil
		}
		return nil, err
	}
	return value.Undef, nil
}

func (ev *Evaluator) construct(fn *ast.FunctionLiteral, defEnv *Environment, ctor *value.Object, args []value.Value, newTarget *value.Object) (value.Value, error) {
	protoVal, err := value.Get(ctor, "prototype", ctor)
	if err != nil {
		return nil, err
	}
	proto, ok := protoVal.(*value.Object)
	if !ok {
		proto = ev.realm.ObjectProto
	}
	instance := value.NewObject(proto)
	if newTarget == nil {
		newTarget = ctor
	}
	env := defEnv.ChildFunction(instance, newTarget)
	if err := ev.bindParams(env, fn.Params, args); err != nil {
		return nil, err
	}
	_, err = ev.execBlock(env, fn.Body)
	if err != nil {
		if rs, ok := err.(returnSignal); ok {
			if ro, ok := rs.value.(*value.Object); ok {
				return ro, nil
			}
			return instance, nil
		}
		return nil, err
	}
	return instance, nil
}

// programCache lazily lowers+compiles a generator/async function literal's
// body into an ir.Program on first call, keyed by the literal's identity;
// every later call against the same literal (e.g. re-invoking a function
// declared once but called in a loop) reuses it. lower.Function mutates
// fn.Body in place, so this MUST only run once per literal.
type programCache struct {
	m map[*ast.FunctionLiteral]*ir.Program
}

func newProgramCache() *programCache { return &programCache{m: map[*ast.FunctionLiteral]*ir.Program{}} }

func (c *programCache) get(fn *ast.FunctionLiteral) *ir.Program {
	if p, ok := c.m[fn]; ok {
		return p
	}
	startSlot := lower.Function(fn)
	prog := ir.Build(fn, startSlot)
	c.m[fn] = prog
	return prog
}
