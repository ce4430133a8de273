package eval

import (
	"fmt"

	"github.com/jsrt/jsrt/internal/errs"
	"github.com/jsrt/jsrt/value"
)

// binding is one lexical slot: a var/let/const declaration or a function
// parameter. const bindings reject a second Set. A binding created by
// DeclareIndirect has no v of its own; it forwards every Get to another
// Environment's binding by name instead, giving module imports the live
// (and, before the exporting statement has run, TDZ-ReferenceError) read
// semantics real ES modules require.
type binding struct {
	v          value.Value
	mutable    bool
	forward    *Environment
	forwardKey string
}

// Environment is one lexical scope: a chain of name->binding maps plus the
// this-value and new.target a function scope introduces. Block scopes
// (if/for/while bodies, catch clauses) link to their enclosing function
// scope's this/newTarget rather than each carrying their own, matching
// arrow functions' lexical (rather than dynamic) this binding.
type Environment struct {
	parent    *Environment
	vars      map[string]*binding
	hasThis   bool
	this      value.Value
	newTarget *value.Object
	label     string // nearest enclosing function name, for stack traces

	// resumeSlots is non-nil only on the function scope genvm drives a
	// generator/async call through; it backs *ast.ResumeRef lookups the
	// same way This() backs `this` — by walking up to the nearest scope
	// that set one.
	resumeSlots []value.Value

	// superInit is set only on a derived class constructor's call scope; it
	// runs the superclass's field initializers and constructor body against
	// the already-created instance when a `super(...)` call site reaches it.
	superInit func([]value.Value) error

	// mod is non-nil only on a module's top-level Environment, letting
	// execStmt find the enclosing Module record for import/export
	// statements the same way This/NewTarget find the enclosing function
	// scope.
	mod *Module
}

// SetSuperInit binds a derived class constructor's super(...) call target to
// this scope.
func (e *Environment) SetSuperInit(f func([]value.Value) error) { e.superInit = f }

// SuperInit resolves the nearest enclosing super(...) call target, the same
// way This/NewTarget resolve through arrow-function scopes.
func (e *Environment) SuperInit() func([]value.Value) error {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.hasThis {
			return cur.superInit
		}
	}
	return nil
}

// SetResumeSlots binds genvm's resume-value slots to this scope, called
// once per call by the genvm.Host adapter before stepping the machine.
func (e *Environment) SetResumeSlots(slots []value.Value) { e.resumeSlots = slots }

// ResumeSlots resolves the nearest enclosing resume-slot slice.
func (e *Environment) ResumeSlots() []value.Value {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.resumeSlots != nil {
			return cur.resumeSlots
		}
	}
	return nil
}

// NewGlobalEnv creates the outermost scope, whose this is the global object
// itself (the Non-strict top-level this binding).
func NewGlobalEnv(globalThis *value.Object) *Environment {
	return &Environment{vars: map[string]*binding{}, hasThis: true, this: globalThis}
}

// Child opens an ordinary block scope nested in e.
func (e *Environment) Child() *Environment {
	return &Environment{parent: e, vars: map[string]*binding{}}
}

// ChildFunction opens a new function-call scope with its own this/new.target
// (a plain or method function call). Arrow functions never call this —
// callEnv gives them an ordinary Child() instead so `this` keeps
// resolving to the enclosing scope.
func (e *Environment) ChildFunction(this value.Value, newTarget *value.Object) *Environment {
	return &Environment{parent: e, vars: map[string]*binding{}, hasThis: true, this: this, newTarget: newTarget}
}

// Declare introduces name in this scope. Re-declaring a name already present
// in the same scope (which the parser should already reject for let/const,
// but var-hoisting can legitimately redeclare) overwrites the binding.
func (e *Environment) Declare(name string, v value.Value, mutable bool) {
	e.vars[name] = &binding{v: v, mutable: mutable}
}

// DeclareIndirect introduces name in this scope as a live alias of
// target.Get(targetName): every read forwards to target's current binding,
// and a read before target has declared targetName (a circular import
// reaching back to a not-yet-executed export) surfaces the same
// ReferenceError a TDZ read would. Used for named/default imports; `import *
// as ns` binds the namespace object directly instead, since that object's
// own accessor properties already provide live reads.
func (e *Environment) DeclareIndirect(name string, target *Environment, targetName string) {
	e.vars[name] = &binding{forward: target, forwardKey: targetName}
}

// moduleOf resolves the nearest enclosing module's record, the same way
// This/NewTarget resolve through block scopes to their owning function
// scope.
func (e *Environment) moduleOf() *Module {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.mod != nil {
			return cur.mod
		}
	}
	return nil
}

// Lookup walks the scope chain for name, returning the owning Environment so
// callers can both read and later write through the same binding.
func (e *Environment) Lookup(name string) (*Environment, *binding) {
	for cur := e; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			return cur, b
		}
	}
	return nil, nil
}

// Get resolves an identifier reference, returning a ReferenceError when
// name is bound nowhere in the chain.
func (e *Environment) Get(name string) (value.Value, error) {
	if _, b := e.Lookup(name); b != nil {
		if b.forward != nil {
			return b.forward.Get(b.forwardKey)
		}
		return b.v, nil
	}
	return nil, refError(name)
}

// Set assigns to an existing binding, walking the chain. Assigning to a
// name bound nowhere creates an implicit global (sloppy-mode fallback,
// the simplest correct behavior for a non-strict engine); assigning to a
// const binding is a TypeError.
func (e *Environment) Set(name string, v value.Value) error {
	if _, b := e.Lookup(name); b != nil {
		if !b.mutable {
			return &errs.RuntimeError{Kind: errs.KindTypeError, Message: "Assignment to constant variable."}
		}
		b.v = v
		return nil
	}
	e.globalScope().Declare(name, v, true)
	return nil
}

func (e *Environment) globalScope() *Environment {
	cur := e
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// This resolves the lexical this binding, walking up through arrow-function
// block scopes (which never set hasThis) to the nearest enclosing function
// or global scope that did.
func (e *Environment) This() value.Value {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.hasThis {
			return cur.this
		}
	}
	return value.Undef
}

// NewTarget resolves the lexical new.target binding the same way This does.
func (e *Environment) NewTarget() *value.Object {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.hasThis {
			return cur.newTarget
		}
	}
	return nil
}

func refError(name string) error {
	return &errs.RuntimeError{Kind: errs.KindReferenceError, Message: fmt.Sprintf("%s is not defined", name)}
}
