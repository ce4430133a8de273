// Package stdlib wires the runtime value system (package value) and the
// evaluator (package eval) up to the engine's global object: Math, JSON,
// Object/Array/String/Number statics and prototypes, Error constructors,
// Symbol, Map/Set/WeakMap/WeakSet, Date, RegExp (via dlclark/regexp2),
// ArrayBuffer/DataView/TypedArrays, Promise, and the timer/microtask
// globals (setTimeout/setInterval/queueMicrotask) backed by the evaluator's
// own internal/scheduler.Loop. Install is the single entry point; every
// other file in this package registers one piece of the global surface.
package stdlib

import (
	"github.com/jsrt/jsrt/eval"
	"github.com/jsrt/jsrt/value"
)

// Install populates ev's realm and global scope with the full standard
// library. Called once per Evaluator, after eval.New()/eval.NewWithLoop().
func Install(ev *eval.Evaluator) {
	installObject(ev)
	installFunction(ev)
	installArray(ev)
	installString(ev)
	installNumber(ev)
	installBoolean(ev)
	installMath(ev)
	installJSON(ev)
	installErrors(ev)
	installSymbol(ev)
	installMapSet(ev)
	installDate(ev)
	installRegExp(ev)
	installTypedArrays(ev)
	installPromise(ev)
	installTimers(ev)
	installConsole(ev)
}

// arg returns args[i], or Undef when the call was given fewer arguments —
// every builtin in this package reads its arguments through this instead of
// bounds-checking inline, matching how a real JS function would see missing
// trailing arguments as undefined rather than panicking.
func arg(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Undef
}

// method installs a non-enumerable function-valued property on target, the
// shape every prototype method and static function in this package uses.
func method(ev *eval.Evaluator, target *value.Object, name string, length int, fn value.CallableFunc) {
	target.SetHidden(name, ev.Realm().NewFunction(name, length, fn))
}

// global declares name as a global binding and mirrors it onto the global
// object, so both bare-identifier lookup and `globalThis.name` see it.
func global(ev *eval.Evaluator, name string, v value.Value) {
	ev.GlobalEnv().Declare(name, v, true)
	ev.Realm().Global.SetHidden(name, v)
}

// toObject coerces v to an Object the way every Object/Array/String static
// or prototype method that takes an arbitrary argument needs to (TypeError
// on null/undefined, a fresh wrapper is out of scope — callers needing a
// true boxed primitive build one directly).
func toObject(ev *eval.Evaluator, v value.Value) (*value.Object, error) {
	if o, ok := v.(*value.Object); ok {
		return o, nil
	}
	if value.IsNullish(v) {
		return nil, ev.TypeError("Cannot convert undefined or null to object")
	}
	return nil, ev.TypeError("%s is not an object", value.ToStringValue(v))
}

// normalizeIndex implements Array/String's relative-index convention: a
// negative argument counts back from length, then clamps into [0, length].
func normalizeIndex(idx float64, length int) int {
	if idx < 0 {
		idx += float64(length)
	}
	if idx < 0 {
		return 0
	}
	if idx > float64(length) {
		return length
	}
	return int(idx)
}

// newArrayIterator wraps a fixed slice of values as the plain iterator-
// protocol object (a `next()` method returning `{value, done}`, and a
// Symbol.iterator method returning itself) that Map/Set's keys/values/
// entries and String.prototype.matchAll hand back — the one iterator
// shape the whole package needs, so it lives here instead of being
// reimplemented per builtin.
func newArrayIterator(ev *eval.Evaluator, items []value.Value) *value.Object {
	r := ev.Realm()
	idx := 0
	it := r.NewObject()
	it.SetHidden("next", r.NewFunction("next", 0, func(_ value.Value, _ []value.Value) (value.Value, error) {
		result := r.NewObject()
		if idx >= len(items) {
			result.SetData("value", value.Undef)
			result.SetData("done", value.Bool(true))
			return result, nil
		}
		result.SetData("value", items[idx])
		result.SetData("done", value.Bool(false))
		idx++
		return result, nil
	}))
	it.SetHidden(value.SymbolIterator, r.NewFunction("[Symbol.iterator]", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		return this, nil
	}))
	return it
}
