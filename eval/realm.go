package eval

import "github.com/jsrt/jsrt/value"

// Realm holds the small set of well-known prototype objects every value
// produced by the evaluator's own literal/operator semantics needs to chain
// to (object/array/function literals, thrown errors). Package stdlib extends
// this same Realm with the rest of the global surface (Math, JSON, Promise,
// ...) once it exists; eval only ever needs to know these objects exist, not
// what methods stdlib eventually hangs off them.
type Realm struct {
	ObjectProto    *value.Object
	FunctionProto  *value.Object
	ArrayProto     *value.Object
	ErrorProto     *value.Object
	ErrorProtos    map[string]*value.Object // TypeError.prototype, RangeError.prototype, ...
	GeneratorProto *value.Object
	PromiseProto   *value.Object
	RegExpProto    *value.Object
	Global         *value.Object

	// Primitive-wrapper prototypes. These stay bare (just chained to
	// ObjectProto) until stdlib installs String/Number/Boolean/Symbol and
	// repoints them at its own populated prototype objects — getProperty's
	// primitive cases (expr.go) resolve method lookups against whichever
	// object is here at call time, so installing stdlib after constructing
	// the Evaluator is enough; nothing needs to be re-wired.
	StringProto  *value.Object
	NumberProto  *value.Object
	BooleanProto *value.Object
	SymbolProto  *value.Object
	BigIntProto  *value.Object
}

// NewRealm wires up the bare prototype chain: Object.prototype sits at the
// root (null proto), everything else chains to it.
func NewRealm() *Realm {
	r := &Realm{}
	r.ObjectProto = value.NewObject(nil)
	r.FunctionProto = value.NewObject(r.ObjectProto)
	r.FunctionProto.Class = "Function"
	r.ArrayProto = value.NewObject(r.ObjectProto)
	r.ArrayProto.Class = "Array"
	r.ErrorProto = value.NewObject(r.ObjectProto)
	r.ErrorProto.Class = "Error"
	r.ErrorProto.SetHidden("name", value.String("Error"))
	r.ErrorProto.SetHidden("message", value.String(""))
	r.GeneratorProto = value.NewObject(r.ObjectProto)
	r.PromiseProto = value.NewObject(r.ObjectProto)
	r.PromiseProto.Class = "Promise"
	r.RegExpProto = value.NewObject(r.ObjectProto)
	r.RegExpProto.Class = "RegExp"

	r.StringProto = value.NewObject(r.ObjectProto)
	r.StringProto.Class = "String"
	r.NumberProto = value.NewObject(r.ObjectProto)
	r.NumberProto.Class = "Number"
	r.BooleanProto = value.NewObject(r.ObjectProto)
	r.BooleanProto.Class = "Boolean"
	r.SymbolProto = value.NewObject(r.ObjectProto)
	r.SymbolProto.Class = "Symbol"
	r.BigIntProto = value.NewObject(r.ObjectProto)
	r.BigIntProto.Class = "BigInt"

	r.ErrorProtos = map[string]*value.Object{}
	for _, name := range []string{"TypeError", "RangeError", "SyntaxError", "ReferenceError", "EvalError", "URIError", "AggregateError"} {
		p := value.NewObject(r.ErrorProto)
		p.Class = "Error"
		p.SetHidden("name", value.String(name))
		r.ErrorProtos[name] = p
	}

	r.Global = value.NewObject(r.ObjectProto)
	return r
}

// NewObject/NewArray/NewFunction convenience constructors bind the realm's
// own prototypes, so the rest of eval never has to thread *Object prototypes
// through every call site by hand.
func (r *Realm) NewObject() *value.Object                   { return value.NewObject(r.ObjectProto) }
func (r *Realm) NewArray(elems []value.Value) *value.Object { return value.NewArray(r.ArrayProto, elems) }
func (r *Realm) NewFunction(name string, length int, fn value.CallableFunc) *value.Object {
	return value.NewNativeFunction(r.FunctionProto, name, length, fn)
}
