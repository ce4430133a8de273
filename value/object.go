package value

import (
	"sort"
	"strconv"
)

// PropertyDescriptor is an ECMAScript property descriptor: either a data
// property (Value/Writable) or an accessor property (Get/Set), never both.
type PropertyDescriptor struct {
	Value      Value
	Get        *Object
	Set        *Object
	Writable   bool
	Enumerable bool
	Configurable bool
	IsAccessor bool
}

// CallableFunc is the shape of a callable object's [[Call]] internal method.
// Host functions registered via Engine.SetGlobalFunction and every engine
// closure built by the evaluator both implement this signature.
type CallableFunc func(this Value, args []Value) (Value, error)

// ConstructFunc is the shape of a constructible object's [[Construct]]
// internal method.
type ConstructFunc func(args []Value, newTarget *Object) (Value, error)

// Object is the single internal representation behind every non-primitive
// JS value: plain objects, arrays, functions, errors, Map/Set, boxed
// primitives, and every builtin prototype all share this struct, discriminated by
// Class and the optional Call/Construct/Internal fields.
type Object struct {
	Proto      *Object
	Extensible bool
	Class      string // "Object", "Array", "Function", "Error", "Date", "RegExp", "Map", "Set", "Promise", ...

	props map[any]*PropertyDescriptor // key: string or Symbol
	order []any                       // insertion order, strings and Symbols interleaved

	// Call/Construct are non-nil for function objects.
	Call      CallableFunc
	Construct ConstructFunc
	FnName    string
	FnLength  int

	// Internal holds class-specific internal slots: a Go time.Time for
	// Date, *MapData/*SetData, the promise state for Promise objects, a
	// compiled RegExp, ArrayBuffer/TypedArray/DataView buffers, or a
	// primitive Value for Boolean/Number/String wrapper objects. Arrays do
	// not use it. Each stdlib package type-asserts its own expected shape.
	Internal any

	// PrivateFields holds class private instance state, keyed by the
	// private name's spelling ("#x") since private names are lexically
	// scoped to the declaring class body rather than globally unique.
	PrivateFields map[string]Value
}

// NewObject creates a plain, extensible object with the given prototype
// (nil for a null-prototype object).
func NewObject(proto *Object) *Object {
	return &Object{Proto: proto, Extensible: true, Class: "Object", props: map[any]*PropertyDescriptor{}}
}

// arrayIndexKey reports whether s is a canonical array index string
// ("0", "1", ... but not "01" or "-1"), and its numeric value.
func arrayIndexKey(s string) (uint32, bool) {
	if s == "" {
		return 0, false
	}
	if s == "0" {
		return 0, true
	}
	if s[0] == '0' {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n >= maxArrayIndex {
		return 0, false
	}
	return uint32(n), true
}

const maxArrayIndex = 4294967295 // 2^32 - 1

// GetOwn returns the own property descriptor for key, or nil.
func (o *Object) GetOwn(key any) *PropertyDescriptor {
	if o.props == nil {
		return nil
	}
	return o.props[key]
}

// DefineOwn installs or replaces an own property descriptor, recording
// insertion order on first definition.
func (o *Object) DefineOwn(key any, desc *PropertyDescriptor) {
	if o.props == nil {
		o.props = map[any]*PropertyDescriptor{}
	}
	if _, exists := o.props[key]; !exists {
		o.order = append(o.order, key)
	}
	o.props[key] = desc
}

// DeleteOwn removes an own property if present and configurable, returning
// whether the delete succeeded.
func (o *Object) DeleteOwn(key any) bool {
	d := o.GetOwn(key)
	if d == nil {
		return true
	}
	if !d.Configurable {
		return false
	}
	delete(o.props, key)
	for i, k := range o.order {
		if k == key {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
	return true
}

// SetData is a convenience for defining/updating a plain writable,
// enumerable, configurable data property, the default shape for ordinary
// assignment.
func (o *Object) SetData(key any, v Value) {
	if d := o.GetOwn(key); d != nil && !d.IsAccessor {
		d.Value = v
		return
	}
	o.DefineOwn(key, &PropertyDescriptor{Value: v, Writable: true, Enumerable: true, Configurable: true})
}

// SetHidden defines a non-enumerable data property, the shape used for
// builtin methods and internal bookkeeping fields.
func (o *Object) SetHidden(key any, v Value) {
	o.DefineOwn(key, &PropertyDescriptor{Value: v, Writable: true, Enumerable: false, Configurable: true})
}

// OwnKeys returns this object's own property keys in ECMAScript
// [[OwnPropertyKeys]] order: integer-index string keys ascending, then
// remaining string keys in insertion order, then symbol keys in insertion
// order.
func (o *Object) OwnKeys() []any {
	var idx []uint32
	var strs []string
	var syms []any
	for _, k := range o.order {
		switch kv := k.(type) {
		case string:
			if n, ok := arrayIndexKey(kv); ok {
				idx = append(idx, n)
				continue
			}
			strs = append(strs, kv)
		case Symbol:
			syms = append(syms, kv)
		}
	}
	sort.Slice(idx, func(i, j int) bool { return idx[i] < idx[j] })
	out := make([]any, 0, len(idx)+len(strs)+len(syms))
	for _, n := range idx {
		out = append(out, strconv.FormatUint(uint64(n), 10))
	}
	for _, s := range strs {
		out = append(out, s)
	}
	out = append(out, syms...)
	return out
}

// Get performs the full [[Get]] algorithm, walking the prototype chain and
// invoking accessor getters with the given receiver.
func Get(o *Object, key any, receiver Value) (Value, error) {
	for cur := o; cur != nil; cur = cur.Proto {
		if d := cur.GetOwn(key); d != nil {
			if d.IsAccessor {
				if d.Get == nil {
					return Undef, nil
				}
				return d.Get.Call(receiver, nil)
			}
			return d.Value, nil
		}
	}
	return Undef, nil
}

// Set performs the full [[Set]] algorithm, walking the prototype chain to
// find an accessor setter or an existing non-writable data property before
// falling back to defining an own property on receiverObj.
func Set(o *Object, key any, v Value, receiverObj *Object) error {
	for cur := o; cur != nil; cur = cur.Proto {
		if d := cur.GetOwn(key); d != nil {
			if d.IsAccessor {
				if d.Set == nil {
					return nil // silently ignored outside strict mode
				}
				_, err := d.Set.Call(receiverObj, []Value{v})
				return err
			}
			if !d.Writable {
				return nil
			}
			if cur == o {
				d.Value = v
				return nil
			}
			break
		}
	}
	if !receiverObj.Extensible {
		return nil
	}
	receiverObj.SetData(key, v)
	return nil
}

// HasProperty reports whether key exists anywhere on the prototype chain.
func HasProperty(o *Object, key any) bool {
	for cur := o; cur != nil; cur = cur.Proto {
		if cur.GetOwn(key) != nil {
			return true
		}
	}
	return false
}

func (*Object) Kind() Kind { return KindObject }

// IsCallable reports whether v is an object with a [[Call]] internal slot.
func IsCallable(v Value) bool {
	o, ok := v.(*Object)
	return ok && o.Call != nil
}
