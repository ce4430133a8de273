package value

import "strconv"

// NewArray creates an Array object with the given elements and a length
// property tracking them, backed by ordinary integer-indexed properties
// (spec.md's Non-goals exclude a fast-path optimized array representation;
// the property model already gives the right indexing/enumeration
// semantics without one).
func NewArray(proto *Object, elements []Value) *Object {
	arr := NewObject(proto)
	arr.Class = "Array"
	for i, v := range elements {
		arr.DefineOwn(strconv.Itoa(i), &PropertyDescriptor{Value: v, Writable: true, Enumerable: true, Configurable: true})
	}
	arr.DefineOwn("length", &PropertyDescriptor{Value: Number(len(elements)), Writable: true, Enumerable: false, Configurable: false})
	return arr
}

// ArrayLength reads an array's current length property as an integer.
func ArrayLength(arr *Object) int {
	d := arr.GetOwn("length")
	if d == nil {
		return 0
	}
	return int(ToNumber(d.Value))
}

// ArraySetLength updates the length data property directly, used by push/
// pop/splice and by explicit `arr.length = n` assignment (which also
// truncates any elements at or above the new length, handled by the caller
// since that requires deleting properties too).
func ArraySetLength(arr *Object, n int) {
	arr.DefineOwn("length", &PropertyDescriptor{Value: Number(n), Writable: true, Enumerable: false, Configurable: false})
}

// ArrayGet/ArraySet are convenience wrappers over the general property
// protocol for integer-indexed access, growing length as needed on set.
func ArrayGet(arr *Object, i int) Value {
	d := arr.GetOwn(strconv.Itoa(i))
	if d == nil {
		return Undef
	}
	return d.Value
}

func ArraySet(arr *Object, i int, v Value) {
	arr.SetData(strconv.Itoa(i), v)
	if i >= ArrayLength(arr) {
		ArraySetLength(arr, i+1)
	}
}

// ArrayToSlice materializes an Array object's dense elements (0..length) as
// a Go slice, used by builtins that need to iterate all elements (join,
// iteration protocol default, Math.max(...arr), etc).
func ArrayToSlice(arr *Object) []Value {
	n := ArrayLength(arr)
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		out[i] = ArrayGet(arr, i)
	}
	return out
}
