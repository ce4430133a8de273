package value

// NewNativeFunction wraps a Go function as a callable JS function object,
// the shape Engine.SetGlobalFunction and every stdlib builtin use.
func NewNativeFunction(proto *Object, name string, length int, fn CallableFunc) *Object {
	f := NewObject(proto)
	f.Class = "Function"
	f.Call = fn
	f.FnName = name
	f.FnLength = length
	f.SetHidden("name", String(name))
	f.SetHidden("length", Number(length))
	return f
}

// NewConstructor wraps a Go function as both callable and constructible,
// used for builtin classes (Array, Error, Map, ...) whose [[Construct]]
// behavior differs from a plain call.
func NewConstructor(proto *Object, name string, length int, call CallableFunc, construct ConstructFunc) *Object {
	f := NewNativeFunction(proto, name, length, call)
	f.Construct = construct
	return f
}
