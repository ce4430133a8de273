package stdlib

import (
	"encoding/binary"
	"math"
	"math/big"

	"github.com/jsrt/jsrt/eval"
	"github.com/jsrt/jsrt/value"
)

// bufferData is ArrayBuffer's internal slot: a fixed-size, resizable-never
// byte slice shared by every view constructed over it. TypedArrays and
// DataViews hold a *bufferData plus their own byteOffset/length so multiple
// views over one buffer observe each other's writes, matching how ArrayBuffer
// works in every engine.
type bufferData struct {
	bytes []byte
}

// typedArrayKind describes one of the nine integer/float element types plus
// the two BigInt-backed 64-bit ones, driving element size and the
// encode/decode pair a view uses against its backing bufferData.
type typedArrayKind struct {
	name string
	size int
	get  func(b []byte) value.Value
	set  func(b []byte, v value.Value)
}

func installTypedArrays(ev *eval.Evaluator) {
	r := ev.Realm()

	arrayBufferProto := value.NewObject(r.ObjectProto)
	arrayBufferProto.Class = "ArrayBuffer"
	abCtor := value.NewConstructor(r.FunctionProto, "ArrayBuffer", 1, func(_ value.Value, _ []value.Value) (value.Value, error) {
		return nil, ev.TypeError("Constructor ArrayBuffer requires 'new'")
	}, func(args []value.Value, _ *value.Object) (value.Value, error) {
		n := int(value.ToNumber(arg(args, 0)))
		if n < 0 {
			return nil, ev.RangeError("Invalid array buffer length")
		}
		o := value.NewObject(arrayBufferProto)
		o.Class = "ArrayBuffer"
		o.Internal = &bufferData{bytes: make([]byte, n)}
		return o, nil
	})
	abCtor.SetHidden("prototype", arrayBufferProto)
	arrayBufferProto.SetHidden("constructor", abCtor)
	method(ev, abCtor, "isView", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		o, ok := arg(args, 0).(*value.Object)
		if !ok {
			return value.Bool(false), nil
		}
		_, isTA := o.Internal.(*typedArrayData)
		_, isDV := o.Internal.(*dataViewData)
		return value.Bool(isTA || isDV), nil
	})
	arrayBufferProto.DefineOwn("byteLength", &value.PropertyDescriptor{
		IsAccessor:   true,
		Configurable: true,
		Get: r.NewFunction("get byteLength", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
			o, ok := this.(*value.Object)
			if !ok {
				return value.Number(0), nil
			}
			bd, ok := o.Internal.(*bufferData)
			if !ok {
				return value.Number(0), nil
			}
			return value.Number(len(bd.bytes)), nil
		}),
	})
	method(ev, arrayBufferProto, "slice", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		o := this.(*value.Object)
		bd := o.Internal.(*bufferData)
		start, end := sliceBounds(args, len(bd.bytes))
		if start > end {
			start = end
		}
		out := value.NewObject(arrayBufferProto)
		out.Class = "ArrayBuffer"
		cpy := make([]byte, end-start)
		copy(cpy, bd.bytes[start:end])
		out.Internal = &bufferData{bytes: cpy}
		return out, nil
	})
	global(ev, "ArrayBuffer", abCtor)

	kinds := []typedArrayKind{
		{"Int8Array", 1,
			func(b []byte) value.Value { return value.Number(int8(b[0])) },
			func(b []byte, v value.Value) { b[0] = byte(int8(value.ToInt32(v))) }},
		{"Uint8Array", 1,
			func(b []byte) value.Value { return value.Number(b[0]) },
			func(b []byte, v value.Value) { b[0] = byte(value.ToUint32(v)) }},
		{"Uint8ClampedArray", 1,
			func(b []byte) value.Value { return value.Number(b[0]) },
			func(b []byte, v value.Value) { b[0] = clampByte(value.ToNumber(v)) }},
		{"Int16Array", 2,
			func(b []byte) value.Value { return value.Number(int16(binary.LittleEndian.Uint16(b))) },
			func(b []byte, v value.Value) { binary.LittleEndian.PutUint16(b, uint16(int16(value.ToInt32(v)))) }},
		{"Uint16Array", 2,
			func(b []byte) value.Value { return value.Number(binary.LittleEndian.Uint16(b)) },
			func(b []byte, v value.Value) { binary.LittleEndian.PutUint16(b, uint16(value.ToUint32(v))) }},
		{"Int32Array", 4,
			func(b []byte) value.Value { return value.Number(int32(binary.LittleEndian.Uint32(b))) },
			func(b []byte, v value.Value) { binary.LittleEndian.PutUint32(b, uint32(value.ToInt32(v))) }},
		{"Uint32Array", 4,
			func(b []byte) value.Value { return value.Number(binary.LittleEndian.Uint32(b)) },
			func(b []byte, v value.Value) { binary.LittleEndian.PutUint32(b, value.ToUint32(v)) }},
		{"Float32Array", 4,
			func(b []byte) value.Value {
				return value.Number(math.Float32frombits(binary.LittleEndian.Uint32(b)))
			},
			func(b []byte, v value.Value) {
				binary.LittleEndian.PutUint32(b, math.Float32bits(float32(value.ToNumber(v))))
			}},
		{"Float64Array", 8,
			func(b []byte) value.Value {
				return value.Number(math.Float64frombits(binary.LittleEndian.Uint64(b)))
			},
			func(b []byte, v value.Value) {
				binary.LittleEndian.PutUint64(b, math.Float64bits(value.ToNumber(v)))
			}},
	}
	for _, k := range kinds {
		installTypedArrayKind(ev, k)
	}
	installBigIntArrayKind(ev, "BigInt64Array", true)
	installBigIntArrayKind(ev, "BigUint64Array", false)

	installDataView(ev, arrayBufferProto)
}

func clampByte(f float64) byte {
	if f < 0 || f != f {
		return 0
	}
	if f > 255 {
		return 255
	}
	return byte(f + 0.5)
}

// typedArrayData is a view's internal slot: the shared buffer plus this
// view's own offset/length/element-kind, so two views over the same
// ArrayBuffer alias each other's writes.
type typedArrayData struct {
	buf    *bufferData
	offset int
	length int
	kind   typedArrayKind
}

func installTypedArrayKind(ev *eval.Evaluator, kind typedArrayKind) {
	r := ev.Realm()
	proto := value.NewObject(r.ObjectProto)
	proto.Class = kind.name

	newView := func(buf *bufferData, offset, length int) *value.Object {
		o := value.NewObject(proto)
		o.Class = kind.name
		o.Internal = &typedArrayData{buf: buf, offset: offset, length: length, kind: kind}
		return o
	}

	ctor := value.NewConstructor(r.FunctionProto, kind.name, 1, func(_ value.Value, _ []value.Value) (value.Value, error) {
		return nil, ev.TypeError("Constructor %s requires 'new'", kind.name)
	}, func(args []value.Value, _ *value.Object) (value.Value, error) {
		switch a0 := arg(args, 0).(type) {
		case value.Number:
			n := int(a0)
			if n < 0 {
				return nil, ev.RangeError("Invalid typed array length")
			}
			return newView(&bufferData{bytes: make([]byte, n*kind.size)}, 0, n), nil
		case *value.Object:
			if bd, ok := a0.Internal.(*bufferData); ok {
				offset := 0
				if o := arg(args, 1); o != value.Undef {
					offset = int(value.ToNumber(o))
				}
				length := (len(bd.bytes) - offset) / kind.size
				if l := arg(args, 2); l != value.Undef {
					length = int(value.ToNumber(l))
				}
				if offset+length*kind.size > len(bd.bytes) || offset < 0 {
					return nil, ev.RangeError("invalid ArrayBuffer length")
				}
				return newView(bd, offset, length), nil
			}
			items, err := ev.IterateToSlice(a0)
			if err != nil {
				return nil, err
			}
			view := newView(&bufferData{bytes: make([]byte, len(items)*kind.size)}, 0, len(items))
			vd := view.Internal.(*typedArrayData)
			for i, it := range items {
				vd.kind.set(vd.elemBytes(i), it)
			}
			return view, nil
		default:
			return newView(&bufferData{bytes: nil}, 0, 0), nil
		}
	})
	ctor.SetHidden("prototype", proto)
	ctor.SetHidden("BYTES_PER_ELEMENT", value.Number(kind.size))
	proto.SetHidden("constructor", ctor)
	proto.SetHidden("BYTES_PER_ELEMENT", value.Number(kind.size))

	method(ev, ctor, "from", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		items, err := ev.IterateToSlice(arg(args, 0))
		if err != nil {
			return nil, err
		}
		mapFn, _ := arg(args, 1).(*value.Object)
		view := newView(&bufferData{bytes: make([]byte, len(items)*kind.size)}, 0, len(items))
		vd := view.Internal.(*typedArrayData)
		for i, it := range items {
			if mapFn != nil && mapFn.Call != nil {
				mapped, err := ev.Call(mapFn, value.Undef, []value.Value{it, value.Number(i)})
				if err != nil {
					return nil, err
				}
				it = mapped
			}
			vd.kind.set(vd.elemBytes(i), it)
		}
		return view, nil
	})
	method(ev, ctor, "of", 0, func(_ value.Value, args []value.Value) (value.Value, error) {
		view := newView(&bufferData{bytes: make([]byte, len(args)*kind.size)}, 0, len(args))
		vd := view.Internal.(*typedArrayData)
		for i, it := range args {
			vd.kind.set(vd.elemBytes(i), it)
		}
		return view, nil
	})

	proto.DefineOwn("length", &value.PropertyDescriptor{
		IsAccessor:   true,
		Configurable: true,
		Get: r.NewFunction("get length", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
			vd, err := thisTypedArray(ev, this)
			if err != nil {
				return nil, err
			}
			return value.Number(vd.length), nil
		}),
	})

	method(ev, proto, "at", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		vd, err := thisTypedArray(ev, this)
		if err != nil {
			return nil, err
		}
		i := int(value.ToNumber(arg(args, 0)))
		if i < 0 {
			i += vd.length
		}
		if i < 0 || i >= vd.length {
			return value.Undef, nil
		}
		return vd.kind.get(vd.elemBytes(i)), nil
	})
	method(ev, proto, "fill", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		vd, err := thisTypedArray(ev, this)
		if err != nil {
			return nil, err
		}
		v := arg(args, 0)
		start, end := sliceBounds(args[min(1, len(args)):], vd.length)
		for i := start; i < end; i++ {
			vd.kind.set(vd.elemBytes(i), v)
		}
		return this, nil
	})
	method(ev, proto, "set", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		vd, err := thisTypedArray(ev, this)
		if err != nil {
			return nil, err
		}
		offset := 0
		if o := arg(args, 1); o != value.Undef {
			offset = int(value.ToNumber(o))
		}
		items, err := ev.IterateToSlice(arg(args, 0))
		if err != nil {
			return nil, err
		}
		for i, it := range items {
			vd.kind.set(vd.elemBytes(offset+i), it)
		}
		return value.Undef, nil
	})
	method(ev, proto, "slice", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		vd, err := thisTypedArray(ev, this)
		if err != nil {
			return nil, err
		}
		start, end := sliceBounds(args, vd.length)
		out := make([]byte, (end-start)*kind.size)
		copy(out, vd.buf.bytes[vd.offset+start*kind.size:vd.offset+end*kind.size])
		return newView(&bufferData{bytes: out}, 0, end-start), nil
	})
	method(ev, proto, "subarray", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		vd, err := thisTypedArray(ev, this)
		if err != nil {
			return nil, err
		}
		start, end := sliceBounds(args, vd.length)
		return newView(vd.buf, vd.offset+start*kind.size, end-start), nil
	})
	method(ev, proto, "indexOf", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		vd, err := thisTypedArray(ev, this)
		if err != nil {
			return nil, err
		}
		target := value.ToNumber(arg(args, 0))
		for i := 0; i < vd.length; i++ {
			if value.ToNumber(vd.kind.get(vd.elemBytes(i))) == target {
				return value.Number(i), nil
			}
		}
		return value.Number(-1), nil
	})
	method(ev, proto, "includes", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		vd, err := thisTypedArray(ev, this)
		if err != nil {
			return nil, err
		}
		target := value.ToNumber(arg(args, 0))
		for i := 0; i < vd.length; i++ {
			if value.ToNumber(vd.kind.get(vd.elemBytes(i))) == target {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	})
	method(ev, proto, "join", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		vd, err := thisTypedArray(ev, this)
		if err != nil {
			return nil, err
		}
		sep := ","
		if s := arg(args, 0); s != value.Undef {
			sep = value.ToStringValue(s)
		}
		out := ""
		for i := 0; i < vd.length; i++ {
			if i > 0 {
				out += sep
			}
			out += value.ToStringValue(vd.kind.get(vd.elemBytes(i)))
		}
		return value.String(out), nil
	})
	method(ev, proto, "forEach", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		vd, err := thisTypedArray(ev, this)
		if err != nil {
			return nil, err
		}
		fn, _ := arg(args, 0).(*value.Object)
		for i := 0; i < vd.length; i++ {
			if _, err := ev.Call(fn, value.Undef, []value.Value{vd.kind.get(vd.elemBytes(i)), value.Number(i), this}); err != nil {
				return nil, err
			}
		}
		return value.Undef, nil
	})
	method(ev, proto, "map", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		vd, err := thisTypedArray(ev, this)
		if err != nil {
			return nil, err
		}
		fn, _ := arg(args, 0).(*value.Object)
		out := newView(&bufferData{bytes: make([]byte, vd.length*kind.size)}, 0, vd.length)
		ovd := out.Internal.(*typedArrayData)
		for i := 0; i < vd.length; i++ {
			rv, err := ev.Call(fn, value.Undef, []value.Value{vd.kind.get(vd.elemBytes(i)), value.Number(i), this})
			if err != nil {
				return nil, err
			}
			ovd.kind.set(ovd.elemBytes(i), rv)
		}
		return out, nil
	})
	method(ev, proto, "toString", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		vd, err := thisTypedArray(ev, this)
		if err != nil {
			return nil, err
		}
		out := ""
		for i := 0; i < vd.length; i++ {
			if i > 0 {
				out += ","
			}
			out += value.ToStringValue(vd.kind.get(vd.elemBytes(i)))
		}
		return value.String(out), nil
	})

	global(ev, kind.name, ctor)
}

func (vd *typedArrayData) elemBytes(i int) []byte {
	start := vd.offset + i*vd.kind.size
	return vd.buf.bytes[start : start+vd.kind.size]
}

func thisTypedArray(ev *eval.Evaluator, this value.Value) (*typedArrayData, error) {
	o, ok := this.(*value.Object)
	if !ok {
		return nil, ev.TypeError("Method called on incompatible receiver")
	}
	vd, ok := o.Internal.(*typedArrayData)
	if !ok {
		return nil, ev.TypeError("Method called on incompatible receiver")
	}
	return vd, nil
}

// installBigIntArrayKind registers BigInt64Array/BigUint64Array separately
// from the float/int kinds above since their element accessors produce/
// consume value.BigInt rather than value.Number.
func installBigIntArrayKind(ev *eval.Evaluator, name string, signed bool) {
	r := ev.Realm()
	proto := value.NewObject(r.ObjectProto)
	proto.Class = name

	newView := func(buf *bufferData, offset, length int) *value.Object {
		o := value.NewObject(proto)
		o.Class = name
		o.Internal = &typedArrayData{buf: buf, offset: offset, length: length, kind: typedArrayKind{name: name, size: 8,
			get: func(b []byte) value.Value {
				u := binary.LittleEndian.Uint64(b)
				if signed {
					return value.NewBigInt(big.NewInt(int64(u)))
				}
				return value.NewBigInt(new(big.Int).SetUint64(u))
			},
			set: func(b []byte, v value.Value) {
				binary.LittleEndian.PutUint64(b, bigIntToUint64(v))
			},
		}}
		return o
	}

	ctor := value.NewConstructor(r.FunctionProto, name, 1, func(_ value.Value, _ []value.Value) (value.Value, error) {
		return nil, ev.TypeError("Constructor %s requires 'new'", name)
	}, func(args []value.Value, _ *value.Object) (value.Value, error) {
		n, ok := arg(args, 0).(value.Number)
		if !ok {
			return newView(&bufferData{bytes: nil}, 0, 0), nil
		}
		ln := int(n)
		if ln < 0 {
			return nil, ev.RangeError("Invalid typed array length")
		}
		return newView(&bufferData{bytes: make([]byte, ln*8)}, 0, ln), nil
	})
	ctor.SetHidden("prototype", proto)
	ctor.SetHidden("BYTES_PER_ELEMENT", value.Number(8))
	proto.SetHidden("constructor", ctor)

	proto.DefineOwn("length", &value.PropertyDescriptor{
		IsAccessor:   true,
		Configurable: true,
		Get: r.NewFunction("get length", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
			vd, err := thisTypedArray(ev, this)
			if err != nil {
				return nil, err
			}
			return value.Number(vd.length), nil
		}),
	})
	method(ev, proto, "at", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		vd, err := thisTypedArray(ev, this)
		if err != nil {
			return nil, err
		}
		i := int(value.ToNumber(arg(args, 0)))
		if i < 0 {
			i += vd.length
		}
		if i < 0 || i >= vd.length {
			return value.Undef, nil
		}
		return vd.kind.get(vd.elemBytes(i)), nil
	})

	global(ev, name, ctor)
}

// dataViewData is DataView's internal slot: the shared buffer plus this
// view's own byteOffset/byteLength window.
type dataViewData struct {
	buf    *bufferData
	offset int
	length int
}

func installDataView(ev *eval.Evaluator, _ *value.Object) {
	r := ev.Realm()
	proto := value.NewObject(r.ObjectProto)
	proto.Class = "DataView"

	ctor := value.NewConstructor(r.FunctionProto, "DataView", 1, func(_ value.Value, _ []value.Value) (value.Value, error) {
		return nil, ev.TypeError("Constructor DataView requires 'new'")
	}, func(args []value.Value, _ *value.Object) (value.Value, error) {
		bufObj, ok := arg(args, 0).(*value.Object)
		if !ok {
			return nil, ev.TypeError("First argument to DataView constructor must be an ArrayBuffer")
		}
		bd, ok := bufObj.Internal.(*bufferData)
		if !ok {
			return nil, ev.TypeError("First argument to DataView constructor must be an ArrayBuffer")
		}
		offset := 0
		if o := arg(args, 1); o != value.Undef {
			offset = int(value.ToNumber(o))
		}
		length := len(bd.bytes) - offset
		if l := arg(args, 2); l != value.Undef {
			length = int(value.ToNumber(l))
		}
		if offset < 0 || offset+length > len(bd.bytes) {
			return nil, ev.RangeError("Invalid DataView length")
		}
		o := value.NewObject(proto)
		o.Class = "DataView"
		o.Internal = &dataViewData{buf: bd, offset: offset, length: length}
		return o, nil
	})
	ctor.SetHidden("prototype", proto)
	proto.SetHidden("constructor", ctor)

	thisView := func(this value.Value) (*dataViewData, error) {
		o, ok := this.(*value.Object)
		if !ok {
			return nil, ev.TypeError("Method DataView.prototype called on incompatible receiver")
		}
		dv, ok := o.Internal.(*dataViewData)
		if !ok {
			return nil, ev.TypeError("Method DataView.prototype called on incompatible receiver")
		}
		return dv, nil
	}

	order := func(args []value.Value, idx int) binary.ByteOrder {
		if len(args) > idx && value.ToBoolean(args[idx]) {
			return binary.LittleEndian
		}
		return binary.BigEndian
	}

	getter := func(name string, size int, decode func(b []byte, o binary.ByteOrder) value.Value) {
		method(ev, proto, name, 1, func(this value.Value, args []value.Value) (value.Value, error) {
			dv, err := thisView(this)
			if err != nil {
				return nil, err
			}
			at := int(value.ToNumber(arg(args, 0)))
			if at < 0 || at+size > dv.length {
				return nil, ev.RangeError("Offset is outside the bounds of the DataView")
			}
			b := dv.buf.bytes[dv.offset+at : dv.offset+at+size]
			return decode(b, order(args, 1)), nil
		})
	}
	setter := func(name string, size int, encode func(b []byte, v value.Value, o binary.ByteOrder)) {
		method(ev, proto, name, 2, func(this value.Value, args []value.Value) (value.Value, error) {
			dv, err := thisView(this)
			if err != nil {
				return nil, err
			}
			at := int(value.ToNumber(arg(args, 0)))
			if at < 0 || at+size > dv.length {
				return nil, ev.RangeError("Offset is outside the bounds of the DataView")
			}
			b := dv.buf.bytes[dv.offset+at : dv.offset+at+size]
			encode(b, arg(args, 1), order(args, 2))
			return value.Undef, nil
		})
	}

	getter("getInt8", 1, func(b []byte, _ binary.ByteOrder) value.Value { return value.Number(int8(b[0])) })
	getter("getUint8", 1, func(b []byte, _ binary.ByteOrder) value.Value { return value.Number(b[0]) })
	setter("setInt8", 1, func(b []byte, v value.Value, _ binary.ByteOrder) { b[0] = byte(int8(value.ToInt32(v))) })
	setter("setUint8", 1, func(b []byte, v value.Value, _ binary.ByteOrder) { b[0] = byte(value.ToUint32(v)) })

	getter("getInt16", 2, func(b []byte, o binary.ByteOrder) value.Value { return value.Number(int16(o.Uint16(b))) })
	getter("getUint16", 2, func(b []byte, o binary.ByteOrder) value.Value { return value.Number(o.Uint16(b)) })
	setter("setInt16", 2, func(b []byte, v value.Value, o binary.ByteOrder) { o.PutUint16(b, uint16(int16(value.ToInt32(v)))) })
	setter("setUint16", 2, func(b []byte, v value.Value, o binary.ByteOrder) { o.PutUint16(b, uint16(value.ToUint32(v))) })

	getter("getInt32", 4, func(b []byte, o binary.ByteOrder) value.Value { return value.Number(int32(o.Uint32(b))) })
	getter("getUint32", 4, func(b []byte, o binary.ByteOrder) value.Value { return value.Number(o.Uint32(b)) })
	setter("setInt32", 4, func(b []byte, v value.Value, o binary.ByteOrder) { o.PutUint32(b, uint32(value.ToInt32(v))) })
	setter("setUint32", 4, func(b []byte, v value.Value, o binary.ByteOrder) { o.PutUint32(b, value.ToUint32(v)) })

	getter("getFloat32", 4, func(b []byte, o binary.ByteOrder) value.Value {
		return value.Number(math.Float32frombits(o.Uint32(b)))
	})
	setter("setFloat32", 4, func(b []byte, v value.Value, o binary.ByteOrder) {
		o.PutUint32(b, math.Float32bits(float32(value.ToNumber(v))))
	})
	getter("getFloat64", 8, func(b []byte, o binary.ByteOrder) value.Value {
		return value.Number(math.Float64frombits(o.Uint64(b)))
	})
	setter("setFloat64", 8, func(b []byte, v value.Value, o binary.ByteOrder) {
		o.PutUint64(b, math.Float64bits(value.ToNumber(v)))
	})

	proto.DefineOwn("byteLength", &value.PropertyDescriptor{
		IsAccessor:   true,
		Configurable: true,
		Get: r.NewFunction("get byteLength", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
			dv, err := thisView(this)
			if err != nil {
				return nil, err
			}
			return value.Number(dv.length), nil
		}),
	})

	global(ev, "DataView", ctor)
}

func bigIntToUint64(v value.Value) uint64 {
	b, ok := v.(value.BigInt)
	if !ok {
		return uint64(value.ToNumber(v))
	}
	return b.V.Uint64()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
