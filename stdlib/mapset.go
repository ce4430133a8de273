package stdlib

import (
	"github.com/jsrt/jsrt/eval"
	"github.com/jsrt/jsrt/value"
)

// mapEntry is one Map key/value pair. MapData keeps entries in a slice
// rather than a Go map because a JS Map key is compared by SameValueZero,
// not by Go equality — a *value.Object key needs pointer identity, a
// value.Number key needs to fold +0/-0 together and treat NaN as matching
// itself, neither of which survives being a Go map key directly (NaN != NaN
// breaks float64 keys outright). Linear lookup is the honest tradeoff for
// that semantics instead of forging a hashable proxy key.
type MapData struct {
	keys   []value.Value
	values []value.Value
}

func (m *MapData) find(key value.Value) int {
	for i, k := range m.keys {
		if sameValue(k, key) {
			return i
		}
	}
	return -1
}

func (m *MapData) Get(key value.Value) (value.Value, bool) {
	if i := m.find(key); i >= 0 {
		return m.values[i], true
	}
	return nil, false
}

func (m *MapData) Set(key, v value.Value) {
	if i := m.find(key); i >= 0 {
		m.values[i] = v
		return
	}
	m.keys = append(m.keys, key)
	m.values = append(m.values, v)
}

func (m *MapData) Delete(key value.Value) bool {
	i := m.find(key)
	if i < 0 {
		return false
	}
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.values = append(m.values[:i], m.values[i+1:]...)
	return true
}

type SetData struct {
	items []value.Value
}

func (s *SetData) find(v value.Value) int {
	for i, item := range s.items {
		if sameValue(item, v) {
			return i
		}
	}
	return -1
}

func (s *SetData) Has(v value.Value) bool { return s.find(v) >= 0 }

func (s *SetData) Add(v value.Value) {
	if s.find(v) < 0 {
		s.items = append(s.items, v)
	}
}

func (s *SetData) Delete(v value.Value) bool {
	i := s.find(v)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

func installMapSet(ev *eval.Evaluator) {
	installMap(ev)
	installSet(ev)
	installWeakMap(ev)
	installWeakSet(ev)
}

func installMap(ev *eval.Evaluator) {
	r := ev.Realm()
	proto := value.NewObject(r.ObjectProto)
	proto.Class = "Map"

	ctor := value.NewConstructor(r.FunctionProto, "Map", 0, func(_ value.Value, _ []value.Value) (value.Value, error) {
		return nil, ev.TypeError("Constructor Map requires 'new'")
	}, func(args []value.Value, _ *value.Object) (value.Value, error) {
		o := value.NewObject(proto)
		o.Class = "Map"
		data := &MapData{}
		o.Internal = data
		if init := arg(args, 0); !value.IsNullish(init) {
			entries, err := ev.IterateToSlice(init)
			if err != nil {
				return nil, err
			}
			for _, e := range entries {
				pair, err := ev.IterateToSlice(e)
				if err != nil {
					return nil, err
				}
				var k, v value.Value = value.Undef, value.Undef
				if len(pair) > 0 {
					k = pair[0]
				}
				if len(pair) > 1 {
					v = pair[1]
				}
				data.Set(k, v)
			}
		}
		return o, nil
	})
	ctor.SetHidden("prototype", proto)
	proto.SetHidden("constructor", ctor)

	mapData := func(this value.Value) (*MapData, error) {
		o, ok := this.(*value.Object)
		if !ok {
			return nil, ev.TypeError("Method Map.prototype called on incompatible receiver")
		}
		d, ok := o.Internal.(*MapData)
		if !ok {
			return nil, ev.TypeError("Method Map.prototype called on incompatible receiver")
		}
		return d, nil
	}

	method(ev, proto, "get", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		d, err := mapData(this)
		if err != nil {
			return nil, err
		}
		if v, ok := d.Get(arg(args, 0)); ok {
			return v, nil
		}
		return value.Undef, nil
	})
	method(ev, proto, "set", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		d, err := mapData(this)
		if err != nil {
			return nil, err
		}
		d.Set(arg(args, 0), arg(args, 1))
		return this, nil
	})
	method(ev, proto, "has", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		d, err := mapData(this)
		if err != nil {
			return nil, err
		}
		_, ok := d.Get(arg(args, 0))
		return value.Bool(ok), nil
	})
	method(ev, proto, "delete", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		d, err := mapData(this)
		if err != nil {
			return nil, err
		}
		return value.Bool(d.Delete(arg(args, 0))), nil
	})
	method(ev, proto, "clear", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		d, err := mapData(this)
		if err != nil {
			return nil, err
		}
		d.keys = nil
		d.values = nil
		return value.Undef, nil
	})
	method(ev, proto, "forEach", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		d, err := mapData(this)
		if err != nil {
			return nil, err
		}
		for i := 0; i < len(d.keys); i++ {
			if _, err := ev.Call(arg(args, 0), arg(args, 1), []value.Value{d.values[i], d.keys[i], this}); err != nil {
				return nil, err
			}
		}
		return value.Undef, nil
	})
	method(ev, proto, "keys", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		d, err := mapData(this)
		if err != nil {
			return nil, err
		}
		return newArrayIterator(ev, append([]value.Value{}, d.keys...)), nil
	})
	method(ev, proto, "values", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		d, err := mapData(this)
		if err != nil {
			return nil, err
		}
		return newArrayIterator(ev, append([]value.Value{}, d.values...)), nil
	})
	method(ev, proto, "entries", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		d, err := mapData(this)
		if err != nil {
			return nil, err
		}
		entries := make([]value.Value, len(d.keys))
		for i := range d.keys {
			entries[i] = r.NewArray([]value.Value{d.keys[i], d.values[i]})
		}
		return newArrayIterator(ev, entries), nil
	})
	sizeGetter := ev.Realm().NewFunction("size", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		d, err := mapData(this)
		if err != nil {
			return nil, err
		}
		return value.Number(len(d.keys)), nil
	})
	proto.DefineOwn("size", &value.PropertyDescriptor{IsAccessor: true, Get: sizeGetter, Configurable: true})
	proto.SetHidden(value.SymbolIterator, mustGet2(proto, "entries"))

	global(ev, "Map", ctor)
}

func installSet(ev *eval.Evaluator) {
	r := ev.Realm()
	proto := value.NewObject(r.ObjectProto)
	proto.Class = "Set"

	ctor := value.NewConstructor(r.FunctionProto, "Set", 0, func(_ value.Value, _ []value.Value) (value.Value, error) {
		return nil, ev.TypeError("Constructor Set requires 'new'")
	}, func(args []value.Value, _ *value.Object) (value.Value, error) {
		o := value.NewObject(proto)
		o.Class = "Set"
		data := &SetData{}
		o.Internal = data
		if init := arg(args, 0); !value.IsNullish(init) {
			items, err := ev.IterateToSlice(init)
			if err != nil {
				return nil, err
			}
			for _, v := range items {
				data.Add(v)
			}
		}
		return o, nil
	})
	ctor.SetHidden("prototype", proto)
	proto.SetHidden("constructor", ctor)

	setData := func(this value.Value) (*SetData, error) {
		o, ok := this.(*value.Object)
		if !ok {
			return nil, ev.TypeError("Method Set.prototype called on incompatible receiver")
		}
		d, ok := o.Internal.(*SetData)
		if !ok {
			return nil, ev.TypeError("Method Set.prototype called on incompatible receiver")
		}
		return d, nil
	}

	method(ev, proto, "add", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		d, err := setData(this)
		if err != nil {
			return nil, err
		}
		d.Add(arg(args, 0))
		return this, nil
	})
	method(ev, proto, "has", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		d, err := setData(this)
		if err != nil {
			return nil, err
		}
		return value.Bool(d.Has(arg(args, 0))), nil
	})
	method(ev, proto, "delete", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		d, err := setData(this)
		if err != nil {
			return nil, err
		}
		return value.Bool(d.Delete(arg(args, 0))), nil
	})
	method(ev, proto, "clear", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		d, err := setData(this)
		if err != nil {
			return nil, err
		}
		d.items = nil
		return value.Undef, nil
	})
	method(ev, proto, "forEach", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		d, err := setData(this)
		if err != nil {
			return nil, err
		}
		for _, v := range d.items {
			if _, err := ev.Call(arg(args, 0), arg(args, 1), []value.Value{v, v, this}); err != nil {
				return nil, err
			}
		}
		return value.Undef, nil
	})
	method(ev, proto, "values", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		d, err := setData(this)
		if err != nil {
			return nil, err
		}
		return newArrayIterator(ev, append([]value.Value{}, d.items...)), nil
	})
	proto.SetHidden("keys", mustGet2(proto, "values"))
	proto.SetHidden(value.SymbolIterator, mustGet2(proto, "values"))

	sizeGetter := ev.Realm().NewFunction("size", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		d, err := setData(this)
		if err != nil {
			return nil, err
		}
		return value.Number(len(d.items)), nil
	})
	proto.DefineOwn("size", &value.PropertyDescriptor{IsAccessor: true, Get: sizeGetter, Configurable: true})

	global(ev, "Set", ctor)
}

func installWeakMap(ev *eval.Evaluator) {
	r := ev.Realm()
	proto := value.NewObject(r.ObjectProto)
	proto.Class = "WeakMap"

	ctor := value.NewConstructor(r.FunctionProto, "WeakMap", 0, func(_ value.Value, _ []value.Value) (value.Value, error) {
		return nil, ev.TypeError("Constructor WeakMap requires 'new'")
	}, func(args []value.Value, _ *value.Object) (value.Value, error) {
		o := value.NewObject(proto)
		o.Class = "WeakMap"
		data := &MapData{}
		o.Internal = data
		if init := arg(args, 0); !value.IsNullish(init) {
			entries, err := ev.IterateToSlice(init)
			if err != nil {
				return nil, err
			}
			for _, e := range entries {
				pair, err := ev.IterateToSlice(e)
				if err != nil {
					return nil, err
				}
				var k, v value.Value = value.Undef, value.Undef
				if len(pair) > 0 {
					k = pair[0]
				}
				if len(pair) > 1 {
					v = pair[1]
				}
				data.Set(k, v)
			}
		}
		return o, nil
	})
	ctor.SetHidden("prototype", proto)
	proto.SetHidden("constructor", ctor)

	weakMapData := func(this value.Value) (*MapData, error) {
		o, ok := this.(*value.Object)
		if !ok {
			return nil, ev.TypeError("Method WeakMap.prototype called on incompatible receiver")
		}
		d, ok := o.Internal.(*MapData)
		if !ok {
			return nil, ev.TypeError("Method WeakMap.prototype called on incompatible receiver")
		}
		return d, nil
	}
	method(ev, proto, "get", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		d, err := weakMapData(this)
		if err != nil {
			return nil, err
		}
		if v, ok := d.Get(arg(args, 0)); ok {
			return v, nil
		}
		return value.Undef, nil
	})
	method(ev, proto, "set", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		k := arg(args, 0)
		if _, ok := k.(*value.Object); !ok {
			return nil, ev.TypeError("Invalid value used as weak map key")
		}
		d, err := weakMapData(this)
		if err != nil {
			return nil, err
		}
		d.Set(k, arg(args, 1))
		return this, nil
	})
	method(ev, proto, "has", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		d, err := weakMapData(this)
		if err != nil {
			return nil, err
		}
		_, ok := d.Get(arg(args, 0))
		return value.Bool(ok), nil
	})
	method(ev, proto, "delete", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		d, err := weakMapData(this)
		if err != nil {
			return nil, err
		}
		return value.Bool(d.Delete(arg(args, 0))), nil
	})

	global(ev, "WeakMap", ctor)
}

func installWeakSet(ev *eval.Evaluator) {
	r := ev.Realm()
	proto := value.NewObject(r.ObjectProto)
	proto.Class = "WeakSet"

	ctor := value.NewConstructor(r.FunctionProto, "WeakSet", 0, func(_ value.Value, _ []value.Value) (value.Value, error) {
		return nil, ev.TypeError("Constructor WeakSet requires 'new'")
	}, func(args []value.Value, _ *value.Object) (value.Value, error) {
		o := value.NewObject(proto)
		o.Class = "WeakSet"
		data := &SetData{}
		o.Internal = data
		if init := arg(args, 0); !value.IsNullish(init) {
			items, err := ev.IterateToSlice(init)
			if err != nil {
				return nil, err
			}
			for _, v := range items {
				data.Add(v)
			}
		}
		return o, nil
	})
	ctor.SetHidden("prototype", proto)
	proto.SetHidden("constructor", ctor)

	weakSetData := func(this value.Value) (*SetData, error) {
		o, ok := this.(*value.Object)
		if !ok {
			return nil, ev.TypeError("Method WeakSet.prototype called on incompatible receiver")
		}
		d, ok := o.Internal.(*SetData)
		if !ok {
			return nil, ev.TypeError("Method WeakSet.prototype called on incompatible receiver")
		}
		return d, nil
	}
	method(ev, proto, "add", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if _, ok := v.(*value.Object); !ok {
			return nil, ev.TypeError("Invalid value used in weak set")
		}
		d, err := weakSetData(this)
		if err != nil {
			return nil, err
		}
		d.Add(v)
		return this, nil
	})
	method(ev, proto, "has", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		d, err := weakSetData(this)
		if err != nil {
			return nil, err
		}
		return value.Bool(d.Has(arg(args, 0))), nil
	})
	method(ev, proto, "delete", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		d, err := weakSetData(this)
		if err != nil {
			return nil, err
		}
		return value.Bool(d.Delete(arg(args, 0))), nil
	})

	global(ev, "WeakSet", ctor)
}

func mustGet2(o *value.Object, name string) value.Value {
	v, _ := value.Get(o, name, o)
	return v
}
