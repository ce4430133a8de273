package eval

import "github.com/jsrt/jsrt/value"

// iterateToSlice drains an iterable eagerly: the fast path for for-of loops
// and destructuring in the plain tree-walking evaluator, which never need
// to suspend partway through. Arrays and strings get a direct fast path;
// anything else goes through the full Symbol.iterator protocol.
func (ev *Evaluator) iterateToSlice(v value.Value) ([]value.Value, error) {
	switch t := v.(type) {
	case *value.Object:
		if t.Class == "Array" {
			return value.ArrayToSlice(t), nil
		}
		iter, err := ev.getIteratorObject(t)
		if err != nil {
			return nil, err
		}
		var out []value.Value
		for {
			val, done, err := ev.iteratorNext(iter)
			if err != nil {
				return nil, err
			}
			if done {
				return out, nil
			}
			out = append(out, val)
		}
	case value.String:
		out := make([]value.Value, 0, len(t))
		for _, r := range string(t) {
			out = append(out, value.String(string(r)))
		}
		return out, nil
	default:
		return nil, ev.typeError("value is not iterable")
	}
}

// enumerableKeys implements for-in's key enumeration: own enumerable string
// keys walked up the prototype chain, de-duplicated, matching the one
// for-in does over `in` rather than Symbol.iterator.
func (ev *Evaluator) enumerableKeys(v value.Value) []value.Value {
	o, ok := v.(*value.Object)
	if !ok {
		return nil
	}
	seen := map[any]bool{}
	var out []value.Value
	for cur := o; cur != nil; cur = cur.Proto {
		for _, k := range cur.OwnKeys() {
			if seen[k] {
				continue
			}
			seen[k] = true
			if ks, ok := k.(string); ok {
				if d := cur.GetOwn(k); d != nil && d.Enumerable {
					out = append(out, value.String(ks))
				}
			}
		}
	}
	return out
}

// getIteratorObject resolves v[Symbol.iterator]() into the iterator object
// genvm/for-of drive with repeated .next() calls.
func (ev *Evaluator) getIteratorObject(v value.Value) (*value.Object, error) {
	o, ok := v.(*value.Object)
	if !ok {
		return nil, ev.typeError("value is not iterable")
	}
	fnVal, err := value.Get(o, value.SymbolIterator, o)
	if err != nil {
		return nil, err
	}
	fn, ok := fnVal.(*value.Object)
	if !ok || fn.Call == nil {
		return nil, ev.typeError("value is not iterable")
	}
	res, err := fn.Call(o, nil)
	if err != nil {
		return nil, err
	}
	iter, ok := res.(*value.Object)
	if !ok {
		return nil, ev.typeError("iterator result is not an object")
	}
	return iter, nil
}

// iteratorNext calls iter.next() and unpacks the {value, done} result.
func (ev *Evaluator) iteratorNext(iter *value.Object) (value.Value, bool, error) {
	nextVal, err := value.Get(iter, "next", iter)
	if err != nil {
		return nil, false, err
	}
	next, ok := nextVal.(*value.Object)
	if !ok || next.Call == nil {
		return nil, false, ev.typeError("iterator has no next method")
	}
	res, err := next.Call(iter, nil)
	if err != nil {
		return nil, false, err
	}
	ro, ok := res.(*value.Object)
	if !ok {
		return nil, false, ev.typeError("iterator result is not an object")
	}
	done, err := value.Get(ro, "done", ro)
	if err != nil {
		return nil, false, err
	}
	val, err := value.Get(ro, "value", ro)
	if err != nil {
		return nil, false, err
	}
	return val, value.ToBoolean(done), nil
}

// iteratorReturn forwards `.return(v)` to iter's own return method, per the
// iterator-close protocol: an iterator with no return method is already
// closed as far as the caller is concerned, reporting {value: v, done:
// true} without calling anything. Used to forward a delegating generator's
// .return() into an active `yield*` target, so the target's own finally
// blocks run before delegation ends.
func (ev *Evaluator) iteratorReturn(iter *value.Object, v value.Value) (value.Value, bool, error) {
	retVal, err := value.Get(iter, "return", iter)
	if err != nil {
		return nil, false, err
	}
	ret, ok := retVal.(*value.Object)
	if !ok || ret.Call == nil {
		return v, true, nil
	}
	res, err := ret.Call(iter, []value.Value{v})
	if err != nil {
		return nil, false, err
	}
	ro, ok := res.(*value.Object)
	if !ok {
		return nil, false, ev.typeError("iterator result is not an object")
	}
	done, err := value.Get(ro, "done", ro)
	if err != nil {
		return nil, false, err
	}
	val, err := value.Get(ro, "value", ro)
	if err != nil {
		return nil, false, err
	}
	return val, value.ToBoolean(done), nil
}

// ---- genvm.Host iterator handle table ----
//
// genvm drives for-of/for-await-of incrementally, one Step at a time, so it
// needs a live handle rather than iterateToSlice's eager drain. The handle
// table below backs Host.GetIterator/IterNext/IterNextRaw/IterNextSettled/
// DropIterator for exactly one genvm.Machine's lifetime (see host.go).

type iterState struct {
	// arr/idx back the array/string fast path; iter backs the general
	// Symbol.iterator protocol. Exactly one of arr or iter is set.
	arr  []value.Value
	idx  int
	iter *value.Object
}

func (h *hostAdapter) GetIterator(v value.Value) (int, error) {
	var st *iterState
	switch t := v.(type) {
	case *value.Object:
		if t.Class == "Array" {
			st = &iterState{arr: value.ArrayToSlice(t)}
		} else {
			iter, err := h.ev.getIteratorObject(t)
			if err != nil {
				return 0, err
			}
			st = &iterState{iter: iter}
		}
	case value.String:
		out := make([]value.Value, 0, len(t))
		for _, r := range string(t) {
			out = append(out, value.String(string(r)))
		}
		st = &iterState{arr: out}
	default:
		return 0, h.ev.typeError("value is not iterable")
	}
	h.iters = append(h.iters, st)
	return len(h.iters) - 1, nil
}

func (h *hostAdapter) IterNext(handle int) (value.Value, bool, error) {
	st := h.iters[handle]
	if st.arr != nil {
		if st.idx >= len(st.arr) {
			return value.Undef, true, nil
		}
		v := st.arr[st.idx]
		st.idx++
		return v, false, nil
	}
	return h.ev.iteratorNext(st.iter)
}

// IterNextRaw starts a for-await-of step: the raw iterator-result value
// (possibly a thenable) that the caller must await before calling
// IterNextSettled. This engine's iterators are all synchronous under the
// hood, so the raw value IS already the settled {value, done} shape;
// IterNextSettled below just re-reads it without doing a second call.
func (h *hostAdapter) IterNextRaw(handle int) (value.Value, error) {
	st := h.iters[handle]
	if st.arr != nil {
		if st.idx >= len(st.arr) {
			return doneResult(h.ev), nil
		}
		v := st.arr[st.idx]
		return valueResult(h.ev, v, false), nil
	}
	nextVal, err := value.Get(st.iter, "next", st.iter)
	if err != nil {
		return nil, err
	}
	next, ok := nextVal.(*value.Object)
	if !ok || next.Call == nil {
		return nil, h.ev.typeError("iterator has no next method")
	}
	return next.Call(st.iter, nil)
}

func (h *hostAdapter) IterNextSettled(handle int, resolved value.Value) (value.Value, bool, error) {
	st := h.iters[handle]
	ro, ok := resolved.(*value.Object)
	if !ok {
		return nil, false, h.ev.typeError("iterator result is not an object")
	}
	done, err := value.Get(ro, "done", ro)
	if err != nil {
		return nil, false, err
	}
	val, err := value.Get(ro, "value", ro)
	if err != nil {
		return nil, false, err
	}
	if st.arr != nil && !value.ToBoolean(done) {
		st.idx++
	}
	return val, value.ToBoolean(done), nil
}

func (h *hostAdapter) DropIterator(handle int) {
	// Handles are append-only per call and the slice dies with the
	// adapter, so there's nothing to release.
}

func doneResult(ev *Evaluator) *value.Object {
	o := ev.realm.NewObject()
	o.SetData("done", value.Bool(true))
	o.SetData("value", value.Undef)
	return o
}

func valueResult(ev *Evaluator, v value.Value, done bool) *value.Object {
	o := ev.realm.NewObject()
	o.SetData("done", value.Bool(done))
	o.SetData("value", v)
	return o
}
