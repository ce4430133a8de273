package stdlib

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jsrt/jsrt/eval"
	"github.com/jsrt/jsrt/value"
)

func installArray(ev *eval.Evaluator) {
	r := ev.Realm()
	proto := r.ArrayProto

	ctor := value.NewConstructor(r.FunctionProto, "Array", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		return arrayConstruct(ev, args)
	}, func(args []value.Value, _ *value.Object) (value.Value, error) {
		return arrayConstruct(ev, args)
	})
	ctor.SetHidden("prototype", proto)
	proto.SetHidden("constructor", ctor)

	method(ev, ctor, "isArray", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		o, ok := arg(args, 0).(*value.Object)
		return value.Bool(ok && o.Class == "Array"), nil
	})
	method(ev, ctor, "of", 0, func(_ value.Value, args []value.Value) (value.Value, error) {
		return r.NewArray(append([]value.Value{}, args...)), nil
	})
	method(ev, ctor, "from", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		src := arg(args, 0)
		mapFn, _ := arg(args, 1).(*value.Object)
		var items []value.Value
		if o, ok := src.(*value.Object); ok {
			iterFn, _ := value.Get(o, value.SymbolIterator, o)
			if iterFn == value.Undef || iterFn == nil {
				items = arrayLikeToSlice(o)
			}
		}
		if items == nil {
			list, err := ev.IterateToSlice(src)
			if err != nil {
				if o, ok := src.(*value.Object); ok {
					items = arrayLikeToSlice(o)
				} else {
					return nil, err
				}
			} else {
				items = list
			}
		}
		if mapFn != nil && mapFn.Call != nil {
			out := make([]value.Value, len(items))
			for i, v := range items {
				mv, err := ev.Call(mapFn, value.Undef, []value.Value{v, value.Number(i)})
				if err != nil {
					return nil, err
				}
				out[i] = mv
			}
			items = out
		}
		return r.NewArray(items), nil
	})

	method(ev, proto, "push", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		elems := append(value.ArrayToSlice(a), args...)
		setArrayElems(a, elems)
		return value.Number(len(elems)), nil
	})
	method(ev, proto, "pop", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		n := value.ArrayLength(a)
		if n == 0 {
			return value.Undef, nil
		}
		last := value.ArrayGet(a, n-1)
		value.ArraySetLength(a, n-1)
		return last, nil
	})
	method(ev, proto, "shift", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		elems := value.ArrayToSlice(a)
		if len(elems) == 0 {
			return value.Undef, nil
		}
		first := elems[0]
		setArrayElems(a, elems[1:])
		return first, nil
	})
	method(ev, proto, "unshift", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		elems := append(append([]value.Value{}, args...), value.ArrayToSlice(a)...)
		setArrayElems(a, elems)
		return value.Number(len(elems)), nil
	})
	method(ev, proto, "slice", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		elems := value.ArrayToSlice(a)
		start, end := sliceBounds(args, len(elems))
		if start >= end {
			return r.NewArray(nil), nil
		}
		return r.NewArray(append([]value.Value{}, elems[start:end]...)), nil
	})
	method(ev, proto, "splice", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		elems := value.ArrayToSlice(a)
		n := len(elems)
		start := normalizeIndex(value.ToNumber(arg(args, 0)), n)
		deleteCount := n - start
		if len(args) > 1 {
			dc := int(value.ToNumber(args[1]))
			if dc < 0 {
				dc = 0
			}
			if dc > n-start {
				dc = n - start
			}
			deleteCount = dc
		}
		removed := append([]value.Value{}, elems[start:start+deleteCount]...)
		var insert []value.Value
		if len(args) > 2 {
			insert = args[2:]
		}
		result := append(append([]value.Value{}, elems[:start]...), insert...)
		result = append(result, elems[start+deleteCount:]...)
		setArrayElems(a, result)
		return r.NewArray(removed), nil
	})
	method(ev, proto, "concat", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		out := append([]value.Value{}, value.ArrayToSlice(a)...)
		for _, av := range args {
			if ao, ok := av.(*value.Object); ok && ao.Class == "Array" {
				out = append(out, value.ArrayToSlice(ao)...)
			} else {
				out = append(out, av)
			}
		}
		return r.NewArray(out), nil
	})
	method(ev, proto, "join", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		sep := ","
		if s := arg(args, 0); s != value.Undef {
			sep = value.ToStringValue(s)
		}
		elems := value.ArrayToSlice(a)
		parts := make([]string, len(elems))
		for i, v := range elems {
			if value.IsNullish(v) {
				parts[i] = ""
			} else {
				parts[i] = value.ToStringValue(v)
			}
		}
		return value.String(strings.Join(parts, sep)), nil
	})
	method(ev, proto, "reverse", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		elems := value.ArrayToSlice(a)
		for i, j := 0, len(elems)-1; i < j; i, j = i+1, j-1 {
			elems[i], elems[j] = elems[j], elems[i]
		}
		setArrayElems(a, elems)
		return a, nil
	})
	method(ev, proto, "toReversed", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		elems := value.ArrayToSlice(a)
		out := make([]value.Value, len(elems))
		for i, v := range elems {
			out[len(elems)-1-i] = v
		}
		return r.NewArray(out), nil
	})
	method(ev, proto, "fill", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		elems := value.ArrayToSlice(a)
		v := arg(args, 0)
		start, end := 0, len(elems)
		if len(args) > 1 {
			start = normalizeIndex(value.ToNumber(args[1]), len(elems))
		}
		if len(args) > 2 {
			end = normalizeIndex(value.ToNumber(args[2]), len(elems))
		}
		for i := start; i < end; i++ {
			elems[i] = v
		}
		setArrayElems(a, elems)
		return a, nil
	})
	method(ev, proto, "indexOf", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		elems := value.ArrayToSlice(a)
		target := arg(args, 0)
		start := 0
		if len(args) > 1 {
			start = normalizeIndex(value.ToNumber(args[1]), len(elems))
		}
		for i := start; i < len(elems); i++ {
			if value.StrictEquals(elems[i], target) {
				return value.Number(i), nil
			}
		}
		return value.Number(-1), nil
	})
	method(ev, proto, "lastIndexOf", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		elems := value.ArrayToSlice(a)
		target := arg(args, 0)
		for i := len(elems) - 1; i >= 0; i-- {
			if value.StrictEquals(elems[i], target) {
				return value.Number(i), nil
			}
		}
		return value.Number(-1), nil
	})
	method(ev, proto, "includes", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		target := arg(args, 0)
		for _, v := range value.ArrayToSlice(a) {
			if sameValue(v, target) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	})

	method(ev, proto, "forEach", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.Undef, eachElement(ev, this, args, func(v value.Value, i int) error {
			_, err := ev.Call(arg(args, 0), arg(args, 1), []value.Value{v, value.Number(i), this})
			return err
		})
	})
	method(ev, proto, "map", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		elems := value.ArrayToSlice(a)
		out := make([]value.Value, len(elems))
		for i, v := range elems {
			mv, err := ev.Call(arg(args, 0), arg(args, 1), []value.Value{v, value.Number(i), this})
			if err != nil {
				return nil, err
			}
			out[i] = mv
		}
		return r.NewArray(out), nil
	})
	method(ev, proto, "filter", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		var out []value.Value
		for i, v := range value.ArrayToSlice(a) {
			keep, err := ev.Call(arg(args, 0), arg(args, 1), []value.Value{v, value.Number(i), this})
			if err != nil {
				return nil, err
			}
			if value.ToBoolean(keep) {
				out = append(out, v)
			}
		}
		return r.NewArray(out), nil
	})
	method(ev, proto, "find", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		for i, v := range value.ArrayToSlice(a) {
			match, err := ev.Call(arg(args, 0), arg(args, 1), []value.Value{v, value.Number(i), this})
			if err != nil {
				return nil, err
			}
			if value.ToBoolean(match) {
				return v, nil
			}
		}
		return value.Undef, nil
	})
	method(ev, proto, "findIndex", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		for i, v := range value.ArrayToSlice(a) {
			match, err := ev.Call(arg(args, 0), arg(args, 1), []value.Value{v, value.Number(i), this})
			if err != nil {
				return nil, err
			}
			if value.ToBoolean(match) {
				return value.Number(i), nil
			}
		}
		return value.Number(-1), nil
	})
	method(ev, proto, "findLast", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		elems := value.ArrayToSlice(a)
		for i := len(elems) - 1; i >= 0; i-- {
			match, err := ev.Call(arg(args, 0), arg(args, 1), []value.Value{elems[i], value.Number(i), this})
			if err != nil {
				return nil, err
			}
			if value.ToBoolean(match) {
				return elems[i], nil
			}
		}
		return value.Undef, nil
	})
	method(ev, proto, "some", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		for i, v := range value.ArrayToSlice(a) {
			match, err := ev.Call(arg(args, 0), arg(args, 1), []value.Value{v, value.Number(i), this})
			if err != nil {
				return nil, err
			}
			if value.ToBoolean(match) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	})
	method(ev, proto, "every", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		for i, v := range value.ArrayToSlice(a) {
			match, err := ev.Call(arg(args, 0), arg(args, 1), []value.Value{v, value.Number(i), this})
			if err != nil {
				return nil, err
			}
			if !value.ToBoolean(match) {
				return value.Bool(false), nil
			}
		}
		return value.Bool(true), nil
	})
	method(ev, proto, "reduce", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return reduceArray(ev, this, args, false)
	})
	method(ev, proto, "reduceRight", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return reduceArray(ev, this, args, true)
	})
	method(ev, proto, "flat", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		depth := 1
		if d := arg(args, 0); d != value.Undef {
			depth = int(value.ToNumber(d))
		}
		return r.NewArray(flatten(value.ArrayToSlice(a), depth)), nil
	})
	method(ev, proto, "flatMap", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		var out []value.Value
		for i, v := range value.ArrayToSlice(a) {
			mv, err := ev.Call(arg(args, 0), arg(args, 1), []value.Value{v, value.Number(i), this})
			if err != nil {
				return nil, err
			}
			if mo, ok := mv.(*value.Object); ok && mo.Class == "Array" {
				out = append(out, value.ArrayToSlice(mo)...)
			} else {
				out = append(out, mv)
			}
		}
		return r.NewArray(out), nil
	})
	method(ev, proto, "with", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		elems := append([]value.Value{}, value.ArrayToSlice(a)...)
		idx := int(value.ToNumber(arg(args, 0)))
		if idx < 0 {
			idx += len(elems)
		}
		if idx < 0 || idx >= len(elems) {
			return nil, ev.RangeError("Invalid index : %d", idx)
		}
		elems[idx] = arg(args, 1)
		return r.NewArray(elems), nil
	})
	method(ev, proto, "sort", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		elems := value.ArrayToSlice(a)
		cmp, _ := arg(args, 0).(*value.Object)
		var sortErr error
		sort.SliceStable(elems, func(i, j int) bool {
			if sortErr != nil {
				return false
			}
			ai, aj := elems[i], elems[j]
			if ai == value.Undef {
				return false
			}
			if aj == value.Undef {
				return true
			}
			if cmp != nil && cmp.Call != nil {
				rv, err := ev.Call(cmp, value.Undef, []value.Value{ai, aj})
				if err != nil {
					sortErr = err
					return false
				}
				return value.ToNumber(rv) < 0
			}
			return value.ToStringValue(ai) < value.ToStringValue(aj)
		})
		if sortErr != nil {
			return nil, sortErr
		}
		setArrayElems(a, elems)
		return a, nil
	})
	method(ev, proto, "toSorted", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		elems := append([]value.Value{}, value.ArrayToSlice(a)...)
		sorted := r.NewArray(elems)
		sortFn, err := value.Get(proto, "sort", sorted)
		if err != nil {
			return nil, err
		}
		return ev.Call(sortFn, sorted, args)
	})
	method(ev, proto, "at", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		a, err := toArray(ev, this)
		if err != nil {
			return nil, err
		}
		elems := value.ArrayToSlice(a)
		idx := int(value.ToNumber(arg(args, 0)))
		if idx < 0 {
			idx += len(elems)
		}
		if idx < 0 || idx >= len(elems) {
			return value.Undef, nil
		}
		return elems[idx], nil
	})
	method(ev, proto, "toString", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		joinFn, err := value.Get(proto, "join", this)
		if err != nil {
			return nil, err
		}
		return ev.Call(joinFn, this, nil)
	})
}

func arrayConstruct(ev *eval.Evaluator, args []value.Value) (value.Value, error) {
	r := ev.Realm()
	if len(args) == 1 {
		if n, ok := args[0].(value.Number); ok {
			length := int(n)
			if float64(length) != float64(n) || length < 0 {
				return nil, ev.RangeError("Invalid array length")
			}
			a := r.NewArray(nil)
			value.ArraySetLength(a, length)
			return a, nil
		}
	}
	return r.NewArray(append([]value.Value{}, args...)), nil
}

func toArray(ev *eval.Evaluator, v value.Value) (*value.Object, error) {
	o, ok := v.(*value.Object)
	if !ok {
		return nil, ev.TypeError("Array.prototype method called on non-object")
	}
	return o, nil
}

// setArrayElems replaces a's indexed properties wholesale with elems,
// deleting any stale indices left over from a longer previous length —
// value.ArraySetLength alone only adjusts the length property, it doesn't
// touch the indexed properties themselves.
func setArrayElems(a *value.Object, elems []value.Value) {
	prevLen := value.ArrayLength(a)
	for i, v := range elems {
		value.ArraySet(a, i, v)
	}
	for i := len(elems); i < prevLen; i++ {
		a.DeleteOwn(strconv.Itoa(i))
	}
	value.ArraySetLength(a, len(elems))
}

func sliceBounds(args []value.Value, n int) (int, int) {
	start, end := 0, n
	if len(args) > 0 && args[0] != value.Undef {
		start = normalizeIndex(value.ToNumber(args[0]), n)
	}
	if len(args) > 1 && args[1] != value.Undef {
		end = normalizeIndex(value.ToNumber(args[1]), n)
	}
	return start, end
}

func eachElement(ev *eval.Evaluator, this value.Value, args []value.Value, fn func(value.Value, int) error) error {
	a, err := toArray(ev, this)
	if err != nil {
		return err
	}
	for i, v := range value.ArrayToSlice(a) {
		if err := fn(v, i); err != nil {
			return err
		}
	}
	return nil
}

func reduceArray(ev *eval.Evaluator, this value.Value, args []value.Value, right bool) (value.Value, error) {
	a, err := toArray(ev, this)
	if err != nil {
		return nil, err
	}
	elems := value.ArrayToSlice(a)
	if right {
		elems = append([]value.Value{}, elems...)
		for i, j := 0, len(elems)-1; i < j; i, j = i+1, j-1 {
			elems[i], elems[j] = elems[j], elems[i]
		}
	}
	fn := arg(args, 0)
	var acc value.Value
	start := 0
	if len(args) > 1 {
		acc = args[1]
	} else {
		if len(elems) == 0 {
			return nil, ev.TypeError("Reduce of empty array with no initial value")
		}
		acc = elems[0]
		start = 1
	}
	for i := start; i < len(elems); i++ {
		idx := i
		if right {
			idx = len(elems) - 1 - i
		}
		rv, err := ev.Call(fn, value.Undef, []value.Value{acc, elems[i], value.Number(idx), this})
		if err != nil {
			return nil, err
		}
		acc = rv
	}
	return acc, nil
}

func flatten(elems []value.Value, depth int) []value.Value {
	var out []value.Value
	for _, v := range elems {
		if ao, ok := v.(*value.Object); ok && ao.Class == "Array" && depth > 0 {
			out = append(out, flatten(value.ArrayToSlice(ao), depth-1)...)
		} else {
			out = append(out, v)
		}
	}
	return out
}

