package stdlib

import (
	"github.com/jsrt/jsrt/eval"
	"github.com/jsrt/jsrt/value"
)

func installSymbol(ev *eval.Evaluator) {
	r := ev.Realm()
	proto := r.SymbolProto
	registry := map[string]value.Symbol{}

	ctor := value.NewNativeFunction(r.FunctionProto, "Symbol", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		desc := ""
		if d := arg(args, 0); d != value.Undef {
			desc = value.ToStringValue(d)
		}
		return value.NewSymbol(desc), nil
	})
	ctor.SetHidden("prototype", proto)

	ctor.SetHidden("iterator", value.SymbolIterator)
	ctor.SetHidden("asyncIterator", value.SymbolAsyncIterator)
	ctor.SetHidden("toStringTag", value.SymbolToStringTag)
	ctor.SetHidden("hasInstance", value.SymbolHasInstance)

	method(ev, ctor, "for", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		key := value.ToStringValue(arg(args, 0))
		if s, ok := registry[key]; ok {
			return s, nil
		}
		s := value.NewSymbol(key)
		registry[key] = s
		return s, nil
	})
	method(ev, ctor, "keyFor", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		sym, ok := arg(args, 0).(value.Symbol)
		if !ok {
			return nil, ev.TypeError("%s is not a symbol", value.ToStringValue(arg(args, 0)))
		}
		for k, s := range registry {
			if s == sym {
				return value.String(k), nil
			}
		}
		return value.Undef, nil
	})

	method(ev, proto, "toString", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		s, ok := this.(value.Symbol)
		if !ok {
			return value.String("Symbol()"), nil
		}
		return value.String("Symbol(" + s.Description + ")"), nil
	})

	global(ev, "Symbol", ctor)
}
