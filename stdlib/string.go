package stdlib

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/jsrt/jsrt/eval"
	"github.com/jsrt/jsrt/value"
)

func installString(ev *eval.Evaluator) {
	r := ev.Realm()
	proto := r.StringProto

	ctor := value.NewConstructor(r.FunctionProto, "String", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.String(""), nil
		}
		return value.String(value.ToStringValue(args[0])), nil
	}, func(args []value.Value, _ *value.Object) (value.Value, error) {
		s := ""
		if len(args) > 0 {
			s = value.ToStringValue(args[0])
		}
		o := value.NewObject(proto)
		o.Class = "String"
		o.Internal = value.String(s)
		o.SetHidden("length", value.Number(utf8.RuneCountInString(s)))
		return o, nil
	})
	ctor.SetHidden("prototype", proto)
	proto.SetHidden("constructor", ctor)

	method(ev, ctor, "fromCharCode", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		var b strings.Builder
		for _, a := range args {
			b.WriteRune(rune(int(value.ToNumber(a))))
		}
		return value.String(b.String()), nil
	})

	def := func(name string, length int, fn value.CallableFunc) { method(ev, proto, name, length, fn) }

	def("toString", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		return value.String(thisString(this)), nil
	})
	def("valueOf", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		return value.String(thisString(this)), nil
	})
	def("charAt", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		runes := []rune(thisString(this))
		i := int(value.ToNumber(arg(args, 0)))
		if i < 0 || i >= len(runes) {
			return value.String(""), nil
		}
		return value.String(string(runes[i])), nil
	})
	def("charCodeAt", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		runes := []rune(thisString(this))
		i := int(value.ToNumber(arg(args, 0)))
		if i < 0 || i >= len(runes) {
			return value.Number(math.NaN()), nil
		}
		return value.Number(runes[i]), nil
	})
	def("codePointAt", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		runes := []rune(thisString(this))
		i := int(value.ToNumber(arg(args, 0)))
		if i < 0 || i >= len(runes) {
			return value.Undef, nil
		}
		return value.Number(runes[i]), nil
	})
	def("at", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		runes := []rune(thisString(this))
		i := int(value.ToNumber(arg(args, 0)))
		if i < 0 {
			i += len(runes)
		}
		if i < 0 || i >= len(runes) {
			return value.Undef, nil
		}
		return value.String(string(runes[i])), nil
	})
	def("indexOf", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s := thisString(this)
		needle := value.ToStringValue(arg(args, 0))
		from := 0
		if len(args) > 1 {
			from = normalizeIndex(value.ToNumber(args[1]), len(s))
		}
		if from > len(s) {
			from = len(s)
		}
		idx := strings.Index(s[from:], needle)
		if idx < 0 {
			return value.Number(-1), nil
		}
		return value.Number(idx + from), nil
	})
	def("lastIndexOf", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s := thisString(this)
		needle := value.ToStringValue(arg(args, 0))
		return value.Number(strings.LastIndex(s, needle)), nil
	})
	def("includes", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.Bool(strings.Contains(thisString(this), value.ToStringValue(arg(args, 0)))), nil
	})
	def("startsWith", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s := thisString(this)
		needle := value.ToStringValue(arg(args, 0))
		from := 0
		if len(args) > 1 {
			from = normalizeIndex(value.ToNumber(args[1]), len(s))
		}
		if from > len(s) {
			return value.Bool(false), nil
		}
		return value.Bool(strings.HasPrefix(s[from:], needle)), nil
	})
	def("endsWith", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		s := thisString(this)
		end := len(s)
		if len(args) > 1 {
			end = normalizeIndex(value.ToNumber(args[1]), len(s))
		}
		if end > len(s) {
			end = len(s)
		}
		return value.Bool(strings.HasSuffix(s[:end], value.ToStringValue(arg(args, 0)))), nil
	})
	def("slice", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		runes := []rune(thisString(this))
		start, end := sliceBounds(args, len(runes))
		if start >= end {
			return value.String(""), nil
		}
		return value.String(string(runes[start:end])), nil
	})
	def("substring", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		runes := []rune(thisString(this))
		n := len(runes)
		a0 := clampIndex(value.ToNumber(arg(args, 0)), n)
		a1 := n
		if len(args) > 1 && args[1] != value.Undef {
			a1 = clampIndex(value.ToNumber(args[1]), n)
		}
		if a0 > a1 {
			a0, a1 = a1, a0
		}
		return value.String(string(runes[a0:a1])), nil
	})
	def("split", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		s := thisString(this)
		sep := arg(args, 0)
		if d, ok := regexpDataOf(sep); ok {
			return r.NewArray(regexpSplit(d, s)), nil
		}
		var parts []string
		if sep == value.Undef {
			parts = []string{s}
		} else {
			parts = strings.Split(s, value.ToStringValue(sep))
		}
		out := make([]value.Value, len(parts))
		for i, p := range parts {
			out[i] = value.String(p)
		}
		return r.NewArray(out), nil
	})
	def("replace", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		if d, ok := regexpDataOf(arg(args, 0)); ok {
			return regexpReplace(ev, d, thisString(this), arg(args, 1), strings.Contains(d.flags, "g"))
		}
		return stringReplace(ev, this, args, false)
	})
	def("replaceAll", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		if d, ok := regexpDataOf(arg(args, 0)); ok {
			return regexpReplace(ev, d, thisString(this), arg(args, 1), true)
		}
		return stringReplace(ev, this, args, true)
	})
	def("match", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		d, ok := regexpDataOf(arg(args, 0))
		if !ok {
			built, err := ev.Call(globalRegExpCtor(ev), value.Undef, []value.Value{arg(args, 0)})
			if err != nil {
				return nil, err
			}
			d, _ = regexpDataOf(built)
		}
		return regexpMatch(ev, d, thisString(this))
	})
	def("matchAll", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		d, ok := regexpDataOf(arg(args, 0))
		if !ok {
			return nil, ev.TypeError("String.prototype.matchAll called with a non-global RegExp argument")
		}
		return regexpMatchAll(ev, d, thisString(this))
	})
	def("toUpperCase", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		return value.String(strings.ToUpper(thisString(this))), nil
	})
	def("toLowerCase", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		return value.String(strings.ToLower(thisString(this))), nil
	})
	def("trim", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		return value.String(strings.TrimSpace(thisString(this))), nil
	})
	def("trimStart", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		return value.String(strings.TrimLeft(thisString(this), " \t\n\r\v\f")), nil
	})
	def("trimEnd", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		return value.String(strings.TrimRight(thisString(this), " \t\n\r\v\f")), nil
	})
	def("padStart", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.String(pad(thisString(this), args, true)), nil
	})
	def("padEnd", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.String(pad(thisString(this), args, false)), nil
	})
	def("repeat", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		n := int(value.ToNumber(arg(args, 0)))
		if n < 0 {
			return nil, ev.RangeError("Invalid count value: %d", n)
		}
		return value.String(strings.Repeat(thisString(this), n)), nil
	})
	def("concat", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		var b strings.Builder
		b.WriteString(thisString(this))
		for _, a := range args {
			b.WriteString(value.ToStringValue(a))
		}
		return value.String(b.String()), nil
	})
	def("normalize", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		return value.String(thisString(this)), nil
	})

	global(ev, "String", ctor)
}

func thisString(this value.Value) string {
	if s, ok := this.(value.String); ok {
		return string(s)
	}
	if o, ok := this.(*value.Object); ok {
		if s, ok := o.Internal.(value.String); ok {
			return string(s)
		}
	}
	return value.ToStringValue(this)
}

func clampIndex(f float64, n int) int {
	if f < 0 || f != f {
		return 0
	}
	if f > float64(n) {
		return n
	}
	return int(f)
}

func pad(s string, args []value.Value, start bool) string {
	target := int(value.ToNumber(arg(args, 0)))
	fill := " "
	if len(args) > 1 && args[1] != value.Undef {
		fill = value.ToStringValue(args[1])
	}
	if fill == "" || utf8.RuneCountInString(s) >= target {
		return s
	}
	need := target - utf8.RuneCountInString(s)
	var b strings.Builder
	fillRunes := []rune(fill)
	for i := 0; i < need; i++ {
		b.WriteRune(fillRunes[i%len(fillRunes)])
	}
	if start {
		return b.String() + s
	}
	return s + b.String()
}

func stringReplace(ev *eval.Evaluator, this value.Value, args []value.Value, all bool) (value.Value, error) {
	s := thisString(this)
	pattern := arg(args, 0)
	replacement := arg(args, 1)

	replaceOne := func(match string) (string, error) {
		if fn, ok := replacement.(*value.Object); ok && fn.Call != nil {
			rv, err := ev.Call(fn, value.Undef, []value.Value{value.String(match)})
			if err != nil {
				return "", err
			}
			return value.ToStringValue(rv), nil
		}
		return value.ToStringValue(replacement), nil
	}

	needle := value.ToStringValue(pattern)
	if needle == "" {
		out, err := replaceOne("")
		if err != nil {
			return nil, err
		}
		return value.String(out + s), nil
	}
	if !all {
		idx := strings.Index(s, needle)
		if idx < 0 {
			return value.String(s), nil
		}
		out, err := replaceOne(needle)
		if err != nil {
			return nil, err
		}
		return value.String(s[:idx] + out + s[idx+len(needle):]), nil
	}
	var b strings.Builder
	rest := s
	for {
		idx := strings.Index(rest, needle)
		if idx < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:idx])
		out, err := replaceOne(needle)
		if err != nil {
			return nil, err
		}
		b.WriteString(out)
		rest = rest[idx+len(needle):]
	}
	return value.String(b.String()), nil
}
