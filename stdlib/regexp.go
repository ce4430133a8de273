package stdlib

import (
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/jsrt/jsrt/eval"
	"github.com/jsrt/jsrt/value"
)

// regexpData is the internal slot a RegExp object carries: the compiled
// regexp2 pattern plus the source/flags it was built from (regexp2 doesn't
// expose these back off a *regexp2.Regexp once compiled).
type regexpData struct {
	re     *regexp2.Regexp
	source string
	flags  string
}

func compileRegexp(pattern, flags string) (*regexp2.Regexp, error) {
	opts := regexp2.RegexOptions(0)
	for _, f := range flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'x':
			opts |= regexp2.IgnorePatternWhitespace
		case 'u', 'g', 'y':
			// unicode/global/sticky are tracked via flags string and lastIndex,
			// not regexp2 compile options.
		}
	}
	return regexp2.Compile(pattern, opts)
}

func installRegExp(ev *eval.Evaluator) {
	r := ev.Realm()
	proto := r.RegExpProto

	build := func(pattern, flags string) (*value.Object, error) {
		re, err := compileRegexp(pattern, flags)
		if err != nil {
			return nil, eval.ThrowValue(ev.NewError("SyntaxError", "Invalid regular expression: "+err.Error()))
		}
		o := value.NewObject(proto)
		o.Class = "RegExp"
		o.Internal = &regexpData{re: re, source: pattern, flags: flags}
		o.SetData("source", value.String(pattern))
		o.SetData("flags", value.String(flags))
		o.SetData("global", value.Bool(strings.Contains(flags, "g")))
		o.SetData("ignoreCase", value.Bool(strings.Contains(flags, "i")))
		o.SetData("multiline", value.Bool(strings.Contains(flags, "m")))
		o.SetData("sticky", value.Bool(strings.Contains(flags, "y")))
		o.SetData("unicode", value.Bool(strings.Contains(flags, "u")))
		o.SetData("lastIndex", value.Number(0))
		return o, nil
	}

	eval.SetRegexpCompiler(func(_ *eval.Realm, pattern, flags string) (*value.Object, error) {
		return build(pattern, flags)
	})

	ctor := value.NewConstructor(r.FunctionProto, "RegExp", 2, func(_ value.Value, args []value.Value) (value.Value, error) {
		return regexpFromArgs(ev, build, args)
	}, func(args []value.Value, _ *value.Object) (value.Value, error) {
		return regexpFromArgs(ev, build, args)
	})
	ctor.SetHidden("prototype", proto)
	proto.SetHidden("constructor", ctor)

	method(ev, proto, "test", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		d, err := thisRegexp(ev, this)
		if err != nil {
			return nil, err
		}
		m, err := d.re.FindStringMatch(value.ToStringValue(arg(args, 0)))
		if err != nil {
			return nil, err
		}
		return value.Bool(m != nil), nil
	})

	method(ev, proto, "exec", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		d, err := thisRegexp(ev, this)
		if err != nil {
			return nil, err
		}
		o := this.(*value.Object)
		s := value.ToStringValue(arg(args, 0))
		start := 0
		if d.isGlobalOrSticky(o) {
			li, _ := value.Get(o, "lastIndex", o)
			start = int(value.ToNumber(li))
		}
		if start < 0 || start > len(s) {
			o.SetData("lastIndex", value.Number(0))
			return value.NullVal, nil
		}
		m, err := d.re.FindStringMatch(s[start:])
		if err != nil {
			return nil, err
		}
		if m == nil {
			if d.isGlobalOrSticky(o) {
				o.SetData("lastIndex", value.Number(0))
			}
			return value.NullVal, nil
		}
		if d.isGlobalOrSticky(o) {
			o.SetData("lastIndex", value.Number(float64(start+m.Index+m.Length)))
		}
		return matchToArray(ev, m, start), nil
	})

	method(ev, proto, "toString", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		o, ok := this.(*value.Object)
		if !ok {
			return value.String("/(?:)/"), nil
		}
		src, _ := value.Get(o, "source", o)
		flags, _ := value.Get(o, "flags", o)
		return value.String("/" + value.ToStringValue(src) + "/" + value.ToStringValue(flags)), nil
	})

	global(ev, "RegExp", ctor)
}

func regexpFromArgs(ev *eval.Evaluator, build func(string, string) (*value.Object, error), args []value.Value) (value.Value, error) {
	first := arg(args, 0)
	if o, ok := first.(*value.Object); ok {
		if d, ok := o.Internal.(*regexpData); ok {
			flags := d.flags
			if f := arg(args, 1); f != value.Undef {
				flags = value.ToStringValue(f)
			}
			return build(d.source, flags)
		}
	}
	pattern := ""
	if first != value.Undef {
		pattern = value.ToStringValue(first)
	}
	flags := ""
	if f := arg(args, 1); f != value.Undef {
		flags = value.ToStringValue(f)
	}
	return build(pattern, flags)
}

func thisRegexp(ev *eval.Evaluator, this value.Value) (*regexpData, error) {
	o, ok := this.(*value.Object)
	if !ok {
		return nil, ev.TypeError("Method RegExp.prototype called on incompatible receiver")
	}
	d, ok := o.Internal.(*regexpData)
	if !ok {
		return nil, ev.TypeError("Method RegExp.prototype called on incompatible receiver")
	}
	return d, nil
}

func (d *regexpData) isGlobalOrSticky(o *value.Object) bool {
	return strings.Contains(d.flags, "g") || strings.Contains(d.flags, "y")
}

func matchToArray(ev *eval.Evaluator, m *regexp2.Match, offset int) *value.Object {
	r := ev.Realm()
	groups := m.Groups()
	elems := make([]value.Value, 0, len(groups))
	var named *value.Object
	for i, g := range groups {
		if i == 0 {
			elems = append(elems, value.String(m.String()))
			continue
		}
		if len(g.Captures) == 0 {
			elems = append(elems, value.Undef)
		} else {
			elems = append(elems, value.String(g.String()))
		}
		if g.Name != "" && g.Name != intToStr(i) {
			if named == nil {
				named = r.NewObject()
			}
			if len(g.Captures) == 0 {
				named.SetData(g.Name, value.Undef)
			} else {
				named.SetData(g.Name, value.String(g.String()))
			}
		}
	}
	arr := r.NewArray(elems)
	arr.SetData("index", value.Number(float64(offset+m.Index)))
	arr.SetData("input", value.String(m.String()))
	if named != nil {
		arr.SetData("groups", named)
	} else {
		arr.SetData("groups", value.Undef)
	}
	return arr
}

func intToStr(i int) string {
	return strconv.Itoa(i)
}

// regexpDataOf reports whether v is a RegExp object, returning its internal
// compiled-pattern slot — the shared gate String.prototype's split/replace/
// match/matchAll use to switch from plain-substring to pattern matching.
func regexpDataOf(v value.Value) (*regexpData, bool) {
	o, ok := v.(*value.Object)
	if !ok {
		return nil, false
	}
	d, ok := o.Internal.(*regexpData)
	return d, ok
}

func globalRegExpCtor(ev *eval.Evaluator) value.Value {
	g := ev.Realm().Global
	v, _ := value.Get(g, "RegExp", g)
	return v
}

func regexpSplit(d *regexpData, s string) []value.Value {
	var out []value.Value
	rest := s
	for {
		m, err := d.re.FindStringMatch(rest)
		if err != nil || m == nil || m.Length == 0 && m.Index == len(rest) {
			break
		}
		out = append(out, value.String(rest[:m.Index]))
		rest = rest[m.Index+m.Length:]
		if m.Length == 0 {
			if len(rest) == 0 {
				break
			}
			out[len(out)-1] = value.String(value.ToStringValue(out[len(out)-1]) + rest[:1])
			rest = rest[1:]
		}
	}
	out = append(out, value.String(rest))
	return out
}

func regexpMatch(ev *eval.Evaluator, d *regexpData, s string) (value.Value, error) {
	if !strings.Contains(d.flags, "g") {
		m, err := d.re.FindStringMatch(s)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return value.NullVal, nil
		}
		return matchToArray(ev, m, 0), nil
	}
	var elems []value.Value
	m, err := d.re.FindStringMatch(s)
	for m != nil && err == nil {
		elems = append(elems, value.String(m.String()))
		m, err = d.re.FindNextMatch(m)
	}
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return value.NullVal, nil
	}
	return ev.Realm().NewArray(elems), nil
}

func regexpMatchAll(ev *eval.Evaluator, d *regexpData, s string) (value.Value, error) {
	var items []value.Value
	m, err := d.re.FindStringMatch(s)
	for m != nil && err == nil {
		items = append(items, matchToArray(ev, m, 0))
		m, err = d.re.FindNextMatch(m)
	}
	if err != nil {
		return nil, err
	}
	return newArrayIterator(ev, items), nil
}

func regexpReplace(ev *eval.Evaluator, d *regexpData, s string, replacement value.Value, all bool) (value.Value, error) {
	fn, isFn := replacement.(*value.Object)
	callReplacement := func(m *regexp2.Match) (string, error) {
		if isFn && fn.Call != nil {
			groups := m.Groups()
			callArgs := make([]value.Value, 0, len(groups)+2)
			callArgs = append(callArgs, value.String(m.String()))
			for _, g := range groups[1:] {
				if len(g.Captures) == 0 {
					callArgs = append(callArgs, value.Undef)
				} else {
					callArgs = append(callArgs, value.String(g.String()))
				}
			}
			callArgs = append(callArgs, value.Number(float64(m.Index)), value.String(s))
			rv, err := ev.Call(fn, value.Undef, callArgs)
			if err != nil {
				return "", err
			}
			return value.ToStringValue(rv), nil
		}
		return expandReplacement(value.ToStringValue(replacement), m, s), nil
	}

	var b strings.Builder
	pos := 0
	m, err := d.re.FindStringMatch(s)
	for m != nil && err == nil {
		b.WriteString(s[pos:m.Index])
		out, cerr := callReplacement(m)
		if cerr != nil {
			return nil, cerr
		}
		b.WriteString(out)
		pos = m.Index + m.Length
		if !all {
			break
		}
		m, err = d.re.FindNextMatch(m)
	}
	if err != nil {
		return nil, err
	}
	b.WriteString(s[pos:])
	return value.String(b.String()), nil
}

func expandReplacement(repl string, m *regexp2.Match, s string) string {
	var b strings.Builder
	groups := m.Groups()
	for i := 0; i < len(repl); i++ {
		if repl[i] != '$' || i+1 >= len(repl) {
			b.WriteByte(repl[i])
			continue
		}
		switch c := repl[i+1]; {
		case c == '$':
			b.WriteByte('$')
			i++
		case c == '&':
			b.WriteString(m.String())
			i++
		case c == '`':
			b.WriteString(s[:m.Index])
			i++
		case c == '\'':
			b.WriteString(s[m.Index+m.Length:])
			i++
		case c >= '0' && c <= '9':
			j := i + 1
			for j < len(repl) && repl[j] >= '0' && repl[j] <= '9' {
				j++
			}
			n, _ := strconv.Atoi(repl[i+1 : j])
			if n > 0 && n < len(groups) {
				if len(groups[n].Captures) > 0 {
					b.WriteString(groups[n].String())
				}
				i = j - 1
			} else {
				b.WriteByte(repl[i])
			}
		default:
			b.WriteByte(repl[i])
		}
	}
	return b.String()
}
