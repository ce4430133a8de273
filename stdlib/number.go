package stdlib

import (
	"math"
	"strconv"

	"github.com/jsrt/jsrt/eval"
	"github.com/jsrt/jsrt/value"
)

func installNumber(ev *eval.Evaluator) {
	r := ev.Realm()
	proto := r.NumberProto

	ctor := value.NewConstructor(r.FunctionProto, "Number", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.Number(0), nil
		}
		return value.Number(value.ToNumber(args[0])), nil
	}, func(args []value.Value, _ *value.Object) (value.Value, error) {
		n := 0.0
		if len(args) > 0 {
			n = value.ToNumber(args[0])
		}
		o := value.NewObject(proto)
		o.Class = "Number"
		o.Internal = value.Number(n)
		return o, nil
	})
	ctor.SetHidden("prototype", proto)
	proto.SetHidden("constructor", ctor)

	ctor.SetHidden("MAX_SAFE_INTEGER", value.Number(9007199254740991))
	ctor.SetHidden("MIN_SAFE_INTEGER", value.Number(-9007199254740991))
	ctor.SetHidden("MAX_VALUE", value.Number(math.MaxFloat64))
	ctor.SetHidden("MIN_VALUE", value.Number(5e-324))
	ctor.SetHidden("EPSILON", value.Number(2.220446049250313e-16))
	ctor.SetHidden("POSITIVE_INFINITY", value.Number(math.Inf(1)))
	ctor.SetHidden("NEGATIVE_INFINITY", value.Number(math.Inf(-1)))
	ctor.SetHidden("NaN", value.Number(math.NaN()))

	method(ev, ctor, "isInteger", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		n, ok := arg(args, 0).(value.Number)
		if !ok {
			return value.Bool(false), nil
		}
		f := float64(n)
		return value.Bool(!math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f)), nil
	})
	method(ev, ctor, "isSafeInteger", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		n, ok := arg(args, 0).(value.Number)
		if !ok {
			return value.Bool(false), nil
		}
		f := float64(n)
		return value.Bool(!math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f) && math.Abs(f) <= 9007199254740991), nil
	})
	method(ev, ctor, "isFinite", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		n, ok := arg(args, 0).(value.Number)
		return value.Bool(ok && !math.IsNaN(float64(n)) && !math.IsInf(float64(n), 0)), nil
	})
	method(ev, ctor, "isNaN", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		n, ok := arg(args, 0).(value.Number)
		return value.Bool(ok && math.IsNaN(float64(n))), nil
	})
	method(ev, ctor, "parseFloat", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		return value.Number(parseFloatPrefix(value.ToStringValue(arg(args, 0)))), nil
	})
	method(ev, ctor, "parseInt", 2, func(_ value.Value, args []value.Value) (value.Value, error) {
		radix := 10
		if len(args) > 1 && args[1] != value.Undef {
			radix = int(value.ToNumber(args[1]))
		}
		return value.Number(parseIntRadix(value.ToStringValue(arg(args, 0)), radix)), nil
	})

	method(ev, proto, "toString", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		n := thisNumber(this)
		radix := 10
		if len(args) > 0 && args[0] != value.Undef {
			radix = int(value.ToNumber(args[0]))
		}
		if radix == 10 {
			return value.String(value.NumberToString(n)), nil
		}
		if n == math.Trunc(n) {
			return value.String(strconv.FormatInt(int64(n), radix)), nil
		}
		return value.String(strconv.FormatFloat(n, 'g', -1, 64)), nil
	})
	method(ev, proto, "valueOf", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		return value.Number(thisNumber(this)), nil
	})
	method(ev, proto, "toFixed", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		digits := int(value.ToNumber(arg(args, 0)))
		if digits < 0 || digits > 100 {
			return nil, ev.RangeError("toFixed() digits argument must be between 0 and 100")
		}
		return value.String(strconv.FormatFloat(thisNumber(this), 'f', digits, 64)), nil
	})
	method(ev, proto, "toPrecision", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 || args[0] == value.Undef {
			return value.String(value.NumberToString(thisNumber(this))), nil
		}
		prec := int(value.ToNumber(args[0]))
		return value.String(strconv.FormatFloat(thisNumber(this), 'g', prec, 64)), nil
	})

	global(ev, "Number", ctor)

	global(ev, "NaN", value.Number(math.NaN()))
	global(ev, "Infinity", value.Number(math.Inf(1)))
	global(ev, "parseFloat", ctor.GetOwn("parseFloat").Value)
	global(ev, "parseInt", ctor.GetOwn("parseInt").Value)
	global(ev, "isNaN", r.NewFunction("isNaN", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		return value.Bool(math.IsNaN(value.ToNumber(arg(args, 0)))), nil
	}))
	global(ev, "isFinite", r.NewFunction("isFinite", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		f := value.ToNumber(arg(args, 0))
		return value.Bool(!math.IsNaN(f) && !math.IsInf(f, 0)), nil
	}))
}

func thisNumber(this value.Value) float64 {
	if n, ok := this.(value.Number); ok {
		return float64(n)
	}
	if o, ok := this.(*value.Object); ok {
		if n, ok := o.Internal.(value.Number); ok {
			return float64(n)
		}
	}
	return value.ToNumber(this)
}

func parseFloatPrefix(s string) float64 {
	s = trimLeadingSpace(s)
	i := 0
	n := len(s)
	if i < n && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < n && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i < n && s[i] == '.' {
		i++
		for i < n && s[i] >= '0' && s[i] <= '9' {
			i++
		}
	}
	if i < n && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < n && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < n && s[k] >= '0' && s[k] <= '9' {
			k++
		}
		if k > j {
			i = k
		}
	}
	if i == start || (i == start+1 && s[start] == '.') {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func parseIntRadix(s string, radix int) float64 {
	s = trimLeadingSpace(s)
	neg := false
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	if radix == 0 {
		radix = 10
	}
	if (radix == 16 || radix == 0) && i+1 < len(s) && s[i] == '0' && (s[i+1] == 'x' || s[i+1] == 'X') {
		radix = 16
		i += 2
	}
	start := i
	for i < len(s) && digitValue(s[i]) < radix {
		i++
	}
	if i == start {
		return math.NaN()
	}
	n, err := strconv.ParseInt(s[start:i], radix, 64)
	if err != nil {
		// overflow: fall back to float accumulation
		var f float64
		for _, c := range s[start:i] {
			f = f*float64(radix) + float64(digitValue(byte(c)))
		}
		if neg {
			return -f
		}
		return f
	}
	if neg {
		return -float64(n)
	}
	return float64(n)
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	default:
		return 99
	}
}

func trimLeadingSpace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r' || s[i] == '\v' || s[i] == '\f') {
		i++
	}
	return s[i:]
}
