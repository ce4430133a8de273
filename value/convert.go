package value

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ToBoolean implements the ToBoolean abstract operation.
func ToBoolean(v Value) bool {
	switch t := v.(type) {
	case Undefined, Null:
		return false
	case Bool:
		return bool(t)
	case Number:
		return float64(t) != 0 && !math.IsNaN(float64(t))
	case String:
		return len(t) > 0
	case BigInt:
		return t.V.Sign() != 0
	default:
		return true // objects and symbols are always truthy
	}
}

// ToNumber implements the ToNumber abstract operation. Converting a BigInt
// throws a TypeError per spec; callers needing that behavior should check
// Kind() == KindBigInt themselves since ToNumber here has no error return
// (mirrors how the evaluator calls it only after excluding BigInt operands).
func ToNumber(v Value) float64 {
	switch t := v.(type) {
	case Undefined:
		return math.NaN()
	case Null:
		return 0
	case Bool:
		if t {
			return 1
		}
		return 0
	case Number:
		return float64(t)
	case String:
		return stringToNumber(string(t))
	case BigInt:
		f, _ := new(big.Float).SetInt(t.V).Float64()
		return f
	default:
		return math.NaN()
	}
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	if s == "Infinity" || s == "+Infinity" {
		return math.Inf(1)
	}
	if s == "-Infinity" {
		return math.Inf(-1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ToStringValue implements the ToString abstract operation (named to avoid
// colliding with fmt.Stringer's String() on the String value type itself).
func ToStringValue(v Value) string {
	switch t := v.(type) {
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case Bool:
		if t {
			return "true"
		}
		return "false"
	case Number:
		return NumberToString(float64(t))
	case String:
		return string(t)
	case BigInt:
		return t.V.String()
	case Symbol:
		return "Symbol(" + t.Description + ")"
	case *Object:
		return objectToStringFallback(t)
	default:
		return ""
	}
}

// objectToStringFallback is overridden by package eval/stdlib for objects
// that define a callable toString/valueOf (full ToPrimitive); this fallback
// only handles the shape every plain object needs when no such method runs.
var objectToStringFallback = func(o *Object) string {
	return "[object " + o.Class + "]"
}

// SetObjectStringer lets the evaluator install the full ToPrimitive-aware
// object-to-string conversion once it exists, breaking the import cycle
// between value and eval.
func SetObjectStringer(f func(*Object) string) {
	objectToStringFallback = f
}

// NumberToString renders a float64 the way Number.prototype.toString()
// does: shortest round-tripping decimal, "Infinity"/"-Infinity"/"NaN" for
// the special values, integers without a trailing ".0".
func NumberToString(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if f == 0 {
		if math.Signbit(f) {
			return "0" // JS prints -0 as "0" via ToString, unlike console inspection
		}
		return "0"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ToInt32 / ToUint32 implement the integer-conversion abstract operations
// used by bitwise operators.
func ToInt32(v Value) int32 {
	f := ToNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	u := uint32(int64(math.Trunc(f)))
	return int32(u)
}

func ToUint32(v Value) uint32 {
	f := ToNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return uint32(int64(math.Trunc(f)))
}

// TypeOf implements the `typeof` operator, which differs from Kind() only
// in reporting "function" for callable objects.
func TypeOf(v Value) string {
	if o, ok := v.(*Object); ok && o.Call != nil {
		return "function"
	}
	return v.Kind().String()
}

// StrictEquals implements the `===` algorithm.
func StrictEquals(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Undefined, Null:
		return true
	case Bool:
		return av == b.(Bool)
	case Number:
		bv := b.(Number)
		return float64(av) == float64(bv)
	case String:
		return av == b.(String)
	case BigInt:
		return av.V.Cmp(b.(BigInt).V) == 0
	case Symbol:
		return av == b.(Symbol)
	case *Object:
		return av == b.(*Object)
	}
	return false
}
