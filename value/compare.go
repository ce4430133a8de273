package value

import "math"

// LooseEquals implements the `==` abstract equality comparison algorithm.
func LooseEquals(a, b Value) bool {
	if a.Kind() == b.Kind() {
		return StrictEquals(a, b)
	}
	switch {
	case IsNullish(a) && IsNullish(b):
		return true
	case IsNullish(a) || IsNullish(b):
		return false
	}
	an, aIsNum := a.(Number)
	bn, bIsNum := b.(Number)
	as, aIsStr := a.(String)
	bs, bIsStr := b.(String)
	switch {
	case aIsNum && bIsStr:
		return float64(an) == stringToNumber(string(bs))
	case aIsStr && bIsNum:
		return stringToNumber(string(as)) == float64(bn)
	}
	if ab, ok := a.(Bool); ok {
		return LooseEquals(Number(boolToFloat(ab)), b)
	}
	if bb, ok := b.(Bool); ok {
		return LooseEquals(a, Number(boolToFloat(bb)))
	}
	abig, aIsBig := a.(BigInt)
	bbig, bIsBig := b.(BigInt)
	switch {
	case aIsBig && bIsNum:
		return bigEqualsNumber(abig, float64(bn))
	case aIsNum && bIsBig:
		return bigEqualsNumber(bbig, float64(an))
	case aIsBig && bIsStr:
		return bigEqualsString(abig, string(bs))
	case aIsStr && bIsBig:
		return bigEqualsString(bbig, string(as))
	}
	if _, ok := a.(*Object); ok {
		if b.Kind() == KindNumber || b.Kind() == KindString || b.Kind() == KindBigInt || b.Kind() == KindSymbol {
			return LooseEquals(ToPrimitiveDefault(a), b)
		}
	}
	if _, ok := b.(*Object); ok {
		if a.Kind() == KindNumber || a.Kind() == KindString || a.Kind() == KindBigInt || a.Kind() == KindSymbol {
			return LooseEquals(a, ToPrimitiveDefault(b))
		}
	}
	return false
}

func boolToFloat(b Bool) float64 {
	if b {
		return 1
	}
	return 0
}

func bigEqualsNumber(b BigInt, f float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return false
	}
	bf, _ := bigFromFloat(f)
	return b.V.Cmp(bf) == 0
}

func bigEqualsString(b BigInt, s string) bool {
	bi, ok := ParseBigInt(s)
	return ok && b.V.Cmp(bi) == 0
}

// ToPrimitiveDefault is a minimal ToPrimitive fallback (no hint) used by
// abstract equality when an object participates without a user-defined
// valueOf/toString (those are applied earlier by the evaluator, which
// installs the richer version via SetObjectStringer/SetToPrimitive).
var toPrimitiveHook = func(v Value) Value { return v }

// SetToPrimitive lets the evaluator install the full ToPrimitive algorithm
// (valueOf/toString method dispatch) once it exists.
func SetToPrimitive(f func(Value) Value) { toPrimitiveHook = f }

func ToPrimitiveDefault(v Value) Value { return toPrimitiveHook(v) }

// LessThan implements the relational `<` operator's abstract relational
// comparison, returning (result, ok); ok is false when the comparison is
// undefined (a NaN operand), matching `NaN < x` evaluating to false rather
// than throwing.
func LessThan(a, b Value) (bool, bool) {
	ap := ToPrimitiveDefault(a)
	bp := ToPrimitiveDefault(b)
	if as, ok := ap.(String); ok {
		if bs, ok := bp.(String); ok {
			return as < bs, true
		}
	}
	af := ToNumber(ap)
	bf := ToNumber(bp)
	if math.IsNaN(af) || math.IsNaN(bf) {
		return false, false
	}
	return af < bf, true
}
