package eval

import (
	"math"
	"math/big"

	"github.com/jsrt/jsrt/token"
	"github.com/jsrt/jsrt/value"
)

// binaryOp implements the runtime half of every binary operator fold
// couldn't already collapse at compile time: ToPrimitive-aware `+`, BigInt
// arithmetic, relational comparisons, `instanceof`, and `in`.
func (ev *Evaluator) binaryOp(op token.Type, l, r value.Value) (value.Value, error) {
	switch op {
	case token.PLUS:
		lp := value.ToPrimitiveDefault(l)
		rp := value.ToPrimitiveDefault(r)
		if _, ok := lp.(value.String); ok {
			return value.String(value.ToStringValue(lp) + value.ToStringValue(rp)), nil
		}
		if _, ok := rp.(value.String); ok {
			return value.String(value.ToStringValue(lp) + value.ToStringValue(rp)), nil
		}
		if lb, ok := lp.(value.BigInt); ok {
			rb, ok2 := rp.(value.BigInt)
			if !ok2 {
				return nil, ev.typeError("Cannot mix BigInt and other types, use explicit conversions")
			}
			return value.NewBigInt(new(big.Int).Add(lb.V, rb.V)), nil
		}
		return value.Number(value.ToNumber(lp) + value.ToNumber(rp)), nil

	case token.MINUS, token.STAR, token.SLASH, token.PERCENT, token.POW:
		return ev.numericOp(op, l, r)

	case token.LT:
		return cmp(l, r, func(b bool) bool { return b })
	case token.GT:
		return cmp(r, l, func(b bool) bool { return b })
	case token.LE:
		v, err := cmp(r, l, func(b bool) bool { return !b })
		return v, err
	case token.GE:
		v, err := cmp(l, r, func(b bool) bool { return !b })
		return v, err

	case token.EQ:
		return value.Bool(value.LooseEquals(l, r)), nil
	case token.NEQ:
		return value.Bool(!value.LooseEquals(l, r)), nil
	case token.EQSTRICT:
		return value.Bool(value.StrictEquals(l, r)), nil
	case token.NEQSTRICT:
		return value.Bool(!value.StrictEquals(l, r)), nil

	case token.AND, token.OR, token.XOR, token.SHL, token.SHR, token.USHR:
		return bitwiseOp(op, l, r), nil

	case token.INSTANCEOF:
		return ev.instanceOf(l, r)
	case token.IN:
		return ev.inOp(l, r)
	}
	return nil, ev.typeError("unsupported operator")
}

func (ev *Evaluator) numericOp(op token.Type, l, r value.Value) (value.Value, error) {
	lp := value.ToPrimitiveDefault(l)
	rp := value.ToPrimitiveDefault(r)
	lb, lok := lp.(value.BigInt)
	rb, rok := rp.(value.BigInt)
	if lok || rok {
		if !(lok && rok) {
			return nil, ev.typeError("Cannot mix BigInt and other types, use explicit conversions")
		}
		return ev.bigIntOp(op, lb, rb)
	}
	lf, rf := value.ToNumber(lp), value.ToNumber(rp)
	switch op {
	case token.MINUS:
		return value.Number(lf - rf), nil
	case token.STAR:
		return value.Number(lf * rf), nil
	case token.SLASH:
		return value.Number(lf / rf), nil
	case token.PERCENT:
		return value.Number(math.Mod(lf, rf)), nil
	case token.POW:
		return value.Number(math.Pow(lf, rf)), nil
	}
	return value.Number(math.NaN()), nil
}

func (ev *Evaluator) bigIntOp(op token.Type, l, r value.BigInt) (value.Value, error) {
	out := new(big.Int)
	switch op {
	case token.MINUS:
		out.Sub(l.V, r.V)
	case token.STAR:
		out.Mul(l.V, r.V)
	case token.SLASH:
		if r.V.Sign() == 0 {
			return nil, ev.rangeError("Division by zero")
		}
		out.Quo(l.V, r.V)
	case token.PERCENT:
		if r.V.Sign() == 0 {
			return nil, ev.rangeError("Division by zero")
		}
		out.Rem(l.V, r.V)
	case token.POW:
		if r.V.Sign() < 0 {
			return nil, ev.rangeError("Exponent must be non-negative")
		}
		out.Exp(l.V, r.V, nil)
	}
	return value.NewBigInt(out), nil
}

func cmp(l, r value.Value, adapt func(bool) bool) (value.Value, error) {
	res, ok := value.LessThan(l, r)
	if !ok {
		return value.Bool(false), nil
	}
	return value.Bool(adapt(res)), nil
}

func bitwiseOp(op token.Type, l, r value.Value) value.Value {
	switch op {
	case token.AND:
		return value.Number(float64(value.ToInt32(l) & value.ToInt32(r)))
	case token.OR:
		return value.Number(float64(value.ToInt32(l) | value.ToInt32(r)))
	case token.XOR:
		return value.Number(float64(value.ToInt32(l) ^ value.ToInt32(r)))
	case token.SHL:
		return value.Number(float64(value.ToInt32(l) << (value.ToUint32(r) & 31)))
	case token.SHR:
		return value.Number(float64(value.ToInt32(l) >> (value.ToUint32(r) & 31)))
	case token.USHR:
		return value.Number(float64(value.ToUint32(l) >> (value.ToUint32(r) & 31)))
	}
	return value.Undef
}

func (ev *Evaluator) instanceOf(l, r value.Value) (value.Value, error) {
	ctor, ok := r.(*value.Object)
	if !ok || ctor.Call == nil {
		return nil, ev.typeError("Right-hand side of 'instanceof' is not callable")
	}
	lo, ok := l.(*value.Object)
	if !ok {
		return value.Bool(false), nil
	}
	protoVal, err := value.Get(ctor, "prototype", ctor)
	if err != nil {
		return nil, err
	}
	proto, ok := protoVal.(*value.Object)
	if !ok {
		return value.Bool(false), nil
	}
	for cur := lo.Proto; cur != nil; cur = cur.Proto {
		if cur == proto {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}

func (ev *Evaluator) inOp(l, r value.Value) (value.Value, error) {
	o, ok := r.(*value.Object)
	if !ok {
		return nil, ev.typeError("Cannot use 'in' operator to search in non-object")
	}
	key := ev.toPropertyKey(l)
	return value.Bool(value.HasProperty(o, key)), nil
}

func (ev *Evaluator) unaryOp(op token.Type, v value.Value) (value.Value, error) {
	switch op {
	case token.MINUS:
		if b, ok := value.ToPrimitiveDefault(v).(value.BigInt); ok {
			return value.NewBigInt(new(big.Int).Neg(b.V)), nil
		}
		return value.Number(-value.ToNumber(v)), nil
	case token.PLUS:
		return value.Number(value.ToNumber(v)), nil
	case token.NOT:
		return value.Bool(!value.ToBoolean(v)), nil
	case token.TILDE:
		if b, ok := value.ToPrimitiveDefault(v).(value.BigInt); ok {
			return value.NewBigInt(new(big.Int).Not(b.V)), nil
		}
		return value.Number(float64(^value.ToInt32(v))), nil
	case token.TYPEOF:
		return value.String(value.TypeOf(v)), nil
	case token.VOID:
		return value.Undef, nil
	}
	return nil, ev.typeError("unsupported unary operator")
}
