package stdlib

import (
	"math"
	"math/rand"

	"github.com/jsrt/jsrt/eval"
	"github.com/jsrt/jsrt/value"
)

func installMath(ev *eval.Evaluator) {
	r := ev.Realm()
	m := r.NewObject()

	m.SetHidden("PI", value.Number(math.Pi))
	m.SetHidden("E", value.Number(math.E))
	m.SetHidden("LN2", value.Number(math.Ln2))
	m.SetHidden("LN10", value.Number(math.Log(10)))
	m.SetHidden("LOG2E", value.Number(1/math.Ln2))
	m.SetHidden("LOG10E", value.Number(1/math.Log(10)))
	m.SetHidden("SQRT2", value.Number(math.Sqrt2))
	m.SetHidden("SQRT1_2", value.Number(math.Sqrt(0.5)))

	unary := func(name string, fn func(float64) float64) {
		method(ev, m, name, 1, func(_ value.Value, args []value.Value) (value.Value, error) {
			return value.Number(fn(value.ToNumber(arg(args, 0)))), nil
		})
	}
	unary("abs", math.Abs)
	unary("floor", math.Floor)
	unary("ceil", math.Ceil)
	unary("trunc", math.Trunc)
	unary("sqrt", math.Sqrt)
	unary("cbrt", math.Cbrt)
	unary("sign", func(f float64) float64 {
		switch {
		case math.IsNaN(f):
			return math.NaN()
		case f > 0:
			return 1
		case f < 0:
			return -1
		default:
			return f
		}
	})
	unary("round", func(f float64) float64 {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return f
		}
		return math.Floor(f + 0.5)
	})
	unary("log", math.Log)
	unary("log2", math.Log2)
	unary("log10", math.Log10)
	unary("log1p", math.Log1p)
	unary("exp", math.Exp)
	unary("expm1", math.Expm1)
	unary("sin", math.Sin)
	unary("cos", math.Cos)
	unary("tan", math.Tan)
	unary("asin", math.Asin)
	unary("acos", math.Acos)
	unary("atan", math.Atan)
	unary("sinh", math.Sinh)
	unary("cosh", math.Cosh)
	unary("tanh", math.Tanh)
	unary("asinh", math.Asinh)
	unary("acosh", math.Acosh)
	unary("atanh", math.Atanh)

	method(ev, m, "pow", 2, func(_ value.Value, args []value.Value) (value.Value, error) {
		return value.Number(math.Pow(value.ToNumber(arg(args, 0)), value.ToNumber(arg(args, 1)))), nil
	})
	method(ev, m, "atan2", 2, func(_ value.Value, args []value.Value) (value.Value, error) {
		return value.Number(math.Atan2(value.ToNumber(arg(args, 0)), value.ToNumber(arg(args, 1)))), nil
	})
	method(ev, m, "hypot", 2, func(_ value.Value, args []value.Value) (value.Value, error) {
		sum := 0.0
		for _, a := range args {
			f := value.ToNumber(a)
			sum += f * f
		}
		return value.Number(math.Sqrt(sum)), nil
	})
	method(ev, m, "max", 2, func(_ value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.Number(math.Inf(-1)), nil
		}
		best := math.Inf(-1)
		for _, a := range args {
			f := value.ToNumber(a)
			if math.IsNaN(f) {
				return value.Number(math.NaN()), nil
			}
			if f > best {
				best = f
			}
		}
		return value.Number(best), nil
	})
	method(ev, m, "min", 2, func(_ value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.Number(math.Inf(1)), nil
		}
		best := math.Inf(1)
		for _, a := range args {
			f := value.ToNumber(a)
			if math.IsNaN(f) {
				return value.Number(math.NaN()), nil
			}
			if f < best {
				best = f
			}
		}
		return value.Number(best), nil
	})
	method(ev, m, "random", 0, func(_ value.Value, _ []value.Value) (value.Value, error) {
		return value.Number(rand.Float64()), nil
	})

	global(ev, "Math", m)
}
