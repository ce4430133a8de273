package eval

import (
	"fmt"

	"github.com/jsrt/jsrt/internal/errs"
	"github.com/jsrt/jsrt/value"
)

// newError constructs an Error-class object of the given constructor name
// (Error, TypeError, RangeError, ...), matching what `new TypeError("...")`
// produces, so natively-raised errors are indistinguishable from
// user-thrown ones once caught.
func (ev *Evaluator) newError(name, message string) *value.Object {
	proto := ev.realm.ErrorProto
	if p, ok := ev.realm.ErrorProtos[name]; ok {
		proto = p
	}
	o := value.NewObject(proto)
	o.Class = "Error"
	o.SetData("message", value.String(message))
	o.SetHidden("stack", value.String(name+": "+message))
	return o
}

// throwNative raises a host-detected error (a TypeError for a non-callable
// call target, a ReferenceError for an unresolved binding, ...) as a
// *errs.RuntimeError carrying the constructed Error object, the same shape
// genvm/Host callers already unwrap.
func (ev *Evaluator) throwNative(name string, kind errs.RuntimeErrorKind, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	obj := ev.newError(name, msg)
	return &errs.RuntimeError{Kind: kind, Message: msg, Value: value.Value(obj)}
}

func (ev *Evaluator) typeError(format string, args ...any) error {
	return ev.throwNative("TypeError", errs.KindTypeError, format, args...)
}

func (ev *Evaluator) rangeError(format string, args ...any) error {
	return ev.throwNative("RangeError", errs.KindRangeError, format, args...)
}

// throwValue wraps an arbitrary thrown JS value (from a `throw expr;`
// statement, which can throw anything, not just Error instances) as the Go
// error genvm and the outer Run loop both know how to unwrap.
func throwValue(v value.Value) error {
	kind := errs.KindError
	msg := value.ToStringValue(v)
	if o, ok := v.(*value.Object); ok && o.Class == "Error" {
		if nv, err := value.Get(o, "name", o); err == nil {
			switch k := errs.RuntimeErrorKind(value.ToStringValue(nv)); k {
			case errs.KindTypeError, errs.KindRangeError, errs.KindSyntaxError, errs.KindReferenceError, errs.KindEvalError, errs.KindURIError, errs.KindAggregateError:
				kind = k
			}
		}
		if d := o.GetOwn("message"); d != nil {
			msg = value.ToStringValue(d.Value)
		}
		if d := o.GetOwn("name"); d != nil {
			msg = value.ToStringValue(d.Value) + ": " + msg
		}
	}
	return &errs.RuntimeError{Kind: kind, Message: msg, Value: v}
}

// asThrown unwraps a Go error produced anywhere in the evaluator back into
// the JS value it carries, for `catch`.
func asThrown(err error) (value.Value, bool) {
	re, ok := err.(*errs.RuntimeError)
	if !ok {
		return nil, false
	}
	v, ok := re.Value.(value.Value)
	return v, ok
}
