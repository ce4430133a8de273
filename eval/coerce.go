package eval

import "github.com/jsrt/jsrt/value"

// toPrimitive and objectToString back value.SetToPrimitive/SetObjectStringer
// (see value/compare.go, value/convert.go): package value can't call back
// into user-defined valueOf/toString methods itself since it knows nothing
// about Call, so it exposes these two hooks and eval installs the real
// algorithm once an Evaluator exists. Both hook signatures are error-free,
// so a failing or missing method is treated as "try the next step" rather
// than surfaced to the caller — a thrown valueOf/toString only matters to
// code that calls it directly through a MemberExpr, which still goes
// through the normal error-returning evalCall path.
func (ev *Evaluator) toPrimitive(v value.Value) value.Value {
	o, ok := v.(*value.Object)
	if !ok {
		return v
	}
	if r, ok := ev.tryToPrimitiveMethod(o, "valueOf"); ok {
		return r
	}
	if r, ok := ev.tryToPrimitiveMethod(o, "toString"); ok {
		return r
	}
	return value.String("[object " + classOf(o) + "]")
}

func (ev *Evaluator) tryToPrimitiveMethod(o *value.Object, name string) (value.Value, bool) {
	fnVal, err := value.Get(o, name, o)
	if err != nil {
		return nil, false
	}
	fn, ok := fnVal.(*value.Object)
	if !ok || fn.Call == nil {
		return nil, false
	}
	res, err := fn.Call(o, nil)
	if err != nil {
		return nil, false
	}
	if _, isObj := res.(*value.Object); isObj {
		return nil, false
	}
	return res, true
}

// objectToString backs String(obj)/`${obj}` for an object with no usable
// valueOf/toString of its own: Object.prototype.toString's well-known
// "[object Class]" form.
func (ev *Evaluator) objectToString(o *value.Object) string {
	if r, ok := ev.tryToPrimitiveMethod(o, "toString"); ok {
		return value.ToStringValue(r)
	}
	return "[object " + classOf(o) + "]"
}

func classOf(o *value.Object) string {
	if o.Class != "" {
		return o.Class
	}
	return "Object"
}
