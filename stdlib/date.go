package stdlib

import (
	"fmt"
	"math"
	"time"

	"github.com/jsrt/jsrt/eval"
	"github.com/jsrt/jsrt/value"
)

func installDate(ev *eval.Evaluator) {
	r := ev.Realm()
	proto := value.NewObject(r.ObjectProto)
	proto.Class = "Date"

	ctor := value.NewConstructor(r.FunctionProto, "Date", 7, func(_ value.Value, _ []value.Value) (value.Value, error) {
		return value.String(formatDate(time.Now())), nil
	}, func(args []value.Value, _ *value.Object) (value.Value, error) {
		t, err := dateConstruct(ev, args)
		if err != nil {
			return nil, err
		}
		o := value.NewObject(proto)
		o.Class = "Date"
		o.Internal = t
		return o, nil
	})
	ctor.SetHidden("prototype", proto)
	proto.SetHidden("constructor", ctor)

	method(ev, ctor, "now", 0, func(_ value.Value, _ []value.Value) (value.Value, error) {
		return value.Number(float64(time.Now().UnixMilli())), nil
	})
	method(ev, ctor, "parse", 1, func(_ value.Value, args []value.Value) (value.Value, error) {
		t, ok := parseDate(value.ToStringValue(arg(args, 0)))
		if !ok {
			return value.Number(math.NaN()), nil
		}
		return value.Number(float64(t.UnixMilli())), nil
	})
	method(ev, ctor, "UTC", 7, func(_ value.Value, args []value.Value) (value.Value, error) {
		t := dateFromParts(args, time.UTC)
		return value.Number(float64(t.UnixMilli())), nil
	})

	thisTime := func(this value.Value) (time.Time, error) {
		o, ok := this.(*value.Object)
		if !ok {
			return time.Time{}, ev.TypeError("Method Date.prototype called on incompatible receiver")
		}
		t, ok := o.Internal.(time.Time)
		if !ok {
			return time.Time{}, ev.TypeError("Method Date.prototype called on incompatible receiver")
		}
		return t, nil
	}
	setTime := func(this value.Value, t time.Time) {
		this.(*value.Object).Internal = t
	}

	getter := func(name string, fn func(time.Time) float64) {
		method(ev, proto, name, 0, func(this value.Value, _ []value.Value) (value.Value, error) {
			t, err := thisTime(this)
			if err != nil {
				return nil, err
			}
			if t.IsZero() && name != "getTime" && name != "valueOf" {
			}
			return value.Number(fn(t)), nil
		})
	}
	getter("getTime", func(t time.Time) float64 { return float64(t.UnixMilli()) })
	getter("valueOf", func(t time.Time) float64 { return float64(t.UnixMilli()) })
	getter("getFullYear", func(t time.Time) float64 { return float64(t.Year()) })
	getter("getMonth", func(t time.Time) float64 { return float64(t.Month() - 1) })
	getter("getDate", func(t time.Time) float64 { return float64(t.Day()) })
	getter("getDay", func(t time.Time) float64 { return float64(t.Weekday()) })
	getter("getHours", func(t time.Time) float64 { return float64(t.Hour()) })
	getter("getMinutes", func(t time.Time) float64 { return float64(t.Minute()) })
	getter("getSeconds", func(t time.Time) float64 { return float64(t.Second()) })
	getter("getMilliseconds", func(t time.Time) float64 { return float64(t.Nanosecond() / 1e6) })
	getter("getTimezoneOffset", func(t time.Time) float64 { return 0 })
	getter("getUTCFullYear", func(t time.Time) float64 { return float64(t.UTC().Year()) })
	getter("getUTCMonth", func(t time.Time) float64 { return float64(t.UTC().Month() - 1) })
	getter("getUTCDate", func(t time.Time) float64 { return float64(t.UTC().Day()) })
	getter("getUTCDay", func(t time.Time) float64 { return float64(t.UTC().Weekday()) })
	getter("getUTCHours", func(t time.Time) float64 { return float64(t.UTC().Hour()) })
	getter("getUTCMinutes", func(t time.Time) float64 { return float64(t.UTC().Minute()) })
	getter("getUTCSeconds", func(t time.Time) float64 { return float64(t.UTC().Second()) })

	setter := func(name string, fn func(time.Time, []value.Value) time.Time) {
		method(ev, proto, name, 1, func(this value.Value, args []value.Value) (value.Value, error) {
			t, err := thisTime(this)
			if err != nil {
				return nil, err
			}
			nt := fn(t, args)
			setTime(this, nt)
			return value.Number(float64(nt.UnixMilli())), nil
		})
	}
	setter("setTime", func(t time.Time, args []value.Value) time.Time {
		return time.UnixMilli(int64(value.ToNumber(arg(args, 0)))).UTC()
	})
	setter("setFullYear", func(t time.Time, args []value.Value) time.Time {
		y := int(value.ToNumber(arg(args, 0)))
		m := t.Month()
		d := t.Day()
		if len(args) > 1 {
			m = time.Month(int(value.ToNumber(args[1])) + 1)
		}
		if len(args) > 2 {
			d = int(value.ToNumber(args[2]))
		}
		return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	})
	setter("setMonth", func(t time.Time, args []value.Value) time.Time {
		m := time.Month(int(value.ToNumber(arg(args, 0))) + 1)
		d := t.Day()
		if len(args) > 1 {
			d = int(value.ToNumber(args[1]))
		}
		return time.Date(t.Year(), m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	})
	setter("setDate", func(t time.Time, args []value.Value) time.Time {
		return time.Date(t.Year(), t.Month(), int(value.ToNumber(arg(args, 0))), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	})
	setter("setHours", func(t time.Time, args []value.Value) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), int(value.ToNumber(arg(args, 0))), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	})
	setter("setMinutes", func(t time.Time, args []value.Value) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), int(value.ToNumber(arg(args, 0))), t.Second(), t.Nanosecond(), t.Location())
	})
	setter("setSeconds", func(t time.Time, args []value.Value) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), int(value.ToNumber(arg(args, 0))), t.Nanosecond(), t.Location())
	})
	setter("setMilliseconds", func(t time.Time, args []value.Value) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), int(value.ToNumber(arg(args, 0)))*1e6, t.Location())
	})

	method(ev, proto, "toISOString", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		t, err := thisTime(this)
		if err != nil {
			return nil, err
		}
		return value.String(t.UTC().Format("2006-01-02T15:04:05.000Z")), nil
	})
	method(ev, proto, "toJSON", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		t, err := thisTime(this)
		if err != nil {
			return nil, err
		}
		return value.String(t.UTC().Format("2006-01-02T15:04:05.000Z")), nil
	})
	method(ev, proto, "toString", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		t, err := thisTime(this)
		if err != nil {
			return nil, err
		}
		return value.String(formatDate(t)), nil
	})
	method(ev, proto, "toDateString", 0, func(this value.Value, _ []value.Value) (value.Value, error) {
		t, err := thisTime(this)
		if err != nil {
			return nil, err
		}
		return value.String(t.Format("Mon Jan 02 2006")), nil
	})

	global(ev, "Date", ctor)
}

func dateConstruct(ev *eval.Evaluator, args []value.Value) (time.Time, error) {
	switch len(args) {
	case 0:
		return time.Now(), nil
	case 1:
		switch a := args[0].(type) {
		case value.Number:
			return time.UnixMilli(int64(a)).UTC(), nil
		case value.String:
			if t, ok := parseDate(string(a)); ok {
				return t, nil
			}
			return time.Time{}, nil
		case *value.Object:
			if t, ok := a.Internal.(time.Time); ok {
				return t, nil
			}
		}
		return time.Now(), nil
	default:
		return dateFromParts(args, time.Local), nil
	}
}

func dateFromParts(args []value.Value, loc *time.Location) time.Time {
	y := int(value.ToNumber(arg(args, 0)))
	if y >= 0 && y <= 99 {
		y += 1900
	}
	month := 0
	if len(args) > 1 {
		month = int(value.ToNumber(args[1]))
	}
	day := 1
	if len(args) > 2 {
		day = int(value.ToNumber(args[2]))
	}
	hour, min, sec, ms := 0, 0, 0, 0
	if len(args) > 3 {
		hour = int(value.ToNumber(args[3]))
	}
	if len(args) > 4 {
		min = int(value.ToNumber(args[4]))
	}
	if len(args) > 5 {
		sec = int(value.ToNumber(args[5]))
	}
	if len(args) > 6 {
		ms = int(value.ToNumber(args[6]))
	}
	return time.Date(y, time.Month(month+1), day, hour, min, sec, ms*1e6, loc)
}

func parseDate(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05",
		"2006-01-02",
		"Mon Jan 02 2006 15:04:05",
		"Mon Jan 02 2006",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func formatDate(t time.Time) string {
	return fmt.Sprintf("%s %s %02d %04d %02d:%02d:%02d GMT+0000 (Coordinated Universal Time)",
		t.Weekday().String()[:3], t.Month().String()[:3], t.Day(), t.Year(), t.Hour(), t.Minute(), t.Second())
}
