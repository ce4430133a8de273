package stdlib

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jsrt/jsrt/eval"
	"github.com/jsrt/jsrt/internal/scheduler"
	"github.com/jsrt/jsrt/value"
)

// installConsole registers the console global (log/info/warn/error/debug),
// every call routed through internal/scheduler's ambient Logger rather than
// writing to stdout/stderr directly — an embedder that never calls
// WithLogger gets a silent console for free via scheduler.NoOpLogger.
func installConsole(ev *eval.Evaluator) {
	r := ev.Realm()
	console := r.NewObject()

	logAt := func(level scheduler.Level) value.CallableFunc {
		return func(_ value.Value, args []value.Value) (value.Value, error) {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = consoleInspect(a, 0)
			}
			scheduler.Log(scheduler.Entry{
				Level:    level,
				Category: "console",
				Message:  strings.Join(parts, " "),
			})
			return value.Undef, nil
		}
	}

	method(ev, console, "log", 0, logAt(scheduler.LevelInfo))
	method(ev, console, "info", 0, logAt(scheduler.LevelInfo))
	method(ev, console, "debug", 0, logAt(scheduler.LevelDebug))
	method(ev, console, "warn", 0, logAt(scheduler.LevelWarn))
	method(ev, console, "error", 0, logAt(scheduler.LevelError))

	global(ev, "console", console)
}

// consoleInspect renders v the way console.log's formatter would: plain
// strings pass through unquoted, everything else gets the same rendering
// util.inspect gives a bare value, recursing into arrays/objects up to a
// shallow depth so a log call never produces unbounded output.
func consoleInspect(v value.Value, depth int) string {
	switch t := v.(type) {
	case value.String:
		return string(t)
	case *value.Object:
		if depth >= 4 {
			return "[" + t.Class + "]"
		}
		switch t.Class {
		case "Array":
			n := value.ArrayLength(t)
			parts := make([]string, n)
			for i := 0; i < n; i++ {
				parts[i] = consoleInspect(value.ArrayGet(t, i), depth+1)
			}
			return "[ " + strings.Join(parts, ", ") + " ]"
		case "Error":
			return value.ToStringValue(t)
		case "Function":
			name := t.FnName
			if name == "" {
				name = "anonymous"
			}
			return "[Function: " + name + "]"
		default:
			keys := t.OwnKeys()
			parts := make([]string, 0, len(keys))
			for _, k := range keys {
				d := t.GetOwn(k)
				if d == nil || !d.Enumerable {
					continue
				}
				val, err := value.Get(t, k, t)
				if err != nil {
					continue
				}
				parts = append(parts, consoleKeyLabel(k)+": "+consoleInspect(val, depth+1))
			}
			return "{ " + strings.Join(parts, ", ") + " }"
		}
	default:
		return value.ToStringValue(v)
	}
}

func consoleKeyLabel(k any) string {
	switch t := k.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}
