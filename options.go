package jsrt

import "github.com/jsrt/jsrt/internal/scheduler"

// engineOptions holds configuration applied at Engine construction —
// there is no flag-parsing or file-based config surface; an embedding
// application configures the engine entirely in-process via Option values,
// following the same shape the teacher's own loopOptions/LoopOption pair
// uses.
type engineOptions struct {
	logger               scheduler.Logger
	maxMicrotasksPerTick int
	maxCallDepth         int
	unhandledRejection   func(reason any)
}

// Option configures an Engine at construction time.
type Option interface {
	applyEngine(*engineOptions)
}

type optionFunc func(*engineOptions)

func (f optionFunc) applyEngine(o *engineOptions) { f(o) }

// WithLogger installs the structured-logging sink console.log/warn/error
// and the scheduler's own diagnostics route through. The default is
// scheduler.NoOpLogger, which discards everything — nothing is logged
// unless the host opts in.
func WithLogger(l scheduler.Logger) Option {
	return optionFunc(func(o *engineOptions) { o.logger = l })
}

// WithMaxMicrotasksPerTick bounds how many microtasks Evaluate/Run will
// drain in a single call before giving up on a script whose microtasks
// keep re-queueing themselves, surfacing a RangeError RuntimeError carrying
// ErrMicrotaskBudgetExceeded's message instead of hanging. 0 (the default) leaves draining unbounded.
func WithMaxMicrotasksPerTick(n int) Option {
	return optionFunc(func(o *engineOptions) { o.maxMicrotasksPerTick = n })
}

// WithRecursionLimit bounds synchronous call-nesting depth, surfacing a
// RangeError ("Maximum call stack size exceeded") once exceeded instead of
// growing the Go stack without limit underneath a runaway script. 0
// restores the engine's built-in default.
func WithRecursionLimit(n int) Option {
	return optionFunc(func(o *engineOptions) { o.maxCallDepth = n })
}

// WithUnhandledRejection installs a hook called once per promise left
// rejected with no handler ever attached, after Evaluate/Run drains its
// queues to idle — spec.md §6's optional UnhandledRejection hook. Without
// this option, unhandled rejections are logged at warn level through the
// scheduler logger and otherwise ignored (spec.md §5's "logged and ignored
// by default").
func WithUnhandledRejection(hook func(reason any)) Option {
	return optionFunc(func(o *engineOptions) { o.unhandledRejection = hook })
}
