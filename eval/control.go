package eval

import "github.com/jsrt/jsrt/value"

// breakSignal/continueSignal/returnSignal are control-flow signals threaded
// through Go's own error return rather than JS exceptions: a plain
// tree-walking break/continue/return must never be catchable by a `catch`
// clause, so these are never wrapped in *errs.RuntimeError and TryStmt
// execution only ever inspects caught errors for that type before running a
// catch body.
type breakSignal struct{ label string }

func (breakSignal) Error() string { return "break" }

type continueSignal struct{ label string }

func (continueSignal) Error() string { return "continue" }

type returnSignal struct{ value value.Value }

func (returnSignal) Error() string { return "return" }

func isBreak(err error, label string) bool {
	b, ok := err.(breakSignal)
	return ok && (b.label == "" || b.label == label)
}

func isContinue(err error, label string) bool {
	c, ok := err.(continueSignal)
	return ok && (c.label == "" || c.label == label)
}
