// Package errs defines the host-visible error taxonomy: the small family of
// plain error structs an embedding application sees back from Evaluate/Run.
// Those that carry a lower-level cause (ParseError, ModuleNotFound) expose
// it via the standard errors.Unwrap protocol rather than a bespoke
// hierarchy.
package errs

import (
	"fmt"

	"github.com/jsrt/jsrt/token"
)

// ParseError reports a lexical or syntactic failure before evaluation ever
// starts.
type ParseError struct {
	Pos     token.Position
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// RuntimeErrorKind classifies a RuntimeError the way the engine's own
// Error/TypeError/RangeError constructors do.
type RuntimeErrorKind string

const (
	KindError     RuntimeErrorKind = "Error"
	KindTypeError RuntimeErrorKind = "TypeError"
	KindRangeError RuntimeErrorKind = "RangeError"
	KindSyntaxError RuntimeErrorKind = "SyntaxError"
	KindReferenceError RuntimeErrorKind = "ReferenceError"
	KindEvalError RuntimeErrorKind = "EvalError"
	KindURIError  RuntimeErrorKind = "URIError"
	KindAggregateError RuntimeErrorKind = "AggregateError"
)

// RuntimeError wraps an uncaught JavaScript exception thrown during
// evaluation, carrying both the thrown value's stringified message and its
// kind so a host can pattern-match without re-entering the engine.
type RuntimeError struct {
	Kind    RuntimeErrorKind
	Message string
	Stack   []string
	// Value is the original thrown value as an `any`; the concrete type
	// lives in package value but is kept untyped here so errs has no
	// dependency on value (which itself may need to construct errs values).
	Value any
}

func (e *RuntimeError) Error() string {
	if e.Kind == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NotSupported reports a Non-goal feature the engine intentionally declines
// to implement (Proxy/Reflect, dynamic labeled break outside switch, ...).
type NotSupported struct {
	Feature string
}

func (e *NotSupported) Error() string { return fmt.Sprintf("not supported: %s", e.Feature) }

// ModuleNotFound reports a module specifier the host's resolver could not
// locate.
type ModuleNotFound struct {
	Specifier string
	Cause     error
}

func (e *ModuleNotFound) Error() string {
	return fmt.Sprintf("module not found: %s", e.Specifier)
}

func (e *ModuleNotFound) Unwrap() error { return e.Cause }

// UnhandledRejection reports a Promise that reached microtask-queue
// drain with no attached rejection handler.
type UnhandledRejection struct {
	Reason any
}

func (e *UnhandledRejection) Error() string {
	return fmt.Sprintf("unhandled promise rejection: %v", e.Reason)
}

// WrapError attaches additional context to an engine-internal error while
// preserving Unwrap, mirroring the teacher's own error-wrapping helper.
func WrapError(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}
