// Package genvm is the generator/async-function state machine interpreter
// (spec.md C8). It walks an ir.Program one Step at a time, stopping at every
// OpSuspend to hand a yielded or awaited value back to its caller, and
// resuming later from exactly that Step with whatever value (or thrown
// error) the caller delivers back in. All of the actual JS semantics —
// evaluating expressions, executing plain statements, binding patterns,
// driving iterators — are delegated to a Host, almost always the tree-walking
// evaluator itself; genvm only owns control flow (jumps, try frames, the
// suspend/resume boundary).
package genvm

import (
	"errors"

	"github.com/jsrt/jsrt/ast"
	"github.com/jsrt/jsrt/internal/errs"
	"github.com/jsrt/jsrt/ir"
	"github.com/jsrt/jsrt/value"
)

// Host is the callback surface genvm drives to perform actual JS work. It is
// implemented by the evaluator; genvm never imports that package, which
// keeps eval -> genvm a one-way dependency even though genvm calls back into
// the host on every step.
type Host interface {
	// EvalExpr evaluates a pure, non-suspending expression (which may
	// contain *ast.ResumeRef nodes reading genvm's slot values — the host
	// resolves those via the slice handed to SetSlots).
	EvalExpr(e ast.Expr) (value.Value, error)
	// ExecStmt runs an ordinary statement with no suspend points in it.
	ExecStmt(s ast.Stmt) error
	Declare(p ast.Pattern, v value.Value) error
	Assign(p ast.Pattern, v value.Value) error
	// SetSlots gives the host read access to genvm's resume-value slots, so
	// its expression evaluator can resolve ResumeRef nodes by index.
	SetSlots(slots []value.Value)

	// GetIterator starts iterating v (for-of) or its enumerable keys
	// (for-in is lowered the same way, with v already being the key list);
	// the returned handle is opaque to genvm.
	GetIterator(v value.Value) (int, error)
	// IterNext advances a synchronous iterator.
	IterNext(handle int) (val value.Value, done bool, err error)
	// IterNextRaw starts advancing an iterator whose next() result must be
	// awaited (for-await-of); IterNextSettled finishes the protocol once the
	// awaited value is available.
	IterNextRaw(handle int) (value.Value, error)
	IterNextSettled(handle int, resolved value.Value) (val value.Value, done bool, err error)
	DropIterator(handle int)
}

// SuspendKind distinguishes why Run paused.
type SuspendKind int

const (
	SuspendNone SuspendKind = iota
	SuspendYield
	SuspendYieldDelegate
	SuspendAwait
)

// Result describes what happened after a Run call: either the machine
// suspended (Kind != SuspendNone, Value holds what to yield/await) or it
// finished (Done, with ReturnValue or a non-nil err for an uncaught throw).
type Result struct {
	Kind        SuspendKind
	Value       value.Value
	Done        bool
	ReturnValue value.Value
}

type pendingKind int

const (
	pendingNone pendingKind = iota
	pendingSuspend
	pendingIterAwait
)

type tryFrame struct {
	catchTarget   int
	hasCatch      bool
	catchPattern  ast.Pattern
	finallyTarget int
	hasFinally    bool
	// afterFinally captures what to do once a finally block completes: "" to
	// fall through, "return"/"throw"/"jump" with an associated value/target.
	afterFinally     string
	afterFinallyVal  value.Value
	afterFinallyJump int
}

// Machine interprets one ir.Program for the lifetime of a single generator
// or async function call.
type Machine struct {
	prog  *ir.Program
	host  Host
	pc    int
	slots []value.Value
	iters []int // stack of host iterator handles

	tries []tryFrame

	pending     pendingKind
	pendingSlot int
	pendingPC   int
	pendingIter int
}

// New creates a Machine over prog, bound to host for the lifetime of the
// call. Params have already been bound into the host's environment by the
// caller before the first Run.
func New(prog *ir.Program, host Host) *Machine {
	m := &Machine{
		prog:  prog,
		host:  host,
		slots: make([]value.Value, prog.NumSlots),
	}
	host.SetSlots(m.slots)
	return m
}

// Start runs the machine from the beginning.
func (m *Machine) Start() (Result, error) {
	return m.run(nil, false)
}

// Resume delivers a value (from generator.next(v)) back into the last
// suspend point and continues execution.
func (m *Machine) Resume(v value.Value) (Result, error) {
	return m.run(v, false)
}

// Throw delivers an exception (from generator.throw(v)) at the last suspend
// point, as if the suspended expression had thrown it.
func (m *Machine) Throw(v value.Value) (Result, error) {
	return m.run(v, true)
}

// Return injects an explicit `return` (from generator.return(v)) at the
// last suspend point, routing it through the nearest enclosing finally
// block exactly like an OpReturn reached normally would — so a `finally`
// wrapping the suspended `yield` still runs, and only completes the machine
// once there's no finally left to route through.
func (m *Machine) Return(v value.Value) (Result, error) {
	m.pending = pendingNone
	if handled, jumpTo := m.handleReturn(v); handled {
		m.pc = jumpTo
		return m.run(nil, false)
	}
	return Result{Done: true, ReturnValue: v}, nil
}

func (m *Machine) run(delivered value.Value, isThrow bool) (Result, error) {
	if isThrow {
		if err := m.deliverThrow(delivered); err != nil {
			return Result{}, err
		}
	} else if m.pending != pendingNone {
		if err := m.deliverResume(delivered); err != nil {
			return Result{}, err
		}
	}

	for {
		if m.pc >= len(m.prog.Steps) {
			return Result{Done: true}, nil
		}
		step := m.prog.Steps[m.pc]
		switch step.Op {
		case ir.OpExec:
			if err := m.host.ExecStmt(step.Stmt); err != nil {
				if handled, jumpTo := m.handleError(err); handled {
					m.pc = jumpTo
					continue
				}
				return Result{}, err
			}
			m.pc++

		case ir.OpSuspend:
			val, err := m.host.EvalExpr(step.SuspendArg)
			if err != nil {
				if handled, jumpTo := m.handleError(err); handled {
					m.pc = jumpTo
					continue
				}
				return Result{}, err
			}
			m.pending = pendingSuspend
			m.pendingSlot = step.Slot
			m.pendingPC = m.pc + 1
			kind := SuspendYield
			if step.IsAwait {
				kind = SuspendAwait
			} else if step.Delegate {
				kind = SuspendYieldDelegate
			}
			return Result{Kind: kind, Value: val}, nil

		case ir.OpJump:
			m.pc = step.Target

		case ir.OpJumpIfFalse:
			v, err := m.host.EvalExpr(step.Cond)
			if err != nil {
				if handled, jumpTo := m.handleError(err); handled {
					m.pc = jumpTo
					continue
				}
				return Result{}, err
			}
			if value.ToBoolean(v) {
				m.pc++
			} else {
				m.pc = step.Target
			}

		case ir.OpJumpIfTrue:
			v, err := m.host.EvalExpr(step.Cond)
			if err != nil {
				if handled, jumpTo := m.handleError(err); handled {
					m.pc = jumpTo
					continue
				}
				return Result{}, err
			}
			if value.ToBoolean(v) {
				m.pc = step.Target
			} else {
				m.pc++
			}

		case ir.OpReturn:
			var v value.Value = value.Undef
			if step.Cond != nil {
				ev, err := m.host.EvalExpr(step.Cond)
				if err != nil {
					if handled, jumpTo := m.handleError(err); handled {
						m.pc = jumpTo
						continue
					}
					return Result{}, err
				}
				v = ev
			}
			if handled, jumpTo := m.handleReturn(v); handled {
				m.pc = jumpTo
				continue
			}
			return Result{Done: true, ReturnValue: v}, nil

		case ir.OpThrow:
			v, err := m.host.EvalExpr(step.Cond)
			if err != nil {
				if handled, jumpTo := m.handleError(err); handled {
					m.pc = jumpTo
					continue
				}
				return Result{}, err
			}
			if handled, jumpTo := m.handleThrownValue(v); handled {
				m.pc = jumpTo
				continue
			}
			return Result{}, &errs.RuntimeError{Kind: errs.KindError, Message: "uncaught exception", Value: v}

		case ir.OpDeclare:
			v, err := m.host.EvalExpr(step.Cond)
			if err != nil {
				if handled, jumpTo := m.handleError(err); handled {
					m.pc = jumpTo
					continue
				}
				return Result{}, err
			}
			if err := m.host.Declare(step.Pattern, v); err != nil {
				return Result{}, err
			}
			m.pc++

		case ir.OpAssign:
			v, err := m.host.EvalExpr(step.Cond)
			if err != nil {
				if handled, jumpTo := m.handleError(err); handled {
					m.pc = jumpTo
					continue
				}
				return Result{}, err
			}
			if err := m.host.Assign(step.Pattern, v); err != nil {
				return Result{}, err
			}
			m.pc++

		case ir.OpIterInit:
			v, err := m.host.EvalExpr(step.Cond)
			if err != nil {
				if handled, jumpTo := m.handleError(err); handled {
					m.pc = jumpTo
					continue
				}
				return Result{}, err
			}
			handle, err := m.host.GetIterator(v)
			if err != nil {
				if handled, jumpTo := m.handleError(err); handled {
					m.pc = jumpTo
					continue
				}
				return Result{}, err
			}
			m.iters = append(m.iters, handle)
			m.pc++

		case ir.OpIterNext:
			handle := m.iters[len(m.iters)-1]
			val, done, err := m.host.IterNext(handle)
			if err != nil {
				if handled, jumpTo := m.handleError(err); handled {
					m.pc = jumpTo
					continue
				}
				return Result{}, err
			}
			if done {
				m.pc = step.Target
				continue
			}
			if err := m.host.Declare(step.Pattern, val); err != nil {
				return Result{}, err
			}
			m.pc++

		case ir.OpIterNextAwait:
			handle := m.iters[len(m.iters)-1]
			raw, err := m.host.IterNextRaw(handle)
			if err != nil {
				if handled, jumpTo := m.handleError(err); handled {
					m.pc = jumpTo
					continue
				}
				return Result{}, err
			}
			m.pending = pendingIterAwait
			m.pendingIter = handle
			m.pendingPC = m.pc
			return Result{Kind: SuspendAwait, Value: raw}, nil

		case ir.OpIterPop:
			handle := m.iters[len(m.iters)-1]
			m.iters = m.iters[:len(m.iters)-1]
			m.host.DropIterator(handle)
			m.pc++

		case ir.OpPushTry:
			m.tries = append(m.tries, tryFrame{
				catchTarget:   step.CatchTarget,
				hasCatch:      step.HasCatch,
				catchPattern:  step.CatchPattern,
				finallyTarget: step.FinallyTarget,
				hasFinally:    step.HasFinally,
			})
			m.pc++

		case ir.OpPopTry:
			if len(m.tries) > 0 {
				m.tries = m.tries[:len(m.tries)-1]
			}
			m.pc++

		case ir.OpLeaveFinally:
			if len(m.tries) == 0 {
				m.pc++
				continue
			}
			frame := m.tries[len(m.tries)-1]
			m.tries = m.tries[:len(m.tries)-1]
			switch frame.afterFinally {
			case "return":
				if handled, jumpTo := m.handleReturn(frame.afterFinallyVal); handled {
					m.pc = jumpTo
					continue
				}
				return Result{Done: true, ReturnValue: frame.afterFinallyVal}, nil
			case "throw":
				if handled, jumpTo := m.handleThrownValue(frame.afterFinallyVal); handled {
					m.pc = jumpTo
					continue
				}
				return Result{}, &errs.RuntimeError{Kind: errs.KindError, Message: "uncaught exception", Value: frame.afterFinallyVal}
			case "jump":
				m.pc = frame.afterFinallyJump
			default:
				m.pc++
			}

		default:
			m.pc++
		}
	}
}

// deliverResume writes a resumed value into the slot the last suspend left
// pending and continues from just past it.
func (m *Machine) deliverResume(v value.Value) error {
	switch m.pending {
	case pendingSuspend:
		m.slots[m.pendingSlot] = v
		m.pc = m.pendingPC
	case pendingIterAwait:
		val, done, err := m.host.IterNextSettled(m.pendingIter, v)
		if err != nil {
			return err
		}
		step := m.prog.Steps[m.pendingPC]
		if done {
			m.pc = step.Target
		} else {
			if err := m.host.Declare(step.Pattern, val); err != nil {
				return err
			}
			m.pc = m.pendingPC + 1
		}
	}
	m.pending = pendingNone
	return nil
}

// deliverThrow injects an exception at the suspended point, routing it
// through any enclosing try/catch exactly like a synchronous throw would.
func (m *Machine) deliverThrow(v value.Value) error {
	m.pending = pendingNone
	if handled, jumpTo := m.handleThrownValue(v); handled {
		m.pc = jumpTo
		return nil
	}
	return &errs.RuntimeError{Kind: errs.KindError, Message: "uncaught exception", Value: v}
}

// handleError unwraps a JS exception carried in a Go error (per
// internal/errs.RuntimeError's Value field) and routes it to the nearest
// try frame, if any.
func (m *Machine) handleError(err error) (bool, int) {
	var re *errs.RuntimeError
	if !errors.As(err, &re) {
		return false, 0
	}
	v, ok := re.Value.(value.Value)
	if !ok {
		return false, 0
	}
	return m.handleThrownValue(v)
}

func (m *Machine) handleThrownValue(v value.Value) (bool, int) {
	for len(m.tries) > 0 {
		frame := m.tries[len(m.tries)-1]
		m.tries = m.tries[:len(m.tries)-1]
		if frame.hasCatch {
			if frame.catchPattern != nil {
				_ = m.host.Declare(frame.catchPattern, v)
			}
			return true, frame.catchTarget
		}
		if frame.hasFinally {
			frame.afterFinally = "throw"
			frame.afterFinallyVal = v
			m.tries = append(m.tries, frame)
			return true, frame.finallyTarget
		}
	}
	return false, 0
}

// handleReturn routes an explicit `return` through any enclosing finally
// blocks before actually completing the generator/async call.
func (m *Machine) handleReturn(v value.Value) (bool, int) {
	if len(m.tries) == 0 {
		return false, 0
	}
	frame := m.tries[len(m.tries)-1]
	if !frame.hasFinally {
		m.tries = m.tries[:len(m.tries)-1]
		return m.handleReturn(v)
	}
	m.tries = m.tries[:len(m.tries)-1]
	frame.afterFinally = "return"
	frame.afterFinallyVal = v
	m.tries = append(m.tries, frame)
	return true, frame.finallyTarget
}
