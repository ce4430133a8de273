// Package ir implements the generator IR builder (spec.md C7): it lowers a
// generator/async function body, already hoisted by package lower so that
// every yield/await appears only in statement position, into a flat list of
// Steps with explicit jump targets. genvm (C8) walks this flat Program one
// Step at a time, which is what makes suspending and resuming a generator a
// matter of saving/restoring a single program counter plus the evaluator's
// lexical environment, instead of unwinding and rewinding a Go call stack.
package ir

import "github.com/jsrt/jsrt/ast"

// Op identifies the kind of a single Step.
type Op int

const (
	OpExec          Op = iota // run an ordinary (non-suspending) statement
	OpSuspend                 // evaluate SuspendArg, yield/await it, store the resumed value in Slot
	OpJump                    // unconditional jump to Target
	OpJumpIfFalse             // evaluate Cond; jump to Target if falsy
	OpJumpIfTrue              // evaluate Cond; jump to Target if truthy
	OpReturn                  // evaluate Cond (the return argument, or nil); complete the generator
	OpThrow                   // evaluate Cond (the throw argument); propagate as an exception
	OpDeclare                 // bind Pattern to the evaluated Cond in the current scope (var/let/const init)
	OpAssign                  // assign the evaluated Cond into Pattern (existing binding or member target)
	OpIterInit                // evaluate Cond (the iterated object); start a for-in/for-of iterator, push onto the iterator stack
	OpIterNext                // advance the top iterator; jump to Target when exhausted, otherwise bind Pattern to the next value
	OpIterNextAwait            // like OpIterNext, but the iterator's next() result is itself awaited first (for-await-of)
	OpIterPop                 // pop the top iterator off the iterator stack (loop exit/break)
	OpPushTry                  // push a try frame: CatchTarget/FinallyTarget/HasCatch describe the handler
	OpPopTry                   // pop the current try frame
	OpLeaveFinally              // resume whatever action (return/throw/break/continue) was pending before a finally block ran
)

// Step is one instruction in a generator's flattened program.
type Step struct {
	Op Op

	// OpExec
	Stmt ast.Stmt

	// OpJump/OpJumpIfFalse/OpJumpIfTrue/OpIterNext's exhausted branch
	Target int

	// OpJumpIfFalse/OpJumpIfTrue/OpReturn/OpThrow/OpDeclare/OpAssign/OpIterInit: the
	// expression to evaluate. nil for a bare `return;`.
	Cond ast.Expr

	// OpDeclare/OpAssign/OpIterNext: binding/assignment target.
	Pattern ast.Pattern

	// OpSuspend
	SuspendArg ast.Expr
	IsAwait    bool
	Delegate   bool // yield* — delegates iteration to SuspendArg's iterable
	Slot       int

	// OpPushTry
	CatchTarget   int
	HasCatch      bool
	CatchPattern  ast.Pattern
	FinallyTarget int
	HasFinally    bool
}

// Program is a generator/async function's flattened body plus its original
// parameter list (evaluated eagerly, before Step 0 runs, exactly like a
// normal function call's argument binding).
type Program struct {
	Params    []ast.Pattern
	Steps     []Step
	NumSlots  int
	IsAsync   bool
	IsGenerator bool
}
