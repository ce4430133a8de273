// Package eval is the typed-AST evaluator (spec.md C6): a tree-walking
// interpreter over the folded/parsed AST that owns scope resolution,
// property access, coercion, pattern binding, and exception propagation for
// ordinary synchronous code. Generator and async function bodies are
// diverted through lower/ir/genvm instead (see function.go), with this
// evaluator plugged in as their genvm.Host (see host.go) so every leaf
// expression and non-suspending statement still runs through the exact same
// code as the plain synchronous path.
package eval

import (
	"sync/atomic"

	"github.com/jsrt/jsrt/ast"
	"github.com/jsrt/jsrt/fold"
	"github.com/jsrt/jsrt/internal/errs"
	"github.com/jsrt/jsrt/internal/scheduler"
	"github.com/jsrt/jsrt/value"
)

// Evaluator is the engine's single runtime instance: one Realm (prototypes,
// global object), one global Environment, and one event loop, shared by
// every module and script evaluated against it.
type Evaluator struct {
	realm        *Realm
	global       *Environment
	programs     *programCache
	loop         *scheduler.Loop
	moduleLoader ModuleLoader

	interrupted  int32 // set via RequestInterrupt; checked by enterCall
	callDepth    int
	maxCallDepth int // 0 means defaultMaxCallDepth
}

// defaultMaxCallDepth bounds unbounded recursion (`function f(){f()}`) even
// when the host never calls SetMaxCallDepth, the same way every real engine
// refuses to grow the Go stack without limit underneath a script.
const defaultMaxCallDepth = 4000

// RequestInterrupt asks the evaluator to abort at the next function-call
// boundary — the cooperative check point every plain/async/generator call
// and construct already passes through via enterCall. Safe to call from
// another goroutine while a script is running.
func (ev *Evaluator) RequestInterrupt() { atomic.StoreInt32(&ev.interrupted, 1) }

// SetMaxCallDepth bounds the synchronous call-nesting depth enterCall
// enforces; 0 restores the default.
func (ev *Evaluator) SetMaxCallDepth(n int) { ev.maxCallDepth = n }

// enterCall is the single choke point every function Call/Construct passes
// through: it rejects a call already past the interrupt request or the
// configured recursion limit, and otherwise tracks one more level of
// nesting for exitCall to unwind.
func (ev *Evaluator) enterCall() error {
	if atomic.LoadInt32(&ev.interrupted) != 0 {
		return &errs.RuntimeError{Kind: errs.KindError, Message: "interrupted"}
	}
	limit := ev.maxCallDepth
	if limit == 0 {
		limit = defaultMaxCallDepth
	}
	if ev.callDepth >= limit {
		return &errs.RuntimeError{Kind: errs.KindRangeError, Message: "Maximum call stack size exceeded"}
	}
	ev.callDepth++
	return nil
}

func (ev *Evaluator) exitCall() { ev.callDepth-- }

// New creates a fresh Evaluator with its own event loop and a bare realm
// (Object/Function/Array/Error prototypes, an empty global object). Package
// stdlib populates the rest of the global surface by calling back into
// Realm() after this; the root engine package uses NewWithLoop instead when
// it wants to own the Loop itself (so it can drive Evaluate/Run).
func New() *Evaluator {
	return NewWithLoop(scheduler.NewLoop())
}

// NewWithLoop is New, but binds the Evaluator to a caller-supplied event
// loop instead of creating its own — the shape the root engine package
// needs so it can call loop.Run()/loop.DrainMicrotasks() itself between
// scripts.
func NewWithLoop(loop *scheduler.Loop) *Evaluator {
	r := NewRealm()
	ev := &Evaluator{realm: r, global: NewGlobalEnv(r.Global), programs: newProgramCache(), loop: loop}
	value.SetToPrimitive(ev.toPrimitive)
	value.SetObjectStringer(ev.objectToString)
	return ev
}

// Realm exposes the prototype/global-object registry for stdlib to extend.
func (ev *Evaluator) Realm() *Realm { return ev.realm }

// GlobalEnv exposes the outermost scope for stdlib to install global
// bindings (Math, JSON, console, ...) and for the host API to run scripts
// against.
func (ev *Evaluator) GlobalEnv() *Environment { return ev.global }

// Loop exposes the event loop backing this evaluator's Promise/async
// machinery, so stdlib can schedule setTimeout/queueMicrotask callbacks and
// build Promise objects against the same Loop await already pumps.
func (ev *Evaluator) Loop() *scheduler.Loop { return ev.loop }

// Run constant-folds and evaluates an entire program against the global
// scope, returning the completion value of its last expression statement
// (mirroring what a REPL or `eval()` surfaces).
func (ev *Evaluator) Run(prog *ast.Program) (value.Value, error) {
	folded := fold.Program(prog)
	return ev.execBlock(ev.global, folded.Body)
}

// execBlock runs a statement list in env, hoisting function declarations to
// the top (so mutual recursion between sibling declarations works) before
// executing the rest in order. Returns the completion value of the last
// bare expression statement, Undef otherwise.
func (ev *Evaluator) execBlock(env *Environment, stmts []ast.Stmt) (value.Value, error) {
	for _, s := range stmts {
		if fd, ok := hoistableFunctionDecl(s); ok {
			fn := ev.makeClosure(fd.Function, env)
			env.Declare(fd.Function.Name, fn, true)
		}
	}
	var last value.Value = value.Undef
	for _, s := range stmts {
		v, err := ev.execStmt(env, s)
		if err != nil {
			return nil, err
		}
		if v != nil {
			last = v
		}
	}
	return last, nil
}

// hoistableFunctionDecl unwraps a (possibly export-wrapped) function
// declaration so execBlock's hoisting pre-pass still finds it — `export
// function foo(){}` and `export default function foo(){}` both declare foo
// at the top of the block exactly like a bare declaration would. An
// unnamed `export default function(){}` has nothing to hoist; its closure
// is built and bound inline by execExportDefault instead.
func hoistableFunctionDecl(s ast.Stmt) (*ast.FunctionDeclStmt, bool) {
	switch n := s.(type) {
	case *ast.FunctionDeclStmt:
		return n, true
	case *ast.ExportNamedStmt:
		if fd, ok := n.Decl.(*ast.FunctionDeclStmt); ok {
			return fd, true
		}
	case *ast.ExportDefaultStmt:
		if fd, ok := n.Decl.(*ast.FunctionDeclStmt); ok && fd.Function.Name != "" {
			return fd, true
		}
	}
	return nil, false
}

// execStmt runs one statement, returning a non-nil value only for a bare
// expression statement's completion value (used by execBlock/Run); every
// other statement kind returns (nil, nil) on success. Control-flow signals
// (break/continue/return) and thrown exceptions are both returned as Go
// errors — see control.go and errors.go.
func (ev *Evaluator) execStmt(env *Environment, s ast.Stmt) (value.Value, error) {
	switch n := s.(type) {
	case *ast.ExpressionStmt:
		v, err := ev.evalExpr(env, n.Expr)
		return v, err

	case *ast.EmptyStmt:
		return nil, nil

	case *ast.BlockStmt:
		_, err := ev.execBlock(env.Child(), n.Body)
		return nil, err

	case *ast.VarDeclStmt:
		for _, d := range n.Decls {
			var v value.Value = value.Undef
			if d.Init != nil {
				ev2, err := ev.evalExpr(env, d.Init)
				if err != nil {
					return nil, err
				}
				v = ev2
			}
			if err := ev.bindPattern(env, d.Target, v, n.Kind != ast.Const); err != nil {
				return nil, err
			}
		}
		return nil, nil

	case *ast.FunctionDeclStmt:
		return nil, nil // hoisted in execBlock

	case *ast.ClassDeclStmt:
		cls, err := ev.evalClass(env, n.Class)
		if err != nil {
			return nil, err
		}
		env.Declare(n.Class.Name, cls, true)
		return nil, nil

	case *ast.IfStmt:
		t, err := ev.evalExpr(env, n.Test)
		if err != nil {
			return nil, err
		}
		if value.ToBoolean(t) {
			return ev.execStmt(env.Child(), n.Cons)
		} else if n.Alt != nil {
			return ev.execStmt(env.Child(), n.Alt)
		}
		return nil, nil

	case *ast.WhileStmt:
		return nil, ev.execWhile(env, n)

	case *ast.DoWhileStmt:
		return nil, ev.execDoWhile(env, n)

	case *ast.ForStmt:
		return nil, ev.execFor(env, n)

	case *ast.ForInStmt:
		return nil, ev.execForIn(env, n)

	case *ast.TryStmt:
		return nil, ev.execTry(env, n)

	case *ast.SwitchStmt:
		return nil, ev.execSwitch(env, n, "")

	case *ast.LabeledStmt:
		return nil, ev.execLabeled(env, n)

	case *ast.BreakStmt:
		return nil, breakSignal{label: n.Label}

	case *ast.ContinueStmt:
		return nil, continueSignal{label: n.Label}

	case *ast.ReturnStmt:
		var v value.Value = value.Undef
		if n.Arg != nil {
			rv, err := ev.evalExpr(env, n.Arg)
			if err != nil {
				return nil, err
			}
			v = rv
		}
		return nil, returnSignal{value: v}

	case *ast.ThrowStmt:
		v, err := ev.evalExpr(env, n.Arg)
		if err != nil {
			return nil, err
		}
		return nil, throwValue(v)

	case *ast.ImportDeclStmt:
		return nil, ev.execImport(env, n)

	case *ast.ExportNamedStmt:
		return nil, ev.execExportNamed(env, n)

	case *ast.ExportDefaultStmt:
		return nil, ev.execExportDefault(env, n)

	case *ast.ExportAllStmt:
		return nil, ev.execExportAll(env, n)

	default:
		return nil, ev.typeError("unsupported statement")
	}
}

// execImport resolves n.Source through the installed ModuleLoader and
// binds each specifier into env: `import * as ns` binds the namespace
// object directly (its own accessor properties already give live reads),
// while named/default imports become indirect bindings that forward every
// read to the source module's Environment.
func (ev *Evaluator) execImport(env *Environment, n *ast.ImportDeclStmt) error {
	mod, err := ev.loadModule(n.Source)
	if err != nil {
		return err
	}
	for _, spec := range n.Specifiers {
		if spec.Imported == "*" {
			env.Declare(spec.Local, mod.Namespace, false)
			continue
		}
		env.DeclareIndirect(spec.Local, mod.Env, spec.Imported)
	}
	return nil
}

// execExportNamed handles all three `export` shapes that carry named
// bindings: wrapping a declaration (`export function f(){}`), re-exporting
// specifiers from another module (`export {a} from "mod"`), and exporting
// already-declared local bindings (`export {a as b}`).
func (ev *Evaluator) execExportNamed(env *Environment, n *ast.ExportNamedStmt) error {
	mod := env.moduleOf()
	if mod == nil {
		return ev.typeError("'export' statement not allowed outside a module")
	}
	if n.Decl != nil {
		if _, err := ev.execStmt(env, n.Decl); err != nil {
			return err
		}
		for _, name := range declaredNames(n.Decl) {
			exportAccessor(ev, mod, name, env, name)
		}
		return nil
	}
	if n.Source != "" {
		src, err := ev.loadModule(n.Source)
		if err != nil {
			return err
		}
		for _, spec := range n.Specifiers {
			reexportNamespaceAccessor(mod, spec.Exported, src, spec.Local)
		}
		return nil
	}
	for _, spec := range n.Specifiers {
		exportAccessor(ev, mod, spec.Exported, env, spec.Local)
	}
	return nil
}

// execExportDefault handles `export default <expr|function|class>`: a
// named function/class declaration is declared under its own name (so it
// can still refer to itself recursively) and exported as "default"; an
// anonymous declaration or bare expression is bound under a synthetic local
// name instead.
func (ev *Evaluator) execExportDefault(env *Environment, n *ast.ExportDefaultStmt) error {
	mod := env.moduleOf()
	if mod == nil {
		return ev.typeError("'export' statement not allowed outside a module")
	}
	const defaultLocal = "*default*"
	switch d := n.Decl.(type) {
	case *ast.FunctionDeclStmt:
		if _, err := ev.execStmt(env, d); err != nil {
			return err
		}
		name := d.Function.Name
		if name == "" {
			name = defaultLocal
			fn := ev.makeClosure(d.Function, env)
			env.Declare(name, fn, true)
		}
		exportAccessor(ev, mod, "default", env, name)
		return nil
	case *ast.ClassDeclStmt:
		cls, err := ev.evalClass(env, d.Class)
		if err != nil {
			return err
		}
		name := d.Class.Name
		if name == "" {
			name = defaultLocal
		}
		env.Declare(name, cls, true)
		exportAccessor(ev, mod, "default", env, name)
		return nil
	case ast.Expr:
		v, err := ev.evalExpr(env, d)
		if err != nil {
			return err
		}
		env.Declare(defaultLocal, v, false)
		exportAccessor(ev, mod, "default", env, defaultLocal)
		return nil
	default:
		return ev.typeError("unsupported export default declaration")
	}
}

// execExportAll handles `export * from "mod"` (forwards every one of mod's
// own exports, excluding "default") and `export * as ns from "mod"` (binds
// the entire source namespace under one local export name instead).
func (ev *Evaluator) execExportAll(env *Environment, n *ast.ExportAllStmt) error {
	mod := env.moduleOf()
	if mod == nil {
		return ev.typeError("'export' statement not allowed outside a module")
	}
	src, err := ev.loadModule(n.Source)
	if err != nil {
		return err
	}
	if n.As != "" {
		mod.Namespace.DefineOwn(n.As, &value.PropertyDescriptor{Value: src.Namespace, Writable: false, Enumerable: true})
		return nil
	}
	for _, key := range src.Namespace.OwnKeys() {
		name, ok := key.(string)
		if !ok || name == "default" {
			continue
		}
		reexportNamespaceAccessor(mod, name, src, name)
	}
	return nil
}

func (ev *Evaluator) execLabeled(env *Environment, n *ast.LabeledStmt) error {
	switch n.Body.(type) {
	case *ast.ForStmt, *ast.WhileStmt, *ast.DoWhileStmt, *ast.ForInStmt:
		_, err := ev.execStmt(env, n.Body)
		return err
	case *ast.SwitchStmt:
		return ev.execSwitch(env, n.Body.(*ast.SwitchStmt), n.Label)
	default:
		_, err := ev.execStmt(env, n.Body)
		if isBreak(err, n.Label) {
			return nil
		}
		return err
	}
}

func (ev *Evaluator) execWhile(env *Environment, n *ast.WhileStmt) error {
	for {
		t, err := ev.evalExpr(env, n.Test)
		if err != nil {
			return err
		}
		if !value.ToBoolean(t) {
			return nil
		}
		_, err = ev.execStmt(env.Child(), n.Body)
		if err == nil {
			continue
		}
		if isBreak(err, n.Label) {
			return nil
		}
		if isContinue(err, n.Label) {
			continue
		}
		return err
	}
}

func (ev *Evaluator) execDoWhile(env *Environment, n *ast.DoWhileStmt) error {
	for {
		_, err := ev.execStmt(env.Child(), n.Body)
		if err != nil {
			if isBreak(err, n.Label) {
				return nil
			}
			if !isContinue(err, n.Label) {
				return err
			}
		}
		t, err := ev.evalExpr(env, n.Test)
		if err != nil {
			return err
		}
		if !value.ToBoolean(t) {
			return nil
		}
	}
}

func (ev *Evaluator) execFor(env *Environment, n *ast.ForStmt) error {
	loopEnv := env.Child()
	if n.Init != nil {
		if decl, ok := n.Init.(*ast.VarDeclStmt); ok {
			if _, err := ev.execStmt(loopEnv, decl); err != nil {
				return err
			}
		} else if e, ok := n.Init.(ast.Expr); ok {
			if _, err := ev.evalExpr(loopEnv, e); err != nil {
				return err
			}
		}
	}
	for {
		if n.Test != nil {
			t, err := ev.evalExpr(loopEnv, n.Test)
			if err != nil {
				return err
			}
			if !value.ToBoolean(t) {
				return nil
			}
		}
		_, err := ev.execStmt(loopEnv.Child(), n.Body)
		if err != nil {
			if isBreak(err, n.Label) {
				return nil
			}
			if !isContinue(err, n.Label) {
				return err
			}
		}
		if n.Update != nil {
			if _, err := ev.evalExpr(loopEnv, n.Update); err != nil {
				return err
			}
		}
	}
}

func (ev *Evaluator) execForIn(env *Environment, n *ast.ForInStmt) error {
	obj, err := ev.evalExpr(env, n.Object)
	if err != nil {
		return err
	}
	var items []value.Value
	if n.IsOf {
		items, err = ev.iterateToSlice(obj)
		if err != nil {
			return err
		}
	} else {
		items = ev.enumerableKeys(obj)
	}
	for _, item := range items {
		iterEnv := env.Child()
		if err := ev.bindPattern(iterEnv, n.Target, item, n.Kind != ast.Const); err != nil {
			return err
		}
		_, err := ev.execStmt(iterEnv, n.Body)
		if err != nil {
			if isBreak(err, n.Label) {
				return nil
			}
			if isContinue(err, n.Label) {
				continue
			}
			return err
		}
	}
	return nil
}

func (ev *Evaluator) execTry(env *Environment, n *ast.TryStmt) error {
	_, blockErr := ev.execBlock(env.Child(), n.Block.Body)

	var result error = blockErr
	if blockErr != nil && n.HasCatch {
		if thrown, ok := asThrown(blockErr); ok {
			catchEnv := env.Child()
			if n.CatchParam != nil {
				if err := ev.bindPattern(catchEnv, n.CatchParam, thrown, true); err != nil {
					return err
				}
			}
			_, result = ev.execBlock(catchEnv, n.CatchBlock.Body)
		}
	}

	if n.FinallyBlock != nil {
		_, finallyErr := ev.execBlock(env.Child(), n.FinallyBlock.Body)
		if finallyErr != nil {
			return finallyErr // a finally completion overrides try/catch's
		}
	}
	return result
}

func (ev *Evaluator) execSwitch(env *Environment, n *ast.SwitchStmt, label string) error {
	disc, err := ev.evalExpr(env, n.Disc)
	if err != nil {
		return err
	}
	switchEnv := env.Child()
	matched := -1
	for i, c := range n.Cases {
		if c.Test == nil {
			continue
		}
		t, err := ev.evalExpr(switchEnv, c.Test)
		if err != nil {
			return err
		}
		if value.StrictEquals(disc, t) {
			matched = i
			break
		}
	}
	if matched < 0 {
		for i, c := range n.Cases {
			if c.Test == nil {
				matched = i
				break
			}
		}
	}
	if matched < 0 {
		return nil
	}
	for i := matched; i < len(n.Cases); i++ {
		for _, s := range n.Cases[i].Body {
			_, err := ev.execStmt(switchEnv, s)
			if err != nil {
				if isBreak(err, label) {
					return nil
				}
				return err
			}
		}
	}
	return nil
}

// toPropertyKey converts a value to the key shape Object/GetOwn expects:
// Symbol keys stay Symbol, everything else becomes its string form.
func (ev *Evaluator) toPropertyKey(v value.Value) any {
	if s, ok := v.(value.Symbol); ok {
		return s
	}
	return value.ToStringValue(v)
}
