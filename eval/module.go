package eval

import (
	"github.com/jsrt/jsrt/ast"
	"github.com/jsrt/jsrt/fold"
	"github.com/jsrt/jsrt/internal/errs"
	"github.com/jsrt/jsrt/value"
)

// Module is one linked/evaluating/evaluated ES module record (spec.md
// C11): its own top-level Environment (a child of the engine's global
// scope, so it sees every stdlib global but keeps its own bindings
// separate) and a Namespace object whose properties are accessor
// properties reading live out of Env — so a re-assignment of an exported
// binding inside the module is visible to every importer without copying.
type Module struct {
	Path      string
	Env       *Environment
	Namespace *value.Object
}

// ModuleLoader resolves an import/export specifier to a linked-and-
// evaluated Module, recursing into further imports as needed. Package
// modloader implements this against a host-supplied resolver and a
// path-keyed cache; Evaluator only depends on the interface so the two
// packages don't import each other.
type ModuleLoader interface {
	Load(specifier string) (*Module, error)
}

// SetModuleLoader installs the loader `import`/`export ... from`/dynamic
// import() statements resolve specifiers through. Leaving it unset makes
// every module statement fail with a ReferenceError, matching spec.md §6's
// "absent-loader causes all imports to fail with ReferenceError".
func (ev *Evaluator) SetModuleLoader(l ModuleLoader) { ev.moduleLoader = l }

// ModuleLoader exposes the installed loader, used by modloader's own Load
// implementation to recurse (via Evaluator.EvaluateModuleBody) and by
// expr.go's dynamic import() handling.
func (ev *Evaluator) ModuleLoader() ModuleLoader { return ev.moduleLoader }

func (ev *Evaluator) loadModule(specifier string) (*Module, error) {
	if ev.moduleLoader == nil {
		return nil, &errs.RuntimeError{Kind: errs.KindReferenceError, Message: "no module loader configured; setModuleLoader was never called"}
	}
	return ev.moduleLoader.Load(specifier)
}

// NewModule allocates an empty module record — its Environment and
// Namespace exist, but no statement has executed yet. modloader calls this
// before evaluating the body and registers the (still-empty) record in its
// cache first, so a circular import that reaches back to `path` mid-link
// observes this same Env/Namespace instead of re-entering evaluation: reads
// of bindings the body hasn't declared yet surface as a ReferenceError,
// exactly the TDZ behavior spec.md §4.11 calls for.
func (ev *Evaluator) NewModule(path string) *Module {
	env := ev.global.Child()
	mod := &Module{Path: path, Env: env, Namespace: ev.realm.NewObject()}
	env.mod = mod
	return mod
}

// EvaluateModuleBody runs prog's top-level statements against mod.Env,
// constant-folding first the same way Run does. Hoisting of function
// declarations happens exactly as it would for a plain script; `import`/
// `export` statements are additionally recognized by execStmt because
// mod.Env carries the module record they mutate.
func (ev *Evaluator) EvaluateModuleBody(mod *Module, prog *ast.Program) error {
	folded := fold.Program(prog)
	_, err := ev.execBlock(mod.Env, folded.Body)
	return err
}

// exportAccessor installs one live-read accessor property on mod's
// namespace: `localName` is read out of env (mod.Env for a local export,
// or another module's Env when re-exporting) every time the property is
// read, rather than copied once at export time.
func exportAccessor(ev *Evaluator, mod *Module, exportedName string, env *Environment, localName string) {
	getter := ev.realm.NewFunction("", 0, func(_ value.Value, _ []value.Value) (value.Value, error) {
		return env.Get(localName)
	})
	mod.Namespace.DefineOwn(exportedName, &value.PropertyDescriptor{
		IsAccessor: true,
		Get:        getter,
		Enumerable: true,
	})
}

// reexportNamespaceAccessor copies src's own accessor property for key onto
// mod's namespace verbatim (same Get function), so `export * from "src"` and
// `export {x} from "src"` forward reads through src's live bindings without
// this module's Env needing to know the name at all.
func reexportNamespaceAccessor(mod *Module, exportedName string, src *Module, sourceName string) {
	d := src.Namespace.GetOwn(sourceName)
	if d == nil || !d.IsAccessor {
		return
	}
	mod.Namespace.DefineOwn(exportedName, &value.PropertyDescriptor{
		IsAccessor: true,
		Get:        d.Get,
		Enumerable: true,
	})
}

// declaredNames returns the binding names a declaration statement
// introduces at module top level — the set `export <decl>` exports under
// their own names. Only the shapes a module top-level declaration can
// actually take are handled (var/let/const, function, class).
func declaredNames(s ast.Stmt) []string {
	switch n := s.(type) {
	case *ast.VarDeclStmt:
		var names []string
		for _, d := range n.Decls {
			names = append(names, patternNames(d.Target)...)
		}
		return names
	case *ast.FunctionDeclStmt:
		return []string{n.Function.Name}
	case *ast.ClassDeclStmt:
		return []string{n.Class.Name}
	default:
		return nil
	}
}

// patternNames flattens every identifier a binding pattern introduces,
// recursing through array/object destructuring, defaults, and rest
// elements — used by `export <decl>` to find every name the wrapped
// declaration binds.
func patternNames(p ast.Pattern) []string {
	switch n := p.(type) {
	case *ast.Identifier:
		return []string{n.Name}
	case *ast.ArrayPattern:
		var names []string
		for _, el := range n.Elements {
			if el == nil {
				continue
			}
			names = append(names, patternNames(el)...)
		}
		return names
	case *ast.ObjectPattern:
		var names []string
		for _, prop := range n.Properties {
			names = append(names, patternNames(prop.Value)...)
		}
		if n.Rest != nil {
			names = append(names, patternNames(n.Rest)...)
		}
		return names
	case *ast.AssignPattern:
		return patternNames(n.Target)
	case *ast.RestElement:
		return patternNames(n.Target)
	default:
		return nil
	}
}
