// Package modloader implements spec.md C11: resolving a module specifier to
// source text through a host-supplied Resolver, parsing and linking it
// (recursively linking its own imports before evaluating), and caching the
// result by path so a module with multiple importers evaluates exactly
// once. It implements eval.ModuleLoader, the seam package eval's
// import/export statement handling and dynamic import() call through,
// keeping the dependency one-directional (modloader imports eval, never the
// reverse).
package modloader

import (
	"github.com/jsrt/jsrt/eval"
	"github.com/jsrt/jsrt/internal/errs"
	"github.com/jsrt/jsrt/parser"
	"github.com/jsrt/jsrt/token"
)

// Resolver maps a module specifier (as written in an import/export
// statement or dynamic import() call) to its source text, synchronously —
// spec.md §4.11 describes the host resolver as exactly this shape. A
// specifier the host can't locate should return a non-nil error; Loader
// wraps it as errs.ModuleNotFound.
type Resolver func(specifier string) (string, error)

// moduleState tracks one cache entry's progress through linking so a
// circular import is detected and handed the in-progress record instead of
// re-entering Load.
type moduleState int

const (
	stateLinking moduleState = iota
	stateEvaluated
)

type cacheEntry struct {
	state moduleState
	mod   *eval.Module
}

// Loader is the concrete eval.ModuleLoader: one Resolver plus the
// path-keyed cache spec.md calls for. Construct one per Evaluator with New
// and install it via ev.SetModuleLoader before any script that imports runs.
type Loader struct {
	ev      *eval.Evaluator
	resolve Resolver
	cache   map[string]*cacheEntry
}

// New builds a Loader bound to ev's module namespace and resolver.
func New(ev *eval.Evaluator, resolve Resolver) *Loader {
	return &Loader{ev: ev, resolve: resolve, cache: map[string]*cacheEntry{}}
}

// Load resolves, parses, links, and evaluates the module at path, or
// returns the cached result if this path has already been (or is currently
// being) loaded. A specifier already in stateLinking means path has formed
// an import cycle back to a module still executing its top level; the
// partially-populated Module record is returned as-is, so the importer sees
// live TDZ-ReferenceError reads for any binding the in-progress module
// hasn't declared yet, and ordinary reads for anything it already has —
// exactly spec.md §4.11's circular-import contract.
func (l *Loader) Load(path string) (*eval.Module, error) {
	if entry, ok := l.cache[path]; ok {
		return entry.mod, nil
	}

	source, err := l.resolve(path)
	if err != nil {
		return nil, &errs.ModuleNotFound{Specifier: path, Cause: err}
	}

	prog, err := parser.Parse(source, true)
	if err != nil {
		return nil, &errs.ParseError{Pos: parsePosition(err), Message: err.Error(), Cause: err}
	}

	mod := l.ev.NewModule(path)
	entry := &cacheEntry{state: stateLinking, mod: mod}
	l.cache[path] = entry

	if err := l.ev.EvaluateModuleBody(mod, prog); err != nil {
		delete(l.cache, path)
		return nil, err
	}
	entry.state = stateEvaluated
	return mod, nil
}

func parsePosition(err error) token.Position {
	if se, ok := err.(*parser.SyntaxError); ok {
		return se.Pos
	}
	return token.Position{}
}
