package workspace

import (
	"context"
	"path/filepath"

	"github.com/javanhut/corelsp/internal/compiler"
	"github.com/javanhut/corelsp/internal/diag"
	"github.com/javanhut/corelsp/internal/index"
)

// Capability queries (spec.md 4.6.4). The position-based queries
// (SymbolAt and the queries built on it, Definition, References,
// HoverSymbol) call EnsureFresh first; WorkspaceSymbolSearch,
// CompletionCandidates, Supertypes, Subtypes, the call hierarchy queries
// and Diagnostics read the current index and diagnostics as they are.

// PackageForFile resolves the full package name owning path from the
// known package directories. It returns false for a file whose directory
// has no package yet; it does not create one.
func (e *Engine) PackageForFile(path string) (string, bool) {
	dir := filepath.Dir(path)
	e.mu.RLock()
	full, ok := e.dirToPkg[dir]
	e.mu.RUnlock()
	return full, ok
}

// SymbolAt resolves the symbol referenced (by definition or use) at
// file:line:col within pkgFullName, for handlers that start from a cursor
// position rather than a known SymbolID.
func (e *Engine) SymbolAt(ctx context.Context, pkgFullName, file string, line, col int) (index.SymbolID, bool) {
	if err := e.EnsureFresh(ctx, pkgFullName); err != nil {
		return index.InvalidSymbolID, false
	}
	return e.Index.SymbolAt(pkgFullName, file, line, col)
}

// DocumentHighlights returns every occurrence of the symbol at file:line:col
// that lies within the same file (spec.md 4.8's refs() scoped to one file,
// grounded on original_source's DocumentHighlightImpl.cpp).
func (e *Engine) DocumentHighlights(ctx context.Context, pkgFullName, file string, line, col int) ([]index.Ref, bool) {
	id, ok := e.SymbolAt(ctx, pkgFullName, file, line, col)
	if !ok {
		return nil, false
	}
	var out []index.Ref
	e.Index.Refs([]index.SymbolID{id}, index.RefAll, func(_ index.SymbolID, r index.Ref) {
		if r.Location.FileURI == file {
			out = append(out, r)
		}
	})
	return out, true
}

// PrepareRename validates that the identifier at file:line:col names a
// renameable declaration (has a valid SymbolID), per spec.md D's
// PrepareRename adapter.
func (e *Engine) PrepareRename(ctx context.Context, pkgFullName, file string, line, col int) (index.Symbol, bool) {
	id, ok := e.SymbolAt(ctx, pkgFullName, file, line, col)
	if !ok || id == index.InvalidSymbolID {
		return index.Symbol{}, false
	}
	return e.Index.GetAimSymbol(id)
}

// RenameEdits computes every text edit needed to rename the declaration at
// file:line:col to newName: the definition occurrence plus every reference,
// across every package (Testable Property P8, scenario 5).
func (e *Engine) RenameEdits(ctx context.Context, pkgFullName, file string, line, col int, newName string) (map[string][]index.Location, bool) {
	id, ok := e.SymbolAt(ctx, pkgFullName, file, line, col)
	if !ok || id == index.InvalidSymbolID {
		return nil, false
	}
	// Renaming may affect call sites in any downstream package, so the
	// same freshness guarantee find-references relies on applies here.
	deps := e.Graph.AllDependents(pkgFullName)
	for _, dep := range deps {
		_ = e.RecompileIfStale(ctx, dep)
	}

	ids := append([]index.SymbolID{id}, e.Index.FindRiddenDown(id)...)
	if up, _ := e.Index.FindRiddenUp(id); len(up) > 0 {
		ids = append(ids, up...)
	}

	edits := map[string][]index.Location{}
	e.Index.Refs(ids, index.RefAll, func(_ index.SymbolID, r index.Ref) {
		edits[r.Location.FileURI] = append(edits[r.Location.FileURI], r.Location)
	})
	return edits, len(edits) > 0
}

// Definition resolves the symbol referenced at a source location to its
// defining location.
func (e *Engine) Definition(ctx context.Context, pkgFullName string, id index.SymbolID) (index.Location, bool) {
	if err := e.EnsureFresh(ctx, pkgFullName); err != nil {
		return index.Location{}, false
	}
	def, _ := e.Index.RefsFindReference([]index.SymbolID{id})
	if def == nil {
		return index.Location{}, false
	}
	return def.Location, true
}

// References returns every non-definition occurrence of id. Per spec.md
// 4.6.4, find-references is the one query that must promote every
// downstream package of the declaring package to Fresh before reading the
// index — a reference may live in any package that (transitively) imports
// pkgFullName, not just in pkgFullName's own upstream dependencies.
func (e *Engine) References(ctx context.Context, pkgFullName string, id index.SymbolID) ([]index.Location, error) {
	if err := e.EnsureFresh(ctx, pkgFullName); err != nil {
		return nil, err
	}
	for _, downstream := range e.Graph.AllDependents(pkgFullName) {
		if err := e.RecompileIfStale(ctx, downstream); err != nil {
			return nil, err
		}
	}
	var out []index.Location
	e.Index.Refs([]index.SymbolID{id}, index.RefReference, func(_ index.SymbolID, r index.Ref) {
		out = append(out, r.Location)
	})
	return out, nil
}

// HoverSymbol resolves id to its full Symbol record, for rendering hover
// content (spec.md 4.6.4, capability handlers consume this).
func (e *Engine) HoverSymbol(ctx context.Context, pkgFullName string, id index.SymbolID) (index.Symbol, bool) {
	if err := e.EnsureFresh(ctx, pkgFullName); err != nil {
		return index.Symbol{}, false
	}
	return e.Index.GetAimSymbol(id)
}

// WorkspaceSymbolSearch fuzzy-searches every indexed symbol by name, for
// the workspace/symbol capability (SPEC_FULL.md D).
func (e *Engine) WorkspaceSymbolSearch(query string) []index.Symbol {
	var out []index.Symbol
	e.Index.FuzzyFind(query, func(s index.Symbol) {
		out = append(out, s)
	})
	return out
}

// CompletionCandidates returns import-visible symbols from pkgFullName's
// direct dependencies whose name has prefix, plus members extend blocks
// contribute to typeID if non-zero (spec.md 4.8 completion queries).
func (e *Engine) CompletionCandidates(pkgFullName, moduleRoot, prefix string, typeID index.SymbolID) []index.Symbol {
	deps := map[string]bool{}
	for _, d := range e.Graph.Dependencies(pkgFullName) {
		deps[d] = true
	}
	out := e.Index.FindImportSymsOnCompletion(pkgFullName, moduleRoot, deps, prefix)
	if typeID != index.InvalidSymbolID {
		for _, item := range e.Index.FindExtendSymsOnCompletion(typeID) {
			if sym, ok := e.Index.GetAimSymbol(item.ID); ok {
				out = append(out, sym)
			}
		}
	}
	return out
}

// Supertypes walks the overrides chain upward from id (type hierarchy
// capability, SPEC_FULL.md D): for a method, the parent methods it
// overrides. Class base-of relations are not followed, so a class id
// yields no supertypes.
func (e *Engine) Supertypes(id index.SymbolID) []index.Symbol {
	chain, _ := e.Index.FindRiddenUp(id)
	return e.resolveAll(chain)
}

// Subtypes walks the ridden-by chain downward from id: the methods that
// override it, transitively. Class base-of relations are not followed.
func (e *Engine) Subtypes(id index.SymbolID) []index.Symbol {
	chain := e.Index.FindRiddenDown(id)
	return e.resolveAll(chain)
}

func (e *Engine) resolveAll(ids []index.SymbolID) []index.Symbol {
	var out []index.Symbol
	for _, id := range ids {
		if sym, ok := e.Index.GetAimSymbol(id); ok {
			out = append(out, sym)
		}
	}
	return out
}

// CallHierarchyIncoming returns the symbols that call id, via CalledBy
// relations (SPEC_FULL.md D call hierarchy).
func (e *Engine) CallHierarchyIncoming(id index.SymbolID) []index.Symbol {
	var callers []index.SymbolID
	e.Index.Relations(id, index.CalledBy, func(r index.Relation) {
		if r.Subject == id {
			callers = append(callers, r.Object)
		}
	})
	return e.resolveAll(callers)
}

// CallHierarchyOutgoing returns the symbols id calls, via ContainedBy
// relations recorded from the collector (a function's callees are its
// contained references).
func (e *Engine) CallHierarchyOutgoing(id index.SymbolID) []index.Symbol {
	var callees []index.SymbolID
	e.Index.Relations(id, index.ContainedBy, func(r index.Relation) {
		if r.Subject == id {
			callees = append(callees, r.Object)
		}
	})
	return e.resolveAll(callees)
}

// Diagnostics returns the current diagnostics for pkgFullName.
func (e *Engine) Diagnostics(pkgFullName string) *diag.Sink {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if pkg, ok := e.packages[pkgFullName]; ok {
		return pkg.Diag
	}
	return diag.NewSink()
}

// CompilePassForComplete runs a speculative, non-persisted compile of one
// file's contents for completion purposes (spec.md 4.5
// compilePassForComplete), writing to the package's trash diagnostic sink.
func (e *Engine) CompilePassForComplete(pkgFullName, path, contents string) (*compiler.Unit, bool) {
	e.mu.RLock()
	pkg := e.packages[pkgFullName]
	e.mu.RUnlock()
	if pkg == nil {
		return nil, false
	}
	a, program := compiler.CompilePassForComplete(pkg, path, contents)
	return &compiler.Unit{Pkg: pkg, Files: []compiler.ParsedFile{{Path: path, Program: program, Analyzer: a}}}, true
}
