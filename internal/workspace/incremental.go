package workspace

import (
	"context"
	"path/filepath"

	"github.com/javanhut/corelsp/internal/cache"
	"github.com/javanhut/corelsp/internal/pkginfo"
)

// OpenDocument registers a newly opened file, creating its package if this
// is the first file seen in that directory (spec.md 4.6.2 open path).
func (e *Engine) OpenDocument(ctx context.Context, path, contents string) error {
	pkg := e.ensurePackage(path)
	pkg.SetFile(path, contents)
	e.Iface.MarkStale(pkg.FullName, cache.Stale)
	return e.RecompilePackage(ctx, pkg.FullName)
}

// ChangeDocument updates a buffered file's contents and recompiles its
// owning package (spec.md 4.6.2 edit path).
func (e *Engine) ChangeDocument(ctx context.Context, path, contents string) error {
	e.mu.RLock()
	full, ok := e.dirToPkg[filepath.Dir(path)]
	e.mu.RUnlock()
	if !ok {
		return e.OpenDocument(ctx, path, contents)
	}
	e.mu.RLock()
	pkg := e.packages[full]
	e.mu.RUnlock()
	pkg.SetFile(path, contents)
	return e.RecompilePackage(ctx, full)
}

// CloseDocument drops a file from its package's buffer. If the package
// becomes empty, its cache entries are erased outright (spec.md 4.6.2
// deletion path).
func (e *Engine) CloseDocument(ctx context.Context, path string) error {
	e.mu.RLock()
	full, ok := e.dirToPkg[filepath.Dir(path)]
	e.mu.RUnlock()
	if !ok {
		return nil
	}
	e.mu.RLock()
	pkg := e.packages[full]
	e.mu.RUnlock()
	if pkg == nil {
		return nil
	}
	if pkg.RemoveFile(path) {
		e.Iface.Erase(full)
		e.LRU.Erase(full)
		e.Index.Erase(full)
		e.mu.Lock()
		delete(e.packages, full)
		delete(e.dirToPkg, filepath.Dir(path))
		delete(e.instances, full)
		e.mu.Unlock()
		return nil
	}
	return e.RecompilePackage(ctx, full)
}

func (e *Engine) ensurePackage(path string) *pkginfo.Info {
	dir := filepath.Dir(path)
	e.mu.RLock()
	full, ok := e.dirToPkg[dir]
	e.mu.RUnlock()
	if ok {
		e.mu.RLock()
		pkg := e.packages[full]
		e.mu.RUnlock()
		return pkg
	}

	full = e.Modules.FullPackageName(path)
	mod := e.Modules.OwningModule(path)
	moduleName, moduleRoot := "", ""
	if mod != nil {
		moduleName, moduleRoot = mod.Name, mod.RootPath
	}
	pkg := pkginfo.New(dir, full, moduleName, moduleRoot)

	e.mu.Lock()
	e.packages[full] = pkg
	e.dirToPkg[dir] = full
	e.mu.Unlock()
	return pkg
}

// RecompilePackage reparses and recompiles exactly one package, then
// propagates staleness to its dependents, matching the single-package
// recompile path used on every edit and on the interface-changed
// propagation cascade (spec.md 4.6.3).
func (e *Engine) RecompilePackage(ctx context.Context, full string) error {
	e.mu.RLock()
	pkg := e.packages[full]
	e.mu.RUnlock()
	if pkg == nil {
		return nil
	}

	pkg.Diag.ClearAll()
	e.parseAndRecordImports(full)

	// Step 4: detect cycles touching the just-updated edges and stop short
	// of typechecking if one is found (spec.md 4.6.3 step 4, scenario 3).
	if cycles, has := e.Graph.FindCycles(); has {
		for _, scc := range cycles {
			for _, member := range scc {
				if member == full {
					e.reportCycles(cycles)
					return nil
				}
			}
		}
	}

	predecessors := taskIDsFor(e.Graph.AllDependencies(full))
	for _, pred := range predecessors {
		if err := e.RecompileIfStale(ctx, string(pred)); err != nil {
			return err
		}
	}

	// Drop any Fresh status first so compileOne typechecks the package
	// instead of taking its cache-hit early exit.
	e.Iface.MarkStale(full, cache.Stale)
	return e.compileOne(full)
}

// RecompileIfStale recompiles pkg only if its interface cache status is not
// already Fresh, avoiding redundant work when a dependency chain is walked
// repeatedly during a single capability query (spec.md 4.6.4). Concurrent
// callers racing to freshen the same package (two capability queries
// walking overlapping dependency chains, or RecompilePackage chasing the
// same predecessor from two branches) collapse into a single recompile via
// the task pool's singleflight group, keyed on the package name.
func (e *Engine) RecompileIfStale(ctx context.Context, full string) error {
	if e.Iface.Status(full) == cache.Fresh {
		return nil
	}
	return e.Pool.Dedupe("recompile:"+full, func() error {
		return e.RecompilePackage(ctx, full)
	})
}

// EnsureFresh walks full's dependency chain and recompiles anything not
// Fresh before a capability query reads from the symbol index or interface
// cache (spec.md 4.6.4: "ensure the package's own interface and the
// interfaces of everything it depends on are at least WEAKSTALE-safe").
func (e *Engine) EnsureFresh(ctx context.Context, full string) error {
	order, acyclic := e.Graph.PartialTopologicalSort(
		append(e.Graph.AllDependencies(full), full), true)
	if !acyclic {
		order = append(e.Graph.AllDependencies(full), full)
	}
	for _, name := range order {
		if err := e.RecompileIfStale(ctx, name); err != nil {
			return err
		}
	}
	return nil
}
