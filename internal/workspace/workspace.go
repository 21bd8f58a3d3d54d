// Package workspace implements the Workspace Engine (spec.md 4.6), the
// orchestrator owning the Module Manager, Dependency Graph, Interface
// Cache, Disk Cache, Task Pool, LRU, and Symbol Index. Grounded on the
// teacher's internal/server/workspace.go WorkspaceManager (background
// analysis queue/worker, open/change/close flows), generalized from its
// naive per-file dependency maps to the full freshness-lattice,
// worker-pool-scheduled design the spec requires.
package workspace

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/javanhut/corelsp/internal/cache"
	"github.com/javanhut/corelsp/internal/carrion/ast"
	"github.com/javanhut/corelsp/internal/collector"
	"github.com/javanhut/corelsp/internal/compiler"
	"github.com/javanhut/corelsp/internal/config"
	"github.com/javanhut/corelsp/internal/diag"
	"github.com/javanhut/corelsp/internal/graph"
	"github.com/javanhut/corelsp/internal/index"
	"github.com/javanhut/corelsp/internal/logging"
	"github.com/javanhut/corelsp/internal/lru"
	"github.com/javanhut/corelsp/internal/module"
	"github.com/javanhut/corelsp/internal/pkginfo"
	"github.com/javanhut/corelsp/internal/taskpool"
)

// Engine is the workspace-wide orchestrator (CompilerCangjieProject in
// original_source terms).
type Engine struct {
	Root     string
	Cfg      *config.Config
	Modules  *module.Manager
	Resolver *module.Resolver

	Graph     *graph.Graph
	Iface     *cache.InterfaceCache
	Disk      *cache.DiskCache
	Pool      *taskpool.Pool
	LRU       *lru.Cache
	Index     index.Index
	IndexDB   *index.IndexDatabase

	mu       sync.RWMutex
	packages map[string]*pkginfo.Info // full-name -> info
	dirToPkg map[string]string        // directory -> full-name
	instances map[string]*compiler.Unit // full-name -> last compiled unit

	watcher *fsnotify.Watcher
}

// New builds an Engine for workspaceRoot with the given configuration.
func New(workspaceRoot string, cfg *config.Config) *Engine {
	// NewDiskCache nests its own ".cache" directory name under the root we
	// give it, so hand it cfg.CacheDir's parent directly.
	disk := cache.NewDiskCache(filepath.Join(workspaceRoot, filepath.Dir(cfg.CacheDir)))
	idxDB := index.NewIndexDatabase(disk)
	return &Engine{
		Root:      workspaceRoot,
		Cfg:       cfg,
		Modules:   module.NewManager(workspaceRoot, cfg),
		Resolver:  module.NewResolver(workspaceRoot),
		Graph:     graph.New(),
		Iface:     cache.NewInterfaceCache(),
		Disk:      disk,
		Pool:      taskpool.New(cfg.WorkerCount),
		LRU:       lru.New(lru.DefaultCapacity),
		Index:     idxDB,
		IndexDB:   idxDB,
		packages:  make(map[string]*pkginfo.Info),
		dirToPkg:  make(map[string]string),
		instances: make(map[string]*compiler.Unit),
	}
}

// FullCompile performs workspace initialization (spec.md 4.6.1).
func (e *Engine) FullCompile(ctx context.Context) error {
	files, err := e.Resolver.WorkspaceFiles()
	if err != nil {
		return errors.Wrap(err, "enumerating workspace files")
	}

	// Step 2-3: group files into packages by directory (module-scoped
	// packages and loose/root packages alike — a directory is a package).
	byDir := make(map[string][]string)
	for _, f := range files {
		dir := filepath.Dir(f)
		byDir[dir] = append(byDir[dir], f)
	}

	e.mu.Lock()
	for dir, fileList := range byDir {
		full := e.Modules.FullPackageName(fileList[0])
		mod := e.Modules.OwningModule(fileList[0])
		moduleName, moduleRoot := "", ""
		if mod != nil {
			moduleName, moduleRoot = mod.Name, mod.RootPath
		}
		pkg := pkginfo.New(dir, full, moduleName, moduleRoot)
		for _, f := range fileList {
			contents, rerr := readFile(f)
			if rerr != nil {
				logging.Get().Warn().Str("file", f).Err(rerr).Msg("failed to read source file")
				continue
			}
			pkg.SetFile(f, contents)
		}
		e.packages[full] = pkg
		e.dirToPkg[dir] = full
		e.Iface.MarkStale(full, cache.Stale)
	}
	e.mu.Unlock()

	// Step 4: parse each package and record its discovered imports.
	var names []string
	e.mu.RLock()
	for name := range e.packages {
		names = append(names, name)
	}
	e.mu.RUnlock()
	sort.Strings(names)

	for _, name := range names {
		e.parseAndRecordImports(name)
	}

	// Step 5: attempt disk-cache hydration in topological order.
	order, acyclic := e.Graph.PartialTopologicalSort(names, true)
	if !acyclic {
		order = names
	}
	for _, name := range order {
		e.tryHydrateFromDisk(name)
	}

	// Step 6-7: submit compile tasks for the full topologically sorted list.
	cycles, hasCycles := e.Graph.FindCycles()
	if hasCycles {
		e.reportCycles(cycles)
	}

	for _, name := range order {
		name := name
		predecessors := taskIDsFor(e.Graph.AllDependencies(name))
		e.Pool.Submit(ctx, taskpool.TaskID(name), predecessors, func(ctx context.Context) error {
			return e.compileOne(name)
		})
	}

	// Step 8.
	return e.Pool.WaitUntilAllTasksComplete()
}

func taskIDsFor(pkgs []string) []taskpool.TaskID {
	out := make([]taskpool.TaskID, len(pkgs))
	for i, p := range pkgs {
		out[i] = taskpool.TaskID(p)
	}
	return out
}

func (e *Engine) parseAndRecordImports(name string) {
	e.mu.Lock()
	pkg := e.packages[name]
	e.mu.Unlock()
	if pkg == nil {
		return
	}
	unit := compiler.PreCompileProcess(pkg)

	imports := map[string]struct{}{}
	for _, f := range unit.Files {
		for _, stmt := range f.Program.Statements {
			if imp, ok := stmt.(*ast.ImportStatement); ok && imp.Module != nil {
				imports[imp.Module.Value] = struct{}{}
			}
		}
	}
	var deps []string
	for imp := range imports {
		if resolved := e.resolveImportToPackage(imp); resolved != "" {
			deps = append(deps, resolved)
		}
	}
	e.Graph.UpdateDependencies(name, deps)

	e.mu.Lock()
	e.instances[name] = unit
	e.mu.Unlock()
}

// resolveImportToPackage maps an import name to a known package full-name,
// when that import resolves to a file already discovered as a package.
func (e *Engine) resolveImportToPackage(importName string) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if _, ok := e.packages[importName]; ok {
		return importName
	}
	for full, pkg := range e.packages {
		if filepath.Base(pkg.DirPath) == importName {
			return full
		}
	}
	return ""
}

func (e *Engine) tryHydrateFromDisk(name string) {
	e.mu.RLock()
	pkg := e.packages[name]
	e.mu.RUnlock()
	if pkg == nil {
		return
	}
	hash := cache.SourcesHash(pkg.Snapshot())
	blob, ok := e.Disk.LoadBlob(pkg.DirPath, hash)
	if !ok {
		return
	}
	e.Iface.Set(name, blob)
	if hit, err := e.IndexDB.LoadFromDisk(name, pkg.DirPath, hash); err == nil && hit {
		logging.Get().Debug().Str("pkg", name).Msg("hydrated package from disk cache")
	}
}

// compileOne is the per-package task body submitted during full
// compilation; it early-exits on a cache hit (spec.md 4.6.1 step 6).
func (e *Engine) compileOne(name string) error {
	if e.Iface.Status(name) == cache.Fresh {
		return nil
	}
	e.mu.RLock()
	pkg := e.packages[name]
	unit := e.instances[name]
	e.mu.RUnlock()
	if pkg == nil || unit == nil {
		return nil
	}

	previous := e.Iface.Get(name)
	res := compiler.CompileAfterParse(unit, previous, func(upstream string) ([]byte, bool) {
		blob := e.Iface.Get(upstream)
		return blob, blob != nil
	})

	pkg.Diag.ClearAll()
	for file, ds := range res.Diags.ByFile {
		for _, d := range ds {
			pkg.Diag.Add(file, d)
		}
	}

	if res.Blob != nil {
		e.Iface.Set(name, res.Blob)
	}

	shard := collector.Collect(name, unit.Files)
	e.Index.Update(shard)

	hash := cache.SourcesHash(pkg.Snapshot())
	e.IndexDB.RegisterLocation(name, pkg.DirPath, hash)
	if res.Blob != nil && !pkg.Diag.HasErrors() {
		_ = e.Disk.StoreBlob(pkg.DirPath, hash, res.Blob)
	}

	if evicted := e.LRU.Set(name, unit); evicted != "" {
		e.mu.Lock()
		delete(e.instances, evicted)
		e.mu.Unlock()
		logging.Get().Debug().Str("pkg", evicted).Msg("evicted compiler instance from LRU")
	}

	if res.Changed {
		direct := e.Graph.Dependents(name)
		e.Iface.UpdateStatus(direct, cache.Stale)
		transitive := e.Graph.AllDependents(name)
		e.Iface.UpdateStatus(transitive, cache.WeakStale)
	}
	return nil
}

func (e *Engine) reportCycles(cycles [][]string) {
	for _, scc := range cycles {
		for _, pkgName := range scc {
			e.mu.RLock()
			pkg := e.packages[pkgName]
			e.mu.RUnlock()
			if pkg == nil {
				continue
			}
			for file := range pkg.Buffer {
				pkg.Diag.Add(file, diag.Diagnostic{
					Message:  "circular package dependency: " + joinNames(scc),
					Severity: diag.SeverityError,
					Source:   "corelsp",
				})
			}
		}
	}
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += " -> "
		}
		out += n
	}
	return out
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
