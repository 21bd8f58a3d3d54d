package module

import (
	"path/filepath"
	"strings"

	"github.com/javanhut/corelsp/internal/config"
)

// Module is the Module Manager's output per module (spec.md 4.1):
// {moduleName, moduleRootPath, srcPath, cjoRequiresMap,
// allDirectDependencies, allTransitiveDependencies}.
type Module struct {
	Name                   string
	RootPath               string
	SrcPath                string
	CjoRequiresMap         map[string]string // packageName -> interface-blob path
	AllDirectDependencies  []string
	AllTransitiveDependencies []string
}

// Manager resolves a workspace's manifest into a set of modules.
type Manager struct {
	Modules map[string]*Module
}

// NewManager builds the module set from the loaded configuration,
// normalizing every path (case-folded on case-insensitive filesystems is
// left to the OS; separators are normalized to forward slash per
// spec.md 4.1).
func NewManager(workspaceRoot string, cfg *config.Config) *Manager {
	m := &Manager{Modules: make(map[string]*Module)}
	for _, mm := range cfg.Modules {
		root := workspaceRoot
		src := normalizePath(filepath.Join(root, mm.SrcPath))

		cjoMap := make(map[string]string, len(mm.PackageRequires))
		for _, req := range mm.PackageRequires {
			name, path := splitRequireEntry(req)
			cjoMap[name] = path
		}

		mod := &Module{
			Name:                  mm.Name,
			RootPath:              normalizePath(root),
			SrcPath:               src,
			CjoRequiresMap:        cjoMap,
			AllDirectDependencies: append([]string{}, mm.Requires...),
		}
		mod.AllTransitiveDependencies = append([]string{}, mod.AllDirectDependencies...)
		m.Modules[mm.Name] = mod
	}
	return m
}

// splitRequireEntry parses a "name=path" or bare "name" entry.
func splitRequireEntry(entry string) (name, path string) {
	if idx := strings.IndexByte(entry, '='); idx >= 0 {
		return entry[:idx], entry[idx+1:]
	}
	return entry, ""
}

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// FullPackageName computes <moduleName>.<dotted-relative-path>, or
// <moduleName> for the src root itself, or "default" when filePath is not
// under any module's src root (spec.md 4.1).
func (m *Manager) FullPackageName(filePath string) string {
	dir := normalizePath(filepath.Dir(filePath))
	for _, mod := range m.Modules {
		rel, ok := relUnder(mod.SrcPath, dir)
		if !ok {
			continue
		}
		if rel == "." || rel == "" {
			return mod.Name
		}
		dotted := strings.ReplaceAll(rel, "/", ".")
		return mod.Name + "." + dotted
	}
	return "default"
}

// relUnder returns dir's path relative to root if dir is root or a
// descendant of root.
func relUnder(root, dir string) (string, bool) {
	root = normalizePath(root)
	dir = normalizePath(dir)
	if dir == root {
		return ".", true
	}
	if strings.HasPrefix(dir, root+"/") {
		return strings.TrimPrefix(dir, root+"/"), true
	}
	return "", false
}

// OwningModule returns the module owning filePath, or nil if the file is
// a loose (non-module) file.
func (m *Manager) OwningModule(filePath string) *Module {
	dir := normalizePath(filepath.Dir(filePath))
	for _, mod := range m.Modules {
		if _, ok := relUnder(mod.SrcPath, dir); ok {
			return mod
		}
	}
	return nil
}
