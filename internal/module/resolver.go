// Package module implements the Module Manager (spec.md 4.1): manifest
// parsing, module/package-set resolution, and import-path resolution.
// Grounded on the teacher's internal/server/module_resolver.go, whose
// tiered resolution order and path-traversal hardening are kept verbatim
// in spirit and adapted to serve the Module Manager rather than a single
// document manager.
package module

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Resolver resolves an import name to a file following the six-tier
// order: builtin -> local file -> project packages (./carrion_modules/)
// -> user packages (~/.carrion/packages/) -> global packages
// (/usr/local/share/carrion/lib/) -> standard library (Munin).
type Resolver struct {
	WorkspaceRoot   string
	LangHome        string // CANGJIE_HOME / CARRION_PATH equivalent
	UserPackagesDir string
	GlobalLibDir    string
	BuiltinModules  []string
	SourceExt       []string
}

// Info describes a resolved import.
type Info struct {
	Name       string
	FilePath   string
	IsBuiltin  bool
	IsStdLib   bool
	PackageDir string
}

// NewResolver builds a Resolver rooted at workspaceRoot, taking the
// language home from CANGJIE_HOME (falling back to the legacy
// CARRION_PATH env var the teacher used, for compatibility with existing
// installs). CANGJIE_PATH is not read.
func NewResolver(workspaceRoot string) *Resolver {
	homeDir, _ := os.UserHomeDir()
	langHome := os.Getenv("CANGJIE_HOME")
	if langHome == "" {
		langHome = os.Getenv("CARRION_PATH")
	}
	return &Resolver{
		WorkspaceRoot:   workspaceRoot,
		LangHome:        langHome,
		UserPackagesDir: filepath.Join(homeDir, ".carrion", "packages"),
		GlobalLibDir:    "/usr/local/share/carrion/lib",
		BuiltinModules:  builtinModules(),
		SourceExt:       []string{".crl", ".carrion"},
	}
}

func builtinModules() []string {
	return []string{"file", "http", "os", "sockets", "time", "math", "json", "sys", "io"}
}

// Resolve implements the six-tier resolution order.
func (r *Resolver) Resolve(moduleName, currentFile string) (*Info, error) {
	currentFile = strings.TrimPrefix(currentFile, "file://")
	currentDir := filepath.Dir(currentFile)

	if r.isBuiltin(moduleName) {
		return &Info{Name: moduleName, IsBuiltin: true}, nil
	}
	if p := r.checkLocalFile(currentDir, moduleName); p != "" {
		return &Info{Name: moduleName, FilePath: p, PackageDir: currentDir}, nil
	}
	if p := r.checkProjectPackages(currentDir, moduleName); p != "" {
		return &Info{Name: moduleName, FilePath: p, PackageDir: filepath.Dir(p)}, nil
	}
	if p := r.checkPackageDirIfExists(r.UserPackagesDir, moduleName); p != "" {
		return &Info{Name: moduleName, FilePath: p, PackageDir: filepath.Dir(p)}, nil
	}
	if p := r.checkPackageDirIfExists(r.GlobalLibDir, moduleName); p != "" {
		return &Info{Name: moduleName, FilePath: p, PackageDir: filepath.Dir(p)}, nil
	}
	if p := r.checkStandardLibrary(moduleName); p != "" {
		return &Info{Name: moduleName, FilePath: p, IsStdLib: true, PackageDir: filepath.Dir(p)}, nil
	}
	return nil, errors.Errorf("module %q not found", moduleName)
}

func (r *Resolver) checkLocalFile(currentDir, moduleName string) string {
	clean, err := r.sanitize(moduleName)
	if err != nil {
		return ""
	}
	patterns := []string{
		clean + ".crl",
		clean + ".carrion",
		filepath.Join(clean, "init.crl"),
		filepath.Join(clean, "__init__.crl"),
	}
	for _, pat := range patterns {
		full := filepath.Join(currentDir, pat)
		if !r.withinWorkspace(full) {
			continue
		}
		if r.isFile(full) {
			return full
		}
	}
	return ""
}

func (r *Resolver) checkProjectPackages(currentDir, moduleName string) string {
	dir := currentDir
	for dir != "/" && dir != "." && dir != "" {
		modulesDir := filepath.Join(dir, "carrion_modules")
		if r.isDir(modulesDir) {
			if p := r.checkPackageDir(modulesDir, moduleName); p != "" {
				return p
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func (r *Resolver) checkPackageDirIfExists(dir, moduleName string) string {
	if !r.isDir(dir) {
		return ""
	}
	return r.checkPackageDir(dir, moduleName)
}

func (r *Resolver) checkStandardLibrary(moduleName string) string {
	if r.LangHome != "" {
		for _, p := range []string{
			filepath.Join(r.LangHome, "src", "munin", moduleName+".crl"),
			filepath.Join(r.LangHome, "lib", moduleName+".crl"),
		} {
			if r.isFile(p) {
				return p
			}
		}
	}
	for _, p := range []string{
		fmt.Sprintf("/usr/local/share/carrion/munin/%s.crl", moduleName),
		fmt.Sprintf("/usr/share/carrion/munin/%s.crl", moduleName),
	} {
		if r.isFile(p) {
			return p
		}
	}
	return ""
}

func (r *Resolver) checkPackageDir(packageDir, moduleName string) string {
	clean, err := r.sanitize(moduleName)
	if err != nil {
		return ""
	}
	patterns := []string{
		filepath.Join(packageDir, clean+".crl"),
		filepath.Join(packageDir, clean, "init.crl"),
		filepath.Join(packageDir, clean, "__init__.crl"),
		filepath.Join(packageDir, clean, clean+".crl"),
	}
	for _, pat := range patterns {
		if !r.withinWorkspace(pat) && !r.within(pat, packageDir) {
			continue
		}
		if r.isFile(pat) {
			return pat
		}
	}
	return ""
}

func (r *Resolver) isBuiltin(moduleName string) bool {
	for _, b := range r.BuiltinModules {
		if b == moduleName {
			return true
		}
	}
	return false
}

func (r *Resolver) isFile(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (r *Resolver) isDir(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// sanitize rejects path-traversal and otherwise-unsafe module names,
// preserved from the teacher's hardening.
func (r *Resolver) sanitize(moduleName string) (string, error) {
	if moduleName == "" {
		return "", errors.New("empty module name")
	}
	if strings.Contains(moduleName, "..") {
		return "", errors.New("module name contains path traversal")
	}
	if strings.ContainsAny(moduleName, "/:*?\"<>|") {
		return "", errors.New("module name contains invalid characters")
	}
	if filepath.IsAbs(moduleName) {
		return "", errors.New("module name cannot be an absolute path")
	}
	if len(moduleName) > 255 {
		return "", errors.Errorf("module name too long: %d characters", len(moduleName))
	}
	return filepath.Clean(moduleName), nil
}

func (r *Resolver) withinWorkspace(path string) bool {
	return r.within(path, r.WorkspaceRoot)
}

func (r *Resolver) within(path, base string) bool {
	if base == "" {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return false
	}
	return !strings.HasPrefix(rel, "..")
}

// WorkspaceFiles walks the workspace root collecting source files,
// skipping hidden directories and dependency caches.
func (r *Resolver) WorkspaceFiles() ([]string, error) {
	var files []string
	err := filepath.Walk(r.WorkspaceRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			name := filepath.Base(path)
			if strings.HasPrefix(name, ".") || name == "node_modules" || name == "carrion_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		for _, ext := range r.SourceExt {
			if strings.HasSuffix(path, ext) {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	return files, err
}
