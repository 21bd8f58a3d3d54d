// Package pkginfo defines PkgInfo (spec.md 3): the per-package record the
// rest of the core keys off of.
package pkginfo

import (
	"sync"

	"github.com/javanhut/corelsp/internal/diag"
)

// InvocationRecord mirrors the compiler-invocation fields spec.md 3 lists:
// target triple, macro-expansion search paths, conditional-compilation
// keys — carried per package since a package may override module-level
// defaults.
type InvocationRecord struct {
	TargetTriple string
	MacroPaths   []string
	CondCompile  map[string]string
}

// Info is one package's PkgInfo (spec.md 3).
type Info struct {
	mu sync.Mutex

	DirPath      string
	FullName     string
	ModuleName   string
	ModuleRoot   string
	Diag         *diag.Sink
	DiagTrash    *diag.Sink
	Invocation   InvocationRecord
	Buffer       map[string]string // file-path -> current contents
	IsSourceRoot bool
	NeedsRecompile bool
}

// New creates a PkgInfo for a freshly discovered package.
func New(dirPath, fullName, moduleName, moduleRoot string) *Info {
	return &Info{
		DirPath:    dirPath,
		FullName:   fullName,
		ModuleName: moduleName,
		ModuleRoot: moduleRoot,
		Diag:       diag.NewSink(),
		DiagTrash:  diag.NewSink(),
		Buffer:     make(map[string]string),
	}
}

// SetFile updates one file's buffered contents under the package's own
// mutex (spec.md 5: "all operations on its PkgInfo buffer are serialized
// by its own mutex").
func (i *Info) SetFile(path, contents string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Buffer[path] = contents
	i.NeedsRecompile = true
}

// RemoveFile deletes a file from the buffer and reports whether the
// package is now empty (spec.md 4.6.2 deletion path).
func (i *Info) RemoveFile(path string) (empty bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.Buffer, path)
	i.NeedsRecompile = true
	return len(i.Buffer) == 0
}

// Snapshot returns a copy of the current buffer contents, safe to hand to
// a compiler invocation running outside the lock.
func (i *Info) Snapshot() map[string]string {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make(map[string]string, len(i.Buffer))
	for k, v := range i.Buffer {
		out[k] = v
	}
	return out
}

// FileCount reports how many files are currently buffered.
func (i *Info) FileCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.Buffer)
}
