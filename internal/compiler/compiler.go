// Package compiler implements the Package Compiler (spec.md 4.5): drives
// the language front end — internal/frontend.Default, the injected
// abstraction over the vendored lexer/parser/analyzer (spec.md 1's
// "deliberately out of scope: the underlying parser/typechecker") —
// against one package's buffered sources, producing a typed-free AST,
// diagnostics, and a serialized interface blob.
package compiler

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"sort"

	"github.com/pkg/errors"

	"github.com/javanhut/corelsp/internal/carrion/analyzer"
	"github.com/javanhut/corelsp/internal/carrion/ast"
	"github.com/javanhut/corelsp/internal/diag"
	"github.com/javanhut/corelsp/internal/frontend"
	"github.com/javanhut/corelsp/internal/pkginfo"
)

// ParsedFile is one buffered file's parse result.
type ParsedFile struct {
	Path     string
	Program  *ast.Program
	Analyzer *analyzer.Analyzer
}

// Unit is the package compiler's preCompileProcess output: every buffered
// file, lexed and parsed, before import resolution or typechecking.
type Unit struct {
	Pkg   *pkginfo.Info
	Files []ParsedFile
}

// PreCompileProcess reads sources from the package's buffer (falling back
// to disk is the caller's responsibility — buffers are populated from
// disk at discovery time) and parses each file, producing a typed-free
// AST per file (spec.md 4.5).
func PreCompileProcess(pkg *pkginfo.Info) *Unit {
	contents := pkg.Snapshot()
	paths := make([]string, 0, len(contents))
	for p := range contents {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	u := &Unit{Pkg: pkg}
	for _, path := range paths {
		parsed := frontend.Default.Parse(path, contents[path])
		u.Files = append(u.Files, ParsedFile{Path: path, Program: parsed.Program, Analyzer: parsed.Analyzer})
	}
	return u
}

// InterfaceBlob is the serialized public interface of a package: the
// minimal surface downstream packages need without re-parsing this
// package's sources (spec.md glossary: "Interface blob (cjo)").
type InterfaceBlob struct {
	Package string
	Exports []ExportedDecl
}

// ExportedDecl is one publicly visible declaration contributed to the
// package's interface.
type ExportedDecl struct {
	Name      string
	Kind      string
	Signature string
	Modifier  int
}

// Result is compileAfterParse's output.
type Result struct {
	Blob      []byte
	Changed   bool
	Imports   []string
	Diags     *diag.Sink
	Files     []ParsedFile
	ImportErr error
}

// UpstreamBlobProvider returns the current interface blob for an upstream
// package, or (nil, false) if none is cached yet (in which case the
// compiler falls back to the upstream's own source-based compile result,
// spec.md 4.5).
type UpstreamBlobProvider func(pkgFullName string) ([]byte, bool)

// CompileAfterParse resolves imports, performs (approximate) name
// resolution/typechecking via the analyzer, and serializes a new
// interface blob, returning changed=true iff the blob differs from
// previousBlob.
func CompileAfterParse(unit *Unit, previousBlob []byte, upstream UpstreamBlobProvider) *Result {
	res := &Result{Diags: diag.NewSink(), Files: unit.Files}

	importSet := map[string]struct{}{}
	var exports []ExportedDecl

	for _, f := range unit.Files {
		for _, stmt := range f.Program.Statements {
			if imp, ok := stmt.(*ast.ImportStatement); ok {
				name := importedName(imp)
				if name != "" {
					importSet[name] = struct{}{}
				}
			}
		}

		for _, d := range f.Analyzer.GetDiagnostics() {
			res.Diags.Add(f.Path, diag.Diagnostic{
				Range: diag.Range{
					Start: diag.Position{Line: d.Range.Start.Line, Column: d.Range.Start.Character},
					End:   diag.Position{Line: d.Range.End.Line, Column: d.Range.End.Character},
				},
				Message:  d.Message,
				Severity: diag.Severity(d.Severity),
				Source:   d.Source,
			})
		}

		for name, sym := range f.Analyzer.GetSymbolTable().GetAllSymbols() {
			exports = append(exports, ExportedDecl{
				Name:      name,
				Kind:      string(sym.Type),
				Signature: sym.Name,
			})
		}
	}

	for name := range importSet {
		res.Imports = append(res.Imports, name)
	}
	sort.Strings(res.Imports)

	for name := range importSet {
		if _, ok := upstream(name); !ok {
			// Upstream has no cached blob yet; the caller (the workspace
			// engine) is responsible for scheduling that package's own
			// source-based compile first, per spec.md 4.5.
			res.ImportErr = errors.Errorf("upstream package %q has no cached interface blob yet", name)
		}
	}

	sort.Slice(exports, func(i, j int) bool { return exports[i].Name < exports[j].Name })
	blob := InterfaceBlob{Package: unit.Pkg.FullName, Exports: exports}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(blob); err != nil {
		res.ImportErr = errors.Wrap(err, "encoding interface blob")
		return res
	}
	res.Blob = buf.Bytes()
	res.Changed = !blobsEqual(previousBlob, res.Blob)
	return res
}

func blobsEqual(a, b []byte) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	ha := sha256.Sum256(a)
	hb := sha256.Sum256(b)
	return ha == hb
}

func importedName(imp *ast.ImportStatement) string {
	if imp == nil || imp.Module == nil {
		return ""
	}
	return imp.Module.Value
}

// CompilePassForComplete reparses only the file at path with an optional
// synthetic identifier at the cursor, recording diagnostics to the trash
// sink so transient completion failures never perturb user-visible
// diagnostics (spec.md 4.5).
func CompilePassForComplete(pkg *pkginfo.Info, path, contents string) (*analyzer.Analyzer, *ast.Program) {
	parsed := frontend.Default.Parse(path, contents)
	a := parsed.Analyzer
	for _, d := range a.GetDiagnostics() {
		pkg.DiagTrash.Add(path, diag.Diagnostic{
			Range: diag.Range{
				Start: diag.Position{Line: d.Range.Start.Line, Column: d.Range.Start.Character},
				End:   diag.Position{Line: d.Range.End.Line, Column: d.Range.End.Character},
			},
			Message:  d.Message,
			Severity: diag.Severity(d.Severity),
			Source:   d.Source,
		})
	}
	return a, parsed.Program
}
