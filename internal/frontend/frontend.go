// Package frontend is the seam between the compilation core and the
// Carrion language implementation vendored under internal/carrion (see
// internal/carrion/NOTICE.md). spec.md frames the underlying
// parser/typechecker as "a library the core drives"; this package is
// that injected abstraction — every call site that used to construct a
// lexer/parser/analyzer triple directly now asks a Frontend to Parse a
// source instead, so the vendored implementation could be swapped for
// another Carrion front end (or a different language entirely) without
// touching internal/compiler, internal/collector, or internal/server.
package frontend

import (
	"github.com/javanhut/corelsp/internal/carrion/analyzer"
	"github.com/javanhut/corelsp/internal/carrion/ast"
	"github.com/javanhut/corelsp/internal/carrion/lexer"
	"github.com/javanhut/corelsp/internal/carrion/parser"
)

// Parsed is one source file run through a Frontend: its AST plus the
// analyzer instance that walked it (diagnostics, symbol table, position
// lookups all hang off the analyzer, per the teacher's original design).
type Parsed struct {
	Path        string
	Program     *ast.Program
	Analyzer    *analyzer.Analyzer
	ParseErrors []string
}

// Frontend parses one source file's text into a Parsed result. path is
// used for diagnostic positions and is allowed to be empty for
// throwaway parses (e.g. link resolution) that never surface per-file
// diagnostics.
type Frontend interface {
	Parse(path, source string) Parsed
}

// Carrion is the Frontend backed by the vendored lexer/parser/analyzer.
type Carrion struct{}

// Parse implements Frontend.
func (Carrion) Parse(path, source string) Parsed {
	var l *lexer.Lexer
	if path != "" {
		l = lexer.NewWithFilename(source, path)
	} else {
		l = lexer.New(source)
	}
	p := parser.New(l)
	program := p.ParseProgram()
	a := analyzer.New()
	_ = a.Analyze(program)
	return Parsed{
		Path:        path,
		Program:     program,
		Analyzer:    a,
		ParseErrors: p.Errors(),
	}
}

// Default is the process-wide frontend every production call site uses.
// Tests that want to stub parsing can install their own Frontend here.
var Default Frontend = Carrion{}

// ParseProgram runs only the lexer and parser stages, for callers that need
// to mutate the analyzer's symbol table (e.g. seeding imported symbols)
// before Analyze runs. Most call sites want Parse instead.
func ParseProgram(path, source string) (*ast.Program, []string) {
	var l *lexer.Lexer
	if path != "" {
		l = lexer.NewWithFilename(source, path)
	} else {
		l = lexer.New(source)
	}
	p := parser.New(l)
	program := p.ParseProgram()
	return program, p.Errors()
}

// NewAnalyzer returns a fresh analyzer instance, for callers that need to
// seed its symbol table before calling Analyze.
func NewAnalyzer() *analyzer.Analyzer {
	return analyzer.New()
}
