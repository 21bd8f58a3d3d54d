package server

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/javanhut/corelsp/internal/carrion/analyzer"
	"github.com/javanhut/corelsp/internal/carrion/ast"
	"github.com/javanhut/corelsp/internal/carrion/symbol"
	"github.com/javanhut/corelsp/internal/carrion/token"
	"github.com/javanhut/corelsp/internal/config"
	"github.com/javanhut/corelsp/internal/frontend"
	"github.com/javanhut/corelsp/internal/index"
	"github.com/javanhut/corelsp/internal/logging"
	"github.com/javanhut/corelsp/internal/module"
	"github.com/javanhut/corelsp/internal/protocol"
	"github.com/javanhut/corelsp/internal/workspace"
)

// WorkspaceManager is the LSP-facing front for the compilation core
// (internal/workspace.Engine): it keeps one lightweight, position-aware
// analyzer.Analyzer per open document for completion/hover, and asks the
// engine to do the heavy cross-package work (dependency tracking,
// interface-cache freshness, the symbol index) that the teacher's
// original WorkspaceManager used to approximate with hand-rolled
// per-file dependency maps and an unbounded module cache.
type WorkspaceManager struct {
	mu        sync.RWMutex
	root      string
	engine    *workspace.Engine
	documents map[string]*Document // URI -> Document
	resolver  *module.Resolver

	// moduleCache holds analyzed symbols for modules the engine has no
	// knowledge of: built-ins and files outside the workspace root (user
	// packages, the global lib dir, the Munin standard library). Anything
	// under the workspace root is resolved through the engine instead, so
	// its freshness follows the interface cache rather than living here
	// forever.
	moduleCache map[string]*CachedModule
}

// CachedModule represents a cached analysis result for a module outside
// the engine's package graph.
type CachedModule struct {
	FilePath        string
	LastModified    time.Time
	ExportedSymbols map[string]*symbol.Symbol
}

// ImportInfo represents information about an import statement
type ImportInfo struct {
	ModuleName      string
	Alias           string
	ModuleInfo      *module.Info
	ImportedSymbols map[string]*symbol.Symbol
}

// NewWorkspaceManager creates a new workspace manager and starts the
// engine's initial full compile in the background (spec.md 4.6.1), the
// same "don't block accepting documents on startup analysis" shape as
// the teacher's background analysisWorker.
func NewWorkspaceManager(workspaceRoot, carrionPath string) *WorkspaceManager {
	manifestPath := ""
	if candidate := workspaceRoot + "/corelsp.toml"; pathExists(candidate) {
		manifestPath = candidate
	}
	cfg, err := config.Load(manifestPath)
	if err != nil {
		logging.Get().Warn().Err(err).Str("root", workspaceRoot).Msg("failed to load workspace manifest, using defaults")
		cfg = config.Default()
	}
	eng := workspace.New(workspaceRoot, cfg)

	resolver := module.NewResolver(workspaceRoot)
	if carrionPath != "" {
		resolver.LangHome = carrionPath
	}

	wm := &WorkspaceManager{
		root:        workspaceRoot,
		engine:      eng,
		documents:   make(map[string]*Document),
		resolver:    resolver,
		moduleCache: make(map[string]*CachedModule),
	}

	go func() {
		if err := eng.FullCompile(context.Background()); err != nil {
			logging.Get().Warn().Err(err).Str("root", workspaceRoot).Msg("initial workspace compile failed")
		}
	}()

	return wm
}

// Engine exposes the underlying compilation core for capability handlers
// that query it directly (references, rename, hierarchies, workspace
// symbol search — SPEC_FULL.md D).
func (wm *WorkspaceManager) Engine() *workspace.Engine {
	return wm.engine
}

// OpenDocument handles opening a document with workspace-aware analysis
func (wm *WorkspaceManager) OpenDocument(params *protocol.DidOpenTextDocumentParams) (*Document, error) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	uri := params.TextDocument.URI
	if _, exists := wm.documents[uri]; exists {
		return nil, fmt.Errorf("document %s is already open", uri)
	}

	doc := &Document{
		URI:        uri,
		LanguageID: params.TextDocument.LanguageID,
		Version:    params.TextDocument.Version,
		Text:       params.TextDocument.Text,
	}

	wm.analyzeDocumentWithWorkspace(doc)

	if path := uriToFilePath(uri); path != "" {
		if err := wm.engine.OpenDocument(context.Background(), path, doc.Text); err != nil {
			logging.Get().Debug().Err(err).Str("uri", uri).Msg("engine open failed")
		}
	}

	wm.documents[uri] = doc
	return doc, nil
}

// ChangeDocument handles document changes, re-running the local analyzer
// pass and forwarding the new contents to the engine so dependents fall
// back to WEAKSTALE/STALE per spec.md 4.6.3.
func (wm *WorkspaceManager) ChangeDocument(params *protocol.DidChangeTextDocumentParams) (*Document, error) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	uri := params.TextDocument.URI
	doc, exists := wm.documents[uri]
	if !exists {
		return nil, fmt.Errorf("document %s is not open", uri)
	}

	doc.Version = params.TextDocument.Version
	for _, change := range params.ContentChanges {
		doc.Text = change.Text
	}

	wm.analyzeDocumentWithWorkspace(doc)

	if path := uriToFilePath(uri); path != "" {
		if err := wm.engine.ChangeDocument(context.Background(), path, doc.Text); err != nil {
			logging.Get().Debug().Err(err).Str("uri", uri).Msg("engine change failed")
		}
	}

	return doc, nil
}

// CloseDocument handles closing a document
func (wm *WorkspaceManager) CloseDocument(params *protocol.DidCloseTextDocumentParams) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	uri := params.TextDocument.URI
	if _, exists := wm.documents[uri]; !exists {
		return fmt.Errorf("document %s is not open", uri)
	}
	delete(wm.documents, uri)

	if path := uriToFilePath(uri); path != "" {
		if err := wm.engine.CloseDocument(context.Background(), path); err != nil {
			logging.Get().Debug().Err(err).Str("uri", uri).Msg("engine close failed")
		}
	}
	return nil
}

// analyzeDocumentWithWorkspace performs workspace-aware analysis
func (wm *WorkspaceManager) analyzeDocumentWithWorkspace(doc *Document) error {
	if doc.LanguageID != "carrion" && !strings.HasSuffix(doc.URI, ".crl") {
		doc.Analyzer = nil
		doc.Diagnostics = nil
		return nil
	}

	program, parseErrors := frontend.ParseProgram(doc.URI, doc.Text)

	a := frontend.NewAnalyzer()

	importInfos, err := wm.processImports(program, doc.URI)
	if err != nil {
		doc.Diagnostics = append(doc.Diagnostics, protocol.Diagnostic{
			Range:    zeroRange,
			Severity: &[]protocol.DiagnosticSeverity{protocol.DiagnosticSeverityWarning}[0],
			Source:   "carrion-import",
			Message:  err.Error(),
		})
	}

	for _, importInfo := range importInfos {
		wm.addImportedSymbols(a, importInfo)
	}

	_ = a.Analyze(program)
	doc.Analyzer = a

	doc.Diagnostics = append(doc.Diagnostics, convertAnalyzerDiagnostics(a.GetDiagnostics())...)

	for _, parseError := range parseErrors {
		doc.Diagnostics = append(doc.Diagnostics, protocol.Diagnostic{
			Range:    zeroRange,
			Severity: &[]protocol.DiagnosticSeverity{protocol.DiagnosticSeverityError}[0],
			Source:   "corelsp-parser",
			Message:  parseError,
		})
	}

	return nil
}

var zeroRange = protocol.Range{
	Start: protocol.Position{Line: 0, Character: 0},
	End:   protocol.Position{Line: 0, Character: 0},
}

// processImports resolves and loads all imports for a document
func (wm *WorkspaceManager) processImports(program *ast.Program, currentURI string) ([]ImportInfo, error) {
	var imports []ImportInfo
	var errs []string

	for _, stmt := range program.Statements {
		importStmt, ok := stmt.(*ast.ImportStatement)
		if !ok {
			continue
		}
		moduleName := importStmt.Module.Value
		alias := ""
		if importStmt.Alias != nil {
			alias = importStmt.Alias.Value
		}

		moduleInfo, err := wm.resolver.Resolve(moduleName, currentURI)
		if err != nil {
			errs = append(errs, fmt.Sprintf("failed to resolve import '%s': %s", moduleName, err.Error()))
			continue
		}

		importedSymbols, err := wm.loadModuleSymbols(moduleInfo)
		if err != nil {
			errs = append(errs, fmt.Sprintf("failed to load symbols from '%s': %s", moduleName, err.Error()))
			continue
		}

		imports = append(imports, ImportInfo{
			ModuleName:      moduleName,
			Alias:           alias,
			ModuleInfo:      moduleInfo,
			ImportedSymbols: importedSymbols,
		})
	}

	var finalErr error
	if len(errs) > 0 {
		finalErr = fmt.Errorf("import errors: %s", strings.Join(errs, "; "))
	}
	return imports, finalErr
}

// loadModuleSymbols loads the exported symbols of an imported module,
// preferring the engine's own symbol index (which reflects real
// cross-package analysis and recompiles automatically on change) and
// falling back to a local, self-cached single-file analysis for modules
// the engine never compiles: built-ins and anything outside the
// workspace root (user packages, global lib dir, Munin standard
// library).
func (wm *WorkspaceManager) loadModuleSymbols(moduleInfo *module.Info) (map[string]*symbol.Symbol, error) {
	if moduleInfo.IsBuiltin {
		return wm.getBuiltinModuleSymbols(moduleInfo.Name), nil
	}

	if syms, ok := wm.engineModuleSymbols(moduleInfo.FilePath); ok {
		return syms, nil
	}

	if cached, exists := wm.moduleCache[moduleInfo.FilePath]; exists {
		return cached.ExportedSymbols, nil
	}
	return wm.analyzeModuleFile(moduleInfo.FilePath)
}

// engineModuleSymbols asks the compilation core for filePath's package,
// opening it with the engine first if this is the first time it's been
// seen, and returns its exported declarations bridged back into the
// carrion/symbol shape the analyzer's scope resolution expects.
func (wm *WorkspaceManager) engineModuleSymbols(filePath string) (map[string]*symbol.Symbol, bool) {
	if filePath == "" {
		return nil, false
	}
	ctx := context.Background()

	full, ok := wm.engine.PackageForFile(filePath)
	if !ok {
		content, err := os.ReadFile(filePath)
		if err != nil {
			return nil, false
		}
		if err := wm.engine.OpenDocument(ctx, filePath, string(content)); err != nil {
			return nil, false
		}
		full, ok = wm.engine.PackageForFile(filePath)
		if !ok {
			return nil, false
		}
	}

	if err := wm.engine.EnsureFresh(ctx, full); err != nil {
		return nil, false
	}

	out := make(map[string]*symbol.Symbol)
	for _, sym := range wm.engine.WorkspaceSymbolSearch("") {
		if sym.Scope != full {
			continue
		}
		out[sym.Name] = bridgeIndexSymbol(sym)
	}
	return out, true
}

// bridgeIndexSymbol converts one engine-indexed declaration into the
// analyzer's own symbol.Symbol, enough to seed a module's scope for
// completion/hover over an imported name.
func bridgeIndexSymbol(sym index.Symbol) *symbol.Symbol {
	return &symbol.Symbol{
		Name:     sym.Name,
		Type:     symbolTypeFromKind(sym.Kind),
		DataType: sym.ReturnType,
		Token: token.Token{
			Type:    token.IDENT,
			Literal: sym.Name,
			Line:    sym.Definition.Begin.Line + 1,
			Column:  sym.Definition.Begin.Column + 1,
		},
	}
}

func symbolTypeFromKind(kind string) symbol.SymbolType {
	switch kind {
	case "function", "method":
		return symbol.FunctionSymbol
	case "class":
		return symbol.ClassSymbol
	default:
		return symbol.VariableSymbol
	}
}

// analyzeModuleFile analyzes a module file outside the engine's package
// graph and extracts its top-level exportable symbols, caching the
// result since nothing will invalidate it on our behalf.
func (wm *WorkspaceManager) analyzeModuleFile(filePath string) (map[string]*symbol.Symbol, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	parsed := frontend.Default.Parse(filePath, string(content))
	a := parsed.Analyzer

	exportedSymbols := make(map[string]*symbol.Symbol)
	for name, sym := range a.GetSymbolTable().GetAllSymbols() {
		if sym.Type == symbol.FunctionSymbol || sym.Type == symbol.ClassSymbol || sym.Type == symbol.VariableSymbol {
			exportedSymbols[name] = sym
		}
	}

	wm.moduleCache[filePath] = &CachedModule{
		FilePath:        filePath,
		LastModified:    time.Now(),
		ExportedSymbols: exportedSymbols,
	}
	return exportedSymbols, nil
}

// getBuiltinModuleSymbols returns symbols for built-in modules
func (wm *WorkspaceManager) getBuiltinModuleSymbols(moduleName string) map[string]*symbol.Symbol {
	symbols := make(map[string]*symbol.Symbol)

	switch moduleName {
	case "os":
		symbols["listdir"] = &symbol.Symbol{Name: "listdir", Type: symbol.FunctionSymbol, DataType: "function"}
		symbols["getcwd"] = &symbol.Symbol{Name: "getcwd", Type: symbol.FunctionSymbol, DataType: "function"}
		symbols["chdir"] = &symbol.Symbol{Name: "chdir", Type: symbol.FunctionSymbol, DataType: "function"}
	case "file":
		symbols["open"] = &symbol.Symbol{Name: "open", Type: symbol.FunctionSymbol, DataType: "function"}
		symbols["read"] = &symbol.Symbol{Name: "read", Type: symbol.FunctionSymbol, DataType: "function"}
		symbols["write"] = &symbol.Symbol{Name: "write", Type: symbol.FunctionSymbol, DataType: "function"}
	case "http":
		symbols["get"] = &symbol.Symbol{Name: "get", Type: symbol.FunctionSymbol, DataType: "function"}
		symbols["post"] = &symbol.Symbol{Name: "post", Type: symbol.FunctionSymbol, DataType: "function"}
	case "time":
		symbols["now"] = &symbol.Symbol{Name: "now", Type: symbol.FunctionSymbol, DataType: "function"}
		symbols["sleep"] = &symbol.Symbol{Name: "sleep", Type: symbol.FunctionSymbol, DataType: "function"}
	}
	return symbols
}

// addImportedSymbols adds imported symbols to the analyzer's symbol table
func (wm *WorkspaceManager) addImportedSymbols(a *analyzer.Analyzer, importInfo ImportInfo) {
	symbolName := importInfo.ModuleName
	if importInfo.Alias != "" {
		symbolName = importInfo.Alias
	}

	moduleSymbol := &symbol.Symbol{
		Name:     symbolName,
		Type:     symbol.ModuleSymbol,
		DataType: "module",
		Members:  importInfo.ImportedSymbols,
		Token:    token.Token{Type: token.IDENT, Literal: symbolName, Line: 1, Column: 1},
	}

	if err := a.GetSymbolTable().GlobalScope.Define(moduleSymbol); err != nil {
		logging.Get().Debug().Err(err).Str("module", symbolName).Msg("failed to define imported module symbol")
	}
}

// FindExportedSymbol searches the fallback module cache (built-ins and
// out-of-workspace modules aren't indexed by the engine, so they aren't
// reachable through WorkspaceSymbolSearch) for a top-level declaration by
// name, returning the file it was found in.
func (wm *WorkspaceManager) FindExportedSymbol(name string) (*symbol.Symbol, string, bool) {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	for filePath, cached := range wm.moduleCache {
		if sym, ok := cached.ExportedSymbols[name]; ok {
			return sym, filePath, true
		}
	}
	return nil, "", false
}

// GetDocument retrieves a document by URI
func (wm *WorkspaceManager) GetDocument(uri string) (*Document, bool) {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	doc, exists := wm.documents[uri]
	return doc, exists
}

// GetAllDocuments returns all open documents
func (wm *WorkspaceManager) GetAllDocuments() map[string]*Document {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	result := make(map[string]*Document)
	for uri, doc := range wm.documents {
		result[uri] = doc
	}
	return result
}

// uriToFilePath strips the file:// scheme a text document URI carries,
// returning "" for any other scheme (untitled buffers, etc.) since the
// engine only ever operates on real files.
func uriToFilePath(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		return strings.TrimPrefix(uri, "file://")
	}
	if strings.Contains(uri, "://") {
		return ""
	}
	return uri
}

// pathExists reports whether path names a file or directory on disk.
func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
