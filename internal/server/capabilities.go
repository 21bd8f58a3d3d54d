package server

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/javanhut/corelsp/internal/carrion/ast"
	"github.com/javanhut/corelsp/internal/carrion/lexer"
	"github.com/javanhut/corelsp/internal/carrion/symbol"
	"github.com/javanhut/corelsp/internal/carrion/token"
	"github.com/javanhut/corelsp/internal/frontend"
	"github.com/javanhut/corelsp/internal/index"
	"github.com/javanhut/corelsp/internal/protocol"
	"github.com/javanhut/corelsp/internal/workspace"
)

// Supplemented capability handlers (SPEC_FULL.md D): thin adapters over
// internal/workspace.Engine's capability queries, following the same
// workspace-manager-first/document-manager-fallback shape as the
// definition/hover/completion handlers in server.go.

// resolveEnginePosition locates the engine, owning package, and on-disk
// path for a cursor position, or ok=false if the workspace manager or
// the file's package is not available.
func (s *Server) resolveEnginePosition(uri string) (eng *workspace.Engine, full, path string, ok bool) {
	if s.workspaceManager == nil {
		return nil, "", "", false
	}
	eng = s.workspaceManager.Engine()
	path = uriToFilePath(uri)
	if path == "" {
		return nil, "", "", false
	}
	full, ok = eng.PackageForFile(path)
	return eng, full, path, ok
}

func locationToProtocol(loc index.Location) protocol.Location {
	return protocol.Location{
		URI: ensureFileURI(loc.FileURI),
		Range: protocol.Range{
			Start: protocol.Position{Line: loc.Begin.Line - 1, Character: loc.Begin.Column - 1},
			End:   protocol.Position{Line: loc.End.Line - 1, Character: loc.End.Column - 1},
		},
	}
}

func ensureFileURI(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	return "file://" + path
}

func mapSymbolKind(kind string) protocol.SymbolKind {
	switch kind {
	case "function":
		return protocol.SymbolKindFunction
	case "method":
		return protocol.SymbolKindMethod
	case "class":
		return protocol.SymbolKindClass
	default:
		return protocol.SymbolKindVariable
	}
}

func symbolToTypeHierarchyItem(sym index.Symbol) protocol.TypeHierarchyItem {
	loc := locationToProtocol(sym.Definition)
	return protocol.TypeHierarchyItem{
		Name:           sym.Name,
		Kind:           mapSymbolKind(sym.Kind),
		URI:            loc.URI,
		Range:          loc.Range,
		SelectionRange: loc.Range,
	}
}

func symbolToCallHierarchyItem(sym index.Symbol) protocol.CallHierarchyItem {
	loc := locationToProtocol(sym.Definition)
	return protocol.CallHierarchyItem{
		Name:           sym.Name,
		Kind:           mapSymbolKind(sym.Kind),
		URI:            loc.URI,
		Range:          loc.Range,
		SelectionRange: loc.Range,
	}
}

// symbolAtItem re-resolves the SymbolID a hierarchy item was minted from
// by looking the declaration back up at its own selection range — the
// items we hand out never carry an opaque id, so a supertypes/subtypes
// or incoming/outgoing-calls follow-up request re-derives it the same
// way the original prepare request did.
func (s *Server) symbolAtItem(ctx context.Context, uri string, rng protocol.Range) (index.SymbolID, bool) {
	eng, full, path, ok := s.resolveEnginePosition(uri)
	if !ok {
		return index.InvalidSymbolID, false
	}
	return eng.SymbolAt(ctx, full, path, rng.Start.Line+1, rng.Start.Character+1)
}

func (s *Server) handleReferencesRequest(ctx context.Context, req *protocol.Request) (interface{}, error) {
	if !s.IsInitialized() {
		return nil, fmt.Errorf("server not initialized")
	}

	var params protocol.ReferenceParams
	if err := s.parseParams(req.Params, &params); err != nil {
		return nil, fmt.Errorf("failed to parse references params: %w", err)
	}

	s.logger.Printf("References request for %s at line %d, char %d",
		params.TextDocument.URI, params.Position.Line, params.Position.Character)

	if eng, full, path, ok := s.resolveEnginePosition(params.TextDocument.URI); ok {
		id, found := eng.SymbolAt(ctx, full, path, params.Position.Line+1, params.Position.Character+1)
		if found && id != index.InvalidSymbolID {
			locs, err := eng.References(ctx, full, id)
			if err == nil {
				out := make([]protocol.Location, 0, len(locs))
				for _, l := range locs {
					out = append(out, locationToProtocol(l))
				}
				return out, nil
			}
			s.logger.Printf("Error getting engine references for %s: %v", params.TextDocument.URI, err)
		}
	}

	locations, err := s.docManager.GetReferences(params.TextDocument.URI, params.Position, params.Context.IncludeDeclaration)
	if err != nil {
		s.logger.Printf("Error getting references for %s: %v", params.TextDocument.URI, err)
		return []protocol.Location{}, nil
	}
	return locations, nil
}

func (s *Server) handlePrepareRenameRequest(ctx context.Context, req *protocol.Request) (interface{}, error) {
	if !s.IsInitialized() {
		return nil, fmt.Errorf("server not initialized")
	}
	var params protocol.PrepareRenameParams
	if err := s.parseParams(req.Params, &params); err != nil {
		return nil, fmt.Errorf("failed to parse prepareRename params: %w", err)
	}

	eng, full, path, ok := s.resolveEnginePosition(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	sym, ok := eng.PrepareRename(ctx, full, path, params.Position.Line+1, params.Position.Character+1)
	if !ok {
		return nil, nil
	}
	loc := locationToProtocol(sym.Definition)
	return protocol.PrepareRenameResult{Range: loc.Range, Placeholder: sym.Name}, nil
}

func (s *Server) handleRenameRequest(ctx context.Context, req *protocol.Request) (interface{}, error) {
	if !s.IsInitialized() {
		return nil, fmt.Errorf("server not initialized")
	}
	var params protocol.RenameParams
	if err := s.parseParams(req.Params, &params); err != nil {
		return nil, fmt.Errorf("failed to parse rename params: %w", err)
	}

	eng, full, path, ok := s.resolveEnginePosition(params.TextDocument.URI)
	if !ok {
		return protocol.WorkspaceEdit{}, nil
	}
	edits, ok := eng.RenameEdits(ctx, full, path, params.Position.Line+1, params.Position.Character+1, params.NewName)
	if !ok {
		return protocol.WorkspaceEdit{}, nil
	}

	changes := make(map[string][]protocol.TextEdit, len(edits))
	for file, locs := range edits {
		uri := ensureFileURI(file)
		for _, l := range locs {
			changes[uri] = append(changes[uri], protocol.TextEdit{
				Range: protocol.Range{
					Start: protocol.Position{Line: l.Begin.Line - 1, Character: l.Begin.Column - 1},
					End:   protocol.Position{Line: l.End.Line - 1, Character: l.End.Column - 1},
				},
				NewText: params.NewName,
			})
		}
	}
	return protocol.WorkspaceEdit{Changes: changes}, nil
}

func (s *Server) handleDocumentHighlightRequest(ctx context.Context, req *protocol.Request) (interface{}, error) {
	if !s.IsInitialized() {
		return nil, fmt.Errorf("server not initialized")
	}
	var params protocol.DocumentHighlightParams
	if err := s.parseParams(req.Params, &params); err != nil {
		return nil, fmt.Errorf("failed to parse documentHighlight params: %w", err)
	}

	eng, full, path, ok := s.resolveEnginePosition(params.TextDocument.URI)
	if !ok {
		return []protocol.DocumentHighlight{}, nil
	}
	refs, ok := eng.DocumentHighlights(ctx, full, path, params.Position.Line+1, params.Position.Character+1)
	if !ok {
		return []protocol.DocumentHighlight{}, nil
	}

	out := make([]protocol.DocumentHighlight, 0, len(refs))
	for _, r := range refs {
		kind := protocol.DocumentHighlightKindRead
		if r.Kind&index.RefDefinition != 0 {
			kind = protocol.DocumentHighlightKindWrite
		}
		out = append(out, protocol.DocumentHighlight{
			Range: protocol.Range{
				Start: protocol.Position{Line: r.Location.Begin.Line - 1, Character: r.Location.Begin.Column - 1},
				End:   protocol.Position{Line: r.Location.End.Line - 1, Character: r.Location.End.Column - 1},
			},
			Kind: &kind,
		})
	}
	return out, nil
}

func (s *Server) handleWorkspaceSymbolRequest(ctx context.Context, req *protocol.Request) (interface{}, error) {
	if !s.IsInitialized() {
		return nil, fmt.Errorf("server not initialized")
	}
	var params protocol.WorkspaceSymbolParams
	if err := s.parseParams(req.Params, &params); err != nil {
		return nil, fmt.Errorf("failed to parse workspace symbol params: %w", err)
	}
	if s.workspaceManager == nil {
		return []protocol.SymbolInformation{}, nil
	}

	syms := s.workspaceManager.Engine().WorkspaceSymbolSearch(params.Query)
	out := make([]protocol.SymbolInformation, 0, len(syms))
	for _, sym := range syms {
		out = append(out, protocol.SymbolInformation{
			Name:          sym.Name,
			Kind:          mapSymbolKind(sym.Kind),
			Location:      locationToProtocol(sym.Definition),
			ContainerName: sym.Scope,
		})
	}
	return out, nil
}

func (s *Server) handlePrepareTypeHierarchyRequest(ctx context.Context, req *protocol.Request) (interface{}, error) {
	if !s.IsInitialized() {
		return nil, fmt.Errorf("server not initialized")
	}
	var params protocol.TypeHierarchyPrepareParams
	if err := s.parseParams(req.Params, &params); err != nil {
		return nil, fmt.Errorf("failed to parse prepareTypeHierarchy params: %w", err)
	}
	eng, full, path, ok := s.resolveEnginePosition(params.TextDocument.URI)
	if !ok {
		return []protocol.TypeHierarchyItem{}, nil
	}
	id, found := eng.SymbolAt(ctx, full, path, params.Position.Line+1, params.Position.Character+1)
	if !found || id == index.InvalidSymbolID {
		return []protocol.TypeHierarchyItem{}, nil
	}
	sym, ok := eng.HoverSymbol(ctx, full, id)
	if !ok {
		return []protocol.TypeHierarchyItem{}, nil
	}
	return []protocol.TypeHierarchyItem{symbolToTypeHierarchyItem(sym)}, nil
}

func (s *Server) handleTypeHierarchySupertypesRequest(ctx context.Context, req *protocol.Request) (interface{}, error) {
	var params protocol.TypeHierarchySupertypesParams
	if err := s.parseParams(req.Params, &params); err != nil {
		return nil, fmt.Errorf("failed to parse typeHierarchy/supertypes params: %w", err)
	}
	if s.workspaceManager == nil {
		return []protocol.TypeHierarchyItem{}, nil
	}
	id, ok := s.symbolAtItem(ctx, params.Item.URI, params.Item.SelectionRange)
	if !ok {
		return []protocol.TypeHierarchyItem{}, nil
	}
	syms := s.workspaceManager.Engine().Supertypes(id)
	out := make([]protocol.TypeHierarchyItem, 0, len(syms))
	for _, sym := range syms {
		out = append(out, symbolToTypeHierarchyItem(sym))
	}
	return out, nil
}

func (s *Server) handleTypeHierarchySubtypesRequest(ctx context.Context, req *protocol.Request) (interface{}, error) {
	var params protocol.TypeHierarchySubtypesParams
	if err := s.parseParams(req.Params, &params); err != nil {
		return nil, fmt.Errorf("failed to parse typeHierarchy/subtypes params: %w", err)
	}
	if s.workspaceManager == nil {
		return []protocol.TypeHierarchyItem{}, nil
	}
	id, ok := s.symbolAtItem(ctx, params.Item.URI, params.Item.SelectionRange)
	if !ok {
		return []protocol.TypeHierarchyItem{}, nil
	}
	syms := s.workspaceManager.Engine().Subtypes(id)
	out := make([]protocol.TypeHierarchyItem, 0, len(syms))
	for _, sym := range syms {
		out = append(out, symbolToTypeHierarchyItem(sym))
	}
	return out, nil
}

func (s *Server) handlePrepareCallHierarchyRequest(ctx context.Context, req *protocol.Request) (interface{}, error) {
	if !s.IsInitialized() {
		return nil, fmt.Errorf("server not initialized")
	}
	var params protocol.CallHierarchyPrepareParams
	if err := s.parseParams(req.Params, &params); err != nil {
		return nil, fmt.Errorf("failed to parse prepareCallHierarchy params: %w", err)
	}
	eng, full, path, ok := s.resolveEnginePosition(params.TextDocument.URI)
	if !ok {
		return []protocol.CallHierarchyItem{}, nil
	}
	id, found := eng.SymbolAt(ctx, full, path, params.Position.Line+1, params.Position.Character+1)
	if !found || id == index.InvalidSymbolID {
		return []protocol.CallHierarchyItem{}, nil
	}
	sym, ok := eng.HoverSymbol(ctx, full, id)
	if !ok {
		return []protocol.CallHierarchyItem{}, nil
	}
	return []protocol.CallHierarchyItem{symbolToCallHierarchyItem(sym)}, nil
}

func (s *Server) handleCallHierarchyIncomingCallsRequest(ctx context.Context, req *protocol.Request) (interface{}, error) {
	var params protocol.CallHierarchyIncomingCallsParams
	if err := s.parseParams(req.Params, &params); err != nil {
		return nil, fmt.Errorf("failed to parse callHierarchy/incomingCalls params: %w", err)
	}
	if s.workspaceManager == nil {
		return []protocol.CallHierarchyIncomingCall{}, nil
	}
	id, ok := s.symbolAtItem(ctx, params.Item.URI, params.Item.SelectionRange)
	if !ok {
		return []protocol.CallHierarchyIncomingCall{}, nil
	}
	syms := s.workspaceManager.Engine().CallHierarchyIncoming(id)
	out := make([]protocol.CallHierarchyIncomingCall, 0, len(syms))
	for _, sym := range syms {
		item := symbolToCallHierarchyItem(sym)
		out = append(out, protocol.CallHierarchyIncomingCall{From: item, FromRanges: []protocol.Range{item.Range}})
	}
	return out, nil
}

func (s *Server) handleCallHierarchyOutgoingCallsRequest(ctx context.Context, req *protocol.Request) (interface{}, error) {
	var params protocol.CallHierarchyOutgoingCallsParams
	if err := s.parseParams(req.Params, &params); err != nil {
		return nil, fmt.Errorf("failed to parse callHierarchy/outgoingCalls params: %w", err)
	}
	if s.workspaceManager == nil {
		return []protocol.CallHierarchyOutgoingCall{}, nil
	}
	id, ok := s.symbolAtItem(ctx, params.Item.URI, params.Item.SelectionRange)
	if !ok {
		return []protocol.CallHierarchyOutgoingCall{}, nil
	}
	syms := s.workspaceManager.Engine().CallHierarchyOutgoing(id)
	out := make([]protocol.CallHierarchyOutgoingCall, 0, len(syms))
	for _, sym := range syms {
		item := symbolToCallHierarchyItem(sym)
		out = append(out, protocol.CallHierarchyOutgoingCall{To: item, FromRanges: []protocol.Range{item.Range}})
	}
	return out, nil
}

// handleSignatureHelpRequest offers the signature of the function symbol
// whose call the cursor sits inside, resolved from the document's own
// analyzer scope rather than the cross-package index since the call
// target is usually local.
func (s *Server) handleSignatureHelpRequest(ctx context.Context, req *protocol.Request) (interface{}, error) {
	if !s.IsInitialized() {
		return nil, fmt.Errorf("server not initialized")
	}
	var params protocol.SignatureHelpParams
	if err := s.parseParams(req.Params, &params); err != nil {
		return nil, fmt.Errorf("failed to parse signatureHelp params: %w", err)
	}

	var doc *Document
	var ok bool
	if s.workspaceManager != nil {
		doc, ok = s.workspaceManager.GetDocument(params.TextDocument.URI)
	} else {
		doc, ok = s.docManager.GetDocument(params.TextDocument.URI)
	}
	if !ok || doc.Analyzer == nil {
		return protocol.SignatureHelp{}, nil
	}

	callee := s.callNameBeforeParen(doc.Text, params.Position)
	if callee == "" {
		return protocol.SignatureHelp{}, nil
	}
	sym, found := doc.Analyzer.GetSymbolTable().Lookup(callee)
	if !found || sym.Type != symbol.FunctionSymbol {
		return protocol.SignatureHelp{}, nil
	}

	params2 := make([]protocol.ParameterInformation, 0, len(sym.Parameters))
	labels := make([]string, 0, len(sym.Parameters))
	for _, p := range sym.Parameters {
		params2 = append(params2, protocol.ParameterInformation{Label: p.Name})
		labels = append(labels, p.Name)
	}
	sig := protocol.SignatureInformation{
		Label:      fmt.Sprintf("%s(%s)", sym.Name, strings.Join(labels, ", ")),
		Parameters: params2,
	}
	return protocol.SignatureHelp{Signatures: []protocol.SignatureInformation{sig}}, nil
}

// callNameBeforeParen walks left from position to find the identifier
// immediately preceding the nearest unmatched '(' on its line.
func (s *Server) callNameBeforeParen(text string, position protocol.Position) string {
	lines := strings.Split(text, "\n")
	if position.Line >= len(lines) {
		return ""
	}
	line := lines[position.Line]
	limit := position.Character
	if limit > len(line) {
		limit = len(line)
	}
	depth := 0
	parenAt := -1
	for i := limit - 1; i >= 0; i-- {
		switch line[i] {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				parenAt = i
			}
			depth--
		}
		if parenAt >= 0 {
			break
		}
	}
	if parenAt <= 0 {
		return ""
	}
	end := parenAt
	start := end
	for start > 0 && s.isIdentifierChar(rune(line[start-1])) {
		start--
	}
	return line[start:end]
}

// handleDocumentLinkRequest resolves each import statement to the file
// it names, letting editors ctrl-click straight to the imported module.
func (s *Server) handleDocumentLinkRequest(ctx context.Context, req *protocol.Request) (interface{}, error) {
	if !s.IsInitialized() {
		return nil, fmt.Errorf("server not initialized")
	}
	var params protocol.DocumentLinkParams
	if err := s.parseParams(req.Params, &params); err != nil {
		return nil, fmt.Errorf("failed to parse documentLink params: %w", err)
	}
	if s.workspaceManager == nil {
		return []protocol.DocumentLink{}, nil
	}
	doc, ok := s.workspaceManager.GetDocument(params.TextDocument.URI)
	if !ok {
		return []protocol.DocumentLink{}, nil
	}

	program := parseForLinks(doc.Text)
	out := []protocol.DocumentLink{}
	for _, stmt := range program.Statements {
		imp, ok := stmt.(*ast.ImportStatement)
		if !ok || imp.Module == nil {
			continue
		}
		info, err := s.workspaceManager.resolver.Resolve(imp.Module.Value, params.TextDocument.URI)
		if err != nil || info.IsBuiltin || info.FilePath == "" {
			continue
		}
		line, col := imp.Module.Position()
		out = append(out, protocol.DocumentLink{
			Range: protocol.Range{
				Start: protocol.Position{Line: line - 1, Character: col - 1},
				End:   protocol.Position{Line: line - 1, Character: col - 1 + len(imp.Module.Value)},
			},
			Target: ensureFileURI(info.FilePath),
		})
	}
	return out, nil
}

func parseForLinks(text string) *ast.Program {
	program, _ := frontend.ParseProgram("", text)
	return program
}

// handleCodeLensRequest annotates every indexed symbol defined in the
// file (functions, classes, methods, variables and parameters alike) with
// its reference count across the workspace.
func (s *Server) handleCodeLensRequest(ctx context.Context, req *protocol.Request) (interface{}, error) {
	if !s.IsInitialized() {
		return nil, fmt.Errorf("server not initialized")
	}
	var params protocol.CodeLensParams
	if err := s.parseParams(req.Params, &params); err != nil {
		return nil, fmt.Errorf("failed to parse codeLens params: %w", err)
	}

	eng, full, path, ok := s.resolveEnginePosition(params.TextDocument.URI)
	if !ok {
		return []protocol.CodeLens{}, nil
	}
	if err := eng.EnsureFresh(ctx, full); err != nil {
		return []protocol.CodeLens{}, nil
	}

	out := []protocol.CodeLens{}
	for _, sym := range eng.WorkspaceSymbolSearch("") {
		if sym.Scope != full || sym.Definition.FileURI != path {
			continue
		}
		refs, err := eng.References(ctx, full, sym.ID)
		if err != nil {
			continue
		}
		loc := locationToProtocol(sym.Definition)
		out = append(out, protocol.CodeLens{
			Range: loc.Range,
			Command: &protocol.Command{
				Title:   fmt.Sprintf("%d references", len(refs)),
				Command: "carrion-lsp.showReferences",
			},
		})
	}
	return out, nil
}

// handleSemanticTokensRequest classifies the document's lexer token
// stream into a small set of semantic kinds and delta-encodes them per
// the LSP semanticTokens/full wire format.
func (s *Server) handleSemanticTokensRequest(ctx context.Context, req *protocol.Request) (interface{}, error) {
	if !s.IsInitialized() {
		return nil, fmt.Errorf("server not initialized")
	}
	var params protocol.SemanticTokensParams
	if err := s.parseParams(req.Params, &params); err != nil {
		return nil, fmt.Errorf("failed to parse semanticTokens params: %w", err)
	}

	var doc *Document
	var ok bool
	if s.workspaceManager != nil {
		doc, ok = s.workspaceManager.GetDocument(params.TextDocument.URI)
	} else {
		doc, ok = s.docManager.GetDocument(params.TextDocument.URI)
	}
	if !ok {
		return protocol.SemanticTokens{}, nil
	}

	return protocol.SemanticTokens{Data: tokenizeSemanticTokens(doc.Text)}, nil
}

func tokenizeSemanticTokens(text string) []uint32 {
	l := lexer.New(text)
	var data []uint32
	prevLine, prevCol := 0, 0
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		kind, ok := semanticTokenType(tok)
		if !ok {
			continue
		}
		line := tok.Line - 1
		col := tok.Column - 1
		deltaLine := uint32(line - prevLine)
		var deltaCol uint32
		if line == prevLine {
			deltaCol = uint32(col - prevCol)
		} else {
			deltaCol = uint32(col)
		}
		data = append(data, deltaLine, deltaCol, uint32(len(tok.Literal)), kind, 0)
		prevLine, prevCol = line, col
	}
	return data
}

func semanticTokenType(tok token.Token) (uint32, bool) {
	switch {
	case tok.IsKeyword():
		return 0, true
	case tok.Type == token.STRING || tok.Type == token.FSTRING || tok.Type == token.DOCSTRING:
		return 1, true
	case tok.Type == token.INT || tok.Type == token.FLOAT:
		return 2, true
	case tok.Type == token.COMMENT:
		return 3, true
	case tok.Type == token.IDENT:
		return 4, true
	default:
		return 0, false
	}
}

// handleBreakpointsRequest reports every line that is neither blank nor
// a '#' comment line as a valid debugger stop location (lines inside
// other comment forms are reported too) — a coarse but real approximation
// grounded on original_source's BreakpointLocationsImpl walking
// statement boundaries, simplified here to the line granularity the
// rest of this server already works in.
func (s *Server) handleBreakpointsRequest(ctx context.Context, req *protocol.Request) (interface{}, error) {
	if !s.IsInitialized() {
		return nil, fmt.Errorf("server not initialized")
	}
	var params protocol.BreakpointsParams
	if err := s.parseParams(req.Params, &params); err != nil {
		return nil, fmt.Errorf("failed to parse breakpoints params: %w", err)
	}

	var doc *Document
	var ok bool
	if s.workspaceManager != nil {
		doc, ok = s.workspaceManager.GetDocument(params.TextDocument.URI)
	} else {
		doc, ok = s.docManager.GetDocument(params.TextDocument.URI)
	}
	if !ok {
		return []protocol.BreakpointLocation{}, nil
	}

	out := []protocol.BreakpointLocation{}
	for i, line := range strings.Split(doc.Text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		out = append(out, protocol.BreakpointLocation{Line: i})
	}
	return out, nil
}

// handleTrackCompletionNotification records which completion item the
// user accepted; logged for now, a place for override-aware completion
// ranking to hook into later (SPEC_FULL.md D).
func (s *Server) handleTrackCompletionNotification(ctx context.Context, req *protocol.Request) error {
	var params protocol.TrackCompletionParams
	if err := s.parseParams(req.Params, &params); err != nil {
		return fmt.Errorf("failed to parse trackCompletion params: %w", err)
	}
	s.logger.Printf("Completion accepted: %s (%s)", params.Label, params.TextDocument.URI)
	return nil
}

// handleDidChangeWatchedFilesNotification reconciles files the editor's
// file watcher reports as created/changed/deleted outside an open
// buffer (e.g. a `git checkout`) straight through the engine's
// open/change/close paths, same as a document event.
func (s *Server) handleDidChangeWatchedFilesNotification(ctx context.Context, req *protocol.Request) error {
	if s.workspaceManager == nil {
		return nil
	}
	var params protocol.DidChangeWatchedFilesParams
	if err := s.parseParams(req.Params, &params); err != nil {
		return fmt.Errorf("failed to parse didChangeWatchedFiles params: %w", err)
	}

	eng := s.workspaceManager.Engine()
	for _, ev := range params.Changes {
		path := uriToFilePath(ev.URI)
		if path == "" {
			continue
		}
		if ev.Type == protocol.FileChangeTypeDeleted {
			if err := eng.CloseDocument(ctx, path); err != nil {
				s.logger.Printf("Error closing watched file %s: %v", path, err)
			}
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if _, known := eng.PackageForFile(path); known {
			err = eng.ChangeDocument(ctx, path, string(content))
		} else {
			err = eng.OpenDocument(ctx, path, string(content))
		}
		if err != nil {
			s.logger.Printf("Error reconciling watched file %s: %v", path, err)
		}
	}
	return nil
}

// overridableMethodCompletions implements override-aware completion
// (SPEC_FULL.md D), grounded on original_source's OverrideCompleter:
// when the cursor sits inside a class body, offer the parent chain's
// methods that the class hasn't already redefined, so accepting one
// drops in an override stub.
func (s *Server) overridableMethodCompletions(doc *Document, position protocol.Position, prefix string) []protocol.CompletionItem {
	st := doc.Analyzer.GetSymbolTable()
	scope := st.FindScopeAtPosition(position.Line+1, position.Character)
	for scope != nil && scope.Type != symbol.ClassScope {
		scope = scope.Parent
	}
	if scope == nil {
		return nil
	}

	classSym, ok := st.LookupInScope(scope.Name, st.GlobalScope)
	if !ok || classSym.Type != symbol.ClassSymbol || classSym.Parent == nil {
		return nil
	}

	defined := map[string]bool{}
	for name := range classSym.Members {
		defined[name] = true
	}

	var items []protocol.CompletionItem
	for parent := classSym.Parent; parent != nil; parent = parent.Parent {
		for name, member := range parent.Members {
			if member.Type != symbol.FunctionSymbol || defined[name] {
				continue
			}
			defined[name] = true
			if prefix != "" && !strings.HasPrefix(name, prefix) {
				continue
			}

			var params []string
			for _, p := range member.Parameters {
				params = append(params, p.Name)
			}
			signature := strings.Join(params, ", ")
			kind := protocol.CompletionItemKindMethod
			items = append(items, protocol.CompletionItem{
				Label:      name,
				Kind:       &kind,
				Detail:     fmt.Sprintf("override (%s) -> %s", signature, member.ReturnType),
				InsertText: fmt.Sprintf("spell %s(%s):\n\t", name, signature),
			})
		}
	}
	return items
}
