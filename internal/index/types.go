// Package index implements the symbol index (spec.md 4.8): per-package
// shards of symbols, references, relations, extensions, and cross-symbols
// keyed by a stable SymbolID, grounded directly on original_source's
// index/{Symbol,Ref,Relation,CallRelation}.h.
package index

import "hash/fnv"

// SymbolID is a 64-bit hash of a declaration's export identifier
// (spec.md 3, Property P6). Zero is reserved as InvalidSymbolID.
type SymbolID uint64

// InvalidSymbolID marks a declaration with no export identifier (purely
// local, non-lambda) — it is never stored in the index.
const InvalidSymbolID SymbolID = 0

// NewSymbolID hashes an export identifier into a SymbolID. Two
// recompilations of an unchanged file must yield the same id for the same
// export identifier (Property P6), so this must stay a pure function of
// the string.
func NewSymbolID(exportIdentifier string) SymbolID {
	if exportIdentifier == "" {
		return InvalidSymbolID
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(exportIdentifier))
	id := SymbolID(h.Sum64())
	if id == InvalidSymbolID {
		// Vanishingly unlikely collision with the sentinel; perturb it.
		id = 1
	}
	return id
}

// MemberSymbolID hashes a parameter or local lambda's export identifier as
// <outer>$<identifier>, per spec.md 3.
func MemberSymbolID(outer SymbolID, identifier string) SymbolID {
	h := fnv.New64a()
	_, _ = h.Write([]byte{
		byte(outer), byte(outer >> 8), byte(outer >> 16), byte(outer >> 24),
		byte(outer >> 32), byte(outer >> 40), byte(outer >> 48), byte(outer >> 56),
	})
	_, _ = h.Write([]byte{'$'})
	_, _ = h.Write([]byte(identifier))
	id := SymbolID(h.Sum64())
	if id == InvalidSymbolID {
		id = 1
	}
	return id
}

// Modifier is a declaration's visibility.
type Modifier uint8

const (
	ModUndefined Modifier = iota
	ModPrivate
	ModInternal
	ModProtected
	ModPublic
)

// Position is a 1-based line/column pair, matching the carrion lexer's
// token.Token convention that every Position() call ultimately derives
// from; the wire protocol converts to/from 0-based UTF-16 columns,
// spec.md 6.
type Position struct {
	Line, Column int
}

// Location is a definition or declaration span within one file.
type Location struct {
	FileURI    string
	Begin, End Position
}

// IsZero reports whether the location was never set.
func (l Location) IsZero() bool {
	return l.Begin == Position{} && l.End == Position{}
}

// Symbol is one declaration record (spec.md 3).
type Symbol struct {
	ID                 SymbolID
	Name               string
	Scope              string // dotted path within package
	Definition         Location
	Declaration        Location
	Kind               string // AST kind, e.g. "function", "class", "variable"
	Signature          string
	ReturnType         string
	Modifier           Modifier
	IsMemberParam      bool
	IsFromInterfaceBlob bool
	IsDeprecated       bool
	InsertText         string
	OwningModule       string
	EnclosingMacroCall Location
}

// RefKind distinguishes a symbol's own definition occurrence from a use.
type RefKind uint8

const (
	RefUnknown    RefKind = 0
	RefDefinition RefKind = 1 << 0
	RefReference  RefKind = 1 << 1
	RefAll                = RefDefinition | RefReference
)

// Ref is one occurrence of a symbol, shards keyed by the referent's
// SymbolID (spec.md 3).
type Ref struct {
	Location            Location
	Kind                RefKind
	Container           SymbolID
	IsFromInterfaceBlob bool
}

// RelationKind mirrors original_source's RelationKind enum exactly.
type RelationKind uint8

const (
	BaseOf RelationKind = iota
	RiddenBy
	Extend
	CalledBy
	ContainedBy
	Overrides
)

// Relation is a directed edge between two symbols.
type Relation struct {
	Subject   SymbolID
	Predicate RelationKind
	Object    SymbolID
}

// ExtendItem records one member an `extend` block contributes to a type,
// and which interface (if any) required it.
type ExtendItem struct {
	ID            SymbolID
	Modifier      Modifier
	InterfaceName string
}

// CrossSymbol is a symbol crossing a language boundary (spec.md 3);
// carries both a definition and declaration range plus a cross-type tag.
type CrossSymbol struct {
	Symbol
	CrossType string
}

// Shard bundles one package's full index contribution.
type Shard struct {
	Package   string
	Symbols   []Symbol
	Refs      map[SymbolID][]Ref
	Relations []Relation
	Extends   map[SymbolID][]ExtendItem
	Cross     []CrossSymbol
	Comments  map[SymbolID]string
}

// NewShard returns an empty shard for pkg.
func NewShard(pkg string) *Shard {
	return &Shard{
		Package:  pkg,
		Refs:     make(map[SymbolID][]Ref),
		Extends:  make(map[SymbolID][]ExtendItem),
		Comments: make(map[SymbolID]string),
	}
}
