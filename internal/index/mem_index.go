package index

import (
	"sort"
	"strings"
	"sync"
)

// Index is the interface both MemIndex and IndexDatabase implement
// (spec.md 4.8). Callback-style queries (cb) mirror the original's
// streaming-consumer API; here cb simply receives each matching item.
type Index interface {
	// Update atomically replaces pkg's shard.
	Update(shard *Shard)
	// Erase removes a package's shard entirely.
	Erase(pkg string)

	FuzzyFind(query string, cb func(Symbol))
	Lookup(ids []SymbolID, cb func(Symbol))
	Refs(ids []SymbolID, kindMask RefKind, cb func(SymbolID, Ref))
	RefsFindReference(ids []SymbolID) (definition *Ref, refs []Ref)
	Callees(pkg string, declID SymbolID, cb func(Relation))
	Relations(id SymbolID, predicate RelationKind, cb func(Relation))
	FindRiddenUp(id SymbolID) (chain []SymbolID, topID SymbolID)
	FindRiddenDown(id SymbolID) (chain []SymbolID)
	GetAimSymbol(id SymbolID) (Symbol, bool)
	FindImportSymsOnCompletion(fromPkg, fromModuleRoot string, directDeps map[string]bool, prefix string) []Symbol
	FindExtendSymsOnCompletion(typeID SymbolID) []ExtendItem
	FindImportSymsOnQuickFix(fromPkg string, directDeps map[string]bool, name string) []Symbol
	FindCrossSymbolByName(name string) []CrossSymbol
	FindComment(sym SymbolID) (string, bool)

	// SymbolAt resolves the occurrence (definition or reference) covering
	// file:line:col within pkg to the SymbolID it refers to, for capability
	// handlers that only have a cursor position to start from.
	SymbolAt(pkg, file string, line, col int) (SymbolID, bool)
}

// MemIndex is the in-memory implementation: four maps keyed by full
// package name, replaced atomically per package on writes (spec.md 4.8,
// 5: "writers replace whole per-package shards atomically").
type MemIndex struct {
	mu     sync.RWMutex
	shards map[string]*Shard
}

// NewMemIndex returns an empty in-memory index.
func NewMemIndex() *MemIndex {
	return &MemIndex{shards: make(map[string]*Shard)}
}

func (m *MemIndex) Update(shard *Shard) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shards[shard.Package] = shard
}

func (m *MemIndex) Erase(pkg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.shards, pkg)
}

// snapshot returns the current shard list under the read lock; callers
// iterate it lock-free afterward, matching spec.md 5's "readers iterate a
// snapshot".
func (m *MemIndex) snapshot() []*Shard {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Shard, 0, len(m.shards))
	for _, s := range m.shards {
		out = append(out, s)
	}
	return out
}

func (m *MemIndex) FuzzyFind(query string, cb func(Symbol)) {
	q := strings.ToLower(query)
	for _, shard := range m.snapshot() {
		for _, sym := range shard.Symbols {
			if fuzzyMatch(strings.ToLower(sym.Name), q) {
				cb(sym)
			}
		}
	}
}

// fuzzyMatch is a subsequence match: every rune of q must appear in s in
// order (the cheapest fuzzy-find approximation, sufficient for workspace
// symbol search, scenario 4).
func fuzzyMatch(s, q string) bool {
	if q == "" {
		return true
	}
	i := 0
	for _, r := range s {
		if i < len(q) && rune(q[i]) == r {
			i++
		}
	}
	return i == len(q)
}

func (m *MemIndex) Lookup(ids []SymbolID, cb func(Symbol)) {
	want := toSet(ids)
	for _, shard := range m.snapshot() {
		for _, sym := range shard.Symbols {
			if _, ok := want[sym.ID]; ok {
				cb(sym)
			}
		}
	}
}

func (m *MemIndex) Refs(ids []SymbolID, kindMask RefKind, cb func(SymbolID, Ref)) {
	want := toSet(ids)
	for _, shard := range m.snapshot() {
		for id, refs := range shard.Refs {
			if _, ok := want[id]; !ok {
				continue
			}
			for _, r := range refs {
				if kindMask == RefAll || r.Kind&kindMask != 0 {
					cb(id, r)
				}
			}
		}
	}
}

// RefsFindReference distinguishes the unique DEFINITION ref from the
// REFERENCE list for a (normally singleton) id set, per spec.md 4.8.
func (m *MemIndex) RefsFindReference(ids []SymbolID) (*Ref, []Ref) {
	var def *Ref
	var refs []Ref
	m.Refs(ids, RefAll, func(_ SymbolID, r Ref) {
		if r.Kind&RefDefinition != 0 && def == nil {
			rc := r
			def = &rc
		} else {
			refs = append(refs, r)
		}
	})
	return def, refs
}

func (m *MemIndex) Callees(pkg string, declID SymbolID, cb func(Relation)) {
	m.mu.RLock()
	shard, ok := m.shards[pkg]
	m.mu.RUnlock()
	if !ok {
		return
	}
	for _, rel := range shard.Relations {
		if rel.Predicate == CalledBy && rel.Object == declID {
			cb(rel)
		}
	}
}

func (m *MemIndex) Relations(id SymbolID, predicate RelationKind, cb func(Relation)) {
	for _, shard := range m.snapshot() {
		for _, rel := range shard.Relations {
			if rel.Predicate == predicate && (rel.Subject == id || rel.Object == id) {
				cb(rel)
			}
		}
	}
}

// FindRiddenUp walks the overrides chain from id toward its root
// ancestor, returning the chain and the top (root) SymbolID. Base-of
// relations are not followed.
func (m *MemIndex) FindRiddenUp(id SymbolID) ([]SymbolID, SymbolID) {
	var chain []SymbolID
	cur := id
	visited := map[SymbolID]bool{}
	for {
		if visited[cur] {
			break
		}
		visited[cur] = true
		var parent SymbolID
		found := false
		m.Relations(cur, Overrides, func(rel Relation) {
			if rel.Subject == cur && !found {
				parent = rel.Object
				found = true
			}
		})
		if !found {
			break
		}
		chain = append(chain, parent)
		cur = parent
	}
	top := id
	if len(chain) > 0 {
		top = chain[len(chain)-1]
	}
	return chain, top
}

// FindRiddenDown walks the ridden-by chain from id to all overriding
// descendants.
func (m *MemIndex) FindRiddenDown(id SymbolID) []SymbolID {
	var chain []SymbolID
	frontier := []SymbolID{id}
	visited := map[SymbolID]bool{id: true}
	for len(frontier) > 0 {
		next := frontier[0]
		frontier = frontier[1:]
		m.Relations(next, RiddenBy, func(rel Relation) {
			if rel.Subject == next && !visited[rel.Object] {
				visited[rel.Object] = true
				chain = append(chain, rel.Object)
				frontier = append(frontier, rel.Object)
			}
		})
	}
	return chain
}

func (m *MemIndex) GetAimSymbol(id SymbolID) (Symbol, bool) {
	var found Symbol
	ok := false
	m.Lookup([]SymbolID{id}, func(s Symbol) {
		found = s
		ok = true
	})
	return found, ok
}

// FindImportSymsOnCompletion implements the visibility rule of spec.md
// 4.8: a declaration is visible from the current package/module according
// to its modifier and the subject/object package relationship.
func (m *MemIndex) FindImportSymsOnCompletion(fromPkg, fromModuleRoot string, directDeps map[string]bool, prefix string) []Symbol {
	var out []Symbol
	lowerPrefix := strings.ToLower(prefix)
	for _, shard := range m.snapshot() {
		if shard.Package == fromPkg {
			continue
		}
		if !directDeps[shard.Package] {
			continue
		}
		for _, sym := range shard.Symbols {
			if prefix != "" && !strings.HasPrefix(strings.ToLower(sym.Name), lowerPrefix) {
				continue
			}
			if visibleFrom(sym, shard.Package, fromPkg, sym.OwningModule, fromModuleRoot) {
				out = append(out, sym)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func visibleFrom(sym Symbol, declPkg, fromPkg, declModuleRoot, fromModuleRoot string) bool {
	switch sym.Modifier {
	case ModPublic:
		return true
	case ModInternal:
		return isAncestorPackage(declPkg, fromPkg)
	case ModProtected:
		return isAncestorPackage(declPkg, fromPkg) || isAncestorPackage(fromPkg, declPkg) || declModuleRoot == fromModuleRoot
	default:
		return false
	}
}

// isAncestorPackage reports whether ancestor is a dotted-path prefix of
// descendant (package-name ancestry, spec.md 4.8).
func isAncestorPackage(ancestor, descendant string) bool {
	if ancestor == descendant {
		return true
	}
	return strings.HasPrefix(descendant, ancestor+".")
}

func (m *MemIndex) FindExtendSymsOnCompletion(typeID SymbolID) []ExtendItem {
	for _, shard := range m.snapshot() {
		if items, ok := shard.Extends[typeID]; ok {
			return items
		}
	}
	return nil
}

// FindImportSymsOnQuickFix mirrors FindImportSymsOnCompletion's visibility
// rule but matches on the exact identifier name rather than a prefix,
// used to offer an auto-import quick fix for an unresolved identifier
// (spec.md 4.8).
func (m *MemIndex) FindImportSymsOnQuickFix(fromPkg string, directDeps map[string]bool, name string) []Symbol {
	var out []Symbol
	for _, shard := range m.snapshot() {
		if shard.Package == fromPkg || !directDeps[shard.Package] {
			continue
		}
		for _, sym := range shard.Symbols {
			if sym.Name == name && visibleFrom(sym, shard.Package, fromPkg, sym.OwningModule, "") {
				out = append(out, sym)
			}
		}
	}
	return out
}

// FindComment returns the doc comment attached to sym's definition, if the
// collector recorded one (spec.md 4.8, 6's persisted "comments" table).
func (m *MemIndex) FindComment(sym SymbolID) (string, bool) {
	for _, shard := range m.snapshot() {
		if c, ok := shard.Comments[sym]; ok {
			return c, true
		}
	}
	return "", false
}

// SymbolAt scans pkg's ref slab for an occurrence whose location contains
// line:col on file, returning the referent id it names.
func (m *MemIndex) SymbolAt(pkg, file string, line, col int) (SymbolID, bool) {
	m.mu.RLock()
	shard, ok := m.shards[pkg]
	m.mu.RUnlock()
	if !ok {
		return InvalidSymbolID, false
	}
	for id, refs := range shard.Refs {
		for _, r := range refs {
			if r.Location.FileURI != file {
				continue
			}
			if r.Location.Begin.Line != line {
				continue
			}
			if col >= r.Location.Begin.Column && col <= r.Location.End.Column {
				return id, true
			}
		}
	}
	return InvalidSymbolID, false
}

func (m *MemIndex) FindCrossSymbolByName(name string) []CrossSymbol {
	var out []CrossSymbol
	for _, shard := range m.snapshot() {
		for _, cs := range shard.Cross {
			if cs.Name == name {
				out = append(out, cs)
			}
		}
	}
	return out
}

func toSet(ids []SymbolID) map[SymbolID]struct{} {
	set := make(map[SymbolID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
