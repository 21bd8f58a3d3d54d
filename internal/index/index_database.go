package index

import (
	"bytes"
	"encoding/gob"

	"github.com/pkg/errors"
)

// ShardStore is the subset of *cache.DiskCache the database mode needs,
// kept as an interface here so internal/index does not import
// internal/cache (avoiding a cache <-> index import cycle — the cache
// package never needs to know about Shard).
type ShardStore interface {
	LoadShard(pkgDir, sourcesHash string) ([]byte, bool)
	StoreShard(pkgDir, sourcesHash string, shard []byte) error
}

// IndexDatabase is the persisted/relational-mode implementation (spec.md
// 4.8), grounded on original_source's index/{IndexDatabase,
// BackgroundIndexDB}.h: same four shard kinds as MemIndex, but every
// Update is mirrored to disk so the shard survives across sessions
// (spec.md 4.6.1 step 5, 4.6.5).
type IndexDatabase struct {
	mem   *MemIndex
	store ShardStore
	// pkgDirOf and sourcesHashOf let Update locate where to persist a
	// shard; the workspace engine supplies them per package.
	pkgDirOf     map[string]string
	sourcesHashOf map[string]string
}

// NewIndexDatabase wraps an in-memory index with disk persistence.
func NewIndexDatabase(store ShardStore) *IndexDatabase {
	return &IndexDatabase{
		mem:           NewMemIndex(),
		store:         store,
		pkgDirOf:      make(map[string]string),
		sourcesHashOf: make(map[string]string),
	}
}

// RegisterLocation tells the database where pkg's shard lives on disk for
// future Update/persistence calls.
func (d *IndexDatabase) RegisterLocation(pkg, pkgDir, sourcesHash string) {
	d.pkgDirOf[pkg] = pkgDir
	d.sourcesHashOf[pkg] = sourcesHash
}

// LoadFromDisk attempts to hydrate pkg's shard from the disk cache,
// returning true on a hit (spec.md 4.6.1 step 5: "restore its
// symbol-index shard from disk").
func (d *IndexDatabase) LoadFromDisk(pkg, pkgDir, sourcesHash string) (bool, error) {
	raw, ok := d.store.LoadShard(pkgDir, sourcesHash)
	if !ok {
		return false, nil
	}
	var shard Shard
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&shard); err != nil {
		return false, errors.Wrapf(err, "decoding persisted shard for %s", pkg)
	}
	d.mem.Update(&shard)
	d.RegisterLocation(pkg, pkgDir, sourcesHash)
	return true, nil
}

// Update replaces pkg's shard in memory and, if a location is registered,
// persists it to disk (spec.md 4.6.5).
func (d *IndexDatabase) Update(shard *Shard) {
	d.mem.Update(shard)
	pkgDir, ok := d.pkgDirOf[shard.Package]
	if !ok {
		return
	}
	hash := d.sourcesHashOf[shard.Package]
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(shard); err != nil {
		return
	}
	_ = d.store.StoreShard(pkgDir, hash, buf.Bytes())
}

func (d *IndexDatabase) Erase(pkg string) {
	d.mem.Erase(pkg)
	delete(d.pkgDirOf, pkg)
	delete(d.sourcesHashOf, pkg)
}

func (d *IndexDatabase) FuzzyFind(query string, cb func(Symbol)) { d.mem.FuzzyFind(query, cb) }
func (d *IndexDatabase) Lookup(ids []SymbolID, cb func(Symbol))  { d.mem.Lookup(ids, cb) }
func (d *IndexDatabase) Refs(ids []SymbolID, kindMask RefKind, cb func(SymbolID, Ref)) {
	d.mem.Refs(ids, kindMask, cb)
}
func (d *IndexDatabase) RefsFindReference(ids []SymbolID) (*Ref, []Ref) {
	return d.mem.RefsFindReference(ids)
}
func (d *IndexDatabase) Callees(pkg string, declID SymbolID, cb func(Relation)) {
	d.mem.Callees(pkg, declID, cb)
}
func (d *IndexDatabase) Relations(id SymbolID, predicate RelationKind, cb func(Relation)) {
	d.mem.Relations(id, predicate, cb)
}
func (d *IndexDatabase) FindRiddenUp(id SymbolID) ([]SymbolID, SymbolID) { return d.mem.FindRiddenUp(id) }
func (d *IndexDatabase) FindRiddenDown(id SymbolID) []SymbolID          { return d.mem.FindRiddenDown(id) }
func (d *IndexDatabase) GetAimSymbol(id SymbolID) (Symbol, bool)        { return d.mem.GetAimSymbol(id) }
func (d *IndexDatabase) FindImportSymsOnCompletion(fromPkg, fromModuleRoot string, directDeps map[string]bool, prefix string) []Symbol {
	return d.mem.FindImportSymsOnCompletion(fromPkg, fromModuleRoot, directDeps, prefix)
}
func (d *IndexDatabase) FindExtendSymsOnCompletion(typeID SymbolID) []ExtendItem {
	return d.mem.FindExtendSymsOnCompletion(typeID)
}
func (d *IndexDatabase) FindCrossSymbolByName(name string) []CrossSymbol {
	return d.mem.FindCrossSymbolByName(name)
}
func (d *IndexDatabase) FindImportSymsOnQuickFix(fromPkg string, directDeps map[string]bool, name string) []Symbol {
	return d.mem.FindImportSymsOnQuickFix(fromPkg, directDeps, name)
}
func (d *IndexDatabase) FindComment(sym SymbolID) (string, bool) { return d.mem.FindComment(sym) }
func (d *IndexDatabase) SymbolAt(pkg, file string, line, col int) (SymbolID, bool) {
	return d.mem.SymbolAt(pkg, file, line, col)
}

var _ Index = (*MemIndex)(nil)
var _ Index = (*IndexDatabase)(nil)
