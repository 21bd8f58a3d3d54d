package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbolIDStability(t *testing.T) {
	id1 := NewSymbolID("pkg.Foo")
	id2 := NewSymbolID("pkg.Foo")
	assert.Equal(t, id1, id2)
	assert.NotEqual(t, InvalidSymbolID, id1)
	assert.Equal(t, InvalidSymbolID, NewSymbolID(""))
}

func TestFuzzyFindAndRefs(t *testing.T) {
	idx := NewMemIndex()
	fooID := NewSymbolID("m.foo")

	shard := NewShard("m")
	shard.Symbols = append(shard.Symbols, Symbol{ID: fooID, Name: "foo", Modifier: ModPublic})
	shard.Refs[fooID] = []Ref{
		{Kind: RefDefinition, Location: Location{FileURI: "m.crl"}},
		{Kind: RefReference, Location: Location{FileURI: "m.crl", Begin: Position{Line: 5}}},
	}
	idx.Update(shard)

	var found []Symbol
	idx.FuzzyFind("fo", func(s Symbol) { found = append(found, s) })
	assert.Len(t, found, 1)
	assert.Equal(t, "foo", found[0].Name)

	def, refs := idx.RefsFindReference([]SymbolID{fooID})
	assert.NotNil(t, def)
	assert.Len(t, refs, 1)
}

func TestRelationsAndInheritanceChain(t *testing.T) {
	idx := NewMemIndex()
	a := NewSymbolID("m.A.doIt")
	b := NewSymbolID("m.B.doIt")

	shard := NewShard("m")
	shard.Relations = append(shard.Relations, Relation{Subject: b, Predicate: Overrides, Object: a})
	shard.Relations = append(shard.Relations, Relation{Subject: a, Predicate: RiddenBy, Object: b})
	idx.Update(shard)

	chain, top := idx.FindRiddenUp(b)
	assert.Equal(t, []SymbolID{a}, chain)
	assert.Equal(t, a, top)

	down := idx.FindRiddenDown(a)
	assert.Equal(t, []SymbolID{b}, down)
}

func TestVisibilityRule(t *testing.T) {
	idx := NewMemIndex()
	pubID := NewSymbolID("m.util.Pub")
	privID := NewSymbolID("m.util.priv")

	shard := NewShard("m.util")
	shard.Symbols = append(shard.Symbols,
		Symbol{ID: pubID, Name: "Pub", Modifier: ModPublic},
		Symbol{ID: privID, Name: "priv", Modifier: ModPrivate},
	)
	idx.Update(shard)

	deps := map[string]bool{"m.util": true}
	syms := idx.FindImportSymsOnCompletion("m", "m", deps, "")
	assert.Len(t, syms, 1)
	assert.Equal(t, "Pub", syms[0].Name)
}
