package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInverseInvariant(t *testing.T) {
	g := New()
	g.UpdateDependencies("m", []string{"m.util"})
	assert.Contains(t, g.Dependencies("m"), "m.util")
	assert.Contains(t, g.Dependents("m.util"), "m")

	g.UpdateDependencies("m", nil)
	assert.Empty(t, g.Dependencies("m"))
	assert.Empty(t, g.Dependents("m.util"))
}

func TestTransitiveClosure(t *testing.T) {
	g := New()
	g.UpdateDependencies("a", []string{"b"})
	g.UpdateDependencies("b", []string{"c"})
	g.UpdateDependencies("c", nil)

	assert.ElementsMatch(t, []string{"b", "c"}, g.AllDependencies("a"))
	assert.ElementsMatch(t, []string{"a", "b"}, g.AllDependents("c"))
}

func TestTopologicalOrder(t *testing.T) {
	g := New()
	g.UpdateDependencies("a", []string{"b"})
	g.UpdateDependencies("b", []string{"c"})
	g.UpdateDependencies("c", nil)

	order, ok := g.TopologicalSort()
	assert.True(t, ok)

	pos := map[string]int{}
	for i, p := range order {
		pos[p] = i
	}
	assert.Less(t, pos["c"], pos["b"])
	assert.Less(t, pos["b"], pos["a"])
}

func TestCycleDetection(t *testing.T) {
	g := New()
	g.UpdateDependencies("a", []string{"b"})
	g.UpdateDependencies("b", []string{"a"})

	cycles, has := g.FindCycles()
	assert.True(t, has)
	assert.Len(t, cycles, 1)
	assert.ElementsMatch(t, []string{"a", "b"}, cycles[0])

	_, ok := g.TopologicalSort()
	assert.False(t, ok)
}

func TestSelfLoopTolerated(t *testing.T) {
	g := New()
	g.UpdateDependencies("a", []string{"a"})
	_, has := g.FindCycles()
	assert.False(t, has)
}
