// Package graph implements the package dependency graph: a thread-safe
// forward/inverse adjacency structure supporting transitive-closure
// traversal, topological sort, and cycle detection (spec.md 4.2).
package graph

import (
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Graph is a directed graph of package full-name -> imported package
// full-names, maintained alongside its exact transpose. All operations
// are atomic under a single mutex, matching the original's single
// graphMutex (original_source DependencyGraph.h).
type Graph struct {
	mu       sync.Mutex
	forward  map[string]map[string]struct{}
	backward map[string]map[string]struct{}
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		forward:  make(map[string]map[string]struct{}),
		backward: make(map[string]map[string]struct{}),
	}
}

// Dependencies returns the set of packages p directly imports.
func (g *Graph) Dependencies(p string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return maps.Keys(g.forward[p])
}

// Dependents returns the set of packages that directly import p.
func (g *Graph) Dependents(p string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return maps.Keys(g.backward[p])
}

// UpdateDependencies replaces p's out-edges with newDeps, updating the
// inverse index in lock-step so the invariant backward = transpose(forward)
// always holds (Property P1).
func (g *Graph) UpdateDependencies(p string, newDeps []string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if old, ok := g.forward[p]; ok {
		for dep := range old {
			if back, ok := g.backward[dep]; ok {
				delete(back, p)
			}
		}
	}

	next := make(map[string]struct{}, len(newDeps))
	for _, dep := range newDeps {
		next[dep] = struct{}{}
		if g.backward[dep] == nil {
			g.backward[dep] = make(map[string]struct{})
		}
		g.backward[dep][p] = struct{}{}
	}
	g.forward[p] = next
	if _, ok := g.backward[p]; !ok {
		g.backward[p] = make(map[string]struct{})
	}
}

// AllDependencies returns the transitive closure of packages p depends on.
func (g *Graph) AllDependencies(p string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	visited := map[string]struct{}{}
	g.dfs(p, g.forward, visited)
	delete(visited, p)
	return maps.Keys(visited)
}

// AllDependents returns the transitive closure of packages that depend on p.
func (g *Graph) AllDependents(p string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	visited := map[string]struct{}{}
	g.dfs(p, g.backward, visited)
	delete(visited, p)
	return maps.Keys(visited)
}

func (g *Graph) dfs(p string, adj map[string]map[string]struct{}, visited map[string]struct{}) {
	if _, ok := visited[p]; ok {
		return
	}
	visited[p] = struct{}{}
	for next := range adj[p] {
		g.dfs(next, adj, visited)
	}
}

// TopologicalSort returns every known package in leaves-first order. If
// the whole graph has a cycle, it returns (nil, false).
func (g *Graph) TopologicalSort() ([]string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.partialTopologicalSortLocked(maps.Keys(g.forward), false)
}

// PartialTopologicalSort orders subset in leaves-first order. When
// acceptCycles is false and a cycle touches subset, it returns (nil, false).
func (g *Graph) PartialTopologicalSort(subset []string, acceptCycles bool) ([]string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.partialTopologicalSortLocked(subset, acceptCycles)
}

// partialTopologicalSortLocked runs Kahn's algorithm restricted to subset,
// edges outside subset ignored. Must be called with g.mu held.
func (g *Graph) partialTopologicalSortLocked(subset []string, acceptCycles bool) ([]string, bool) {
	inSubset := make(map[string]struct{}, len(subset))
	for _, p := range subset {
		inSubset[p] = struct{}{}
	}

	indegree := make(map[string]int, len(subset))
	for p := range inSubset {
		indegree[p] = 0
	}
	for p := range inSubset {
		for dep := range g.forward[p] {
			if _, ok := inSubset[dep]; ok {
				indegree[p]++
			}
		}
	}

	var ready []string
	for p, d := range indegree {
		if d == 0 {
			ready = append(ready, p)
		}
	}
	slices.Sort(ready)

	var order []string
	for len(ready) > 0 {
		slices.Sort(ready)
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)

		for dependent := range g.backward[n] {
			if _, ok := inSubset[dependent]; !ok {
				continue
			}
			if _, ok := g.forward[dependent][n]; !ok {
				continue
			}
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(order) != len(subset) {
		if !acceptCycles {
			return nil, false
		}
		// Append whatever remains (cyclic members) in a stable order.
		seen := make(map[string]struct{}, len(order))
		for _, p := range order {
			seen[p] = struct{}{}
		}
		var rest []string
		for p := range inSubset {
			if _, ok := seen[p]; !ok {
				rest = append(rest, p)
			}
		}
		slices.Sort(rest)
		order = append(order, rest...)
	}
	return order, true
}

// FindCycles runs Tarjan's SCC algorithm and reports only SCCs of size > 1
// (self-loops are tolerated, per spec.md 4.2).
func (g *Graph) FindCycles() (cycles [][]string, hasCycle bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	t := &tarjan{
		index:   map[string]int{},
		lowlink: map[string]int{},
		onStack: map[string]bool{},
		adj:     g.forward,
	}
	nodes := maps.Keys(g.forward)
	slices.Sort(nodes)
	for _, n := range nodes {
		if _, ok := t.index[n]; !ok {
			t.strongConnect(n)
		}
	}
	for _, scc := range t.sccs {
		if len(scc) > 1 {
			slices.Sort(scc)
			cycles = append(cycles, scc)
		}
	}
	return cycles, len(cycles) > 0
}

type tarjan struct {
	index, lowlink map[string]int
	onStack        map[string]bool
	stack          []string
	counter        int
	adj            map[string]map[string]struct{}
	sccs           [][]string
}

func (t *tarjan) strongConnect(v string) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for w := range t.adj[v] {
		if _, ok := t.index[w]; !ok {
			t.strongConnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var scc []string
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		t.sccs = append(t.sccs, scc)
	}
}
