// Package graph implements the arena-indexed adjacency list and topological
// sort used by the resolver to expand a tool's transitive runtime
// dependencies into an ordered install plan, per the "arena + index" design
// note in the design. Nodes are interned to small integer IDs up front so the
// adjacency list is a flat slice-of-slices rather than a map of pointers,
// grounded on the integer-ID adjacency list terassyi-tomei's own dependency
// DAG (internal/graph/dag.go) uses for the same purpose.
package graph

import "fmt"

// Graph is a directed graph over a fixed, interned node set.
type Graph struct {
	names []string       // arena: index -> name
	index map[string]int // name -> index
	edges [][]int        // adjacency list: edges[i] = indices of i's dependencies
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{index: make(map[string]int)}
}

// intern returns the integer ID for name, allocating a new arena slot the
// first time it is seen.
func (g *Graph) intern(name string) int {
	if id, ok := g.index[name]; ok {
		return id
	}
	id := len(g.names)
	g.names = append(g.names, name)
	g.edges = append(g.edges, nil)
	g.index[name] = id
	return id
}

// AddNode ensures name is present in the graph, even with no edges.
func (g *Graph) AddNode(name string) { g.intern(name) }

// AddEdge records that "from" depends on "to" (from must be installed after
// to). Both names are interned if not already present.
func (g *Graph) AddEdge(from, to string) {
	f := g.intern(from)
	t := g.intern(to)
	g.edges[f] = append(g.edges[f], t)
}

// Nodes returns every interned node name, in arena (insertion) order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

// color states for DFS-based cycle detection.
const (
	white = 0 // unvisited
	gray  = 1 // on the current DFS stack
	black = 2 // fully explored
)

// CycleError reports a dependency cycle discovered during topological sort,
// carrying the full cycle path for diagnostics.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %v", e.Path)
}

// TopoSort returns the node names in dependency order (a dependency always
// precedes anything that depends on it) via DFS with path coloring, or a
// *CycleError if the graph is not a DAG. Iteration order over ties is
// deterministic: arena (insertion) order.
func (g *Graph) TopoSort() ([]string, error) {
	color := make([]int, len(g.names))
	var order []string
	var stack []string

	var visit func(id int) error
	visit = func(id int) error {
		switch color[id] {
		case black:
			return nil
		case gray:
			cyclePath := append(append([]string{}, stack...), g.names[id])
			return &CycleError{Path: cyclePath}
		}
		color[id] = gray
		stack = append(stack, g.names[id])
		for _, dep := range g.edges[id] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		order = append(order, g.names[id])
		return nil
	}

	for id := range g.names {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// HasCycle reports whether the graph contains a dependency cycle without
// constructing a full topological order.
func (g *Graph) HasCycle() bool {
	_, err := g.TopoSort()
	return err != nil
}

// Dependencies returns the direct dependency names of node, in the order
// edges were added.
func (g *Graph) Dependencies(name string) []string {
	id, ok := g.index[name]
	if !ok {
		return nil
	}
	out := make([]string, len(g.edges[id]))
	for i, dep := range g.edges[id] {
		out[i] = g.names[dep]
	}
	return out
}
