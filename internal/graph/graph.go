// Package graph builds per-batch co-participation graphs and derives the
// centrality, community and truck factor metrics from them.
package graph

import (
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Graph is an undirected simple graph over author identities, stored as a
// gonum graph whose node IDs are insertion indexes.
// Nodes keep insertion order; self-loops are dropped and edges are deduplicated.
type Graph struct {
	nodes []string
	index map[string]int
	g     *simple.UndirectedGraph
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{index: make(map[string]int), g: simple.NewUndirectedGraph()}
}

// AddNode adds id when it is not present yet and returns its index.
func (g *Graph) AddNode(id string) int {
	if i, ok := g.index[id]; ok {
		return i
	}
	i := len(g.nodes)
	g.index[id] = i
	g.nodes = append(g.nodes, id)
	g.g.AddNode(simple.Node(i))
	return i
}

// AddEdge connects a and b, adding both nodes as needed.
func (g *Graph) AddEdge(a, b string) {
	i, j := g.AddNode(a), g.AddNode(b)
	if i == j || g.g.HasEdgeBetween(int64(i), int64(j)) {
		return
	}
	g.g.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
}

// Nodes returns the node identities in insertion order.
func (g *Graph) Nodes() []string {
	return slices.Clone(g.nodes)
}

// NodeCount is the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount is the number of undirected edges.
func (g *Graph) EdgeCount() int {
	return g.g.Edges().Len()
}

// HasEdge reports whether a and b are adjacent.
func (g *Graph) HasEdge(a, b string) bool {
	i, ok := g.index[a]
	if !ok {
		return false
	}
	j, ok := g.index[b]
	if !ok {
		return false
	}
	return g.g.HasEdgeBetween(int64(i), int64(j))
}

// Neighbors returns the sorted neighbors of id.
func (g *Graph) Neighbors(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	adj := g.sortedAdj(i)
	out := make([]string, len(adj))
	for k, j := range adj {
		out[k] = g.nodes[j]
	}
	slices.Sort(out)
	return out
}

// degree is the number of neighbors of node i.
func (g *Graph) degree(i int) int {
	return g.g.From(int64(i)).Len()
}

// sortedAdj returns neighbor indexes in ascending order for deterministic traversal.
func (g *Graph) sortedAdj(i int) []int {
	nodes := graph.NodesOf(g.g.From(int64(i)))
	out := make([]int, len(nodes))
	for k, n := range nodes {
		out[k] = int(n.ID())
	}
	slices.Sort(out)
	return out
}

// Density is 2m / (n(n-1)), and 0 for graphs with fewer than two nodes.
func (g *Graph) Density() float64 {
	n := len(g.nodes)
	if n < 2 {
		return 0
	}
	return 2 * float64(g.EdgeCount()) / float64(n*(n-1))
}
