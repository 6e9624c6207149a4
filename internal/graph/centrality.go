package graph

import (
	"math"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/path"
)

// Degree returns deg(v)/(n-1) for every node. Isolated nodes, and every node
// of a graph with fewer than two nodes, score 0.
func (g *Graph) Degree() map[string]float64 {
	n := len(g.nodes)
	out := make(map[string]float64, n)
	for i, id := range g.nodes {
		if n < 2 {
			out[id] = 0
			continue
		}
		out[id] = float64(g.degree(i)) / float64(n-1)
	}
	return out
}

// Closeness returns the closeness centrality of every node, scaled by the
// share of the graph each node can reach (Wasserman and Faust), so that nodes
// of small components are not over-rated. network.Closeness is not used since
// it scores every node of a disconnected graph 0.
func (g *Graph) Closeness() map[string]float64 {
	n := len(g.nodes)
	out := make(map[string]float64, n)
	paths := path.DijkstraAllPaths(g.g)
	for i, id := range g.nodes {
		total, reach := 0.0, 0
		for j := range g.nodes {
			d := paths.Weight(int64(i), int64(j))
			if j == i || math.IsInf(d, 1) {
				continue
			}
			total += d
			reach++
		}
		if total == 0 || n < 2 {
			out[id] = 0
			continue
		}
		r := float64(reach)
		out[id] = (r / total) * (r / float64(n-1))
	}
	return out
}

// Betweenness returns the normalized shortest-path betweenness of every node.
// network.Betweenness sums over ordered pairs, so every unordered pair of an
// undirected graph is counted from both ends.
func (g *Graph) Betweenness() map[string]float64 {
	n := len(g.nodes)
	cb := network.Betweenness(g.g)

	scale := 1.0
	if n > 2 {
		scale = 1 / float64((n-1)*(n-2))
	}
	out := make(map[string]float64, n)
	for i, id := range g.nodes {
		out[id] = cb[int64(i)] * scale
	}
	return out
}
