package graph

import (
	"maps"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"
)

// Communities partitions the graph by greedy modularity maximization
// (Clauset, Newman and Moore). Communities start as single nodes and the pair
// with the largest modularity gain is merged until no merge gains. A graph
// without edges has no communities; nodes without edges in a graph that has
// some stay as singleton communities. Communities are ordered by size, largest
// first, and members keep insertion order. community.Modularize is Louvain
// with a random source, so it cannot reproduce this merge order.
func (g *Graph) Communities() [][]string {
	n := len(g.nodes)
	edges := g.EdgeCount()
	if edges == 0 {
		return nil
	}
	m2 := 2 * float64(edges)

	members := make([][]int, n)
	a := make([]float64, n)
	e := make([]map[int]float64, n)
	alive := make([]bool, n)
	for i := range n {
		members[i] = []int{i}
		adj := g.sortedAdj(i)
		a[i] = float64(len(adj)) / m2
		e[i] = make(map[int]float64, len(adj))
		for _, j := range adj {
			e[i][j] = 1 / m2
		}
		alive[i] = true
	}

	for {
		best, bi, bj := 0.0, -1, -1
		for i := range n {
			if !alive[i] {
				continue
			}
			for _, j := range slices.Sorted(maps.Keys(e[i])) {
				if j <= i {
					continue
				}
				if dq := 2 * (e[i][j] - a[i]*a[j]); dq > best {
					best, bi, bj = dq, i, j
				}
			}
		}
		if bi < 0 {
			break
		}

		// merge bj into bi
		members[bi] = append(members[bi], members[bj]...)
		a[bi] += a[bj]
		for k, w := range e[bj] {
			delete(e[k], bj)
			if k == bi {
				continue
			}
			e[bi][k] += w
			e[k][bi] += w
		}
		delete(e[bi], bj)
		e[bj] = nil
		alive[bj] = false
	}

	var groups [][]int
	for i := range n {
		if alive[i] {
			group := slices.Clone(members[i])
			slices.Sort(group)
			groups = append(groups, group)
		}
	}
	slices.SortStableFunc(groups, func(x, y []int) int {
		if len(x) != len(y) {
			return len(y) - len(x)
		}
		return x[0] - y[0]
	})

	out := make([][]string, len(groups))
	for i, group := range groups {
		out[i] = make([]string, len(group))
		for k, idx := range group {
			out[i][k] = g.nodes[idx]
		}
	}
	return out
}

// Modularity returns the modularity of a partition of the graph's nodes.
// Unknown identities are ignored.
func (g *Graph) Modularity(communities [][]string) float64 {
	if g.EdgeCount() == 0 {
		return 0
	}
	parts := make([][]graph.Node, 0, len(communities))
	for _, members := range communities {
		var part []graph.Node
		for _, id := range members {
			if i, ok := g.index[id]; ok {
				part = append(part, simple.Node(i))
			}
		}
		parts = append(parts, part)
	}
	return community.Q(g.g, parts, 1)
}
