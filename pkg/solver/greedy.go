package solver

import (
	"cmp"
	"slices"

	"github.com/matzehuels/leafspan/pkg/graph"
)

type rankedVertex struct {
	v      int
	degree int
}

// BuildGreedyTree grows a breadth-first tree from root that favours vertices
// with many unvisited neighbors.
//
// When a vertex c is dequeued, its unvisited neighbors are ranked by
// effective degree (how many of their own neighbors are still unvisited),
// highest first, with ties broken by ascending index. They are then marked
// visited, attached to c and enqueued in that order, so hubs are expanded
// early and their neighbors tend to end up as leaves.
//
// If the graph is disconnected, vertices the traversal could not reach are
// attached to the first visited neighbor in their adjacency list, in index
// order. Vertices with no visited neighbor keep the [Sentinel] parent. The
// result is then not a spanning tree; callers must check connectivity first.
func BuildGreedyTree(adj graph.Adjacency, root int) Tree {
	n := adj.Len()
	parent := newTree(n)
	if n == 0 {
		return parent
	}

	visited := make([]bool, n)
	visited[root] = true
	queue := []int{root}
	var ranked []rankedVertex

	for head := 0; head < len(queue); head++ {
		c := queue[head]

		ranked = ranked[:0]
		for _, nb := range adj[c] {
			if visited[nb] {
				continue
			}
			deg := 0
			for _, nn := range adj[nb] {
				if !visited[nn] {
					deg++
				}
			}
			ranked = append(ranked, rankedVertex{v: nb, degree: deg})
		}
		slices.SortStableFunc(ranked, func(a, b rankedVertex) int {
			return cmp.Compare(b.degree, a.degree)
		})

		for _, r := range ranked {
			visited[r.v] = true
			parent[r.v] = c
			queue = append(queue, r.v)
		}
	}

	if len(queue) < n {
		patchUnvisited(adj, parent, visited)
	}
	return parent
}

func patchUnvisited(adj graph.Adjacency, parent Tree, visited []bool) {
	for v := range adj {
		if visited[v] {
			continue
		}
		for _, nb := range adj[v] {
			if visited[nb] {
				parent[v] = nb
				visited[v] = true
				break
			}
		}
	}
}

func newTree(n int) Tree {
	t := make(Tree, n)
	for i := range t {
		t[i] = Sentinel
	}
	return t
}
