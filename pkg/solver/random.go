package solver

import (
	"math/rand/v2"

	"github.com/matzehuels/leafspan/pkg/graph"
)

// BuildRandomTree grows a breadth-first tree from a root drawn from rng,
// shuffling each dequeued vertex's neighbor list (Fisher–Yates) before its
// unvisited neighbors are attached and enqueued.
//
// The same generator state always yields the same tree, which is what makes
// seeded randomized searches reproducible.
func BuildRandomTree(adj graph.Adjacency, rng *rand.Rand) Tree {
	n := adj.Len()
	parent := newTree(n)
	if n <= 1 {
		return parent
	}

	root := rng.IntN(n)
	visited := make([]bool, n)
	visited[root] = true
	queue := []int{root}
	var nbrs []int

	for head := 0; head < len(queue); head++ {
		c := queue[head]
		nbrs = append(nbrs[:0], adj[c]...)
		rng.Shuffle(len(nbrs), func(i, j int) { nbrs[i], nbrs[j] = nbrs[j], nbrs[i] })
		for _, nb := range nbrs {
			if !visited[nb] {
				visited[nb] = true
				parent[nb] = c
				queue = append(queue, nb)
			}
		}
	}
	return parent
}

// iterationTree builds the tree for iteration i of a randomized search with
// the given base seed.
func iterationTree(adj graph.Adjacency, base uint64, i int) Tree {
	return BuildRandomTree(adj, graph.NewRand(base+uint64(i)))
}
