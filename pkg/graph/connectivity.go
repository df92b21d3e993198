package graph

import "slices"

// Adjacency is a read-only projection of a graph: Adjacency[v] lists the
// neighbors of v in ascending order.
//
// An Adjacency is a snapshot. It does not observe later mutations of the
// graph it was derived from and is safe to share between goroutines as long
// as nobody writes to it.
type Adjacency [][]int

// Len returns the number of vertices in the snapshot.
func (a Adjacency) Len() int { return len(a) }

// Adjacency derives the neighbor lists from the current edge set.
func (g *Graph) Adjacency() Adjacency {
	adj := make(Adjacency, g.n)
	for e := range g.edges {
		adj[e.U] = append(adj[e.U], e.V)
		adj[e.V] = append(adj[e.V], e.U)
	}
	for _, nbrs := range adj {
		slices.Sort(nbrs)
	}
	return adj
}

// IsConnected reports whether every vertex is reachable from vertex 0.
// Graphs with zero or one vertex are connected.
func (g *Graph) IsConnected() bool {
	return g.Adjacency().IsConnected()
}

// Components returns the connected components of the graph. See
// [Adjacency.Components] for the ordering guarantees.
func (g *Graph) Components() [][]int {
	return g.Adjacency().Components()
}

// IsConnected reports whether a single breadth-first search from vertex 0
// reaches every vertex.
func (a Adjacency) IsConnected() bool {
	if len(a) <= 1 {
		return true
	}
	return len(a.bfs(0, make([]bool, len(a)))) == len(a)
}

// Components returns the connected components in discovery order.
//
// Components are seeded from the lowest unvisited vertex, so the first
// component always contains vertex 0. Each component lists its vertices in
// breadth-first order, which puts its lowest index first.
func (a Adjacency) Components() [][]int {
	visited := make([]bool, len(a))
	var comps [][]int
	for v := range a {
		if visited[v] {
			continue
		}
		comps = append(comps, a.bfs(v, visited))
	}
	return comps
}

// bfs marks and returns every vertex reachable from start that was not
// already visited, in visit order.
func (a Adjacency) bfs(start int, visited []bool) []int {
	visited[start] = true
	order := []int{start}
	for head := 0; head < len(order); head++ {
		for _, n := range a[order[head]] {
			if !visited[n] {
				visited[n] = true
				order = append(order, n)
			}
		}
	}
	return order
}
