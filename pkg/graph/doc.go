// Package graph provides the authoritative in-memory store for undirected
// simple graphs whose vertices are identified purely by position.
//
// # Overview
//
// A [Graph] owns a vertex count and a set of normalized edges. Every other
// view of the graph (adjacency lists, connected components, degrees) is
// derived from the edge set on demand, so there is exactly one source of
// truth for the structure.
//
// The store enforces three invariants at all times:
//
//   - No self-loops: AddEdge(v, v) is rejected with INVALID_ARGUMENT
//   - No duplicate edges: a second AddEdge of the same pair is a no-op
//   - Every edge endpoint lies in [0, VertexCount())
//
// # Basic Usage
//
//	g, _ := graph.New(4)
//	g.AddEdge(0, 1)
//	g.AddEdge(1, 2)
//	g.AddEdge(2, 3)
//	adj := g.Adjacency() // [[1] [0 2] [1 3] [2]]
//
// # Vertex Identity
//
// Vertices have no persistent handle. [Graph.RemoveVertex] renumbers every
// vertex above the removed index down by one and re-normalizes the affected
// edges, so callers holding indices across a removal must adjust them.
//
// # Mirrors
//
// A [Mirror] may be attached with [WithMirror] to shadow structural changes
// into a secondary structure (an undo journal, an external engine, a UI
// model). The in-memory edge set stays the authority: when a mirrored call
// fails, the change is rolled back before the error is returned, so a failed
// mutation never leaves the graph modified.
//
// # Random Graphs
//
// [GenerateRandom] samples an Erdős–Rényi graph and then repairs
// connectivity by linking every extra component to the first one. The repair
// adds the minimum number of edges and is biased toward the first component;
// the result is not a sample from G(n, p) conditioned on connectivity.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. Solvers read an
// [Adjacency] snapshot, which can be shared freely between goroutines, but
// callers must not mutate a graph while a solve against it is in flight.
package graph
