package solver

import (
	"github.com/matzehuels/leafspan/pkg/errors"
	"github.com/matzehuels/leafspan/pkg/graph"
)

// Sentinel is the parent value that marks the root of a [Tree].
const Sentinel = -1

// Tree is a rooted spanning tree in parent-array form: Tree[v] is the parent
// of v, or [Sentinel] for the root.
type Tree []int

// Root returns the first vertex whose parent is [Sentinel], or -1 if there is
// none (only possible for an empty tree).
func (t Tree) Root() int {
	for v, p := range t {
		if p == Sentinel {
			return v
		}
	}
	return -1
}

// Leaves is shorthand for [CountLeaves].
func (t Tree) Leaves() int { return CountLeaves(t) }

// Edges returns the tree edges {v, parent[v]} in vertex order.
func (t Tree) Edges() []graph.Edge {
	edges := make([]graph.Edge, 0, max(len(t)-1, 0))
	for v, p := range t {
		if p != Sentinel {
			edges = append(edges, graph.NewEdge(v, p))
		}
	}
	return edges
}

// LeafSet reports, per vertex, whether it is a leaf under the rules of
// [CountLeaves].
func (t Tree) LeafSet() []bool {
	n := len(t)
	leaf := make([]bool, n)
	if n == 1 {
		leaf[0] = true
		return leaf
	}
	hasChild := childMarks(t)
	for v, p := range t {
		leaf[v] = p != Sentinel && !hasChild[v]
	}
	return leaf
}

// CountLeaves returns the number of leaves in a parent array.
//
// A vertex is a leaf when no other vertex names it as parent and it is not a
// root. A one-vertex tree is the exception: its root counts as one leaf.
// An empty tree has no leaves. Parent indices outside the tree are ignored.
func CountLeaves(t Tree) int {
	switch len(t) {
	case 0:
		return 0
	case 1:
		return 1
	}
	hasChild := childMarks(t)
	leaves := 0
	for v, p := range t {
		if p != Sentinel && !hasChild[v] {
			leaves++
		}
	}
	return leaves
}

func childMarks(t Tree) []bool {
	hasChild := make([]bool, len(t))
	for _, p := range t {
		if p >= 0 && p < len(t) {
			hasChild[p] = true
		}
	}
	return hasChild
}

// Validate checks that t is a spanning tree of g: one entry per vertex,
// exactly one root, every parent link an edge of g, and every vertex
// reaching the root by following parents.
// Violations are reported as INVALID_ARGUMENT.
func Validate(g *graph.Graph, t Tree) error {
	n := g.VertexCount()
	if len(t) != n {
		return errors.New(errors.ErrCodeInvalidArgument, "tree has %d entries, graph has %d vertices", len(t), n)
	}
	if err := ValidateShape(t); err != nil {
		return err
	}
	for v, p := range t {
		if p != Sentinel && !g.HasEdge(v, p) {
			return errors.New(errors.ErrCodeInvalidArgument, "tree edge %d-%d is not in the graph", v, p)
		}
	}
	return nil
}

// ValidateShape checks that t is a rooted tree on its own: exactly one root,
// every parent in range, and every vertex reaching the root by following
// parents. An empty tree is valid. Violations are INVALID_ARGUMENT.
func ValidateShape(t Tree) error {
	n := len(t)
	if n == 0 {
		return nil
	}

	root := -1
	for v, p := range t {
		if p == Sentinel {
			if root != -1 {
				return errors.New(errors.ErrCodeInvalidArgument, "multiple roots: %d and %d", root, v)
			}
			root = v
			continue
		}
		if p < 0 || p >= n {
			return errors.New(errors.ErrCodeInvalidArgument, "vertex %d has parent %d outside [0, %d)", v, p, n)
		}
	}
	if root == -1 {
		return errors.New(errors.ErrCodeInvalidArgument, "tree has no root")
	}

	// 0 unknown, 1 on the current walk, 2 reaches root
	state := make([]uint8, n)
	state[root] = 2
	var path []int
	for v := range t {
		path = path[:0]
		u := v
		for state[u] == 0 {
			state[u] = 1
			path = append(path, u)
			u = t[u]
		}
		if state[u] == 1 {
			return errors.New(errors.ErrCodeInvalidArgument, "cycle through vertex %d", u)
		}
		for _, w := range path {
			state[w] = 2
		}
	}
	return nil
}
