package solver

import "github.com/matzehuels/leafspan/pkg/graph"

// OptimizeLeaves improves t in place by local re-parenting and returns it.
//
// Each pass visits the non-root vertices in index order. For vertex i it tries
// every neighbor n (in adjacency order) that is neither the current parent nor
// a descendant of i, and keeps the first move parent[i] = n that strictly
// increases the leaf count. Passes repeat until one accepts no move.
//
// Moving i from parent p to n changes the count only through p and n: p gains
// a leaf when i was its last child, and n stops being one when it had no
// children. The gain is therefore positive exactly when p becomes a leaf while
// n was not a leaf, which is what the loop checks instead of recounting the
// whole tree. Every accepted move raises the count by one, so the search ends
// after at most len(t) accepted moves.
func OptimizeLeaves(adj graph.Adjacency, t Tree) Tree {
	n := len(t)
	if n <= 2 {
		return t
	}

	children := make([]int, n)
	for _, p := range t {
		if p != Sentinel {
			children[p]++
		}
	}

	for {
		improved := false
		for i := range n {
			p := t[i]
			if p == Sentinel {
				continue
			}
			// A non-root parent whose only child is i would become a leaf.
			if children[p] != 1 || t[p] == Sentinel {
				continue
			}
			for _, nb := range adj[i] {
				if nb == p || isLeaf(t, children, nb) || isDescendant(t, i, nb) {
					continue
				}
				t[i] = nb
				children[p]--
				children[nb]++
				improved = true
				break
			}
		}
		if !improved {
			return t
		}
	}
}

func isLeaf(t Tree, children []int, v int) bool {
	return children[v] == 0 && t[v] != Sentinel
}

// isDescendant reports whether v lies in the subtree of anc, by walking
// parent pointers from v. The walk is bounded by len(t) steps.
func isDescendant(t Tree, anc, v int) bool {
	for range len(t) {
		if v == anc {
			return true
		}
		if v == Sentinel {
			return false
		}
		v = t[v]
	}
	return false
}
