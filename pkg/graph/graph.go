package graph

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/leafspan/pkg/errors"
)

// Edge is an undirected edge stored in normalized form (U < V).
// Use [NewEdge] to build one from an unordered pair.
type Edge struct {
	U int `json:"u"`
	V int `json:"v"`
}

// NewEdge returns the normalized edge for the unordered pair {u, v}.
func NewEdge(u, v int) Edge {
	if u > v {
		u, v = v, u
	}
	return Edge{U: u, V: v}
}

// String formats the edge as "u-v".
func (e Edge) String() string { return fmt.Sprintf("%d-%d", e.U, e.V) }

// Touches reports whether v is an endpoint of the edge.
func (e Edge) Touches(v int) bool { return e.U == v || e.V == v }

func compareEdges(a, b Edge) int {
	if c := cmp.Compare(a.U, b.U); c != 0 {
		return c
	}
	return cmp.Compare(a.V, b.V)
}

// Mirror receives structural changes after they are applied to the edge set.
// Returning an error from any method causes the graph to roll the change back.
type Mirror interface {
	EdgeAdded(e Edge) error
	EdgeRemoved(e Edge) error
	// Rebuilt is called after vertex insertion or removal with the complete
	// new structure, since renumbering can touch every edge.
	Rebuilt(vertexCount int, edges []Edge) error
}

// Option configures a Graph at construction time.
type Option func(*Graph)

// WithMirror attaches a mirror that shadows every structural change.
func WithMirror(m Mirror) Option {
	return func(g *Graph) { g.mirror = m }
}

// Graph is an undirected simple graph over vertices 0..VertexCount()-1.
//
// The zero value is an empty graph with no vertices and is ready to use.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	n      int
	edges  map[Edge]struct{}
	mirror Mirror
}

// New creates a graph with n isolated vertices.
// Returns INVALID_ARGUMENT if n is negative.
func New(n int, opts ...Option) (*Graph, error) {
	if err := errors.ValidateVertexCount(n); err != nil {
		return nil, err
	}
	g := &Graph{n: n, edges: make(map[Edge]struct{})}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// FromEdges creates a graph with n vertices and the given edges.
// Duplicate pairs are collapsed; any invalid edge fails the whole construction.
func FromEdges(n int, edges []Edge, opts ...Option) (*Graph, error) {
	g, err := New(n, opts...)
	if err != nil {
		return nil, err
	}
	mirror := g.mirror
	g.mirror = nil
	for _, e := range edges {
		if err := g.AddEdge(e.U, e.V); err != nil {
			return nil, err
		}
	}
	g.mirror = mirror
	if mirror != nil {
		if err := mirror.Rebuilt(g.n, g.Edges()); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "mirror rebuild")
		}
	}
	return g, nil
}

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int { return g.n }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// HasEdge reports whether the undirected edge {u, v} is present.
func (g *Graph) HasEdge(u, v int) bool {
	_, ok := g.edges[NewEdge(u, v)]
	return ok
}

// Edges returns all edges sorted by (U, V).
// The returned slice is a copy and may be modified freely.
func (g *Graph) Edges() []Edge {
	edges := slices.Collect(maps.Keys(g.edges))
	slices.SortFunc(edges, compareEdges)
	return edges
}

// Degree returns the number of edges incident to v, or 0 if v is out of range.
func (g *Graph) Degree(v int) int {
	d := 0
	for e := range g.edges {
		if e.Touches(v) {
			d++
		}
	}
	return d
}

// Clone returns a deep copy of the graph without its mirror.
func (g *Graph) Clone() *Graph {
	return &Graph{n: g.n, edges: maps.Clone(g.ensureEdges())}
}

// AddEdge inserts the undirected edge {u, v}.
//
// Returns INVALID_ARGUMENT for a self-loop and OUT_OF_RANGE when either
// endpoint is outside [0, VertexCount()). Adding an edge that is already
// present is a no-op. If the attached mirror rejects the insert, the edge is
// removed again and an INTERNAL error wrapping the mirror's error is returned.
func (g *Graph) AddEdge(u, v int) error {
	if u == v {
		return errors.New(errors.ErrCodeInvalidArgument, "self-loop on vertex %d", u)
	}
	if err := errors.ValidateVertex(u, g.n); err != nil {
		return err
	}
	if err := errors.ValidateVertex(v, g.n); err != nil {
		return err
	}

	e := NewEdge(u, v)
	edges := g.ensureEdges()
	if _, ok := edges[e]; ok {
		return nil
	}
	edges[e] = struct{}{}

	if g.mirror != nil {
		if err := g.mirror.EdgeAdded(e); err != nil {
			delete(edges, e)
			return errors.Wrap(errors.ErrCodeInternal, err, "mirror add edge %s", e)
		}
	}
	return nil
}

// RemoveEdge deletes the undirected edge {u, v} if present.
// Removing an absent edge, including one with out-of-range endpoints, is a
// no-op. A mirror failure re-inserts the edge and returns an INTERNAL error.
func (g *Graph) RemoveEdge(u, v int) error {
	e := NewEdge(u, v)
	if _, ok := g.edges[e]; !ok {
		return nil
	}
	delete(g.edges, e)

	if g.mirror != nil {
		if err := g.mirror.EdgeRemoved(e); err != nil {
			g.edges[e] = struct{}{}
			return errors.Wrap(errors.ErrCodeInternal, err, "mirror remove edge %s", e)
		}
	}
	return nil
}

// AddVertex appends an isolated vertex and returns its index, which equals
// the previous vertex count. Existing indices and edges are unaffected.
func (g *Graph) AddVertex() (int, error) {
	v := g.n
	g.n++
	if err := g.rebuildMirror(); err != nil {
		g.n--
		return 0, err
	}
	return v, nil
}

// RemoveVertex deletes vertex v and every edge incident to it, then shifts
// every index greater than v down by one.
//
// Returns OUT_OF_RANGE if v is not a current vertex. Removing the only vertex
// of a one-vertex graph leaves an empty graph.
func (g *Graph) RemoveVertex(v int) error {
	if err := errors.ValidateVertex(v, g.n); err != nil {
		return err
	}

	shift := func(x int) int {
		if x > v {
			return x - 1
		}
		return x
	}

	next := make(map[Edge]struct{}, len(g.edges))
	for e := range g.edges {
		if e.Touches(v) {
			continue
		}
		next[NewEdge(shift(e.U), shift(e.V))] = struct{}{}
	}

	prevN, prevEdges := g.n, g.edges
	g.n, g.edges = g.n-1, next
	if err := g.rebuildMirror(); err != nil {
		g.n, g.edges = prevN, prevEdges
		return err
	}
	return nil
}

func (g *Graph) rebuildMirror() error {
	if g.mirror == nil {
		return nil
	}
	if err := g.mirror.Rebuilt(g.n, g.Edges()); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "mirror rebuild")
	}
	return nil
}

func (g *Graph) ensureEdges() map[Edge]struct{} {
	if g.edges == nil {
		g.edges = make(map[Edge]struct{})
	}
	return g.edges
}
