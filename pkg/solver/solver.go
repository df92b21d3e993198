package solver

import (
	"context"
	"math/rand/v2"
	"runtime"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/leafspan/pkg/errors"
	"github.com/matzehuels/leafspan/pkg/graph"
	"github.com/matzehuels/leafspan/pkg/observability"
)

// Strategy selects how candidate trees are produced.
type Strategy string

const (
	// StrategyExhaustive tries every vertex as a root with greedy construction
	// and local optimization.
	StrategyExhaustive Strategy = "exhaustive"

	// StrategyRandomized samples seeded random BFS trees. It is meant for
	// graphs where trying every root is too slow.
	StrategyRandomized Strategy = "randomized"
)

// ParseStrategy parses a strategy name, case-insensitively.
// The empty string selects [StrategyExhaustive].
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyExhaustive:
		return StrategyExhaustive, nil
	case StrategyRandomized:
		return StrategyRandomized, nil
	}
	return "", errors.New(errors.ErrCodeInvalidArgument, "unknown strategy %q (want exhaustive or randomized)", s)
}

// minParallelVertices is the graph size below which candidates are always
// evaluated on the calling goroutine.
const minParallelVertices = 10

// Options configures a [Solver].
type Options struct {
	Strategy Strategy

	// Iterations is the number of random trees sampled by the randomized
	// strategy. Zero means [DefaultIterations].
	Iterations int

	// FixedSeed starts randomized searches from Seed. Otherwise a fresh base
	// seed is drawn per solve and reported in the result.
	FixedSeed bool
	Seed      uint64

	// Parallel evaluates candidates concurrently on up to Workers goroutines
	// (zero means GOMAXPROCS).
	Parallel bool
	Workers  int
}

// DefaultOptions returns exhaustive-search options seeded from the
// process-wide toggles (see [Defaults]).
func DefaultOptions() Options {
	d := Defaults()
	return Options{
		Strategy:   StrategyExhaustive,
		Iterations: DefaultIterations,
		FixedSeed:  d.UseFixedSeed,
		Seed:       d.Seed,
		Parallel:   d.UseParallel,
	}
}

// Result is the outcome of a solve.
type Result struct {
	Tree     Tree     `json:"parent"`
	Root     int      `json:"root"`
	Leaves   int      `json:"leaves"`
	Strategy Strategy `json:"strategy"`

	// Candidates is the number of roots tried or iterations run.
	Candidates int `json:"candidates"`

	// Seed is the base seed of a randomized search.
	Seed uint64 `json:"seed,omitempty"`
}

// Solver finds spanning trees with many leaves. A Solver holds only its
// options and may be used from multiple goroutines.
type Solver struct {
	opts Options
}

// New validates opts and returns a Solver.
func New(opts Options) (*Solver, error) {
	strategy, err := ParseStrategy(string(opts.Strategy))
	if err != nil {
		return nil, err
	}
	opts.Strategy = strategy
	if opts.Iterations == 0 {
		opts.Iterations = DefaultIterations
	}
	if err := errors.ValidateIterations(opts.Iterations); err != nil {
		return nil, err
	}
	if opts.Workers < 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "workers must be non-negative, got %d", opts.Workers)
	}
	return &Solver{opts: opts}, nil
}

// Options returns the normalized options of s.
func (s *Solver) Options() Options { return s.opts }

// Solve runs the configured strategy against a snapshot of g.
//
// Returns PRECONDITION_VIOLATION if g is disconnected. Cancelling ctx stops
// evaluating further candidates and returns the context's error.
func (s *Solver) Solve(ctx context.Context, g *graph.Graph) (*Result, error) {
	return s.SolveAdjacency(ctx, g.Adjacency())
}

// SolveAdjacency is like Solve but takes an existing adjacency snapshot.
func (s *Solver) SolveAdjacency(ctx context.Context, adj graph.Adjacency) (*Result, error) {
	if s.opts.Strategy == StrategyRandomized {
		return s.randomized(ctx, adj, s.opts.Iterations)
	}
	return s.exhaustive(ctx, adj)
}

// FindMaxLeafSpanningTree runs the exhaustive search on g using the
// process-wide toggles.
func FindMaxLeafSpanningTree(g *graph.Graph) (*Result, error) {
	s := &Solver{opts: DefaultOptions()}
	return s.exhaustive(context.Background(), g.Adjacency())
}

// FindMaxLeafSpanningTreeRandomized runs the randomized search on g for the
// given number of iterations using the process-wide toggles.
// Returns INVALID_ARGUMENT if iterations is not positive.
func FindMaxLeafSpanningTreeRandomized(g *graph.Graph, iterations int) (*Result, error) {
	if err := errors.ValidateIterations(iterations); err != nil {
		return nil, err
	}
	opts := DefaultOptions()
	opts.Strategy = StrategyRandomized
	opts.Iterations = iterations
	s := &Solver{opts: opts}
	return s.randomized(context.Background(), g.Adjacency(), iterations)
}

func (s *Solver) exhaustive(ctx context.Context, adj graph.Adjacency) (*Result, error) {
	if res, ok := trivial(adj, StrategyExhaustive); ok {
		return res, nil
	}
	if !adj.IsConnected() {
		return nil, errDisconnected(adj)
	}

	n := adj.Len()
	build := func(root int) Tree {
		return OptimizeLeaves(adj, BuildGreedyTree(adj, root))
	}
	scores, err := s.evaluate(ctx, StrategyExhaustive, n, adj.Len(), func(root int) int {
		return CountLeaves(build(root))
	})
	if err != nil {
		return nil, err
	}

	best := bestCandidate(scores)
	tree := build(best)
	return &Result{
		Tree:       tree,
		Root:       best,
		Leaves:     scores[best],
		Strategy:   StrategyExhaustive,
		Candidates: n,
	}, nil
}

func (s *Solver) randomized(ctx context.Context, adj graph.Adjacency, iterations int) (*Result, error) {
	if res, ok := trivial(adj, StrategyRandomized); ok {
		return res, nil
	}
	if !adj.IsConnected() {
		return nil, errDisconnected(adj)
	}

	base := s.opts.Seed
	if !s.opts.FixedSeed {
		base = rand.Uint64()
	}
	scores, err := s.evaluate(ctx, StrategyRandomized, iterations, adj.Len(), func(i int) int {
		return CountLeaves(iterationTree(adj, base, i))
	})
	if err != nil {
		return nil, err
	}

	best := bestCandidate(scores)
	tree := iterationTree(adj, base, best)
	return &Result{
		Tree:       tree,
		Root:       tree.Root(),
		Leaves:     scores[best],
		Strategy:   StrategyRandomized,
		Candidates: iterations,
		Seed:       base,
	}, nil
}

// evaluate scores candidates 0..total-1. Each candidate writes only its own
// slot, so the scores are identical whether or not they run in parallel.
func (s *Solver) evaluate(ctx context.Context, strategy Strategy, total, vertices int, score func(i int) int) ([]int, error) {
	scores := make([]int, total)
	hooks := observability.Solver()

	if !s.opts.Parallel || vertices <= minParallelVertices {
		for i := range total {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			scores[i] = score(i)
			hooks.OnCandidate(ctx, string(strategy), i+1, total)
		}
		return scores, nil
	}

	var done atomic.Int64
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers())
	for i := range total {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			scores[i] = score(i)
			hooks.OnCandidate(egCtx, string(strategy), int(done.Add(1)), total)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

func (s *Solver) workers() int {
	if s.opts.Workers > 0 {
		return s.opts.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// bestCandidate returns the lowest index holding the maximum score.
func bestCandidate(scores []int) int {
	best := 0
	for i, sc := range scores {
		if sc > scores[best] {
			best = i
		}
	}
	return best
}

func trivial(adj graph.Adjacency, strategy Strategy) (*Result, bool) {
	switch adj.Len() {
	case 0:
		return &Result{Tree: Tree{}, Root: -1, Strategy: strategy}, true
	case 1:
		return &Result{Tree: Tree{Sentinel}, Root: 0, Leaves: 1, Strategy: strategy, Candidates: 1}, true
	}
	return nil, false
}

func errDisconnected(adj graph.Adjacency) error {
	return errors.New(errors.ErrCodePrecondition,
		"graph is disconnected (%d components); a spanning tree requires a connected graph",
		len(adj.Components()))
}
