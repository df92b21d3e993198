// Package solver computes spanning trees with as many leaves as it can find.
//
// # Overview
//
// The maximum-leaf spanning tree problem is NP-hard, so this package is a
// heuristic: results are good local optima, not guaranteed optima. Trees are
// returned in parent-array form ([Tree]), with [Sentinel] marking the root.
//
// # Strategies
//
// [StrategyExhaustive] (the default) tries every vertex as root. For each root
// it builds a degree-greedy BFS tree with [BuildGreedyTree] and then applies
// [OptimizeLeaves], a re-parenting local search that runs until a full pass
// makes no improvement.
//
// [StrategyRandomized] samples random BFS trees instead ([BuildRandomTree]).
// Iteration i uses the seed base+i, so any single iteration can be replayed.
// It scales to graphs where trying every root is impractical.
//
// # Determinism
//
// Candidates are scored independently into their own slots, then reduced in
// one sequential pass in candidate order: the first candidate reaching the
// maximum wins. Parallel and sequential runs therefore return the same tree.
// With the fixed-seed toggle on (the default, seed 42) randomized runs are
// reproducible across processes.
//
// Only scores are kept during the search; the winning tree is rebuilt from
// its root or seed afterwards.
//
// # Configuration
//
// The package-level functions [FindMaxLeafSpanningTree] and
// [FindMaxLeafSpanningTreeRandomized] read process-wide toggles set with
// [SetUseFixedSeed] and [SetUseParallel]. A [Solver] built with [New] carries
// its own [Options] and ignores the toggles.
//
// # Preconditions
//
// Solving a disconnected graph returns a PRECONDITION_VIOLATION error.
// [BuildGreedyTree] still patches unreachable vertices when called directly,
// but such output is not a spanning tree; use [Validate] to check results.
package solver
