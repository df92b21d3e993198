// Package pipeline provides the load → solve → render pipeline for leafspan.
//
// This package implements the complete pipeline that is shared by the CLI and
// the HTTP server. By centralizing this logic, both entry points cache, log
// and report results the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a graph in canonical text form from a file or request body
//  2. Solve: Find a spanning tree with many leaves (cached by graph content)
//  3. Render: Draw the graph and tree as DOT, SVG or PNG
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	g, err := runner.Load(ctx, "graph.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := runner.Execute(ctx, g, pipeline.Options{Formats: []string{"svg"}})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"time"

	"github.com/matzehuels/leafspan/pkg/cache"
	"github.com/matzehuels/leafspan/pkg/graph"
	"github.com/matzehuels/leafspan/pkg/render"
	"github.com/matzehuels/leafspan/pkg/solver"
)

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = render.FormatSVG

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Solve options
	Strategy   string `json:"strategy,omitempty"`
	Iterations int    `json:"iterations,omitempty"`
	FixedSeed  bool   `json:"fixed_seed,omitempty"`
	Seed       uint64 `json:"seed,omitempty"`
	Parallel   bool   `json:"parallel,omitempty"`
	Workers    int    `json:"workers,omitempty"`
	Refresh    bool   `json:"refresh,omitempty"` // Ignore cached results

	// Render options
	Formats     []string `json:"formats,omitempty"`
	HideNonTree bool     `json:"hide_non_tree,omitempty"`
	Title       string   `json:"title,omitempty"`
}

// DefaultOptions returns options seeded from the solver's process-wide
// defaults.
func DefaultOptions() Options {
	d := solver.DefaultOptions()
	return Options{
		Strategy:   string(d.Strategy),
		Iterations: d.Iterations,
		FixedSeed:  d.FixedSeed,
		Seed:       d.Seed,
		Parallel:   d.Parallel,
	}
}

// SolverOptions converts o to solver options.
func (o Options) SolverOptions() solver.Options {
	return solver.Options{
		Strategy:   solver.Strategy(o.Strategy),
		Iterations: o.Iterations,
		FixedSeed:  o.FixedSeed,
		Seed:       o.Seed,
		Parallel:   o.Parallel,
		Workers:    o.Workers,
	}
}

// Cacheable reports whether a solve with these options is deterministic and
// may be served from the cache. Unseeded randomized searches are not.
func (o Options) Cacheable() bool {
	strategy, err := solver.ParseStrategy(o.Strategy)
	if err != nil {
		return false
	}
	return strategy == solver.StrategyExhaustive || o.FixedSeed
}

// TreeKeyOpts returns cache key options for the solve stage.
func (o Options) TreeKeyOpts() cache.TreeKeyOpts {
	strategy, _ := solver.ParseStrategy(o.Strategy)
	iterations := o.Iterations
	if iterations == 0 {
		iterations = solver.DefaultIterations
	}
	return cache.TreeKeyOpts{
		Strategy:   string(strategy),
		Iterations: iterations,
		Seed:       o.Seed,
	}
}

// RenderFormats parses the requested formats, defaulting to [DefaultFormat].
func (o Options) RenderFormats() ([]render.Format, error) {
	if len(o.Formats) == 0 {
		return []render.Format{DefaultFormat}, nil
	}
	out := make([]render.Format, 0, len(o.Formats))
	for _, s := range o.Formats {
		f, err := render.ParseFormat(s)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Validate checks options before any work is done.
func (o Options) Validate() error {
	if _, err := solver.New(o.SolverOptions()); err != nil {
		return err
	}
	if _, err := o.RenderFormats(); err != nil {
		return err
	}
	return nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the solved graph.
	Graph *graph.Graph

	// GraphHash is the content hash of the canonical graph text.
	GraphHash string

	// Solve is the spanning tree found.
	Solve *solver.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	VertexCount int
	EdgeCount   int
	SolveTime   time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SolveHit bool // Whether the tree came from cache
}
