package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/leafspan/pkg/cache"
	"github.com/matzehuels/leafspan/pkg/graph"
	graphio "github.com/matzehuels/leafspan/pkg/io"
	"github.com/matzehuels/leafspan/pkg/observability"
	"github.com/matzehuels/leafspan/pkg/render"
	"github.com/matzehuels/leafspan/pkg/render/nodelink"
	"github.com/matzehuels/leafspan/pkg/solver"
)

const keyTypeTree = "tree"

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is how long solve results are cached. Zero means cache.DefaultTTL.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Load reads a graph file in canonical text form.
func (r *Runner) Load(ctx context.Context, path string) (*graph.Graph, error) {
	start := time.Now()
	g, err := graphio.ImportGraph(path)
	r.loaded(ctx, path, g, time.Since(start), err)
	return g, err
}

// LoadReader reads a graph in canonical text form from rd. source names the
// input in logs and hooks.
func (r *Runner) LoadReader(ctx context.Context, source string, rd io.Reader) (*graph.Graph, error) {
	start := time.Now()
	g, err := graphio.ReadGraph(rd)
	r.loaded(ctx, source, g, time.Since(start), err)
	return g, err
}

func (r *Runner) loaded(ctx context.Context, source string, g *graph.Graph, dur time.Duration, err error) {
	if err != nil {
		observability.Pipeline().OnLoadComplete(ctx, source, 0, 0, dur, err)
		return
	}
	observability.Pipeline().OnLoadComplete(ctx, source, g.VertexCount(), g.EdgeCount(), dur, nil)
	r.Logger.Debug("loaded graph", "source", source, "vertices", g.VertexCount(), "edges", g.EdgeCount())
}

// Execute runs the complete solve → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Graph: g,
		Stats: Stats{VertexCount: g.VertexCount(), EdgeCount: g.EdgeCount()},
	}

	solveStart := time.Now()
	res, hit, err := r.SolveWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	result.Solve = res
	result.GraphHash = GraphHash(g)
	result.Stats.SolveTime = time.Since(solveStart)
	result.CacheInfo.SolveHit = hit

	r.Logger.Info("solved",
		"vertices", g.VertexCount(),
		"leaves", res.Leaves,
		"root", res.Root,
		"cached", hit,
		"duration", result.Stats.SolveTime)

	renderStart := time.Now()
	artifacts, err := r.Render(ctx, g, res.Tree, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// GraphHash returns the content hash of g's canonical text form. Graphs with
// the same vertex count and edge set hash the same regardless of how they
// were built.
func GraphHash(g *graph.Graph) string {
	var buf bytes.Buffer
	_ = graphio.WriteGraph(g, &buf)
	return cache.Hash(buf.Bytes())
}

// SolveWithCacheInfo finds a spanning tree with caching and returns cache hit
// info. Cache failures are logged and treated as misses.
func (r *Runner) SolveWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) (*solver.Result, bool, error) {
	s, err := solver.New(opts.SolverOptions())
	if err != nil {
		return nil, false, err
	}
	strategy := string(s.Options().Strategy)

	cacheable := opts.Cacheable()
	var cacheKey string
	if cacheable {
		cacheKey = r.Keyer.TreeKey(GraphHash(g), opts.TreeKeyOpts())
	}

	// Try cache first (unless refresh requested)
	if cacheable && !opts.Refresh {
		if res, ok := r.cachedResult(ctx, cacheKey, g); ok {
			observability.Cache().OnCacheHit(ctx, keyTypeTree)
			return res, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeTree)
	}

	observability.Pipeline().OnSolveStart(ctx, strategy, g.VertexCount())
	start := time.Now()
	res, err := s.Solve(ctx, g)
	if err != nil {
		observability.Pipeline().OnSolveComplete(ctx, strategy, 0, time.Since(start), err)
		return nil, false, err
	}
	observability.Pipeline().OnSolveComplete(ctx, strategy, res.Leaves, time.Since(start), nil)

	if cacheable {
		r.store(ctx, cacheKey, res)
	}
	return res, false, nil
}

// Solve is a convenience wrapper that calls SolveWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Solve(ctx context.Context, g *graph.Graph, opts Options) (*solver.Result, error) {
	res, _, err := r.SolveWithCacheInfo(ctx, g, opts)
	return res, err
}

func (r *Runner) cachedResult(ctx context.Context, key string, g *graph.Graph) (*solver.Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache lookup failed", "key", key, "err", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	var res solver.Result
	if err := json.Unmarshal(data, &res); err != nil {
		r.Logger.Warn("discarding unreadable cache entry", "key", key, "err", err)
		return nil, false
	}
	// If the entry does not fit the graph, fall through to recompute
	if err := solver.Validate(g, res.Tree); err != nil {
		r.Logger.Warn("discarding stale cache entry", "key", key, "err", err)
		return nil, false
	}
	return &res, true
}

func (r *Runner) store(ctx context.Context, key string, res *solver.Result) {
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	ttl := r.TTL
	if ttl == 0 {
		ttl = cache.DefaultTTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache store failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyTypeTree, len(data))
}

// Render draws g with tree t highlighted in every requested format.
// Artifacts are keyed by format name.
func (r *Runner) Render(ctx context.Context, g *graph.Graph, t solver.Tree, opts Options) (map[string][]byte, error) {
	formats, err := opts.RenderFormats()
	if err != nil {
		return nil, err
	}

	dot := nodelink.ToDOT(g, t, nodelink.Options{
		HideNonTree: opts.HideNonTree,
		Title:       opts.Title,
	})

	artifacts := make(map[string][]byte, len(formats))
	for _, f := range formats {
		observability.Pipeline().OnRenderStart(ctx, string(f))
		start := time.Now()
		data, err := render.Render(ctx, dot, f)
		observability.Pipeline().OnRenderComplete(ctx, string(f), time.Since(start), err)
		if err != nil {
			return nil, err
		}
		artifacts[string(f)] = data
	}
	return artifacts, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
