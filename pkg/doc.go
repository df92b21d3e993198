// Package pkg provides the core libraries for leafspan, a solver for spanning
// trees with as many leaves as possible.
//
// # Overview
//
// leafspan keeps an undirected graph, finds a spanning tree that maximizes
// the number of leaves and draws the result. The pkg directory is organized
// into these areas:
//
//  1. [graph] - The mutable graph store with optional change mirroring
//  2. [solver] - Greedy construction, leaf optimization and the search strategies
//  3. [io] - Canonical text and JSON formats for graphs and trees
//  4. [render] - Graphviz DOT output and SVG/PNG rasterization
//  5. [pipeline] - Orchestration (load → solve → render) with caching
//  6. [cache], [config], [server] - Infrastructure for the CLI and HTTP API
//
// # Architecture
//
// The typical data flow through leafspan:
//
//	graph file / generator
//	         ↓
//	    [graph] package (vertex and edge store)
//	         ↓
//	    [solver] package (exhaustive or randomized search)
//	         ↓
//	    [render] package (DOT + Graphviz)
//	         ↓
//	    tree text / JSON / DOT / SVG / PNG
//
// # Quick Start
//
// Solve a random graph and render it:
//
//	import (
//	    "github.com/matzehuels/leafspan/pkg/graph"
//	    "github.com/matzehuels/leafspan/pkg/render"
//	    "github.com/matzehuels/leafspan/pkg/render/nodelink"
//	    "github.com/matzehuels/leafspan/pkg/solver"
//	)
//
//	// 1. Build a graph
//	g, _ := graph.GenerateRandom(20, 0.2, graph.WithSeed(7))
//
//	// 2. Find a spanning tree
//	res, _ := solver.FindMaxLeafSpanningTree(g)
//
//	// 3. Render to SVG
//	dot := nodelink.ToDOT(g, res.Tree, nodelink.Options{})
//	svg, _ := render.Render(ctx, dot, render.FormatSVG)
//
// # Errors
//
// Every package reports failures through [errors], which attaches a
// machine-readable code (INVALID_ARGUMENT, OUT_OF_RANGE, PRECONDITION_VIOLATION
// and so on) to each error.
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/leafspan/pkg/graph
// [solver]: https://pkg.go.dev/github.com/matzehuels/leafspan/pkg/solver
// [io]: https://pkg.go.dev/github.com/matzehuels/leafspan/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/leafspan/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/leafspan/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/leafspan/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/leafspan/pkg/config
// [server]: https://pkg.go.dev/github.com/matzehuels/leafspan/pkg/server
// [errors]: https://pkg.go.dev/github.com/matzehuels/leafspan/pkg/errors
package pkg
