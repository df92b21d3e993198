// Package render turns solved spanning trees into pictures.
//
// # Overview
//
// Rendering happens in two steps. The [nodelink] subpackage builds Graphviz
// DOT source for a graph with its spanning tree highlighted. This package
// then lays the DOT out and rasterizes it in-process with go-graphviz:
//
//	dot := nodelink.ToDOT(g, res.Tree, nodelink.Options{})
//	svg, err := render.Render(ctx, dot, render.FormatSVG)
//
// [FormatDOT] returns the source unchanged, which is useful for piping into
// external Graphviz tools.
//
// # Dependencies
//
// Layout and rasterization use [github.com/goccy/go-graphviz], which embeds
// Graphviz as WebAssembly. No system Graphviz installation is required.
//
// [nodelink]: github.com/matzehuels/leafspan/pkg/render/nodelink
package render
