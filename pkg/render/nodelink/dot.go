package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/leafspan/pkg/graph"
	"github.com/matzehuels/leafspan/pkg/render"
	"github.com/matzehuels/leafspan/pkg/solver"
)

// Options configures node-link diagram rendering.
type Options struct {
	// HideNonTree omits graph edges that are not part of the tree.
	HideNonTree bool

	// Title is drawn above the diagram when non-empty.
	Title string
}

const leafColor = "#9be7a8"

// ToDOT converts g and a spanning tree of it to Graphviz DOT.
//
// t may be nil to draw the bare graph. Tree entries that point outside the
// graph are ignored, so a stale tree never produces invalid DOT.
func ToDOT(g *graph.Graph, t solver.Tree, opts Options) string {
	n := g.VertexCount()
	if len(t) != n {
		t = nil
	}

	var buf bytes.Buffer
	buf.WriteString("graph T {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=14];\n")
	buf.WriteString("  edge [penwidth=1.2];\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}
	buf.WriteString("\n")

	var leaf []bool
	if t != nil {
		leaf = t.LeafSet()
	}
	for v := range n {
		attrs := fmtAttrs(v, t, leaf)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %d;\n", v)
			continue
		}
		fmt.Fprintf(&buf, "  %d [%s];\n", v, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	inTree := treeEdges(t, n)
	for _, e := range g.Edges() {
		switch {
		case inTree[e]:
			fmt.Fprintf(&buf, "  %d -- %d [penwidth=2.5];\n", e.U, e.V)
		case t == nil:
			fmt.Fprintf(&buf, "  %d -- %d;\n", e.U, e.V)
		case !opts.HideNonTree:
			fmt.Fprintf(&buf, "  %d -- %d [style=dashed, color=grey, constraint=false];\n", e.U, e.V)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(v int, t solver.Tree, leaf []bool) []string {
	if t == nil {
		return nil
	}
	var attrs []string
	if t[v] == solver.Sentinel {
		attrs = append(attrs, "shape=doublecircle")
	}
	if leaf[v] {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", leafColor))
	}
	return attrs
}

func treeEdges(t solver.Tree, n int) map[graph.Edge]bool {
	in := make(map[graph.Edge]bool, len(t))
	for v, p := range t {
		if p >= 0 && p < n && p != v {
			in[graph.NewEdge(v, p)] = true
		}
	}
	return in
}

// RenderSVG renders DOT source to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return render.Render(ctx, dot, render.FormatSVG)
}

// RenderPNG renders DOT source to PNG.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render.Render(ctx, dot, render.FormatPNG)
}
