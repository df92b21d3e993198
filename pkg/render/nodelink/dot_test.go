package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/leafspan/pkg/graph"
	"github.com/matzehuels/leafspan/pkg/solver"
)

// triangle with a pendant vertex: 0-1, 1-2, 0-2, 2-3
func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.New(4)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range [][2]int{{0, 1}, {1, 2}, {0, 2}, {2, 3}} {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(testGraph(t), solver.Tree{2, 2, -1, 2}, Options{})

	if !strings.Contains(dot, "graph T {") {
		t.Error("ToDOT() output missing graph declaration")
	}
	for _, want := range []string{"0 -- 2 [penwidth=2.5]", "1 -- 2 [penwidth=2.5]", "2 -- 3 [penwidth=2.5]"} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing tree edge %q", want)
		}
	}
	if !strings.Contains(dot, "0 -- 1 [style=dashed, color=grey, constraint=false]") {
		t.Error("ToDOT() output missing dashed non-tree edge")
	}
}

func TestToDOT_RootAndLeaves(t *testing.T) {
	dot := ToDOT(testGraph(t), solver.Tree{2, 2, -1, 2}, Options{})

	if !strings.Contains(dot, "2 [shape=doublecircle]") {
		t.Error("ToDOT() root missing doublecircle")
	}
	for _, v := range []string{"0", "1", "3"} {
		if !strings.Contains(dot, "  "+v+` [fillcolor="`+leafColor+`"]`) {
			t.Errorf("ToDOT() leaf %s not filled", v)
		}
	}
}

func TestToDOT_HideNonTree(t *testing.T) {
	dot := ToDOT(testGraph(t), solver.Tree{2, 2, -1, 2}, Options{HideNonTree: true, Title: "best"})

	if strings.Contains(dot, "dashed") {
		t.Error("ToDOT() HideNonTree still draws non-tree edges")
	}
	if !strings.Contains(dot, `label="best"`) {
		t.Error("ToDOT() missing title")
	}
}

func TestToDOT_NoTree(t *testing.T) {
	dot := ToDOT(testGraph(t), nil, Options{})

	if strings.Contains(dot, "doublecircle") || strings.Contains(dot, "dashed") {
		t.Error("ToDOT() without a tree should draw plain edges")
	}
	if !strings.Contains(dot, "  0 -- 1;\n") {
		t.Error("ToDOT() missing plain edge")
	}
}

func TestToDOT_StaleTreeIgnored(t *testing.T) {
	dot := ToDOT(testGraph(t), solver.Tree{-1, 0}, Options{})
	if strings.Contains(dot, "doublecircle") {
		t.Error("ToDOT() should ignore a tree of the wrong size")
	}
}

func TestRenderSVG(t *testing.T) {
	g := testGraph(t)
	res, err := solver.FindMaxLeafSpanningTree(g)
	if err != nil {
		t.Fatal(err)
	}
	svg, err := RenderSVG(context.Background(), ToDOT(g, res.Tree, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}
