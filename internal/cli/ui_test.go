package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/leafspan/pkg/graph"
	"github.com/matzehuels/leafspan/pkg/solver"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

func TestPrintSummary(t *testing.T) {
	star, err := graph.New(4)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []int{1, 2, 3} {
		if err := star.AddEdge(0, v); err != nil {
			t.Fatal(err)
		}
	}
	split, err := graph.New(3)
	if err != nil {
		t.Fatal(err)
	}
	if err := split.AddEdge(0, 1); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		g       *graph.Graph
		tree    solver.Tree
		cached  bool
		want    []string
		notWant []string
	}{
		{"graph only", star, nil, false, []string{"4 vertices", "3 edges"}, []string{"leaves", "cached", "fresh", "components"}},
		{"fresh tree", star, solver.Tree{-1, 0, 0, 0}, false, []string{"3 leaves", "fresh"}, []string{"cached"}},
		{"cached tree", star, solver.Tree{-1, 0, 0, 0}, true, []string{"3 leaves", "cached"}, []string{"fresh"}},
		{"disconnected", split, nil, false, []string{"3 vertices", "1 edges", "2 components"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureStdout(t)
			printSummary(tt.g, tt.tree, tt.cached)
			out := buf.String()
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("summary %q missing %q", out, s)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(out, s) {
					t.Errorf("summary %q should not contain %q", out, s)
				}
			}
		})
	}
}

func TestPrintStatusLines(t *testing.T) {
	buf := captureStdout(t)
	printSuccess("wrote %d files", 2)
	printFile("out.svg")
	printKeyValue("Vertices", "5")
	printNextStep("Render", "leafspan render g.txt")

	out := buf.String()
	for _, s := range []string{"✓ wrote 2 files", "→ out.svg", "Vertices", "5", "Render: leafspan render g.txt"} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
	if !strings.Contains(out, "\n\nRender:") {
		t.Errorf("next step should follow a blank line:\n%s", out)
	}
}
