package io

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/leafspan/pkg/graph"
	"github.com/matzehuels/leafspan/pkg/solver"
)

type treeJSON struct {
	Parent   []int  `json:"parent"`
	Root     int    `json:"root"`
	Leaves   int    `json:"leaves"`
	Strategy string `json:"strategy,omitempty"`
}

// WriteGraph encodes g in canonical text form: the vertex count, then one
// normalized edge per line in ascending order. The output can be re-imported
// with [ReadGraph].
func WriteGraph(g *graph.Graph, w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", g.VertexCount())
	for _, e := range g.Edges() {
		fmt.Fprintf(bw, "%d %d\n", e.U, e.V)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ExportGraph writes g to a file at path, replacing any existing file.
func ExportGraph(g *graph.Graph, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteGraph(g, w) })
}

// WriteTree encodes t as one "i: parent" line per vertex.
func WriteTree(t solver.Tree, w io.Writer) error {
	bw := bufio.NewWriter(w)
	for v, p := range t {
		fmt.Fprintf(bw, "%d: %d\n", v, p)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ExportTree writes t to a file at path in "i: parent" form.
func ExportTree(t solver.Tree, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteTree(t, w) })
}

// WriteTreeJSON encodes a solve result as indented JSON.
func WriteTreeJSON(res *solver.Result, w io.Writer) error {
	out := treeJSON{
		Parent:   res.Tree,
		Root:     res.Root,
		Leaves:   res.Leaves,
		Strategy: string(res.Strategy),
	}
	if out.Parent == nil {
		out.Parent = []int{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportTreeJSON writes res to a file at path as JSON.
func ExportTreeJSON(res *solver.Result, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteTreeJSON(res, w) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
