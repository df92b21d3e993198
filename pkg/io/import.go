package io

import (
	"bufio"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/leafspan/pkg/errors"
	"github.com/matzehuels/leafspan/pkg/graph"
	"github.com/matzehuels/leafspan/pkg/solver"
)

// ReadGraph decodes a graph in canonical text form from r.
//
// Errors carry the INVALID_FORMAT code and the 1-based line number. When the
// cause is a rejected edge (self-loop, index out of range) the graph error is
// wrapped, so its own code is still visible to errors.Is.
//
// ReadGraph does not close r.
func ReadGraph(r io.Reader, opts ...graph.Option) (*graph.Graph, error) {
	sc := bufio.NewScanner(r)
	line := 0

	var g *graph.Graph
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		if g == nil {
			n, err := strconv.Atoi(text)
			if err != nil {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: vertex count %q is not an integer", line, text)
			}
			if g, err = graph.New(n, opts...); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d", line)
			}
			continue
		}

		u, v, err := parsePair(text)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d", line)
		}
		if err := g.AddEdge(u, v); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d", line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "missing vertex count")
	}
	return g, nil
}

func parsePair(text string) (int, int, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("want two vertex indices, got %d fields", len(fields))
	}
	u, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("vertex %q is not an integer", fields[0])
	}
	v, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("vertex %q is not an integer", fields[1])
	}
	return u, v, nil
}

// ImportGraph reads a canonical graph file at path.
//
// A missing file is reported as NOT_FOUND; decoding failures are the same as
// for [ReadGraph].
func ImportGraph(path string, opts ...graph.Option) (*graph.Graph, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadGraph(f, opts...)
}

// ReadTree decodes a tree in "i: parent" form from r.
//
// Lines may appear in any order but every index in [0, n) must be present
// exactly once, where n is the number of non-blank lines. Parents must be -1
// or a valid index. ReadTree checks shape only; use [solver.Validate] to check
// the tree against a graph.
func ReadTree(r io.Reader) (solver.Tree, error) {
	sc := bufio.NewScanner(r)
	parents := map[int]int{}
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		idx, parent, ok := strings.Cut(text, ":")
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: want \"index: parent\", got %q", line, text)
		}
		v, err := strconv.Atoi(strings.TrimSpace(idx))
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: index %q is not an integer", line, idx)
		}
		p, err := strconv.Atoi(strings.TrimSpace(parent))
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: parent %q is not an integer", line, parent)
		}
		if _, dup := parents[v]; dup {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: vertex %d listed twice", line, v)
		}
		parents[v] = p
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return treeFromParents(parents)
}

func treeFromParents(parents map[int]int) (solver.Tree, error) {
	n := len(parents)
	t := make(solver.Tree, n)
	for v, p := range parents {
		if v < 0 || v >= n {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "vertex %d not in [0, %d)", v, n)
		}
		if p != solver.Sentinel && (p < 0 || p >= n) {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "vertex %d has parent %d outside [0, %d)", v, p, n)
		}
		t[v] = p
	}
	return t, nil
}

// ReadTreeJSON decodes a tree written by [WriteTreeJSON]. Only the parent
// array is required; the other fields are informational.
func ReadTreeJSON(r io.Reader) (solver.Tree, error) {
	var data treeJSON
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode")
	}
	if data.Parent == nil {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "missing \"parent\" array")
	}
	parents := make(map[int]int, len(data.Parent))
	for v, p := range data.Parent {
		parents[v] = p
	}
	return treeFromParents(parents)
}

// ImportTree reads a tree file at path. Files ending in .json are decoded with
// [ReadTreeJSON], everything else with [ReadTree].
func ImportTree(path string) (solver.Tree, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ReadTreeJSON(f)
	}
	return ReadTree(f)
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
