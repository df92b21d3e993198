package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/leafspan/pkg/graph"
	"github.com/matzehuels/leafspan/pkg/solver"
)

func newTestEditModel(t *testing.T, n int, path string) editModel {
	t.Helper()
	j := &journal{}
	g, err := graph.New(n, graph.WithMirror(j))
	if err != nil {
		t.Fatal(err)
	}
	solve := func(ctx context.Context, g *graph.Graph) (*solver.Result, error) {
		return solver.FindMaxLeafSpanningTree(g)
	}
	return newEditModel(context.Background(), g, j, path, solve)
}

// typeLine feeds a command line to the model followed by enter.
func typeLine(t *testing.T, m editModel, line string) (editModel, tea.Cmd) {
	t.Helper()
	var model tea.Model = m
	for _, r := range line {
		msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
		if r == ' ' {
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		}
		model, _ = model.Update(msg)
	}
	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return model.(editModel), cmd
}

func TestEditAddRemove(t *testing.T) {
	m := newTestEditModel(t, 3, "")

	m, _ = typeLine(t, m, "add 0 1")
	m, _ = typeLine(t, m, "add 1 2")
	if m.graph.EdgeCount() != 2 || !m.dirty {
		t.Fatalf("edges=%d dirty=%v", m.graph.EdgeCount(), m.dirty)
	}
	if m.input.Value() != "" {
		t.Errorf("input should be cleared after enter, got %q", m.input.Value())
	}

	m, _ = typeLine(t, m, "rm 0 1")
	if m.graph.HasEdge(0, 1) {
		t.Error("edge 0-1 should be removed")
	}
	if got := len(m.journal.entries); got != 3 {
		t.Errorf("journal has %d entries, want 3", got)
	}
}

func TestEditNoOpKeepsSolve(t *testing.T) {
	m := newTestEditModel(t, 3, "")
	m, _ = typeLine(t, m, "add 0 1")
	m, _ = typeLine(t, m, "add 1 2")
	m, cmd := typeLine(t, m, "solve")
	model, _ := m.Update(cmd())
	m = model.(editModel)
	m.dirty = false
	version := m.version

	for _, line := range []string{"add 1 0", "rm 0 2"} {
		m, _ = typeLine(t, m, line)
		if m.failed || m.status != "no change" {
			t.Errorf("%q: status = %q, want no change", line, m.status)
		}
	}
	if m.dirty || m.version != version || m.result == nil {
		t.Errorf("no-op edits should keep state: dirty=%v version=%d result=%v", m.dirty, m.version, m.result)
	}
}

func TestEditVertices(t *testing.T) {
	m := newTestEditModel(t, 2, "")

	m, _ = typeLine(t, m, "vertex")
	if m.graph.VertexCount() != 3 || !strings.Contains(m.status, "2") {
		t.Errorf("vertices=%d status=%q", m.graph.VertexCount(), m.status)
	}
	m, _ = typeLine(t, m, "delv 0")
	if m.graph.VertexCount() != 2 {
		t.Errorf("vertices=%d, want 2", m.graph.VertexCount())
	}
}

func TestEditErrors(t *testing.T) {
	m := newTestEditModel(t, 2, "")

	for _, line := range []string{"add 0 0", "add 0 5", "add 0", "add a b", "delv 9", "bogus", "save"} {
		m, _ = typeLine(t, m, line)
		if !m.failed {
			t.Errorf("%q: expected an error status, got %q", line, m.status)
		}
	}
	if m.dirty {
		t.Error("failed commands should not mark the graph dirty")
	}
}

func TestEditSolve(t *testing.T) {
	m := newTestEditModel(t, 4, "")
	for _, line := range []string{"add 0 1", "add 0 2", "add 0 3"} {
		m, _ = typeLine(t, m, line)
	}

	m, cmd := typeLine(t, m, "solve")
	if cmd == nil || !m.solving {
		t.Fatal("solve should return a command")
	}
	model, _ := m.Update(cmd())
	m = model.(editModel)
	if m.result == nil || m.result.Leaves != 3 {
		t.Fatalf("result = %+v", m.result)
	}
	if !strings.Contains(m.View(), "3 leaves") {
		t.Errorf("view should show leaf count:\n%s", m.View())
	}
}

func TestEditSolveStaleDropped(t *testing.T) {
	m := newTestEditModel(t, 2, "")
	m, _ = typeLine(t, m, "add 0 1")
	m, cmd := typeLine(t, m, "solve")
	m, _ = typeLine(t, m, "vertex")

	model, _ := m.Update(cmd())
	if model.(editModel).result != nil {
		t.Error("result for an outdated graph should be dropped")
	}
}

func TestEditSolveDisconnected(t *testing.T) {
	m := newTestEditModel(t, 3, "")
	m, cmd := typeLine(t, m, "solve")
	model, _ := m.Update(cmd())
	if m = model.(editModel); !m.failed {
		t.Errorf("expected an error status, got %q", m.status)
	}
}

func TestEditSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "g.txt")
	m := newTestEditModel(t, 2, path)

	m, _ = typeLine(t, m, "add 0 1")
	m, _ = typeLine(t, m, "save")
	if m.dirty || m.failed {
		t.Fatalf("dirty=%v status=%q", m.dirty, m.status)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "2\n0 1\n" {
		t.Errorf("saved %q", data)
	}

	other := filepath.Join(dir, "other.txt")
	m, _ = typeLine(t, m, "save "+other)
	if m.path != other {
		t.Errorf("path = %q, want %q", m.path, other)
	}
}

func TestEditQuit(t *testing.T) {
	m := newTestEditModel(t, 1, "")
	m, cmd := typeLine(t, m, "quit")
	if !m.quit || cmd == nil {
		t.Fatal("quit should stop the program")
	}
	if m.View() != "" {
		t.Error("view should be empty after quit")
	}

	model, cmd := newTestEditModel(t, 1, "").Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !model.(editModel).quit || cmd == nil {
		t.Error("ctrl+c should quit")
	}
}

func TestLoadOrCreate(t *testing.T) {
	dir := t.TempDir()

	g, err := loadOrCreate(filepath.Join(dir, "new.txt"), 4)
	if err != nil || g.VertexCount() != 4 {
		t.Fatalf("new graph: %v, %v", g, err)
	}

	path := writeFile(t, dir, "g.txt", "3\n0 1\n1 2\n")
	g, err = loadOrCreate(path, 99)
	if err != nil || g.VertexCount() != 3 || g.EdgeCount() != 2 {
		t.Fatalf("existing graph: %v", err)
	}

	if _, err := loadOrCreate("", -1); err == nil {
		t.Error("expected error for negative vertex count")
	}
}
