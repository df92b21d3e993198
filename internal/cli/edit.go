package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/leafspan/pkg/errors"
	"github.com/matzehuels/leafspan/pkg/graph"
	graphio "github.com/matzehuels/leafspan/pkg/io"
	"github.com/matzehuels/leafspan/pkg/solver"
)

// journalSize is the number of recent changes shown in the editor.
const journalSize = 8

var (
	journalAddStyle    = lipgloss.NewStyle().Foreground(colorOK)
	journalRemoveStyle = lipgloss.NewStyle().Foreground(colorFail)
	journalMetaStyle   = lipgloss.NewStyle().Foreground(colorLabel)
	editErrorStyle     = lipgloss.NewStyle().Foreground(colorFail)
	editPanelStyle     = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorMuted).
				Padding(0, 1)
)

// =============================================================================
// Journal - graph.Mirror that records edits
// =============================================================================

// journal records every structural change made to the edited graph.
type journal struct {
	entries []string
}

func (j *journal) EdgeAdded(e graph.Edge) error {
	j.entries = append(j.entries, journalAddStyle.Render("+ "+e.String()))
	return nil
}

func (j *journal) EdgeRemoved(e graph.Edge) error {
	j.entries = append(j.entries, journalRemoveStyle.Render("- "+e.String()))
	return nil
}

func (j *journal) Rebuilt(n int, edges []graph.Edge) error {
	j.entries = append(j.entries, journalMetaStyle.Render(fmt.Sprintf("~ %d vertices, %d edges", n, len(edges))))
	return nil
}

func (j *journal) recent() []string {
	if len(j.entries) <= journalSize {
		return j.entries
	}
	return j.entries[len(j.entries)-journalSize:]
}

// =============================================================================
// editModel - interactive graph editor
// =============================================================================

// solveFunc finds a spanning tree for the editor's solve command.
type solveFunc func(ctx context.Context, g *graph.Graph) (*solver.Result, error)

// solvedMsg carries the outcome of an asynchronous solve.
type solvedMsg struct {
	version int
	res     *solver.Result
	err     error
}

// editModel is the bubbletea model for the graph editor.
type editModel struct {
	ctx     context.Context
	graph   *graph.Graph
	journal *journal
	path    string
	solve   solveFunc

	input   textinput.Model
	status  string
	failed  bool
	dirty   bool
	solving bool
	quit    bool

	// version increments on every edit so stale solves are dropped.
	version int
	result  *solver.Result
}

func newEditModel(ctx context.Context, g *graph.Graph, j *journal, path string, solve solveFunc) editModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "add 0 1"
	ti.Focus()

	return editModel{
		ctx:     ctx,
		graph:   g,
		journal: j,
		path:    path,
		solve:   solve,
		input:   ti,
		status:  "type help for commands",
	}
}

func (m editModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quit = true
			return m, tea.Quit
		case tea.KeyEnter:
			line := m.input.Value()
			m.input.Reset()
			return m.exec(line)
		}
	case solvedMsg:
		if msg.version != m.version {
			return m, nil
		}
		m.solving = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.result = msg.res
		m.setStatus("root %d, %d leaves", msg.res.Root, msg.res.Leaves)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// exec runs one command line.
func (m editModel) exec(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return m, nil
	}
	name, args := fields[0], fields[1:]

	ints := func(want int) ([]int, error) {
		if len(args) != want {
			return nil, errors.New(errors.ErrCodeInvalidArgument, "%s takes %d argument(s)", name, want)
		}
		out := make([]int, want)
		for i, a := range args {
			n, err := strconv.Atoi(a)
			if err != nil {
				return nil, errors.New(errors.ErrCodeInvalidArgument, "invalid vertex %q", a)
			}
			out[i] = n
		}
		return out, nil
	}

	vertices, edges := m.graph.VertexCount(), m.graph.EdgeCount()
	var err error
	switch name {
	case "add":
		var v []int
		if v, err = ints(2); err == nil {
			err = m.graph.AddEdge(v[0], v[1])
		}
	case "rm":
		var v []int
		if v, err = ints(2); err == nil {
			err = m.graph.RemoveEdge(v[0], v[1])
		}
	case "vertex":
		var v int
		if v, err = m.graph.AddVertex(); err == nil {
			m.edited()
			m.setStatus("added vertex %d", v)
			return m, nil
		}
	case "delv":
		var v []int
		if v, err = ints(1); err == nil {
			err = m.graph.RemoveVertex(v[0])
		}
	case "solve":
		m.solving = true
		m.setStatus("solving %d vertices...", m.graph.VertexCount())
		return m, m.solveCmd()
	case "save":
		return m.save(args)
	case "help":
		m.setStatus("add u v · rm u v · vertex · delv v · solve · save [path] · quit")
		return m, nil
	case "quit", "q":
		m.quit = true
		return m, tea.Quit
	default:
		err = errors.New(errors.ErrCodeInvalidArgument, "unknown command %q", name)
	}

	if err != nil {
		m.setError(err)
		return m, nil
	}
	// Adding a present edge or removing an absent one leaves the graph as is.
	if m.graph.VertexCount() == vertices && m.graph.EdgeCount() == edges {
		m.setStatus("no change")
		return m, nil
	}
	m.edited()
	m.setStatus("ok")
	return m, nil
}

func (m *editModel) edited() {
	m.dirty = true
	m.version++
	m.result = nil
	m.solving = false
}

func (m editModel) solveCmd() tea.Cmd {
	g, version, ctx, solve := m.graph.Clone(), m.version, m.ctx, m.solve
	return func() tea.Msg {
		res, err := solve(ctx, g)
		return solvedMsg{version: version, res: res, err: err}
	}
}

func (m editModel) save(args []string) (tea.Model, tea.Cmd) {
	path := m.path
	switch len(args) {
	case 0:
	case 1:
		path = args[0]
	default:
		m.setError(errors.New(errors.ErrCodeInvalidArgument, "save takes at most one path"))
		return m, nil
	}
	if path == "" {
		m.setError(errors.New(errors.ErrCodeInvalidArgument, "no file to save to, use save PATH"))
		return m, nil
	}
	if err := graphio.ExportGraph(m.graph, path); err != nil {
		m.setError(err)
		return m, nil
	}
	m.path, m.dirty = path, false
	m.setStatus("saved %s", path)
	return m, nil
}

func (m *editModel) setStatus(format string, args ...any) {
	m.status, m.failed = fmt.Sprintf(format, args...), false
}

func (m *editModel) setError(err error) {
	m.status, m.failed = errors.UserMessage(err), true
}

func (m editModel) View() string {
	if m.quit {
		return ""
	}

	var b strings.Builder

	name := m.path
	if name == "" {
		name = "untitled"
	}
	if m.dirty {
		name += " *"
	}
	b.WriteString(StyleTitle.Render("leafspan edit") + " " + StyleDim.Render(name))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("%s vertices  %s edges",
		StyleNumber.Render(strconv.Itoa(m.graph.VertexCount())),
		StyleNumber.Render(strconv.Itoa(m.graph.EdgeCount())))
	if m.graph.IsConnected() {
		stats += "  " + StyleSuccess.Render("connected")
	} else {
		stats += "  " + StyleWarning.Render(fmt.Sprintf("%d components", len(m.graph.Components())))
	}
	if m.result != nil {
		stats += "  " + StyleHighlight.Render(fmt.Sprintf("%d leaves", m.result.Leaves))
	}
	b.WriteString(stats)
	b.WriteString("\n\n")

	entries := m.journal.recent()
	if len(entries) == 0 {
		entries = []string{StyleDim.Render("no changes yet")}
	}
	b.WriteString(editPanelStyle.Render(strings.Join(entries, "\n")))
	b.WriteString("\n\n")

	if m.failed {
		b.WriteString(editErrorStyle.Render(glyphFail.mark + " " + m.status))
	} else {
		b.WriteString(StyleDim.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	return b.String()
}

// =============================================================================
// Command
// =============================================================================

// editCommand creates the edit command, an interactive graph editor.
func (c *CLI) editCommand() *cobra.Command {
	var (
		vertices int
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "edit [graph.txt]",
		Short: "Edit a graph interactively",
		Long: `Open an interactive editor for a graph file.

Commands typed at the prompt:
  add u v      add the edge u-v
  rm u v       remove the edge u-v
  vertex       append an isolated vertex
  delv v       remove vertex v (higher indices shift down)
  solve        find a spanning tree of the current graph
  save [path]  write the graph
  quit         leave the editor

If the file does not exist, a graph with --vertices isolated vertices is
created and written on save.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var path string
			if len(args) == 1 {
				path = args[0]
			}

			j := &journal{}
			g, err := loadOrCreate(path, vertices, graph.WithMirror(j))
			if err != nil {
				return err
			}
			j.entries = nil

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()
			opts := c.solveOptions()
			solve := func(ctx context.Context, g *graph.Graph) (*solver.Result, error) {
				return runner.Solve(ctx, g, opts)
			}

			p := tea.NewProgram(newEditModel(ctx, g, j, path, solve),
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			final, err := p.Run()
			if err != nil {
				return fmt.Errorf("editor: %w", err)
			}
			if m, ok := final.(editModel); ok && m.dirty {
				printWarning("Unsaved changes discarded")
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&vertices, "vertices", "n", 0, "vertex count for a new graph")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// loadOrCreate reads path, or creates a graph with n vertices when path is
// empty or does not exist yet.
func loadOrCreate(path string, n int, opts ...graph.Option) (*graph.Graph, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			g, err := graphio.ImportGraph(path, opts...)
			if err != nil {
				return nil, fmt.Errorf("load graph %s: %w", path, err)
			}
			return g, nil
		}
	}
	return graph.New(n, opts...)
}
