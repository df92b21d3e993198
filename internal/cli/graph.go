package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/leafspan/pkg/errors"
	"github.com/matzehuels/leafspan/pkg/graph"
	graphio "github.com/matzehuels/leafspan/pkg/io"
	"github.com/matzehuels/leafspan/pkg/pipeline"
)

// graphCommand creates the graph command for inspecting and editing graph files.
func (c *CLI) graphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Inspect and edit graph files",
		Long: `Inspect and edit graph files in canonical text form.

Editing subcommands rewrite the file in place unless --output is given.
Removing a vertex shifts every higher index down by one.`,
	}

	cmd.AddCommand(c.graphInfoCommand())
	cmd.AddCommand(c.graphEditCommand("add-edge [graph.txt] [u] [v]", "Add the edge u-v", 2,
		func(g *graph.Graph, a []int) (string, error) {
			return fmt.Sprintf("Added edge %d-%d", a[0], a[1]), g.AddEdge(a[0], a[1])
		}))
	cmd.AddCommand(c.graphEditCommand("remove-edge [graph.txt] [u] [v]", "Remove the edge u-v", 2,
		func(g *graph.Graph, a []int) (string, error) {
			return fmt.Sprintf("Removed edge %d-%d", a[0], a[1]), g.RemoveEdge(a[0], a[1])
		}))
	cmd.AddCommand(c.graphEditCommand("add-vertex [graph.txt]", "Append an isolated vertex", 0,
		func(g *graph.Graph, _ []int) (string, error) {
			v, err := g.AddVertex()
			return fmt.Sprintf("Added vertex %d", v), err
		}))
	cmd.AddCommand(c.graphEditCommand("remove-vertex [graph.txt] [v]", "Remove a vertex and its edges", 1,
		func(g *graph.Graph, a []int) (string, error) {
			return fmt.Sprintf("Removed vertex %d", a[0]), g.RemoveVertex(a[0])
		}))

	return cmd
}

// graphInfoCommand creates the "graph info" subcommand.
func (c *CLI) graphInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info [graph.txt]",
		Short: "Show vertex, edge and connectivity statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graphio.ImportGraph(args[0])
			if err != nil {
				return fmt.Errorf("load graph %s: %w", args[0], err)
			}

			minDeg, maxDeg := 0, 0
			for v := range g.VertexCount() {
				d := g.Degree(v)
				if v == 0 || d < minDeg {
					minDeg = d
				}
				maxDeg = max(maxDeg, d)
			}

			printKeyValue("Vertices", strconv.Itoa(g.VertexCount()))
			printKeyValue("Edges", strconv.Itoa(g.EdgeCount()))
			printKeyValue("Components", strconv.Itoa(len(g.Components())))
			printKeyValue("Connected", strconv.FormatBool(g.IsConnected()))
			printKeyValue("Degree", fmt.Sprintf("%d..%d", minDeg, maxDeg))
			printKeyValue("Hash", pipeline.GraphHash(g)[:12])
			return nil
		},
	}
}

// graphEditCommand builds a subcommand that loads a graph, applies edit to
// it with nargs integer arguments and saves the result.
func (c *CLI) graphEditCommand(use, short string, nargs int, edit func(*graph.Graph, []int) (string, error)) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs + 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nums := make([]int, nargs)
			for i, s := range args[1:] {
				n, err := strconv.Atoi(s)
				if err != nil {
					return errors.New(errors.ErrCodeInvalidArgument, "invalid vertex %q", s)
				}
				nums[i] = n
			}

			g, err := graphio.ImportGraph(args[0])
			if err != nil {
				return fmt.Errorf("load graph %s: %w", args[0], err)
			}
			msg, err := edit(g, nums)
			if err != nil {
				return err
			}

			dest := args[0]
			if output != "" {
				dest = output
			}
			if err := graphio.ExportGraph(g, dest); err != nil {
				return fmt.Errorf("write graph: %w", err)
			}
			printSuccess("%s", msg)
			printFile(dest)
			printSummary(g, nil, false)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of editing in place")

	return cmd
}
