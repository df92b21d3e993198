package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	graphio "github.com/matzehuels/leafspan/pkg/io"
	"github.com/matzehuels/leafspan/pkg/solver"
)

// leavesCommand creates the leaves command, which counts the leaves of a tree.
func (c *CLI) leavesCommand() *cobra.Command {
	var graphPath string

	cmd := &cobra.Command{
		Use:   "leaves [tree.txt]",
		Short: "Count the leaves of a spanning tree",
		Long: `Count the leaves of a spanning tree given as "vertex: parent" lines or
as JSON. A leaf is a non-root vertex with no children. The root is not a
leaf, except in a one-vertex tree.

With --graph the tree is first checked to be a spanning tree of that graph.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := graphio.ImportTree(args[0])
			if err != nil {
				return fmt.Errorf("load tree %s: %w", args[0], err)
			}
			if err := solver.ValidateShape(tree); err != nil {
				return err
			}
			if graphPath != "" {
				g, err := graphio.ImportGraph(graphPath)
				if err != nil {
					return fmt.Errorf("load graph %s: %w", graphPath, err)
				}
				if err := solver.Validate(g, tree); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.Itoa(solver.CountLeaves(tree)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&graphPath, "graph", "g", "", "validate the tree against this graph")

	return cmd
}
