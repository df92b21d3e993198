package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/leafspan/pkg/graph"
	graphio "github.com/matzehuels/leafspan/pkg/io"
)

// generateCommand creates the generate command for random connected graphs.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		n      int
		p      float64
		seed   uint64
		output string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random connected graph",
		Long: `Generate a random graph where each pair of vertices is joined with
probability -p. Components are then linked so the result is always
connected and can be solved directly.

Pass --seed for a reproducible graph.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []graph.RandomOption
			if cmd.Flags().Changed("seed") {
				opts = append(opts, graph.WithSeed(seed))
			}
			g, err := graph.GenerateRandom(n, p, opts...)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("generated graph", "vertices", g.VertexCount(), "edges", g.EdgeCount())

			if output == "" {
				return graphio.WriteGraph(g, cmd.OutOrStdout())
			}
			if err := graphio.ExportGraph(g, output); err != nil {
				return fmt.Errorf("write graph: %w", err)
			}
			printSuccess("Generated graph")
			printFile(output)
			printSummary(g, nil, false)
			printNextStep("Solve", fmt.Sprintf("%s solve %s", appName, output))
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "vertices", "n", 10, "number of vertices")
	cmd.Flags().Float64VarP(&p, "probability", "p", 0.3, "edge probability in [0, 1]")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}
