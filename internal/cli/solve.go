package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	graphio "github.com/matzehuels/leafspan/pkg/io"
	"github.com/matzehuels/leafspan/pkg/pipeline"
)

// solveFlags holds the command-line flags shared by solve-like commands.
type solveFlags struct {
	strategy   string
	iterations int
	seed       uint64
	workers    int
	sequential bool
	noCache    bool
	refresh    bool
}

func (f *solveFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.strategy, "strategy", "s", "", "search strategy: exhaustive (default), randomized")
	cmd.Flags().IntVarP(&f.iterations, "iterations", "n", 0, "random trees to sample (randomized)")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "base seed for a reproducible randomized search")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "parallel workers (default: GOMAXPROCS)")
	cmd.Flags().BoolVar(&f.sequential, "sequential", false, "evaluate candidates on one goroutine")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute and overwrite cached results")
}

// apply overlays flags that were set on the config defaults.
func (f *solveFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if cmd.Flags().Changed("strategy") {
		opts.Strategy = f.strategy
	}
	if cmd.Flags().Changed("iterations") {
		opts.Iterations = f.iterations
	}
	if cmd.Flags().Changed("seed") {
		opts.FixedSeed, opts.Seed = true, f.seed
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers = f.workers
	}
	if f.sequential {
		opts.Parallel = false
	}
	opts.Refresh = f.refresh
}

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var (
		flags      solveFlags
		output     string
		asJSON     bool
		formatsStr string
		hideOther  bool
	)

	cmd := &cobra.Command{
		Use:   "solve [graph.txt]",
		Short: "Find a spanning tree with many leaves",
		Long: `Find a spanning tree with many leaves.

The solve command reads a graph in canonical text form (vertex count on the
first line, then one "u v" edge per line) and prints the spanning tree as
"vertex: parent" lines. The root's parent is -1.

The exhaustive strategy tries every vertex as the root. The randomized
strategy samples --iterations random trees and is meant for large graphs.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.solveOptions()
			flags.apply(cmd, &opts)
			opts.Formats = parseFormats(formatsStr)
			opts.HideNonTree = hideOther
			if err := opts.Validate(); err != nil {
				return err
			}
			return c.runSolve(cmd.Context(), args[0], opts, flags.noCache, output, asJSON, cmd.OutOrStdout())
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the tree to a file instead of stdout")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write the tree as JSON")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "also render the tree: dot, svg, png (comma-separated)")
	cmd.Flags().BoolVar(&hideOther, "hide-non-tree", false, "omit non-tree edges from rendered output")

	return cmd
}

// runSolve loads the graph, solves it and writes the tree.
func (c *CLI) runSolve(ctx context.Context, input string, opts pipeline.Options, noCache bool, output string, asJSON bool, stdout io.Writer) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, err := runner.Load(ctx, input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Solving %d vertices...", g.VertexCount()))
	spinner.Start()

	prog := newProgress(c.Logger)
	res, cacheHit, err := runner.SolveWithCacheInfo(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Solve failed")
		return fmt.Errorf("solve: %w", err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Found a tree with %d leaves", res.Leaves))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	switch {
	case output != "" && asJSON:
		err = graphio.ExportTreeJSON(res, output)
	case output != "":
		err = graphio.ExportTree(res.Tree, output)
	case asJSON:
		err = graphio.WriteTreeJSON(res, stdout)
	default:
		err = graphio.WriteTree(res.Tree, stdout)
	}
	if err != nil {
		return fmt.Errorf("write tree: %w", err)
	}

	var rendered []string
	if len(opts.Formats) > 0 {
		artifacts, err := runner.Render(ctx, g, res.Tree, opts)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		base := basePath(input)
		if output != "" {
			base = basePath(output)
		}
		if rendered, err = writeArtifacts(artifacts, opts.Formats, base); err != nil {
			return err
		}
	}

	if output == "" {
		for _, path := range rendered {
			c.Logger.Info("wrote", "file", path)
		}
		return nil
	}
	printSuccess("Solve complete")
	for _, path := range append([]string{output}, rendered...) {
		printFile(path)
	}
	printSummary(g, res.Tree, cacheHit)
	printNextStep("Render", fmt.Sprintf("%s render %s --tree %s -f svg", appName, input, output))
	return nil
}
