package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	graphio "github.com/matzehuels/leafspan/pkg/io"
	"github.com/matzehuels/leafspan/pkg/pipeline"
	"github.com/matzehuels/leafspan/pkg/solver"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string // base path for the rendered files
	tree      string // existing tree file, text or JSON
	bare      bool   // draw the graph without solving
	formats   []string
	hideOther bool
	title     string
}

// renderCommand creates the render command for drawing a graph and its tree.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		opts       renderOpts
		flags      solveFlags
		formatsStr string
	)

	cmd := &cobra.Command{
		Use:   "render [graph.txt]",
		Short: "Render a graph and its spanning tree",
		Long: `Render a graph with its spanning tree highlighted.

Tree edges are drawn bold, leaves are filled and the root is drawn with a
double circle. With --tree an existing tree file is drawn; otherwise the
graph is solved first (using the cache). Use --bare to draw the graph alone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if len(opts.formats) == 0 {
				opts.formats = []string{string(pipeline.DefaultFormat)}
			}
			solveOpts := c.solveOptions()
			flags.apply(cmd, &solveOpts)
			return c.runRender(cmd.Context(), args[0], opts, solveOpts, flags.noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: input path without extension)")
	cmd.Flags().StringVarP(&opts.tree, "tree", "t", "", "draw this tree instead of solving")
	cmd.Flags().BoolVar(&opts.bare, "bare", false, "draw the graph without a tree")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output formats: dot, svg, png (comma-separated, default: svg)")
	cmd.Flags().BoolVar(&opts.hideOther, "hide-non-tree", false, "omit non-tree edges")
	cmd.Flags().StringVar(&opts.title, "title", "", "diagram title")
	cmd.MarkFlagsMutuallyExclusive("tree", "bare")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts, solveOpts pipeline.Options, noCache bool) error {
	solveOpts.Formats = opts.formats
	solveOpts.HideNonTree = opts.hideOther
	solveOpts.Title = opts.title
	if err := solveOpts.Validate(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache || opts.tree != "" || opts.bare)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, err := runner.Load(ctx, input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	var (
		tree   solver.Tree
		cached bool
	)
	switch {
	case opts.bare:
	case opts.tree != "":
		if tree, err = graphio.ImportTree(opts.tree); err != nil {
			return fmt.Errorf("load tree %s: %w", opts.tree, err)
		}
		if err := solver.Validate(g, tree); err != nil {
			return fmt.Errorf("tree %s does not span %s: %w", opts.tree, input, err)
		}
	default:
		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Solving %d vertices...", g.VertexCount()))
		spinner.Start()
		res, hit, err := runner.SolveWithCacheInfo(ctx, g, solveOpts)
		if err != nil {
			spinner.StopWithError("Solve failed")
			return fmt.Errorf("solve: %w", err)
		}
		spinner.StopWithSuccess(fmt.Sprintf("Solved: %d leaves", res.Leaves))
		tree, cached = res.Tree, hit
	}

	artifacts, err := runner.Render(ctx, g, tree, solveOpts)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	base := opts.output
	if base == "" {
		base = basePath(input)
	} else {
		base = basePath(base)
	}
	paths, err := writeArtifacts(artifacts, opts.formats, base)
	if err != nil {
		return err
	}

	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printSummary(g, tree, cached)
	return nil
}
