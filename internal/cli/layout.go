package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/layout"
	"github.com/matzehuels/relgraph/pkg/pipeline"
)

// layoutFlags are the geometry flags shared by layout and export. Only
// flags the user set override the configuration.
type layoutFlags struct {
	direction  string
	nodeWidth  float64
	nodeHeight float64
	rankGap    float64
	nodeGap    float64
	passes     int
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.direction, "direction", "d", "", "rank direction: TB (default), LR")
	cmd.Flags().Float64Var(&f.nodeWidth, "node-width", 0, "box width")
	cmd.Flags().Float64Var(&f.nodeHeight, "node-height", 0, "box height")
	cmd.Flags().Float64Var(&f.rankGap, "rank-gap", 0, "gap between ranks")
	cmd.Flags().Float64Var(&f.nodeGap, "node-gap", 0, "gap between boxes in a rank")
	cmd.Flags().IntVar(&f.passes, "passes", 0, "crossing reduction passes")
}

func (f *layoutFlags) apply(cmd *cobra.Command, opts *layout.Options) error {
	changed := cmd.Flags().Changed
	if changed("direction") {
		dir, err := layout.ParseDirection(f.direction)
		if err != nil {
			return err
		}
		opts.Direction = dir
	}
	if changed("node-width") {
		opts.NodeWidth = f.nodeWidth
	}
	if changed("node-height") {
		opts.NodeHeight = f.nodeHeight
	}
	if changed("rank-gap") {
		opts.RankGap = f.rankGap
	}
	if changed("node-gap") {
		opts.NodeGap = f.nodeGap
	}
	if changed("passes") {
		opts.Passes = f.passes
	}
	return opts.Validate()
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [file.xml|graph.json]",
		Short: "Compute a ranked layout of the record graph",
		Long: `Compute a ranked layout of the record graph.

Records are assigned to ranks along the foreign-key edges (cycles are broken
deterministically), ordered within each rank to reduce crossings and given
box coordinates. The result is written as <input>.layout.json.

Layouts depend only on the graph topology and the geometry options, so they
are cached across edits to record values.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			opts.Refresh = refresh
			if err := flags.apply(cmd, &opts.Layout); err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], output, opts, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute and overwrite cached results")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input, output string, opts pipeline.Options, noCache bool) error {
	runner := c.newRunner(ctx, noCache)
	defer runner.Close()

	g, _, _, err := c.loadGraph(ctx, runner, input, opts)
	if err != nil {
		return err
	}

	sp := newSpinner(ctx, "Computing layout...")
	sp.Start()
	l, hit, err := runner.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		sp.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	sp.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	out := derivedPath(input, output, ".layout.json")
	if err := graph.WriteLayoutFile(l, out); err != nil {
		return fmt.Errorf("write output %s: %w", out, err)
	}

	printSuccess("Layout complete")
	printFile(out)
	printStats(len(g.Records), len(g.Edges), hit)
	printDetail("%d ranks · %d crossings · %.0fx%.0f", l.Layout.Ranks, l.Layout.Crossings, l.Layout.Width, l.Layout.Height)
	return nil
}
