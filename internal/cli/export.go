package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relgraph/pkg/export"
	"github.com/matzehuels/relgraph/pkg/layout"
	"github.com/matzehuels/relgraph/pkg/pipeline"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output    string
		format    string
		direction string
		detailed  bool
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "export [file.xml|graph.json]",
		Short: "Export the record graph as Graphviz DOT or SVG",
		Long: `Export the record graph as Graphviz DOT or SVG.

SVG output is rendered with Graphviz. Use -o - to write to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := export.ValidateFormat(format); err != nil {
				return err
			}
			eopts := export.Options{Detailed: detailed, Direction: c.Config.Layout.Direction}
			if cmd.Flags().Changed("direction") {
				dir, err := layout.ParseDirection(direction)
				if err != nil {
					return err
				}
				eopts.Direction = dir
			}
			return c.runExport(cmd.Context(), args[0], output, format, eopts, c.pipelineOptions(), noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", export.FormatDOT, "output format: dot, svg")
	cmd.Flags().StringVarP(&direction, "direction", "d", "", "rank direction: TB, LR")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "add summaries to boxes and key names to edges")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, input, output, format string, eopts export.Options, opts pipeline.Options, noCache bool) error {
	runner := c.newRunner(ctx, noCache)
	defer runner.Close()

	g, _, _, err := c.loadGraph(ctx, runner, input, opts)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	data, hit, err := runner.ExportWithCacheInfo(ctx, g, format, eopts, opts)
	if err != nil {
		return err
	}
	prog.done("Rendered " + format)

	if output == "-" {
		_, err := stdout.Write(data)
		return err
	}
	out := derivedPath(input, output, "."+format)
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", out, err)
	}

	printSuccess("Exported %s", format)
	printFile(out)
	printStats(len(g.Records), len(g.Edges), hit)
	return nil
}
