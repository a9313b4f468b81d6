package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/pipeline"
	"github.com/matzehuels/relgraph/pkg/xmldoc"
)

// extractCommand creates the extract command.
func (c *CLI) extractCommand() *cobra.Command {
	var (
		output   string
		encoding string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "extract [file.xml]",
		Short: "Extract records and foreign-key edges from an XML export",
		Long: `Extract records and foreign-key edges from an XML export.

The document type (report or EHR template) is detected from the root element.
The result is written as <input>.graph.json, which the layout, export and
inspect commands accept in place of the XML file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			if encoding != "" {
				opts.Encoding = encoding
			}
			return c.runExtract(cmd.Context(), args[0], output, opts, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.graph.json)")
	cmd.Flags().StringVar(&encoding, "encoding", "", "input charset (default from config, ISO-8859-1)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runExtract(ctx context.Context, input, output string, opts pipeline.Options, noCache bool) error {
	runner := c.newRunner(ctx, noCache)
	defer runner.Close()

	prog := newProgress(c.Logger)
	g, _, hit, err := c.loadGraph(ctx, runner, input, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Extracted %d records", len(g.Records)))

	out := derivedPath(input, output, ".graph.json")
	if err := graph.WriteGraphFile(g, out); err != nil {
		return fmt.Errorf("write output %s: %w", out, err)
	}

	printSuccess("Extracted %s document", g.Type)
	printKeyValue("Title", g.Title)
	printFile(out)
	printStats(len(g.Records), len(g.Edges), hit)
	if len(g.Duplicates) > 0 {
		printWarning("Duplicate keys, last occurrence wins: %s", strings.Join(g.Duplicates, ", "))
	}
	printNextStep("Lay out", appName+" layout "+out)
	return nil
}

// loadGraph reads input as an XML document, or as a graph file when its
// extension is .json. The document is nil for graph files.
func (c *CLI) loadGraph(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options) (*graph.Graph, *xmldoc.Document, bool, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, false, err
	}
	if strings.EqualFold(filepath.Ext(input), ".json") {
		g, err := graph.ReadGraphFile(input)
		if err != nil {
			return nil, nil, false, fmt.Errorf("load graph %s: %w", input, err)
		}
		return g, nil, false, nil
	}

	doc, err := xmldoc.ReadFile(input, opts.LoadOptions())
	if err != nil {
		return nil, nil, false, err
	}
	g, hit, err := runner.LoadWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return nil, nil, false, err
	}
	g.Name = filepath.Base(input)
	return g, doc, hit, nil
}
