package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/patch"
	"github.com/matzehuels/relgraph/pkg/pipeline"
)

// patchCommand creates the patch command.
func (c *CLI) patchCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "patch [file.xml] [edits.json]",
		Short: "Write edited records back into the XML document",
		Long: `Write edited records back into the XML document.

The edits file is a JSON list of records:

  [{"id": "0:0", "attributes": {"NR_SEQUENCIA": "1", "DS_TITULO": "Compras"}},
   {"id": "1:0", "children": [{"name": "DS_SQL", "content": "select 1", "cdata": true}]}]

Omitted attributes or children keep their current values. Each record is
matched to its element by NR_SEQUENCIA; records without a matching element
are reported and skipped. Everything else in the document is preserved.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPatch(cmd.Context(), args[0], args[1], output, c.pipelineOptions(), noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: "+patch.OutputFilename+" next to the input)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runPatch(ctx context.Context, input, editsPath, output string, opts pipeline.Options, noCache bool) error {
	if filepath.Ext(input) == ".json" {
		return fmt.Errorf("patch needs the source XML document, not %s", input)
	}
	runner := c.newRunner(ctx, noCache)
	defer runner.Close()

	g, doc, _, err := c.loadGraph(ctx, runner, input, opts)
	if err != nil {
		return err
	}
	edits, err := graph.ReadEditsFile(editsPath)
	if err != nil {
		return err
	}
	if err := g.ApplyEdits(edits); err != nil {
		return err
	}

	data, rep, err := runner.Patch(ctx, doc, g.Records, opts)
	if err != nil {
		return err
	}

	out := output
	if out == "" {
		out = filepath.Join(filepath.Dir(input), patch.OutputFilename)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", out, err)
	}

	printSuccess("Patched %d records from %d edits", len(rep.Patched), len(edits))
	printFile(out)
	printDetail("%d attributes changed · %d children written · %d created",
		rep.AttributesChanged, rep.ChildrenWritten, rep.ChildrenCreated)
	if len(rep.Skipped) > 0 {
		printWarning("Skipped records without a matching element: %s", strings.Join(rep.Skipped, ", "))
	}
	return nil
}
