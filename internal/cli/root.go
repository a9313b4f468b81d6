package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/relgraph/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
// Persistent flags select the configuration file and the log level.
func (c *CLI) RootCommand() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	root := &cobra.Command{
		Use:   appName,
		Short: "relgraph extracts, lays out and patches relational XML exports",
		Long: `relgraph reads XML exports of report and EHR template definitions,
turns their table records into a graph of foreign-key edges, lays the graph
out in ranks, and writes edited records back into the original document.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(LogDebug)
			}
			return c.loadConfig(configPath)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/relgraph/config.toml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.extractCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.patchCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
