package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Before any subcommand runs, --verbose switches the logger to debug and the
// logging hooks are installed, so graph, drag and storage events show up.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "nodecanvas edits node-graph diagrams",
		Long:         `nodecanvas creates, edits, stores and serves node-graph diagrams: nodes with anchors, edges between anchors, groups, and drag movement with grid snapping.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			c.installHooks()
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+c.configFile()+")")

	// Diagram editing
	root.AddCommand(c.newCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.connectCommand())
	root.AddCommand(c.exportCommand())

	// Live canvas
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.tuiCommand())

	root.AddCommand(c.storageCommand())
	root.AddCommand(c.completionCommand())

	return root
}
