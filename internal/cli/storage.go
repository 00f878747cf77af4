package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/config"
	"github.com/matzehuels/nodecanvas/pkg/persist"
)

// storageCommand creates the storage management command.
func (c *CLI) storageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Manage stored diagrams",
	}

	cmd.AddCommand(c.storagePathCommand())
	cmd.AddCommand(c.storageListCommand())
	cmd.AddCommand(c.storagePushCommand())
	cmd.AddCommand(c.storagePullCommand())
	cmd.AddCommand(c.storageRemoveCommand())

	return cmd
}

// storagePathCommand creates the "storage path" subcommand.
func (c *CLI) storagePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file and storage locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			for _, kv := range storageLocations(c.configFile(), cfg.Storage) {
				printKeyValue(kv[0], kv[1])
			}
			return nil
		},
	}
}

// storageLocations lists where the configured backend keeps its data.
func storageLocations(configFile string, s config.StorageConfig) [][2]string {
	out := [][2]string{{"Config", configFile}, {"Backend", s.Backend}}
	backends := []string{s.Backend}
	if s.Backend == config.BackendMulti {
		backends = s.Backends
	}
	for _, b := range backends {
		switch b {
		case config.BackendFile, "":
			out = append(out, [2]string{"Directory", s.Dir})
		case config.BackendSQLite:
			out = append(out, [2]string{"Database", s.SQLitePath})
		case config.BackendRedis:
			out = append(out, [2]string{"Redis", s.RedisAddr})
		case config.BackendMongo:
			out = append(out, [2]string{"MongoDB", s.MongoURI})
		}
	}
	return out
}

// storageListCommand creates the "storage list" subcommand.
func (c *CLI) storageListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored diagrams",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sink, _, err := c.openSink(cmd.Context())
			if err != nil {
				return err
			}
			defer sink.Close()

			names, err := sink.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				printInfo("No diagrams in %s storage", sink.Name())
				return nil
			}
			fmt.Println(StyleTitle.Render(fmt.Sprintf("%d diagram(s) in %s", len(names), sink.Name())))
			for _, n := range names {
				fmt.Println("  " + n)
			}
			return nil
		},
	}
}

// storagePushCommand creates the "storage push" subcommand.
func (c *CLI) storagePushCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "push <file> [name]",
		Short: "Store a diagram file (name defaults to the file name)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readDiagram(args[0])
			if err != nil {
				return err
			}
			name := diagramName(args[0])
			if len(args) == 2 {
				name = args[1]
			}

			sink, _, err := c.openSink(cmd.Context())
			if err != nil {
				return err
			}
			defer sink.Close()

			if err := persist.Save(cmd.Context(), sink, name, g); err != nil {
				return err
			}
			printSuccess("Stored %s in %s", name, sink.Name())
			printNextStep("Serve it", "nodecanvas serve --load "+name)
			return nil
		},
	}
}

// storagePullCommand creates the "storage pull" subcommand.
func (c *CLI) storagePullCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pull <name> <file>",
		Short: "Write a stored diagram to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sink, _, err := c.openSink(cmd.Context())
			if err != nil {
				return err
			}
			defer sink.Close()

			g, err := persist.Load(cmd.Context(), sink, args[0])
			if err != nil {
				return err
			}
			if err := writeDiagram(g, args[1]); err != nil {
				return err
			}
			printSuccess("Pulled %s", args[0])
			printFile(args[1])
			return nil
		},
	}
}

// storageRemoveCommand creates the "storage rm" subcommand.
func (c *CLI) storageRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name>...",
		Aliases: []string{"delete"},
		Short:   "Delete stored diagrams",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sink, _, err := c.openSink(cmd.Context())
			if err != nil {
				return err
			}
			defer sink.Close()

			for _, name := range args {
				if err := sink.Delete(cmd.Context(), name); err != nil {
					return fmt.Errorf("delete %s: %w", name, err)
				}
			}
			printSuccess("Deleted %d diagram(s)", len(args))
			return nil
		},
	}
}

// diagramName derives a storage name from a file path: "dir/app.json" → "app".
func diagramName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
