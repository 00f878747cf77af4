package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/config"
	"github.com/matzehuels/nodecanvas/pkg/graph"
	"github.com/matzehuels/nodecanvas/pkg/persist"
	"github.com/matzehuels/nodecanvas/pkg/server"
)

// serveOpts holds the flags of the serve command.
type serveOpts struct {
	addr string
	file string
	load string
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live canvas over HTTP",
		Long: `Serve one live canvas over a JSON HTTP API. The canvas starts empty, from
--file, or from the stored diagram --load. Storage comes from the config file.

Stop with Ctrl-C; in-flight requests finish before the server exits.`,
		Example: `  nodecanvas serve --addr :9090 --file app.json
  NODECANVAS_STORAGE=sqlite nodecanvas serve --load app`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&opts.file, "file", "", "start from a diagram file")
	cmd.Flags().StringVar(&opts.load, "load", "", "start from a stored diagram")
	cmd.MarkFlagsMutuallyExclusive("file", "load")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	sink, cfg, err := c.openSink(ctx)
	if err != nil {
		return err
	}
	defer sink.Close()

	g, err := initialCanvas(ctx, sink, opts)
	if err != nil {
		return err
	}

	addr := opts.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	srv := server.New(g, serverOptions(cfg, sink, c))

	printSuccess("Serving canvas %s", g.ID())
	printKeyValue("Address", addr)
	printKeyValue("Storage", sink.Name())
	printStats(g.NodeCount(), len(g.Edges().Connections()), countGroups(g))
	if sink.Name() == config.BackendNull {
		printWarning("Storage backend is null; saved diagrams are discarded")
	}
	return srv.ListenAndServe(ctx, addr)
}

func serverOptions(cfg *config.Config, sink persist.Sink, c *CLI) server.Options {
	return server.Options{
		Sink:          sink,
		Snap:          cfg.Canvas.Snap,
		Buffer:        cfg.Canvas.GroupBuffer,
		FrameInterval: cfg.Canvas.FrameInterval.Duration,
		Logger:        c.Logger,
	}
}

// initialCanvas returns the graph the server starts with.
func initialCanvas(ctx context.Context, sink persist.Sink, opts serveOpts) (*graph.Graph, error) {
	switch {
	case opts.file != "":
		return readDiagram(opts.file)
	case opts.load != "":
		g, err := persist.Load(ctx, sink, opts.load)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", opts.load, err)
		}
		return g, nil
	default:
		return graph.New(""), nil
	}
}
