package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/graph"
)

// connectOpts holds the flags of the connect command.
type connectOpts struct {
	style  graph.EdgeStyle
	remove bool
	output string
}

// connectCommand creates the connect command.
func (c *CLI) connectCommand() *cobra.Command {
	var opts connectOpts

	cmd := &cobra.Command{
		Use:   "connect <file> <source> <target>",
		Short: "Connect or disconnect two anchors",
		Long: `Connect two anchors with an edge. Anchors are named "node:anchor" or by
their full id "A-anchor/N-node".

Input anchors only accept output anchors; untyped anchors accept anything.
Connecting an already connected pair leaves the existing edge unchanged.`,
		Example: `  nodecanvas connect app.json api:out db:in --label queries
  nodecanvas connect app.json api:out db:in --remove`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readDiagram(args[0])
			if err != nil {
				return err
			}
			changed, err := applyConnect(g, args[1], args[2], opts)
			if err != nil {
				return err
			}
			if !changed {
				if opts.remove {
					printInfo("%s and %s are not connected", args[1], args[2])
				} else {
					printInfo("%s and %s are already connected", args[1], args[2])
				}
				return nil
			}

			out := opts.output
			if out == "" {
				out = args[0]
			}
			if err := writeDiagram(g, out); err != nil {
				return err
			}
			if opts.remove {
				printSuccess("Disconnected %s from %s", args[1], args[2])
			} else {
				printSuccess("Connected %s %s %s", args[1], iconArrow, args[2])
			}
			printFile(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.style.Label, "label", "", "edge label")
	cmd.Flags().StringVar(&opts.style.Color, "color", "", "edge color (default: source anchor's edge color)")
	cmd.Flags().Float64Var(&opts.style.Width, "width", 0, "edge width")
	cmd.Flags().BoolVar(&opts.style.Animated, "animated", false, "animated edge")
	cmd.Flags().BoolVar(&opts.remove, "remove", false, "remove the edge instead")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: overwrite input)")

	return cmd
}

// applyConnect connects or disconnects source and target and reports
// whether the graph changed.
func applyConnect(g *graph.Graph, source, target string, opts connectOpts) (bool, error) {
	src, err := resolveAnchor(g, source)
	if err != nil {
		return false, err
	}
	dst, err := resolveAnchor(g, target)
	if err != nil {
		return false, err
	}
	if opts.remove {
		return g.Disconnect(src, dst), nil
	}
	if opts.style.Width < 0 {
		return false, errors.New(errors.ErrCodeInvalidInput, "edge width must not be negative")
	}
	_, created, err := g.Connect(src, dst, opts.style)
	return created, err
}
