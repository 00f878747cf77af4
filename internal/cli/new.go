package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/config"
	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/graph"
)

// newOpts holds the flags of the new command.
type newOpts struct {
	id      string
	nodes   []string
	anchors []string
	boxes   []string
	force   bool
}

// newCommand creates the new command for writing a diagram file.
func (c *CLI) newCommand() *cobra.Command {
	var opts newOpts

	cmd := &cobra.Command{
		Use:   "new <file>",
		Short: "Create a diagram file",
		Long: `Create a diagram from --node, --anchor and --box specs and write it as
JSON, or YAML when the file ends in .yaml or .yml.

Anchor x,y are offsets from the node's top-left corner.`,
		Example: `  nodecanvas new app.json \
    --node id=api,x=0,y=0,label=API \
    --node id=db,x=400,y=0,label=Postgres \
    --anchor node=api,id=out,x=200,y=50,dir=east,type=output \
    --anchor node=db,id=in,x=0,y=50,dir=west,type=input`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !opts.force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s exists (use --force to overwrite)", path)
				}
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			g, err := buildDiagram(cfg, opts)
			if err != nil {
				return err
			}
			if err := writeDiagram(g, path); err != nil {
				return err
			}
			printSuccess("Created %s", path)
			printStats(g.NodeCount(), len(g.Edges().Connections()), countGroups(g))
			printNextStep("Connect anchors", "nodecanvas connect "+path+" api:out db:in")
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.id, "id", "", "diagram id (default: random)")
	cmd.Flags().StringArrayVar(&opts.nodes, "node", nil, "node spec: id=,x=,y=,w=,h=,label=,group=,locked=,z=,bg=,border=,text=")
	cmd.Flags().StringArrayVar(&opts.anchors, "anchor", nil, "anchor spec: node=,id=,x=,y=,w=,h=,dir=,type=,dynamic=,color=")
	cmd.Flags().StringArrayVar(&opts.boxes, "box", nil, "group box spec: group=,x=,y=,w=,h=,color=")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "overwrite an existing file")

	return cmd
}

// buildDiagram applies the node, anchor and box specs in that order.
func buildDiagram(cfg *config.Config, opts newOpts) (*graph.Graph, error) {
	g := graph.New(opts.id)
	size := geom.Size{Width: cfg.Canvas.NodeWidth, Height: cfg.Canvas.NodeHeight}

	for _, spec := range opts.nodes {
		nc, err := parseNodeSpec(spec, size)
		if err != nil {
			return nil, err
		}
		if _, err := g.AddNode(nc); err != nil {
			return nil, err
		}
	}
	for _, spec := range opts.anchors {
		as, err := parseAnchorSpec(spec)
		if err != nil {
			return nil, err
		}
		n, err := resolveNode(g, as.Node)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidAnchor, err, "anchor %s", as.ID)
		}
		at := n.Position().Add(as.Offset).Sub(as.Size.Half())
		if _, err := n.CreateAnchor(as.ID, at, as.Size, as.Opts); err != nil {
			return nil, err
		}
	}
	for _, spec := range opts.boxes {
		bs, err := parseBoxSpec(spec)
		if err != nil {
			return nil, err
		}
		box := bs.Box
		g.SetGroupBox(bs.Group, &box)
	}
	return g, nil
}

// countGroups counts named groups, leaving out the selection.
func countGroups(g *graph.Graph) int {
	n := 0
	for _, grp := range g.Groups() {
		if grp.Key() != graph.SelectedGroup {
			n++
		}
	}
	return n
}
