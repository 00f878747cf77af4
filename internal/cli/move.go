package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/config"
	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/graph"
)

// moveOpts holds the flags of the move command.
type moveOpts struct {
	by     string
	group  string
	drag   bool
	frames int
	snap   float64
	output string
}

// moveCommand creates the move command.
//
// Without --drag the nodes are nudged in one step. With --drag the cursor is
// walked from 0,0 to dx,dy over --frames animation frames and the movement
// engine follows it, so snapping and group-box clamping behave exactly as an
// interactive drag would.
func (c *CLI) moveCommand() *cobra.Command {
	opts := moveOpts{frames: 10, snap: -1}

	cmd := &cobra.Command{
		Use:   "move <file> [node...]",
		Short: "Move nodes or a group by an offset",
		Long: `Move the named nodes, or every node of --group, by --by dx,dy.

Named nodes are moved as the selection, so each is kept inside the box of its
own group. Locked nodes never move.`,
		Example: `  nodecanvas move app.json api db --by 40,0
  nodecanvas move app.json --group backend --by 0,120 --drag`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := parseDelta(opts.by)
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if opts.snap >= 0 {
				cfg.Canvas.Snap = opts.snap
			}
			g, err := readDiagram(args[0])
			if err != nil {
				return err
			}
			moved, err := moveNodes(g, cfg, args[1:], delta, opts)
			if err != nil {
				return err
			}

			out := opts.output
			if out == "" {
				out = args[0]
			}
			if err := writeDiagram(g, out); err != nil {
				return err
			}
			printSuccess("Moved %d node(s)", len(moved))
			for _, n := range moved {
				p := n.Position()
				printDetail("%s %s %g,%g", n.ID(), iconArrow, p.X, p.Y)
			}
			printFile(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.by, "by", "", "offset dx,dy (required)")
	cmd.Flags().StringVarP(&opts.group, "group", "g", "", "move every node of this group")
	cmd.Flags().BoolVar(&opts.drag, "drag", false, "simulate a drag through the movement engine")
	cmd.Flags().IntVar(&opts.frames, "frames", opts.frames, "frames for --drag")
	cmd.Flags().Float64Var(&opts.snap, "snap", opts.snap, "grid size (default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: overwrite input)")
	_ = cmd.MarkFlagRequired("by")

	return cmd
}

// moveNodes moves the nodes named by ids (as the selection) or the nodes of
// opts.group, and returns the nodes that took part. The selection is
// restored afterwards.
func moveNodes(g *graph.Graph, cfg *config.Config, ids []string, delta geom.Point, opts moveOpts) ([]*graph.Node, error) {
	group := opts.group
	switch {
	case len(ids) > 0 && group != "":
		return nil, errors.New(errors.ErrCodeInvalidInput, "give nodes or --group, not both")
	case len(ids) > 0:
		nodes := make([]*graph.Node, 0, len(ids))
		for _, id := range ids {
			n, err := resolveNode(g, id)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		}
		prev := g.Selected()
		g.ClearSelection()
		g.Select(nodes...)
		defer func() {
			g.ClearSelection()
			g.Select(prev...)
		}()
		group = graph.SelectedGroup
	case group == "":
		return nil, errors.New(errors.ErrCodeInvalidInput, "no nodes given (name nodes or use --group)")
	default:
		if _, ok := g.Group(group); !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "group %s not found", group)
		}
	}

	e, sched := newEngine(g, cfg)
	if !opts.drag {
		e.Nudge(group, delta)
		grp, _ := g.Group(group)
		return unlocked(grp.Nodes()), nil
	}
	if opts.frames < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "--frames must be at least 1")
	}

	cursor := g.Cursor()
	d := e.Start(group)
	for i := 1; i <= opts.frames; i++ {
		g.SetCursor(cursor.Add(delta.Scale(float64(i) / float64(opts.frames))))
		sched.Step()
	}
	d.Apply()
	d.Stop()
	g.SetCursor(cursor)
	if d.Frames() == 0 {
		return nil, fmt.Errorf("drag of %s ran no frames", group)
	}
	return d.Nodes(), nil
}

func unlocked(nodes []*graph.Node) []*graph.Node {
	out := nodes[:0:0]
	for _, n := range nodes {
		if !n.Locked() {
			out = append(out, n)
		}
	}
	return out
}
