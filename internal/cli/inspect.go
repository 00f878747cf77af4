package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/graph"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the nodes, anchors, edges and groups of a diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := readDiagram(args[0])
			if err != nil {
				return err
			}
			switch format {
			case formatText:
				printDiagram(g)
				return nil
			case formatJSON:
				return graph.Write(g, os.Stdout)
			case formatYAML:
				data, err := graph.MarshalYAML(g)
				if err != nil {
					return err
				}
				_, err = os.Stdout.Write(data)
				return err
			default:
				return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want text, json or yaml)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json, yaml")
	return cmd
}

func printDiagram(g *graph.Graph) {
	edges := g.Edges().Connections()

	fmt.Println(StyleTitle.Render("Diagram " + g.ID()))
	printStats(g.NodeCount(), len(edges), countGroups(g))
	if g.NodeCount() > 0 {
		b := g.Bounds()
		printKeyValue("Bounds", fmt.Sprintf("%g,%g %gx%g", b.X, b.Y, b.Width, b.Height))
	}

	for _, n := range g.Nodes() {
		fmt.Println()
		fmt.Println(StyleHighlight.Render(n.ID()) + " " + StyleDim.Render(nodeSummary(n)))
		for _, a := range n.Anchors() {
			printDetail("%s", anchorSummary(a))
		}
	}

	if len(edges) > 0 {
		fmt.Println()
		fmt.Println(StyleTitle.Render("Edges"))
		for _, e := range edges {
			line := e.Source.ID() + " " + iconArrow + " " + e.Target.ID()
			if e.Style.Label != "" {
				line += "  " + StyleDim.Render(e.Style.Label)
			}
			fmt.Println("  " + line)
		}
	}

	for _, grp := range g.Groups() {
		if grp.Key() == graph.SelectedGroup && grp.Count() == 0 {
			continue
		}
		fmt.Println()
		fmt.Println(StyleTitle.Render("Group " + grp.Key()))
		if box := grp.Box(); box != nil {
			printDetail("box %g,%g %gx%g", box.Position.X, box.Position.Y, box.Dimensions.Width, box.Dimensions.Height)
		}
		ids := make([]string, 0, grp.Count())
		for _, n := range grp.Nodes() {
			ids = append(ids, n.ID())
		}
		if len(ids) > 0 {
			printDetail("%s", strings.Join(ids, ", "))
		}
	}
}

// nodeSummary is the one-line description of a node used by inspect and the TUI.
func nodeSummary(n *graph.Node) string {
	p, d := n.Position(), n.Dimensions()
	parts := []string{fmt.Sprintf("at %g,%g", p.X, p.Y), fmt.Sprintf("%gx%g", d.Width, d.Height)}
	if n.Label() != "" {
		parts = append([]string{fmt.Sprintf("%q", n.Label())}, parts...)
	}
	if n.Group() != "" {
		parts = append(parts, "group "+n.Group())
	}
	if n.Locked() {
		parts = append(parts, "locked")
	}
	return strings.Join(parts, " · ")
}

func anchorSummary(a *graph.Anchor) string {
	off := a.Offset()
	s := fmt.Sprintf("%s %s @%g,%g", a.LocalID(), a.Direction(), off.X, off.Y)
	if a.Type() != graph.Untyped {
		s += " " + string(a.Type())
	}
	if n := len(a.Connected()); n > 0 {
		s += fmt.Sprintf(" (%d linked)", n)
	}
	return s
}
