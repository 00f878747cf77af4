package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/nodecanvas/pkg/graph"
)

// pointsPerInch converts canvas pixels to Graphviz inches.
const pointsPerInch = 72.0

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the node position, size and anchor list to labels.
	// When false, only the label (or id) is shown.
	Detailed bool

	// Pinned keeps nodes at their canvas positions. The DOT output carries
	// pinned pos attributes and RenderSVG lays it out with neato instead of
	// dot.
	Pinned bool
}

// ToDOT converts a canvas to Graphviz DOT. Nodes are emitted in insertion
// order, named groups become clusters, and every connection becomes an edge
// between the owning nodes with the anchor ids as tail and head labels. The
// cursor edge is never exported.
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	if opts.Pinned {
		buf.WriteString("  layout=neato;\n")
		buf.WriteString("  splines=true;\n")
	}
	buf.WriteString("\n")

	clustered := map[string]bool{}
	for _, grp := range g.Groups() {
		if grp.Key() == graph.SelectedGroup || grp.Count() == 0 {
			continue
		}
		fmt.Fprintf(&buf, "  subgraph %q {\n", "cluster_"+grp.Key())
		fmt.Fprintf(&buf, "    label=%q;\n", grp.Key())
		if box := grp.Box(); box != nil && box.Color != "" {
			fmt.Fprintf(&buf, "    color=%q;\n", box.Color)
		}
		for _, n := range grp.Nodes() {
			fmt.Fprintf(&buf, "    %q [%s];\n", n.ID(), strings.Join(fmtAttrs(n, opts), ", "))
			clustered[n.ID()] = true
		}
		buf.WriteString("  }\n")
	}

	for _, n := range g.Nodes() {
		if clustered[n.ID()] {
			continue
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID(), strings.Join(fmtAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges().Connections() {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source.Node().ID(), e.Target.Node().ID(), strings.Join(fmtEdgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *graph.Node, detailed bool) string {
	label := n.Label()
	if label == "" {
		label = strings.TrimPrefix(n.ID(), "N-")
	}
	if !detailed {
		return label
	}

	p, d := n.Position(), n.Dimensions()
	parts := []string{
		fmt.Sprintf("pos: %g,%g", p.X, p.Y),
		fmt.Sprintf("size: %gx%g", d.Width, d.Height),
	}
	for _, a := range n.Anchors() {
		parts = append(parts, fmt.Sprintf("%s (%s)", anchorName(a), a.Direction()))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *graph.Node, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
	s := n.Style()
	if s.BgColor != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", s.BgColor))
	}
	if s.BorderColor != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", s.BorderColor))
	}
	if s.TextColor != "" {
		attrs = append(attrs, fmt.Sprintf("fontcolor=%q", s.TextColor))
	}
	if n.Locked() {
		attrs = append(attrs, "penwidth=2")
	}
	if n.Collapsed() {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	if opts.Pinned {
		c := n.Rect().Center()
		attrs = append(attrs,
			fmt.Sprintf("pos=\"%.3f,%.3f!\"", c.X/pointsPerInch, -c.Y/pointsPerInch),
			fmt.Sprintf("width=%.3f", n.Dimensions().Width/pointsPerInch),
			fmt.Sprintf("height=%.3f", n.Dimensions().Height/pointsPerInch),
			"fixedsize=true",
		)
	}
	return attrs
}

func fmtEdgeAttrs(e *graph.Edge) []string {
	attrs := []string{
		fmt.Sprintf("taillabel=%q", anchorName(e.Source)),
		fmt.Sprintf("headlabel=%q", anchorName(e.Target)),
	}
	if e.Style.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Style.Label))
	}
	color := e.Style.Color
	if color == "" {
		color = e.Source.EdgeColor()
	}
	if color != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", color))
	}
	if e.Style.Width > 0 {
		attrs = append(attrs, "penwidth="+strconv.FormatFloat(e.Style.Width, 'g', -1, 64))
	}
	if e.Style.Animated {
		attrs = append(attrs, "style=dashed")
	}
	return attrs
}

func anchorName(a *graph.Anchor) string { return strings.TrimPrefix(a.LocalID(), "A-") }

// RenderSVG renders DOT source to SVG using Graphviz. opts.Pinned selects
// the neato engine so pinned positions are honoured.
func RenderSVG(ctx context.Context, dot string, opts Options) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	if opts.Pinned {
		gv.SetLayout(graphviz.NEATO)
	}

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
