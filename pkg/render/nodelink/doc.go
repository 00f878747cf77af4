// Package nodelink renders canvases as node-link diagrams.
//
// # Overview
//
// This package writes a [graph.Graph] as Graphviz DOT, where nodes appear as
// boxes and every connection is an arrow between the nodes that own its two
// anchors. Named groups are drawn as clusters.
//
// # Usage
//
// Convert a canvas to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot, nodelink.Options{})
//
// For PDF or PNG output, pass the SVG to [render.ToPDF] or [render.ToPNG].
//
// # Options
//
//   - Detailed: labels include position, size and anchors
//   - Pinned: nodes stay at their canvas positions (neato layout)
//
// Without Pinned, Graphviz computes its own left-to-right layout and the
// canvas positions are only informational.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
//
// [render.ToPDF]: github.com/matzehuels/nodecanvas/pkg/render.ToPDF
// [render.ToPNG]: github.com/matzehuels/nodecanvas/pkg/render.ToPNG
package nodelink
