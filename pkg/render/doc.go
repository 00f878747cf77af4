// Package render turns canvases into pictures.
//
// The [nodelink] subpackage writes a canvas as Graphviz DOT and renders it to
// SVG in-process. [ToPDF] and [ToPNG] convert any SVG further using the
// external rsvg-convert tool (from librsvg):
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Pinned: true})
//	svg, err := nodelink.RenderSVG(ctx, dot, nodelink.Options{Pinned: true})
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// [nodelink]: github.com/matzehuels/nodecanvas/pkg/render/nodelink
package render
