package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/graph"
	"github.com/matzehuels/nodecanvas/pkg/render"
	"github.com/matzehuels/nodecanvas/pkg/render/nodelink"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPDF = "pdf"
	formatPNG = "png"
)

// validFormats is the set of export formats.
var validFormats = map[string]bool{
	formatDOT: true, formatSVG: true, formatPDF: true, formatPNG: true,
	formatJSON: true, formatYAML: true,
}

// exportOpts holds the flags of the export command.
type exportOpts struct {
	output   string
	formats  []string
	detailed bool
	pinned   bool
	scale    float64
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var formatsStr string
	opts := exportOpts{scale: 2}

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export a diagram as DOT, SVG, PDF, PNG, JSON or YAML",
		Long: `Export a diagram. DOT output needs nothing else; SVG is laid out with
Graphviz; PDF and PNG additionally need rsvg-convert on PATH.

With --pinned nodes keep their canvas positions instead of being laid out.`,
		Example: `  nodecanvas export app.json -f svg,png --pinned
  nodecanvas export app.json -f dot -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return c.runExport(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format, - for stdout) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, pdf, png, json, yaml (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include positions, sizes and anchors in node labels")
	cmd.Flags().BoolVar(&opts.pinned, "pinned", false, "keep canvas positions")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")

	return cmd
}

// parseFormats parses the --format flag. Empty means svg.
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	var out []string
	for f := range strings.SplitSeq(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return errors.New(errors.ErrCodeInvalidInput, "invalid format: %s (must be dot, svg, pdf, png, json or yaml)", f)
		}
	}
	return nil
}

// basePath derives the base output path. An empty output strips the
// extension from input; a known format extension is stripped from output.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func (c *CLI) runExport(ctx context.Context, input string, opts exportOpts) error {
	prog := newProgress(c.Logger)
	g, err := readDiagram(input)
	if err != nil {
		return err
	}
	c.Logger.Debug("loaded diagram", "nodes", g.NodeCount(), "edges", len(g.Edges().Connections()))

	if len(opts.formats) == 1 && opts.output == "-" {
		data, err := exportDiagram(ctx, g, opts.formats[0], opts)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	single := len(opts.formats) == 1 && opts.output != ""
	base := basePath(opts.output, input)

	spin := newSpinner(ctx, os.Stderr, "Exporting "+input)
	spin.Start()
	var written []string
	for _, format := range opts.formats {
		spin.Update(fmt.Sprintf("Exporting %s", format))
		data, err := exportDiagram(ctx, g, format, opts)
		if err != nil {
			spin.StopWithError(fmt.Sprintf("Export %s failed", format))
			return fmt.Errorf("%s: %w", format, err)
		}
		path := base + "." + format
		if single {
			path = opts.output
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			spin.Stop()
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	spin.StopWithSuccess(fmt.Sprintf("Exported %s", input))
	for _, p := range written {
		printFile(p)
	}
	prog.done(fmt.Sprintf("Exported %d file(s)", len(written)))
	return nil
}

// exportDiagram renders g in one format.
func exportDiagram(ctx context.Context, g *graph.Graph, format string, opts exportOpts) ([]byte, error) {
	switch format {
	case formatJSON:
		return graph.Marshal(g)
	case formatYAML:
		return graph.MarshalYAML(g)
	}

	dotOpts := nodelink.Options{Detailed: opts.detailed, Pinned: opts.pinned}
	dot := nodelink.ToDOT(g, dotOpts)
	if format == formatDOT {
		return []byte(dot), nil
	}
	svg, err := nodelink.RenderSVG(ctx, dot, dotOpts)
	if err != nil {
		return nil, err
	}
	switch format {
	case formatSVG:
		return svg, nil
	case formatPDF:
		return render.ToPDF(ctx, svg)
	case formatPNG:
		return render.ToPNG(ctx, svg, opts.scale)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format %s", format)
	}
}
