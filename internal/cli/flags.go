package cli

import (
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/graph"
)

// Node, anchor and group boxes are given on the command line as
// comma-separated key=value lists, e.g.
//
//	--node id=api,x=100,y=40,label=API
//	--anchor node=api,id=out,x=200,y=50,dir=east,type=output
//	--box group=backend,x=0,y=0,w=600,h=400

// parseFields splits "k=v,k=v" into a map. Unknown keys are an error.
func parseFields(spec string, allowed ...string) (map[string]string, error) {
	out := make(map[string]string)
	for part := range strings.SplitSeq(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%q: expected key=value", part)
		}
		k = strings.ToLower(strings.TrimSpace(k))
		if !slices.Contains(allowed, k) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%q: unknown key %q (want one of %s)", spec, k, strings.Join(allowed, ", "))
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}

// fieldFloat reads key from f, returning def when absent.
func fieldFloat(f map[string]string, key string, def float64) (float64, error) {
	v, ok := f[key]
	if !ok || v == "" {
		return def, nil
	}
	x, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s=%q is not a number", key, v)
	}
	return x, nil
}

func fieldBool(f map[string]string, key string) (bool, error) {
	v, ok := f[key]
	if !ok || v == "" {
		return ok, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "%s=%q is not a boolean", key, v)
	}
	return b, nil
}

// fieldPoint reads an x/y pair, each defaulting to zero.
func fieldPoint(f map[string]string) (geom.Point, error) {
	x, err := fieldFloat(f, "x", 0)
	if err != nil {
		return geom.Point{}, err
	}
	y, err := fieldFloat(f, "y", 0)
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Pt(x, y), nil
}

// parseNodeSpec parses a --node value. Width and height default to the
// given size.
func parseNodeSpec(spec string, size geom.Size) (graph.NodeConfig, error) {
	f, err := parseFields(spec, "id", "x", "y", "w", "h", "label", "group", "locked", "z", "bg", "border", "text")
	if err != nil {
		return graph.NodeConfig{}, err
	}
	cfg := graph.NodeConfig{
		ID:    f["id"],
		Label: f["label"],
		Group: f["group"],
		Style: graph.Style{BgColor: f["bg"], BorderColor: f["border"], TextColor: f["text"]},
	}
	if cfg.Position, err = fieldPoint(f); err != nil {
		return cfg, err
	}
	if cfg.Width, err = fieldFloat(f, "w", size.Width); err != nil {
		return cfg, err
	}
	if cfg.Height, err = fieldFloat(f, "h", size.Height); err != nil {
		return cfg, err
	}
	if cfg.Locked, err = fieldBool(f, "locked"); err != nil {
		return cfg, err
	}
	z, err := fieldFloat(f, "z", 0)
	if err != nil {
		return cfg, err
	}
	cfg.ZIndex = int(z)
	return cfg, nil
}

// anchorSpec is a parsed --anchor value.
type anchorSpec struct {
	Node   string
	ID     string
	Offset geom.Point
	Size   geom.Size
	Opts   graph.AnchorOptions
}

func parseAnchorSpec(spec string) (anchorSpec, error) {
	f, err := parseFields(spec, "node", "id", "x", "y", "w", "h", "dir", "type", "dynamic", "color")
	if err != nil {
		return anchorSpec{}, err
	}
	a := anchorSpec{Node: f["node"], ID: f["id"]}
	if a.Node == "" || a.ID == "" {
		return a, errors.New(errors.ErrCodeInvalidAnchor, "%q: anchor needs node and id", spec)
	}
	if a.Offset, err = fieldPoint(f); err != nil {
		return a, err
	}
	if a.Size.Width, err = fieldFloat(f, "w", 12); err != nil {
		return a, err
	}
	if a.Size.Height, err = fieldFloat(f, "h", 12); err != nil {
		return a, err
	}
	if a.Opts.Direction, err = graph.ParseDirection(f["dir"]); err != nil {
		return a, err
	}
	if a.Opts.Type, err = graph.ParseAnchorType(f["type"]); err != nil {
		return a, err
	}
	if a.Opts.Dynamic, err = fieldBool(f, "dynamic"); err != nil {
		return a, err
	}
	a.Opts.EdgeColor = f["color"]
	return a, nil
}

// boxSpec is a parsed --box value.
type boxSpec struct {
	Group string
	Box   graph.GroupBox
}

func parseBoxSpec(spec string) (boxSpec, error) {
	f, err := parseFields(spec, "group", "x", "y", "w", "h", "color")
	if err != nil {
		return boxSpec{}, err
	}
	b := boxSpec{Group: f["group"], Box: graph.GroupBox{ID: f["group"]}}
	if b.Group == "" {
		return b, errors.New(errors.ErrCodeInvalidInput, "%q: box needs a group", spec)
	}
	if b.Box.Position, err = fieldPoint(f); err != nil {
		return b, err
	}
	if b.Box.Dimensions.Width, err = fieldFloat(f, "w", 0); err != nil {
		return b, err
	}
	if b.Box.Dimensions.Height, err = fieldFloat(f, "h", 0); err != nil {
		return b, err
	}
	if b.Box.Dimensions.Width <= 0 || b.Box.Dimensions.Height <= 0 {
		return b, errors.New(errors.ErrCodeInvalidInput, "%q: box needs positive w and h", spec)
	}
	b.Box.Color = f["color"]
	return b, nil
}

// parseDelta parses "dx,dy".
func parseDelta(s string) (geom.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geom.Point{}, errors.New(errors.ErrCodeInvalidInput, "%q: expected dx,dy", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return geom.Point{}, errors.New(errors.ErrCodeInvalidInput, "%q: bad dx", s)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return geom.Point{}, errors.New(errors.ErrCodeInvalidInput, "%q: bad dy", s)
	}
	return geom.Pt(x, y), nil
}
