// Package viewport converts between screen space and graph space.
//
// The forward transform applied by the rendering layer is
//
//	screen = Origin + Translation + graph*Scale
//
// Origin is the top-left of the graph container on screen, Translation is the
// pan offset and Scale the zoom factor. [Transform.ToGraph] is the exact
// inverse of [Transform.ToScreen] up to floating-point rounding.
package viewport

import (
	"math"

	"github.com/matzehuels/nodecanvas/pkg/geom"
)

// Zoom limits applied by ZoomAt and Fit.
const (
	MinScale = 0.2
	MaxScale = 3.0
)

// Transform is the graph's current pan/zoom state.
type Transform struct {
	Origin      geom.Point `json:"origin" yaml:"origin"`
	Translation geom.Point `json:"translation" yaml:"translation"`
	Scale       float64    `json:"scale" yaml:"scale"`
}

// Identity returns a transform that maps graph space onto screen space unchanged.
func Identity() Transform { return Transform{Scale: 1} }

func (t Transform) scale() float64 {
	if t.Scale == 0 {
		return 1
	}
	return t.Scale
}

// ToGraph converts a screen point to graph coordinates.
func (t Transform) ToGraph(p geom.Point) geom.Point {
	s := t.scale()
	return geom.Point{
		X: (p.X - t.Origin.X - t.Translation.X) / s,
		Y: (p.Y - t.Origin.Y - t.Translation.Y) / s,
	}
}

// ToScreen converts a graph point to screen coordinates.
func (t Transform) ToScreen(p geom.Point) geom.Point {
	s := t.scale()
	return geom.Point{
		X: p.X*s + t.Translation.X + t.Origin.X,
		Y: p.Y*s + t.Translation.Y + t.Origin.Y,
	}
}

// RectToGraph converts a screen rectangle (e.g. a rendered bounding box) to
// graph coordinates.
func (t Transform) RectToGraph(r geom.Rect) geom.Rect {
	s := t.scale()
	o := t.ToGraph(r.Origin())
	return geom.Rect{X: o.X, Y: o.Y, Width: r.Width / s, Height: r.Height / s}
}

// RectToScreen converts a graph rectangle to screen coordinates.
func (t Transform) RectToScreen(r geom.Rect) geom.Rect {
	s := t.scale()
	o := t.ToScreen(r.Origin())
	return geom.Rect{X: o.X, Y: o.Y, Width: r.Width * s, Height: r.Height * s}
}

// Center returns the graph point currently shown at the middle of a
// viewport of the given screen size.
func (t Transform) Center(view geom.Size) geom.Point {
	return t.ToGraph(t.Origin.Add(view.Half()))
}

// CenterOn returns a copy of t panned so that the graph point p sits in the
// middle of the viewport. Scale is preserved.
func (t Transform) CenterOn(p geom.Point, view geom.Size) Transform {
	s := t.scale()
	half := view.Half()
	t.Translation = geom.Point{X: half.X - p.X*s, Y: half.Y - p.Y*s}
	return t
}

// ZoomAt multiplies the scale by factor while keeping the screen point
// anchor fixed. The resulting scale is clamped to [MinScale, MaxScale].
func (t Transform) ZoomAt(anchor geom.Point, factor float64) Transform {
	before := t.ToGraph(anchor)
	t.Scale = geom.Clamp(t.scale()*factor, MinScale, MaxScale)
	after := t.ToScreen(before)
	t.Translation = t.Translation.Add(anchor.Sub(after))
	return t
}

// Fit returns a transform that shows bounds in full inside a viewport of the
// given size, leaving padding screen units on each side, centered.
// An empty bounds only recenters.
func (t Transform) Fit(bounds geom.Rect, view geom.Size, padding float64) Transform {
	if bounds.Empty() {
		return t.CenterOn(bounds.Origin(), view)
	}
	availW := math.Max(view.Width-2*padding, 1)
	availH := math.Max(view.Height-2*padding, 1)
	t.Scale = geom.Clamp(math.Min(availW/bounds.Width, availH/bounds.Height), MinScale, MaxScale)
	return t.CenterOn(bounds.Center(), view)
}
