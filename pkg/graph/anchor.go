package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/nodecanvas/pkg/geom"
)

// Direction is the side of a node an anchor faces.
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
	// Self is the default facing. As a filter it matches every direction.
	Self Direction = "self"
)

// ParseDirection converts a string to a Direction. The empty string maps to
// [Self].
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return Self, nil
	case North, South, East, West, Self:
		return d, nil
	default:
		return "", fmt.Errorf("invalid direction %q", s)
	}
}

// nudge is the half-extent shift toward the facing side applied after an
// anchor is re-measured.
func (d Direction) nudge(size geom.Size) geom.Point {
	switch d {
	case North:
		return geom.Pt(0, -size.Height/2)
	case South:
		return geom.Pt(0, size.Height/2)
	case East:
		return geom.Pt(size.Width/2, 0)
	case West:
		return geom.Pt(-size.Width/2, 0)
	default:
		return geom.Point{}
	}
}

// AnchorType restricts which anchors may connect. Untyped anchors connect to
// anything.
type AnchorType string

const (
	Untyped AnchorType = ""
	Input   AnchorType = "input"
	Output  AnchorType = "output"
)

// ParseAnchorType converts a string to an AnchorType. The empty string and
// "untyped" map to [Untyped].
func ParseAnchorType(s string) (AnchorType, error) {
	switch t := AnchorType(strings.ToLower(strings.TrimSpace(s))); t {
	case Untyped, "untyped":
		return Untyped, nil
	case Input, Output:
		return t, nil
	default:
		return "", fmt.Errorf("invalid anchor type %q", s)
	}
}

// AnchorOptions carries the optional anchor settings.
type AnchorOptions struct {
	Direction    Direction
	Type         AnchorType
	Dynamic      bool
	EdgeColor    string
	EdgeRenderer string
}

// Anchor is a connection point on a node.
//
// Its absolute position is node.Position() + Offset(). The anchor follows its
// node through a position listener registered at creation and removed when
// the anchor is deleted.
type Anchor struct {
	id           string
	local        string
	node         *Node
	offset       geom.Point
	position     geom.Point
	size         geom.Size
	direction    Direction
	typ          AnchorType
	dynamic      bool
	mounted      bool
	edgeColor    string
	edgeRenderer string

	connected   map[string]*Anchor
	unsubscribe func()
}

// ID returns the graph-wide id "A-<id>/N-<node>".
func (a *Anchor) ID() string { return a.id }

// LocalID returns the id within the owning node, "A-<id>".
func (a *Anchor) LocalID() string      { return a.local }
func (a *Anchor) Node() *Node          { return a.node }
func (a *Anchor) Offset() geom.Point   { return a.offset }
func (a *Anchor) Position() geom.Point { return a.position }
func (a *Anchor) Size() geom.Size      { return a.size }
func (a *Anchor) Direction() Direction { return a.direction }
func (a *Anchor) Type() AnchorType     { return a.typ }
func (a *Anchor) Dynamic() bool        { return a.dynamic }
func (a *Anchor) Mounted() bool        { return a.mounted }
func (a *Anchor) EdgeColor() string    { return a.edgeColor }
func (a *Anchor) EdgeRenderer() string { return a.edgeRenderer }
func (a *Anchor) Mount()               { a.mounted = true }
func (a *Anchor) Unmount()             { a.mounted = false }

// SetEdgeColor overrides the color of edges drawn from this anchor.
func (a *Anchor) SetEdgeColor(c string) { a.edgeColor = c }

// Moving reports whether the owning node is being moved, resized or rotated.
func (a *Anchor) Moving() bool {
	if a.node == nil {
		return false
	}
	return a.node.moving || a.node.resizing || a.node.rotating
}

// Connected returns the anchors this one shares an edge with, sorted by id.
func (a *Anchor) Connected() []*Anchor {
	out := make([]*Anchor, 0, len(a.connected))
	for _, c := range a.connected {
		out = append(out, c)
	}
	slices.SortFunc(out, func(x, y *Anchor) int { return strings.Compare(x.id, y.id) })
	return out
}

// IsConnected reports whether a and other share an edge.
func (a *Anchor) IsConnected(other *Anchor) bool {
	if other == nil {
		return false
	}
	_, ok := a.connected[other.id]
	return ok
}

// CanConnect reports whether an edge from a to other is allowed: never to
// itself or another anchor on the same node, and typed anchors only pair an
// input with an output.
func (a *Anchor) CanConnect(other *Anchor) bool {
	if other == nil || other == a || a.node == other.node {
		return false
	}
	if a.typ == Untyped || other.typ == Untyped {
		return true
	}
	return a.typ != other.typ
}

// RecalculatePosition corrects the offset from the rendered bounding box.
//
// The box is looked up by anchor id through the graph's bounds accessor,
// converted to graph space, and its center plus a half-extent nudge toward
// the anchor's facing becomes the new position. Missing bounds leave the
// anchor unchanged.
func (a *Anchor) RecalculatePosition() {
	if a.node == nil {
		return
	}
	env := a.node.env()
	if env.bounds == nil {
		return
	}
	box, ok := env.bounds(a.id)
	if !ok {
		return
	}
	r := env.transform.RectToGraph(box)
	measured := r.Center().Add(a.direction.nudge(r.Size()))
	a.offset = a.offset.Add(measured.Sub(a.position))
	a.position = a.node.position.Add(a.offset)
}

func (a *Anchor) follow(p geom.Point) { a.position = p.Add(a.offset) }

func (a *Anchor) link(other *Anchor) {
	a.connected[other.id] = other
	other.connected[a.id] = a
}

func (a *Anchor) unlink(other *Anchor) {
	delete(a.connected, other.id)
	delete(other.connected, a.id)
}

// detach stops following the node. The anchor keeps its last position.
func (a *Anchor) detach() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	a.mounted = false
}
