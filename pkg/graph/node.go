package graph

import (
	"slices"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/store"
)

// Node defaults applied by [NewNode] when a config leaves them unset.
const (
	DefaultNodeWidth  = 200.0
	DefaultNodeHeight = 100.0
	DefaultZIndex     = 2
)

// Style holds rendering references for a node. The canvas core stores them
// verbatim and never interprets them.
type Style struct {
	BgColor      string  `json:"bgColor,omitempty" yaml:"bgColor,omitempty"`
	BorderColor  string  `json:"borderColor,omitempty" yaml:"borderColor,omitempty"`
	TextColor    string  `json:"textColor,omitempty" yaml:"textColor,omitempty"`
	BorderRadius float64 `json:"borderRadius,omitempty" yaml:"borderRadius,omitempty"`
}

// NodeConfig describes a node to create. Zero values select the defaults:
// 200x100 dimensions (height follows width when only width is set), zIndex 2,
// rotation 0 and all flags off.
type NodeConfig struct {
	ID        string
	Position  geom.Point
	Width     float64
	Height    float64
	Rotation  float64
	ZIndex    int
	Group     string
	Label     string
	Locked    bool
	Resizable bool
	Editable  bool
	Collapsed bool
	Style     Style
}

type positionListener struct {
	id int
	fn func(geom.Point)
}

// Node is a movable rectangle on the canvas that owns a set of anchors.
//
// Position writes go through [Node.SetPosition], which notifies every
// position listener before returning; anchors rely on this to stay in sync.
type Node struct {
	id         string
	position   geom.Point
	dimensions geom.Size
	rotation   float64
	zIndex     int
	group      string
	label      string
	style      Style

	locked    bool
	resizable bool
	editable  bool
	collapsed bool

	moving   bool
	resizing bool
	rotating bool

	anchors   *store.Store[string, *Anchor]
	listeners []positionListener
	nextID    int

	// graph is nil for nodes created outside a Graph.
	graph *Graph
}

// NewNode creates a standalone node from cfg. The id is canonicalised to the
// "N-<id>" form; an empty id is rejected.
func NewNode(cfg NodeConfig) (*Node, error) {
	if err := errors.ValidateID(errors.ErrCodeInvalidNode, cfg.ID); err != nil {
		return nil, err
	}
	w, h := cfg.Width, cfg.Height
	switch {
	case w <= 0 && h <= 0:
		w, h = DefaultNodeWidth, DefaultNodeHeight
	case w <= 0:
		w = DefaultNodeWidth
	case h <= 0:
		h = w
	}
	z := cfg.ZIndex
	if z == 0 {
		z = DefaultZIndex
	}
	return &Node{
		id:         NodeKey(cfg.ID),
		position:   cfg.Position,
		dimensions: geom.Size{Width: w, Height: h},
		rotation:   cfg.Rotation,
		zIndex:     z,
		group:      cfg.Group,
		label:      cfg.Label,
		style:      cfg.Style,
		locked:     cfg.Locked,
		resizable:  cfg.Resizable,
		editable:   cfg.Editable,
		collapsed:  cfg.Collapsed,
		anchors:    store.New[string, *Anchor](),
	}, nil
}

func (n *Node) ID() string                { return n.id }
func (n *Node) Position() geom.Point      { return n.position }
func (n *Node) Dimensions() geom.Size     { return n.dimensions }
func (n *Node) Rotation() float64         { return n.rotation }
func (n *Node) ZIndex() int               { return n.zIndex }
func (n *Node) Group() string             { return n.group }
func (n *Node) Label() string             { return n.label }
func (n *Node) Style() Style              { return n.style }
func (n *Node) Locked() bool              { return n.locked }
func (n *Node) Resizable() bool           { return n.resizable }
func (n *Node) Editable() bool            { return n.editable }
func (n *Node) Collapsed() bool           { return n.collapsed }
func (n *Node) Moving() bool              { return n.moving }
func (n *Node) Resizing() bool            { return n.resizing }
func (n *Node) Rotating() bool            { return n.rotating }
func (n *Node) Rect() geom.Rect           { return geom.RectAt(n.position, n.dimensions) }
func (n *Node) Anchors() []*Anchor        { return n.anchors.All() }
func (n *Node) AnchorCount() int          { return n.anchors.Count() }
func (n *Node) SetLabel(label string)     { n.label = label }
func (n *Node) SetStyle(s Style)          { n.style = s }
func (n *Node) SetLocked(locked bool)     { n.locked = locked }
func (n *Node) SetZIndex(z int)           { n.zIndex = z }
func (n *Node) SetCollapsed(c bool)       { n.collapsed = c }
func (n *Node) SetMoving(moving bool)     { n.moving = moving }
func (n *Node) SetResizing(resizing bool) { n.resizing = resizing }
func (n *Node) SetRotating(rotating bool) { n.rotating = rotating }

// SetPosition moves the node and synchronously notifies position listeners.
func (n *Node) SetPosition(p geom.Point) {
	n.position = p
	for _, l := range slices.Clone(n.listeners) {
		l.fn(p)
	}
}

// MoveBy translates the node by d.
func (n *Node) MoveBy(d geom.Point) { n.SetPosition(n.position.Add(d)) }

// SetDimensions resizes the node. Non-positive values are ignored.
func (n *Node) SetDimensions(s geom.Size) {
	if s.Width > 0 {
		n.dimensions.Width = s.Width
	}
	if s.Height > 0 {
		n.dimensions.Height = s.Height
	}
}

// SetRotation sets the rotation in degrees.
func (n *Node) SetRotation(deg float64) { n.rotation = deg }

// SetGroup changes the node's group key. Inside a graph, use
// [Graph.AddToGroup] so the group's member list follows.
func (n *Node) SetGroup(group string) { n.group = group }

// OnPositionChange registers fn to run after every position write and
// returns a function that removes it.
func (n *Node) OnPositionChange(fn func(geom.Point)) (unsubscribe func()) {
	n.nextID++
	id := n.nextID
	n.listeners = append(n.listeners, positionListener{id: id, fn: fn})
	return func() {
		n.listeners = slices.DeleteFunc(n.listeners, func(l positionListener) bool { return l.id == id })
	}
}

// Anchor looks up an anchor by local ("out", "A-out") or graph-wide id.
func (n *Node) Anchor(id string) (*Anchor, bool) {
	return n.anchors.Get(anchorLocalKey(id))
}

// CreateAnchor attaches a new anchor centered on the screen point at.
// The initial offset is at - position + size/2, with at first converted to
// graph space through the owning graph's transform.
func (n *Node) CreateAnchor(id string, at geom.Point, size geom.Size, opts AnchorOptions) (*Anchor, error) {
	if err := errors.ValidateID(errors.ErrCodeInvalidAnchor, id); err != nil {
		return nil, err
	}
	local := anchorLocalKey(id)
	if n.anchors.Has(local) {
		return nil, errors.New(errors.ErrCodeInvalidAnchor, "anchor %s already exists on %s", local, n.id)
	}
	if opts.Direction == "" {
		opts.Direction = Self
	}
	graphAt := n.env().transform.ToGraph(at)
	a := &Anchor{
		id:           local + anchorNodeSep + n.id,
		local:        local,
		node:         n,
		offset:       graphAt.Sub(n.position).Add(size.Half()),
		size:         size,
		direction:    opts.Direction,
		typ:          opts.Type,
		dynamic:      opts.Dynamic,
		edgeColor:    opts.EdgeColor,
		edgeRenderer: opts.EdgeRenderer,
		connected:    make(map[string]*Anchor),
	}
	a.position = n.position.Add(a.offset)
	a.unsubscribe = n.OnPositionChange(a.follow)
	n.anchors.Add(a, local)
	return a, nil
}

// DeleteAnchor removes an anchor and every edge attached to it.
func (n *Node) DeleteAnchor(id string) bool {
	a, ok := n.Anchor(id)
	if !ok {
		return false
	}
	if g := n.graph; g != nil {
		g.edges.removeAnchor(a)
		if e, ok := g.CursorEdge(); ok && e.Source == a {
			g.CancelConnection()
		}
	}
	a.detach()
	return n.anchors.Delete(a.local)
}

// RecalculateAnchors re-measures every anchor facing dir. [Self] selects all
// anchors.
func (n *Node) RecalculateAnchors(dir Direction) {
	for _, a := range n.anchors.All() {
		if dir == Self || dir == "" || a.direction == dir {
			a.RecalculatePosition()
		}
	}
}

func (n *Node) env() *environment {
	if n.graph != nil {
		return &n.graph.env
	}
	return &detachedEnv
}
