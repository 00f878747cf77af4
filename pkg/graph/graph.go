package graph

import (
	"github.com/google/uuid"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/observability"
	"github.com/matzehuels/nodecanvas/pkg/store"
	"github.com/matzehuels/nodecanvas/pkg/viewport"
)

// BoundsFunc returns the rendered screen-space rectangle of the element with
// the given id. Returning false means nothing is rendered for it, which is a
// valid state.
type BoundsFunc func(id string) (geom.Rect, bool)

type environment struct {
	bounds    BoundsFunc
	transform viewport.Transform
}

var detachedEnv = environment{transform: viewport.Identity()}

// Graph owns the nodes, edges and groups of one canvas.
type Graph struct {
	id     string
	nodes  *store.Store[string, *Node]
	edges  *EdgeStore
	groups *store.Store[string, *Group]
	cursor geom.Point
	env    environment

	// pending is the in-progress connection's free end, nil when idle.
	pending *Anchor
	hooks   observability.GraphHooks
}

// New creates an empty graph. An empty id is replaced with a random one.
func New(id string) *Graph {
	if id == "" {
		id = uuid.New().String()
	}
	g := &Graph{
		id:     id,
		nodes:  store.New[string, *Node](),
		edges:  NewEdgeStore(),
		groups: store.New[string, *Group](),
		env:    environment{transform: viewport.Identity()},
	}
	g.groups.Add(newGroup(SelectedGroup), SelectedGroup)
	return g
}

// SetHooks routes this graph's node and connection events to h instead of
// the process-wide observability.Graph(). Nil restores the default.
func (g *Graph) SetHooks(h observability.GraphHooks) {
	g.hooks = h
	g.edges.hooks = h
}

func (g *Graph) graphHooks() observability.GraphHooks {
	if g.hooks != nil {
		return g.hooks
	}
	return observability.Graph()
}

func (g *Graph) ID() string                        { return g.id }
func (g *Graph) Edges() *EdgeStore                 { return g.edges }
func (g *Graph) Nodes() []*Node                    { return g.nodes.All() }
func (g *Graph) NodeCount() int                    { return g.nodes.Count() }
func (g *Graph) Cursor() geom.Point                { return g.cursor }
func (g *Graph) SetCursor(p geom.Point)            { g.cursor = p }
func (g *Graph) Transform() viewport.Transform     { return g.env.transform }
func (g *Graph) SetTransform(t viewport.Transform) { g.env.transform = t }

// SetBounds injects the accessor anchors use to measure their rendered box.
func (g *Graph) SetBounds(fn BoundsFunc) { g.env.bounds = fn }

// AddNode creates a node from cfg and adds it to the graph. An empty id is
// replaced with a generated one; an id already in use is an error. A group
// named in cfg is created on demand.
func (g *Graph) AddNode(cfg NodeConfig) (*Node, error) {
	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}
	n, err := NewNode(cfg)
	if err != nil {
		return nil, err
	}
	if g.nodes.Has(n.id) {
		return nil, errors.New(errors.ErrCodeInvalidNode, "duplicate node id %s", n.id)
	}
	n.graph = g
	g.nodes.Add(n, n.id)
	if n.group != "" && n.group != SelectedGroup {
		g.EnsureGroup(n.group).add(n)
	}
	g.graphHooks().OnNodeAdded(n.id)
	return n, nil
}

// MustAddNode is like AddNode but panics on error. It is meant for tests and
// fixed diagrams.
func (g *Graph) MustAddNode(cfg NodeConfig) *Node {
	n, err := g.AddNode(cfg)
	if err != nil {
		panic(err)
	}
	return n
}

// Node looks up a node by raw ("7") or canonical ("N-7") id.
func (g *Graph) Node(id string) (*Node, bool) { return g.nodes.Get(NodeKey(id)) }

// DeleteNode removes a node together with its anchors and their edges, and
// drops it from every group. It reports whether the node existed.
func (g *Graph) DeleteNode(id string) bool {
	n, ok := g.Node(id)
	if !ok {
		return false
	}
	for _, k := range g.edges.MatchNode(n) {
		g.edges.Delete(k)
	}
	if g.pending != nil {
		if e, ok := g.edges.Get(CursorKey()); ok && e.Source.node == n {
			g.CancelConnection()
		}
	}
	for _, a := range n.anchors.All() {
		a.detach()
	}
	n.anchors.Clear()
	for _, grp := range g.groups.All() {
		grp.remove(n)
	}
	n.graph = nil
	g.nodes.Delete(n.id)
	g.graphHooks().OnNodeDeleted(n.id)
	return true
}

// Anchor looks up an anchor by its graph-wide id "A-<id>/N-<node>".
func (g *Graph) Anchor(id string) (*Anchor, bool) {
	local, node, ok := splitAnchorKey(id)
	if !ok {
		return nil, false
	}
	n, ok := g.nodes.Get(node)
	if !ok {
		return nil, false
	}
	return n.anchors.Get(local)
}

// Connect adds an edge between source and target. It returns the stored
// edge and whether it was newly created; connecting an already connected pair
// returns the existing edge. Anchors that may not connect are an error.
func (g *Graph) Connect(source, target *Anchor, style EdgeStyle) (*Edge, bool, error) {
	if source == nil || target == nil {
		return nil, false, errors.New(errors.ErrCodeAnchorNotFound, "connect needs two anchors")
	}
	if !g.owns(source) || !g.owns(target) {
		return nil, false, errors.New(errors.ErrCodeAnchorNotFound, "anchor not in graph %s", g.id)
	}
	if !source.CanConnect(target) {
		return nil, false, errors.New(errors.ErrCodeInvalidAnchor, "cannot connect %s to %s", source.id, target.id)
	}
	if e, ok := g.edges.Fetch(source, target); ok {
		return e, false, nil
	}
	e := &Edge{Source: source, Target: target, Style: style}
	g.edges.Add(e, PairKey(source, target))
	return e, true, nil
}

// Disconnect removes the edge between source and target, if any.
func (g *Graph) Disconnect(source, target *Anchor) bool {
	if source == nil || target == nil {
		return false
	}
	return g.edges.Delete(PairKey(source, target))
}

func (g *Graph) owns(a *Anchor) bool {
	if a.node == nil || a.node.graph != g {
		return false
	}
	got, ok := a.node.anchors.Get(a.local)
	return ok && got == a
}

// Group returns the group named key.
func (g *Graph) Group(key string) (*Group, bool) { return g.groups.Get(key) }

// Groups returns every group, the selection first.
func (g *Graph) Groups() []*Group { return g.groups.All() }

// EnsureGroup returns the group named key, creating it if needed.
func (g *Graph) EnsureGroup(key string) *Group {
	if grp, ok := g.groups.Get(key); ok {
		return grp
	}
	grp := newGroup(key)
	g.groups.Add(grp, key)
	return grp
}

// AddToGroup moves n into the group named key, leaving its previous group.
// Use Select for the selection, which does not change a node's group.
func (g *Graph) AddToGroup(n *Node, key string) error {
	if key == SelectedGroup {
		return errors.New(errors.ErrCodeInvalidInput, "use Select to add %s to the selection", n.id)
	}
	if n.group != "" {
		if prev, ok := g.groups.Get(n.group); ok {
			prev.remove(n)
		}
	}
	n.group = key
	if key != "" {
		g.EnsureGroup(key).add(n)
	}
	return nil
}

// RemoveFromGroup clears n's group membership.
func (g *Graph) RemoveFromGroup(n *Node) {
	_ = g.AddToGroup(n, "")
}

// SetGroupBox attaches a bounding box to the group named key, creating the
// group if needed. A nil box removes the constraint.
func (g *Graph) SetGroupBox(key string, box *GroupBox) {
	g.EnsureGroup(key).SetBox(box)
}

// Select adds nodes to the selection.
func (g *Graph) Select(nodes ...*Node) {
	sel := g.selection()
	for _, n := range nodes {
		if n != nil {
			sel.add(n)
		}
	}
}

// Deselect removes nodes from the selection.
func (g *Graph) Deselect(nodes ...*Node) {
	sel := g.selection()
	for _, n := range nodes {
		if n != nil {
			sel.remove(n)
		}
	}
}

// ClearSelection empties the selection.
func (g *Graph) ClearSelection() { g.selection().nodes.Clear() }

// Selected returns the selected nodes in selection order.
func (g *Graph) Selected() []*Node { return g.selection().Nodes() }

func (g *Graph) selection() *Group { return g.EnsureGroup(SelectedGroup) }

// Bounds returns the union of all node rectangles in graph space.
func (g *Graph) Bounds() geom.Rect {
	var r geom.Rect
	for _, n := range g.nodes.All() {
		r = r.Union(n.Rect())
	}
	return r
}

// RecalculateAnchors re-measures the anchors of every node facing dir.
func (g *Graph) RecalculateAnchors(dir Direction) {
	for _, n := range g.nodes.All() {
		n.RecalculateAnchors(dir)
	}
}

// BeginConnection starts an in-progress edge from source to the cursor. It
// replaces any connection already in progress.
func (g *Graph) BeginConnection(source *Anchor) error {
	if source == nil || !g.owns(source) {
		return errors.New(errors.ErrCodeAnchorNotFound, "anchor not in graph %s", g.id)
	}
	g.pending = &Anchor{
		id:        cursorKeyName,
		local:     cursorKeyName,
		position:  g.cursor,
		direction: Self,
		connected: make(map[string]*Anchor),
	}
	g.edges.Add(&Edge{Source: source, Target: g.pending}, CursorKey())
	return nil
}

// UpdateCursorEdge moves the cursor and the free end of the in-progress
// edge to p.
func (g *Graph) UpdateCursorEdge(p geom.Point) {
	g.cursor = p
	if g.pending != nil {
		g.pending.position = p
	}
}

// CursorEdge returns the in-progress edge.
func (g *Graph) CursorEdge() (*Edge, bool) { return g.edges.Get(CursorKey()) }

// CompleteConnection commits the in-progress edge to target. The cursor edge
// is removed whether or not the connection is allowed.
func (g *Graph) CompleteConnection(target *Anchor, style EdgeStyle) (*Edge, bool, error) {
	e, ok := g.CursorEdge()
	if !ok {
		return nil, false, errors.New(errors.ErrCodeInvalidInput, "no connection in progress")
	}
	source := e.Source
	g.CancelConnection()
	return g.Connect(source, target, style)
}

// CancelConnection discards the in-progress edge.
func (g *Graph) CancelConnection() {
	g.edges.Delete(CursorKey())
	g.pending = nil
}
