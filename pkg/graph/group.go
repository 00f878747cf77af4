package graph

import (
	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/store"
)

// SelectedGroup is the group holding the current selection. Dragging it is
// the only case where member nodes are clamped to their own group's box.
const SelectedGroup = "selected"

// GroupBox is the rectangle that constrains the nodes of a group while they
// are dragged as part of the selection.
type GroupBox struct {
	ID         string
	Position   geom.Point
	Dimensions geom.Size
	Color      string
}

// Rect returns the box as a rectangle.
func (b *GroupBox) Rect() geom.Rect { return geom.RectAt(b.Position, b.Dimensions) }

// Group is a named set of nodes. Membership is a weak reference: deleting a
// group never deletes its nodes, and a node's group field only names the
// group it belongs to.
type Group struct {
	key   string
	nodes *store.Store[string, *Node]
	box   *GroupBox
}

func newGroup(key string) *Group {
	return &Group{key: key, nodes: store.New[string, *Node]()}
}

func (g *Group) Key() string        { return g.key }
func (g *Group) Nodes() []*Node     { return g.nodes.All() }
func (g *Group) Count() int         { return g.nodes.Count() }
func (g *Group) Box() *GroupBox     { return g.box }
func (g *Group) Has(n *Node) bool   { return n != nil && g.nodes.Has(n.id) }
func (g *Group) SetBox(b *GroupBox) { g.box = b }

func (g *Group) add(n *Node)    { g.nodes.Add(n, n.id) }
func (g *Group) remove(n *Node) { g.nodes.Delete(n.id) }
