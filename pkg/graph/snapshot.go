package graph

import (
	"fmt"

	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/viewport"
)

// =============================================================================
// Snapshot - Canvas Serialization Format
// =============================================================================

// Snapshot is the serialization format of a canvas. Node and anchor stores
// are flattened to sequences in insertion order and rectangles are reduced to
// plain {x, y, width, height} records.
//
// The format round-trips: Restore(TakeSnapshot(g)) reproduces every node,
// anchor, edge and group of g with identical ids, offsets and positions. The
// selection and any in-progress connection are not part of it.
type Snapshot struct {
	ID        string             `json:"id" yaml:"id"`
	Transform viewport.Transform `json:"transform" yaml:"transform"`
	Nodes     []NodeRecord       `json:"nodes" yaml:"nodes"`
	Edges     []EdgeRecord       `json:"edges" yaml:"edges"`
	Groups    []GroupRecord      `json:"groups,omitempty" yaml:"groups,omitempty"`
}

// NodeRecord is the serialized form of a [Node].
type NodeRecord struct {
	ID         string         `json:"id" yaml:"id"`
	Label      string         `json:"label,omitempty" yaml:"label,omitempty"`
	Position   geom.Point     `json:"position" yaml:"position"`
	Dimensions geom.Size      `json:"dimensions" yaml:"dimensions"`
	Rotation   float64        `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	ZIndex     int            `json:"zIndex" yaml:"zIndex"`
	Group      string         `json:"group,omitempty" yaml:"group,omitempty"`
	Locked     bool           `json:"locked,omitempty" yaml:"locked,omitempty"`
	Resizable  bool           `json:"resizable,omitempty" yaml:"resizable,omitempty"`
	Editable   bool           `json:"editable,omitempty" yaml:"editable,omitempty"`
	Collapsed  bool           `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
	Style      Style          `json:"style,omitzero" yaml:"style,omitempty"`
	Anchors    []AnchorRecord `json:"anchors,omitempty" yaml:"anchors,omitempty"`
}

// AnchorRecord is the serialized form of an [Anchor]. Position is derived
// from the node position and offset and Connected from the edge list; both
// are written for readers of the format and ignored by [Restore].
type AnchorRecord struct {
	ID           string     `json:"id" yaml:"id"`
	Offset       geom.Point `json:"offset" yaml:"offset"`
	Position     geom.Point `json:"position" yaml:"position"`
	Dimensions   geom.Size  `json:"dimensions" yaml:"dimensions"`
	Direction    Direction  `json:"direction" yaml:"direction"`
	Type         AnchorType `json:"type,omitempty" yaml:"type,omitempty"`
	Dynamic      bool       `json:"dynamic,omitempty" yaml:"dynamic,omitempty"`
	Mounted      bool       `json:"mounted,omitempty" yaml:"mounted,omitempty"`
	EdgeColor    string     `json:"edgeColor,omitempty" yaml:"edgeColor,omitempty"`
	EdgeRenderer string     `json:"edgeRenderer,omitempty" yaml:"edgeRenderer,omitempty"`
	Connected    []string   `json:"connected,omitempty" yaml:"connected,omitempty"`
}

// EdgeRecord is the serialized form of an [Edge]. Source and Target are
// graph-wide anchor ids.
type EdgeRecord struct {
	Source string    `json:"source" yaml:"source"`
	Target string    `json:"target" yaml:"target"`
	Style  EdgeStyle `json:"style,omitzero" yaml:"style,omitempty"`
}

// GroupRecord is the serialized form of a [Group] and its box.
type GroupRecord struct {
	Key      string     `json:"key" yaml:"key"`
	Nodes    []string   `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Box      *geom.Rect `json:"box,omitempty" yaml:"box,omitempty"`
	BoxID    string     `json:"boxId,omitempty" yaml:"boxId,omitempty"`
	BoxColor string     `json:"boxColor,omitempty" yaml:"boxColor,omitempty"`
}

// =============================================================================
// Conversion
// =============================================================================

// TakeSnapshot flattens g into a Snapshot.
func TakeSnapshot(g *Graph) Snapshot {
	s := Snapshot{
		ID:        g.id,
		Transform: g.env.transform,
		Nodes:     make([]NodeRecord, 0, g.nodes.Count()),
		Edges:     []EdgeRecord{},
	}
	for _, n := range g.nodes.All() {
		s.Nodes = append(s.Nodes, nodeRecord(n))
	}
	for _, e := range g.edges.Connections() {
		s.Edges = append(s.Edges, EdgeRecord{Source: e.Source.id, Target: e.Target.id, Style: e.Style})
	}
	for _, grp := range g.groups.All() {
		if grp.key == SelectedGroup {
			continue
		}
		rec := GroupRecord{Key: grp.key}
		for _, n := range grp.nodes.All() {
			rec.Nodes = append(rec.Nodes, n.id)
		}
		if grp.box != nil {
			r := grp.box.Rect()
			rec.Box = &r
			rec.BoxID = grp.box.ID
			rec.BoxColor = grp.box.Color
		}
		s.Groups = append(s.Groups, rec)
	}
	return s
}

// RecordOf returns the serialized form of a single node.
func RecordOf(n *Node) NodeRecord { return nodeRecord(n) }

func nodeRecord(n *Node) NodeRecord {
	rec := NodeRecord{
		ID:         n.id,
		Label:      n.label,
		Position:   n.position,
		Dimensions: n.dimensions,
		Rotation:   n.rotation,
		ZIndex:     n.zIndex,
		Group:      n.group,
		Locked:     n.locked,
		Resizable:  n.resizable,
		Editable:   n.editable,
		Collapsed:  n.collapsed,
		Style:      n.style,
	}
	for _, a := range n.anchors.All() {
		ar := AnchorRecord{
			ID:           a.local,
			Offset:       a.offset,
			Position:     a.position,
			Dimensions:   a.size,
			Direction:    a.direction,
			Type:         a.typ,
			Dynamic:      a.dynamic,
			Mounted:      a.mounted,
			EdgeColor:    a.edgeColor,
			EdgeRenderer: a.edgeRenderer,
		}
		for _, c := range a.Connected() {
			ar.Connected = append(ar.Connected, c.id)
		}
		rec.Anchors = append(rec.Anchors, ar)
	}
	return rec
}

// Restore rebuilds a live graph from s. Anchors get the recorded offsets,
// edges are re-added through the edge store so connected sets come back
// symmetric, and group boxes are re-attached.
func Restore(s Snapshot) (*Graph, error) {
	g := New(s.ID)
	g.env.transform = s.Transform
	for _, rec := range s.Nodes {
		n, err := g.AddNode(NodeConfig{
			ID:        rec.ID,
			Position:  rec.Position,
			Width:     rec.Dimensions.Width,
			Height:    rec.Dimensions.Height,
			Rotation:  rec.Rotation,
			ZIndex:    rec.ZIndex,
			Group:     rec.Group,
			Label:     rec.Label,
			Locked:    rec.Locked,
			Resizable: rec.Resizable,
			Editable:  rec.Editable,
			Collapsed: rec.Collapsed,
			Style:     rec.Style,
		})
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", rec.ID, err)
		}
		// A zero ZIndex in NodeConfig selects the default.
		n.zIndex = rec.ZIndex
		for _, ar := range rec.Anchors {
			a, err := n.CreateAnchor(ar.ID, n.position, ar.Dimensions, AnchorOptions{
				Direction:    ar.Direction,
				Type:         ar.Type,
				Dynamic:      ar.Dynamic,
				EdgeColor:    ar.EdgeColor,
				EdgeRenderer: ar.EdgeRenderer,
			})
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", rec.ID, err)
			}
			a.offset = ar.Offset
			a.position = n.position.Add(ar.Offset)
			a.mounted = ar.Mounted
		}
	}
	for _, er := range s.Edges {
		src, ok := g.Anchor(er.Source)
		if !ok {
			return nil, fmt.Errorf("edge %s -> %s: unknown source anchor", er.Source, er.Target)
		}
		tgt, ok := g.Anchor(er.Target)
		if !ok {
			return nil, fmt.Errorf("edge %s -> %s: unknown target anchor", er.Source, er.Target)
		}
		g.edges.Add(&Edge{Source: src, Target: tgt, Style: er.Style}, PairKey(src, tgt))
	}
	for _, gr := range s.Groups {
		if gr.Key == SelectedGroup {
			continue
		}
		grp := g.EnsureGroup(gr.Key)
		for _, id := range gr.Nodes {
			n, ok := g.Node(id)
			if !ok {
				return nil, fmt.Errorf("group %s: unknown node %s", gr.Key, id)
			}
			if err := g.AddToGroup(n, gr.Key); err != nil {
				return nil, err
			}
		}
		if gr.Box != nil {
			grp.SetBox(&GroupBox{
				ID:         gr.BoxID,
				Position:   gr.Box.Origin(),
				Dimensions: gr.Box.Size(),
				Color:      gr.BoxColor,
			})
		}
	}
	return g, nil
}
