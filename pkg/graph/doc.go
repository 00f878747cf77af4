// Package graph is the entity model of a node canvas: nodes, the anchors
// placed on them, the edges connecting anchors, and named groups of nodes.
//
// # Architecture
//
//   - [Node]: geometry (position, dimensions, rotation), flags, style
//     references and an owned anchor store.
//   - [Anchor]: a connection point whose absolute position is always
//     node.Position() + anchor.Offset().
//   - [EdgeStore]: edges keyed by an unordered anchor pair, with symmetric
//     adjacency kept on both anchors.
//   - [Group], [GroupBox]: named node sets and the rectangles that constrain
//     dragging.
//   - [Graph]: the aggregate owning all of the above, the cursor position and
//     the injected bounding-box accessor.
//
// # Position binding
//
// Each anchor subscribes to its node's position-changed notification when it
// is created and unsubscribes when it is deleted. [Node.SetPosition] notifies
// synchronously, so no reader can observe an anchor position that disagrees
// with the latest node position:
//
//	n := g.MustAddNode(graph.NodeConfig{ID: "1", Position: geom.Pt(0, 0)})
//	a, _ := n.CreateAnchor("out", geom.Pt(200, 50), geom.Size{Width: 12, Height: 12}, graph.AnchorOptions{})
//	n.SetPosition(geom.Pt(40, 10))
//	a.Position() // == n.Position().Add(a.Offset())
//
// # Identifiers
//
// Node ids are canonicalised to "N-<id>" and anchor ids to
// "A-<id>/N-<node>". Every lookup accepts raw or canonical ids, so "7" and
// "N-7" name the same node.
//
// # Serialization
//
// [TakeSnapshot] flattens a graph into plain records that round-trip through
// JSON ([Marshal], [Unmarshal]) or YAML ([MarshalYAML], [UnmarshalYAML]);
// [Restore] rebuilds a live graph from a snapshot.
//
// # Concurrency
//
// Nothing in this package is safe for concurrent use. All mutations are
// expected to run on one goroutine; package movement provides a Loop that
// serialises work for callers that need it.
package graph
