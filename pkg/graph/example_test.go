package graph_test

import (
	"fmt"

	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/graph"
)

func ExampleNode_CreateAnchor() {
	g := graph.New("demo")
	n := g.MustAddNode(graph.NodeConfig{ID: "1"})
	a, _ := n.CreateAnchor("out", geom.Pt(200, 50), geom.Size{Width: 12, Height: 12}, graph.AnchorOptions{Direction: graph.East})

	fmt.Println(a.ID(), a.Offset(), a.Position())
	n.SetPosition(geom.Pt(40, 10))
	fmt.Println(a.Position())
	// Output:
	// A-out/N-1 {206 56} {206 56}
	// {246 66}
}

func ExampleGraph_Connect() {
	g := graph.New("demo")
	src := g.MustAddNode(graph.NodeConfig{ID: "src"})
	dst := g.MustAddNode(graph.NodeConfig{ID: "dst"})
	out, _ := src.CreateAnchor("out", geom.Point{}, geom.Size{}, graph.AnchorOptions{Type: graph.Output})
	in, _ := dst.CreateAnchor("in", geom.Point{}, geom.Size{}, graph.AnchorOptions{Type: graph.Input})

	g.Edges().On(func(ev graph.EdgeEvent) {
		fmt.Println(ev.Kind, ev.Edge.Source.ID(), "->", ev.Edge.Target.ID())
	})
	g.Connect(out, in, graph.EdgeStyle{})
	g.Connect(in, out, graph.EdgeStyle{}) // already connected
	fmt.Println(g.Edges().Count(), out.IsConnected(in), in.IsConnected(out))
	g.Disconnect(out, in)
	// Output:
	// connection A-out/N-src -> A-in/N-dst
	// 1 true true
	// disconnection A-out/N-src -> A-in/N-dst
}
