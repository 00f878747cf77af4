package nodelink_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/graph"
	"github.com/matzehuels/nodecanvas/pkg/render/nodelink"
)

func ExampleToDOT() {
	g := graph.New("example")
	app := g.MustAddNode(graph.NodeConfig{ID: "app"})
	db := g.MustAddNode(graph.NodeConfig{ID: "db", Position: geom.Pt(400, 0)})
	out, _ := app.CreateAnchor("out", geom.Pt(200, 50), geom.Size{}, graph.AnchorOptions{})
	in, _ := db.CreateAnchor("in", geom.Pt(400, 50), geom.Size{}, graph.AnchorOptions{})
	_, _, _ = g.Connect(out, in, graph.EdgeStyle{})

	dot := nodelink.ToDOT(g, nodelink.Options{})
	for _, line := range strings.Split(dot, "\n") {
		if strings.Contains(line, "->") {
			fmt.Println(strings.TrimSpace(line))
		}
	}
	// Output:
	// "N-app" -> "N-db" [taillabel="out", headlabel="in"];
}
