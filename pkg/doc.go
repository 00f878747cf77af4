// Package pkg provides the core libraries of nodecanvas, a headless node-graph
// canvas engine.
//
// # Overview
//
// A canvas holds nodes, the anchors placed on them and the edges that connect
// anchors. Nodes are dragged as groups, snapped to a grid and kept inside
// their group's box. The pkg directory is organized into four areas:
//
//  1. Model - geometry, the entity graph and its keyed stores
//  2. Interaction - the movement engine and the viewport transform
//  3. Persistence - snapshots, storage sinks and the SQL service
//  4. Surfaces - the HTTP API and DOT/SVG rendering
//
// # Architecture
//
// The typical flow through nodecanvas:
//
//	diagram file / storage sink
//	         ↓
//	    [graph] package (restore snapshot)
//	         ↓
//	    [movement] package (drag, nudge, frame loop)
//	         ↓
//	    [persist] package (save snapshot)
//	         ↓
//	    JSON / YAML / DOT / SVG / PDF / PNG output
//
// # Quick Start
//
// Build a canvas, connect two nodes and drag the selection:
//
//	g := graph.New("app")
//	api := g.MustAddNode(graph.NodeConfig{ID: "api"})
//	db := g.MustAddNode(graph.NodeConfig{ID: "db", Position: geom.Pt(400, 0)})
//	out, _ := api.CreateAnchor("out", geom.Pt(194, 44), geom.Size{Width: 12, Height: 12}, graph.AnchorOptions{Type: graph.Output})
//	in, _ := db.CreateAnchor("in", geom.Pt(394, 44), geom.Size{Width: 12, Height: 12}, graph.AnchorOptions{Type: graph.Input})
//	g.Connect(out, in, graph.EdgeStyle{Label: "queries"})
//
//	sched := movement.NewManualScheduler()
//	e := movement.NewEngine(g, movement.Options{Snap: 10, Scheduler: sched})
//	g.Select(api)
//	d := e.Start(graph.SelectedGroup)
//	g.SetCursor(geom.Pt(35, 12))
//	sched.Step()
//	d.Stop()
//
// # Main Packages
//
// ## Model
//
// [geom] - Points, sizes and rectangles in canvas coordinates.
//
// [store] - Insertion-ordered keyed stores with change notification.
//
// [graph] - Nodes, anchors, edges and groups, plus JSON/YAML snapshots.
//
// ## Interaction
//
// [movement] - Drag engine, snapping and box clamping, frame schedulers and
// the single-goroutine [movement.Loop].
//
// [viewport] - Pan and zoom between screen and canvas coordinates.
//
// ## Persistence
//
// [persist] - Storage sinks for diagrams: file, Redis, MongoDB, SQLite and
// multi-backend fan-out.
//
// [db] - The query/transaction service behind the SQL sink.
//
// [config] - TOML configuration with environment overrides.
//
// ## Surfaces
//
// [server] - HTTP API driving a shared canvas through the movement loop.
//
// [render/nodelink] - Graphviz DOT export and SVG rendering.
//
// [render] - SVG to PDF/PNG conversion.
//
// ## Shared
//
// [errors] - Coded errors and name validation.
//
// [observability] - Hooks for graph, movement and storage events.
//
// # Testing
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/movement/...     # Specific package
//	go test -run Example ./pkg/... # Examples only
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/geom
// [store]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/store
// [graph]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/graph
// [movement]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/movement
// [movement.Loop]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/movement#Loop
// [viewport]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/viewport
// [persist]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/persist
// [db]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/db
// [config]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/config
// [server]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/server
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/render/nodelink
// [render]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/render
// [errors]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/nodecanvas/pkg/observability
package pkg
