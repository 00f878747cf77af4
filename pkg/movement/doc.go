// Package movement drags nodes across a canvas.
//
// An [Engine] starts a [Drag] for a named group. The drag records the cursor
// and every member's position at the start; on each animation frame it moves
// the members by the cursor delta since the start, floored to the snap grid.
// While the selection is dragged, members whose own group has a box are
// clamped inside that box, a buffer away from its edges.
//
// Frames come from a [Scheduler]. Each frame re-arms the next one until
// [Drag.Stop] cancels the pending frame directly; no shared flag is polled.
//
//	sched := movement.NewManualScheduler()
//	e := movement.NewEngine(g, movement.Options{Snap: 10, Scheduler: sched})
//	d := e.Start(graph.SelectedGroup)
//	g.SetCursor(geom.Pt(23, -7))
//	sched.Step() // selection moved by (20, -10)
//	d.Stop()
//
// [Loop] is the long-running scheduler: one goroutine that runs frames on a
// ticker and any work handed to [Loop.Do], so a canvas shared with HTTP
// handlers or a TUI is only ever touched from that goroutine.
package movement
