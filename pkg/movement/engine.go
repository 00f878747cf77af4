package movement

import (
	"math"
	"time"

	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/graph"
	"github.com/matzehuels/nodecanvas/pkg/observability"
)

// DefaultGroupBuffer is the distance kept between a clamped node and the
// edges of its group box.
const DefaultGroupBuffer = 10.0

// Options configures an [Engine].
type Options struct {
	// Snap is the grid size drag deltas are floored to. 0 disables snapping.
	Snap float64
	// Buffer is the inset from a group box applied when clamping. 0 selects
	// DefaultGroupBuffer; use a negative value for no inset.
	Buffer float64
	// Scheduler provides animation frames. Nil selects a ManualScheduler.
	Scheduler Scheduler
	// Hooks receives drag events. Nil selects observability.Movement() at
	// the time of each event.
	Hooks observability.MovementHooks
}

// Engine moves groups of nodes by the cursor.
type Engine struct {
	graph  *graph.Graph
	snap   float64
	buffer float64
	sched  Scheduler
	hooks  observability.MovementHooks
	active *Drag
}

// NewEngine creates an engine for g.
func NewEngine(g *graph.Graph, opts Options) *Engine {
	buffer := opts.Buffer
	switch {
	case buffer == 0:
		buffer = DefaultGroupBuffer
	case buffer < 0:
		buffer = 0
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = NewManualScheduler()
	}
	return &Engine{graph: g, snap: math.Max(opts.Snap, 0), buffer: buffer, sched: sched, hooks: opts.Hooks}
}

func (e *Engine) Graph() *graph.Graph  { return e.graph }
func (e *Engine) Snap() float64        { return e.snap }
func (e *Engine) SetSnap(snap float64) { e.snap = math.Max(snap, 0) }
func (e *Engine) Buffer() float64      { return e.buffer }
func (e *Engine) Scheduler() Scheduler { return e.sched }
func (e *Engine) Dragging() bool       { return e.active != nil }

func (e *Engine) movementHooks() observability.MovementHooks {
	if e.hooks != nil {
		return e.hooks
	}
	return observability.Movement()
}

// Active returns the drag in progress, or nil.
func (e *Engine) Active() *Drag { return e.active }

// Start begins dragging the nodes of group. It records the cursor position
// and the start position of every unlocked member, and schedules the first
// frame. A drag already in progress is stopped first.
//
// An unknown or empty group is not an error; its frames simply move nothing.
func (e *Engine) Start(group string) *Drag {
	if e.active != nil {
		e.active.Stop()
	}
	d := &Drag{
		engine:        e,
		group:         group,
		initialCursor: e.graph.Cursor(),
		initial:       make(map[string]geom.Point),
		started:       time.Now(),
		active:        true,
	}
	if grp, ok := e.graph.Group(group); ok {
		for _, n := range grp.Nodes() {
			if n.Locked() {
				continue
			}
			d.nodes = append(d.nodes, n)
			d.initial[n.ID()] = n.Position()
			n.SetMoving(true)
		}
	}
	e.active = d
	e.movementHooks().OnDragStart(group, len(d.nodes))
	d.cancel = e.sched.Schedule(d.tick)
	return d
}

// Stop ends the drag in progress, if any.
func (e *Engine) Stop() {
	if e.active != nil {
		e.active.Stop()
	}
}

// Nudge moves every unlocked node of group by delta at once, under the same
// snap and clamp rules as a drag frame.
func (e *Engine) Nudge(group string, delta geom.Point) int {
	grp, ok := e.graph.Group(group)
	if !ok {
		return 0
	}
	moved := 0
	delta = SnapDelta(delta, e.snap)
	for _, n := range grp.Nodes() {
		if n.Locked() {
			continue
		}
		n.SetPosition(e.target(group, n, n.Position(), delta))
		moved++
	}
	return moved
}

// target is start+delta, clamped to the node's group box when the selection
// is being dragged and the node's own group has a box.
func (e *Engine) target(group string, n *graph.Node, start, delta geom.Point) geom.Point {
	p := start.Add(delta)
	if group != graph.SelectedGroup || n.Group() == "" {
		return p
	}
	grp, ok := e.graph.Group(n.Group())
	if !ok || grp.Box() == nil {
		return p
	}
	return ClampToBox(p, n.Dimensions(), grp.Box().Rect(), e.buffer)
}

// SnapDelta floors both components of d to a multiple of snap. A
// non-positive snap returns d unchanged.
func SnapDelta(d geom.Point, snap float64) geom.Point {
	if snap <= 0 {
		return d
	}
	return geom.Point{
		X: math.Floor(d.X/snap) * snap,
		Y: math.Floor(d.Y/snap) * snap,
	}
}

// ClampToBox limits a node position so the node stays inside box, at least
// buffer away from every edge. A node too large to fit with the buffer on
// both sides is pinned buffer away from the box's top-left edges and
// overhangs the far edges.
func ClampToBox(p geom.Point, size geom.Size, box geom.Rect, buffer float64) geom.Point {
	return geom.Point{
		X: geom.Clamp(p.X, box.X+buffer, box.X+box.Width-size.Width-buffer),
		Y: geom.Clamp(p.Y, box.Y+buffer, box.Y+box.Height-size.Height-buffer),
	}
}

// Drag is a drag in progress. It stays active until [Drag.Stop].
type Drag struct {
	engine        *Engine
	group         string
	initialCursor geom.Point
	initial       map[string]geom.Point
	nodes         []*graph.Node
	cancel        func()
	active        bool
	frames        int
	started       time.Time
}

func (d *Drag) Group() string             { return d.group }
func (d *Drag) Active() bool              { return d.active }
func (d *Drag) Frames() int               { return d.frames }
func (d *Drag) InitialCursor() geom.Point { return d.initialCursor }
func (d *Drag) Nodes() []*graph.Node      { return d.nodes }

// InitialPosition returns where node id was when the drag started.
func (d *Drag) InitialPosition(id string) (geom.Point, bool) {
	p, ok := d.initial[graph.NodeKey(id)]
	return p, ok
}

// Stop cancels the pending frame and ends the drag. Node positions stay
// where the last frame put them.
func (d *Drag) Stop() {
	if !d.active {
		return
	}
	d.active = false
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	for _, n := range d.nodes {
		n.SetMoving(false)
	}
	if d.engine.active == d {
		d.engine.active = nil
	}
	d.engine.movementHooks().OnDragEnd(d.group, d.frames, time.Since(d.started))
}

// tick applies the current cursor delta and re-arms for the next frame.
func (d *Drag) tick() {
	if !d.active {
		return
	}
	d.Apply()
	d.frames++
	d.cancel = d.engine.sched.Schedule(d.tick)
}

// Apply moves the dragged nodes to follow the current cursor immediately,
// without waiting for the next frame. It does nothing once the drag stopped.
func (d *Drag) Apply() {
	if !d.active {
		return
	}
	e := d.engine
	delta := SnapDelta(e.graph.Cursor().Sub(d.initialCursor), e.snap)
	for _, n := range d.nodes {
		n.SetPosition(e.target(d.group, n, d.initial[n.ID()], delta))
	}
}
