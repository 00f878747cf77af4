package graph

import (
	"testing"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/observability"
)

func TestAddNode(t *testing.T) {
	g := New("g")
	n, err := g.AddNode(NodeConfig{ID: "7"})
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"7", "N-7"} {
		got, ok := g.Node(id)
		if !ok || got != n {
			t.Errorf("Node(%q) = %v, %v", id, got, ok)
		}
	}
	if _, err := g.AddNode(NodeConfig{ID: "N-7"}); !errors.Is(err, errors.ErrCodeInvalidNode) {
		t.Errorf("duplicate AddNode error = %v", err)
	}

	gen, err := g.AddNode(NodeConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if len(gen.ID()) <= len("N-") {
		t.Errorf("generated id = %q", gen.ID())
	}
	if g.NodeCount() != 2 {
		t.Errorf("NodeCount = %d, want 2", g.NodeCount())
	}
}

func TestNewGeneratesID(t *testing.T) {
	if New("").ID() == "" {
		t.Error("New(\"\") left the id empty")
	}
	if New("fixed").ID() != "fixed" {
		t.Error("New did not keep the given id")
	}
}

func TestDeleteNode(t *testing.T) {
	g, a := pairFixture(t)
	g.Connect(a[0], a[2], EdgeStyle{})
	g.Connect(a[1], a[3], EdgeStyle{})
	n1, _ := g.Node("1")
	g.Select(n1)
	if err := g.AddToGroup(n1, "team"); err != nil {
		t.Fatal(err)
	}

	if !g.DeleteNode("1") {
		t.Fatal("DeleteNode returned false")
	}
	if g.DeleteNode("1") {
		t.Error("second DeleteNode returned true")
	}
	if g.Edges().Count() != 0 {
		t.Errorf("edges left: %d", g.Edges().Count())
	}
	if len(a[2].Connected()) != 0 || len(a[3].Connected()) != 0 {
		t.Error("surviving anchors still reference deleted node")
	}
	if len(g.Selected()) != 0 {
		t.Error("deleted node still selected")
	}
	if grp, _ := g.Group("team"); grp.Count() != 0 {
		t.Error("deleted node still in group")
	}
	if _, ok := g.Anchor(a[0].ID()); ok {
		t.Error("anchor of deleted node still resolvable")
	}
}

func TestConnect(t *testing.T) {
	g, a := pairFixture(t)

	e, created, err := g.Connect(a[0], a[2], EdgeStyle{Label: "x"})
	if err != nil || !created {
		t.Fatalf("Connect = %v, %v", created, err)
	}
	again, created, err := g.Connect(a[2], a[0], EdgeStyle{})
	if err != nil || created || again != e {
		t.Errorf("reconnect = %v, %v, %v", again, created, err)
	}
	if _, _, err := g.Connect(a[0], a[1], EdgeStyle{}); !errors.Is(err, errors.ErrCodeInvalidAnchor) {
		t.Errorf("same-node connect error = %v", err)
	}

	other := New("other")
	stray := other.MustAddNode(NodeConfig{ID: "x"})
	sa, _ := stray.CreateAnchor("s", geom.Point{}, geom.Size{}, AnchorOptions{})
	if _, _, err := g.Connect(a[0], sa, EdgeStyle{}); !errors.Is(err, errors.ErrCodeAnchorNotFound) {
		t.Errorf("foreign anchor connect error = %v", err)
	}

	if !g.Disconnect(a[2], a[0]) {
		t.Error("Disconnect returned false")
	}
	if g.Disconnect(a[2], a[0]) {
		t.Error("second Disconnect returned true")
	}
}

func TestAnchorLookup(t *testing.T) {
	g, a := pairFixture(t)
	tests := []struct {
		id     string
		want   *Anchor
		wantOK bool
	}{
		{"A-a/N-1", a[0], true},
		{"b/2", a[3], true},
		{"A-a", nil, false},
		{"A-z/N-1", nil, false},
		{"A-a/N-9", nil, false},
	}
	for _, tt := range tests {
		got, ok := g.Anchor(tt.id)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Anchor(%q) = %v, %v", tt.id, got, ok)
		}
	}
}

func TestGroups(t *testing.T) {
	g := New("g")
	n := g.MustAddNode(NodeConfig{ID: "1", Group: "a"})
	if grp, ok := g.Group("a"); !ok || !grp.Has(n) {
		t.Fatal("group from config not populated")
	}

	if err := g.AddToGroup(n, "b"); err != nil {
		t.Fatal(err)
	}
	ga, _ := g.Group("a")
	gb, _ := g.Group("b")
	if ga.Has(n) || !gb.Has(n) || n.Group() != "b" {
		t.Error("AddToGroup did not move the node")
	}
	if err := g.AddToGroup(n, SelectedGroup); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("AddToGroup(selected) error = %v", err)
	}

	g.SetGroupBox("b", &GroupBox{ID: "box", Dimensions: geom.Size{Width: 10, Height: 10}})
	if gb.Box() == nil || gb.Box().Rect().Width != 10 {
		t.Error("SetGroupBox not applied")
	}

	g.RemoveFromGroup(n)
	if gb.Has(n) || n.Group() != "" {
		t.Error("RemoveFromGroup left membership")
	}
}

func TestSelection(t *testing.T) {
	g := New("g")
	a := g.MustAddNode(NodeConfig{ID: "a", Group: "team"})
	b := g.MustAddNode(NodeConfig{ID: "b"})

	g.Select(a, b, nil)
	if len(g.Selected()) != 2 {
		t.Fatalf("Selected = %d, want 2", len(g.Selected()))
	}
	if a.Group() != "team" {
		t.Error("Select changed the node's group")
	}
	g.Deselect(a)
	if sel := g.Selected(); len(sel) != 1 || sel[0] != b {
		t.Errorf("Selected = %v", sel)
	}
	g.ClearSelection()
	if len(g.Selected()) != 0 {
		t.Error("ClearSelection left nodes selected")
	}
}

func TestBounds(t *testing.T) {
	g := New("g")
	if !g.Bounds().Empty() {
		t.Error("empty graph should have empty bounds")
	}
	g.MustAddNode(NodeConfig{ID: "1", Position: geom.Pt(0, 0), Width: 10, Height: 10})
	g.MustAddNode(NodeConfig{ID: "2", Position: geom.Pt(90, -20), Width: 10, Height: 10})
	want := geom.Rect{X: 0, Y: -20, Width: 100, Height: 30}
	if got := g.Bounds(); got != want {
		t.Errorf("Bounds = %v, want %v", got, want)
	}
}

func TestCursorConnection(t *testing.T) {
	g, a := pairFixture(t)
	var events int
	g.Edges().On(func(EdgeEvent) { events++ })

	if err := g.BeginConnection(a[0]); err != nil {
		t.Fatal(err)
	}
	g.UpdateCursorEdge(geom.Pt(42, 24))
	e, ok := g.CursorEdge()
	if !ok || e.Target.Position() != geom.Pt(42, 24) || g.Cursor() != geom.Pt(42, 24) {
		t.Fatalf("cursor edge = %+v, %v", e, ok)
	}
	if len(g.Edges().Match(a[0])) != 0 {
		t.Error("cursor edge visible to Match")
	}

	edge, created, err := g.CompleteConnection(a[2], EdgeStyle{})
	if err != nil || !created || edge.Source != a[0] {
		t.Fatalf("CompleteConnection = %v, %v, %v", edge, created, err)
	}
	if _, ok := g.CursorEdge(); ok {
		t.Error("cursor edge not removed")
	}
	if events != 1 {
		t.Errorf("events = %d, want 1", events)
	}

	g.BeginConnection(a[1])
	if _, _, err := g.CompleteConnection(a[0], EdgeStyle{}); err == nil {
		t.Error("same-node completion should fail")
	}
	if _, ok := g.CursorEdge(); ok {
		t.Error("failed completion left cursor edge")
	}
	if _, _, err := g.CompleteConnection(a[2], EdgeStyle{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("completion without drag error = %v", err)
	}

	g.BeginConnection(a[1])
	g.CancelConnection()
	if g.Edges().Count() != 1 {
		t.Errorf("Count = %d after cancel, want 1", g.Edges().Count())
	}
}

type countingHooks struct {
	observability.NoopGraphHooks
	added, deleted, connects, disconnects int
}

func (h *countingHooks) OnNodeAdded(string)          { h.added++ }
func (h *countingHooks) OnNodeDeleted(string)        { h.deleted++ }
func (h *countingHooks) OnConnect(string, string)    { h.connects++ }
func (h *countingHooks) OnDisconnect(string, string) { h.disconnects++ }

func TestGraphSetHooks(t *testing.T) {
	global := &countingHooks{}
	observability.SetGraphHooks(global)
	defer observability.Reset()

	h := &countingHooks{}
	g := New("hooks")
	g.SetHooks(h)
	a := g.MustAddNode(NodeConfig{ID: "a"})
	b := g.MustAddNode(NodeConfig{ID: "b"})
	out, _ := a.CreateAnchor("out", geom.Point{}, geom.Size{}, AnchorOptions{})
	in, _ := b.CreateAnchor("in", geom.Point{}, geom.Size{}, AnchorOptions{})
	if _, _, err := g.Connect(out, in, EdgeStyle{}); err != nil {
		t.Fatal(err)
	}
	g.DeleteNode("a")

	if h.added != 2 || h.connects != 1 || h.disconnects != 1 || h.deleted != 1 {
		t.Errorf("injected hooks = %+v", h)
	}
	if *global != (countingHooks{}) {
		t.Errorf("global hooks saw events: %+v", global)
	}

	g.SetHooks(nil)
	g.MustAddNode(NodeConfig{ID: "c"})
	if global.added != 1 {
		t.Errorf("after SetHooks(nil), global added = %d, want 1", global.added)
	}
}
