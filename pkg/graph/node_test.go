package graph

import (
	"testing"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/geom"
)

func TestNodeKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1", "N-1"},
		{"N-1", "N-1"},
		{"alpha", "N-alpha"},
		{"N-N-1", "N-N-1"},
	}
	for _, tt := range tests {
		if got := NodeKey(tt.in); got != tt.want {
			t.Errorf("NodeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAnchorKey(t *testing.T) {
	if got := AnchorKey("out", "1"); got != "A-out/N-1" {
		t.Errorf("AnchorKey = %q", got)
	}
	if got := AnchorKey("A-out", "N-1"); got != "A-out/N-1" {
		t.Errorf("AnchorKey prefixed = %q", got)
	}
	local, node, ok := splitAnchorKey("A-out/N-1")
	if !ok || local != "A-out" || node != "N-1" {
		t.Errorf("splitAnchorKey = %q, %q, %v", local, node, ok)
	}
	if _, _, ok := splitAnchorKey("A-out"); ok {
		t.Error("unqualified anchor id should not split")
	}
}

func TestNewNodeDefaults(t *testing.T) {
	tests := []struct {
		name   string
		cfg    NodeConfig
		wantW  float64
		wantH  float64
		wantZ  int
		wantID string
	}{
		{"Unset", NodeConfig{ID: "1"}, 200, 100, 2, "N-1"},
		{"WidthOnly", NodeConfig{ID: "2", Width: 80}, 80, 80, 2, "N-2"},
		{"HeightOnly", NodeConfig{ID: "3", Height: 40}, 200, 40, 2, "N-3"},
		{"Explicit", NodeConfig{ID: "N-4", Width: 30, Height: 20, ZIndex: 7}, 30, 20, 7, "N-4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewNode(tt.cfg)
			if err != nil {
				t.Fatalf("NewNode: %v", err)
			}
			if n.ID() != tt.wantID {
				t.Errorf("ID = %q, want %q", n.ID(), tt.wantID)
			}
			if d := n.Dimensions(); d.Width != tt.wantW || d.Height != tt.wantH {
				t.Errorf("Dimensions = %v, want %vx%v", d, tt.wantW, tt.wantH)
			}
			if n.ZIndex() != tt.wantZ {
				t.Errorf("ZIndex = %d, want %d", n.ZIndex(), tt.wantZ)
			}
			if n.Rotation() != 0 || n.Locked() || n.Resizable() || n.Editable() {
				t.Error("flags should default to off")
			}
		})
	}
}

func TestNewNodeRejectsBadID(t *testing.T) {
	for _, id := range []string{"", "a/b", "bad\x00id"} {
		_, err := NewNode(NodeConfig{ID: id})
		if !errors.Is(err, errors.ErrCodeInvalidNode) {
			t.Errorf("NewNode(%q) error = %v, want INVALID_NODE", id, err)
		}
	}
}

func TestPositionListeners(t *testing.T) {
	n, _ := NewNode(NodeConfig{ID: "1"})
	var calls []geom.Point
	unsubscribe := n.OnPositionChange(func(p geom.Point) { calls = append(calls, p) })

	n.SetPosition(geom.Pt(5, 5))
	n.MoveBy(geom.Pt(1, -1))
	unsubscribe()
	n.SetPosition(geom.Pt(0, 0))

	if len(calls) != 2 {
		t.Fatalf("listener called %d times, want 2", len(calls))
	}
	if calls[1] != geom.Pt(6, 4) {
		t.Errorf("second call = %v, want (6,4)", calls[1])
	}
}

func TestSetDimensionsIgnoresNonPositive(t *testing.T) {
	n, _ := NewNode(NodeConfig{ID: "1", Width: 50, Height: 40})
	n.SetDimensions(geom.Size{Width: 0, Height: 60})
	if d := n.Dimensions(); d.Width != 50 || d.Height != 60 {
		t.Errorf("Dimensions = %v, want 50x60", d)
	}
}

func TestCreateAnchorErrors(t *testing.T) {
	n, _ := NewNode(NodeConfig{ID: "1"})
	if _, err := n.CreateAnchor("in", geom.Point{}, geom.Size{}, AnchorOptions{}); err != nil {
		t.Fatalf("CreateAnchor: %v", err)
	}
	if _, err := n.CreateAnchor("A-in", geom.Point{}, geom.Size{}, AnchorOptions{}); !errors.Is(err, errors.ErrCodeInvalidAnchor) {
		t.Errorf("duplicate anchor error = %v", err)
	}
	if _, err := n.CreateAnchor("", geom.Point{}, geom.Size{}, AnchorOptions{}); !errors.Is(err, errors.ErrCodeInvalidAnchor) {
		t.Errorf("empty anchor id error = %v", err)
	}
}

func TestRecalculateAnchorsFilter(t *testing.T) {
	g := New("g")
	n := g.MustAddNode(NodeConfig{ID: "1"})
	north, _ := n.CreateAnchor("n", geom.Point{}, geom.Size{Width: 10, Height: 10}, AnchorOptions{Direction: North})
	south, _ := n.CreateAnchor("s", geom.Point{}, geom.Size{Width: 10, Height: 10}, AnchorOptions{Direction: South})
	g.SetBounds(func(string) (geom.Rect, bool) {
		return geom.Rect{X: 100, Y: 100, Width: 10, Height: 10}, true
	})

	n.RecalculateAnchors(North)
	if north.Position() != geom.Pt(105, 100) {
		t.Errorf("north = %v, want (105,100)", north.Position())
	}
	if south.Position() != geom.Pt(5, 5) {
		t.Errorf("south moved to %v", south.Position())
	}

	n.RecalculateAnchors(Self)
	if south.Position() != geom.Pt(105, 110) {
		t.Errorf("south = %v, want (105,110)", south.Position())
	}
}

func TestDeleteAnchorRemovesEdges(t *testing.T) {
	g := New("g")
	a := g.MustAddNode(NodeConfig{ID: "a"})
	b := g.MustAddNode(NodeConfig{ID: "b"})
	out, _ := a.CreateAnchor("out", geom.Point{}, geom.Size{}, AnchorOptions{})
	in, _ := b.CreateAnchor("in", geom.Point{}, geom.Size{}, AnchorOptions{})
	if _, _, err := g.Connect(out, in, EdgeStyle{}); err != nil {
		t.Fatal(err)
	}

	if !a.DeleteAnchor("out") {
		t.Fatal("DeleteAnchor returned false")
	}
	if g.Edges().Count() != 0 {
		t.Errorf("edges left: %d", g.Edges().Count())
	}
	if len(in.Connected()) != 0 {
		t.Errorf("in still connected to %v", in.Connected())
	}
	a.SetPosition(geom.Pt(50, 50))
	if out.Position() != geom.Pt(0, 0) {
		t.Errorf("deleted anchor kept following: %v", out.Position())
	}
	if a.DeleteAnchor("out") {
		t.Error("second DeleteAnchor should report false")
	}
}

func TestDeleteAnchorCancelsPendingConnection(t *testing.T) {
	g := New("g")
	a := g.MustAddNode(NodeConfig{ID: "a"})
	out, _ := a.CreateAnchor("out", geom.Point{}, geom.Size{}, AnchorOptions{})
	a.CreateAnchor("spare", geom.Point{}, geom.Size{}, AnchorOptions{})

	if err := g.BeginConnection(out); err != nil {
		t.Fatal(err)
	}
	a.DeleteAnchor("spare")
	if _, ok := g.CursorEdge(); !ok {
		t.Fatal("deleting an unrelated anchor dropped the cursor edge")
	}

	if err := g.BeginConnection(out); err != nil {
		t.Fatal(err)
	}
	a.DeleteAnchor("out")
	if e, ok := g.CursorEdge(); ok {
		t.Errorf("cursor edge from %s survived its source", e.Source.ID())
	}
}
