package cli

import (
	"testing"

	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/graph"
)

func TestParseNodeSpec(t *testing.T) {
	size := geom.Size{Width: 200, Height: 100}
	tests := []struct {
		name    string
		spec    string
		want    graph.NodeConfig
		wantErr bool
	}{
		{
			name: "defaults",
			spec: "id=a",
			want: graph.NodeConfig{ID: "a", Width: 200, Height: 100},
		},
		{
			name: "all fields",
			spec: "id=api, x=10, y=-20, w=120, h=60, label=API, group=backend, locked=true, z=5, bg=#fff",
			want: graph.NodeConfig{
				ID: "api", Position: geom.Pt(10, -20), Width: 120, Height: 60,
				Label: "API", Group: "backend", Locked: true, ZIndex: 5,
				Style: graph.Style{BgColor: "#fff"},
			},
		},
		{name: "bare locked", spec: "id=a,locked", wantErr: true},
		{name: "empty locked value", spec: "id=a,locked=", want: graph.NodeConfig{ID: "a", Width: 200, Height: 100, Locked: true}},
		{name: "bad number", spec: "id=a,x=left", wantErr: true},
		{name: "unknown key", spec: "id=a,shape=box", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseNodeSpec(tt.spec, size)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseAnchorSpec(t *testing.T) {
	a, err := parseAnchorSpec("node=api,id=out,x=200,y=50,dir=East,type=output,color=red")
	if err != nil {
		t.Fatal(err)
	}
	if a.Node != "api" || a.ID != "out" || a.Offset != geom.Pt(200, 50) {
		t.Errorf("got %+v", a)
	}
	if a.Size != (geom.Size{Width: 12, Height: 12}) {
		t.Errorf("default size = %v", a.Size)
	}
	if a.Opts.Direction != graph.East || a.Opts.Type != graph.Output || a.Opts.EdgeColor != "red" {
		t.Errorf("opts = %+v", a.Opts)
	}

	for _, bad := range []string{"id=out", "node=api", "node=api,id=x,dir=up", "node=api,id=x,type=both"} {
		if _, err := parseAnchorSpec(bad); err == nil {
			t.Errorf("parseAnchorSpec(%q) should fail", bad)
		}
	}
}

func TestParseBoxSpec(t *testing.T) {
	b, err := parseBoxSpec("group=backend,x=-10,y=0,w=600,h=400,color=blue")
	if err != nil {
		t.Fatal(err)
	}
	want := geom.Rect{X: -10, Y: 0, Width: 600, Height: 400}
	if b.Group != "backend" || b.Box.Rect() != want || b.Box.Color != "blue" || b.Box.ID != "backend" {
		t.Errorf("got %+v", b)
	}
	for _, bad := range []string{"x=0,w=1,h=1", "group=g,w=10", "group=g,w=-1,h=4"} {
		if _, err := parseBoxSpec(bad); err == nil {
			t.Errorf("parseBoxSpec(%q) should fail", bad)
		}
	}
}

func TestParseDelta(t *testing.T) {
	tests := []struct {
		in      string
		want    geom.Point
		wantErr bool
	}{
		{"10,20", geom.Pt(10, 20), false},
		{" -5 , 2.5 ", geom.Pt(-5, 2.5), false},
		{"10", geom.Point{}, true},
		{"a,1", geom.Point{}, true},
		{"1,b", geom.Point{}, true},
	}
	for _, tt := range tests {
		got, err := parseDelta(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseDelta(%q) = %v, %v", tt.in, got, err)
		}
	}
}
