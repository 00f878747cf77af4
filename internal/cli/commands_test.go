package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/graph"
	"github.com/matzehuels/nodecanvas/pkg/movement"
	"github.com/matzehuels/nodecanvas/pkg/persist"
)

// newTestDiagram creates app.json with two nodes, typed anchors and a
// group box around db.
func newTestDiagram(t *testing.T, c *CLI, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "app.json")
	err := execute(t, c, "new", path,
		"--id", "app",
		"--node", "id=api,x=0,y=0,label=API",
		"--node", "id=db,x=400,y=0,group=backend",
		"--anchor", "node=api,id=out,x=200,y=50,dir=east,type=output",
		"--anchor", "node=db,id=in,x=0,y=50,dir=west,type=input",
		"--box", "group=backend,x=0,y=0,w=700,h=300",
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return path
}

func mustRead(t *testing.T, path string) *graph.Graph {
	t.Helper()
	g, err := readDiagram(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return g
}

func TestNewCommand(t *testing.T) {
	c, dir := testCLI(t)
	path := newTestDiagram(t, c, dir)

	g := mustRead(t, path)
	if g.ID() != "app" || g.NodeCount() != 2 {
		t.Fatalf("got id %q with %d nodes", g.ID(), g.NodeCount())
	}
	out, err := resolveAnchor(g, "api:out")
	if err != nil {
		t.Fatal(err)
	}
	if out.Offset() != geom.Pt(200, 50) || out.Direction() != graph.East || out.Type() != graph.Output {
		t.Errorf("api:out = offset %v dir %s type %s", out.Offset(), out.Direction(), out.Type())
	}
	grp, ok := g.Group("backend")
	if !ok || grp.Box() == nil || grp.Count() != 1 {
		t.Fatalf("backend group not restored: %+v", grp)
	}

	if err := execute(t, c, "new", path, "--node", "id=x"); err == nil {
		t.Error("new should refuse to overwrite without --force")
	}
	if err := execute(t, c, "new", path, "--force", "--node", "id=x"); err != nil {
		t.Errorf("new --force: %v", err)
	}
}

func TestNewCommandErrors(t *testing.T) {
	c, dir := testCLI(t)
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"duplicate node", []string{"--node", "id=a", "--node", "id=a"}, errors.ErrCodeInvalidNode},
		{"unknown key", []string{"--node", "id=a,colour=red"}, errors.ErrCodeInvalidInput},
		{"anchor on missing node", []string{"--anchor", "node=ghost,id=in"}, errors.ErrCodeInvalidAnchor},
		{"bad box", []string{"--box", "group=g,w=0,h=10"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"new", filepath.Join(dir, tt.name+".json")}, tt.args...)
			err := execute(t, c, args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestConnectCommand(t *testing.T) {
	c, dir := testCLI(t)
	path := newTestDiagram(t, c, dir)

	if err := execute(t, c, "connect", path, "api:out", "db:in", "--label", "queries"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	g := mustRead(t, path)
	edges := g.Edges().Connections()
	if len(edges) != 1 || edges[0].Style.Label != "queries" {
		t.Fatalf("edges = %+v", edges)
	}

	// Same pair again, either order, changes nothing.
	if err := execute(t, c, "connect", path, "A-in/N-db", "A-out/N-api"); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if n := len(mustRead(t, path).Edges().Connections()); n != 1 {
		t.Errorf("edges after reconnect = %d, want 1", n)
	}

	if err := execute(t, c, "connect", path, "api:out", "api:out"); !errors.Is(err, errors.ErrCodeInvalidAnchor) {
		t.Errorf("self connect error = %v", err)
	}
	if err := execute(t, c, "connect", path, "api:out", "db:nope"); !errors.Is(err, errors.ErrCodeAnchorNotFound) {
		t.Errorf("missing anchor error = %v", err)
	}

	if err := execute(t, c, "connect", path, "api:out", "db:in", "--remove"); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if n := len(mustRead(t, path).Edges().Connections()); n != 0 {
		t.Errorf("edges after remove = %d, want 0", n)
	}
}

func TestMoveCommandNudgeSnaps(t *testing.T) {
	c, dir := testCLI(t)
	path := newTestDiagram(t, c, dir)

	if err := execute(t, c, "move", path, "api", "--by", "23,-7"); err != nil {
		t.Fatalf("move: %v", err)
	}
	g := mustRead(t, path)
	api, _ := g.Node("api")
	if got := api.Position(); got != geom.Pt(20, -10) {
		t.Errorf("api at %v, want (20,-10)", got)
	}
	out, _ := resolveAnchor(g, "api:out")
	if got := out.Position(); got != geom.Pt(220, 40) {
		t.Errorf("api:out at %v, want (220,40)", got)
	}
	if len(g.Selected()) != 0 {
		t.Error("move should leave the selection as it found it")
	}
}

func TestMoveCommandDragClamps(t *testing.T) {
	c, dir := testCLI(t)
	path := newTestDiagram(t, c, dir)
	out := filepath.Join(dir, "moved.yaml")

	if err := execute(t, c, "move", path, "db", "--by", "100,0", "--drag", "--frames", "4", "-o", out); err != nil {
		t.Fatalf("move: %v", err)
	}
	g := mustRead(t, out)
	db, _ := g.Node("db")
	grp, _ := g.Group("backend")
	want := movement.ClampToBox(geom.Pt(500, 0), db.Dimensions(), grp.Box().Rect(), movement.DefaultGroupBuffer)
	if got := db.Position(); got != want {
		t.Errorf("db at %v, want clamped %v", got, want)
	}
	if db.Moving() {
		t.Error("db still marked moving after the drag")
	}

	// The input file is untouched when -o is given.
	orig, _ := mustRead(t, path).Node("db")
	if orig.Position() != geom.Pt(400, 0) {
		t.Errorf("input modified: db at %v", orig.Position())
	}
}

func TestMoveCommandGroupIsNotClamped(t *testing.T) {
	c, dir := testCLI(t)
	path := newTestDiagram(t, c, dir)

	if err := execute(t, c, "move", path, "--group", "backend", "--by", "1000,0"); err != nil {
		t.Fatalf("move: %v", err)
	}
	db, _ := mustRead(t, path).Node("db")
	if got := db.Position(); got != geom.Pt(1400, 0) {
		t.Errorf("db at %v, want (1400,0)", got)
	}
}

func TestMoveCommandErrors(t *testing.T) {
	c, dir := testCLI(t)
	path := newTestDiagram(t, c, dir)

	tests := []struct {
		name string
		args []string
	}{
		{"no nodes", []string{"--by", "1,1"}},
		{"nodes and group", []string{"api", "--group", "backend", "--by", "1,1"}},
		{"missing node", []string{"ghost", "--by", "1,1"}},
		{"missing group", []string{"--group", "ghost", "--by", "1,1"}},
		{"bad delta", []string{"api", "--by", "1"}},
		{"no frames", []string{"api", "--by", "1,1", "--drag", "--frames", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := execute(t, c, append([]string{"move", path}, tt.args...)...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestExportCommand(t *testing.T) {
	c, dir := testCLI(t)
	path := newTestDiagram(t, c, dir)
	if err := execute(t, c, "connect", path, "api:out", "db:in"); err != nil {
		t.Fatal(err)
	}

	base := filepath.Join(dir, "out")
	if err := execute(t, c, "export", path, "-f", "dot,yaml", "-o", base); err != nil {
		t.Fatalf("export: %v", err)
	}
	dot, err := os.ReadFile(base + ".dot")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), `"N-api" -> "N-db"`) {
		t.Errorf("DOT missing edge:\n%s", dot)
	}
	g := mustRead(t, base+".yaml")
	if g.NodeCount() != 2 {
		t.Errorf("YAML export has %d nodes", g.NodeCount())
	}

	if err := execute(t, c, "export", path, "-f", "gif"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad format error = %v", err)
	}
}

func TestStorageCommands(t *testing.T) {
	c, dir := testCLI(t)
	path := newTestDiagram(t, c, dir)

	if err := execute(t, c, "storage", "push", path); err != nil {
		t.Fatalf("push: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "diagrams")); err != nil {
		t.Errorf("file storage dir not created: %v", err)
	}
	if err := execute(t, c, "storage", "list"); err != nil {
		t.Fatalf("list: %v", err)
	}

	pulled := filepath.Join(dir, "pulled.yaml")
	if err := execute(t, c, "storage", "pull", "app", pulled); err != nil {
		t.Fatalf("pull: %v", err)
	}
	if g := mustRead(t, pulled); g.ID() != "app" || g.NodeCount() != 2 {
		t.Errorf("pulled %q with %d nodes", g.ID(), g.NodeCount())
	}

	if err := execute(t, c, "storage", "rm", "app"); err != nil {
		t.Fatalf("rm: %v", err)
	}
	if err := execute(t, c, "storage", "pull", "app", pulled); !errors.IsNotFound(err) {
		t.Errorf("pull after rm error = %v, want not found", err)
	}
	if err := execute(t, c, "storage", "path"); err != nil {
		t.Errorf("path: %v", err)
	}
}

func TestInspectCommand(t *testing.T) {
	c, dir := testCLI(t)
	path := newTestDiagram(t, c, dir)

	for _, f := range []string{"text", "json", "yaml"} {
		if err := execute(t, c, "inspect", path, "-f", f); err != nil {
			t.Errorf("inspect -f %s: %v", f, err)
		}
	}
	if err := execute(t, c, "inspect", path, "-f", "xml"); err == nil {
		t.Error("inspect -f xml should fail")
	}
	if err := execute(t, c, "inspect", filepath.Join(dir, "missing.json")); err == nil {
		t.Error("inspect of a missing file should fail")
	}
}

func TestInitialCanvas(t *testing.T) {
	c, dir := testCLI(t)
	path := newTestDiagram(t, c, dir)
	ctx := context.Background()

	sink, err := persist.NewFileSink(filepath.Join(dir, "diagrams"))
	if err != nil {
		t.Fatal(err)
	}
	if err := persist.Save(ctx, sink, "stored", mustRead(t, path)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		opts  serveOpts
		nodes int
	}{
		{"empty", serveOpts{}, 0},
		{"file", serveOpts{file: path}, 2},
		{"stored", serveOpts{load: "stored"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := initialCanvas(ctx, sink, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if g.NodeCount() != tt.nodes {
				t.Errorf("nodes = %d, want %d", g.NodeCount(), tt.nodes)
			}
		})
	}

	if _, err := initialCanvas(ctx, sink, serveOpts{load: "missing"}); !errors.IsNotFound(err) {
		t.Errorf("missing diagram error = %v", err)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	c, _ := testCLI(t)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.runServe(ctx, serveOpts{addr: "127.0.0.1:0"}) }()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runServe: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop after cancellation")
	}
}
