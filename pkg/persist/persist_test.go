package persist

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/nodecanvas/pkg/config"
	"github.com/matzehuels/nodecanvas/pkg/db"
	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/graph"
	"github.com/matzehuels/nodecanvas/pkg/observability"
)

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New("diagram")
	a := g.MustAddNode(graph.NodeConfig{ID: "a", Position: geom.Pt(0, 0)})
	b := g.MustAddNode(graph.NodeConfig{ID: "b", Position: geom.Pt(300, 0)})
	out, err := a.CreateAnchor("out", geom.Pt(200, 50), geom.Size{Width: 10, Height: 10}, graph.AnchorOptions{Type: graph.Output})
	require.NoError(t, err)
	in, err := b.CreateAnchor("in", geom.Pt(300, 50), geom.Size{Width: 10, Height: 10}, graph.AnchorOptions{Type: graph.Input})
	require.NoError(t, err)
	_, _, err = g.Connect(out, in, graph.EdgeStyle{Label: "flow"})
	require.NoError(t, err)
	return g
}

func openSQL(t *testing.T) *SQLSink {
	t.Helper()
	svc, err := db.OpenSQLite(filepath.Join(t.TempDir(), "diagrams.db"))
	require.NoError(t, err)
	s, err := NewSQLSink(context.Background(), svc)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// sinkContract runs the behaviour every backend shares.
func sinkContract(t *testing.T, s Sink) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	require.NoError(t, s.Save(ctx, "alpha", []byte(`{"v":1}`)))
	require.NoError(t, s.Save(ctx, "beta", []byte(`{"v":2}`)))
	require.NoError(t, s.Save(ctx, "alpha", []byte(`{"v":3}`)))

	data, err := s.Load(ctx, "alpha")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":3}`, string(data))

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)

	require.NoError(t, s.Delete(ctx, "alpha"))
	require.NoError(t, s.Delete(ctx, "alpha"))
	_, err = s.Load(ctx, "alpha")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Save(ctx, "../escape", []byte(`{}`))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidName))
}

func TestFileSink(t *testing.T) {
	s, err := NewFileSink(t.TempDir())
	require.NoError(t, err)
	sinkContract(t, s)
}

func TestFileSinkRawPayload(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileSink(t.TempDir())
	require.NoError(t, err)

	raw := []byte("not json \x00\x01")
	require.NoError(t, s.Save(ctx, "raw", raw))
	got, err := s.Load(ctx, "raw")
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestFileSinkLayout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileSink(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "layout", []byte(`{}`)))

	hash := Hash([]byte("layout"))
	_, err = os.Stat(filepath.Join(dir, hash[:2], hash[2:]+".json"))
	assert.NoError(t, err)

	// Stray files do not show up in List.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.json"), []byte("nope"), 0644))
	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"layout"}, names)
}

func TestHash(t *testing.T) {
	assert.Equal(t, Hash([]byte("hello")), Hash([]byte("hello")))
	assert.NotEqual(t, Hash([]byte("hello")), Hash([]byte("world")))
	assert.Len(t, Hash([]byte("hello")), 64)
}

func TestNullSink(t *testing.T) {
	ctx := context.Background()
	s := NewNullSink()
	require.NoError(t, s.Save(ctx, "x", []byte("data")))
	_, err := s.Load(ctx, "x")
	assert.ErrorIs(t, err, ErrNotFound)
	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.NoError(t, s.Close())
}

func TestSQLSink(t *testing.T) {
	sinkContract(t, openSQL(t))
}

func TestSQLSinkRevisions(t *testing.T) {
	ctx := context.Background()
	s := openSQL(t)

	require.NoError(t, s.Save(ctx, "doc", []byte(`{"v":1}`)))
	require.NoError(t, s.Save(ctx, "doc", []byte(`{"v":2}`)))

	revs, err := s.Revisions(ctx, "doc")
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.Less(t, revs[0].ID, revs[1].ID)
	assert.WithinDuration(t, time.Now(), revs[1].CreatedAt, time.Minute)

	first, err := s.LoadRevision(ctx, "doc", revs[0].ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(first))

	head, err := s.Load(ctx, "doc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(head))

	_, err = s.LoadRevision(ctx, "doc", "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, "doc"))
	revs, err = s.Revisions(ctx, "doc")
	require.NoError(t, err)
	assert.Empty(t, revs)
}

// brokenSink fails every operation.
type brokenSink struct{ NullSink }

var errBroken = stderrors.New("broken")

func (brokenSink) Name() string                                 { return "broken" }
func (brokenSink) Save(context.Context, string, []byte) error   { return errBroken }
func (brokenSink) Load(context.Context, string) ([]byte, error) { return nil, errBroken }
func (brokenSink) Delete(context.Context, string) error         { return errBroken }
func (brokenSink) List(context.Context) ([]string, error)       { return nil, errBroken }

func TestMulti(t *testing.T) {
	ctx := context.Background()
	first, err := NewFileSink(t.TempDir())
	require.NoError(t, err)
	second := openSQL(t)

	m := NewMulti(first, second)
	assert.Equal(t, "multi(file+sql)", m.Name())
	sinkContract(t, m)

	t.Run("load falls through", func(t *testing.T) {
		require.NoError(t, second.Save(ctx, "only-sql", []byte(`{"from":"sql"}`)))
		data, err := m.Load(ctx, "only-sql")
		require.NoError(t, err)
		assert.JSONEq(t, `{"from":"sql"}`, string(data))
	})

	t.Run("list is a union", func(t *testing.T) {
		require.NoError(t, first.Save(ctx, "only-file", []byte(`{}`)))
		names, err := m.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, "only-file")
		assert.Contains(t, names, "only-sql")
	})

	t.Run("member failure", func(t *testing.T) {
		bad := NewMulti(first, brokenSink{})
		assert.ErrorIs(t, bad.Save(ctx, "x", []byte(`{}`)), errBroken)
		_, err := NewMulti(brokenSink{}).Load(ctx, "x")
		assert.ErrorIs(t, err, errBroken)

		// A hit in a healthy member wins over a failing one.
		data, err := NewMulti(brokenSink{}, first).Load(ctx, "only-file")
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(data))
	})
}

type recordingStorage struct {
	observability.NoopStorageHooks
	mu    sync.Mutex
	saves []string
	loads []bool
}

func (r *recordingStorage) OnSave(_ context.Context, backend, name string, _ int, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, backend+":"+name)
}

func (r *recordingStorage) OnLoad(_ context.Context, _, _ string, found bool, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads = append(r.loads, found)
}

func TestSaveLoadGraph(t *testing.T) {
	ctx := context.Background()
	hooks := &recordingStorage{}
	observability.SetStorageHooks(hooks)
	t.Cleanup(observability.Reset)

	s, err := NewFileSink(t.TempDir())
	require.NoError(t, err)

	g := testGraph(t)
	require.NoError(t, Save(ctx, s, "flow", g))

	got, err := Load(ctx, s, "flow")
	require.NoError(t, err)
	assert.Equal(t, g.ID(), got.ID())
	assert.Equal(t, 2, got.NodeCount())
	assert.Len(t, got.Edges().Connections(), 1)

	_, err = Load(ctx, s, "nothing")
	assert.True(t, errors.IsNotFound(err))

	assert.Equal(t, []string{"file:flow"}, hooks.saves)
	assert.Equal(t, []bool{true, false}, hooks.loads)
}

func TestLoadCorruptDiagram(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileSink(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "bad", []byte(`{"nodes":"nope"}`)))

	_, err = Load(ctx, s, "bad")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestRedisSink(t *testing.T) {
	addr := os.Getenv("NODECANVAS_TEST_REDIS")
	if addr == "" {
		t.Skip("NODECANVAS_TEST_REDIS not set")
	}
	s, err := NewRedisSink(context.Background(), RedisConfig{Addr: addr, Prefix: "nodecanvas:test:" + t.Name() + ":"})
	require.NoError(t, err)
	defer s.Close()
	sinkContract(t, s)
}

func TestMongoSink(t *testing.T) {
	uri := os.Getenv("NODECANVAS_TEST_MONGO")
	if uri == "" {
		t.Skip("NODECANVAS_TEST_MONGO not set")
	}
	s, err := NewMongoSink(context.Background(), MongoConfig{URI: uri, Database: "nodecanvas_test", Collection: t.Name()})
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()
	names, _ := s.List(ctx)
	for _, n := range names {
		_ = s.Delete(ctx, n)
	}
	sinkContract(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	base := config.StorageConfig{
		Dir:        filepath.Join(dir, "files"),
		SQLitePath: filepath.Join(dir, "data", "canvas.db"),
		Backends:   []string{config.BackendFile, config.BackendSQLite},
	}

	tests := []struct {
		backend string
		name    string
	}{
		{config.BackendFile, "file"},
		{config.BackendNull, "null"},
		{config.BackendSQLite, "sql"},
		{config.BackendMulti, "multi(file+sql)"},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := base
			cfg.Backend = tt.backend
			s, err := Open(ctx, cfg)
			require.NoError(t, err)
			defer s.Close()
			assert.Equal(t, tt.name, s.Name())
		})
	}

	t.Run("unknown", func(t *testing.T) {
		cfg := base
		cfg.Backend = "tape"
		_, err := Open(ctx, cfg)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
	})
}
