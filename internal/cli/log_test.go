package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/graph"
	"github.com/matzehuels/nodecanvas/pkg/observability"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(10 * time.Millisecond)
	prog.done("exported")

	if !strings.Contains(buf.String(), "exported (") {
		t.Errorf("progress output = %q, want message with duration", buf.String())
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, log.DebugLevel)
	c.installHooks()
	t.Cleanup(observability.Reset)

	g := graph.New("hooks")
	a := g.MustAddNode(graph.NodeConfig{ID: "a"})
	b := g.MustAddNode(graph.NodeConfig{ID: "b", Position: geom.Pt(300, 0)})
	out, _ := a.CreateAnchor("out", a.Position(), a.Dimensions(), graph.AnchorOptions{})
	in, _ := b.CreateAnchor("in", b.Position(), b.Dimensions(), graph.AnchorOptions{})
	if _, _, err := g.Connect(out, in, graph.EdgeStyle{}); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	observability.Storage().OnSave(context.Background(), "file", "app", 10, time.Millisecond, nil)

	for _, want := range []string{"node added", "N-a", "connected", "A-out/N-a", "saved"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log missing %q:\n%s", want, buf.String())
		}
	}
}

func TestLogHooksWarnOnFailure(t *testing.T) {
	var buf bytes.Buffer
	h := &logHooks{logger: newLogger(&buf, log.WarnLevel)}

	h.OnSave(context.Background(), "redis", "app", 0, 0, errors.New("down"))
	h.OnLoad(context.Background(), "redis", "app", false, 0, errors.New("missing"))

	out := buf.String()
	if !strings.Contains(out, "save failed") {
		t.Errorf("want save failure at warn level, got %q", out)
	}
	if strings.Contains(out, "load failed") {
		t.Errorf("a miss should not warn, got %q", out)
	}
}
