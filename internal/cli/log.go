package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, rounded to the millisecond.
// Example output: "Exported diagram.svg (212ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// =============================================================================
// Observability Hooks
// =============================================================================

// logHooks implements the observability hook interfaces on top of the CLI
// logger. Everything is logged at debug level except failed storage calls.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnNodeAdded(id string)   { h.logger.Debug("node added", "node", id) }
func (h *logHooks) OnNodeDeleted(id string) { h.logger.Debug("node deleted", "node", id) }

func (h *logHooks) OnConnect(source, target string) {
	h.logger.Debug("connected", "source", source, "target", target)
}

func (h *logHooks) OnDisconnect(source, target string) {
	h.logger.Debug("disconnected", "source", source, "target", target)
}

func (h *logHooks) OnDragStart(group string, nodes int) {
	h.logger.Debug("drag started", "group", group, "nodes", nodes)
}

func (h *logHooks) OnDragEnd(group string, frames int, d time.Duration) {
	h.logger.Debug("drag ended", "group", group, "frames", frames, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnSave(_ context.Context, backend, name string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("save failed", "backend", backend, "name", name, "err", err)
		return
	}
	h.logger.Debug("saved", "backend", backend, "name", name, "bytes", size, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnLoad(_ context.Context, backend, name string, found bool, d time.Duration, err error) {
	if err != nil && found {
		h.logger.Warn("load failed", "backend", backend, "name", name, "err", err)
		return
	}
	h.logger.Debug("loaded", "backend", backend, "name", name, "found", found, "duration", d.Round(time.Millisecond))
}
