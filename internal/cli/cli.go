// Package cli implements the nodecanvas command-line interface.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodecanvas/pkg/config"
	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/graph"
	"github.com/matzehuels/nodecanvas/pkg/movement"
	"github.com/matzehuels/nodecanvas/pkg/observability"
	"github.com/matzehuels/nodecanvas/pkg/persist"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "nodecanvas"

// Log levels for New.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is set by --config; empty selects config.Path().
	configPath string
	verbose    bool
}

// ExitCode maps a command error to the process exit status. A run cut short
// by SIGINT exits 130, as shells do.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case stderrors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// installHooks routes canvas, drag and storage events to the debug log.
func (c *CLI) installHooks() {
	hooks := &logHooks{logger: c.Logger}
	observability.SetGraphHooks(hooks)
	observability.SetMovementHooks(hooks)
	observability.SetStorageHooks(hooks)
}

// =============================================================================
// Config & Storage
// =============================================================================

func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("config loaded", "path", c.configFile(), "backend", cfg.Storage.Backend)
	return cfg, nil
}

func (c *CLI) configFile() string {
	if c.configPath != "" {
		return c.configPath
	}
	return config.Path()
}

// openSink loads the config and opens its storage backend.
func (c *CLI) openSink(ctx context.Context) (persist.Sink, *config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	sink, err := persist.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	return sink, cfg, nil
}

// newEngine builds a movement engine for one-shot commands. Frames are
// stepped by hand so a command finishes deterministically.
func newEngine(g *graph.Graph, cfg *config.Config) (*movement.Engine, *movement.ManualScheduler) {
	sched := movement.NewManualScheduler()
	e := movement.NewEngine(g, movement.Options{
		Snap:      cfg.Canvas.Snap,
		Buffer:    cfg.Canvas.GroupBuffer,
		Scheduler: sched,
	})
	return e, sched
}

// =============================================================================
// Diagram Files
// =============================================================================

// isYAML reports whether path names a YAML diagram.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// readDiagram reads a JSON or YAML diagram, chosen by extension.
func readDiagram(path string) (*graph.Graph, error) {
	if !isYAML(path) {
		return graph.ReadFile(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return graph.UnmarshalYAML(data)
}

// writeDiagram writes g to path in the format its extension selects.
func writeDiagram(g *graph.Graph, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if !isYAML(path) {
		return graph.WriteFile(g, path)
	}
	data, err := graph.MarshalYAML(g)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// resolveAnchor finds an anchor given as "A-x/N-y" or the short "node:anchor".
func resolveAnchor(g *graph.Graph, ref string) (*graph.Anchor, error) {
	id := ref
	if node, anchor, ok := strings.Cut(ref, ":"); ok && !strings.Contains(ref, "/") {
		id = graph.AnchorKey(anchor, node)
	}
	a, ok := g.Anchor(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeAnchorNotFound, "anchor %s not found", ref)
	}
	return a, nil
}

func resolveNode(g *graph.Graph, id string) (*graph.Node, error) {
	n, ok := g.Node(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "node %s not found", graph.NodeKey(id))
	}
	return n, nil
}
