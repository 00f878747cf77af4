// Package observability provides hooks for metrics, tracing, and logging.
//
// The canvas packages report what they do through small hook interfaces
// instead of importing a logging or metrics backend. Consumers register
// implementations at startup; until then every hook is a no-op.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetGraphHooks(&myGraphHooks{})
//	    observability.SetStorageHooks(&myStorageHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Graph().OnConnect(source.ID(), target.ID())
//	observability.Storage().OnSave(ctx, "redis", name, len(data), time.Since(start), err)
//
// Graph and movement hooks are invoked synchronously from canvas mutations and
// must not mutate the canvas themselves.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Graph Hooks
// =============================================================================

// GraphHooks receives structural changes of a canvas.
type GraphHooks interface {
	OnNodeAdded(nodeID string)
	OnNodeDeleted(nodeID string)

	// Connection events carry anchor ids.
	OnConnect(source, target string)
	OnDisconnect(source, target string)
}

// =============================================================================
// Movement Hooks
// =============================================================================

// MovementHooks receives drag lifecycle events from the movement engine.
type MovementHooks interface {
	OnDragStart(group string, nodes int)
	OnDragEnd(group string, frames int, duration time.Duration)
}

// =============================================================================
// Storage Hooks
// =============================================================================

// StorageHooks receives events from persistence sinks.
type StorageHooks interface {
	OnSave(ctx context.Context, backend, name string, size int, duration time.Duration, err error)
	OnLoad(ctx context.Context, backend, name string, found bool, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopGraphHooks is a no-op implementation of GraphHooks.
type NoopGraphHooks struct{}

func (NoopGraphHooks) OnNodeAdded(string)          {}
func (NoopGraphHooks) OnNodeDeleted(string)        {}
func (NoopGraphHooks) OnConnect(string, string)    {}
func (NoopGraphHooks) OnDisconnect(string, string) {}

// NoopMovementHooks is a no-op implementation of MovementHooks.
type NoopMovementHooks struct{}

func (NoopMovementHooks) OnDragStart(string, int)              {}
func (NoopMovementHooks) OnDragEnd(string, int, time.Duration) {}

// NoopStorageHooks is a no-op implementation of StorageHooks.
type NoopStorageHooks struct{}

func (NoopStorageHooks) OnSave(context.Context, string, string, int, time.Duration, error)  {}
func (NoopStorageHooks) OnLoad(context.Context, string, string, bool, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	graphHooks    GraphHooks    = NoopGraphHooks{}
	movementHooks MovementHooks = NoopMovementHooks{}
	storageHooks  StorageHooks  = NoopStorageHooks{}
	hooksMu       sync.RWMutex
)

// SetGraphHooks registers custom graph hooks.
// This should be called once at application startup.
func SetGraphHooks(h GraphHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		graphHooks = h
	}
}

// SetMovementHooks registers custom movement hooks.
func SetMovementHooks(h MovementHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		movementHooks = h
	}
}

// SetStorageHooks registers custom storage hooks.
func SetStorageHooks(h StorageHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storageHooks = h
	}
}

// Graph returns the registered graph hooks.
func Graph() GraphHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return graphHooks
}

// Movement returns the registered movement hooks.
func Movement() MovementHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return movementHooks
}

// Storage returns the registered storage hooks.
func Storage() StorageHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storageHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	graphHooks = NoopGraphHooks{}
	movementHooks = NoopMovementHooks{}
	storageHooks = NoopStorageHooks{}
}
