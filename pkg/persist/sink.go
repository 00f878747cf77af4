// Package persist stores serialized diagrams.
//
// A [Sink] keeps opaque byte payloads under validated diagram names. The
// backends are interchangeable:
//
//   - [FileSink]: one JSON file per diagram under a directory (CLI default)
//   - [NullSink]: discards everything
//   - [RedisSink]: a key per diagram in Redis
//   - [MongoSink]: a document per diagram in a MongoDB collection
//   - [SQLSink]: revisioned rows behind the [db.Service] query/transaction contract
//   - [Multi]: writes to several sinks at once and reads from the first hit
//
// [Save] and [Load] pair a sink with a [graph.Graph], encoding it as a JSON
// snapshot and reporting through the observability storage hooks.
//
// Sink failures are returned as coded STORAGE errors; nothing is retried.
package persist

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/graph"
	"github.com/matzehuels/nodecanvas/pkg/observability"
)

// ErrNotFound is returned by Load when no diagram has the requested name.
var ErrNotFound = stderrors.New("diagram not found")

// Sink stores diagram payloads by name.
type Sink interface {
	// Name identifies the backend in logs and hooks.
	Name() string
	// Save stores data under name, replacing any previous payload.
	Save(ctx context.Context, name string, data []byte) error
	// Load returns the payload stored under name, or ErrNotFound.
	Load(ctx context.Context, name string) ([]byte, error)
	// Delete removes name. Deleting a missing diagram is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the stored names in lexical order.
	List(ctx context.Context) ([]string, error)
	Close() error
}

// Save encodes g and stores it in sink under name.
func Save(ctx context.Context, sink Sink, name string, g *graph.Graph) error {
	return SaveSnapshot(ctx, sink, name, graph.TakeSnapshot(g))
}

// SaveSnapshot stores a snapshot taken earlier. Callers that must not hold
// the canvas during I/O take the snapshot under their lock and save it
// afterwards.
func SaveSnapshot(ctx context.Context, sink Sink, name string, s graph.Snapshot) error {
	if err := errors.ValidateName(name); err != nil {
		return err
	}
	start := time.Now()
	data, err := graph.MarshalSnapshot(s)
	if err == nil {
		err = sink.Save(ctx, name, data)
	}
	observability.Storage().OnSave(ctx, sink.Name(), name, len(data), time.Since(start), err)
	return err
}

// Load reads name from sink and restores the graph.
func Load(ctx context.Context, sink Sink, name string) (*graph.Graph, error) {
	if err := errors.ValidateName(name); err != nil {
		return nil, err
	}
	start := time.Now()
	data, err := sink.Load(ctx, name)
	found := err == nil
	var g *graph.Graph
	if found {
		g, err = graph.Unmarshal(data)
		if err != nil {
			err = errors.Wrap(errors.ErrCodeInvalidInput, err, "diagram %s", name)
		}
	}
	observability.Storage().OnLoad(ctx, sink.Name(), name, found, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func storageErr(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeStorage, err, format, args...)
}

func notFound(name string) error {
	return errors.Wrap(errors.ErrCodeNotFound, ErrNotFound, "diagram %s", name)
}
