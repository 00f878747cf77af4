package persist

import "context"

// NullSink is a sink that never stores anything. Every Load misses.
type NullSink struct{}

// NewNullSink creates a null sink.
func NewNullSink() *NullSink { return &NullSink{} }

func (NullSink) Name() string                                        { return "null" }
func (NullSink) Save(context.Context, string, []byte) error          { return nil }
func (NullSink) Delete(context.Context, string) error                { return nil }
func (NullSink) List(context.Context) ([]string, error)              { return nil, nil }
func (NullSink) Close() error                                        { return nil }
func (NullSink) Load(_ context.Context, name string) ([]byte, error) { return nil, notFound(name) }

var _ Sink = NullSink{}
