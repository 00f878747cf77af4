package persist

import (
	"context"
	stderrors "errors"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Multi fans writes out to several sinks concurrently and reads from the
// first sink that has the diagram.
type Multi struct {
	sinks []Sink
}

// NewMulti combines sinks. Order matters for Load: earlier sinks win.
func NewMulti(sinks ...Sink) *Multi { return &Multi{sinks: sinks} }

// Name implements [Sink]. It joins the member names with "+".
func (m *Multi) Name() string {
	names := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		names[i] = s.Name()
	}
	return "multi(" + strings.Join(names, "+") + ")"
}

// Save implements [Sink]. It fails if any member fails.
func (m *Multi) Save(ctx context.Context, name string, data []byte) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range m.sinks {
		g.Go(func() error { return s.Save(gctx, name, data) })
	}
	return g.Wait()
}

// Load implements [Sink]. Misses fall through to the next member; other
// errors are returned only if no member has the diagram.
func (m *Multi) Load(ctx context.Context, name string) ([]byte, error) {
	var errs []error
	for _, s := range m.sinks {
		data, err := s.Load(ctx, name)
		if err == nil {
			return data, nil
		}
		if !stderrors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, stderrors.Join(errs...)
	}
	return nil, notFound(name)
}

// Delete implements [Sink].
func (m *Multi) Delete(ctx context.Context, name string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range m.sinks {
		g.Go(func() error { return s.Delete(gctx, name) })
	}
	return g.Wait()
}

// List implements [Sink]. It returns the union of all members' names.
func (m *Multi) List(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	for _, s := range m.sinks {
		names, err := s.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			seen[n] = true
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	slices.Sort(out)
	return out, nil
}

// Close closes every member and joins their errors.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		errs = append(errs, s.Close())
	}
	return stderrors.Join(errs...)
}

var _ Sink = (*Multi)(nil)
