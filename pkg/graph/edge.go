package graph

import (
	"slices"

	"github.com/matzehuels/nodecanvas/pkg/observability"
	"github.com/matzehuels/nodecanvas/pkg/store"
)

const cursorKeyName = "cursor"

// EdgeKey identifies an edge by its unordered anchor pair. The two anchor ids
// are stored sorted, so PairKey(a, b) == PairKey(b, a). The reserved cursor
// key names the in-progress edge that follows the pointer.
type EdgeKey struct {
	a, b   string
	cursor bool
}

// PairKey returns the key of the edge between x and y.
func PairKey(x, y *Anchor) EdgeKey { return pairKeyIDs(x.id, y.id) }

func pairKeyIDs(x, y string) EdgeKey {
	if y < x {
		x, y = y, x
	}
	return EdgeKey{a: x, b: y}
}

// CursorKey returns the reserved key of the in-progress edge.
func CursorKey() EdgeKey { return EdgeKey{cursor: true} }

// IsCursor reports whether k is the reserved cursor key.
func (k EdgeKey) IsCursor() bool { return k.cursor }

// Anchors returns the two anchor ids in sorted order. Both are empty for the
// cursor key.
func (k EdgeKey) Anchors() (string, string) { return k.a, k.b }

// Contains reports whether id is one of the key's anchors.
func (k EdgeKey) Contains(id string) bool {
	return !k.cursor && (k.a == id || k.b == id)
}

func (k EdgeKey) String() string {
	if k.cursor {
		return cursorKeyName
	}
	return k.a + "|" + k.b
}

// EdgeStyle holds rendering attributes of an edge. Like node styles they are
// opaque to the canvas core.
type EdgeStyle struct {
	Label    string  `json:"label,omitempty" yaml:"label,omitempty"`
	Color    string  `json:"color,omitempty" yaml:"color,omitempty"`
	Width    float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Animated bool    `json:"animated,omitempty" yaml:"animated,omitempty"`
	Type     string  `json:"type,omitempty" yaml:"type,omitempty"`
}

// Edge links two anchors.
type Edge struct {
	Source *Anchor
	Target *Anchor
	Style  EdgeStyle

	key EdgeKey
}

// Key returns the key the edge is stored under.
func (e *Edge) Key() EdgeKey { return e.key }

// EventKind tells connection and disconnection events apart.
type EventKind int

const (
	Connection EventKind = iota
	Disconnection
)

func (k EventKind) String() string {
	if k == Disconnection {
		return "disconnection"
	}
	return "connection"
}

// EdgeEvent is delivered to EdgeStore listeners.
type EdgeEvent struct {
	Kind EventKind
	Edge *Edge
}

type edgeListener struct {
	id int
	fn func(EdgeEvent)
}

// EdgeStore holds the edges of a graph and keeps the connected sets of their
// anchors symmetric: for every stored edge {a, b}, b is in a's connected set
// and a is in b's.
type EdgeStore struct {
	edges     *store.Store[EdgeKey, *Edge]
	listeners []edgeListener
	nextID    int
	hooks     observability.GraphHooks
}

func (s *EdgeStore) graphHooks() observability.GraphHooks {
	if s.hooks != nil {
		return s.hooks
	}
	return observability.Graph()
}

// NewEdgeStore creates an empty edge store.
func NewEdgeStore() *EdgeStore {
	return &EdgeStore{edges: store.New[EdgeKey, *Edge]()}
}

// Add stores e under key and reports whether a new edge was inserted.
//
// For a pair key, adding an edge between anchors that are already connected
// is a no-op, as is a key that does not match e's anchors. A new pair edge
// links both anchors and emits a [Connection] event. An edge from an anchor
// to itself is rejected. The cursor key is overwritten freely and emits
// nothing.
func (s *EdgeStore) Add(e *Edge, key EdgeKey) bool {
	if e == nil || e.Source == nil || e.Target == nil {
		return false
	}
	if key.IsCursor() {
		e.key = key
		s.edges.Add(e, key)
		return true
	}
	if e.Source == e.Target || key != PairKey(e.Source, e.Target) || s.edges.Has(key) {
		return false
	}
	e.key = key
	s.edges.Add(e, key)
	e.Source.link(e.Target)
	s.emit(EdgeEvent{Kind: Connection, Edge: e})
	s.graphHooks().OnConnect(e.Source.id, e.Target.id)
	return true
}

// Get returns the edge stored under key.
func (s *EdgeStore) Get(key EdgeKey) (*Edge, bool) { return s.edges.Get(key) }

// All returns every edge in insertion order, the cursor edge included.
func (s *EdgeStore) All() []*Edge { return s.edges.All() }

// Connections returns every committed edge, excluding the cursor edge.
func (s *EdgeStore) Connections() []*Edge {
	return slices.DeleteFunc(s.edges.All(), func(e *Edge) bool { return e.key.IsCursor() })
}

// Count returns the number of stored edges, the cursor edge included.
func (s *EdgeStore) Count() int { return s.edges.Count() }

// Delete removes the edge under key and reports whether one existed. Removing
// a pair edge unlinks both anchors and emits a [Disconnection] event.
func (s *EdgeStore) Delete(key EdgeKey) bool {
	e, ok := s.edges.Get(key)
	if !ok {
		return false
	}
	s.edges.Delete(key)
	if key.IsCursor() {
		return true
	}
	e.Source.unlink(e.Target)
	s.emit(EdgeEvent{Kind: Disconnection, Edge: e})
	s.graphHooks().OnDisconnect(e.Source.id, e.Target.id)
	return true
}

// Fetch returns the edge between source and target in either order.
func (s *EdgeStore) Fetch(source, target *Anchor) (*Edge, bool) {
	if source == nil || target == nil {
		return nil, false
	}
	return s.edges.Get(PairKey(source, target))
}

// Match returns the keys of every committed edge touching all of the given
// anchors. Nil arguments are ignored, so Match(a) lists a's edges and
// Match(a, b) is either empty or the single edge between them.
func (s *EdgeStore) Match(anchors ...*Anchor) []EdgeKey {
	var ids []string
	for _, a := range anchors {
		if a != nil {
			ids = append(ids, a.id)
		}
	}
	var out []EdgeKey
	for _, k := range s.edges.Keys() {
		if k.IsCursor() {
			continue
		}
		if !slices.ContainsFunc(ids, func(id string) bool { return !k.Contains(id) }) {
			out = append(out, k)
		}
	}
	return out
}

// MatchNode returns the keys of every committed edge with an endpoint on n.
func (s *EdgeStore) MatchNode(n *Node) []EdgeKey {
	var out []EdgeKey
	s.edges.Each(func(k EdgeKey, e *Edge) bool {
		if !k.IsCursor() && (e.Source.node == n || e.Target.node == n) {
			out = append(out, k)
		}
		return true
	})
	return out
}

// On registers fn for connection and disconnection events and returns a
// function that removes it.
func (s *EdgeStore) On(fn func(EdgeEvent)) (unsubscribe func()) {
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, edgeListener{id: id, fn: fn})
	return func() {
		s.listeners = slices.DeleteFunc(s.listeners, func(l edgeListener) bool { return l.id == id })
	}
}

func (s *EdgeStore) emit(ev EdgeEvent) {
	for _, l := range slices.Clone(s.listeners) {
		l.fn(ev)
	}
}

func (s *EdgeStore) removeAnchor(a *Anchor) {
	for _, k := range s.Match(a) {
		s.Delete(k)
	}
}
