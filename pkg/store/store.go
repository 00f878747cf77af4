// Package store provides the keyed collection every canvas entity lives in.
//
// A [Store] maps keys to entities and remembers insertion order so that
// [Store.All] returns a stable snapshot. Stores are shared by reference:
// every holder of the same *Store observes every mutation immediately.
//
// Stores are not safe for concurrent use. The canvas runs all mutations on a
// single goroutine (see package movement's Loop); callers that touch a store
// from several goroutines must serialise access themselves.
package store

import "slices"

// Store is an insertion-ordered map from K to T.
//
// The zero value is not usable; create stores with [New].
type Store[K comparable, T any] struct {
	items map[K]T
	order []K
}

// New creates an empty store.
func New[K comparable, T any]() *Store[K, T] {
	return &Store[K, T]{items: make(map[K]T)}
}

// Add inserts item under key. An existing entry with the same key is
// replaced in place and keeps its original position in the order.
func (s *Store[K, T]) Add(item T, key K) {
	if _, exists := s.items[key]; !exists {
		s.order = append(s.order, key)
	}
	s.items[key] = item
}

// Get returns the entity stored under key and true, or the zero value and
// false when the key is unknown.
func (s *Store[K, T]) Get(key K) (T, bool) {
	item, ok := s.items[key]
	return item, ok
}

// Has reports whether key is present.
func (s *Store[K, T]) Has(key K) bool {
	_, ok := s.items[key]
	return ok
}

// All returns a snapshot of the entities in insertion order. Mutating the
// store afterwards does not affect the returned slice.
func (s *Store[K, T]) All() []T {
	out := make([]T, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.items[k])
	}
	return out
}

// Keys returns a snapshot of the keys in insertion order.
func (s *Store[K, T]) Keys() []K { return slices.Clone(s.order) }

// Delete removes key and reports whether an entity existed.
func (s *Store[K, T]) Delete(key K) bool {
	if _, ok := s.items[key]; !ok {
		return false
	}
	delete(s.items, key)
	if i := slices.Index(s.order, key); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return true
}

// Count returns the number of stored entities.
func (s *Store[K, T]) Count() int { return len(s.items) }

// Each calls fn for every entity in insertion order until fn returns false.
// fn may delete the entity it is visiting.
func (s *Store[K, T]) Each(fn func(key K, item T) bool) {
	for _, k := range s.Keys() {
		item, ok := s.items[k]
		if !ok {
			continue
		}
		if !fn(k, item) {
			return
		}
	}
}

// Find returns the first entity in insertion order for which match is true.
func (s *Store[K, T]) Find(match func(key K, item T) bool) (T, bool) {
	for _, k := range s.order {
		if item := s.items[k]; match(k, item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Clear removes every entity.
func (s *Store[K, T]) Clear() {
	clear(s.items)
	s.order = nil
}
