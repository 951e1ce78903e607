// Package store is the shared application state handed to data hooks and
// middleware.
//
// The pipeline only needs a place to read and write a few keys (the current
// route, the active locale, whatever the application's middleware records),
// so Store is a concurrency-safe key-value map with change subscriptions.
package store

import (
	"sort"
	"sync"

	"github.com/vango-dev/navguard/pkg/nav"
)

// Well-known keys written by the pipeline.
const (
	// RouteKey holds the committed nav.Location.
	RouteKey = "route"

	// LocaleKey holds the active locale tag as a string.
	LocaleKey = "locale"
)

// Listener is notified after a key changes. A nil value means the key was
// deleted.
type Listener func(key string, value any)

// Store is a concurrency-safe key-value state container.
type Store struct {
	mu        sync.RWMutex
	state     map[string]any
	listeners map[uint64]Listener
	nextID    uint64
}

// New creates a store seeded with initial (copied).
func New(initial map[string]any) *Store {
	s := &Store{
		state:     make(map[string]any, len(initial)),
		listeners: make(map[uint64]Listener),
	}
	for k, v := range initial {
		s.state[k] = v
	}
	return s
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state[key]
	return v, ok
}

// String returns the value under key if it is a string.
func (s *Store) String(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

// Set stores value under key and notifies listeners.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	s.state[key] = value
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	for _, l := range listeners {
		l(key, value)
	}
}

// Delete removes key and notifies listeners if it existed.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	_, existed := s.state[key]
	delete(s.state, key)
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	if !existed {
		return
	}
	for _, l := range listeners {
		l(key, nil)
	}
}

// Snapshot returns a shallow copy of the whole state.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.state))
	for k, v := range s.state {
		out[k] = v
	}
	return out
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.state))
	for k := range s.state {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// snapshotListeners must be called with mu held. Listeners run outside the
// lock so they may call back into the store.
func (s *Store) snapshotListeners() []Listener {
	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.listeners[id])
	}
	return out
}

// SyncRoute mirrors a committed location into the store under RouteKey.
func (s *Store) SyncRoute(loc nav.Location) {
	s.Set(RouteKey, loc)
}

// Route returns the location last written by SyncRoute.
func (s *Store) Route() (nav.Location, bool) {
	v, ok := s.Get(RouteKey)
	if !ok {
		return nav.Location{}, false
	}
	loc, ok := v.(nav.Location)
	return loc, ok
}
