package store

import (
	"encoding/json"
	"sync"
)

// Listener observes every committed action. It runs on the dispatching
// goroutine after the new state is visible, so it must neither block nor
// dispatch; schedule follow-up work on another goroutine instead.
type Listener func(prev, next State, action Action)

// Store owns the tree. Dispatch applies actions atomically; readers always
// see a complete state.
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners map[int]Listener
	nextID    int
	history   []Location

	// dispatchMu serializes reduce+notify so listeners see commits in order.
	dispatchMu sync.Mutex
}

// New creates a Store positioned at the given location.
func New(initial Location) *Store {
	if initial.Pathname == "" {
		initial.Pathname = "/"
	}
	return &Store{
		state: State{
			App:      map[string]any{},
			Loading:  map[string]int{},
			Location: initial,
		},
		listeners: map[int]Listener{},
		history:   []Location{initial},
	}
}

// Snapshot returns the current tree. The top-level maps are copies; module
// slices are shared and must be treated as read-only.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// ModuleState returns the slice registered under name.
func (s *Store) ModuleState(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state.App[name]
	return v, ok
}

// History returns every location pushed so far, oldest first.
func (s *Store) History() []Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Location, len(s.history))
	copy(out, s.history)
	return out
}

// Dispatch commits a and notifies listeners.
func (s *Store) Dispatch(a Action) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	prev := s.state
	next := reduce(prev, a)
	s.state = next
	if _, ok := a.(PushAction); ok {
		s.history = append(s.history, next.Location)
	}
	listeners := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(prev, next, a)
	}
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// AppJSON serializes the module slices; used as the appState snapshot in
// exception events.
func (s *Store) AppJSON() string {
	s.mu.RLock()
	app := s.state.App
	s.mu.RUnlock()

	raw, err := json.Marshal(app)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
