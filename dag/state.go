package dag

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/sitekit/errors"
)

// State is a run-scoped, thread-safe store nodes use to hand results to
// their dependents. A new State per run keeps a failed run's values private.
type State struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewState creates a new empty State.
func NewState() *State {
	return &State{data: make(map[string]any)}
}

// Get retrieves a value by key. Returns false if the key does not exist.
func (s *State) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Set stores a value by key.
func (s *State) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Keys returns the stored keys in sorted order.
func (s *State) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Port is a compile-time typed accessor for State.
type Port[T any] struct {
	Key string
}

// Read retrieves a typed value from state using a Port.
// A missing key is NOT_FOUND; a value of the wrong type is INTERNAL_ERROR.
func Read[T any](state *State, port Port[T]) (T, error) {
	var zero T
	raw, ok := state.Get(port.Key)
	if !ok {
		return zero, errors.NotFound("state key", port.Key)
	}
	val, ok := raw.(T)
	if !ok {
		return zero, errors.Internal(fmt.Errorf("state key %q: expected %T, got %T", port.Key, zero, raw))
	}
	return val, nil
}

// Write stores a typed value into state using a Port.
func Write[T any](state *State, port Port[T], value T) {
	state.Set(port.Key, value)
}
