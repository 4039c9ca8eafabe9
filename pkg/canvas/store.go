package canvas

import (
	"fmt"
	"strings"
	"sync"

	"github.com/odvcencio/easel/pkg/observability"
)

// Store is the single authoritative state holder. It serializes all
// dispatch through one mutex, so the reducer only ever has one writer,
// and hands readers the current immutable snapshot.
type Store struct {
	mu       sync.Mutex
	reducer  *Reducer
	state    *State
	onChange []func(*State)
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithOnChange registers a listener invoked with the new snapshot after
// every state-changing dispatch. Listeners run on the dispatching
// goroutine and must not dispatch themselves.
func WithOnChange(fn func(*State)) StoreOption {
	return func(s *Store) { s.onChange = append(s.onChange, fn) }
}

// NewStore builds a store around the given reducer, starting from the
// initial state.
func NewStore(reducer *Reducer, opts ...StoreOption) *Store {
	s := &Store{reducer: reducer, state: NewState()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch applies one action. Actions are applied in the exact order
// Dispatch is called; there is no batching or reordering.
func (s *Store) Dispatch(a Action) {
	observability.ActionsDispatched.WithLabelValues(actionName(a)).Inc()

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.reducer.Reduce(s.state, a)
	if next == s.state {
		return
	}
	s.state = next
	for _, fn := range s.onChange {
		fn(next)
	}
}

// State returns the current snapshot. Snapshots are immutable; readers
// may hold them across dispatches.
func (s *Store) State() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func actionName(a Action) string {
	name := fmt.Sprintf("%T", a)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
