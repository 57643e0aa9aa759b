package audit

import (
	"context"
	"errors"
	"sync"

	id "friendsd/pkg/domain"
)

// DefaultPerPlayerLimit bounds how many events InMemoryStore keeps per player.
const DefaultPerPlayerLimit = 256

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Discard drops every event. Events are still logged by LogEvent.
var Discard Store = discardStore{}

type discardStore struct{}

func (discardStore) Append(context.Context, Event) error { return nil }

// InMemoryStore keeps the most recent events per player for tests and
// single-node runs. Older events are dropped once a player's limit is hit.
type InMemoryStore struct {
	mu     sync.RWMutex
	limit  int
	events map[id.PlayerID][]Event
}

type InMemoryOption func(*InMemoryStore)

// WithPerPlayerLimit caps the events kept per player. Non-positive values
// keep the default.
func WithPerPlayerLimit(n int) InMemoryOption {
	return func(s *InMemoryStore) {
		if n > 0 {
			s.limit = n
		}
	}
}

func NewInMemoryStore(opts ...InMemoryOption) *InMemoryStore {
	s := &InMemoryStore{limit: DefaultPerPlayerLimit, events: make(map[id.PlayerID][]Event)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := append(s.events[event.PlayerID], event)
	if over := len(events) - s.limit; over > 0 {
		// Copy down so the dropped prefix is released.
		events = append(events[:0:0], events[over:]...)
	}
	s.events[event.PlayerID] = events
	return nil
}

func (s *InMemoryStore) ListByPlayer(_ context.Context, player id.PlayerID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[player]...), nil
}

// Fanout appends to every store, attempting all of them.
type Fanout []Store

func (f Fanout) Append(ctx context.Context, event Event) error {
	var errs []error
	for _, s := range f {
		if err := s.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
