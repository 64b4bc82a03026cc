package memory

import (
	"context"
	"sync"

	id "gatepass/pkg/domain"
	audit "gatepass/pkg/platform/audit"
)

// Store keeps audit events in memory. Used in development mode and as the
// test sink.
type Store struct {
	mu     sync.RWMutex
	events []audit.Event
}

func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListByPremise returns events for one premise in append order.
func (s *Store) ListByPremise(_ context.Context, premiseID id.PremiseID) []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, e := range s.events {
		if e.PremiseID == premiseID {
			out = append(out, e)
		}
	}
	return out
}

// All returns every recorded event in append order.
func (s *Store) All() []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.Event, len(s.events))
	copy(out, s.events)
	return out
}
