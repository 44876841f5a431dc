package memory

import (
	"context"
	"sync"

	"landregistry/pkg/domain"
	audit "landregistry/pkg/platform/audit"
)

// InMemoryStore keeps audit events in process, indexed by actor.
type InMemoryStore struct {
	mu      sync.RWMutex
	events  []audit.Event
	byActor map[domain.Address][]int
	failing error
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byActor: make(map[domain.Address][]int)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing != nil {
		return s.failing
	}
	s.events = append(s.events, event)
	s.byActor[event.Actor] = append(s.byActor[event.Actor], len(s.events)-1)
	return nil
}

// FailWith makes every subsequent Append return err. Pass nil to recover.
func (s *InMemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = err
}

func (s *InMemoryStore) ListByActor(_ context.Context, actor domain.Address) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.byActor[actor]
	out := make([]audit.Event, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.events[i])
	}
	return out, nil
}

// ListRecent returns up to limit events, most recent first.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	out := make([]audit.Event, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

// Actions returns the action of every stored event in append order.
func (s *InMemoryStore) Actions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.Action
	}
	return out
}
