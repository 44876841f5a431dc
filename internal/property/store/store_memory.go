// Package store persists land parcels.
package store

import (
	"context"
	"sort"
	"sync"

	"landregistry/internal/property/models"
	"landregistry/pkg/domain"
	"landregistry/pkg/platform/sentinel"
)

type parcelKey struct {
	dept     domain.DepartmentID
	location domain.LocationID
	survey   string
}

func keyOf(p *models.Property) parcelKey {
	return parcelKey{dept: p.DepartmentID, location: p.LocationID, survey: p.SurveyNumber}
}

type InMemoryStore struct {
	mu      sync.RWMutex
	nextID  domain.PropertyID
	byID    map[domain.PropertyID]*models.Property
	parcels map[parcelKey]domain.PropertyID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[domain.PropertyID]*models.Property),
		parcels: make(map[parcelKey]domain.PropertyID),
	}
}

// Create assigns the next sequence number to p.
func (s *InMemoryStore) Create(_ context.Context, p *models.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := keyOf(p)
	if _, ok := s.parcels[key]; ok {
		return sentinel.ErrAlreadyUsed
	}
	s.nextID++
	p.ID = s.nextID
	cp := *p
	s.byID[p.ID] = &cp
	s.parcels[key] = p.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.PropertyID) (*models.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *InMemoryStore) Execute(_ context.Context, id domain.PropertyID, validate func(*models.Property) error, mutate func(*models.Property)) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	if err := validate(&cp); err != nil {
		return nil, err
	}
	mutate(&cp)
	stored := cp
	s.byID[id] = &stored
	return &cp, nil
}

func (s *InMemoryStore) ListByOwner(_ context.Context, owner domain.Address) ([]*models.Property, error) {
	return s.list(func(p *models.Property) bool { return p.Owner == owner }), nil
}

// ListByDepartment filters by state unless state is empty.
func (s *InMemoryStore) ListByDepartment(_ context.Context, dept domain.DepartmentID, state models.State) ([]*models.Property, error) {
	return s.list(func(p *models.Property) bool {
		return p.DepartmentID == dept && (state == "" || p.State == state)
	}), nil
}

func (s *InMemoryStore) list(match func(*models.Property) bool) []*models.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Property
	for _, p := range s.byID {
		if match(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
