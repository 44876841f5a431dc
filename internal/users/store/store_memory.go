// Package store persists registry users and regional admins.
package store

import (
	"context"
	"sort"
	"sync"

	"landregistry/internal/users/models"
	"landregistry/pkg/domain"
	"landregistry/pkg/platform/sentinel"
)

type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[domain.Address]*models.User
}

func NewInMemoryUsers() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[domain.Address]*models.User)}
}

func cloneUser(u *models.User) *models.User {
	cp := *u
	if u.ReviewedAt != nil {
		t := *u.ReviewedAt
		cp.ReviewedAt = &t
	}
	return &cp
}

func (s *InMemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Address]; ok {
		return sentinel.ErrAlreadyUsed
	}
	s.users[user.Address] = cloneUser(user)
	return nil
}

func (s *InMemoryUserStore) FindByAddress(_ context.Context, addr domain.Address) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[addr]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *InMemoryUserStore) Execute(_ context.Context, addr domain.Address, validate func(*models.User) error, mutate func(*models.User)) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[addr]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := cloneUser(u)
	if err := validate(cp); err != nil {
		return nil, err
	}
	mutate(cp)
	s.users[addr] = cloneUser(cp)
	return cp, nil
}

// ListByDepartment returns users of dept oldest registration first. An empty
// status returns every status.
func (s *InMemoryUserStore) ListByDepartment(_ context.Context, dept domain.DepartmentID, status models.Status) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.User
	for _, u := range s.users {
		if u.DepartmentID != dept {
			continue
		}
		if status != "" && u.Status != status {
			continue
		}
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].Address < out[j].Address
		}
		return out[i].RegisteredAt.Before(out[j].RegisteredAt)
	})
	return out, nil
}

type InMemoryAdminStore struct {
	mu     sync.RWMutex
	admins map[domain.Address]*models.RegionalAdmin
}

func NewInMemoryAdmins() *InMemoryAdminStore {
	return &InMemoryAdminStore{admins: make(map[domain.Address]*models.RegionalAdmin)}
}

func (s *InMemoryAdminStore) Create(_ context.Context, admin *models.RegionalAdmin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.admins[admin.Address]; ok {
		return sentinel.ErrAlreadyUsed
	}
	cp := *admin
	s.admins[admin.Address] = &cp
	return nil
}

func (s *InMemoryAdminStore) FindByAddress(_ context.Context, addr domain.Address) (*models.RegionalAdmin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.admins[addr]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *InMemoryAdminStore) Delete(_ context.Context, addr domain.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.admins[addr]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.admins, addr)
	return nil
}

func (s *InMemoryAdminStore) List(_ context.Context) ([]*models.RegionalAdmin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.RegionalAdmin, 0, len(s.admins))
	for _, a := range s.admins {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DepartmentID != out[j].DepartmentID {
			return out[i].DepartmentID < out[j].DepartmentID
		}
		return out[i].Address < out[j].Address
	})
	return out, nil
}
