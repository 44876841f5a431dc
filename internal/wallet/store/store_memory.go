// Package store persists wallet accounts and the transfer ledger.
package store

import (
	"context"
	"sort"
	"sync"

	"landregistry/internal/wallet/models"
	"landregistry/pkg/domain"
	"landregistry/pkg/platform/sentinel"
)

// InMemoryStore is the ledger used in tests and when no database is configured.
type InMemoryStore struct {
	mu        sync.Mutex
	accounts  map[domain.Address]*models.Account
	transfers []*models.Transfer
	nextID    int64
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{accounts: make(map[domain.Address]*models.Account)}
}

func (s *InMemoryStore) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.Address]; ok {
		return sentinel.ErrAlreadyUsed
	}
	cp := *account
	s.accounts[account.Address] = &cp
	return nil
}

func (s *InMemoryStore) FindByAddress(_ context.Context, addr domain.Address) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[addr]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

// Execute validates and mutates an account under the store lock. Nothing is
// written when validate fails.
func (s *InMemoryStore) Execute(_ context.Context, addr domain.Address, validate func(*models.Account) error, mutate func(*models.Account)) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[addr]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *acc
	if err := validate(&cp); err != nil {
		return nil, err
	}
	mutate(&cp)
	s.accounts[addr] = &cp
	out := cp
	return &out, nil
}

func (s *InMemoryStore) RecordTransfer(_ context.Context, t *models.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t.ID = s.nextID
	cp := *t
	s.transfers = append(s.transfers, &cp)
	return nil
}

// ListTransfers returns the most recent transfers touching addr, newest first.
func (s *InMemoryStore) ListTransfers(_ context.Context, addr domain.Address, limit int) ([]*models.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Transfer
	for _, t := range s.transfers {
		if t.From == addr || t.To == addr {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// TotalBalance sums every account. Used to check conservation in tests.
func (s *InMemoryStore) TotalBalance() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, a := range s.accounts {
		total += a.Balance
	}
	return total
}
