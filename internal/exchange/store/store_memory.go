// Package store persists sales and purchase requests.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"landregistry/internal/exchange/models"
	"landregistry/pkg/domain"
	"landregistry/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu             sync.RWMutex
	nextSale       domain.SaleID
	nextRequest    domain.RequestID
	sales          map[domain.SaleID]*models.Sale
	requests       map[domain.RequestID]*models.PurchaseRequest
	openByProperty map[domain.PropertyID]domain.SaleID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		sales:          make(map[domain.SaleID]*models.Sale),
		requests:       make(map[domain.RequestID]*models.PurchaseRequest),
		openByProperty: make(map[domain.PropertyID]domain.SaleID),
	}
}

func cloneSale(s *models.Sale) *models.Sale {
	cp := *s
	if s.PaymentDeadline != nil {
		d := *s.PaymentDeadline
		cp.PaymentDeadline = &d
	}
	if s.PaidAt != nil {
		p := *s.PaidAt
		cp.PaidAt = &p
	}
	return &cp
}

// CreateSale fails with sentinel.ErrAlreadyUsed while the property has an open sale.
func (s *InMemoryStore) CreateSale(_ context.Context, sale *models.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.openByProperty[sale.PropertyID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	s.nextSale++
	sale.ID = s.nextSale
	s.sales[sale.ID] = cloneSale(sale)
	s.openByProperty[sale.PropertyID] = sale.ID
	return nil
}

func (s *InMemoryStore) FindSale(_ context.Context, id domain.SaleID) (*models.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sale, ok := s.sales[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneSale(sale), nil
}

func (s *InMemoryStore) FindSaleForUpdate(ctx context.Context, id domain.SaleID) (*models.Sale, error) {
	return s.FindSale(ctx, id)
}

func (s *InMemoryStore) ExecuteSale(_ context.Context, id domain.SaleID, validate func(*models.Sale) error, mutate func(*models.Sale)) (*models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := cloneSale(sale)
	if err := validate(cp); err != nil {
		return nil, err
	}
	mutate(cp)
	s.sales[id] = cloneSale(cp)
	if !cp.State.IsOpen() {
		delete(s.openByProperty, cp.PropertyID)
	}
	return cp, nil
}

func (s *InMemoryStore) ListSales(_ context.Context, filter models.SaleFilter) ([]*models.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Sale
	for _, sale := range s.sales {
		if filter.Matches(sale) {
			out = append(out, cloneSale(sale))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListOverdue returns accepted sales whose payment deadline is before now.
func (s *InMemoryStore) ListOverdue(_ context.Context, now time.Time) ([]*models.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Sale
	for _, sale := range s.sales {
		if sale.IsOverdue(now) {
			out = append(out, cloneSale(sale))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateRequest fails with sentinel.ErrAlreadyUsed while the buyer has an open request on the sale.
func (s *InMemoryStore) CreateRequest(_ context.Context, req *models.PurchaseRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.State.IsOpen() {
		for _, existing := range s.requests {
			if existing.SaleID == req.SaleID && existing.Buyer == req.Buyer && existing.State.IsOpen() {
				return sentinel.ErrAlreadyUsed
			}
		}
	}
	s.nextRequest++
	req.ID = s.nextRequest
	cp := *req
	s.requests[req.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindRequest(_ context.Context, id domain.RequestID) (*models.PurchaseRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (s *InMemoryStore) ExecuteRequest(_ context.Context, id domain.RequestID, validate func(*models.PurchaseRequest) error, mutate func(*models.PurchaseRequest)) (*models.PurchaseRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *req
	if err := validate(&cp); err != nil {
		return nil, err
	}
	mutate(&cp)
	stored := cp
	s.requests[id] = &stored
	return &cp, nil
}

func (s *InMemoryStore) ListRequests(_ context.Context, filter models.RequestFilter) ([]*models.PurchaseRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.PurchaseRequest
	for _, req := range s.requests {
		if filter.Matches(req) {
			cp := *req
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SetRequestStates moves every request of sale in one of from to next and
// returns how many changed.
func (s *InMemoryStore) SetRequestStates(_ context.Context, sale domain.SaleID, from []models.RequestState, next models.RequestState, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	filter := models.RequestFilter{SaleID: sale, States: from}
	n := 0
	for _, req := range s.requests {
		if filter.Matches(req) {
			req.Apply(next, now)
			n++
		}
	}
	return n, nil
}
