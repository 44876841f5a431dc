package models

import (
	"strings"
	"time"

	"landregistry/pkg/domain"
	dErrors "landregistry/pkg/domain-errors"
)

type SaleState string

const (
	SaleActive    SaleState = "active"
	SaleAccepted  SaleState = "accepted"
	SalePaid      SaleState = "paid"
	SaleCompleted SaleState = "completed"
	SaleCancelled SaleState = "cancelled"
)

// IsOpen reports whether the sale still blocks another sale of the same property.
func (s SaleState) IsOpen() bool {
	return s == SaleActive || s == SaleAccepted || s == SalePaid
}

func ParseSaleState(s string) (SaleState, error) {
	switch st := SaleState(strings.ToLower(strings.TrimSpace(s))); st {
	case SaleActive, SaleAccepted, SalePaid, SaleCompleted, SaleCancelled:
		return st, nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unknown sale state %q", s)
}

type RequestState string

const (
	RequestPending   RequestState = "pending"
	RequestCancelled RequestState = "cancelled"
	RequestAccepted  RequestState = "accepted"
	RequestRejected  RequestState = "rejected"
	RequestCompleted RequestState = "completed"
)

func (s RequestState) IsOpen() bool {
	return s == RequestPending || s == RequestAccepted
}

// Sale offers one property at a price. At most one open sale exists per
// property.
//
// Invariants:
//   - AcceptedRequestID, AcceptedFor, AcceptedPrice and PaymentDeadline are set
//     exactly while the sale is accepted, paid or completed
//   - PaidAt is set once the buyer paid into escrow
type Sale struct {
	ID                domain.SaleID
	PropertyID        domain.PropertyID
	Seller            domain.Address
	Price             int64
	State             SaleState
	AcceptedRequestID domain.RequestID
	AcceptedFor       domain.Address
	AcceptedPrice     int64
	PaymentDeadline   *time.Time
	PaidAt            *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func NewSale(property domain.PropertyID, seller domain.Address, price int64, now time.Time) (*Sale, error) {
	if price <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "price must be positive")
	}
	if seller.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "seller is required")
	}
	return &Sale{
		PropertyID: property,
		Seller:     seller,
		Price:      price,
		State:      SaleActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *Sale) requireState(want ...SaleState) error {
	for _, w := range want {
		if s.State == w {
			return nil
		}
	}
	return dErrors.Newf(dErrors.CodeInvariantViolation, "sale is %s", s.State)
}

// CanCancel allows the seller to withdraw an unpaid sale.
func (s *Sale) CanCancel(seller domain.Address) error {
	if s.Seller != seller {
		return dErrors.New(dErrors.CodeForbidden, "only the seller may cancel the sale")
	}
	return s.requireState(SaleActive, SaleAccepted)
}

func (s *Sale) ApplyCancel(now time.Time) {
	s.State = SaleCancelled
	s.UpdatedAt = now
}

func (s *Sale) CanAccept() error {
	return s.requireState(SaleActive)
}

func (s *Sale) ApplyAccept(req *PurchaseRequest, deadline, now time.Time) {
	s.State = SaleAccepted
	s.AcceptedRequestID = req.ID
	s.AcceptedFor = req.Buyer
	s.AcceptedPrice = req.OfferedPrice
	s.PaymentDeadline = &deadline
	s.UpdatedAt = now
}

// ClearAcceptance reopens an accepted, unpaid sale.
func (s *Sale) ClearAcceptance(now time.Time) {
	s.State = SaleActive
	s.AcceptedRequestID = 0
	s.AcceptedFor = ""
	s.AcceptedPrice = 0
	s.PaymentDeadline = nil
	s.UpdatedAt = now
}

// CanPay checks a payment for the accepted request. The deadline is
// inclusive.
func (s *Sale) CanPay(req domain.RequestID, amount int64, now time.Time) error {
	if err := s.requireState(SaleAccepted); err != nil {
		return err
	}
	if s.AcceptedRequestID != req {
		return dErrors.New(dErrors.CodeInvariantViolation, "request is not the accepted request for this sale")
	}
	if s.IsOverdue(now) {
		return dErrors.New(dErrors.CodeDeadlinePassed, "payment deadline has passed")
	}
	if amount != s.AcceptedPrice {
		return dErrors.Newf(dErrors.CodeValidation, "payment must equal the accepted price of %d", s.AcceptedPrice)
	}
	return nil
}

func (s *Sale) ApplyPayment(now time.Time) {
	s.State = SalePaid
	s.PaidAt = &now
	s.UpdatedAt = now
}

func (s *Sale) CanComplete() error {
	return s.requireState(SalePaid)
}

func (s *Sale) ApplyComplete(now time.Time) {
	s.State = SaleCompleted
	s.UpdatedAt = now
}

// IsOverdue reports whether an accepted sale missed its payment deadline.
func (s *Sale) IsOverdue(now time.Time) bool {
	return s.State == SaleAccepted && s.PaymentDeadline != nil && now.After(*s.PaymentDeadline)
}

// PurchaseRequest is a buyer's offer on a sale.
type PurchaseRequest struct {
	ID           domain.RequestID
	SaleID       domain.SaleID
	Buyer        domain.Address
	OfferedPrice int64
	State        RequestState
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewPurchaseRequest(sale domain.SaleID, buyer domain.Address, offer int64, now time.Time) (*PurchaseRequest, error) {
	if offer <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "offered price must be positive")
	}
	if buyer.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "buyer is required")
	}
	return &PurchaseRequest{
		SaleID:       sale,
		Buyer:        buyer,
		OfferedPrice: offer,
		State:        RequestPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (r *PurchaseRequest) RequireState(want ...RequestState) error {
	for _, w := range want {
		if r.State == w {
			return nil
		}
	}
	return dErrors.Newf(dErrors.CodeInvariantViolation, "purchase request is %s", r.State)
}

func (r *PurchaseRequest) Apply(next RequestState, now time.Time) {
	r.State = next
	r.UpdatedAt = now
}

// SaleFilter selects sales. Zero fields match everything.
type SaleFilter struct {
	State      SaleState
	Seller     domain.Address
	PropertyID domain.PropertyID
}

func (f SaleFilter) Matches(s *Sale) bool {
	if f.State != "" && s.State != f.State {
		return false
	}
	if f.Seller != "" && s.Seller != f.Seller {
		return false
	}
	if f.PropertyID != 0 && s.PropertyID != f.PropertyID {
		return false
	}
	return true
}

// RequestFilter selects purchase requests. Empty States matches every state.
type RequestFilter struct {
	SaleID domain.SaleID
	Buyer  domain.Address
	States []RequestState
}

func (f RequestFilter) Matches(r *PurchaseRequest) bool {
	if f.SaleID != 0 && r.SaleID != f.SaleID {
		return false
	}
	if f.Buyer != "" && r.Buyer != f.Buyer {
		return false
	}
	if len(f.States) == 0 {
		return true
	}
	for _, st := range f.States {
		if r.State == st {
			return true
		}
	}
	return false
}
