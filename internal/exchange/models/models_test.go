package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landregistry/pkg/domain"
	dErrors "landregistry/pkg/domain-errors"
)

var (
	seller = domain.MustAddress("0x1111111111111111111111111111111111111111")
	buyer  = domain.MustAddress("0x2222222222222222222222222222222222222222")
	t0     = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
)

func acceptedSale(t *testing.T) (*Sale, *PurchaseRequest) {
	t.Helper()
	sale, err := NewSale(1, seller, 1000, t0)
	require.NoError(t, err)
	sale.ID = 3
	req, err := NewPurchaseRequest(sale.ID, buyer, 950, t0)
	require.NoError(t, err)
	req.ID = 8
	require.NoError(t, sale.CanAccept())
	sale.ApplyAccept(req, t0.Add(72*time.Hour), t0)
	return sale, req
}

func TestSalePayment(t *testing.T) {
	t.Run("exact amount before the deadline", func(t *testing.T) {
		sale, req := acceptedSale(t)
		assert.NoError(t, sale.CanPay(req.ID, 950, t0.Add(72*time.Hour)))
	})

	t.Run("after the deadline", func(t *testing.T) {
		sale, req := acceptedSale(t)
		err := sale.CanPay(req.ID, 950, t0.Add(72*time.Hour+time.Second))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeDeadlinePassed))
		assert.True(t, sale.IsOverdue(t0.Add(73*time.Hour)))
	})

	t.Run("wrong amount", func(t *testing.T) {
		sale, req := acceptedSale(t)
		err := sale.CanPay(req.ID, 1000, t0)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("other request", func(t *testing.T) {
		sale, _ := acceptedSale(t)
		err := sale.CanPay(99, 950, t0)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("paid sale cannot be cancelled", func(t *testing.T) {
		sale, _ := acceptedSale(t)
		sale.ApplyPayment(t0)
		assert.True(t, dErrors.HasCode(sale.CanCancel(seller), dErrors.CodeInvariantViolation))
		assert.False(t, sale.IsOverdue(t0.Add(100*time.Hour)))
	})
}

func TestClearAcceptance(t *testing.T) {
	sale, _ := acceptedSale(t)
	sale.ClearAcceptance(t0.Add(time.Hour))
	assert.Equal(t, SaleActive, sale.State)
	assert.Nil(t, sale.PaymentDeadline)
	assert.Zero(t, sale.AcceptedRequestID)
	assert.True(t, sale.AcceptedFor.IsZero())
}

func TestFilters(t *testing.T) {
	sale, req := acceptedSale(t)
	assert.True(t, SaleFilter{}.Matches(sale))
	assert.True(t, SaleFilter{Seller: seller, State: SaleAccepted}.Matches(sale))
	assert.False(t, SaleFilter{State: SaleActive}.Matches(sale))

	assert.True(t, RequestFilter{Buyer: buyer}.Matches(req))
	assert.True(t, RequestFilter{SaleID: 3, States: []RequestState{RequestPending, RequestAccepted}}.Matches(req))
	assert.False(t, RequestFilter{States: []RequestState{RequestRejected}}.Matches(req))
}

func TestCancelRequiresSeller(t *testing.T) {
	sale, err := NewSale(1, seller, 10, t0)
	require.NoError(t, err)
	assert.True(t, dErrors.HasCode(sale.CanCancel(buyer), dErrors.CodeForbidden))
	assert.NoError(t, sale.CanCancel(seller))
}
