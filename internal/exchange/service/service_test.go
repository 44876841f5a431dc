package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Properties,Registry,Ledger,AuditPublisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"landregistry/internal/exchange/models"
	"landregistry/internal/exchange/service/mocks"
	"landregistry/internal/exchange/store"
	"landregistry/internal/platform/metrics"
	propmodels "landregistry/internal/property/models"
	propservice "landregistry/internal/property/service"
	propstore "landregistry/internal/property/store"
	usermodels "landregistry/internal/users/models"
	userservice "landregistry/internal/users/service"
	userstore "landregistry/internal/users/store"
	walletservice "landregistry/internal/wallet/service"
	"landregistry/internal/wallet/session"
	walletstore "landregistry/internal/wallet/store"
	"landregistry/internal/wallet/store/revocation"
	"landregistry/pkg/domain"
	dErrors "landregistry/pkg/domain-errors"
	audit "landregistry/pkg/platform/audit"
	auditmemory "landregistry/pkg/platform/audit/store/memory"
	"landregistry/pkg/platform/sentinel"
	"landregistry/pkg/platform/tx"
	"landregistry/pkg/requestcontext"
)

var (
	mainAdmin = domain.MustAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	admin7    = domain.MustAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	admin9    = domain.MustAddress("0xcccccccccccccccccccccccccccccccccccccccc")
	seller    = domain.MustAddress("0x1111111111111111111111111111111111111111")
	buyer     = domain.MustAddress("0x2222222222222222222222222222222222222222")
	buyer2    = domain.MustAddress("0x3333333333333333333333333333333333333333")
	stranger  = domain.MustAddress("0x4444444444444444444444444444444444444444")

	t0 = time.Date(2026, 8, 3, 10, 0, 0, 0, time.UTC)
)

const startingBalance = 500_000

type ExchangeServiceSuite struct {
	suite.Suite
	ctx        context.Context
	auditStore *auditmemory.InMemoryStore
	metrics    *metrics.Metrics
	wallet     *walletservice.Service
	properties *propservice.Service
	svc        *Service
	propertyID domain.PropertyID
}

func TestExchangeServiceSuite(t *testing.T) {
	suite.Run(t, new(ExchangeServiceSuite))
}

func (s *ExchangeServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), t0)
	runner := tx.NewMemoryRunner()
	s.auditStore = auditmemory.NewInMemoryStore()
	publisher := audit.NewPublisher(s.auditStore)
	s.metrics = metrics.New(prometheus.NewRegistry())

	users := userservice.New(userstore.NewInMemoryUsers(), userstore.NewInMemoryAdmins(), runner, mainAdmin)
	for _, a := range []userservice.NewAdmin{
		{Address: admin7, Name: "Ravi", DepartmentID: 7, Designation: "Tehsildar", City: "Pune"},
		{Address: admin9, Name: "Meera", DepartmentID: 9, Designation: "Tehsildar", City: "Nashik"},
	} {
		_, err := users.AddRegionalAdmin(s.ctx, mainAdmin, a)
		s.Require().NoError(err)
	}
	for i, addr := range []domain.Address{seller, buyer, buyer2, stranger} {
		_, err := users.RegisterUser(s.ctx, addr, usermodels.Registration{
			Name: "User", Age: 30 + i, City: "Pune", GovernmentID: "12345678901" + string(rune('0'+i)),
			DocumentCID: "bafy-id", Email: "user@example.com", DepartmentID: 7,
		})
		s.Require().NoError(err)
		if addr != stranger {
			_, err = users.VerifyUser(s.ctx, admin7, addr)
			s.Require().NoError(err)
		}
	}

	s.wallet = walletservice.New(walletstore.NewInMemory(), session.NewJWTService("k", "landregistry", 1337),
		revocation.NewMemory(), runner,
		walletservice.Config{ChainID: 1337, InitialBalance: startingBalance},
		walletservice.WithBcryptCost(bcrypt.MinCost),
	)
	s.Require().NoError(s.wallet.EnsureEscrow(s.ctx))
	for _, addr := range []domain.Address{seller, buyer, buyer2, stranger} {
		_, err := s.wallet.CreateAccount(s.ctx, addr, "correct horse")
		s.Require().NoError(err)
	}

	s.properties = propservice.New(propstore.NewInMemory(), users, runner)
	p, err := s.properties.RegisterProperty(s.ctx, seller, propmodels.Registration{
		DepartmentID: 7, LocationID: 42, SurveyNumber: "118/2B", Area: 1500, MarketValue: 90_000, DocumentCID: "bafy-deed",
	})
	s.Require().NoError(err)
	_, err = s.properties.VerifyProperty(s.ctx, admin7, p.ID)
	s.Require().NoError(err)
	s.propertyID = p.ID

	s.svc = New(store.NewInMemory(), s.properties, users, s.wallet, runner,
		WithAuditPublisher(publisher),
		WithMetrics(s.metrics),
	)
}

func (s *ExchangeServiceSuite) propertyState() propmodels.State {
	p, err := s.properties.GetProperty(s.ctx, s.propertyID)
	s.Require().NoError(err)
	return p.State
}

func (s *ExchangeServiceSuite) balance(addr domain.Address) int64 {
	b, err := s.wallet.Balance(s.ctx, addr)
	s.Require().NoError(err)
	return b
}

func (s *ExchangeServiceSuite) listed() *models.Sale {
	sale, err := s.svc.PutOnSale(s.ctx, seller, s.propertyID, 100_000)
	s.Require().NoError(err)
	return sale
}

func (s *ExchangeServiceSuite) accepted(offer int64) (*models.Sale, *models.PurchaseRequest) {
	sale := s.listed()
	req, err := s.svc.SendPurchaseRequest(s.ctx, buyer, sale.ID, offer)
	s.Require().NoError(err)
	sale, err = s.svc.AcceptPurchaseRequest(s.ctx, seller, req.ID)
	s.Require().NoError(err)
	return sale, req
}

func (s *ExchangeServiceSuite) TestPutOnSale() {
	s.Run("owner lists a verified property", func() {
		sale := s.listed()
		s.Equal(models.SaleActive, sale.State)
		s.Equal(int64(100_000), sale.Price)
		s.Equal(propmodels.StateOnSale, s.propertyState())
		s.Contains(s.auditStore.Actions(), string(audit.EventSaleCreated))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.SalesCreated))
	})

	s.Run("listing twice is rejected", func() {
		_, err := s.svc.PutOnSale(s.ctx, seller, s.propertyID, 120_000)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("non-owner is forbidden", func() {
		_, err := s.svc.PutOnSale(s.ctx, buyer, s.propertyID, 100_000)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("price must be positive", func() {
		_, err := s.svc.PutOnSale(s.ctx, seller, s.propertyID, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown property", func() {
		_, err := s.svc.PutOnSale(s.ctx, seller, 404, 10)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ExchangeServiceSuite) TestCancelSale() {
	sale := s.listed()
	req, err := s.svc.SendPurchaseRequest(s.ctx, buyer, sale.ID, 95_000)
	s.Require().NoError(err)

	_, err = s.svc.CancelSale(s.ctx, buyer, sale.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	cancelled, err := s.svc.CancelSale(s.ctx, seller, sale.ID)
	s.Require().NoError(err)
	s.Equal(models.SaleCancelled, cancelled.State)
	s.Equal(propmodels.StateVerified, s.propertyState())

	got, err := s.svc.GetRequest(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(models.RequestRejected, got.State)

	s.Run("property can be listed again", func() {
		relisted, err := s.svc.PutOnSale(s.ctx, seller, s.propertyID, 110_000)
		s.Require().NoError(err)
		s.NotEqual(sale.ID, relisted.ID)
	})
}

func (s *ExchangeServiceSuite) TestCancelAcceptedSale() {
	sale, req := s.accepted(95_000)
	s.Require().Equal(propmodels.StateSaleApproved, s.propertyState())

	cancelled, err := s.svc.CancelSale(s.ctx, seller, sale.ID)
	s.Require().NoError(err)
	s.Equal(models.SaleCancelled, cancelled.State)
	s.Equal(propmodels.StateVerified, s.propertyState())
	s.Equal(int64(startingBalance), s.balance(buyer))

	got, err := s.svc.GetRequest(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(models.RequestRejected, got.State)

	_, err = s.svc.MakePayment(s.ctx, buyer, req.ID, 95_000)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func (s *ExchangeServiceSuite) TestSendPurchaseRequest() {
	sale := s.listed()

	s.Run("verified buyer sends an offer", func() {
		req, err := s.svc.SendPurchaseRequest(s.ctx, buyer, sale.ID, 95_000)
		s.Require().NoError(err)
		s.Equal(models.RequestPending, req.State)
		s.Equal(propmodels.StateSaleRequested, s.propertyState())
	})

	s.Run("second open offer from the same buyer conflicts", func() {
		_, err := s.svc.SendPurchaseRequest(s.ctx, buyer, sale.ID, 96_000)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("seller cannot bid", func() {
		_, err := s.svc.SendPurchaseRequest(s.ctx, seller, sale.ID, 95_000)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("unverified user is forbidden", func() {
		_, err := s.svc.SendPurchaseRequest(s.ctx, stranger, sale.ID, 95_000)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("offer must be positive", func() {
		_, err := s.svc.SendPurchaseRequest(s.ctx, buyer2, sale.ID, -5)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown sale", func() {
		_, err := s.svc.SendPurchaseRequest(s.ctx, buyer2, 999, 5)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ExchangeServiceSuite) TestCancelPurchaseRequest() {
	s.Run("pending offer withdrawn puts the property back on sale", func() {
		sale := s.listed()
		req, err := s.svc.SendPurchaseRequest(s.ctx, buyer, sale.ID, 95_000)
		s.Require().NoError(err)

		_, err = s.svc.CancelPurchaseRequest(s.ctx, buyer2, req.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		got, err := s.svc.CancelPurchaseRequest(s.ctx, buyer, req.ID)
		s.Require().NoError(err)
		s.Equal(models.RequestCancelled, got.State)
		s.Equal(propmodels.StateOnSale, s.propertyState())

		_, err = s.svc.CancelPurchaseRequest(s.ctx, buyer, req.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		_, err = s.svc.CancelSale(s.ctx, seller, sale.ID)
		s.Require().NoError(err)
	})

	s.Run("withdrawing the accepted offer reopens the sale", func() {
		sale, req := s.accepted(95_000)
		_, err := s.svc.SendPurchaseRequest(s.ctx, buyer2, sale.ID, 90_000)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation), "accepted sale takes no new offers")

		_, err = s.svc.CancelPurchaseRequest(s.ctx, buyer, req.ID)
		s.Require().NoError(err)
		reopened, err := s.svc.GetSale(s.ctx, sale.ID)
		s.Require().NoError(err)
		s.Equal(models.SaleActive, reopened.State)
		s.Nil(reopened.PaymentDeadline)
		s.Equal(propmodels.StateOnSale, s.propertyState())
	})
}

func (s *ExchangeServiceSuite) TestAcceptAndReject() {
	sale := s.listed()
	first, err := s.svc.SendPurchaseRequest(s.ctx, buyer, sale.ID, 95_000)
	s.Require().NoError(err)
	second, err := s.svc.SendPurchaseRequest(s.ctx, buyer2, sale.ID, 97_000)
	s.Require().NoError(err)

	s.Run("only the seller answers offers", func() {
		_, err := s.svc.AcceptPurchaseRequest(s.ctx, buyer2, second.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		_, err = s.svc.RejectPurchaseRequest(s.ctx, buyer, first.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("rejecting one offer keeps the property requested", func() {
		got, err := s.svc.RejectPurchaseRequest(s.ctx, seller, first.ID)
		s.Require().NoError(err)
		s.Equal(models.RequestRejected, got.State)
		s.Equal(propmodels.StateSaleRequested, s.propertyState())
	})

	s.Run("accepting starts the payment window", func() {
		accepted, err := s.svc.AcceptPurchaseRequest(s.ctx, seller, second.ID)
		s.Require().NoError(err)
		s.Equal(models.SaleAccepted, accepted.State)
		s.Equal(buyer2, accepted.AcceptedFor)
		s.Equal(int64(97_000), accepted.AcceptedPrice)
		s.Require().NotNil(accepted.PaymentDeadline)
		s.Equal(t0.Add(72*time.Hour), *accepted.PaymentDeadline)
		s.Equal(propmodels.StateSaleApproved, s.propertyState())
	})

	s.Run("a sale accepts only one offer", func() {
		_, err := s.svc.AcceptPurchaseRequest(s.ctx, seller, first.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func (s *ExchangeServiceSuite) TestPaymentAndTransfer() {
	sale, req := s.accepted(95_000)
	other, err := s.svc.SendPurchaseRequest(s.ctx, buyer2, sale.ID, 99_000)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	s.Nil(other)

	s.Run("payment checks", func() {
		_, err := s.svc.MakePayment(s.ctx, buyer2, req.ID, 95_000)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		_, err = s.svc.MakePayment(s.ctx, buyer, req.ID, 100_000)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(int64(startingBalance), s.balance(buyer))
	})

	s.Run("transfer before payment is rejected", func() {
		_, err := s.svc.TransferOwnership(s.ctx, admin7, sale.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("buyer pays into escrow", func() {
		paid, err := s.svc.MakePayment(s.ctx, buyer, req.ID, 95_000)
		s.Require().NoError(err)
		s.Equal(models.SalePaid, paid.State)
		s.Equal(int64(startingBalance-95_000), s.balance(buyer))
		s.Equal(int64(95_000), s.balance(domain.EscrowAddress))
		s.Equal(propmodels.StatePendingTransfer, s.propertyState())
		s.Equal(1.0, testutil.ToFloat64(s.metrics.PaymentsTotal))
		s.Equal(95_000.0, testutil.ToFloat64(s.metrics.PaymentVolume))
	})

	s.Run("paid sale can no longer be cancelled", func() {
		_, err := s.svc.CancelSale(s.ctx, seller, sale.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		_, err = s.svc.CancelPurchaseRequest(s.ctx, buyer, req.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("admin of another department is forbidden", func() {
		_, err := s.svc.TransferOwnership(s.ctx, admin9, sale.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("regional admin completes the transfer", func() {
		done, err := s.svc.TransferOwnership(s.ctx, admin7, sale.ID)
		s.Require().NoError(err)
		s.Equal(models.SaleCompleted, done.State)

		p, err := s.properties.GetProperty(s.ctx, s.propertyID)
		s.Require().NoError(err)
		s.Equal(buyer, p.Owner)
		s.Equal(propmodels.StateVerified, p.State)

		s.Equal(int64(startingBalance+95_000), s.balance(seller))
		s.Zero(s.balance(domain.EscrowAddress))

		got, err := s.svc.GetRequest(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Equal(models.RequestCompleted, got.State)
		s.Contains(s.auditStore.Actions(), string(audit.EventOwnershipTransferred))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.SalesCompleted))
	})

	s.Run("new owner can list the property", func() {
		_, err := s.svc.PutOnSale(s.ctx, seller, s.propertyID, 1)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		_, err = s.svc.PutOnSale(s.ctx, buyer, s.propertyID, 120_000)
		s.NoError(err)
	})
}

func (s *ExchangeServiceSuite) TestTransferRejectsRemainingOffers() {
	sale := s.listed()
	first, err := s.svc.SendPurchaseRequest(s.ctx, buyer, sale.ID, 95_000)
	s.Require().NoError(err)
	second, err := s.svc.SendPurchaseRequest(s.ctx, buyer2, sale.ID, 90_000)
	s.Require().NoError(err)
	_, err = s.svc.AcceptPurchaseRequest(s.ctx, seller, first.ID)
	s.Require().NoError(err)
	_, err = s.svc.MakePayment(s.ctx, buyer, first.ID, 95_000)
	s.Require().NoError(err)
	_, err = s.svc.TransferOwnership(s.ctx, admin7, sale.ID)
	s.Require().NoError(err)

	got, err := s.svc.GetRequest(s.ctx, second.ID)
	s.Require().NoError(err)
	s.Equal(models.RequestRejected, got.State)
}

func (s *ExchangeServiceSuite) TestInsufficientFunds() {
	sale := s.listed()
	req, err := s.svc.SendPurchaseRequest(s.ctx, buyer, sale.ID, startingBalance+1)
	s.Require().NoError(err)
	_, err = s.svc.AcceptPurchaseRequest(s.ctx, seller, req.ID)
	s.Require().NoError(err)

	_, err = s.svc.MakePayment(s.ctx, buyer, req.ID, startingBalance+1)
	s.True(dErrors.HasCode(err, dErrors.CodeInsufficientFunds))

	unchanged, err := s.svc.GetSale(s.ctx, sale.ID)
	s.Require().NoError(err)
	s.Equal(models.SaleAccepted, unchanged.State)
	s.Equal(propmodels.StateSaleApproved, s.propertyState())
	s.Equal(int64(startingBalance), s.balance(buyer))
}

func (s *ExchangeServiceSuite) TestExpireOverdue() {
	sale, req := s.accepted(95_000)
	_, err := s.svc.SendPurchaseRequest(s.ctx, buyer2, sale.ID, 90_000)
	s.Require().Error(err)

	s.Run("nothing is due inside the window", func() {
		n, err := s.svc.ExpireOverdue(requestcontext.WithTime(context.Background(), t0.Add(72*time.Hour)))
		s.Require().NoError(err)
		s.Zero(n)
	})

	late := requestcontext.WithTime(context.Background(), t0.Add(72*time.Hour+time.Minute))

	s.Run("late payment is refused", func() {
		_, err := s.svc.MakePayment(late, buyer, req.ID, 95_000)
		s.True(dErrors.HasCode(err, dErrors.CodeDeadlinePassed))
	})

	s.Run("sweep reopens the sale", func() {
		n, err := s.svc.ExpireOverdue(late)
		s.Require().NoError(err)
		s.Equal(1, n)

		reopened, err := s.svc.GetSale(s.ctx, sale.ID)
		s.Require().NoError(err)
		s.Equal(models.SaleActive, reopened.State)
		got, err := s.svc.GetRequest(s.ctx, req.ID)
		s.Require().NoError(err)
		s.Equal(models.RequestCancelled, got.State)
		s.Equal(propmodels.StateOnSale, s.propertyState())
		s.Contains(s.auditStore.Actions(), string(audit.EventSaleExpired))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.SalesExpired))
	})

	s.Run("sweep is idempotent", func() {
		n, err := s.svc.ExpireOverdue(late)
		s.Require().NoError(err)
		s.Zero(n)
	})
}

func (s *ExchangeServiceSuite) TestPaymentOnTheDeadline() {
	sale, req := s.accepted(95_000)
	s.Require().NotNil(sale.PaymentDeadline)
	s.Equal(t0.Add(s.svc.PaymentWindow()), *sale.PaymentDeadline)

	onTime := requestcontext.WithTime(context.Background(), *sale.PaymentDeadline)
	n, err := s.svc.ExpireOverdue(onTime)
	s.Require().NoError(err)
	s.Zero(n)

	paid, err := s.svc.MakePayment(onTime, buyer, req.ID, 95_000)
	s.Require().NoError(err)
	s.Equal(models.SalePaid, paid.State)
	s.Equal(int64(95_000), s.balance(domain.EscrowAddress))
}

func (s *ExchangeServiceSuite) TestQueries() {
	sale := s.listed()
	req, err := s.svc.SendPurchaseRequest(s.ctx, buyer, sale.ID, 95_000)
	s.Require().NoError(err)

	active, err := s.svc.ListActiveSales(s.ctx)
	s.Require().NoError(err)
	s.Len(active, 1)

	mine, err := s.svc.ListSalesBySeller(s.ctx, seller)
	s.Require().NoError(err)
	s.Len(mine, 1)

	reqs, err := s.svc.ListRequestsBySale(s.ctx, seller, sale.ID)
	s.Require().NoError(err)
	s.Require().Len(reqs, 1)
	s.Equal(req.ID, reqs[0].ID)

	_, err = s.svc.ListRequestsBySale(s.ctx, buyer, sale.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	byBuyer, err := s.svc.ListRequestsByBuyer(s.ctx, buyer)
	s.Require().NoError(err)
	s.Len(byBuyer, 1)

	_, err = s.svc.GetSale(s.ctx, 999)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	_, err = s.svc.GetRequest(s.ctx, 999)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

type ExchangeServiceMockSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	store      *mocks.MockStore
	properties *mocks.MockProperties
	registry   *mocks.MockRegistry
	ledger     *mocks.MockLedger
	audit      *mocks.MockAuditPublisher
	svc        *Service
	ctx        context.Context
}

func TestExchangeServiceMockSuite(t *testing.T) {
	suite.Run(t, new(ExchangeServiceMockSuite))
}

func (s *ExchangeServiceMockSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.properties = mocks.NewMockProperties(s.ctrl)
	s.registry = mocks.NewMockRegistry(s.ctrl)
	s.ledger = mocks.NewMockLedger(s.ctrl)
	s.audit = mocks.NewMockAuditPublisher(s.ctrl)
	s.svc = New(s.store, s.properties, s.registry, s.ledger, tx.NewMemoryRunner(),
		WithAuditPublisher(s.audit),
		WithPaymentWindow(time.Hour),
	)
	s.ctx = requestcontext.WithTime(context.Background(), t0)
}

func (s *ExchangeServiceMockSuite) TearDownTest() {
	s.ctrl.Finish()
}

func acceptedFixture() (*models.Sale, *models.PurchaseRequest) {
	deadline := t0.Add(time.Hour)
	req := &models.PurchaseRequest{ID: 5, SaleID: 3, Buyer: buyer, OfferedPrice: 700, State: models.RequestAccepted}
	sale := &models.Sale{
		ID: 3, PropertyID: 1, Seller: seller, Price: 800, State: models.SaleAccepted,
		AcceptedRequestID: 5, AcceptedFor: buyer, AcceptedPrice: 700, PaymentDeadline: &deadline,
	}
	return sale, req
}

func (s *ExchangeServiceMockSuite) TestLedgerFailureLeavesSaleUntouched() {
	sale, req := acceptedFixture()
	s.store.EXPECT().FindRequest(gomock.Any(), req.ID).Return(req, nil)
	s.store.EXPECT().FindSaleForUpdate(gomock.Any(), sale.ID).Return(sale, nil)
	s.ledger.EXPECT().Transfer(gomock.Any(), buyer, domain.EscrowAddress, int64(700), "payment for sale:3").
		Return(dErrors.New(dErrors.CodeInsufficientFunds, "balance too low"))

	_, err := s.svc.MakePayment(s.ctx, buyer, req.ID, 700)
	s.True(dErrors.HasCode(err, dErrors.CodeInsufficientFunds))
}

func (s *ExchangeServiceMockSuite) TestSendPurchaseRequestChecksLockedSale() {
	sale, _ := acceptedFixture()
	s.registry.EXPECT().RequireVerifiedUser(gomock.Any(), buyer2).Return(nil)
	s.store.EXPECT().FindSaleForUpdate(gomock.Any(), sale.ID).Return(sale, nil)

	_, err := s.svc.SendPurchaseRequest(s.ctx, buyer2, sale.ID, 750)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func (s *ExchangeServiceMockSuite) TestDuplicateOpenRequestConflicts() {
	sale := &models.Sale{ID: 3, PropertyID: 1, Seller: seller, Price: 800, State: models.SaleActive}
	s.registry.EXPECT().RequireVerifiedUser(gomock.Any(), buyer).Return(nil)
	s.store.EXPECT().FindSaleForUpdate(gomock.Any(), sale.ID).Return(sale, nil)
	s.store.EXPECT().ListRequests(gomock.Any(), gomock.Any()).Return(nil, nil)
	s.store.EXPECT().CreateRequest(gomock.Any(), gomock.Any()).Return(sentinel.ErrAlreadyUsed)

	_, err := s.svc.SendPurchaseRequest(s.ctx, buyer, sale.ID, 750)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ExchangeServiceMockSuite) TestCancelAcceptedRequestLocksSaleFirst() {
	sale, req := acceptedFixture()
	var order []string
	s.store.EXPECT().FindRequest(gomock.Any(), req.ID).Return(req, nil)
	s.store.EXPECT().FindSaleForUpdate(gomock.Any(), sale.ID).
		DoAndReturn(func(context.Context, domain.SaleID) (*models.Sale, error) {
			order = append(order, "sale")
			return sale, nil
		})
	s.store.EXPECT().ExecuteRequest(gomock.Any(), req.ID, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.RequestID, validate func(*models.PurchaseRequest) error, mutate func(*models.PurchaseRequest)) (*models.PurchaseRequest, error) {
			order = append(order, "request")
			if err := validate(req); err != nil {
				return nil, err
			}
			mutate(req)
			return req, nil
		})
	s.store.EXPECT().ExecuteSale(gomock.Any(), sale.ID, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.SaleID, validate func(*models.Sale) error, mutate func(*models.Sale)) (*models.Sale, error) {
			if err := validate(sale); err != nil {
				return nil, err
			}
			mutate(sale)
			return sale, nil
		})
	s.store.EXPECT().ListRequests(gomock.Any(), gomock.Any()).Return(nil, nil)
	s.properties.EXPECT().SetState(gomock.Any(), sale.PropertyID, propmodels.StateOnSale).Return(&propmodels.Property{}, nil)
	s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	got, err := s.svc.CancelPurchaseRequest(s.ctx, buyer, req.ID)
	s.Require().NoError(err)
	s.Equal(models.RequestCancelled, got.State)
	s.Equal(models.SaleActive, sale.State)
	s.Equal([]string{"sale", "request"}, order)
}

func (s *ExchangeServiceMockSuite) TestAuditFailureFailsListing() {
	s.properties.EXPECT().Transition(gomock.Any(), domain.PropertyID(1), gomock.Any(), propmodels.StateOnSale).
		Return(&propmodels.Property{ID: 1, State: propmodels.StateOnSale}, nil)
	s.store.EXPECT().CreateSale(gomock.Any(), gomock.Any()).Return(nil)
	s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("outbox down"))

	_, err := s.svc.PutOnSale(s.ctx, seller, 1, 800)
	s.Require().Error(err)
}

func (s *ExchangeServiceMockSuite) TestStoreFailureIsInternal() {
	s.store.EXPECT().FindSale(gomock.Any(), domain.SaleID(3)).Return(nil, errors.New("connection reset"))

	_, err := s.svc.GetSale(s.ctx, 3)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ExchangeServiceMockSuite) TestExpireOverdueContinuesPastFailures() {
	broken, _ := acceptedFixture()
	broken.ID = 2
	healthy, req := acceptedFixture()
	late := requestcontext.WithTime(context.Background(), t0.Add(2*time.Hour))

	s.store.EXPECT().ListOverdue(gomock.Any(), t0.Add(2*time.Hour)).Return([]*models.Sale{broken, healthy}, nil)
	s.store.EXPECT().ExecuteSale(gomock.Any(), broken.ID, gomock.Any(), gomock.Any()).Return(nil, errors.New("deadlock"))
	s.store.EXPECT().ExecuteSale(gomock.Any(), healthy.ID, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.SaleID, validate func(*models.Sale) error, mutate func(*models.Sale)) (*models.Sale, error) {
			if err := validate(healthy); err != nil {
				return nil, err
			}
			mutate(healthy)
			return healthy, nil
		})
	s.store.EXPECT().ExecuteRequest(gomock.Any(), req.ID, gomock.Any(), gomock.Any()).Return(req, nil)
	s.store.EXPECT().ListRequests(gomock.Any(), gomock.Any()).Return(nil, nil)
	s.properties.EXPECT().SetState(gomock.Any(), healthy.PropertyID, propmodels.StateOnSale).Return(&propmodels.Property{}, nil)
	s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	n, err := s.svc.ExpireOverdue(late)
	s.Equal(1, n)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Equal(models.SaleActive, healthy.State)
}
