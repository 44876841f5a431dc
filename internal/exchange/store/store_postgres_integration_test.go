//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"landregistry/internal/exchange/models"
	exservice "landregistry/internal/exchange/service"
	"landregistry/internal/exchange/store"
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
	"landregistry/pkg/platform/audit"
	auditpostgres "landregistry/pkg/platform/audit/store/postgres"
	"landregistry/pkg/platform/sentinel"
	"landregistry/pkg/platform/tx"
	"landregistry/pkg/requestcontext"
	"landregistry/pkg/testutil/containers"
)

var (
	mainAdmin = domain.MustAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	admin7    = domain.MustAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	seller    = domain.MustAddress("0x1111111111111111111111111111111111111111")
	buyer     = domain.MustAddress("0x2222222222222222222222222222222222222222")
	poorBuyer = domain.MustAddress("0x3333333333333333333333333333333333333333")

	t0 = time.Date(2026, 8, 3, 10, 0, 0, 0, time.UTC)
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres   *containers.PostgresContainer
	ctx        context.Context
	store      *store.PostgresStore
	outbox     *auditpostgres.Store
	wallet     *walletservice.Service
	properties *propservice.Service
	exchange   *exservice.Service
	propertyID domain.PropertyID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
}

func (s *PostgresStoreSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), t0)
	s.Require().NoError(s.postgres.TruncateTables(s.ctx,
		"purchase_requests", "sales", "properties", "registry_users", "regional_admins",
		"wallet_transfers", "wallet_accounts", "outbox"))

	db := s.postgres.DB
	runner := tx.NewPostgresRunner(db)
	s.outbox = auditpostgres.New(db)
	publisher := audit.NewPublisher(s.outbox)

	users := userservice.New(userstore.NewPostgresUsers(db), userstore.NewPostgresAdmins(db), runner, mainAdmin,
		userservice.WithAuditPublisher(publisher))
	_, err := users.AddRegionalAdmin(s.ctx, mainAdmin, userservice.NewAdmin{
		Address: admin7, Name: "Ravi", DepartmentID: 7, Designation: "Tehsildar", City: "Pune",
	})
	s.Require().NoError(err)
	for i, addr := range []domain.Address{seller, buyer, poorBuyer} {
		_, err := users.RegisterUser(s.ctx, addr, usermodels.Registration{
			Name: "User", Age: 30, City: "Pune", GovernmentID: "99999999990" + string(rune('0'+i)),
			DocumentCID: "bafy-id", Email: "user@example.com", DepartmentID: 7,
		})
		s.Require().NoError(err)
		_, err = users.VerifyUser(s.ctx, admin7, addr)
		s.Require().NoError(err)
	}

	s.wallet = walletservice.New(walletstore.NewPostgres(db), session.NewJWTService("k", "landregistry", 1337),
		revocation.NewMemory(), runner,
		walletservice.Config{ChainID: 1337, InitialBalance: 100_000, FaucetEnabled: true},
		walletservice.WithBcryptCost(bcrypt.MinCost),
		walletservice.WithAuditPublisher(publisher),
	)
	s.Require().NoError(s.wallet.EnsureEscrow(s.ctx))
	for _, addr := range []domain.Address{seller, buyer, poorBuyer} {
		_, err := s.wallet.CreateAccount(s.ctx, addr, "correct horse")
		s.Require().NoError(err)
	}

	s.properties = propservice.New(propstore.NewPostgres(db), users, runner, propservice.WithAuditPublisher(publisher))
	p, err := s.properties.RegisterProperty(s.ctx, seller, propmodels.Registration{
		DepartmentID: 7, LocationID: 42, SurveyNumber: "118/2B", Area: 1500, MarketValue: 90_000, DocumentCID: "bafy-deed",
	})
	s.Require().NoError(err)
	_, err = s.properties.VerifyProperty(s.ctx, admin7, p.ID)
	s.Require().NoError(err)
	s.propertyID = p.ID

	s.store = store.NewPostgres(db)
	s.exchange = exservice.New(s.store, s.properties, users, s.wallet, runner,
		exservice.WithAuditPublisher(publisher))
}

func (s *PostgresStoreSuite) TestOpenSaleIsUniquePerProperty() {
	first, err := models.NewSale(s.propertyID, seller, 90_000, t0)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateSale(s.ctx, first))
	s.NotZero(first.ID)

	second, err := models.NewSale(s.propertyID, seller, 80_000, t0)
	s.Require().NoError(err)
	s.ErrorIs(s.store.CreateSale(s.ctx, second), sentinel.ErrAlreadyUsed)

	_, err = s.store.ExecuteSale(s.ctx, first.ID,
		func(*models.Sale) error { return nil },
		func(sl *models.Sale) { sl.State = models.SaleCancelled })
	s.Require().NoError(err)
	s.NoError(s.store.CreateSale(s.ctx, second), "a cancelled sale frees the property")
}

func (s *PostgresStoreSuite) TestOpenRequestIsUniquePerBuyer() {
	sale, err := models.NewSale(s.propertyID, seller, 90_000, t0)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateSale(s.ctx, sale))

	first, err := models.NewPurchaseRequest(sale.ID, buyer, 85_000, t0)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateRequest(s.ctx, first))

	second, err := models.NewPurchaseRequest(sale.ID, buyer, 86_000, t0)
	s.Require().NoError(err)
	s.ErrorIs(s.store.CreateRequest(s.ctx, second), sentinel.ErrAlreadyUsed)

	other, err := models.NewPurchaseRequest(sale.ID, poorBuyer, 86_000, t0)
	s.Require().NoError(err)
	s.NoError(s.store.CreateRequest(s.ctx, other))

	_, err = s.store.ExecuteRequest(s.ctx, first.ID,
		func(*models.PurchaseRequest) error { return nil },
		func(r *models.PurchaseRequest) { r.Apply(models.RequestCancelled, t0) })
	s.Require().NoError(err)
	s.NoError(s.store.CreateRequest(s.ctx, second), "a cancelled request frees the buyer")
}

func (s *PostgresStoreSuite) TestFindSaleForUpdateInsideTransaction() {
	sale, err := models.NewSale(s.propertyID, seller, 90_000, t0)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateSale(s.ctx, sale))

	runner := tx.NewPostgresRunner(s.postgres.DB)
	err = runner.RunInTx(s.ctx, func(ctx context.Context) error {
		locked, err := s.store.FindSaleForUpdate(ctx, sale.ID)
		if err != nil {
			return err
		}
		s.Equal(models.SaleActive, locked.State)
		return nil
	})
	s.Require().NoError(err)

	_, err = s.store.FindSaleForUpdate(s.ctx, 4040)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestFindMissingSale() {
	_, err := s.store.FindSale(s.ctx, 4040)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestCompleteSaleOnPostgres() {
	sale, err := s.exchange.PutOnSale(s.ctx, seller, s.propertyID, 90_000)
	s.Require().NoError(err)
	req, err := s.exchange.SendPurchaseRequest(s.ctx, buyer, sale.ID, 85_000)
	s.Require().NoError(err)
	_, err = s.exchange.AcceptPurchaseRequest(s.ctx, seller, req.ID)
	s.Require().NoError(err)

	paid, err := s.exchange.MakePayment(s.ctx, buyer, req.ID, 85_000)
	s.Require().NoError(err)
	s.Equal(models.SalePaid, paid.State)
	s.balance(domain.EscrowAddress, 85_000)
	s.balance(buyer, 15_000)

	done, err := s.exchange.TransferOwnership(s.ctx, admin7, sale.ID)
	s.Require().NoError(err)
	s.Equal(models.SaleCompleted, done.State)
	s.balance(domain.EscrowAddress, 0)
	s.balance(seller, 185_000)

	p, err := s.properties.GetProperty(s.ctx, s.propertyID)
	s.Require().NoError(err)
	s.Equal(buyer, p.Owner)
	s.Equal(propmodels.StateVerified, p.State)

	stored, err := s.store.FindRequest(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(models.RequestCompleted, stored.State)

	pending, err := s.outbox.PendingCount(s.ctx)
	s.Require().NoError(err)
	s.Positive(pending, "every step wrote to the outbox")
}

func (s *PostgresStoreSuite) TestFailedPaymentRollsBack() {
	s.Require().NoError(s.wallet.Transfer(s.ctx, poorBuyer, seller, 95_000, "drain"))

	sale, err := s.exchange.PutOnSale(s.ctx, seller, s.propertyID, 50_000)
	s.Require().NoError(err)
	req, err := s.exchange.SendPurchaseRequest(s.ctx, poorBuyer, sale.ID, 50_000)
	s.Require().NoError(err)
	_, err = s.exchange.AcceptPurchaseRequest(s.ctx, seller, req.ID)
	s.Require().NoError(err)

	before, err := s.outbox.PendingCount(s.ctx)
	s.Require().NoError(err)

	_, err = s.exchange.MakePayment(s.ctx, poorBuyer, req.ID, 50_000)
	s.True(dErrors.HasCode(err, dErrors.CodeInsufficientFunds))

	stored, err := s.store.FindSale(s.ctx, sale.ID)
	s.Require().NoError(err)
	s.Equal(models.SaleAccepted, stored.State)
	s.balance(poorBuyer, 5_000)
	s.balance(domain.EscrowAddress, 0)

	after, err := s.outbox.PendingCount(s.ctx)
	s.Require().NoError(err)
	s.Equal(before, after, "no audit row survives a rolled back payment")
}

func (s *PostgresStoreSuite) TestOverdueSalesExpire() {
	sale, err := s.exchange.PutOnSale(s.ctx, seller, s.propertyID, 90_000)
	s.Require().NoError(err)
	req, err := s.exchange.SendPurchaseRequest(s.ctx, buyer, sale.ID, 90_000)
	s.Require().NoError(err)
	_, err = s.exchange.AcceptPurchaseRequest(s.ctx, seller, req.ID)
	s.Require().NoError(err)

	atDeadline := requestcontext.WithTime(context.Background(), t0.Add(s.exchange.PaymentWindow()))
	overdue, err := s.store.ListOverdue(atDeadline, requestcontext.Now(atDeadline))
	s.Require().NoError(err)
	s.Empty(overdue, "the deadline itself is still payable")

	later := requestcontext.WithTime(context.Background(), t0.Add(s.exchange.PaymentWindow()+time.Minute))
	n, err := s.exchange.ExpireOverdue(later)
	s.Require().NoError(err)
	s.Equal(1, n)

	stored, err := s.store.FindSale(s.ctx, sale.ID)
	s.Require().NoError(err)
	s.Equal(models.SaleActive, stored.State)
	s.Nil(stored.PaymentDeadline)
}

func (s *PostgresStoreSuite) balance(addr domain.Address, want int64) {
	s.T().Helper()
	got, err := s.wallet.Balance(s.ctx, addr)
	s.Require().NoError(err)
	s.Equal(want, got, "balance of %s", addr.Short())
}
