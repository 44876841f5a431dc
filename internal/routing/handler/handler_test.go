package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	exservice "landregistry/internal/exchange/service"
	exstore "landregistry/internal/exchange/store"
	"landregistry/internal/platform/middleware"
	propmodels "landregistry/internal/property/models"
	propservice "landregistry/internal/property/service"
	propstore "landregistry/internal/property/store"
	"landregistry/internal/routing/handler"
	"landregistry/internal/routing/service"
	usermodels "landregistry/internal/users/models"
	userservice "landregistry/internal/users/service"
	userstore "landregistry/internal/users/store"
	walletservice "landregistry/internal/wallet/service"
	"landregistry/internal/wallet/session"
	walletstore "landregistry/internal/wallet/store"
	"landregistry/internal/wallet/store/revocation"
	"landregistry/pkg/domain"
	"landregistry/pkg/platform/tx"
	"landregistry/pkg/testutil"
)

var (
	mainAdmin = domain.MustAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	regional  = domain.MustAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	owner     = domain.MustAddress("0x1111111111111111111111111111111111111111")
	pending   = domain.MustAddress("0x2222222222222222222222222222222222222222")
	newcomer  = domain.MustAddress("0x3333333333333333333333333333333333333333")
)

func newRoutingRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	runner := tx.NewMemoryRunner()

	users := userservice.New(userstore.NewInMemoryUsers(), userstore.NewInMemoryAdmins(), runner, mainAdmin)
	_, err := users.AddRegionalAdmin(ctx, mainAdmin, userservice.NewAdmin{
		Address: regional, Name: "Ravi", DepartmentID: 7, Designation: "Tehsildar", City: "Pune",
	})
	require.NoError(t, err)
	for i, addr := range []domain.Address{owner, pending} {
		_, err = users.RegisterUser(ctx, addr, usermodels.Registration{
			Name: "User", Age: 40, City: "Pune", GovernmentID: "12345678901" + string(rune('0'+i)),
			DocumentCID: "bafy-id", Email: "user@example.com", DepartmentID: 7,
		})
		require.NoError(t, err)
	}
	_, err = users.VerifyUser(ctx, regional, owner)
	require.NoError(t, err)

	wallets := walletservice.New(walletstore.NewInMemory(), session.NewJWTService("k", "landregistry", 1337),
		revocation.NewMemory(), runner,
		walletservice.Config{ChainID: 1337, InitialBalance: 1_000},
		walletservice.WithBcryptCost(bcrypt.MinCost),
	)
	require.NoError(t, wallets.EnsureEscrow(ctx))
	for _, addr := range []domain.Address{mainAdmin, regional, owner, pending, newcomer} {
		_, err = wallets.CreateAccount(ctx, addr, "correct horse")
		require.NoError(t, err)
	}

	properties := propservice.New(propstore.NewInMemory(), users, runner)
	p, err := properties.RegisterProperty(ctx, owner, propmodels.Registration{
		DepartmentID: 7, LocationID: 42, SurveyNumber: "118/2B", Area: 1500, MarketValue: 90_000, DocumentCID: "bafy-deed",
	})
	require.NoError(t, err)
	_, err = properties.VerifyProperty(ctx, regional, p.ID)
	require.NoError(t, err)

	exchange := exservice.New(exstore.NewInMemory(), properties, users, wallets, runner)
	_, err = exchange.PutOnSale(ctx, owner, p.ID, 80_000)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(users, wallets, properties, exchange, service.WithLogger(logger), service.WithTimeout(time.Second))
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RequestTime)
	handler.New(svc, logger, testutil.HeaderAuth).Register(r)
	return r
}

func TestResolveRoute(t *testing.T) {
	router := newRoutingRouter(t)

	cases := []struct {
		name     string
		wallet   domain.Address
		dest     string
		role     string
		verified bool
	}{
		{"main admin", mainAdmin, "/admin", "main_admin", true},
		{"regional admin", regional, "/regional-admin", "regional_admin", true},
		{"verified user", owner, "/dashboard", "user", true},
		{"pending user", pending, "/kyc-pending", "user", false},
		{"unregistered wallet", newcomer, "/register", "unregistered", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.AsWallet(testutil.NewRequest(t, http.MethodGet, "/route"), tc.wallet))
			testutil.AssertStatus(t, rr, http.StatusOK)
			got := testutil.Decode[handler.RouteResponse](t, rr)
			assert.Equal(t, tc.dest, got.Destination)
			assert.Equal(t, tc.role, got.Role)
			assert.Equal(t, tc.verified, got.Verified)
			assert.Equal(t, tc.wallet.String(), got.Address)
		})
	}
}

func TestDashboard(t *testing.T) {
	router := newRoutingRouter(t)

	testutil.Given(t, "an owner with a listed property", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.AsWallet(testutil.NewRequest(t, http.MethodGet, "/dashboard"), owner))
		testutil.AssertStatus(t, rr, http.StatusOK)
		d := testutil.Decode[handler.DashboardResponse](t, rr)

		testutil.Then(t, "every section is filled", func(t *testing.T) {
			assert.Equal(t, "/dashboard", d.Route.Destination)
			assert.Equal(t, int64(1_000), d.Account.Balance)
			assert.Equal(t, int64(1337), d.Account.ChainID)
			require.Len(t, d.Properties, 1)
			assert.Equal(t, "On Sale", d.Properties[0].StateLabel)
			require.Len(t, d.Sales, 1)
			assert.Equal(t, "active", d.Sales[0].State)
			assert.Empty(t, d.Requests)
		})
	})

	testutil.When(t, "a wallet without an account asks", func(t *testing.T) {
		stranger := domain.MustAddress("0x9999999999999999999999999999999999999999")
		rr := testutil.DoRequest(router, testutil.AsWallet(testutil.NewRequest(t, http.MethodGet, "/dashboard"), stranger))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}
