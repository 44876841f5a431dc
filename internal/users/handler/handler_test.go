package handler_test

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landregistry/internal/platform/middleware"
	"landregistry/internal/users/handler"
	"landregistry/internal/users/service"
	"landregistry/internal/users/store"
	"landregistry/pkg/domain"
	"landregistry/pkg/platform/tx"
	"landregistry/pkg/testutil"
)

var (
	mainAdmin = domain.MustAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	regional  = domain.MustAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	citizen   = domain.MustAddress("0x1111111111111111111111111111111111111111")
)

func newUsersRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(store.NewInMemoryUsers(), store.NewInMemoryAdmins(), tx.NewMemoryRunner(), mainAdmin)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RequestTime)
	handler.New(svc, logger, testutil.HeaderAuth).Register(r)
	return r
}

func kycBody() map[string]any {
	return map[string]any{
		"name":                  "Asha Patil",
		"age":                   34,
		"city":                  "Pune",
		"government_id":         "123456789012",
		"document_cid":          "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi",
		"email":                 "Asha@Example.COM",
		"revenue_department_id": 7,
	}
}

func TestKYCFlow(t *testing.T) {
	router := newUsersRouter(t)

	testutil.Given(t, "the main admin appoints a regional admin", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/admins", map[string]any{
			"address":               regional.String(),
			"name":                  "Ravi",
			"revenue_department_id": 7,
			"designation":           "Tehsildar",
			"city":                  "Pune",
		})
		rr := testutil.DoRequest(router, testutil.AsWallet(req, mainAdmin))
		testutil.AssertStatus(t, rr, http.StatusCreated)

		rr = testutil.DoRequest(router, testutil.AsWallet(testutil.NewRequest(t, http.MethodGet, "/admins"), citizen))
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Len(t, testutil.Decode[handler.AdminListResponse](t, rr).Admins, 1)
	})

	testutil.When(t, "a citizen submits KYC", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/users", kycBody())
		rr := testutil.DoRequest(router, testutil.AsWallet(req, citizen))
		testutil.AssertStatus(t, rr, http.StatusCreated)
		u := testutil.Decode[handler.UserResponse](t, rr)
		assert.Equal(t, "pending", u.Status)
		assert.Equal(t, "Asha@example.com", u.Email)

		rr = testutil.DoRequest(router, testutil.AsWallet(testutil.NewRequest(t, http.MethodGet, "/users/me"), citizen))
		p := testutil.Decode[handler.ProfileResponse](t, rr)
		assert.Equal(t, "user", p.Role)
		assert.False(t, p.Verified)
	})

	testutil.Then(t, "the regional admin sees and verifies the submission", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.AsWallet(testutil.NewRequest(t, http.MethodGet, "/users?status=pending"), regional))
		testutil.AssertStatus(t, rr, http.StatusOK)
		list := testutil.Decode[handler.UserListResponse](t, rr)
		require.Len(t, list.Users, 1)
		assert.NotEqual(t, "Asha@example.com", list.Users[0].Email)

		rr = testutil.DoRequest(router, testutil.AsWallet(
			testutil.NewRequest(t, http.MethodPost, "/users/"+citizen.String()+"/verify"), regional))
		testutil.AssertStatus(t, rr, http.StatusOK)
		u := testutil.Decode[handler.UserResponse](t, rr)
		assert.Equal(t, "verified", u.Status)
		assert.Equal(t, "Verified", u.StatusLabel)
		assert.Equal(t, regional.String(), u.VerifiedBy)
		assert.NotNil(t, u.VerifiedAt)
	})
}

func TestUserRoutesErrors(t *testing.T) {
	router := newUsersRouter(t)

	t.Run("missing session", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/users/me"))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("invalid registration fields", func(t *testing.T) {
		cases := map[string]func(b map[string]any){
			"bad email":    func(b map[string]any) { b["email"] = "not-an-email" },
			"minor":        func(b map[string]any) { b["age"] = 12 },
			"missing city": func(b map[string]any) { b["city"] = "  " },
			"no dept":      func(b map[string]any) { b["revenue_department_id"] = 0 },
		}
		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				body := kycBody()
				mutate(body)
				req := testutil.NewJSONRequest(t, http.MethodPost, "/users", body)
				rr := testutil.DoRequest(router, testutil.AsWallet(req, citizen))
				testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
			})
		}
	})

	t.Run("non-admin cannot appoint", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/admins", map[string]any{
			"address": regional.String(), "name": "Ravi", "revenue_department_id": 7,
			"designation": "Tehsildar", "city": "Pune",
		})
		rr := testutil.DoRequest(router, testutil.AsWallet(req, citizen))
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
	})

	t.Run("reject needs a reason", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/users/"+citizen.String()+"/reject", map[string]string{"reason": ""})
		rr := testutil.DoRequest(router, testutil.AsWallet(req, regional))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})

	t.Run("malformed path address", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.AsWallet(testutil.NewRequest(t, http.MethodGet, "/users/0x12"), citizen))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})

	t.Run("unknown user", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.AsWallet(
			testutil.NewRequest(t, http.MethodGet, "/users/"+citizen.String()), citizen))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("unknown status filter", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.AsWallet(testutil.NewRequest(t, http.MethodGet, "/users?status=archived"), regional))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	})
}
