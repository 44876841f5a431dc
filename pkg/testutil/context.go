package testutil

import (
	"net/http"
	"time"

	"landregistry/pkg/domain"
	"landregistry/pkg/platform/httputil"
	"landregistry/pkg/requestcontext"
)

// WalletHeader names the header HeaderAuth reads the caller's address from.
const WalletHeader = "X-Test-Wallet"

// AsWallet marks req as sent by addr for use with HeaderAuth.
func AsWallet(req *http.Request, addr domain.Address) *http.Request {
	req.Header.Set(WalletHeader, addr.String())
	return req
}

// HeaderAuth stands in for the JWT middleware in handler tests: it trusts
// WalletHeader and populates the request context the same way.
func HeaderAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr, err := domain.ParseAddress(r.Header.Get(WalletHeader))
		if err != nil {
			httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "unauthorized"})
			return
		}
		ctx := requestcontext.WithAddress(r.Context(), addr)
		ctx = requestcontext.WithToken(ctx, "test-jti-"+addr.Short(), time.Now().Add(time.Hour))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
