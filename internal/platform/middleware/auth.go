package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"landregistry/pkg/domain"
	"landregistry/pkg/platform/httputil"
	"landregistry/pkg/requestcontext"
)

// TokenValidator validates wallet session tokens.
type TokenValidator interface {
	ValidateToken(token string) (*SessionClaims, error)
}

// RevocationChecker reports whether a token id was revoked by a disconnect.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// SessionClaims is what the auth middleware needs from a validated token.
type SessionClaims struct {
	Address   domain.Address
	JTI       string
	ExpiresAt time.Time
}

// RequireWallet authenticates the bearer token and places the wallet address
// and token id in the request context. A nil revocation checker skips the
// revocation lookup.
func RequireWallet(validator TokenValidator, revocations RevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			if revocations != nil {
				revoked, err := revocations.IsRevoked(ctx, claims.JTI)
				if err != nil {
					logger.ErrorContext(ctx, "failed to check token revocation",
						"error", err,
						"request_id", requestID,
					)
					httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: "internal_error"})
					return
				}
				if revoked {
					logger.WarnContext(ctx, "unauthorized access - token revoked",
						"jti", claims.JTI,
						"request_id", requestID,
					)
					writeUnauthorized(w, "Wallet session has been disconnected")
					return
				}
			}

			ctx = requestcontext.WithAddress(ctx, claims.Address)
			ctx = requestcontext.WithToken(ctx, claims.JTI, claims.ExpiresAt)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, desc string) {
	httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{
		Error:       "unauthorized",
		Description: desc,
	})
}
