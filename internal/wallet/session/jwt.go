// Package session issues and validates wallet session tokens.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"landregistry/internal/platform/middleware"
	"landregistry/pkg/domain"
	dErrors "landregistry/pkg/domain-errors"
)

// Claims are the JWT claims of a wallet session.
type Claims struct {
	Address string `json:"address"`
	ChainID int64  `json:"chain_id"`
	jwt.RegisteredClaims
}

// JWTService signs HS256 session tokens.
type JWTService struct {
	signingKey []byte
	issuer     string
	chainID    int64
}

func NewJWTService(signingKey, issuer string, chainID int64) *JWTService {
	return &JWTService{signingKey: []byte(signingKey), issuer: issuer, chainID: chainID}
}

// Issue signs a token for addr valid from now for ttl. It returns the token
// and its jti.
func (s *JWTService) Issue(addr domain.Address, now time.Time, ttl time.Duration) (string, string, error) {
	jti := uuid.NewString()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Address: addr.String(),
		ChainID: s.chainID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   addr.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

// ValidateToken implements middleware.TokenValidator.
func (s *JWTService) ValidateToken(tokenString string) (*middleware.SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.ChainID != s.chainID {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token issued for another chain")
	}
	addr, err := domain.ParseAddress(claims.Address)
	if err != nil || claims.ID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return &middleware.SessionClaims{
		Address:   addr,
		JTI:       claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
