package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/appiso/access-control/internal/core/domain"
)

// DefaultTokenTTL is the validity window of a session token.
const DefaultTokenTTL = time.Hour

// tokenClaims is the JWT payload: sub carries the account id.
type tokenClaims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens. It holds no
// mutable state and is safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService returns domain.ErrMissingSigningSecret for an empty or
// blank secret. A non-positive ttl falls back to DefaultTokenTTL.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, domain.ErrMissingSigningSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL returns the configured validity window.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token valid in [now, now+ttl). JWT dates are whole seconds,
// so now is truncated first and the encoded nbf and exp bound the window
// exactly.
func (s *TokenService) Issue(accountID, username string, role domain.Role, now time.Time) (string, error) {
	now = now.Truncate(time.Second)
	claims := tokenClaims{
		Name: username,
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and the validity window against now with no
// leeway: the token is rejected when now < nbf or now >= exp.
func (s *TokenService) Verify(token string, now time.Time) (*domain.Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)

	var claims tokenClaims
	parsed, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.NotBefore == nil || claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing nbf or sub", domain.ErrInvalidToken)
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}

	out := &domain.Claims{
		Subject:   claims.Subject,
		Name:      claims.Name,
		Role:      role,
		TokenID:   claims.ID,
		NotBefore: claims.NotBefore.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

// IsExpired reports whether err came from an expired token. Used only for
// logging; callers see the same ErrInvalidToken either way.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
