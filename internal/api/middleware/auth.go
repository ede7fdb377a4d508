package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/appiso/access-control/internal/api/metrics"
	"github.com/appiso/access-control/internal/core/domain"
	"github.com/appiso/access-control/internal/core/ports"
	"github.com/appiso/access-control/internal/core/service"
)

// ClaimsKey is the echo context key holding the verified *domain.Claims.
const ClaimsKey = "claims"

// Auth validates the bearer token and injects its claims into context.
// now is read per request so tests can pin the clock.
func Auth(verifier ports.TokenVerifier, now func() time.Time) echo.MiddlewareFunc {
	if now == nil {
		now = time.Now
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := verifier.Verify(strings.TrimSpace(parts[1]), now())
			if err != nil {
				result := "invalid"
				if service.IsExpired(err) {
					result = "expired"
				}
				metrics.TokenVerificationsTotal.WithLabelValues(result).Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()
			c.Set(ClaimsKey, claims)

			return next(c)
		}
	}
}

// ClaimsFrom returns the claims stored by Auth.
func ClaimsFrom(c echo.Context) (*domain.Claims, error) {
	claims, ok := c.Get(ClaimsKey).(*domain.Claims)
	if !ok || claims == nil {
		return nil, errors.New("no claims in context")
	}
	return claims, nil
}
