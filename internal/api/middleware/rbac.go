package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/appiso/access-control/internal/api/metrics"
	"github.com/appiso/access-control/internal/core/domain"
	"github.com/appiso/access-control/internal/core/ports"
)

// RequirePolicy enforces policy on the claims stored by Auth. It must run
// after Auth; a request without claims is answered with 401.
func RequirePolicy(policy domain.Policy, authorizer ports.Authorizer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, _ := c.Get(ClaimsKey).(*domain.Claims)

			err := authorizer.Authorize(claims, policy)
			switch {
			case err == nil:
				metrics.AuthorizationDecisionsTotal.WithLabelValues(policy.Name(), "allow").Inc()
				return next(c)
			case errors.Is(err, domain.ErrForbidden):
				metrics.AuthorizationDecisionsTotal.WithLabelValues(policy.Name(), "deny").Inc()
				return echo.NewHTTPError(http.StatusForbidden, "access forbidden")
			default:
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
		}
	}
}
