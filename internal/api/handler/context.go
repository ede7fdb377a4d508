package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/appiso/access-control/internal/api/middleware"
	"github.com/appiso/access-control/internal/core/domain"
)

// ctxClaims extracts the claims injected by the Auth middleware. Their
// absence means the route was mounted without Auth, which is answered with
// 401 rather than trusting an anonymous request.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
