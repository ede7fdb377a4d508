package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/appiso/access-control/internal/core/domain"
)

// ErrorStatus maps a domain error to its HTTP status and public message.
// ok is false for errors the API does not know, which callers answer with
// 500 and log.
func ErrorStatus(err error) (status int, msg string, ok bool) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized", true
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid token", true
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden", true
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, "account not found", true
	case errors.Is(err, domain.ErrEmployeeNotFound):
		return http.StatusNotFound, "employee not found", true
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found", true
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, err.Error(), true
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "service unavailable", true
	}
	return http.StatusInternalServerError, "internal server error", false
}

// respondError writes known domain errors and hands anything else to the
// echo error handler.
func respondError(c echo.Context, err error) error {
	status, msg, ok := ErrorStatus(err)
	if !ok {
		return err
	}
	return c.JSON(status, map[string]string{"error": msg})
}
