package domain

import (
	"errors"
	"fmt"
)

// Base error kinds. Concrete errors wrap one of these so the transport layer
// can map them with errors.Is without knowing every entity.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ErrUnauthorized is the single rejection returned by the login path. Unknown
// user, inactive account, active lockout and wrong secret all collapse to it.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden means the caller holds a valid token whose role does not
// satisfy the policy of the requested operation.
var ErrForbidden = errors.New("access forbidden")

// ErrInvalidToken covers malformed, mis-signed, not-yet-valid and expired tokens.
var ErrInvalidToken = errors.New("invalid token")

var (
	ErrAccountNotFound  = fmt.Errorf("account %w", ErrNotFound)
	ErrEmployeeNotFound = fmt.Errorf("employee %w", ErrNotFound)
	ErrAccountExists    = fmt.Errorf("%w: account already exists", ErrConflict)
	ErrInvalidRole      = fmt.Errorf("%w: unknown role", ErrInvalidInput)
)

// ErrMissingSigningSecret is a startup configuration error: tokens cannot be
// issued or verified without a signing secret, and there is no fallback.
var ErrMissingSigningSecret = errors.New("token signing secret is not configured")
