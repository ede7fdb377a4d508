package ports

import (
	"context"
	"time"

	"github.com/appiso/access-control/internal/core/domain"
)

// AccountRepository defines persistence for operator accounts.
type AccountRepository interface {
	// Create inserts a new account and returns it with its assigned ID.
	// Returns domain.ErrAccountExists when the username is taken.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	// UpdateLoginState persists only the lockout fields so a concurrent
	// change to other fields (e.g. deactivation) is never overwritten.
	UpdateLoginState(ctx context.Context, id string, failedAttempts int, lockedUntil *time.Time) error
	SetActive(ctx context.Context, id string, active bool) error
	Count(ctx context.Context) (int64, error)
}
