package ports

import (
	"time"

	"github.com/appiso/access-control/internal/core/domain"
)

// TokenIssuer mints signed session tokens.
type TokenIssuer interface {
	Issue(accountID, username string, role domain.Role, now time.Time) (string, error)
}

// TokenVerifier validates a token at now and returns its claims.
type TokenVerifier interface {
	Verify(token string, now time.Time) (*domain.Claims, error)
}
