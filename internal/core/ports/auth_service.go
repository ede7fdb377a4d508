package ports

import (
	"context"

	"github.com/appiso/access-control/internal/core/domain"
)

// AuthService is the login and account lifecycle surface used by handlers.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, error)
	CreateAccount(ctx context.Context, username, password string, role domain.Role) (*domain.AccountSummary, error)
	DeactivateAccount(ctx context.Context, id string) error
}

// Authorizer evaluates a policy against verified claims.
type Authorizer interface {
	Authorize(claims *domain.Claims, policy domain.Policy) error
}

// EmployeeService exposes employee salary data.
type EmployeeService interface {
	GetSalary(ctx context.Context, id int64) (*domain.Employee, error)
}
