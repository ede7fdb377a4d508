package ports

import (
	"context"

	"github.com/appiso/access-control/internal/core/domain"
)

// EmployeeRepository reads the employee records behind the salary endpoint.
type EmployeeRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Employee, error)
	// Upsert is used by startup seeding.
	Upsert(ctx context.Context, employee *domain.Employee) error
}
