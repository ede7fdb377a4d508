package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/appiso/access-control/internal/core/domain"
	"github.com/appiso/access-control/internal/core/ports"
)

type EmployeeRepository struct {
	db *sql.DB
}

func NewEmployeeRepository(db *sql.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*domain.Employee, error) {
	e := &domain.Employee{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, salary FROM employees WHERE id = ?`, id,
	).Scan(&e.ID, &e.Name, &e.Salary)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting employee: %w", err)
	}
	return e, nil
}

func (r *EmployeeRepository) Upsert(ctx context.Context, e *domain.Employee) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO employees (id, name, salary) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, salary = excluded.salary`,
		e.ID, e.Name, e.Salary,
	)
	if err != nil {
		return fmt.Errorf("upserting employee: %w", err)
	}
	return nil
}

var _ ports.EmployeeRepository = (*EmployeeRepository)(nil)
