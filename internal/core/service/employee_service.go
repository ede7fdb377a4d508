package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/appiso/access-control/internal/core/domain"
	"github.com/appiso/access-control/internal/core/ports"
)

type EmployeeService struct {
	repo   ports.EmployeeRepository
	logger zerolog.Logger
}

func NewEmployeeService(repo ports.EmployeeRepository, logger zerolog.Logger) *EmployeeService {
	return &EmployeeService{repo: repo, logger: logger}
}

// GetSalary returns the employee record. Access control happens before this
// call; the service only resolves the data.
func (s *EmployeeService) GetSalary(ctx context.Context, id int64) (*domain.Employee, error) {
	if id <= 0 {
		return nil, domain.ErrEmployeeNotFound
	}

	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrEmployeeNotFound
		}
		s.logger.Error().Err(err).Int64("employee_id", id).Msg("failed to load employee")
		return nil, storeError("get salary", err)
	}
	return employee, nil
}

var _ ports.EmployeeService = (*EmployeeService)(nil)
