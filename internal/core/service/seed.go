package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/appiso/access-control/internal/core/domain"
	"github.com/appiso/access-control/internal/core/ports"
)

// AccountSeed is a bootstrap account created at startup when missing.
type AccountSeed struct {
	Username string
	Password string
	Role     domain.Role
}

// DefaultEmployees is the employee data served by the salary endpoint on a
// fresh store.
var DefaultEmployees = []domain.Employee{
	{ID: 1, Name: "Pepito Perez", Salary: 3500000},
}

// Seeder creates bootstrap accounts and employee records. Accounts are only
// seeded into an empty account store; employees are upserted on every run.
type Seeder struct {
	auth      *AuthService
	accounts  ports.AccountRepository
	employees ports.EmployeeRepository
	log       zerolog.Logger
}

func NewSeeder(auth *AuthService, accounts ports.AccountRepository, employees ports.EmployeeRepository, log zerolog.Logger) *Seeder {
	return &Seeder{auth: auth, accounts: accounts, employees: employees, log: log}
}

// Seed skips accounts without a password.
func (s *Seeder) Seed(ctx context.Context, accounts []AccountSeed, employees []domain.Employee) error {
	existing, err := s.accounts.Count(ctx)
	if err != nil {
		return fmt.Errorf("seeding accounts: %w", err)
	}
	if existing > 0 {
		s.log.Debug().Int64("accounts", existing).Msg("account store not empty, skipping account seed")
		accounts = nil
	}

	for _, a := range accounts {
		if a.Password == "" {
			s.log.Warn().Str("username", a.Username).Msg("seed password not configured, skipping account")
			continue
		}
		_, err := s.auth.CreateAccount(ctx, a.Username, a.Password, a.Role)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrAccountExists):
			s.log.Debug().Str("username", a.Username).Msg("seed account already present")
		default:
			return fmt.Errorf("seeding account %s: %w", a.Username, err)
		}
	}

	for i := range employees {
		if err := s.employees.Upsert(ctx, &employees[i]); err != nil {
			return fmt.Errorf("seeding employee %d: %w", employees[i].ID, err)
		}
	}
	return nil
}
