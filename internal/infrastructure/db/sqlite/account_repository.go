package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/appiso/access-control/internal/core/domain"
	"github.com/appiso/access-control/internal/core/ports"
)

// AccountRepository stores accounts in the accounts table. Timestamps are
// kept as Unix nanoseconds.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, username, password_hash, role, active, failed_attempts, locked_until, created_at`

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (username, password_hash, role, active, failed_attempts, locked_until, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.Username, a.PasswordHash, string(a.Role), a.Active, a.FailedAttempts, nullableTime(a.LockedUntil), a.CreatedAt.UnixNano(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("creating account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting account id: %w", err)
	}
	return r.FindByID(ctx, strconv.FormatInt(id, 10))
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, n)
	return scanAccount(row)
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = ?`, username)
	return scanAccount(row)
}

func (r *AccountRepository) UpdateLoginState(ctx context.Context, id string, failedAttempts int, lockedUntil *time.Time) error {
	return r.exec(ctx, id,
		`UPDATE accounts SET failed_attempts = ?, locked_until = ? WHERE id = ?`,
		failedAttempts, nullableTime(lockedUntil),
	)
}

func (r *AccountRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.exec(ctx, id, `UPDATE accounts SET active = ? WHERE id = ?`, active)
}

func (r *AccountRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting accounts: %w", err)
	}
	return n, nil
}

// exec runs an UPDATE whose last placeholder is the account id.
func (r *AccountRepository) exec(ctx context.Context, id, query string, args ...any) error {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return domain.ErrAccountNotFound
	}

	result, err := r.db.ExecContext(ctx, query, append(args, n)...)
	if err != nil {
		return fmt.Errorf("updating account: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating account: %w", err)
	}
	if affected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func scanAccount(row *sql.Row) (*domain.Account, error) {
	var (
		a           domain.Account
		id          int64
		role        string
		lockedUntil sql.NullInt64
		createdAt   int64
	)
	err := row.Scan(&id, &a.Username, &a.PasswordHash, &role, &a.Active, &a.FailedAttempts, &lockedUntil, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning account: %w", err)
	}

	a.ID = strconv.FormatInt(id, 10)
	a.Role = domain.Role(role)
	a.CreatedAt = time.Unix(0, createdAt).UTC()
	if lockedUntil.Valid {
		until := time.Unix(0, lockedUntil.Int64).UTC()
		a.LockedUntil = &until
	}
	return &a, nil
}

func nullableTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func isUniqueViolation(err error) bool {
	var se *moderncsqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var _ ports.AccountRepository = (*AccountRepository)(nil)
