package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/appiso/access-control/internal/core/domain"
	"github.com/appiso/access-control/internal/core/ports"
)

// timingSecret is hashed once and compared against on rejections that skip
// the real credential check, so every rejection costs one hash comparison.
const timingSecret = "timing-equalizer"

// AuthService implements login, account creation and deactivation.
type AuthService struct {
	repo     ports.AccountRepository
	locker   ports.AccountLocker
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	lockout  domain.LockoutPolicy
	observer ports.LoginObserver
	log      zerolog.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	repo ports.AccountRepository,
	locker ports.AccountLocker,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	lockout domain.LockoutPolicy,
	log zerolog.Logger,
) *AuthService {
	if lockout.Threshold <= 0 {
		lockout.Threshold = domain.DefaultLockoutThreshold
	}
	if lockout.Duration <= 0 {
		lockout.Duration = domain.DefaultLockoutDuration
	}
	return &AuthService{
		repo:     repo,
		locker:   locker,
		hasher:   hasher,
		tokens:   tokens,
		lockout:  lockout,
		observer: nopObserver{},
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source for deterministic tests.
func (s *AuthService) WithClock(clock func() time.Time) *AuthService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// WithObserver attaches a login outcome observer.
func (s *AuthService) WithObserver(o ports.LoginObserver) *AuthService {
	if o != nil {
		s.observer = o
	}
	return s
}

// Login authenticates username/password and returns a signed token.
//
// Every rejection returns domain.ErrUnauthorized. Store and lock failures
// are returned wrapped in domain.ErrStoreUnavailable.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	// An empty password still goes through verification so it counts toward
	// the lockout of an existing account.
	if username == "" {
		return "", s.reject(password, ports.RejectUnknownAccount, s.log)
	}

	found, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", s.reject(password, ports.RejectUnknownAccount, s.log.With().Str("username", username).Logger())
		}
		return "", storeError("login: find account", err)
	}

	unlock, err := s.locker.Lock(ctx, found.ID)
	if err != nil {
		return "", storeError("login: lock account", err)
	}
	defer unlock()

	// Re-read under the lock: a racing attempt may have changed the state.
	account, err := s.repo.FindByID(ctx, found.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", s.reject(password, ports.RejectUnknownAccount, s.log.With().Str("username", username).Logger())
		}
		return "", storeError("login: reload account", err)
	}

	now := s.now()
	log := s.log.With().Str("username", account.Username).Str("account_id", account.ID).Logger()

	if !account.Active {
		return "", s.reject(password, ports.RejectInactive, log)
	}
	if account.IsLocked(now) {
		return "", s.reject(password, ports.RejectLocked, log)
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		locked := s.lockout.RecordFailure(account, now)
		if err := s.repo.UpdateLoginState(ctx, account.ID, account.FailedAttempts, account.LockedUntil); err != nil {
			return "", storeError("login: record failure", err)
		}
		if locked {
			s.observer.AccountLocked()
			log.Warn().Time("locked_until", *account.LockedUntil).Msg("account locked")
		}
		s.observer.LoginRejected(ports.RejectBadCredentials)
		log.Info().Str("reason", ports.RejectBadCredentials).Int("failed_attempts", account.FailedAttempts).Msg("login rejected")
		return "", domain.ErrUnauthorized
	}

	if account.FailedAttempts != 0 || account.LockedUntil != nil {
		s.lockout.RecordSuccess(account)
		if err := s.repo.UpdateLoginState(ctx, account.ID, account.FailedAttempts, account.LockedUntil); err != nil {
			return "", storeError("login: reset failures", err)
		}
	}

	token, err := s.tokens.Issue(account.ID, account.Username, account.Role, now)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	s.observer.LoginSucceeded()
	log.Info().Str("role", account.Role.String()).Msg("login succeeded")
	return token, nil
}

// CreateAccount stores a new active account with a hashed password.
func (s *AuthService) CreateAccount(ctx context.Context, username, password string, role domain.Role) (*domain.AccountSummary, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, domain.ErrAccountExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, storeError("create account: find", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.Account{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    s.now(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrAccountExists) {
			return nil, err
		}
		return nil, storeError("create account", err)
	}

	s.log.Info().Str("account_id", created.ID).Str("username", created.Username).Str("role", created.Role.String()).Msg("account created")

	summary := created.Summary()
	return &summary, nil
}

// DeactivateAccount flips the account to inactive. It takes the account
// lock so it cannot interleave with a login in progress.
func (s *AuthService) DeactivateAccount(ctx context.Context, id string) error {
	unlock, err := s.locker.Lock(ctx, id)
	if err != nil {
		return storeError("deactivate account: lock", err)
	}
	defer unlock()

	if err := s.repo.SetActive(ctx, id, false); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrAccountNotFound
		}
		return storeError("deactivate account", err)
	}

	s.log.Info().Str("account_id", id).Msg("account deactivated")
	return nil
}

func (s *AuthService) reject(password, reason string, log zerolog.Logger) error {
	s.equalizeTiming(password)
	s.observer.LoginRejected(reason)
	log.Info().Str("reason", reason).Msg("login rejected")
	return domain.ErrUnauthorized
}

func (s *AuthService) equalizeTiming(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(timingSecret)
		if err != nil {
			s.log.Warn().Err(err).Msg("could not prepare timing hash")
			return
		}
		s.dummyHash = hash
	})
	_ = s.hasher.Verify(password, s.dummyHash)
}

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

type nopObserver struct{}

func (nopObserver) LoginSucceeded()      {}
func (nopObserver) LoginRejected(string) {}
func (nopObserver) AccountLocked()       {}

var _ ports.AuthService = (*AuthService)(nil)
