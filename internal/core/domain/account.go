package domain

import "time"

const (
	DefaultLockoutThreshold = 3
	DefaultLockoutDuration  = 15 * time.Minute
)

// Account models an operator identity that can log in.
type Account struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	PasswordHash   string     `json:"-"`
	Role           Role       `json:"role"`
	Active         bool       `json:"active"`
	FailedAttempts int        `json:"-"`
	LockedUntil    *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
}

// AccountSummary is the outward view of an account returned on creation.
type AccountSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Summary strips credential and login state from the account.
func (a *Account) Summary() AccountSummary {
	return AccountSummary{ID: a.ID, Username: a.Username, Role: a.Role}
}

// LockoutPolicy decides when repeated failures turn into a temporary lock.
//
// State lives on the account as (FailedAttempts, LockedUntil). The two are
// never both set: reaching Threshold moves the counter into a lock and
// resets it to zero.
type LockoutPolicy struct {
	Threshold int
	Duration  time.Duration
}

// DefaultLockoutPolicy returns 3 failures / 15 minutes.
func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{Threshold: DefaultLockoutThreshold, Duration: DefaultLockoutDuration}
}

// IsLocked reports whether the account has a lock that is still in force at
// now. An expired LockedUntil counts as no lock even if storage still has it.
func (a *Account) IsLocked(now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}

// RecordFailure applies a failed credential check. It returns true when this
// failure entered the locked state.
func (p LockoutPolicy) RecordFailure(a *Account, now time.Time) bool {
	if a.IsLocked(now) {
		return false
	}
	if a.FailedAttempts+1 >= p.Threshold {
		until := now.Add(p.Duration)
		a.LockedUntil = &until
		a.FailedAttempts = 0
		return true
	}
	a.FailedAttempts++
	a.LockedUntil = nil
	return false
}

// RecordSuccess clears any lock and failure count.
func (p LockoutPolicy) RecordSuccess(a *Account) {
	a.LockedUntil = nil
	a.FailedAttempts = 0
}
