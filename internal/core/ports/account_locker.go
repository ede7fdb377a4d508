package ports

import "context"

// AccountLocker serializes read-modify-write sequences on a single account.
// Different keys must not block each other.
type AccountLocker interface {
	// Lock blocks until the key is held or ctx is done. The returned func
	// releases it and is safe to call once.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
