package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/appiso/access-control/internal/core/ports"
)

const (
	defaultLockTTL   = 10 * time.Second
	defaultLockRetry = 25 * time.Millisecond
	releaseTimeout   = 2 * time.Second
)

// ErrLockTimeout is returned when the lease could not be acquired before
// the caller's context ended.
var ErrLockTimeout = errors.New("account lock: timed out waiting for lease")

// releaseScript deletes the key only if it still holds our token, so an
// expired lease that was taken over is never released by its old owner.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AccountLocker is a lease-based AccountLocker shared by every replica.
// Key format: lock:account:<id>
type AccountLocker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
}

// NewAccountLocker wraps client. ttl bounds how long a crashed holder can
// keep an account blocked; non-positive values use defaultLockTTL.
func NewAccountLocker(client *redis.Client, ttl time.Duration) *AccountLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &AccountLocker{client: client, ttl: ttl, retry: defaultLockRetry}
}

// Lock polls SET NX PX until it wins the lease or ctx is done.
func (l *AccountLocker) Lock(ctx context.Context, key string) (func(), error) {
	k := l.key(key)
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, k, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("account lock: %w", err)
		}
		if ok {
			return l.releaser(k, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrLockTimeout, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *AccountLocker) releaser(key, token string) func() {
	released := false
	return func() {
		if released {
			return
		}
		released = true

		ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}
}

func (l *AccountLocker) key(id string) string {
	return fmt.Sprintf("lock:account:%s", id)
}

var _ ports.AccountLocker = (*AccountLocker)(nil)
