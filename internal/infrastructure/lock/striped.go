// Package lock provides the in-process AccountLocker.
package lock

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/appiso/access-control/internal/core/ports"
)

const defaultStripes = 256

// Striped serializes work per key using a fixed set of stripes chosen by
// FNV hash of the key. Two keys only contend when they share a stripe.
type Striped struct {
	stripes []chan struct{}
}

// NewStriped creates a Striped locker with n stripes.
// If n <= 0, defaultStripes is used.
func NewStriped(n int) *Striped {
	if n <= 0 {
		n = defaultStripes
	}
	s := &Striped{stripes: make([]chan struct{}, n)}
	for i := range s.stripes {
		s.stripes[i] = make(chan struct{}, 1)
	}
	return s
}

// Lock waits for key's stripe or ctx cancellation.
func (s *Striped) Lock(ctx context.Context, key string) (func(), error) {
	ch := s.stripes[s.stripeIndex(key)]
	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// stripeIndex maps a key deterministically to a stripe.
func (s *Striped) stripeIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(s.stripes)))
}

var _ ports.AccountLocker = (*Striped)(nil)
