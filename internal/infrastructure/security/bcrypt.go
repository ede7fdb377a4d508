package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/appiso/access-control/internal/core/domain"
)

// BcryptHasher hashes secrets with bcrypt at a fixed cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, falling back to
// bcrypt.DefaultCost when cost is outside bcrypt's accepted range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password longer than 72 bytes", domain.ErrInvalidInput)
		}
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(secret, encoded string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(secret)) == nil
}

// Cost returns the configured work factor.
func (h *BcryptHasher) Cost() int { return h.cost }
