// Package security holds the password hashing schemes behind the credential
// verifier.
package security

import (
	"fmt"
	"strings"

	"github.com/appiso/access-control/internal/core/ports"
)

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// Hasher hashes new secrets with the configured algorithm and verifies
// stored hashes with whichever algorithm produced them.
type Hasher struct {
	primary ports.PasswordHasher
	bcrypt  *BcryptHasher
	argon2  *Argon2Hasher
}

// NewHasher builds a Hasher whose new hashes use algorithm.
func NewHasher(algorithm string, bcryptCost int) (*Hasher, error) {
	h := &Hasher{
		bcrypt: NewBcryptHasher(bcryptCost),
		argon2: NewArgon2Hasher(DefaultArgon2Params()),
	}

	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", AlgorithmBcrypt:
		h.primary = h.bcrypt
	case AlgorithmArgon2id:
		h.primary = h.argon2
	default:
		return nil, fmt.Errorf("unsupported password hash algorithm %q", algorithm)
	}
	return h, nil
}

func (h *Hasher) Hash(secret string) (string, error) {
	return h.primary.Hash(secret)
}

func (h *Hasher) Verify(secret, encoded string) bool {
	switch {
	case strings.HasPrefix(encoded, argon2Prefix):
		return h.argon2.Verify(secret, encoded)
	case isBcrypt(encoded):
		return h.bcrypt.Verify(secret, encoded)
	default:
		return false
	}
}

func isBcrypt(encoded string) bool {
	for _, p := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(encoded, p) {
			return true
		}
	}
	return false
}

var _ ports.PasswordHasher = (*Hasher)(nil)
