package ports

// PasswordHasher hashes new secrets and verifies submitted ones.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	// Verify reports whether secret matches encoded. A malformed hash is
	// simply a mismatch.
	Verify(secret, encoded string) bool
}
