// Package credential implements one-way hashing of account passwords and
// tenant recovery phrases.
package credential

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// Hasher turns a plaintext secret into a stored digest and verifies a
// candidate against one.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}

// SHA256Hasher is the legacy scheme: hex SHA-256 of the UTF-8 secret,
// verified by equality. It is deterministic and unsalted, so identical
// secrets across accounts and tenants produce identical digests. Kept for
// compatibility with digests already in the store; new deployments should
// prefer BcryptHasher.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(secret string) (string, error) {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:]), nil
}

func (h SHA256Hasher) Verify(secret, digest string) bool {
	computed, _ := h.Hash(secret)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

// BcryptHasher salts per secret via bcrypt.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(secret string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	out, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (h BcryptHasher) Verify(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}

// ForScheme returns the hasher for a configured scheme name. Anything other
// than "bcrypt" selects the legacy SHA-256 scheme.
func ForScheme(scheme string) Hasher {
	if scheme == "bcrypt" {
		return BcryptHasher{}
	}
	return SHA256Hasher{}
}
