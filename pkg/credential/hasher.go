// Package credential supplies the password-hashing collaborator consumed by
// callers before handing an opaque credential blob to the core. The core
// itself never inspects or validates hash contents.
package credential

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher produces and verifies opaque password credentials.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Compare(hash, plaintext string) error
}

// BcryptHasher implements Hasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher constructs a hasher with the given cost. Costs outside the
// bcrypt range fall back to the library default.
func NewBcryptHasher(cost int) BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return BcryptHasher{cost: cost}
}

// Hash derives a salted credential blob from plaintext.
func (h BcryptHasher) Hash(plaintext string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(out), nil
}

// Compare reports whether plaintext matches the stored hash.
func (h BcryptHasher) Compare(hash, plaintext string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)); err != nil {
		return fmt.Errorf("compare password: %w", err)
	}
	return nil
}
