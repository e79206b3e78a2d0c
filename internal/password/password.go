package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 12

// Hasher hashes and verifies passwords with bcrypt.
type Hasher struct {
	cost int
}

// NewHasher creates a hasher with the given bcrypt cost. Costs outside
// bcrypt's supported range fall back to DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt hash of the plaintext password.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether the plaintext password matches the stored hash.
func (h *Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
