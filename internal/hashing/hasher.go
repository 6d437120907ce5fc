package hashing

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for stored passwords.
const PasswordCost = 10

// Hasher wraps password hashing so the cost factor lives in one place.
type Hasher struct {
	cost int
}

func NewHasher() *Hasher {
	return &Hasher{cost: PasswordCost}
}

// HashPassword returns the salted bcrypt hash of a plaintext password. The
// plaintext is never stored or logged.
func (h *Hasher) HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// ComparePassword reports whether plain matches the stored hash.
func (h *Hasher) ComparePassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
