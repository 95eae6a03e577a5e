package security

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used for stored passwords.
const DefaultBcryptCost = 12

// BcryptHasher implements password hashing via bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher falls back to DefaultBcryptCost for out-of-range costs.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
