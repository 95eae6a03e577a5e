package ports

import (
	"time"

	"github.com/google/uuid"
)

// PasswordHasher abstracts password hashing/verification algorithms.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenClaims is the verified content of a bearer token.
type TokenClaims struct {
	UserID    uuid.UUID
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer issues and verifies bearer tokens. Verify returns domain.ErrInvalidToken
// for every failure and never partial claims.
type TokenIssuer interface {
	Issue(userID uuid.UUID, email string) (string, error)
	Verify(token string) (TokenClaims, error)
}
