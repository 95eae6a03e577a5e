package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the stored account with its usage counters.
type User struct {
	UserID         uuid.UUID
	Email          string
	PasswordHash   string
	IsPremium      bool
	BrainDumpCount int
	ResetCount     int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Identity is the read-only snapshot attached to an authenticated request.
// It can be stale relative to concurrent writes; operations that consume quota re-read the user.
type Identity struct {
	ID             uuid.UUID
	Email          string
	IsPremium      bool
	BrainDumpCount int
	ResetCount     int
}

func (u User) Identity() Identity {
	return Identity{
		ID:             u.UserID,
		Email:          u.Email,
		IsPremium:      u.IsPremium,
		BrainDumpCount: u.BrainDumpCount,
		ResetCount:     u.ResetCount,
	}
}

// NormalizeEmail lower-cases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email and password required", ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: email is not a valid address", ErrInvalidInput)
	}
	return nil
}
