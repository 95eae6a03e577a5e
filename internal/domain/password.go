package domain

import (
	"fmt"
	"unicode/utf8"
)

const (
	minPasswordLength = 6
	// bcrypt only reads the first 72 bytes and rejects longer input.
	maxPasswordBytes = 72
)

// ValidatePassword enforces the signup password policy.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("%w: email and password required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, maxPasswordBytes)
	}
	return nil
}
