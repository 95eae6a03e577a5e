package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidCredentials hides whether email or password failed.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNoCredential means the request carried no bearer token at all.
	ErrNoCredential = errors.New("no token provided")
	// ErrInvalidToken covers bad signatures, expiry, tampering and tokens whose user is gone.
	// Callers see one signal so a deleted account is indistinguishable from a forged token.
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrInvalidInput          = errors.New("invalid input")
	ErrEmailTaken            = errors.New("email already registered")
	ErrAlreadyPremium        = errors.New("already premium")
	ErrRateLimited           = errors.New("too many requests, please try again later")
	ErrInvalidSignature      = errors.New("invalid signature")
	ErrPaymentsNotConfigured = errors.New("payments not configured")
	// ErrPremiumRequired is the usage gate denial. HTTP maps it to 403 with requiresPremium.
	ErrPremiumRequired = errors.New("premium required")
)
