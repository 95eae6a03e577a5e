package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
)

const codePremiumRequired = "PREMIUM_REQUIRED"

// mapDomainError is the single place domain errors become status codes. Anything
// unrecognised collapses to a generic 500 so internal detail never reaches clients.
func mapDomainError(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "VALIDATION_ERROR", detail(err, domain.ErrInvalidInput)
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusBadRequest, "EMAIL_TAKEN", "Email already registered"
	case errors.Is(err, domain.ErrAlreadyPremium):
		return http.StatusBadRequest, "ALREADY_PREMIUM", "Already premium"
	case errors.Is(err, domain.ErrInvalidSignature):
		return http.StatusBadRequest, "INVALID_SIGNATURE", "Invalid signature"
	case errors.Is(err, domain.ErrNoCredential):
		return http.StatusUnauthorized, "NO_CREDENTIAL", "No token provided"
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "INVALID_CREDENTIAL", "Invalid or expired token"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"
	case errors.Is(err, domain.ErrPremiumRequired):
		return http.StatusForbidden, codePremiumRequired, detail(err, domain.ErrPremiumRequired)
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later."
	case errors.Is(err, domain.ErrPaymentsNotConfigured):
		return http.StatusInternalServerError, "PAYMENTS_NOT_CONFIGURED", "Stripe not configured"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
	}
}

// detail strips the sentinel prefix from "sentinel: detail" messages.
func detail(err, sentinel error) string {
	msg := err.Error()
	if trimmed := strings.TrimPrefix(msg, sentinel.Error()+": "); trimmed != msg {
		return trimmed
	}
	return msg
}
