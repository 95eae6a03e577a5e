package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusCompleted = "completed"
)

// Purchase tracks one checkout session for the premium unlock.
type Purchase struct {
	PurchaseID       uuid.UUID
	UserID           uuid.UUID
	StripeSessionID  string
	StripeCustomerID *string
	Amount           int64
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
