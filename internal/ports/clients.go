package ports

import (
	"context"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
	"github.com/google/uuid"
)

// Assistant is the LLM-backed text collaborator.
type Assistant interface {
	CategorizeBrainDump(ctx context.Context, input string) (domain.Categorization, error)
	GenerateScripts(ctx context.Context, category, situation string) (domain.Scripts, error)
}

// CheckoutRequest describes the premium checkout session to open.
type CheckoutRequest struct {
	UserID      uuid.UUID
	Email       string
	AmountCents int64
	SuccessURL  string
	CancelURL   string
}

// CheckoutSession is the provider-neutral view of a checkout session.
type CheckoutSession struct {
	ID            string
	URL           string
	PaymentStatus string
	// UserID is the metadata userId attached at creation, verbatim.
	UserID     string
	CustomerID string
}

const (
	PaymentStatusPaid            = "paid"
	EventCheckoutSessionComplete = "checkout.session.completed"
)

// PaymentEvent is a parsed provider webhook. Session is populated for checkout events.
type PaymentEvent struct {
	ID      string
	Type    string
	Session *CheckoutSession
}

// PaymentGateway is the payment provider port.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (CheckoutSession, error)
	// ParseWebhook verifies the signature when a webhook secret is configured.
	// A failed verification returns domain.ErrInvalidSignature.
	ParseWebhook(payload []byte, signature string) (PaymentEvent, error)
}
