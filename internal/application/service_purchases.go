package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
	"github.com/Shoiba023/invisible-load-reducer/internal/ports"
	"github.com/google/uuid"
)

// CreateCheckoutSession opens a provider checkout for the one-time premium unlock and
// records it as a pending purchase.
func (s *Service) CreateCheckoutSession(ctx context.Context, identity domain.Identity, req CheckoutRequest) (CheckoutResponse, error) {
	if s.payments == nil {
		return CheckoutResponse{}, domain.ErrPaymentsNotConfigured
	}

	user, err := s.freshUser(ctx, identity.ID)
	if err != nil {
		return CheckoutResponse{}, err
	}
	if user.IsPremium {
		return CheckoutResponse{}, domain.ErrAlreadyPremium
	}

	base := strings.TrimRight(req.BaseURL, "/")
	session, err := s.payments.CreateCheckoutSession(ctx, ports.CheckoutRequest{
		UserID:      user.UserID,
		Email:       user.Email,
		AmountCents: s.cfg.PremiumPriceCents,
		SuccessURL:  base + "/payment-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   base + "/payment-cancelled",
	})
	if err != nil {
		return CheckoutResponse{}, fmt.Errorf("create checkout session: %w", err)
	}

	now := s.nowFn()
	if _, err := s.purchases.CreatePending(ctx, domain.Purchase{
		PurchaseID:      uuid.New(),
		UserID:          user.UserID,
		StripeSessionID: session.ID,
		Amount:          s.cfg.PremiumPriceCents,
		Status:          domain.PurchaseStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}); err != nil {
		return CheckoutResponse{}, err
	}

	logger().InfoContext(ctx, "checkout session created",
		"operation", "create_checkout_session",
		"outcome", "success",
		"user_id", user.UserID,
		"session_id", session.ID,
	)
	return CheckoutResponse{URL: session.URL, SessionID: session.ID}, nil
}

// HandleStripeWebhook applies a provider event. Redelivered events are acknowledged
// without side effects; events other than a completed checkout are ignored.
func (s *Service) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) (WebhookResponse, error) {
	if s.payments == nil {
		return WebhookResponse{}, domain.ErrPaymentsNotConfigured
	}

	event, err := s.payments.ParseWebhook(payload, signature)
	if err != nil {
		return WebhookResponse{}, err
	}
	if event.Type != ports.EventCheckoutSessionComplete || event.Session == nil {
		return WebhookResponse{Received: true}, nil
	}

	userID, err := uuid.Parse(event.Session.UserID)
	if err != nil {
		logger().WarnContext(ctx, "checkout completed without a usable userId",
			"operation", "stripe_webhook",
			"outcome", "ignored",
			"event_id", event.ID,
			"session_id", event.Session.ID,
		)
		return WebhookResponse{Received: true}, nil
	}

	result, err := s.completePurchase(ctx, userID, *event.Session, event.ID, event.Type)
	if errors.Is(err, domain.ErrNotFound) {
		logger().WarnContext(ctx, "checkout completed for unknown user",
			"operation", "stripe_webhook",
			"outcome", "ignored",
			"event_id", event.ID,
			"user_id", userID,
		)
		return WebhookResponse{Received: true}, nil
	}
	if err != nil {
		return WebhookResponse{}, err
	}
	logger().InfoContext(ctx, "stripe webhook processed",
		"operation", "stripe_webhook",
		"outcome", "success",
		"event_id", event.ID,
		"duplicate", result.Duplicate,
		"premium_granted", result.PremiumGranted,
	)
	return WebhookResponse{Received: true}, nil
}

// VerifyPurchase re-checks a checkout session with the provider. Premium is granted only
// when the session is paid and was opened by the caller.
func (s *Service) VerifyPurchase(ctx context.Context, identity domain.Identity, req VerifyPurchaseRequest) (VerifyPurchaseResponse, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return VerifyPurchaseResponse{}, fmt.Errorf("%w: session ID required", domain.ErrInvalidInput)
	}
	if s.payments == nil {
		return VerifyPurchaseResponse{}, domain.ErrPaymentsNotConfigured
	}

	session, err := s.payments.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return VerifyPurchaseResponse{}, fmt.Errorf("get checkout session: %w", err)
	}
	if session.PaymentStatus != ports.PaymentStatusPaid || session.UserID != identity.ID.String() {
		return VerifyPurchaseResponse{Success: false, IsPremium: false}, nil
	}

	if _, err := s.completePurchase(ctx, identity.ID, session, "", ""); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return VerifyPurchaseResponse{}, domain.ErrInvalidToken
		}
		return VerifyPurchaseResponse{}, err
	}
	return VerifyPurchaseResponse{Success: true, IsPremium: true}, nil
}

func (s *Service) completePurchase(ctx context.Context, userID uuid.UUID, session ports.CheckoutSession, eventID, eventType string) (ports.CompletePurchaseResult, error) {
	now := s.nowFn()
	event := newOutboxEvent(eventTypeUserPremiumUnlocked, userID.String(), map[string]any{
		"user_id":     userID,
		"session_id":  session.ID,
		"unlocked_at": now,
	}, now)
	return s.purchases.CompleteWithPremiumTx(ctx, ports.CompletePurchaseParams{
		UserID:           userID,
		StripeSessionID:  session.ID,
		StripeCustomerID: session.CustomerID,
		WebhookEventID:   eventID,
		WebhookEventType: eventType,
		CompletedAt:      now,
	}, event)
}
