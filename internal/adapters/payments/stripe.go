package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
	"github.com/Shoiba023/invisible-load-reducer/internal/ports"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	productName        = "Invisible Load Reducer - Full Access"
	productDescription = "Unlimited access to all features. One-time purchase."
	metadataUserID     = "userId"
)

type Config struct {
	SecretKey     string
	WebhookSecret string
	// APIURL overrides the Stripe API base, used against local fakes.
	APIURL string
}

// Gateway implements ports.PaymentGateway with Stripe Checkout.
type Gateway struct {
	api           *client.API
	webhookSecret string
}

// NewGateway returns nil when no secret key is configured; callers treat that as
// payments being disabled.
func NewGateway(cfg Config) *Gateway {
	if cfg.SecretKey == "" {
		return nil
	}
	var backends *stripe.Backends
	if cfg.APIURL != "" {
		backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL:               stripe.String(cfg.APIURL),
			MaxNetworkRetries: stripe.Int64(0),
		})
		backends = &stripe.Backends{API: backend, Connect: backend, Uploads: backend}
	}
	api := &client.API{}
	api.Init(cfg.SecretKey, backends)
	return &Gateway{api: api, webhookSecret: cfg.WebhookSecret}
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, req ports.CheckoutRequest) (ports.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(string(stripe.CurrencyUSD)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(productName),
					Description: stripe.String(productDescription),
				},
				UnitAmount: stripe.Int64(req.AmountCents),
			},
			Quantity: stripe.Int64(1),
		}},
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
		CustomerEmail: stripe.String(req.Email),
	}
	params.Context = ctx
	params.AddMetadata(metadataUserID, req.UserID.String())

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return ports.CheckoutSession{}, err
	}
	return toCheckoutSession(sess), nil
}

func (g *Gateway) GetCheckoutSession(ctx context.Context, sessionID string) (ports.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return ports.CheckoutSession{}, err
	}
	return toCheckoutSession(sess), nil
}

// ParseWebhook verifies the Stripe-Signature header when a webhook secret is set.
// Without a secret the payload is trusted as-is.
func (g *Gateway) ParseWebhook(payload []byte, signature string) (ports.PaymentEvent, error) {
	var event stripe.Event
	if g.webhookSecret != "" {
		verified, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		})
		if err != nil {
			slog.Default().Warn("stripe webhook signature rejected",
				"module", "adapters.payments",
				"layer", "adapter",
				"operation", "parse_webhook",
				"outcome", "failure",
				"error", err,
			)
			return ports.PaymentEvent{}, domain.ErrInvalidSignature
		}
		event = verified
	} else if err := json.Unmarshal(payload, &event); err != nil {
		return ports.PaymentEvent{}, fmt.Errorf("%w: malformed webhook payload", domain.ErrInvalidInput)
	}

	out := ports.PaymentEvent{ID: event.ID, Type: string(event.Type)}
	if out.Type == ports.EventCheckoutSessionComplete && event.Data != nil {
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return ports.PaymentEvent{}, fmt.Errorf("%w: malformed checkout session", domain.ErrInvalidInput)
		}
		converted := toCheckoutSession(&sess)
		out.Session = &converted
	}
	return out, nil
}

func toCheckoutSession(sess *stripe.CheckoutSession) ports.CheckoutSession {
	out := ports.CheckoutSession{
		ID:            sess.ID,
		URL:           sess.URL,
		PaymentStatus: string(sess.PaymentStatus),
		UserID:        sess.Metadata[metadataUserID],
	}
	if sess.Customer != nil {
		out.CustomerID = sess.Customer.ID
	}
	return out
}
