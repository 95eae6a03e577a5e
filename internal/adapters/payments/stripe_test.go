package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
	"github.com/Shoiba023/invisible-load-reducer/internal/ports"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test"

func signPayload(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = fmt.Fprintf(mac, "%d.%s", at.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func checkoutCompletedPayload(t *testing.T, userID string) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":          "evt_1",
		"object":      "event",
		"type":        "checkout.session.completed",
		"api_version": "2020-08-27",
		"data": map[string]any{
			"object": map[string]any{
				"id":             "cs_test_1",
				"object":         "checkout.session",
				"payment_status": "paid",
				"customer":       "cus_42",
				"metadata":       map[string]string{"userId": userID},
			},
		},
	})
	require.NoError(t, err)
	return raw
}

func TestNewGatewayWithoutKeyIsDisabled(t *testing.T) {
	assert.Nil(t, NewGateway(Config{}))
}

func TestParseWebhookVerifiesSignature(t *testing.T) {
	gw := NewGateway(Config{SecretKey: "sk_test_x", WebhookSecret: testWebhookSecret})
	userID := uuid.NewString()
	payload := checkoutCompletedPayload(t, userID)

	event, err := gw.ParseWebhook(payload, signPayload(payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, ports.EventCheckoutSessionComplete, event.Type)
	require.NotNil(t, event.Session)
	assert.Equal(t, "cs_test_1", event.Session.ID)
	assert.Equal(t, userID, event.Session.UserID)
	assert.Equal(t, "cus_42", event.Session.CustomerID)
	assert.Equal(t, ports.PaymentStatusPaid, event.Session.PaymentStatus)

	_, err = gw.ParseWebhook(payload, signPayload(payload, "whsec_other", time.Now()))
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)

	_, err = gw.ParseWebhook(payload, "")
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)

	_, err = gw.ParseWebhook(payload, signPayload(payload, testWebhookSecret, time.Now().Add(-time.Hour)))
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestParseWebhookWithoutSecretTrustsPayload(t *testing.T) {
	gw := NewGateway(Config{SecretKey: "sk_test_x"})
	payload := checkoutCompletedPayload(t, "user-1")

	event, err := gw.ParseWebhook(payload, "")
	require.NoError(t, err)
	require.NotNil(t, event.Session)
	assert.Equal(t, "user-1", event.Session.UserID)

	_, err = gw.ParseWebhook([]byte("{"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateAndGetCheckoutSession(t *testing.T) {
	userID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/checkout/sessions":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "payment", r.PostForm.Get("mode"))
			assert.Equal(t, "1400", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
			assert.Equal(t, "usd", r.PostForm.Get("line_items[0][price_data][currency]"))
			assert.Equal(t, productName, r.PostForm.Get("line_items[0][price_data][product_data][name]"))
			assert.Equal(t, userID.String(), r.PostForm.Get("metadata[userId]"))
			assert.Equal(t, "mom@example.com", r.PostForm.Get("customer_email"))
			_, _ = fmt.Fprintf(w, `{"id":"cs_test_9","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_9","payment_status":"unpaid","metadata":{"userId":%q}}`, userID.String())
		case r.Method == http.MethodGet && r.URL.Path == "/v1/checkout/sessions/cs_test_9":
			_, _ = fmt.Fprintf(w, `{"id":"cs_test_9","object":"checkout.session","payment_status":"paid","customer":"cus_9","metadata":{"userId":%q}}`, userID.String())
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"no such route"}}`))
		}
	}))
	defer srv.Close()

	gw := NewGateway(Config{SecretKey: "sk_test_x", APIURL: srv.URL})
	created, err := gw.CreateCheckoutSession(context.Background(), ports.CheckoutRequest{
		UserID:      userID,
		Email:       "mom@example.com",
		AmountCents: 1400,
		SuccessURL:  "https://app.test/payment-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   "https://app.test/payment-cancelled",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_9", created.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_9", created.URL)

	fetched, err := gw.GetCheckoutSession(context.Background(), "cs_test_9")
	require.NoError(t, err)
	assert.Equal(t, ports.PaymentStatusPaid, fetched.PaymentStatus)
	assert.Equal(t, userID.String(), fetched.UserID)
	assert.Equal(t, "cus_9", fetched.CustomerID)

	_, err = gw.GetCheckoutSession(context.Background(), "cs_missing")
	assert.Error(t, err)
}
