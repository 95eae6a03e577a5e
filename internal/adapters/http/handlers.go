package http

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
)

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// stripeWebhook needs the raw body for signature verification, so it never goes
// through decodeBody.
func (h *Handler) stripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeMappedError(r.Context(), w, "stripe_webhook", fmt.Errorf("%w: unreadable body", domain.ErrInvalidInput))
		return
	}
	resp, err := h.service.HandleStripeWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		writeMappedError(r.Context(), w, "stripe_webhook", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
