package http

import (
	"fmt"
	"net/http"

	"github.com/Shoiba023/invisible-load-reducer/internal/application"
	"github.com/Shoiba023/invisible-load-reducer/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (h *Handler) brainDump(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	var req application.BrainDumpRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMappedError(r.Context(), w, "brain_dump", err)
		return
	}
	resp, err := h.service.BrainDump(r.Context(), identity, req)
	if err != nil {
		writeMappedError(r.Context(), w, "brain_dump", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) brainDumpHistory(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	resp, err := h.service.BrainDumpHistory(r.Context(), identity)
	if err != nil {
		writeMappedError(r.Context(), w, "brain_dump_history", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) scripts(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	var req application.ScriptsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMappedError(r.Context(), w, "scripts", err)
		return
	}
	resp, err := h.service.Scripts(r.Context(), identity, req)
	if err != nil {
		writeMappedError(r.Context(), w, "scripts", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) completeReset(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	resp, err := h.service.CompleteReset(r.Context(), identity)
	if err != nil {
		writeMappedError(r.Context(), w, "complete_reset", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) resetCount(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	resp, err := h.service.ResetCount(r.Context(), identity)
	if err != nil {
		writeMappedError(r.Context(), w, "reset_count", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) submitScore(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	var req application.ScoreRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMappedError(r.Context(), w, "submit_score", err)
		return
	}
	resp, err := h.service.SubmitScore(r.Context(), identity, req)
	if err != nil {
		writeMappedError(r.Context(), w, "submit_score", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) scoreHistory(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	resp, err := h.service.ScoreHistory(r.Context(), identity)
	if err != nil {
		writeMappedError(r.Context(), w, "score_history", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) createFavorite(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	var req application.FavoriteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMappedError(r.Context(), w, "create_favorite", err)
		return
	}
	resp, err := h.service.CreateFavorite(r.Context(), identity, req)
	if err != nil {
		writeMappedError(r.Context(), w, "create_favorite", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) listFavorites(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	resp, err := h.service.ListFavorites(r.Context(), identity)
	if err != nil {
		writeMappedError(r.Context(), w, "list_favorites", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) deleteFavorite(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	favoriteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMappedError(r.Context(), w, "delete_favorite", fmt.Errorf("%w: invalid favorite id", domain.ErrInvalidInput))
		return
	}
	resp, err := h.service.DeleteFavorite(r.Context(), identity, favoriteID)
	if err != nil {
		writeMappedError(r.Context(), w, "delete_favorite", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) createCheckoutSession(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	resp, err := h.service.CreateCheckoutSession(r.Context(), identity, application.CheckoutRequest{
		BaseURL: requestBaseURL(r),
	})
	if err != nil {
		writeMappedError(r.Context(), w, "create_checkout_session", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) verifyPurchase(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	var req application.VerifyPurchaseRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMappedError(r.Context(), w, "verify_purchase", err)
		return
	}
	resp, err := h.service.VerifyPurchase(r.Context(), identity, req)
	if err != nil {
		writeMappedError(r.Context(), w, "verify_purchase", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
