package http

import (
	"net/http"

	"github.com/Shoiba023/invisible-load-reducer/internal/application"
)

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req application.SignupRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMappedError(r.Context(), w, "signup", err)
		return
	}
	resp, err := h.service.Signup(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "signup", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMappedError(r.Context(), w, "login", err)
		return
	}
	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	writeJSON(w, http.StatusOK, h.service.Logout(r.Context(), identity))
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	resp, err := h.service.Me(r.Context(), identity)
	if err != nil {
		writeMappedError(r.Context(), w, "me", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
