package http

import (
	"encoding/json"
	"net/http"
)

// errorBody is every non-2xx payload. Success payloads are written unwrapped.
type errorBody struct {
	Error           string `json:"error"`
	Code            string `json:"code"`
	RequiresPremium bool   `json:"requiresPremium,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError marks gate denials with requiresPremium.
func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, errorBody{
		Error:           message,
		Code:            code,
		RequiresPremium: code == codePremiumRequired,
	})
}
