package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-api-profile/internal/domain"
)

const maxBodyBytes = 1 << 20

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthEnvelope wraps register/login/OTP-verify responses.
type AuthEnvelope struct {
	User    *domain.User `json:"user"`
	Token   string       `json:"token"`
	Message string       `json:"message,omitempty"`
}

// UserEnvelope wraps current-user and profile responses.
type UserEnvelope struct {
	User    *domain.User `json:"user"`
	Message string       `json:"message,omitempty"`
}

// OTPSentEnvelope wraps the send-OTP response. OTP is only filled by the development fallback.
type OTPSentEnvelope struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message,omitempty"`
	OTP     string `json:"otp,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// decodeJSON reads a bounded JSON body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
