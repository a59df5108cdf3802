package handler

import (
	"net/http"

	"github.com/go-api-profile/internal/application/auth"
	"github.com/go-api-profile/internal/domain"
)

// AuthHandler handles registration, password login and OTP login.
type AuthHandler struct {
	svc  auth.Service
	errs ErrorWriter
}

func NewAuthHandler(svc auth.Service, errs ErrorWriter) *AuthHandler {
	return &AuthHandler{svc: svc, errs: errs}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.Register(r.Context(), req)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthEnvelope{User: res.User, Token: res.Token, Message: "user registered successfully"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{User: res.User, Token: res.Token, Message: "login successful"})
}

func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.SendOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d, err := h.svc.SendOTP(r.Context(), req)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	if d.DevCode != "" {
		writeJSON(w, http.StatusOK, OTPSentEnvelope{Sent: true, Message: "OTP generated (email sending failed in dev mode)", OTP: d.DevCode})
		return
	}
	writeJSON(w, http.StatusOK, OTPSentEnvelope{Sent: d.Sent, Message: "OTP sent to your email address"})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.VerifyOTP(r.Context(), req)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{User: res.User, Token: res.Token, Message: "login successful"})
}
