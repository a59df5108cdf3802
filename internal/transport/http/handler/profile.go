package handler

import (
	"net/http"

	"github.com/go-api-profile/internal/application/user"
	"github.com/go-api-profile/internal/domain"
	"github.com/go-api-profile/internal/transport/http/middleware"
)

// ProfileHandler serves the authenticated user's own record.
type ProfileHandler struct {
	svc  user.Service
	errs ErrorWriter
}

func NewProfileHandler(svc user.Service, errs ErrorWriter) *ProfileHandler {
	return &ProfileHandler{svc: svc, errs: errs}
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no token provided")
		return
	}
	u, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{User: u})
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no token provided")
		return
	}
	var req domain.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.svc.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{User: u, Message: "profile updated successfully"})
}
