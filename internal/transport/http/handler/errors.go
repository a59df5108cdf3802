package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-api-profile/internal/domain"
)

// ErrorWriter maps service errors to HTTP responses.
type ErrorWriter struct {
	// ExposeInternal keeps infrastructure error text in 500 responses. Development only.
	ExposeInternal bool
	Logger         *slog.Logger
}

func (e ErrorWriter) write(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		log := e.Logger
		if log == nil {
			log = slog.Default()
		}
		log.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		if !e.ExposeInternal {
			msg = "internal server error"
		}
	}
	writeError(w, status, msg)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, strings.TrimSuffix(err.Error(), ": "+domain.ErrValidation.Error())
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, domain.ErrDuplicateEmail.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, domain.ErrInvalidCredentials.Error()
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, domain.ErrUserNotFound.Error()
	case errors.Is(err, domain.ErrInvalidOTP):
		return http.StatusBadRequest, domain.ErrInvalidOTP.Error()
	case errors.Is(err, domain.ErrOldPasswordRequired):
		return http.StatusBadRequest, domain.ErrOldPasswordRequired.Error()
	case errors.Is(err, domain.ErrOldPasswordIncorrect):
		return http.StatusBadRequest, domain.ErrOldPasswordIncorrect.Error()
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, domain.ErrTokenExpired.Error()
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusUnauthorized, domain.ErrTokenInvalid.Error()
	}
	return http.StatusInternalServerError, err.Error()
}
