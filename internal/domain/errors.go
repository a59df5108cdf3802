package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
// Anything that matches none of them is an infrastructure failure.
var (
	ErrValidation           = errors.New("validation failed")
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidOTP           = errors.New("invalid or expired OTP")
	ErrTokenInvalid         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrOldPasswordRequired  = errors.New("old password is required to update password")
	ErrOldPasswordIncorrect = errors.New("old password is incorrect")
)

// ErrTokenMalformed is reported for input that is not a JWT at all.
// It also matches ErrTokenInvalid.
var ErrTokenMalformed = &malformedTokenError{}

type malformedTokenError struct{}

func (e *malformedTokenError) Error() string { return "malformed token" }

func (e *malformedTokenError) Is(target error) bool { return target == ErrTokenInvalid }
