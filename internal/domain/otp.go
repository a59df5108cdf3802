package domain

import "time"

// OTP is a one-time login code. At most one live OTP exists per email.
// ID is numeric text for the relational store and a ULID for DynamoDB.
type OTP struct {
	ID        string    `json:"id" dynamodbav:"otp_id"`
	Email     string    `json:"email" dynamodbav:"email"`
	Code      string    `json:"-" dynamodbav:"otp"`
	ExpiresAt time.Time `json:"expiresAt" dynamodbav:"expires_at,unixtime"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"created_at"`
}

// Expired reports whether the code can no longer be used at t.
func (o *OTP) Expired(t time.Time) bool {
	return !o.ExpiresAt.After(t)
}

type SendOTPRequest struct {
	Email string `json:"email" validate:"required,max=255,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,max=255,email"`
	Code  string `json:"otp" validate:"required,otpcode"`
}

// AuthResult is returned by every flow that ends in a login.
type AuthResult struct {
	User  *User
	Token string
}
