package http

import (
	"context"

	"github.com/go-api-profile/internal/domain"
)

// UserRepository is the minimal interface the router requires from a credential store.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, id int64, upd domain.UserUpdate) (*domain.User, error)
}

// OTPRepository is the minimal interface the router requires from an OTP store.
// Both the Postgres and DynamoDB stores satisfy it.
type OTPRepository interface {
	Issue(ctx context.Context, email string) (*domain.OTP, error)
	Verify(ctx context.Context, email, code string) (*domain.OTP, error)
	Consume(ctx context.Context, o *domain.OTP) error
	PurgeExpired(ctx context.Context) (int64, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// TokenProvider issues and verifies bearer tokens.
type TokenProvider interface {
	Sign(userID int64) (string, error)
	Verify(token string) (int64, error)
}

// Mailer delivers OTP emails.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// SMSSender delivers the optional OTP text message.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// Pinger probes database reachability for the readiness endpoint.
type Pinger interface {
	PingContext(ctx context.Context) error
}
