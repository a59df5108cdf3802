package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-api-profile/internal/domain"
	"github.com/go-api-profile/internal/pkg/otpcode"
)

// OTPRepo is the OTP store backed by the otps table.
type OTPRepo struct {
	db  DBTX
	ttl time.Duration
	now func() time.Time
}

func NewOTPRepo(db DBTX, ttl time.Duration) *OTPRepo {
	return &OTPRepo{db: db, ttl: ttl, now: time.Now}
}

// Issue replaces any OTP held for email with a fresh code.
// Concurrent issues for one email are last-writer-wins.
func (r *OTPRepo) Issue(ctx context.Context, email string) (*domain.OTP, error) {
	email = normalizeEmail(email)
	if _, err := r.db.ExecContext(ctx, `DELETE FROM otps WHERE email = $1`, email); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	code, err := otpcode.New()
	if err != nil {
		return nil, err
	}
	now := r.now().UTC()
	query := `INSERT INTO otps (email, otp, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, email, code, now.Add(r.ttl), now).Scan(&id); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &domain.OTP{
		ID:        strconv.FormatInt(id, 10),
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(r.ttl),
		CreatedAt: now,
	}, nil
}

// Verify returns the newest unexpired OTP for email whose code matches exactly.
// It never deletes; callers Consume after completing the login.
func (r *OTPRepo) Verify(ctx context.Context, email, code string) (*domain.OTP, error) {
	query := `SELECT id, email, otp, expires_at, created_at FROM otps
		WHERE email = $1 AND otp = $2 AND expires_at > $3
		ORDER BY created_at DESC
		LIMIT 1`

	var id int64
	o := &domain.OTP{}
	err := r.db.QueryRowContext(ctx, query, normalizeEmail(email), code, r.now().UTC()).
		Scan(&id, &o.Email, &o.Code, &o.ExpiresAt, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvalidOTP
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	o.ID = strconv.FormatInt(id, 10)
	return o, nil
}

// Consume deletes a verified OTP so it cannot be replayed.
func (r *OTPRepo) Consume(ctx context.Context, o *domain.OTP) error {
	n, err := strconv.ParseInt(o.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("otp id %q: %w", o.ID, domain.ErrInvalidOTP)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM otps WHERE id = $1`, n); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// PurgeExpired deletes every expired OTP and returns how many were removed.
func (r *OTPRepo) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM otps WHERE expires_at <= $1`, r.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
