package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-api-profile/internal/domain"
	"github.com/go-api-profile/internal/pkg/validate"
)

const otpSubject = "Your Login OTP - Profile App"

type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.AuthResult, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error)
	SendOTP(ctx context.Context, req domain.SendOTPRequest) (*OTPDispatch, error)
	VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*domain.AuthResult, error)
}

// OTPDispatch reports the outcome of SendOTP. DevCode is set only when email delivery
// failed in development mode and the code is handed back to the caller instead.
type OTPDispatch struct {
	Sent    bool
	DevCode string
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type otpStore interface {
	Issue(ctx context.Context, email string) (*domain.OTP, error)
	Verify(ctx context.Context, email, code string) (*domain.OTP, error)
	Consume(ctx context.Context, o *domain.OTP) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

type tokenSigner interface {
	Sign(userID int64) (string, error)
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type ServiceDeps struct {
	UserRepo    userStore
	OTPRepo     otpStore
	Hasher      hasher
	JWTProvider tokenSigner
	Mailer      mailer
	// SMSSender is optional. When set, OTPs are also texted to the account's mobile number.
	SMSSender smsSender
	OTPTTL    time.Duration
	// DevMode returns the code in-band when email delivery fails.
	DevMode bool
	// ConcealUnknownEmail makes SendOTP succeed silently for unregistered addresses.
	ConcealUnknownEmail bool
	Logger              *slog.Logger
}

type service struct {
	users         userStore
	otps          otpStore
	hasher        hasher
	jwtProvider   tokenSigner
	mailer        mailer
	sms           smsSender
	otpTTL        time.Duration
	devMode       bool
	concealAbsent bool
	log           *slog.Logger
}

func NewService(deps ServiceDeps) Service {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	ttl := deps.OTPTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &service{
		users:         deps.UserRepo,
		otps:          deps.OTPRepo,
		hasher:        deps.Hasher,
		jwtProvider:   deps.JWTProvider,
		mailer:        deps.Mailer,
		sms:           deps.SMSSender,
		otpTTL:        ttl,
		devMode:       deps.DevMode,
		concealAbsent: deps.ConcealUnknownEmail,
		log:           log,
	}
}

func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.AuthResult, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.MobileNumber = strings.TrimSpace(req.MobileNumber)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Create(ctx, &domain.User{
		FirstName:    req.FirstName,
		LastName:     optional(req.LastName),
		Email:        req.Email,
		MobileNumber: optional(req.MobileNumber),
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(req.Password, u.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *service) SendOTP(ctx context.Context, req domain.SendOTPRequest) (*OTPDispatch, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, domain.ErrUserNotFound) && s.concealAbsent {
		s.log.InfoContext(ctx, "otp requested for unknown email")
		return &OTPDispatch{Sent: true}, nil
	}
	if err != nil {
		return nil, err
	}

	otp, err := s.otps.Issue(ctx, u.Email)
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendEmail(u.Email, otpSubject, s.otpBody(otp.Code)); err != nil {
		if !s.devMode {
			return nil, fmt.Errorf("send otp email: %w", err)
		}
		s.log.WarnContext(ctx, "otp email failed, returning code in-band", "email", u.Email, "err", err)
		return &OTPDispatch{Sent: true, DevCode: otp.Code}, nil
	}

	if s.sms != nil && u.MobileNumber != nil && *u.MobileNumber != "" {
		if err := s.sms.SendSMS(ctx, *u.MobileNumber, "Your Profile App login code: "+otp.Code); err != nil {
			s.log.WarnContext(ctx, "otp sms failed", "user_id", u.ID, "err", err)
		}
	}

	if n, err := s.otps.PurgeExpired(ctx); err != nil {
		s.log.WarnContext(ctx, "purge expired otps", "err", err)
	} else if n > 0 {
		s.log.DebugContext(ctx, "purged expired otps", "count", n)
	}
	return &OTPDispatch{Sent: true}, nil
}

func (s *service) VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*domain.AuthResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Code = strings.TrimSpace(req.Code)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	otp, err := s.otps.Verify(ctx, req.Email, req.Code)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.otps.Consume(ctx, otp); err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *service) issue(u *domain.User) (*domain.AuthResult, error) {
	token, err := s.jwtProvider.Sign(u.ID)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return &domain.AuthResult{User: u, Token: token}, nil
}

func (s *service) otpBody(code string) string {
	return fmt.Sprintf("Profile App - Login OTP\n\nYour OTP is: %s\n\nThis OTP will expire in %s.\n\n"+
		"If you didn't request this OTP, please ignore this email.\n", code, humanDuration(s.otpTTL))
}

func humanDuration(d time.Duration) string {
	if d%time.Minute == 0 {
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	return d.String()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
