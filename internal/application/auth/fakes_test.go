package auth

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-api-profile/internal/domain"
	"github.com/go-api-profile/internal/pkg/otpcode"
	"github.com/stretchr/testify/mock"
)

// memUsers is an in-memory credential store with the same contract as postgres.UserRepo.
type memUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.User
}

func newMemUsers() *memUsers { return &memUsers{byID: map[int64]*domain.User{}} }

func (m *memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := strings.ToLower(u.Email)
	for _, existing := range m.byID {
		if existing.Email == email {
			return nil, domain.ErrDuplicateEmail
		}
	}
	m.nextID++
	now := time.Now().UTC()
	stored := *u
	stored.ID = m.nextID
	stored.Email = email
	stored.CreatedAt, stored.UpdatedAt = now, now
	m.byID[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(email)
	for _, u := range m.byID {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// memOTPs mirrors postgres.OTPRepo semantics over a slice.
type memOTPs struct {
	mu     sync.Mutex
	nextID int64
	rows   []domain.OTP
	ttl    time.Duration
	now    func() time.Time
	purged int
}

func newMemOTPs(ttl time.Duration, now func() time.Time) *memOTPs {
	return &memOTPs{ttl: ttl, now: now}
}

func (m *memOTPs) Issue(_ context.Context, email string) (*domain.OTP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(email)
	kept := m.rows[:0]
	for _, r := range m.rows {
		if r.Email != email {
			kept = append(kept, r)
		}
	}
	m.rows = kept
	code, err := otpcode.New()
	if err != nil {
		return nil, err
	}
	m.nextID++
	now := m.now()
	o := domain.OTP{ID: strconv.FormatInt(m.nextID, 10), Email: email, Code: code, ExpiresAt: now.Add(m.ttl), CreatedAt: now}
	m.rows = append(m.rows, o)
	return &o, nil
}

func (m *memOTPs) Verify(_ context.Context, email, code string) (*domain.OTP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(email)
	for i := len(m.rows) - 1; i >= 0; i-- {
		r := m.rows[i]
		if r.Email == email && r.Code == code && !r.Expired(m.now()) {
			return &r, nil
		}
	}
	return nil, domain.ErrInvalidOTP
}

func (m *memOTPs) Consume(_ context.Context, o *domain.OTP) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows {
		if r.ID == o.ID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memOTPs) PurgeExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	kept := m.rows[:0]
	for _, r := range m.rows {
		if r.Expired(m.now()) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	m.purged++
	return n, nil
}

func (m *memOTPs) count(email string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rows {
		if r.Email == email {
			n++
		}
	}
	return n
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

// lastCode pulls the code out of the most recent OTP email body.
func (m *mockMailer) lastCode() string {
	calls := m.Calls
	if len(calls) == 0 {
		return ""
	}
	body := calls[len(calls)-1].Arguments.String(2)
	const marker = "Your OTP is: "
	i := strings.Index(body, marker)
	if i < 0 {
		return ""
	}
	return body[i+len(marker) : i+len(marker)+otpcode.Length]
}

type mockSMS struct{ mock.Mock }

func (m *mockSMS) SendSMS(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

type stubSigner struct{ err error }

func (s stubSigner) Sign(userID int64) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token-" + strconv.FormatInt(userID, 10), nil
}
