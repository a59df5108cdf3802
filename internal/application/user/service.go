package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-api-profile/internal/domain"
	"github.com/go-api-profile/internal/pkg/validate"
)

type Service interface {
	Get(ctx context.Context, userID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, req domain.UpdateProfileRequest) (*domain.User, error)
}

type userStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id int64, upd domain.UserUpdate) (*domain.User, error)
}

type hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

type service struct {
	repo   userStore
	hasher hasher
}

type ServiceDeps struct {
	UserRepo userStore
	Hasher   hasher
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.UserRepo, hasher: deps.Hasher}
}

func (s *service) Get(ctx context.Context, userID int64) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID int64, req domain.UpdateProfileRequest) (*domain.User, error) {
	trim(req.FirstName, req.LastName, req.Email, req.MobileNumber)
	if req.FirstName != nil && *req.FirstName == "" {
		return nil, fmt.Errorf("firstName cannot be empty: %w", domain.ErrValidation)
	}
	if req.Email != nil && *req.Email == "" {
		return nil, fmt.Errorf("email cannot be empty: %w", domain.ErrValidation)
	}
	if req.Password != nil && *req.Password == "" {
		req.Password = nil
	}
	// Empty lastName/mobileNumber clears the column; only non-empty values are validated.
	check := req
	if check.LastName != nil && *check.LastName == "" {
		check.LastName = nil
	}
	if check.MobileNumber != nil && *check.MobileNumber == "" {
		check.MobileNumber = nil
	}
	if err := validate.Struct(check); err != nil {
		return nil, err
	}

	upd := domain.UserUpdate{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		MobileNumber: req.MobileNumber,
	}
	if req.Email != nil {
		email := strings.ToLower(*req.Email)
		upd.Email = &email
	}

	if req.Password != nil {
		if req.OldPassword == nil || *req.OldPassword == "" {
			return nil, domain.ErrOldPasswordRequired
		}
		current, err := s.repo.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		// GetByID omits the digest; the email lookup returns the full record.
		creds, err := s.repo.GetByEmail(ctx, current.Email)
		if err != nil {
			return nil, err
		}
		if !s.hasher.Verify(*req.OldPassword, creds.PasswordHash) {
			return nil, domain.ErrOldPasswordIncorrect
		}
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		upd.PasswordHash = &hash
	}

	return s.repo.Update(ctx, userID, upd)
}

func trim(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}
