package handler

import (
	"context"

	"github.com/go-api-profile/internal/application/auth"
	"github.com/go-api-profile/internal/domain"
	"github.com/stretchr/testify/mock"
)

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.AuthResult, error) {
	args := m.Called(ctx, req)
	if res, _ := args.Get(0).(*domain.AuthResult); res != nil {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error) {
	args := m.Called(ctx, req)
	if res, _ := args.Get(0).(*domain.AuthResult); res != nil {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) SendOTP(ctx context.Context, req domain.SendOTPRequest) (*auth.OTPDispatch, error) {
	args := m.Called(ctx, req)
	if d, _ := args.Get(0).(*auth.OTPDispatch); d != nil {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*domain.AuthResult, error) {
	args := m.Called(ctx, req)
	if res, _ := args.Get(0).(*domain.AuthResult); res != nil {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUserSvc struct{ mock.Mock }

func (m *mockUserSvc) Get(ctx context.Context, userID int64) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserSvc) UpdateProfile(ctx context.Context, userID int64, req domain.UpdateProfileRequest) (*domain.User, error) {
	args := m.Called(ctx, userID, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
