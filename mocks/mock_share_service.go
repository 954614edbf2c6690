package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"medvault/internal/domain"
	"medvault/internal/service"
)

// MockShareService is a mock implementation of service.ShareService.
type MockShareService struct {
	mock.Mock
}

func (m *MockShareService) Create(ctx context.Context, ownerID uuid.UUID, input service.CreateShareInput) (*service.CreateShareOutput, error) {
	args := m.Called(ctx, ownerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CreateShareOutput), args.Error(1)
}

func (m *MockShareService) List(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Share, int, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Share), args.Int(1), args.Error(2)
}

func (m *MockShareService) Revoke(ctx context.Context, ownerID, shareID uuid.UUID) error {
	args := m.Called(ctx, ownerID, shareID)
	return args.Error(0)
}

func (m *MockShareService) RequestOTP(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockShareService) VerifyOTP(ctx context.Context, token, code string) (*service.ShareAccess, error) {
	args := m.Called(ctx, token, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ShareAccess), args.Error(1)
}

func (m *MockShareService) Dashboard(ctx context.Context, shareID uuid.UUID) (*service.SharedDashboard, error) {
	args := m.Called(ctx, shareID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SharedDashboard), args.Error(1)
}
