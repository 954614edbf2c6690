package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"medvault/internal/domain"
)

// MockShareRepo is a mock implementation of port.ShareRepository.
type MockShareRepo struct {
	mock.Mock
}

func (m *MockShareRepo) Create(ctx context.Context, share *domain.Share) error {
	args := m.Called(ctx, share)
	return args.Error(0)
}

func (m *MockShareRepo) GetByID(ctx context.Context, shareID uuid.UUID) (*domain.Share, error) {
	args := m.Called(ctx, shareID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Share), args.Error(1)
}

func (m *MockShareRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Share, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Share), args.Error(1)
}

func (m *MockShareRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Share, int, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Share), args.Int(1), args.Error(2)
}

func (m *MockShareRepo) Revoke(ctx context.Context, ownerID, shareID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, ownerID, shareID, at)
	return args.Error(0)
}

func (m *MockShareRepo) SetOTP(ctx context.Context, shareID uuid.UUID, otpHash string, expiresAt, sentAt time.Time) error {
	args := m.Called(ctx, shareID, otpHash, expiresAt, sentAt)
	return args.Error(0)
}

func (m *MockShareRepo) ReserveOTPAttempt(ctx context.Context, shareID uuid.UUID, maxAttempts int) (int, error) {
	args := m.Called(ctx, shareID, maxAttempts)
	return args.Int(0), args.Error(1)
}

func (m *MockShareRepo) ConsumeOTP(ctx context.Context, shareID uuid.UUID, otpHash string, at time.Time) error {
	args := m.Called(ctx, shareID, otpHash, at)
	return args.Error(0)
}
