package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"medvault/internal/domain"
)

// MockCardScanRepo is a mock implementation of port.CardScanRepository.
type MockCardScanRepo struct {
	mock.Mock
}

func (m *MockCardScanRepo) Create(ctx context.Context, scan *domain.CardScan) error {
	args := m.Called(ctx, scan)
	return args.Error(0)
}

func (m *MockCardScanRepo) GetByID(ctx context.Context, userID, scanID uuid.UUID) (*domain.CardScan, error) {
	args := m.Called(ctx, userID, scanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CardScan), args.Error(1)
}

func (m *MockCardScanRepo) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.CardScan, int, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.CardScan), args.Int(1), args.Error(2)
}

func (m *MockCardScanRepo) ListAllByUser(ctx context.Context, userID uuid.UUID, review domain.ReviewStatus) ([]domain.CardScan, error) {
	args := m.Called(ctx, userID, review)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CardScan), args.Error(1)
}

func (m *MockCardScanRepo) UpdateParseResult(ctx context.Context, scan *domain.CardScan) error {
	args := m.Called(ctx, scan)
	return args.Error(0)
}

func (m *MockCardScanRepo) UpdateReview(ctx context.Context, scan *domain.CardScan) error {
	args := m.Called(ctx, scan)
	return args.Error(0)
}

func (m *MockCardScanRepo) RequeueStale(ctx context.Context, staleBefore time.Time) (int, error) {
	args := m.Called(ctx, staleBefore)
	return args.Int(0), args.Error(1)
}

func (m *MockCardScanRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.CardScan, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CardScan), args.Error(1)
}

func (m *MockCardScanRepo) ListRescanCandidates(ctx context.Context, afterID uuid.UUID, limit int) ([]domain.CardScan, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CardScan), args.Error(1)
}

func (m *MockCardScanRepo) Delete(ctx context.Context, userID, scanID uuid.UUID) error {
	args := m.Called(ctx, userID, scanID)
	return args.Error(0)
}
