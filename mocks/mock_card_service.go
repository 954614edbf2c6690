package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"medvault/internal/domain"
	"medvault/internal/export"
	"medvault/internal/service"
)

// MockCardService is a mock implementation of service.CardService.
type MockCardService struct {
	mock.Mock
}

func (m *MockCardService) ParseText(ocrText string) domain.ParsedInsuranceCard {
	args := m.Called(ocrText)
	return args.Get(0).(domain.ParsedInsuranceCard)
}

func (m *MockCardService) CreateTextScan(ctx context.Context, userID uuid.UUID, ocrText string) (*domain.CardScan, error) {
	args := m.Called(ctx, userID, ocrText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CardScan), args.Error(1)
}

func (m *MockCardService) UploadScan(ctx context.Context, input service.CardUploadInput) (*domain.CardScan, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CardScan), args.Error(1)
}

func (m *MockCardService) GetByID(ctx context.Context, userID, scanID uuid.UUID) (*domain.CardScan, error) {
	args := m.Called(ctx, userID, scanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CardScan), args.Error(1)
}

func (m *MockCardService) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.CardScan, int, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.CardScan), args.Int(1), args.Error(2)
}

func (m *MockCardService) Confirm(ctx context.Context, userID, scanID uuid.UUID, card domain.ParsedInsuranceCard) (*domain.CardScan, error) {
	args := m.Called(ctx, userID, scanID, card)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CardScan), args.Error(1)
}

func (m *MockCardService) Discard(ctx context.Context, userID, scanID uuid.UUID) (*domain.CardScan, error) {
	args := m.Called(ctx, userID, scanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CardScan), args.Error(1)
}

func (m *MockCardService) Reparse(ctx context.Context, userID, scanID uuid.UUID) (*domain.CardScan, error) {
	args := m.Called(ctx, userID, scanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CardScan), args.Error(1)
}

func (m *MockCardService) Delete(ctx context.Context, userID, scanID uuid.UUID) error {
	args := m.Called(ctx, userID, scanID)
	return args.Error(0)
}

func (m *MockCardService) Export(ctx context.Context, userID uuid.UUID, review domain.ReviewStatus, format export.Format, w io.Writer) error {
	args := m.Called(ctx, userID, review, format, w)
	return args.Error(0)
}

func (m *MockCardService) ProcessScan(ctx context.Context, scan *domain.CardScan, maxAttempts int) {
	m.Called(ctx, scan, maxAttempts)
}
