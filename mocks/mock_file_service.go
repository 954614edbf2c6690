package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"medvault/internal/domain"
	"medvault/internal/service"
)

// MockFileService is a mock implementation of service.FileService.
type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Upload(ctx context.Context, input service.FileUploadInput) (*domain.FileMeta, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FileMeta), args.Error(1)
}

func (m *MockFileService) GetByID(ctx context.Context, userID, fileID uuid.UUID) (*domain.FileMeta, error) {
	args := m.Called(ctx, userID, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FileMeta), args.Error(1)
}

func (m *MockFileService) GetWithURL(ctx context.Context, userID, fileID uuid.UUID) (*service.FileWithURL, error) {
	args := m.Called(ctx, userID, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FileWithURL), args.Error(1)
}

func (m *MockFileService) List(ctx context.Context, userID uuid.UUID, category domain.FileCategory, offset, limit int) ([]domain.FileMeta, int, error) {
	args := m.Called(ctx, userID, category, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.FileMeta), args.Int(1), args.Error(2)
}

func (m *MockFileService) Download(ctx context.Context, userID, fileID uuid.UUID) ([]byte, *domain.FileMeta, error) {
	args := m.Called(ctx, userID, fileID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]byte), args.Get(1).(*domain.FileMeta), args.Error(2)
}

func (m *MockFileService) PresignedURL(ctx context.Context, meta *domain.FileMeta) (string, error) {
	args := m.Called(ctx, meta)
	return args.String(0), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, userID, fileID uuid.UUID) error {
	args := m.Called(ctx, userID, fileID)
	return args.Error(0)
}
