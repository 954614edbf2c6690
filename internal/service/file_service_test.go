package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"medvault/internal/config"
	"medvault/internal/domain"
	"medvault/internal/port"
	"medvault/internal/service"
	"medvault/mocks"
)

func testS3Config() *config.S3Config {
	return &config.S3Config{
		Region:        "us-east-1",
		Bucket:        "test-bucket",
		MaxFileSizeMB: 1,
		PresignExpiry: 900,
	}
}

// pdfContent returns minimal bytes that sniff as a PDF.
func pdfContent() []byte {
	return []byte("%PDF-1.4 test content that is at least a few bytes long for detection purposes")
}

// pngContent returns minimal bytes that sniff as a PNG.
func pngContent() []byte {
	header := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	return append(header, bytes.Repeat([]byte{0x00}, 100)...)
}

func TestFileService_Upload_Success(t *testing.T) {
	fileRepo := new(mocks.MockFileMetaRepo)
	storage := new(mocks.MockObjectStorage)
	svc := service.NewFileService(fileRepo, storage, testS3Config())
	userID := uuid.New()
	content := pdfContent()

	fileRepo.On("Create", mock.Anything, mock.MatchedBy(func(m *domain.FileMeta) bool {
		return m.Status == domain.FileStatusPending && m.Category == domain.FileCategoryRecord
	})).Return(nil)
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "test-bucket" && in.ContentType == "application/pdf" &&
			strings.HasPrefix(in.Key, "users/"+userID.String()+"/files/") &&
			strings.HasSuffix(in.Key, "/lab results.pdf")
	})).Return(&port.UploadOutput{Location: "s3://test-bucket/x", ETag: "abc"}, nil)
	fileRepo.On("UpdateStatus", mock.Anything, userID, mock.AnythingOfType("uuid.UUID"), domain.FileStatusUploaded).Return(nil)

	meta, err := svc.Upload(context.Background(), service.FileUploadInput{
		UserID:      userID,
		Description: "  annual labs ",
		File:        bytes.NewReader(content),
		FileName:    "lab results.pdf",
		Size:        int64(len(content)),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.FileStatusUploaded, meta.Status)
	assert.Equal(t, domain.FileTypePDF, meta.FileType)
	assert.Equal(t, "annual labs", meta.Description)
	assert.Equal(t, "lab results.pdf", meta.OriginalName)
	fileRepo.AssertExpectations(t)
	storage.AssertExpectations(t)
}

func TestFileService_Upload_Validation(t *testing.T) {
	tests := []struct {
		name     string
		category domain.FileCategory
		fileName string
		content  []byte
		size     int64
		wantErr  error
	}{
		{"bad category", "taxes", "a.pdf", pdfContent(), 10, domain.ErrInvalidFileCategory},
		{"bad extension", "", "a.exe", pdfContent(), 10, domain.ErrUnsupportedFileType},
		{"too large", "", "a.pdf", pdfContent(), 2 * 1024 * 1024, domain.ErrFileTooLarge},
		{"content does not match", "", "a.pdf", []byte("plain text pretending to be a pdf"), 10, domain.ErrUnsupportedFileType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileRepo := new(mocks.MockFileMetaRepo)
			storage := new(mocks.MockObjectStorage)
			svc := service.NewFileService(fileRepo, storage, testS3Config())

			meta, err := svc.Upload(context.Background(), service.FileUploadInput{
				UserID:   uuid.New(),
				Category: tt.category,
				File:     bytes.NewReader(tt.content),
				FileName: tt.fileName,
				Size:     tt.size,
			})

			assert.Nil(t, meta)
			assert.ErrorIs(t, err, tt.wantErr)
			fileRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestFileService_Upload_StorageFailure(t *testing.T) {
	fileRepo := new(mocks.MockFileMetaRepo)
	storage := new(mocks.MockObjectStorage)
	svc := service.NewFileService(fileRepo, storage, testS3Config())
	userID := uuid.New()
	content := pngContent()

	fileRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.FileMeta")).Return(nil)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).Return(nil, errors.New("s3 down"))
	fileRepo.On("UpdateStatus", mock.Anything, userID, mock.AnythingOfType("uuid.UUID"), domain.FileStatusFailed).Return(nil)

	meta, err := svc.Upload(context.Background(), service.FileUploadInput{
		UserID:   userID,
		Category: domain.FileCategoryInsuranceCard,
		File:     bytes.NewReader(content),
		FileName: "front.png",
		Size:     int64(len(content)),
	})

	assert.Nil(t, meta)
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	fileRepo.AssertExpectations(t)
}

func TestFileService_List_InvalidCategory(t *testing.T) {
	svc := service.NewFileService(new(mocks.MockFileMetaRepo), new(mocks.MockObjectStorage), testS3Config())

	_, _, err := svc.List(context.Background(), uuid.New(), "taxes", 0, 20)
	assert.ErrorIs(t, err, domain.ErrInvalidFileCategory)
}

func TestFileService_GetWithURL(t *testing.T) {
	fileRepo := new(mocks.MockFileMetaRepo)
	storage := new(mocks.MockObjectStorage)
	svc := service.NewFileService(fileRepo, storage, testS3Config())
	userID, fileID := uuid.New(), uuid.New()
	meta := &domain.FileMeta{ID: fileID, UserID: userID, S3Bucket: "test-bucket", S3Key: "users/k"}

	fileRepo.On("GetByID", mock.Anything, userID, fileID).Return(meta, nil)
	storage.On("GetPresignedURL", mock.Anything, "test-bucket", "users/k", int64(900)).Return("https://signed", nil)

	got, err := svc.GetWithURL(context.Background(), userID, fileID)

	require.NoError(t, err)
	assert.Equal(t, "https://signed", got.DownloadURL)
	assert.Equal(t, fileID, got.ID)
}

func TestFileService_Delete(t *testing.T) {
	fileRepo := new(mocks.MockFileMetaRepo)
	storage := new(mocks.MockObjectStorage)
	svc := service.NewFileService(fileRepo, storage, testS3Config())
	userID, fileID := uuid.New(), uuid.New()
	meta := &domain.FileMeta{ID: fileID, UserID: userID, S3Bucket: "test-bucket", S3Key: "users/k"}

	fileRepo.On("GetByID", mock.Anything, userID, fileID).Return(meta, nil)
	storage.On("Delete", mock.Anything, "test-bucket", "users/k").Return(nil)
	fileRepo.On("Delete", mock.Anything, userID, fileID).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), userID, fileID))
	fileRepo.AssertExpectations(t)
	storage.AssertExpectations(t)
}

func TestFileService_Delete_NotFound(t *testing.T) {
	fileRepo := new(mocks.MockFileMetaRepo)
	storage := new(mocks.MockObjectStorage)
	svc := service.NewFileService(fileRepo, storage, testS3Config())
	userID, fileID := uuid.New(), uuid.New()

	fileRepo.On("GetByID", mock.Anything, userID, fileID).Return(nil, domain.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), userID, fileID), domain.ErrNotFound)
	storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestStorageKey(t *testing.T) {
	userID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	fileID := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	assert.Equal(t,
		"users/11111111-1111-1111-1111-111111111111/files/22222222-2222-2222-2222-222222222222/card.png",
		service.StorageKey(userID, fileID, "../../etc/card.png"))
}
