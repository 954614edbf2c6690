package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"medvault/internal/config"
	"medvault/internal/domain"
	"medvault/internal/logging"
	"medvault/internal/port"
)

// FileUploadInput is the DTO for file upload requests.
type FileUploadInput struct {
	UserID      uuid.UUID
	Category    domain.FileCategory
	Description string
	File        io.ReadSeeker
	FileName    string
	Size        int64
}

// FileWithURL is file metadata plus a short-lived download link.
type FileWithURL struct {
	domain.FileMeta
	DownloadURL string `json:"download_url"`
}

// FileService defines the record vault contract.
type FileService interface {
	Upload(ctx context.Context, input FileUploadInput) (*domain.FileMeta, error)
	GetByID(ctx context.Context, userID, fileID uuid.UUID) (*domain.FileMeta, error)
	// GetWithURL returns the file metadata with a presigned download URL.
	GetWithURL(ctx context.Context, userID, fileID uuid.UUID) (*FileWithURL, error)
	List(ctx context.Context, userID uuid.UUID, category domain.FileCategory, offset, limit int) ([]domain.FileMeta, int, error)
	// Download reads a stored object, e.g. a card image for OCR.
	Download(ctx context.Context, userID, fileID uuid.UUID) ([]byte, *domain.FileMeta, error)
	PresignedURL(ctx context.Context, meta *domain.FileMeta) (string, error)
	Delete(ctx context.Context, userID, fileID uuid.UUID) error
}

type fileService struct {
	fileRepo port.FileMetaRepository
	storage  port.ObjectStorage
	cfg      *config.S3Config
}

// NewFileService creates a new FileService implementation.
func NewFileService(
	fileRepo port.FileMetaRepository,
	storage port.ObjectStorage,
	cfg *config.S3Config,
) FileService {
	return &fileService{
		fileRepo: fileRepo,
		storage:  storage,
		cfg:      cfg,
	}
}

// StorageKey is the object key of a vault file.
func StorageKey(userID, fileID uuid.UUID, originalName string) string {
	return fmt.Sprintf("users/%s/files/%s/%s", userID, fileID, filepath.Base(originalName))
}

func (s *fileService) Upload(ctx context.Context, input FileUploadInput) (*domain.FileMeta, error) {
	category := input.Category
	if category == "" {
		category = domain.FileCategoryRecord
	}
	if !domain.ValidFileCategories[category] {
		return nil, domain.ErrInvalidFileCategory
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.FileName), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Sniff the first 512 bytes; the extension alone is not trusted.
	buf := make([]byte, 512)
	n, err := input.File.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	if _, validContent := domain.AllowedContentTypes[http.DetectContentType(buf[:n])]; !validContent {
		return nil, domain.ErrUnsupportedFileType
	}
	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking file: %w", err)
	}

	fileID := uuid.New()
	contentType := domain.AllowedFileTypes[fileType]
	meta := &domain.FileMeta{
		ID:           fileID,
		UserID:       input.UserID,
		Category:     category,
		Description:  strings.TrimSpace(input.Description),
		FileName:     fileID.String() + "." + ext,
		OriginalName: input.FileName,
		FileType:     fileType,
		FileSize:     input.Size,
		S3Bucket:     s.cfg.Bucket,
		S3Key:        StorageKey(input.UserID, fileID, input.FileName),
		ContentType:  contentType,
		Status:       domain.FileStatusPending,
	}

	log := logging.API.WithField("file_id", fileID).WithField("user_id", input.UserID)
	log.WithField("category", category).WithField("size", input.Size).Info("fileService.Upload: uploading")

	if err := s.fileRepo.Create(ctx, meta); err != nil {
		return nil, fmt.Errorf("creating file metadata: %w", err)
	}

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      meta.S3Bucket,
		Key:         meta.S3Key,
		Body:        input.File,
		ContentType: contentType,
		Size:        input.Size,
	})
	if err != nil {
		log.WithError(err).Error("fileService.Upload: storage upload failed")
		_ = s.fileRepo.UpdateStatus(ctx, meta.UserID, meta.ID, domain.FileStatusFailed)
		return nil, domain.ErrUploadFailed
	}

	if err := s.fileRepo.UpdateStatus(ctx, meta.UserID, meta.ID, domain.FileStatusUploaded); err != nil {
		return nil, fmt.Errorf("updating file status: %w", err)
	}
	meta.Status = domain.FileStatusUploaded
	return meta, nil
}

func (s *fileService) GetByID(ctx context.Context, userID, fileID uuid.UUID) (*domain.FileMeta, error) {
	return s.fileRepo.GetByID(ctx, userID, fileID)
}

func (s *fileService) GetWithURL(ctx context.Context, userID, fileID uuid.UUID) (*FileWithURL, error) {
	meta, err := s.fileRepo.GetByID(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}
	url, err := s.PresignedURL(ctx, meta)
	if err != nil {
		return nil, err
	}
	return &FileWithURL{FileMeta: *meta, DownloadURL: url}, nil
}

func (s *fileService) List(ctx context.Context, userID uuid.UUID, category domain.FileCategory, offset, limit int) ([]domain.FileMeta, int, error) {
	if category != "" && !domain.ValidFileCategories[category] {
		return nil, 0, domain.ErrInvalidFileCategory
	}
	return s.fileRepo.ListByUser(ctx, userID, category, offset, limit)
}

func (s *fileService) Download(ctx context.Context, userID, fileID uuid.UUID) ([]byte, *domain.FileMeta, error) {
	meta, err := s.fileRepo.GetByID(ctx, userID, fileID)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.storage.Download(ctx, meta.S3Bucket, meta.S3Key)
	if err != nil {
		return nil, nil, fmt.Errorf("downloading file %s: %w", fileID, err)
	}
	return data, meta, nil
}

func (s *fileService) PresignedURL(ctx context.Context, meta *domain.FileMeta) (string, error) {
	url, err := s.storage.GetPresignedURL(ctx, meta.S3Bucket, meta.S3Key, s.cfg.PresignExpiry)
	if err != nil {
		return "", fmt.Errorf("presigning file %s: %w", meta.ID, err)
	}
	return url, nil
}

func (s *fileService) Delete(ctx context.Context, userID, fileID uuid.UUID) error {
	meta, err := s.fileRepo.GetByID(ctx, userID, fileID)
	if err != nil {
		return err
	}

	logging.API.WithField("file_id", fileID).WithField("user_id", userID).Info("fileService.Delete: deleting")
	if err := s.storage.Delete(ctx, meta.S3Bucket, meta.S3Key); err != nil {
		return fmt.Errorf("deleting from storage: %w", err)
	}
	return s.fileRepo.Delete(ctx, userID, fileID)
}
