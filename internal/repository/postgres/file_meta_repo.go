package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"medvault/internal/domain"
	"medvault/internal/port"
)

type fileMetaRepo struct {
	db *sqlx.DB
}

// NewFileMetaRepo creates a new PostgreSQL-backed FileMetaRepository.
func NewFileMetaRepo(db *sqlx.DB) port.FileMetaRepository {
	return &fileMetaRepo{db: db}
}

func (r *fileMetaRepo) Create(ctx context.Context, meta *domain.FileMeta) error {
	now := time.Now().UTC()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	query := `INSERT INTO file_metadata
		(id, user_id, category, description, file_name, original_name, file_type, file_size,
		 s3_bucket, s3_key, content_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.ExecContext(ctx, query,
		meta.ID, meta.UserID, meta.Category, meta.Description, meta.FileName, meta.OriginalName,
		meta.FileType, meta.FileSize, meta.S3Bucket, meta.S3Key, meta.ContentType,
		meta.Status, meta.CreatedAt, meta.UpdatedAt)
	if err != nil {
		return fmt.Errorf("fileMetaRepo.Create: %w", err)
	}
	return nil
}

func (r *fileMetaRepo) GetByID(ctx context.Context, userID, fileID uuid.UUID) (*domain.FileMeta, error) {
	var meta domain.FileMeta
	err := r.db.GetContext(ctx, &meta,
		"SELECT * FROM file_metadata WHERE id = $1 AND user_id = $2 AND status != $3",
		fileID, userID, domain.FileStatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("fileMetaRepo.GetByID: %w", err)
	}
	return &meta, nil
}

func (r *fileMetaRepo) ListByUser(ctx context.Context, userID uuid.UUID, category domain.FileCategory, offset, limit int) ([]domain.FileMeta, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM file_metadata
		 WHERE user_id = $1 AND status != $2 AND ($3 = '' OR category = $3)`,
		userID, domain.FileStatusDeleted, string(category))
	if err != nil {
		return nil, 0, fmt.Errorf("fileMetaRepo.ListByUser count: %w", err)
	}

	var files []domain.FileMeta
	err = r.db.SelectContext(ctx, &files,
		`SELECT * FROM file_metadata
		 WHERE user_id = $1 AND status != $2 AND ($3 = '' OR category = $3)
		 ORDER BY created_at DESC LIMIT $4 OFFSET $5`,
		userID, domain.FileStatusDeleted, string(category), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("fileMetaRepo.ListByUser: %w", err)
	}
	return files, total, nil
}

func (r *fileMetaRepo) UpdateStatus(ctx context.Context, userID, fileID uuid.UUID, status domain.FileStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE file_metadata SET status = $1, updated_at = $2 WHERE id = $3 AND user_id = $4",
		status, time.Now().UTC(), fileID, userID)
	if err != nil {
		return fmt.Errorf("fileMetaRepo.UpdateStatus: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("fileMetaRepo.UpdateStatus: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *fileMetaRepo) Delete(ctx context.Context, userID, fileID uuid.UUID) error {
	return r.UpdateStatus(ctx, userID, fileID, domain.FileStatusDeleted)
}
