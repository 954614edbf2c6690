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

type shareRepo struct {
	db *sqlx.DB
}

// NewShareRepo creates a new PostgreSQL-backed ShareRepository.
func NewShareRepo(db *sqlx.DB) port.ShareRepository {
	return &shareRepo{db: db}
}

func (r *shareRepo) Create(ctx context.Context, share *domain.Share) error {
	share.ID = uuid.New()
	now := time.Now().UTC()
	share.CreatedAt = now
	share.UpdatedAt = now

	query := `INSERT INTO shares
		(id, owner_id, recipient_email, recipient_name, scopes, token_hash, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		share.ID, share.OwnerID, share.RecipientEmail, share.RecipientName, share.Scopes,
		share.TokenHash, share.ExpiresAt, share.CreatedAt, share.UpdatedAt)
	if err != nil {
		return fmt.Errorf("shareRepo.Create: %w", err)
	}
	return nil
}

func (r *shareRepo) GetByID(ctx context.Context, shareID uuid.UUID) (*domain.Share, error) {
	return r.getOne(ctx, "shareRepo.GetByID", "SELECT * FROM shares WHERE id = $1", shareID)
}

func (r *shareRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Share, error) {
	return r.getOne(ctx, "shareRepo.GetByTokenHash", "SELECT * FROM shares WHERE token_hash = $1", tokenHash)
}

func (r *shareRepo) getOne(ctx context.Context, op, query string, arg interface{}) (*domain.Share, error) {
	var share domain.Share
	if err := r.db.GetContext(ctx, &share, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrShareNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &share, nil
}

func (r *shareRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Share, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM shares WHERE owner_id = $1", ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("shareRepo.ListByOwner count: %w", err)
	}

	var shares []domain.Share
	err = r.db.SelectContext(ctx, &shares,
		"SELECT * FROM shares WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("shareRepo.ListByOwner: %w", err)
	}
	return shares, total, nil
}

// Revoke is idempotent; revoking twice keeps the first timestamp.
func (r *shareRepo) Revoke(ctx context.Context, ownerID, shareID uuid.UUID, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE shares SET revoked_at = COALESCE(revoked_at, $1), otp_hash = '', otp_expires_at = NULL, updated_at = $1
		 WHERE id = $2 AND owner_id = $3`,
		at, shareID, ownerID)
	if err != nil {
		return fmt.Errorf("shareRepo.Revoke: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("shareRepo.Revoke: %w", err)
	}
	if rows == 0 {
		return domain.ErrShareNotFound
	}
	return nil
}

func (r *shareRepo) SetOTP(ctx context.Context, shareID uuid.UUID, otpHash string, expiresAt, sentAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE shares SET otp_hash = $1, otp_expires_at = $2, otp_sent_at = $3, otp_attempts = 0, updated_at = $3
		 WHERE id = $4`,
		otpHash, expiresAt, sentAt, shareID)
	if err != nil {
		return fmt.Errorf("shareRepo.SetOTP: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("shareRepo.SetOTP: %w", err)
	}
	if rows == 0 {
		return domain.ErrShareNotFound
	}
	return nil
}

// ReserveOTPAttempt increments in a single conditional statement so
// concurrent verifications cannot exceed maxAttempts between them.
func (r *shareRepo) ReserveOTPAttempt(ctx context.Context, shareID uuid.UUID, maxAttempts int) (int, error) {
	var attempts int
	err := r.db.GetContext(ctx, &attempts,
		`UPDATE shares SET otp_attempts = otp_attempts + 1, updated_at = NOW()
		 WHERE id = $1 AND otp_hash <> '' AND otp_attempts < $2 RETURNING otp_attempts`,
		shareID, maxAttempts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrOTPLocked
		}
		return 0, fmt.Errorf("shareRepo.ReserveOTPAttempt: %w", err)
	}
	return attempts, nil
}

// ConsumeOTP only matches while otpHash is still pending, so a code grants
// access at most once.
func (r *shareRepo) ConsumeOTP(ctx context.Context, shareID uuid.UUID, otpHash string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE shares SET otp_hash = '', otp_expires_at = NULL, otp_attempts = 0,
			access_count = access_count + 1, last_accessed_at = $1, updated_at = $1
		 WHERE id = $2 AND otp_hash = $3 AND otp_hash <> ''`,
		at, shareID, otpHash)
	if err != nil {
		return fmt.Errorf("shareRepo.ConsumeOTP: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("shareRepo.ConsumeOTP: %w", err)
	}
	if rows == 0 {
		return domain.ErrOTPInvalid
	}
	return nil
}
