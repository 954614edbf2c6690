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

type cardScanRepo struct {
	db *sqlx.DB
}

// NewCardScanRepo creates a new PostgreSQL-backed CardScanRepository.
func NewCardScanRepo(db *sqlx.DB) port.CardScanRepository {
	return &cardScanRepo{db: db}
}

func (r *cardScanRepo) Create(ctx context.Context, scan *domain.CardScan) error {
	if scan.ID == uuid.Nil {
		scan.ID = uuid.New()
	}
	now := time.Now().UTC()
	scan.CreatedAt = now
	scan.UpdatedAt = now
	if scan.ReviewStatus == "" {
		scan.ReviewStatus = domain.ReviewStatusPending
	}

	query := `INSERT INTO card_scans
		(id, user_id, source, front_file_id, back_file_id, ocr_text, parsed_data, field_provenance,
		 parser_model, status, review_status, error, attempts, retry_after, parsed_at,
		 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.db.ExecContext(ctx, query,
		scan.ID, scan.UserID, scan.Source, scan.FrontFileID, scan.BackFileID, scan.OCRText,
		scan.ParsedData, scan.FieldProvenance, scan.ParserModel, scan.Status, scan.ReviewStatus,
		scan.Error, scan.Attempts, scan.RetryAfter, scan.ParsedAt, scan.CreatedAt, scan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("cardScanRepo.Create: %w", err)
	}
	return nil
}

func (r *cardScanRepo) GetByID(ctx context.Context, userID, scanID uuid.UUID) (*domain.CardScan, error) {
	var scan domain.CardScan
	err := r.db.GetContext(ctx, &scan,
		"SELECT * FROM card_scans WHERE id = $1 AND user_id = $2", scanID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrScanNotFound
		}
		return nil, fmt.Errorf("cardScanRepo.GetByID: %w", err)
	}
	return &scan, nil
}

func (r *cardScanRepo) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.CardScan, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM card_scans WHERE user_id = $1", userID)
	if err != nil {
		return nil, 0, fmt.Errorf("cardScanRepo.ListByUser count: %w", err)
	}

	var scans []domain.CardScan
	err = r.db.SelectContext(ctx, &scans,
		"SELECT * FROM card_scans WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("cardScanRepo.ListByUser: %w", err)
	}
	return scans, total, nil
}

func (r *cardScanRepo) ListAllByUser(ctx context.Context, userID uuid.UUID, review domain.ReviewStatus) ([]domain.CardScan, error) {
	var scans []domain.CardScan
	err := r.db.SelectContext(ctx, &scans,
		`SELECT * FROM card_scans
		 WHERE user_id = $1 AND ($2 = '' OR review_status = $2)
		 ORDER BY created_at DESC`,
		userID, string(review))
	if err != nil {
		return nil, fmt.Errorf("cardScanRepo.ListAllByUser: %w", err)
	}
	return scans, nil
}

func (r *cardScanRepo) UpdateParseResult(ctx context.Context, scan *domain.CardScan) error {
	scan.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE card_scans SET status = $1, ocr_text = $2, parsed_data = $3, field_provenance = $4,
			parser_model = $5, error = $6, attempts = $7, retry_after = $8, parsed_at = $9, updated_at = $10
		 WHERE id = $11 AND user_id = $12`,
		scan.Status, scan.OCRText, scan.ParsedData, scan.FieldProvenance, scan.ParserModel,
		scan.Error, scan.Attempts, scan.RetryAfter, scan.ParsedAt, scan.UpdatedAt, scan.ID, scan.UserID)
	if err != nil {
		return fmt.Errorf("cardScanRepo.UpdateParseResult: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("cardScanRepo.UpdateParseResult: %w", err)
	}
	if rows == 0 {
		return domain.ErrScanNotFound
	}
	return nil
}

func (r *cardScanRepo) UpdateReview(ctx context.Context, scan *domain.CardScan) error {
	scan.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE card_scans SET review_status = $1, confirmed_data = $2, confirmed_at = $3, updated_at = $4
		 WHERE id = $5 AND user_id = $6`,
		scan.ReviewStatus, scan.ConfirmedData, scan.ConfirmedAt, scan.UpdatedAt, scan.ID, scan.UserID)
	if err != nil {
		return fmt.Errorf("cardScanRepo.UpdateReview: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("cardScanRepo.UpdateReview: %w", err)
	}
	if rows == 0 {
		return domain.ErrScanNotFound
	}
	return nil
}

// ClaimQueued moves due queued scans to processing in one statement. SKIP
// LOCKED lets several workers poll the same table without double-claiming.
func (r *cardScanRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.CardScan, error) {
	var scans []domain.CardScan
	err := r.db.SelectContext(ctx, &scans,
		`UPDATE card_scans SET status = $1, updated_at = NOW()
		 WHERE id IN (
			SELECT id FROM card_scans
			WHERE status = $2 AND (retry_after IS NULL OR retry_after <= NOW())
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`,
		domain.ScanStatusProcessing, domain.ScanStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("cardScanRepo.ClaimQueued: %w", err)
	}
	return scans, nil
}

// RequeueStale recovers scans whose worker died mid-parse. The recovery counts
// as an attempt so a scan that keeps crashing its worker still exhausts its
// retries.
func (r *cardScanRepo) RequeueStale(ctx context.Context, staleBefore time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE card_scans SET status = $1, attempts = attempts + 1, retry_after = NULL, updated_at = NOW()
		 WHERE status = $2 AND updated_at < $3`,
		domain.ScanStatusQueued, domain.ScanStatusProcessing, staleBefore)
	if err != nil {
		return 0, fmt.Errorf("cardScanRepo.RequeueStale: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cardScanRepo.RequeueStale: %w", err)
	}
	return int(rows), nil
}

func (r *cardScanRepo) ListRescanCandidates(ctx context.Context, afterID uuid.UUID, limit int) ([]domain.CardScan, error) {
	var scans []domain.CardScan
	err := r.db.SelectContext(ctx, &scans,
		`SELECT * FROM card_scans
		 WHERE id > $1 AND source = $2 AND status = $3 AND review_status = $4
		 ORDER BY id
		 LIMIT $5`,
		afterID, domain.ScanSourceText, domain.ScanStatusCompleted, domain.ReviewStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("cardScanRepo.ListRescanCandidates: %w", err)
	}
	return scans, nil
}

func (r *cardScanRepo) Delete(ctx context.Context, userID, scanID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM card_scans WHERE id = $1 AND user_id = $2", scanID, userID)
	if err != nil {
		return fmt.Errorf("cardScanRepo.Delete: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("cardScanRepo.Delete: %w", err)
	}
	if rows == 0 {
		return domain.ErrScanNotFound
	}
	return nil
}
