package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"medvault/internal/domain"
)

// UserRepository defines the contract for account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// FileMetaRepository defines the contract for file metadata persistence.
// Query methods are scoped to the owning user.
type FileMetaRepository interface {
	Create(ctx context.Context, meta *domain.FileMeta) error
	GetByID(ctx context.Context, userID, fileID uuid.UUID) (*domain.FileMeta, error)
	// ListByUser lists a user's files; an empty category lists all of them.
	ListByUser(ctx context.Context, userID uuid.UUID, category domain.FileCategory, offset, limit int) ([]domain.FileMeta, int, error)
	UpdateStatus(ctx context.Context, userID, fileID uuid.UUID, status domain.FileStatus) error
	Delete(ctx context.Context, userID, fileID uuid.UUID) error
}

// CardScanRepository defines the contract for insurance card scan persistence.
type CardScanRepository interface {
	Create(ctx context.Context, scan *domain.CardScan) error
	GetByID(ctx context.Context, userID, scanID uuid.UUID) (*domain.CardScan, error)
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.CardScan, int, error)
	// ListAllByUser returns every scan of a user, newest first, optionally
	// restricted to one review status.
	ListAllByUser(ctx context.Context, userID uuid.UUID, review domain.ReviewStatus) ([]domain.CardScan, error)
	// UpdateParseResult stores the outcome of a parse attempt: status, text,
	// parsed card, provenance, error, attempts and retry time.
	UpdateParseResult(ctx context.Context, scan *domain.CardScan) error
	UpdateReview(ctx context.Context, scan *domain.CardScan) error
	// ClaimQueued atomically moves up to limit due queued scans to processing.
	ClaimQueued(ctx context.Context, limit int) ([]domain.CardScan, error)
	// RequeueStale returns processing scans not touched since staleBefore to
	// the queue and reports how many were moved.
	RequeueStale(ctx context.Context, staleBefore time.Time) (int, error)
	// ListRescanCandidates pages through completed, unconfirmed text scans by id.
	ListRescanCandidates(ctx context.Context, afterID uuid.UUID, limit int) ([]domain.CardScan, error)
	Delete(ctx context.Context, userID, scanID uuid.UUID) error
}

// ShareRepository defines the contract for record share persistence.
type ShareRepository interface {
	Create(ctx context.Context, share *domain.Share) error
	GetByID(ctx context.Context, shareID uuid.UUID) (*domain.Share, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Share, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Share, int, error)
	Revoke(ctx context.Context, ownerID, shareID uuid.UUID, at time.Time) error
	// SetOTP stores a new code hash and resets the attempt counter.
	SetOTP(ctx context.Context, shareID uuid.UUID, otpHash string, expiresAt, sentAt time.Time) error
	// ReserveOTPAttempt counts one verification attempt against the pending
	// code and returns the new count. It fails with ErrOTPLocked once
	// maxAttempts have been used or no code is pending.
	ReserveOTPAttempt(ctx context.Context, shareID uuid.UUID, maxAttempts int) (int, error)
	// ConsumeOTP clears the pending code and records an access. It fails with
	// ErrOTPInvalid when otpHash is no longer the pending code.
	ConsumeOTP(ctx context.Context, shareID uuid.UUID, otpHash string, at time.Time) error
}
