package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"medvault/internal/config"
	"medvault/internal/domain"
	"medvault/internal/logging"
	"medvault/internal/port"
)

// shareTokenBytes is the entropy of a share link token.
const shareTokenBytes = 32

// maxSharedFiles bounds the record files listed on a shared dashboard.
const maxSharedFiles = 200

// CreateShareInput is the DTO for creating a share.
type CreateShareInput struct {
	RecipientEmail string              `json:"recipient_email" binding:"required,email"`
	RecipientName  string              `json:"recipient_name" binding:"required"`
	Scopes         []domain.ShareScope `json:"scopes" binding:"required,min=1"`
	ExpiresInHours int                 `json:"expires_in_hours"`
}

// CreateShareOutput carries the raw link token, which is never stored.
type CreateShareOutput struct {
	Share *domain.Share `json:"share"`
	Token string        `json:"token"`
}

// ShareAccess is the recipient's session after a verified access code.
type ShareAccess struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// SharedCard is a confirmed insurance card as a recipient sees it.
type SharedCard struct {
	ScanID      uuid.UUID                  `json:"scan_id"`
	Card        domain.ParsedInsuranceCard `json:"card"`
	ConfirmedAt *time.Time                 `json:"confirmed_at"`
}

// SharedFile is a record file with a short-lived download link.
type SharedFile struct {
	ID           uuid.UUID `json:"id"`
	OriginalName string    `json:"original_name"`
	Description  string    `json:"description"`
	ContentType  string    `json:"content_type"`
	FileSize     int64     `json:"file_size"`
	CreatedAt    time.Time `json:"created_at"`
	DownloadURL  string    `json:"download_url"`
}

// SharedDashboard is what a share recipient can see.
type SharedDashboard struct {
	OwnerName      string              `json:"owner_name"`
	Scopes         []domain.ShareScope `json:"scopes"`
	ExpiresAt      time.Time           `json:"expires_at"`
	InsuranceCards []SharedCard        `json:"insurance_cards,omitempty"`
	RecordFiles    []SharedFile        `json:"record_files,omitempty"`
}

// ShareService defines the OTP-gated sharing contract.
type ShareService interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateShareInput) (*CreateShareOutput, error)
	List(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Share, int, error)
	Revoke(ctx context.Context, ownerID, shareID uuid.UUID) error
	// RequestOTP emails a fresh access code to the recipient of the share.
	RequestOTP(ctx context.Context, token string) error
	VerifyOTP(ctx context.Context, token, code string) (*ShareAccess, error)
	Dashboard(ctx context.Context, shareID uuid.UUID) (*SharedDashboard, error)
}

type shareService struct {
	shareRepo port.ShareRepository
	userRepo  port.UserRepository
	scanRepo  port.CardScanRepository
	files     FileService
	email     port.EmailSender
	auth      AuthService
	cfg       config.ShareConfig
	now       func() time.Time
}

// NewShareService creates a new ShareService implementation.
func NewShareService(
	shareRepo port.ShareRepository,
	userRepo port.UserRepository,
	scanRepo port.CardScanRepository,
	files FileService,
	email port.EmailSender,
	auth AuthService,
	cfg config.ShareConfig,
) ShareService {
	return &shareService{
		shareRepo: shareRepo,
		userRepo:  userRepo,
		scanRepo:  scanRepo,
		files:     files,
		email:     email,
		auth:      auth,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// HashShareToken is the stored form of a link token.
func HashShareToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *shareService) Create(ctx context.Context, ownerID uuid.UUID, input CreateShareInput) (*CreateShareOutput, error) {
	scopes, err := normalizeScopes(input.Scopes)
	if err != nil {
		return nil, err
	}

	expiry := s.cfg.DefaultExpiry
	if input.ExpiresInHours > 0 {
		expiry = time.Duration(input.ExpiresInHours) * time.Hour
	}
	if expiry > s.cfg.MaxExpiry {
		return nil, domain.ErrShareExpiryTooLong
	}

	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("shareService.Create: loading owner: %w", err)
	}

	raw := make([]byte, shareTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("shareService.Create: generating token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	share := &domain.Share{
		OwnerID:        ownerID,
		RecipientEmail: strings.ToLower(strings.TrimSpace(input.RecipientEmail)),
		RecipientName:  strings.TrimSpace(input.RecipientName),
		Scopes:         scopes,
		TokenHash:      HashShareToken(token),
		ExpiresAt:      s.now().Add(expiry),
	}
	if err := s.shareRepo.Create(ctx, share); err != nil {
		return nil, fmt.Errorf("shareService.Create: %w", err)
	}

	log := logging.API.WithField("share_id", share.ID).WithField("owner_id", ownerID)
	if err := s.email.SendShareInvite(ctx, share.RecipientEmail, share.RecipientName, owner.FullName, token, share.ExpiresAt); err != nil {
		// The owner still receives the link in the response and can pass it on.
		log.WithError(err).Warn("shareService.Create: invite email failed")
	}
	log.WithField("scopes", scopes).WithField("expires_at", share.ExpiresAt).Info("shareService.Create: share created")

	return &CreateShareOutput{Share: share, Token: token}, nil
}

func normalizeScopes(in []domain.ShareScope) (domain.ShareScopes, error) {
	seen := make(map[domain.ShareScope]bool, len(in))
	out := make(domain.ShareScopes, 0, len(in))
	for _, sc := range in {
		if !domain.ValidShareScopes[sc] {
			return nil, domain.ErrInvalidShareScope
		}
		if !seen[sc] {
			seen[sc] = true
			out = append(out, sc)
		}
	}
	if len(out) == 0 {
		return nil, domain.ErrInvalidShareScope
	}
	return out, nil
}

func (s *shareService) List(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Share, int, error) {
	return s.shareRepo.ListByOwner(ctx, ownerID, offset, limit)
}

func (s *shareService) Revoke(ctx context.Context, ownerID, shareID uuid.UUID) error {
	if err := s.shareRepo.Revoke(ctx, ownerID, shareID, s.now()); err != nil {
		return err
	}
	logging.API.WithField("share_id", shareID).WithField("owner_id", ownerID).Info("shareService.Revoke: revoked")
	return nil
}

func (s *shareService) openShare(ctx context.Context, token string) (*domain.Share, error) {
	if token == "" {
		return nil, domain.ErrShareNotFound
	}
	share, err := s.shareRepo.GetByTokenHash(ctx, HashShareToken(token))
	if err != nil {
		return nil, err
	}
	if !share.Available(s.now()) {
		return nil, domain.ErrShareUnavailable
	}
	return share, nil
}

func (s *shareService) RequestOTP(ctx context.Context, token string) error {
	share, err := s.openShare(ctx, token)
	if err != nil {
		return err
	}

	now := s.now()
	if share.OTPSentAt != nil && now.Sub(*share.OTPSentAt) < s.cfg.OTPResendInterval {
		return domain.ErrOTPResendTooSoon
	}

	code, err := generateOTP(s.cfg.OTPLength)
	if err != nil {
		return fmt.Errorf("shareService.RequestOTP: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("shareService.RequestOTP: hashing code: %w", err)
	}
	if err := s.shareRepo.SetOTP(ctx, share.ID, string(hash), now.Add(s.cfg.OTPTTL), now); err != nil {
		return fmt.Errorf("shareService.RequestOTP: %w", err)
	}

	if err := s.email.SendShareCode(ctx, share.RecipientEmail, share.RecipientName, code, s.cfg.OTPTTL); err != nil {
		return fmt.Errorf("shareService.RequestOTP: sending code: %w", err)
	}
	logging.API.WithField("share_id", share.ID).Info("shareService.RequestOTP: code sent")
	return nil
}

// generateOTP returns a uniformly random numeric code of n digits.
func generateOTP(n int) (string, error) {
	var b strings.Builder
	ten := big.NewInt(10)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("generating code: %w", err)
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}

func (s *shareService) VerifyOTP(ctx context.Context, token, code string) (*ShareAccess, error) {
	share, err := s.openShare(ctx, token)
	if err != nil {
		return nil, err
	}

	now := s.now()
	switch {
	case share.OTPHash == "":
		return nil, domain.ErrOTPNotRequested
	case share.OTPExpiresAt == nil || !now.Before(*share.OTPExpiresAt):
		return nil, domain.ErrOTPExpired
	case share.OTPAttempts >= s.cfg.OTPMaxAttempts:
		return nil, domain.ErrOTPLocked
	}

	log := logging.API.WithField("share_id", share.ID)

	// The attempt is counted before comparing so parallel guesses share one budget.
	attempts, err := s.shareRepo.ReserveOTPAttempt(ctx, share.ID, s.cfg.OTPMaxAttempts)
	if err != nil {
		if errors.Is(err, domain.ErrOTPLocked) {
			return nil, domain.ErrOTPLocked
		}
		return nil, fmt.Errorf("shareService.VerifyOTP: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(share.OTPHash), []byte(strings.TrimSpace(code))) != nil {
		log.WithField("attempts", attempts).Warn("shareService.VerifyOTP: wrong code")
		return nil, fmt.Errorf("%w: %d attempts remaining", domain.ErrOTPInvalid, max(s.cfg.OTPMaxAttempts-attempts, 0))
	}

	if err := s.shareRepo.ConsumeOTP(ctx, share.ID, share.OTPHash, now); err != nil {
		if errors.Is(err, domain.ErrOTPInvalid) {
			log.Warn("shareService.VerifyOTP: code already used")
			return nil, domain.ErrOTPInvalid
		}
		return nil, fmt.Errorf("shareService.VerifyOTP: %w", err)
	}

	expiresAt := now.Add(s.cfg.AccessTokenTTL)
	if share.ExpiresAt.Before(expiresAt) {
		expiresAt = share.ExpiresAt
	}
	accessToken, err := s.auth.IssueShareToken(share.ID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("shareService.VerifyOTP: %w", err)
	}
	log.Info("shareService.VerifyOTP: access granted")
	return &ShareAccess{AccessToken: accessToken, ExpiresAt: expiresAt}, nil
}

func (s *shareService) Dashboard(ctx context.Context, shareID uuid.UUID) (*SharedDashboard, error) {
	share, err := s.shareRepo.GetByID(ctx, shareID)
	if err != nil {
		if errors.Is(err, domain.ErrShareNotFound) {
			return nil, domain.ErrShareUnavailable
		}
		return nil, err
	}
	if !share.Available(s.now()) {
		return nil, domain.ErrShareUnavailable
	}

	owner, err := s.userRepo.GetByID(ctx, share.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("shareService.Dashboard: loading owner: %w", err)
	}

	dash := &SharedDashboard{
		OwnerName: owner.FullName,
		Scopes:    share.Scopes,
		ExpiresAt: share.ExpiresAt,
	}

	if share.HasScope(domain.ShareScopeInsuranceCards) {
		scans, err := s.scanRepo.ListAllByUser(ctx, share.OwnerID, domain.ReviewStatusConfirmed)
		if err != nil {
			return nil, fmt.Errorf("shareService.Dashboard: listing cards: %w", err)
		}
		dash.InsuranceCards = make([]SharedCard, 0, len(scans))
		for i := range scans {
			dash.InsuranceCards = append(dash.InsuranceCards, SharedCard{
				ScanID:      scans[i].ID,
				Card:        scans[i].EffectiveCard(),
				ConfirmedAt: scans[i].ConfirmedAt,
			})
		}
	}

	if share.HasScope(domain.ShareScopeRecordFiles) {
		files, _, err := s.files.List(ctx, share.OwnerID, domain.FileCategoryRecord, 0, maxSharedFiles)
		if err != nil {
			return nil, fmt.Errorf("shareService.Dashboard: listing files: %w", err)
		}
		dash.RecordFiles = make([]SharedFile, 0, len(files))
		for i := range files {
			if files[i].Status != domain.FileStatusUploaded {
				continue
			}
			url, err := s.files.PresignedURL(ctx, &files[i])
			if err != nil {
				return nil, fmt.Errorf("shareService.Dashboard: %w", err)
			}
			dash.RecordFiles = append(dash.RecordFiles, SharedFile{
				ID:           files[i].ID,
				OriginalName: files[i].OriginalName,
				Description:  files[i].Description,
				ContentType:  files[i].ContentType,
				FileSize:     files[i].FileSize,
				CreatedAt:    files[i].CreatedAt,
				DownloadURL:  url,
			})
		}
	}

	logging.API.WithField("share_id", shareID).Info("shareService.Dashboard: served")
	return dash, nil
}
