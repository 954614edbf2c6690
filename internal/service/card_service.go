package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"medvault/internal/domain"
	"medvault/internal/export"
	"medvault/internal/logging"
	"medvault/internal/parser/insurance"
	"medvault/internal/port"
	"medvault/internal/upstream"
)

const defaultMaxScanAttempts = 5

// CardImageUpload is one side of a card submitted for scanning.
type CardImageUpload struct {
	File     io.ReadSeeker
	FileName string
	Size     int64
}

// CardUploadInput is the DTO for image-based scans. Back is optional.
type CardUploadInput struct {
	UserID uuid.UUID
	Front  CardImageUpload
	Back   *CardImageUpload
}

// CardService defines the insurance card scan contract.
type CardService interface {
	// ParseText runs the extractor without persisting anything.
	ParseText(ocrText string) domain.ParsedInsuranceCard
	CreateTextScan(ctx context.Context, userID uuid.UUID, ocrText string) (*domain.CardScan, error)
	UploadScan(ctx context.Context, input CardUploadInput) (*domain.CardScan, error)
	GetByID(ctx context.Context, userID, scanID uuid.UUID) (*domain.CardScan, error)
	List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.CardScan, int, error)
	Confirm(ctx context.Context, userID, scanID uuid.UUID, card domain.ParsedInsuranceCard) (*domain.CardScan, error)
	Discard(ctx context.Context, userID, scanID uuid.UUID) (*domain.CardScan, error)
	Reparse(ctx context.Context, userID, scanID uuid.UUID) (*domain.CardScan, error)
	Delete(ctx context.Context, userID, scanID uuid.UUID) error
	Export(ctx context.Context, userID uuid.UUID, review domain.ReviewStatus, format export.Format, w io.Writer) error
	// ProcessScan runs the card parser on a claimed scan and stores the outcome.
	ProcessScan(ctx context.Context, scan *domain.CardScan, maxAttempts int)
}

type cardService struct {
	scanRepo port.CardScanRepository
	files    FileService
	parser   port.CardParser
	now      func() time.Time
}

// NewCardService creates a new CardService implementation.
func NewCardService(scanRepo port.CardScanRepository, files FileService, parser port.CardParser) CardService {
	return &cardService{
		scanRepo: scanRepo,
		files:    files,
		parser:   parser,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *cardService) ParseText(ocrText string) domain.ParsedInsuranceCard {
	return insurance.Parse(ocrText)
}

func (s *cardService) CreateTextScan(ctx context.Context, userID uuid.UUID, ocrText string) (*domain.CardScan, error) {
	if strings.TrimSpace(ocrText) == "" {
		return nil, domain.ErrEmptyOCRText
	}

	now := s.now()
	card := insurance.Parse(ocrText)
	scan := &domain.CardScan{
		UserID:       userID,
		Source:       domain.ScanSourceText,
		OCRText:      ocrText,
		ParsedData:   card,
		ParserModel:  "extractor",
		Status:       domain.ScanStatusCompleted,
		ReviewStatus: domain.ReviewStatusPending,
		ParsedAt:     &now,
	}
	if err := s.scanRepo.Create(ctx, scan); err != nil {
		return nil, fmt.Errorf("cardService.CreateTextScan: %w", err)
	}

	log := logging.API.WithField("scan_id", scan.ID).WithField("user_id", userID)
	if card.IsEmpty() {
		log.Warn("cardService.CreateTextScan: no fields recognized")
	} else {
		log.WithField("provider_confidence", card.Provider.Confidence).Info("cardService.CreateTextScan: parsed")
	}
	return scan, nil
}

func (s *cardService) UploadScan(ctx context.Context, input CardUploadInput) (*domain.CardScan, error) {
	front, err := s.storeSide(ctx, input.UserID, input.Front, "front")
	if err != nil {
		return nil, err
	}
	scan := &domain.CardScan{
		UserID:       input.UserID,
		Source:       domain.ScanSourceImage,
		FrontFileID:  &front.ID,
		ParsedData:   domain.NewParsedInsuranceCard(),
		Status:       domain.ScanStatusQueued,
		ReviewStatus: domain.ReviewStatusPending,
	}
	if input.Back != nil {
		back, err := s.storeSide(ctx, input.UserID, *input.Back, "back")
		if err != nil {
			return nil, err
		}
		scan.BackFileID = &back.ID
	}

	if err := s.scanRepo.Create(ctx, scan); err != nil {
		return nil, fmt.Errorf("cardService.UploadScan: %w", err)
	}
	logging.API.WithField("scan_id", scan.ID).WithField("user_id", input.UserID).
		WithField("has_back", scan.BackFileID != nil).Info("cardService.UploadScan: queued")
	return scan, nil
}

func (s *cardService) storeSide(ctx context.Context, userID uuid.UUID, img CardImageUpload, side string) (*domain.FileMeta, error) {
	return s.files.Upload(ctx, FileUploadInput{
		UserID:      userID,
		Category:    domain.FileCategoryInsuranceCard,
		Description: "Insurance card " + side,
		File:        img.File,
		FileName:    img.FileName,
		Size:        img.Size,
	})
}

func (s *cardService) GetByID(ctx context.Context, userID, scanID uuid.UUID) (*domain.CardScan, error) {
	return s.scanRepo.GetByID(ctx, userID, scanID)
}

func (s *cardService) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.CardScan, int, error) {
	return s.scanRepo.ListByUser(ctx, userID, offset, limit)
}

func (s *cardService) Confirm(ctx context.Context, userID, scanID uuid.UUID, card domain.ParsedInsuranceCard) (*domain.CardScan, error) {
	scan, err := s.scanRepo.GetByID(ctx, userID, scanID)
	if err != nil {
		return nil, err
	}
	if scan.Status != domain.ScanStatusCompleted {
		return nil, domain.ErrScanNotReady
	}

	confirmed := cleanConfirmedCard(card)
	now := s.now()
	scan.ConfirmedData = &confirmed
	scan.ConfirmedAt = &now
	scan.ReviewStatus = domain.ReviewStatusConfirmed
	if err := s.scanRepo.UpdateReview(ctx, scan); err != nil {
		return nil, fmt.Errorf("cardService.Confirm: %w", err)
	}
	logging.API.WithField("scan_id", scanID).Info("cardService.Confirm: confirmed")
	return scan, nil
}

// cleanConfirmedCard trims user edits and re-normalizes phone numbers. A named
// provider without a confidence is treated as user-asserted.
func cleanConfirmedCard(card domain.ParsedInsuranceCard) domain.ParsedInsuranceCard {
	out := domain.NewParsedInsuranceCard()
	out.Provider.Name = strings.TrimSpace(card.Provider.Name)
	switch {
	case out.Provider.Name == "":
		out.Provider.Confidence = domain.ConfidenceNone
	case card.Provider.Confidence == "" || card.Provider.Confidence == domain.ConfidenceNone:
		out.Provider.Confidence = domain.ConfidenceHigh
	default:
		out.Provider.Confidence = card.Provider.Confidence
	}
	out.MemberID = strings.ToUpper(strings.TrimSpace(card.MemberID))
	out.GroupNumber = strings.ToUpper(strings.TrimSpace(card.GroupNumber))
	out.PlanName = strings.TrimSpace(card.PlanName)
	out.SubscriberName = strings.Join(strings.Fields(card.SubscriberName), " ")
	out.PhoneNumbers = insurance.NormalizePhones(card.PhoneNumbers)
	out.RxBIN = strings.TrimSpace(card.RxBIN)
	out.RxPCN = strings.ToUpper(strings.TrimSpace(card.RxPCN))
	out.RxGroup = strings.ToUpper(strings.TrimSpace(card.RxGroup))
	return out
}

func (s *cardService) Discard(ctx context.Context, userID, scanID uuid.UUID) (*domain.CardScan, error) {
	scan, err := s.scanRepo.GetByID(ctx, userID, scanID)
	if err != nil {
		return nil, err
	}
	scan.ReviewStatus = domain.ReviewStatusDiscarded
	if err := s.scanRepo.UpdateReview(ctx, scan); err != nil {
		return nil, fmt.Errorf("cardService.Discard: %w", err)
	}
	return scan, nil
}

// Reparse re-runs the extractor inline for text scans and re-queues image
// scans. The review state is left as it is.
func (s *cardService) Reparse(ctx context.Context, userID, scanID uuid.UUID) (*domain.CardScan, error) {
	scan, err := s.scanRepo.GetByID(ctx, userID, scanID)
	if err != nil {
		return nil, err
	}
	if scan.Status == domain.ScanStatusProcessing {
		return nil, domain.ErrScanNotReady
	}

	if scan.Source == domain.ScanSourceText {
		now := s.now()
		scan.ParsedData = insurance.Parse(scan.OCRText)
		scan.ParserModel = "extractor"
		scan.FieldProvenance = nil
		scan.Status = domain.ScanStatusCompleted
		scan.Error = ""
		scan.ParsedAt = &now
	} else {
		scan.Status = domain.ScanStatusQueued
		scan.Error = ""
		scan.Attempts = 0
		scan.RetryAfter = nil
	}

	if err := s.scanRepo.UpdateParseResult(ctx, scan); err != nil {
		return nil, fmt.Errorf("cardService.Reparse: %w", err)
	}
	logging.API.WithField("scan_id", scanID).WithField("status", scan.Status).Info("cardService.Reparse: done")
	return scan, nil
}

// Delete removes the scan and, best effort, its card images.
func (s *cardService) Delete(ctx context.Context, userID, scanID uuid.UUID) error {
	scan, err := s.scanRepo.GetByID(ctx, userID, scanID)
	if err != nil {
		return err
	}
	if err := s.scanRepo.Delete(ctx, userID, scanID); err != nil {
		return fmt.Errorf("cardService.Delete: %w", err)
	}
	for _, fileID := range []*uuid.UUID{scan.FrontFileID, scan.BackFileID} {
		if fileID == nil {
			continue
		}
		if err := s.files.Delete(ctx, userID, *fileID); err != nil {
			logging.API.WithField("scan_id", scanID).WithField("file_id", *fileID).WithError(err).
				Warn("cardService.Delete: card image not removed")
		}
	}
	return nil
}

func (s *cardService) Export(ctx context.Context, userID uuid.UUID, review domain.ReviewStatus, format export.Format, w io.Writer) error {
	scans, err := s.scanRepo.ListAllByUser(ctx, userID, review)
	if err != nil {
		return fmt.Errorf("cardService.Export: %w", err)
	}
	return export.Write(w, format, scans)
}

func (s *cardService) ProcessScan(ctx context.Context, scan *domain.CardScan, maxAttempts int) {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxScanAttempts
	}
	log := logging.Worker.WithField("scan_id", scan.ID).WithField("attempt", scan.Attempts)

	input, err := s.buildParseInput(ctx, scan)
	if err != nil {
		s.failScan(ctx, scan, fmt.Sprintf("loading card images: %v", err))
		return
	}

	output, err := s.parser.Parse(ctx, input)
	if err != nil {
		s.handleParseError(ctx, scan, err, maxAttempts)
		return
	}

	now := s.now()
	scan.ParsedData = output.Card
	if output.OCRText != "" {
		scan.OCRText = output.OCRText
	}
	scan.ParserModel = output.ModelUsed
	scan.FieldProvenance = output.FieldProvenance
	scan.Status = domain.ScanStatusCompleted
	scan.Error = ""
	scan.RetryAfter = nil
	scan.ParsedAt = &now

	if err := s.scanRepo.UpdateParseResult(ctx, scan); err != nil {
		log.WithError(err).Error("cardService.ProcessScan: failed to save results")
		return
	}
	if output.Card.IsEmpty() {
		log.Warn("cardService.ProcessScan: parsed but no fields recognized")
		return
	}
	log.WithField("model", output.ModelUsed).Info("cardService.ProcessScan: parsed")
}

func (s *cardService) buildParseInput(ctx context.Context, scan *domain.CardScan) (port.CardParseInput, error) {
	input := port.CardParseInput{OCRText: scan.OCRText}
	load := func(fileID *uuid.UUID) (*port.CardImage, error) {
		if fileID == nil {
			return nil, nil
		}
		data, meta, err := s.files.Download(ctx, scan.UserID, *fileID)
		if err != nil {
			return nil, err
		}
		return &port.CardImage{Data: data, ContentType: meta.ContentType}, nil
	}

	var err error
	if input.Front, err = load(scan.FrontFileID); err != nil {
		return input, err
	}
	if input.Back, err = load(scan.BackFileID); err != nil {
		return input, err
	}
	return input, nil
}

// permanentParseErrors fail a scan on the first attempt.
var permanentParseErrors = []error{domain.ErrOCRUnavailable, domain.ErrNoCardImage}

// handleParseError re-queues rate-limited scans at the provider's retry time
// and other failures with exponential backoff, until attempts run out.
func (s *cardService) handleParseError(ctx context.Context, scan *domain.CardScan, parseErr error, maxAttempts int) {
	for _, perm := range permanentParseErrors {
		if errors.Is(parseErr, perm) {
			s.failScan(ctx, scan, fmt.Sprintf("parsing card: %v", parseErr))
			return
		}
	}
	if scan.Attempts >= maxAttempts {
		s.failScan(ctx, scan, fmt.Sprintf("parsing card after %d attempts: %v", scan.Attempts, parseErr))
		return
	}

	var rlErr *upstream.RateLimitError
	var retryAt time.Time
	if errors.As(parseErr, &rlErr) {
		retryAt = s.now().Add(rlErr.RetryAfter)
		scan.Error = fmt.Sprintf("rate limited by %s, queued for retry", rlErr.Provider)
	} else {
		retryAt = s.now().Add(RetryDelay(scan.Attempts))
		scan.Error = fmt.Sprintf("parsing card: %v", parseErr)
	}
	scan.Status = domain.ScanStatusQueued
	scan.RetryAfter = &retryAt

	log := logging.Worker.WithField("scan_id", scan.ID).WithField("attempt", scan.Attempts)
	if err := s.scanRepo.UpdateParseResult(ctx, scan); err != nil {
		log.WithError(err).Error("cardService.handleParseError: failed to re-queue scan")
		return
	}
	log.WithField("retry_after", retryAt.Format(time.RFC3339)).WithError(parseErr).
		Warn("cardService.handleParseError: queued for retry")
}

func (s *cardService) failScan(ctx context.Context, scan *domain.CardScan, msg string) {
	log := logging.Worker.WithField("scan_id", scan.ID).WithField("attempt", scan.Attempts)
	log.WithField("error", msg).Error("cardService.failScan: scan failed")

	scan.Status = domain.ScanStatusFailed
	scan.Error = msg
	scan.RetryAfter = nil
	if err := s.scanRepo.UpdateParseResult(ctx, scan); err != nil {
		log.WithError(err).Error("cardService.failScan: failed to update status")
	}
}

// RetryDelay is the wait before the next attempt after attempt failures:
// 30s, 1m, 2m and so on, capped at 30m.
func RetryDelay(attempt int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 30 * time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = 30 * time.Minute
	b.MaxElapsedTime = 0
	b.Reset()

	d := b.NextBackOff()
	for i := 1; i < attempt; i++ {
		d = b.NextBackOff()
	}
	return d
}
