package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User represents an account holder of a personal health record.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// FileMeta stores metadata about a file held in the record vault.
type FileMeta struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	UserID       uuid.UUID    `db:"user_id" json:"user_id"`
	Category     FileCategory `db:"category" json:"category"`
	Description  string       `db:"description" json:"description"`
	FileName     string       `db:"file_name" json:"file_name"`
	OriginalName string       `db:"original_name" json:"original_name"`
	FileType     FileType     `db:"file_type" json:"file_type"`
	FileSize     int64        `db:"file_size" json:"file_size"`
	S3Bucket     string       `db:"s3_bucket" json:"-"`
	S3Key        string       `db:"s3_key" json:"-"`
	ContentType  string       `db:"content_type" json:"content_type"`
	Status       FileStatus   `db:"status" json:"status"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// CardScan is one attempt at reading an insurance card, from pasted OCR text
// or from uploaded card images.
type CardScan struct {
	ID              uuid.UUID            `db:"id" json:"id"`
	UserID          uuid.UUID            `db:"user_id" json:"user_id"`
	Source          ScanSource           `db:"source" json:"source"`
	FrontFileID     *uuid.UUID           `db:"front_file_id" json:"front_file_id"`
	BackFileID      *uuid.UUID           `db:"back_file_id" json:"back_file_id"`
	OCRText         string               `db:"ocr_text" json:"ocr_text"`
	ParsedData      ParsedInsuranceCard  `db:"parsed_data" json:"parsed_data"`
	ConfirmedData   *ParsedInsuranceCard `db:"confirmed_data" json:"confirmed_data"`
	FieldProvenance FieldProvenance      `db:"field_provenance" json:"field_provenance,omitempty"`
	ParserModel     string               `db:"parser_model" json:"parser_model"`
	Status          ScanStatus           `db:"status" json:"status"`
	ReviewStatus    ReviewStatus         `db:"review_status" json:"review_status"`
	Error           string               `db:"error" json:"error"`
	Attempts        int                  `db:"attempts" json:"attempts"`
	RetryAfter      *time.Time           `db:"retry_after" json:"retry_after,omitempty"`
	ParsedAt        *time.Time           `db:"parsed_at" json:"parsed_at"`
	ConfirmedAt     *time.Time           `db:"confirmed_at" json:"confirmed_at"`
	CreatedAt       time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time            `db:"updated_at" json:"updated_at"`
}

// EffectiveCard returns the user-confirmed card when present, else the parsed one.
func (s *CardScan) EffectiveCard() ParsedInsuranceCard {
	if s.ConfirmedData != nil {
		return *s.ConfirmedData
	}
	return s.ParsedData
}

// Share grants a recipient OTP-gated, read-only access to some of an owner's records.
type Share struct {
	ID             uuid.UUID   `db:"id" json:"id"`
	OwnerID        uuid.UUID   `db:"owner_id" json:"owner_id"`
	RecipientEmail string      `db:"recipient_email" json:"recipient_email"`
	RecipientName  string      `db:"recipient_name" json:"recipient_name"`
	Scopes         ShareScopes `db:"scopes" json:"scopes"`
	TokenHash      string      `db:"token_hash" json:"-"`
	ExpiresAt      time.Time   `db:"expires_at" json:"expires_at"`
	RevokedAt      *time.Time  `db:"revoked_at" json:"revoked_at"`
	OTPHash        string      `db:"otp_hash" json:"-"`
	OTPExpiresAt   *time.Time  `db:"otp_expires_at" json:"-"`
	OTPAttempts    int         `db:"otp_attempts" json:"-"`
	OTPSentAt      *time.Time  `db:"otp_sent_at" json:"-"`
	AccessCount    int         `db:"access_count" json:"access_count"`
	LastAccessedAt *time.Time  `db:"last_accessed_at" json:"last_accessed_at"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at"`
}

// Available reports whether the share can still be opened at now.
func (s *Share) Available(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// HasScope reports whether the share exposes the given scope.
func (s *Share) HasScope(scope ShareScope) bool {
	for _, sc := range s.Scopes {
		if sc == scope {
			return true
		}
	}
	return false
}

// ShareScopes is stored as a JSONB array.
type ShareScopes []ShareScope

// Value implements driver.Valuer.
func (s ShareScopes) Value() (driver.Value, error) {
	if s == nil {
		s = ShareScopes{}
	}
	return json.Marshal([]ShareScope(s))
}

// Scan implements sql.Scanner.
func (s *ShareScopes) Scan(src interface{}) error {
	return scanJSON(src, s, "share scopes")
}

// FieldProvenance maps card field names to the parser that supplied them.
type FieldProvenance map[string]string

// Value implements driver.Valuer.
func (f FieldProvenance) Value() (driver.Value, error) {
	if f == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]string(f))
}

// Scan implements sql.Scanner.
func (f *FieldProvenance) Scan(src interface{}) error {
	return scanJSON(src, f, "field provenance")
}

func scanJSON(src, dest interface{}, what string) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if err := json.Unmarshal(v, dest); err != nil {
			return fmt.Errorf("unmarshaling %s: %w", what, err)
		}
	case string:
		if err := json.Unmarshal([]byte(v), dest); err != nil {
			return fmt.Errorf("unmarshaling %s: %w", what, err)
		}
	default:
		return fmt.Errorf("scanning %s: unsupported type %T", what, src)
	}
	return nil
}
