package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserInactive        = errors.New("user is inactive")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrInvalidFileCategory = errors.New("invalid file category")

	// Card scans
	ErrScanNotFound   = errors.New("card scan not found")
	ErrScanNotReady   = errors.New("card scan has not finished parsing")
	ErrEmptyOCRText   = errors.New("ocr text is empty")
	ErrOCRUnavailable = errors.New("no OCR engine configured")
	ErrNoCardImage    = errors.New("card parse input has neither text nor images")

	// Sharing
	ErrShareNotFound      = errors.New("share not found")
	ErrShareUnavailable   = errors.New("share is revoked or expired")
	ErrInvalidShareScope  = errors.New("invalid share scope")
	ErrShareExpiryTooLong = errors.New("share expiry exceeds maximum")
	ErrOTPNotRequested    = errors.New("no access code has been requested")
	ErrOTPExpired         = errors.New("access code has expired")
	ErrOTPInvalid         = errors.New("access code is invalid")
	ErrOTPLocked          = errors.New("too many failed access code attempts")
	ErrOTPResendTooSoon   = errors.New("access code was requested too recently")

	// Terminology
	ErrUnknownTerminologySource = errors.New("unknown terminology source")
	ErrUpstreamUnavailable      = errors.New("terminology source temporarily unavailable")
)
