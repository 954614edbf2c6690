package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"medvault/internal/domain"
	"medvault/internal/export"
	"medvault/internal/logging"
	"medvault/internal/middleware"
	"medvault/internal/upstream"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondAccepted sends a 202 response for work queued in the background.
func RespondAccepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials"
	case errors.Is(err, domain.ErrUserInactive):
		return http.StatusForbidden, "USER_INACTIVE", "user is inactive"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "DUPLICATE_EMAIL", "email already registered"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf, jpg, png"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrInvalidFileCategory):
		return http.StatusBadRequest, "INVALID_CATEGORY", "invalid file category; allowed: record, insurance_card"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	case errors.Is(err, domain.ErrScanNotFound):
		return http.StatusNotFound, "SCAN_NOT_FOUND", "card scan not found"
	case errors.Is(err, domain.ErrScanNotReady):
		return http.StatusConflict, "SCAN_NOT_READY", "card scan has not finished parsing"
	case errors.Is(err, domain.ErrEmptyOCRText):
		return http.StatusBadRequest, "EMPTY_OCR_TEXT", "ocr_text must not be blank"
	case errors.Is(err, export.ErrUnknownFormat):
		return http.StatusBadRequest, "INVALID_FORMAT", "unknown export format; allowed: csv, xlsx"
	case errors.Is(err, domain.ErrShareNotFound):
		return http.StatusNotFound, "SHARE_NOT_FOUND", "share not found"
	case errors.Is(err, domain.ErrShareUnavailable):
		return http.StatusForbidden, "SHARE_UNAVAILABLE", "this share has been revoked or has expired"
	case errors.Is(err, domain.ErrInvalidShareScope):
		return http.StatusBadRequest, "INVALID_SCOPE", "invalid share scope; allowed: insurance_cards, record_files"
	case errors.Is(err, domain.ErrShareExpiryTooLong):
		return http.StatusBadRequest, "EXPIRY_TOO_LONG", "share expiry exceeds the maximum allowed"
	case errors.Is(err, domain.ErrOTPNotRequested):
		return http.StatusBadRequest, "OTP_NOT_REQUESTED", "request an access code first"
	case errors.Is(err, domain.ErrOTPExpired):
		return http.StatusUnauthorized, "OTP_EXPIRED", "access code has expired; request a new one"
	case errors.Is(err, domain.ErrOTPInvalid):
		return http.StatusUnauthorized, "OTP_INVALID", err.Error()
	case errors.Is(err, domain.ErrOTPLocked):
		return http.StatusLocked, "OTP_LOCKED", "too many failed attempts; request a new code"
	case errors.Is(err, domain.ErrOTPResendTooSoon):
		return http.StatusTooManyRequests, "OTP_RESEND_TOO_SOON", "an access code was sent recently; try again shortly"
	case errors.Is(err, domain.ErrUnknownTerminologySource):
		return http.StatusNotFound, "UNKNOWN_SOURCE", "unknown terminology source"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "terminology source temporarily unavailable"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get(middleware.ContextKeyRequestID)
		logging.API.WithField("request_id", requestID).WithError(err).Error("handler: internal error")
	}

	var rl *upstream.RateLimitError
	if errors.As(err, &rl) {
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(rl.RetryAfter.Seconds()))))
	}
	RespondError(c, status, code, msg)
}

// requireUserID extracts the user ID from the request context. Returns false
// if auth context is missing (error response already written).
func requireUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return uuid.Nil, false
	}
	return userID, true
}

// parseIDParam parses a UUID path parameter, writing a 400 on failure.
func parseIDParam(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+what+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// parsePagination extracts offset and limit from query params with defaults.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
