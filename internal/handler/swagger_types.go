package handler

import (
	"time"

	"medvault/internal/domain"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required" example:"jordan@example.com"`
	Password string `json:"password" binding:"required" example:"securepassword123"`
	FullName string `json:"full_name" binding:"required" example:"Jordan Lee"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"jordan@example.com"`
	Password string `json:"password" binding:"required" example:"securepassword123"`
}

// RefreshRequest represents the token refresh request body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// ParseCardRequest carries OCR text from a photographed insurance card.
// Empty text is accepted by the stateless parse endpoint.
type ParseCardRequest struct {
	OCRText string `json:"ocr_text" example:"Aetna\nMember ID: W123456789\nGroup: 0884412"`
}

// CreateShareRequest represents the create share request body.
type CreateShareRequest struct {
	RecipientEmail string              `json:"recipient_email" binding:"required" example:"dr.patel@clinic.example.com"`
	RecipientName  string              `json:"recipient_name" binding:"required" example:"Dr. Priya Patel"`
	Scopes         []domain.ShareScope `json:"scopes" binding:"required" example:"insurance_cards,record_files"`
	ExpiresInHours int                 `json:"expires_in_hours" example:"72"`
}

// VerifyOTPRequest carries the access code a share recipient received.
type VerifyOTPRequest struct {
	Code string `json:"code" binding:"required" example:"482913"`
}

// --- Response Types ---

// TokenResponse represents the authentication token response.
type TokenResponse struct {
	AccessToken  string    `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string    `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt    time.Time `json:"expires_at" example:"2026-01-15T10:30:00Z"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"operation completed successfully"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
