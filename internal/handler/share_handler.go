package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medvault/internal/middleware"
	"medvault/internal/service"
)

// ShareHandler handles record sharing endpoints for owners and recipients.
type ShareHandler struct {
	shareService service.ShareService
}

// NewShareHandler creates a new ShareHandler.
func NewShareHandler(shareService service.ShareService) *ShareHandler {
	return &ShareHandler{shareService: shareService}
}

// Create handles POST /api/v1/shares
// @Summary Share records
// @Description Create a share and email the recipient a link. The raw link token is only returned here.
// @Tags shares
// @Accept json
// @Produce json
// @Param request body CreateShareRequest true "Recipient and scopes"
// @Success 201 {object} Response{data=service.CreateShareOutput} "Share created"
// @Failure 400 {object} ErrorResponseBody "Invalid scope or expiry"
// @Security BearerAuth
// @Router /shares [post]
func (h *ShareHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var input service.CreateShareInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if input.ExpiresInHours < 0 {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "expires_in_hours must not be negative")
		return
	}

	out, err := h.shareService.Create(c.Request.Context(), userID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, out)
}

// List handles GET /api/v1/shares
// @Summary List shares
// @Tags shares
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Share,meta=PagMeta} "Shares, newest first"
// @Security BearerAuth
// @Router /shares [get]
func (h *ShareHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	shares, total, err := h.shareService.List(c.Request.Context(), userID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, shares, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Revoke handles DELETE /api/v1/shares/:id
// @Summary Revoke a share
// @Tags shares
// @Produce json
// @Param id path string true "Share ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse} "Share revoked"
// @Failure 404 {object} ErrorResponseBody "Share not found"
// @Security BearerAuth
// @Router /shares/{id} [delete]
func (h *ShareHandler) Revoke(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	shareID, ok := parseIDParam(c, "id", "share")
	if !ok {
		return
	}

	if err := h.shareService.Revoke(c.Request.Context(), userID, shareID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "share revoked"})
}

// RequestOTP handles POST /api/v1/public/shares/:token/otp
// @Summary Request an access code
// @Description Email a one-time access code to the share recipient
// @Tags shared
// @Produce json
// @Param token path string true "Share link token"
// @Success 200 {object} Response{data=MessageResponse} "Code sent"
// @Failure 403 {object} ErrorResponseBody "Share revoked or expired"
// @Failure 404 {object} ErrorResponseBody "Share not found"
// @Failure 429 {object} ErrorResponseBody "Code requested too recently"
// @Router /public/shares/{token}/otp [post]
func (h *ShareHandler) RequestOTP(c *gin.Context) {
	if err := h.shareService.RequestOTP(c.Request.Context(), c.Param("token")); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "an access code has been sent to the recipient's email"})
}

// VerifyOTP handles POST /api/v1/public/shares/:token/verify
// @Summary Verify an access code
// @Tags shared
// @Accept json
// @Produce json
// @Param token path string true "Share link token"
// @Param request body VerifyOTPRequest true "Access code"
// @Success 200 {object} Response{data=service.ShareAccess} "Share session token"
// @Failure 400 {object} ErrorResponseBody "No code requested"
// @Failure 401 {object} ErrorResponseBody "Wrong or expired code"
// @Failure 423 {object} ErrorResponseBody "Too many failed attempts"
// @Router /public/shares/{token}/verify [post]
func (h *ShareHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	access, err := h.shareService.VerifyOTP(c.Request.Context(), c.Param("token"), req.Code)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, access)
}

// Dashboard handles GET /api/v1/shared/dashboard
// @Summary Shared records
// @Description Records the verified recipient may see
// @Tags shared
// @Produce json
// @Success 200 {object} Response{data=service.SharedDashboard} "Shared records"
// @Failure 401 {object} ErrorResponseBody "Missing or expired share session"
// @Failure 403 {object} ErrorResponseBody "Share revoked or expired"
// @Security ShareAuth
// @Router /shared/dashboard [get]
func (h *ShareHandler) Dashboard(c *gin.Context) {
	shareID, err := middleware.GetShareID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing share context")
		return
	}

	dash, err := h.shareService.Dashboard(c.Request.Context(), shareID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, dash)
}
