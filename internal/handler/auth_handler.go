package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medvault/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /api/v1/auth/register
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Account details"
// @Success 201 {object} Response{data=service.RegisterOutput} "Account created"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 409 {object} ErrorResponseBody "Email already registered"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var input service.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	output, err := h.authService.Register(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, output)
}

// Login handles POST /api/v1/auth/login
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} Response{data=service.TokenPair} "Token pair"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 401 {object} ErrorResponseBody "Invalid credentials"
// @Failure 403 {object} ErrorResponseBody "User inactive"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var input service.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	tokenPair, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, tokenPair)
}

// RefreshToken handles POST /api/v1/auth/refresh
// @Summary Refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} Response{data=service.TokenPair} "New token pair"
// @Failure 401 {object} ErrorResponseBody "Invalid refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var input service.RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	tokenPair, err := h.authService.RefreshToken(c.Request.Context(), input.RefreshToken)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, tokenPair)
}

// Me handles GET /api/v1/me
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} Response{data=domain.User} "Current user"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, user)
}
