package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"medvault/internal/domain"
	"medvault/internal/service"
)

const (
	ContextKeyUserID  = "user_id"
	ContextKeyEmail   = "email"
	ContextKeyClaims  = "claims"
	ContextKeyShareID = "share_id"
)

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   gin.H{"code": "UNAUTHORIZED", "message": msg},
	})
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(authHeader, "Bearer "), true
}

// AuthMiddleware returns Gin middleware that validates account access tokens
// and injects the user context.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "missing or invalid authorization header")
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// ShareAuthMiddleware accepts only share-audience tokens issued after a
// recipient verified an access code.
func ShareAuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "missing or invalid authorization header")
			return
		}

		claims, err := authService.ValidateShareToken(token)
		if err != nil {
			abortUnauthorized(c, "invalid or expired share session")
			return
		}

		c.Set(ContextKeyShareID, claims.ShareID)
		c.Next()
	}
}

// GetUserID extracts the user ID from the Gin context.
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return val.(uuid.UUID), nil
}

// GetShareID extracts the share ID of a verified recipient.
func GetShareID(c *gin.Context) (uuid.UUID, error) {
	val, exists := c.Get(ContextKeyShareID)
	if !exists {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return val.(uuid.UUID), nil
}
