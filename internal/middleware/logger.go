package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"medvault/internal/logging"
)

const ContextKeyRequestID = "request_id"

// RequestID injects an X-Request-ID header into the request and response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// Logger logs each HTTP request with method, route, status, and latency.
// Share tokens travel in the path, so the matched route is logged instead of
// the raw URL.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestID, _ := c.Get(ContextKeyRequestID)
		entry := logging.Request.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"route":      route,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		})
		if userID, ok := c.Get(ContextKeyUserID); ok {
			entry = entry.WithField("user_id", userID)
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}

// Recovery recovers from panics and returns a 500 error.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID, _ := c.Get(ContextKeyRequestID)
		logging.Request.WithField("request_id", requestID).WithField("panic", recovered).Error("request panicked")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "INTERNAL_ERROR", "message": "an internal error occurred"},
		})
	})
}
