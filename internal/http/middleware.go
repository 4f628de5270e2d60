package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"price-board/internal/auth"
)

// ContextUsernameKey is the gin context key holding the authenticated username.
const ContextUsernameKey = "username"

// requireAuth rejects requests without a valid bearer token and records the
// username for downstream handlers.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, err := auth.Authenticate(c.GetHeader("Authorization"), h.verifier)
		if err != nil {
			message := "Unauthorized"
			var authErr *auth.AuthError
			if errors.As(err, &authErr) {
				message = authErr.Error()
			}
			h.logger.WithError(err).WithField("path", c.Request.URL.Path).Debug("request not authenticated")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": message})
			return
		}

		c.Set(ContextUsernameKey, username)
		c.Request = c.Request.WithContext(auth.WithUsername(c.Request.Context(), username))
		c.Next()
	}
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := h.logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		})
		if username := c.GetString(ContextUsernameKey); username != "" {
			entry = entry.WithField("user", username)
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	}
}

func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
