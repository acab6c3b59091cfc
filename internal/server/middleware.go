package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pders01/reflexion/internal/backend"
)

const requestIDKey = "request_id"

// requestLogger tags every request with an id and logs it on completion
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(backend.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(backend.HeaderRequestID, id)

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", id),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.logger.Warn("request failed", fields...)
			return
		}
		s.logger.Info("request", fields...)
	}
}

// credentials reads the caller's bearer token and org context from the request
func credentials(c *gin.Context) backend.Credentials {
	token := c.GetHeader(backend.HeaderAuthorization)
	if after, ok := strings.CutPrefix(token, "Bearer "); ok {
		token = strings.TrimSpace(after)
	} else {
		token = ""
	}
	return backend.Credentials{
		AuthToken:  token,
		OrgContext: c.GetHeader(backend.HeaderOrgContext),
		RequestID:  c.GetString(requestIDKey),
	}
}

func (s *Server) requireAuth(c *gin.Context) {
	if !credentials(c).Authenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.Next()
}
