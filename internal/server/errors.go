package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pders01/reflexion/internal/backend"
	"github.com/pders01/reflexion/internal/progression"
	"github.com/pders01/reflexion/internal/ranking"
)

// errorKind names a validation failure for API clients
func errorKind(err error) string {
	switch {
	case errors.Is(err, progression.ErrInvalidSnapshot):
		return "InvalidSnapshot"
	case errors.Is(err, progression.ErrInvalidMetadata), errors.Is(err, ranking.ErrInvalidMetadata):
		return "InvalidMetadata"
	case errors.Is(err, progression.ErrInvalidCount):
		return "InvalidCount"
	case errors.Is(err, ranking.ErrIndexOutOfRange):
		return "IndexOutOfRange"
	default:
		return ""
	}
}

// validationError writes 422 for known validation failures and reports
// whether it did.
func validationError(c *gin.Context, err error) bool {
	kind := errorKind(err)
	if kind == "" {
		return false
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": kind, "details": err.Error()})
	return true
}

// backendError relays a failed backend call to the client
func (s *Server) backendError(c *gin.Context, op string, err error) {
	_ = c.Error(err)

	if apiErr, ok := backend.AsAPIError(err); ok {
		s.logger.Warn("backend error",
			zap.String("op", op),
			zap.Int("status", apiErr.StatusCode),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
		c.Data(apiErr.StatusCode, "application/json", apiErr.JSONBody())
		return
	}
	if errors.Is(err, backend.ErrInvalidResponse) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Invalid backend response"})
		return
	}
	if validationError(c, err) {
		return
	}

	s.logger.Error("backend call failed", zap.String("op", op), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error", "details": err.Error()})
}
