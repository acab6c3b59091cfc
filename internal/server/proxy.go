package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// forwardedResponseHeaders are copied from the backend response
var forwardedResponseHeaders = []string{
	"Access-Control-Allow-Origin",
	"Access-Control-Allow-Methods",
	"Access-Control-Allow-Headers",
}

// Proxy forwards any unmatched /api request to the backend with /api stripped
func (s *Server) Proxy(c *gin.Context) {
	path := c.Request.URL.Path
	if path != "/api" && !strings.HasPrefix(path, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
		return
	}
	path = strings.TrimPrefix(path, "/api")

	var body io.Reader
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		body = c.Request.Body
	}

	resp, err := s.backend.Forward(c.Request.Context(), c.Request.Method, path, c.Request.URL.RawQuery, c.Request.Header, body)
	if err != nil {
		_ = c.Error(err)
		s.logger.Error("proxy failed", zap.String("path", path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to proxy request", "details": err.Error()})
		return
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	for _, h := range forwardedResponseHeaders {
		if v := resp.Header.Get(h); v != "" {
			c.Header(h, v)
		}
	}

	c.DataFromReader(resp.StatusCode, resp.ContentLength, contentType, resp.Body, nil)
}
