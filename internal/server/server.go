// Package server exposes the backend proxy and the local diff endpoints over HTTP.
package server

import (
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pders01/reflexion/internal/backend"
	"github.com/pders01/reflexion/internal/progression"
)

// Server holds the shared, read-only dependencies of all handlers
type Server struct {
	backend     *backend.Client
	logger      *zap.Logger
	aggregation progression.Aggregation
}

// New creates a server. A nil logger disables logging.
func New(client *backend.Client, logger *zap.Logger, aggregation progression.Aggregation) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if aggregation == "" {
		aggregation = progression.AggregateWeighted
	}
	return &Server{
		backend:     client,
		logger:      logger,
		aggregation: aggregation,
	}
}

var registerTagNames sync.Once

// SetupRouter builds the gin engine with all routes
func (s *Server) SetupRouter() *gin.Engine {
	registerTagNames.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(jsonFieldName)
		}
	})

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	api := r.Group("/api")
	api.GET("/info", s.Info)
	api.GET("/projects", s.requireAuth, s.Projects)
	api.POST("/project/apply", s.requireAuth, s.Apply)
	api.GET("/decisions", s.Decisions)
	api.POST("/progression/diff", s.ProgressionDiff)
	api.POST("/hydration/view", s.HydrationView)
	api.POST("/brief/decision", s.BriefDecision)

	r.NoRoute(s.Proxy)

	return r
}

const readHeaderTimeout = 10 * time.Second

// ListenAndServe runs the router on addr
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("listening", zap.String("addr", addr), zap.String("backend", s.backend.BaseURL()))
	return s.httpServer(addr).ListenAndServe()
}

func (s *Server) httpServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.SetupRouter(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}
