// Package server exposes search and view assembly over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/japaniel/kanjigraph/pkg/config"
	"github.com/japaniel/kanjigraph/pkg/explorer"
	"github.com/japaniel/kanjigraph/pkg/layout"
)

// Readiness is implemented by searchers that load their index lazily.
type Readiness interface {
	Ready() bool
}

// Server represents the HTTP server
type Server struct {
	config   *config.Config
	router   *gin.Engine
	server   *http.Server
	searcher explorer.Searcher
	loader   explorer.Loader

	// Measurer sizes nodes for the diagram. nil means a text measurer.
	Measurer layout.Measurer
	// Logger receives one line per request. nil means slog.Default().
	Logger *slog.Logger
}

// New creates a new server instance
func New(cfg *config.Config, searcher explorer.Searcher, loader explorer.Loader) *Server {
	return &Server{
		config:   cfg,
		searcher: searcher,
		loader:   loader,
	}
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	if s.config.Server.Mode != "" {
		gin.SetMode(s.config.Server.Mode)
	}

	s.router = gin.New()
	s.router.Use(requestLogger(s.logger()))
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())

	s.setupRoutes()

	s.server = &http.Server{
		Addr:              s.config.Server.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *Server) setupRoutes() {
	h := &handlers{
		searcher: s.searcher,
		loader:   s.loader,
		measurer: s.Measurer,
		layout:   s.config.Layout,
		logger:   s.logger(),
	}
	if h.measurer == nil {
		h.measurer = layout.NewTextMeasurer()
	}

	s.router.GET("/health", h.health)
	s.router.GET("/ready", h.ready)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/search", h.search)
		v1.GET("/view/:type/:id", h.view)
	}
}

// Handler returns the configured router. Setup must have been called.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the server
func (s *Server) Start() error {
	s.logger().Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.logger().Info("stopping server")
	return s.server.Shutdown(ctx)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start))
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
