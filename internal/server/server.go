// Package server exposes the dispatcher over HTTP: record ingestion, manual
// flush, health and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bft-labs/lumberjack/internal/domain"
	"github.com/bft-labs/lumberjack/internal/ports"
)

// Backend is the dispatcher surface used by the HTTP handlers.
type Backend interface {
	Enqueue(suffix, typ string, body domain.Body, postprocessors ...domain.Postprocessor)
	TriggerFlush()
	QueueLen() int
	LastException() error
}

// Config holds server settings.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// FallbackLogFile is reported by the health endpoint.
	FallbackLogFile string

	// Gatherer serves /metrics. Nil uses prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// Server is the HTTP front end of a dispatcher.
type Server struct {
	backend    Backend
	config     Config
	logger     ports.Logger
	router     *gin.Engine
	httpServer *http.Server
	startTime  time.Time
}

// New creates a server and registers its routes.
func New(config Config, backend Backend, logger ports.Logger) *Server {
	if config.Gatherer == nil {
		config.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		backend:   backend,
		config:    config,
		logger:    ports.With(logger, ports.String("component", "http")),
		startTime: time.Now(),
	}

	router := gin.New()
	router.Use(s.loggingMiddleware())
	router.Use(gin.Recovery())
	s.setupRoutes(router)
	s.router = router

	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the listen address and serves in the background.
// A bind failure is returned immediately.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.config.Addr, err)
	}

	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("http server listening", ports.String("addr", listener.Addr().String()))
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server failed", ports.Err(err))
		}
	}()
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) setupRoutes(router *gin.Engine) {
	v1 := router.Group("/v1")
	{
		v1.POST("/records/:suffix/:type", s.handleEnqueue)
		v1.POST("/flush", s.handleFlush)
		v1.GET("/health", s.handleHealth)
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{})))
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			ports.String("method", c.Request.Method),
			ports.String("path", c.FullPath()),
			ports.Int("status", c.Writer.Status()),
			ports.Duration("latency", time.Since(start)),
		)
	}
}
