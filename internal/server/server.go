// Package server exposes observations from a configured met source over a
// small HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atmoskit/metkit/internal/config"
	"github.com/atmoskit/metkit/internal/coords"
	"github.com/atmoskit/metkit/internal/met"
)

// readTimeout bounds how long one request may spend reading the source.
const readTimeout = 30 * time.Second

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "metkit",
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by path and status code.",
	},
	[]string{"path", "status"},
)

// Server bundles the router and its dependencies.
type Server struct {
	cfg    config.ServerConfig
	source met.Reader
	site   *coords.Source
	engine *gin.Engine
}

// New constructs a server around a met source. site may be nil when no
// coordinate file is configured.
func New(cfg config.ServerConfig, source met.Reader, site *coords.Source) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(countRequests())

	if cfg.BearerToken != "" {
		engine.Use(bearerAuthMiddleware(cfg.BearerToken))
	}

	s := &Server{cfg: cfg, source: source, site: site, engine: engine}
	s.registerRoutes()
	return s
}

// Engine exposes the underlying gin engine for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.engine.Group("/api/v1")
	v1.GET("/observations", s.handleObservations)
	v1.GET("/observations.ndjson", s.handleObservationsNDJSON)
	v1.GET("/site", s.handleSite)
}

// handleObservations returns the source's observations in a JSON envelope.
// GET /api/v1/observations?start=RFC3339&end=RFC3339
func (s *Server) handleObservations(c *gin.Context) {
	obs, ok := s.readObservations(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": obs,
		"meta": gin.H{"count": len(obs)},
	})
}

// handleObservationsNDJSON streams the observations one JSON object per
// line, the same framing the CLI emits.
func (s *Server) handleObservationsNDJSON(c *gin.Context) {
	obs, ok := s.readObservations(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "application/x-ndjson")
	c.Status(http.StatusOK)
	if err := met.WriteNDJSON(c.Writer, obs); err != nil {
		// Headers are already out; nothing to do but drop the connection.
		_ = c.Error(err)
	}
}

// handleSite returns the configured site coordinates.
func (s *Server) handleSite(c *gin.Context) {
	if s.site == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no site coordinates configured"})
		return
	}
	lat, lon, alt := s.site.CoordsAt(time.Now().UTC())
	c.JSON(http.StatusOK, gin.H{
		"latitude":  lat,
		"longitude": lon,
		"altitude":  alt,
	})
}

func (s *Server) readObservations(c *gin.Context) ([]met.Observation, bool) {
	win, err := parseWindow(c.Query("start"), c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
	defer cancel()

	obs, err := s.source.Read(ctx, win)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	if obs == nil {
		obs = []met.Observation{}
	}
	return obs, true
}

// parseWindow builds a read window from optional start/end query params.
// Both must be given together.
func parseWindow(start, end string) (met.Window, error) {
	if start == "" && end == "" {
		return met.Window{}, nil
	}
	if start == "" || end == "" {
		return met.Window{}, fmt.Errorf("start and end must be given together")
	}
	first, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return met.Window{}, fmt.Errorf("invalid start time %q: %w", start, err)
	}
	last, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return met.Window{}, fmt.Errorf("invalid end time %q: %w", end, err)
	}
	if last.Before(first) {
		return met.Window{}, fmt.Errorf("end time is before start time")
	}
	return met.Window{First: first, Last: last}, nil
}

func countRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		requestsTotal.WithLabelValues(c.FullPath(), strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func bearerAuthMiddleware(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Health and metrics stay open for probes and scrapers.
		if c.Request.URL.Path == "/healthz" || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if token != expected {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
