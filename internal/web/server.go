// Package web serves the imagery search workflow over HTTP: AOI
// computation, tide uploads, catalog search, preview mosaics, orders and
// CSV export.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/htarver/tidesat/internal/config"
	"github.com/htarver/tidesat/internal/exposure"
	"github.com/htarver/tidesat/internal/planet"
	"github.com/htarver/tidesat/internal/tides"
)

// Server hosts the HTTP API
type Server struct {
	cfg       *config.Config
	log       *slog.Logger
	router    *gin.Engine
	startedAt time.Time

	search    planet.SearchClient
	orders    planet.OrderClient
	tiles     planet.TileClient
	exposures *exposure.Repository
	parser    *tides.Parser
	store     *seriesStore

	// pollInterval paces the order status stream
	pollInterval time.Duration
}

// NewServer wires the API against the live Planet endpoints.
func NewServer(cfg *config.Config, log *slog.Logger) *Server {
	s := &Server{
		cfg:          cfg,
		log:          log,
		startedAt:    time.Now(),
		search:       planet.NewDataClient(cfg.Planet.BaseURL, cfg.Planet.APIKey),
		orders:       planet.NewOrdersClient(cfg.Planet.BaseURL, cfg.Planet.APIKey),
		tiles:        planet.NewTilesClient(cfg.Planet.TilesURL, cfg.Planet.APIKey),
		exposures:    exposure.NewRepository(cfg.Database.Path),
		parser:       tides.NewParserWithOffset(cfg.Tides.LocalOffsetHours),
		store:        newSeriesStore(),
		pollInterval: planet.DefaultPollInterval,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())
	router.Use(metricsMiddleware())

	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/aoi", s.handleAOI)
		api.POST("/tides", s.handleTidesUpload)
		api.GET("/tides/:id/nearest", s.handleNearestTide)
		api.POST("/search", s.handleSearch)
		api.GET("/scenes/:itemType/:id/preview", s.handleScenePreview)
		api.POST("/orders", s.handleCreateOrder)
		api.GET("/orders/:id", s.handleGetOrder)
		api.POST("/export", s.handleExportCSV)
	}

	router.GET("/ws/orders/:id", s.handleOrderSocket)

	return router
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// requestLogger emits one structured line per request
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		s.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client", c.ClientIP(),
		)
	}
}
