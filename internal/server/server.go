package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"openai2local/internal/cache"
	"openai2local/internal/config"
	"openai2local/internal/core"
	"openai2local/internal/forward"
	"openai2local/internal/mapping"
	"openai2local/internal/metrics"
	"openai2local/internal/transform"

	"github.com/gin-gonic/gin"
)

// Server application server
type Server struct {
	addr    string
	ginMode string

	router    *gin.Engine
	forwarder *forward.Forwarder

	mapper     *mapping.Mapper
	reqNorm    *transform.RequestNormalizer
	respNorm   *transform.ResponseNormalizer
	backendURL string

	cache          *cache.LRUCache
	metricsService *metrics.MetricsService

	validClientKeys map[string]bool
	authEnabled     bool

	config config.ServerConfig

	rateLimiter *rateLimiter

	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// NewServer creates a new server instance
func NewServer(cfg config.ServerConfig) (*Server, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required in ServerConfig")
	}
	if cfg.Storage == nil {
		return nil, fmt.Errorf("storage is required in ServerConfig")
	}

	backend, err := cfg.Proxy.Primary()
	if err != nil {
		return nil, err
	}

	cfg.Logger.Info("Forwarding requests to: %s", backend.URL)

	mapper := mapping.NewMapper(cfg.Proxy.ModelMapping)
	if mapper.Len() > 0 {
		cfg.Logger.Info("Loaded %d model mappings", mapper.Len())
	}

	cacheService := cache.NewCache()

	metricsService := metrics.NewMetricsService(metrics.MetricsConfig{
		SaveInterval: core.MinSaveInterval,
		HistorySize:  core.HistoryBufferSize,
		Storage:      cfg.Storage,
		Logger:       cfg.Logger,
	})

	if err := metricsService.LoadStats(); err != nil {
		cfg.Logger.Warn("Failed to load historical stats: %v", err)
	}

	validClientKeys := make(map[string]bool)
	for _, key := range cfg.Proxy.Authentication.ValidAPIKeys {
		validClientKeys[key] = true
	}

	if cfg.Proxy.Authentication.Enabled && len(validClientKeys) == 0 {
		cfg.Logger.Warn("Authentication enabled but no API keys configured; all requests will be rejected")
	}

	var limiter *rateLimiter
	if cfg.Proxy.Server.RateLimit > 0 {
		limiter = newRateLimiter(cfg.Proxy.Server.RateLimit)
	}

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	server := &Server{
		addr:            fmt.Sprintf("%s:%d", cfg.Proxy.Server.Host, cfg.Proxy.Server.Port),
		ginMode:         cfg.GinMode,
		forwarder:       forward.NewForwarder(backend, cfg.HTTPClientSettings, cfg.Logger),
		mapper:          mapper,
		reqNorm:         transform.NewRequestNormalizer(mapper, cfg.Proxy.DefaultModel, cfg.Proxy.Logging.IncludeRequestBody, cfg.Logger),
		respNorm:        transform.NewResponseNormalizer(cfg.Proxy.Logging.IncludeResponseBody, cfg.Logger),
		backendURL:      backend.URL,
		cache:           cacheService,
		metricsService:  metricsService,
		validClientKeys: validClientKeys,
		authEnabled:     cfg.Proxy.Authentication.Enabled,
		config:          cfg,
		rateLimiter:     limiter,
		shutdownCtx:     shutdownCtx,
		shutdownCancel:  shutdownCancel,
	}

	server.setupRoutes()

	return server, nil
}

// Run runs the server
func (s *Server) Run() error {
	s.setupGracefulShutdown()

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      0, // SSE relays may legitimately run unbounded
	}

	go func() {
		<-s.shutdownCtx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			s.config.Logger.Error("Server shutdown error: %v", err)
		}
	}()

	s.config.Logger.Info("Server starting on %s", s.addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (s *Server) setupGracefulShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		s.config.Logger.Info("Shutdown signal received, shutting down gracefully...")
		s.shutdownCancel()
	}()
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"backend": s.backendURL,
	})
}

func (s *Server) getStatsData(c *gin.Context) {
	stats := s.metricsService.GetRequestStats()
	periodStats := metrics.GetPeriodStats(stats.RequestHistory, 24, 24*7, 24*30)

	c.JSON(http.StatusOK, gin.H{
		"currentTime":        time.Now().Format(core.TimeFormatDateTime),
		"currentQPS":         fmt.Sprintf("%.3f", s.metricsService.GetQPS()),
		"totalRequests":      stats.TotalRequests,
		"successfulRequests": stats.SuccessfulRequests,
		"failedRequests":     stats.FailedRequests,
		"totalRecords":       len(stats.RequestHistory),
		"stats24h":           periodStats[24],
		"stats7d":            periodStats[24*7],
		"stats30d":           periodStats[24*30],
	})
}

// Close closes the server
func (s *Server) Close() error {
	if s.shutdownCancel != nil {
		s.shutdownCancel()
	}

	var closeErr error

	if s.metricsService != nil {
		if err := s.metricsService.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close metrics service: %w", err))
		}
	}

	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close cache service: %w", err))
		}
	}

	return closeErr
}
