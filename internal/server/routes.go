package server

import (
	"github.com/gin-gonic/gin"
)

func (s *Server) setupRoutes() {
	gin.SetMode(s.ginMode)
	s.router = gin.New()

	s.router.Use(s.recoveryMiddleware())
	s.router.Use(s.requestIDMiddleware())
	s.router.Use(s.maxBodySizeMiddleware())
	if s.config.Proxy.Server.CORSEnabled {
		s.router.Use(s.corsMiddleware())
	}
	if s.rateLimiter != nil {
		s.router.Use(s.rateLimitMiddleware())
	}

	// Public routes (no auth)
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/api/stats", s.getStatsData)

	// API routes (auth required when enabled)
	api := s.router.Group("/v1")
	api.Use(s.authenticateClient)
	{
		api.GET("/models", s.listModels)
		api.POST("/chat/completions", s.chatCompletions)
		api.POST("/completions", s.completions)
		api.POST("/embeddings", s.embeddings)
	}

	// Everything else is forwarded verbatim to the backend.
	s.router.NoRoute(s.authenticateClient, s.catchAll)
}
