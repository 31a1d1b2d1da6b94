package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pickpost/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))

	// Health and metrics endpoints
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		drafts := v1.Group("/drafts")
		{
			drafts.POST("/generate", handler.GenerateDrafts)
			drafts.GET("", handler.ListDrafts)
			drafts.GET("/export", handler.ExportDrafts)
			drafts.POST("/send", handler.SendBatch)
			drafts.GET("/:id", handler.GetDraft)
			drafts.PATCH("/:id", handler.UpdateDraft)
			drafts.POST("/:id/approve", handler.ApproveDraft)
			drafts.POST("/:id/send", handler.SendDraft)
		}
	}

	return router
}
