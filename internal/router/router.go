package router

import (
	"github.com/gin-gonic/gin"

	"brfiq/internal/config"
	"brfiq/internal/handler"
	"brfiq/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	healthH *handler.HealthHandler,
	jobH *handler.JobHandler,
	docH *handler.DocumentHandler,
) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.Auth.Secret))

	jobs := v1.Group("/jobs")
	jobs.POST("", jobH.Create)
	jobs.GET("/:id", jobH.GetByID)
	jobs.GET("/:id/document", jobH.GetDocument)

	docs := v1.Group("/documents")
	docs.GET("", docH.List)
	docs.GET("/export", docH.Export)
	docs.GET("/:id", docH.GetByID)

	return r
}
