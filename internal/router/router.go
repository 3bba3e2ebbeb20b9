package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "sevoc/docs" // registers the OpenAPI document
	"sevoc/internal/config"
	"sevoc/internal/handler"
	"sevoc/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	log *zap.Logger,
	evaluateH *handler.EvaluateHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.SecureHeaders(cfg.Server.Environment))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/", healthH.Root)
	r.GET("/status", healthH.Status)
	r.GET("/healthz", healthH.Liveness)

	r.POST("/evaluate", evaluateH.Evaluate)

	if cfg.Server.Environment != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.NoRoute(healthH.NotFound)

	return r
}
