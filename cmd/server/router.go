package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"incubation-backend/internal/config"
	"incubation-backend/internal/handlers"
	"incubation-backend/internal/metrics"
	"incubation-backend/internal/middleware"
	"incubation-backend/internal/workflow"
)

// corsConfig allows every origin when the list is empty or contains "*".
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

func newRouter(cfg *config.Config, service *workflow.Service, db handlers.Pinger, logger *slog.Logger) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))
	router.Use(metrics.Middleware())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check and metrics (no auth)
	router.GET("/health", handlers.NewHealthHandler(db).Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))
	handlers.RegisterRoutes(api, service, logger)

	return router
}
