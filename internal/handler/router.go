package handler

import (
	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter wires the serve-mode routes. Run endpoints sit behind auth; probes and metrics do not.
func NewRouter(runs *RunHandler, health *HealthHandler, auth *middleware.APIKeyAuth, gatherer prometheus.Gatherer, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	router.GET("/health/live", health.LivenessProbe)
	router.GET("/health/ready", health.ReadinessProbe)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1", auth.Handler())
	api.POST("/runs", runs.TriggerRun)
	api.GET("/runs/latest", runs.LatestExecution)

	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
		)
	}
}
