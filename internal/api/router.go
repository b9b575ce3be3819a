package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/dreo-bridge-go/internal/api/middleware"
	"github.com/frostdev-ops/dreo-bridge-go/internal/config"
)

// NewRouter builds the HTTP router for the read/diagnostics API.
func NewRouter(cfg *config.Config, engine SyncEngine, logger *logrus.Logger) *gin.Engine {
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))

	h := NewHandlers(cfg, engine, logger)

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/devices", h.ListDevices)
		api.GET("/devices/:sn/state", h.GetDeviceState)
		api.GET("/diagnostics", h.Diagnostics)
	}

	return router
}
