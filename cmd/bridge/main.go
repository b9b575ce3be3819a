package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/frostdev-ops/dreo-bridge-go/internal/adapters/dreo"
	"github.com/frostdev-ops/dreo-bridge-go/internal/api"
	"github.com/frostdev-ops/dreo-bridge-go/internal/config"
	devsync "github.com/frostdev-ops/dreo-bridge-go/internal/core/sync"
	"github.com/frostdev-ops/dreo-bridge-go/internal/metrics"
	"github.com/frostdev-ops/dreo-bridge-go/pkg/logger"
)

func main() {
	log := logger.New("info", "json")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}
	log = logger.New(cfg.Logging.Level, cfg.Logging.Format)

	collector := metrics.NewCollector(prometheus.DefaultRegisterer)
	engine := devsync.NewEngine(cfg, collector, log)

	// Startup covers login, device enumeration and initial seeding
	startCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := engine.Start(startCtx); err != nil {
		cancel()
		if dreo.IsAuthError(err) {
			log.WithError(err).Fatal("Dreo login rejected, check credentials")
		}
		log.WithError(err).Fatal("Failed to start sync engine")
	}
	cancel()

	router := api.NewRouter(cfg, engine, log)
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown failed")
	}

	engine.Stop()
}
