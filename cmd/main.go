// Main entry point for the space explorer service
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"space-explorer/internal/cache"
	"space-explorer/internal/clients"
	"space-explorer/internal/config"
	"space-explorer/internal/handlers"
	"space-explorer/internal/logging"
	"space-explorer/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, warnings := config.LoadConfig()
	logger := logging.New(cfg.LogLevel)
	for _, w := range warnings {
		logger.Warn("config", "warning", w)
	}
	logger.Info("configuration loaded",
		"nasa_api_url", cfg.NasaAPIURL,
		"eonet_api_url", cfg.EonetAPIURL,
		"cache_ttl", cfg.CacheTTL())

	// Initialize cache
	store := cache.New(cfg.CacheTTL())

	// Initialize clients
	httpClient := clients.NewHTTPClient(cfg.HTTPTimeout(), logger)
	nasaClient := clients.NewNasaClient(httpClient, cfg.NasaAPIURL, cfg.NasaAPIKey)
	eonetClient := clients.NewEonetClient(httpClient, cfg.EonetAPIURL)

	// Initialize services
	explorer := services.NewExplorerService(store, nasaClient, eonetClient, cfg.EpicArchiveURL, logger)

	// Setup HTTP server
	gin.SetMode(gin.ReleaseMode)
	router := handlers.NewRouter(handlers.NewHandler(explorer), logger)
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handlers.WithCORS(router, cfg.CorsOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("space explorer listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	<-shutdown

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
