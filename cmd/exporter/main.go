package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zgpcy/toutsurmoneau-exporter/internal/collector"
	"github.com/zgpcy/toutsurmoneau-exporter/internal/config"
	"github.com/zgpcy/toutsurmoneau-exporter/internal/logger"
	"github.com/zgpcy/toutsurmoneau-exporter/internal/server"
	"github.com/zgpcy/toutsurmoneau-exporter/internal/suez"
	"github.com/zgpcy/toutsurmoneau-exporter/internal/version"
)

const (
	// DefaultShutdownTimeout is the maximum time to wait for graceful shutdown
	DefaultShutdownTimeout = 30 * time.Second
)

var (
	configPath = flag.String("config", "config.yaml", "Path to configuration file")
	envOnly    = flag.Bool("env", false, "Ignore the configuration file and read TSME_* environment variables only")
)

func loadConfig() (*config.Config, error) {
	if !*envOnly {
		return config.Load(*configPath)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	flag.Parse()

	// Load configuration first (need log level from config)
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logger
	logger := logger.New(cfg.LogLevel)
	logger.Info("Water consumption exporter starting",
		"version", version.Version,
		"config_path", *configPath,
		"env_only", *envOnly)

	logger.Info("Configuration loaded successfully",
		"provider", cfg.Provider,
		"counter_id", cfg.CounterID,
		"refresh_interval_seconds", cfg.RefreshInterval,
		"http_port", cfg.HTTPPort,
		"api_timeout_seconds", cfg.APITimeout,
		"daily_metrics", cfg.DailyMetricsEnabled())

	// Create portal client
	client, err := suez.NewClient(suez.Options{
		Username:  cfg.Username,
		Password:  cfg.Password,
		CounterID: cfg.CounterID,
		Provider:  cfg.Provider,
		Timeout:   cfg.APITimeoutDuration(),
		Logger:    logger,
	})
	if err != nil {
		logger.Error("Failed to create portal client", "error", err)
		os.Exit(1)
	}
	logger.Info("Portal client initialized", "attribution", client.Attribution())

	// Create water collector
	waterCollector := collector.NewWaterCollector(client, cfg, logger)

	// Register collector with Prometheus
	if err := prometheus.Register(waterCollector); err != nil {
		logger.Error("Failed to register collector", "error", err)
		os.Exit(1)
	}
	logger.Info("Collector registered with Prometheus")

	// Register Go runtime metrics (memory, goroutines, GC stats)
	if err := prometheus.Register(prometheus.NewGoCollector()); err != nil {
		logger.Warn("Failed to register Go collector", "error", err)
	} else {
		logger.Info("Go runtime metrics registered")
	}

	// Register process metrics (CPU, memory, file descriptors)
	if err := prometheus.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{})); err != nil {
		logger.Warn("Failed to register process collector", "error", err)
	} else {
		logger.Info("Process metrics registered")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create and start HTTP server
	logger.Info("Creating HTTP server", "port", cfg.HTTPPort)
	srv := server.NewServer(cfg, waterCollector, logger)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	// The first poll runs before the refresh goroutine starts; keep probes answering meanwhile
	logger.Info("Starting background water data refresh")
	go waterCollector.StartBackgroundRefresh(ctx)

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("Server error", "error", err)
		os.Exit(1)

	case sig := <-shutdown:
		logger.Info("Received shutdown signal, starting graceful shutdown", "signal", sig.String())

		// Cancel background refresh
		cancel()

		// Shutdown server with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during server shutdown", "error", err)
			// Force shutdown
			os.Exit(1)
		}

		logger.Info("Server stopped gracefully")
	}
}
