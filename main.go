package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"geolife-pipeline/internal/config"
	"geolife-pipeline/internal/database"
	"geolife-pipeline/internal/ingest"
	"geolife-pipeline/internal/metrics"
	"geolife-pipeline/internal/middleware"
	"geolife-pipeline/internal/query"
	"geolife-pipeline/internal/report"
)

func main() {
	cmd := "help"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "ingest":
		runIngest()
	case "report":
		runReport()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: geolife-pipeline <command>

Commands:
  ingest    Reset the store and ingest the dataset directory
  report    Run the analytic query suite and print the report
  help      Show this message

Configuration is read from the environment (and a .env file if present).
DATA_DIR and LABELED_IDS_PATH are required.
`)
}

func runIngest() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting geolife-pipeline ingestion",
		"data_dir", cfg.DataDir,
		"database", cfg.DatabasePath,
		"workers", cfg.IngestWorkers,
		"log_level", cfg.LogLevel)

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Init(); err != nil {
		logger.Error("Failed to initialize database schema", "error", err)
		os.Exit(1)
	}

	// Cancel ingestion on interrupt so workers stop between files.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutting down gracefully...")
		cancel()
	}()

	var metricsServer *http.Server
	if cfg.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", middleware.WrapHandler(metrics.EndpointMetrics, promhttp.Handler().ServeHTTP))
		metricsMux.Handle("/health", middleware.WrapHandler(metrics.EndpointHealth, func(w http.ResponseWriter, r *http.Request) {
			if err := db.Health(); err != nil {
				http.Error(w, "Unhealthy", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		}))

		metricsAddr := fmt.Sprintf("%s:%d", cfg.MetricsHost, cfg.MetricsPort)
		metricsServer = &http.Server{
			Addr:    metricsAddr,
			Handler: metricsMux,
		}

		go func() {
			logger.Info("Metrics server listening", "addr", metricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
	}

	ing := ingest.NewIngester(db, cfg.IngestWorkers)
	runErr := ing.Run(ctx, cfg.DataDir, cfg.LabeledIDsPath)

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server shutdown failed", "error", err)
		}
	}

	if runErr != nil {
		logger.Error("Ingestion failed", "error", runErr)
		os.Exit(1)
	}
}

func runReport() {
	// Keep structured logging out of the report output
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	engine := query.NewEngine(db)
	params := report.Params{
		DistanceUser: cfg.DistanceUser,
		DistanceMode: cfg.DistanceMode,
		DistanceYear: cfg.DistanceYear,
	}
	if err := report.Run(engine, params, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Report failed: %v\n", err)
		os.Exit(1)
	}
}
