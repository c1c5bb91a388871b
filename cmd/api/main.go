package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"docconvert/internal/cache"
	"docconvert/internal/config"
	"docconvert/internal/converter"
	"docconvert/internal/database"
	"docconvert/internal/http/middleware"
	"docconvert/internal/logging"
	"docconvert/internal/otel"
	"docconvert/internal/repository"
	"docconvert/internal/repository/postgres"
	"docconvert/internal/server"
	"docconvert/internal/service"
	"docconvert/internal/storage"
)

// @title Document Converter API
// @version 1.0
// @description Uploads documents and converts them to PDF.
// @BasePath /
func main() {
	// Load configuration from CONFIG_PATH and environment (.env auto-loaded if present)
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logging.InitLogger(
		cfg.Logger.File,
		cfg.Logger.MaxSizeMB,
		cfg.Logger.MaxBackups,
		cfg.Logger.MaxAgeDays,
		cfg.Logger.Compress,
		cfg.Logger.Level,
		cfg.Location(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error("server exited with error", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig) error {
	shutdownTracing, err := otel.Init(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logging.Warn("tracer shutdown failed", "error", err)
		}
	}()

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}
	convMetrics, err := converter.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("register conversion metrics: %w", err)
	}

	engines := converter.FromConfig(cfg.Converter).WithMetrics(convMetrics)
	if cfg.Converter.Engine != "remote" && cfg.Converter.RemoteURL == "" &&
		!converter.NewLibreOffice(cfg.Converter.SofficePath).Available() {
		logging.Warn("soffice not found, office documents will fail to convert", "path", cfg.Converter.SofficePath)
	}
	logging.Info("conversion engines ready", "engines", engines.Engines())

	opts := service.Options{Timeout: cfg.Converter.Timeout}
	if cfg.Converter.Validate {
		opts.Inspector = converter.NewValidator()
	}

	if cfg.Database.Enabled() {
		db, records, err := openRecords(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		opts.Records = records
	}

	if cfg.Cache.Enabled {
		rdb, err := cache.Connect(ctx, cfg.Cache.RedisHost, cfg.Cache.PDFDB)
		if err != nil {
			// the cache is an optimization; run without it
			logging.Warn("PDF cache disabled", "addr", cfg.Cache.RedisHost, "error", err)
		} else {
			defer rdb.Close()
			opts.Cache = cache.NewRedis(rdb, cfg.Cache.TTL)
		}
	}

	svc := service.NewConversionService(store, engines, opts)

	app := server.New(server.Deps{
		Config:         cfg,
		Service:        svc,
		Metrics:        httpMetrics,
		Gatherer:       reg,
		RateLimitStore: middleware.NewRateLimitStorage(cfg.Cache),
	})

	return server.Run(ctx, app, cfg.Addr())
}

func openStorage(cfg *config.AppConfig) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case "minio":
		s, err := storage.NewMinIO(cfg.MinIO)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize object storage: %w", err)
		}
		logging.Info("Using MinIO storage", "endpoint", cfg.MinIO.Endpoint, "bucket", cfg.MinIO.Bucket)
		return s, nil
	default:
		s, err := storage.NewDisk(cfg.Storage.UploadDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize upload directory: %w", err)
		}
		logging.Info("Using disk storage", "dir", cfg.Storage.UploadDir)
		return s, nil
	}
}

func openRecords(ctx context.Context, cfg *config.AppConfig) (*sql.DB, repository.ConversionRepository, error) {
	db, err := database.OpenRecords(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open conversion records: %w", err)
	}
	return db, postgres.NewConversionPostgres(db), nil
}
