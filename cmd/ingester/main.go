package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/config"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/db"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/db/repository"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/handler"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/metrics"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/middleware"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/service"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/service/gate"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/service/ingest"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/internal/service/youtube"
	"github.com/ad-tracker/youtube-shorts-ingestion-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		logger.Log.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, cfg)
	stop()

	_ = logger.Sync()
	os.Exit(code)
}

// run wires the job and returns the process exit code.
func run(ctx context.Context, cfg *config.Config) int {
	log := logger.Log

	pool, err := db.NewPool(ctx, cfg.Database.DBConfig())
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return exitCode(cfg, true)
	}
	defer db.Close(pool)

	videoRepo := repository.NewVideoRepository(pool)
	runLogRepo := repository.NewRunLogRepository(pool)

	var ytOpts []option.ClientOption
	if cfg.YouTube.Endpoint != "" {
		ytOpts = append(ytOpts, option.WithEndpoint(cfg.YouTube.Endpoint))
	}
	ytClient, err := youtube.NewClient(ctx, cfg.YouTube.APIKey, ytOpts...)
	if err != nil {
		log.Error("Failed to create YouTube client", zap.Error(err))
		return exitCode(cfg, true)
	}

	// Validate checked the zone already.
	location, _ := time.LoadLocation(cfg.Ingestion.Timezone)
	runGate := gate.New(videoRepo, gate.SystemClock, gate.Config{
		Location:   location,
		TargetHour: cfg.Ingestion.TargetHour,
		DailyMax:   cfg.Ingestion.DailyMax,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	deps := ingest.Dependencies{
		Gate:    runGate,
		Catalog: ytClient,
		Store:   videoRepo,
		RunLog:  runLogRepo,
		Metrics: m,
		Logger:  log.Named("ingest"),
	}

	var publisher *service.VideoPublisher
	if cfg.RabbitMQ.Enabled {
		publisher, err = service.NewVideoPublisher(&cfg.RabbitMQ, log.Named("publisher"))
		if err != nil {
			// Videos are committed before publishing, so the job still runs without the broker.
			log.Warn("Failed to connect to RabbitMQ, ingested videos will not be published", zap.Error(err))
		} else {
			defer publisher.Close()
			deps.Publisher = publisher
		}
	}

	orchestrator := ingest.NewOrchestrator(deps, ingest.Config{
		Channels:           cfg.Ingestion.Channels,
		RequestDelay:       cfg.Ingestion.RequestDelay,
		MaxDurationSeconds: int(cfg.Ingestion.MaxDuration / time.Second),
	})

	if cfg.Server.Enabled {
		if cfg.Logging.Level != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}
		var health handler.HealthChecker
		if publisher != nil {
			health = publisher
		}
		return serve(ctx, cfg, handler.NewRouter(
			handler.NewRunHandler(orchestrator, runLogRepo, log.Named("http")),
			handler.NewHealthHandler(pool, health),
			middleware.NewAPIKeyAuth(cfg.Server.APIKeys, log.Named("auth")),
			registry,
			log.Named("http"),
		))
	}

	result := orchestrator.Run(ctx)
	log.Info("Run finished",
		zap.String("run_id", result.RunID.String()),
		zap.String("status", string(result.Status)),
		zap.Int("video_count", result.VideoCount),
		zap.Int("quota_used", result.QuotaUsed),
		zap.Duration("duration", result.Duration()),
	)
	return exitCode(cfg, result.Failed())
}

// exitCode keeps the job's clean exit on failure unless failonerror is set.
func exitCode(cfg *config.Config, failed bool) int {
	if failed && cfg.Ingestion.FailOnError {
		return 1
	}
	return 0
}

func serve(ctx context.Context, cfg *config.Config, router *gin.Engine) int {
	log := logger.Log

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", zap.Int("port", cfg.Server.Port))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", zap.Error(err))
			return 1
		}
		return 0
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
		return 1
	}

	log.Info("Server stopped")
	return 0
}
