package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/webpos/posdash/internal/analytics"
	"github.com/webpos/posdash/internal/app"
	dashboardhttp "github.com/webpos/posdash/internal/dashboard/http"
	"github.com/webpos/posdash/internal/gateway"
	"github.com/webpos/posdash/internal/observability"
	"github.com/webpos/posdash/internal/platform/cache"
	"github.com/webpos/posdash/internal/state"
	"github.com/webpos/posdash/jobs"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Default().Warn("load .env", slog.Any("error", err))
	}
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	metrics := observability.NewMetrics()

	gw := gateway.New(gateway.Options{
		BaseURL:    cfg.POSAPIBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.POSAPITimeout},
		Logger:     logger,
		Metrics:    metrics,
		Location:   cfg.Location(),
	})

	redisClient := cache.Optional(ctx, cfg.RedisAddr, logger)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	analyticsService := analytics.NewService(gw, analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL), analytics.Options{
		Location: cfg.Location(),
		Logger:   logger,
		Metrics:  metrics,
	})

	if len(os.Args) > 1 {
		os.Exit(runCommand(ctx, cfg, analyticsService, os.Args[1:]))
	}

	registry := state.NewRegistry(cfg.SessionCapacity, cfg.SessionTTL, func(id string) *state.AppState {
		return state.New(id, gw, state.Options{
			Policy:   cfg.Policy(),
			Location: cfg.Location(),
			Locale:   cfg.LocaleTag(),
			Logger:   logger,
			Reporter: analyticsService,
		})
	})

	var (
		enqueuer  dashboardhttp.Enqueuer
		inspector jobs.QueueInspector
	)
	if redisClient != nil {
		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		jobClient := jobs.NewClient(redisOpts)
		defer func() {
			if err := jobClient.Close(); err != nil {
				logger.Warn("job client close", slog.Any("error", err))
			}
		}()
		enqueuer = jobClient

		asynqInspector := asynq.NewInspector(redisOpts)
		defer func() {
			if err := asynqInspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		inspector = asynqInspector
	}

	dashboardHandler := dashboardhttp.NewHandler(logger, registry, gw, analyticsService, enqueuer)
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		DashboardHandler: dashboardHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("pos_api", cfg.POSAPIBaseURL))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
