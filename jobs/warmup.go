package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/webpos/posdash/internal/analytics"
	jobmetrics "github.com/webpos/posdash/internal/jobs"
)

// JobAnalyticsWarmup labels warmup runs in job metrics and logs.
const JobAnalyticsWarmup = "analytics_warmup"

// Warmer builds and caches the analytics reports.
type Warmer interface {
	Snapshot(ctx context.Context) (analytics.Report, error)
	ServerReport(ctx context.Context) (analytics.Report, error)
	Bump(ctx context.Context) error
}

// AnalyticsWarmupJob primes the client and server analytics reports so the
// first dashboard render of the day hits the cache.
type AnalyticsWarmupJob struct {
	Analytics Warmer
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	Timeout   time.Duration
}

// NewAnalyticsWarmupJob wires dependencies for the warmup handler.
func NewAnalyticsWarmupJob(svc Warmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *AnalyticsWarmupJob {
	return &AnalyticsWarmupJob{Analytics: svc, Logger: logger, Metrics: metrics, Timeout: time.Minute}
}

// Handle processes TaskAnalyticsWarmup tasks.
func (j *AnalyticsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Analytics == nil {
		return errors.New("analytics warmup: handler not configured")
	}
	var payload WarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	tracker := j.Metrics.Track(JobAnalyticsWarmup)
	return tracker.End(j.run(ctx, payload))
}

func (j *AnalyticsWarmupJob) run(ctx context.Context, payload WarmupPayload) error {
	logger := j.logger().With(slog.Bool("invalidate", payload.Invalidate), slog.String("reason", payload.Reason))
	start := time.Now()
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	if payload.Invalidate {
		if err := j.Analytics.Bump(ctx); err != nil {
			logger.Error("bump analytics cache", slog.Any("error", err))
			return err
		}
	}
	if _, err := j.Analytics.Snapshot(ctx); err != nil {
		logger.Error("warm client report", slog.Any("error", err))
		return err
	}
	if _, err := j.Analytics.ServerReport(ctx); err != nil {
		logger.Error("warm server report", slog.Any("error", err))
		return err
	}
	logger.Info("completed analytics warmup", slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *AnalyticsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", JobAnalyticsWarmup))
	}
	return slog.Default().With(slog.String("job", JobAnalyticsWarmup))
}
