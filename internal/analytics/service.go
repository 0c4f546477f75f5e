// Package analytics reduces raw sales into the dashboard's chart series and
// serves them through an in-process memo and a Redis-backed report cache.
package analytics

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/webpos/posdash/internal/gateway"
	"github.com/webpos/posdash/internal/pos"
)

// SalesSource supplies raw sales and the server-computed report.
type SalesSource interface {
	ListSales(ctx context.Context, q gateway.SalesQuery) ([]pos.Sale, error)
	SalesAnalytics(ctx context.Context) (pos.SalesAnalytics, error)
}

// CacheRecorder observes report lookups. result is "hit", "miss" or "memo".
type CacheRecorder interface {
	ObserveCache(report, result string)
}

// Options tune a Service.
type Options struct {
	Location *time.Location
	Now      func() time.Time
	Logger   *slog.Logger
	Metrics  CacheRecorder
	// MemoSize bounds the number of distinct sales sets whose report is
	// kept in process.
	MemoSize int
	// BuildTimeout bounds a shared report build. It runs detached from the
	// caller that started it so other callers waiting on it are unaffected
	// when that caller goes away.
	BuildTimeout time.Duration
}

// Service coordinates report building with the cache layers.
type Service struct {
	source  SalesSource
	cache   *Cache
	loc     *time.Location
	now     func() time.Time
	logger  *slog.Logger
	metrics CacheRecorder
	memo    *lru.Cache[string, Report]
	builds  singleflight.Group
	timeout time.Duration
}

// NewService wires a SalesSource with a Cache helper.
func NewService(source SalesSource, cache *Cache, opts Options) *Service {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	size := opts.MemoSize
	if size <= 0 {
		size = 64
	}
	memo, _ := lru.New[string, Report](size)
	timeout := opts.BuildTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Service{
		source:  source,
		cache:   cache,
		loc:     loc,
		now:     now,
		logger:  logger.With(slog.String("component", "analytics")),
		metrics: opts.Metrics,
		memo:    memo,
		timeout: timeout,
	}
}

// Location is the zone used for day and month bucketing.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Now returns the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

func (s *Service) today() string {
	return s.now().In(s.loc).Format(time.DateOnly)
}

func (s *Service) observe(report, result string) {
	if s.metrics != nil {
		s.metrics.ObserveCache(report, result)
	}
}

// Report aggregates already loaded sales. Results are memoized by the
// fingerprint of the sales and the current day, so unchanged inputs are not
// recomputed until the trailing windows move.
func (s *Service) Report(sales []pos.Sale) Report {
	now := s.now()
	sum, err := Fingerprint(sales)
	if err != nil {
		s.logger.Warn("fingerprint sales", slog.Any("error", err))
		return Aggregate(sales, now, s.loc)
	}
	key := strconv.FormatUint(sum, 16) + ":" + now.In(s.loc).Format(time.DateOnly)
	if report, ok := s.memo.Get(key); ok {
		s.observe(SourceClient, "memo")
		return report
	}
	report := Aggregate(sales, now, s.loc)
	s.memo.Add(key, report)
	return report
}

// Snapshot fetches every sale through the source and aggregates it. The
// result is cached in Redis for the day and concurrent callers share one
// build.
func (s *Service) Snapshot(ctx context.Context) (Report, error) {
	key, err := s.cache.BuildKey(ctx, keyClientReport(s.today()))
	if err != nil {
		return Report{}, err
	}
	return s.cached(ctx, SourceClient, key, func(ctx context.Context) (any, error) {
		sales, err := s.source.ListSales(ctx, gateway.SalesQuery{})
		if err != nil {
			return nil, err
		}
		return Aggregate(sales, s.now(), s.loc), nil
	})
}

// ServerReport returns the API's own analytics, cached like Snapshot.
func (s *Service) ServerReport(ctx context.Context) (Report, error) {
	key, err := s.cache.BuildKey(ctx, keyServerReport(s.today()))
	if err != nil {
		return Report{}, err
	}
	return s.cached(ctx, SourceServer, key, func(ctx context.Context) (any, error) {
		payload, err := s.source.SalesAnalytics(ctx)
		if err != nil {
			return nil, err
		}
		return Report{SalesAnalytics: payload, Source: SourceServer, GeneratedAt: s.now()}, nil
	})
}

func (s *Service) cached(ctx context.Context, source, key string, loader func(context.Context) (any, error)) (Report, error) {
	ch := s.builds.DoChan(key, func() (any, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		var report Report
		hit, err := s.cache.FetchJSON(buildCtx, key, &report, loader)
		if err != nil {
			return Report{}, err
		}
		if hit {
			s.observe(source, "hit")
		} else {
			s.observe(source, "miss")
		}
		return report, nil
	})
	select {
	case <-ctx.Done():
		return Report{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Report{}, res.Err
		}
		return res.Val.(Report), nil
	}
}

// Bump invalidates every cached report and the in-process memo.
func (s *Service) Bump(ctx context.Context) error {
	s.memo.Purge()
	ver, err := s.cache.Bump(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("analytics cache bumped", slog.Int64("version", ver))
	return nil
}
