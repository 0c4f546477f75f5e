package perf

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/webpos/posdash/internal/analytics"
	"github.com/webpos/posdash/internal/gateway"
	jobmetrics "github.com/webpos/posdash/internal/jobs"
	"github.com/webpos/posdash/internal/pos"
	"github.com/webpos/posdash/jobs"
)

type ledgerSource struct {
	sales []pos.Sale
	err   error
}

func (s *ledgerSource) ListSales(ctx context.Context, q gateway.SalesQuery) ([]pos.Sale, error) {
	return s.sales, s.err
}

func (s *ledgerSource) SalesAnalytics(ctx context.Context) (pos.SalesAnalytics, error) {
	return pos.EmptyAnalytics(), s.err
}

func TestWarmupThroughputAndReliability(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(reg)
	source := &ledgerSource{sales: ledger(20000)}
	svc := analytics.NewService(source, analytics.NewCache(nil, time.Minute), analytics.Options{
		Now: func() time.Time { return fixedNow },
	})
	job := jobs.NewAnalyticsWarmupJob(svc, nil, metrics)
	task, err := jobs.NewWarmupTask(jobs.WarmupPayload{Reason: "perf"})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}

	for i := 0; i < 20; i++ {
		if err := job.Handle(context.Background(), task); err != nil {
			t.Fatalf("warmup run %d: %v", i, err)
		}
	}

	source.err = errors.New("upstream down")
	for i := 0; i < 2; i++ {
		if err := job.Handle(context.Background(), task); err == nil {
			t.Fatal("expected error to propagate")
		}
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	labels := map[string]string{"job": jobs.JobAnalyticsWarmup}
	success := metricValue(t, families, "posdash_jobs_total", map[string]string{"job": jobs.JobAnalyticsWarmup, "status": "success"})
	failure := metricValue(t, families, "posdash_jobs_total", map[string]string{"job": jobs.JobAnalyticsWarmup, "status": "failure"})
	if ratio := success / (success + failure); ratio < 0.9 {
		t.Fatalf("warmup success ratio too low: %f", ratio)
	}
	if last := metricValue(t, families, "posdash_job_last_success_timestamp_seconds", labels); last <= 0 {
		t.Fatalf("last success timestamp not set")
	}
	if mean := histogramMean(t, families, "posdash_job_duration_seconds", labels); mean > 2.0 {
		t.Fatalf("warmup duration above budget: %f", mean)
	}
}

func metricValue(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				switch fam.GetType() {
				case dto.MetricType_COUNTER:
					return metric.GetCounter().GetValue()
				case dto.MetricType_GAUGE:
					return metric.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func histogramMean(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				hist := metric.GetHistogram()
				if hist == nil || hist.GetSampleCount() == 0 {
					t.Fatalf("histogram %s missing samples", name)
				}
				return hist.GetSampleSum() / float64(hist.GetSampleCount())
			}
		}
	}
	t.Fatalf("histogram %s with labels %v not found", name, labels)
	return 0
}

func hasLabels(metric *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, lp := range metric.GetLabel() {
		want, ok := labels[lp.GetName()]
		if !ok {
			continue
		}
		if lp.GetValue() != want {
			return false
		}
		matched++
	}
	return matched == len(labels)
}
