// Package jobs runs the dashboard's background work on asynq.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAnalyticsWarmup rebuilds the cached analytics reports.
	TaskAnalyticsWarmup = "analytics:warmup"
)

// WarmupPayload describes one warmup run. Invalidate bumps the cache
// version first so stale reports are rebuilt rather than reused.
type WarmupPayload struct {
	Invalidate bool   `json:"invalidate"`
	Reason     string `json:"reason,omitempty"`
}

// NewWarmupTask constructs an analytics warmup task.
func NewWarmupTask(payload WarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnalyticsWarmup, data), nil
}
