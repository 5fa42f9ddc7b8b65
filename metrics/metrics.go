package metrics

import (
	"context"
	"time"
)

// Metrics represents the current state of the delivery system.
type Metrics struct {
	// QueueDepths holds the number of jobs waiting in the queue
	QueueDepths QueueDepths `json:"queue_depths"`

	// StatusCounts maps status name to count of webhooks in that status
	StatusCounts map[string]int64 `json:"status_counts"`

	// Throughput represents webhooks delivered per time window
	Throughput ThroughputMetrics `json:"throughput"`

	// Workers lists active delivery workers
	Workers []WorkerInfo `json:"workers"`

	// Timestamp when metrics were collected
	Timestamp time.Time `json:"timestamp"`
}

// QueueDepths holds the sizes of the two job queues.
type QueueDepths struct {
	// Ready is the number of jobs available for immediate pickup
	Ready int64 `json:"ready"`

	// Scheduled is the number of retry jobs waiting for their due time
	Scheduled int64 `json:"scheduled"`
}

// ThroughputMetrics represents webhooks delivered over different time windows.
type ThroughputMetrics struct {
	// LastMinute is webhooks delivered in the last 1 minute
	LastMinute int64 `json:"last_minute"`

	// LastFiveMinutes is webhooks delivered in the last 5 minutes
	LastFiveMinutes int64 `json:"last_five_minutes"`

	// LastFifteenMinutes is webhooks delivered in the last 15 minutes
	LastFifteenMinutes int64 `json:"last_fifteen_minutes"`
}

// WorkerInfo represents information about an active worker.
type WorkerInfo struct {
	// WorkerID is a unique identifier for the worker
	WorkerID string `json:"worker_id"`

	// Status is the current status of the worker (e.g., "idle", "processing")
	Status string `json:"status"`

	// LastHeartbeat is the timestamp of the last heartbeat
	LastHeartbeat time.Time `json:"last_heartbeat"`
}

// Collector defines the interface for collecting metrics from the delivery system.
type Collector interface {
	// Collect gathers current metrics from the system
	Collect(ctx context.Context) (Metrics, error)

	// GetQueueDepths returns the number of jobs in the ready and scheduled queues
	GetQueueDepths(ctx context.Context) (QueueDepths, error)

	// GetStatusCounts returns the count of webhooks by status
	GetStatusCounts(ctx context.Context) (map[string]int64, error)

	// GetThroughput returns webhooks delivered over time windows
	GetThroughput(ctx context.Context) (ThroughputMetrics, error)

	// GetActiveWorkers returns information about active workers
	GetActiveWorkers(ctx context.Context) ([]WorkerInfo, error)
}
