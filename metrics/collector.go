package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/marcelsud/webhook-courier/delivery"
	"github.com/marcelsud/webhook-courier/queue/redisqueue"
)

// SystemCollector implements Collector over the Redis job queue and the
// relational delivery store.
type SystemCollector struct {
	queue *redisqueue.Queue
	stats delivery.Stats
}

// NewSystemCollector creates a collector backed by the queue and the store stats
func NewSystemCollector(queue *redisqueue.Queue, stats delivery.Stats) *SystemCollector {
	return &SystemCollector{
		queue: queue,
		stats: stats,
	}
}

// Collect gathers all metrics
func (c *SystemCollector) Collect(ctx context.Context) (Metrics, error) {
	queueDepths, err := c.GetQueueDepths(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting queue depths: %w", err)
	}

	statusCounts, err := c.GetStatusCounts(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting status counts: %w", err)
	}

	throughput, err := c.GetThroughput(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting throughput: %w", err)
	}

	workers, err := c.GetActiveWorkers(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting active workers: %w", err)
	}

	return Metrics{
		QueueDepths:  queueDepths,
		StatusCounts: statusCounts,
		Throughput:   throughput,
		Workers:      workers,
		Timestamp:    time.Now(),
	}, nil
}

// GetQueueDepths returns the sizes of the ready stream and the scheduled set
func (c *SystemCollector) GetQueueDepths(ctx context.Context) (QueueDepths, error) {
	ready, err := c.queue.ReadyLen(ctx)
	if err != nil {
		return QueueDepths{}, fmt.Errorf("getting ready length: %w", err)
	}

	scheduled, err := c.queue.ScheduledLen(ctx)
	if err != nil {
		return QueueDepths{}, fmt.Errorf("getting scheduled length: %w", err)
	}

	return QueueDepths{Ready: ready, Scheduled: scheduled}, nil
}

// GetStatusCounts returns counts of webhooks grouped by status
func (c *SystemCollector) GetStatusCounts(ctx context.Context) (map[string]int64, error) {
	statusCounts := make(map[string]int64, 3)

	for _, status := range []delivery.Status{delivery.Queued, delivery.Succeeded, delivery.Failed} {
		count, err := c.stats.CountWebhooksByStatus(ctx, status)
		if err != nil {
			return nil, fmt.Errorf("counting %s webhooks: %w", status, err)
		}
		statusCounts[status.String()] = count
	}

	return statusCounts, nil
}

// GetThroughput counts successful deliveries over sliding time windows
func (c *SystemCollector) GetThroughput(ctx context.Context) (ThroughputMetrics, error) {
	now := time.Now().UTC()

	lastMinute, err := c.stats.CountSucceededAttemptsSince(ctx, now.Add(-1*time.Minute))
	if err != nil {
		return ThroughputMetrics{}, fmt.Errorf("counting last minute deliveries: %w", err)
	}

	lastFiveMinutes, err := c.stats.CountSucceededAttemptsSince(ctx, now.Add(-5*time.Minute))
	if err != nil {
		return ThroughputMetrics{}, fmt.Errorf("counting last five minutes deliveries: %w", err)
	}

	lastFifteenMinutes, err := c.stats.CountSucceededAttemptsSince(ctx, now.Add(-15*time.Minute))
	if err != nil {
		return ThroughputMetrics{}, fmt.Errorf("counting last fifteen minutes deliveries: %w", err)
	}

	return ThroughputMetrics{
		LastMinute:         lastMinute,
		LastFiveMinutes:    lastFiveMinutes,
		LastFifteenMinutes: lastFifteenMinutes,
	}, nil
}

// GetActiveWorkers returns workers with a live heartbeat
func (c *SystemCollector) GetActiveWorkers(ctx context.Context) ([]WorkerInfo, error) {
	heartbeats, err := c.queue.ActiveWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active workers: %w", err)
	}

	workers := make([]WorkerInfo, 0, len(heartbeats))
	for _, hb := range heartbeats {
		workers = append(workers, WorkerInfo{
			WorkerID:      hb.WorkerID,
			Status:        hb.Status,
			LastHeartbeat: hb.LastHeartbeat,
		})
	}

	return workers, nil
}
