package redisqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/marcelsud/webhook-courier/queue"
	"github.com/redis/go-redis/v9"
)

/* Redis Streams implementation of queue.Queue
 * Ready jobs live in a stream consumed through a consumer group, which
 * gives at-most-one active execution per job instance and at-least-once
 * redelivery of unacknowledged jobs. Delayed jobs (retry backoff) live
 * in a sorted set scored by due time and are promoted into the stream
 * by the promoter loop.
 */

const (
	streamKey    = "delivery:jobs"      // Ready jobs
	scheduledKey = "delivery:scheduled" // Delayed jobs, scored by due unix time
	groupName    = "delivery-workers"   // Consumer group

	// Pending entries older than this are considered abandoned by their
	// consumer and get reinjected into the stream.
	stalePendingAge = 30 * time.Second
)

type Queue struct {
	client   *redis.Client
	consumer string
}

// NewQueue creates a new Redis-backed job queue
func NewQueue(addr, password string, db int, consumer string) (*Queue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return NewQueueWithClient(client, consumer), nil
}

// NewQueueWithClient wraps an existing client, sharing its connection pool.
func NewQueueWithClient(client *redis.Client, consumer string) *Queue {
	if consumer == "" {
		consumer = "worker"
	}
	return &Queue{
		client:   client,
		consumer: consumer,
	}
}

// Enqueue makes a job immediately available to workers
func (q *Queue) Enqueue(ctx context.Context, job queue.Job) error {
	// Create consumer group if it doesn't exist
	q.client.XGroupCreateMkStream(ctx, streamKey, groupName, "0")
	// Ignore error if group already exists

	_, err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey,
		Values: map[string]interface{}{
			"webhook_id": job.WebhookID,
			"attempt":    job.Attempt,
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("adding job to stream: %w", err)
	}

	return nil
}

// EnqueueAfter schedules a job to become ready after the delay
func (q *Queue) EnqueueAfter(ctx context.Context, job queue.Job, delay time.Duration) error {
	member, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshaling job: %w", err)
	}

	due := time.Now().Add(delay)
	err = q.client.ZAdd(ctx, scheduledKey, redis.Z{
		Score:  float64(due.Unix()),
		Member: string(member),
	}).Err()
	if err != nil {
		return fmt.Errorf("scheduling job: %w", err)
	}

	return nil
}

// Dequeue reads ready jobs from the stream via the consumer group
func (q *Queue) Dequeue(ctx context.Context) ([]queue.Job, error) {
	// Create consumer group if it doesn't exist
	q.client.XGroupCreateMkStream(ctx, streamKey, groupName, "0")
	// Ignore error if group already exists

	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    groupName,
		Consumer: q.consumer,
		Streams:  []string{streamKey, ">"},
		Count:    1,
		Block:    1 * time.Second, // Shorter timeout for better responsiveness
	}).Result()
	if err == redis.Nil {
		// No jobs available
		return []queue.Job{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading from stream: %w", err)
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return []queue.Job{}, nil
	}

	var jobs []queue.Job
	for _, msg := range streams[0].Messages {
		webhookID, ok := msg.Values["webhook_id"].(string)
		if !ok {
			continue
		}

		attempt := 1
		if raw, ok := msg.Values["attempt"].(string); ok {
			if n, err := strconv.Atoi(raw); err == nil {
				attempt = n
			}
		}

		jobs = append(jobs, queue.Job{
			WebhookID: webhookID,
			Attempt:   attempt,
			StreamID:  msg.ID,
		})
	}

	return jobs, nil
}

// Ack marks a job as processed and removes it from the stream
func (q *Queue) Ack(ctx context.Context, job queue.Job) error {
	if job.StreamID == "" {
		return nil
	}

	if err := q.client.XAck(ctx, streamKey, groupName, job.StreamID).Err(); err != nil {
		return fmt.Errorf("acknowledging job: %w", err)
	}

	// Acknowledged entries carry no further value; trim them.
	q.client.XDel(ctx, streamKey, job.StreamID)

	return nil
}

/* RunPromoter moves due jobs from the scheduled set into the ready
 * stream and reclaims jobs whose consumer died without acknowledging.
 * It blocks until ctx is cancelled. One promoter per process is enough;
 * running several is safe because ZRem and XAUTOCLAIM decide the winner.
 */
func (q *Queue) RunPromoter(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.promoteDue(ctx)
			q.ReclaimStale(ctx, stalePendingAge)
		}
	}
}

/* ReclaimStale takes over pending entries idle for at least minIdle and
 * reinjects them as fresh stream entries, so consumers reading ">" see
 * them again. The stale entry is acknowledged once the replacement is
 * in; on failure it stays pending for a later pass.
 */
func (q *Queue) ReclaimStale(ctx context.Context, minIdle time.Duration) (int, error) {
	reclaimed := 0
	start := "0-0"

	for {
		msgs, next, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   streamKey,
			Group:    groupName,
			Consumer: q.consumer,
			MinIdle:  minIdle,
			Start:    start,
			Count:    100,
		}).Result()
		if err != nil {
			if err == redis.Nil {
				return reclaimed, nil
			}
			return reclaimed, fmt.Errorf("claiming stale jobs: %w", err)
		}

		for _, msg := range msgs {
			webhookID, ok := msg.Values["webhook_id"].(string)
			if !ok {
				// Malformed entry, nothing to redeliver.
				q.client.XAck(ctx, streamKey, groupName, msg.ID)
				q.client.XDel(ctx, streamKey, msg.ID)
				continue
			}

			attempt := 1
			if raw, ok := msg.Values["attempt"].(string); ok {
				if n, err := strconv.Atoi(raw); err == nil {
					attempt = n
				}
			}

			if err := q.Enqueue(ctx, queue.Job{WebhookID: webhookID, Attempt: attempt}); err != nil {
				continue
			}

			q.client.XAck(ctx, streamKey, groupName, msg.ID)
			q.client.XDel(ctx, streamKey, msg.ID)
			reclaimed++
		}

		if next == "0-0" || len(msgs) == 0 {
			return reclaimed, nil
		}
		start = next
	}
}

// PromoteDue makes every overdue scheduled job ready. Exposed for tests
// and for callers that want explicit control over promotion timing.
func (q *Queue) PromoteDue(ctx context.Context) (int, error) {
	return q.promoteDue(ctx)
}

func (q *Queue) promoteDue(ctx context.Context) (int, error) {
	now := strconv.FormatInt(time.Now().Unix(), 10)

	members, err := q.client.ZRangeByScore(ctx, scheduledKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("reading scheduled jobs: %w", err)
	}

	promoted := 0
	for _, member := range members {
		// Whoever removes the member owns the promotion.
		removed, err := q.client.ZRem(ctx, scheduledKey, member).Result()
		if err != nil || removed == 0 {
			continue
		}

		var job queue.Job
		if err := json.Unmarshal([]byte(member), &job); err != nil {
			continue
		}

		if err := q.Enqueue(ctx, job); err != nil {
			// Put it back so the retry is not lost.
			q.client.ZAdd(ctx, scheduledKey, redis.Z{Score: float64(time.Now().Unix()), Member: member})
			continue
		}
		promoted++
	}

	return promoted, nil
}

// ReadyLen returns the number of jobs waiting in the ready stream
func (q *Queue) ReadyLen(ctx context.Context) (int64, error) {
	n, err := q.client.XLen(ctx, streamKey).Result()
	if err != nil && err != redis.Nil {
		return 0, fmt.Errorf("reading stream length: %w", err)
	}
	return n, nil
}

// ScheduledLen returns the number of jobs waiting on a retry delay
func (q *Queue) ScheduledLen(ctx context.Context) (int64, error) {
	n, err := q.client.ZCard(ctx, scheduledKey).Result()
	if err != nil && err != redis.Nil {
		return 0, fmt.Errorf("reading scheduled set length: %w", err)
	}
	return n, nil
}

// Close closes the Redis connection
func (q *Queue) Close(ctx context.Context) error {
	return q.client.Close()
}

// GetClient returns the underlying Redis client for advanced operations
func (q *Queue) GetClient() *redis.Client {
	return q.client
}
