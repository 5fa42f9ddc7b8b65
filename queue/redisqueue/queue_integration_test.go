//go:build integration

package redisqueue_test

import (
	"context"
	"testing"
	"time"

	"github.com/marcelsud/webhook-courier/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_EnqueueDequeue_Integration(t *testing.T) {
	ctx := context.Background()

	t.Run("enqueued job becomes visible to a worker", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		q := CreateTestQueue(t, redisContainer.Addr, "worker-1")
		defer q.Close(ctx)

		job := queue.Job{WebhookID: "wh-1", Attempt: 1}
		require.NoError(t, q.Enqueue(ctx, job))

		jobs, err := q.Dequeue(ctx)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, "wh-1", jobs[0].WebhookID)
		assert.Equal(t, 1, jobs[0].Attempt)
		assert.NotEmpty(t, jobs[0].StreamID)
	})

	t.Run("dequeue on an empty queue returns no jobs", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		q := CreateTestQueue(t, redisContainer.Addr, "worker-1")
		defer q.Close(ctx)

		jobs, err := q.Dequeue(ctx)
		require.NoError(t, err)
		assert.Empty(t, jobs)
	})

	t.Run("acknowledged job is removed from the stream", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		q := CreateTestQueue(t, redisContainer.Addr, "worker-1")
		defer q.Close(ctx)

		require.NoError(t, q.Enqueue(ctx, queue.Job{WebhookID: "wh-1", Attempt: 1}))

		jobs, err := q.Dequeue(ctx)
		require.NoError(t, err)
		require.Len(t, jobs, 1)

		require.NoError(t, q.Ack(ctx, jobs[0]))

		n, err := q.ReadyLen(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("two consumers never receive the same job", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		q1 := CreateTestQueue(t, redisContainer.Addr, "worker-1")
		defer q1.Close(ctx)
		q2 := CreateTestQueue(t, redisContainer.Addr, "worker-2")
		defer q2.Close(ctx)

		require.NoError(t, q1.Enqueue(ctx, queue.Job{WebhookID: "wh-1", Attempt: 1}))

		jobs1, err := q1.Dequeue(ctx)
		require.NoError(t, err)
		jobs2, err := q2.Dequeue(ctx)
		require.NoError(t, err)

		assert.Equal(t, 1, len(jobs1)+len(jobs2))
	})
}

func TestQueue_Scheduling_Integration(t *testing.T) {
	ctx := context.Background()

	t.Run("scheduled job stays invisible until promoted", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		q := CreateTestQueue(t, redisContainer.Addr, "worker-1")
		defer q.Close(ctx)

		require.NoError(t, q.EnqueueAfter(ctx, queue.Job{WebhookID: "wh-1", Attempt: 2}, time.Hour))

		jobs, err := q.Dequeue(ctx)
		require.NoError(t, err)
		assert.Empty(t, jobs)

		scheduled, err := q.ScheduledLen(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), scheduled)

		// Not yet due, so the promoter leaves it alone.
		promoted, err := q.PromoteDue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, promoted)
	})

	t.Run("due job is promoted into the ready stream", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		q := CreateTestQueue(t, redisContainer.Addr, "worker-1")
		defer q.Close(ctx)

		require.NoError(t, q.EnqueueAfter(ctx, queue.Job{WebhookID: "wh-1", Attempt: 3}, 0))
		// O score usa segundos unix, então o job vence no próximo tick do relógio
		time.Sleep(1100 * time.Millisecond)

		promoted, err := q.PromoteDue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, promoted)

		jobs, err := q.Dequeue(ctx)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, "wh-1", jobs[0].WebhookID)
		assert.Equal(t, 3, jobs[0].Attempt)

		scheduled, err := q.ScheduledLen(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), scheduled)
	})
}

func TestQueue_Reclaim_Integration(t *testing.T) {
	ctx := context.Background()

	t.Run("abandoned job is redelivered to another worker", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		q1 := CreateTestQueue(t, redisContainer.Addr, "worker-1")
		defer q1.Close(ctx)
		q2 := CreateTestQueue(t, redisContainer.Addr, "worker-2")
		defer q2.Close(ctx)

		require.NoError(t, q1.Enqueue(ctx, queue.Job{WebhookID: "wh-1", Attempt: 2}))

		// worker-1 reads the job and dies before acknowledging.
		jobs, err := q1.Dequeue(ctx)
		require.NoError(t, err)
		require.Len(t, jobs, 1)

		reclaimed, err := q2.ReclaimStale(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, reclaimed)

		jobs, err = q2.Dequeue(ctx)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, "wh-1", jobs[0].WebhookID)
		assert.Equal(t, 2, jobs[0].Attempt)
	})

	t.Run("fresh pending jobs are left with their consumer", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		q1 := CreateTestQueue(t, redisContainer.Addr, "worker-1")
		defer q1.Close(ctx)
		q2 := CreateTestQueue(t, redisContainer.Addr, "worker-2")
		defer q2.Close(ctx)

		require.NoError(t, q1.Enqueue(ctx, queue.Job{WebhookID: "wh-1", Attempt: 1}))

		jobs, err := q1.Dequeue(ctx)
		require.NoError(t, err)
		require.Len(t, jobs, 1)

		reclaimed, err := q2.ReclaimStale(ctx, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, 0, reclaimed)

		jobs, err = q2.Dequeue(ctx)
		require.NoError(t, err)
		assert.Empty(t, jobs)
	})
}

func TestQueue_Heartbeats_Integration(t *testing.T) {
	ctx := context.Background()

	t.Run("beating workers show up as active", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		q := CreateTestQueue(t, redisContainer.Addr, "worker-1")
		defer q.Close(ctx)

		require.NoError(t, q.Beat(ctx, "worker-1", "idle"))
		require.NoError(t, q.Beat(ctx, "worker-2", "processing"))

		workers, err := q.ActiveWorkers(ctx)
		require.NoError(t, err)
		require.Len(t, workers, 2)

		statuses := map[string]string{}
		for _, w := range workers {
			statuses[w.WorkerID] = w.Status
		}
		assert.Equal(t, "idle", statuses["worker-1"])
		assert.Equal(t, "processing", statuses["worker-2"])
	})

	t.Run("a new beat overwrites the previous status", func(t *testing.T) {
		redisContainer, cleanup := SetupRedisContainer(t, ctx)
		defer cleanup()

		q := CreateTestQueue(t, redisContainer.Addr, "worker-1")
		defer q.Close(ctx)

		require.NoError(t, q.Beat(ctx, "worker-1", "idle"))
		require.NoError(t, q.Beat(ctx, "worker-1", "processing"))

		workers, err := q.ActiveWorkers(ctx)
		require.NoError(t, err)
		require.Len(t, workers, 1)
		assert.Equal(t, "processing", workers[0].Status)
	})
}
