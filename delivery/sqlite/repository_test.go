package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/marcelsud/webhook-courier/delivery"
	"github.com/marcelsud/webhook-courier/subscription"
	subscriptionsqlite "github.com/marcelsud/webhook-courier/subscription/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSubscriptionID = "0d1b3b3f-9a7e-4b7d-8c59-2f33a9e7c001"

// newRepository creates a fresh database with the full schema and one
// subscription, since webhooks reference subscriptions by foreign key.
func newRepository(t *testing.T) (*Repository, *subscriptionsqlite.Repository) {
	t.Helper()
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	subRepo, err := subscriptionsqlite.NewRepository(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { subRepo.Close(ctx) })

	// Every statement gets a fresh connection, so settings that only
	// apply to one pooled connection would not survive this suite.
	subRepo.DB.SetMaxIdleConns(0)

	require.NoError(t, subRepo.CreateTable(ctx))

	repo := NewRepositoryWithDB(subRepo.DB)
	require.NoError(t, repo.CreateTables(ctx))

	now := time.Now().UTC()
	require.NoError(t, subRepo.Insert(ctx, subscription.Subscription{
		ID:        testSubscriptionID,
		TargetURL: "https://consumer.example.com/hooks",
		CreatedAt: now,
		UpdatedAt: now,
	}))

	return repo, subRepo
}

func TestWebhookLifecycle(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepository(t)

	now := time.Now().UTC()
	wh := delivery.Webhook{
		ID:             "wh-1",
		SubscriptionID: testSubscriptionID,
		Payload:        []byte(`{"event_type":"order.created"}`),
		EventType:      "order.created",
		IngestedAt:     now,
		Status:         delivery.Queued,
	}
	require.NoError(t, repo.CreateWebhook(ctx, wh))

	saved, err := repo.GetWebhook(ctx, wh.ID)
	require.NoError(t, err)
	assert.Equal(t, wh.SubscriptionID, saved.SubscriptionID)
	assert.Equal(t, wh.Payload, saved.Payload)
	assert.Equal(t, wh.EventType, saved.EventType)
	assert.Equal(t, delivery.Queued, saved.Status)
	assert.True(t, saved.IngestedAt.Equal(wh.IngestedAt))

	require.NoError(t, repo.UpdateWebhookStatus(ctx, wh.ID, delivery.Succeeded))
	saved, err = repo.GetWebhook(ctx, wh.ID)
	require.NoError(t, err)
	assert.Equal(t, delivery.Succeeded, saved.Status)

	_, err = repo.GetWebhook(ctx, "missing")
	assert.Equal(t, delivery.ErrNotFound, err)

	err = repo.UpdateWebhookStatus(ctx, "missing", delivery.Failed)
	assert.Equal(t, delivery.ErrNotFound, err)
}

func TestRecordAttempt(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepository(t)

	now := time.Now().UTC()
	wh := delivery.Webhook{
		ID:             "wh-1",
		SubscriptionID: testSubscriptionID,
		Payload:        []byte(`{}`),
		EventType:      "order.created",
		IngestedAt:     now,
		Status:         delivery.Queued,
	}
	require.NoError(t, repo.CreateWebhook(ctx, wh))

	t.Run("failed attempt keeps webhook queued", func(t *testing.T) {
		next := now.Add(10 * time.Second)
		att := delivery.Attempt{
			ID:            "att-1",
			WebhookID:     wh.ID,
			Number:        1,
			AttemptedAt:   now,
			Outcome:       delivery.AttemptFailed,
			HTTPStatus:    503,
			ErrorDetail:   "Service Unavailable",
			NextAttemptAt: &next,
		}
		require.NoError(t, repo.RecordAttempt(ctx, att, nil))

		saved, err := repo.GetWebhook(ctx, wh.ID)
		require.NoError(t, err)
		assert.Equal(t, delivery.Queued, saved.Status)

		attempts, err := repo.ListAttemptsByWebhook(ctx, wh.ID)
		require.NoError(t, err)
		require.Len(t, attempts, 1)
		assert.Equal(t, 503, attempts[0].HTTPStatus)
		assert.Equal(t, "Service Unavailable", attempts[0].ErrorDetail)
		require.NotNil(t, attempts[0].NextAttemptAt)
		assert.True(t, attempts[0].NextAttemptAt.Equal(next))
	})

	t.Run("successful attempt finalizes webhook in the same transaction", func(t *testing.T) {
		att := delivery.Attempt{
			ID:          "att-2",
			WebhookID:   wh.ID,
			Number:      2,
			AttemptedAt: now.Add(10 * time.Second),
			Outcome:     delivery.AttemptSucceeded,
			HTTPStatus:  200,
		}
		status := delivery.Succeeded
		require.NoError(t, repo.RecordAttempt(ctx, att, &status))

		saved, err := repo.GetWebhook(ctx, wh.ID)
		require.NoError(t, err)
		assert.Equal(t, delivery.Succeeded, saved.Status)

		attempts, err := repo.ListAttemptsByWebhook(ctx, wh.ID)
		require.NoError(t, err)
		assert.Len(t, attempts, 2)
		// Null columns stay empty on the success row.
		assert.Empty(t, attempts[1].ErrorDetail)
		assert.Nil(t, attempts[1].NextAttemptAt)
	})

	t.Run("redelivered attempt number is a no-op", func(t *testing.T) {
		att := delivery.Attempt{
			ID:          "att-2-redelivered",
			WebhookID:   wh.ID,
			Number:      2,
			AttemptedAt: now.Add(20 * time.Second),
			Outcome:     delivery.AttemptFailed,
			HTTPStatus:  500,
			ErrorDetail: "Internal Server Error",
		}
		status := delivery.Failed
		require.NoError(t, repo.RecordAttempt(ctx, att, &status))

		// The original outcome and status stand; no second row for number 2.
		saved, err := repo.GetWebhook(ctx, wh.ID)
		require.NoError(t, err)
		assert.Equal(t, delivery.Succeeded, saved.Status)

		attempts, err := repo.ListAttemptsByWebhook(ctx, wh.ID)
		require.NoError(t, err)
		require.Len(t, attempts, 2)
		assert.Equal(t, "att-2", attempts[1].ID)
		assert.Equal(t, delivery.AttemptSucceeded, attempts[1].Outcome)
	})

	t.Run("unknown webhook leaves no ledger entry", func(t *testing.T) {
		att := delivery.Attempt{
			ID:          "att-3",
			WebhookID:   "missing",
			Number:      1,
			AttemptedAt: now,
			Outcome:     delivery.AttemptFailed,
		}
		err := repo.RecordAttempt(ctx, att, nil)
		require.Error(t, err)

		attempts, err := repo.ListAttemptsByWebhook(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, attempts)
	})
}

func TestAttemptListings(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepository(t)

	now := time.Now().UTC()
	for _, whID := range []string{"wh-1", "wh-2"} {
		wh := delivery.Webhook{
			ID:             whID,
			SubscriptionID: testSubscriptionID,
			Payload:        []byte(`{}`),
			EventType:      "order.created",
			IngestedAt:     now,
			Status:         delivery.Queued,
		}
		require.NoError(t, repo.CreateWebhook(ctx, wh))
	}

	// wh-1 fails twice then succeeds, wh-2 has one attempt.
	rows := []delivery.Attempt{
		{ID: "att-1", WebhookID: "wh-1", Number: 1, AttemptedAt: now, Outcome: delivery.AttemptFailed, HTTPStatus: 500},
		{ID: "att-2", WebhookID: "wh-1", Number: 2, AttemptedAt: now.Add(10 * time.Second), Outcome: delivery.AttemptFailed, HTTPStatus: 503},
		{ID: "att-3", WebhookID: "wh-1", Number: 3, AttemptedAt: now.Add(30 * time.Second), Outcome: delivery.AttemptSucceeded, HTTPStatus: 200},
		{ID: "att-4", WebhookID: "wh-2", Number: 1, AttemptedAt: now.Add(5 * time.Second), Outcome: delivery.AttemptSucceeded, HTTPStatus: 204},
	}
	for _, att := range rows {
		require.NoError(t, repo.RecordAttempt(ctx, att, nil))
	}

	t.Run("by webhook, oldest first", func(t *testing.T) {
		attempts, err := repo.ListAttemptsByWebhook(ctx, "wh-1")
		require.NoError(t, err)
		require.Len(t, attempts, 3)
		assert.Equal(t, []string{"att-1", "att-2", "att-3"}, []string{attempts[0].ID, attempts[1].ID, attempts[2].ID})
	})

	t.Run("by subscription, newest first with limit", func(t *testing.T) {
		attempts, err := repo.ListRecentAttemptsBySubscription(ctx, testSubscriptionID, 2)
		require.NoError(t, err)
		require.Len(t, attempts, 2)
		assert.Equal(t, "att-3", attempts[0].ID)
		assert.Equal(t, "att-2", attempts[1].ID)
	})

	t.Run("all attempts, paginated", func(t *testing.T) {
		attempts, err := repo.ListAllAttempts(ctx, 1, 2)
		require.NoError(t, err)
		require.Len(t, attempts, 2)
		assert.Equal(t, "att-2", attempts[0].ID)
		assert.Equal(t, "att-4", attempts[1].ID)
	})
}

func TestCounts(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepository(t)

	now := time.Now().UTC()
	webhooks := []struct {
		id     string
		status delivery.Status
	}{
		{"wh-1", delivery.Queued},
		{"wh-2", delivery.Succeeded},
		{"wh-3", delivery.Succeeded},
		{"wh-4", delivery.Failed},
	}
	for _, w := range webhooks {
		require.NoError(t, repo.CreateWebhook(ctx, delivery.Webhook{
			ID:             w.id,
			SubscriptionID: testSubscriptionID,
			Payload:        []byte(`{}`),
			EventType:      "order.created",
			IngestedAt:     now,
			Status:         w.status,
		}))
	}

	count, err := repo.CountWebhooksByStatus(ctx, delivery.Succeeded)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = repo.CountWebhooksByStatus(ctx, delivery.Queued)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// One success inside the window, one before it.
	require.NoError(t, repo.RecordAttempt(ctx, delivery.Attempt{
		ID: "att-1", WebhookID: "wh-2", Number: 1,
		AttemptedAt: now.Add(-2 * time.Minute), Outcome: delivery.AttemptSucceeded, HTTPStatus: 200,
	}, nil))
	require.NoError(t, repo.RecordAttempt(ctx, delivery.Attempt{
		ID: "att-2", WebhookID: "wh-3", Number: 1,
		AttemptedAt: now, Outcome: delivery.AttemptSucceeded, HTTPStatus: 200,
	}, nil))

	count, err = repo.CountSucceededAttemptsSince(ctx, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPurgeOlderThan(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepository(t)

	now := time.Now().UTC()
	old := now.Add(-100 * time.Hour)
	webhooks := []struct {
		id         string
		status     delivery.Status
		ingestedAt time.Time
	}{
		{"wh-old-done", delivery.Succeeded, old},
		{"wh-old-dead", delivery.Failed, old},
		{"wh-old-queued", delivery.Queued, old},
		{"wh-recent-done", delivery.Succeeded, now},
	}
	for _, w := range webhooks {
		require.NoError(t, repo.CreateWebhook(ctx, delivery.Webhook{
			ID:             w.id,
			SubscriptionID: testSubscriptionID,
			Payload:        []byte(`{}`),
			EventType:      "order.created",
			IngestedAt:     w.ingestedAt,
			Status:         w.status,
		}))
		require.NoError(t, repo.RecordAttempt(ctx, delivery.Attempt{
			ID: "att-" + w.id, WebhookID: w.id, Number: 1,
			AttemptedAt: w.ingestedAt, Outcome: delivery.AttemptFailed, HTTPStatus: 500,
		}, nil))
	}

	attempts, removed, err := repo.PurgeOlderThan(ctx, now.Add(-72*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), attempts)
	assert.Equal(t, int64(2), removed)

	// Queued webhooks survive any age, recent terminal ones survive the cutoff.
	_, err = repo.GetWebhook(ctx, "wh-old-queued")
	assert.NoError(t, err)
	_, err = repo.GetWebhook(ctx, "wh-recent-done")
	assert.NoError(t, err)
	_, err = repo.GetWebhook(ctx, "wh-old-done")
	assert.Equal(t, delivery.ErrNotFound, err)
	_, err = repo.GetWebhook(ctx, "wh-old-dead")
	assert.Equal(t, delivery.ErrNotFound, err)
}

func TestSubscriptionDeleteCascades(t *testing.T) {
	ctx := context.Background()
	repo, subRepo := newRepository(t)

	now := time.Now().UTC()
	require.NoError(t, repo.CreateWebhook(ctx, delivery.Webhook{
		ID:             "wh-1",
		SubscriptionID: testSubscriptionID,
		Payload:        []byte(`{}`),
		EventType:      "order.created",
		IngestedAt:     now,
		Status:         delivery.Queued,
	}))
	require.NoError(t, repo.RecordAttempt(ctx, delivery.Attempt{
		ID: "att-1", WebhookID: "wh-1", Number: 1,
		AttemptedAt: now, Outcome: delivery.AttemptFailed, HTTPStatus: 500,
	}, nil))

	require.NoError(t, subRepo.Delete(ctx, testSubscriptionID))

	_, err := repo.GetWebhook(ctx, "wh-1")
	assert.Equal(t, delivery.ErrNotFound, err)
	attempts, err := repo.ListAttemptsByWebhook(ctx, "wh-1")
	require.NoError(t, err)
	assert.Empty(t, attempts)
}
