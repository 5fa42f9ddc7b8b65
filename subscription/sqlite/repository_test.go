package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/marcelsud/webhook-courier/subscription"
	"github.com/stretchr/testify/assert"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	repo, err := NewRepository(dbPath)
	assert.Nil(t, err)
	defer repo.Close(ctx)

	err = repo.CreateTable(ctx)
	assert.Nil(t, err)

	now := time.Now().UTC()
	sub := subscription.Subscription{
		ID:         "0d1b3b3f-9a7e-4b7d-8c59-2f33a9e7c001",
		TargetURL:  "https://consumer.example.com/hooks",
		Secret:     "s3cret",
		EventTypes: []string{"order.created", "order.paid"},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err = repo.Insert(ctx, sub)
	assert.Nil(t, err)

	saved, err := repo.Select(ctx, sub.ID)
	assert.Nil(t, err)
	assert.Equal(t, sub.TargetURL, saved.TargetURL)
	assert.Equal(t, sub.Secret, saved.Secret)
	assert.Equal(t, sub.EventTypes, saved.EventTypes)
	assert.True(t, saved.CreatedAt.Equal(sub.CreatedAt))

	all, err := repo.SelectAll(ctx, 0, 50)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(all))

	sub.TargetURL = "https://consumer.example.com/hooks/v2"
	sub.EventTypes = nil
	sub.UpdatedAt = now.Add(time.Minute)
	err = repo.Update(ctx, sub)
	assert.Nil(t, err)

	saved, err = repo.Select(ctx, sub.ID)
	assert.Nil(t, err)
	assert.Equal(t, "https://consumer.example.com/hooks/v2", saved.TargetURL)
	assert.Nil(t, saved.EventTypes)

	err = repo.Delete(ctx, sub.ID)
	assert.Nil(t, err)

	_, err = repo.Select(ctx, sub.ID)
	assert.Equal(t, subscription.ErrNotFound, err)
}

func TestRepositoryNotFound(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	repo, err := NewRepository(dbPath)
	assert.Nil(t, err)
	defer repo.Close(ctx)

	err = repo.CreateTable(ctx)
	assert.Nil(t, err)

	_, err = repo.Select(ctx, "missing")
	assert.Equal(t, subscription.ErrNotFound, err)

	err = repo.Update(ctx, subscription.Subscription{ID: "missing", TargetURL: "https://x.example.com"})
	assert.Equal(t, subscription.ErrNotFound, err)

	err = repo.Delete(ctx, "missing")
	assert.Equal(t, subscription.ErrNotFound, err)
}

func TestRepositoryNoSecret(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	repo, err := NewRepository(dbPath)
	assert.Nil(t, err)
	defer repo.Close(ctx)

	err = repo.CreateTable(ctx)
	assert.Nil(t, err)

	now := time.Now().UTC()
	sub := subscription.Subscription{
		ID:        "a4f5c8f2-1db1-4a68-8437-91b4ec0d9e02",
		TargetURL: "https://open.example.com/hooks",
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = repo.Insert(ctx, sub)
	assert.Nil(t, err)

	saved, err := repo.Select(ctx, sub.ID)
	assert.Nil(t, err)
	assert.Empty(t, saved.Secret)
	assert.Nil(t, saved.EventTypes)
}
