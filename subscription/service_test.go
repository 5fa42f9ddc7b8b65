package subscription_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marcelsud/webhook-courier/subscription"
	"github.com/marcelsud/webhook-courier/subscription/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*subscription.Service, *mocks.Store, *mocks.Cache) {
	store := mocks.NewStore(t)
	cache := mocks.NewCache(t)
	directory := subscription.NewDirectory(store, cache, 300*time.Second, zerolog.Nop())
	return subscription.NewService(store, directory, zerolog.Nop()), store, cache
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		service, store, cache := newService(t)

		store.On("Insert", ctx, subscription.MatchSubscription(func(sub subscription.Subscription) bool {
			return sub.ID != "" &&
				sub.TargetURL == "https://example.com/hooks" &&
				sub.Secret == "s3cr3t" &&
				len(sub.EventTypes) == 2 &&
				!sub.CreatedAt.IsZero() &&
				sub.UpdatedAt.Equal(sub.CreatedAt)
		})).Return(nil)
		cache.On("Invalidate", ctx, mock.AnythingOfType("string")).Return(nil)

		sub, err := service.Create(ctx, "https://example.com/hooks", "s3cr3t", []string{"order.created", "order.paid"})

		require.NoError(t, err)
		assert.NotEmpty(t, sub.ID)
		store.AssertExpectations(t)
	})

	t.Run("error - invalid target URL", func(t *testing.T) {
		service, store, _ := newService(t)

		_, err := service.Create(ctx, "ftp://example.com", "", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "validating subscription")
		store.AssertNotCalled(t, "Insert")
	})

	t.Run("error - store failure", func(t *testing.T) {
		service, store, _ := newService(t)

		store.On("Insert", ctx, mock.Anything).Return(errors.New("connection refused"))

		_, err := service.Create(ctx, "https://example.com/hooks", "", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "inserting subscription")
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	existing := subscription.Subscription{
		ID:        "sub-1",
		TargetURL: "https://example.com/hooks",
		CreatedAt: time.Now().UTC().Add(-time.Hour),
		UpdatedAt: time.Now().UTC().Add(-time.Hour),
	}

	t.Run("success - bumps UpdatedAt and invalidates cache", func(t *testing.T) {
		service, store, cache := newService(t)

		store.On("Select", ctx, "sub-1").Return(existing, nil)
		store.On("Update", ctx, subscription.MatchSubscription(func(sub subscription.Subscription) bool {
			return sub.ID == "sub-1" &&
				sub.TargetURL == "https://example.com/hooks/v2" &&
				sub.UpdatedAt.After(existing.UpdatedAt)
		})).Return(nil)
		cache.On("Invalidate", ctx, "sub-1").Return(nil)

		updated, err := service.Update(ctx, "sub-1", "https://example.com/hooks/v2", "", []string{"order.paid"})

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/hooks/v2", updated.TargetURL)
		cache.AssertExpectations(t)
	})

	t.Run("error - not found", func(t *testing.T) {
		service, store, cache := newService(t)

		store.On("Select", ctx, "missing").Return(subscription.Subscription{}, subscription.ErrNotFound)

		_, err := service.Update(ctx, "missing", "https://example.com", "", nil)

		require.ErrorIs(t, err, subscription.ErrNotFound)
		cache.AssertNotCalled(t, "Invalidate")
	})

	t.Run("error - invalid new target", func(t *testing.T) {
		service, store, _ := newService(t)

		store.On("Select", ctx, "sub-1").Return(existing, nil)

		_, err := service.Update(ctx, "sub-1", "", "", nil)

		require.Error(t, err)
		store.AssertNotCalled(t, "Update")
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("success - invalidates cache after delete", func(t *testing.T) {
		service, store, cache := newService(t)

		store.On("Delete", ctx, "sub-1").Return(nil)
		cache.On("Invalidate", ctx, "sub-1").Return(nil)

		require.NoError(t, service.Delete(ctx, "sub-1"))
		cache.AssertExpectations(t)
	})

	t.Run("error - not found", func(t *testing.T) {
		service, store, cache := newService(t)

		store.On("Delete", ctx, "missing").Return(subscription.ErrNotFound)

		require.ErrorIs(t, service.Delete(ctx, "missing"), subscription.ErrNotFound)
		cache.AssertNotCalled(t, "Invalidate")
	})

	t.Run("cache invalidation failure does not fail the delete", func(t *testing.T) {
		service, store, cache := newService(t)

		store.On("Delete", ctx, "sub-1").Return(nil)
		cache.On("Invalidate", ctx, "sub-1").Return(errors.New("redis down"))

		require.NoError(t, service.Delete(ctx, "sub-1"))
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		service, store, _ := newService(t)

		subs := []subscription.Subscription{
			{ID: "sub-1", TargetURL: "https://a.example.com"},
			{ID: "sub-2", TargetURL: "https://b.example.com"},
		}
		store.On("SelectAll", ctx, 0, 50).Return(subs, nil)

		got, err := service.List(ctx, 0, 50)

		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}
