package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marcelsud/webhook-courier/subscription"
	"github.com/redis/go-redis/v9"
)

/* Redis implementation of subscription.Cache
 * Entries are JSON values keyed by subscription id with a bounded TTL,
 * so a lost invalidation self-corrects within one cache lifetime.
 */

const keyPrefix = "subscription" // Key naming: subscription:{subscription_id}

type Cache struct {
	client *redis.Client
}

// NewCache creates a new Redis cache, verifying connectivity first
func NewCache(addr, password string, db int) (*Cache, error) {
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

	return &Cache{client: client}, nil
}

// NewCacheWithClient wraps an existing client, sharing its connection pool.
func NewCacheWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// cachedSubscription is the wire shape stored in Redis
type cachedSubscription struct {
	ID         string    `json:"id"`
	TargetURL  string    `json:"target_url"`
	Secret     string    `json:"secret,omitempty"`
	EventTypes []string  `json:"event_types,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Get returns the cached subscription or subscription.ErrCacheMiss.
// A corrupted entry is discarded and reported as a miss, never as an error.
func (c *Cache) Get(ctx context.Context, id string) (subscription.Subscription, error) {
	key := cacheKey(id)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return subscription.Subscription{}, subscription.ErrCacheMiss
	}
	if err != nil {
		return subscription.Subscription{}, fmt.Errorf("getting cached subscription: %w", err)
	}

	var cached cachedSubscription
	if err := json.Unmarshal(data, &cached); err != nil {
		// Drop the unreadable entry and fall back to the store.
		c.client.Del(ctx, key)
		return subscription.Subscription{}, subscription.ErrCacheMiss
	}

	return subscription.Subscription{
		ID:         cached.ID,
		TargetURL:  cached.TargetURL,
		Secret:     cached.Secret,
		EventTypes: cached.EventTypes,
		CreatedAt:  cached.CreatedAt,
		UpdatedAt:  cached.UpdatedAt,
	}, nil
}

// Set stores the subscription with the given TTL.
func (c *Cache) Set(ctx context.Context, sub subscription.Subscription, ttl time.Duration) error {
	data, err := json.Marshal(cachedSubscription{
		ID:         sub.ID,
		TargetURL:  sub.TargetURL,
		Secret:     sub.Secret,
		EventTypes: sub.EventTypes,
		CreatedAt:  sub.CreatedAt,
		UpdatedAt:  sub.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshaling subscription: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(sub.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("caching subscription: %w", err)
	}
	return nil
}

// Invalidate removes the entry. Deleting an absent key is a no-op.
func (c *Cache) Invalidate(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		return fmt.Errorf("deleting cached subscription: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *Cache) Close(ctx context.Context) error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client for advanced operations
func (c *Cache) GetClient() *redis.Client {
	return c.client
}

func cacheKey(id string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, id)
}
