package stats

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const cachePrefix = "stats:worker:"

// Cache wraps Redis based caching of worker snapshots. A nil cache degrades
// to computing on every call.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(workerID uuid.UUID) string {
	return cachePrefix + workerID.String()
}

// Fetch loads a cached snapshot or populates it using the loader.
func (c *Cache) Fetch(ctx context.Context, workerID uuid.UUID, loader func(context.Context) (Snapshot, error)) (Snapshot, error) {
	if loader == nil {
		return Snapshot{}, errors.New("stats: cache loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx)
	}

	key := cacheKey(workerID)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var snap Snapshot
		if err := json.Unmarshal(payload, &snap); err == nil {
			return snap, nil
		}
		// Corrupt payload falls through to a recompute.
	} else if err != redis.Nil {
		return Snapshot{}, err
	}

	snap, err := loader(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if err := c.put(ctx, key, snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Store writes a freshly computed snapshot, used by warmup jobs.
func (c *Cache) Store(ctx context.Context, workerID uuid.UUID, snap Snapshot) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.put(ctx, cacheKey(workerID), snap)
}

// Invalidate drops a worker's cached snapshot.
func (c *Cache) Invalidate(ctx context.Context, workerID uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, cacheKey(workerID)).Err()
}

func (c *Cache) put(ctx context.Context, key string, snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}
