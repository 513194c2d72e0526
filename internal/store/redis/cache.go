// Package redis holds the Redis-backed pieces: the scrape lease and the
// opportunity listing cache.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/natowatch/natowatch/internal/logger"
)

// ListCache caches serialized listing responses keyed by their canonical
// query string. A scrape run invalidates the whole prefix, so staleness is
// bounded by the TTL only between runs that change nothing.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

func NewListCache(client *redis.Client, ttl time.Duration, log logger.Logger) *ListCache {
	return &ListCache{client: client, ttl: ttl, log: log}
}

// Get returns the cached payload for query, or (nil, nil) on a miss. Cache
// errors degrade to a miss; the database remains the source of truth.
func (c *ListCache) Get(ctx context.Context, query string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, ListKey(query)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		c.log.Warn("list cache read failed", logger.Error(err))
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.log.Warn("list cache entry corrupt, dropping", logger.Error(err))
		_ = c.client.Del(ctx, ListKey(query)).Err()
		return false, nil
	}
	return true, nil
}

// Set stores a listing payload under its canonical query.
func (c *ListCache) Set(ctx context.Context, query string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal list cache entry: %w", err)
	}
	if err := c.client.Set(ctx, ListKey(query), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("write list cache entry: %w", err)
	}
	return nil
}

// InvalidateAll drops every cached listing. Called after each scrape run
// that created, amended or retired anything.
func (c *ListCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, KeyPrefixList+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("scan list cache keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete list cache keys: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
