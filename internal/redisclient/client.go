package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stock-reconciler/internal/cache"

	"github.com/go-redis/redis/v8"
)

const stockKeyPrefix = "stock:"

// Client is the Redis-backed cache store, for deployments where several
// instances should share one reconciliation cache. Each entry is one JSON
// value written with SET and a native TTL, so replacement stays whole-entry
// atomic and stale entries expire server-side.
type Client struct {
	rdb *redis.Client
}

// NewClient connects to Redis and verifies the connection.
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Get reads one cache entry. Absent keys return nil; a payload that no
// longer unmarshals is reported as an error so the cache re-resolves
// instead of trusting it.
func (c *Client) Get(ctx context.Context, key string) (*cache.Entry, error) {
	raw, err := c.rdb.Get(ctx, stockKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var entry cache.Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("corrupt cache entry for %s: %w", key, err)
	}
	return &entry, nil
}

// Set writes one complete cache entry with the entry's TTL as the key
// expiry.
func (c *Client) Set(ctx context.Context, key string, entry cache.Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	ttl := entry.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	if err := c.rdb.Set(ctx, stockKeyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete drops one cache entry.
func (c *Client) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, stockKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}
