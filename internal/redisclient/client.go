package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const featuredKey = "catalog:featured"

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
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

// GetFeaturedProducts returns the cached featured-products payload, or nil
// when the cache is cold.
func (c *Client) GetFeaturedProducts(ctx context.Context) ([]byte, error) {
	payload, err := c.rdb.Get(ctx, featuredKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// SetFeaturedProducts caches the featured-products payload with a TTL so
// catalog edits surface without an explicit invalidation path.
func (c *Client) SetFeaturedProducts(ctx context.Context, payload []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, featuredKey, payload, ttl).Err()
}

// InvalidateFeaturedProducts drops the cached featured payload
func (c *Client) InvalidateFeaturedProducts(ctx context.Context) error {
	return c.rdb.Del(ctx, featuredKey).Err()
}

// AllowPaymentIntent applies a fixed-window per-session rate limit to
// payment-intent creation. Returns false when the session exceeded limit
// calls within the current minute.
func (c *Client) AllowPaymentIntent(ctx context.Context, sessionID string, limit int) (bool, error) {
	key := fmt.Sprintf("ratelimit:intents:%s:%d", sessionID, time.Now().Unix()/60)

	pipe := c.rdb.Pipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	return count.Val() <= int64(limit), nil
}
