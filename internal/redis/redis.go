package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salesroute/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client wraps a go-redis client with per-call timeouts
type Client struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// Init parses the URL, connects and pings Redis
func Init(redisURL string, logger *zap.Logger) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := NewClient(redis.NewClient(opts), logger)

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("connected to Redis", zap.String("addr", opts.Addr))
	return client, nil
}

// NewClient wraps an existing go-redis client
func NewClient(rdb *redis.Client, logger *zap.Logger) *Client {
	return &Client{rdb: rdb, logger: logger}
}

// Ping checks the connection
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis client connection
func (c *Client) Close() error {
	c.logger.Info("closing Redis connection")
	return c.rdb.Close()
}

// Get retrieves a value by key. found is false for a missing key.
func (c *Client) Get(ctx context.Context, key string) (value string, found bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, config.CacheOpTimeout)
	defer cancel()

	value, err = c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores a key-value pair in Redis
func (c *Client) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, config.CacheOpTimeout)
	defer cancel()

	return c.rdb.Set(ctx, key, value, expiration).Err()
}

