package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrCacheMiss is returned by Get when no entry exists for the key.
var ErrCacheMiss = errors.New("cache: key not found")

// Client wraps the Redis connection holding serialized result sets.
// Expiration is owned here: every write carries the configured TTL, callers
// never pass one.
type Client struct {
	rdb       *redis.Client
	ttl       time.Duration
	opTimeout time.Duration
	log       *zap.Logger
}

// New connects to Redis using a redis:// URL and verifies the connection
// with a ping before returning.
func New(redisURL string, ttl, opTimeout time.Duration, log *zap.Logger) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{
		rdb:       rdb,
		ttl:       ttl,
		opTimeout: opTimeout,
		log:       log.With(zap.String("module", "cache")),
	}, nil
}

// Get fetches the value stored under key. A missing key returns an error
// wrapping ErrCacheMiss; any other error means the store itself failed.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := c.withOpTimeout(ctx)
	defer cancel()

	value, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%w: %s", ErrCacheMiss, key)
		}
		c.log.Error("cache get failed", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("cache get: %w", err)
	}

	return value, nil
}

// Set stores value under key with the configured TTL.
func (c *Client) Set(ctx context.Context, key, value string) error {
	ctx, cancel := c.withOpTimeout(ctx)
	defer cancel()

	if err := c.rdb.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.log.Error("cache set failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set: %w", err)
	}

	return nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) withOpTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.opTimeout)
}
