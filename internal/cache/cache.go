// Package cache provides an optional Redis-backed JSON cache for analytics
// snapshots. A nil *Cache is a valid no-op, so callers never need to guard
// on whether Redis is configured.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent or the cache is
// disabled.
var ErrMiss = errors.New("cache: miss")

// Cache is a thin JSON wrapper over a Redis client.
type Cache struct {
	client *redis.Client
}

// Options holds the Redis connection settings applied by New.
type Options struct {
	Address  string
	Password string
	DB       int
}

// Option mutates Options during New.
type Option func(*Options)

// WithAddress sets the Redis host:port.
func WithAddress(addr string) Option {
	return func(o *Options) { o.Address = addr }
}

// WithPassword sets the Redis AUTH password.
func WithPassword(pass string) Option {
	return func(o *Options) { o.Password = pass }
}

// WithDB selects the Redis logical database.
func WithDB(db int) Option {
	return func(o *Options) { o.DB = db }
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, opts ...Option) (*Cache, error) {
	options := &Options{Address: "localhost:6379"}
	for _, opt := range opts {
		opt(options)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     options.Address,
		Password: options.Password,
		DB:       options.DB,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, err
	}
	return &Cache{client: client}, nil
}

// Get unmarshals the cached JSON value at key into dest. Returns ErrMiss
// when the key is absent or the receiver is nil.
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	if c == nil {
		return ErrMiss
	}
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// Set stores value as JSON at key with the given expiration. A nil
// receiver is a no-op.
func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

// Close releases the underlying client. Safe on a nil receiver.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
