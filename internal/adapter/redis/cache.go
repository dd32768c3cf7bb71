package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config contains Redis connection settings
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Cache is a small byte-value cache on top of Redis
type Cache struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// New creates a Cache. The connection is established lazily by the client.
func New(cfg Config, logger *zap.Logger) *Cache {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Cache{rdb: rdb, logger: logger}
}

// Ping checks connectivity
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		c.logger.Warn("redis ping failed", zap.Error(err))
		return err
	}
	return nil
}

// Close releases the client
func (c *Cache) Close() error {
	return c.rdb.Close()
}

// Get returns the cached value, or nil when the key is absent
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Set stores val under key. A zero ttl keeps the key forever.
func (c *Cache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, val, ttl).Err()
}
