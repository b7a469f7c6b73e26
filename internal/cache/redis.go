// Package cache provides Redis caching utilities for the blog.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dgaponov99/practicum-my-blog/internal/middleware"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

type metricsHook struct{}

func (metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// InitRedis connects to Redis at addr, which may be host:port or a redis://
// URL. When Redis is unreachable the client stays nil and caching is skipped.
func InitRedis(addr string) {
	opts := &redis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			middleware.Logger.Warn("Invalid REDIS_URL, continuing without cache", slog.String("error", err.Error()))
			client = nil
			return
		}
		opts = parsed
	}

	rdb := redis.NewClient(opts)
	rdb.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("Redis unavailable, continuing without cache", slog.String("error", err.Error()))
		_ = rdb.Close()
		client = nil
		return
	}

	middleware.Logger.Info("Redis connected successfully")
	client = rdb
}

// GetClient returns the current Redis client, or nil when caching is off.
func GetClient() *redis.Client {
	return client
}

// SetClient replaces the Redis client. Tests use it to point the cache at miniredis.
func SetClient(c *redis.Client) {
	if c != nil {
		c.AddHook(metricsHook{})
	}
	client = c
}

// Close closes the Redis client if one is open.
func Close() error {
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}
