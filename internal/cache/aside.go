package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgaponov99/practicum-my-blog/internal/middleware"
	"github.com/dgaponov99/practicum-my-blog/internal/observability"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const postKeyPrefix = "post:%d"

// DefaultPostTTL is used when no POST_CACHE_TTL_SECONDS is configured.
const DefaultPostTTL = 5 * time.Minute

// PostKey returns the cache key of a single post view.
func PostKey(postID uint) string {
	return fmt.Sprintf(postKeyPrefix, postID)
}

// PostTTL converts a configured TTL in seconds, falling back to DefaultPostTTL.
func PostTTL(seconds int) time.Duration {
	if seconds <= 0 {
		return DefaultPostTTL
	}
	return time.Duration(seconds) * time.Second
}

// GetJSON loads key into dest. It reports false on a miss or when caching is off.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	raw, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores v under key for ttl.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, raw, ttl).Err()
}

// Aside serves dest from Redis when present; otherwise fetch fills dest and the
// result is written back for ttl. Cache failures never fail the read.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	switch {
	case err != nil:
		observability.CacheLookups.WithLabelValues("error").Inc()
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	case found:
		observability.CacheLookups.WithLabelValues("hit").Inc()
		return nil
	default:
		observability.CacheLookups.WithLabelValues("miss").Inc()
	}

	if err := fetch(); err != nil {
		return err
	}

	if err := SetJSON(ctx, key, dest, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

// Invalidate deletes key. Errors are logged and swallowed; the entry expires anyway.
func Invalidate(ctx context.Context, key string) {
	if client == nil {
		return
	}
	if err := client.Del(ctx, key).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidate failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// InvalidatePost drops the cached view of a post.
func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}
