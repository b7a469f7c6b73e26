// Package bootstrap wires the runtime dependencies shared by the server and
// the maintenance commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgaponov99/practicum-my-blog/internal/cache"
	"github.com/dgaponov99/practicum-my-blog/internal/config"
	"github.com/dgaponov99/practicum-my-blog/internal/database"
	"github.com/dgaponov99/practicum-my-blog/internal/middleware"
	"github.com/dgaponov99/practicum-my-blog/internal/seed"
	"github.com/dgaponov99/practicum-my-blog/internal/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedDemo bool
}

// Runtime holds the connected dependencies.
type Runtime struct {
	DB     *gorm.DB
	Redis  *redis.Client // nil when Redis is unreachable
	Images storage.ImageStore
}

// InitRuntime connects to the database, Redis and the image store and
// optionally seeds demo content.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)

	images, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("image store: %w", err)
	}

	if opts.SeedDemo {
		if err := ensureDemoContent(ctx, cfg, db); err != nil {
			return nil, fmt.Errorf("failed to seed demo content: %w", err)
		}
	}

	return &Runtime{DB: db, Redis: cache.GetClient(), Images: images}, nil
}

// ensureDemoContent seeds posts into an empty development database. Other
// environments and non-empty databases are left alone.
func ensureDemoContent(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevSeedDemo {
		return nil
	}

	empty, err := seed.IsEmpty(ctx, db)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	posts := cfg.DevSeedDemoPosts
	if posts <= 0 {
		posts = 30
	}
	res, err := seed.NewSeeder(db, seed.Options{Posts: posts, MaxComments: 5, MaxTags: 3}).Run(ctx)
	if err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "development demo content ensured", slog.Int("posts", res.Posts))
	return nil
}
