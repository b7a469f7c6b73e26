package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgaponov99/practicum-my-blog/internal/middleware"
	"github.com/dgaponov99/practicum-my-blog/internal/models"

	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	Posts       int
	MaxComments int // per post, chosen uniformly from 0..MaxComments
	MaxTags     int // per post, chosen uniformly from 0..MaxTags
	MaxDays     int // spread of created_at into the past
	RandomSeed  int64
	Clean       bool
}

// Result reports what a seeding run created.
type Result struct {
	Posts    int
	Comments int
}

// Seeder fills the database with demo posts and comments.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts)}
}

// ClearAll hard-deletes every comment, tag and post, soft-deleted rows included.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped()
		for _, model := range []any{&models.Comment{}, &models.PostTag{}, &models.Post{}} {
			if err := all.Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

// Run seeds opts.Posts posts, each with a random number of comments. With
// opts.Clean the existing content is removed first.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result
	if s.opts.Clean {
		if err := s.ClearAll(ctx); err != nil {
			return res, err
		}
		middleware.Logger.InfoContext(ctx, "cleared existing blog content")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		f := &Factory{db: tx, opts: s.opts, faker: s.factory.faker, rng: s.factory.rng}
		for i := 0; i < s.opts.Posts; i++ {
			post, err := f.CreatePost()
			if err != nil {
				return fmt.Errorf("create post %d: %w", i+1, err)
			}
			res.Posts++

			comments := 0
			if s.opts.MaxComments > 0 {
				comments = f.rng.Intn(s.opts.MaxComments + 1)
			}
			for j := 0; j < comments; j++ {
				if _, err := f.CreateComment(post); err != nil {
					return fmt.Errorf("create comment on post %d: %w", post.ID, err)
				}
				res.Comments++
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	middleware.Logger.InfoContext(ctx, "seeded blog content",
		slog.Int("posts", res.Posts),
		slog.Int("comments", res.Comments),
	)
	return res, nil
}

// IsEmpty reports whether the database holds no posts, deleted ones included.
func IsEmpty(ctx context.Context, db *gorm.DB) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Unscoped().Model(&models.Post{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}
