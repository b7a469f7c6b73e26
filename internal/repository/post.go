// Package repository provides data access layer implementations for the blog.
package repository

import (
	"context"
	"errors"

	"github.com/dgaponov99/practicum-my-blog/internal/models"
	"github.com/dgaponov99/practicum-my-blog/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations.
// Every method except GetByIDIncludingDeleted ignores soft-deleted posts.
type PostRepository interface {
	Search(ctx context.Context, filter SearchFilter, limit, offset int) ([]*models.Post, error)
	Count(ctx context.Context, filter SearchFilter) (int64, error)
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetByIDIncludingDeleted(ctx context.Context, id uint) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, id uint, title, text string, tags []string) error
	IncrementLikes(ctx context.Context, id uint) error
	SetImage(ctx context.Context, id uint, token *string) error
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, metrics: observability.NewDatabaseMetrics()}
}

// Search returns one window of the posts matching filter, newest first.
func (r *postRepository) Search(ctx context.Context, filter SearchFilter, limit, offset int) ([]*models.Post, error) {
	defer r.metrics.TrackQuery("search", "posts")()

	var posts []*models.Post
	err := applySearchFilter(readDB(r.db).WithContext(ctx), filter).
		Preload("Tags").
		Order("posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

// Count returns the number of posts matching filter.
func (r *postRepository) Count(ctx context.Context, filter SearchFilter) (int64, error) {
	defer r.metrics.TrackQuery("count", "posts")()

	db := readDB(r.db).WithContext(ctx)
	matched := applySearchFilter(db, filter).Select("posts.id")

	var total int64
	err := db.Table("(?) AS matched", matched).Count(&total).Error
	return total, err
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Tags").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// GetByIDIncludingDeleted is the raw lookup used by the delete cascade.
func (r *postRepository) GetByIDIncludingDeleted(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Unscoped().Preload("Tags").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer r.metrics.TrackQuery("create", "posts")()

	post.Tags = models.NewPostTags(0, post.TagNames())
	return r.db.WithContext(ctx).Create(post).Error
}

// Update replaces title, text and the whole tag set of a live post. The row
// update and the tag replacement commit together.
func (r *postRepository) Update(ctx context.Context, id uint, title, text string, tags []string) error {
	defer r.metrics.TrackQuery("update", "posts")()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{"title": title, "text": text})
		if err := res.Error; err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("post_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		rows := models.NewPostTags(id, tags)
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// IncrementLikes adds exactly one like in a single statement.
func (r *postRepository) IncrementLikes(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("likes_count", gorm.Expr("likes_count + ?", 1))
	return rowsAffectedOrNotFound(res)
}

// SetImage stores the image token of a live post; nil clears it.
func (r *postRepository) SetImage(ctx context.Context, id uint, token *string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("image_token", token)
	return rowsAffectedOrNotFound(res)
}

// Delete soft-deletes the post. Deleting an already deleted post is a no-op.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer r.metrics.TrackQuery("delete", "posts")()
	return r.db.WithContext(ctx).Delete(&models.Post{}, id).Error
}

func rowsAffectedOrNotFound(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
