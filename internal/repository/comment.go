package repository

import (
	"context"

	"github.com/dgaponov99/practicum-my-blog/internal/models"
	"github.com/dgaponov99/practicum-my-blog/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations.
// Soft-deleted comments are invisible to every method.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
	CountByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error)
	Update(ctx context.Context, id uint, text string) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, metrics: observability.NewDatabaseMetrics()}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	defer r.metrics.TrackQuery("count", "comments")()

	var count int64
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

// CountByPosts counts live comments of several posts in one grouped query.
// Posts without comments are absent from the result.
func (r *commentRepository) CountByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}
	defer r.metrics.TrackQuery("count_grouped", "comments")()

	var rows []struct {
		PostID uint
		Total  int64
	}
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.PostID] = row.Total
	}
	return counts, nil
}

// Update replaces the text of a live comment.
func (r *commentRepository) Update(ctx context.Context, id uint, text string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		Update("text", text)
	return rowsAffectedOrNotFound(res)
}

// Delete soft-deletes the comment. Deleting it again is a no-op.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}
