package service

import (
	"context"

	"github.com/dgaponov99/practicum-my-blog/internal/cache"
	"github.com/dgaponov99/practicum-my-blog/internal/models"
	"github.com/dgaponov99/practicum-my-blog/internal/notifications"
	"github.com/dgaponov99/practicum-my-blog/internal/repository"
	"github.com/dgaponov99/practicum-my-blog/internal/validation"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	events      EventPublisher
}

type CreateCommentInput struct {
	PostID uint   `json:"-"`
	Text   string `json:"text" validate:"notblank"`
}

type UpdateCommentInput struct {
	CommentID uint   `json:"-"`
	Text      string `json:"text" validate:"notblank"`
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	events EventPublisher,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		events:      publisherOrNoop(events),
	}
}

func (s *CommentService) requireLivePost(ctx context.Context, postID uint) error {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return storageError(err, "Post", postID)
	}
	return nil
}

// ListComments returns the live comments of a live post, oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]models.CommentDTO, error) {
	if err := s.requireLivePost(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	out := make([]models.CommentDTO, 0, len(comments))
	for _, c := range comments {
		out = append(out, models.NewCommentDTO(c))
	}
	return out, nil
}

func (s *CommentService) GetComment(ctx context.Context, id uint) (*models.CommentDTO, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "Comment", id)
	}
	dto := models.NewCommentDTO(comment)
	return &dto, nil
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.CommentDTO, error) {
	if err := validation.Struct(in); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.requireLivePost(ctx, in.PostID); err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: in.PostID, Text: in.Text}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, in.PostID)

	dto := models.NewCommentDTO(comment)
	s.events.PublishAsync(ctx, notifications.EventCommentCreated, dto)
	return &dto, nil
}

// EditComment replaces the text of a live comment.
func (s *CommentService) EditComment(ctx context.Context, in UpdateCommentInput) (*models.CommentDTO, error) {
	if err := validation.Struct(in); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.commentRepo.Update(ctx, in.CommentID, in.Text); err != nil {
		return nil, storageError(err, "Comment", in.CommentID)
	}

	dto, err := s.GetComment(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	s.events.PublishAsync(ctx, notifications.EventCommentUpdated, dto)
	return dto, nil
}

// DeleteComment soft-deletes a comment. Deleting a missing or already deleted
// comment succeeds.
func (s *CommentService) DeleteComment(ctx context.Context, id uint) error {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil
		}
		return models.NewInternalError(err)
	}
	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, comment.PostID)
	s.events.PublishAsync(ctx, notifications.EventCommentDeleted, models.NewCommentDTO(comment))
	return nil
}

// CountComments returns the number of live comments of a live post.
func (s *CommentService) CountComments(ctx context.Context, postID uint) (int64, error) {
	if err := s.requireLivePost(ctx, postID); err != nil {
		return 0, err
	}
	count, err := s.commentRepo.CountByPost(ctx, postID)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
