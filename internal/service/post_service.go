package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgaponov99/practicum-my-blog/internal/cache"
	"github.com/dgaponov99/practicum-my-blog/internal/featureflags"
	"github.com/dgaponov99/practicum-my-blog/internal/middleware"
	"github.com/dgaponov99/practicum-my-blog/internal/models"
	"github.com/dgaponov99/practicum-my-blog/internal/notifications"
	"github.com/dgaponov99/practicum-my-blog/internal/observability"
	"github.com/dgaponov99/practicum-my-blog/internal/pagination"
	"github.com/dgaponov99/practicum-my-blog/internal/repository"
	"github.com/dgaponov99/practicum-my-blog/internal/storage"
	"github.com/dgaponov99/practicum-my-blog/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// PostServiceConfig holds the tunables of PostService.
type PostServiceConfig struct {
	CacheTTL      time.Duration
	MaxImageBytes int64
}

type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	images      storage.ImageStore
	flags       *featureflags.Manager
	events      EventPublisher
	cfg         PostServiceConfig
}

type SearchPostsInput struct {
	Title      string
	Tags       []string
	PageNumber int
	PageSize   int
	// Client identifies the caller for percentage rollouts of feature flags.
	Client string
}

type CreatePostInput struct {
	Title string   `json:"title" validate:"notblank,max=255"`
	Text  string   `json:"text" validate:"notblank"`
	Tags  []string `json:"tags" validate:"dive,max=255"`
}

type UpdatePostInput struct {
	PostID uint     `json:"-"`
	Title  string   `json:"title" validate:"notblank,max=255"`
	Text   string   `json:"text" validate:"notblank"`
	Tags   []string `json:"tags" validate:"dive,max=255"`
}

// PostImage is a stored post image ready to be served.
type PostImage struct {
	Data        []byte
	ContentType string
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	images storage.ImageStore,
	flags *featureflags.Manager,
	events EventPublisher,
	cfg PostServiceConfig,
) *PostService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = cache.DefaultPostTTL
	}
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		images:      images,
		flags:       flags,
		events:      publisherOrNoop(events),
		cfg:         cfg,
	}
}

// SearchPosts returns one page of live posts matching the title substring and
// carrying every requested tag, newest first. The total is counted with the
// same predicate as the page fetch, but the two run as separate statements.
func (s *PostService) SearchPosts(ctx context.Context, in SearchPostsInput) (_ *models.PostPageDTO, err error) {
	page := pagination.Page{Number: in.PageNumber, Size: in.PageSize}
	if err := page.Validate(); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	ctx, end := observability.StartSpan(ctx, "PostService.SearchPosts",
		attribute.String("search.title", in.Title),
		attribute.StringSlice("search.tags", in.Tags),
		attribute.Int("page.number", page.Number),
		attribute.Int("page.size", page.Size),
	)
	defer func() { end(err) }()

	filter := repository.SearchFilter{Title: in.Title, Tags: in.Tags}
	total, err := s.postRepo.Count(ctx, filter)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	middleware.SearchResults.Observe(float64(total))

	posts, err := s.postRepo.Search(ctx, filter, page.Limit(), page.Offset())
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	dtos, err := s.withCommentCounts(ctx, posts, in.Client)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	summary := pagination.Summarize(page, total)
	return &models.PostPageDTO{
		Posts:    dtos,
		HasPrev:  summary.HasPrev,
		HasNext:  summary.HasNext,
		LastPage: summary.LastPage,
	}, nil
}

// withCommentCounts maps posts to DTOs, keeping their order. By default each
// post's comments are counted separately; the batch_comment_counts flag
// switches to one grouped query for the whole page, either for everyone or
// for a percentage of clients.
func (s *PostService) withCommentCounts(ctx context.Context, posts []*models.Post, client string) ([]models.PostDTO, error) {
	dtos := make([]models.PostDTO, 0, len(posts))
	if len(posts) == 0 {
		return dtos, nil
	}

	if s.flags.EnabledFor(featureflags.BatchCommentCounts, client) {
		ids := make([]uint, len(posts))
		for i, p := range posts {
			ids[i] = p.ID
		}
		counts, err := s.commentRepo.CountByPosts(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, p := range posts {
			dtos = append(dtos, models.NewPostDTO(p, int(counts[p.ID])))
		}
		return dtos, nil
	}

	for _, p := range posts {
		count, err := s.commentRepo.CountByPost(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, models.NewPostDTO(p, int(count)))
	}
	return dtos, nil
}

// GetPost returns a live post with its comment count. Results are cached.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.PostDTO, error) {
	var dto models.PostDTO
	err := cache.Aside(ctx, cache.PostKey(id), &dto, s.cfg.CacheTTL, func() error {
		loaded, err := s.loadPost(ctx, id)
		if err != nil {
			return err
		}
		dto = *loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *PostService) loadPost(ctx context.Context, id uint) (*models.PostDTO, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "Post", id)
	}
	count, err := s.commentRepo.CountByPost(ctx, id)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	dto := models.NewPostDTO(post, int(count))
	return &dto, nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.PostDTO, error) {
	if err := validation.Struct(in); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post := &models.Post{
		Title: in.Title,
		Text:  in.Text,
		Tags:  models.NewPostTags(0, in.Tags),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	dto := models.NewPostDTO(post, 0)
	s.events.PublishAsync(ctx, notifications.EventPostCreated, dto)
	return &dto, nil
}

// EditPost replaces title, text and tags of a live post.
func (s *PostService) EditPost(ctx context.Context, in UpdatePostInput) (*models.PostDTO, error) {
	if err := validation.Struct(in); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if err := s.postRepo.Update(ctx, in.PostID, in.Title, in.Text, in.Tags); err != nil {
		return nil, storageError(err, "Post", in.PostID)
	}
	cache.InvalidatePost(ctx, in.PostID)

	dto, err := s.loadPost(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	s.events.PublishAsync(ctx, notifications.EventPostUpdated, dto)
	return dto, nil
}

// DeletePost soft-deletes a post, then each of its live comments, then
// releases its image. Every step is idempotent, so when a step fails the
// caller can repeat the whole call and it resumes where it stopped. Deleting
// an id that never existed is a no-op, so callers cannot tell it apart from a
// post that is already deleted.
func (s *PostService) DeletePost(ctx context.Context, id uint) (err error) {
	ctx, end := observability.StartSpan(ctx, "PostService.DeletePost", attribute.Int64("post.id", int64(id)))
	defer func() { end(err) }()

	post, err := s.postRepo.GetByIDIncludingDeleted(ctx, id)
	if repository.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return models.NewInternalError(err)
	}

	if err := s.cascadeStep(ctx, "post", id, func() error { return s.postRepo.Delete(ctx, id) }); err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)

	comments, err := s.commentRepo.ListByPost(ctx, id)
	if err != nil {
		return models.NewInternalError(err)
	}
	for _, c := range comments {
		commentID := c.ID
		if err := s.cascadeStep(ctx, "comment", id, func() error { return s.commentRepo.Delete(ctx, commentID) }); err != nil {
			return models.NewInternalError(err)
		}
	}

	if post.ImageToken != nil && s.images != nil {
		// The post is already gone for readers; a leaked image only costs storage.
		_ = s.cascadeStep(ctx, "image", id, func() error { return s.images.Release(ctx, *post.ImageToken) })
	}

	// A GetPost that read the post before it was deleted may have cached it
	// after the first invalidation.
	cache.InvalidatePost(ctx, id)

	s.events.PublishAsync(ctx, notifications.EventPostDeleted, map[string]uint{"id": id})
	return nil
}

func (s *PostService) cascadeStep(ctx context.Context, step string, postID uint, fn func() error) error {
	if err := fn(); err != nil {
		observability.CascadeSteps.WithLabelValues(step, "failed").Inc()
		middleware.Logger.ErrorContext(ctx, "post delete step failed",
			slog.String("step", step),
			slog.Uint64("post_id", uint64(postID)),
			slog.String("error", err.Error()),
		)
		return err
	}
	observability.CascadeSteps.WithLabelValues(step, "ok").Inc()
	return nil
}

// IncrementLikes adds one like and returns the new total.
func (s *PostService) IncrementLikes(ctx context.Context, id uint) (int, error) {
	if err := s.postRepo.IncrementLikes(ctx, id); err != nil {
		return 0, storageError(err, "Post", id)
	}
	cache.InvalidatePost(ctx, id)

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return 0, storageError(err, "Post", id)
	}
	s.events.PublishAsync(ctx, notifications.EventPostLiked, map[string]any{"id": id, "likesCount": post.LikesCount})
	return post.LikesCount, nil
}

// UploadImage replaces the image of a live post. The new image is stored and
// linked before the previous one is released, so the post never points at
// missing bytes.
func (s *PostService) UploadImage(ctx context.Context, id uint, data []byte) error {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return storageError(err, "Post", id)
	}
	contentType, err := validation.Image(data, s.cfg.MaxImageBytes)
	if err != nil {
		return models.NewValidationError(err.Error())
	}

	token, err := s.images.Store(ctx, data, contentType)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := s.postRepo.SetImage(ctx, id, &token); err != nil {
		s.releaseImage(ctx, token, "failed to release orphaned image")
		return storageError(err, "Post", id)
	}
	cache.InvalidatePost(ctx, id)

	if post.ImageToken != nil {
		s.releaseImage(ctx, *post.ImageToken, "failed to release replaced image")
	}
	return nil
}

// releaseImage drops bytes no post points to any more. A failure leaks
// storage but never a reachable token, so it is only logged.
func (s *PostService) releaseImage(ctx context.Context, token, msg string) {
	if err := s.images.Release(ctx, token); err != nil {
		middleware.Logger.WarnContext(ctx, msg,
			slog.String("token", token),
			slog.String("error", err.Error()),
		)
	}
}

// GetImage returns the image of a live post, or nil when it has none. A token
// whose bytes are gone from the store is a storage failure.
func (s *PostService) GetImage(ctx context.Context, id uint) (*PostImage, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "Post", id)
	}
	if post.ImageToken == nil {
		return nil, nil
	}

	data, contentType, err := s.images.Retrieve(ctx, *post.ImageToken)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("retrieve image %s of post %d: %w", *post.ImageToken, id, err))
	}
	return &PostImage{Data: data, ContentType: contentType}, nil
}
