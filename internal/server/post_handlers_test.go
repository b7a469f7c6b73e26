package server

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dgaponov99/practicum-my-blog/internal/models"
	"github.com/dgaponov99/practicum-my-blog/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Search(ctx context.Context, filter repository.SearchFilter, limit, offset int) ([]*models.Post, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) Count(ctx context.Context, filter repository.SearchFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) GetByIDIncludingDeleted(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *MockPostRepository) Update(ctx context.Context, id uint, title, text string, tags []string) error {
	return m.Called(ctx, id, title, text, tags).Error(0)
}

func (m *MockPostRepository) IncrementLikes(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPostRepository) SetImage(ctx context.Context, id uint, token *string) error {
	return m.Called(ctx, id, token).Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

// MockCommentRepository is a mock of the CommentRepository interface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return m.Called(ctx, comment).Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommentRepository) CountByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	args := m.Called(ctx, postIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint]int64), args.Error(1)
}

func (m *MockCommentRepository) Update(ctx context.Context, id uint, text string) error {
	return m.Called(ctx, id, text).Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func newMockedApp(posts *MockPostRepository, comments *MockCommentRepository) *fiber.App {
	s := &Server{postRepo: posts, commentRepo: comments}
	s.initServices()
	app := s.NewApp()
	s.SetupRoutes(app)
	return app
}

func TestSearchPosts_StorageFailure(t *testing.T) {
	posts := new(MockPostRepository)
	posts.On("Count", mock.Anything, mock.Anything).Return(int64(0), errors.New("connection refused"))
	app := newMockedApp(posts, new(MockCommentRepository))

	status, body := doJSON(t, app, http.MethodGet, "/api/posts", nil)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Contains(t, string(body), models.CodeInternal)
	posts.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchPosts_PassesParsedFilter(t *testing.T) {
	posts := new(MockPostRepository)
	comments := new(MockCommentRepository)
	filter := repository.SearchFilter{Title: "hello", Tags: []string{"go"}}
	posts.On("Count", mock.Anything, filter).Return(int64(1), nil)
	posts.On("Search", mock.Anything, filter, 5, 5).Return([]*models.Post{{ID: 7, Title: "hello"}}, nil)
	comments.On("CountByPost", mock.Anything, uint(7)).Return(int64(3), nil)
	app := newMockedApp(posts, comments)

	status, body := doJSON(t, app, http.MethodGet, searchPath("hello #go", 2, 5), nil)
	assert.Equal(t, fiber.StatusOK, status, string(body))
	assert.Contains(t, string(body), `"commentsCount":3`)
	posts.AssertExpectations(t)
	comments.AssertExpectations(t)
}

func TestGetPost_Errors(t *testing.T) {
	posts := new(MockPostRepository)
	posts.On("GetByID", mock.Anything, uint(1)).Return(nil, gorm.ErrRecordNotFound)
	posts.On("GetByID", mock.Anything, uint(2)).Return(nil, errors.New("timeout"))
	app := newMockedApp(posts, new(MockCommentRepository))

	status, _ := doJSON(t, app, http.MethodGet, "/api/posts/1", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = doJSON(t, app, http.MethodGet, "/api/posts/2", nil)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	status, _ = doJSON(t, app, http.MethodGet, "/api/posts/x", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestDeleteComment_StorageFailure(t *testing.T) {
	comments := new(MockCommentRepository)
	comments.On("GetByID", mock.Anything, uint(5)).Return(nil, errors.New("timeout"))
	app := newMockedApp(new(MockPostRepository), comments)

	status, _ := doJSON(t, app, http.MethodDelete, "/api/posts/1/comments/5", nil)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	comments.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
