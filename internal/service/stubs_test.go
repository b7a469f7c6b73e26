package service

import (
	"context"
	"sync"

	"github.com/dgaponov99/practicum-my-blog/internal/models"
	"github.com/dgaponov99/practicum-my-blog/internal/repository"
	"github.com/dgaponov99/practicum-my-blog/internal/storage"

	"gorm.io/gorm"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	searchFn         func(context.Context, repository.SearchFilter, int, int) ([]*models.Post, error)
	countFn          func(context.Context, repository.SearchFilter) (int64, error)
	getByIDFn        func(context.Context, uint) (*models.Post, error)
	getAnyByIDFn     func(context.Context, uint) (*models.Post, error)
	createFn         func(context.Context, *models.Post) error
	updateFn         func(context.Context, uint, string, string, []string) error
	incrementLikesFn func(context.Context, uint) error
	setImageFn       func(context.Context, uint, *string) error
	deleteFn         func(context.Context, uint) error
}

func (s *postRepoStub) Search(ctx context.Context, f repository.SearchFilter, limit, offset int) ([]*models.Post, error) {
	return s.searchFn(ctx, f, limit, offset)
}
func (s *postRepoStub) Count(ctx context.Context, f repository.SearchFilter) (int64, error) {
	return s.countFn(ctx, f)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetByIDIncludingDeleted(ctx context.Context, id uint) (*models.Post, error) {
	return s.getAnyByIDFn(ctx, id)
}
func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) Update(ctx context.Context, id uint, title, text string, tags []string) error {
	return s.updateFn(ctx, id, title, text, tags)
}
func (s *postRepoStub) IncrementLikes(ctx context.Context, id uint) error {
	return s.incrementLikesFn(ctx, id)
}
func (s *postRepoStub) SetImage(ctx context.Context, id uint, token *string) error {
	return s.setImageFn(ctx, id, token)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		searchFn: func(context.Context, repository.SearchFilter, int, int) ([]*models.Post, error) { return nil, nil },
		countFn:  func(context.Context, repository.SearchFilter) (int64, error) { return 0, nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
		getAnyByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
		createFn:         func(context.Context, *models.Post) error { return nil },
		updateFn:         func(context.Context, uint, string, string, []string) error { return nil },
		incrementLikesFn: func(context.Context, uint) error { return nil },
		setImageFn:       func(context.Context, uint, *string) error { return nil },
		deleteFn:         func(context.Context, uint) error { return nil },
	}
}

func missingPost(context.Context, uint) (*models.Post, error) {
	return nil, gorm.ErrRecordNotFound
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn       func(context.Context, *models.Comment) error
	getByIDFn      func(context.Context, uint) (*models.Comment, error)
	listByPostFn   func(context.Context, uint) ([]*models.Comment, error)
	countByPostFn  func(context.Context, uint) (int64, error)
	countByPostsFn func(context.Context, []uint) (map[uint]int64, error)
	updateFn       func(context.Context, uint, string) error
	deleteFn       func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) CountByPost(ctx context.Context, postID uint) (int64, error) {
	return s.countByPostFn(ctx, postID)
}
func (s *commentRepoStub) CountByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	return s.countByPostsFn(ctx, postIDs)
}
func (s *commentRepoStub) Update(ctx context.Context, id uint, text string) error {
	return s.updateFn(ctx, id, text)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(context.Context, *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id}, nil
		},
		listByPostFn:   func(context.Context, uint) ([]*models.Comment, error) { return nil, nil },
		countByPostFn:  func(context.Context, uint) (int64, error) { return 0, nil },
		countByPostsFn: func(context.Context, []uint) (map[uint]int64, error) { return map[uint]int64{}, nil },
		updateFn:       func(context.Context, uint, string) error { return nil },
		deleteFn:       func(context.Context, uint) error { return nil },
	}
}

// memoryImageStore is an in-memory storage.ImageStore.
type memoryImageStore struct {
	mu         sync.Mutex
	next       int
	images     map[string][]byte
	releaseErr error
	released   []string
}

func newMemoryImageStore() *memoryImageStore {
	return &memoryImageStore{images: map[string][]byte{}}
}

func (m *memoryImageStore) Store(_ context.Context, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	token := string(rune('a'+m.next-1)) + "-token"
	m.images[token] = data
	return token, nil
}

func (m *memoryImageStore) Retrieve(_ context.Context, token string) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.images[token]
	if !ok {
		return nil, "", storage.ErrImageNotFound
	}
	return data, "image/png", nil
}

func (m *memoryImageStore) Release(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.releaseErr != nil {
		return m.releaseErr
	}
	m.released = append(m.released, token)
	delete(m.images, token)
	return nil
}

// recordingPublisher captures published event types.
type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) PublishAsync(_ context.Context, eventType string, _ any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, eventType)
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.types...)
}
