// Package seed provides helpers to create demo data for the blog database.
// These helpers are intended for development and testing only.
package seed

import (
	"math/rand"
	"time"

	"github.com/dgaponov99/practicum-my-blog/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// tagPool is the vocabulary seeded posts draw their tags from. It is small so
// that tag searches over seeded data return overlapping result sets.
var tagPool = []string{
	"go", "postgres", "redis", "docker", "kubernetes", "testing",
	"performance", "security", "frontend", "backend", "devops", "career",
}

// Factory builds blog entities and persists them to the database.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	rng   *rand.Rand
}

// NewFactory creates a Factory bound to db. A zero opts.RandomSeed seeds from
// the clock.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		db:    db,
		opts:  opts,
		faker: gofakeit.New(seed),
		rng:   rand.New(rand.NewSource(seed)), //nolint:gosec // demo data
	}
}

// BuildPost constructs a post with fake content and up to MaxTags tags from
// the pool without persisting it.
func (f *Factory) BuildPost(overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Title:      f.faker.Sentence(5),
		Text:       f.faker.Paragraph(2, 4, 12, "\n\n"),
		LikesCount: f.rng.Intn(50),
		Tags:       models.NewPostTags(0, f.pickTags()),
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays*24*60)) * time.Minute
	post.CreatedAt = time.Now().Add(-back)
	post.UpdatedAt = post.CreatedAt

	for _, override := range overrides {
		override(post)
	}
	return post
}

func (f *Factory) pickTags() []string {
	maxTags := f.opts.MaxTags
	if maxTags <= 0 {
		maxTags = 3
	}
	n := f.rng.Intn(maxTags + 1)
	perm := f.rng.Perm(len(tagPool))
	tags := make([]string, 0, n)
	for _, i := range perm[:min(n, len(tagPool))] {
		tags = append(tags, tagPool[i])
	}
	return tags
}

// CreatePost builds and persists a post together with its tags.
func (f *Factory) CreatePost(overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(overrides...)
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a fake comment on post.
func (f *Factory) CreateComment(post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		PostID: post.ID,
		Text:   f.faker.Sentence(f.rng.Intn(12) + 4),
	}
	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}
