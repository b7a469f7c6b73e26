package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/dgaponov99/practicum-my-blog/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postIDs(posts []*models.Post) []uint {
	return lo.Map(posts, func(p *models.Post, _ int) uint { return p.ID })
}

func TestPostRepository_TagSuperset(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	a := seedPost(t, repo, "A", "go", "news")
	b := seedPost(t, repo, "B", "go")
	c := seedPost(t, repo, "C")
	d := seedPost(t, repo, "D", "go", "news", "tech")

	tests := []struct {
		name string
		tags []string
		want []uint
	}{
		{name: "no tags matches everything", tags: nil, want: []uint{d.ID, c.ID, b.ID, a.ID}},
		{name: "single tag", tags: []string{"go"}, want: []uint{d.ID, b.ID, a.ID}},
		{name: "all of several tags", tags: []string{"go", "news"}, want: []uint{d.ID, a.ID}},
		{name: "duplicates collapse", tags: []string{"news", "news", "go"}, want: []uint{d.ID, a.ID}},
		{name: "unknown tag", tags: []string{"go", "rust"}, want: []uint{}},
		{name: "tags are case-sensitive", tags: []string{"Go"}, want: []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := SearchFilter{Tags: tt.tags}
			posts, err := repo.Search(ctx, filter, 100, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, postIDs(posts))

			total, err := repo.Count(ctx, filter)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.want)), total)
		})
	}
}

func TestPostRepository_TitleFilter(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	hello := seedPost(t, repo, "Hello World", "greeting")
	seedPost(t, repo, "Goodbye", "greeting")
	yellow := seedPost(t, repo, "yellow submarine")

	posts, err := repo.Search(ctx, SearchFilter{Title: "ELLO"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{yellow.ID, hello.ID}, postIDs(posts))

	posts, err = repo.Search(ctx, SearchFilter{Title: "ello", Tags: []string{"greeting"}}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{hello.ID}, postIDs(posts))

	total, err := repo.Count(ctx, SearchFilter{Title: "   "})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total, "a blank title does not filter")
}

func TestPostRepository_WindowAndOrder(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	var ids []uint
	for i := 0; i < 25; i++ {
		ids = append(ids, seedPost(t, repo, fmt.Sprintf("post %02d", i), "bulk").ID)
	}
	newestFirst := lo.Reverse(ids)

	filter := SearchFilter{Tags: []string{"bulk"}}
	for _, window := range []struct{ offset, size int }{{0, 10}, {10, 10}, {20, 5}} {
		posts, err := repo.Search(ctx, filter, 10, window.offset)
		require.NoError(t, err)
		assert.Equal(t, newestFirst[window.offset:window.offset+window.size], postIDs(posts))
	}

	posts, err := repo.Search(ctx, filter, 10, 490)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPostRepository_SoftDeletedPostsAreInvisible(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	kept := seedPost(t, repo, "kept", "go")
	gone := seedPost(t, repo, "gone", "go")
	require.NoError(t, repo.Delete(ctx, gone.ID))
	require.NoError(t, repo.Delete(ctx, gone.ID), "deleting twice is a no-op")

	posts, err := repo.Search(ctx, SearchFilter{Tags: []string{"go"}}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{kept.ID}, postIDs(posts))

	total, err := repo.Count(ctx, SearchFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, err = repo.GetByID(ctx, gone.ID)
	assert.True(t, IsNotFound(err))

	raw, err := repo.GetByIDIncludingDeleted(ctx, gone.ID)
	require.NoError(t, err)
	assert.True(t, raw.IsDeleted())
	assert.Equal(t, []string{"go"}, raw.TagNames())

	assert.True(t, IsNotFound(repo.IncrementLikes(ctx, gone.ID)))
	assert.True(t, IsNotFound(repo.Update(ctx, gone.ID, "t", "x", nil)))
}

func TestPostRepository_UpdateReplacesTags(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := seedPost(t, repo, "before", "old", "shared")
	require.NoError(t, repo.Update(ctx, post.ID, "after", "new text", []string{"shared", "fresh", "fresh"}))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Title)
	assert.Equal(t, "new text", got.Text)
	assert.Equal(t, []string{"fresh", "shared"}, got.TagNames())

	require.NoError(t, repo.Update(ctx, post.ID, "after", "new text", nil))
	got, err = repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)

	assert.True(t, IsNotFound(repo.Update(ctx, 9999, "t", "x", nil)))
}

func TestPostRepository_LikesAndImage(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := seedPost(t, repo, "liked")
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.IncrementLikes(ctx, post.ID))
	}
	token := "3f1c9a7e-0000-4000-8000-000000000000"
	require.NoError(t, repo.SetImage(ctx, post.ID, &token))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.LikesCount)
	require.NotNil(t, got.ImageToken)
	assert.Equal(t, token, *got.ImageToken)

	require.NoError(t, repo.SetImage(ctx, post.ID, nil))
	got, err = repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ImageToken)

	assert.True(t, IsNotFound(repo.IncrementLikes(ctx, 12345)))
}

func TestPostRepository_CountQueryShape(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM \(SELECT posts\.id FROM "posts" JOIN post_tags ON post_tags\.post_id = posts\.id ` +
		`WHERE posts\.deleted_at IS NULL AND LOWER\(posts\.title\) LIKE LOWER\(\$1\) AND post_tags\.tag IN \(\$2,\$3\) ` +
		`GROUP BY "posts"\."id" HAVING COUNT\(DISTINCT post_tags\.tag\) = \$4\) AS matched`).
		WithArgs("%go%", "go", "news", 2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	total, err := repo.Count(context.Background(), SearchFilter{Title: "go", Tags: []string{"go", "news", "go"}})
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
