package repository

import (
	"testing"

	"github.com/dgaponov99/practicum-my-blog/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupMockDB returns a Postgres-dialect GORM handle backed by sqlmock, for
// asserting the SQL a repository emits.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

// setupSQLiteDB returns a fresh in-memory database with the blog schema.
func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to ":memory:" is its own database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Post{}, &models.PostTag{}, &models.Comment{}))
	return db
}

func seedPost(t *testing.T, repo PostRepository, title string, tags ...string) *models.Post {
	t.Helper()
	post := &models.Post{Title: title, Text: title + " body", Tags: models.NewPostTags(0, tags)}
	require.NoError(t, repo.Create(t.Context(), post))
	return post
}
