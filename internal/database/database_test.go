package database

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/dgaponov99/practicum-my-blog/internal/config"
	"github.com/dgaponov99/practicum-my-blog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openSQLite(t)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestConfigurePool_ZeroValuesKeepDefaults(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, configurePool(db, &config.Config{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestPostgresDSN(t *testing.T) {
	dsn := postgresDSN("db", "5432", "blog", "secret", "blog", "")
	assert.Equal(t, "host=db port=5432 user=blog password=secret dbname=blog sslmode=disable", dsn)
}

func TestPersistentModels(t *testing.T) {
	var post, tag, comment bool
	for _, m := range PersistentModels() {
		switch m.(type) {
		case *models.Post:
			post = true
		case *models.PostTag:
			tag = true
		case *models.Comment:
			comment = true
		}
	}
	assert.True(t, post)
	assert.True(t, tag)
	assert.True(t, comment)
}

func TestEmbeddedMigrations(t *testing.T) {
	all := GetMigrations()
	require.Len(t, all, 2)
	assert.Equal(t, "000001_create_posts", all[0].String())
	assert.Equal(t, "000002_create_comments", all[1].String())
	for _, m := range all {
		assert.NotEmpty(t, m.UpScript)
		assert.NotEmpty(t, m.DownScript)
	}
	assert.Contains(t, GetMigrationByVersion(1).UpScript, "post_tags")
	assert.Nil(t, GetMigrationByVersion(99))
}

func TestLoadMigrations(t *testing.T) {
	t.Run("orders by version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"migrations/000010_b.up.sql":   {Data: []byte("B")},
			"migrations/000010_b.down.sql": {Data: []byte("b")},
			"migrations/000002_a.up.sql":   {Data: []byte("A")},
			"migrations/000002_a.down.sql": {Data: []byte("a")},
		}
		got, err := LoadMigrations(fsys)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 2, got[0].Version)
		assert.Equal(t, "a", got[0].Name)
		assert.Equal(t, 10, got[1].Version)
	})

	t.Run("missing down script", func(t *testing.T) {
		fsys := fstest.MapFS{
			"migrations/000001_a.up.sql": {Data: []byte("A")},
		}
		_, err := LoadMigrations(fsys)
		assert.Error(t, err)
	})

	t.Run("bad version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"migrations/abc_a.up.sql":   {Data: []byte("A")},
			"migrations/abc_a.down.sql": {Data: []byte("a")},
		}
		_, err := LoadMigrations(fsys)
		assert.Error(t, err)
	})
}

func TestRunMigrations_AppliesPendingOnce(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	store := NewMigrationStore(db)
	registered := []Migration{
		{Version: 1, Name: "widgets", UpScript: "CREATE TABLE widgets (id INTEGER PRIMARY KEY)", DownScript: "DROP TABLE widgets"},
		{Version: 2, Name: "gadgets", UpScript: "CREATE TABLE gadgets (id INTEGER PRIMARY KEY)", DownScript: "DROP TABLE gadgets"},
	}

	require.NoError(t, runMigrations(ctx, store, registered))
	require.NoError(t, runMigrations(ctx, store, registered))

	applied, err := store.AppliedVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, applied)
	assert.True(t, db.Migrator().HasTable("gadgets"))

	require.NoError(t, store.Revert(ctx, registered[1]))
	assert.False(t, db.Migrator().HasTable("gadgets"))
	applied, err = store.AppliedVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, applied)
}

func TestRunMigrations_RejectsUnknownVersions(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	store := NewMigrationStore(db)
	require.NoError(t, store.EnsureTable(ctx))
	require.NoError(t, db.Create(&MigrationLog{Version: 42, Name: "future"}).Error)

	err := runMigrations(ctx, store, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000042")
}

func TestSchemaPlan(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		sql     bool
		auto    bool
		wantErr bool
	}{
		{name: "default hybrid in development", cfg: config.Config{Env: "development"}, sql: true, auto: true},
		{name: "hybrid in production skips automigrate", cfg: config.Config{Env: "production", DBSchemaMode: "hybrid"}, sql: true},
		{name: "sql only", cfg: config.Config{Env: "development", DBSchemaMode: "SQL"}, sql: true},
		{name: "auto in development", cfg: config.Config{Env: "development", DBSchemaMode: "auto"}, auto: true},
		{name: "auto in production refused", cfg: config.Config{Env: "production", DBSchemaMode: "auto"}, wantErr: true},
		{name: "auto in production allowed", cfg: config.Config{Env: "prod", DBSchemaMode: "auto", DBAutoMigrateAllowDestructive: true}, auto: true},
		{name: "unknown mode", cfg: config.Config{DBSchemaMode: "magic"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPlan(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.sql, runSQL)
			assert.Equal(t, tt.auto, runAuto)
		})
	}
}

func TestApplySchema_AutoMode(t *testing.T) {
	db := openSQLite(t)
	cfg := &config.Config{Env: "test", DBSchemaMode: SchemaModeAuto}

	require.NoError(t, ApplySchema(context.Background(), db, cfg))
	assert.True(t, db.Migrator().HasTable(&models.Post{}))
	assert.True(t, db.Migrator().HasTable("post_tags"))
	assert.True(t, db.Migrator().HasTable(&models.Comment{}))

	status, err := GetSchemaStatus(context.Background(), db, cfg)
	require.NoError(t, err)
	assert.False(t, status.WillRunSQL)
	assert.True(t, status.WillRunAutoMigrate)
}
