// Package database handles database connections and schema management.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgaponov99/practicum-my-blog/internal/config"
	"github.com/dgaponov99/practicum-my-blog/internal/middleware"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	// DB is the global primary connection.
	DB *gorm.DB
	// readDB is the optional read replica used for search and counting.
	readDB *gorm.DB
)

// ConnectOptions controls what Connect does after opening the pool.
type ConnectOptions struct {
	ApplySchema bool
}

// Connect opens the primary database, applies the schema and connects the
// read replica when one is configured.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	return ConnectWithOptions(cfg, ConnectOptions{ApplySchema: true})
}

// ConnectWithOptions opens the primary database using opts.
func ConnectWithOptions(cfg *config.Config, opts ConnectOptions) (*gorm.DB, error) {
	dsn := postgresDSN(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
	db, err := open(dsn, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	middleware.Logger.Info("Database connected successfully")

	if opts.ApplySchema {
		if err := ApplySchema(context.Background(), db, cfg); err != nil {
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	if cfg.DBReadHost != "" {
		replicaDSN := postgresDSN(cfg.DBReadHost, cfg.DBReadPort, cfg.DBReadUser, cfg.DBReadPassword, cfg.DBName, cfg.DBSSLMode)
		replica, err := open(replicaDSN, cfg)
		if err != nil {
			// Reads fall back to the primary.
			middleware.Logger.Warn("Read replica unavailable", slog.String("host", cfg.DBReadHost), slog.String("error", err.Error()))
		} else {
			readDB = replica
			middleware.Logger.Info("Read replica connected", slog.String("host", cfg.DBReadHost))
		}
	}

	DB = db
	return DB, nil
}

// GetReadDB returns the read replica, or nil when none is connected.
func GetReadDB() *gorm.DB {
	return readDB
}

func open(dsn string, cfg *config.Config) (*gorm.DB, error) {
	slow := time.Duration(cfg.DBSlowQueryMS) * time.Millisecond
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: NewGormLogger(middleware.Logger, slow),
	})
	if err != nil {
		return nil, err
	}
	if err := configurePool(db, cfg); err != nil {
		return nil, err
	}
	return db, nil
}

func configurePool(db *gorm.DB, cfg *config.Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.DBMaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
	if cfg.DBConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeMinutes) * time.Minute)
	}
	return nil
}

func postgresDSN(host, port, user, password, name, sslMode string) string {
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, name, sslMode)
}
