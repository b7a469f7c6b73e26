package database

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dgaponov99/practicum-my-blog/internal/middleware"

	"gorm.io/gorm"
)

// MigrationLog records one applied migration.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the database table name for MigrationLog.
func (MigrationLog) TableName() string {
	return "migration_logs"
}

// MigrationStore tracks which migrations have been applied.
type MigrationStore interface {
	EnsureTable(ctx context.Context) error
	AppliedVersions(ctx context.Context) ([]int, error)
	Apply(ctx context.Context, m Migration) error
	Revert(ctx context.Context, m Migration) error
}

type migrationStore struct {
	db *gorm.DB
}

// NewMigrationStore creates a MigrationStore backed by the migration_logs table.
func NewMigrationStore(db *gorm.DB) MigrationStore {
	return &migrationStore{db: db}
}

func (s *migrationStore) EnsureTable(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&MigrationLog{}); err != nil {
		return fmt.Errorf("ensure migration_logs: %w", err)
	}
	return nil
}

func (s *migrationStore) AppliedVersions(ctx context.Context) ([]int, error) {
	var versions []int
	err := s.db.WithContext(ctx).Model(&MigrationLog{}).Order("version ASC").Pluck("version", &versions).Error
	if err != nil {
		if isMissingTableError(err) {
			return []int{}, nil
		}
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	return versions, nil
}

// Apply runs the up script and records it in one transaction.
func (s *migrationStore) Apply(ctx context.Context, m Migration) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.UpScript).Error; err != nil {
			return fmt.Errorf("apply migration %s: %w", m.String(), err)
		}
		if err := tx.Create(&MigrationLog{Version: m.Version, Name: m.Name}).Error; err != nil {
			return fmt.Errorf("record migration %s: %w", m.String(), err)
		}
		return nil
	})
}

// Revert runs the down script and removes the log entry in one transaction.
func (s *migrationStore) Revert(ctx context.Context, m Migration) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.DownScript).Error; err != nil {
			return fmt.Errorf("revert migration %s: %w", m.String(), err)
		}
		if err := tx.Where("version = ?", m.Version).Delete(&MigrationLog{}).Error; err != nil {
			return fmt.Errorf("unrecord migration %s: %w", m.String(), err)
		}
		return nil
	})
}

func isMissingTableError(err error) bool {
	msg := err.Error()
	return (strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist")) ||
		strings.Contains(msg, "no such table")
}

// RunMigrations applies every embedded migration not yet recorded.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	return runMigrations(ctx, NewMigrationStore(db), migrations)
}

func runMigrations(ctx context.Context, store MigrationStore, registered []Migration) error {
	if err := store.EnsureTable(ctx); err != nil {
		return err
	}
	applied, err := store.AppliedVersions(ctx)
	if err != nil {
		return err
	}
	if err := checkKnownVersions(applied, registered); err != nil {
		return err
	}

	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	for _, m := range registered {
		if done[m.Version] {
			continue
		}
		middleware.Logger.Info("Applying migration", slog.Int("version", m.Version), slog.String("name", m.Name))
		if err := store.Apply(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// checkKnownVersions fails when the database records a migration this binary
// does not ship, which means the schema is ahead of the code.
func checkKnownVersions(applied []int, registered []Migration) error {
	known := make(map[int]bool, len(registered))
	for _, m := range registered {
		known[m.Version] = true
	}

	var unknown []string
	sorted := append([]int(nil), applied...)
	sort.Ints(sorted)
	for _, v := range sorted {
		if !known[v] {
			unknown = append(unknown, fmt.Sprintf("%06d", v))
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("migration_logs has versions unknown to this build: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// RollbackMigration reverts one applied migration.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	m := GetMigrationByVersion(version)
	if m == nil {
		return fmt.Errorf("migration version %d not found", version)
	}

	store := NewMigrationStore(db)
	applied, err := store.AppliedVersions(ctx)
	if err != nil {
		return err
	}
	isApplied := false
	for _, v := range applied {
		if v == version {
			isApplied = true
			break
		}
	}
	if !isApplied {
		return fmt.Errorf("migration %d has not been applied", version)
	}

	middleware.Logger.Info("Rolling back migration", slog.Int("version", version), slog.String("name", m.Name))
	return store.Revert(ctx, *m)
}
