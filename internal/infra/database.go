package infra

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDatabase opens the embedded SQLite store at path and applies the
// connection pragmas. It does not touch the schema.
//
// SQLite supports a single writer, so the pool is pinned to one connection:
// every transaction in the process is serialized through it.
func OpenDatabase(path string) (*gorm.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := path + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("pragmas: %w", err)
	}
	return db, nil
}

// NewDatabase opens the store and runs every pending schema migration before
// returning.
//
// A migration that fails is logged and retried on the next start; NewDatabase
// only fails when the resulting schema cannot serve the services
// (ErrSchemaUnusable) or the file cannot be opened at all.
func NewDatabase(path string) (*gorm.DB, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, err
	}

	res, err := NewMigrator(db).Migrate(context.Background())
	if err != nil {
		_ = CloseDatabase(db)
		return nil, err
	}
	log.Info().
		Str("path", path).
		Ints("aplicadas", res.Aplicadas).
		Int("fallidas", len(res.Fallidas)).
		Msg("database ready")

	return db, nil
}

// CloseDatabase releases the underlying connection. Safe on a nil db.
func CloseDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func applyPragmas(db *gorm.DB) error {
	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if err := db.Exec(p).Error; err != nil {
			return fmt.Errorf("%q: %w", p, err)
		}
	}
	return nil
}
