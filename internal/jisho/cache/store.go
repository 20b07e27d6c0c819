// Package cache provides a SQLite-backed store for dictionary verdicts.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/stakahashi/shiritori.space/internal/jisho/cache/migrations"
	"github.com/stakahashi/shiritori.space/internal/platform/storage/sqlitemigrate"
)

// Store persists word verdicts in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite verdict store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Verdict returns the cached verdict for word, reporting whether one exists.
func (s *Store) Verdict(ctx context.Context, word string) (bool, bool, error) {
	if err := ctx.Err(); err != nil {
		return false, false, err
	}
	var isNoun int
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT is_noun FROM word_verdicts WHERE word = ?", word,
	).Scan(&isNoun)
	if err == sql.ErrNoRows {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("read verdict: %w", err)
	}
	return isNoun != 0, true, nil
}

// PutVerdict upserts the verdict for word.
func (s *Store) PutVerdict(ctx context.Context, word string, isNoun bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value := 0
	if isNoun {
		value = 1
	}
	_, err := s.sqlDB.ExecContext(ctx,
		"INSERT OR REPLACE INTO word_verdicts (word, is_noun, checked_at) VALUES (?, ?, ?)",
		word, value, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("write verdict: %w", err)
	}
	return nil
}
