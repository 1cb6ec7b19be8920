// Package sqlite provides a single-file store for deployments without
// PostgreSQL.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store holds the SQLite connection shared by the repositories.
type Store struct {
	db *sql.DB
}

// Open creates the database file if needed and runs migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Executors() *ExecutorRepository { return &ExecutorRepository{db: s.db} }
func (s *Store) Tasks() *TaskRepository         { return &TaskRepository{db: s.db} }
func (s *Store) Searches() *SearchRepository    { return &SearchRepository{db: s.db} }
func (s *Store) Uploads() *UploadRepository     { return &UploadRepository{db: s.db} }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS executors (
		executor_id TEXT PRIMARY KEY,
		executor_type TEXT NOT NULL,
		display_name TEXT NOT NULL,
		capability_tags TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'ACTIVE',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id TEXT NOT NULL UNIQUE,
		user_id INTEGER NOT NULL,
		executor_id TEXT NOT NULL,
		executor_type TEXT NOT NULL,
		task_type TEXT NOT NULL DEFAULT 'general',
		payload TEXT NOT NULL DEFAULT '{}',
		status TEXT NOT NULL,
		result TEXT,
		created_at DATETIME NOT NULL,
		completed_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS search_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		query TEXT NOT NULL,
		search_type TEXT NOT NULL DEFAULT 'web',
		results_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS uploads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		upload_id TEXT NOT NULL UNIQUE,
		user_id INTEGER NOT NULL,
		file_name TEXT NOT NULL,
		mime_type TEXT NOT NULL DEFAULT 'unknown',
		file_size INTEGER NOT NULL DEFAULT 0,
		file_path TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_search_history_user ON search_history(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_uploads_user ON uploads(user_id, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}
