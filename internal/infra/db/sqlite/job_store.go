package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"workflow-analyst/internal/domain"
	"workflow-analyst/internal/domain/ports/repository"
	"workflow-analyst/internal/infra/metrics"
)

var _ repository.JobStore = (*JobStore)(nil)

// JobStore persists job records to a local SQLite file.
// It is suitable for single-process deployments.
type JobStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// Open creates or opens the database at path (":memory:" works for tests).
func Open(path string) (*JobStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS job_kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	return &JobStore{db: db}, nil
}

func (s *JobStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", domain.ErrStoreClosed
	}

	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM job_kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.IncStoreOp("sqlite", "get", "miss")
		return "", domain.ErrNotFound
	}
	if err != nil {
		metrics.IncStoreOp("sqlite", "get", "error")
		return "", fmt.Errorf("load job %s: %w", key, err)
	}
	metrics.IncStoreOp("sqlite", "get", "hit")
	return v, nil
}

func (s *JobStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStoreClosed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO job_kv (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		metrics.IncStoreOp("sqlite", "set", "error")
		return fmt.Errorf("save job %s: %w", key, err)
	}
	metrics.IncStoreOp("sqlite", "set", "ok")
	return nil
}

func (s *JobStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStoreClosed
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM job_kv WHERE key = ?`, key); err != nil {
		metrics.IncStoreOp("sqlite", "delete", "error")
		return fmt.Errorf("delete job %s: %w", key, err)
	}
	metrics.IncStoreOp("sqlite", "delete", "ok")
	return nil
}

func (s *JobStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
