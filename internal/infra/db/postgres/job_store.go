package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"workflow-analyst/internal/domain"
	"workflow-analyst/internal/domain/ports/repository"
	"workflow-analyst/internal/infra/metrics"
)

var _ repository.JobStore = (*JobStore)(nil)

// executor is the subset of pgxpool.Pool the store needs.
type executor interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS job_kv (
  key        TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// JobStore persists job records in a single key/value table.
type JobStore struct {
	db executor
}

func NewJobStore(db executor) *JobStore {
	return &JobStore{db: db}
}

// EnsureSchema creates the job_kv table when missing.
func (s *JobStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create job_kv: %w", wrapPgErr(err))
	}
	return nil
}

func (s *JobStore) Get(ctx context.Context, key string) (string, error) {
	const q = `SELECT value FROM job_kv WHERE key = $1`
	var v string
	if err := s.db.QueryRow(ctx, q, key).Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			metrics.IncStoreOp("postgres", "get", "miss")
			return "", domain.ErrNotFound
		}
		metrics.IncStoreOp("postgres", "get", "error")
		return "", fmt.Errorf("select job %s: %w", key, wrapPgErr(err))
	}
	metrics.IncStoreOp("postgres", "get", "hit")
	return v, nil
}

func (s *JobStore) Set(ctx context.Context, key, value string) error {
	const q = `
INSERT INTO job_kv (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET
  value = EXCLUDED.value,
  updated_at = EXCLUDED.updated_at;`
	if _, err := s.db.Exec(ctx, q, key, value); err != nil {
		metrics.IncStoreOp("postgres", "set", "error")
		return fmt.Errorf("upsert job %s: %w", key, wrapPgErr(err))
	}
	metrics.IncStoreOp("postgres", "set", "ok")
	return nil
}

func (s *JobStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM job_kv WHERE key = $1`, key); err != nil {
		metrics.IncStoreOp("postgres", "delete", "error")
		return fmt.Errorf("delete job %s: %w", key, wrapPgErr(err))
	}
	metrics.IncStoreOp("postgres", "delete", "ok")
	return nil
}

// ReportPoolStats publishes pool gauges.
func ReportPoolStats(pool *pgxpool.Pool) {
	st := pool.Stat()
	metrics.SetStorePoolConns("postgres", int(st.TotalConns()), int(st.IdleConns()), int(st.AcquiredConns()))
}

// wrapPgErr keeps the SQLSTATE visible in logs.
func wrapPgErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s (sqlstate %s): %w", pgErr.Message, pgErr.Code, err)
	}
	return err
}
