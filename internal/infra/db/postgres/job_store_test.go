//go:build !integration

package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"workflow-analyst/internal/domain"
)

type fakeRow struct {
	val string
	err error
}

func (r fakeRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.val
	return nil
}

// fakeExec mimics the job_kv table closely enough for store tests.
type fakeExec struct {
	rows    map[string]string
	execErr error
	queries []string
}

func (f *fakeExec) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	f.queries = append(f.queries, sql)
	v, ok := f.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{val: v}
}

func (f *fakeExec) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	f.queries = append(f.queries, sql)
	if f.execErr != nil {
		return nil, f.execErr
	}
	switch {
	case strings.Contains(sql, "INSERT INTO job_kv"):
		f.rows[args[0].(string)] = args[1].(string)
		return pgconn.CommandTag("INSERT 0 1"), nil
	case strings.Contains(sql, "DELETE FROM job_kv"):
		delete(f.rows, args[0].(string))
		return pgconn.CommandTag("DELETE 1"), nil
	}
	return pgconn.CommandTag(""), nil
}

func TestJobStore_Unit(t *testing.T) {
	ctx := context.Background()
	fx := &fakeExec{rows: map[string]string{}}
	s := NewJobStore(fx)

	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if _, err := s.Get(ctx, "job:1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, "job:1", `{"status":"pending"}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, err := s.Get(ctx, "job:1"); err != nil || v != `{"status":"pending"}` {
		t.Fatalf("Get = %q, %v", v, err)
	}
	if err := s.Delete(ctx, "job:1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "job:1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestJobStore_PgErrorKeepsCode(t *testing.T) {
	fx := &fakeExec{rows: map[string]string{}, execErr: &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}}
	s := NewJobStore(fx)

	err := s.Set(context.Background(), "job:1", "{}")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "42P01") {
		t.Errorf("sqlstate missing from %q", err)
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		t.Error("wrapped error should still unwrap to *pgconn.PgError")
	}
}
