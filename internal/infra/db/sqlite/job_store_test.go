package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflow-analyst/internal/domain"
)

func TestJobStore_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "jobs.db")
	s, err := Open(path)
	require.NoError(t, err)

	_, err = s.Get(ctx, "job:1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.Set(ctx, "job:1", `{"status":"pending"}`))
	require.NoError(t, s.Set(ctx, "job:1", `{"status":"completed"}`))
	v, err := s.Get(ctx, "job:1")
	require.NoError(t, err)
	assert.Equal(t, `{"status":"completed"}`, v)

	require.NoError(t, s.Close())

	// records survive a reopen
	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	v, err = s2.Get(ctx, "job:1")
	require.NoError(t, err)
	assert.Equal(t, `{"status":"completed"}`, v)

	require.NoError(t, s2.Delete(ctx, "job:1"))
	_, err = s2.Get(ctx, "job:1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobStore_Closed(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "closing twice is a no-op")

	_, err = s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, domain.ErrStoreClosed)
	assert.ErrorIs(t, s.Set(context.Background(), "k", "v"), domain.ErrStoreClosed)
}
