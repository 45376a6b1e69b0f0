package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workflow-analyst/internal/domain"
	"workflow-analyst/internal/domain/ports/repository"
	"workflow-analyst/internal/infra/metrics"
)

var _ repository.JobStore = (*JobStore)(nil)

// JobStore keeps serialized jobs as plain string values.
// A zero ttl keeps records until deleted.
type JobStore struct {
	client RedisClient
	ttl    time.Duration
}

func NewJobStore(client RedisClient, ttl time.Duration) *JobStore {
	return &JobStore{client: client, ttl: ttl}
}

func (s *JobStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, key)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		metrics.IncStoreOp("redis", "get", "miss")
		return "", domain.ErrNotFound
	case err != nil:
		metrics.IncStoreOp("redis", "get", "error")
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	metrics.IncStoreOp("redis", "get", "hit")
	return v, nil
}

func (s *JobStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, s.ttl); err != nil {
		metrics.IncStoreOp("redis", "set", "error")
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	metrics.IncStoreOp("redis", "set", "ok")
	return nil
}

func (s *JobStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key); err != nil {
		metrics.IncStoreOp("redis", "delete", "error")
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	metrics.IncStoreOp("redis", "delete", "ok")
	return nil
}
