package memory

import (
	"context"
	"sync"

	"workflow-analyst/internal/domain"
	"workflow-analyst/internal/domain/ports/repository"
	"workflow-analyst/internal/infra/metrics"
)

var _ repository.JobStore = (*JobStore)(nil)

// JobStore keeps job records in process memory. Nothing is evicted.
type JobStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewJobStore() *JobStore {
	return &JobStore{data: make(map[string]string)}
}

func (s *JobStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	v, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		metrics.IncStoreOp("memory", "get", "miss")
		return "", domain.ErrNotFound
	}
	metrics.IncStoreOp("memory", "get", "hit")
	return v, nil
}

func (s *JobStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
	metrics.IncStoreOp("memory", "set", "ok")
	return nil
}

func (s *JobStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	metrics.IncStoreOp("memory", "delete", "ok")
	return nil
}

// Len reports how many records are held.
func (s *JobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
