package adapter

import (
	"context"
	"time"
)

// JobEvent is emitted after every job status write.
type JobEvent struct {
	JobID     string    `json:"jobId"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// JobEventPublisher announces job lifecycle changes. Implementations must not block for long.
type JobEventPublisher interface {
	PublishJobEvent(ctx context.Context, ev JobEvent) error
}
