package repository

import "context"

// JobStore is a key/value store of opaque serialized job records.
// Get returns domain.ErrNotFound when the key is absent.
type JobStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
