package session

import "context"

// KVRepository is durable key-value storage scoped to this host.
// Get returns repository.ErrNotFound for absent keys.
type KVRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
