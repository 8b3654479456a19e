package core

import (
	"context"
)

// KVStore is the key-value storage every record collection is persisted in.
// Implementations namespace keys with their configured prefix.
type KVStore interface {
	// Get returns ErrKeyNotFound when key has no value.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete is a no-op for missing keys.
	Delete(ctx context.Context, key string) error
	// Clear removes every key under the store prefix, and only those.
	Clear(ctx context.Context) error
	Close() error
}

type DBOrdering struct {
	Field     string
	Ascending bool
}
