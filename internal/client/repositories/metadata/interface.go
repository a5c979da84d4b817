// Package metadata is a small key/value store over the local SQLite
// metadata table.
package metadata

import (
	"context"
)

// Repository reads and writes opaque values by key. Get reports a missing
// key with common.ErrorNotFound.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
