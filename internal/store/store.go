// Package store defines the flat key→string persistence the session layer
// writes through, plus the in-process implementations.
//
// Durable database-backed stores live in internal/repository.
package store

import (
	"context"
)

// Store is a durable key→string map. Get returns domain.ErrKeyNotFound for
// keys that were never set.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
