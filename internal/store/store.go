// Package store provides the persisted key-value stores that back the
// reading history, the last forecast set and the location cache.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no value is stored under a key.
	ErrNotFound = errors.New("no value stored for key")
)

// KV is the contract every backend (memory, file, Postgres, MongoDB) satisfies.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
