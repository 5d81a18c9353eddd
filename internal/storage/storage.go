// Package storage is the key-value layer behind the envelope store. Values
// are opaque strings; keys are scoped per user by ScopedStore.
package storage

import (
	"context"
	"errors"
)

// ErrReadOnly is returned by backends that refuse writes.
var ErrReadOnly = errors.New("STORAGE_READ_ONLY")

// Storage is the capability the envelope store needs from a backend.
// Get reports found=false with a nil error for a missing key.
type Storage interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
