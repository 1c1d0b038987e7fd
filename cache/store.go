package cache

import (
	"context"
	"time"

	"github.com/nickoine/know/internal/cacheinfra"
)

// ErrMiss is returned by Store.Get when the key is absent or expired.
var ErrMiss = cacheinfra.ErrMiss

// Store is the key/value contract the repository layer caches through.
// Values are opaque byte slices; every method may fail and callers must
// treat failures as advisory (a miss or a no-op), never as a reason to
// abort the surrounding operation.
type Store interface {
	// Get returns the value for key, or ErrMiss when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key for the given time-to-live.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// GetOrSet returns the existing value for key, storing and returning
	// value when the key is absent.
	GetOrSet(ctx context.Context, key string, value []byte, ttl time.Duration) ([]byte, error)
}

// Compile-time checks that both backends satisfy Store.
var (
	_ Store = (*cacheinfra.SturdycStore)(nil)
	_ Store = (*cacheinfra.RedisStore)(nil)
)
