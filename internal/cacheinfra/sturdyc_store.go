package cacheinfra

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/viccon/sturdyc"
)

// ErrMiss reports an absent or expired cache key.
var ErrMiss = errors.New("cache: miss")

// Config holds the configuration for the sturdyc-backed store.
type Config struct {
	// Capacity defines the maximum number of entries each TTL bucket can
	// store. Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Higher values improve concurrency but increase memory overhead.
	// Must be greater than 0. Default: 256
	NumShards int

	// TTL is the bucket time-to-live used when a caller requests a
	// non-positive ttl. Must be greater than 0.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when a bucket reaches its capacity. Must be between 1-100.
	// Default: 10
	EvictionPercentage int

	// EarlyRefresh configures early refresh behavior for cached entries.
	// If nil, early refresh is disabled.
	EarlyRefresh *EarlyRefreshConfig

	// EvictionInterval sets how often a bucket checks for expired entries.
	// Zero value uses the sturdyc default.
	EvictionInterval time.Duration
}

// EarlyRefreshConfig configures early refresh behavior. Early refresh
// prevents cache stampedes by refreshing entries before they expire when
// they are frequently accessed.
type EarlyRefreshConfig struct {
	// MinAsyncRefreshTime is the minimum time after which an async refresh can occur
	MinAsyncRefreshTime time.Duration

	// MaxAsyncRefreshTime is the maximum time after which an async refresh can occur
	MaxAsyncRefreshTime time.Duration

	// SyncRefreshTime is when a refresh becomes synchronous instead of async
	SyncRefreshTime time.Duration

	// RetryBaseDelay is the base delay for retry attempts when early refresh fails
	RetryBaseDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
		EvictionInterval:   0, // Use default
	}
}

// toSturdycOptions maps the configuration to sturdyc options. Capacity,
// NumShards, TTL, and EvictionPercentage are passed directly to
// sturdyc.New and are not included here.
func (c Config) toSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.EarlyRefresh != nil {
		options = append(options, sturdyc.WithEarlyRefreshes(
			c.EarlyRefresh.MinAsyncRefreshTime,
			c.EarlyRefresh.MaxAsyncRefreshTime,
			c.EarlyRefresh.SyncRefreshTime,
			c.EarlyRefresh.RetryBaseDelay,
		))
	}

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	if c.EarlyRefresh != nil {
		if c.EarlyRefresh.MinAsyncRefreshTime < 0 {
			return &ConfigError{Field: "EarlyRefresh.MinAsyncRefreshTime", Message: "must be non-negative"}
		}
		if c.EarlyRefresh.MaxAsyncRefreshTime < 0 {
			return &ConfigError{Field: "EarlyRefresh.MaxAsyncRefreshTime", Message: "must be non-negative"}
		}
		if c.EarlyRefresh.SyncRefreshTime < 0 {
			return &ConfigError{Field: "EarlyRefresh.SyncRefreshTime", Message: "must be non-negative"}
		}
		if c.EarlyRefresh.RetryBaseDelay < 0 {
			return &ConfigError{Field: "EarlyRefresh.RetryBaseDelay", Message: "must be non-negative"}
		}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// SturdycStore is an in-process store backed by sturdyc clients. Sturdyc
// fixes the TTL per client, so the store lazily maintains one client per
// requested TTL; callers use a small fixed set of TTLs, keeping the bucket
// count bounded.
type SturdycStore struct {
	cfg Config

	mu      sync.RWMutex
	buckets map[time.Duration]*sturdyc.Client[[]byte]
}

// NewSturdycStore creates an in-process cache store.
//
// Version compatibility note: this implementation assumes the sturdyc v1.x
// API. Monitor sturdyc version upgrades for potential option mapping
// changes.
func NewSturdycStore(cfg Config) (*SturdycStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SturdycStore{
		cfg:     cfg,
		buckets: make(map[time.Duration]*sturdyc.Client[[]byte]),
	}, nil
}

// Get returns the value for key from whichever TTL bucket holds it, or
// ErrMiss.
func (s *SturdycStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, client := range s.buckets {
		if value, ok := client.Get(key); ok {
			return value, nil
		}
	}
	return nil, ErrMiss
}

// Set stores value under key in the bucket matching ttl.
func (s *SturdycStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.bucketFor(ttl).Set(key, value)
	return nil
}

// Delete removes key from every bucket.
func (s *SturdycStore) Delete(ctx context.Context, key string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, client := range s.buckets {
		client.Delete(key)
	}
	return nil
}

// GetOrSet returns the existing value for key, storing and returning value
// when the key is absent.
func (s *SturdycStore) GetOrSet(ctx context.Context, key string, value []byte, ttl time.Duration) ([]byte, error) {
	if existing, err := s.Get(ctx, key); err == nil {
		return existing, nil
	}
	if err := s.Set(ctx, key, value, ttl); err != nil {
		return nil, err
	}
	return value, nil
}

func (s *SturdycStore) bucketFor(ttl time.Duration) *sturdyc.Client[[]byte] {
	if ttl <= 0 {
		ttl = s.cfg.TTL
	}

	s.mu.RLock()
	client, ok := s.buckets[ttl]
	s.mu.RUnlock()
	if ok {
		return client
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if client, ok = s.buckets[ttl]; ok {
		return client
	}
	client = sturdyc.New[[]byte](
		s.cfg.Capacity,
		s.cfg.NumShards,
		ttl,
		s.cfg.EvictionPercentage,
		s.cfg.toSturdycOptions()...,
	)
	s.buckets[ttl] = client
	return client
}
