package cacheinfra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisClient captures the subset of go-redis commands the store relies on
// (for easier testing).
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// RedisConfig describes how the redis store should connect.
type RedisConfig struct {
	// Client, when set, is used as-is and not closed by the store.
	Client redis.UniversalClient

	Addr     string
	Username string
	Password string
	DB       int

	// KeyPrefix is prepended to every key, for shared redis deployments.
	KeyPrefix string
}

// RedisStore maps the cache store contract onto redis commands with per-key
// expiry.
type RedisStore struct {
	client    redisClient
	ownClient bool
	prefix    string
}

// NewRedisStore constructs a redis-backed cache store.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	var cl redisClient
	var own bool
	if cfg.Client != nil {
		cl = cfg.Client
	} else {
		if cfg.Addr == "" {
			return nil, fmt.Errorf("cache: redis address is required")
		}
		cl = redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		own = true
	}

	return &RedisStore{client: cl, ownClient: own, prefix: cfg.KeyPrefix}, nil
}

// Get returns the value for key, or ErrMiss when absent.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set stores value under key with the given expiry.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(key), value, ttl).Err()
}

// Delete removes key. Deleting an absent key is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

// GetOrSet stores value only when the key is absent, then returns whatever
// the key now holds.
func (s *RedisStore) GetOrSet(ctx context.Context, key string, value []byte, ttl time.Duration) ([]byte, error) {
	set, err := s.client.SetNX(ctx, s.key(key), value, ttl).Result()
	if err != nil {
		return nil, err
	}
	if set {
		return value, nil
	}

	existing, err := s.Get(ctx, key)
	if errors.Is(err, ErrMiss) {
		// The key expired between SetNX and Get; the caller's value is
		// still the freshest answer.
		return value, nil
	}
	return existing, err
}

// Close releases the underlying client when the store owns it.
func (s *RedisStore) Close() error {
	if s.ownClient {
		return s.client.Close()
	}
	return nil
}

func (s *RedisStore) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + key
}
