package cacheinfra

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis implements the redisClient subset against an in-memory map.
type fakeRedis struct {
	mu     sync.Mutex
	data   map[string][]byte
	closed bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string][]byte{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = []byte(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = []byte(value.([]byte))
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func newTestRedisStore(prefix string) (*RedisStore, *fakeRedis) {
	fake := newFakeRedis()
	return &RedisStore{client: fake, prefix: prefix}, fake
}

func TestRedisStoreGetMiss(t *testing.T) {
	store, _ := newTestRedisStore("")

	_, err := store.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newTestRedisStore("")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisStoreAppliesKeyPrefix(t *testing.T) {
	store, fake := newTestRedisStore("know:")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "user.user.1", []byte("v"), time.Minute))

	fake.mu.Lock()
	_, raw := fake.data["user.user.1"]
	_, prefixed := fake.data["know:user.user.1"]
	fake.mu.Unlock()

	assert.False(t, raw)
	assert.True(t, prefixed)

	got, err := store.Get(ctx, "user.user.1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestRedisStoreGetOrSet(t *testing.T) {
	store, _ := newTestRedisStore("")
	ctx := context.Background()

	got, err := store.GetOrSet(ctx, "k", []byte("first"), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)

	got, err = store.GetOrSet(ctx, "k", []byte("second"), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)
}

func TestRedisStoreCloseLeavesSharedClientOpen(t *testing.T) {
	fake := newFakeRedis()
	store := &RedisStore{client: fake, ownClient: false}
	require.NoError(t, store.Close())
	assert.False(t, fake.closed)

	owned := &RedisStore{client: fake, ownClient: true}
	require.NoError(t, owned.Close())
	assert.True(t, fake.closed)
}

func TestNewRedisStoreRequiresAddr(t *testing.T) {
	_, err := NewRedisStore(RedisConfig{})
	assert.Error(t, err)
}
