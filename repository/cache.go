package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/nickoine/know/cache"
)

// The helpers below form the best-effort cache boundary: every store
// interaction is wrapped so a failing store degrades to a miss or a no-op,
// logged at warn level, and never reaches the caller. A nil store (caching
// disabled) short-circuits before touching anything.

func (r *Repository[T]) cacheGetRecord(ctx context.Context, key string) (T, bool) {
	var zero T
	data, ok := r.cacheGetBytes(ctx, key)
	if !ok {
		return zero, false
	}

	var rec T
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		r.log.WithError(err).WithField("cache_key", key).Warn("cache decode failed")
		return zero, false
	}
	return rec, true
}

func (r *Repository[T]) cacheSetRecord(ctx context.Context, key string, rec T, ttl time.Duration) {
	if r.store == nil {
		return
	}
	data, err := msgpack.Marshal(rec)
	if err != nil {
		r.log.WithError(err).WithField("cache_key", key).Warn("cache encode failed")
		return
	}
	r.cacheSetBytes(ctx, key, data, ttl)
}

func (r *Repository[T]) cacheGetRecords(ctx context.Context, key string) ([]T, bool) {
	data, ok := r.cacheGetBytes(ctx, key)
	if !ok {
		return nil, false
	}

	var recs []T
	if err := msgpack.Unmarshal(data, &recs); err != nil {
		r.log.WithError(err).WithField("cache_key", key).Warn("cache decode failed")
		return nil, false
	}
	return recs, true
}

func (r *Repository[T]) cacheSetRecords(ctx context.Context, key string, recs []T, ttl time.Duration) {
	if r.store == nil {
		return
	}
	data, err := msgpack.Marshal(recs)
	if err != nil {
		r.log.WithError(err).WithField("cache_key", key).Warn("cache encode failed")
		return
	}
	r.cacheSetBytes(ctx, key, data, ttl)
}

func (r *Repository[T]) cacheGetCount(ctx context.Context, key string) (int, bool) {
	data, ok := r.cacheGetBytes(ctx, key)
	if !ok {
		return 0, false
	}

	var n int
	if err := msgpack.Unmarshal(data, &n); err != nil {
		r.log.WithError(err).WithField("cache_key", key).Warn("cache decode failed")
		return 0, false
	}
	return n, true
}

func (r *Repository[T]) cacheSetCount(ctx context.Context, key string, n int, ttl time.Duration) {
	if r.store == nil {
		return
	}
	data, err := msgpack.Marshal(n)
	if err != nil {
		r.log.WithError(err).WithField("cache_key", key).Warn("cache encode failed")
		return
	}
	r.cacheSetBytes(ctx, key, data, ttl)
}

func (r *Repository[T]) cacheGetBytes(ctx context.Context, key string) ([]byte, bool) {
	if r.store == nil {
		return nil, false
	}
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			r.log.WithError(err).WithField("cache_key", key).Warn("cache get failed")
		}
		return nil, false
	}
	return data, true
}

func (r *Repository[T]) cacheSetBytes(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if err := r.store.Set(ctx, key, data, ttl); err != nil {
		r.log.WithError(err).WithField("cache_key", key).Warn("cache set failed")
	}
}

func (r *Repository[T]) cacheDelete(ctx context.Context, key string) {
	if r.store == nil {
		return
	}
	if err := r.store.Delete(ctx, key); err != nil {
		r.log.WithError(err).WithField("cache_key", key).Warn("cache delete failed")
	}
}

// trackCollectionKey registers a parameterised collection key (ranged
// get-all, filtered count) so family invalidation can delete it later.
func (r *Repository[T]) trackCollectionKey(key string) {
	r.collectionKeys.Store(key, struct{}{})
}

// invalidateCollectionCaches deletes the three collection-family base keys
// plus every tracked parameterised variant. Failures are logged and
// swallowed; invalidation is best-effort.
func (r *Repository[T]) invalidateCollectionCaches(ctx context.Context) {
	if r.store == nil {
		return
	}

	keys := map[string]struct{}{
		r.keys.Collection("all"):       {},
		r.keys.Collection("count"):     {},
		r.keys.Collection("paginated"): {},
	}
	r.collectionKeys.Range(func(k, _ any) bool {
		keys[k.(string)] = struct{}{}
		r.collectionKeys.Delete(k)
		return true
	})

	for key := range keys {
		r.cacheDelete(ctx, key)
	}
}
