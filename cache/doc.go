// Package cache defines the advisory key/value store contract the
// repository layer caches through, plus constructors for the bundled
// backends.
//
// # Overview
//
// The package exports one interface and a configuration surface:
//
//   - Store: byte-oriented get / set-with-ttl / delete / get-or-set
//   - Config: backend selection ("memory" or "redis") with per-backend tuning
//
// Stores are advisory by contract: any method may fail, and callers are
// expected to degrade to a cache miss or a no-op rather than abort the
// surrounding operation. Absence is signalled with ErrMiss so callers can
// distinguish an empty slot from a store fault.
//
// # Backends
//
// The memory backend is an in-process sturdyc cache. Sturdyc fixes the
// time-to-live per client, so the adapter keeps one client per requested TTL
// bucket; the repository layer only ever uses a small fixed set of TTLs
// (entity, collection, count), which keeps the bucket count bounded.
//
// The redis backend maps the contract directly onto GET/SET/DEL/SETNX with
// per-key expiry and an optional key prefix for shared deployments.
//
// # Basic Usage
//
//	store, err := cache.New(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	err = store.Set(ctx, "questionnaire.questionnaire.42", payload, 15*time.Minute)
//
// # See Also
//
// For the caching policy built on top of a Store (key layout, invalidation,
// timeouts), see the repository package.
package cache
