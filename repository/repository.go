package repository

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nickoine/know/cache"
)

const (
	// EntityCacheTimeout applies to single-entity keys.
	EntityCacheTimeout = 15 * time.Minute
	// CollectionCacheTimeout applies to get-all result keys.
	CollectionCacheTimeout = 10 * time.Minute
	// CountCacheTimeout applies to count keys.
	CountCacheTimeout = 5 * time.Minute

	// DefaultBatchSize is the batch size bulk operations fall back to.
	DefaultBatchSize = 100

	maxPerPage = 1000
)

// Repository is a validated, cache-fronted facade over a Manager for one
// entity type. The cache is advisory: a failing or disabled cache store
// changes latency, never results. Instances are cheap and hold no cross-call
// state beyond the memoized manager reference, so one per request or per
// service call is the expected usage.
type Repository[T Entity] struct {
	meta    Metadata
	keys    keyBuilder
	resolve ManagerResolver[T]
	store   cache.Store
	log     *logrus.Entry

	mu      sync.Mutex
	manager Manager[T]

	// collectionKeys tracks parameterised collection keys this instance has
	// populated so family invalidation can reach them.
	collectionKeys sync.Map
}

// Option configures a Repository at construction time.
type Option[T Entity] func(*Repository[T])

// WithCache enables the best-effort cache backed by store. A nil store
// leaves caching disabled.
func WithCache[T Entity](store cache.Store) Option[T] {
	return func(r *Repository[T]) { r.store = store }
}

// WithLogger replaces the default logger entry.
func WithLogger[T Entity](log *logrus.Entry) Option[T] {
	return func(r *Repository[T]) { r.log = log }
}

// New constructs a Repository for the entity type described by meta. The
// manager is resolved lazily on first use and memoized. Construction fails
// when the metadata has no entity name or no resolver is supplied; caching
// is disabled unless WithCache provides a store.
func New[T Entity](meta Metadata, resolve ManagerResolver[T], opts ...Option[T]) (*Repository[T], error) {
	if meta.Name == "" {
		return nil, fmt.Errorf("repository: metadata must name an entity type")
	}
	if resolve == nil {
		return nil, fmt.Errorf("repository: a manager resolver is required")
	}

	r := &Repository[T]{
		meta:    meta,
		keys:    newKeyBuilder(meta),
		resolve: resolve,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logrus.StandardLogger().WithField("entity", r.keys.name)
	}
	return r, nil
}

// NewWithManager constructs a Repository around an already-resolved manager.
func NewWithManager[T Entity](meta Metadata, mgr Manager[T], opts ...Option[T]) (*Repository[T], error) {
	if mgr == nil {
		return nil, fmt.Errorf("repository: manager cannot be nil")
	}
	return New(meta, func() (Manager[T], error) { return mgr, nil }, opts...)
}

// Metadata returns the entity-type descriptor this repository was built for.
func (r *Repository[T]) Metadata() Metadata { return r.meta }

// CacheEnabled reports whether a cache store is attached.
func (r *Repository[T]) CacheEnabled() bool { return r.store != nil }

// Manager returns the memoized manager, resolving it on first call.
// Recomputing under a race is harmless since resolvers are idempotent.
func (r *Repository[T]) Manager() (Manager[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.manager == nil {
		mgr, err := r.resolve()
		if err != nil {
			return nil, fmt.Errorf("repository: resolving manager for %s: %w", r.keys.name, err)
		}
		if mgr == nil {
			return nil, fmt.Errorf("repository: resolver returned no manager for %s", r.keys.name)
		}
		r.manager = mgr
	}
	return r.manager, nil
}

// GetByID fetches a single entity, trying the cache before the manager.
// The bool result is false when no entity has that id.
func (r *Repository[T]) GetByID(ctx context.Context, id any) (T, bool, error) {
	var zero T

	vid, err := ValidateID(id)
	if err != nil {
		return zero, false, err
	}

	key := r.keys.Entity(vid, "")
	if rec, ok := r.cacheGetRecord(ctx, key); ok {
		r.log.WithField("id", vid).Debug("cache hit")
		return rec, true, nil
	}

	mgr, err := r.Manager()
	if err != nil {
		return zero, false, r.operationFailed("get_by_id", err, logrus.Fields{"id": Sanitize(id)})
	}

	rec, found, err := mgr.GetByID(ctx, vid)
	if err != nil {
		return zero, false, r.operationFailed("get_by_id", err, logrus.Fields{"id": Sanitize(id)})
	}
	if !found {
		r.log.WithField("id", vid).Debug("entity not found")
		return zero, false, nil
	}

	r.cacheSetRecord(ctx, key, rec, EntityCacheTimeout)
	return rec, true, nil
}

// GetAll fetches entities in primary-key order. A limit of zero means
// unbounded; offset skips leading entities. Results are cached under a key
// that includes the requested range.
func (r *Repository[T]) GetAll(ctx context.Context, limit, offset int) ([]T, error) {
	if err := validateRange(limit, offset); err != nil {
		return nil, err
	}

	key := r.keys.Collection(rangeSuffix(limit, offset))
	if recs, ok := r.cacheGetRecords(ctx, key); ok {
		r.log.WithFields(logrus.Fields{"limit": limit, "offset": offset}).Debug("collection cache hit")
		return recs, nil
	}

	recs, err := r.fetchAll(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	r.cacheSetRecords(ctx, key, recs, CollectionCacheTimeout)
	r.trackCollectionKey(key)
	return recs, nil
}

func (r *Repository[T]) fetchAll(ctx context.Context, limit, offset int) ([]T, error) {
	mgr, err := r.Manager()
	if err != nil {
		return nil, r.operationFailed("get_all", err, logrus.Fields{"limit": limit, "offset": offset})
	}
	recs, err := mgr.GetAll(ctx, limit, offset)
	if err != nil {
		return nil, r.operationFailed("get_all", err, logrus.Fields{"limit": limit, "offset": offset})
	}
	r.log.WithFields(logrus.Fields{"count": len(recs), "limit": limit, "offset": offset}).Debug("fetched entities")
	return recs, nil
}

// Iterate yields entities one at a time, fetching from the manager in
// batches of batchSize until a short batch signals the end. The sequence is
// lazy, forward-only, and bypasses the cache; an invalid batch size or a
// manager failure is yielded in-band as the error of the final pair.
func (r *Repository[T]) Iterate(ctx context.Context, batchSize int) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		if err := validateBatchSize(batchSize); err != nil {
			yield(zero, err)
			return
		}

		offset := 0
		for {
			batch, err := r.fetchAll(ctx, batchSize, offset)
			if err != nil {
				yield(zero, err)
				return
			}
			for _, rec := range batch {
				if !yield(rec, nil) {
					return
				}
			}
			if len(batch) < batchSize {
				return
			}
			offset += batchSize
		}
	}
}

// Create persists a new entity from a field map. Nil and empty-string
// values are stripped before the manager sees them; collection caches are
// invalidated on success.
func (r *Repository[T]) Create(ctx context.Context, fields map[string]any) (T, error) {
	var zero T

	cleaned, err := CleanFields(fields, "create")
	if err != nil {
		return zero, err
	}

	r.log.WithField("fields", Sanitize(cleaned)).Debug("creating entity")

	mgr, err := r.Manager()
	if err != nil {
		return zero, r.operationFailed("create", err, logrus.Fields{"fields": Sanitize(fields)})
	}

	rec, err := mgr.CreateInstance(ctx, cleaned)
	if err != nil {
		return zero, r.operationFailed("create", err, logrus.Fields{"fields": Sanitize(fields)})
	}
	if isNilRecord(rec) {
		return zero, r.operationFailed("create", fmt.Errorf("manager returned no entity"), logrus.Fields{"fields": Sanitize(fields)})
	}

	r.invalidateCollectionCaches(ctx)
	r.log.WithField("id", rec.GetID()).Info("created entity")
	return rec, nil
}

// Update applies a field map to the entity with the given id. The entity is
// re-read from the manager (never the cache) before mutation; absence is
// reported through the bool result, not as an error. On success the
// entity's cache key and the collection caches are invalidated.
func (r *Repository[T]) Update(ctx context.Context, id any, fields map[string]any) (T, bool, error) {
	var zero T

	vid, err := ValidateID(id)
	if err != nil {
		return zero, false, err
	}
	cleaned, err := CleanFields(fields, "update")
	if err != nil {
		return zero, false, err
	}

	failCtx := logrus.Fields{"id": Sanitize(id), "fields": Sanitize(fields)}

	mgr, err := r.Manager()
	if err != nil {
		return zero, false, r.operationFailed("update", err, failCtx)
	}

	rec, found, err := mgr.GetByID(ctx, vid)
	if err != nil {
		return zero, false, r.operationFailed("update", err, failCtx)
	}
	if !found {
		r.log.WithField("id", vid).Warn("update skipped: entity not found")
		return zero, false, nil
	}

	if err := mgr.UpdateInstance(ctx, rec, cleaned); err != nil {
		return zero, false, r.operationFailed("update", err, failCtx)
	}

	r.cacheDelete(ctx, r.keys.Entity(vid, ""))
	r.invalidateCollectionCaches(ctx)

	r.log.WithFields(logrus.Fields{"id": vid, "fields": Sanitize(cleaned)}).Info("updated entity")
	return rec, true, nil
}

// Delete removes the entity with the given id, returning the deleted entity.
// Absence is reported through the bool result.
func (r *Repository[T]) Delete(ctx context.Context, id any) (T, bool, error) {
	var zero T

	vid, err := ValidateID(id)
	if err != nil {
		return zero, false, err
	}

	failCtx := logrus.Fields{"id": Sanitize(id)}

	mgr, err := r.Manager()
	if err != nil {
		return zero, false, r.operationFailed("delete", err, failCtx)
	}

	rec, found, err := mgr.GetByID(ctx, vid)
	if err != nil {
		return zero, false, r.operationFailed("delete", err, failCtx)
	}
	if !found {
		r.log.WithField("id", vid).Warn("delete skipped: entity not found")
		return zero, false, nil
	}

	if err := mgr.DeleteInstance(ctx, rec); err != nil {
		return zero, false, r.operationFailed("delete", err, failCtx)
	}

	r.cacheDelete(ctx, r.keys.Entity(vid, ""))
	r.invalidateCollectionCaches(ctx)

	r.log.WithField("id", vid).Info("deleted entity")
	return rec, true, nil
}

// BulkCreate persists records in batches of batchSize inside one
// transaction. Collection caches are invalidated once, not per record.
func (r *Repository[T]) BulkCreate(ctx context.Context, records []T, batchSize int) ([]T, error) {
	if err := ValidateRecords(records, "bulk create"); err != nil {
		return nil, err
	}
	if err := validateBatchSize(batchSize); err != nil {
		return nil, err
	}

	r.log.WithField("count", len(records)).Debug("starting bulk create")

	mgr, err := r.Manager()
	if err != nil {
		return nil, r.operationFailed("bulk_create", err, logrus.Fields{"count": len(records)})
	}

	created, err := mgr.BulkCreate(ctx, records, batchSize)
	if err != nil {
		return nil, r.operationFailed("bulk_create", err, logrus.Fields{"count": len(records)})
	}
	if len(created) == 0 {
		return nil, r.operationFailed("bulk_create", fmt.Errorf("no records were created"), logrus.Fields{"count": len(records)})
	}

	r.invalidateCollectionCaches(ctx)
	r.log.WithFields(logrus.Fields{"created": len(created), "requested": len(records)}).Info("bulk created entities")
	return created, nil
}

// BulkUpdate writes the named fields of each record in batches of batchSize
// inside one transaction.
func (r *Repository[T]) BulkUpdate(ctx context.Context, records []T, fields []string, batchSize int) ([]T, error) {
	if err := ValidateRecords(records, "bulk update"); err != nil {
		return nil, err
	}
	names, err := ValidateFieldNames(fields, "bulk update")
	if err != nil {
		return nil, err
	}
	if err := validateBatchSize(batchSize); err != nil {
		return nil, err
	}

	r.log.WithFields(logrus.Fields{"count": len(records), "fields": Sanitize(names)}).Debug("starting bulk update")

	failCtx := logrus.Fields{"count": len(records), "fields": Sanitize(fields)}

	mgr, err := r.Manager()
	if err != nil {
		return nil, r.operationFailed("bulk_update", err, failCtx)
	}

	updated, err := mgr.BulkUpdate(ctx, records, names, batchSize)
	if err != nil {
		return nil, r.operationFailed("bulk_update", err, failCtx)
	}
	if len(updated) == 0 {
		return nil, r.operationFailed("bulk_update", fmt.Errorf("no records were updated"), failCtx)
	}

	r.invalidateCollectionCaches(ctx)
	r.log.WithFields(logrus.Fields{"updated": len(updated), "requested": len(records), "fields": Sanitize(names)}).Info("bulk updated entities")
	return updated, nil
}

// BulkDelete removes entities matching filters inside one transaction and
// returns them with their count. When no filters are given a non-empty
// record list is required, and deletion is scoped to those records' ids,
// never the whole table.
func (r *Repository[T]) BulkDelete(ctx context.Context, records []T, filters map[string]any) ([]T, int, error) {
	if records != nil {
		if err := ValidateRecords(records, "bulk delete"); err != nil {
			return nil, 0, err
		}
	}
	if len(filters) == 0 && records == nil {
		return nil, 0, validationErrorf("either a records list or filters must be provided for bulk delete")
	}

	if len(filters) == 0 {
		ids := make([]int64, len(records))
		for i, rec := range records {
			ids[i] = rec.GetID()
		}
		filters = map[string]any{"id": ids}
	}

	failCtx := logrus.Fields{"filters": Sanitize(filters)}
	r.log.WithField("filters", Sanitize(filters)).Debug("starting bulk delete")

	mgr, err := r.Manager()
	if err != nil {
		return nil, 0, r.operationFailed("bulk_delete", err, failCtx)
	}

	deleted, err := mgr.BulkDelete(ctx, filters)
	if err != nil {
		return nil, 0, r.operationFailed("bulk_delete", err, failCtx)
	}

	r.invalidateCollectionCaches(ctx)
	r.log.WithFields(logrus.Fields{"deleted": len(deleted), "filters": Sanitize(filters)}).Info("bulk deleted entities")
	return deleted, len(deleted), nil
}

// Count returns the number of entities matching filters (all entities when
// the map is empty). Results are cached under a filter-derived key with a
// shorter timeout than entity reads.
func (r *Repository[T]) Count(ctx context.Context, filters map[string]any) (int, error) {
	key := r.keys.Collection(countSuffix(filters))
	if n, ok := r.cacheGetCount(ctx, key); ok {
		r.log.WithField("filters", Sanitize(filters)).Debug("count cache hit")
		return n, nil
	}

	mgr, err := r.Manager()
	if err != nil {
		return 0, r.operationFailed("count", err, logrus.Fields{"filters": Sanitize(filters)})
	}

	n, err := mgr.Count(ctx, filters)
	if err != nil {
		return 0, r.operationFailed("count", err, logrus.Fields{"filters": Sanitize(filters)})
	}

	r.cacheSetCount(ctx, key, n, CountCacheTimeout)
	r.trackCollectionKey(key)
	r.log.WithFields(logrus.Fields{"count": n, "filters": Sanitize(filters)}).Debug("counted entities")
	return n, nil
}

// Exists reports whether any entity matches filters. At least one filter is
// required; the check always goes to the manager, bypassing the cache.
func (r *Repository[T]) Exists(ctx context.Context, filters map[string]any) (bool, error) {
	if len(filters) == 0 {
		return false, validationErrorf("at least one filter must be provided for existence check")
	}

	mgr, err := r.Manager()
	if err != nil {
		return false, r.operationFailed("exists", err, logrus.Fields{"filters": Sanitize(filters)})
	}

	found, err := mgr.Exists(ctx, filters)
	if err != nil {
		return false, r.operationFailed("exists", err, logrus.Fields{"filters": Sanitize(filters)})
	}

	r.log.WithFields(logrus.Fields{"filters": Sanitize(filters), "exists": found}).Debug("existence check")
	return found, nil
}

// Paginate returns one page of entities plus pagination bookkeeping. The
// total rides on Count's cache; the page slice itself is fetched from the
// manager uncached.
func (r *Repository[T]) Paginate(ctx context.Context, page, perPage int, filters map[string]any) (*Page[T], error) {
	if err := validatePageParams(page, perPage); err != nil {
		return nil, err
	}

	total, err := r.Count(ctx, filters)
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * perPage

	var entities []T
	if len(filters) > 0 {
		mgr, mErr := r.Manager()
		if mErr != nil {
			return nil, r.operationFailed("paginate", mErr, logrus.Fields{"page": page, "per_page": perPage, "filters": Sanitize(filters)})
		}
		entities, err = mgr.Filter(ctx, filters, perPage, offset)
		if err != nil {
			return nil, r.operationFailed("paginate", err, logrus.Fields{"page": page, "per_page": perPage, "filters": Sanitize(filters)})
		}
	} else {
		entities, err = r.fetchAll(ctx, perPage, offset)
		if err != nil {
			return nil, err
		}
	}

	result := newPage(entities, page, perPage, total)
	r.log.WithFields(logrus.Fields{
		"page":     page,
		"per_page": perPage,
		"total":    total,
		"filters":  Sanitize(filters),
	}).Debug("retrieved page of entities")
	return result, nil
}

// ClearCache removes the cache entry for a specific entity, or the whole
// collection-cache family when id is nil. Cache clearing is non-critical:
// store failures are logged and swallowed.
func (r *Repository[T]) ClearCache(ctx context.Context, id any) error {
	if id != nil {
		vid, err := ValidateID(id)
		if err != nil {
			return err
		}
		r.cacheDelete(ctx, r.keys.Entity(vid, ""))
		r.log.WithField("id", vid).Debug("cleared entity cache")
		return nil
	}

	r.invalidateCollectionCaches(ctx)
	r.log.Debug("cleared collection caches")
	return nil
}

// operationFailed logs one error-level entry with sanitized context and
// wraps err into the normalized operation failure.
func (r *Repository[T]) operationFailed(op string, err error, fields logrus.Fields) error {
	r.log.WithFields(fields).WithError(err).Errorf("%s failed", op)
	return &OperationError{Op: op, Entity: r.keys.name, Err: err}
}
