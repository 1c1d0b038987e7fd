package repository

import "context"

// Entity is the minimal contract a persisted record must satisfy to be
// managed by a Repository: a positive numeric identifier.
type Entity interface {
	GetID() int64
}

// Metadata describes an entity type for cache-key derivation and log
// context. Namespace is the logical application grouping (falling back to
// DefaultNamespace when empty); Name is the entity type name. A Repository
// cannot be constructed without a Name.
type Metadata struct {
	Namespace string
	Name      string
}

// Manager performs the actual persistence work for one entity type. The
// Repository validates inputs and maintains the cache; all reads and writes
// go through a Manager. Write operations are expected to run inside one
// atomic transaction each. Reads must apply a deterministic order (by
// primary key) so repeated offset/limit slices are consistent.
//
// Lookups report absence through the bool result; an error means the
// operation itself failed.
type Manager[T Entity] interface {
	GetByID(ctx context.Context, id int64) (T, bool, error)
	GetAll(ctx context.Context, limit, offset int) ([]T, error)
	Filter(ctx context.Context, filters map[string]any, limit, offset int) ([]T, error)
	CreateInstance(ctx context.Context, fields map[string]any) (T, error)
	UpdateInstance(ctx context.Context, record T, fields map[string]any) error
	DeleteInstance(ctx context.Context, record T) error
	BulkCreate(ctx context.Context, records []T, batchSize int) ([]T, error)
	BulkUpdate(ctx context.Context, records []T, fields []string, batchSize int) ([]T, error)
	BulkDelete(ctx context.Context, filters map[string]any) ([]T, error)
	Count(ctx context.Context, filters map[string]any) (int, error)
	Exists(ctx context.Context, filters map[string]any) (bool, error)
}

// ManagerResolver supplies a Manager on first use. The Repository memoizes
// the result for its lifetime; resolvers must be idempotent since a race
// between first callers may invoke one twice.
type ManagerResolver[T Entity] func() (Manager[T], error)
