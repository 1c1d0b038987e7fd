package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/uptrace/bun"

	"github.com/nickoine/know/repository"
)

// Record is the contract a model must satisfy to be managed here: the
// repository's Entity contract plus field-map application for create and
// update.
type Record interface {
	repository.Entity
	ApplyFields(fields map[string]any) error
}

// Manager is the bun-backed datastore manager for one record type. Every
// write runs inside a single transaction; reads apply a deterministic
// primary-key order so offset/limit slices stay consistent across calls.
type Manager[T Record] struct {
	db        *bun.DB
	newRecord func() T
}

// NewManager constructs a Manager. newRecord must return a fresh zero
// record, typically `func() *model.X { return &model.X{} }`.
func NewManager[T Record](db *bun.DB, newRecord func() T) *Manager[T] {
	return &Manager[T]{db: db, newRecord: newRecord}
}

// GetByID fetches one record by primary key. Absence is reported through
// the bool result.
func (m *Manager[T]) GetByID(ctx context.Context, id int64) (T, bool, error) {
	rec := m.newRecord()
	err := m.db.NewSelect().Model(rec).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, false, nil
	}
	if err != nil {
		var zero T
		return zero, false, err
	}
	return rec, true, nil
}

// GetAll fetches records in primary-key order. A non-positive limit means
// unbounded.
func (m *Manager[T]) GetAll(ctx context.Context, limit, offset int) ([]T, error) {
	recs := make([]T, 0)
	q := m.db.NewSelect().Model(&recs).OrderExpr("id ASC")
	q = applyRange(q, limit, offset)
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return recs, nil
}

// Filter fetches records matching the filter map in primary-key order.
// Slice values become IN clauses; everything else is an equality match.
func (m *Manager[T]) Filter(ctx context.Context, filters map[string]any, limit, offset int) ([]T, error) {
	recs := make([]T, 0)
	q := m.db.NewSelect().Model(&recs).OrderExpr("id ASC")
	q = applyFilters(q, filters)
	q = applyRange(q, limit, offset)
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return recs, nil
}

// CreateInstance builds a record from the field map and inserts it in one
// transaction.
func (m *Manager[T]) CreateInstance(ctx context.Context, fields map[string]any) (T, error) {
	var zero T

	rec := m.newRecord()
	if err := rec.ApplyFields(fields); err != nil {
		return zero, err
	}

	err := m.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(rec).Exec(ctx)
		return err
	})
	if err != nil {
		return zero, err
	}
	return rec, nil
}

// UpdateInstance applies the field map to the record in place and persists
// it in one transaction.
func (m *Manager[T]) UpdateInstance(ctx context.Context, record T, fields map[string]any) error {
	if err := record.ApplyFields(fields); err != nil {
		return err
	}
	return m.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().Model(record).WherePK().Exec(ctx)
		return err
	})
}

// DeleteInstance removes the record in one transaction.
func (m *Manager[T]) DeleteInstance(ctx context.Context, record T) error {
	return m.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().Model(record).WherePK().Exec(ctx)
		return err
	})
}

// BulkCreate inserts records in batches of batchSize inside one
// transaction.
func (m *Manager[T]) BulkCreate(ctx context.Context, records []T, batchSize int) ([]T, error) {
	if batchSize <= 0 {
		batchSize = len(records)
	}
	err := m.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for start := 0; start < len(records); start += batchSize {
			batch := records[start:min(start+batchSize, len(records))]
			if _, err := tx.NewInsert().Model(&batch).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// BulkUpdate writes the named columns of each record inside one
// transaction.
func (m *Manager[T]) BulkUpdate(ctx context.Context, records []T, fields []string, batchSize int) ([]T, error) {
	err := m.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, rec := range records {
			q := tx.NewUpdate().Model(rec).WherePK()
			for _, f := range fields {
				q = q.Column(f)
			}
			if _, err := q.Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// BulkDelete removes every record matching the filter map inside one
// transaction and returns the deleted records.
func (m *Manager[T]) BulkDelete(ctx context.Context, filters map[string]any) ([]T, error) {
	if len(filters) == 0 {
		return nil, fmt.Errorf("database: bulk delete requires at least one filter")
	}

	recs := make([]T, 0)
	err := m.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		sel := applyFilters(tx.NewSelect().Model(&recs).OrderExpr("id ASC"), filters)
		if err := sel.Scan(ctx); err != nil {
			return err
		}
		if len(recs) == 0 {
			return nil
		}

		del := tx.NewDelete().Model(m.newRecord())
		for _, k := range sortedFilterKeys(filters) {
			v := filters[k]
			if isSliceValue(v) {
				del = del.Where("? IN (?)", bun.Ident(k), bun.In(v))
			} else {
				del = del.Where("? = ?", bun.Ident(k), v)
			}
		}
		_, err := del.Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// Count returns the number of records matching the filter map (all records
// when the map is empty).
func (m *Manager[T]) Count(ctx context.Context, filters map[string]any) (int, error) {
	q := m.db.NewSelect().Model(m.newRecord())
	q = applyFilters(q, filters)
	return q.Count(ctx)
}

// Exists reports whether any record matches the filter map.
func (m *Manager[T]) Exists(ctx context.Context, filters map[string]any) (bool, error) {
	q := m.db.NewSelect().Model(m.newRecord())
	q = applyFilters(q, filters)
	return q.Exists(ctx)
}

func applyFilters(q *bun.SelectQuery, filters map[string]any) *bun.SelectQuery {
	for _, k := range sortedFilterKeys(filters) {
		v := filters[k]
		if isSliceValue(v) {
			q = q.Where("? IN (?)", bun.Ident(k), bun.In(v))
		} else {
			q = q.Where("? = ?", bun.Ident(k), v)
		}
	}
	return q
}

func applyRange(q *bun.SelectQuery, limit, offset int) *bun.SelectQuery {
	if offset > 0 {
		q = q.Offset(offset)
		if limit <= 0 {
			// SQLite rejects OFFSET without LIMIT.
			limit = math.MaxInt32
		}
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}

func sortedFilterKeys(filters map[string]any) []string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isSliceValue(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.([]byte); ok {
		return false
	}
	k := reflect.ValueOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}
