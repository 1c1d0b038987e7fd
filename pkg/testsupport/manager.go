package testsupport

import (
	"context"

	"github.com/nickoine/know/repository"
)

// ManagerStub is a scripted repository.Manager. Tests set only the
// function fields they need; unset methods return zero values. Calls
// records the method names in invocation order.
type ManagerStub[T repository.Entity] struct {
	Calls []string

	GetByIDFunc        func(ctx context.Context, id int64) (T, bool, error)
	GetAllFunc         func(ctx context.Context, limit, offset int) ([]T, error)
	FilterFunc         func(ctx context.Context, filters map[string]any, limit, offset int) ([]T, error)
	CreateInstanceFunc func(ctx context.Context, fields map[string]any) (T, error)
	UpdateInstanceFunc func(ctx context.Context, record T, fields map[string]any) error
	DeleteInstanceFunc func(ctx context.Context, record T) error
	BulkCreateFunc     func(ctx context.Context, records []T, batchSize int) ([]T, error)
	BulkUpdateFunc     func(ctx context.Context, records []T, fields []string, batchSize int) ([]T, error)
	BulkDeleteFunc     func(ctx context.Context, filters map[string]any) ([]T, error)
	CountFunc          func(ctx context.Context, filters map[string]any) (int, error)
	ExistsFunc         func(ctx context.Context, filters map[string]any) (bool, error)
}

func (m *ManagerStub[T]) GetByID(ctx context.Context, id int64) (T, bool, error) {
	m.Calls = append(m.Calls, "GetByID")
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	var zero T
	return zero, false, nil
}

func (m *ManagerStub[T]) GetAll(ctx context.Context, limit, offset int) ([]T, error) {
	m.Calls = append(m.Calls, "GetAll")
	if m.GetAllFunc != nil {
		return m.GetAllFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *ManagerStub[T]) Filter(ctx context.Context, filters map[string]any, limit, offset int) ([]T, error) {
	m.Calls = append(m.Calls, "Filter")
	if m.FilterFunc != nil {
		return m.FilterFunc(ctx, filters, limit, offset)
	}
	return nil, nil
}

func (m *ManagerStub[T]) CreateInstance(ctx context.Context, fields map[string]any) (T, error) {
	m.Calls = append(m.Calls, "CreateInstance")
	if m.CreateInstanceFunc != nil {
		return m.CreateInstanceFunc(ctx, fields)
	}
	var zero T
	return zero, nil
}

func (m *ManagerStub[T]) UpdateInstance(ctx context.Context, record T, fields map[string]any) error {
	m.Calls = append(m.Calls, "UpdateInstance")
	if m.UpdateInstanceFunc != nil {
		return m.UpdateInstanceFunc(ctx, record, fields)
	}
	return nil
}

func (m *ManagerStub[T]) DeleteInstance(ctx context.Context, record T) error {
	m.Calls = append(m.Calls, "DeleteInstance")
	if m.DeleteInstanceFunc != nil {
		return m.DeleteInstanceFunc(ctx, record)
	}
	return nil
}

func (m *ManagerStub[T]) BulkCreate(ctx context.Context, records []T, batchSize int) ([]T, error) {
	m.Calls = append(m.Calls, "BulkCreate")
	if m.BulkCreateFunc != nil {
		return m.BulkCreateFunc(ctx, records, batchSize)
	}
	return records, nil
}

func (m *ManagerStub[T]) BulkUpdate(ctx context.Context, records []T, fields []string, batchSize int) ([]T, error) {
	m.Calls = append(m.Calls, "BulkUpdate")
	if m.BulkUpdateFunc != nil {
		return m.BulkUpdateFunc(ctx, records, fields, batchSize)
	}
	return records, nil
}

func (m *ManagerStub[T]) BulkDelete(ctx context.Context, filters map[string]any) ([]T, error) {
	m.Calls = append(m.Calls, "BulkDelete")
	if m.BulkDeleteFunc != nil {
		return m.BulkDeleteFunc(ctx, filters)
	}
	return nil, nil
}

func (m *ManagerStub[T]) Count(ctx context.Context, filters map[string]any) (int, error) {
	m.Calls = append(m.Calls, "Count")
	if m.CountFunc != nil {
		return m.CountFunc(ctx, filters)
	}
	return 0, nil
}

func (m *ManagerStub[T]) Exists(ctx context.Context, filters map[string]any) (bool, error) {
	m.Calls = append(m.Calls, "Exists")
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, filters)
	}
	return false, nil
}

// CallCount returns how many times the named method was invoked.
func (m *ManagerStub[T]) CallCount(name string) int {
	n := 0
	for _, c := range m.Calls {
		if c == name {
			n++
		}
	}
	return n
}

var _ repository.Manager[*fakeEntity] = (*ManagerStub[*fakeEntity])(nil)

type fakeEntity struct{ ID int64 }

func (e *fakeEntity) GetID() int64 { return e.ID }
