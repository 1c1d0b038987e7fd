// Package testsupport provides test doubles shared across packages: an
// in-memory recording cache store and a scripted persistence manager.
package testsupport

import (
	"context"
	"sync"
	"time"

	"github.com/nickoine/know/cache"
)

// MemoryStore is a map-backed cache.Store that records every operation so
// tests can assert on the exact key traffic. Error fields, when set, make
// the corresponding method fail.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte

	Gets    []string
	Sets    []string
	Deletes []string

	FailGet    error
	FailSet    error
	FailDelete error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Gets = append(s.Gets, key)
	if s.FailGet != nil {
		return nil, s.FailGet
	}
	v, ok := s.data[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return v, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Sets = append(s.Sets, key)
	if s.FailSet != nil {
		return s.FailSet
	}
	s.data[key] = value
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Deletes = append(s.Deletes, key)
	if s.FailDelete != nil {
		return s.FailDelete
	}
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) GetOrSet(ctx context.Context, key string, value []byte, ttl time.Duration) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.data[key]; ok {
		return existing, nil
	}
	s.data[key] = value
	return value, nil
}

// Contains reports whether key currently holds a value.
func (s *MemoryStore) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

// Len returns the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Reset clears stored data and recorded operations, keeping error fields.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = map[string][]byte{}
	s.Gets, s.Sets, s.Deletes = nil, nil, nil
}

var _ cache.Store = (*MemoryStore)(nil)
