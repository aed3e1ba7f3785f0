// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests and the memory driver to run without SQLite

package store

import (
	"context"
	"sort"
	"sync"
)

// MockStore is an in-memory Store implementation.
// It backs unit tests and the "memory" storage driver.
type MockStore struct {
	mu     sync.RWMutex
	values map[string][]byte

	// PutErr, when set, is returned by every Put without storing anything.
	PutErr error
	// Puts counts successful Put calls.
	Puts int
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		values: make(map[string][]byte),
	}
}

// Get retrieves a copy of the value for key.
func (m *MockStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}

	// Return a copy
	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

// Put stores a copy of value under key.
func (m *MockStore) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PutErr != nil {
		return m.PutErr
	}

	// Make a copy to avoid external modification
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	m.values[key] = valueCopy
	m.Puts++

	return nil
}

// Delete removes key.
func (m *MockStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

// Keys lists stored keys in lexical order.
func (m *MockStore) Keys(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}

// PutCount returns the number of successful Put calls so far.
func (m *MockStore) PutCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Puts
}
