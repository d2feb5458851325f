package storage

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// ErrInjected is returned by MemoryStorage when a failure was requested.
var ErrInjected = errors.New("injected storage failure")

// MemoryStorage is a map-backed KeyValueStore. Values are copied on the way
// in and out so callers never share buffers with the store.
type MemoryStorage struct {
	data       map[string][]byte
	writes     map[string]int
	mu         sync.RWMutex
	failReads  bool
	failWrites bool
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		data:   make(map[string][]byte),
		writes: make(map[string]int),
	}
}

// FailReads makes subsequent Get calls fail.
func (m *MemoryStorage) FailReads(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failReads = fail
}

// FailWrites makes subsequent Set and Delete calls fail.
func (m *MemoryStorage) FailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites = fail
}

// Writes reports how many successful Set calls hit key.
func (m *MemoryStorage) Writes(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes[key]
}

// Get implements service.KeyValueStore.
func (m *MemoryStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := validateContext(ctx); err != nil {
		return nil, false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.failReads {
		return nil, false, ErrInjected
	}
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

// Set implements service.KeyValueStore.
func (m *MemoryStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWrites {
		return ErrInjected
	}
	if value == nil {
		value = []byte{}
	}
	m.data[key] = slices.Clone(value)
	m.writes[key]++
	return nil
}

// Delete implements service.KeyValueStore.
func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWrites {
		return ErrInjected
	}
	delete(m.data, key)
	return nil
}

// Close implements service.KeyValueStore.
func (m *MemoryStorage) Close() error {
	return nil
}
