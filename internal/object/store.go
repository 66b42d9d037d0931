package object

import (
	"fmt"
	"slices"
	"sync"

	apperrors "groot/internal/errors"
)

// Store is a content-addressed object store. Objects are immutable and are
// never deleted.
type Store interface {
	// Put stores data and returns its identifier. Storing content that is
	// already present is a no-op.
	Put(data []byte) (ID, error)
	// Get returns the bytes stored under id, or a NOT_FOUND error.
	Get(id ID) ([]byte, error)
	Has(id ID) (bool, error)
}

// MemoryStore keeps objects in memory. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[ID][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[ID][]byte)}
}

func (m *MemoryStore) Put(data []byte) (ID, error) {
	id, err := Compute(data)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[id]; !ok {
		m.objects[id] = slices.Clone(data)
	}
	return id, nil
}

func (m *MemoryStore) Get(id ID) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[id]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("object not found: %s", id))
	}
	return slices.Clone(data), nil
}

func (m *MemoryStore) Has(id ID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[id]
	return ok, nil
}

// Len returns the number of distinct objects held.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
