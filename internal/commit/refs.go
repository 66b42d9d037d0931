package commit

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	apperrors "groot/internal/errors"
	"groot/internal/object"
	"groot/internal/storage"

	"github.com/dgraph-io/badger/v4"
)

// Refs holds the head pointer: the identifier of the newest commit.
type Refs interface {
	// Head returns nil before the first commit.
	Head() (*object.ID, error)
	SetHead(id object.ID) error
}

const headKey = "HEAD"

type BadgerRefs struct {
	store *storage.BadgerStore
}

func NewBadgerRefs(db *badger.DB) *BadgerRefs {
	return &BadgerRefs{store: storage.NewBadgerStore(db, "ref")}
}

func (r *BadgerRefs) Head() (*object.ID, error) {
	data, err := r.store.GetRaw(headKey)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading head: %w", err)
	}

	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return nil, nil
	}
	id, err := object.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("reading head: %w", err)
	}
	return &id, nil
}

func (r *BadgerRefs) SetHead(id object.ID) error {
	if err := r.store.PutRaw(headKey, []byte(id)); err != nil {
		return fmt.Errorf("updating head: %w", err)
	}
	return nil
}

// MemoryRefs is an in-memory Refs for tests.
type MemoryRefs struct {
	mu   sync.Mutex
	head *object.ID
}

func NewMemoryRefs() *MemoryRefs {
	return &MemoryRefs{}
}

func (m *MemoryRefs) Head() (*object.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.head == nil {
		return nil, nil
	}
	id := *m.head
	return &id, nil
}

func (m *MemoryRefs) SetHead(id object.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.head = &id
	return nil
}
