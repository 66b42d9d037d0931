// internal/staging/index.go
package staging

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	apperrors "groot/internal/errors"
	"groot/internal/object"
	"groot/internal/storage"

	"github.com/dgraph-io/badger/v4"
)

// FormatVersion is the version written into the persisted index record.
const FormatVersion = 1

// Entry pairs a repository-relative path with the object holding its content.
type Entry struct {
	Path string    `json:"path"`
	ID   object.ID `json:"id"`
}

// Index is the ordered list of entries staged for the next commit. It is a
// list, not a map: staging a path twice yields two entries.
type Index interface {
	Stage(path string, id object.ID) error
	Entries() ([]Entry, error)
	Clear() error
}

type record struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

const indexKey = "entries"

// BadgerIndex persists the index in badger. Every call reads and writes the
// stored record; nothing is held in memory between calls.
type BadgerIndex struct {
	store *storage.BadgerStore
}

func NewBadgerIndex(db *badger.DB) *BadgerIndex {
	return &BadgerIndex{store: storage.NewBadgerStore(db, "index")}
}

func (x *BadgerIndex) Stage(path string, id object.ID) error {
	if path == "" {
		return apperrors.ValidationError("path is required")
	}
	entries, err := x.Entries()
	if err != nil {
		return err
	}
	entries = append(entries, Entry{Path: path, ID: id})
	return x.save(entries)
}

func (x *BadgerIndex) Entries() ([]Entry, error) {
	var rec record
	err := x.store.Get(indexKey, &rec)
	if errors.Is(err, apperrors.ErrNotFound) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading index: %w", err)
	}
	if rec.Version > FormatVersion {
		return nil, fmt.Errorf("index format version %d is newer than supported %d", rec.Version, FormatVersion)
	}
	if rec.Entries == nil {
		rec.Entries = []Entry{}
	}
	return rec.Entries, nil
}

// Clear drops the stored record; a missing record reads as an empty index.
func (x *BadgerIndex) Clear() error {
	if err := x.store.Delete(indexKey); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}
	return nil
}

func (x *BadgerIndex) save(entries []Entry) error {
	if err := x.store.Put(indexKey, record{Version: FormatVersion, Entries: entries}); err != nil {
		return fmt.Errorf("saving index: %w", err)
	}
	return nil
}

// MemoryIndex is an in-memory Index for tests.
type MemoryIndex struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

func (m *MemoryIndex) Stage(path string, id object.ID) error {
	if path == "" {
		return apperrors.ValidationError("path is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, Entry{Path: path, ID: id})
	return nil
}

func (m *MemoryIndex) Entries() ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		return []Entry{}, nil
	}
	return slices.Clone(m.entries), nil
}

func (m *MemoryIndex) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}
