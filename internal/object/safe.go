// internal/object/safe.go
package object

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	apperrors "groot/internal/errors"
	"groot/internal/logging"
	"groot/internal/storage"

	"github.com/dgraph-io/badger/v4"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// MinPrefixLength is the shortest abbreviated identifier Resolve accepts.
const MinPrefixLength = 4

var ErrCorrupt = errors.New("object content does not match its identifier")

// Meta is recorded in badger for every object on disk.
type Meta struct {
	ID        ID        `json:"id"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Safe stores objects as files fanned out by the first two hex characters of
// their identifier, with metadata in badger and an LRU read cache.
type Safe struct {
	root   string
	meta   *storage.BadgerStore
	cache  *lru.Cache[ID, []byte]
	logger *zap.Logger
	now    func() time.Time
}

// Options configures Safe behavior
type Options struct {
	Root      string // Root directory for object files
	CacheSize int    // Number of objects to cache
	Logger    *zap.Logger
}

// NewSafe creates a Safe rooted at opts.Root.
func NewSafe(db *badger.DB, opts Options) (*Safe, error) {
	if opts.Root == "" {
		return nil, fmt.Errorf("root directory is required")
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}

	if err := os.MkdirAll(opts.Root, 0755); err != nil {
		return nil, apperrors.IOFailure("creating object directory", err)
	}

	cache, err := lru.New[ID, []byte](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	return &Safe{
		root:   opts.Root,
		meta:   storage.NewBadgerStore(db, "object"),
		cache:  cache,
		logger: logging.OrNop(opts.Logger),
		now:    time.Now,
	}, nil
}

// Put saves data and returns its identifier.
func (s *Safe) Put(data []byte) (ID, error) {
	id, err := Compute(data)
	if err != nil {
		return "", err
	}

	path := s.objectPath(id)
	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		s.logger.Debug("object already stored", zap.String("id", id.String()))
	case errors.Is(statErr, os.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return "", apperrors.IOFailure("creating object directory", err)
		}
		if err := safeWrite(path, data, 0444); err != nil {
			return "", apperrors.IOFailure(fmt.Sprintf("writing object %s", id), err)
		}
		s.logger.Debug("stored object",
			zap.String("id", id.String()),
			zap.Int("size", len(data)))
	default:
		return "", apperrors.IOFailure(fmt.Sprintf("checking object %s", id), statErr)
	}

	// Recorded after the file so a crash in between is repaired by the next Put.
	meta := Meta{ID: id, Size: int64(len(data)), CreatedAt: s.now().UTC()}
	if _, err := s.meta.PutIfAbsent(id.String(), meta); err != nil {
		return "", fmt.Errorf("recording object metadata: %w", err)
	}

	s.cache.Add(id, slices.Clone(data))
	return id, nil
}

// Get retrieves an object, checking its bytes against the identifier.
func (s *Safe) Get(id ID) ([]byte, error) {
	if _, err := Parse(id.String()); err != nil {
		return nil, err
	}

	if data, ok := s.cache.Get(id); ok {
		return slices.Clone(data), nil
	}

	data, err := s.read(id)
	if err != nil {
		return nil, err
	}

	s.cache.Add(id, data)
	return slices.Clone(data), nil
}

// Has reports whether an object file exists for id.
func (s *Safe) Has(id ID) (bool, error) {
	if _, err := Parse(id.String()); err != nil {
		return false, nil
	}
	if s.cache.Contains(id) {
		return true, nil
	}

	_, err := os.Stat(s.objectPath(id))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, apperrors.IOFailure(fmt.Sprintf("checking object %s", id), err)
}

// Resolve expands an abbreviated identifier. Prefixes shorter than
// MinPrefixLength, unknown prefixes and ambiguous prefixes are rejected.
func (s *Safe) Resolve(prefix string) (ID, error) {
	ids, err := s.Matches(prefix)
	if err != nil {
		return "", err
	}
	return Single(prefix, ids)
}

// Matches returns every stored identifier starting with prefix, in
// identifier order. A full identifier matches only itself.
func (s *Safe) Matches(prefix string) ([]ID, error) {
	if len(prefix) == IDLength {
		id, err := Parse(prefix)
		if err != nil {
			return nil, err
		}
		ok, err := s.Has(id)
		if err != nil || !ok {
			return nil, err
		}
		return []ID{id}, nil
	}

	if len(prefix) < MinPrefixLength || len(prefix) > IDLength || !isHex(prefix) {
		return nil, apperrors.NotFound(fmt.Sprintf("invalid object id %q", prefix))
	}

	keys, err := s.meta.Keys(prefix)
	if err != nil {
		return nil, err
	}
	ids := make([]ID, len(keys))
	for i, key := range keys {
		ids[i] = ID(key)
	}
	return ids, nil
}

// Single picks the only candidate for prefix.
func Single(prefix string, ids []ID) (ID, error) {
	switch len(ids) {
	case 0:
		return "", apperrors.NotFound(fmt.Sprintf("object not found: %s", prefix))
	case 1:
		return ids[0], nil
	default:
		return "", apperrors.ValidationError(
			fmt.Sprintf("ambiguous object id %s matches %d objects", prefix, len(ids)))
	}
}

// Walk calls fn with the metadata of every recorded object, in identifier
// order. Walking stops at the first error fn returns.
func (s *Safe) Walk(fn func(Meta) error) error {
	keys, err := s.meta.Keys("")
	if err != nil {
		return err
	}
	for _, key := range keys {
		var meta Meta
		if err := s.meta.Get(key, &meta); err != nil {
			return err
		}
		if err := fn(meta); err != nil {
			return err
		}
	}
	return nil
}

// Verify re-reads id from disk, bypassing the cache, and checks its digest.
func (s *Safe) Verify(id ID) error {
	if _, err := Parse(id.String()); err != nil {
		return err
	}
	data, err := s.read(id)
	if err != nil {
		return err
	}

	var meta Meta
	if err := s.meta.Get(id.String(), &meta); err == nil && meta.Size != int64(len(data)) {
		return fmt.Errorf("object %s: size %d, recorded %d: %w", id, len(data), meta.Size, ErrCorrupt)
	}
	return nil
}

func (s *Safe) read(id ID) ([]byte, error) {
	data, err := os.ReadFile(s.objectPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NotFound(fmt.Sprintf("object not found: %s", id))
		}
		return nil, apperrors.IOFailure(fmt.Sprintf("reading object %s", id), err)
	}

	got, err := Compute(data)
	if err != nil {
		return nil, err
	}
	if got != id {
		s.logger.Warn("object digest mismatch",
			zap.String("id", id.String()),
			zap.String("actual", got.String()))
		return nil, fmt.Errorf("object %s: %w", id, ErrCorrupt)
	}
	return data, nil
}

func (s *Safe) objectPath(id ID) string {
	return filepath.Join(s.root, string(id[:2]), string(id[2:]))
}
