// internal/storage/badger_store.go
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "groot/internal/errors"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore keeps JSON records under "<prefix>:<key>" in a shared badger DB.
type BadgerStore struct {
	db     *badger.DB
	prefix string
}

func NewBadgerStore(db *badger.DB, prefix string) *BadgerStore {
	return &BadgerStore{
		db:     db,
		prefix: prefix,
	}
}

func (s *BadgerStore) makeKey(key string) []byte {
	return []byte(fmt.Sprintf("%s:%s", s.prefix, key))
}

func (s *BadgerStore) stripPrefix(key []byte) string {
	return strings.TrimPrefix(string(key), fmt.Sprintf("%s:", s.prefix))
}

// Put stores value under key, replacing any previous record.
func (s *BadgerStore) Put(key string, value any) error {
	if key == "" {
		return fmt.Errorf("record key cannot be empty")
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling %s record: %w", s.prefix, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.makeKey(key), data)
	})
	if err != nil {
		return apperrors.IOFailure(fmt.Sprintf("writing %s record %s", s.prefix, key), err)
	}
	return nil
}

// PutIfAbsent stores value unless key already exists. It reports whether a
// write happened.
func (s *BadgerStore) PutIfAbsent(key string, value any) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("marshaling %s record: %w", s.prefix, err)
	}

	written := false
	err = s.db.Update(func(txn *badger.Txn) error {
		k := s.makeKey(key)
		_, err := txn.Get(k)
		if err == nil {
			return nil
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		written = true
		return txn.Set(k, data)
	})
	if err != nil {
		return false, apperrors.IOFailure(fmt.Sprintf("writing %s record %s", s.prefix, key), err)
	}
	return written, nil
}

// Get decodes the record under key into value. A missing key yields a
// NOT_FOUND error.
func (s *BadgerStore) Get(key string, value any) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.makeKey(key))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, value)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return apperrors.NotFound(fmt.Sprintf("%s record not found: %s", s.prefix, key))
	}
	if err != nil {
		return apperrors.IOFailure(fmt.Sprintf("reading %s record %s", s.prefix, key), err)
	}
	return nil
}

// GetRaw returns the stored bytes under key, or NOT_FOUND.
func (s *BadgerStore) GetRaw(key string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.makeKey(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, apperrors.NotFound(fmt.Sprintf("%s record not found: %s", s.prefix, key))
	}
	if err != nil {
		return nil, apperrors.IOFailure(fmt.Sprintf("reading %s record %s", s.prefix, key), err)
	}
	return data, nil
}

// PutRaw stores data under key as-is.
func (s *BadgerStore) PutRaw(key string, data []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.makeKey(key), data)
	})
	if err != nil {
		return apperrors.IOFailure(fmt.Sprintf("writing %s record %s", s.prefix, key), err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *BadgerStore) Delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.makeKey(key))
	})
	if err != nil {
		return apperrors.IOFailure(fmt.Sprintf("deleting %s record %s", s.prefix, key), err)
	}
	return nil
}

// Keys returns every key (without the store prefix) starting with keyPrefix,
// in badger's lexicographic order.
func (s *BadgerStore) Keys(keyPrefix string) ([]string, error) {
	var keys []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		prefix := s.makeKey(keyPrefix)
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, s.stripPrefix(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.IOFailure(fmt.Sprintf("listing %s records", s.prefix), err)
	}
	return keys, nil
}
